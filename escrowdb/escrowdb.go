// Package escrowdb is the client-side bookkeeping store: which escrows this
// process opened, which execution ids it has ever used, and how each claim
// attempt ended. The ledger is the source of truth for escrow state; this
// store only exists so the client can enforce fresh execution ids across
// restarts and report attempt history.
package escrowdb

import (
	"database/sql"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"
)

type EscrowDB struct {
	db *sql.DB

	// maps query string to its prepared statement
	stmts sync.Map
}

// EscrowRecord mirrors one row of the escrow table.
type EscrowRecord struct {
	Seed       string // hex, no prefix
	Address    string // base58
	Commitment string
	Amount     uint64
	OpenTxSig  string
	Status     string
}

// AttemptRecord mirrors one row of the claim_attempt table.
type AttemptRecord struct {
	ExecutionID   string
	Seed          string // hex, no prefix
	EscrowAddress string // base58
	Receiver      string // base58
	TxSig         string
	Status        string
	CreatedAt     time.Time
}

// NewEscrowDB creates the tables if needed and wraps the handle.
func NewEscrowDB(db *sql.DB) (*EscrowDB, error) {
	if _, err := db.Exec(escrowTable + attemptTable); err != nil {
		return nil, errors.Wrap(err, "create escrowdb tables")
	}
	return &EscrowDB{db: db}, nil
}

// NewFileEscrowDB opens (or creates) a sqlite database file.
func NewFileEscrowDB(path string) (*EscrowDB, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, errors.Wrapf(err, "open sqlite db %s", path)
	}
	return NewEscrowDB(db)
}

func (edb *EscrowDB) Close() {
	edb.stmts.Range(func(k, v interface{}) bool {
		_ = v.(*sql.Stmt).Close()
		edb.stmts.Delete(k)
		return true
	})
	_ = edb.db.Close()
}

func (edb *EscrowDB) prepare(query string) (*sql.Stmt, error) {
	if cached, ok := edb.stmts.Load(query); ok {
		return cached.(*sql.Stmt), nil
	}
	stmt, err := edb.db.Prepare(query)
	if err != nil {
		return nil, err
	}
	edb.stmts.Store(query, stmt)
	return stmt, nil
}

func (edb *EscrowDB) InsertEscrow(rec *EscrowRecord) error {
	stmt, err := edb.prepare(`INSERT INTO escrow (seed, address, commitment, amount, openTxSig, status)
		VALUES (?, ?, ?, ?, ?, 'opened')`)
	if err != nil {
		return err
	}
	_, err = stmt.Exec(rec.Seed, rec.Address, rec.Commitment, rec.Amount, rec.OpenTxSig)
	return err
}

func (edb *EscrowDB) GetEscrow(seed string) (*EscrowRecord, bool, error) {
	stmt, err := edb.prepare(`SELECT seed, address, commitment, amount, openTxSig, status
		FROM escrow WHERE seed = ?`)
	if err != nil {
		return nil, false, err
	}

	rec := &EscrowRecord{}
	err = stmt.QueryRow(seed).Scan(&rec.Seed, &rec.Address, &rec.Commitment, &rec.Amount, &rec.OpenTxSig, &rec.Status)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return rec, true, nil
}

// MarkEscrowClaimed flips the escrow row to its terminal status.
func (edb *EscrowDB) MarkEscrowClaimed(seed string) error {
	stmt, err := edb.prepare(`UPDATE escrow SET status = 'claimed' WHERE seed = ?`)
	if err != nil {
		return err
	}
	_, err = stmt.Exec(seed)
	return err
}

// HasExecutionID reports whether the id was ever used by this client.
func (edb *EscrowDB) HasExecutionID(executionID string) (bool, error) {
	stmt, err := edb.prepare(`SELECT COUNT(*) FROM claim_attempt WHERE executionId = ?`)
	if err != nil {
		return false, err
	}
	var n int
	if err := stmt.QueryRow(executionID).Scan(&n); err != nil {
		return false, err
	}
	return n > 0, nil
}

func (edb *EscrowDB) InsertAttempt(rec *AttemptRecord) error {
	stmt, err := edb.prepare(`INSERT INTO claim_attempt
		(executionId, seed, escrowAddress, receiver, txSig, status, createdAt)
		VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	_, err = stmt.Exec(rec.ExecutionID, rec.Seed, rec.EscrowAddress, rec.Receiver,
		rec.TxSig, rec.Status, rec.CreatedAt.Unix())
	return err
}

// UpdateAttemptStatus moves an attempt to a new status. Terminal statuses
// are never downgraded: once an attempt is released/expired/rejected/lost,
// later writes of non-terminal statuses are ignored.
func (edb *EscrowDB) UpdateAttemptStatus(executionID, status string) error {
	stmt, err := edb.prepare(`UPDATE claim_attempt SET status = ?
		WHERE executionId = ? AND status IN ('submitted')`)
	if err != nil {
		return err
	}
	_, err = stmt.Exec(status, executionID)
	return err
}

func (edb *EscrowDB) GetAttempt(executionID string) (*AttemptRecord, bool, error) {
	stmt, err := edb.prepare(`SELECT executionId, seed, escrowAddress, receiver, txSig, status, createdAt
		FROM claim_attempt WHERE executionId = ?`)
	if err != nil {
		return nil, false, err
	}

	rec := &AttemptRecord{}
	var txSig sql.NullString
	var createdAt int64
	err = stmt.QueryRow(executionID).Scan(&rec.ExecutionID, &rec.Seed, &rec.EscrowAddress,
		&rec.Receiver, &txSig, &rec.Status, &createdAt)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	rec.TxSig = txSig.String
	rec.CreatedAt = time.Unix(createdAt, 0)
	return rec, true, nil
}

// ListAttemptsBySeed returns every attempt recorded against one escrow,
// oldest first.
func (edb *EscrowDB) ListAttemptsBySeed(seed string) ([]*AttemptRecord, error) {
	stmt, err := edb.prepare(`SELECT executionId, seed, escrowAddress, receiver, txSig, status, createdAt
		FROM claim_attempt WHERE seed = ? ORDER BY createdAt ASC`)
	if err != nil {
		return nil, err
	}

	rows, err := stmt.Query(seed)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*AttemptRecord
	for rows.Next() {
		rec := &AttemptRecord{}
		var txSig sql.NullString
		var createdAt int64
		if err := rows.Scan(&rec.ExecutionID, &rec.Seed, &rec.EscrowAddress,
			&rec.Receiver, &txSig, &rec.Status, &createdAt); err != nil {
			return nil, err
		}
		rec.TxSig = txSig.String
		rec.CreatedAt = time.Unix(createdAt, 0)
		out = append(out, rec)
	}
	return out, rows.Err()
}
