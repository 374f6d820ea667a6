// Escrowman is the client of the hash-locked escrow program. It derives the
// program's sub-accounts, encodes the open/claim instructions, submits them
// through an injected ledger connection and decodes persisted escrow state.
// It holds no process-wide state: everything it needs is in the struct, so
// tests can run any number of clients against simulated ledgers.
package escrowman

import (
	"context"
	"sync"
	"time"

	"github.com/pkg/errors"
	logger "github.com/sirupsen/logrus"

	"github.com/hashlock-io/escrow-go/agreement"
	"github.com/hashlock-io/escrow-go/common"
	"github.com/hashlock-io/escrow-go/escrowdb"
	"github.com/hashlock-io/escrow-go/prover"
	"github.com/hashlock-io/escrow-go/solkey"
)

type Escrowman struct {
	cfg    *Config
	conn   agreement.LedgerConnection
	signer agreement.Signer

	// optional attempt/escrow bookkeeping; nil is allowed
	db *escrowdb.EscrowDB

	// in-memory half of the fresh execution id guard
	mu      sync.Mutex
	usedIDs map[string]struct{}
}

// ClaimParams are the caller-supplied inputs to one claim attempt.
type ClaimParams struct {
	Seed     []byte
	Preimage string
	Receiver solkey.PublicKey
	Tip      uint64 // lamports paid to the prover
	Expiry   uint64 // settlement window in slots, relative to submission
}

// NewEscrowman creates an escrow client. db may be nil; without it the
// execution id guard only covers the lifetime of this process.
func NewEscrowman(cfg *Config, conn agreement.LedgerConnection, signer agreement.Signer, db *escrowdb.EscrowDB) (*Escrowman, error) {
	if cfg == nil || cfg.Prover == nil {
		return nil, errors.New("escrowman: config with prover settings required")
	}
	if conn == nil {
		return nil, errors.New("escrowman: ledger connection required")
	}
	if signer == nil {
		return nil, errors.New("escrowman: signer required")
	}

	return &Escrowman{
		cfg:     cfg,
		conn:    conn,
		signer:  signer,
		db:      db,
		usedIDs: make(map[string]struct{}),
	}, nil
}

// EscrowAddress derives the escrow account for a seed: seeds [seed] under
// the escrow program.
func (em *Escrowman) EscrowAddress(seed []byte) (solkey.PublicKey, uint8, error) {
	return solkey.FindProgramAddress([][]byte{seed}, em.cfg.EscrowProgramID)
}

// TrackerAddress derives the per-attempt execution tracker account:
// seeds [executionID] under the escrow program.
func (em *Escrowman) TrackerAddress(executionID [16]byte) (solkey.PublicKey, uint8, error) {
	return solkey.FindProgramAddress([][]byte{executionID[:]}, em.cfg.EscrowProgramID)
}

// OpenEscrow locks amount lamports under the commitment. The commitment
// format is checked before anything is built, so a malformed one costs no
// round trip and no fee. Returns the confirmation signature and the escrow
// account address.
func (em *Escrowman) OpenEscrow(ctx context.Context, seed []byte, commitment string, amount uint64) (string, solkey.PublicKey, error) {
	if !ValidateCommitmentFormat(commitment) {
		return "", solkey.PublicKey{}, errors.Wrapf(ErrInvalidCommitmentFormat, "%q", common.Shorten(commitment, 8))
	}

	escrowAddr, _, err := em.EscrowAddress(seed)
	if err != nil {
		return "", solkey.PublicKey{}, err
	}

	data, err := EncodeOpen(seed, []byte(commitment), amount)
	if err != nil {
		return "", solkey.PublicKey{}, err
	}

	ix := agreement.Instruction{
		ProgramID: em.cfg.EscrowProgramID,
		Accounts: []agreement.AccountMeta{
			agreement.WritableSigner(em.signer.PublicKey()),
			agreement.Writable(escrowAddr),
			agreement.ReadOnly(solkey.SystemProgramID),
		},
		Data: data,
	}

	sig, err := em.conn.SubmitAndConfirm(ctx, []agreement.Instruction{ix}, []agreement.Signer{em.signer})
	if err != nil {
		return "", solkey.PublicKey{}, errors.Wrap(ErrSubmissionFailed, err.Error())
	}

	logger.WithFields(logger.Fields{
		"escrow": escrowAddr.String(),
		"amount": amount,
		"sig":    common.Shorten(sig, 8),
	}).Info("escrow opened")

	if em.db != nil {
		err := em.db.InsertEscrow(&escrowdb.EscrowRecord{
			Seed:       common.ByteSliceToPureHexStr(seed),
			Address:    escrowAddr.String(),
			Commitment: commitment,
			Amount:     amount,
			OpenTxSig:  sig,
		})
		if err != nil {
			logger.WithError(err).Warn("failed to record opened escrow")
		}
	}

	return sig, escrowAddr, nil
}

// GetEscrowAccount reads and decodes the escrow account for a seed.
// agreement.ErrAccountNotFound passes through untouched so callers can tell
// "not opened yet" apart from malformed bytes.
func (em *Escrowman) GetEscrowAccount(ctx context.Context, seed []byte) (*EscrowAccount, error) {
	escrowAddr, _, err := em.EscrowAddress(seed)
	if err != nil {
		return nil, err
	}

	raw, err := em.conn.ReadAccount(ctx, escrowAddr)
	if err != nil {
		return nil, err
	}
	return DecodeEscrowAccount(raw)
}

// SubmitClaim submits one claim attempt with a fresh execution id and
// returns its handle. The submission is made exactly once: on rejection the
// handle comes back with status Rejected and the error, and any retry must
// go through a new SubmitClaim call (and therefore a new execution id).
func (em *Escrowman) SubmitClaim(ctx context.Context, params *ClaimParams) (*ClaimHandle, error) {
	executionID := prover.NewExecutionID()
	if err := em.reserveExecutionID(string(executionID[:])); err != nil {
		return nil, err
	}

	handle, ix, err := em.buildClaim(executionID, params)
	if err != nil {
		return nil, err
	}

	sig, err := em.conn.SubmitAndConfirm(ctx, []agreement.Instruction{ix}, []agreement.Signer{em.signer})
	if err != nil {
		handle.Status = ClaimStatusRejected
		em.recordAttempt(handle)
		return handle, errors.Wrap(ErrSubmissionFailed, err.Error())
	}

	handle.TxSignature = sig
	handle.SubmittedAt = time.Now()
	handle.Status = ClaimStatusSubmitted
	em.recordAttempt(handle)

	logger.WithFields(logger.Fields{
		"executionId": handle.ExecutionIDString(),
		"escrow":      handle.EscrowAddress.String(),
		"receiver":    params.Receiver.String(),
		"sig":         common.Shorten(sig, 8),
	}).Info("claim submitted")

	return handle, nil
}

// buildClaim derives every account the claim instruction references and
// assembles it in the order the escrow program expects.
func (em *Escrowman) buildClaim(executionID [16]byte, params *ClaimParams) (*ClaimHandle, agreement.Instruction, error) {
	escrowAddr, _, err := em.EscrowAddress(params.Seed)
	if err != nil {
		return nil, agreement.Instruction{}, err
	}

	trackerAddr, trackerBump, err := em.TrackerAddress(executionID)
	if err != nil {
		return nil, agreement.Instruction{}, err
	}

	execAddr, _, err := em.cfg.Prover.ExecutionAddress(em.signer.PublicKey(), executionID)
	if err != nil {
		return nil, agreement.Instruction{}, err
	}

	deployAddr, _, err := em.cfg.Prover.DeploymentAddress()
	if err != nil {
		return nil, agreement.Instruction{}, err
	}

	data, err := EncodeClaim(executionID[:], trackerBump, params.Tip, params.Expiry, params.Seed, []byte(params.Preimage))
	if err != nil {
		return nil, agreement.Instruction{}, err
	}

	// Account order is fixed by the program: payer, receiver, escrow,
	// tracker, prover execution, system program, prover program, image
	// deployment, escrow program (referenced for the callback).
	ix := agreement.Instruction{
		ProgramID: em.cfg.EscrowProgramID,
		Accounts: []agreement.AccountMeta{
			agreement.WritableSigner(em.signer.PublicKey()),
			agreement.Writable(params.Receiver),
			agreement.Writable(escrowAddr),
			agreement.Writable(trackerAddr),
			agreement.Writable(execAddr),
			agreement.ReadOnly(solkey.SystemProgramID),
			agreement.ReadOnly(em.cfg.Prover.ProgramID),
			agreement.ReadOnly(deployAddr),
			agreement.ReadOnly(em.cfg.EscrowProgramID),
		},
		Data: data,
	}

	handle := &ClaimHandle{
		ExecutionID:      executionID,
		Seed:             params.Seed,
		Receiver:         params.Receiver,
		EscrowAddress:    escrowAddr,
		TrackerAddress:   trackerAddr,
		ExecutionAddress: execAddr,
		Expiry:           params.Expiry,
		Status:           ClaimStatusBuilt,
	}
	return handle, ix, nil
}

// reserveExecutionID enforces single use of an id, across restarts when a
// db is attached.
func (em *Escrowman) reserveExecutionID(id string) error {
	em.mu.Lock()
	defer em.mu.Unlock()

	if _, seen := em.usedIDs[id]; seen {
		return errors.Wrapf(ErrDuplicateExecutionID, "%s", id)
	}
	if em.db != nil {
		used, err := em.db.HasExecutionID(id)
		if err != nil {
			return err
		}
		if used {
			return errors.Wrapf(ErrDuplicateExecutionID, "%s", id)
		}
	}
	em.usedIDs[id] = struct{}{}
	return nil
}

func (em *Escrowman) recordAttempt(h *ClaimHandle) {
	if em.db == nil {
		return
	}
	err := em.db.InsertAttempt(&escrowdb.AttemptRecord{
		ExecutionID:   h.ExecutionIDString(),
		Seed:          common.ByteSliceToPureHexStr(h.Seed),
		EscrowAddress: h.EscrowAddress.String(),
		Receiver:      h.Receiver.String(),
		TxSig:         h.TxSignature,
		Status:        attemptStatus(h.Status),
		CreatedAt:     time.Now(),
	})
	if err != nil {
		logger.WithError(err).Warn("failed to record claim attempt")
	}
}

func (em *Escrowman) recordOutcome(h *ClaimHandle) {
	if em.db == nil {
		return
	}
	if err := em.db.UpdateAttemptStatus(h.ExecutionIDString(), attemptStatus(h.Status)); err != nil {
		logger.WithError(err).Warn("failed to record claim outcome")
	}
	if h.Status == ClaimStatusReleased {
		if err := em.db.MarkEscrowClaimed(common.ByteSliceToPureHexStr(h.Seed)); err != nil {
			logger.WithError(err).Warn("failed to mark escrow claimed")
		}
	}
}

// attemptStatus maps a claim status to its db representation.
func attemptStatus(s ClaimStatus) string {
	switch s {
	case ClaimStatusReleased:
		return "released"
	case ClaimStatusExpired:
		return "expired"
	case ClaimStatusRejected:
		return "rejected"
	case ClaimStatusLost:
		return "lost"
	default:
		return "submitted"
	}
}
