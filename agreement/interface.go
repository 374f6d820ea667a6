package agreement

import (
	"context"

	"github.com/pkg/errors"

	"github.com/hashlock-io/escrow-go/solkey"
)

// ErrAccountNotFound is returned by ReadAccount when no account exists at the
// given address. Distinct from a decode failure: a missing account is a normal
// condition (e.g. escrow not opened yet), not corruption.
var ErrAccountNotFound = errors.New("account not found")

// LedgerConnection is how the escrow client talks to the ledger.
// Implementations submit built instructions and read raw account bytes.
// The codec/derivation/workflow layers never touch the network themselves;
// they go through this interface so tests can plug in a simulated ledger.
type LedgerConnection interface {
	// SubmitAndConfirm submits the instructions as one transaction, waits for
	// confirmation and returns the transaction signature. A rejection by the
	// ledger or the program is returned as an error; the caller decides
	// whether to retry (claim submissions must NOT be retried blindly since
	// each execution id is single-use).
	SubmitAndConfirm(ctx context.Context, ixs []Instruction, signers []Signer) (string, error)

	// ReadAccount returns the raw persisted bytes of the account at addr.
	// Returns ErrAccountNotFound if the account does not exist.
	ReadAccount(ctx context.Context, addr solkey.PublicKey) ([]byte, error)
}

// Signer exposes a public address and the ability to sign a payload.
// Key management stays behind this interface (local key, remote signer, HSM).
type Signer interface {
	PublicKey() solkey.PublicKey
	Sign(msg []byte) ([]byte, error)
}
