package escrowman

import (
	"time"

	"github.com/hashlock-io/escrow-go/solkey"
)

// EscrowAccount is the decoded form of the escrow program's persisted record.
// The client only ever reads this state; every mutation goes through the
// program's own instructions.
type EscrowAccount struct {
	Seed        [32]byte          // derivation seed, zero padded
	Amount      uint64            // locked lamports
	Commitment  string            // 64 hex chars, padding trimmed
	IsClaimed   bool              // set exactly once by a verified claim
	Receiver    *solkey.PublicKey // nil until claimed
	Initializer solkey.PublicKey  // who locked the funds
}

// ClaimStatus tracks one claim attempt through its lifecycle.
type ClaimStatus string

const (
	ClaimStatusBuilt     ClaimStatus = "BUILT"
	ClaimStatusSubmitted ClaimStatus = "SUBMITTED"
	ClaimStatusPending   ClaimStatus = "PENDING"
	ClaimStatusReleased  ClaimStatus = "RELEASED" // terminal: funds released to us
	ClaimStatusRejected  ClaimStatus = "REJECTED" // terminal: ledger refused the submission
	ClaimStatusExpired   ClaimStatus = "EXPIRED"  // terminal: expiry window elapsed unclaimed
	ClaimStatusLost      ClaimStatus = "LOST"     // terminal: claimed, but by someone else
)

// Terminal reports whether no further polling can change the status.
func (s ClaimStatus) Terminal() bool {
	switch s {
	case ClaimStatusReleased, ClaimStatusRejected, ClaimStatusExpired, ClaimStatusLost:
		return true
	}
	return false
}

// ClaimHandle is the client-side record of one submitted claim attempt.
// The workflow polls the escrow account and moves Status toward a terminal
// state; it never resubmits (each execution id is single-use).
type ClaimHandle struct {
	ExecutionID [16]byte
	Seed        []byte
	Receiver    solkey.PublicKey

	EscrowAddress    solkey.PublicKey
	TrackerAddress   solkey.PublicKey
	ExecutionAddress solkey.PublicKey

	TxSignature string
	SubmittedAt time.Time
	Expiry      uint64 // settlement window, in slots, relative to submission
	Status      ClaimStatus
}

// ExecutionIDString is the id in its on-the-wire UTF-8 form.
func (h *ClaimHandle) ExecutionIDString() string {
	return string(h.ExecutionID[:])
}
