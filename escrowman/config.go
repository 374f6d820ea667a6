package escrowman

import (
	"time"

	"github.com/hashlock-io/escrow-go/prover"
	"github.com/hashlock-io/escrow-go/solkey"
)

// Default polling parameters. The proof-computation callback has no
// guaranteed settlement time, so the claim workflow polls the escrow
// account on an interval instead of sleeping a fixed amount once.
const (
	DefaultPollInterval    = 2 * time.Second
	DefaultMaxPollAttempts = 30

	// DefaultSlotTime converts the claim expiry (expressed in slots,
	// the program adds it to the current slot) into a local wall-clock
	// polling deadline.
	DefaultSlotTime = 400 * time.Millisecond
)

type Config struct {
	// EscrowProgramID is the deployed escrow program.
	EscrowProgramID solkey.PublicKey

	// Prover identifies the external proof-computation program and image.
	Prover *prover.Config

	// PollInterval is the wait between escrow account reads while a claim
	// is pending. Zero means DefaultPollInterval.
	PollInterval time.Duration

	// MaxPollAttempts bounds the poll loop. Zero means DefaultMaxPollAttempts.
	MaxPollAttempts int

	// SlotTime is the assumed ledger slot duration, used to turn a claim's
	// expiry offset into a local deadline. Zero means DefaultSlotTime.
	SlotTime time.Duration
}

func (cfg *Config) pollInterval() time.Duration {
	if cfg.PollInterval <= 0 {
		return DefaultPollInterval
	}
	return cfg.PollInterval
}

func (cfg *Config) maxPollAttempts() int {
	if cfg.MaxPollAttempts <= 0 {
		return DefaultMaxPollAttempts
	}
	return cfg.MaxPollAttempts
}

func (cfg *Config) slotTime() time.Duration {
	if cfg.SlotTime <= 0 {
		return DefaultSlotTime
	}
	return cfg.SlotTime
}
