// Demo = escrow client + simulated ledger + bookkeeping db.
// It walks the full protocol once: open an escrow under a secret's
// commitment, release it with the right preimage, then show a wrong
// preimage expiring and a double claim being refused.

package cmd

import (
	"context"
	"time"

	logger "github.com/sirupsen/logrus"

	"github.com/hashlock-io/escrow-go/escrowdb"
	"github.com/hashlock-io/escrow-go/escrowman"
	"github.com/hashlock-io/escrow-go/prover"
	"github.com/hashlock-io/escrow-go/signers"
	"github.com/hashlock-io/escrow-go/solkey"
)

// Keep the configuration's fields as "text" as possible.
// Its easier to load it from env vars or a config file.
type DemoConfig struct {
	EscrowProgramID string // base58 program id of the escrow program
	ProverProgramID string // base58 program id of the proof-computation program
	ImageID         string // hex identifier of the compute image

	Seed   string // escrow seed (utf-8, <= 32 bytes)
	Secret string // the secret whose SHA-256 locks the escrow
	Amount uint64 // lamports to lock
	Tip    uint64 // lamports paid to the prover
	Expiry uint64 // claim settlement window in slots
	DbFile string // sqlite file path, ":memory:" works too
}

// RunDemo executes the whole flow and blocks until done.
func RunDemo(dc *DemoConfig) error {
	escrowProgram, err := solkey.PublicKeyFromBase58(dc.EscrowProgramID)
	if err != nil {
		return err
	}
	proverProgram, err := solkey.PublicKeyFromBase58(dc.ProverProgramID)
	if err != nil {
		return err
	}

	db, err := escrowdb.NewFileEscrowDB(dc.DbFile)
	if err != nil {
		return err
	}
	defer db.Close()

	locker, err := signers.NewRandomLocalSigner()
	if err != nil {
		return err
	}
	claimant, err := signers.NewRandomLocalSigner()
	if err != nil {
		return err
	}

	ledger := escrowman.NewSimulatedLedger(escrowProgram)
	ledger.CallbackDelay = 300 * time.Millisecond

	cfg := &escrowman.Config{
		EscrowProgramID: escrowProgram,
		Prover:          &prover.Config{ProgramID: proverProgram, ImageID: dc.ImageID},
		PollInterval:    100 * time.Millisecond,
		MaxPollAttempts: 50,
		SlotTime:        100 * time.Millisecond,
	}

	em, err := escrowman.NewEscrowman(cfg, ledger, locker, db)
	if err != nil {
		return err
	}

	ctx := context.Background()
	seed := []byte(dc.Seed)
	commitment := escrowman.Commit(dc.Secret)

	// 1) open
	_, escrowAddr, err := em.OpenEscrow(ctx, seed, commitment, dc.Amount)
	if err != nil {
		return err
	}
	logger.WithField("escrow", escrowAddr.String()).Info("demo: escrow opened")

	// 2) a wrong preimage never settles; the attempt expires
	wrong, err := em.Claim(ctx, &escrowman.ClaimParams{
		Seed:     seed,
		Preimage: dc.Secret + "-wrong",
		Receiver: claimant.PublicKey(),
		Tip:      dc.Tip,
		Expiry:   dc.Expiry,
	})
	if err != nil {
		return err
	}
	logger.WithField("status", wrong.Status).Info("demo: wrong preimage outcome")

	// 3) the right preimage releases the funds
	good, err := em.Claim(ctx, &escrowman.ClaimParams{
		Seed:     seed,
		Preimage: dc.Secret,
		Receiver: claimant.PublicKey(),
		Tip:      dc.Tip,
		Expiry:   dc.Expiry,
	})
	if err != nil {
		return err
	}
	logger.WithFields(logger.Fields{
		"status":   good.Status,
		"received": ledger.Lamports(claimant.PublicKey()),
	}).Info("demo: claim outcome")

	// 4) a second claim against the released escrow is refused outright
	_, err = em.Claim(ctx, &escrowman.ClaimParams{
		Seed:     seed,
		Preimage: dc.Secret,
		Receiver: locker.PublicKey(),
		Tip:      dc.Tip,
		Expiry:   dc.Expiry,
	})
	if err != nil {
		logger.WithError(err).Info("demo: double claim refused, as expected")
	} else {
		logger.Warn("demo: double claim unexpectedly accepted")
	}

	return nil
}
