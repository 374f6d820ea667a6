package escrowman

import (
	"context"
	"time"

	"github.com/pkg/errors"
	logger "github.com/sirupsen/logrus"

	"github.com/hashlock-io/escrow-go/agreement"
)

// AwaitClaim polls the escrow account until the attempt reaches a terminal
// state. Terminal outcomes:
//
//   - Released: the account shows claimed with our receiver;
//   - Lost: the account shows claimed with a different receiver; another
//     attempt won the race, and the read itself is valid data, not an error;
//   - Expired: the expiry window elapsed, or the poll attempts ran out, with
//     the account still unclaimed.
//
// There is no server-side cancellation of a pending verification; stopping
// early via ctx only stops the local polling.
func (em *Escrowman) AwaitClaim(ctx context.Context, handle *ClaimHandle) (ClaimStatus, error) {
	if handle.Status.Terminal() {
		return handle.Status, nil
	}
	handle.Status = ClaimStatusPending

	deadline := handle.SubmittedAt.Add(time.Duration(handle.Expiry) * em.cfg.slotTime())

	ticker := time.NewTicker(em.cfg.pollInterval())
	defer ticker.Stop()

	for attempt := 0; attempt < em.cfg.maxPollAttempts(); attempt++ {
		select {
		case <-ctx.Done():
			return handle.Status, ctx.Err()
		case <-ticker.C:
		}

		acc, err := em.GetEscrowAccount(ctx, handle.Seed)
		if err != nil {
			if errors.Is(err, agreement.ErrAccountNotFound) || errors.Is(err, ErrTruncatedAccount) {
				// account not readable in its final shape yet; keep polling
				continue
			}
			return handle.Status, err
		}

		if acc.IsClaimed {
			if acc.Receiver != nil && *acc.Receiver == handle.Receiver {
				handle.Status = ClaimStatusReleased
			} else {
				handle.Status = ClaimStatusLost
			}
			em.recordOutcome(handle)
			logger.WithFields(logger.Fields{
				"executionId": handle.ExecutionIDString(),
				"status":      handle.Status,
			}).Info("claim settled")
			return handle.Status, nil
		}

		if time.Now().After(deadline) {
			break
		}
	}

	handle.Status = ClaimStatusExpired
	em.recordOutcome(handle)
	logger.WithFields(logger.Fields{
		"executionId": handle.ExecutionIDString(),
		"escrow":      handle.EscrowAddress.String(),
	}).Warn("claim expired unclaimed")
	return handle.Status, nil
}

// Claim is the full request-then-settle flow: submit one attempt and poll
// it to a terminal state.
func (em *Escrowman) Claim(ctx context.Context, params *ClaimParams) (*ClaimHandle, error) {
	handle, err := em.SubmitClaim(ctx, params)
	if err != nil {
		return handle, err
	}
	if _, err := em.AwaitClaim(ctx, handle); err != nil {
		return handle, err
	}
	return handle, nil
}
