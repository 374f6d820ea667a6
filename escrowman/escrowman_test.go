package escrowman

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hashlock-io/escrow-go/agreement"
	"github.com/hashlock-io/escrow-go/escrowdb"
	"github.com/hashlock-io/escrow-go/prover"
	"github.com/hashlock-io/escrow-go/signers"
	"github.com/hashlock-io/escrow-go/solkey"
)

type testEnv struct {
	Ledger   *SimulatedLedger
	Em       *Escrowman
	Locker   *signers.LocalSigner
	Claimant *signers.LocalSigner
	Db       *escrowdb.EscrowDB

	close func()
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	sqlDB, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	db, err := escrowdb.NewEscrowDB(sqlDB)
	require.NoError(t, err)

	locker, err := signers.NewRandomLocalSigner()
	require.NoError(t, err)
	claimant, err := signers.NewRandomLocalSigner()
	require.NoError(t, err)

	escrowProgram := solkey.MustPublicKeyFromBase58("72bGikYM7J314fvAfBDvMGdqaewHaq7LpbJMNF5rJDb8")
	var proverProgram solkey.PublicKey
	copy(proverProgram[:], "prover-program-for-tests........")

	ledger := NewSimulatedLedger(escrowProgram)

	cfg := &Config{
		EscrowProgramID: escrowProgram,
		Prover: &prover.Config{
			ProgramID: proverProgram,
			ImageID:   "75029efa53432a9030e5e76d58fb34dfa786cd0f6182ed0741d635ff5e4f0341",
		},
		PollInterval:    5 * time.Millisecond,
		MaxPollAttempts: 40,
		SlotTime:        time.Millisecond,
	}

	em, err := NewEscrowman(cfg, ledger, locker, db)
	require.NoError(t, err)

	return &testEnv{
		Ledger:   ledger,
		Em:       em,
		Locker:   locker,
		Claimant: claimant,
		Db:       db,
		close:    func() { db.Close() },
	}
}

func TestOpenEscrowRoundTrip(t *testing.T) {
	env := newTestEnv(t)
	defer env.close()
	ctx := context.Background()

	seed := []byte("s1")
	commitment := Commit("hello")

	_, addr, err := env.Em.OpenEscrow(ctx, seed, commitment, 100_000_000)
	assert.NoError(t, err)
	assert.False(t, addr.IsZero())

	acc, err := env.Em.GetEscrowAccount(ctx, seed)
	assert.NoError(t, err)
	assert.Equal(t, uint64(100_000_000), acc.Amount)
	assert.Equal(t, commitment, acc.Commitment)
	assert.False(t, acc.IsClaimed)
	assert.Nil(t, acc.Receiver)
	assert.Equal(t, env.Locker.PublicKey(), acc.Initializer)

	var wantSeed [32]byte
	copy(wantSeed[:], seed)
	assert.Equal(t, wantSeed, acc.Seed)
}

func TestOpenEscrowRejectsBadCommitment(t *testing.T) {
	env := newTestEnv(t)
	defer env.close()
	ctx := context.Background()

	seed := []byte("s1")
	_, _, err := env.Em.OpenEscrow(ctx, seed, "not-a-commitment", 100)
	assert.ErrorIs(t, err, ErrInvalidCommitmentFormat)

	// rejected before any submission: nothing was created on the ledger
	_, err = env.Em.GetEscrowAccount(ctx, seed)
	assert.ErrorIs(t, err, agreement.ErrAccountNotFound)
}

func TestOpenEscrowDuplicateSeed(t *testing.T) {
	env := newTestEnv(t)
	defer env.close()
	ctx := context.Background()

	seed := []byte("dup")
	_, _, err := env.Em.OpenEscrow(ctx, seed, Commit("a"), 10)
	assert.NoError(t, err)

	_, _, err = env.Em.OpenEscrow(ctx, seed, Commit("b"), 10)
	assert.ErrorIs(t, err, ErrSubmissionFailed)
}

func TestGetEscrowAccountNotFound(t *testing.T) {
	env := newTestEnv(t)
	defer env.close()

	_, err := env.Em.GetEscrowAccount(context.Background(), []byte("missing"))
	assert.ErrorIs(t, err, agreement.ErrAccountNotFound)
}

// Happy path: open with seed "s1" and the commitment of "hello", claim with
// the matching preimage, observe the release.
func TestClaimHappyPath(t *testing.T) {
	env := newTestEnv(t)
	defer env.close()
	ctx := context.Background()

	seed := []byte("s1")
	_, _, err := env.Em.OpenEscrow(ctx, seed, Commit("hello"), 100_000_000)
	require.NoError(t, err)

	handle, err := env.Em.Claim(ctx, &ClaimParams{
		Seed:     seed,
		Preimage: "hello",
		Receiver: env.Claimant.PublicKey(),
		Tip:      12_000,
		Expiry:   50,
	})
	assert.NoError(t, err)
	assert.Equal(t, ClaimStatusReleased, handle.Status)

	acc, err := env.Em.GetEscrowAccount(ctx, seed)
	assert.NoError(t, err)
	assert.True(t, acc.IsClaimed)
	require.NotNil(t, acc.Receiver)
	assert.Equal(t, env.Claimant.PublicKey(), *acc.Receiver)

	assert.Equal(t, uint64(100_000_000), env.Ledger.Lamports(env.Claimant.PublicKey()))

	// bookkeeping followed
	rec, found, err := env.Db.GetAttempt(handle.ExecutionIDString())
	assert.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "released", rec.Status)
}

// A claim with the wrong preimage never settles; the attempt expires and
// the escrow stays unclaimed.
func TestClaimWrongPreimage(t *testing.T) {
	env := newTestEnv(t)
	defer env.close()
	ctx := context.Background()

	seed := []byte("s1")
	_, _, err := env.Em.OpenEscrow(ctx, seed, Commit("hello"), 100_000_000)
	require.NoError(t, err)

	handle, err := env.Em.Claim(ctx, &ClaimParams{
		Seed:     seed,
		Preimage: "wrong",
		Receiver: env.Claimant.PublicKey(),
		Expiry:   20,
	})
	assert.NoError(t, err)
	assert.Equal(t, ClaimStatusExpired, handle.Status)

	acc, err := env.Em.GetEscrowAccount(ctx, seed)
	assert.NoError(t, err)
	assert.False(t, acc.IsClaimed)
	assert.Nil(t, acc.Receiver)
	assert.Equal(t, uint64(0), env.Ledger.Lamports(env.Claimant.PublicKey()))

	rec, found, err := env.Db.GetAttempt(handle.ExecutionIDString())
	assert.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "expired", rec.Status)
}

// After a successful claim, a second attempt with a fresh execution id is
// refused by the program and the receiver never changes.
func TestDoubleClaim(t *testing.T) {
	env := newTestEnv(t)
	defer env.close()
	ctx := context.Background()

	seed := []byte("s1")
	_, _, err := env.Em.OpenEscrow(ctx, seed, Commit("hello"), 100_000_000)
	require.NoError(t, err)

	first, err := env.Em.Claim(ctx, &ClaimParams{
		Seed:     seed,
		Preimage: "hello",
		Receiver: env.Claimant.PublicKey(),
		Expiry:   50,
	})
	require.NoError(t, err)
	require.Equal(t, ClaimStatusReleased, first.Status)

	second, err := env.Em.SubmitClaim(ctx, &ClaimParams{
		Seed:     seed,
		Preimage: "hello",
		Receiver: env.Locker.PublicKey(),
		Expiry:   50,
	})
	assert.ErrorIs(t, err, ErrSubmissionFailed)
	assert.Equal(t, ClaimStatusRejected, second.Status)
	assert.NotEqual(t, first.ExecutionID, second.ExecutionID)

	// receiver unchanged, no second release
	acc, err := env.Em.GetEscrowAccount(ctx, seed)
	assert.NoError(t, err)
	require.NotNil(t, acc.Receiver)
	assert.Equal(t, env.Claimant.PublicKey(), *acc.Receiver)
	assert.Equal(t, uint64(100_000_000), env.Ledger.Lamports(env.Claimant.PublicKey()))
	assert.Equal(t, uint64(0), env.Ledger.Lamports(env.Locker.PublicKey()))
}

// Two pending attempts with the correct preimage: exactly one wins, the
// loser observes the other receiver and resolves to Lost, not an error.
func TestConcurrentClaimsOneWinner(t *testing.T) {
	env := newTestEnv(t)
	defer env.close()
	ctx := context.Background()

	env.Ledger.CallbackDelay = 20 * time.Millisecond

	seed := []byte("s1")
	_, _, err := env.Em.OpenEscrow(ctx, seed, Commit("hello"), 100_000_000)
	require.NoError(t, err)

	h1, err := env.Em.SubmitClaim(ctx, &ClaimParams{
		Seed: seed, Preimage: "hello", Receiver: env.Claimant.PublicKey(), Expiry: 100,
	})
	require.NoError(t, err)
	h2, err := env.Em.SubmitClaim(ctx, &ClaimParams{
		Seed: seed, Preimage: "hello", Receiver: env.Locker.PublicKey(), Expiry: 100,
	})
	require.NoError(t, err)

	s1, err := env.Em.AwaitClaim(ctx, h1)
	assert.NoError(t, err)
	assert.Equal(t, ClaimStatusReleased, s1)

	s2, err := env.Em.AwaitClaim(ctx, h2)
	assert.NoError(t, err)
	assert.Equal(t, ClaimStatusLost, s2)

	assert.Equal(t, uint64(100_000_000), env.Ledger.Lamports(env.Claimant.PublicKey()))
	assert.Equal(t, uint64(0), env.Ledger.Lamports(env.Locker.PublicKey()))
}

func TestAwaitClaimContextCancel(t *testing.T) {
	env := newTestEnv(t)
	defer env.close()

	seed := []byte("s1")
	_, _, err := env.Em.OpenEscrow(context.Background(), seed, Commit("hello"), 100)
	require.NoError(t, err)

	env.Ledger.CallbackDelay = time.Hour
	handle, err := env.Em.SubmitClaim(context.Background(), &ClaimParams{
		Seed: seed, Preimage: "hello", Receiver: env.Claimant.PublicKey(), Expiry: 1_000_000,
	})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = env.Em.AwaitClaim(ctx, handle)
	assert.ErrorIs(t, err, context.Canceled)
}
