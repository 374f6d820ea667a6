// An in-process ledger that executes the escrow program's semantics,
// including the asynchronous proof-computation callback. Used by tests and
// the demo instead of a live ledger: the verification that a real deployment
// delegates to the prover is stood in for by hashing the revealed preimage
// locally after a configurable callback delay.
package escrowman

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/hashlock-io/escrow-go/agreement"
	"github.com/hashlock-io/escrow-go/common"
	"github.com/hashlock-io/escrow-go/solkey"
)

type pendingCallback struct {
	executionID [16]byte
	escrowAddr  solkey.PublicKey
	receiver    solkey.PublicKey
	preimage    []byte
	due         time.Time
}

type SimulatedLedger struct {
	escrowProgramID solkey.PublicKey

	// CallbackDelay is how long after a claim submission the verification
	// callback lands. Zero settles on the next account read.
	CallbackDelay time.Duration

	mu       sync.Mutex
	accounts map[solkey.PublicKey][]byte
	lamports map[solkey.PublicKey]uint64
	pending  []pendingCallback
}

func NewSimulatedLedger(escrowProgramID solkey.PublicKey) *SimulatedLedger {
	return &SimulatedLedger{
		escrowProgramID: escrowProgramID,
		accounts:        make(map[solkey.PublicKey][]byte),
		lamports:        make(map[solkey.PublicKey]uint64),
	}
}

// SubmitAndConfirm executes the instructions synchronously (confirmation on
// this backend is immediate) and returns a synthetic signature.
func (sl *SimulatedLedger) SubmitAndConfirm(_ context.Context, ixs []agreement.Instruction, signers []agreement.Signer) (string, error) {
	sl.mu.Lock()
	defer sl.mu.Unlock()

	if len(signers) == 0 {
		return "", errors.New("simulated: no signers")
	}

	for _, ix := range ixs {
		if ix.ProgramID != sl.escrowProgramID {
			return "", errors.Errorf("simulated: unknown program %s", ix.ProgramID.String())
		}
		if len(ix.Data) == 0 {
			return "", errors.New("simulated: empty instruction data")
		}
		var err error
		switch ix.Data[0] {
		case OpOpen:
			err = sl.executeOpen(ix)
		case OpClaim:
			err = sl.executeClaim(ix)
		default:
			err = errors.Errorf("simulated: unknown opcode %d", ix.Data[0])
		}
		if err != nil {
			return "", err
		}
	}

	return common.ByteSliceToPureHexStr(common.RandBytes(32)), nil
}

// ReadAccount settles any due callbacks first, then returns a copy of the
// account bytes.
func (sl *SimulatedLedger) ReadAccount(_ context.Context, addr solkey.PublicKey) ([]byte, error) {
	sl.mu.Lock()
	defer sl.mu.Unlock()

	sl.settleDueCallbacks()

	raw, ok := sl.accounts[addr]
	if !ok {
		return nil, agreement.ErrAccountNotFound
	}
	out := make([]byte, len(raw))
	copy(out, raw)
	return out, nil
}

// Lamports returns the tracked balance of an address.
func (sl *SimulatedLedger) Lamports(addr solkey.PublicKey) uint64 {
	sl.mu.Lock()
	defer sl.mu.Unlock()
	sl.settleDueCallbacks()
	return sl.lamports[addr]
}

// executeOpen mirrors the program's opcode 0: create and initialize the
// escrow account. A second open on the same seed is rejected.
func (sl *SimulatedLedger) executeOpen(ix agreement.Instruction) error {
	if len(ix.Accounts) < 3 || !ix.Accounts[0].IsSigner {
		return errors.New("simulated: open needs signed initializer, escrow, system program")
	}

	data := ix.Data[1:]
	if len(data) < 2 {
		return errors.New("simulated: open data truncated")
	}
	seedLen := int(data[0])
	if len(data) < 1+seedLen+1 {
		return errors.New("simulated: open data truncated")
	}
	seed := data[1 : 1+seedLen]
	hashLen := int(data[1+seedLen])
	if len(data) < 2+seedLen+hashLen+8 {
		return errors.New("simulated: open data truncated")
	}
	commitment := data[2+seedLen : 2+seedLen+hashLen]
	if hashLen != CommitmentLength {
		return errors.New("simulated: commitment must be 64 bytes")
	}
	amount := binary.LittleEndian.Uint64(data[2+seedLen+hashLen:])

	expected, _, err := solkey.FindProgramAddress([][]byte{seed}, sl.escrowProgramID)
	if err != nil {
		return err
	}
	if ix.Accounts[1].Pubkey != expected {
		return errors.New("simulated: escrow account does not match derived address")
	}
	if _, exists := sl.accounts[expected]; exists {
		return errors.New("simulated: escrow account already exists")
	}

	raw := make([]byte, EscrowAccountSize)
	copy(raw[offSeed:], seed) // zero padded up to 32
	binary.LittleEndian.PutUint64(raw[offAmount:], amount)
	copy(raw[offCommitment:], commitment)
	copy(raw[offInitializer:], ix.Accounts[0].Pubkey[:])

	sl.accounts[expected] = raw
	sl.lamports[expected] += amount
	return nil
}

// executeClaim mirrors the program's opcode 1: validate, create the
// execution tracker and queue the prover callback.
func (sl *SimulatedLedger) executeClaim(ix agreement.Instruction) error {
	if len(ix.Accounts) < 9 || !ix.Accounts[0].IsSigner {
		return errors.New("simulated: claim needs the 9-account list with a signed payer")
	}

	data := ix.Data[1:]
	if len(data) < 35 {
		return errors.New("simulated: claim data truncated")
	}
	var executionID [16]byte
	copy(executionID[:], data[0:16])
	seedLen := int(data[33])
	if len(data) < 34+seedLen+2 {
		return errors.New("simulated: claim data truncated")
	}
	seed := data[34 : 34+seedLen]
	preimageLen := int(binary.LittleEndian.Uint16(data[34+seedLen:]))
	if len(data) < 36+seedLen+preimageLen {
		return errors.New("simulated: claim data truncated")
	}
	preimage := data[36+seedLen : 36+seedLen+preimageLen]

	escrowAddr, _, err := solkey.FindProgramAddress([][]byte{seed}, sl.escrowProgramID)
	if err != nil {
		return err
	}
	if ix.Accounts[2].Pubkey != escrowAddr {
		return errors.New("simulated: escrow account does not match derived address")
	}
	raw, ok := sl.accounts[escrowAddr]
	if !ok {
		return errors.New("simulated: escrow account does not exist")
	}
	if raw[offClaimed] != 0 {
		return ErrAlreadyClaimed
	}

	trackerAddr, _, err := solkey.FindProgramAddress([][]byte{executionID[:]}, sl.escrowProgramID)
	if err != nil {
		return err
	}
	if ix.Accounts[3].Pubkey != trackerAddr {
		return errors.New("simulated: tracker account does not match derived address")
	}
	if _, exists := sl.accounts[trackerAddr]; exists {
		return errors.New("simulated: execution id already used")
	}

	// tracker stores the prover execution account reference
	tracker := make([]byte, solkey.PublicKeyLength)
	copy(tracker, ix.Accounts[4].Pubkey[:])
	sl.accounts[trackerAddr] = tracker

	sl.pending = append(sl.pending, pendingCallback{
		executionID: executionID,
		escrowAddr:  escrowAddr,
		receiver:    ix.Accounts[1].Pubkey,
		preimage:    append([]byte(nil), preimage...),
		due:         time.Now().Add(sl.CallbackDelay),
	})
	return nil
}

// settleDueCallbacks applies every callback whose delay elapsed: hash the
// preimage, compare against the stored commitment and release on a match.
// A mismatch consumes the callback without touching the escrow. Callers
// must hold the lock.
func (sl *SimulatedLedger) settleDueCallbacks() {
	now := time.Now()
	remaining := sl.pending[:0]
	for _, cb := range sl.pending {
		if cb.due.After(now) {
			remaining = append(remaining, cb)
			continue
		}

		raw, ok := sl.accounts[cb.escrowAddr]
		if !ok || raw[offClaimed] != 0 {
			continue
		}

		digest := sha256.Sum256(cb.preimage)
		computed := hex.EncodeToString(digest[:])
		stored := string(trimTrailingZeros(raw[offCommitment:offClaimed]))
		if computed != stored {
			continue
		}

		amount := binary.LittleEndian.Uint64(raw[offAmount:])
		raw[offClaimed] = 1
		raw[offReceiverFlag] = 1
		copy(raw[offReceiver:], cb.receiver[:])

		sl.lamports[cb.escrowAddr] -= amount
		sl.lamports[cb.receiver] += amount
	}
	sl.pending = remaining
}

func trimTrailingZeros(b []byte) []byte {
	end := len(b)
	for end > 0 && b[end-1] == 0 {
		end--
	}
	return b[:end]
}

var _ agreement.LedgerConnection = (*SimulatedLedger)(nil)
