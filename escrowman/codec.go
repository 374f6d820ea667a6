// Instruction and account byte layouts of the escrow program.
//
// Each encoder owns its layout end to end and validates its own length
// preconditions, instead of scattering offset arithmetic at call sites:
// a framing mistake here corrupts a money-moving transaction, so the
// layouts live in exactly one place.
package escrowman

import (
	"bytes"
	"encoding/binary"
	"unicode/utf8"

	"github.com/pkg/errors"

	"github.com/hashlock-io/escrow-go/solkey"
)

// Instruction opcodes of the escrow program.
const (
	OpOpen  byte = 0
	OpClaim byte = 1
	// opcode 2 is the proof-service callback; only the prover program ever
	// sends it, the client never encodes it.
)

// ExecutionIDLength is the fixed on-the-wire size of an execution id.
const ExecutionIDLength = 16

// EscrowAccountSize is the fixed minimum size of a persisted escrow record:
// seed(32) + amount(8) + commitment(64) + claimed(1) + receiver flag(1) +
// receiver(32) + initializer(32).
const EscrowAccountSize = 170

// Fixed offsets into a persisted escrow record.
const (
	offSeed         = 0
	offAmount       = 32
	offCommitment   = 40
	offClaimed      = 104
	offReceiverFlag = 105
	offReceiver     = 106
	offInitializer  = 138
)

// EncodeOpen builds the instruction data of the open operation:
//
//	[0][len(seed):u8][seed][len(commitment):u8][commitment][amount:u64 LE]
func EncodeOpen(seed, commitment []byte, amount uint64) ([]byte, error) {
	if len(seed) > 255 {
		return nil, errors.Wrapf(ErrFieldTooLong, "seed is %d bytes, max 255", len(seed))
	}
	if len(commitment) > 255 {
		return nil, errors.Wrapf(ErrFieldTooLong, "commitment is %d bytes, max 255", len(commitment))
	}

	data := make([]byte, 0, 1+1+len(seed)+1+len(commitment)+8)
	data = append(data, OpOpen)
	data = append(data, byte(len(seed)))
	data = append(data, seed...)
	data = append(data, byte(len(commitment)))
	data = append(data, commitment...)
	data = binary.LittleEndian.AppendUint64(data, amount)
	return data, nil
}

// EncodeClaim builds the instruction data of the claim operation:
//
//	[1][executionID:16][bump:u8][tip:u64 LE][expiry:u64 LE]
//	[len(seed):u8][seed][len(preimage):u16 LE][preimage]
//
// An execution id shorter than 16 bytes is zero padded to the fixed slot;
// a longer one is a caller error, never truncated.
func EncodeClaim(executionID []byte, bump uint8, tip, expiry uint64, seed, preimage []byte) ([]byte, error) {
	if len(executionID) > ExecutionIDLength {
		return nil, errors.Wrapf(ErrExecutionIDTooLong, "%d bytes", len(executionID))
	}
	if len(seed) > 255 {
		return nil, errors.Wrapf(ErrFieldTooLong, "seed is %d bytes, max 255", len(seed))
	}
	if len(preimage) > 65535 {
		return nil, errors.Wrapf(ErrFieldTooLong, "preimage is %d bytes, max 65535", len(preimage))
	}

	var fixedID [ExecutionIDLength]byte
	copy(fixedID[:], executionID)

	data := make([]byte, 0, 1+ExecutionIDLength+1+8+8+1+len(seed)+2+len(preimage))
	data = append(data, OpClaim)
	data = append(data, fixedID[:]...)
	data = append(data, bump)
	data = binary.LittleEndian.AppendUint64(data, tip)
	data = binary.LittleEndian.AppendUint64(data, expiry)
	data = append(data, byte(len(seed)))
	data = append(data, seed...)
	data = binary.LittleEndian.AppendUint16(data, uint16(len(preimage)))
	data = append(data, preimage...)
	return data, nil
}

// DecodeEscrowAccount parses the persisted escrow record. The input is never
// mutated and decoding twice yields equal results. The commitment slot is
// zero filled by the program, so trailing NUL bytes are trimmed before the
// hex check.
func DecodeEscrowAccount(raw []byte) (*EscrowAccount, error) {
	if len(raw) < EscrowAccountSize {
		return nil, errors.Wrapf(ErrTruncatedAccount, "%d bytes, need %d", len(raw), EscrowAccountSize)
	}

	acc := &EscrowAccount{}
	copy(acc.Seed[:], raw[offSeed:offAmount])
	acc.Amount = binary.LittleEndian.Uint64(raw[offAmount:offCommitment])

	commitment := bytes.TrimRight(raw[offCommitment:offClaimed], "\x00")
	if !utf8.Valid(commitment) || !ValidateCommitmentFormat(string(commitment)) {
		return nil, errors.Wrapf(ErrMalformedCommitment, "%q", commitment)
	}
	acc.Commitment = string(commitment)

	acc.IsClaimed = raw[offClaimed] != 0

	if raw[offReceiverFlag] != 0 {
		receiver, err := solkey.PublicKeyFromBytes(raw[offReceiver:offInitializer])
		if err != nil {
			return nil, err
		}
		acc.Receiver = &receiver
	}

	initializer, err := solkey.PublicKeyFromBytes(raw[offInitializer:EscrowAccountSize])
	if err != nil {
		return nil, err
	}
	acc.Initializer = initializer

	return acc, nil
}
