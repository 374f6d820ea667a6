package escrowman

import (
	"crypto/sha256"
	"encoding/hex"

	"github.com/hashlock-io/escrow-go/common"
)

// CommitmentLength is the character length of a hex-encoded commitment.
const CommitmentLength = 64

// Commit produces the commitment for a secret: the SHA-256 digest of its
// UTF-8 bytes as lowercase hex. This must match what the proof-computation
// service computes over the revealed preimage, or no claim can ever settle.
func Commit(secret string) string {
	digest := sha256.Sum256([]byte(secret))
	return hex.EncodeToString(digest[:])
}

// ValidateCommitmentFormat reports whether s is exactly 64 hex characters.
// Mixed case is accepted; the program stores the commitment verbatim.
func ValidateCommitmentFormat(s string) bool {
	if len(s) != CommitmentLength {
		return false
	}
	return common.IsHexString(s)
}
