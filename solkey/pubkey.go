package solkey

import (
	"crypto/ed25519"

	"github.com/btcsuite/btcd/btcutil/base58"
	"github.com/pkg/errors"
)

// PublicKeyLength is the raw byte length of a ledger address.
const PublicKeyLength = 32

// PublicKey is a 32-byte ledger address. Text form is base58.
type PublicKey [PublicKeyLength]byte

// SystemProgramID is the native system program (all-zero key,
// base58 "11111111111111111111111111111111").
var SystemProgramID = PublicKey{}

func (p PublicKey) String() string {
	return base58.Encode(p[:])
}

func (p PublicKey) Bytes() []byte {
	b := make([]byte, PublicKeyLength)
	copy(b, p[:])
	return b
}

func (p PublicKey) IsZero() bool {
	return p == PublicKey{}
}

// PublicKeyFromBase58 parses the base58 text form of an address.
func PublicKeyFromBase58(s string) (PublicKey, error) {
	raw := base58.Decode(s)
	if len(raw) != PublicKeyLength {
		return PublicKey{}, errors.Errorf("invalid public key %q: decoded to %d bytes, want %d", s, len(raw), PublicKeyLength)
	}
	var p PublicKey
	copy(p[:], raw)
	return p, nil
}

// PublicKeyFromBytes copies a raw 32-byte address.
func PublicKeyFromBytes(b []byte) (PublicKey, error) {
	if len(b) != PublicKeyLength {
		return PublicKey{}, errors.Errorf("invalid public key: %d bytes, want %d", len(b), PublicKeyLength)
	}
	var p PublicKey
	copy(p[:], b)
	return p, nil
}

// MustPublicKeyFromBase58 is for compile-time constants (program ids).
// Panics on malformed input.
func MustPublicKeyFromBase58(s string) PublicKey {
	p, err := PublicKeyFromBase58(s)
	if err != nil {
		panic(err)
	}
	return p
}

// PublicKeyFromEd25519 converts a standard ed25519 public key.
func PublicKeyFromEd25519(pub ed25519.PublicKey) (PublicKey, error) {
	return PublicKeyFromBytes(pub)
}
