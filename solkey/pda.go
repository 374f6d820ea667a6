package solkey

import (
	"crypto/sha256"

	"filippo.io/edwards25519"
	"github.com/pkg/errors"
)

// Program-derived address rules of the target ledger: an address owned by a
// program rather than a keypair must NOT be a valid curve point. The search
// probes a one-byte bump from 255 downwards until the candidate hash falls
// off the curve.

const (
	// MaxSeeds is the maximum number of seeds in one derivation.
	MaxSeeds = 16
	// MaxSeedLength is the maximum byte length of a single seed.
	MaxSeedLength = 32
)

// pdaMarker terminates the hashed preimage so program addresses can never
// collide with anything hashed under a different scheme.
var pdaMarker = []byte("ProgramDerivedAddress")

var (
	ErrDerivationExhausted = errors.New("unable to find a viable program address bump")
	ErrSeedTooLong         = errors.New("seed exceeds maximum length")
	ErrTooManySeeds        = errors.New("too many seeds")
	errInvalidDerived      = errors.New("derived address falls on the curve")
)

// CreateProgramAddress derives the program address for the exact seed list.
// It fails with errInvalidDerived when the candidate is a valid curve point;
// callers normally use FindProgramAddress instead, which appends the bump.
func CreateProgramAddress(seeds [][]byte, program PublicKey) (PublicKey, error) {
	if len(seeds) > MaxSeeds {
		return PublicKey{}, errors.Wrapf(ErrTooManySeeds, "%d seeds", len(seeds))
	}

	h := sha256.New()
	for i, seed := range seeds {
		if len(seed) > MaxSeedLength {
			return PublicKey{}, errors.Wrapf(ErrSeedTooLong, "seed %d is %d bytes", i, len(seed))
		}
		h.Write(seed)
	}
	h.Write(program[:])
	h.Write(pdaMarker)

	var candidate PublicKey
	copy(candidate[:], h.Sum(nil))

	if isOnCurve(candidate[:]) {
		return PublicKey{}, errInvalidDerived
	}
	return candidate, nil
}

// FindProgramAddress probes bump 255..0 and returns the first off-curve
// address together with the bump that produced it. Deterministic: the same
// seeds and program id always yield the same pair. ErrDerivationExhausted is
// astronomically unlikely but reported rather than panicking.
func FindProgramAddress(seeds [][]byte, program PublicKey) (PublicKey, uint8, error) {
	for bump := 255; bump >= 0; bump-- {
		addr, err := CreateProgramAddress(append(seeds[:len(seeds):len(seeds)], []byte{byte(bump)}), program)
		if err == nil {
			return addr, uint8(bump), nil
		}
		if !errors.Is(err, errInvalidDerived) {
			return PublicKey{}, 0, err
		}
	}
	return PublicKey{}, 0, ErrDerivationExhausted
}

// isOnCurve reports whether b decodes as a valid ed25519 curve point.
func isOnCurve(b []byte) bool {
	_, err := new(edwards25519.Point).SetBytes(b)
	return err == nil
}
