package solkey

import (
	"bytes"
	"crypto/rand"
	"testing"

	"github.com/stretchr/testify/assert"
)

func randProgramID(t *testing.T) PublicKey {
	var p PublicKey
	_, err := rand.Read(p[:])
	assert.NoError(t, err)
	return p
}

func TestFindProgramAddressDeterministic(t *testing.T) {
	program := randProgramID(t)
	seeds := [][]byte{[]byte("s1")}

	addr1, bump1, err := FindProgramAddress(seeds, program)
	assert.NoError(t, err)
	addr2, bump2, err := FindProgramAddress(seeds, program)
	assert.NoError(t, err)

	assert.Equal(t, addr1, addr2)
	assert.Equal(t, bump1, bump2)
}

func TestFindProgramAddressOffCurve(t *testing.T) {
	program := randProgramID(t)

	addr, _, err := FindProgramAddress([][]byte{[]byte("escrow-seed")}, program)
	assert.NoError(t, err)
	assert.False(t, isOnCurve(addr[:]))
}

func TestCreateProgramAddressReproduces(t *testing.T) {
	program := randProgramID(t)
	seeds := [][]byte{[]byte("execution"), bytes.Repeat([]byte{7}, 32), []byte("a1b2c3d4e5f60718")}

	addr, bump, err := FindProgramAddress(seeds, program)
	assert.NoError(t, err)

	again, err := CreateProgramAddress(append(seeds, []byte{bump}), program)
	assert.NoError(t, err)
	assert.Equal(t, addr, again)
}

func TestFindProgramAddressDiffersByProgram(t *testing.T) {
	seeds := [][]byte{[]byte("same-seed")}

	addrA, _, err := FindProgramAddress(seeds, randProgramID(t))
	assert.NoError(t, err)
	addrB, _, err := FindProgramAddress(seeds, randProgramID(t))
	assert.NoError(t, err)

	assert.NotEqual(t, addrA, addrB)
}

func TestFindProgramAddressSeedLimits(t *testing.T) {
	program := randProgramID(t)

	_, _, err := FindProgramAddress([][]byte{make([]byte, 33)}, program)
	assert.ErrorIs(t, err, ErrSeedTooLong)

	tooMany := make([][]byte, MaxSeeds+1)
	for i := range tooMany {
		tooMany[i] = []byte{byte(i)}
	}
	_, _, err = FindProgramAddress(tooMany, program)
	assert.ErrorIs(t, err, ErrTooManySeeds)

	// 32-byte seeds are allowed
	_, _, err = FindProgramAddress([][]byte{make([]byte, 32)}, program)
	assert.NoError(t, err)
}

// FindProgramAddress appends the bump internally; the caller's seed slice
// must not be modified by the probing.
func TestFindProgramAddressDoesNotMutateSeeds(t *testing.T) {
	program := randProgramID(t)
	seeds := make([][]byte, 0, 4)
	seeds = append(seeds, []byte("a"), []byte("b"))

	_, _, err := FindProgramAddress(seeds, program)
	assert.NoError(t, err)
	assert.Len(t, seeds, 2)
	assert.Equal(t, []byte("a"), seeds[0])
	assert.Equal(t, []byte("b"), seeds[1])
}
