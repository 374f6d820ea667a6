package solkey

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPublicKeyBase58RoundTrip(t *testing.T) {
	var p PublicKey
	for i := range p {
		p[i] = byte(i)
	}

	parsed, err := PublicKeyFromBase58(p.String())
	assert.NoError(t, err)
	assert.Equal(t, p, parsed)
}

func TestSystemProgramIDString(t *testing.T) {
	assert.Equal(t, "11111111111111111111111111111111", SystemProgramID.String())
	assert.True(t, SystemProgramID.IsZero())
}

func TestPublicKeyFromBase58Invalid(t *testing.T) {
	_, err := PublicKeyFromBase58("not-a-key")
	assert.Error(t, err)

	_, err = PublicKeyFromBase58("")
	assert.Error(t, err)
}

func TestPublicKeyFromBytes(t *testing.T) {
	_, err := PublicKeyFromBytes(make([]byte, 31))
	assert.Error(t, err)

	p, err := PublicKeyFromBytes(make([]byte, 32))
	assert.NoError(t, err)
	assert.True(t, p.IsZero())
}
