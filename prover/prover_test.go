package prover

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/hashlock-io/escrow-go/common"
	"github.com/hashlock-io/escrow-go/solkey"
)

func testConfig() *Config {
	var program solkey.PublicKey
	copy(program[:], "prover-program-for-tests........")
	return &Config{
		ProgramID: program,
		ImageID:   "75029efa53432a9030e5e76d58fb34dfa786cd0f6182ed0741d635ff5e4f0341",
	}
}

func TestNewExecutionID(t *testing.T) {
	id := NewExecutionID()
	assert.True(t, common.IsHexString(string(id[:])))

	// ids must be fresh per attempt
	other := NewExecutionID()
	assert.NotEqual(t, id, other)
}

func TestExecutionAddressDeterministic(t *testing.T) {
	cfg := testConfig()
	requester := solkey.PublicKey{1, 2, 3}
	id := NewExecutionID()

	addr1, bump1, err := cfg.ExecutionAddress(requester, id)
	assert.NoError(t, err)
	addr2, bump2, err := cfg.ExecutionAddress(requester, id)
	assert.NoError(t, err)
	assert.Equal(t, addr1, addr2)
	assert.Equal(t, bump1, bump2)

	// a different requester or id lands elsewhere
	addr3, _, err := cfg.ExecutionAddress(solkey.PublicKey{9}, id)
	assert.NoError(t, err)
	assert.NotEqual(t, addr1, addr3)

	addr4, _, err := cfg.ExecutionAddress(requester, NewExecutionID())
	assert.NoError(t, err)
	assert.NotEqual(t, addr1, addr4)
}

func TestDeploymentAddressDeterministic(t *testing.T) {
	cfg := testConfig()

	addr1, _, err := cfg.DeploymentAddress()
	assert.NoError(t, err)
	addr2, _, err := cfg.DeploymentAddress()
	assert.NoError(t, err)
	assert.Equal(t, addr1, addr2)

	other := testConfig()
	other.ImageID = "00" + cfg.ImageID[2:]
	addr3, _, err := other.DeploymentAddress()
	assert.NoError(t, err)
	assert.NotEqual(t, addr1, addr3)
}
