// Package prover derives the addresses of the external proof-computation
// program that verifies claim preimages. The escrow program forwards each
// claim to the prover and receives a callback with the computed digest; the
// client only needs the prover's derived accounts to reference them in the
// claim instruction. All derivations are pure functions of public inputs.
package prover

import (
	"crypto/sha256"
	"encoding/hex"

	"github.com/hashlock-io/escrow-go/common"
	"github.com/hashlock-io/escrow-go/solkey"
)

// Seed labels fixed by the prover program.
const (
	executionLabel  = "execution"
	deploymentLabel = "deployment"
)

// Config identifies one deployment of the prover program and the compute
// image that hashes preimages.
type Config struct {
	// ProgramID is the deployed prover program.
	ProgramID solkey.PublicKey

	// ImageID identifies the compute image whose output the escrow program
	// trusts. It is itself a hex digest string fixed at image build time.
	ImageID string
}

// ExecutionAddress derives the prover-side account of one execution request:
// seeds ["execution", requester, executionID] under the prover program.
func (c *Config) ExecutionAddress(requester solkey.PublicKey, executionID [16]byte) (solkey.PublicKey, uint8, error) {
	return solkey.FindProgramAddress(
		[][]byte{[]byte(executionLabel), requester[:], executionID[:]},
		c.ProgramID,
	)
}

// DeploymentAddress derives the prover-side account holding the compute
// image deployment: seeds ["deployment", SHA-256(imageID)]. The identifier
// is hashed because the raw 64-character string would exceed the 32-byte
// seed cap.
func (c *Config) DeploymentAddress() (solkey.PublicKey, uint8, error) {
	digest := sha256.Sum256([]byte(c.ImageID))
	return solkey.FindProgramAddress(
		[][]byte{[]byte(deploymentLabel), digest[:]},
		c.ProgramID,
	)
}

// NewExecutionID generates a fresh 16-byte execution id: 8 random bytes,
// hex encoded. The result is printable UTF-8, which the escrow program
// requires when it parses the id back out of the instruction data.
func NewExecutionID() [16]byte {
	var id [16]byte
	raw := common.RandBytes(8)
	hex.Encode(id[:], raw)
	return id
}
