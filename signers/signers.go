// This file contains
// LocalSigner, an in-memory ed25519 keypair that implements the
// agreement.Signer interface. Production deployments would put a remote
// signer or an HSM behind the same interface.
package signers

import (
	"crypto/ed25519"
	"crypto/rand"

	"github.com/pkg/errors"

	"github.com/hashlock-io/escrow-go/solkey"
)

type LocalSigner struct {
	pub  solkey.PublicKey
	priv ed25519.PrivateKey
}

// NewRandomLocalSigner creates a signer with a freshly generated keypair.
func NewRandomLocalSigner() (*LocalSigner, error) {
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, errors.Wrap(err, "generate ed25519 keypair")
	}
	p, err := solkey.PublicKeyFromEd25519(pub)
	if err != nil {
		return nil, err
	}
	return &LocalSigner{pub: p, priv: priv}, nil
}

// NewLocalSigner wraps an existing ed25519 private key.
func NewLocalSigner(priv ed25519.PrivateKey) (*LocalSigner, error) {
	if len(priv) != ed25519.PrivateKeySize {
		return nil, errors.Errorf("invalid ed25519 private key length %d", len(priv))
	}
	p, err := solkey.PublicKeyFromEd25519(priv.Public().(ed25519.PublicKey))
	if err != nil {
		return nil, err
	}
	return &LocalSigner{pub: p, priv: priv}, nil
}

func (ls *LocalSigner) PublicKey() solkey.PublicKey {
	return ls.pub
}

func (ls *LocalSigner) Sign(msg []byte) ([]byte, error) {
	return ed25519.Sign(ls.priv, msg), nil
}
