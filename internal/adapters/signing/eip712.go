package signing

import (
	"crypto/ecdsa"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/signer/core/apitypes"

	"github.com/p2e-inferno/chainstep/internal/usecase"
)

// KeySigner signs EIP-712 typed data with a locally held private key.
type KeySigner struct {
	key     *ecdsa.PrivateKey
	address common.Address
}

// NewKeySigner creates a signer from a private key. A nil key builds
// an unkeyed signer whose SignTypedData fails; management commands run
// without sender keys configured.
func NewKeySigner(key *ecdsa.PrivateKey) *KeySigner {
	s := &KeySigner{key: key}
	if key != nil {
		s.address = crypto.PubkeyToAddress(key.PublicKey)
	}
	return s
}

// Address returns the signer's address.
func (s *KeySigner) Address() common.Address {
	return s.address
}

// SignTypedData hashes the typed data per EIP-712 and signs the
// digest. The recovery byte is shifted to the 27/28 convention
// contracts expect.
func (s *KeySigner) SignTypedData(data apitypes.TypedData) ([]byte, error) {
	if s.key == nil {
		return nil, fmt.Errorf("no signing key configured")
	}
	digest, _, err := apitypes.TypedDataAndHash(data)
	if err != nil {
		return nil, fmt.Errorf("failed to hash typed data: %w", err)
	}

	signature, err := crypto.Sign(digest, s.key)
	if err != nil {
		return nil, fmt.Errorf("failed to sign digest: %w", err)
	}
	signature[64] += 27

	return signature, nil
}

// Ensure the adapter implements the interface
var _ usecase.TypedDataSigner = (*KeySigner)(nil)
