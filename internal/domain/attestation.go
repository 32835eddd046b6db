package domain

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// UID is a 32-byte EAS identifier (schema UID or attestation UID).
type UID [32]byte

// Hex returns the 0x-prefixed hex encoding of the UID.
func (u UID) Hex() string {
	return common.Hash(u).Hex()
}

// IsZero reports whether the UID is unset.
func (u UID) IsZero() bool {
	return u == UID{}
}

// UIDFromHash converts a log topic or data word into a UID.
func UIDFromHash(h common.Hash) UID {
	return UID(h)
}

// AttestationRequest describes the attestation a user wants to create.
type AttestationRequest struct {
	Schema         UID
	Recipient      common.Address
	Data           []byte
	ExpirationTime uint64
	Revocable      bool
	RefUID         UID
	Value          *big.Int
}

// DelegatedAttestation is a signed, sponsor-submittable attestation:
// the user signs the request off-chain (EIP-712) and a sponsor wallet
// submits it on-chain, paying gas on the signer's behalf.
type DelegatedAttestation struct {
	Request  AttestationRequest
	Attester common.Address
	// Deadline is the unix timestamp after which the signature is void.
	Deadline uint64
	// Signature is the 65-byte EIP-712 signature over the request.
	Signature []byte
}

// Attested is the decoded on-chain event emitted for every created
// attestation. The attestation UID lives in the event data, the schema
// UID in the indexed topics.
type Attested struct {
	Recipient common.Address
	Attester  common.Address
	UID       UID
	SchemaUID UID
}

// SchemaRegistered is the decoded event emitted when a schema is
// registered, carrying the canonical schema UID.
type SchemaRegistered struct {
	UID        UID
	Registerer common.Address
}
