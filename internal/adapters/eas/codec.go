package eas

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	"github.com/p2e-inferno/chainstep/internal/domain"
	"github.com/p2e-inferno/chainstep/internal/usecase"
)

// easABIJSON covers the delegated attestation entrypoint and the
// events we decode UIDs from.
const easABIJSON = `[
	{
		"type": "function",
		"name": "attestByDelegation",
		"stateMutability": "payable",
		"inputs": [{
			"name": "delegatedRequest",
			"type": "tuple",
			"components": [
				{"name": "schema", "type": "bytes32"},
				{"name": "data", "type": "tuple", "components": [
					{"name": "recipient", "type": "address"},
					{"name": "expirationTime", "type": "uint64"},
					{"name": "revocable", "type": "bool"},
					{"name": "refUID", "type": "bytes32"},
					{"name": "data", "type": "bytes"},
					{"name": "value", "type": "uint256"}
				]},
				{"name": "signature", "type": "tuple", "components": [
					{"name": "v", "type": "uint8"},
					{"name": "r", "type": "bytes32"},
					{"name": "s", "type": "bytes32"}
				]},
				{"name": "attester", "type": "address"},
				{"name": "deadline", "type": "uint64"}
			]
		}],
		"outputs": [{"name": "", "type": "bytes32"}]
	},
	{
		"type": "event",
		"name": "Attested",
		"inputs": [
			{"name": "recipient", "type": "address", "indexed": true},
			{"name": "attester", "type": "address", "indexed": true},
			{"name": "uid", "type": "bytes32", "indexed": false},
			{"name": "schemaUID", "type": "bytes32", "indexed": true}
		]
	},
	{
		"type": "event",
		"name": "Registered",
		"inputs": [
			{"name": "uid", "type": "bytes32", "indexed": true},
			{"name": "registerer", "type": "address", "indexed": true}
		]
	}
]`

// attestation request structs mirror the EAS tuple layout for abi.Pack.
type attestationRequestData struct {
	Recipient      common.Address
	ExpirationTime uint64
	Revocable      bool
	RefUID         [32]byte
	Data           []byte
	Value          *big.Int
}

type signatureData struct {
	V uint8
	R [32]byte
	S [32]byte
}

type delegatedAttestationRequest struct {
	Schema    [32]byte
	Data      attestationRequestData
	Signature signatureData
	Attester  common.Address
	Deadline  uint64
}

// Codec encodes delegated attestation submissions and decodes the
// resulting EAS events.
type Codec struct {
	abi abi.ABI
}

// NewCodec creates an EAS codec.
func NewCodec() (*Codec, error) {
	parsed, err := abi.JSON(strings.NewReader(easABIJSON))
	if err != nil {
		return nil, fmt.Errorf("failed to parse EAS ABI: %w", err)
	}
	return &Codec{abi: parsed}, nil
}

// EncodeAttestByDelegation packs the calldata for a sponsor-submitted
// attestation.
func (c *Codec) EncodeAttestByDelegation(att *domain.DelegatedAttestation) ([]byte, error) {
	if len(att.Signature) != 65 {
		return nil, fmt.Errorf("signature must be 65 bytes, got %d", len(att.Signature))
	}

	value := att.Request.Value
	if value == nil {
		value = new(big.Int)
	}

	request := delegatedAttestationRequest{
		Schema: att.Request.Schema,
		Data: attestationRequestData{
			Recipient:      att.Request.Recipient,
			ExpirationTime: att.Request.ExpirationTime,
			Revocable:      att.Request.Revocable,
			RefUID:         att.Request.RefUID,
			Data:           att.Request.Data,
			Value:          value,
		},
		Signature: signatureData{
			V: att.Signature[64],
			R: [32]byte(att.Signature[:32]),
			S: [32]byte(att.Signature[32:64]),
		},
		Attester: att.Attester,
		Deadline: att.Deadline,
	}

	calldata, err := c.abi.Pack("attestByDelegation", request)
	if err != nil {
		return nil, fmt.Errorf("failed to pack attestByDelegation: %w", err)
	}
	return calldata, nil
}

// DecodeAttested finds the Attested event in the logs and recovers the
// attestation and schema UIDs. The attestation UID is carried in the
// event data, the schema UID in the indexed topics.
func (c *Codec) DecodeAttested(logs []*types.Log) (*domain.Attested, error) {
	eventID := c.abi.Events["Attested"].ID
	for _, log := range logs {
		if len(log.Topics) != 4 || log.Topics[0] != eventID {
			continue
		}
		if len(log.Data) < 32 {
			return nil, fmt.Errorf("malformed Attested event data (%d bytes)", len(log.Data))
		}
		return &domain.Attested{
			Recipient: common.BytesToAddress(log.Topics[1].Bytes()),
			Attester:  common.BytesToAddress(log.Topics[2].Bytes()),
			UID:       domain.UIDFromHash(common.BytesToHash(log.Data[:32])),
			SchemaUID: domain.UIDFromHash(log.Topics[3]),
		}, nil
	}
	return nil, fmt.Errorf("%w: Attested", domain.ErrEventNotFound)
}

// DecodeSchemaRegistered finds the Registered event and recovers the
// canonical schema UID from its indexed topics.
func (c *Codec) DecodeSchemaRegistered(logs []*types.Log) (*domain.SchemaRegistered, error) {
	eventID := c.abi.Events["Registered"].ID
	for _, log := range logs {
		if len(log.Topics) != 3 || log.Topics[0] != eventID {
			continue
		}
		return &domain.SchemaRegistered{
			UID:        domain.UIDFromHash(log.Topics[1]),
			Registerer: common.BytesToAddress(log.Topics[2].Bytes()),
		}, nil
	}
	return nil, fmt.Errorf("%w: Registered", domain.ErrEventNotFound)
}

// Ensure the adapter implements the interface
var _ usecase.AttestationCodec = (*Codec)(nil)
