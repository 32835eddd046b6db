package eas_test

import (
	"bytes"
	"encoding/hex"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/p2e-inferno/chainstep/internal/adapters/eas"
	"github.com/p2e-inferno/chainstep/internal/domain"
)

var (
	schemaUID = domain.UIDFromHash(common.HexToHash("0x5f1e2e862a2f576e7e7dcab4ab185df0fd2aa1a6ba0a7c634bc1e5c2f9f20c15"))
	recipient = common.HexToAddress("0x70997970C51812dc3A010C7d01b50e0d17dc79C8")
	attester  = common.HexToAddress("0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266")
)

func signedAttestation() *domain.DelegatedAttestation {
	sig := make([]byte, 65)
	for i := range sig {
		sig[i] = byte(i + 1)
	}
	sig[64] = 28

	return &domain.DelegatedAttestation{
		Request: domain.AttestationRequest{
			Schema:    schemaUID,
			Recipient: recipient,
			Data:      []byte{0x01, 0x02},
			Revocable: true,
		},
		Attester:  attester,
		Deadline:  1_760_000_000,
		Signature: sig,
	}
}

func TestEncodeAttestByDelegation(t *testing.T) {
	codec, err := eas.NewCodec()
	require.NoError(t, err)

	calldata, err := codec.EncodeAttestByDelegation(signedAttestation())
	require.NoError(t, err)

	require.GreaterOrEqual(t, len(calldata), 4)
	// Dynamic tuple: the first word after the selector is its offset.
	assert.Equal(t, int64(32), new(big.Int).SetBytes(calldata[4:36]).Int64())
	// The schema UID is the first field of the packed tuple.
	assert.True(t, bytes.Contains(calldata, schemaUID[:]))
	// The split signature words survive intact.
	sig := signedAttestation().Signature
	assert.True(t, bytes.Contains(calldata, sig[:32]))
	assert.True(t, bytes.Contains(calldata, sig[32:64]))
}

func TestEncodeAttestByDelegationRejectsBadSignature(t *testing.T) {
	codec, err := eas.NewCodec()
	require.NoError(t, err)

	att := signedAttestation()
	att.Signature = att.Signature[:64]

	_, err = codec.EncodeAttestByDelegation(att)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "signature must be 65 bytes")
}

// attestedTopic0 is keccak256("Attested(address,address,bytes32,bytes32)")
func attestedTopic0() common.Hash {
	return common.BytesToHash(crypto.Keccak256([]byte("Attested(address,address,bytes32,bytes32)")))
}

func registeredTopic0() common.Hash {
	return common.BytesToHash(crypto.Keccak256([]byte("Registered(bytes32,address)")))
}

func TestDecodeAttested(t *testing.T) {
	codec, err := eas.NewCodec()
	require.NoError(t, err)

	uid := common.HexToHash("0x00000000000000000000000000000000000000000000000000000000000000aa")
	logs := []*types.Log{
		// Unrelated event first; the decoder must skip it.
		{Topics: []common.Hash{common.HexToHash("0x01")}},
		{
			Topics: []common.Hash{
				attestedTopic0(),
				common.BytesToHash(recipient.Bytes()),
				common.BytesToHash(attester.Bytes()),
				common.Hash(schemaUID),
			},
			Data: uid.Bytes(),
		},
	}

	attested, err := codec.DecodeAttested(logs)
	require.NoError(t, err)

	assert.Equal(t, recipient, attested.Recipient)
	assert.Equal(t, attester, attested.Attester)
	assert.Equal(t, domain.UIDFromHash(uid), attested.UID)
	assert.Equal(t, schemaUID, attested.SchemaUID)
}

func TestDecodeAttestedNotFound(t *testing.T) {
	codec, err := eas.NewCodec()
	require.NoError(t, err)

	_, err = codec.DecodeAttested([]*types.Log{
		{Topics: []common.Hash{common.HexToHash("0x01")}},
	})
	assert.ErrorIs(t, err, domain.ErrEventNotFound)
}

func TestDecodeAttestedMalformedData(t *testing.T) {
	codec, err := eas.NewCodec()
	require.NoError(t, err)

	_, err = codec.DecodeAttested([]*types.Log{
		{
			Topics: []common.Hash{
				attestedTopic0(),
				common.BytesToHash(recipient.Bytes()),
				common.BytesToHash(attester.Bytes()),
				common.Hash(schemaUID),
			},
			Data: []byte{0x01},
		},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "malformed Attested event data")
}

func TestDecodeSchemaRegistered(t *testing.T) {
	codec, err := eas.NewCodec()
	require.NoError(t, err)

	registerer := common.HexToAddress("0x3C44CdDdB6a900fa2b585dd299e03d12FA4293BC")
	logs := []*types.Log{
		{
			Topics: []common.Hash{
				registeredTopic0(),
				common.Hash(schemaUID),
				common.BytesToHash(registerer.Bytes()),
			},
		},
	}

	registered, err := codec.DecodeSchemaRegistered(logs)
	require.NoError(t, err)
	assert.Equal(t, schemaUID, registered.UID)
	assert.Equal(t, registerer, registered.Registerer)

	_, err = codec.DecodeSchemaRegistered(nil)
	assert.ErrorIs(t, err, domain.ErrEventNotFound)
}

func TestAttestedEventSignature(t *testing.T) {
	// Guards the ABI wiring: the parsed event ID must match the
	// canonical EAS event signature.
	codec, err := eas.NewCodec()
	require.NoError(t, err)
	_ = codec

	assert.Equal(t,
		"8bf46bf4cfd674fa735a3d63ec1c9ad4153f033c290341f3a588b75685141b35",
		hex.EncodeToString(attestedTopic0().Bytes()),
	)
}
