package signing_test

import (
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/math"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/signer/core/apitypes"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/p2e-inferno/chainstep/internal/adapters/signing"
)

// Well-known anvil dev key, safe to embed.
const devKeyHex = "ac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80"

func devTypedData() apitypes.TypedData {
	return apitypes.TypedData{
		Types: apitypes.Types{
			"EIP712Domain": {
				{Name: "name", Type: "string"},
				{Name: "version", Type: "string"},
				{Name: "chainId", Type: "uint256"},
				{Name: "verifyingContract", Type: "address"},
			},
			"Message": {
				{Name: "contents", Type: "string"},
			},
		},
		PrimaryType: "Message",
		Domain: apitypes.TypedDataDomain{
			Name:              "EAS",
			Version:           "1.2.0",
			ChainId:           math.NewHexOrDecimal256(8453),
			VerifyingContract: common.HexToAddress("0x4200000000000000000000000000000000000021").Hex(),
		},
		Message: apitypes.TypedDataMessage{
			"contents": "hello",
		},
	}
}

func TestKeySignerAddress(t *testing.T) {
	key, err := crypto.HexToECDSA(devKeyHex)
	require.NoError(t, err)

	signer := signing.NewKeySigner(key)
	assert.Equal(t,
		common.HexToAddress("0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266"),
		signer.Address(),
	)
}

func TestSignTypedDataIsRecoverable(t *testing.T) {
	key, err := crypto.HexToECDSA(devKeyHex)
	require.NoError(t, err)
	signer := signing.NewKeySigner(key)

	data := devTypedData()
	signature, err := signer.SignTypedData(data)
	require.NoError(t, err)
	require.Len(t, signature, 65)

	// The recovery byte uses the on-chain 27/28 convention.
	assert.Contains(t, []byte{27, 28}, signature[64])

	// Recover the signer from the EIP-712 digest.
	digest, _, err := apitypes.TypedDataAndHash(data)
	require.NoError(t, err)

	recovery := make([]byte, 65)
	copy(recovery, signature)
	recovery[64] -= 27

	pub, err := crypto.SigToPub(digest, recovery)
	require.NoError(t, err)
	assert.Equal(t, signer.Address(), crypto.PubkeyToAddress(*pub))
}

func TestSignTypedDataIsDeterministic(t *testing.T) {
	key, err := crypto.HexToECDSA(devKeyHex)
	require.NoError(t, err)
	signer := signing.NewKeySigner(key)

	first, err := signer.SignTypedData(devTypedData())
	require.NoError(t, err)
	second, err := signer.SignTypedData(devTypedData())
	require.NoError(t, err)

	assert.Equal(t, first, second)
}
