package usecase_test

import (
	"context"
	"errors"
	"math/big"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/signer/core/apitypes"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/p2e-inferno/chainstep/internal/domain"
	"github.com/p2e-inferno/chainstep/internal/usecase"
)

var (
	testAttester  = common.HexToAddress("0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266")
	testRecipient = common.HexToAddress("0x70997970C51812dc3A010C7d01b50e0d17dc79C8")
	testSchema    = domain.UIDFromHash(common.HexToHash("0x5f1e2e862a2f576e7e7dcab4ab185df0fd2aa1a6ba0a7c634bc1e5c2f9f20c15"))
	testSignature = func() []byte {
		sig := make([]byte, 65)
		for i := range sig {
			sig[i] = byte(i)
		}
		sig[64] = 27
		return sig
	}()
)

func testAttestParams() usecase.AttestParams {
	return usecase.AttestParams{
		Schema:    testSchema,
		Recipient: testRecipient,
		Data:      []byte{0x01, 0x02},
		Revocable: true,
		Sponsor:   "sponsor",
	}
}

func newTestAttest(client *MockChainClient, signer *MockTypedDataSigner, codec *MockAttestationCodec) *usecase.DelegatedAttest {
	return usecase.NewDelegatedAttest(client, signer, codec, testContracts(), testLogger())
}

func TestDelegatedAttestPrepare(t *testing.T) {
	client := new(MockChainClient)
	signer := new(MockTypedDataSigner)
	codec := new(MockAttestationCodec)
	attest := newTestAttest(client, signer, codec)

	client.On("ChainID").Return(uint64(8453))
	signer.On("Address").Return(testAttester)

	var signed apitypes.TypedData
	signer.On("SignTypedData", mock.Anything).Run(func(args mock.Arguments) {
		signed = args.Get(0).(apitypes.TypedData)
	}).Return(testSignature, nil)

	att, err := attest.Prepare(testAttestParams())
	require.NoError(t, err)

	assert.Equal(t, testSchema, att.Request.Schema)
	assert.Equal(t, testRecipient, att.Request.Recipient)
	assert.Equal(t, testAttester, att.Attester)
	assert.Equal(t, testSignature, att.Signature)
	assert.True(t, att.Request.Revocable)

	// Deadline defaults to roughly one hour out.
	expected := uint64(time.Now().Add(time.Hour).Unix())
	assert.InDelta(t, expected, att.Deadline, 5)

	// The typed data must match what the EAS contract verifies.
	assert.Equal(t, "Attest", signed.PrimaryType)
	assert.Equal(t, "EAS", signed.Domain.Name)
	assert.Equal(t, "1.2.0", signed.Domain.Version)
	assert.Equal(t, testContracts().EAS.Hex(), signed.Domain.VerifyingContract)
	assert.Equal(t, testSchema.Hex(), signed.Message["schema"])
	assert.Equal(t, "0", signed.Message["nonce"])
}

func TestDelegatedAttestPrepareExplicitDeadlineAndNonce(t *testing.T) {
	client := new(MockChainClient)
	signer := new(MockTypedDataSigner)
	codec := new(MockAttestationCodec)
	attest := newTestAttest(client, signer, codec)

	client.On("ChainID").Return(uint64(8453))
	signer.On("Address").Return(testAttester)

	var signed apitypes.TypedData
	signer.On("SignTypedData", mock.Anything).Run(func(args mock.Arguments) {
		signed = args.Get(0).(apitypes.TypedData)
	}).Return(testSignature, nil)

	params := testAttestParams()
	params.Deadline = 1700000000
	params.Nonce = big.NewInt(7)

	att, err := attest.Prepare(params)
	require.NoError(t, err)
	assert.Equal(t, uint64(1700000000), att.Deadline)
	assert.Equal(t, "7", signed.Message["nonce"])
	assert.Equal(t, "1700000000", signed.Message["deadline"])
}

func TestDelegatedAttestPrepareValidation(t *testing.T) {
	t.Run("no EAS configured", func(t *testing.T) {
		client := new(MockChainClient)
		client.On("ChainID").Return(uint64(1))
		contracts := testContracts()
		contracts.EAS = common.Address{}
		attest := usecase.NewDelegatedAttest(client, new(MockTypedDataSigner), new(MockAttestationCodec), contracts, testLogger())

		_, err := attest.Prepare(testAttestParams())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "no EAS contract configured")
	})

	t.Run("missing schema", func(t *testing.T) {
		attest := newTestAttest(new(MockChainClient), new(MockTypedDataSigner), new(MockAttestationCodec))

		params := testAttestParams()
		params.Schema = domain.UID{}
		_, err := attest.Prepare(params)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "schema UID is required")
	})

	t.Run("signing failure", func(t *testing.T) {
		client := new(MockChainClient)
		signer := new(MockTypedDataSigner)
		client.On("ChainID").Return(uint64(8453))
		signer.On("Address").Return(testAttester)
		signer.On("SignTypedData", mock.Anything).Return(nil, errors.New("hardware wallet locked"))
		attest := newTestAttest(client, signer, new(MockAttestationCodec))

		_, err := attest.Prepare(testAttestParams())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to sign attestation")
	})
}

func TestDelegatedAttestFlow(t *testing.T) {
	client := new(MockChainClient)
	signer := new(MockTypedDataSigner)
	codec := new(MockAttestationCodec)
	attest := newTestAttest(client, signer, codec)

	client.On("ChainID").Return(uint64(8453))
	signer.On("Address").Return(testAttester)
	signer.On("SignTypedData", mock.Anything).Return(testSignature, nil)

	calldata := []byte{0x3c, 0x04, 0x27, 0x15}
	codec.On("EncodeAttestByDelegation", mock.MatchedBy(func(att *domain.DelegatedAttestation) bool {
		return att.Request.Schema == testSchema && att.Attester == testAttester
	})).Return(calldata, nil)

	txHash := common.HexToHash("0x0a")
	waited := false
	client.On("SubmitCall", mock.Anything, "sponsor", testContracts().EAS, calldata, (*big.Int)(nil)).
		Return(&domain.TxResult{
			Hash: txHash,
			URL:  "https://basescan.org/tx/0x0a",
			Wait: func(context.Context) error { waited = true; return nil },
		}, nil)

	receiptLogs := []*types.Log{{Address: testContracts().EAS}}
	client.On("ReceiptLogs", mock.Anything, txHash).Return(receiptLogs, nil)

	uid := domain.UIDFromHash(common.HexToHash("0xbeef"))
	codec.On("DecodeAttested", receiptLogs).Return(&domain.Attested{
		Recipient: testRecipient,
		Attester:  testAttester,
		UID:       uid,
		SchemaUID: testSchema,
	}, nil)

	steps, outcome := attest.BuildFlow(testAttestParams())
	require.Len(t, steps, 3)
	assert.Equal(t, "Sign attestation", steps[0].Name)
	assert.Equal(t, "Submit attestation", steps[1].Name)
	assert.Equal(t, "Confirm attestation", steps[2].Name)

	ctx := context.Background()

	// Signing is off-chain, so there is no transaction result.
	result, err := steps[0].Run(ctx)
	require.NoError(t, err)
	assert.Nil(t, result)

	result, err = steps[1].Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, txHash, result.Hash)
	assert.False(t, waited)

	result, err = steps[2].Run(ctx)
	require.NoError(t, err)
	assert.True(t, waited)
	assert.Equal(t, txHash, result.Hash)

	assert.Equal(t, uid, outcome.UID)
	assert.Equal(t, testSchema, outcome.SchemaUID)
	assert.Equal(t, testAttester, outcome.Attester)
	assert.Equal(t, txHash, outcome.TxHash)
	assert.Equal(t, "https://basescan.org/tx/0x0a", outcome.TxURL)

	client.AssertExpectations(t)
	codec.AssertExpectations(t)
}

func TestDelegatedAttestFlowConfirmBeforeSubmit(t *testing.T) {
	attest := newTestAttest(new(MockChainClient), new(MockTypedDataSigner), new(MockAttestationCodec))

	steps, _ := attest.BuildFlow(testAttestParams())
	_, err := steps[2].Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no attestation transaction to confirm")
}

func TestDelegatedAttestFlowDecodeFailureSurfaces(t *testing.T) {
	client := new(MockChainClient)
	signer := new(MockTypedDataSigner)
	codec := new(MockAttestationCodec)
	attest := newTestAttest(client, signer, codec)

	client.On("ChainID").Return(uint64(8453))
	signer.On("Address").Return(testAttester)
	signer.On("SignTypedData", mock.Anything).Return(testSignature, nil)
	codec.On("EncodeAttestByDelegation", mock.Anything).Return([]byte{0x01}, nil)

	txHash := common.HexToHash("0x0b")
	client.On("SubmitCall", mock.Anything, "sponsor", testContracts().EAS, mock.Anything, (*big.Int)(nil)).
		Return(&domain.TxResult{Hash: txHash}, nil)
	client.On("ReceiptLogs", mock.Anything, txHash).Return([]*types.Log{}, nil)
	codec.On("DecodeAttested", mock.Anything).Return(nil, domain.ErrEventNotFound)

	steps, _ := attest.BuildFlow(testAttestParams())
	ctx := context.Background()
	for _, step := range steps[:2] {
		_, err := step.Run(ctx)
		require.NoError(t, err)
	}

	_, err := steps[2].Run(ctx)
	require.ErrorIs(t, err, domain.ErrEventNotFound)
}
