package usecase_test

import (
	"context"
	"errors"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/p2e-inferno/chainstep/internal/domain"
	"github.com/p2e-inferno/chainstep/internal/usecase"
)

var (
	testRouter   = common.HexToAddress("0x2626664c2603336E57B271c5C0b26F421741e481")
	testTokenIn  = common.HexToAddress("0x833589fCD6eDb6E08f4c7C32D4f71b54bdA02913")
	testTokenOut = common.HexToAddress("0x4200000000000000000000000000000000000006")
)

func testOrder() *domain.SwapOrder {
	return &domain.SwapOrder{
		TokenIn:      testTokenIn,
		TokenOut:     testTokenOut,
		AmountIn:     big.NewInt(1_000_000),
		MinAmountOut: big.NewInt(0),
		Recipient:    common.HexToAddress("0x70997970C51812dc3A010C7d01b50e0d17dc79C8"),
		Fee:          3000,
	}
}

func testContracts() usecase.ContractAddresses {
	return usecase.ContractAddresses{
		Router:         testRouter,
		EAS:            common.HexToAddress("0x4200000000000000000000000000000000000021"),
		SchemaRegistry: common.HexToAddress("0x4200000000000000000000000000000000000020"),
	}
}

func TestBuildSwapFlowStepSequence(t *testing.T) {
	client := new(MockChainClient)
	codec := new(MockSwapCodec)
	builder := usecase.NewBuildSwapFlow(client, codec, testContracts(), testLogger())

	steps, err := builder.Build(testOrder(), "user")
	require.NoError(t, err)
	require.Len(t, steps, 3)

	assert.Equal(t, "Approve 0x8335…2913", steps[0].Name)
	assert.Equal(t, "Execute swap", steps[1].Name)
	assert.Equal(t, "Confirm swap", steps[2].Name)
	for _, step := range steps {
		assert.Equal(t, domain.StepPending, step.Status)
		assert.NotEmpty(t, step.Description)
	}
}

func TestBuildSwapFlowApproveStep(t *testing.T) {
	client := new(MockChainClient)
	codec := new(MockSwapCodec)
	builder := usecase.NewBuildSwapFlow(client, codec, testContracts(), testLogger())

	order := testOrder()
	approveCalldata := []byte{0x09, 0x5e, 0xa7, 0xb3}
	codec.On("EncodeApprove", testRouter, order.AmountIn).Return(approveCalldata, nil)
	client.On("SubmitCall", mock.Anything, "user", testTokenIn, approveCalldata, (*big.Int)(nil)).
		Return(&domain.TxResult{Hash: common.HexToHash("0x01")}, nil)

	steps, err := builder.Build(order, "user")
	require.NoError(t, err)

	result, err := steps[0].Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, common.HexToHash("0x01"), result.Hash)

	codec.AssertExpectations(t)
	client.AssertExpectations(t)
}

func TestBuildSwapFlowSwapBroadcastsWithoutWaiting(t *testing.T) {
	client := new(MockChainClient)
	codec := new(MockSwapCodec)
	builder := usecase.NewBuildSwapFlow(client, codec, testContracts(), testLogger())

	order := testOrder()
	swapCalldata := []byte{0x41, 0x4b, 0xf3, 0x89}
	codec.On("EncodeExactInputSingle", order, mock.Anything).Return(swapCalldata, nil)

	waited := false
	client.On("SubmitCall", mock.Anything, "user", testRouter, swapCalldata, (*big.Int)(nil)).
		Return(&domain.TxResult{
			Hash: common.HexToHash("0x02"),
			URL:  "https://basescan.org/tx/0x02",
			Wait: func(context.Context) error { waited = true; return nil },
		}, nil)

	steps, err := builder.Build(order, "user")
	require.NoError(t, err)

	result, err := steps[1].Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, common.HexToHash("0x02"), result.Hash)
	assert.Equal(t, "https://basescan.org/tx/0x02", result.URL)
	// The swap step finishes at broadcast; confirmation belongs to the
	// next step.
	assert.Nil(t, result.Wait)
	assert.False(t, waited)

	// The confirm step waits on the captured swap transaction.
	confirmed, err := steps[2].Run(context.Background())
	require.NoError(t, err)
	assert.True(t, waited)
	assert.Equal(t, common.HexToHash("0x02"), confirmed.Hash)
}

func TestBuildSwapFlowConfirmWithoutSwap(t *testing.T) {
	client := new(MockChainClient)
	codec := new(MockSwapCodec)
	builder := usecase.NewBuildSwapFlow(client, codec, testContracts(), testLogger())

	steps, err := builder.Build(testOrder(), "user")
	require.NoError(t, err)

	_, err = steps[2].Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no swap transaction to confirm")
}

func TestBuildSwapFlowConfirmPropagatesWaitError(t *testing.T) {
	client := new(MockChainClient)
	codec := new(MockSwapCodec)
	builder := usecase.NewBuildSwapFlow(client, codec, testContracts(), testLogger())

	order := testOrder()
	codec.On("EncodeExactInputSingle", order, mock.Anything).Return([]byte{0x41}, nil)
	client.On("SubmitCall", mock.Anything, "user", testRouter, mock.Anything, (*big.Int)(nil)).
		Return(&domain.TxResult{
			Hash: common.HexToHash("0x03"),
			Wait: func(context.Context) error { return errors.New("transaction reverted") },
		}, nil)

	steps, err := builder.Build(order, "user")
	require.NoError(t, err)

	_, err = steps[1].Run(context.Background())
	require.NoError(t, err)

	_, err = steps[2].Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "transaction reverted")
}

func TestBuildSwapFlowDefaultsRecipientToSender(t *testing.T) {
	client := new(MockChainClient)
	codec := new(MockSwapCodec)
	builder := usecase.NewBuildSwapFlow(client, codec, testContracts(), testLogger())

	sender := common.HexToAddress("0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266")
	client.On("SenderAddress", "user").Return(sender, nil)

	order := testOrder()
	order.Recipient = common.Address{}
	_, err := builder.Build(order, "user")
	require.NoError(t, err)
	assert.Equal(t, sender, order.Recipient)

	client.AssertExpectations(t)
}

func TestBuildSwapFlowValidation(t *testing.T) {
	t.Run("invalid order", func(t *testing.T) {
		builder := usecase.NewBuildSwapFlow(new(MockChainClient), new(MockSwapCodec), testContracts(), testLogger())

		order := testOrder()
		order.AmountIn = big.NewInt(0)
		_, err := builder.Build(order, "user")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid swap order")
	})

	t.Run("no router configured", func(t *testing.T) {
		client := new(MockChainClient)
		client.On("ChainID").Return(uint64(8453))
		contracts := testContracts()
		contracts.Router = common.Address{}
		builder := usecase.NewBuildSwapFlow(client, new(MockSwapCodec), contracts, testLogger())

		_, err := builder.Build(testOrder(), "user")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "no router configured for chain 8453")
	})

	t.Run("sender resolution failure", func(t *testing.T) {
		client := new(MockChainClient)
		client.On("SenderAddress", "ghost").Return(common.Address{}, errors.New("unknown sender"))
		builder := usecase.NewBuildSwapFlow(client, new(MockSwapCodec), testContracts(), testLogger())

		order := testOrder()
		order.Recipient = common.Address{}
		_, err := builder.Build(order, "ghost")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to resolve swap recipient")
	})
}
