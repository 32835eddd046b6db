package usecase_test

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/signer/core/apitypes"
	"github.com/stretchr/testify/mock"

	"github.com/p2e-inferno/chainstep/internal/domain"
)

// MockChainClient is a mock implementation of ChainClient
type MockChainClient struct {
	mock.Mock
}

func (m *MockChainClient) SubmitCall(ctx context.Context, sender string, to common.Address, calldata []byte, value *big.Int) (*domain.TxResult, error) {
	args := m.Called(ctx, sender, to, calldata, value)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.TxResult), args.Error(1)
}

func (m *MockChainClient) ReceiptLogs(ctx context.Context, txHash common.Hash) ([]*types.Log, error) {
	args := m.Called(ctx, txHash)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*types.Log), args.Error(1)
}

func (m *MockChainClient) ChainID() uint64 {
	args := m.Called()
	return args.Get(0).(uint64)
}

func (m *MockChainClient) SenderAddress(name string) (common.Address, error) {
	args := m.Called(name)
	return args.Get(0).(common.Address), args.Error(1)
}

func (m *MockChainClient) TxURL(txHash common.Hash) string {
	args := m.Called(txHash)
	return args.String(0)
}

// MockSwapCodec is a mock implementation of SwapCodec
type MockSwapCodec struct {
	mock.Mock
}

func (m *MockSwapCodec) EncodeApprove(spender common.Address, amount *big.Int) ([]byte, error) {
	args := m.Called(spender, amount)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func (m *MockSwapCodec) EncodeExactInputSingle(order *domain.SwapOrder, deadline *big.Int) ([]byte, error) {
	args := m.Called(order, deadline)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

// MockAttestationCodec is a mock implementation of AttestationCodec
type MockAttestationCodec struct {
	mock.Mock
}

func (m *MockAttestationCodec) EncodeAttestByDelegation(att *domain.DelegatedAttestation) ([]byte, error) {
	args := m.Called(att)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func (m *MockAttestationCodec) DecodeAttested(logs []*types.Log) (*domain.Attested, error) {
	args := m.Called(logs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Attested), args.Error(1)
}

func (m *MockAttestationCodec) DecodeSchemaRegistered(logs []*types.Log) (*domain.SchemaRegistered, error) {
	args := m.Called(logs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.SchemaRegistered), args.Error(1)
}

// MockTypedDataSigner is a mock implementation of TypedDataSigner
type MockTypedDataSigner struct {
	mock.Mock
}

func (m *MockTypedDataSigner) SignTypedData(data apitypes.TypedData) ([]byte, error) {
	args := m.Called(data)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func (m *MockTypedDataSigner) Address() common.Address {
	args := m.Called()
	return args.Get(0).(common.Address)
}
