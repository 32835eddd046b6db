package dex

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"

	"github.com/p2e-inferno/chainstep/internal/domain"
	"github.com/p2e-inferno/chainstep/internal/usecase"
)

// routerABIJSON covers the two calls a swap flow makes: the ERC-20
// approval and the router's exact-input single-hop swap.
const routerABIJSON = `[
	{
		"type": "function",
		"name": "approve",
		"stateMutability": "nonpayable",
		"inputs": [
			{"name": "spender", "type": "address"},
			{"name": "amount", "type": "uint256"}
		],
		"outputs": [{"name": "", "type": "bool"}]
	},
	{
		"type": "function",
		"name": "exactInputSingle",
		"stateMutability": "payable",
		"inputs": [{
			"name": "params",
			"type": "tuple",
			"components": [
				{"name": "tokenIn", "type": "address"},
				{"name": "tokenOut", "type": "address"},
				{"name": "fee", "type": "uint24"},
				{"name": "recipient", "type": "address"},
				{"name": "deadline", "type": "uint256"},
				{"name": "amountIn", "type": "uint256"},
				{"name": "amountOutMinimum", "type": "uint256"},
				{"name": "sqrtPriceLimitX96", "type": "uint160"}
			]
		}],
		"outputs": [{"name": "amountOut", "type": "uint256"}]
	}
]`

// exactInputSingleParams mirrors the router tuple layout for abi.Pack.
type exactInputSingleParams struct {
	TokenIn           common.Address
	TokenOut          common.Address
	Fee               *big.Int
	Recipient         common.Address
	Deadline          *big.Int
	AmountIn          *big.Int
	AmountOutMinimum  *big.Int
	SqrtPriceLimitX96 *big.Int
}

// Codec encodes approval and swap calldata for the DEX router.
type Codec struct {
	abi abi.ABI
}

// NewCodec creates a router codec.
func NewCodec() (*Codec, error) {
	parsed, err := abi.JSON(strings.NewReader(routerABIJSON))
	if err != nil {
		return nil, fmt.Errorf("failed to parse router ABI: %w", err)
	}
	return &Codec{abi: parsed}, nil
}

// EncodeApprove packs an ERC-20 approve call.
func (c *Codec) EncodeApprove(spender common.Address, amount *big.Int) ([]byte, error) {
	calldata, err := c.abi.Pack("approve", spender, amount)
	if err != nil {
		return nil, fmt.Errorf("failed to pack approve: %w", err)
	}
	return calldata, nil
}

// EncodeExactInputSingle packs a single-hop exact-input swap through
// the router.
func (c *Codec) EncodeExactInputSingle(order *domain.SwapOrder, deadline *big.Int) ([]byte, error) {
	if err := order.Validate(); err != nil {
		return nil, err
	}
	if order.Recipient == (common.Address{}) {
		return nil, fmt.Errorf("%w: swap recipient must be set", domain.ErrInvalidAddress)
	}

	calldata, err := c.abi.Pack("exactInputSingle", exactInputSingleParams{
		TokenIn:           order.TokenIn,
		TokenOut:          order.TokenOut,
		Fee:               big.NewInt(int64(order.Fee)),
		Recipient:         order.Recipient,
		Deadline:          deadline,
		AmountIn:          order.AmountIn,
		AmountOutMinimum:  order.MinAmountOut,
		SqrtPriceLimitX96: new(big.Int),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to pack exactInputSingle: %w", err)
	}
	return calldata, nil
}

// Ensure the adapter implements the interface
var _ usecase.SwapCodec = (*Codec)(nil)
