package domain

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// SwapOrder describes a single-hop exact-input swap through the
// configured DEX router.
type SwapOrder struct {
	TokenIn      common.Address
	TokenOut     common.Address
	AmountIn     *big.Int
	MinAmountOut *big.Int
	Recipient    common.Address
	// Fee is the pool fee tier in hundredths of a basis point
	// (e.g. 3000 = 0.3%).
	Fee uint32
}

// Validate checks the order for obvious mistakes before any
// transaction is built.
func (o *SwapOrder) Validate() error {
	if o.TokenIn == (common.Address{}) || o.TokenOut == (common.Address{}) {
		return fmt.Errorf("%w: token addresses must be set", ErrInvalidAddress)
	}
	if o.TokenIn == o.TokenOut {
		return fmt.Errorf("token in and token out are the same (%s)", o.TokenIn.Hex())
	}
	if o.AmountIn == nil || o.AmountIn.Sign() <= 0 {
		return fmt.Errorf("amount in must be positive")
	}
	if o.MinAmountOut == nil || o.MinAmountOut.Sign() < 0 {
		return fmt.Errorf("min amount out must be zero or positive")
	}
	return nil
}
