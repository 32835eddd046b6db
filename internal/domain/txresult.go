package domain

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
)

// TxResult is returned by a step's run function once the underlying
// transaction has been submitted.
type TxResult struct {
	Hash common.Hash
	// URL is the explorer link for the transaction, empty if the
	// network has no explorer configured.
	URL string
	// Wait blocks until the transaction is confirmed on-chain. Nil for
	// actions that have nothing to confirm (e.g. off-chain signing).
	Wait func(ctx context.Context) error
}

// Confirm waits for on-chain confirmation if the result carries a wait
// function, and is a no-op otherwise.
func (r *TxResult) Confirm(ctx context.Context) error {
	if r == nil || r.Wait == nil {
		return nil
	}
	return r.Wait(ctx)
}
