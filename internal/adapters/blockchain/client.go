package blockchain

import (
	"context"
	"fmt"
	"log/slog"
	"math/big"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"

	"github.com/p2e-inferno/chainstep/internal/config"
	"github.com/p2e-inferno/chainstep/internal/domain"
	"github.com/p2e-inferno/chainstep/internal/usecase"
)

const (
	rpcCallTimeout  = 5 * time.Second
	receiptInterval = 2 * time.Second
)

// Client implements the ChainClient interface using ethclient. It
// signs with locally held sender keys and polls for confirmations.
type Client struct {
	client   *ethclient.Client
	chainID  *big.Int
	explorer string
	senders  map[string]*config.Sender
	log      *slog.Logger
}

// NewClient creates a chain client for the configured network.
func NewClient(cfg *config.RuntimeConfig, log *slog.Logger) *Client {
	explorer := ""
	if cfg.Network != nil {
		explorer = cfg.Network.ExplorerURL
	}
	return &Client{
		explorer: explorer,
		senders:  cfg.Senders,
		log:      log.With("component", "chain"),
	}
}

// Connect establishes the RPC connection and verifies the chain ID.
func (c *Client) Connect(ctx context.Context, rpcURL string, chainID uint64) error {
	client, err := ethclient.Dial(rpcURL)
	if err != nil {
		return fmt.Errorf("failed to connect to RPC: %w", err)
	}
	c.client = client

	networkChainID, err := c.client.ChainID(ctx)
	if err != nil {
		return fmt.Errorf("failed to get chain ID: %w", err)
	}

	// Chain ID zero means trust the node.
	if chainID == 0 {
		c.chainID = networkChainID
	} else if networkChainID.Uint64() != chainID {
		return fmt.Errorf("chain ID mismatch: expected %d, got %d", chainID, networkChainID.Uint64())
	} else {
		c.chainID = new(big.Int).SetUint64(chainID)
	}

	c.log.Debug("connected", "chain_id", c.chainID.Uint64(), "rpc", rpcURL)
	return nil
}

// ChainID returns the connected chain's ID, zero before Connect.
func (c *Client) ChainID() uint64 {
	if c.chainID == nil {
		return 0
	}
	return c.chainID.Uint64()
}

// SenderAddress resolves a configured sender name to its address.
func (c *Client) SenderAddress(name string) (common.Address, error) {
	sender, err := c.resolveSender(name)
	if err != nil {
		return common.Address{}, err
	}
	return sender.Address, nil
}

// SubmitCall signs and broadcasts a call from the named sender.
func (c *Client) SubmitCall(ctx context.Context, sender string, to common.Address, calldata []byte, value *big.Int) (*domain.TxResult, error) {
	if c.client == nil {
		return nil, fmt.Errorf("not connected to blockchain")
	}
	from, err := c.resolveSender(sender)
	if err != nil {
		return nil, err
	}
	if value == nil {
		value = new(big.Int)
	}

	callCtx, cancel := context.WithTimeout(ctx, rpcCallTimeout)
	defer cancel()

	nonce, err := c.client.PendingNonceAt(callCtx, from.Address)
	if err != nil {
		return nil, fmt.Errorf("failed to get nonce: %w", err)
	}

	tipCap, err := c.client.SuggestGasTipCap(callCtx)
	if err != nil {
		return nil, fmt.Errorf("failed to get gas tip: %w", err)
	}
	head, err := c.client.HeaderByNumber(callCtx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to get head block: %w", err)
	}
	// feeCap = 2*baseFee + tip, the usual headroom for base fee swings.
	feeCap := new(big.Int).Add(
		new(big.Int).Mul(head.BaseFee, big.NewInt(2)),
		tipCap,
	)

	gasLimit, err := c.client.EstimateGas(callCtx, ethereum.CallMsg{
		From:  from.Address,
		To:    &to,
		Value: value,
		Data:  calldata,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to estimate gas: %w", err)
	}
	// Headroom for state drift between estimate and inclusion.
	gasLimit += gasLimit / 5

	tx, err := types.SignNewTx(from.Key, types.LatestSignerForChainID(c.chainID), &types.DynamicFeeTx{
		ChainID:   c.chainID,
		Nonce:     nonce,
		GasTipCap: tipCap,
		GasFeeCap: feeCap,
		Gas:       gasLimit,
		To:        &to,
		Value:     value,
		Data:      calldata,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to sign transaction: %w", err)
	}

	if err := c.client.SendTransaction(ctx, tx); err != nil {
		return nil, fmt.Errorf("failed to send transaction: %w", err)
	}

	hash := tx.Hash()
	c.log.Debug("transaction sent",
		"hash", hash.Hex(),
		"from", from.Address.Hex(),
		"to", to.Hex(),
		"nonce", nonce)

	return &domain.TxResult{
		Hash: hash,
		URL:  c.TxURL(hash),
		Wait: func(ctx context.Context) error {
			return c.waitMined(ctx, hash)
		},
	}, nil
}

// ReceiptLogs returns the event logs of a mined transaction.
func (c *Client) ReceiptLogs(ctx context.Context, txHash common.Hash) ([]*types.Log, error) {
	if c.client == nil {
		return nil, fmt.Errorf("not connected to blockchain")
	}

	ctx, cancel := context.WithTimeout(ctx, rpcCallTimeout)
	defer cancel()

	receipt, err := c.client.TransactionReceipt(ctx, txHash)
	if err != nil {
		return nil, fmt.Errorf("failed to get transaction receipt: %w", err)
	}
	return receipt.Logs, nil
}

// TxURL returns the explorer link for a transaction hash.
func (c *Client) TxURL(txHash common.Hash) string {
	if c.explorer == "" {
		return ""
	}
	return fmt.Sprintf("%s/tx/%s", strings.TrimRight(c.explorer, "/"), txHash.Hex())
}

// waitMined polls for the transaction receipt until it lands or the
// context ends, and fails on a reverted receipt.
func (c *Client) waitMined(ctx context.Context, txHash common.Hash) error {
	ticker := time.NewTicker(receiptInterval)
	defer ticker.Stop()

	for {
		receipt, err := c.client.TransactionReceipt(ctx, txHash)
		if err == nil {
			if receipt.Status != types.ReceiptStatusSuccessful {
				return fmt.Errorf("%w: %s", domain.ErrTxReverted, txHash.Hex())
			}
			return nil
		}
		if !strings.Contains(err.Error(), "not found") {
			return fmt.Errorf("failed to get transaction receipt: %w", err)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

func (c *Client) resolveSender(name string) (*config.Sender, error) {
	if name == "" {
		name = config.DefaultSenderName
	}
	if sender, ok := c.senders[name]; ok {
		return sender, nil
	}
	// Case-insensitive fallback, names come from hand-written YAML.
	nameLower := strings.ToLower(name)
	for key, sender := range c.senders {
		if strings.ToLower(key) == nameLower {
			return sender, nil
		}
	}
	return nil, fmt.Errorf("%w: %q", domain.ErrSenderNotFound, name)
}

// Ensure the adapter implements the interface
var _ usecase.ChainClient = (*Client)(nil)
