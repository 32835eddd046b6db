package config

import (
	"crypto/ecdsa"
	"time"

	"github.com/ethereum/go-ethereum/common"
)

// DefaultSenderName is the sender used when a step does not name one.
const DefaultSenderName = "user"

// SponsorSenderName is the conventional name for the gas-sponsoring
// wallet used by delegated attestations.
const SponsorSenderName = "sponsor"

// RuntimeConfig represents the complete runtime configuration
// This is injected into use cases and contains all resolved settings
type RuntimeConfig struct {
	// Core settings
	ProjectRoot string
	DataDir     string

	// Context settings
	NetworkName string
	Network     *NetworkConfig // nil if not specified

	// Execution settings
	Debug          bool
	NonInteractive bool
	JSON           bool // Output in JSON format
	Timeout        time.Duration

	// DecisionTimeout bounds the retry/cancel wait after a step fails.
	// Zero means wait indefinitely.
	DecisionTimeout time.Duration

	// Resolved configurations
	Senders   map[string]*Sender
	Contracts *ContractsConfig
	File      *ChainstepConfig
}

// NetworkConfig describes one configured network.
type NetworkConfig struct {
	Name        string `toml:"-"`
	RPCURL      string `toml:"rpc_url"`
	ChainID     uint64 `toml:"chain_id"`
	ExplorerURL string `toml:"explorer_url,omitempty"`
}

// ContractsConfig holds the per-network contract endpoints.
type ContractsConfig struct {
	Router         string `toml:"router,omitempty"`
	EAS            string `toml:"eas,omitempty"`
	SchemaRegistry string `toml:"schema_registry,omitempty"`
}

// RouterAddress returns the parsed router address, zero when unset.
func (c *ContractsConfig) RouterAddress() common.Address {
	if c == nil {
		return common.Address{}
	}
	return common.HexToAddress(c.Router)
}

// EASAddress returns the parsed EAS contract address, zero when unset.
func (c *ContractsConfig) EASAddress() common.Address {
	if c == nil {
		return common.Address{}
	}
	return common.HexToAddress(c.EAS)
}

// SchemaRegistryAddress returns the parsed schema registry address.
func (c *ContractsConfig) SchemaRegistryAddress() common.Address {
	if c == nil {
		return common.Address{}
	}
	return common.HexToAddress(c.SchemaRegistry)
}

// SenderConfig is the raw sender declaration from chainstep.toml. The
// key itself never lives in the file, only the env var naming it.
type SenderConfig struct {
	Type          string `toml:"type"`
	PrivateKeyEnv string `toml:"private_key_env,omitempty"`
}

// Sender is a resolved sender with its loaded key.
type Sender struct {
	Name    string
	Address common.Address
	Key     *ecdsa.PrivateKey
}
