package adapters

import (
	"github.com/google/wire"
	"github.com/p2e-inferno/chainstep/internal/adapters/blockchain"
	"github.com/p2e-inferno/chainstep/internal/adapters/dex"
	"github.com/p2e-inferno/chainstep/internal/adapters/eas"
	"github.com/p2e-inferno/chainstep/internal/adapters/interactive"
	"github.com/p2e-inferno/chainstep/internal/adapters/signing"
	"github.com/p2e-inferno/chainstep/internal/config"
	"github.com/p2e-inferno/chainstep/internal/usecase"
)

// ProvideContractAddresses extracts the resolved contract endpoints
// from the runtime configuration. Unset contracts stay zero; the use
// cases that need them validate at call time.
func ProvideContractAddresses(cfg *config.RuntimeConfig) usecase.ContractAddresses {
	addrs := usecase.ContractAddresses{}
	if cfg.Contracts != nil {
		addrs.Router = cfg.Contracts.RouterAddress()
		addrs.EAS = cfg.Contracts.EASAddress()
		addrs.SchemaRegistry = cfg.Contracts.SchemaRegistryAddress()
	}
	return addrs
}

// ProvideUserSigner builds the EIP-712 signer from the default
// sender's key. Management commands run with sender resolution skipped
// and get an unkeyed signer that fails at signing time instead.
func ProvideUserSigner(cfg *config.RuntimeConfig) *signing.KeySigner {
	sender, ok := cfg.Senders[config.DefaultSenderName]
	if !ok {
		return signing.NewKeySigner(nil)
	}
	return signing.NewKeySigner(sender.Key)
}

// BlockchainSet provides the ethclient-backed chain adapter
var BlockchainSet = wire.NewSet(
	blockchain.NewClient,
	wire.Bind(new(usecase.ChainClient), new(*blockchain.Client)),
)

// CodecSet provides the ABI codecs for swap and attestation calldata
var CodecSet = wire.NewSet(
	dex.NewCodec,
	wire.Bind(new(usecase.SwapCodec), new(*dex.Codec)),

	eas.NewCodec,
	wire.Bind(new(usecase.AttestationCodec), new(*eas.Codec)),
)

// SigningSet provides the typed data signer
var SigningSet = wire.NewSet(
	ProvideUserSigner,
	wire.Bind(new(usecase.TypedDataSigner), new(*signing.KeySigner)),
)

// InteractiveSet provides interactive implementations
var InteractiveSet = wire.NewSet(
	interactive.NewDecisionPrompter,
	wire.Bind(new(usecase.DecisionPrompt), new(*interactive.DecisionPrompter)),
)

// AllAdapters includes all adapter sets
var AllAdapters = wire.NewSet(
	ProvideContractAddresses,

	BlockchainSet,
	CodecSet,
	SigningSet,
	InteractiveSet,
)
