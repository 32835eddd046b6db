package app

import (
	"github.com/p2e-inferno/chainstep/internal/adapters/blockchain"
	"github.com/p2e-inferno/chainstep/internal/adapters/interactive"
	"github.com/p2e-inferno/chainstep/internal/config"
	"github.com/p2e-inferno/chainstep/internal/usecase"
)

// App is the main application container that holds all use cases
type App struct {
	// Configuration
	Config *config.RuntimeConfig

	// Core flow machinery
	Engine *usecase.Engine
	Bridge *usecase.DecisionBridge

	// Use cases
	RunFlow       *usecase.RunFlow
	AssembleFlow  *usecase.AssembleFlow
	BuildSwapFlow *usecase.BuildSwapFlow
	Attest        *usecase.DelegatedAttest
	ListNetworks  *usecase.ListNetworks

	// Adapters (needed for explicit connection before flow commands)
	Chain    *blockchain.Client
	Prompter *interactive.DecisionPrompter
}

// NewApp creates a new application instance with all use cases
func NewApp(
	cfg *config.RuntimeConfig,
	engine *usecase.Engine,
	bridge *usecase.DecisionBridge,
	runFlow *usecase.RunFlow,
	assembleFlow *usecase.AssembleFlow,
	buildSwapFlow *usecase.BuildSwapFlow,
	attest *usecase.DelegatedAttest,
	listNetworks *usecase.ListNetworks,
	chain *blockchain.Client,
	prompter *interactive.DecisionPrompter,
) (*App, error) {
	return &App{
		Config:        cfg,
		Engine:        engine,
		Bridge:        bridge,
		RunFlow:       runFlow,
		AssembleFlow:  assembleFlow,
		BuildSwapFlow: buildSwapFlow,
		Attest:        attest,
		ListNetworks:  listNetworks,
		Chain:         chain,
		Prompter:      prompter,
	}, nil
}
