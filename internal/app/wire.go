//go:build wireinject
// +build wireinject

package app

import (
	"github.com/google/wire"
	"github.com/spf13/viper"

	"github.com/p2e-inferno/chainstep/internal/adapters"
	"github.com/p2e-inferno/chainstep/internal/config"
	"github.com/p2e-inferno/chainstep/internal/logging"
	"github.com/p2e-inferno/chainstep/internal/usecase"
)

// InitApp creates a fully wired App instance
func InitApp(v *viper.Viper, sink usecase.ProgressSink) (*App, error) {
	wire.Build(
		// Configuration and logging
		config.Provider,
		logging.NewLogger,

		// Adapters
		adapters.AllAdapters,

		// Flow machinery
		usecase.NewEngine,
		usecase.NewDecisionBridge,
		ProvideRunFlow,

		// Use cases
		usecase.NewBuildSwapFlow,
		usecase.NewDelegatedAttest,
		usecase.NewAssembleFlow,
		usecase.NewListNetworks,

		// App
		NewApp,
	)
	return nil, nil
}
