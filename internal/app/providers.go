package app

import (
	"log/slog"

	"github.com/p2e-inferno/chainstep/internal/config"
	"github.com/p2e-inferno/chainstep/internal/usecase"
)

// ProvideRunFlow constructs the flow runner with the persistence
// directory taken from the runtime configuration.
func ProvideRunFlow(
	engine *usecase.Engine,
	bridge *usecase.DecisionBridge,
	prompt usecase.DecisionPrompt,
	sink usecase.ProgressSink,
	cfg *config.RuntimeConfig,
	log *slog.Logger,
) *usecase.RunFlow {
	return usecase.NewRunFlow(engine, bridge, prompt, sink, cfg.DataDir, log)
}
