package usecase

import (
	"fmt"
	"math/big"
	"os"

	"github.com/ethereum/go-ethereum/common"
	"gopkg.in/yaml.v3"

	"github.com/p2e-inferno/chainstep/internal/domain"
)

// Flow step action kinds.
const (
	ActionApprove = "approve"
	ActionSwap    = "swap"
	ActionAttest  = "attest"
	ActionCall    = "call"
)

var knownActions = map[string]bool{
	ActionApprove: true,
	ActionSwap:    true,
	ActionAttest:  true,
	ActionCall:    true,
}

// FlowConfig is the top-level flow definition parsed from YAML.
type FlowConfig struct {
	Name    string            `yaml:"name"`
	Network string            `yaml:"network,omitempty"`
	Steps   []*FlowStepConfig `yaml:"steps"`
}

// FlowStepConfig declares one step of a flow. Which fields are
// required depends on the action kind.
type FlowStepConfig struct {
	Name   string `yaml:"name"`
	Action string `yaml:"action"`
	// Sender names the configured wallet to submit from; empty means
	// the default user sender.
	Sender string `yaml:"sender,omitempty"`

	// approve
	Token   string `yaml:"token,omitempty"`
	Spender string `yaml:"spender,omitempty"`
	Amount  string `yaml:"amount,omitempty"`

	// swap
	TokenIn      string `yaml:"token_in,omitempty"`
	TokenOut     string `yaml:"token_out,omitempty"`
	AmountIn     string `yaml:"amount_in,omitempty"`
	MinAmountOut string `yaml:"min_amount_out,omitempty"`
	Fee          uint32 `yaml:"fee,omitempty"`

	// attest
	Schema    string `yaml:"schema,omitempty"`
	Recipient string `yaml:"recipient,omitempty"`
	Data      string `yaml:"data,omitempty"`

	// call
	To       string `yaml:"to,omitempty"`
	Calldata string `yaml:"calldata,omitempty"`
	Value    string `yaml:"value,omitempty"`
}

// ParseFlowFile reads and validates a flow definition from disk.
func ParseFlowFile(path string) (*FlowConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read flow file: %w", err)
	}

	var config FlowConfig
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid flow configuration: %w", err)
	}
	return &config, nil
}

// Validate checks the flow definition for errors.
func (c *FlowConfig) Validate() error {
	if c.Name == "" {
		return fmt.Errorf("flow name is required")
	}
	if len(c.Steps) == 0 {
		return fmt.Errorf("at least one step is required")
	}

	seen := make(map[string]bool)
	for i, step := range c.Steps {
		if step.Name == "" {
			return fmt.Errorf("step %d must have a name", i+1)
		}
		if seen[step.Name] {
			return fmt.Errorf("duplicate step name %q", step.Name)
		}
		seen[step.Name] = true

		if !knownActions[step.Action] {
			return fmt.Errorf("step %q has unknown action %q", step.Name, step.Action)
		}
		if err := step.validateAction(); err != nil {
			return fmt.Errorf("step %q: %w", step.Name, err)
		}
	}
	return nil
}

func (s *FlowStepConfig) validateAction() error {
	switch s.Action {
	case ActionApprove:
		if err := requireAddress("token", s.Token); err != nil {
			return err
		}
		if _, err := parseAmount("amount", s.Amount); err != nil {
			return err
		}
	case ActionSwap:
		if err := requireAddress("token_in", s.TokenIn); err != nil {
			return err
		}
		if err := requireAddress("token_out", s.TokenOut); err != nil {
			return err
		}
		if _, err := parseAmount("amount_in", s.AmountIn); err != nil {
			return err
		}
		if _, err := parseAmount("min_amount_out", s.MinAmountOut); err != nil {
			return err
		}
	case ActionAttest:
		if s.Schema == "" {
			return fmt.Errorf("schema is required")
		}
		if err := requireAddress("recipient", s.Recipient); err != nil {
			return err
		}
	case ActionCall:
		if err := requireAddress("to", s.To); err != nil {
			return err
		}
	}
	return nil
}

func requireAddress(field, value string) error {
	if value == "" {
		return fmt.Errorf("%s is required", field)
	}
	if !common.IsHexAddress(value) {
		return fmt.Errorf("%w: %s %q", domain.ErrInvalidAddress, field, value)
	}
	return nil
}

func parseAmount(field, value string) (*big.Int, error) {
	if value == "" {
		return nil, fmt.Errorf("%s is required", field)
	}
	amount, ok := new(big.Int).SetString(value, 10)
	if !ok {
		return nil, fmt.Errorf("%s is not a valid decimal amount: %q", field, value)
	}
	if amount.Sign() < 0 {
		return nil, fmt.Errorf("%s must not be negative", field)
	}
	return amount, nil
}
