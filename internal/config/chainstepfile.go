package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// ConfigFileName is the project marker and configuration file.
const ConfigFileName = "chainstep.toml"

// ChainstepConfig represents the raw chainstep.toml structure
type ChainstepConfig struct {
	Project   ProjectConfig               `toml:"project"`
	Networks  map[string]*NetworkConfig   `toml:"networks"`
	Contracts map[string]*ContractsConfig `toml:"contracts"`
	Senders   map[string]*SenderConfig    `toml:"senders"`
}

// ProjectConfig holds project-wide defaults.
type ProjectConfig struct {
	DefaultNetwork  string `toml:"default_network,omitempty"`
	DecisionTimeout string `toml:"decision_timeout,omitempty"`
}

// LoadChainstepConfig loads and parses chainstep.toml
func LoadChainstepConfig(projectRoot string) (*ChainstepConfig, error) {
	// Load .env files first so sender keys and expanded URLs resolve
	envFiles := []string{
		filepath.Join(projectRoot, ".env"),
		filepath.Join(projectRoot, ".env.local"),
	}
	for _, envFile := range envFiles {
		if _, err := os.Stat(envFile); err == nil {
			if err := godotenv.Load(envFile); err != nil {
				fmt.Fprintf(os.Stderr, "Warning: Failed to load %s: %v\n", envFile, err)
			}
		}
	}

	path := filepath.Join(projectRoot, ConfigFileName)
	var cfg ChainstepConfig
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", ConfigFileName, err)
	}

	for name, network := range cfg.Networks {
		network.Name = name
		network.RPCURL = os.ExpandEnv(network.RPCURL)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid %s: %w", ConfigFileName, err)
	}
	return &cfg, nil
}

// Validate checks the file for configuration mistakes.
func (c *ChainstepConfig) Validate() error {
	for name, network := range c.Networks {
		if network.RPCURL == "" {
			return fmt.Errorf("network %q must have an rpc_url", name)
		}
	}
	for name := range c.Contracts {
		if _, ok := c.Networks[name]; !ok {
			return fmt.Errorf("contracts declared for unknown network %q", name)
		}
	}
	for name, sender := range c.Senders {
		if sender.Type != "private_key" {
			return fmt.Errorf("sender %q has unsupported type %q", name, sender.Type)
		}
		if sender.PrivateKeyEnv == "" {
			return fmt.Errorf("sender %q must name its key env var", name)
		}
	}
	if c.Project.DecisionTimeout != "" {
		if _, err := time.ParseDuration(c.Project.DecisionTimeout); err != nil {
			return fmt.Errorf("invalid decision_timeout: %w", err)
		}
	}
	return nil
}

// NetworkNames returns the configured network names.
func (c *ChainstepConfig) NetworkNames() []string {
	names := make([]string, 0, len(c.Networks))
	for name := range c.Networks {
		names = append(names, name)
	}
	return names
}
