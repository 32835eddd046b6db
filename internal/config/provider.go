package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Provider creates RuntimeConfig for Wire dependency injection
func Provider(v *viper.Viper) (*RuntimeConfig, error) {
	projectRoot := v.GetString("project_root")
	if projectRoot == "" {
		var err error
		projectRoot, err = FindProjectRoot()
		if err != nil {
			return nil, fmt.Errorf("failed to find project root: %w", err)
		}
	}

	file, err := LoadChainstepConfig(projectRoot)
	if err != nil {
		return nil, err
	}

	cfg := &RuntimeConfig{
		ProjectRoot:    projectRoot,
		DataDir:        filepath.Join(projectRoot, ".chainstep"),
		Debug:          v.GetBool("debug"),
		NonInteractive: v.GetBool("non_interactive"),
		JSON:           v.GetBool("json"),
		Timeout:        v.GetDuration("timeout"),
		File:           file,
	}

	if file.Project.DecisionTimeout != "" {
		// Validated at load time.
		cfg.DecisionTimeout, _ = time.ParseDuration(file.Project.DecisionTimeout)
	}
	if d := v.GetDuration("decision_timeout"); d > 0 {
		cfg.DecisionTimeout = d
	}

	networkName := v.GetString("network")
	if networkName == "" {
		networkName = file.Project.DefaultNetwork
	}
	if networkName != "" {
		network, err := file.ResolveNetwork(networkName)
		if err != nil {
			return nil, err
		}
		cfg.NetworkName = network.Name
		cfg.Network = network
		cfg.Contracts = file.Contracts[network.Name]
	}

	// Read-only commands run without sender keys in the environment.
	if v.GetBool("skip_senders") {
		cfg.Senders = map[string]*Sender{}
		return cfg, nil
	}

	senders, err := file.ResolveSenders()
	if err != nil {
		return nil, err
	}
	cfg.Senders = senders

	return cfg, nil
}

// FindProjectRoot walks up from current directory to find chainstep.toml
func FindProjectRoot() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}

	for {
		marker := filepath.Join(dir, ConfigFileName)
		if _, err := os.Stat(marker); err == nil {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			// Reached root without finding chainstep.toml
			return "", fmt.Errorf("not in a chainstep project (%s not found)", ConfigFileName)
		}
		dir = parent
	}
}

// SetupViper creates and configures a viper instance
func SetupViper(projectRoot string, cmd *cobra.Command) *viper.Viper {
	v := viper.New()

	// Set up config file
	v.SetConfigName("config.local")
	v.SetConfigType("json")
	v.AddConfigPath(filepath.Join(projectRoot, ".chainstep"))

	// Set up environment variables
	v.SetEnvPrefix("CHAINSTEP")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))

	// Set defaults
	v.SetDefault("timeout", "5m")
	v.SetDefault("debug", false)
	v.SetDefault("non_interactive", false)
	v.SetDefault("project_root", projectRoot)

	// Try to read config file (ignore error if not found)
	_ = v.ReadInConfig()

	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		if err := v.BindPFlag(f.Name, f); err != nil {
			panic(err)
		}
	})

	return v
}
