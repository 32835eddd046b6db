package usecase

import (
	"context"
	"sort"

	"github.com/p2e-inferno/chainstep/internal/config"
)

// ListNetworksParams contains parameters for listing networks
type ListNetworksParams struct {
	// Currently no parameters, but we keep the struct for future extensibility
}

// ListNetworksResult contains the result of listing networks
type ListNetworksResult struct {
	Networks []NetworkStatus
	Default  string
}

// NetworkStatus describes one configured network.
type NetworkStatus struct {
	Name        string
	ChainID     uint64
	ExplorerURL string
	HasRouter   bool
	HasEAS      bool
	IsDefault   bool
}

// ListNetworks is a use case for listing available networks
type ListNetworks struct {
	file *config.ChainstepConfig
}

// NewListNetworks creates a new ListNetworks use case
func NewListNetworks(cfg *config.RuntimeConfig) *ListNetworks {
	return &ListNetworks{file: cfg.File}
}

// Run executes the use case
func (uc *ListNetworks) Run(ctx context.Context, params ListNetworksParams) (*ListNetworksResult, error) {
	names := uc.file.NetworkNames()
	sort.Strings(names)

	networks := make([]NetworkStatus, 0, len(names))
	for _, name := range names {
		network := uc.file.Networks[name]
		contracts := uc.file.Contracts[name]

		networks = append(networks, NetworkStatus{
			Name:        name,
			ChainID:     network.ChainID,
			ExplorerURL: network.ExplorerURL,
			HasRouter:   contracts != nil && contracts.Router != "",
			HasEAS:      contracts != nil && contracts.EAS != "",
			IsDefault:   name == uc.file.Project.DefaultNetwork,
		})
	}

	return &ListNetworksResult{
		Networks: networks,
		Default:  uc.file.Project.DefaultNetwork,
	}, nil
}
