package config

import (
	"fmt"
	"sort"
	"strings"

	"github.com/sahilm/fuzzy"

	"github.com/p2e-inferno/chainstep/internal/domain"
)

// ResolveNetwork looks up a network by name. On a miss the error
// carries fuzzy-matched suggestions, hand-typed network names have a
// way of losing characters.
func (c *ChainstepConfig) ResolveNetwork(name string) (*NetworkConfig, error) {
	if network, ok := c.Networks[name]; ok {
		return network, nil
	}

	// Case-insensitive fallback
	nameLower := strings.ToLower(name)
	for key, network := range c.Networks {
		if strings.ToLower(key) == nameLower {
			return network, nil
		}
	}

	suggestions := c.suggestNetworks(name)
	if len(suggestions) > 0 {
		return nil, fmt.Errorf("%w: %q (did you mean %s?)",
			domain.ErrNetworkNotFound, name, strings.Join(suggestions, ", "))
	}
	return nil, fmt.Errorf("%w: %q", domain.ErrNetworkNotFound, name)
}

// suggestNetworks returns up to three configured names close to the input.
func (c *ChainstepConfig) suggestNetworks(input string) []string {
	names := c.NetworkNames()
	sort.Strings(names)

	matches := fuzzy.Find(input, names)
	suggestions := make([]string, 0, 3)
	for _, match := range matches {
		suggestions = append(suggestions, names[match.Index])
		if len(suggestions) == 3 {
			break
		}
	}
	return suggestions
}
