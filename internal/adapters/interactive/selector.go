package interactive

import (
	"fmt"
	"sort"
	"strings"

	"github.com/fatih/color"
	"github.com/manifoldco/promptui"
	"github.com/sahilm/fuzzy"
)

// SelectNetwork lets the user pick a network from the configured set
// with fuzzy search. Used when no --network flag was given and more
// than one network is configured.
func SelectNetwork(names []string, prompt string) (string, error) {
	if len(names) == 0 {
		return "", fmt.Errorf("no networks configured")
	}
	if len(names) == 1 {
		return names[0], nil
	}

	sorted := make([]string, len(names))
	copy(sorted, names)
	sort.Strings(sorted)

	templates := &promptui.SelectTemplates{
		Label:    "{{ . }}",
		Active:   "▸ {{ . | cyan }}",
		Inactive: "  {{ . | faint }}",
		Selected: "✓ {{ . | green }}",
		Help:     color.New(color.FgYellow).Sprint("Type to search, Enter to select"),
	}

	promptSelect := promptui.Select{
		Label:             prompt,
		Items:             sorted,
		Templates:         templates,
		Size:              10,
		StartInSearchMode: true,
		Searcher:          createFuzzySearchFunc(sorted),
	}

	index, _, err := promptSelect.Run()
	if err != nil {
		return "", fmt.Errorf("selection cancelled: %w", err)
	}
	return sorted[index], nil
}

// createFuzzySearchFunc creates a fuzzy search function for promptui
func createFuzzySearchFunc(options []string) func(input string, index int) bool {
	return func(input string, index int) bool {
		if input == "" {
			return true
		}
		matches := fuzzy.Find(strings.ToLower(input), options)
		for _, match := range matches {
			if match.Index == index {
				return true
			}
		}
		return false
	}
}
