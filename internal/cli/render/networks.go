package render

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/p2e-inferno/chainstep/internal/usecase"
)

// NetworksRenderer renders network lists
type NetworksRenderer struct {
	out io.Writer
}

// NewNetworksRenderer creates a new networks renderer
func NewNetworksRenderer(out io.Writer) Renderer[*usecase.ListNetworksResult] {
	return &NetworksRenderer{
		out: out,
	}
}

// Render renders the configured networks as a table
func (r *NetworksRenderer) Render(result *usecase.ListNetworksResult) error {
	if len(result.Networks) == 0 {
		fmt.Fprintln(r.out, "No networks configured in chainstep.toml [networks]")
		return nil
	}

	t := table.NewWriter()
	t.SetOutputMirror(r.out)
	t.SetStyle(table.StyleLight)
	t.Style().Options.SeparateRows = false
	t.AppendHeader(table.Row{"Network", "Chain ID", "Router", "EAS", "Explorer"})
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 2, Align: text.AlignRight},
	})

	for _, network := range result.Networks {
		name := network.Name
		if network.IsDefault {
			name = color.New(color.Bold).Sprintf("%s (default)", name)
		}
		t.AppendRow(table.Row{
			name,
			network.ChainID,
			checkmark(network.HasRouter),
			checkmark(network.HasEAS),
			network.ExplorerURL,
		})
	}

	t.Render()
	return nil
}

func checkmark(ok bool) string {
	if ok {
		return color.New(color.FgGreen).Sprint("✓")
	}
	return color.New(color.Faint).Sprint("-")
}
