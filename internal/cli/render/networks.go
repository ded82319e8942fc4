package render

import (
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/trebuchet-org/treb-sequencer/internal/usecase"
)

// NetworksRenderer renders network lists
type NetworksRenderer struct {
	out io.Writer
}

// NewNetworksRenderer creates a new networks renderer
func NewNetworksRenderer(out io.Writer) *NetworksRenderer {
	return &NetworksRenderer{out: out}
}

// Render renders the list of networks
func (r *NetworksRenderer) Render(result *usecase.ListNetworksResult) error {
	if len(result.Networks) == 0 {
		fmt.Fprintln(r.out, "No networks configured in foundry.toml [rpc_endpoints]")
		return nil
	}

	fmt.Fprintln(r.out, "🌐 Available Networks:")
	fmt.Fprintln(r.out)

	t := newTable()
	for _, network := range result.Networks {
		status := ""
		switch {
		case network.Error != nil:
			status = errorStyle.Sprintf("❌ %v", network.Error)
		case network.ChainID != 0:
			status = successStyle.Sprintf("✅ chain %d", network.ChainID)
			if network.Local {
				status += " " + infoStyle.Sprint("(local)")
			}
		}
		t.AppendRow(table.Row{"  " + network.Name, faintStyle.Sprint(network.RPCURL), status})
	}
	fmt.Fprintln(r.out, t.Render())

	return nil
}

var _ Renderer[*usecase.ListNetworksResult] = (*NetworksRenderer)(nil)
