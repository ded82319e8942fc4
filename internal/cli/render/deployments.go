package render

import (
	"fmt"
	"io"
	"sort"

	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/trebuchet-org/treb-sequencer/internal/domain/models"
	"github.com/trebuchet-org/treb-sequencer/internal/usecase"
)

var (
	networkHeader     = color.New(color.BgCyan, color.FgBlack)
	networkHeaderBold = color.New(color.BgCyan, color.FgBlack, color.Bold)
	contractStyle     = color.New(color.FgGreen, color.Bold)
)

// DeploymentsRenderer renders stored deployments grouped by network
type DeploymentsRenderer struct {
	out io.Writer
}

// NewDeploymentsRenderer creates a new deployments renderer
func NewDeploymentsRenderer(out io.Writer) *DeploymentsRenderer {
	return &DeploymentsRenderer{out: out}
}

// Render prints one table per network
func (r *DeploymentsRenderer) Render(result *usecase.DeploymentListResult) error {
	if len(result.Deployments) == 0 {
		if result.Network != "" {
			fmt.Fprintf(r.out, "No deployments found on %s\n", result.Network)
		} else {
			fmt.Fprintln(r.out, "No deployments found")
		}
		return nil
	}

	r.renderGroups(result.Deployments)
	fmt.Fprintf(r.out, "Total deployments: %d\n", len(result.Deployments))
	return nil
}

func (r *DeploymentsRenderer) renderGroups(deployments []*models.Deployment) {
	groups := make(map[string][]*models.Deployment)
	for _, d := range deployments {
		groups[d.Network] = append(groups[d.Network], d)
	}

	networks := make([]string, 0, len(groups))
	for network := range groups {
		networks = append(networks, network)
	}
	sort.Strings(networks)

	for _, network := range networks {
		group := groups[network]
		label := fmt.Sprintf("%-10s", "network:")
		value := fmt.Sprintf("%-30s", fmt.Sprintf("%s (%d)", network, group[0].ChainID))
		fmt.Fprintln(r.out, networkHeader.Sprintf(" ⛓ %s ", label)+networkHeaderBold.Sprint(value))
		fmt.Fprintln(r.out)

		t := newTable()
		for _, d := range group {
			t.AppendRow(table.Row{
				"  " + contractStyle.Sprint(d.Name),
				contractLabel(d),
				addressStyle.Sprint(d.Address),
				faintStyle.Sprintf("block %s", formatNumber(d.BlockNumber)),
				faintStyle.Sprint(d.CreatedAt.Format("2006-01-02 15:04:05")),
			})
		}
		fmt.Fprintln(r.out, t.Render())
		fmt.Fprintln(r.out)
	}
}

func contractLabel(d *models.Deployment) string {
	if d.Contract == "" || d.Contract == d.Name {
		return ""
	}
	return infoStyle.Sprint(d.Contract)
}

// ResetRenderer renders the outcome of a reset
type ResetRenderer struct {
	out io.Writer
}

// NewResetRenderer creates a new reset renderer
func NewResetRenderer(out io.Writer) *ResetRenderer {
	return &ResetRenderer{out: out}
}

// RenderPreview lists what a reset would remove
func (r *ResetRenderer) RenderPreview(result *usecase.ResetDeploymentsResult) {
	if len(result.Deployments) == 0 {
		fmt.Fprintf(r.out, "No deployments stored for %s\n", result.Network)
		return
	}
	fmt.Fprintf(r.out, "The following deployments on %s will be forgotten:\n\n", result.Network)
	t := newTable()
	for _, d := range result.Deployments {
		t.AppendRow(table.Row{"  " + d.Name, addressStyle.Sprint(d.Address)})
	}
	fmt.Fprintln(r.out, t.Render())
	fmt.Fprintln(r.out)
}

// Render prints the result of a reset
func (r *ResetRenderer) Render(result *usecase.ResetDeploymentsResult) error {
	if result.Removed == 0 {
		if len(result.Deployments) == 0 {
			fmt.Fprintf(r.out, "No deployments stored for %s\n", result.Network)
		}
		return nil
	}
	fmt.Fprintln(r.out, FormatSuccess(fmt.Sprintf("Removed %d deployment(s) from %s", result.Removed, result.Network)))
	return nil
}

var (
	_ Renderer[*usecase.DeploymentListResult]   = (*DeploymentsRenderer)(nil)
	_ Renderer[*usecase.ResetDeploymentsResult] = (*ResetRenderer)(nil)
)
