package app

import (
	"github.com/trebuchet-org/treb-sequencer/internal/domain/config"
	"github.com/trebuchet-org/treb-sequencer/internal/usecase"
)

// App is the main application container that holds all use cases
type App struct {
	// Configuration
	Config *config.RuntimeConfig

	// Use cases
	RunPlan          *usecase.RunPlan
	ShowPlan         *usecase.ShowPlan
	ListDeployments  *usecase.ListDeployments
	ResetDeployments *usecase.ResetDeployments
	ListNetworks     *usecase.ListNetworks
	ListRuns         *usecase.ListRuns

	// Shared dependencies
	Confirmer usecase.Confirmer
}

// NewApp creates a new application instance with all use cases
func NewApp(
	cfg *config.RuntimeConfig,
	runPlan *usecase.RunPlan,
	showPlan *usecase.ShowPlan,
	listDeployments *usecase.ListDeployments,
	resetDeployments *usecase.ResetDeployments,
	listNetworks *usecase.ListNetworks,
	listRuns *usecase.ListRuns,
	confirmer usecase.Confirmer,
) *App {
	return &App{
		Config:           cfg,
		RunPlan:          runPlan,
		ShowPlan:         showPlan,
		ListDeployments:  listDeployments,
		ResetDeployments: resetDeployments,
		ListNetworks:     listNetworks,
		ListRuns:         listRuns,
		Confirmer:        confirmer,
	}
}
