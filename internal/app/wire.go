//go:build wireinject
// +build wireinject

package app

import (
	"github.com/google/wire"
	"github.com/spf13/viper"
	"github.com/trebuchet-org/treb-sequencer/internal/adapters"
	"github.com/trebuchet-org/treb-sequencer/internal/config"
	"github.com/trebuchet-org/treb-sequencer/internal/logging"
	"github.com/trebuchet-org/treb-sequencer/internal/usecase"
)

// InitApp creates a fully wired App instance. The cleanup function closes the
// RPC connection.
func InitApp(v *viper.Viper) (*App, func(), error) {
	wire.Build(
		// Configuration
		config.Provider,
		logging.LoggingSet,

		// Adapters
		adapters.AllAdapters,

		// Use cases
		usecase.NewSequencer,
		usecase.NewRunPlan,
		usecase.NewShowPlan,
		usecase.NewListDeployments,
		usecase.NewResetDeployments,
		usecase.NewListNetworks,
		usecase.NewListRuns,

		// App
		NewApp,
	)
	return nil, nil, nil
}
