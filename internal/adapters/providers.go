package adapters

import (
	"log/slog"

	"github.com/google/wire"
	"github.com/trebuchet-org/treb-sequencer/internal/adapters/blockchain"
	"github.com/trebuchet-org/treb-sequencer/internal/adapters/fs"
	"github.com/trebuchet-org/treb-sequencer/internal/adapters/interactive"
	"github.com/trebuchet-org/treb-sequencer/internal/adapters/planfile"
	"github.com/trebuchet-org/treb-sequencer/internal/adapters/progress"
	"github.com/trebuchet-org/treb-sequencer/internal/adapters/repository/contracts"
	"github.com/trebuchet-org/treb-sequencer/internal/adapters/repository/deployments"
	"github.com/trebuchet-org/treb-sequencer/internal/adapters/senders"
	internalconfig "github.com/trebuchet-org/treb-sequencer/internal/config"
	"github.com/trebuchet-org/treb-sequencer/internal/domain/config"
	"github.com/trebuchet-org/treb-sequencer/internal/usecase"
)

// ProvideFoundryConfig provides the parsed foundry.toml from RuntimeConfig
func ProvideFoundryConfig(cfg *config.RuntimeConfig) *config.FoundryConfig {
	return cfg.FoundryConfig
}

// ProvideChainClient provides the JSON-RPC client and closes its connection on cleanup
func ProvideChainClient(
	cfg *config.RuntimeConfig,
	contracts usecase.ContractRepository,
	keys blockchain.KeyStore,
	log *slog.Logger,
) (*blockchain.Client, func()) {
	client := blockchain.NewClient(cfg, contracts, keys, log)
	return client, client.Close
}

// ProvideProgressSink prints progress on the terminal unless output is JSON
func ProvideProgressSink(cfg *config.RuntimeConfig) usecase.ProgressSink {
	if cfg.JSON {
		return progress.NewNopSink()
	}
	return progress.NewSequenceProgress()
}

// RepositorySet provides file-based storage
var RepositorySet = wire.NewSet(
	contracts.NewRepository,
	wire.Bind(new(usecase.ContractRepository), new(*contracts.Repository)),

	deployments.NewFileRepositoryFromConfig,
	wire.Bind(new(usecase.DeploymentRepository), new(*deployments.FileRepository)),

	fs.NewRunStoreAdapter,
	wire.Bind(new(usecase.RunRepository), new(*fs.RunStoreAdapter)),

	planfile.NewLoader,
	wire.Bind(new(usecase.PlanLoader), new(*planfile.Loader)),
)

// BlockchainSet provides the chain client
var BlockchainSet = wire.NewSet(
	ProvideChainClient,
	wire.Bind(new(usecase.ChainClient), new(*blockchain.Client)),
	wire.Bind(new(usecase.ChainIDReader), new(*blockchain.Client)),
)

// SendersSet provides named accounts and their signing keys
var SendersSet = wire.NewSet(
	senders.NewManager,
	wire.Bind(new(usecase.AccountProvider), new(*senders.Manager)),
	wire.Bind(new(blockchain.KeyStore), new(*senders.Manager)),
)

// InteractiveSet provides interactive implementations
var InteractiveSet = wire.NewSet(
	interactive.NewConfirmerAdapter,
	wire.Bind(new(usecase.Confirmer), new(*interactive.ConfirmerAdapter)),
	ProvideProgressSink,
)

// ConfigSet provides configuration-based implementations
var ConfigSet = wire.NewSet(
	ProvideFoundryConfig,
	internalconfig.NewNetworkResolver,
	wire.Bind(new(usecase.NetworkResolver), new(*internalconfig.NetworkResolver)),
	wire.Bind(new(usecase.LocalChainPolicy), new(*config.RuntimeConfig)),
)

// AllAdapters includes all adapter sets
var AllAdapters = wire.NewSet(
	RepositorySet,
	BlockchainSet,
	SendersSet,
	InteractiveSet,
	ConfigSet,
)
