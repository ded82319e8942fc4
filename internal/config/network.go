package config

import (
	"fmt"
	"sort"
	"strings"

	"github.com/trebuchet-org/treb-sequencer/internal/domain/config"
)

// localEndpoints are used when a well-known local network is not configured
var localEndpoints = map[string]string{
	"local":     "http://127.0.0.1:8545",
	"localhost": "http://127.0.0.1:8545",
	"anvil":     "http://127.0.0.1:8545",
}

// NetworkResolver resolves network names to RPC endpoints
type NetworkResolver struct {
	foundryConfig *config.FoundryConfig
}

// NewNetworkResolver creates a new network resolver
func NewNetworkResolver(foundryConfig *config.FoundryConfig) *NetworkResolver {
	return &NetworkResolver{foundryConfig: foundryConfig}
}

// Resolve resolves a network name, or a raw RPC URL, to its configuration
func (r *NetworkResolver) Resolve(networkName string) (*config.Network, error) {
	if strings.HasPrefix(networkName, "http://") || strings.HasPrefix(networkName, "https://") ||
		strings.HasPrefix(networkName, "ws://") || strings.HasPrefix(networkName, "wss://") {
		return &config.Network{Name: networkName, RPCURL: networkName}, nil
	}

	if r.foundryConfig != nil {
		if rpcURL, exists := r.foundryConfig.RpcEndpoints[networkName]; exists {
			if rpcURL == "" || strings.Contains(rpcURL, "${") {
				return nil, fmt.Errorf("network '%s' has an unresolved RPC URL, set %s in .env", networkName, unresolvedRPCHint(networkName, rpcURL))
			}
			return &config.Network{Name: networkName, RPCURL: rpcURL}, nil
		}
	}

	if rpcURL, ok := localEndpoints[networkName]; ok {
		return &config.Network{Name: networkName, RPCURL: rpcURL}, nil
	}

	return nil, fmt.Errorf("network '%s' not found in foundry.toml [rpc_endpoints]", networkName)
}

// Networks returns all configured networks sorted by name
func (r *NetworkResolver) Networks() []config.Network {
	var networks []config.Network
	if r.foundryConfig != nil {
		for name, url := range r.foundryConfig.RpcEndpoints {
			networks = append(networks, config.Network{Name: name, RPCURL: url})
		}
	}
	sort.Slice(networks, func(i, j int) bool {
		return networks[i].Name < networks[j].Name
	})
	return networks
}
