package usecase

import (
	"context"
)

// ListNetworksParams contains parameters for listing networks
type ListNetworksParams struct {
	// Probe connects to each network to read its chain ID
	Probe bool
}

// ListNetworksResult contains the result of listing networks
type ListNetworksResult struct {
	Networks []NetworkStatus
}

// NetworkStatus represents the status of a network
type NetworkStatus struct {
	Name    string
	RPCURL  string
	ChainID uint64
	Local   bool
	Error   error
}

// ChainIDReader reads the chain ID behind an RPC endpoint
type ChainIDReader interface {
	ChainIDAt(ctx context.Context, rpcURL string) (uint64, error)
}

// ListNetworks is a use case for listing available networks
type ListNetworks struct {
	resolver NetworkResolver
	reader   ChainIDReader
	isLocal  func(chainID uint64) bool
}

// NewListNetworks creates a new ListNetworks use case
func NewListNetworks(resolver NetworkResolver, reader ChainIDReader, cfg LocalChainPolicy) *ListNetworks {
	return &ListNetworks{
		resolver: resolver,
		reader:   reader,
		isLocal:  cfg.IsLocalChain,
	}
}

// LocalChainPolicy decides which chain IDs are local development chains
type LocalChainPolicy interface {
	IsLocalChain(chainID uint64) bool
}

// Run executes the use case
func (uc *ListNetworks) Run(ctx context.Context, params ListNetworksParams) (*ListNetworksResult, error) {
	configured := uc.resolver.Networks()

	networks := make([]NetworkStatus, 0, len(configured))
	for _, network := range configured {
		status := NetworkStatus{
			Name:   network.Name,
			RPCURL: network.RPCURL,
		}

		if params.Probe {
			chainID, err := uc.reader.ChainIDAt(ctx, network.RPCURL)
			if err != nil {
				status.Error = err
			} else {
				status.ChainID = chainID
				status.Local = uc.isLocal(chainID)
			}
		}

		networks = append(networks, status)
	}

	return &ListNetworksResult{
		Networks: networks,
	}, nil
}
