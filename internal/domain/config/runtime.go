package config

import (
	"slices"
	"time"
)

// RuntimeConfig represents the complete runtime configuration
// This is injected into use cases and contains all resolved settings
type RuntimeConfig struct {
	// Core settings
	ProjectRoot string
	DataDir     string

	// Context settings
	Namespace string   // Maps to foundry profile
	Network   *Network // nil if not specified

	// Execution settings
	Debug               bool
	NonInteractive      bool
	JSON                bool
	Timeout             time.Duration
	ConfirmationTimeout time.Duration
	SkipCodeCheck       bool

	// Resolved configurations
	FoundryConfig *FoundryConfig
	TrebConfig    *TrebConfig // Profile-specific treb config
}

// Network represents network configuration
type Network struct {
	Name   string `json:"name"`
	RPCURL string `json:"rpcUrl"`
}

// IsLocalChain reports whether chainID is configured as a local development chain
func (c *RuntimeConfig) IsLocalChain(chainID uint64) bool {
	ids := DefaultLocalChainIDs
	if c.TrebConfig != nil && len(c.TrebConfig.LocalChainIDs) > 0 {
		ids = c.TrebConfig.LocalChainIDs
	}
	return slices.Contains(ids, chainID)
}

// ArtifactDirs returns the directories searched for compiled contracts, relative to
// the project root
func (c *RuntimeConfig) ArtifactDirs() []string {
	if c.TrebConfig != nil && len(c.TrebConfig.ArtifactDirs) > 0 {
		return c.TrebConfig.ArtifactDirs
	}
	if c.FoundryConfig != nil {
		if profile, ok := c.FoundryConfig.Profile[c.Namespace]; ok && profile.OutPath != "" {
			return []string{profile.OutPath, "artifacts"}
		}
	}
	return DefaultArtifactDirs
}

// Senders returns the configured named accounts
func (c *RuntimeConfig) Senders() map[string]SenderConfig {
	if c.TrebConfig == nil {
		return nil
	}
	return c.TrebConfig.Senders
}
