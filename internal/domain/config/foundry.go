package config

import "time"

var (
	// DefaultLocalChainIDs are treated as throwaway development chains
	DefaultLocalChainIDs = []uint64{31337}

	// DefaultArtifactDirs covers Foundry (out) and Hardhat (artifacts) layouts
	DefaultArtifactDirs = []string{"out", "artifacts"}
)

const (
	DefaultConfirmationTimeout = 5 * time.Minute
	DefaultSender              = "deployer"
)

// FoundryConfig represents the parts of foundry.toml the sequencer reads
type FoundryConfig struct {
	Profile      map[string]ProfileConfig `toml:"profile"`
	RpcEndpoints map[string]string        `toml:"rpc_endpoints"`
}

// ProfileConfig represents a profile's foundry configuration
type ProfileConfig struct {
	OutPath string      `toml:"out,omitempty"`
	Treb    *TrebConfig `toml:"treb,omitempty"`
}

// TrebConfig represents sequencer-specific configuration in [profile.<name>.treb]
type TrebConfig struct {
	Senders             map[string]SenderConfig `json:"senders" toml:"senders"`
	LocalChainIDs       []uint64                `json:"localChainIds,omitempty" toml:"local_chain_ids"`
	ArtifactDirs        []string                `json:"artifactDirs,omitempty" toml:"artifact_dirs"`
	ConfirmationTimeout string                  `json:"confirmationTimeout,omitempty" toml:"confirmation_timeout"`
}

type SenderType string

var (
	SenderTypePrivateKey SenderType = "private_key"
	// SenderTypeAddress is a named account that can be referenced but never signs
	SenderTypeAddress SenderType = "address"
)

// SenderConfig represents a named account
type SenderConfig struct {
	Type       SenderType `toml:"type"`
	Address    string     `toml:"address,omitempty"`
	PrivateKey string     `toml:"private_key,omitempty"` //nolint:gosec // holds env var reference, not a literal secret
}
