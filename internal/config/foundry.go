package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
	"github.com/trebuchet-org/treb-sequencer/internal/domain/config"
)

// loadEnvFiles loads .env files from the project root so ${VAR} references in
// foundry.toml can be expanded. Variables already set in the environment win.
func loadEnvFiles(projectRoot string) {
	envFiles := []string{
		filepath.Join(projectRoot, ".env"),
		filepath.Join(projectRoot, ".env.local"),
	}

	for _, envFile := range envFiles {
		if _, err := os.Stat(envFile); err == nil {
			if err := godotenv.Load(envFile); err != nil {
				// Log warning but don't fail
				fmt.Fprintf(os.Stderr, "Warning: Failed to load %s: %v\n", envFile, err)
			}
		}
	}
}

// loadFoundryConfig loads and parses foundry.toml
func loadFoundryConfig(projectRoot string) (*config.FoundryConfig, error) {
	loadEnvFiles(projectRoot)

	foundryPath := filepath.Join(projectRoot, "foundry.toml")
	cfg := &config.FoundryConfig{}

	if _, err := os.Stat(foundryPath); os.IsNotExist(err) {
		cfg.Profile = map[string]config.ProfileConfig{}
		cfg.RpcEndpoints = map[string]string{}
		return cfg, nil
	}

	if _, err := toml.DecodeFile(foundryPath, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse foundry.toml: %w", err)
	}

	if cfg.Profile == nil {
		cfg.Profile = map[string]config.ProfileConfig{}
	}
	if cfg.RpcEndpoints == nil {
		cfg.RpcEndpoints = map[string]string{}
	}

	for name, url := range cfg.RpcEndpoints {
		cfg.RpcEndpoints[name] = expandRPCEndpoint(url)
	}

	for profileName, profile := range cfg.Profile {
		if profile.Treb == nil {
			continue
		}
		for name, sender := range profile.Treb.Senders {
			expanded, err := expandSender(name, sender)
			if err != nil {
				return nil, fmt.Errorf("profile %s: %w", profileName, err)
			}
			profile.Treb.Senders[name] = expanded
		}
	}

	return cfg, nil
}

// expandSender resolves env references and checks the sender is usable
func expandSender(name string, sender config.SenderConfig) (config.SenderConfig, error) {
	sender.PrivateKey = os.ExpandEnv(sender.PrivateKey)
	sender.Address = os.ExpandEnv(sender.Address)

	switch sender.Type {
	case config.SenderTypePrivateKey:
		if sender.PrivateKey == "" {
			return sender, fmt.Errorf("sender %s: private_key is required", name)
		}
	case config.SenderTypeAddress:
		if sender.Address == "" {
			return sender, fmt.Errorf("sender %s: address is required", name)
		}
	case "":
		return sender, fmt.Errorf("sender %s: type is required", name)
	default:
		return sender, fmt.Errorf("sender %s: unsupported sender type: %s", name, sender.Type)
	}
	return sender, nil
}
