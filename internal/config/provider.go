package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/trebuchet-org/treb-sequencer/internal/domain/config"
)

// Provider creates RuntimeConfig for Wire dependency injection
func Provider(v *viper.Viper) (*config.RuntimeConfig, error) {
	projectRoot := v.GetString("project_root")
	if projectRoot == "" {
		var err error
		projectRoot, err = FindProjectRoot()
		if err != nil {
			return nil, fmt.Errorf("failed to find project root: %w", err)
		}
	}

	cfg := &config.RuntimeConfig{
		ProjectRoot:         projectRoot,
		DataDir:             filepath.Join(projectRoot, ".treb"),
		Namespace:           v.GetString("namespace"),
		Debug:               v.GetBool("debug"),
		NonInteractive:      v.GetBool("non_interactive"),
		JSON:                v.GetBool("json"),
		Timeout:             v.GetDuration("timeout"),
		ConfirmationTimeout: v.GetDuration("confirmation_timeout"),
		SkipCodeCheck:       v.GetBool("skip_code_check"),
	}

	foundryConfig, err := loadFoundryConfig(projectRoot)
	if err != nil {
		return nil, fmt.Errorf("failed to load foundry config: %w", err)
	}
	cfg.FoundryConfig = foundryConfig

	// Load profile-specific treb config (namespace = profile)
	if profile, ok := foundryConfig.Profile[cfg.Namespace]; ok && profile.Treb != nil {
		cfg.TrebConfig = profile.Treb
	} else if profile, ok := foundryConfig.Profile["default"]; ok && profile.Treb != nil {
		cfg.TrebConfig = profile.Treb
	}

	// The flag wins over the profile setting only when it was set explicitly
	if cfg.TrebConfig != nil && cfg.TrebConfig.ConfirmationTimeout != "" && !v.IsSet("confirmation_timeout_flag") {
		d, err := time.ParseDuration(cfg.TrebConfig.ConfirmationTimeout)
		if err != nil {
			return nil, fmt.Errorf("invalid confirmation_timeout %q: %w", cfg.TrebConfig.ConfirmationTimeout, err)
		}
		cfg.ConfirmationTimeout = d
	}
	if cfg.ConfirmationTimeout <= 0 {
		cfg.ConfirmationTimeout = config.DefaultConfirmationTimeout
	}

	if networkName := v.GetString("network"); networkName != "" {
		network, err := NewNetworkResolver(foundryConfig).Resolve(networkName)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve network %s: %w", networkName, err)
		}
		cfg.Network = network
	}

	return cfg, nil
}

// FindProjectRoot walks up from current directory to find foundry.toml. Without
// one the current directory is the project root.
func FindProjectRoot() (string, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return "", err
	}

	dir := cwd
	for {
		if _, err := os.Stat(filepath.Join(dir, "foundry.toml")); err == nil {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return cwd, nil
		}
		dir = parent
	}
}

// SetupViper creates and configures a viper instance
func SetupViper(projectRoot string, flags *pflag.FlagSet) *viper.Viper {
	v := viper.New()

	// Set up config file
	v.SetConfigName("config.local")
	v.SetConfigType("json")
	v.AddConfigPath(filepath.Join(projectRoot, ".treb"))

	// Set up environment variables
	v.SetEnvPrefix("TREB")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))

	// Set defaults
	v.SetDefault("namespace", "default")
	v.SetDefault("network", "local")
	v.SetDefault("timeout", "30m")
	v.SetDefault("confirmation_timeout", config.DefaultConfirmationTimeout.String())
	v.SetDefault("debug", false)
	v.SetDefault("non_interactive", false)
	v.SetDefault("project_root", projectRoot)

	// Try to read config file (ignore error if not found)
	_ = v.ReadInConfig()

	if flags != nil {
		flags.VisitAll(func(f *pflag.Flag) {
			if !f.Changed {
				return
			}
			key := strings.ReplaceAll(f.Name, "-", "_")
			v.Set(key, f.Value.String())
			if key == "confirmation_timeout" {
				v.Set("confirmation_timeout_flag", true)
			}
		})
	}

	return v
}
