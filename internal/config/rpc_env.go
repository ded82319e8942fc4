package config

import (
	"os"
	"regexp"
	"strings"
)

// envVarPattern matches ${VAR_NAME} values in foundry.toml
var envVarPattern = regexp.MustCompile(`^\$\{([A-Za-z_][A-Za-z0-9_]*)\}$`)

// DetectEnvVar reports whether a raw TOML value is a single ${VAR_NAME} reference
func DetectEnvVar(rawValue string) (string, bool) {
	matches := envVarPattern.FindStringSubmatch(rawValue)
	if len(matches) == 2 {
		return matches[1], true
	}
	return "", false
}

// GenerateEnvVarName returns the conventional env var for a network's RPC URL.
// sepolia -> SEPOLIA_RPC_URL, celo-sepolia -> CELO_SEPOLIA_RPC_URL
func GenerateEnvVarName(networkName string) string {
	name := strings.ToUpper(networkName)
	name = strings.NewReplacer("-", "_", ".", "_").Replace(name)
	return name + "_RPC_URL"
}

// expandRPCEndpoint expands env references in an endpoint. A lone reference to
// an unset variable is kept as written so the resolver can name it.
func expandRPCEndpoint(raw string) string {
	if name, ok := DetectEnvVar(raw); ok {
		if _, set := os.LookupEnv(name); !set {
			return raw
		}
	}
	return os.ExpandEnv(raw)
}

// unresolvedRPCHint names the variable a network's RPC URL is waiting on
func unresolvedRPCHint(networkName, rpcURL string) string {
	if name, ok := DetectEnvVar(rpcURL); ok {
		return name
	}
	return GenerateEnvVarName(networkName)
}
