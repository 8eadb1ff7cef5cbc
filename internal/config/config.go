// Package config centralizes all process configuration.
//
// Configuration is read once at startup from HWCTL_* environment variables
// with compiled defaults; nothing in the tree mutates it afterwards.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// ModuleName is the reported binary identifier.
const ModuleName = "go-hwctl"

// Build arguments, overridable via ldflags.
var (
	Commit    = "local"
	BuildDate = "unknown"
)

// GetFormattedBuildArgs returns the version line shown by --version.
func GetFormattedBuildArgs() string {
	return fmt.Sprintf("%v @ %v (%v)", ModuleName, Commit, BuildDate)
}

// Logger holds logging configuration.
type Logger struct {
	Level              string
	PrettyPrintConsole bool
}

// Config is the full, immutable process configuration.
type Config struct {
	// BridgeURL is the base URL of the local device bridge daemon.
	BridgeURL string
	// DevicePath preselects a transport path (exact or prefix match).
	DevicePath string
	// ReleasesURL is the base URL of the firmware release index.
	ReleasesURL string
	// ChainRegistryFile optionally overrides the built-in chain registry (TOML).
	ChainRegistryFile string
	// EthereumNode is the default host:port for ethereum node queries.
	EthereumNode string
	Logger       Logger
}

// DefaultConfigFromEnv builds the configuration from the environment.
func DefaultConfigFromEnv() Config {
	v := viper.New()
	v.SetEnvPrefix("HWCTL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("bridge_url", "http://127.0.0.1:21325")
	v.SetDefault("device", "")
	v.SetDefault("releases_url", "https://wallet.chapool.net/data/firmware")
	v.SetDefault("chain_registry", "")
	v.SetDefault("ethereum_node", "localhost:8545")
	v.SetDefault("log_level", "info")
	v.SetDefault("log_pretty", true)

	return Config{
		BridgeURL:         v.GetString("bridge_url"),
		DevicePath:        v.GetString("device"),
		ReleasesURL:       v.GetString("releases_url"),
		ChainRegistryFile: v.GetString("chain_registry"),
		EthereumNode:      v.GetString("ethereum_node"),
		Logger: Logger{
			Level:              v.GetString("log_level"),
			PrettyPrintConsole: v.GetBool("log_pretty"),
		},
	}
}
