// Package config loads switchboard configuration from file, environment, and
// defaults, and resolves per-provider API keys.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for switchboard.
type Config struct {
	DataDir           string                    `mapstructure:"data_dir"`
	Timeout           string                    `mapstructure:"timeout"`
	RequestsPerSecond float64                   `mapstructure:"requests_per_second"`
	LogLevel          string                    `mapstructure:"log_level"`
	DefaultProvider   string                    `mapstructure:"default_provider"`
	Providers         map[string]ProviderConfig `mapstructure:"providers"`
}

// ProviderConfig holds per-provider settings keyed by provider id.
type ProviderConfig struct {
	APIKey string `mapstructure:"api_key"`
}

// Load reads configuration from file, environment, and defaults. A missing
// config file is not an error; environment variables use the SWITCHBOARD_
// prefix.
func Load(cfgFile string) (*Config, error) {
	v := viper.New()

	// Defaults
	v.SetDefault("data_dir", defaultDataDir())
	v.SetDefault("timeout", "120s")
	v.SetDefault("requests_per_second", 0)
	v.SetDefault("log_level", "info")
	v.SetDefault("default_provider", "openai")

	// Config file
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.config/switchboard")
	}

	// Environment variables
	v.SetEnvPrefix("SWITCHBOARD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	// Resolve data dir to absolute so relative invocations share state.
	if !filepath.IsAbs(cfg.DataDir) {
		abs, err := filepath.Abs(cfg.DataDir)
		if err != nil {
			return nil, fmt.Errorf("resolving data dir: %w", err)
		}
		cfg.DataDir = abs
	}

	return &cfg, nil
}

// APIKeyFor resolves the API key for a provider id. Explicit configuration
// under providers.<id>.api_key wins; otherwise the conventional environment
// variable <ID>_API_KEY is consulted, with dashes mapped to underscores
// (e.g. "openrouter" -> OPENROUTER_API_KEY, "z-ai" -> Z_AI_API_KEY).
func (c *Config) APIKeyFor(providerID string) string {
	if p, ok := c.Providers[providerID]; ok && p.APIKey != "" {
		return p.APIKey
	}
	envKey := strings.ToUpper(strings.ReplaceAll(providerID, "-", "_")) + "_API_KEY"
	return os.Getenv(envKey)
}

// RequestTimeout parses the configured timeout, falling back to two minutes
// on empty or malformed values.
func (c *Config) RequestTimeout() time.Duration {
	d, err := time.ParseDuration(c.Timeout)
	if err != nil || d <= 0 {
		return 2 * time.Minute
	}
	return d
}

func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".switchboard"
	}
	return filepath.Join(home, ".switchboard")
}
