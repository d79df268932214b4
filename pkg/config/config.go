// Package config loads application configuration from file, environment
// and defaults, in that order of increasing precedence for the
// environment and decreasing for defaults. The config file is optional;
// every setting has a usable default except the vault path, which must
// come from somewhere.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Config is the application configuration.
type Config struct {
	// VaultDir is the root of the markdown document store.
	VaultDir string `yaml:"vault_dir" mapstructure:"vault_dir"`

	// MemoryDir holds the persisted alias/entity/pattern record sets.
	MemoryDir string `yaml:"memory_dir" mapstructure:"memory_dir"`

	// Extension is the default document extension.
	Extension string `yaml:"extension" mapstructure:"extension"`

	// IgnorePatterns are glob patterns excluded from vault listings.
	IgnorePatterns []string `yaml:"ignore_patterns" mapstructure:"ignore_patterns"`

	// MaxCandidates caps how many fuzzy candidates are surfaced for
	// disambiguation.
	MaxCandidates int `yaml:"max_candidates" mapstructure:"max_candidates"`

	// MaxHistory caps the conversation turn ring buffer.
	MaxHistory int `yaml:"max_history" mapstructure:"max_history"`

	// MaxOperations caps the recent-operations ring buffer.
	MaxOperations int `yaml:"max_operations" mapstructure:"max_operations"`
}

// DefaultConfig returns the built-in defaults. MemoryDir defaults to
// ~/.recall/memory at load time, not here, so tests can construct
// configs without touching the home directory.
func DefaultConfig() *Config {
	return &Config{
		Extension:      ".md",
		IgnorePatterns: []string{".obsidian/**", ".trash/**", ".git/**"},
		MaxCandidates:  5,
		MaxHistory:     20,
		MaxOperations:  10,
	}
}

func configPath() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "recall", "config.yaml")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "recall", "config.yaml")
}

// Load reads the config file (if present) and environment overrides
// (RECALL_VAULT_DIR and friends) on top of the defaults.
func Load() (*Config, error) {
	cfg := DefaultConfig()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath(filepath.Dir(configPath()))

	v.SetEnvPrefix("RECALL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Register every key so env-only overrides are visible to Unmarshal.
	v.SetDefault("vault_dir", "")
	v.SetDefault("memory_dir", "")
	v.SetDefault("extension", cfg.Extension)
	v.SetDefault("ignore_patterns", cfg.IgnorePatterns)
	v.SetDefault("max_candidates", cfg.MaxCandidates)
	v.SetDefault("max_history", cfg.MaxHistory)
	v.SetDefault("max_operations", cfg.MaxOperations)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("config: read %s: %w", v.ConfigFileUsed(), err)
		}
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}

	if cfg.MemoryDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("config: resolve home directory: %w", err)
		}
		cfg.MemoryDir = filepath.Join(home, ".recall", "memory")
	}
	cfg.VaultDir = expandHome(cfg.VaultDir)
	cfg.MemoryDir = expandHome(cfg.MemoryDir)

	return cfg, nil
}

// Validate checks settings that have no sensible fallback.
func (c *Config) Validate() error {
	if c.VaultDir == "" {
		return fmt.Errorf("config: vault_dir is required (flag -vault, env RECALL_VAULT_DIR, or config file)")
	}
	if c.MaxCandidates < 1 {
		return fmt.Errorf("config: max_candidates must be at least 1")
	}
	if c.MaxHistory < 1 {
		return fmt.Errorf("config: max_history must be at least 1")
	}
	return nil
}

func expandHome(path string) string {
	if !strings.HasPrefix(path, "~") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}
