package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, ".md", cfg.Extension)
	assert.Equal(t, 5, cfg.MaxCandidates)
	assert.Equal(t, 20, cfg.MaxHistory)
	assert.Equal(t, 10, cfg.MaxOperations)
	assert.Contains(t, cfg.IgnorePatterns, ".obsidian/**")
}

func TestValidateRequiresVaultDir(t *testing.T) {
	cfg := DefaultConfig()
	assert.Error(t, cfg.Validate())

	cfg.VaultDir = "/tmp/vault"
	assert.NoError(t, cfg.Validate())
}

func TestValidateRejectsBadLimits(t *testing.T) {
	cfg := DefaultConfig()
	cfg.VaultDir = "/tmp/vault"

	cfg.MaxCandidates = 0
	assert.Error(t, cfg.Validate())

	cfg.MaxCandidates = 5
	cfg.MaxHistory = 0
	assert.Error(t, cfg.Validate())
}

func TestExpandHome(t *testing.T) {
	assert.Equal(t, "/abs/path", expandHome("/abs/path"))
	assert.Equal(t, "relative", expandHome("relative"))

	expanded := expandHome("~/notes")
	assert.NotContains(t, expanded, "~")
	assert.Contains(t, expanded, "notes")
}

func TestEnvOverride(t *testing.T) {
	t.Setenv("RECALL_VAULT_DIR", "/env/vault")
	t.Setenv("XDG_CONFIG_HOME", t.TempDir()) // keep the real config file out of the test

	cfg, err := Load()
	assert.NoError(t, err)
	assert.Equal(t, "/env/vault", cfg.VaultDir)
	assert.Equal(t, ".md", cfg.Extension)
}
