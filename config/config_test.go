package config

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfigWithRoot(t *testing.T) {
	cfg := DefaultConfigWithRoot("/srv/hedgehog")

	assert.Equal(t, filepath.Join("/srv/hedgehog", "images"), cfg.ImagesDir)
	assert.Equal(t, ProviderScripted, cfg.LLMProvider)
	assert.Equal(t, SourceStatic, cfg.DataSource)
	assert.Equal(t, 3, cfg.CapabilityMaxAttempts)
	require.NoError(t, cfg.Validate())
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("LLM_PROVIDER", "DeepSeek")
	t.Setenv("DEEPSEEK_API_KEY", "sk-test")
	t.Setenv("HEDGEHOG_TICKERS", "msft, nvda ,,")
	t.Setenv("CAPABILITY_TIMEOUT", "15s")
	t.Setenv("CAPABILITY_MAX_ATTEMPTS", "5")
	t.Setenv("HISTORY_ENABLED", "false")

	cfg := DefaultConfigWithRoot(t.TempDir())
	cfg.loadFromEnv()

	assert.Equal(t, ProviderDeepSeek, cfg.LLMProvider)
	assert.Equal(t, "sk-test", cfg.APIKey())
	assert.Equal(t, []string{"msft", "nvda"}, cfg.Tickers)
	assert.Equal(t, 15*time.Second, cfg.CapabilityTimeout)
	assert.Equal(t, 5, cfg.CapabilityMaxAttempts)
	assert.False(t, cfg.HistoryEnabled)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"provider", func(c *Config) { c.LLMProvider = "nope" }},
		{"source", func(c *Config) { c.DataSource = "ftp" }},
		{"attempts", func(c *Config) { c.CapabilityMaxAttempts = 0 }},
		{"timeout", func(c *Config) { c.CapabilityTimeout = 0 }},
		{"live without tickers", func(c *Config) { c.DataSource = SourceLive; c.Tickers = nil }},
		{"port", func(c *Config) { c.EinoDebugPort = 70000 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfigWithRoot(t.TempDir())
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestEnsureDirectories(t *testing.T) {
	root := t.TempDir()
	cfg := DefaultConfigWithRoot(root)
	require.NoError(t, cfg.EnsureDirectories())

	assert.DirExists(t, cfg.ResultsDir)
	assert.DirExists(t, cfg.ImagesDir)
	assert.DirExists(t, filepath.Dir(cfg.HistoryDBPath))
}
