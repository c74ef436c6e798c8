package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManagerCreatesAndUpdates(t *testing.T) {
	dir := t.TempDir()
	mgr, err := NewManager(WithConfigDir(dir))
	require.NoError(t, err)

	path := filepath.Join(dir, "config.json")
	_, err = os.Stat(path)
	require.NoError(t, err, "config file not created")
	assert.Equal(t, path, mgr.Path())

	cfg := mgr.Get()
	cfg.ProjectDir = filepath.Join(dir, "project")
	cfg.ResultsDir = filepath.Join(dir, "results")
	cfg.Tickers = []string{"MSFT"}

	data, err := json.Marshal(cfg)
	require.NoError(t, err)
	require.NoError(t, mgr.UpdateFromJSON(string(data)))

	updated := mgr.Get()
	assert.Equal(t, cfg.ProjectDir, updated.ProjectDir)
	assert.Equal(t, []string{"MSFT"}, updated.Tickers)

	reopened, err := NewManager(WithConfigPath(path))
	require.NoError(t, err)
	assert.Equal(t, updated, reopened.Get())
}

func TestManagerRejectsInvalidUpdate(t *testing.T) {
	mgr, err := NewManager(WithConfigDir(t.TempDir()))
	require.NoError(t, err)

	cfg := mgr.Get()
	cfg.LLMProvider = "carrier-pigeon"
	assert.Error(t, mgr.Update(cfg))
	assert.Equal(t, ProviderScripted, mgr.Get().LLMProvider)
}

func TestManagerYAMLRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "hedgehog.yaml")

	initial := DefaultConfigWithRoot(dir)
	initial.CapabilityTimeout = 90 * time.Second
	initial.DataSource = SourceLive

	mgr, err := NewManager(WithConfigPath(path), WithInitialConfig(initial))
	require.NoError(t, err)

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "data_source: live")

	cfg := mgr.Get()
	cfg.Tickers = []string{"NVDA", "TSLA"}
	require.NoError(t, mgr.Update(cfg))

	require.NoError(t, mgr.Reload())
	got := mgr.Get()
	assert.Equal(t, 90*time.Second, got.CapabilityTimeout)
	assert.Equal(t, []string{"NVDA", "TSLA"}, got.Tickers)
}

func TestManagerReloadKeepsConfigOnBadFile(t *testing.T) {
	dir := t.TempDir()
	mgr, err := NewManager(WithConfigDir(dir))
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(mgr.Path(), []byte("{not json"), 0o644))
	assert.Error(t, mgr.Reload())
	assert.Equal(t, ProviderScripted, mgr.Get().LLMProvider)
}

func TestManagerWriteLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	mgr, err := NewManager(WithConfigPath(filepath.Join(dir, "hedgehog.yaml")))
	require.NoError(t, err)

	cfg := mgr.Get()
	cfg.Tickers = []string{"NVDA"}
	require.NoError(t, mgr.Update(cfg))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	for _, e := range entries {
		assert.NotContains(t, e.Name(), ".hedgehog.yaml-")
	}
	assert.FileExists(t, mgr.Path())
}
