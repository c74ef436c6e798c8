package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dyike/hedgehog/config"
	"github.com/dyike/hedgehog/consts"
)

// writeConfig stores an offline config rooted at a temp dir and returns its path.
func writeConfig(t *testing.T, mutate func(*config.Config)) (string, *config.Config) {
	t.Helper()
	dir := t.TempDir()
	cfg := config.DefaultConfigWithRoot(dir)
	cfg.MermaidURL = "http://127.0.0.1:1"
	if mutate != nil {
		mutate(cfg)
	}
	path := filepath.Join(dir, "hedgehog.yaml")
	_, err := config.NewManager(config.WithConfigPath(path), config.WithInitialConfig(cfg))
	require.NoError(t, err)
	return path, cfg
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := NewRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestRunCommandPrintsDecisionAndTrace(t *testing.T) {
	path, cfg := writeConfig(t, nil)

	out, err := execute(t, "--config", path, "run")
	require.NoError(t, err)

	assert.Contains(t, out, "stateDiagram-v2")
	assert.Contains(t, out, "Investment Decision")
	assert.Contains(t, out, "AAPL")
	assert.Contains(t, out, "Execution History")
	assert.Contains(t, out, consts.PortfolioManagerDecision)
	assert.Less(t, strings.Index(out, "Investment Decision"), strings.Index(out, "Execution History"))

	entries, err := os.ReadDir(cfg.ResultsDir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.FileExists(t, filepath.Join(cfg.ResultsDir, entries[0].Name(), "decision.md"))

	history, err := execute(t, "--config", path, "history")
	require.NoError(t, err)
	assert.Contains(t, history, entries[0].Name())

	detail, err := execute(t, "--config", path, "history", "show", entries[0].Name())
	require.NoError(t, err)
	assert.Contains(t, detail, "Rationale")
}

func TestHistoryShowUnknownRun(t *testing.T) {
	path, _ := writeConfig(t, nil)
	_, err := execute(t, "--config", path, "history", "show", "missing")
	assert.ErrorContains(t, err, "not found")
}

func TestAnalyzeCommandFillsMarketData(t *testing.T) {
	path, cfg := writeConfig(t, nil)
	data := filepath.Join(cfg.ProjectDir, "aapl.json")
	require.NoError(t, os.WriteFile(data, []byte(`{"financial_data":{"pe_ratio":28.4},"peer_data":{"MSFT":{"pe_ratio":33.1}}}`), 0o644))

	out, err := execute(t, "--config", path, "analyze", "AAPL", "--persona", "valuation", "--data", data)
	require.NoError(t, err)
	assert.Contains(t, out, "Valuation on AAPL")
	assert.Contains(t, out, `"ticker": "AAPL"`)
}

func TestAnalyzeCommandReportsMissingSections(t *testing.T) {
	path, _ := writeConfig(t, nil)

	_, err := execute(t, "--config", path, "analyze", "AAPL", "--persona", "Warren Buffett")
	require.Error(t, err)
	assert.ErrorContains(t, err, "missing "+consts.Section_CompanyData)
}

func TestAnalyzeCommandReadsDataFile(t *testing.T) {
	path, cfg := writeConfig(t, nil)
	data := filepath.Join(cfg.ProjectDir, "aapl.json")
	require.NoError(t, os.WriteFile(data, []byte(`{"price_data":{"close":[180.1,181.4]}}`), 0o644))

	out, err := execute(t, "--config", path, "analyze", "AAPL", "--persona", "technicals", "--data", data)
	require.NoError(t, err)
	assert.Contains(t, out, "Technicals on AAPL")
}

func TestAnalyzeCommandRejectsUnknownPersona(t *testing.T) {
	path, _ := writeConfig(t, nil)
	_, err := execute(t, "--config", path, "analyze", "AAPL", "--persona", "nostradamus")
	assert.ErrorContains(t, err, "unknown persona")
}

func TestDiagramCommandFallsBack(t *testing.T) {
	path, cfg := writeConfig(t, nil)

	out, err := execute(t, "--config", path, "diagram")
	require.NoError(t, err)
	assert.Contains(t, out, "stateDiagram-v2")
	assert.Contains(t, out, "mermaid.live")
	assert.NoFileExists(t, filepath.Join(cfg.ImagesDir, "investment_graph.png"))
}

func TestConfigValidate(t *testing.T) {
	path, _ := writeConfig(t, func(c *config.Config) {
		c.LLMProvider = config.ProviderDeepSeek
		c.DeepSeekAPIKey = ""
	})
	out, err := execute(t, "--config", path, "config", "validate")
	require.NoError(t, err)
	assert.Contains(t, out, "1 warnings")

	_, err = execute(t, "--config", path, "run")
	assert.Error(t, err)
}

func TestVersionCommand(t *testing.T) {
	path, _ := writeConfig(t, nil)
	out, err := execute(t, "--config", path, "version")
	require.NoError(t, err)
	assert.Equal(t, "hedgehog dev\n", out)
}
