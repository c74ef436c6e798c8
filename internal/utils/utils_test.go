package utils

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dyike/hedgehog/consts"
	"github.com/dyike/hedgehog/internal/models"
)

func TestRetryDelay(t *testing.T) {
	c := DefaultRetryConfig()
	assert.Equal(t, time.Duration(0), c.Delay(0))
	assert.Equal(t, 500*time.Millisecond, c.Delay(1))
	assert.Equal(t, time.Second, c.Delay(2))
	assert.Equal(t, 5*time.Second, c.Delay(10))
}

func TestWithRetry(t *testing.T) {
	cfg := RetryConfig{MaxRetries: 2, BaseDelay: time.Millisecond, MaxDelay: time.Millisecond, Multiplier: 1}

	calls := 0
	err := WithRetry(context.Background(), cfg, func(context.Context) error {
		calls++
		if calls < 3 {
			return errors.New("flaky")
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, calls)

	calls = 0
	err = WithRetry(context.Background(), cfg, func(context.Context) error {
		calls++
		return errors.New("down")
	})
	assert.ErrorContains(t, err, "max retries exceeded")
	assert.Equal(t, 3, calls)
}

func TestWithRetryStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cfg := RetryConfig{MaxRetries: 5, BaseDelay: time.Hour, Multiplier: 1}

	calls := 0
	err := WithRetry(ctx, cfg, func(context.Context) error {
		calls++
		cancel()
		return errors.New("down")
	})
	assert.EqualError(t, err, "down")
	assert.Equal(t, 1, calls)
}

func TestLoadPersonaPrompt(t *testing.T) {
	for _, p := range append(models.Analysts, consts.Persona_MarketView, consts.Persona_InvestmentDecision) {
		text, err := LoadPersonaPrompt(p.String())
		require.NoError(t, err, p)
		assert.NotEmpty(t, text)
	}
	_, err := LoadPersonaPrompt("nobody")
	assert.Error(t, err)
}

func TestWriteRunReport(t *testing.T) {
	state := models.NewRunState("run-1", nil)
	state.RecordStep(consts.Start)
	state.AppendResult(consts.AgentAnalysisOne, &models.MarketView{
		Focus:           "tech stocks",
		Timeframe:       "short-term",
		Recommendations: []string{"Buy AAPL"},
		Confidence:      0.85,
		Rating:          8,
		Recommendation:  models.Buy,
		Reasoning:       "strong earnings",
	})
	state.RecordStep(consts.PortfolioManagerDecision)
	state.Decision = &models.InvestmentDecision{BuyAssets: []string{"AAPL"}, HoldAssets: []string{"GOOGL"}, Rationale: "balanced"}

	report := RunReport(state)
	assert.Contains(t, report, "| Buy | AAPL |")
	assert.Contains(t, report, "| Sell | - |")
	assert.Contains(t, report, "Rating: 8/10")
	assert.Contains(t, report, "Recommendation: Buy")
	assert.Contains(t, report, "1. start\n2. portfolio_manager_decision\n")

	dir := filepath.Join(t.TempDir(), "results", "run-1")
	path, err := WriteMarkdown(dir, "decision.md", report)
	require.NoError(t, err)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, report, string(data))
}
