package dataflows

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	finance "github.com/piquette/finance-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dyike/hedgehog/config"
	"github.com/dyike/hedgehog/internal/models"
	"github.com/dyike/hedgehog/internal/utils"
)

var fastRetry = utils.RetryConfig{MaxRetries: 1, BaseDelay: time.Millisecond, MaxDelay: time.Millisecond, Multiplier: 1}

func TestStaticSources(t *testing.T) {
	one, err := StaticEquities().Fetch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "static_equities", one.Source)
	assert.Equal(t, 180.5, one.Data["stocks"].(map[string]any)["AAPL"])

	two, err := StaticMacro().Fetch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3.8, two.Data["bonds"].(map[string]any)["US10Y"])

	// every call returns a fresh map
	one.Data["stocks"].(map[string]any)["AAPL"] = 1.0
	again, err := StaticEquities().Fetch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 180.5, again.Data["stocks"].(map[string]any)["AAPL"])

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = StaticMacro().Fetch(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestYahooSourceUsesCache(t *testing.T) {
	var calls atomic.Int32
	get := func(symbol string) (*finance.Quote, error) {
		calls.Add(1)
		return &finance.Quote{
			ShortName:           symbol + " Inc",
			RegularMarketPrice:  180.456,
			RegularMarketOpen:   179,
			RegularMarketVolume: 1000,
		}, nil
	}
	src := NewYahooSource([]string{"AAPL", "GOOGL"}, WithQuoteFunc(get), WithYahooRetry(fastRetry))

	p, err := src.Fetch(context.Background())
	require.NoError(t, err)
	stocks := p.Data["stocks"].(map[string]any)
	assert.Equal(t, 180.46, stocks["AAPL"])
	assert.Len(t, stocks, 2)
	assert.EqualValues(t, 2, calls.Load())

	_, err = src.Fetch(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, 2, calls.Load(), "second fetch should be served from cache")
}

func TestYahooSourceFailure(t *testing.T) {
	get := func(symbol string) (*finance.Quote, error) {
		if symbol == "BAD" {
			return nil, errors.New("not found")
		}
		return &finance.Quote{RegularMarketPrice: 10}, nil
	}
	src := NewYahooSource([]string{"AAPL", "BAD"}, WithQuoteFunc(get), WithYahooRetry(fastRetry))

	_, err := src.Fetch(context.Background())
	var sf *models.SourceFailure
	require.ErrorAs(t, err, &sf)
	assert.Equal(t, "yahoo_finance", sf.Source)
	assert.ErrorIs(t, err, models.ErrSource)
}

func fredServer(t *testing.T, values map[string]string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/fred/series/observations", r.URL.Path)
		assert.Equal(t, "test-key", r.URL.Query().Get("api_key"))
		assert.Equal(t, "desc", r.URL.Query().Get("sort_order"))

		v, ok := values[r.URL.Query().Get("series_id")]
		if !ok {
			http.Error(w, `{"error_message":"Bad Request"}`, http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"observations":[{"date":"2023-07-01","value":"` + v + `"}]}`))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestFredSourceGroupsSeries(t *testing.T) {
	srv := fredServer(t, map[string]string{"DGS10": "3.81", "DGS30": "4.02", "DCOILWTICO": "70.64", "T10YIE": "."})
	src := NewFredSource("test-key", []string{"DGS10", "DGS30", "DCOILWTICO", "T10YIE"},
		WithFredBaseURL(srv.URL), WithFredRetry(fastRetry))

	p, err := src.Fetch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "fred", p.Source)
	assert.Equal(t, map[string]any{"US10Y": 3.81, "US30Y": 4.02}, p.Data["bonds"])
	assert.Equal(t, map[string]any{"WTI": 70.64}, p.Data["commodities"])
	assert.NotContains(t, p.Data, "series", "missing observations are dropped")
	assert.NotEmpty(t, p.Data["timestamp"])
}

func TestFredSourceHTTPError(t *testing.T) {
	srv := fredServer(t, map[string]string{"DGS10": "3.81"})
	src := NewFredSource("test-key", []string{"DGS10", "NOPE"}, WithFredBaseURL(srv.URL), WithFredRetry(fastRetry))

	_, err := src.Fetch(context.Background())
	var sf *models.SourceFailure
	require.ErrorAs(t, err, &sf)
	assert.Contains(t, err.Error(), "400")
}

func TestNormalizeSymbols(t *testing.T) {
	got, err := NormalizeSymbols([]string{" aapl", "GOOGL", "AAPL", "brk.b"})
	require.NoError(t, err)
	assert.Equal(t, []string{"AAPL", "GOOGL", "BRK.B"}, got)

	_, err = NormalizeSymbols([]string{"AA PL"})
	assert.Error(t, err)
	_, err = NormalizeSymbols([]string{""})
	assert.Error(t, err)
}

func TestNewSources(t *testing.T) {
	cfg := config.DefaultConfigWithRoot(t.TempDir())

	s, err := NewSources(cfg, nil)
	require.NoError(t, err)
	assert.Equal(t, "static_equities", s.Equities.Name())
	assert.Equal(t, "static_macro", s.Macro.Name())

	cfg.DataSource = config.SourceLive
	s, err = NewSources(cfg, nil)
	require.NoError(t, err)
	assert.Equal(t, "yahoo_finance", s.Equities.Name())
	assert.Equal(t, "static_macro", s.Macro.Name())

	cfg.FredAPIKey = "k"
	s, err = NewSources(cfg, nil)
	require.NoError(t, err)
	assert.Equal(t, "fred", s.Macro.Name())

	cfg.DataSource = "carrier-pigeon"
	_, err = NewSources(cfg, nil)
	assert.Error(t, err)
}
