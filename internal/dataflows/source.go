package dataflows

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/dyike/hedgehog/config"
	"github.com/dyike/hedgehog/internal/models"
)

// Source produces one raw payload for a fetch stage.
type Source interface {
	Name() string
	Fetch(ctx context.Context) (*models.SourcePayload, error)
}

// Sources are the two independent inputs of a workflow run.
type Sources struct {
	Equities Source
	Macro    Source
}

// NewSources builds the sources selected by cfg.DataSource.
func NewSources(cfg *config.Config, logger *zap.Logger) (*Sources, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.Named("dataflows")

	switch cfg.DataSource {
	case config.SourceStatic:
		return &Sources{Equities: StaticEquities(), Macro: StaticMacro()}, nil
	case config.SourceLive:
		tickers, err := NormalizeSymbols(cfg.Tickers)
		if err != nil {
			return nil, err
		}
		equities := NewYahooSource(tickers, WithQuoteTTL(cfg.QuoteTTL), WithYahooLogger(logger))
		if cfg.FredAPIKey == "" {
			logger.Warn("FRED_API_KEY not set, using static macro data")
			return &Sources{Equities: equities, Macro: StaticMacro()}, nil
		}
		macro := NewFredSource(cfg.FredAPIKey, cfg.FredSeries, WithFredBaseURL(cfg.FredURL), WithFredLogger(logger))
		return &Sources{Equities: equities, Macro: macro}, nil
	}
	return nil, fmt.Errorf("unsupported data source %q", cfg.DataSource)
}

func payload(source string, data map[string]any) *models.SourcePayload {
	return &models.SourcePayload{Source: source, Data: data, FetchedAt: time.Now().UTC()}
}
