package dataflows

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/dyike/hedgehog/internal/models"
	"github.com/dyike/hedgehog/internal/utils"
)

// seriesKey places a FRED series under a payload group.
type seriesKey struct {
	group string
	name  string
}

var knownSeries = map[string]seriesKey{
	"DGS2":             {"bonds", "US2Y"},
	"DGS10":            {"bonds", "US10Y"},
	"DGS30":            {"bonds", "US30Y"},
	"DCOILWTICO":       {"commodities", "WTI"},
	"DCOILBRENTEU":     {"commodities", "BRENT"},
	"GOLDAMGBD228NLBM": {"commodities", "GOLD"},
	"DEXUSEU":          {"fx", "EURUSD"},
}

// FredSource fetches the latest observation of macro series from the FRED API.
type FredSource struct {
	client *resty.Client
	apiKey string
	series []string
	retry  utils.RetryConfig
	logger *zap.Logger
}

type FredOption func(*FredSource)

func WithFredBaseURL(url string) FredOption {
	return func(s *FredSource) {
		if url != "" {
			s.client.SetBaseURL(url)
		}
	}
}

func WithFredRetry(cfg utils.RetryConfig) FredOption {
	return func(s *FredSource) { s.retry = cfg }
}

func WithFredLogger(l *zap.Logger) FredOption {
	return func(s *FredSource) { s.logger = l }
}

func NewFredSource(apiKey string, series []string, opts ...FredOption) *FredSource {
	client := resty.New()
	client.SetBaseURL("https://api.stlouisfed.org")
	client.SetTimeout(30 * time.Second)

	s := &FredSource{
		client: client,
		apiKey: apiKey,
		series: series,
		retry:  utils.DefaultRetryConfig(),
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *FredSource) Name() string { return "fred" }

type fredObservations struct {
	Observations []struct {
		Date  string `json:"date"`
		Value string `json:"value"`
	} `json:"observations"`
}

// Fetch returns the latest value of every series grouped as
// {"bonds": {...}, "commodities": {...}, "timestamp": RFC3339}.
func (s *FredSource) Fetch(ctx context.Context) (*models.SourcePayload, error) {
	if len(s.series) == 0 {
		return nil, &models.SourceFailure{Source: s.Name(), Err: fmt.Errorf("no series configured")}
	}

	var (
		mu  sync.Mutex
		obs = make(map[string]*models.Observation, len(s.series))
	)
	g, gctx := errgroup.WithContext(ctx)
	for _, id := range s.series {
		g.Go(func() error {
			o, err := s.Latest(gctx, id)
			if err != nil {
				return err
			}
			if o == nil {
				s.logger.Warn("series has no recent value", zap.String("series", id))
				return nil
			}
			mu.Lock()
			obs[id] = o
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, &models.SourceFailure{Source: s.Name(), Err: err}
	}
	if len(obs) == 0 {
		return nil, &models.SourceFailure{Source: s.Name(), Err: fmt.Errorf("no series returned a value")}
	}

	data := map[string]any{"timestamp": time.Now().UTC().Format(time.RFC3339)}
	for id, o := range obs {
		key, ok := knownSeries[strings.ToUpper(id)]
		if !ok {
			key = seriesKey{"series", id}
		}
		group, _ := data[key.group].(map[string]any)
		if group == nil {
			group = make(map[string]any)
			data[key.group] = group
		}
		group[key.name] = o.Value.InexactFloat64()
	}
	return payload(s.Name(), data), nil
}

// Latest returns the most recent observation of a series, or nil when FRED
// reports it as missing.
func (s *FredSource) Latest(ctx context.Context, seriesID string) (*models.Observation, error) {
	var result *models.Observation
	err := utils.WithRetry(ctx, s.retry, func(ctx context.Context) error {
		resp, err := s.client.R().
			SetContext(ctx).
			SetQueryParams(map[string]string{
				"series_id":  seriesID,
				"api_key":    s.apiKey,
				"file_type":  "json",
				"sort_order": "desc",
				"limit":      "1",
			}).
			Get("/fred/series/observations")
		if err != nil {
			return fmt.Errorf("failed to fetch series %s: %w", seriesID, err)
		}
		if resp.IsError() {
			return fmt.Errorf("API error %d: %s", resp.StatusCode(), resp.String())
		}

		var body fredObservations
		if err := json.Unmarshal(resp.Body(), &body); err != nil {
			return fmt.Errorf("failed to parse series %s: %w", seriesID, err)
		}
		if len(body.Observations) == 0 || body.Observations[0].Value == "." {
			result = nil
			return nil
		}
		o := body.Observations[0]
		v, err := decimal.NewFromString(o.Value)
		if err != nil {
			return fmt.Errorf("series %s has non-numeric value %q: %w", seriesID, o.Value, err)
		}
		result = &models.Observation{SeriesID: seriesID, Date: o.Date, Value: v}
		return nil
	})
	return result, err
}
