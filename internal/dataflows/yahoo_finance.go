package dataflows

import (
	"context"
	"fmt"
	"sync"
	"time"

	finance "github.com/piquette/finance-go"
	"github.com/piquette/finance-go/quote"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/dyike/hedgehog/internal/cache"
	"github.com/dyike/hedgehog/internal/models"
	"github.com/dyike/hedgehog/internal/utils"
)

// QuoteFunc fetches one quote. quote.Get is the production implementation.
type QuoteFunc func(symbol string) (*finance.Quote, error)

// YahooSource fetches equity quotes from Yahoo Finance.
type YahooSource struct {
	tickers []string
	get     QuoteFunc
	cache   *cache.QuoteCache
	retry   utils.RetryConfig
	logger  *zap.Logger
}

type YahooOption func(*YahooSource)

func WithQuoteFunc(f QuoteFunc) YahooOption {
	return func(s *YahooSource) { s.get = f }
}

func WithQuoteTTL(ttl time.Duration) YahooOption {
	return func(s *YahooSource) {
		if ttl > 0 {
			s.cache = cache.NewQuoteCache(0, ttl)
		}
	}
}

func WithYahooRetry(cfg utils.RetryConfig) YahooOption {
	return func(s *YahooSource) { s.retry = cfg }
}

func WithYahooLogger(l *zap.Logger) YahooOption {
	return func(s *YahooSource) { s.logger = l }
}

func NewYahooSource(tickers []string, opts ...YahooOption) *YahooSource {
	s := &YahooSource{
		tickers: tickers,
		get:     quote.Get,
		cache:   cache.NewQuoteCache(0, 5*time.Minute),
		retry:   utils.DefaultRetryConfig(),
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *YahooSource) Name() string { return "yahoo_finance" }

// Fetch returns {"stocks": {SYMBOL: price}, "quotes": {...}, "timestamp": RFC3339}.
func (s *YahooSource) Fetch(ctx context.Context) (*models.SourcePayload, error) {
	if len(s.tickers) == 0 {
		return nil, &models.SourceFailure{Source: s.Name(), Err: fmt.Errorf("no tickers configured")}
	}

	var (
		mu     sync.Mutex
		quotes = make(map[string]*models.Quote, len(s.tickers))
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for _, symbol := range s.tickers {
		g.Go(func() error {
			q, err := s.Quote(gctx, symbol)
			if err != nil {
				return err
			}
			mu.Lock()
			quotes[symbol] = q
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, &models.SourceFailure{Source: s.Name(), Err: err}
	}

	stocks := make(map[string]any, len(quotes))
	details := make(map[string]any, len(quotes))
	for symbol, q := range quotes {
		stocks[symbol] = q.Price.InexactFloat64()
		details[symbol] = map[string]any{
			"name":     q.Name,
			"open":     q.Open.InexactFloat64(),
			"high":     q.High.InexactFloat64(),
			"low":      q.Low.InexactFloat64(),
			"volume":   q.Volume,
			"currency": q.Currency,
			"exchange": q.Exchange,
		}
	}
	return payload(s.Name(), map[string]any{
		"stocks":    stocks,
		"quotes":    details,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}), nil
}

// Quote returns the cached quote for symbol or fetches it with retry.
func (s *YahooSource) Quote(ctx context.Context, symbol string) (*models.Quote, error) {
	if err := ValidateSymbol(symbol); err != nil {
		return nil, err
	}
	symbol = NormalizeSymbol(symbol)
	if q, ok := s.cache.Get(symbol); ok {
		return q, nil
	}

	var result *models.Quote
	err := utils.WithRetry(ctx, s.retry, func(ctx context.Context) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		q, err := s.get(symbol)
		if err != nil {
			return fmt.Errorf("failed to get quote for %s: %w", symbol, err)
		}
		if q == nil {
			return fmt.Errorf("no quote returned for %s", symbol)
		}
		result = &models.Quote{
			Symbol:    symbol,
			Name:      q.ShortName,
			Currency:  q.CurrencyID,
			Exchange:  q.FullExchangeName,
			Price:     decimal.NewFromFloat(q.RegularMarketPrice).Round(2),
			Open:      decimal.NewFromFloat(q.RegularMarketOpen).Round(2),
			High:      decimal.NewFromFloat(q.RegularMarketDayHigh).Round(2),
			Low:       decimal.NewFromFloat(q.RegularMarketDayLow).Round(2),
			Volume:    int64(q.RegularMarketVolume),
			Timestamp: time.Now().UTC(),
		}
		return nil
	})
	if err != nil {
		s.logger.Warn("quote fetch failed", zap.String("symbol", symbol), zap.Error(err))
		return nil, err
	}
	s.cache.Put(result)
	return result, nil
}
