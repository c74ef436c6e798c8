package cache

import (
	"strings"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/dyike/hedgehog/internal/models"
)

const defaultQuoteCacheSize = 256

// QuoteCache keeps recent quotes in memory so repeated runs inside the TTL
// do not hit the quote provider again.
type QuoteCache struct {
	lru *expirable.LRU[string, *models.Quote]
}

func NewQuoteCache(size int, ttl time.Duration) *QuoteCache {
	if size <= 0 {
		size = defaultQuoteCacheSize
	}
	return &QuoteCache{lru: expirable.NewLRU[string, *models.Quote](size, nil, ttl)}
}

func (c *QuoteCache) Get(symbol string) (*models.Quote, bool) {
	return c.lru.Get(key(symbol))
}

func (c *QuoteCache) Put(q *models.Quote) {
	if q == nil {
		return
	}
	c.lru.Add(key(q.Symbol), q)
}

func (c *QuoteCache) Len() int { return c.lru.Len() }

func key(symbol string) string {
	return strings.ToUpper(strings.TrimSpace(symbol))
}
