package cache

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dyike/hedgehog/internal/models"
)

func TestQuoteCacheNormalisesSymbols(t *testing.T) {
	c := NewQuoteCache(0, time.Minute)
	c.Put(&models.Quote{Symbol: "AAPL", Price: decimal.NewFromFloat(180.5)})

	q, ok := c.Get(" aapl ")
	require.True(t, ok)
	assert.True(t, q.Price.Equal(decimal.NewFromFloat(180.5)))
	assert.Equal(t, 1, c.Len())

	c.Put(nil)
	assert.Equal(t, 1, c.Len())
}

func TestQuoteCacheExpires(t *testing.T) {
	c := NewQuoteCache(4, 20*time.Millisecond)
	c.Put(&models.Quote{Symbol: "GOOGL"})

	assert.Eventually(t, func() bool {
		_, ok := c.Get("GOOGL")
		return !ok
	}, time.Second, 10*time.Millisecond)
}
