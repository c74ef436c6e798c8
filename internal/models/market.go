package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Quote is a point-in-time equity quote.
type Quote struct {
	Symbol    string          `json:"symbol"`
	Name      string          `json:"name,omitempty"`
	Currency  string          `json:"currency,omitempty"`
	Exchange  string          `json:"exchange,omitempty"`
	Price     decimal.Decimal `json:"price"`
	Open      decimal.Decimal `json:"open"`
	High      decimal.Decimal `json:"high"`
	Low       decimal.Decimal `json:"low"`
	Volume    int64           `json:"volume"`
	Timestamp time.Time       `json:"timestamp"`
}

// Observation is the latest value of one macro series.
type Observation struct {
	SeriesID string          `json:"series_id"`
	Date     string          `json:"date"`
	Value    decimal.Decimal `json:"value"`
}
