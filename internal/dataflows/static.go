package dataflows

import (
	"context"

	"github.com/dyike/hedgehog/internal/models"
)

// StaticSource returns a fixed payload. It backs offline runs and tests.
type StaticSource struct {
	name string
	data func() map[string]any
}

func NewStaticSource(name string, data func() map[string]any) *StaticSource {
	return &StaticSource{name: name, data: data}
}

func (s *StaticSource) Name() string { return s.name }

func (s *StaticSource) Fetch(ctx context.Context) (*models.SourcePayload, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return payload(s.name, s.data()), nil
}

// StaticEquities serves a snapshot of equity prices.
func StaticEquities() *StaticSource {
	return NewStaticSource("static_equities", func() map[string]any {
		return map[string]any{
			"stocks": map[string]any{
				"AAPL":  180.5,
				"GOOGL": 140.2,
			},
			"timestamp": "2023-07-01T12:00:00Z",
		}
	})
}

// StaticMacro serves a snapshot of bond yields and commodity prices.
func StaticMacro() *StaticSource {
	return NewStaticSource("static_macro", func() map[string]any {
		return map[string]any{
			"bonds": map[string]any{
				"US10Y": 3.8,
				"US30Y": 4.2,
			},
			"commodities": map[string]any{
				"GOLD": 2000.5,
			},
			"timestamp": "2023-07-01T12:05:00Z",
		}
	})
}
