package capability

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"sync"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	"github.com/dyike/hedgehog/internal/models"
)

var (
	personaLine = regexp.MustCompile(`(?m)^Persona: (\S+)\s*$`)
	tickerLine  = regexp.MustCompile(`(?m)^Ticker: (\S+)\s*$`)
	focusField  = regexp.MustCompile(`"focus":\s*"([^"]*)"`)
)

// Fixture builds the canned result for a ticker and, for market views, a focus.
type Fixture func(ticker, focus string) models.Result

// Scripted answers from canned fixtures instead of a model. It is used for
// offline runs and tests.
type Scripted struct {
	mu       sync.Mutex
	fixtures map[models.Persona]Fixture
	calls    map[models.Persona]int
}

func NewScripted() *Scripted {
	return &Scripted{
		fixtures: defaultFixtures(),
		calls:    make(map[models.Persona]int),
	}
}

// WithFixture replaces the canned answer for p.
func (s *Scripted) WithFixture(p models.Persona, f Fixture) *Scripted {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fixtures[p] = f
	return s
}

// Calls reports how many times p has been asked.
func (s *Scripted) Calls(p models.Persona) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[p]
}

func (s *Scripted) Generate(ctx context.Context, input []*schema.Message, _ ...model.Option) (*schema.Message, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var persona, ticker, focus string
	for _, m := range input {
		if m.Role != schema.User {
			continue
		}
		if match := personaLine.FindStringSubmatch(m.Content); match != nil {
			persona = match[1]
		}
		if match := tickerLine.FindStringSubmatch(m.Content); match != nil {
			ticker = match[1]
		}
		if match := focusField.FindStringSubmatch(m.Content); match != nil {
			focus = match[1]
		}
	}
	if persona == "" {
		return nil, fmt.Errorf("scripted generator: prompt names no persona")
	}

	s.mu.Lock()
	s.calls[models.Persona(persona)]++
	f, ok := s.fixtures[models.Persona(persona)]
	s.mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("scripted generator: no fixture for %s", persona)
	}
	if ticker == "n/a" {
		ticker = ""
	}

	data, err := json.Marshal(f(strings.ToUpper(ticker), focus))
	if err != nil {
		return nil, fmt.Errorf("scripted generator: %w", err)
	}
	return &schema.Message{
		Role:         schema.Assistant,
		Content:      string(data),
		ResponseMeta: &schema.ResponseMeta{FinishReason: "stop"},
	}, nil
}
