package models

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// AnalysisRequest bundles a ticker with named data sections. It is immutable
// once built; With returns a modified copy.
type AnalysisRequest struct {
	ticker   string
	sections map[string]any
}

func NewAnalysisRequest(ticker string, sections map[string]any) *AnalysisRequest {
	copied := make(map[string]any, len(sections))
	for k, v := range sections {
		copied[k] = v
	}
	return &AnalysisRequest{
		ticker:   strings.ToUpper(strings.TrimSpace(ticker)),
		sections: copied,
	}
}

func (r *AnalysisRequest) Ticker() string { return r.ticker }

func (r *AnalysisRequest) Section(name string) (any, bool) {
	v, ok := r.sections[name]
	return v, ok
}

func (r *AnalysisRequest) SectionNames() []string {
	names := make([]string, 0, len(r.sections))
	for k := range r.sections {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// With returns a copy of r with the section set to value.
func (r *AnalysisRequest) With(name string, value any) *AnalysisRequest {
	next := NewAnalysisRequest(r.ticker, r.sections)
	next.sections[name] = value
	return next
}

// Missing returns the required sections of p that r does not carry.
func (r *AnalysisRequest) Missing(p Persona) []string {
	var missing []string
	for _, name := range requiredSections[p] {
		if v, ok := r.sections[name]; !ok || v == nil {
			missing = append(missing, name)
		}
	}
	return missing
}

func (r *AnalysisRequest) MarshalJSON() ([]byte, error) {
	payload := map[string]any{"sections": r.sections}
	if r.ticker != "" {
		payload["ticker"] = r.ticker
	}
	return json.Marshal(payload)
}

func (r *AnalysisRequest) UnmarshalJSON(data []byte) error {
	var payload struct {
		Ticker   string         `json:"ticker"`
		Sections map[string]any `json:"sections"`
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		return fmt.Errorf("decode analysis request: %w", err)
	}
	*r = *NewAnalysisRequest(payload.Ticker, payload.Sections)
	return nil
}
