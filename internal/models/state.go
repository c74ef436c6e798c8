package models

import (
	"time"

	"github.com/dyike/hedgehog/consts"
)

// SourcePayload is the raw output of one fetch stage.
type SourcePayload struct {
	Source    string         `json:"source"`
	Data      map[string]any `json:"data"`
	FetchedAt time.Time      `json:"fetched_at"`
}

type AggregatedData struct {
	APIOne   map[string]any `json:"api_one_data"`
	APITwo   map[string]any `json:"api_two_data"`
	Combined map[string]any `json:"combined_data"`
}

// StageResult is one completed analysis, in completion order.
type StageResult struct {
	Stage       string    `json:"stage"`
	Persona     Persona   `json:"persona"`
	Result      Result    `json:"result"`
	CompletedAt time.Time `json:"completed_at"`
}

// RunState is owned by exactly one workflow execution. Concurrent branches
// write disjoint fields; the engine serialises access through the graph state lock.
type RunState struct {
	RunID      string              `json:"run_id"`
	Request    *AnalysisRequest    `json:"request,omitempty"`
	APIOne     *SourcePayload      `json:"api_one,omitempty"`
	APITwo     *SourcePayload      `json:"api_two,omitempty"`
	Aggregated *AggregatedData     `json:"aggregated,omitempty"`
	Results    []StageResult       `json:"results"`
	Completed  map[string]bool     `json:"completed"`
	Decision   *InvestmentDecision `json:"decision,omitempty"`
	Steps      []string            `json:"steps"`
	StartedAt  time.Time           `json:"started_at"`
}

var joinOrder = []string{consts.JoinOne, consts.JoinTwo, consts.JoinThree, consts.JoinFour}

func NewRunState(runID string, req *AnalysisRequest) *RunState {
	completed := make(map[string]bool, len(joinOrder))
	for _, key := range joinOrder {
		completed[key] = false
	}
	return &RunState{
		RunID:     runID,
		Request:   req,
		Completed: completed,
		StartedAt: time.Now(),
	}
}

func (s *RunState) MarkComplete(key string) {
	if s.Completed == nil {
		s.Completed = make(map[string]bool)
	}
	s.Completed[key] = true
}

// MissingCompletions returns the join keys whose flag is still false, in branch order.
func (s *RunState) MissingCompletions() []string {
	var missing []string
	for _, key := range joinOrder {
		if !s.Completed[key] {
			missing = append(missing, key)
		}
	}
	for key, done := range s.Completed {
		if !done && !isJoinKey(key) {
			missing = append(missing, key)
		}
	}
	return missing
}

func (s *RunState) AllComplete() bool { return len(s.MissingCompletions()) == 0 }

func (s *RunState) AppendResult(stage string, r Result) {
	s.Results = append(s.Results, StageResult{
		Stage:       stage,
		Persona:     r.Persona(),
		Result:      r,
		CompletedAt: time.Now(),
	})
}

func (s *RunState) RecordStep(stage string) {
	s.Steps = append(s.Steps, stage)
}

// ResultsFor returns the results recorded by one stage.
func (s *RunState) ResultsFor(stage string) []Result {
	var out []Result
	for _, r := range s.Results {
		if r.Stage == stage {
			out = append(out, r.Result)
		}
	}
	return out
}

func isJoinKey(key string) bool {
	for _, k := range joinOrder {
		if k == key {
			return true
		}
	}
	return false
}
