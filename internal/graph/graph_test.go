package graph

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/cloudwego/eino/compose"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/dyike/hedgehog/consts"
	"github.com/dyike/hedgehog/internal/capability"
	"github.com/dyike/hedgehog/internal/dataflows"
	"github.com/dyike/hedgehog/internal/models"
)

func staticSources() *dataflows.Sources {
	return &dataflows.Sources{Equities: dataflows.StaticEquities(), Macro: dataflows.StaticMacro()}
}

// fakeEvaluator answers market views through onView and returns a fixed decision.
type fakeEvaluator struct {
	onView func(ctx context.Context, focus string) error
	calls  atomic.Int32
}

func (f *fakeEvaluator) Evaluate(ctx context.Context, req *models.AnalysisRequest, p models.Persona) (models.Result, error) {
	f.calls.Add(1)
	if p == consts.Persona_InvestmentDecision {
		return &models.InvestmentDecision{BuyAssets: []string{"AAPL"}, Rationale: "ok"}, nil
	}
	focus, _ := req.Section(consts.Section_Focus)
	if f.onView != nil {
		if err := f.onView(ctx, focus.(string)); err != nil {
			return nil, err
		}
	}
	return &models.MarketView{
		Focus:           focus.(string),
		Timeframe:       "short-term",
		Recommendations: []string{"Hold everything"},
		Confidence:      0.5,
		Rating:          5,
		Recommendation:  models.Hold,
		Reasoning:       "flat",
	}, nil
}

type brokenSource struct{}

func (brokenSource) Name() string { return "broken" }

func (brokenSource) Fetch(context.Context) (*models.SourcePayload, error) {
	return nil, &models.SourceFailure{Source: "broken", Err: errors.New("connection refused")}
}

func TestInvestmentTopologyShape(t *testing.T) {
	topo := InvestmentTopology()
	require.NoError(t, topo.Validate())

	assert.Len(t, topo.Nodes, 9)
	assert.Equal(t, []string{consts.Start}, topo.Entry())
	assert.Equal(t, []string{consts.PortfolioManagerDecision}, topo.Terminal())
	assert.ElementsMatch(t, []string{consts.APICallOne, consts.APICallTwo}, topo.Successors(consts.Start))
	assert.ElementsMatch(t, []string{consts.APICallOne, consts.APICallTwo}, topo.Predecessors(consts.Aggregation))
	assert.ElementsMatch(t, consts.AnalysisStages, topo.Successors(consts.Aggregation))
	assert.ElementsMatch(t, consts.AnalysisStages, topo.Predecessors(consts.PortfolioManagerDecision))

	order, err := topo.Order()
	require.NoError(t, err)
	assert.Equal(t, consts.Start, order[0])
	assert.Equal(t, consts.Aggregation, order[3])
	assert.Equal(t, consts.PortfolioManagerDecision, order[8])
}

func TestWorkflowCompilesWithReservedStageNames(t *testing.T) {
	require.Equal(t, compose.START, consts.Start, "the entry stage shares eino's reserved key")

	st := &stages{sources: staticSources(), evaluator: &fakeEvaluator{}, bindings: DefaultBindings(), logger: zap.NewNop()}
	_, err := buildWorkflow(context.Background(), InvestmentTopology(), st)
	require.NoError(t, err)

	for _, node := range InvestmentTopology().Nodes {
		assert.NotEqual(t, compose.START, nodeKey(node))
		assert.NotEqual(t, compose.END, nodeKey(node))
	}
}

func TestTopologyValidate(t *testing.T) {
	cases := map[string]*Topology{
		"cycle": {
			Nodes: []string{"a", "b", "c"},
			Edges: []Edge{{"a", "b"}, {"b", "c"}, {"c", "b"}},
		},
		"unknown node": {
			Nodes: []string{"a"},
			Edges: []Edge{{"a", "z"}},
		},
		"two entries": {
			Nodes: []string{"a", "b", "c"},
			Edges: []Edge{{"a", "c"}, {"b", "c"}},
		},
		"self loop": {
			Nodes: []string{"a", "b"},
			Edges: []Edge{{"a", "a"}, {"a", "b"}},
		},
		"duplicate edge": {
			Nodes: []string{"a", "b"},
			Edges: []Edge{{"a", "b"}, {"a", "b"}},
		},
	}
	for name, topo := range cases {
		t.Run(name, func(t *testing.T) {
			assert.Error(t, topo.Validate())
		})
	}
}

func TestAggregateIsSuperset(t *testing.T) {
	now := time.Date(2023, 7, 1, 12, 10, 0, 0, time.UTC)
	one := &models.SourcePayload{Source: "one", Data: map[string]any{"stocks": map[string]any{"AAPL": 180.5}, "timestamp": "t1"}}
	two := &models.SourcePayload{Source: "two", Data: map[string]any{"bonds": map[string]any{"US10Y": 3.8}, "timestamp": "t2"}}

	agg, err := Aggregate(one, two, now)
	require.NoError(t, err)
	assert.Equal(t, one.Data, agg.APIOne)
	assert.Equal(t, two.Data, agg.APITwo)
	assert.Equal(t, map[string]any{"AAPL": 180.5}, agg.Combined["stocks"])
	assert.Equal(t, map[string]any{"US10Y": 3.8}, agg.Combined["bonds"])
	assert.Equal(t, "t2", agg.Combined["timestamp"], "second payload wins on conflicts")

	meta := agg.Combined["meta"].(map[string]any)
	assert.Equal(t, "2023-07-01T12:10:00Z", meta["aggregated_at"])
	assert.Len(t, meta["sources"], 2)
}

func TestAggregateMissingPayload(t *testing.T) {
	_, err := Aggregate(&models.SourcePayload{Data: map[string]any{}}, nil, time.Now())
	var iv *models.InvariantViolation
	require.ErrorAs(t, err, &iv)
	assert.Equal(t, []string{keyAPITwo}, iv.Missing)
	assert.ErrorIs(t, err, models.ErrInvariant)
}

func TestEngineScriptedRun(t *testing.T) {
	ctx := context.Background()
	gen := capability.NewScripted()
	engine, err := NewEngine(ctx, staticSources(), capability.New(gen))
	require.NoError(t, err)

	state, err := engine.Run(ctx)
	require.NoError(t, err)
	require.NotNil(t, state.Decision)

	assert.NotEmpty(t, state.RunID)
	assert.True(t, state.AllComplete())
	assert.Len(t, state.Steps, 9)
	assert.Equal(t, consts.Start, state.Steps[0])
	assert.Equal(t, consts.PortfolioManagerDecision, state.Steps[8])
	assert.ElementsMatch(t, consts.AnalysisStages, state.Steps[4:8])

	assert.Contains(t, state.Aggregated.Combined, "stocks")
	assert.Contains(t, state.Aggregated.Combined, "bonds")
	assert.Contains(t, state.Aggregated.Combined, "commodities")

	require.Len(t, state.Results, 4)
	foci := map[string]bool{}
	for _, r := range state.Results {
		view, ok := r.Result.(*models.MarketView)
		require.True(t, ok)
		foci[view.Focus] = true
	}
	assert.Len(t, foci, 4)

	d := state.Decision
	assert.Contains(t, d.BuyAssets, "AAPL")
	assert.Contains(t, d.SellAssets, "GOLD")
	assert.Contains(t, d.HoldAssets, "GOOGL")
	assert.NoError(t, d.Validate())

	assert.Equal(t, 4, gen.Calls(consts.Persona_MarketView))
	assert.Equal(t, 1, gen.Calls(consts.Persona_InvestmentDecision))
}

func TestEngineRunsAreIsolated(t *testing.T) {
	ctx := context.Background()
	var n atomic.Int32
	engine, err := NewEngine(ctx, staticSources(), &fakeEvaluator{},
		WithRunIDFunc(func() string { return string(rune('a' + n.Add(1))) }))
	require.NoError(t, err)

	first, err := engine.Run(ctx)
	require.NoError(t, err)
	second, err := engine.Run(ctx)
	require.NoError(t, err)

	assert.NotEqual(t, first.RunID, second.RunID)
	assert.Len(t, first.Steps, 9)
	assert.Len(t, second.Steps, 9)
	assert.Len(t, first.Results, 4)
}

func TestEngineAnalysesRunConcurrently(t *testing.T) {
	var (
		mu      sync.Mutex
		arrived int
		all     = make(chan struct{})
	)
	eval := &fakeEvaluator{onView: func(ctx context.Context, _ string) error {
		mu.Lock()
		arrived++
		if arrived == len(consts.AnalysisStages) {
			close(all)
		}
		mu.Unlock()
		select {
		case <-all:
			return nil
		case <-time.After(5 * time.Second):
			return errors.New("analyses did not overlap")
		}
	}}

	engine, err := NewEngine(context.Background(), staticSources(), eval)
	require.NoError(t, err)
	state, err := engine.Run(context.Background())
	require.NoError(t, err)
	assert.True(t, state.AllComplete())
}

func TestEngineFailureCancelsSiblings(t *testing.T) {
	boom := &models.CapabilityFailure{Persona: consts.Persona_MarketView, Kind: models.FailureRefusal, Attempts: 1, Err: errors.New("refused")}
	var cancelled atomic.Int32
	eval := &fakeEvaluator{onView: func(ctx context.Context, focus string) error {
		if focus == "market risk assessment" {
			return boom
		}
		select {
		case <-ctx.Done():
			cancelled.Add(1)
			return ctx.Err()
		case <-time.After(5 * time.Second):
			return nil
		}
	}}

	engine, err := NewEngine(context.Background(), staticSources(), eval)
	require.NoError(t, err)

	start := time.Now()
	state, err := engine.Run(context.Background())
	require.Error(t, err)
	assert.Less(t, time.Since(start), 4*time.Second)

	var se *models.StageError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, consts.AgentAnalysisThree, se.Stage)
	assert.ErrorIs(t, err, models.ErrCapability)

	require.NotNil(t, state)
	assert.Nil(t, state.Decision)
	assert.NotContains(t, state.Steps, consts.PortfolioManagerDecision)
	assert.False(t, state.AllComplete())
	assert.LessOrEqual(t, cancelled.Load(), int32(3))
}

func TestEngineSourceFailure(t *testing.T) {
	failing := brokenSource{}
	eval := &fakeEvaluator{}
	engine, err := NewEngine(context.Background(), &dataflows.Sources{Equities: failing, Macro: dataflows.StaticMacro()}, eval)
	require.NoError(t, err)

	state, err := engine.Run(context.Background())
	require.Error(t, err)
	var se *models.StageError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, consts.APICallOne, se.Stage)
	assert.ErrorIs(t, err, models.ErrSource)
	assert.NotContains(t, state.Steps, consts.Aggregation)
	assert.Zero(t, eval.calls.Load())
}

func TestDecisionRequiresEveryAnalysis(t *testing.T) {
	full := InvestmentTopology()
	partial := &Topology{}
	for _, n := range full.Nodes {
		if n != consts.AgentAnalysisFour {
			partial.Nodes = append(partial.Nodes, n)
		}
	}
	for _, e := range full.Edges {
		if e.From != consts.AgentAnalysisFour && e.To != consts.AgentAnalysisFour {
			partial.Edges = append(partial.Edges, e)
		}
	}

	eval := &fakeEvaluator{}
	engine, err := NewEngine(context.Background(), staticSources(), eval, WithTopology(partial))
	require.NoError(t, err)

	state, err := engine.Run(context.Background())
	var iv *models.InvariantViolation
	require.ErrorAs(t, err, &iv)
	assert.Equal(t, consts.PortfolioManagerDecision, iv.Stage)
	assert.Equal(t, []string{consts.JoinFour}, iv.Missing)
	assert.Nil(t, state.Decision)
	assert.EqualValues(t, 3, eval.calls.Load(), "decision capability is never called")
}

func TestNewEngineRejectsMissingDependencies(t *testing.T) {
	_, err := NewEngine(context.Background(), nil, &fakeEvaluator{})
	assert.Error(t, err)
	_, err = NewEngine(context.Background(), staticSources(), nil)
	assert.Error(t, err)

	bad := &Topology{Nodes: []string{"a", "b"}, Edges: []Edge{{"a", "b"}, {"b", "a"}}}
	_, err = NewEngine(context.Background(), staticSources(), &fakeEvaluator{}, WithTopology(bad))
	assert.Error(t, err)
}

func TestEngineBindingsAndCallbacks(t *testing.T) {
	ctx := context.Background()
	gen := capability.NewScripted().WithFixture(consts.Persona_InvestmentDecision, func(string, string) models.Result {
		return &models.InvestmentDecision{HoldAssets: []string{"SPY"}, Rationale: "wait for earnings"}
	})

	lines := make(chan string, 32)
	cb := NewLoggerCallback(nil)
	cb.Out = lines

	engine, err := NewEngine(ctx, staticSources(), capability.New(gen),
		WithBindings(map[string]Binding{
			consts.AgentAnalysisFour: {Persona: consts.Persona_MarketView, Focus: "emerging markets"},
		}),
		WithCallbacks(cb))
	require.NoError(t, err)

	state, err := engine.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"SPY"}, state.Decision.HoldAssets)

	four := state.ResultsFor(consts.AgentAnalysisFour)
	require.Len(t, four, 1)
	assert.Equal(t, "emerging markets", four[0].(*models.MarketView).Focus)
	assert.Len(t, state.ResultsFor(consts.AgentAnalysisOne), 1)

	close(lines)
	var done []string
	for l := range lines {
		done = append(done, l)
	}
	for _, node := range engine.Topology().Nodes {
		assert.Contains(t, done, node+" done")
	}
}
