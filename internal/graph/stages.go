package graph

import (
	"context"
	"fmt"
	"time"

	"github.com/cloudwego/eino/compose"
	"go.uber.org/zap"

	"github.com/dyike/hedgehog/consts"
	"github.com/dyike/hedgehog/internal/dataflows"
	"github.com/dyike/hedgehog/internal/models"
)

// Keys of the values passed along graph edges. Sibling outputs use disjoint
// keys so fan-in merges never collide.
const (
	keyRunID      = "run_id"
	keyAPIOne     = "api_one"
	keyAPITwo     = "api_two"
	keyAggregated = "aggregated"
)

// Binding assigns a persona and focus to one analysis stage.
type Binding struct {
	Persona models.Persona
	Focus   string
	// Sections are added to the request next to market_data and focus.
	Sections map[string]any
}

// DefaultBindings are the four market views of the investment workflow.
func DefaultBindings() map[string]Binding {
	return map[string]Binding{
		consts.AgentAnalysisOne:   {Persona: consts.Persona_MarketView, Focus: "tech stocks"},
		consts.AgentAnalysisTwo:   {Persona: consts.Persona_MarketView, Focus: "fixed income and commodities"},
		consts.AgentAnalysisThree: {Persona: consts.Persona_MarketView, Focus: "market risk assessment"},
		consts.AgentAnalysisFour:  {Persona: consts.Persona_MarketView, Focus: "portfolio allocation"},
	}
}

// Evaluator is the analysis capability as seen by the workflow.
type Evaluator interface {
	Evaluate(ctx context.Context, req *models.AnalysisRequest, p models.Persona) (models.Result, error)
}

type stages struct {
	sources   *dataflows.Sources
	evaluator Evaluator
	bindings  map[string]Binding
	logger    *zap.Logger
}

func withState(ctx context.Context, fn func(*models.RunState) error) error {
	return compose.ProcessState[*models.RunState](ctx, func(_ context.Context, s *models.RunState) error {
		return fn(s)
	})
}

func (st *stages) start(ctx context.Context, _ map[string]any) (map[string]any, error) {
	var runID string
	err := withState(ctx, func(s *models.RunState) error {
		s.RecordStep(consts.Start)
		runID = s.RunID
		return nil
	})
	if err != nil {
		return nil, err
	}
	st.logger.Info("workflow started", zap.String("run_id", runID))
	return map[string]any{keyRunID: runID}, nil
}

func (st *stages) fetch(stage string, src dataflows.Source, key string) func(context.Context, map[string]any) (map[string]any, error) {
	return func(ctx context.Context, _ map[string]any) (map[string]any, error) {
		if err := withState(ctx, func(s *models.RunState) error {
			s.RecordStep(stage)
			return nil
		}); err != nil {
			return nil, err
		}

		p, err := src.Fetch(ctx)
		if err != nil {
			return nil, err
		}
		st.logger.Debug("source fetched", zap.String("stage", stage), zap.String("source", p.Source))

		err = withState(ctx, func(s *models.RunState) error {
			if stage == consts.APICallOne {
				s.APIOne = p
			} else {
				s.APITwo = p
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
		return map[string]any{key: p}, nil
	}
}

func (st *stages) aggregate(ctx context.Context, _ map[string]any) (map[string]any, error) {
	var one, two *models.SourcePayload
	err := withState(ctx, func(s *models.RunState) error {
		s.RecordStep(consts.Aggregation)
		one, two = s.APIOne, s.APITwo
		return nil
	})
	if err != nil {
		return nil, err
	}

	agg, err := Aggregate(one, two, time.Now().UTC())
	if err != nil {
		return nil, err
	}
	err = withState(ctx, func(s *models.RunState) error {
		s.Aggregated = agg
		return nil
	})
	if err != nil {
		return nil, err
	}
	return map[string]any{keyAggregated: agg}, nil
}

// Aggregate merges payload one then payload two into a superset of both;
// on key conflicts payload two wins. A meta section records both sources.
func Aggregate(one, two *models.SourcePayload, now time.Time) (*models.AggregatedData, error) {
	var missing []string
	if one == nil {
		missing = append(missing, keyAPIOne)
	}
	if two == nil {
		missing = append(missing, keyAPITwo)
	}
	if len(missing) > 0 {
		return nil, &models.InvariantViolation{Stage: consts.Aggregation, Missing: missing}
	}

	combined := make(map[string]any, len(one.Data)+len(two.Data)+1)
	for k, v := range one.Data {
		combined[k] = v
	}
	for k, v := range two.Data {
		combined[k] = v
	}
	combined["meta"] = map[string]any{
		"aggregated_at": now.Format(time.RFC3339),
		"sources": []map[string]any{
			{"source": one.Source, "fetched_at": one.FetchedAt.Format(time.RFC3339)},
			{"source": two.Source, "fetched_at": two.FetchedAt.Format(time.RFC3339)},
		},
	}
	return &models.AggregatedData{APIOne: one.Data, APITwo: two.Data, Combined: combined}, nil
}

func (st *stages) analyze(stage string) func(context.Context, map[string]any) (map[string]any, error) {
	joinKey := consts.JoinKeys[stage]
	return func(ctx context.Context, _ map[string]any) (map[string]any, error) {
		binding, ok := st.bindings[stage]
		if !ok {
			return nil, &models.InvariantViolation{Stage: stage, Reason: "no persona bound to stage"}
		}

		var agg *models.AggregatedData
		err := withState(ctx, func(s *models.RunState) error {
			s.RecordStep(stage)
			agg = s.Aggregated
			return nil
		})
		if err != nil {
			return nil, err
		}
		if agg == nil {
			return nil, &models.InvariantViolation{Stage: stage, Missing: []string{keyAggregated}}
		}

		sections := map[string]any{
			consts.Section_MarketData: agg.Combined,
			consts.Section_Focus:      binding.Focus,
		}
		for k, v := range binding.Sections {
			sections[k] = v
		}
		result, err := st.evaluator.Evaluate(ctx, models.NewAnalysisRequest("", sections), binding.Persona)
		if err != nil {
			return nil, err
		}
		st.logger.Info("analysis complete",
			zap.String("stage", stage),
			zap.String("persona", binding.Persona.String()),
			zap.String("focus", binding.Focus))

		err = withState(ctx, func(s *models.RunState) error {
			s.AppendResult(stage, result)
			s.MarkComplete(joinKey)
			return nil
		})
		if err != nil {
			return nil, err
		}
		return map[string]any{stage: result}, nil
	}
}

func (st *stages) decide(ctx context.Context, _ map[string]any) (*models.InvestmentDecision, error) {
	var (
		missing  []string
		agg      *models.AggregatedData
		analyses []models.StageResult
	)
	err := withState(ctx, func(s *models.RunState) error {
		s.RecordStep(consts.PortfolioManagerDecision)
		missing = s.MissingCompletions()
		agg = s.Aggregated
		analyses = append(analyses, s.Results...)
		return nil
	})
	if err != nil {
		return nil, err
	}
	if len(missing) > 0 {
		return nil, &models.InvariantViolation{
			Stage:   consts.PortfolioManagerDecision,
			Missing: missing,
			Reason:  "every analysis must complete before the decision",
		}
	}
	if agg == nil {
		return nil, &models.InvariantViolation{Stage: consts.PortfolioManagerDecision, Missing: []string{keyAggregated}}
	}

	req := models.NewAnalysisRequest("", map[string]any{
		consts.Section_MarketData: agg.Combined,
		consts.Section_Analyses:   analyses,
	})
	result, err := st.evaluator.Evaluate(ctx, req, consts.Persona_InvestmentDecision)
	if err != nil {
		return nil, err
	}
	decision, ok := result.(*models.InvestmentDecision)
	if !ok {
		return nil, fmt.Errorf("decision stage got %T", result)
	}

	err = withState(ctx, func(s *models.RunState) error {
		s.Decision = decision
		return nil
	})
	if err != nil {
		return nil, err
	}
	st.logger.Info("decision made",
		zap.Int("buy", len(decision.BuyAssets)),
		zap.Int("sell", len(decision.SellAssets)),
		zap.Int("hold", len(decision.HoldAssets)))
	return decision, nil
}
