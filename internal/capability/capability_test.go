package capability

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dyike/hedgehog/consts"
	"github.com/dyike/hedgehog/internal/models"
	"github.com/dyike/hedgehog/internal/utils"
)

type stubReply struct {
	content string
	finish  string
	err     error
	block   bool
}

type stubGenerator struct {
	mu      sync.Mutex
	replies []stubReply
	calls   [][]*schema.Message
}

func (g *stubGenerator) Generate(ctx context.Context, input []*schema.Message, _ ...model.Option) (*schema.Message, error) {
	g.mu.Lock()
	i := len(g.calls)
	g.calls = append(g.calls, input)
	r := g.replies[len(g.replies)-1]
	if i < len(g.replies) {
		r = g.replies[i]
	}
	g.mu.Unlock()

	if r.block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if r.err != nil {
		return nil, r.err
	}
	return &schema.Message{
		Role:         schema.Assistant,
		Content:      r.content,
		ResponseMeta: &schema.ResponseMeta{FinishReason: r.finish},
	}, nil
}

func (g *stubGenerator) callCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.calls)
}

var noBackoff = utils.RetryConfig{BaseDelay: time.Millisecond, MaxDelay: time.Millisecond, Multiplier: 1}

func marketViewRequest() *models.AnalysisRequest {
	return models.NewAnalysisRequest("", map[string]any{
		consts.Section_MarketData: map[string]any{"stocks": map[string]any{"AAPL": 180.5}},
		consts.Section_Focus:      "tech stocks",
	})
}

func fullRequest(ticker string) *models.AnalysisRequest {
	sections := map[string]any{}
	for _, name := range []string{
		consts.Section_CompanyData, consts.Section_FinancialData, consts.Section_PriceData,
		consts.Section_NewsData, consts.Section_SocialData, consts.Section_InsiderData,
		consts.Section_MarketData, consts.Section_PeerData, consts.Section_PortfolioData,
		consts.Section_AnalystRecommendations, consts.Section_RiskAssessment, consts.Section_Analyses,
	} {
		sections[name] = map[string]any{"source": "test"}
	}
	sections[consts.Section_Focus] = "tech stocks"
	return models.NewAnalysisRequest(ticker, sections)
}

func validMarketViewJSON(t *testing.T) string {
	t.Helper()
	data, err := json.Marshal(marketViewFixtureFor("", "tech stocks"))
	require.NoError(t, err)
	return string(data)
}

func TestScriptedCoversEveryPersona(t *testing.T) {
	gen := NewScripted()
	c := New(gen)
	req := fullRequest("AAPL")

	for _, p := range append(append([]models.Persona{}, models.Analysts...), consts.Persona_MarketView, consts.Persona_InvestmentDecision) {
		r, err := c.Evaluate(context.Background(), req, p)
		require.NoError(t, err, "persona %s", p)
		assert.Equal(t, p, r.Persona())
		assert.Equal(t, 1, gen.Calls(p))
		if rated, ok := r.(models.Rated); ok {
			assert.True(t, rated.Score().Valid())
		}
	}
}

func TestEvaluateAsReturnsVariant(t *testing.T) {
	c := New(NewScripted())
	view, err := EvaluateAs[*models.MarketView](context.Background(), c, marketViewRequest(), consts.Persona_MarketView)
	require.NoError(t, err)
	assert.Equal(t, "tech stocks", view.Focus)
	assert.Equal(t, []string{"Buy AAPL", "Hold GOOGL"}, view.Recommendations)

	_, err = EvaluateAs[*models.InvestmentDecision](context.Background(), c, marketViewRequest(), consts.Persona_MarketView)
	assert.Error(t, err)
}

func TestMissingSectionIsInvariantViolation(t *testing.T) {
	gen := &stubGenerator{replies: []stubReply{{content: "{}"}}}
	c := New(gen)
	req := models.NewAnalysisRequest("AAPL", map[string]any{consts.Section_CompanyData: map[string]any{}})

	_, err := c.Evaluate(context.Background(), req, consts.Persona_RiskManager)
	var inv *models.InvariantViolation
	require.ErrorAs(t, err, &inv)
	assert.Equal(t, []string{consts.Section_PortfolioData}, inv.Missing)
	assert.Zero(t, gen.callCount())
}

func TestMalformedOutputIsReprompted(t *testing.T) {
	bad := map[string]any{}
	require.NoError(t, json.Unmarshal([]byte(validMarketViewJSON(t)), &bad))
	bad["rating"] = 11

	badJSON, err := json.Marshal(bad)
	require.NoError(t, err)

	gen := &stubGenerator{replies: []stubReply{
		{content: string(badJSON)},
		{content: "```json\n" + validMarketViewJSON(t) + "\n```"},
	}}
	c := New(gen, WithBackoff(noBackoff))

	r, err := c.Evaluate(context.Background(), marketViewRequest(), consts.Persona_MarketView)
	require.NoError(t, err)
	assert.Equal(t, models.Rating(7), r.(*models.MarketView).Rating)

	require.Equal(t, 2, gen.callCount())
	second := gen.calls[1]
	require.Len(t, second, 4)
	assert.Equal(t, schema.Assistant, second[2].Role)
	assert.Equal(t, string(badJSON), second[2].Content)
	assert.Contains(t, second[3].Content, "rating")
}

func TestMalformedExhaustsAttempts(t *testing.T) {
	gen := &stubGenerator{replies: []stubReply{{content: `{"focus": "tech stocks"}`}}}
	c := New(gen, WithMaxAttempts(3), WithBackoff(noBackoff))

	_, err := c.Evaluate(context.Background(), marketViewRequest(), consts.Persona_MarketView)
	var failure *models.CapabilityFailure
	require.ErrorAs(t, err, &failure)
	assert.Equal(t, models.FailureMalformed, failure.Kind)
	assert.Equal(t, 3, failure.Attempts)
	assert.ErrorIs(t, err, models.ErrCapability)
	assert.Equal(t, 3, gen.callCount())
}

func TestRefusalIsTerminal(t *testing.T) {
	for name, reply := range map[string]stubReply{
		"finish reason": {finish: FinishContentFilter},
		"refusal text":  {content: "I'm sorry, but I can't help with that request."},
	} {
		t.Run(name, func(t *testing.T) {
			gen := &stubGenerator{replies: []stubReply{reply}}
			c := New(gen, WithMaxAttempts(3), WithBackoff(noBackoff))

			_, err := c.Evaluate(context.Background(), marketViewRequest(), consts.Persona_MarketView)
			var failure *models.CapabilityFailure
			require.ErrorAs(t, err, &failure)
			assert.Equal(t, models.FailureRefusal, failure.Kind)
			assert.Equal(t, 1, gen.callCount())
		})
	}
}

func TestAttemptTimeout(t *testing.T) {
	gen := &stubGenerator{replies: []stubReply{{block: true}}}
	c := New(gen, WithMaxAttempts(2), WithTimeout(20*time.Millisecond), WithBackoff(noBackoff))

	_, err := c.Evaluate(context.Background(), marketViewRequest(), consts.Persona_MarketView)
	var failure *models.CapabilityFailure
	require.ErrorAs(t, err, &failure)
	assert.Equal(t, models.FailureTimeout, failure.Kind)
	assert.Equal(t, 2, failure.Attempts)
	assert.Equal(t, 2, gen.callCount())
}

func TestUpstreamErrorIsRetried(t *testing.T) {
	gen := &stubGenerator{replies: []stubReply{
		{err: errors.New("502 bad gateway")},
		{content: validMarketViewJSON(t)},
	}}
	c := New(gen, WithBackoff(noBackoff))

	_, err := c.Evaluate(context.Background(), marketViewRequest(), consts.Persona_MarketView)
	require.NoError(t, err)
	assert.Equal(t, 2, gen.callCount())
	// a transient failure resends the same conversation
	assert.Len(t, gen.calls[1], 2)
}

func TestCancelledContextStopsRetries(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	gen := &stubGenerator{replies: []stubReply{{block: true}}}
	c := New(gen, WithMaxAttempts(5), WithTimeout(time.Minute))

	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()
	_, err := c.Evaluate(ctx, marketViewRequest(), consts.Persona_MarketView)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, gen.callCount())
}

func TestPromptCarriesSchemaAndRequest(t *testing.T) {
	gen := &stubGenerator{replies: []stubReply{{content: validMarketViewJSON(t)}}}
	c := New(gen)

	_, err := c.Evaluate(context.Background(), marketViewRequest(), consts.Persona_MarketView)
	require.NoError(t, err)

	msgs := gen.calls[0]
	require.Len(t, msgs, 2)
	assert.Equal(t, schema.System, msgs[0].Role)
	assert.Contains(t, msgs[0].Content, "market strategist")
	assert.Contains(t, msgs[0].Content, `"recommendations"`)
	assert.Contains(t, msgs[1].Content, "Persona: market_view")
	assert.Contains(t, msgs[1].Content, `"focus": "tech stocks"`)
}

func TestExtractJSON(t *testing.T) {
	assert.Equal(t, `{"a":1}`, extractJSON("```json\n{\"a\":1}\n```"))
	assert.Equal(t, `{"a":{"b":2}}`, extractJSON(`Here you go: {"a":{"b":2}} hope it helps`))
	assert.Empty(t, extractJSON("no object here"))
}

func TestHoldOnlyDecisionAccepted(t *testing.T) {
	gen := &stubGenerator{replies: []stubReply{{content: `{"buy_assets":null,"hold_assets":["SPY"],"rationale":"wait for earnings"}`}}}
	c := New(gen)
	req := models.NewAnalysisRequest("", map[string]any{
		consts.Section_MarketData: map[string]any{"stocks": map[string]any{}},
		consts.Section_Analyses:   []any{},
	})

	d, err := EvaluateAs[*models.InvestmentDecision](context.Background(), c, req, consts.Persona_InvestmentDecision)
	require.NoError(t, err)
	assert.Empty(t, d.BuyAssets)
	assert.Equal(t, []string{"SPY"}, d.HoldAssets)
	assert.Len(t, gen.calls, 1, "no re-prompt")
}

func TestDropNulls(t *testing.T) {
	assert.JSONEq(t, `{"a":1}`, dropNulls(`{"a":1,"b":null}`))
	assert.Equal(t, `{"a":[null]}`, dropNulls(`{"a":[null]}`))
	assert.Equal(t, `not json`, dropNulls(`not json`))
}

func TestSchemaCheckFlagsBounds(t *testing.T) {
	s, err := newSchemaCache().get(consts.Persona_BenGraham)
	require.NoError(t, err)

	problems := s.Check(`{"ticker": "KO", "rating": 12}`)
	require.NotEmpty(t, problems)
	joined := ""
	for _, p := range problems {
		joined += p + "\n"
	}
	assert.Contains(t, joined, "rating")
	assert.Contains(t, joined, "company_name")

	assert.NotEmpty(t, s.Check("not json"))
}
