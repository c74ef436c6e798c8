package capability

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"go.uber.org/zap"

	"github.com/dyike/hedgehog/internal/models"
	"github.com/dyike/hedgehog/internal/utils"
)

// Generator produces one chat completion. The eino-ext chat models satisfy it.
type Generator interface {
	Generate(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.Message, error)
}

// FinishContentFilter is the finish reason providers report for filtered output.
const FinishContentFilter = "content_filter"

var refusalMarkers = []string{
	"i can't",
	"i cannot",
	"i'm sorry",
	"i am sorry",
	"i am unable",
	"i'm unable",
	"i won't",
	"as an ai",
}

// Capability turns an AnalysisRequest into a validated result variant.
// It holds no per-request state and is safe for concurrent use.
type Capability struct {
	gen         Generator
	logger      *zap.Logger
	maxAttempts int
	timeout     time.Duration
	backoff     utils.RetryConfig
	schemas     *schemaCache
}

type Option func(*Capability)

func WithLogger(l *zap.Logger) Option {
	return func(c *Capability) { c.logger = l }
}

func WithMaxAttempts(n int) Option {
	return func(c *Capability) {
		if n > 0 {
			c.maxAttempts = n
		}
	}
}

// WithTimeout bounds every single attempt.
func WithTimeout(d time.Duration) Option {
	return func(c *Capability) {
		if d > 0 {
			c.timeout = d
		}
	}
}

func WithBackoff(cfg utils.RetryConfig) Option {
	return func(c *Capability) { c.backoff = cfg }
}

func New(gen Generator, opts ...Option) *Capability {
	c := &Capability{
		gen:         gen,
		logger:      zap.NewNop(),
		maxAttempts: 3,
		timeout:     60 * time.Second,
		backoff:     utils.DefaultRetryConfig(),
		schemas:     newSchemaCache(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = c.logger.Named("capability")
	return c
}

// Evaluate asks the generator for p's result on req. It returns a validated
// variant, an InvariantViolation when req lacks sections p needs, or a
// CapabilityFailure.
func (c *Capability) Evaluate(ctx context.Context, req *models.AnalysisRequest, p models.Persona) (models.Result, error) {
	if req == nil {
		return nil, &models.InvariantViolation{Stage: "evaluate " + p.String(), Reason: "no analysis request"}
	}
	if missing := req.Missing(p); len(missing) > 0 {
		return nil, &models.InvariantViolation{Stage: "evaluate " + p.String(), Missing: missing}
	}
	s, err := c.schemas.get(p)
	if err != nil {
		return nil, err
	}
	messages, err := buildMessages(ctx, p, req, s)
	if err != nil {
		return nil, err
	}

	var (
		lastKind models.FailureKind
		lastErr  error
	)
	for attempt := 1; attempt <= c.maxAttempts; attempt++ {
		if attempt > 1 && lastKind != models.FailureMalformed {
			if err := utils.Sleep(ctx, c.backoff.Delay(attempt-1)); err != nil {
				return nil, c.failure(p, models.FailureUpstream, attempt-1, err)
			}
		}

		reply, kind, err := c.generate(ctx, messages)
		if err == nil {
			var r models.Result
			r, err = decode(p, s, reply)
			if err == nil {
				c.logger.Debug("evaluation complete",
					zap.String("persona", p.String()),
					zap.String("ticker", req.Ticker()),
					zap.Int("attempt", attempt))
				return r, nil
			}
			kind = models.FailureMalformed
			messages = repromptMessages(messages, reply, problemsOf(err))
		}

		if ctx.Err() != nil {
			return nil, c.failure(p, models.FailureUpstream, attempt, ctx.Err())
		}
		c.logger.Warn("evaluation attempt failed",
			zap.String("persona", p.String()),
			zap.Int("attempt", attempt),
			zap.String("kind", string(kind)),
			zap.Error(err))
		if kind == models.FailureRefusal {
			return nil, c.failure(p, kind, attempt, err)
		}
		lastKind, lastErr = kind, err
	}
	return nil, c.failure(p, lastKind, c.maxAttempts, lastErr)
}

// EvaluateAs is Evaluate with the variant type asserted.
func EvaluateAs[T models.Result](ctx context.Context, c *Capability, req *models.AnalysisRequest, p models.Persona) (T, error) {
	var zero T
	r, err := c.Evaluate(ctx, req, p)
	if err != nil {
		return zero, err
	}
	v, ok := r.(T)
	if !ok {
		return zero, fmt.Errorf("persona %s produced %T, not %T", p, r, zero)
	}
	return v, nil
}

func (c *Capability) generate(ctx context.Context, messages []*schema.Message) (string, models.FailureKind, error) {
	actx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	msg, err := c.gen.Generate(actx, messages)
	if err != nil {
		if errors.Is(actx.Err(), context.DeadlineExceeded) && ctx.Err() == nil {
			return "", models.FailureTimeout, fmt.Errorf("attempt exceeded %s: %w", c.timeout, err)
		}
		return "", models.FailureUpstream, err
	}
	if msg == nil {
		return "", models.FailureUpstream, errors.New("generator returned no message")
	}
	if msg.ResponseMeta != nil && msg.ResponseMeta.FinishReason == FinishContentFilter {
		return "", models.FailureRefusal, errors.New("output withheld by content filter")
	}
	if isRefusal(msg.Content) {
		return "", models.FailureRefusal, fmt.Errorf("model declined: %s", truncate(msg.Content, 120))
	}
	return msg.Content, "", nil
}

func (c *Capability) failure(p models.Persona, kind models.FailureKind, attempts int, err error) error {
	return &models.CapabilityFailure{Persona: p, Kind: kind, Attempts: attempts, Err: err}
}

// decode checks reply against the schema and then the variant's own rules.
func decode(p models.Persona, s *resultSchema, reply string) (models.Result, error) {
	doc := extractJSON(reply)
	if doc == "" {
		return nil, &models.ValidationError{Persona: p, Problems: []string{"reply contains no JSON object"}}
	}
	doc = dropNulls(doc)
	if problems := s.Check(doc); len(problems) > 0 {
		return nil, &models.ValidationError{Persona: p, Problems: problems}
	}
	return models.DecodeResult(p, []byte(doc))
}

// dropNulls removes top-level null fields so they read as absent. Malformed
// documents are returned unchanged for the schema check to report.
func dropNulls(doc string) string {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(doc), &fields); err != nil {
		return doc
	}
	changed := false
	for k, v := range fields {
		if string(v) == "null" {
			delete(fields, k)
			changed = true
		}
	}
	if !changed {
		return doc
	}
	out, err := json.Marshal(fields)
	if err != nil {
		return doc
	}
	return string(out)
}

func problemsOf(err error) []string {
	var verr *models.ValidationError
	if errors.As(err, &verr) {
		return verr.Problems
	}
	return []string{err.Error()}
}

// extractJSON returns the outermost JSON object in s, tolerating code fences
// and surrounding prose.
func extractJSON(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
		s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	}
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start < 0 || end < start {
		return ""
	}
	return s[start : end+1]
}

func isRefusal(content string) bool {
	if strings.Contains(content, "{") {
		return false
	}
	lower := strings.ToLower(strings.TrimSpace(content))
	for _, m := range refusalMarkers {
		if strings.HasPrefix(lower, m) || strings.Contains(lower, " "+m) {
			return true
		}
	}
	return false
}

func truncate(s string, n int) string {
	s = strings.TrimSpace(s)
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
