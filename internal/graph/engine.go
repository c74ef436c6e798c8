package graph

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/cloudwego/eino/callbacks"
	"github.com/cloudwego/eino/compose"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/dyike/hedgehog/internal/dataflows"
	"github.com/dyike/hedgehog/internal/models"
)

// ErrRunAborted is the cancellation cause handed to stages still running when
// a sibling fails.
var ErrRunAborted = errors.New("run aborted by failing stage")

// Engine executes the investment workflow. One compiled graph serves any
// number of runs; every run gets its own RunState.
type Engine struct {
	topology *Topology
	workflow runnable
	handlers []callbacks.Handler
	logger   *zap.Logger
	newRunID func() string
}

type engineOptions struct {
	logger   *zap.Logger
	bindings map[string]Binding
	topology *Topology
	handlers []callbacks.Handler
	newRunID func() string
}

type Option func(*engineOptions)

func WithLogger(l *zap.Logger) Option {
	return func(o *engineOptions) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithBindings overrides the persona bound to individual analysis stages.
func WithBindings(b map[string]Binding) Option {
	return func(o *engineOptions) {
		for stage, binding := range b {
			o.bindings[stage] = binding
		}
	}
}

func WithTopology(t *Topology) Option {
	return func(o *engineOptions) { o.topology = t }
}

// WithCallbacks attaches eino callback handlers to every run.
func WithCallbacks(h ...callbacks.Handler) Option {
	return func(o *engineOptions) { o.handlers = append(o.handlers, h...) }
}

func WithRunIDFunc(f func() string) Option {
	return func(o *engineOptions) { o.newRunID = f }
}

func NewEngine(ctx context.Context, sources *dataflows.Sources, eval Evaluator, opts ...Option) (*Engine, error) {
	if sources == nil || sources.Equities == nil || sources.Macro == nil {
		return nil, fmt.Errorf("engine needs both data sources")
	}
	if eval == nil {
		return nil, fmt.Errorf("engine needs an evaluator")
	}

	o := &engineOptions{
		logger:   zap.NewNop(),
		bindings: DefaultBindings(),
		topology: InvestmentTopology(),
		newRunID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(o)
	}
	logger := o.logger.Named("graph")

	workflow, err := buildWorkflow(ctx, o.topology, &stages{
		sources:   sources,
		evaluator: eval,
		bindings:  o.bindings,
		logger:    logger,
	})
	if err != nil {
		return nil, fmt.Errorf("compile workflow: %w", err)
	}

	return &Engine{
		topology: o.topology,
		workflow: workflow,
		handlers: append([]callbacks.Handler{NewLoggerCallback(logger)}, o.handlers...),
		logger:   logger,
		newRunID: o.newRunID,
	}, nil
}

func (e *Engine) Topology() *Topology { return e.topology }

// Run executes one workflow. The returned state is never nil; on failure it
// holds whatever the stages recorded before the run stopped. The error is the
// first stage failure, wrapped in a StageError.
func (e *Engine) Run(ctx context.Context) (*models.RunState, error) {
	state := models.NewRunState(e.newRunID(), nil)
	logger := e.logger.With(zap.String("run_id", state.RunID))

	runCtx, cancel := context.WithCancelCause(ctx)
	defer cancel(nil)
	rc := newRunControl(cancel)
	runCtx = withRunControl(withRunState(runCtx, state), rc)

	decision, err := e.workflow.Invoke(runCtx, map[string]any{}, compose.WithCallbacks(e.handlers...))
	rc.drain()

	if first := rc.failure(); first != nil {
		err = first
	}
	if err == nil && decision == nil {
		err = &models.InvariantViolation{Stage: "run", Reason: "workflow produced no decision"}
	}
	if err != nil {
		logger.Error("workflow failed", zap.Error(err), zap.Strings("steps", state.Steps))
		return state, err
	}
	logger.Info("workflow finished", zap.Strings("steps", state.Steps))
	return state, nil
}

type controlKey struct{}

// runControl tracks in-flight stages of one run and remembers the first failure.
type runControl struct {
	cancel context.CancelCauseFunc

	mu       sync.Mutex
	first    error
	inflight int
	draining bool
	idle     chan struct{}
}

func newRunControl(cancel context.CancelCauseFunc) *runControl {
	return &runControl{cancel: cancel, idle: make(chan struct{})}
}

func withRunControl(ctx context.Context, rc *runControl) context.Context {
	return context.WithValue(ctx, controlKey{}, rc)
}

func controlFrom(ctx context.Context) *runControl {
	rc, _ := ctx.Value(controlKey{}).(*runControl)
	return rc
}

func (c *runControl) enter() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.draining {
		return false
	}
	c.inflight++
	return true
}

func (c *runControl) leave() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.inflight--
	if c.draining && c.inflight == 0 {
		close(c.idle)
	}
}

// drain stops new stages from starting and waits for running ones.
func (c *runControl) drain() {
	c.mu.Lock()
	c.draining = true
	if c.inflight == 0 {
		close(c.idle)
	}
	c.mu.Unlock()
	<-c.idle
}

// fail records err if it is the first failure and cancels the remaining stages.
func (c *runControl) fail(err error) {
	c.mu.Lock()
	if c.first != nil {
		c.mu.Unlock()
		return
	}
	c.first = err
	c.mu.Unlock()
	c.cancel(ErrRunAborted)
}

func (c *runControl) failure() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.first
}

// guard wraps a stage so its failure is attributed to the stage and cancels
// the siblings still running.
func guard[I, O any](stage string, fn func(context.Context, I) (O, error)) func(context.Context, I) (O, error) {
	return func(ctx context.Context, in I) (O, error) {
		var zero O
		rc := controlFrom(ctx)
		if rc != nil {
			if !rc.enter() {
				return zero, &models.StageError{Stage: stage, Err: ErrRunAborted}
			}
			defer rc.leave()
		}
		if ctx.Err() != nil {
			return zero, &models.StageError{Stage: stage, Err: context.Cause(ctx)}
		}

		out, err := fn(ctx, in)
		if err == nil {
			return out, nil
		}
		err = &models.StageError{Stage: stage, Err: err}
		if rc != nil && !errors.Is(context.Cause(ctx), ErrRunAborted) {
			rc.fail(err)
		}
		return zero, err
	}
}
