package cli

import (
	"context"
	"fmt"
	"io"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/dyike/hedgehog/config"
	"github.com/dyike/hedgehog/internal/capability"
	"github.com/dyike/hedgehog/internal/dataflows"
	"github.com/dyike/hedgehog/internal/debug"
	"github.com/dyike/hedgehog/internal/diagram"
	"github.com/dyike/hedgehog/internal/graph"
	"github.com/dyike/hedgehog/internal/models"
	"github.com/dyike/hedgehog/internal/storage"
	"github.com/dyike/hedgehog/internal/utils"
)

func newCapability(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*capability.Capability, error) {
	gen, err := capability.NewGenerator(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return capability.New(gen,
		capability.WithLogger(logger),
		capability.WithMaxAttempts(cfg.CapabilityMaxAttempts),
		capability.WithTimeout(cfg.CapabilityTimeout),
	), nil
}

// workflowResult is what a single driver run leaves behind.
type workflowResult struct {
	State      *models.RunState
	ReportPath string
}

// runWorkflow builds the engine from cfg, executes one run, records it in the
// history store and writes the markdown report. The state is returned even
// when the run fails.
func runWorkflow(ctx context.Context, cfg *config.Config, logger *zap.Logger, w io.Writer) (*workflowResult, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	if err := debug.NewEinoDebugger(cfg, logger).Initialize(ctx); err != nil {
		return nil, err
	}

	eval, err := newCapability(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	sources, err := dataflows.NewSources(cfg, logger)
	if err != nil {
		return nil, err
	}
	engine, err := graph.NewEngine(ctx, sources, eval, graph.WithLogger(logger))
	if err != nil {
		return nil, err
	}

	if code, err := diagram.Mermaid(engine.Topology()); err == nil {
		fmt.Fprintln(w, titleStyle.Render("Graph Diagram (Mermaid format)"))
		fmt.Fprintln(w, code)
	}

	fmt.Fprintln(w, mutedStyle.Render("Running investment graph..."))
	state, runErr := engine.Run(ctx)
	res := &workflowResult{State: state}

	if cfg.HistoryEnabled {
		saveHistory(ctx, cfg, logger, state, runErr)
	}
	if runErr != nil {
		return res, runErr
	}

	path, err := utils.WriteMarkdown(filepath.Join(cfg.ResultsDir, state.RunID), "decision.md", utils.RunReport(state))
	if err != nil {
		logger.Warn("failed to write report", zap.Error(err))
	} else {
		res.ReportPath = path
	}
	return res, nil
}

func saveHistory(ctx context.Context, cfg *config.Config, logger *zap.Logger, state *models.RunState, runErr error) {
	store, err := storage.Open(cfg.HistoryDBPath, logger)
	if err != nil {
		logger.Warn("history store unavailable", zap.Error(err))
		return
	}
	defer store.Close()
	if err := store.SaveRun(ctx, state, runErr); err != nil {
		logger.Warn("failed to save run history", zap.Error(err))
	}
}

// exportDiagram prints the workflow diagram and tries to render it to out.
// Rendering failures are reported to w and never returned.
func exportDiagram(ctx context.Context, cfg *config.Config, logger *zap.Logger, w io.Writer, out string) error {
	code, err := diagram.Mermaid(graph.InvestmentTopology())
	if err != nil {
		return err
	}
	fmt.Fprintln(w, "Mermaid diagram code generated:")
	fmt.Fprintln(w, code)

	if out == "" {
		out = filepath.Join(cfg.ImagesDir, diagram.DefaultFileName)
	}
	exporter := diagram.NewExporter(cfg.MermaidURL, diagram.WithLogger(logger))
	if err := exporter.Export(ctx, code, out); err != nil {
		fmt.Fprint(w, diagram.FallbackInstructions(err))
		return nil
	}
	fmt.Fprintf(w, "Diagram saved to %s\n", out)
	return nil
}

// marketSnapshot fetches both sources once and merges them, for commands
// that evaluate a persona outside the workflow.
func marketSnapshot(ctx context.Context, cfg *config.Config, logger *zap.Logger) (map[string]any, error) {
	sources, err := dataflows.NewSources(cfg, logger)
	if err != nil {
		return nil, err
	}
	one, err := sources.Equities.Fetch(ctx)
	if err != nil {
		return nil, err
	}
	two, err := sources.Macro.Fetch(ctx)
	if err != nil {
		return nil, err
	}
	agg, err := graph.Aggregate(one, two, one.FetchedAt)
	if err != nil {
		return nil, err
	}
	return agg.Combined, nil
}
