package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"slices"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/dyike/hedgehog/config"
	"github.com/dyike/hedgehog/consts"
	"github.com/dyike/hedgehog/internal/logging"
	"github.com/dyike/hedgehog/internal/models"
	"github.com/dyike/hedgehog/internal/storage"
)

// Version is set at build time with -ldflags "-X .../internal/cli.Version=...".
var Version = "dev"

type app struct {
	cfg        *config.Config
	configPath string
	debug      bool
	logger     *zap.Logger
}

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	a := &app{logger: zap.NewNop()}

	rootCmd := &cobra.Command{
		Use:   "hedgehog",
		Short: "hedgehog - multi-agent investment workflow",
		Long: `hedgehog fetches market data from two sources, aggregates it, runs four
analyses in parallel and joins them into a single buy/sell/hold decision.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = a.logger.Sync()
		},
		Args: cobra.NoArgs,
	}

	// Default behavior: one workflow run
	runCmd := a.runCmd()
	rootCmd.RunE = runCmd.RunE

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(a.analyzeCmd())
	rootCmd.AddCommand(a.diagramCmd())
	rootCmd.AddCommand(a.historyCmd())
	rootCmd.AddCommand(a.configCmd())
	rootCmd.AddCommand(newVersionCmd())

	// Global flags
	rootCmd.PersistentFlags().BoolVar(&a.debug, "debug", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringVar(&a.configPath, "config", "", "Configuration file path (.json or .yaml)")

	return rootCmd
}

// setup loads the configuration and builds the logger.
func (a *app) setup() error {
	if a.configPath != "" {
		m, err := config.NewManager(config.WithConfigPath(a.configPath), config.WithInitialConfig(config.DefaultConfig()))
		if err != nil {
			return err
		}
		cfg := m.Get()
		a.cfg = &cfg
	} else {
		a.cfg = config.DefaultConfig()
	}
	if a.debug {
		a.cfg.Debug = true
	}

	logger, err := logging.New(a.cfg.Debug)
	if err != nil {
		return err
	}
	a.logger = logger

	if err := a.cfg.EnsureDirectories(); err != nil {
		return fmt.Errorf("failed to create directories: %w", err)
	}
	return nil
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt)
}

func (a *app) runCmd() *cobra.Command {
	var (
		tickers  string
		provider string
		source   string
	)
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the investment workflow once",
		Long: `Run the investment workflow from start to decision and print the buy/sell/hold
lists, the rationale and the execution history.
Example: hedgehog run --source live --tickers AAPL,MSFT`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if tickers != "" {
				a.cfg.Tickers = config.SplitList(tickers)
			}
			if provider != "" {
				a.cfg.LLMProvider = strings.ToLower(provider)
			}
			if source != "" {
				a.cfg.DataSource = strings.ToLower(source)
			}

			ctx, cancel := signalContext()
			defer cancel()

			w := cmd.OutOrStdout()
			res, err := runWorkflow(ctx, a.cfg, a.logger, w)
			if err != nil {
				if res != nil && res.State != nil && len(res.State.Steps) > 0 {
					renderTrace(w, res.State.Steps)
				}
				return fmt.Errorf("workflow failed: %w", err)
			}

			fmt.Fprintln(w)
			renderDecision(w, res.State.Decision)
			fmt.Fprintln(w)
			renderTrace(w, res.State.Steps)
			if res.ReportPath != "" {
				fmt.Fprintln(w, mutedStyle.Render("Report written to "+res.ReportPath))
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&tickers, "tickers", "", "Comma separated tickers for the live equity source")
	cmd.Flags().StringVar(&provider, "provider", "", "LLM provider: scripted, deepseek, openai or gemini")
	cmd.Flags().StringVar(&source, "source", "", "Market data source: static or live")
	return cmd
}

func (a *app) analyzeCmd() *cobra.Command {
	var (
		persona  string
		dataFile string
		provider string
	)
	cmd := &cobra.Command{
		Use:   "analyze [TICKER]",
		Short: "Evaluate one ticker with a single analyst persona",
		Long: `Evaluate a ticker with one analyst persona and print its structured report.
A missing market_data section is filled with the current market snapshot.
Example: hedgehog analyze AAPL --persona warren_buffett --data aapl.json`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if provider != "" {
				a.cfg.LLMProvider = strings.ToLower(provider)
			}
			if err := a.cfg.Validate(); err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}

			ticker, p, err := resolveAnalyzeTarget(args, persona)
			if err != nil {
				return err
			}

			ctx, cancel := signalContext()
			defer cancel()

			sections, err := loadSections(dataFile)
			if err != nil {
				return err
			}
			if slices.Contains(models.NewAnalysisRequest(ticker, sections).Missing(p), consts.Section_MarketData) {
				snapshot, err := marketSnapshot(ctx, a.cfg, a.logger)
				if err != nil {
					return fmt.Errorf("fetch market snapshot: %w", err)
				}
				sections[consts.Section_MarketData] = snapshot
			}

			eval, err := newCapability(ctx, a.cfg, a.logger)
			if err != nil {
				return err
			}
			result, err := eval.Evaluate(ctx, models.NewAnalysisRequest(ticker, sections), p)
			if err != nil {
				return fmt.Errorf("analysis failed: %w", err)
			}
			return renderResult(cmd.OutOrStdout(), ticker, result)
		},
	}
	cmd.Flags().StringVar(&persona, "persona", "", "Analyst persona, e.g. warren_buffett or \"Cathie Wood\"")
	cmd.Flags().StringVar(&dataFile, "data", "", "JSON file with request sections keyed by name")
	cmd.Flags().StringVar(&provider, "provider", "", "LLM provider: scripted, deepseek, openai or gemini")
	return cmd
}

func resolveAnalyzeTarget(args []string, persona string) (string, models.Persona, error) {
	var ticker string
	var err error
	switch {
	case len(args) == 1:
		ticker = args[0]
	case isInteractive():
		if ticker, err = PromptForTicker(); err != nil {
			return "", "", err
		}
	default:
		return "", "", fmt.Errorf("ticker is required")
	}

	var p models.Persona
	switch {
	case persona != "":
		p, err = models.ParsePersona(persona)
	case isInteractive():
		p, err = PromptForPersona()
	default:
		err = fmt.Errorf("--persona is required when stdin is not a terminal")
	}
	if err != nil {
		return "", "", err
	}
	return ticker, p, nil
}

func loadSections(path string) (map[string]any, error) {
	sections := map[string]any{}
	if path == "" {
		return sections, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read data file: %w", err)
	}
	if err := json.Unmarshal(data, &sections); err != nil {
		return nil, fmt.Errorf("parse data file %s: %w", path, err)
	}
	return sections, nil
}

func (a *app) diagramCmd() *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "diagram",
		Short: "Print the workflow diagram and render it to PNG",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signalContext()
			defer cancel()
			return exportDiagram(ctx, a.cfg, a.logger, cmd.OutOrStdout(), out)
		},
	}
	cmd.Flags().StringVar(&out, "out", "", "Output image path (default images/investment_graph.png)")
	return cmd
}

func (a *app) historyCmd() *cobra.Command {
	var (
		limit  int
		cursor int64
	)
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recorded workflow runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := storage.Open(a.cfg.HistoryDBPath, a.logger)
			if err != nil {
				return err
			}
			defer store.Close()

			runs, err := store.ListRuns(cmd.Context(), cursor, limit)
			if err != nil {
				return err
			}
			renderRuns(cmd.OutOrStdout(), runs)
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "Number of runs to list")
	cmd.Flags().Int64Var(&cursor, "cursor", 0, "List runs older than this row id")

	cmd.AddCommand(&cobra.Command{
		Use:   "show RUN_ID",
		Short: "Show one recorded run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := storage.Open(a.cfg.HistoryDBPath, a.logger)
			if err != nil {
				return err
			}
			defer store.Close()

			detail, err := store.GetRun(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if detail == nil {
				return fmt.Errorf("run %s not found", args[0])
			}
			renderRunDetail(cmd.OutOrStdout(), detail)
			return nil
		},
	})
	return cmd
}

func (a *app) configCmd() *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration management",
		Long:  "Inspect and validate hedgehog configuration settings",
	}

	configCmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		Run: func(cmd *cobra.Command, args []string) {
			renderConfig(cmd.OutOrStdout(), a.cfg, a.configPath)
		},
	})

	configCmd.AddCommand(&cobra.Command{
		Use:   "validate",
		Short: "Validate configuration and credentials",
		RunE: func(cmd *cobra.Command, args []string) error {
			return validateConfig(cmd, a.cfg)
		},
	})

	return configCmd
}

func validateConfig(cmd *cobra.Command, cfg *config.Config) error {
	w := cmd.OutOrStdout()
	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(w, errorStyle.Render("Configuration invalid: "+err.Error()))
		return err
	}

	var warnings []string
	if cfg.LLMProvider != config.ProviderScripted && cfg.APIKey() == "" {
		warnings = append(warnings, fmt.Sprintf("%s provider selected but its API key is not set", cfg.LLMProvider))
	}
	if cfg.DataSource == config.SourceLive && cfg.FredAPIKey == "" {
		warnings = append(warnings, "FRED_API_KEY not set, macro data falls back to the static snapshot")
	}

	if len(warnings) == 0 {
		fmt.Fprintln(w, buyStyle.Render("Configuration validation completed successfully!"))
		return nil
	}
	fmt.Fprintf(w, "Configuration validation completed with %d warnings:\n", len(warnings))
	for _, warning := range warnings {
		fmt.Fprintln(w, holdStyle.Render("  - "+warning))
	}
	return nil
}

// newVersionCmd creates the version command
func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "hedgehog %s\n", Version)
		},
	}
}

// RunDiagram is the standalone diagram driver used by cmd/diagram.
func RunDiagram(ctx context.Context, cfg *config.Config, out string) error {
	logger, err := logging.New(cfg.Debug)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()
	return exportDiagram(ctx, cfg, logger, os.Stdout, out)
}
