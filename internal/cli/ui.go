package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/dyike/hedgehog/config"
	"github.com/dyike/hedgehog/internal/models"
	"github.com/dyike/hedgehog/internal/storage"
)

// UI styles
var (
	titleStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#7C3AED")).
		Background(lipgloss.Color("#1F2937")).
		Padding(0, 1).
		MarginBottom(1)

	panelStyle = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#3B82F6")).
		Padding(0, 2).
		Width(80)

	labelStyle = lipgloss.NewStyle().
		Bold(true).
		Width(8)

	buyStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#10B981")).
		Bold(true)

	sellStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#EF4444")).
		Bold(true)

	holdStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#F59E0B")).
		Bold(true)

	mutedStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#6B7280"))

	errorStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#EF4444")).
		Bold(true)
)

func assetList(items []string) string {
	if len(items) == 0 {
		return mutedStyle.Render("none")
	}
	return strings.Join(items, ", ")
}

// renderDecision prints the buy/sell/hold lists and the rationale.
func renderDecision(w io.Writer, d *models.InvestmentDecision) {
	var b strings.Builder
	b.WriteString(labelStyle.Render("Buy:") + buyStyle.Render(assetList(d.BuyAssets)) + "\n")
	b.WriteString(labelStyle.Render("Sell:") + sellStyle.Render(assetList(d.SellAssets)) + "\n")
	b.WriteString(labelStyle.Render("Hold:") + holdStyle.Render(assetList(d.HoldAssets)) + "\n\n")
	b.WriteString("Rationale: " + d.Rationale)

	fmt.Fprintln(w, titleStyle.Render("Investment Decision"))
	fmt.Fprintln(w, panelStyle.Render(b.String()))
}

// renderTrace prints the step-by-step execution history.
func renderTrace(w io.Writer, steps []string) {
	fmt.Fprintln(w, titleStyle.Render("Execution History"))
	for i, step := range steps {
		fmt.Fprintf(w, "  %2d. %s\n", i+1, step)
	}
}

func renderResult(w io.Writer, ticker string, r models.Result) error {
	header := r.Persona().DisplayName()
	if ticker != "" {
		header += " on " + ticker
	}
	fmt.Fprintln(w, titleStyle.Render(header))

	var summary []string
	if rated, ok := r.(models.Rated); ok {
		summary = append(summary, fmt.Sprintf("Rating: %d/10", rated.Score()))
	}
	if rec, ok := r.(models.Recommending); ok {
		summary = append(summary, "Recommendation: "+stanceStyle(rec.Stance()).Render(string(rec.Stance())))
	}
	if len(summary) > 0 {
		fmt.Fprintln(w, panelStyle.Render(strings.Join(summary, "\n")))
	}

	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("encode result: %w", err)
	}
	fmt.Fprintln(w, string(data))
	return nil
}

func stanceStyle(r models.Recommendation) lipgloss.Style {
	switch r {
	case models.Buy:
		return buyStyle
	case models.Sell:
		return sellStyle
	}
	return holdStyle
}

func renderRuns(w io.Writer, runs []storage.RunRecord) {
	fmt.Fprintln(w, titleStyle.Render("Run History"))
	if len(runs) == 0 {
		fmt.Fprintln(w, mutedStyle.Render("No runs recorded yet."))
		return
	}
	for _, r := range runs {
		status := buyStyle.Render(r.Status)
		if r.Status != storage.StatusDone {
			status = errorStyle.Render(r.Status)
		}
		fmt.Fprintf(w, "%s  %s  %-6s  %d steps\n",
			r.StartedAt.Local().Format("2006-01-02 15:04:05"), r.ID, status, len(r.Steps))
	}
}

func renderRunDetail(w io.Writer, d *storage.RunDetail) {
	fmt.Fprintln(w, titleStyle.Render("Run "+d.ID))
	fmt.Fprintf(w, "Status:   %s\n", d.Status)
	fmt.Fprintf(w, "Started:  %s\n", d.StartedAt.Local().Format("2006-01-02 15:04:05"))
	fmt.Fprintf(w, "Finished: %s\n", d.FinishedAt.Local().Format("2006-01-02 15:04:05"))
	if d.Error != "" {
		fmt.Fprintln(w, errorStyle.Render("Error: "+d.Error))
	}
	fmt.Fprintln(w)
	if d.Decision != nil {
		renderDecision(w, d.Decision)
	}
	for _, r := range d.Results {
		fmt.Fprintf(w, "%s %s (%s)\n%s\n", mutedStyle.Render(fmt.Sprintf("#%d", r.Seq)), r.Stage, r.Persona, string(r.Payload))
	}
	renderTrace(w, d.Steps)
}

func configured(v string) string {
	if v != "" {
		return buyStyle.Render("configured")
	}
	return mutedStyle.Render("not configured")
}

func renderConfig(w io.Writer, cfg *config.Config, path string) {
	fmt.Fprintln(w, titleStyle.Render("Current hedgehog Configuration"))
	if path != "" {
		fmt.Fprintf(w, "Config File:          %s\n", path)
	}
	fmt.Fprintf(w, "Project Directory:    %s\n", cfg.ProjectDir)
	fmt.Fprintf(w, "Results Directory:    %s\n", cfg.ResultsDir)
	fmt.Fprintf(w, "Images Directory:     %s\n", cfg.ImagesDir)
	fmt.Fprintln(w)
	fmt.Fprintf(w, "LLM Provider:         %s\n", cfg.LLMProvider)
	fmt.Fprintf(w, "Model:                %s\n", cfg.Model())
	fmt.Fprintf(w, "Backend URL:          %s\n", cfg.BackendURL)
	fmt.Fprintf(w, "Max Attempts:         %d\n", cfg.CapabilityMaxAttempts)
	fmt.Fprintf(w, "Attempt Timeout:      %s\n", cfg.CapabilityTimeout)
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Data Source:          %s\n", cfg.DataSource)
	fmt.Fprintf(w, "Tickers:              %s\n", strings.Join(cfg.Tickers, ", "))
	fmt.Fprintf(w, "FRED Series:          %s\n", strings.Join(cfg.FredSeries, ", "))
	fmt.Fprintf(w, "Quote Cache TTL:      %s\n", cfg.QuoteTTL)
	fmt.Fprintf(w, "Diagram Renderer:     %s\n", cfg.MermaidURL)
	fmt.Fprintf(w, "History:              %t (%s)\n", cfg.HistoryEnabled, cfg.HistoryDBPath)
	fmt.Fprintf(w, "Debug Mode:           %t\n", cfg.Debug)
	fmt.Fprintf(w, "Eino Debug:           %t\n", cfg.EinoDebugEnabled)
	if cfg.EinoDebugEnabled {
		fmt.Fprintf(w, "Debug URL:            http://localhost:%d\n", cfg.EinoDebugPort)
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, titleStyle.Render("API Configuration"))
	fmt.Fprintf(w, "DeepSeek API:         %s\n", configured(cfg.DeepSeekAPIKey))
	fmt.Fprintf(w, "OpenAI API:           %s\n", configured(cfg.OpenAIAPIKey))
	fmt.Fprintf(w, "Gemini API:           %s\n", configured(cfg.GeminiAPIKey))
	fmt.Fprintf(w, "FRED API:             %s\n", configured(cfg.FredAPIKey))
}
