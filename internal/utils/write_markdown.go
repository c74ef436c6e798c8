package utils

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dyike/hedgehog/internal/models"
)

// WriteMarkdown writes content to dir/fileName and returns the full path.
func WriteMarkdown(dir, fileName, content string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	path := filepath.Join(dir, fileName)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return "", fmt.Errorf("failed to write file %s: %w", path, err)
	}
	return path, nil
}

// RunReport renders a finished run as markdown: the decision, every analysis
// in completion order, and the execution trace.
func RunReport(state *models.RunState) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Investment Decision\n\nRun `%s`, started %s\n\n", state.RunID, state.StartedAt.Format("2006-01-02 15:04:05"))

	if d := state.Decision; d != nil {
		b.WriteString("| Action | Assets |\n|---|---|\n")
		fmt.Fprintf(&b, "| Buy | %s |\n", joinOrDash(d.BuyAssets))
		fmt.Fprintf(&b, "| Sell | %s |\n", joinOrDash(d.SellAssets))
		fmt.Fprintf(&b, "| Hold | %s |\n", joinOrDash(d.HoldAssets))
		fmt.Fprintf(&b, "\n**Rationale:** %s\n", d.Rationale)
	} else {
		b.WriteString("No decision was reached.\n")
	}

	if len(state.Results) > 0 {
		b.WriteString("\n## Analyses\n")
		for _, r := range state.Results {
			fmt.Fprintf(&b, "\n### %s (%s)\n\n", r.Stage, r.Persona.DisplayName())
			if rated, ok := r.Result.(models.Rated); ok {
				fmt.Fprintf(&b, "- Rating: %d/10\n", rated.Score())
			}
			if rec, ok := r.Result.(models.Recommending); ok {
				fmt.Fprintf(&b, "- Recommendation: %s\n", rec.Stance())
			}
			data, err := json.MarshalIndent(r.Result, "", "  ")
			if err == nil {
				fmt.Fprintf(&b, "\n```json\n%s\n```\n", data)
			}
		}
	}

	b.WriteString("\n## Execution Trace\n\n")
	for i, step := range state.Steps {
		fmt.Fprintf(&b, "%d. %s\n", i+1, step)
	}
	return b.String()
}

func joinOrDash(items []string) string {
	if len(items) == 0 {
		return "-"
	}
	return strings.Join(items, ", ")
}
