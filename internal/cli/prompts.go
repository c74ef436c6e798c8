package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/AlecAivazis/survey/v2"
	"golang.org/x/term"

	"github.com/dyike/hedgehog/internal/dataflows"
	"github.com/dyike/hedgehog/internal/models"
)

func isInteractive() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

// PromptForTicker prompts the user to enter a stock ticker symbol
func PromptForTicker() (string, error) {
	var ticker string
	prompt := &survey.Input{
		Message: "Enter the stock ticker symbol (e.g., AAPL, MSFT, GOOGL):",
		Help:    "Please enter a valid stock ticker symbol for analysis",
	}

	err := survey.AskOne(prompt, &ticker, survey.WithValidator(func(val interface{}) error {
		return dataflows.ValidateSymbol(strings.TrimSpace(val.(string)))
	}))
	if err != nil {
		return "", err
	}

	return dataflows.NormalizeSymbol(ticker), nil
}

// PromptForPersona lets the user pick one of the analyst personas.
func PromptForPersona() (models.Persona, error) {
	options := make([]string, len(models.Analysts))
	for i, p := range models.Analysts {
		options[i] = p.DisplayName()
	}

	var selected string
	prompt := &survey.Select{
		Message: "Select the analyst persona:",
		Options: options,
		Help:    "Each persona evaluates the ticker from its own viewpoint and returns its own report format.",
		Default: options[0],
	}
	if err := survey.AskOne(prompt, &selected); err != nil {
		return "", err
	}

	p, err := models.ParsePersona(selected)
	if err != nil {
		return "", fmt.Errorf("unexpected selection %q: %w", selected, err)
	}
	return p, nil
}
