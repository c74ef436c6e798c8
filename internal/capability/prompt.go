package capability

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/schema"

	"github.com/dyike/hedgehog/internal/models"
	"github.com/dyike/hedgehog/internal/utils"
)

const systemTpl = `{persona_prompt}

Respond with a single JSON object and nothing else. No markdown fences, no commentary.
The object must conform to this JSON schema:
{schema}`

const userTpl = `Persona: {persona}
Ticker: {ticker}

Input data (JSON):
{request}`

var analysisTemplate = prompt.FromMessages(schema.FString,
	schema.SystemMessage(systemTpl),
	schema.UserMessage(userTpl),
)

func buildMessages(ctx context.Context, p models.Persona, req *models.AnalysisRequest, s *resultSchema) ([]*schema.Message, error) {
	personaPrompt, err := utils.LoadPersonaPrompt(p.String())
	if err != nil {
		return nil, err
	}
	body, err := json.MarshalIndent(req, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode request for %s: %w", p, err)
	}
	ticker := req.Ticker()
	if ticker == "" {
		ticker = "n/a"
	}
	return analysisTemplate.Format(ctx, map[string]any{
		"persona_prompt": personaPrompt,
		"schema":         s.text,
		"persona":        p.String(),
		"ticker":         ticker,
		"request":        string(body),
	})
}

// repromptMessages appends the rejected reply and the reasons it was rejected.
func repromptMessages(messages []*schema.Message, reply string, problems []string) []*schema.Message {
	var b strings.Builder
	b.WriteString("Your previous reply was rejected:\n")
	for _, p := range problems {
		b.WriteString("- ")
		b.WriteString(p)
		b.WriteString("\n")
	}
	b.WriteString("Reply again with only the corrected JSON object.")

	next := make([]*schema.Message, 0, len(messages)+2)
	next = append(next, messages...)
	return append(next, schema.AssistantMessage(reply, nil), schema.UserMessage(b.String()))
}
