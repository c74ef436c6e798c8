package capability

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	genai "google.golang.org/genai"
)

// Gemini adapts the genai client to Generator. The conversation is flattened
// into one prompt and the reply is requested as application/json.
type Gemini struct {
	cli       *genai.Client
	model     string
	maxTokens int
}

func NewGemini(ctx context.Context, apiKey, modelName string, maxTokens int) (*Gemini, error) {
	// an empty key lets the client fall back to GOOGLE_API_KEY / GEMINI_API_KEY
	cli, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	return &Gemini{cli: cli, model: modelName, maxTokens: maxTokens}, nil
}

func (g *Gemini) Generate(ctx context.Context, input []*schema.Message, _ ...model.Option) (*schema.Message, error) {
	full := flatten(input)

	conf := &genai.GenerateContentConfig{ResponseMIMEType: "application/json"}
	if g.maxTokens > 0 {
		conf.MaxOutputTokens = int32(g.maxTokens)
	}
	resp, err := g.cli.Models.GenerateContent(ctx, g.model,
		[]*genai.Content{{Parts: []*genai.Part{{Text: full}}}},
		conf,
	)
	if err != nil {
		return nil, err
	}
	if len(resp.Candidates) == 0 {
		return nil, errors.New("gemini returned no candidates")
	}
	cand := resp.Candidates[0]
	if string(cand.FinishReason) == "SAFETY" {
		return &schema.Message{
			Role:         schema.Assistant,
			ResponseMeta: &schema.ResponseMeta{FinishReason: FinishContentFilter},
		}, nil
	}
	if cand.Content == nil || len(cand.Content.Parts) == 0 {
		return nil, errors.New("gemini returned an empty candidate")
	}
	var b strings.Builder
	for _, part := range cand.Content.Parts {
		b.WriteString(part.Text)
	}
	return &schema.Message{
		Role:         schema.Assistant,
		Content:      b.String(),
		ResponseMeta: &schema.ResponseMeta{FinishReason: strings.ToLower(string(cand.FinishReason))},
	}, nil
}

func flatten(messages []*schema.Message) string {
	var b strings.Builder
	for i, m := range messages {
		if i > 0 {
			b.WriteString("\n\n")
		}
		switch m.Role {
		case schema.System:
			b.WriteString(m.Content)
		default:
			fmt.Fprintf(&b, "[%s]\n%s", strings.ToUpper(string(m.Role)), m.Content)
		}
	}
	return b.String()
}
