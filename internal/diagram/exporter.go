package diagram

import (
	"context"
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"github.com/dyike/hedgehog/internal/models"
)

const (
	DefaultRenderURL = "https://mermaid.ink"
	DefaultFileName  = "investment_graph.png"
	LiveEditorURL    = "https://mermaid.live"
)

// Exporter renders mermaid code to PNG through a mermaid.ink compatible service.
type Exporter struct {
	client *resty.Client
	logger *zap.Logger
}

type ExporterOption func(*Exporter)

func WithLogger(l *zap.Logger) ExporterOption {
	return func(e *Exporter) {
		if l != nil {
			e.logger = l.Named("diagram")
		}
	}
}

func WithTimeout(d time.Duration) ExporterOption {
	return func(e *Exporter) { e.client.SetTimeout(d) }
}

func NewExporter(baseURL string, opts ...ExporterOption) *Exporter {
	if baseURL == "" {
		baseURL = DefaultRenderURL
	}
	client := resty.New()
	client.SetBaseURL(baseURL)
	client.SetTimeout(30 * time.Second)

	e := &Exporter{client: client, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Export writes the rendered PNG to path, creating its directory. Every
// failure is returned as a *models.RenderingFailure.
func (e *Exporter) Export(ctx context.Context, code, path string) error {
	fail := func(err error) error {
		e.logger.Warn("diagram export failed", zap.String("path", path), zap.Error(err))
		return &models.RenderingFailure{Path: path, Err: err}
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fail(err)
	}

	encoded := base64.URLEncoding.EncodeToString([]byte(code))
	resp, err := e.client.R().
		SetContext(ctx).
		SetQueryParam("type", "png").
		Get("/img/" + encoded)
	if err != nil {
		return fail(fmt.Errorf("request render service: %w", err))
	}
	if resp.IsError() {
		return fail(fmt.Errorf("render service returned %d", resp.StatusCode()))
	}
	if len(resp.Body()) == 0 {
		return fail(fmt.Errorf("render service returned an empty image"))
	}

	if err := os.WriteFile(path, resp.Body(), 0o644); err != nil {
		return fail(err)
	}
	e.logger.Info("diagram saved", zap.String("path", path))
	return nil
}

// FallbackInstructions tells the user how to render the diagram by hand.
func FallbackInstructions(err error) string {
	return fmt.Sprintf("Could not save diagram automatically: %v\n"+
		"To generate manually:\n"+
		"1. Visit %s\n"+
		"2. Paste the mermaid code above\n"+
		"3. Export as PNG or SVG\n", err, LiveEditorURL)
}
