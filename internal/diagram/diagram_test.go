package diagram

import (
	"context"
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dyike/hedgehog/consts"
	"github.com/dyike/hedgehog/internal/graph"
	"github.com/dyike/hedgehog/internal/models"
)

func countLines(code string, match func(string) bool) int {
	n := 0
	for _, line := range strings.Split(code, "\n") {
		if match(strings.TrimSpace(line)) {
			n++
		}
	}
	return n
}

func TestMermaidInvestmentTopology(t *testing.T) {
	code, err := Mermaid(graph.InvestmentTopology())
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(code, "stateDiagram-v2\n"))
	assert.Contains(t, code, "[*] --> start")
	assert.Contains(t, code, consts.PortfolioManagerDecision+" --> [*]")

	fromStart := countLines(code, func(l string) bool { return strings.HasPrefix(l, consts.Start+" -->") })
	assert.Equal(t, 1, fromStart)

	intoDecision := countLines(code, func(l string) bool { return strings.HasSuffix(l, "--> "+consts.PortfolioManagerDecision) })
	assert.Equal(t, 4, intoDecision)

	for _, stage := range graph.InvestmentTopology().Nodes {
		assert.Contains(t, code, stage)
	}
}

func TestMermaidRejectsInvalidTopology(t *testing.T) {
	_, err := Mermaid(&graph.Topology{Nodes: []string{"a", "b"}, Edges: []graph.Edge{{From: "a", To: "b"}, {From: "b", To: "a"}}})
	assert.Error(t, err)
}

func TestExportWritesImage(t *testing.T) {
	png := []byte("\x89PNG fake")
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		assert.Equal(t, "png", r.URL.Query().Get("type"))
		_, _ = w.Write(png)
	}))
	defer srv.Close()

	out := filepath.Join(t.TempDir(), "images", DefaultFileName)
	err := NewExporter(srv.URL).Export(context.Background(), "stateDiagram-v2\n", out)
	require.NoError(t, err)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, png, data)
	assert.Equal(t, "/img/"+base64.URLEncoding.EncodeToString([]byte("stateDiagram-v2\n")), gotPath)
}

func TestExportFailureIsRenderingFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	out := filepath.Join(t.TempDir(), DefaultFileName)
	err := NewExporter(srv.URL).Export(context.Background(), "stateDiagram-v2\n", out)

	var rf *models.RenderingFailure
	require.ErrorAs(t, err, &rf)
	assert.Equal(t, out, rf.Path)
	assert.ErrorIs(t, err, models.ErrRendering)
	assert.NoFileExists(t, out)

	msg := FallbackInstructions(err)
	assert.Contains(t, msg, LiveEditorURL)
	assert.Contains(t, msg, "500")
}
