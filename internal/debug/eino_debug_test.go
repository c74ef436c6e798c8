package debug

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dyike/hedgehog/config"
)

func TestEinoDebuggerDisabled(t *testing.T) {
	cfg := config.DefaultConfigWithRoot(t.TempDir())
	d := NewEinoDebugger(cfg, nil)
	called := false
	d.init = func(context.Context, string) error { called = true; return nil }

	require.NoError(t, d.Initialize(context.Background()))
	assert.False(t, called)
	assert.False(t, d.IsEnabled())
	assert.Empty(t, d.GetDebugURL())
}

func TestEinoDebuggerEnabled(t *testing.T) {
	cfg := config.DefaultConfigWithRoot(t.TempDir())
	cfg.EinoDebugEnabled = true
	cfg.EinoDebugPort = 52600

	d := NewEinoDebugger(cfg, nil)
	var port string
	d.init = func(_ context.Context, p string) error { port = p; return nil }
	require.NoError(t, d.Initialize(context.Background()))
	assert.Equal(t, "52600", port, "configured port reaches the dev server")
	assert.Equal(t, "http://localhost:52600", d.GetDebugURL())

	d.init = func(context.Context, string) error { return errors.New("port in use") }
	assert.ErrorContains(t, d.Initialize(context.Background()), "port in use")
}
