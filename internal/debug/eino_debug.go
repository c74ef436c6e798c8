package debug

import (
	"context"
	"fmt"
	"strconv"

	"github.com/cloudwego/eino-ext/devops"
	"go.uber.org/zap"

	"github.com/dyike/hedgehog/config"
)

// EinoDebugger starts the eino devops plugin so compiled workflows can be
// inspected in the visual debugger. It must be initialised before the
// workflow graph is compiled.
type EinoDebugger struct {
	config *config.Config
	logger *zap.Logger
	init   func(ctx context.Context, port string) error
}

func NewEinoDebugger(cfg *config.Config, logger *zap.Logger) *EinoDebugger {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EinoDebugger{
		config: cfg,
		logger: logger.Named("debug"),
		init: func(ctx context.Context, port string) error {
			return devops.Init(ctx, devops.WithDevServerPort(port))
		},
	}
}

func (d *EinoDebugger) Initialize(ctx context.Context) error {
	if !d.config.EinoDebugEnabled {
		return nil
	}

	d.logger.Info("initializing eino visual debug plugin", zap.Int("port", d.config.EinoDebugPort))
	if err := d.init(ctx, strconv.Itoa(d.config.EinoDebugPort)); err != nil {
		return fmt.Errorf("failed to initialize Eino debug plugin: %w", err)
	}
	d.logger.Info("eino debug server ready", zap.String("url", d.GetDebugURL()))
	return nil
}

func (d *EinoDebugger) IsEnabled() bool {
	return d.config.EinoDebugEnabled
}

func (d *EinoDebugger) GetDebugURL() string {
	if !d.config.EinoDebugEnabled {
		return ""
	}
	return fmt.Sprintf("http://localhost:%d", d.config.EinoDebugPort)
}
