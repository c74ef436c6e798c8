package graph

import (
	"context"
	"time"

	"github.com/cloudwego/eino/callbacks"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"
	"go.uber.org/zap"
)

type startKey struct{ node string }

// LoggerCallback logs node lifecycle events of the workflow graph. Events of
// nested components are ignored; only named graph nodes are reported.
type LoggerCallback struct {
	callbacks.HandlerBuilder

	logger *zap.Logger
	// Out, when set, receives one line per finished node.
	Out chan<- string
}

func NewLoggerCallback(l *zap.Logger) *LoggerCallback {
	if l == nil {
		l = zap.NewNop()
	}
	return &LoggerCallback{logger: l}
}

func isStage(info *callbacks.RunInfo) bool {
	return info != nil && info.Name != "" && info.Component != compose.ComponentOfGraph
}

func (cb *LoggerCallback) push(line string) {
	if cb.Out == nil {
		return
	}
	select {
	case cb.Out <- line:
	default:
	}
}

func (cb *LoggerCallback) OnStart(ctx context.Context, info *callbacks.RunInfo, input callbacks.CallbackInput) context.Context {
	if !isStage(info) {
		return ctx
	}
	cb.logger.Debug("stage started", zap.String("stage", info.Name))
	return context.WithValue(ctx, startKey{info.Name}, time.Now())
}

func (cb *LoggerCallback) OnEnd(ctx context.Context, info *callbacks.RunInfo, output callbacks.CallbackOutput) context.Context {
	if !isStage(info) {
		return ctx
	}
	fields := []zap.Field{zap.String("stage", info.Name)}
	if started, ok := ctx.Value(startKey{info.Name}).(time.Time); ok {
		fields = append(fields, zap.Duration("elapsed", time.Since(started)))
	}
	cb.logger.Debug("stage finished", fields...)
	cb.push(info.Name + " done")
	return ctx
}

func (cb *LoggerCallback) OnError(ctx context.Context, info *callbacks.RunInfo, err error) context.Context {
	if !isStage(info) {
		return ctx
	}
	name := info.Name
	cb.logger.Warn("stage error", zap.String("stage", name), zap.Error(err))
	cb.push(name + " failed: " + err.Error())
	return ctx
}

func (cb *LoggerCallback) OnStartWithStreamInput(ctx context.Context, info *callbacks.RunInfo,
	input *schema.StreamReader[callbacks.CallbackInput]) context.Context {
	input.Close()
	return ctx
}

func (cb *LoggerCallback) OnEndWithStreamOutput(ctx context.Context, info *callbacks.RunInfo,
	output *schema.StreamReader[callbacks.CallbackOutput]) context.Context {
	output.Close()
	return ctx
}
