package logger

import (
	"context"
	"fmt"

	"github.com/mapuy555/warranty-server/internal/config"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const _argPairs = 2

type Adapter struct {
	zapLogger *ZapLogger
}

func NewAdapter(cfg *config.Config, opts ...Option) (*Adapter, error) {
	zl, err := NewZapLogger(cfg, opts...)
	if err != nil {
		return nil, fmt.Errorf("logger.NewAdapter: %w", err)
	}
	return &Adapter{zapLogger: zl}, nil
}

func (a *Adapter) Debugw(msg string, keysAndValues ...any) {
	a.zapLogger.Zap().Sugar().Debugw(msg, keysAndValues...)
}

func (a *Adapter) Infow(msg string, keysAndValues ...any) {
	a.zapLogger.Zap().Sugar().Infow(msg, keysAndValues...)
}

func (a *Adapter) Warnw(msg string, keysAndValues ...any) {
	a.zapLogger.Zap().Sugar().Warnw(msg, keysAndValues...)
}

func (a *Adapter) Errorw(msg string, keysAndValues ...any) {
	a.zapLogger.Zap().Sugar().Errorw(msg, keysAndValues...)
}

func (a *Adapter) Ctx(ctx context.Context) Logger {
	return &Adapter{
		zapLogger: &ZapLogger{
			logger: a.zapLogger.NewContextLogger(ctx),
		},
	}
}

func (a *Adapter) With(args ...any) Logger {
	return &Adapter{
		zapLogger: &ZapLogger{
			logger: a.zapLogger.Zap().With(toZapFields(args)...),
		},
	}
}

func (a *Adapter) Log(level Level, msg string, attrs ...Attr) {
	zapLevel := toZapLevel(level)
	if !a.zapLogger.Zap().Core().Enabled(zapLevel) {
		return
	}
	a.zapLogger.Zap().Log(zapLevel, msg, toZapFieldsFromAttrs(attrs)...)
}

func (a *Adapter) LogAttrs(ctx context.Context, level Level, msg string, attrs ...Attr) {
	ctxLogger := a.zapLogger.NewContextLogger(ctx)
	zapLevel := toZapLevel(level)

	if !ctxLogger.Core().Enabled(zapLevel) {
		return
	}

	ctxLogger.Log(zapLevel, msg, toZapFieldsFromAttrs(attrs)...)
}

func (a *Adapter) GenerateRequestID() string {
	return a.zapLogger.GenerateRequestID()
}

func (a *Adapter) GetRequestID(ctx context.Context) string {
	return a.zapLogger.GetRequestID(ctx)
}

func (a *Adapter) WithRequestID(ctx context.Context, requestID string) context.Context {
	return a.zapLogger.WithRequestID(ctx, requestID)
}

func toZapLevel(level Level) zapcore.Level {
	switch level {
	case DebugLevel:
		return zapcore.DebugLevel
	case InfoLevel:
		return zapcore.InfoLevel
	case WarnLevel:
		return zapcore.WarnLevel
	case ErrorLevel:
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

func toZapFields(args []any) []zap.Field {
	if len(args)%_argPairs != 0 {
		args = append(args, "<missing>")
	}
	fields := make([]zap.Field, 0, len(args)/_argPairs)
	for i := 0; i < len(args); i += _argPairs {
		key, ok := args[i].(string)
		if !ok {
			key = "UNKNOWN"
		}
		fields = append(fields, zap.Any(key, args[i+1]))
	}
	return fields
}

func toZapFieldsFromAttrs(attrs []Attr) []zap.Field {
	fields := make([]zap.Field, 0, len(attrs))
	for _, a := range attrs {
		fields = append(fields, zap.Any(a.Key, a.Value))
	}
	return fields
}
