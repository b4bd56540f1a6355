package logger

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/mapuy555/warranty-server/internal/config"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

const (
	_defaultMaxSize    = 100
	_defaultMaxBackups = 7
	_defaultMaxAge     = 30
)

type contextKey string

const requestIDKey contextKey = "request_id"

type ZapLogger struct {
	logger *zap.Logger
	level  zapcore.Level

	maxSize    int
	maxBackups int
	maxAge     int
}

func NewZapLogger(cfg *config.Config, opts ...Option) (*ZapLogger, error) {
	encoderConfig := zapcore.EncoderConfig{
		TimeKey:       "ts",
		LevelKey:      "level",
		NameKey:       "logger",
		CallerKey:     "caller",
		FunctionKey:   zapcore.OmitKey,
		MessageKey:    "msg",
		StacktraceKey: "stacktrace",
		LineEnding:    zapcore.DefaultLineEnding,
		EncodeLevel:   zapcore.LowercaseLevelEncoder,
		EncodeTime:    zapcore.ISO8601TimeEncoder,
		EncodeCaller:  zapcore.ShortCallerEncoder,
	}

	logger := &ZapLogger{
		maxSize:    _defaultMaxSize,
		maxBackups: _defaultMaxBackups,
		maxAge:     _defaultMaxAge,
		level:      parseLevel(cfg.Logger.Level),
	}

	for _, opt := range opts {
		opt(logger)
	}
	if err := logger.validate(); err != nil {
		return nil, fmt.Errorf("logger.NewZapLogger: validation: %w", err)
	}

	lumberSync := &lumberjack.Logger{
		Filename:   cfg.Logger.Filename,
		MaxSize:    logger.maxSize,
		MaxBackups: logger.maxBackups,
		MaxAge:     logger.maxAge,
		Compress:   true,
	}

	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(encoderConfig),
		zapcore.NewMultiWriteSyncer(
			zapcore.AddSync(lumberSync),
			zapcore.AddSync(os.Stdout),
		),
		zap.LevelEnablerFunc(func(lvl zapcore.Level) bool {
			return lvl >= logger.level
		}),
	)

	logger.logger = zap.New(core,
		zap.Fields(
			zap.String("service", cfg.App.Name),
			zap.String("env", cfg.Env),
		),
		zap.AddCaller(),
		zap.AddStacktrace(zap.ErrorLevel),
	)

	return logger, nil
}

func (l *ZapLogger) Zap() *zap.Logger {
	return l.logger
}

func (l *ZapLogger) WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, requestID)
}

func (l *ZapLogger) GetRequestID(ctx context.Context) string {
	if requestID, ok := ctx.Value(requestIDKey).(string); ok {
		return requestID
	}
	return ""
}

func (l *ZapLogger) GenerateRequestID() string {
	return uuid.New().String()
}

// NewContextLogger attaches the request id from ctx, when present.
func (l *ZapLogger) NewContextLogger(ctx context.Context) *zap.Logger {
	requestID := l.GetRequestID(ctx)
	if requestID == "" {
		return l.logger
	}
	return l.logger.With(zap.String("request_id", requestID))
}

func parseLevel(s string) zapcore.Level {
	switch s {
	case "debug":
		return zapcore.DebugLevel
	case "warn":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

type Option func(*ZapLogger)

func MaxSize(size int) Option {
	return func(cfg *ZapLogger) {
		cfg.maxSize = size
	}
}

func MaxBackups(backups int) Option {
	return func(cfg *ZapLogger) {
		cfg.maxBackups = backups
	}
}

func MaxAge(age int) Option {
	return func(cfg *ZapLogger) {
		cfg.maxAge = age
	}
}

func SetLevel(level zapcore.Level) Option {
	return func(cfg *ZapLogger) {
		cfg.level = level
	}
}

func (l *ZapLogger) validate() error {
	if l.maxSize <= 0 {
		return errors.New("invalid maxSize: must be > 0")
	}

	if l.maxBackups <= 0 {
		return errors.New("invalid maxBackups: must be > 0")
	}

	if l.maxAge <= 0 {
		return errors.New("invalid maxAge: must be > 0")
	}
	return nil
}
