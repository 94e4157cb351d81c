package logging

import (
	"context"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// requestIDKey is the context key the request id middleware stores under.
type requestIDKey struct{}

var (
	mu   sync.RWMutex
	base = zap.NewNop()
)

// Init builds the process logger. Production uses JSON output, anything else
// the console encoder.
func Init(env, level string) (*zap.Logger, error) {
	var cfg zap.Config
	if env == "production" {
		cfg = zap.NewProductionConfig()
	} else {
		cfg = zap.NewDevelopmentConfig()
	}

	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		lvl = zapcore.InfoLevel
	}
	cfg.Level = zap.NewAtomicLevelAt(lvl)

	l, err := cfg.Build()
	if err != nil {
		return nil, err
	}
	SetLogger(l)
	return l, nil
}

func SetLogger(l *zap.Logger) {
	mu.Lock()
	base = l
	mu.Unlock()
}

func L() *zap.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return base
}

func WithRequestID(ctx context.Context, rid string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, rid)
}

func RequestID(ctx context.Context) string {
	if rid, ok := ctx.Value(requestIDKey{}).(string); ok {
		return rid
	}
	return ""
}

// Logger provides structured logging for one request.
type Logger struct {
	z *zap.Logger
}

// NewLogger creates a logger carrying the request id from ctx, if any.
func NewLogger(ctx context.Context) *Logger {
	requestID := RequestID(ctx)
	if requestID == "" {
		requestID = "unknown"
	}
	return &Logger{z: L().With(zap.String("request_id", requestID))}
}

func (l *Logger) LogError(operation string, err error, fields ...zap.Field) {
	l.z.Error(operation, append([]zap.Field{zap.String("operation", operation), zap.Error(err)}, fields...)...)
}

func (l *Logger) LogWarn(operation, message string, fields ...zap.Field) {
	l.z.Warn(message, append([]zap.Field{zap.String("operation", operation)}, fields...)...)
}

func (l *Logger) LogInfo(operation, message string, fields ...zap.Field) {
	l.z.Info(message, append([]zap.Field{zap.String("operation", operation)}, fields...)...)
}
