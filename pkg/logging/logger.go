package logging

import (
	"os"
	"sort"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Fields is a set of structured key/value pairs attached to log entries.
type Fields map[string]any

// Logger is the logging interface used throughout the application.
// Error takes the error first so call sites never format it into the message.
type Logger interface {
	Debug(msg string, fields ...Fields)
	Info(msg string, fields ...Fields)
	Warn(msg string, fields ...Fields)
	Error(err error, msg string, fields ...Fields)
	WithFields(fields Fields) Logger
}

var (
	mu         sync.RWMutex
	rootLogger = newZapLogger(zapcore.InfoLevel)
)

// zapLogger adapts a zap.Logger to the Logger interface.
type zapLogger struct {
	zl    *zap.Logger
	bound Fields
}

func newZapLogger(level zapcore.Level) *zapLogger {
	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(encoderConfig),
		zapcore.Lock(os.Stderr),
		level,
	)
	return &zapLogger{zl: zap.New(core)}
}

// SetLevel reconfigures the root logger's level. Unknown names fall back to info.
func SetLevel(level string) {
	parsed, err := zapcore.ParseLevel(level)
	if err != nil {
		parsed = zapcore.InfoLevel
	}
	mu.Lock()
	defer mu.Unlock()
	rootLogger = newZapLogger(parsed)
}

// NewDefaultLogger returns the process-wide logger with no bound fields.
func NewDefaultLogger() Logger {
	mu.RLock()
	defer mu.RUnlock()
	return rootLogger
}

// WithFields returns a logger that attaches the given fields to every entry.
func WithFields(fields Fields) Logger {
	return NewDefaultLogger().WithFields(fields)
}

func (l *zapLogger) WithFields(fields Fields) Logger {
	merged := make(Fields, len(l.bound)+len(fields))
	for k, v := range l.bound {
		merged[k] = v
	}
	for k, v := range fields {
		merged[k] = v
	}
	return &zapLogger{zl: l.zl, bound: merged}
}

func (l *zapLogger) Debug(msg string, fields ...Fields) {
	l.zl.Debug(msg, l.zapFields(nil, fields)...)
}

func (l *zapLogger) Info(msg string, fields ...Fields) {
	l.zl.Info(msg, l.zapFields(nil, fields)...)
}

func (l *zapLogger) Warn(msg string, fields ...Fields) {
	l.zl.Warn(msg, l.zapFields(nil, fields)...)
}

func (l *zapLogger) Error(err error, msg string, fields ...Fields) {
	var extra []zap.Field
	if err != nil {
		extra = append(extra, zap.Error(err))
	}
	l.zl.Error(msg, l.zapFields(extra, fields)...)
}

// zapFields flattens bound fields plus per-call fields into a deterministic
// key order so log lines diff cleanly.
func (l *zapLogger) zapFields(extra []zap.Field, fields []Fields) []zap.Field {
	merged := make(Fields, len(l.bound))
	for k, v := range l.bound {
		merged[k] = v
	}
	for _, fs := range fields {
		for k, v := range fs {
			merged[k] = v
		}
	}

	keys := make([]string, 0, len(merged))
	for k := range merged {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]zap.Field, 0, len(keys)+len(extra))
	out = append(out, extra...)
	for _, k := range keys {
		out = append(out, zap.Any(k, merged[k]))
	}
	return out
}
