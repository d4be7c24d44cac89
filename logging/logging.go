// Package logging provides the leveled, contextual logger used across
// fastrack, together with a rate-limiting helper for warnings emitted
// from tight sampling loops.
package logging

import (
	"context"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Level is a logging severity, ordered DEBUG < INFO < WARN < ERROR.
type Level int

const (
	DEBUG Level = iota
	INFO
	WARN
	ERROR
)

func (l Level) String() string {
	switch l {
	case DEBUG:
		return "debug"
	case INFO:
		return "info"
	case WARN:
		return "warn"
	case ERROR:
		return "error"
	default:
		return "unknown"
	}
}

// LevelFromString parses a level name, accepting "warning" as an alias
// for WARN.
func LevelFromString(s string) (Level, error) {
	switch s {
	case "debug":
		return DEBUG, nil
	case "info":
		return INFO, nil
	case "warn", "warning":
		return WARN, nil
	case "error":
		return ERROR, nil
	default:
		return 0, errors.Errorf("unknown log level %q", s)
	}
}

func (l Level) zapLevel() zapcore.Level {
	switch l {
	case DEBUG:
		return zapcore.DebugLevel
	case INFO:
		return zapcore.InfoLevel
	case WARN:
		return zapcore.WarnLevel
	case ERROR:
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

// Logger is the structured logger implemented throughout fastrack. The
// C-prefixed variants accept a context.Context so call sites can later
// thread trace identifiers through without changing their signature.
type Logger interface {
	Debug(args ...interface{})
	Debugf(template string, args ...interface{})
	CDebugf(ctx context.Context, template string, args ...interface{})
	Info(args ...interface{})
	Infof(template string, args ...interface{})
	CInfof(ctx context.Context, template string, args ...interface{})
	Warn(args ...interface{})
	Warnf(template string, args ...interface{})
	CWarnf(ctx context.Context, template string, args ...interface{})
	Error(args ...interface{})
	Errorf(template string, args ...interface{})
	CErrorf(ctx context.Context, template string, args ...interface{})
	Named(name string) Logger
}

type zapLogger struct {
	sugar *zap.SugaredLogger
}

// NewLogger builds a production logger named for the component that
// owns it (e.g. "graphplanner", "fastrackplan").
func NewLogger(name string) Logger {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	z, err := cfg.Build()
	if err != nil {
		z = zap.NewNop()
	}
	return &zapLogger{sugar: z.Sugar().Named(name)}
}

// NewTestLogger builds a development-mode logger suitable for use in
// tests, writing human-readable output instead of JSON.
func NewTestLogger() Logger {
	z, err := zap.NewDevelopment()
	if err != nil {
		z = zap.NewNop()
	}
	return &zapLogger{sugar: z.Sugar()}
}

func (l *zapLogger) Debug(args ...interface{}) { l.sugar.Debug(args...) }
func (l *zapLogger) Debugf(template string, args ...interface{}) {
	l.sugar.Debugf(template, args...)
}

func (l *zapLogger) CDebugf(_ context.Context, template string, args ...interface{}) {
	l.sugar.Debugf(template, args...)
}

func (l *zapLogger) Info(args ...interface{}) { l.sugar.Info(args...) }
func (l *zapLogger) Infof(template string, args ...interface{}) {
	l.sugar.Infof(template, args...)
}

func (l *zapLogger) CInfof(_ context.Context, template string, args ...interface{}) {
	l.sugar.Infof(template, args...)
}

func (l *zapLogger) Warn(args ...interface{}) { l.sugar.Warn(args...) }
func (l *zapLogger) Warnf(template string, args ...interface{}) {
	l.sugar.Warnf(template, args...)
}

func (l *zapLogger) CWarnf(_ context.Context, template string, args ...interface{}) {
	l.sugar.Warnf(template, args...)
}

func (l *zapLogger) Error(args ...interface{}) { l.sugar.Error(args...) }
func (l *zapLogger) Errorf(template string, args ...interface{}) {
	l.sugar.Errorf(template, args...)
}

func (l *zapLogger) CErrorf(_ context.Context, template string, args ...interface{}) {
	l.sugar.Errorf(template, args...)
}

func (l *zapLogger) Named(name string) Logger {
	return &zapLogger{sugar: l.sugar.Named(name)}
}

// nopLogger discards everything; useful as a safe zero-value default.
type nopLogger struct{}

// Nop returns a Logger that discards all output.
func Nop() Logger { return nopLogger{} }

func (nopLogger) Debug(...interface{})                             {}
func (nopLogger) Debugf(string, ...interface{})                    {}
func (nopLogger) CDebugf(context.Context, string, ...interface{})  {}
func (nopLogger) Info(...interface{})                              {}
func (nopLogger) Infof(string, ...interface{})                     {}
func (nopLogger) CInfof(context.Context, string, ...interface{})   {}
func (nopLogger) Warn(...interface{})                              {}
func (nopLogger) Warnf(string, ...interface{})                     {}
func (nopLogger) CWarnf(context.Context, string, ...interface{})   {}
func (nopLogger) Error(...interface{})                             {}
func (nopLogger) Errorf(string, ...interface{})                    {}
func (nopLogger) CErrorf(context.Context, string, ...interface{})  {}
func (nopLogger) Named(string) Logger                              { return nopLogger{} }
