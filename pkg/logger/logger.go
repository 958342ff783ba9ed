package logger

import (
	"context"
	"flag"
	"io"
	"os"
	"strings"

	charmlog "github.com/charmbracelet/log"
)

// LogLevel represents the logging level
type LogLevel string

const (
	DebugLevel    LogLevel = "debug"
	InfoLevel     LogLevel = "info"
	WarnLevel     LogLevel = "warn"
	ErrorLevel    LogLevel = "error"
	DisabledLevel LogLevel = "disabled"
)

// ToCharmlogLevel converts a LogLevel to the underlying charmlog level.
// Unknown levels default to InfoLevel.
func (l LogLevel) ToCharmlogLevel() charmlog.Level {
	switch l {
	case DebugLevel:
		return charmlog.DebugLevel
	case InfoLevel:
		return charmlog.InfoLevel
	case WarnLevel:
		return charmlog.WarnLevel
	case ErrorLevel:
		return charmlog.ErrorLevel
	case DisabledLevel:
		// High enough that nothing is emitted
		return charmlog.Level(1000)
	default:
		return charmlog.InfoLevel
	}
}

// Config controls logger construction
type Config struct {
	Level      LogLevel
	Output     io.Writer
	JSON       bool
	AddSource  bool
	TimeFormat string
}

// DefaultConfig returns the configuration used outside tests
func DefaultConfig() *Config {
	return &Config{
		Level:      InfoLevel,
		Output:     os.Stdout,
		JSON:       false,
		AddSource:  false,
		TimeFormat: "15:04:05",
	}
}

// TestConfig returns a configuration that discards all output
func TestConfig() *Config {
	return &Config{
		Level:      DisabledLevel,
		Output:     io.Discard,
		JSON:       false,
		AddSource:  false,
		TimeFormat: "15:04:05",
	}
}

// Logger is the logging facade carried through contexts
type Logger interface {
	Debug(msg string, keyvals ...any)
	Info(msg string, keyvals ...any)
	Warn(msg string, keyvals ...any)
	Error(msg string, keyvals ...any)
	With(keyvals ...any) Logger
}

type charmLogger struct {
	l *charmlog.Logger
}

func (c *charmLogger) Debug(msg string, keyvals ...any) { c.l.Debug(msg, keyvals...) }
func (c *charmLogger) Info(msg string, keyvals ...any)  { c.l.Info(msg, keyvals...) }
func (c *charmLogger) Warn(msg string, keyvals ...any)  { c.l.Warn(msg, keyvals...) }
func (c *charmLogger) Error(msg string, keyvals ...any) { c.l.Error(msg, keyvals...) }

func (c *charmLogger) With(keyvals ...any) Logger {
	return &charmLogger{l: c.l.With(keyvals...)}
}

// NewLogger creates a logger from the given config. A nil config resolves to
// DefaultConfig, or TestConfig when running under go test.
func NewLogger(cfg *Config) Logger {
	if cfg == nil {
		if IsTestEnvironment() {
			cfg = TestConfig()
		} else {
			cfg = DefaultConfig()
		}
	}
	opts := charmlog.Options{
		Level:           cfg.Level.ToCharmlogLevel(),
		ReportCaller:    cfg.AddSource,
		ReportTimestamp: true,
		TimeFormat:      cfg.TimeFormat,
	}
	if cfg.JSON {
		opts.Formatter = charmlog.JSONFormatter
	}
	out := cfg.Output
	if out == nil {
		out = os.Stdout
	}
	return &charmLogger{l: charmlog.NewWithOptions(out, opts)}
}

// IsTestEnvironment reports whether the process is running under go test
func IsTestEnvironment() bool {
	if flag.Lookup("test.v") != nil {
		return true
	}
	return strings.HasSuffix(os.Args[0], ".test")
}

type ctxKey struct{}

// LoggerCtxKey is the context key under which the logger is stored
var LoggerCtxKey = ctxKey{}

// ContextWithLogger returns a context carrying the given logger
func ContextWithLogger(ctx context.Context, log Logger) context.Context {
	return context.WithValue(ctx, LoggerCtxKey, log)
}

// FromContext returns the logger stored in the context, or a default logger
// when none (or a value of the wrong type) is present.
func FromContext(ctx context.Context) Logger {
	if ctx != nil {
		if log, ok := ctx.Value(LoggerCtxKey).(Logger); ok && log != nil {
			return log
		}
	}
	return NewLogger(nil)
}
