package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync/atomic"
)

// Logger is the logging surface used across the server and CLI.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
	With(args ...any) Logger
	WithContext(ctx context.Context) Logger
	// Slog exposes the wrapped *slog.Logger for APIs that want one.
	Slog() *slog.Logger
}

// Config selects level, encoding and destination of log output.
type Config struct {
	Level     string    // debug, info, warn or error
	Format    string    // json or text ("console" is an alias of text)
	Output    io.Writer // nil means os.Stderr
	AddSource bool
}

// DefaultConfig logs JSON at info level to stderr.
func DefaultConfig() Config {
	return Config{Level: "info", Format: "json", Output: os.Stderr}
}

// level is shared by every logger built with New so that a config reload
// can raise or lower verbosity process-wide.
var level slog.LevelVar

var levelNames = map[string]slog.Level{
	"debug":   slog.LevelDebug,
	"":        slog.LevelInfo,
	"info":    slog.LevelInfo,
	"warn":    slog.LevelWarn,
	"warning": slog.LevelWarn,
	"error":   slog.LevelError,
}

// ParseLevel maps a level name to a slog.Level. Names are case-insensitive
// and the empty name means info.
func ParseLevel(name string) (slog.Level, error) {
	l, ok := levelNames[strings.ToLower(name)]
	if !ok {
		return slog.LevelInfo, fmt.Errorf("unknown log level %q", name)
	}
	return l, nil
}

// SetLevel changes the level of every logger created by New.
func SetLevel(name string) error {
	l, err := ParseLevel(name)
	if err != nil {
		return err
	}
	level.Set(l)
	return nil
}

// GetLevel reports the current level name.
func GetLevel() string {
	return strings.ToLower(level.Level().String())
}

// New builds a logger from cfg. Attributes with sensitive names are
// redacted before they reach the handler.
func New(cfg Config) (Logger, error) {
	l, err := ParseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}

	out := cfg.Output
	if out == nil {
		out = os.Stderr
	}
	h, err := newHandler(cfg.Format, out, &slog.HandlerOptions{
		Level:     &level,
		AddSource: cfg.AddSource,
		ReplaceAttr: func(_ []string, a slog.Attr) slog.Attr {
			return redactSensitive(a)
		},
	})
	if err != nil {
		return nil, err
	}

	level.Set(l)
	return &wrapped{sl: slog.New(h), ctx: context.Background()}, nil
}

func newHandler(format string, out io.Writer, opts *slog.HandlerOptions) (slog.Handler, error) {
	switch strings.ToLower(format) {
	case "", "json":
		return slog.NewJSONHandler(out, opts), nil
	case "text", "console":
		return slog.NewTextHandler(out, opts), nil
	}
	return nil, fmt.Errorf("unknown log format %q", format)
}

// wrapped adapts *slog.Logger to Logger, carrying the context passed to
// the handler on every record.
type wrapped struct {
	sl  *slog.Logger
	ctx context.Context
}

func (w *wrapped) Debug(msg string, args ...any) { w.sl.DebugContext(w.ctx, msg, args...) }
func (w *wrapped) Info(msg string, args ...any)  { w.sl.InfoContext(w.ctx, msg, args...) }
func (w *wrapped) Warn(msg string, args ...any)  { w.sl.WarnContext(w.ctx, msg, args...) }
func (w *wrapped) Error(msg string, args ...any) { w.sl.ErrorContext(w.ctx, msg, args...) }

func (w *wrapped) With(args ...any) Logger {
	return &wrapped{sl: w.sl.With(args...), ctx: w.ctx}
}

func (w *wrapped) WithContext(ctx context.Context) Logger {
	return &wrapped{sl: w.sl, ctx: ctx}
}

func (w *wrapped) Slog() *slog.Logger { return w.sl }

var global atomic.Pointer[wrapped]

func init() {
	l, _ := New(DefaultConfig())
	global.Store(l.(*wrapped))
}

// SetDefault replaces the process logger. It also becomes slog's default,
// so code using the slog package functions writes to the same place.
func SetDefault(l Logger) {
	w, ok := l.(*wrapped)
	if !ok {
		return
	}
	global.Store(w)
	slog.SetDefault(w.sl)
}

// Default returns the process logger.
func Default() Logger { return global.Load() }

func Debug(msg string, args ...any) { global.Load().Debug(msg, args...) }
func Info(msg string, args ...any)  { global.Load().Info(msg, args...) }
func Warn(msg string, args ...any)  { global.Load().Warn(msg, args...) }
func Error(msg string, args ...any) { global.Load().Error(msg, args...) }
