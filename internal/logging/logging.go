package logging

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"gopkg.in/natefinch/lumberjack.v2"
)

type ctxKey struct{}

var (
	once sync.Once
	mu   sync.RWMutex
	base *slog.Logger
)

type Options struct {
	Component string
	// FilePath enables a rotated JSON log file next to stdout. Empty means stdout only.
	FilePath string
	Level    string
}

// Init configures the global logger exactly once.
// Call this from the serve command before wiring anything else.
func Init(opts Options) *slog.Logger {
	once.Do(func() {
		var w io.Writer = os.Stdout
		if opts.FilePath != "" {
			_ = os.MkdirAll(filepath.Dir(opts.FilePath), 0o755)
			rot := &lumberjack.Logger{
				Filename:   opts.FilePath,
				MaxSize:    50, // MB
				MaxBackups: 3,
				MaxAge:     7, // days
				Compress:   false,
			}
			w = io.MultiWriter(os.Stdout, rot)
		}

		h := slog.NewJSONHandler(w, &slog.HandlerOptions{Level: ParseLevel(opts.Level)})
		l := slog.New(h).With("component", opts.Component)
		mu.Lock()
		base = l
		mu.Unlock()
	})
	return Base()
}

func ParseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Base returns the global logger, or a stdout logger when Init was never called.
func Base() *slog.Logger {
	mu.RLock()
	l := base
	mu.RUnlock()
	if l == nil {
		return slog.Default()
	}
	return l
}

// New returns a child logger derived from the global one.
// IMPORTANT: does NOT create a new handler/writer; it reuses the global handler.
func New(component string) *slog.Logger {
	return Base().With("component", component)
}

// WithCtx stores a logger in a standard context (useful outside Gin).
func WithCtx(ctx context.Context, l *slog.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, l)
}

// FromCtx fetches a logger from ctx or falls back to the global one.
func FromCtx(ctx context.Context) *slog.Logger {
	if v := ctx.Value(ctxKey{}); v != nil {
		if l, ok := v.(*slog.Logger); ok && l != nil {
			return l
		}
	}
	return Base()
}

// With stores the logger in gin.Context and in the request context, so use
// cases called with c.Request.Context() log with the request's attributes.
func With(c *gin.Context, l *slog.Logger) {
	c.Set("logger", l)
	c.Request = c.Request.WithContext(WithCtx(c.Request.Context(), l))
}

// From returns the request-scoped logger from gin.Context, or the global one.
func From(c *gin.Context) *slog.Logger {
	if v, ok := c.Get("logger"); ok {
		if l, ok := v.(*slog.Logger); ok && l != nil {
			return l
		}
	}
	return Base()
}
