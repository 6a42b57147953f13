// Package logger wraps log/slog with the field names the API, scheduler and
// CLI share. Development gets human-readable text at debug level; every
// other environment gets JSON at info level.
package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
)

type contextKey string

// Context keys read by WithContext. Middleware stores the values.
const (
	RequestIDKey contextKey = "request_id"
	VerticalKey  contextKey = "vertical"
)

// Logger embeds *slog.Logger so call sites use the plain slog methods.
type Logger struct {
	*slog.Logger
}

// New logs to stdout.
func New(env string) *Logger {
	return NewWithWriter(env, os.Stdout)
}

// NewWithWriter logs to w; tests pass a buffer or io.Discard.
func NewWithWriter(env string, w io.Writer) *Logger {
	if strings.EqualFold(env, "development") {
		return &Logger{slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug}))}
	}
	return &Logger{slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: slog.LevelInfo}))}
}

func (l *Logger) with(attrs ...any) *Logger {
	return &Logger{l.Logger.With(attrs...)}
}

// WithContext tags the logger with the request id and vertical found in ctx.
func (l *Logger) WithContext(ctx context.Context) *Logger {
	if ctx == nil {
		return l
	}
	var attrs []any
	if id, _ := ctx.Value(RequestIDKey).(string); id != "" {
		attrs = append(attrs, slog.String("request_id", id))
	}
	if slug, _ := ctx.Value(VerticalKey).(string); slug != "" {
		attrs = append(attrs, slog.String("vertical", slug))
	}
	if len(attrs) == 0 {
		return l
	}
	return l.with(attrs...)
}

// WithVertical is used outside a request, e.g. by digest workers.
func (l *Logger) WithVertical(slug string) *Logger {
	return l.with(slog.String("vertical", slug))
}

func (l *Logger) HTTPRequest(method, path string, status int, latencyMs float64, clientIP string) {
	l.Info("http_request",
		slog.String("method", method),
		slog.String("path", path),
		slog.Int("status", status),
		slog.Float64("latency_ms", latencyMs),
		slog.String("client_ip", clientIP),
	)
}

func (l *Logger) HTTPError(method, path string, status int, err error, clientIP string) {
	l.Error("http_error",
		slog.String("method", method),
		slog.String("path", path),
		slog.Int("status", status),
		slog.Any("error", err),
		slog.String("client_ip", clientIP),
	)
}

func (l *Logger) DatabaseError(operation string, err error) {
	l.Error("database_error", slog.String("operation", operation), slog.Any("error", err))
}

// NotificationFailed records an email or chat webhook failure. These are
// warnings because the primary operation already succeeded.
func (l *Logger) NotificationFailed(channel, recipient string, err error) {
	l.Warn("notification_failed",
		slog.String("channel", channel),
		slog.String("recipient", recipient),
		slog.Any("error", err),
	)
}

func (l *Logger) RateLimitExceeded(clientIP, path string) {
	l.Warn("rate_limit_exceeded", slog.String("client_ip", clientIP), slog.String("path", path))
}
