// Package logger provides the structured, levelled application logger built
// on log/slog.
//
// Handlers and services should log through WithCtx so every line carries the
// request_id assigned by the request-id middleware:
//
//	log := logger.WithCtx(r.Context())
//	log.Info("restaurant created", "restaurant_id", rest.ID, "slug", rest.Slug)
package logger

import (
	"context"
	"io"
	"log/slog"
	"os"

	"github.com/shashiranjanraj/qrmenu/config"
)

// L is the process-wide base logger.
var L *slog.Logger

// sink is the optional MongoDB handler attached by Boot.
var sink *MongoHandler

func init() {
	L = New(os.Stdout, config.IsProduction())
	slog.SetDefault(L)
}

// New builds a logger writing to w: JSON in production, text otherwise.
func New(w io.Writer, production bool) *slog.Logger {
	if production {
		return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: slog.LevelInfo}))
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

// Boot attaches the MongoDB sink when LOG_MONGO_URI is configured. A sink that
// cannot connect is reported and skipped; stdout logging always stays on.
func Boot() {
	uri := config.Get("LOG_MONGO_URI", "")
	if uri == "" {
		return
	}

	h, err := NewMongoHandler(uri,
		config.Get("LOG_MONGO_DB", "qrmenu"),
		config.Get("LOG_MONGO_COLLECTION", "logs"),
	)
	if err != nil {
		L.Warn("logger: mongo sink disabled", "error", err)
		return
	}

	sink = h
	L = slog.New(NewMultiHandler(L.Handler(), h))
	slog.SetDefault(L)
}

// Close flushes the MongoDB sink, if any.
func Close() {
	if sink != nil {
		sink.Close()
		sink = nil
	}
}

type ctxKey struct{}

// WithCtx returns the request-scoped logger injected by the HTTP logger
// middleware, or the base logger when ctx carries none.
func WithCtx(ctx context.Context) *slog.Logger {
	if ctx != nil {
		if log, ok := ctx.Value(ctxKey{}).(*slog.Logger); ok && log != nil {
			return log
		}
	}
	return L
}

// InjectLogger stores log in ctx.
func InjectLogger(ctx context.Context, log *slog.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, log)
}

func Debug(msg string, args ...any) { L.Debug(msg, args...) }
func Info(msg string, args ...any)  { L.Info(msg, args...) }
func Warn(msg string, args ...any)  { L.Warn(msg, args...) }
func Error(msg string, args ...any) { L.Error(msg, args...) }
