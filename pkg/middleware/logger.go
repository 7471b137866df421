package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/shashiranjanraj/qrmenu/pkg/auth"
	"github.com/shashiranjanraj/qrmenu/pkg/logger"
	"github.com/shashiranjanraj/qrmenu/pkg/reqid"
)

// responseWriter wraps http.ResponseWriter to capture the status code.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// principal is filled in by Require so the access log can name the user
// even though the user id is attached to a context further down the chain.
type principal struct{ userID string }

type principalKey struct{}

// Logger logs each request with method, path, status, duration, IP and the
// request_id injected by reqid.Middleware, which must run first.
func Logger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		// Every downstream logger.WithCtx(ctx) returns this logger.
		reqLog := logger.L.With("request_id", reqid.FromCtx(r.Context()))
		p := &principal{}
		ctx := logger.InjectLogger(r.Context(), reqLog)
		ctx = context.WithValue(ctx, principalKey{}, p)
		r = r.WithContext(ctx)

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(rw, r)

		attrs := []any{
			"method", r.Method,
			"path", r.URL.Path,
			"status", rw.statusCode,
			"duration", time.Since(start).String(),
			"ip", r.RemoteAddr,
		}
		if p.userID != "" {
			attrs = append(attrs, "user_id", p.userID)
		}
		reqLog.Info("request", attrs...)
	})
}

// recordPrincipal tags the access log and the request logger with the user.
func recordPrincipal(r *http.Request, userID string) *http.Request {
	if p, ok := r.Context().Value(principalKey{}).(*principal); ok {
		p.userID = userID
	}
	ctx := auth.WithUser(r.Context(), userID)
	ctx = logger.InjectLogger(ctx, logger.WithCtx(ctx).With("user_id", userID))
	return r.WithContext(ctx)
}
