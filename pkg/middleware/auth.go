package middleware

import (
	"net/http"
	"strings"

	"github.com/shashiranjanraj/qrmenu/pkg/auth"
	"github.com/shashiranjanraj/qrmenu/pkg/logger"
	"github.com/shashiranjanraj/qrmenu/pkg/response"
	"github.com/shashiranjanraj/qrmenu/pkg/session"
)

// Require admits a request only when it carries a principal: the session's
// user_id first, then an "Authorization: Bearer" JWT. The user id is put in
// the request context for auth.UserID. Anything else is a 401 before the
// handler (and the database) is reached.
func Require(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if id, ok := session.FromCtx(r).GetString(session.UserIDKey); ok && id != "" {
			next.ServeHTTP(w, recordPrincipal(r, id))
			return
		}

		if token, ok := bearer(r); ok {
			claims, err := auth.ValidateToken(token)
			if err == nil {
				next.ServeHTTP(w, recordPrincipal(r, claims.UserID))
				return
			}
			logger.WithCtx(r.Context()).Debug("auth: bearer rejected", "error", err)
		}

		response.Unauthorized(w)
	})
}

func bearer(r *http.Request) (string, bool) {
	h := r.Header.Get("Authorization")
	scheme, token, ok := strings.Cut(h, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
