package middleware

import (
	"net/http"

	"github.com/rs/cors"
)

// CORS allows the given origins ("*" for any). Credentials are only allowed
// for explicit origins, since browsers refuse them with a wildcard.
func CORS(origins []string) func(http.Handler) http.Handler {
	wildcard := len(origins) == 0
	for _, o := range origins {
		if o == "*" {
			wildcard = true
		}
	}
	if wildcard {
		origins = []string{"*"}
	}

	c := cors.New(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID", "Content-Disposition"},
		AllowCredentials: !wildcard,
		MaxAge:           300,
	})
	return c.Handler
}
