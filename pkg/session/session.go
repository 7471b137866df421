// Package session provides cookie-identified server-side sessions backed by
// Redis (or memory in tests and single-node development).
//
// Usage (middleware):
//
//	r.Use(session.Middleware(session.DefaultOptions(), store))
//
// Usage (handler):
//
//	sess := session.FromCtx(r)
//	sess.Regenerate()
//	sess.Set(session.UserIDKey, user.ID)
//	err := sess.Save(r.Context(), w)
package session

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"net/http"
	"time"

	"github.com/shashiranjanraj/qrmenu/config"
)

// UserIDKey is where the authenticated user's id lives in the session.
const UserIDKey = "user_id"

// ------------------- Options -------------------

// Options configures session behaviour.
type Options struct {
	CookieName string
	TTL        time.Duration
	HTTPOnly   bool
	Secure     bool
	SameSite   http.SameSite
	Path       string
}

// DefaultOptions reads lifetime and the secure flag from config.
func DefaultOptions() Options {
	return Options{
		CookieName: "qrmenu_session",
		TTL:        config.SessionLifetime(),
		HTTPOnly:   true,
		Secure:     config.SessionSecure(),
		SameSite:   http.SameSiteLaxMode,
		Path:       "/",
	}
}

// ------------------- Session -------------------

type ctxKey struct{}

// Session is an in-request session handle.
type Session struct {
	id      string
	prevID  string // set by Regenerate, removed from the store on Save
	data    map[string]interface{}
	store   Store
	opts    Options
	changed bool
}

// newID generates a cryptographically random 32-byte hex session ID.
func newID() string {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		panic(fmt.Sprintf("session: read random: %v", err))
	}
	return hex.EncodeToString(b)
}

// Set stores a value under key in the session.
func (s *Session) Set(key string, value interface{}) {
	s.data[key] = value
	s.changed = true
}

// Get retrieves a value from the session.
func (s *Session) Get(key string) (interface{}, bool) {
	v, ok := s.data[key]
	return v, ok
}

// GetString is a typed convenience getter.
func (s *Session) GetString(key string) (string, bool) {
	v, ok := s.data[key]
	if !ok {
		return "", false
	}
	str, ok := v.(string)
	return str, ok
}

// Delete removes a key from the session.
func (s *Session) Delete(key string) {
	delete(s.data, key)
	s.changed = true
}

// Regenerate moves the data to a fresh id. Call it when the privilege level
// changes (login) so a pre-login cookie cannot be reused.
func (s *Session) Regenerate() {
	if s.prevID == "" {
		s.prevID = s.id
	}
	s.id = newID()
	s.changed = true
}

// ID returns the session ID.
func (s *Session) ID() string { return s.id }

// Save persists the session and writes the cookie to the response. It is a
// no-op when nothing changed.
func (s *Session) Save(ctx context.Context, w http.ResponseWriter) error {
	if !s.changed {
		return nil
	}

	if s.prevID != "" {
		if err := s.store.Delete(ctx, s.prevID); err != nil {
			return fmt.Errorf("session: drop previous: %w", err)
		}
		s.prevID = ""
	}

	if err := s.store.Save(ctx, s.id, s.data, s.opts.TTL); err != nil {
		return fmt.Errorf("session: save: %w", err)
	}

	http.SetCookie(w, s.cookie(s.id, int(s.opts.TTL.Seconds())))
	s.changed = false
	return nil
}

// Destroy removes the session from the store and expires the cookie (logout).
func (s *Session) Destroy(ctx context.Context, w http.ResponseWriter) error {
	if err := s.store.Delete(ctx, s.id); err != nil {
		return fmt.Errorf("session: destroy: %w", err)
	}
	s.data = map[string]interface{}{}
	s.id = newID()
	s.changed = false
	http.SetCookie(w, s.cookie("", -1))
	return nil
}

func (s *Session) cookie(value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     s.opts.CookieName,
		Value:    value,
		Path:     s.opts.Path,
		MaxAge:   maxAge,
		HttpOnly: s.opts.HTTPOnly,
		Secure:   s.opts.Secure,
		SameSite: s.opts.SameSite,
	}
}

// ------------------- Middleware -------------------

// Middleware loads (or creates) the session for every request and injects it
// into the request context. An unknown cookie id is replaced, never adopted.
func Middleware(opts Options, store Store) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess := &Session{opts: opts, store: store}

			if cookie, err := r.Cookie(opts.CookieName); err == nil && cookie.Value != "" {
				data, found, err := store.Load(r.Context(), cookie.Value)
				if err != nil {
					sessionLog(r).Warn("session: load failed", "error", err)
				}
				if found {
					sess.id = cookie.Value
					sess.data = data
				}
			}
			if sess.id == "" {
				sess.id = newID()
				sess.data = map[string]interface{}{}
			}

			ctx := context.WithValue(r.Context(), ctxKey{}, sess)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// FromCtx retrieves the session from the request context. Outside the
// middleware it returns a detached session backed by a throwaway memory store.
func FromCtx(r *http.Request) *Session {
	if s, ok := r.Context().Value(ctxKey{}).(*Session); ok {
		return s
	}
	return &Session{id: newID(), data: map[string]interface{}{}, store: NewMemoryStore(), opts: DefaultOptions()}
}
