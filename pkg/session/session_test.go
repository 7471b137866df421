package session

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testOptions() Options {
	return Options{CookieName: "sid", TTL: time.Hour, HTTPOnly: true, Path: "/"}
}

// loginHandler stores a user id; whoami echoes it back.
func newTestMux(store Store) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/login", func(w http.ResponseWriter, r *http.Request) {
		s := FromCtx(r)
		s.Regenerate()
		s.Set(UserIDKey, "u-1")
		if err := s.Save(r.Context(), w); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
	})
	mux.HandleFunc("/whoami", func(w http.ResponseWriter, r *http.Request) {
		id, _ := FromCtx(r).GetString(UserIDKey)
		w.Write([]byte(id)) //nolint:errcheck
	})
	mux.HandleFunc("/logout", func(w http.ResponseWriter, r *http.Request) {
		if err := FromCtx(r).Destroy(r.Context(), w); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
	})
	return Middleware(testOptions(), store)(mux)
}

func do(h http.Handler, path string, cookie *http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if cookie != nil {
		req.AddCookie(cookie)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func sessionCookie(t *testing.T, rec *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range rec.Result().Cookies() {
		if c.Name == "sid" {
			return c
		}
	}
	t.Fatal("no session cookie set")
	return nil
}

func TestLoginPersistsAcrossRequests(t *testing.T) {
	h := newTestMux(NewMemoryStore())

	ck := sessionCookie(t, do(h, "/login", nil))
	assert.True(t, ck.HttpOnly)
	assert.Equal(t, 3600, ck.MaxAge)

	assert.Equal(t, "u-1", do(h, "/whoami", ck).Body.String())
}

func TestUnknownCookieIsNotAdopted(t *testing.T) {
	store := NewMemoryStore()
	h := newTestMux(store)

	rec := do(h, "/login", &http.Cookie{Name: "sid", Value: "attacker-chosen"})
	ck := sessionCookie(t, rec)
	assert.NotEqual(t, "attacker-chosen", ck.Value)

	_, found, err := store.Load(context.Background(), "attacker-chosen")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestRegenerateDropsPreviousID(t *testing.T) {
	store := NewMemoryStore()
	h := newTestMux(store)

	first := sessionCookie(t, do(h, "/login", nil))
	second := sessionCookie(t, do(h, "/login", first))
	assert.NotEqual(t, first.Value, second.Value)

	assert.Empty(t, do(h, "/whoami", first).Body.String())
	assert.Equal(t, "u-1", do(h, "/whoami", second).Body.String())
}

func TestDestroyExpiresCookie(t *testing.T) {
	h := newTestMux(NewMemoryStore())
	ck := sessionCookie(t, do(h, "/login", nil))

	out := sessionCookie(t, do(h, "/logout", ck))
	assert.Equal(t, -1, out.MaxAge)
	assert.Empty(t, do(h, "/whoami", ck).Body.String())
}

func TestMemoryStoreExpiry(t *testing.T) {
	store := NewMemoryStore()
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }

	ctx := context.Background()
	require.NoError(t, store.Save(ctx, "abc", map[string]interface{}{UserIDKey: "u-1"}, time.Minute))

	data, found, err := store.Load(ctx, "abc")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "u-1", data[UserIDKey])

	now = now.Add(time.Minute)
	_, found, _ = store.Load(ctx, "abc")
	assert.False(t, found)
}

func TestDialUnreachableRedis(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	_, err := Dial(ctx, "127.0.0.1:1", "")
	assert.Error(t, err)
}
