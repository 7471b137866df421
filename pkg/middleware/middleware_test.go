package middleware_test

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/qrmenu/config"
	"github.com/shashiranjanraj/qrmenu/pkg/auth"
	"github.com/shashiranjanraj/qrmenu/pkg/logger"
	"github.com/shashiranjanraj/qrmenu/pkg/middleware"
	"github.com/shashiranjanraj/qrmenu/pkg/reqid"
	"github.com/shashiranjanraj/qrmenu/pkg/session"
)

func whoami(w http.ResponseWriter, r *http.Request) {
	id, _ := auth.UserID(r.Context())
	w.Write([]byte(id)) //nolint:errcheck
}

func TestRequireRejectsAnonymous(t *testing.T) {
	h := session.Middleware(session.DefaultOptions(), session.NewMemoryStore())(middleware.Require(http.HandlerFunc(whoami)))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/restaurants", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"status":401,"message":"Unauthorized"}`, rec.Body.String())
}

func TestRequireAcceptsBearer(t *testing.T) {
	config.Set("APP_KEY", "mw-test")
	t.Cleanup(func() { config.Unset("APP_KEY") })

	tok, err := auth.GenerateToken("u-7", "u7@example.com")
	require.NoError(t, err)

	h := session.Middleware(session.DefaultOptions(), session.NewMemoryStore())(middleware.Require(http.HandlerFunc(whoami)))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "u-7", rec.Body.String())

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer garbage")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireAcceptsSession(t *testing.T) {
	store := session.NewMemoryStore()
	opts := session.DefaultOptions()

	mux := http.NewServeMux()
	mux.HandleFunc("/login", func(w http.ResponseWriter, r *http.Request) {
		s := session.FromCtx(r)
		s.Set(session.UserIDKey, "u-3")
		require.NoError(t, s.Save(r.Context(), w))
	})
	mux.Handle("/me", middleware.Require(http.HandlerFunc(whoami)))
	h := session.Middleware(opts, store)(mux)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/login", nil))
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.AddCookie(cookies[0])
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, "u-3", rec.Body.String())
}

func TestRecoveryReturnsGenericMessage(t *testing.T) {
	h := middleware.Recovery(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("nil map write")
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"status":500,"message":"Something went wrong"}`, rec.Body.String())
}

func TestLoggerTagsRequestAndUser(t *testing.T) {
	var buf bytes.Buffer
	saved := logger.L
	logger.L = slog.New(slog.NewJSONHandler(&buf, nil))
	t.Cleanup(func() { logger.L = saved })

	config.Set("APP_KEY", "mw-test")
	t.Cleanup(func() { config.Unset("APP_KEY") })
	tok, err := auth.GenerateToken("u-5", "u5@example.com")
	require.NoError(t, err)

	h := reqid.Middleware()(middleware.Logger(
		session.Middleware(session.DefaultOptions(), session.NewMemoryStore())(
			middleware.Require(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				logger.WithCtx(r.Context()).Info("inside handler")
			})))))

	req := httptest.NewRequest(http.MethodGet, "/api/dashboard", nil)
	req.Header.Set(reqid.Header, "rid-1")
	req.Header.Set("Authorization", "Bearer "+tok)
	h.ServeHTTP(httptest.NewRecorder(), req)

	out := buf.String()
	assert.Contains(t, out, `"msg":"inside handler"`)
	assert.Contains(t, out, `"msg":"request"`)
	assert.Contains(t, out, `"request_id":"rid-1"`)
	assert.Contains(t, out, `"user_id":"u-5"`)
}

func TestRateLimit(t *testing.T) {
	l := middleware.NewLimiter(2, time.Minute)
	t.Cleanup(l.Stop)
	h := l.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "203.0.113.9:5555"
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		codes = append(codes, rec.Code)
	}
	assert.Equal(t, []int{200, 200, 429}, codes)

	other := httptest.NewRequest(http.MethodGet, "/", nil)
	other.RemoteAddr = "203.0.113.10:5555"
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, other)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestCORSPreflight(t *testing.T) {
	h := middleware.CORS([]string{"https://panel.example.com"})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	req := httptest.NewRequest(http.MethodOptions, "/api/restaurants", nil)
	req.Header.Set("Origin", "https://panel.example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPatch)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, "https://panel.example.com", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", rec.Header().Get("Access-Control-Allow-Credentials"))

	req.Header.Set("Origin", "https://evil.example.com")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}
