package reqid_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/shashiranjanraj/qrmenu/pkg/reqid"
)

func run(header string) (ctxID string, rec *httptest.ResponseRecorder) {
	h := reqid.Middleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctxID = reqid.FromCtx(r.Context())
	}))
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if header != "" {
		req.Header.Set(reqid.Header, header)
	}
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return ctxID, rec
}

func TestGeneratesUUID(t *testing.T) {
	id, rec := run("")
	_, err := uuid.Parse(id)
	assert.NoError(t, err)
	assert.Equal(t, id, rec.Header().Get(reqid.Header))
}

func TestReusesUpstreamID(t *testing.T) {
	id, _ := run("gateway-123")
	assert.Equal(t, "gateway-123", id)
}

func TestRejectsOversizedOrControlIDs(t *testing.T) {
	id, _ := run(strings.Repeat("a", 200))
	assert.NotEqual(t, strings.Repeat("a", 200), id)

	id, _ = run("bad id\twith spaces")
	assert.NotContains(t, id, " ")
}
