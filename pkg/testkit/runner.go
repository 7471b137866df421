package testkit

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ─── Client ───────────────────────────────────────────────────────────────────

// Client fires requests at a handler through httptest and keeps cookies
// between calls, like a browser session.
type Client struct {
	t       testing.TB
	handler http.Handler
	cookies map[string]*http.Cookie

	// Header is added to every request.
	Header http.Header
}

// NewClient returns a Client with an empty cookie jar.
func NewClient(t testing.TB, handler http.Handler) *Client {
	return &Client{
		t:       t,
		handler: handler,
		cookies: make(map[string]*http.Cookie),
		Header:  make(http.Header),
	}
}

// Response is a recorded response.
type Response struct {
	t      testing.TB
	Code   int
	Header http.Header
	Body   []byte
}

// Do sends a request. body may be nil, []byte, string, an io.Reader, or any
// value to be JSON-encoded.
func (c *Client) Do(method, target string, body interface{}) *Response {
	c.t.Helper()

	var r io.Reader
	switch b := body.(type) {
	case nil:
	case []byte:
		r = bytes.NewReader(b)
	case string:
		r = strings.NewReader(b)
	case io.Reader:
		r = b
	default:
		raw, err := json.Marshal(b)
		require.NoError(c.t, err)
		r = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, target, r)
	if r != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.Send(req)
}

// Send fires a prepared request, adding the jar's cookies and default headers.
func (c *Client) Send(req *http.Request) *Response {
	c.t.Helper()

	for k, vs := range c.Header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	for _, ck := range c.cookies {
		req.AddCookie(ck)
	}

	rec := httptest.NewRecorder()
	c.handler.ServeHTTP(rec, req)
	res := rec.Result()
	defer res.Body.Close()

	for _, ck := range res.Cookies() {
		if ck.MaxAge < 0 || ck.Value == "" {
			delete(c.cookies, ck.Name)
			continue
		}
		c.cookies[ck.Name] = &http.Cookie{Name: ck.Name, Value: ck.Value}
	}

	body, err := io.ReadAll(res.Body)
	require.NoError(c.t, err)
	return &Response{t: c.t, Code: res.StatusCode, Header: res.Header, Body: body}
}

// ClearCookies empties the jar.
func (c *Client) ClearCookies() {
	c.cookies = make(map[string]*http.Cookie)
}

// Envelope decodes the response as the standard JSON envelope.
func (r *Response) Envelope() Envelope {
	r.t.Helper()
	return DecodeEnvelope(r.t, r.Body)
}

// Data decodes the envelope's data field into v.
func (r *Response) Data(v interface{}) {
	r.t.Helper()
	env := r.Envelope()
	require.NoError(r.t, json.Unmarshal(env.Data, v), "data: %s", env.Data)
}

// ─── Scenario runner ──────────────────────────────────────────────────────────

// Run executes the scenario in the JSON file at path against handler.
func Run(t *testing.T, handler http.Handler, path string) {
	t.Helper()

	s, err := LoadScenario(path)
	if err != nil {
		t.Fatalf("testkit: load scenario %q: %v", path, err)
	}

	t.Run(s.Name, func(t *testing.T) {
		RunScenario(t, handler, s)
	})
}

// RunDir runs every *.json scenario in dir as a subtest. Each scenario gets a
// fresh cookie jar; the handler (and its database) is shared.
func RunDir(t *testing.T, handler http.Handler, dir string) {
	t.Helper()

	scenarios, errs := LoadAllFromDir(dir)
	for _, err := range errs {
		t.Error(err)
	}
	for _, s := range scenarios {
		t.Run(s.Name, func(t *testing.T) {
			RunScenario(t, handler, s)
		})
	}
}

// RunScenario executes the steps of s in order, stopping at the first step
// whose status code does not match.
func RunScenario(t *testing.T, handler http.Handler, s *Scenario) {
	t.Helper()

	client := NewClient(t, handler)
	vars := map[string]string{}

	for i := range s.Steps {
		st := s.Steps[i]

		body, err := stepBody(s, st)
		require.NoError(t, err, "[%s] request body", st.Name)

		req := httptest.NewRequest(st.RequestMethod, expand(st.RequestURL, vars), bytes.NewReader([]byte(expand(string(body), vars))))
		if len(body) > 0 {
			req.Header.Set("Content-Type", "application/json")
		}
		for k, v := range st.Headers {
			req.Header.Set(k, expand(v, vars))
		}

		res := client.Send(req)

		if !assert.Equal(t, st.ExpectedCode, res.Code, "[%s] HTTP status code mismatch\nbody: %s", st.Name, res.Body) {
			return
		}

		if p := s.resolve(st.ResponseFileName); p != "" {
			expected, err := os.ReadFile(p)
			require.NoError(t, err, "[%s] read response file", st.Name)
			AssertJSONBody(t, st.Name, expected, res.Body)
		}
		AssertPaths(t, st.Name, expandExpect(st.Expect, vars), res.Body)

		if len(st.Capture) > 0 {
			var doc interface{}
			require.NoError(t, json.Unmarshal(res.Body, &doc), "[%s] capture from non-JSON body", st.Name)
			for name, path := range st.Capture {
				v, ok := Lookup(doc, path)
				require.True(t, ok, "[%s] capture %q: path %q missing", st.Name, name, path)
				vars[name] = scalar(v)
			}
		}
	}
}

func stepBody(s *Scenario, st Step) ([]byte, error) {
	if len(st.RequestBody) > 0 {
		return st.RequestBody, nil
	}
	if p := s.resolve(st.RequestFileName); p != "" {
		return os.ReadFile(filepath.Clean(p))
	}
	return nil, nil
}

func expand(s string, vars map[string]string) string {
	for k, v := range vars {
		s = strings.ReplaceAll(s, "{{"+k+"}}", v)
	}
	return s
}

func expandExpect(expect map[string]interface{}, vars map[string]string) map[string]interface{} {
	if len(expect) == 0 || len(vars) == 0 {
		return expect
	}
	out := make(map[string]interface{}, len(expect))
	for k, v := range expect {
		if str, ok := v.(string); ok {
			v = expand(str, vars)
		}
		out[k] = v
	}
	return out
}

func scalar(v interface{}) string {
	switch x := v.(type) {
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case nil:
		return ""
	default:
		return fmt.Sprint(x)
	}
}
