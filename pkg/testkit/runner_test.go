package testkit_test

import (
	"encoding/json"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/qrmenu/pkg/testkit"
)

// notesHandler is a tiny in-memory API used to exercise the runner.
func notesHandler() http.Handler {
	notes := map[string]string{}
	mux := http.NewServeMux()
	mux.HandleFunc("POST /notes", func(w http.ResponseWriter, r *http.Request) {
		var in struct{ Text string }
		_ = json.NewDecoder(r.Body).Decode(&in)
		notes["n-1"] = in.Text
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(map[string]any{"status": 201, "data": map[string]string{"id": "n-1", "text": in.Text}})
	})
	mux.HandleFunc("GET /notes/{id}", func(w http.ResponseWriter, r *http.Request) {
		text, ok := notes[r.PathValue("id")]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"status": 200, "data": map[string]string{"id": r.PathValue("id"), "text": text}})
	})
	mux.HandleFunc("POST /login", func(w http.ResponseWriter, r *http.Request) {
		http.SetCookie(w, &http.Cookie{Name: "sid", Value: "abc"})
	})
	mux.HandleFunc("POST /logout", func(w http.ResponseWriter, r *http.Request) {
		http.SetCookie(w, &http.Cookie{Name: "sid", Value: "", MaxAge: -1})
	})
	mux.HandleFunc("GET /me", func(w http.ResponseWriter, r *http.Request) {
		if ck, err := r.Cookie("sid"); err != nil || ck.Value != "abc" {
			w.WriteHeader(http.StatusUnauthorized)
		}
	})
	return mux
}

func TestRunDir(t *testing.T) {
	testkit.RunDir(t, notesHandler(), "testdata")
}

func TestClientKeepsCookies(t *testing.T) {
	c := testkit.NewClient(t, notesHandler())

	assert.Equal(t, http.StatusUnauthorized, c.Do(http.MethodGet, "/me", nil).Code)
	c.Do(http.MethodPost, "/login", nil)
	assert.Equal(t, http.StatusOK, c.Do(http.MethodGet, "/me", nil).Code)
	c.Do(http.MethodPost, "/logout", nil)
	assert.Equal(t, http.StatusUnauthorized, c.Do(http.MethodGet, "/me", nil).Code)
}

func TestResponseData(t *testing.T) {
	c := testkit.NewClient(t, notesHandler())
	res := c.Do(http.MethodPost, "/notes", map[string]string{"text": "Ayran"})
	require.Equal(t, http.StatusCreated, res.Code)

	var note struct{ ID, Text string }
	res.Data(&note)
	assert.Equal(t, "n-1", note.ID)
	assert.Equal(t, "Ayran", note.Text)
}

func TestLookup(t *testing.T) {
	var doc interface{}
	require.NoError(t, json.NewDecoder(strings.NewReader(
		`{"data":{"categories":[{"items":[{"name":"Köfte"},{"name":"Ayran"}]}]}}`,
	)).Decode(&doc))

	v, ok := testkit.Lookup(doc, "data.categories.0.items.1.name")
	assert.True(t, ok)
	assert.Equal(t, "Ayran", v)

	n, ok := testkit.Lookup(doc, "data.categories.0.items.#")
	assert.True(t, ok)
	assert.Equal(t, float64(2), n)

	_, ok = testkit.Lookup(doc, "data.categories.3")
	assert.False(t, ok)
}

func TestLoadScenarioValidates(t *testing.T) {
	s, err := testkit.LoadScenario("testdata/echo_flow.json")
	require.NoError(t, err)
	assert.Equal(t, "echo flow", s.Name)
	require.Len(t, s.Steps, 2)
	assert.Equal(t, http.MethodGet, s.Steps[1].RequestMethod)

	_, err = testkit.LoadScenario("testdata/missing.json")
	assert.Error(t, err)
}
