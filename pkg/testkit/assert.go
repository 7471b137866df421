package testkit

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Envelope is the decoded response body of every JSON endpoint.
type Envelope struct {
	Status  int               `json:"status"`
	Message string            `json:"message"`
	Data    json.RawMessage   `json:"data"`
	Errors  map[string]string `json:"errors"`
}

// DecodeEnvelope unmarshals body and fails the test if it is not an envelope.
func DecodeEnvelope(t testing.TB, body []byte) Envelope {
	t.Helper()
	var env Envelope
	require.NoError(t, json.Unmarshal(body, &env), "body: %s", body)
	return env
}

// AssertJSONBody deep-compares actual response bytes against expected after
// normalising both through JSON unmarshal, so key order and whitespace never
// matter.
func AssertJSONBody(t testing.TB, name string, expected, actual []byte) {
	t.Helper()
	if len(expected) == 0 {
		return
	}

	var expVal, actVal interface{}
	require.NoError(t, json.Unmarshal(expected, &expVal),
		"[%s] expected response file is not valid JSON", name)

	if !assert.NoError(t, json.Unmarshal(actual, &actVal),
		"[%s] actual response is not valid JSON\nbody: %s", name, string(actual)) {
		return
	}

	if !assert.Equal(t, expVal, actVal, "[%s] response body mismatch", name) {
		for _, d := range DiffJSON("", expVal, actVal) {
			t.Log(d)
		}
	}
}

// AssertPaths checks each dot path of expect against the decoded body.
func AssertPaths(t testing.TB, name string, expect map[string]interface{}, body []byte) {
	t.Helper()
	if len(expect) == 0 {
		return
	}

	var doc interface{}
	if !assert.NoError(t, json.Unmarshal(body, &doc), "[%s] response is not JSON: %s", name, body) {
		return
	}

	for path, want := range expect {
		got, ok := Lookup(doc, path)
		if !assert.True(t, ok, "[%s] path %q missing in %s", name, path, body) {
			continue
		}
		if want == AnyValue {
			assert.NotNil(t, got, "[%s] path %q is null", name, path)
			continue
		}
		assert.Equal(t, want, got, "[%s] path %q", name, path)
	}
}

// Lookup walks a decoded JSON document by a dot path such as
// "data.categories.0.items.1.name". Array elements are addressed by index,
// and "#" yields an array's length.
func Lookup(doc interface{}, path string) (interface{}, bool) {
	cur := doc
	for _, seg := range strings.Split(path, ".") {
		switch node := cur.(type) {
		case map[string]interface{}:
			v, ok := node[seg]
			if !ok {
				return nil, false
			}
			cur = v
		case []interface{}:
			if seg == "#" {
				cur = float64(len(node))
				continue
			}
			i, err := strconv.Atoi(seg)
			if err != nil || i < 0 || i >= len(node) {
				return nil, false
			}
			cur = node[i]
		default:
			return nil, false
		}
	}
	return cur, true
}

// DiffJSON returns human-readable differences between two decoded JSON values.
func DiffJSON(path string, expected, actual interface{}) []string {
	var diffs []string
	switch exp := expected.(type) {
	case map[string]interface{}:
		act, ok := actual.(map[string]interface{})
		if !ok {
			return append(diffs, fmt.Sprintf("  %s: expected object, got %T", keyPath(path), actual))
		}
		for k, ev := range exp {
			p := keyPath(path) + "." + k
			av, exists := act[k]
			if !exists {
				diffs = append(diffs, fmt.Sprintf("  %s: missing in actual", p))
				continue
			}
			diffs = append(diffs, DiffJSON(p, ev, av)...)
		}
	case []interface{}:
		act, ok := actual.([]interface{})
		if !ok {
			return append(diffs, fmt.Sprintf("  %s: expected array, got %T", keyPath(path), actual))
		}
		if len(exp) != len(act) {
			diffs = append(diffs, fmt.Sprintf("  %s: array length expected=%d actual=%d", keyPath(path), len(exp), len(act)))
		}
		for i := 0; i < len(exp) && i < len(act); i++ {
			diffs = append(diffs, DiffJSON(fmt.Sprintf("%s[%d]", keyPath(path), i), exp[i], act[i])...)
		}
	default:
		if fmt.Sprintf("%v", expected) != fmt.Sprintf("%v", actual) {
			diffs = append(diffs, fmt.Sprintf("  %s:\n    - %v\n    + %v", keyPath(path), expected, actual))
		}
	}
	return diffs
}

func keyPath(path string) string {
	if path == "" {
		return "root"
	}
	return strings.TrimPrefix(path, ".")
}
