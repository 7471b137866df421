// Package testkit drives REST API tests from JSON scenario files.
//
// A scenario is an ordered list of steps run against one http.Handler with a
// shared cookie jar, so a flow can register, log in and then act as that
// user. Values captured from one response are substituted into later steps
// as {{name}}:
//
//	{
//	  "name": "owner creates a restaurant",
//	  "steps": [
//	    {"requestMethod": "POST", "requestUrl": "/api/auth/register",
//	     "requestBody": {"name": "Ayşe", "email": "ayse@example.com", "password": "secret1"},
//	     "expectedCode": 201},
//	    {"requestMethod": "POST", "requestUrl": "/api/restaurants",
//	     "requestBody": {"name": "Cafe Milano"},
//	     "expectedCode": 201,
//	     "expect": {"data.slug": "cafe-milano"},
//	     "capture": {"restaurantId": "data.id"}},
//	    {"requestUrl": "/api/restaurants/{{restaurantId}}", "expectedCode": 200}
//	  ]
//	}
//
// Scenario files live in testdata/ next to the *_test.go that runs them:
//
//	func TestAPI(t *testing.T) {
//	    testkit.RunDir(t, newTestKernel(t).Handler(), "testdata")
//	}
package testkit

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// AnyValue in an expect map asserts only that the path exists and is not null.
const AnyValue = "<any>"

// Scenario describes one flow loaded from a JSON file.
type Scenario struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Steps       []Step `json:"steps"`

	// resolved at load time, not in JSON
	dir string
}

// Step is a single request and its assertions.
type Step struct {
	Name string `json:"name"`

	RequestMethod   string            `json:"requestMethod"` // defaults to GET
	RequestURL      string            `json:"requestUrl"`
	RequestBody     json.RawMessage   `json:"requestBody"`     // inline JSON body
	RequestFileName string            `json:"requestFileName"` // or a body file relative to the scenario
	Headers         map[string]string `json:"headers"`

	ExpectedCode     int                    `json:"expectedCode"`
	ResponseFileName string                 `json:"responseFileName"` // full-body JSON comparison
	Expect           map[string]interface{} `json:"expect"`           // dot path → expected value
	Capture          map[string]string      `json:"capture"`          // variable → dot path
}

// LoadScenario reads and validates a scenario from a JSON file.
func LoadScenario(path string) (*Scenario, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("testkit: resolve path %q: %w", path, err)
	}

	data, err := os.ReadFile(abs)
	if err != nil {
		return nil, fmt.Errorf("testkit: read %q: %w", abs, err)
	}

	var s Scenario
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("testkit: parse %q: %w", abs, err)
	}

	if err := s.validate(); err != nil {
		return nil, fmt.Errorf("testkit: invalid scenario %q: %w", abs, err)
	}

	s.dir = filepath.Dir(abs)
	return &s, nil
}

func (s *Scenario) validate() error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if len(s.Steps) == 0 {
		return fmt.Errorf("at least one step is required")
	}
	for i := range s.Steps {
		st := &s.Steps[i]
		if st.RequestURL == "" {
			return fmt.Errorf("steps[%d].requestUrl is required", i)
		}
		if st.ExpectedCode == 0 {
			return fmt.Errorf("steps[%d].expectedCode is required", i)
		}
		if st.RequestMethod == "" {
			st.RequestMethod = "GET"
		}
		st.RequestMethod = strings.ToUpper(st.RequestMethod)
		if st.Name == "" {
			st.Name = fmt.Sprintf("%02d %s %s", i+1, st.RequestMethod, st.RequestURL)
		}
	}
	return nil
}

// resolve returns p relative to the scenario directory.
func (s *Scenario) resolve(p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(s.dir, p)
}

// LoadAllFromDir loads every *.json file in dir as a Scenario. Files that
// fail to parse are collected as errors.
func LoadAllFromDir(dir string) ([]*Scenario, []error) {
	entries, err := filepath.Glob(filepath.Join(dir, "*.json"))
	if err != nil || len(entries) == 0 {
		return nil, []error{fmt.Errorf("testkit: no scenario files found in %q", dir)}
	}

	var (
		scenarios []*Scenario
		errs      []error
	)
	for _, path := range entries {
		s, err := LoadScenario(path)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		scenarios = append(scenarios, s)
	}
	return scenarios, errs
}
