// Package response writes the JSON envelope shared by every endpoint:
//
//	{"status":200,"message":"...","data":...,"errors":{...}}
package response

import (
	"encoding/json"
	"net/http"

	"github.com/shashiranjanraj/qrmenu/pkg/apperr"
	"github.com/shashiranjanraj/qrmenu/pkg/logger"
)

// Envelope is the body of every JSON response.
type Envelope struct {
	Status  int         `json:"status"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Errors  interface{} `json:"errors,omitempty"`
}

// Write encodes body with the given status.
func Write(w http.ResponseWriter, status int, body Envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body) //nolint:errcheck
}

// Success sends a 200 JSON response with data.
func Success(w http.ResponseWriter, data interface{}) {
	Write(w, http.StatusOK, Envelope{Status: http.StatusOK, Data: data})
}

// Created sends a 201 JSON response with data.
func Created(w http.ResponseWriter, data interface{}) {
	Write(w, http.StatusCreated, Envelope{Status: http.StatusCreated, Data: data})
}

// Error sends a JSON error response.
func Error(w http.ResponseWriter, status int, message string) {
	Write(w, status, Envelope{Status: status, Message: message})
}

// Fail maps err through apperr and writes the matching response. Internal
// causes are logged with the request-scoped logger and never echoed back.
// It returns the status written.
func Fail(w http.ResponseWriter, r *http.Request, err error) int {
	e := apperr.From(err)
	status := e.Kind.Status()

	if e.Kind == apperr.KindInternal {
		logger.WithCtx(r.Context()).Error("request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"error", err,
		)
	}

	body := Envelope{Status: status, Message: e.Message}
	if len(e.Fields) > 0 {
		body.Errors = e.Fields
	}
	Write(w, status, body)
	return status
}

// Unauthorized sends a 401.
func Unauthorized(w http.ResponseWriter) {
	Error(w, http.StatusUnauthorized, "Unauthorized")
}

// NotFound sends a 404.
func NotFound(w http.ResponseWriter) {
	Error(w, http.StatusNotFound, "Not found")
}
