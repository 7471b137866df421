// Package bind decodes and validates an HTTP request body into a struct.
package bind

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/shashiranjanraj/qrmenu/config"
	"github.com/shashiranjanraj/qrmenu/pkg/apperr"
	"github.com/shashiranjanraj/qrmenu/pkg/validate"
)

const defaultMaxBody = 1 << 20

func maxBodyBytes() int64 {
	return config.Int64("MAX_BODY_BYTES", defaultMaxBody)
}

// JSON decodes r.Body as JSON into dest and runs validation.
// The body is capped at MAX_BODY_BYTES (default 1 MB).
//
// Every failure is an *apperr.Error of KindValidation. For rule violations the
// message is the first failing field's message and Fields holds all of them.
func JSON(r *http.Request, dest interface{}) error {
	r.Body = http.MaxBytesReader(nil, r.Body, maxBodyBytes())

	if err := json.NewDecoder(r.Body).Decode(dest); err != nil {
		var maxErr *http.MaxBytesError
		switch {
		case errors.As(err, &maxErr):
			return apperr.Validation(fmt.Sprintf("Request body too large (max %d bytes)", maxErr.Limit), nil)
		case errors.Is(err, io.EOF):
			return apperr.Validation("Request body is empty", nil)
		default:
			return apperr.Validation("Invalid JSON body", nil)
		}
	}

	return Validate(dest)
}

// Validate runs the struct-tag rules on an already-populated value.
func Validate(v interface{}) error {
	errs := validate.Check(v)
	if len(errs) == 0 {
		return nil
	}
	fields := make(map[string]string, len(errs))
	for _, fe := range errs {
		fields[fe.Field] = fe.Message
	}
	return apperr.Validation(errs[0].Message, fields)
}
