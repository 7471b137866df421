package services

import (
	"strings"

	"github.com/shashiranjanraj/qrmenu/pkg/optional"
)

// nullableText maps an optional string onto a nullable column value: null
// and blank strings clear the column.
func nullableText(v optional.Value[string]) interface{} {
	s, ok := v.Get()
	if !ok || strings.TrimSpace(s) == "" {
		return nil
	}
	return strings.TrimSpace(s)
}

// textPtr trims s and returns nil for nil or blank input.
func textPtr(s *string) *string {
	if s == nil {
		return nil
	}
	t := strings.TrimSpace(*s)
	if t == "" {
		return nil
	}
	return &t
}
