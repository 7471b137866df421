// Package optional provides a JSON field type that remembers whether it was
// present in the request body and whether it was an explicit null.
//
// It backs partial-update payloads, where "absent" (leave unchanged) and
// "null" (clear the column) mean different things:
//
//	type UpdateItemInput struct {
//	    Description optional.Value[string] `json:"description" validate:"nullable,max=500"`
//	}
package optional

import (
	"bytes"
	"encoding/json"
)

// Value is a tri-state field: absent, null, or set.
type Value[T any] struct {
	value   T
	present bool
	null    bool
}

// Of returns a present, non-null Value.
func Of[T any](v T) Value[T] {
	return Value[T]{value: v, present: true}
}

// Null returns a present Value holding an explicit null.
func Null[T any]() Value[T] {
	return Value[T]{present: true, null: true}
}

// UnmarshalJSON is only invoked when the key exists in the payload, which is
// what records presence.
func (v *Value[T]) UnmarshalJSON(data []byte) error {
	v.present = true
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		v.null = true
		var zero T
		v.value = zero
		return nil
	}
	v.null = false
	return json.Unmarshal(data, &v.value)
}

func (v Value[T]) MarshalJSON() ([]byte, error) {
	if !v.present || v.null {
		return []byte("null"), nil
	}
	return json.Marshal(v.value)
}

// IsSet reports whether the key appeared in the payload (null included).
func (v Value[T]) IsSet() bool { return v.present }

// IsNull reports whether the key was an explicit null.
func (v Value[T]) IsNull() bool { return v.present && v.null }

// Get returns the value and whether it holds a non-null value.
func (v Value[T]) Get() (T, bool) { return v.value, v.present && !v.null }

// Interface exposes the wrapped value to reflection-based validators.
func (v Value[T]) Interface() any { return v.value }

// Ptr returns nil for null, a pointer to the value otherwise. Use only after
// checking IsSet.
func (v Value[T]) Ptr() *T {
	if v.null {
		return nil
	}
	out := v.value
	return &out
}
