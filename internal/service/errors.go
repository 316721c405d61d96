package service

import (
	"errors"
	"sort"
	"strings"
)

// ErrForbidden is returned when a user tries to modify another user's resource.
var ErrForbidden = errors.New("forbidden")

// ErrUnauthenticated is returned when an operation needs a signed-in user and
// the context carries none. Callers wrap it with the operation, e.g.
// "user must be authenticated to create a session".
var ErrUnauthenticated = errors.New("user must be authenticated")

// ValidationError carries one message per invalid field, keyed by the field's
// JSON name.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	msgs := make([]string, 0, len(keys))
	for _, k := range keys {
		msgs = append(msgs, e.Fields[k])
	}
	return strings.Join(msgs, "; ")
}

// Field returns the message for a field, or "" when the field is valid.
func (e *ValidationError) Field(name string) string {
	if e == nil {
		return ""
	}
	return e.Fields[name]
}

func newValidationError(field, msg string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: msg}}
}
