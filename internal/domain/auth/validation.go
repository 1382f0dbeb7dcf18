package auth

import (
	"fmt"
	"sort"
	"strings"
)

// ValidationError carries per-field messages for rejected input.
type ValidationError struct {
	Fields map[string][]string
}

// NewValidationError returns an empty error ready for Add.
func NewValidationError() *ValidationError {
	return &ValidationError{Fields: make(map[string][]string)}
}

// FieldError is a shorthand for a single-field validation error.
func FieldError(field, message string) *ValidationError {
	v := NewValidationError()
	v.Add(field, message)
	return v
}

// Add appends a message for field.
func (e *ValidationError) Add(field, message string) {
	if e.Fields == nil {
		e.Fields = make(map[string][]string)
	}
	e.Fields[field] = append(e.Fields[field], message)
}

// Has reports whether field already has at least one message.
func (e *ValidationError) Has(field string) bool {
	return len(e.Fields[field]) > 0
}

// Empty reports whether no messages were recorded.
func (e *ValidationError) Empty() bool {
	return e == nil || len(e.Fields) == 0
}

// Error returns the first message in field order, followed by a count of the rest.
func (e *ValidationError) Error() string {
	if e.Empty() {
		return "validation failed"
	}

	keys := make([]string, 0, len(e.Fields))
	total := 0
	for k, msgs := range e.Fields {
		keys = append(keys, k)
		total += len(msgs)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString(e.Fields[keys[0]][0])
	switch rest := total - 1; {
	case rest == 1:
		b.WriteString(" (and 1 more error)")
	case rest > 1:
		fmt.Fprintf(&b, " (and %d more errors)", rest)
	}
	return b.String()
}
