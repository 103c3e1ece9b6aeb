package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidNumericField is returned when a numeric form field fails coercion
	ErrInvalidNumericField = errors.New("invalid numeric field")
	// ErrMalformedScenario is returned when a scenario transport string cannot be decoded
	ErrMalformedScenario = errors.New("malformed scenario")
	// ErrDanglingEdgeReference is returned when an edge endpoint does not resolve to a node
	ErrDanglingEdgeReference = errors.New("dangling edge reference")
	// ErrUnknownRole is returned by strict role parsing
	ErrUnknownRole = errors.New("unknown role")
	// ErrInvalidRequest is returned when a bulk or API request fails validation
	ErrInvalidRequest = errors.New("invalid request")

	ErrNotFound      = errors.New("not found")
	ErrDuplicateNode = errors.New("duplicate node")
	ErrDuplicateEdge = errors.New("duplicate edge")
)

// FieldError ties a validation failure to the form field that caused it
type FieldError struct {
	Field string
	Value string
	Err   error
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s %q: %v", e.Field, e.Value, e.Err)
}

func (e *FieldError) Unwrap() error {
	return e.Err
}
