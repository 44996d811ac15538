package criteria

import (
	"errors"
	"fmt"
)

// ErrInvalidValue marks parse errors caused by a structurally valid blob
// carrying an out-of-range or contradictory value.
var ErrInvalidValue = errors.New("invalid criteria value")

// ParseError describes a criteria blob that carried the marker but could
// not be decoded. Field names the malformed field when it is known.
type ParseError struct {
	Field string
	Err   error
}

func (e *ParseError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("parse criteria: field %s: %v", e.Field, e.Err)
	}
	return fmt.Sprintf("parse criteria: %v", e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

func invalidValue(field, detail string) error {
	return &ParseError{Field: field, Err: fmt.Errorf("%w: %s", ErrInvalidValue, detail)}
}
