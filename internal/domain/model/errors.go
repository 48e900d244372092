package model

import (
	"errors"
	"fmt"
)

// ErrValidation is the kind shared by every ValidationError.
var ErrValidation = errors.New("validation failed")

// ValidationError reports a malformed or missing input field.
type ValidationError struct {
	Field  string
	Reason string
	Ref    MatchRef
}

func (e *ValidationError) Error() string {
	if e.Ref.IsZero() {
		return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
	}
	return fmt.Sprintf("invalid %s (%s): %s", e.Field, e.Ref, e.Reason)
}

// Unwrap makes errors.Is(err, ErrValidation) hold.
func (e *ValidationError) Unwrap() error { return ErrValidation }
