package dedupe

import (
	"errors"
	"fmt"
)

// ErrDuplicateUpdate is returned when a completion was already applied.
var ErrDuplicateUpdate = errors.New("result already applied")

// DuplicateUpdateError names the rejected completion.
type DuplicateUpdateError struct {
	Key Key
}

func (e *DuplicateUpdateError) Error() string {
	return fmt.Sprintf("%s: %v", e.Key, ErrDuplicateUpdate)
}

// Unwrap makes errors.Is(err, ErrDuplicateUpdate) hold.
func (e *DuplicateUpdateError) Unwrap() error { return ErrDuplicateUpdate }
