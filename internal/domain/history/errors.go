package history

import (
	"errors"
	"fmt"

	"github.com/okian/gridelo/internal/domain/model"
)

// Sentinel kinds for history errors.
var (
	// ErrValidation matches every rejected match.
	ErrValidation = model.ErrValidation
	// ErrNonFinite is returned when a rating update would leave the table non-finite.
	ErrNonFinite = errors.New("non-finite rating")
)

// MatchError reports a match that was rejected before touching the table.
type MatchError struct {
	Match model.MatchRef
	Err   error
}

func (e *MatchError) Error() string {
	return fmt.Sprintf("match %s: %v", e.Match, e.Err)
}

// Unwrap returns the underlying error.
func (e *MatchError) Unwrap() error { return e.Err }
