package composite

import (
	"errors"
	"fmt"

	"github.com/okian/gridelo/internal/domain/model"
)

// Sentinel kinds for composite errors.
var (
	ErrDegenerateFeature = errors.New("feature has zero variance")
	ErrMissingFeature    = fmt.Errorf("%w: missing feature", model.ErrValidation)
	ErrInvalidParams     = errors.New("invalid composite parameters")
)

// FeatureError reports a problem with one feature, optionally for a single
// competitor.
type FeatureError struct {
	Feature    string
	Competitor string
	Err        error
}

func (e *FeatureError) Error() string {
	if e.Competitor == "" {
		return fmt.Sprintf("feature %s: %v", e.Feature, e.Err)
	}
	return fmt.Sprintf("feature %s for %s: %v", e.Feature, e.Competitor, e.Err)
}

// Unwrap returns the underlying error.
func (e *FeatureError) Unwrap() error { return e.Err }
