package service

import (
	"errors"
	"fmt"
)

// Sentinel kinds for service errors.
var (
	// ErrLookup marks a missing row where one is required. Batch operations
	// skip the affected matchup and report it instead of failing.
	ErrLookup = errors.New("lookup failed")
	// ErrNotConfigured is returned when an operation needs a collaborator
	// that was not supplied.
	ErrNotConfigured = errors.New("collaborator not configured")
)

// LookupError names the missing row.
type LookupError struct {
	What       string // "rating", "composite score", "prediction"
	Period     int
	SubPeriod  int
	Competitor string
}

func (e *LookupError) Error() string {
	return fmt.Sprintf("no %s for %s in %d/%d", e.What, e.Competitor, e.Period, e.SubPeriod)
}

// Unwrap makes errors.Is(err, ErrLookup) hold.
func (e *LookupError) Unwrap() error { return ErrLookup }
