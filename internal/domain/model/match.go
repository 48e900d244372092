// Package model contains domain models passed between layers.
package model

import (
	"fmt"
	"sort"
	"strings"
)

// Match is one completed game. Home and away roles are explicit; the engine
// never infers them from row positions.
type Match struct {
	ID        string // unique game identifier, e.g. "2024-3-7"
	Period    int    // season year
	SubPeriod int    // week within the season
	Date      string // as supplied by the source, informational only
	Home      string // canonical home competitor name
	Away      string // canonical away competitor name
	HomeScore int
	AwayScore int
}

// Ref returns the diagnostic context of the match.
func (m Match) Ref() MatchRef {
	return MatchRef{ID: m.ID, Period: m.Period, SubPeriod: m.SubPeriod, Home: m.Home, Away: m.Away}
}

// Validate checks the fields the rating engine depends on.
func (m Match) Validate() error {
	ref := m.Ref()
	switch {
	case strings.TrimSpace(m.Home) == "":
		return &ValidationError{Field: "home", Reason: "missing competitor", Ref: ref}
	case strings.TrimSpace(m.Away) == "":
		return &ValidationError{Field: "away", Reason: "missing competitor", Ref: ref}
	case m.Home == m.Away:
		return &ValidationError{Field: "away", Reason: "competitor cannot play itself", Ref: ref}
	case m.HomeScore < 0:
		return &ValidationError{Field: "home_score", Reason: "negative score", Ref: ref}
	case m.AwayScore < 0:
		return &ValidationError{Field: "away_score", Reason: "negative score", Ref: ref}
	case m.Period <= 0:
		return &ValidationError{Field: "period", Reason: "period must be positive", Ref: ref}
	case m.SubPeriod < 0:
		return &ValidationError{Field: "sub_period", Reason: "sub-period must not be negative", Ref: ref}
	}
	return nil
}

// MatchRef identifies a match in diagnostics.
type MatchRef struct {
	ID        string
	Period    int
	SubPeriod int
	Home      string
	Away      string
}

// IsZero reports whether r carries nothing to identify a match by.
func (r MatchRef) IsZero() bool { return r == MatchRef{} }

// String renders the known parts of r, skipping the empty ones.
func (r MatchRef) String() string {
	var parts []string
	if r.ID != "" {
		parts = append(parts, r.ID)
	}
	if r.Period != 0 || r.SubPeriod != 0 {
		parts = append(parts, fmt.Sprintf("%d W%d", r.Period, r.SubPeriod))
	}
	if r.Home != "" || r.Away != "" {
		parts = append(parts, r.Home+" vs "+r.Away)
	}
	return strings.Join(parts, " ")
}

// SortMatches orders matches by (period, sub-period, identifier). The rating
// engine is path dependent, so this order is part of its contract.
func SortMatches(ms []Match) {
	sort.SliceStable(ms, func(i, j int) bool {
		a, b := ms[i], ms[j]
		if a.Period != b.Period {
			return a.Period < b.Period
		}
		if a.SubPeriod != b.SubPeriod {
			return a.SubPeriod < b.SubPeriod
		}
		return a.ID < b.ID
	})
}

// Fixture is an upcoming, unplayed match.
type Fixture struct {
	Period    int
	SubPeriod int
	Date      string
	Home      string
	Away      string
}
