package rating

import (
	"context"
	"sync"

	"github.com/okian/gridelo/internal/domain/model"
)

// EventKind classifies a diagnostic Event.
type EventKind string

// Event kinds.
const (
	KindGame         EventKind = "game"              // Raw is the uncapped delta, Value the applied one
	KindRegression   EventKind = "regression"        // Raw is the pre-regression rating, Value the regressed one
	KindClamp        EventKind = "probability_clamp" // Raw is the logit difference, Value the clamped one
	KindCap          EventKind = "swing_cap"         // Raw is the uncapped delta, Value the capped one
	KindValidation   EventKind = "validation"
	KindLookupMiss   EventKind = "lookup_miss"
	KindDuplicate    EventKind = "duplicate_update"
	KindDegenerate   EventKind = "degenerate_feature"
	KindZeroIdentity EventKind = "zero_identity_denominator"
)

// Event is a structured diagnostic. Events are data, never errors.
type Event struct {
	Kind       EventKind
	RunID      string
	Ref        model.MatchRef
	Competitor string
	Opponent   string
	Raw        float64
	Value      float64
	Detail     string
	Err        error
}

// Observer receives diagnostics in emission order.
type Observer interface {
	Observe(ctx context.Context, ev Event)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(ctx context.Context, ev Event)

// Observe calls f.
func (f ObserverFunc) Observe(ctx context.Context, ev Event) { f(ctx, ev) }

// Nop discards every event.
var Nop Observer = ObserverFunc(func(context.Context, Event) {})

// MultiObserver fans events out in order.
type MultiObserver []Observer

// Observe forwards ev to every non-nil observer.
func (m MultiObserver) Observe(ctx context.Context, ev Event) {
	for _, o := range m {
		if o != nil {
			o.Observe(ctx, ev)
		}
	}
}

// Recorder keeps every event it observes. Safe for concurrent use.
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

// Observe appends ev.
func (r *Recorder) Observe(_ context.Context, ev Event) {
	r.mu.Lock()
	r.events = append(r.events, ev)
	r.mu.Unlock()
}

// Events returns a copy of the recorded events.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Event, len(r.events))
	copy(out, r.events)
	return out
}

// Count returns how many events of kind were recorded.
func (r *Recorder) Count(kind EventKind) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, ev := range r.events {
		if ev.Kind == kind {
			n++
		}
	}
	return n
}
