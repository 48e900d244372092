// Package dedupe guards result completion so a rating change is applied at
// most once per (period, sub-period, competitor, event type).
package dedupe

import (
	"context"
	"fmt"
	"sync"

	"github.com/okian/gridelo/internal/domain/model"
)

// Key identifies one completion.
type Key struct {
	Period     int
	SubPeriod  int
	Competitor string
	Type       model.ProjectionType
}

// GameKey returns the completion key of a competitor's game in a sub-period.
func GameKey(period, subPeriod int, competitor string) Key {
	return Key{Period: period, SubPeriod: subPeriod, Competitor: competitor, Type: model.ProjectionGame}
}

func (k Key) String() string {
	return fmt.Sprintf("%d/%d/%s/%s", k.Period, k.SubPeriod, k.Competitor, k.Type)
}

// Guard records applied completions.
type Guard interface {
	// SeenAndRecord atomically checks whether key was applied and records it
	// if not. Returns true if key was already recorded.
	SeenAndRecord(ctx context.Context, key Key) bool

	// Seen reports whether key was recorded without recording it.
	Seen(ctx context.Context, key Key) bool

	// Unrecord forgets key so a failed completion can be retried.
	Unrecord(ctx context.Context, key Key)

	Size() int
}

// inMemoryGuard implements Guard with a map plus insertion order for bounded
// eviction of the oldest key.
type inMemoryGuard struct {
	mu      sync.Mutex
	seen    map[Key]struct{}
	order   []Key
	maxSize int // 0 or negative = unbounded
}

// NewInMemoryGuard creates an unbounded guard unless WithMaxSize is given.
func NewInMemoryGuard(opts ...Option) Guard {
	g := &inMemoryGuard{seen: make(map[Key]struct{})}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Seed records every completed row so later completions of the same key
// are rejected.
func Seed(ctx context.Context, g Guard, rows []model.Projection) {
	for _, r := range rows {
		if r.Completed() {
			g.SeenAndRecord(ctx, GameKey(r.Period, r.SubPeriod, r.Competitor))
		}
	}
}

func (g *inMemoryGuard) SeenAndRecord(_ context.Context, key Key) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, ok := g.seen[key]; ok {
		return true
	}
	if g.maxSize > 0 && len(g.seen) >= g.maxSize {
		g.evictOldest()
	}
	g.seen[key] = struct{}{}
	g.order = append(g.order, key)
	return false
}

func (g *inMemoryGuard) Seen(_ context.Context, key Key) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	_, ok := g.seen[key]
	return ok
}

func (g *inMemoryGuard) Unrecord(_ context.Context, key Key) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, ok := g.seen[key]; !ok {
		return
	}
	delete(g.seen, key)
	for i, k := range g.order {
		if k == key {
			g.order = append(g.order[:i], g.order[i+1:]...)
			break
		}
	}
}

// evictOldest drops the first recorded key. Must be called with g.mu held.
func (g *inMemoryGuard) evictOldest() {
	if len(g.order) == 0 {
		return
	}
	delete(g.seen, g.order[0])
	g.order = g.order[1:]
}

func (g *inMemoryGuard) Size() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.seen)
}
