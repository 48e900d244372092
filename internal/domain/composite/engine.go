package composite

import (
	"context"
	"fmt"
	"math"

	"github.com/okian/gridelo/internal/domain/model"
	"github.com/okian/gridelo/internal/domain/rating"
)

// Identity is a competitor's offensive play style.
type Identity string

// Identities.
const (
	IdentityPass     Identity = "pass"
	IdentityRun      Identity = "run"
	IdentityBalanced Identity = "balanced"
)

// IdentitySource selects which values feed the identity ratio.
type IdentitySource string

// Identity sources.
const (
	// IdentityNormalized uses z-scores.
	IdentityNormalized IdentitySource = "normalized"
	// IdentityRaw uses raw per-game values. With typical inputs the ratio
	// then always falls below RunBias.
	IdentityRaw IdentitySource = "raw"
)

// Params configures the composite engine.
type Params struct {
	Weights        Weights
	PassBias       float64 // ratio above this is pass-leaning
	RunBias        float64 // ratio below this is run-leaning
	IdentitySource IdentitySource
}

// DefaultParams returns the calibrated constants.
func DefaultParams() Params {
	return Params{
		Weights:        DefaultWeights(),
		PassBias:       1.2,
		RunBias:        0.8,
		IdentitySource: IdentityNormalized,
	}
}

// Validate checks the thresholds and identity source.
func (p Params) Validate() error {
	if p.RunBias >= p.PassBias {
		return fmt.Errorf("%w: run bias %v must be below pass bias %v", ErrInvalidParams, p.RunBias, p.PassBias)
	}
	switch p.IdentitySource {
	case IdentityNormalized, IdentityRaw:
	default:
		return fmt.Errorf("%w: identity source %q", ErrInvalidParams, p.IdentitySource)
	}
	return nil
}

// Engine computes composite scores. It holds no state between calls.
type Engine struct {
	params   Params
	observer rating.Observer
	partial  bool
}

// Option applies a configuration option to the Engine.
type Option func(*Engine)

// WithParams sets weights and thresholds.
func WithParams(p Params) Option {
	return func(e *Engine) {
		e.params = p
	}
}

// WithObserver sets the diagnostics sink.
func WithObserver(o rating.Observer) Option {
	return func(e *Engine) {
		if o != nil {
			e.observer = o
		}
	}
}

// WithPartialFailures drops competitors with missing features instead of
// failing the whole snapshot.
func WithPartialFailures(enabled bool) Option {
	return func(e *Engine) {
		e.partial = enabled
	}
}

// New constructs an Engine with default parameters.
func New(opts ...Option) (*Engine, error) {
	e := &Engine{params: DefaultParams(), observer: rating.Nop}
	for _, opt := range opts {
		opt(e)
	}
	if err := e.params.Validate(); err != nil {
		return nil, err
	}
	return e, nil
}

// Result is the outcome of Compute.
type Result struct {
	Scores     []model.CompositeScore
	Identities map[string]Identity
	Failures   []error // populated only with partial failures enabled
}

// Compute scores every competitor present in all feature tables. Offense and
// defense are normalised over their own merged tables, then joined on
// competitor. Output order follows the first offensive table.
func (e *Engine) Compute(ctx context.Context, tables Tables) (Result, error) {
	res := Result{Identities: make(map[string]Identity)}

	off, fails, err := e.merge(ctx, tables, OffenseFeatures)
	res.Failures = append(res.Failures, fails...)
	if err != nil {
		return res, err
	}
	def, fails, err := e.merge(ctx, tables, DefenseFeatures)
	res.Failures = append(res.Failures, fails...)
	if err != nil {
		return res, err
	}

	defIdx := make(map[string]int, len(def.competitors))
	for i, c := range def.competitors {
		defIdx[c] = i
	}
	w := e.params.Weights
	for i, name := range off.competitors {
		j, ok := defIdx[name]
		if !ok {
			continue
		}
		offense, identity := e.offense(ctx, off, i)
		z := def.z(j)
		disruption := w.DefSacks*z(QBSackedPerGame) +
			w.OppInterceptions*z(OppInterceptions) +
			w.OppFumbles*z(OppFumbles) +
			w.TakeawaysBonus*(z(OppInterceptions)+z(OppFumbles))/2
		resilience := w.OppTouchdowns*z(OppTouchdowns) +
			w.OppYards*z(OppYardsPerGame) +
			w.OppRedZone*z(OppRedZoneTDOnly) +
			w.OppFourthDowns*z(OppFourthDownsGame)
		defense := disruption + resilience

		res.Identities[name] = identity
		res.Scores = append(res.Scores, model.CompositeScore{
			Competitor: name,
			Offense:    offense,
			Disruption: disruption,
			Resilience: resilience,
			Defense:    defense,
			Total:      offense + defense,
		})
	}
	return res, nil
}

func (e *Engine) offense(ctx context.Context, s snapshot, i int) (float64, Identity) {
	w := e.params.Weights
	z := s.z(i)
	baseline := w.ThirdDown*z(ThirdDownConversion) +
		w.Yards*z(YardsPerGame) +
		w.FourthDowns*z(FourthDownsPerGame)
	pass := w.PassTD*z(PassingTDPerGame) +
		w.PasserRating*z(PasserRating) +
		w.Interceptions*z(InterceptionsThrown) +
		w.Sacked*z(QBSackedPerGame) +
		w.RushTDSupport*z(RushingTDPerGame)
	run := w.RushYards*z(RushingYardsPerGame) +
		w.RushFirstDowns*z(RushingFirstDowns) +
		w.RushTDRun*z(RushingTDPerGame) +
		w.PassTDRun*z(PassingTDPerGame) +
		w.Interceptions*z(InterceptionsThrown)

	identity := e.identity(ctx, s, i)
	switch identity {
	case IdentityPass:
		return baseline + pass, identity
	case IdentityRun:
		return baseline + run, identity
	default:
		return baseline + 0.5*(pass+run), identity
	}
}

// identity classifies competitor i by (pass indicator + 1) / (run indicator + 1).
func (e *Engine) identity(ctx context.Context, s snapshot, i int) Identity {
	vals := s.norm
	if e.params.IdentitySource == IdentityRaw {
		vals = s.raw
	}
	num := vals[PassingTDPerGame][i] + 1
	den := vals[RushingYardsPerGame][i] + 1
	if den == 0 {
		e.observer.Observe(ctx, rating.Event{
			Kind:       rating.KindZeroIdentity,
			Competitor: s.competitors[i],
			Raw:        num,
			Detail:     "identity ratio denominator is zero; treated as balanced",
		})
		return IdentityBalanced
	}
	ratio := num / den
	switch {
	case ratio > e.params.PassBias:
		return IdentityPass
	case ratio < e.params.RunBias:
		return IdentityRun
	default:
		return IdentityBalanced
	}
}

// snapshot is an inner-joined, normalised set of feature columns.
type snapshot struct {
	competitors []string
	raw         map[string][]float64
	norm        map[string][]float64
}

func (s snapshot) z(i int) func(string) float64 {
	return func(feature string) float64 { return s.norm[feature][i] }
}

// merge joins the named tables on competitor and normalises each column.
// Competitors are taken in first-seen order across the tables.
func (e *Engine) merge(ctx context.Context, tables Tables, features []string) (snapshot, []error, error) {
	lookup := make(map[string]map[string]float64, len(features))
	var order []string
	seen := make(map[string]bool)
	for _, f := range features {
		rows, ok := tables[f]
		if !ok {
			err := &FeatureError{Feature: f, Err: ErrMissingFeature}
			e.observer.Observe(ctx, rating.Event{Kind: rating.KindValidation, Detail: f, Err: err})
			return snapshot{}, nil, err
		}
		m := make(map[string]float64, len(rows))
		for _, c := range rows {
			if _, dup := m[c.Competitor]; dup {
				continue
			}
			m[c.Competitor] = c.Value
			if !seen[c.Competitor] {
				seen[c.Competitor] = true
				order = append(order, c.Competitor)
			}
		}
		lookup[f] = m
	}

	var fails []error
	s := snapshot{raw: make(map[string][]float64, len(features)), norm: make(map[string][]float64, len(features))}
	for _, name := range order {
		if err := complete(lookup, features, name); err != nil {
			e.observer.Observe(ctx, rating.Event{Kind: rating.KindValidation, Competitor: name, Detail: err.Feature, Err: err})
			if !e.partial {
				return snapshot{}, fails, err
			}
			fails = append(fails, err)
			continue
		}
		s.competitors = append(s.competitors, name)
		for _, f := range features {
			s.raw[f] = append(s.raw[f], lookup[f][name])
		}
	}

	for _, f := range features {
		z, ok := ZScores(s.raw[f])
		if !ok {
			err := &FeatureError{Feature: f, Err: ErrDegenerateFeature}
			e.observer.Observe(ctx, rating.Event{Kind: rating.KindDegenerate, Detail: f, Err: err})
			return snapshot{}, fails, err
		}
		s.norm[f] = z
	}
	return s, fails, nil
}

// complete reports the first feature that is absent or non-finite for name.
func complete(lookup map[string]map[string]float64, features []string, name string) *FeatureError {
	for _, f := range features {
		v, ok := lookup[f][name]
		if !ok {
			return &FeatureError{Feature: f, Competitor: name, Err: ErrMissingFeature}
		}
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return &FeatureError{Feature: f, Competitor: name, Err: fmt.Errorf("%w: non-finite value", ErrMissingFeature)}
		}
	}
	return nil
}
