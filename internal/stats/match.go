// Package stats is the match statistics core. A Match owns the event store,
// the mutation bus and a derived-field engine; every append to the store
// updates the affected statistics before the append returns. A Perspective
// re-runs the same formulas for one observing player.
package stats

import (
	"log/slog"

	"github.com/pable/go-cs-matchstats/internal/bus"
	"github.com/pable/go-cs-matchstats/internal/engine"
	"github.com/pable/go-cs-matchstats/internal/model"
	"github.com/pable/go-cs-matchstats/internal/store"
)

// DefaultHalfLength is the MR12 regulation half.
const DefaultHalfLength = 12

// ResetMode selects what Reset keeps.
type ResetMode int

const (
	// ResetFull clears events, rounds, players and team rosters.
	ResetFull ResetMode = iota
	// ResetStatsOnly clears events and rounds but keeps players and rosters,
	// resetting each player's own tallies.
	ResetStatsOnly
)

func (m ResetMode) String() string {
	if m == ResetStatsOnly {
		return "stats-only"
	}
	return "full"
}

type options struct {
	halfLength int
	logger     *slog.Logger
}

// Option configures a Match.
type Option func(*options)

// WithHalfLength sets the number of regulation rounds per half. Non-positive
// values keep the default.
func WithHalfLength(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.halfLength = n
		}
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// Match is the root aggregate of one recorded match.
type Match struct {
	opts   options
	log    *slog.Logger
	bus    *bus.Bus
	store  *store.Store
	engine *engine.Engine
}

func NewMatch(opts ...Option) *Match {
	o := options{halfLength: DefaultHalfLength, logger: slog.Default()}
	for _, opt := range opts {
		opt(&o)
	}

	b := bus.New()
	m := &Match{
		opts:   o,
		log:    o.logger,
		bus:    b,
		store:  store.New(b, o.logger),
		engine: engine.New(b, o.logger),
	}
	m.engine.MustRegister(definitions(Unscoped(m.store), o.halfLength)...)
	return m
}

// Store exposes the event store for appends.
func (m *Match) Store() *store.Store { return m.store }

func (m *Match) HalfLength() int { return m.opts.halfLength }

// Stats returns the current whole-match statistics.
func (m *Match) Stats() Stats { return readStats(m.engine) }

// Value returns a derived field by name.
func (m *Match) Value(name string) (any, error) { return m.engine.Value(name) }

// OnChange registers fn to run after every recomputation of the whole-match
// statistics. The returned function unregisters it.
func (m *Match) OnChange(fn func(engine.Update)) func() { return m.engine.OnChange(fn) }

// Recompute recomputes every whole-match field.
func (m *Match) Recompute() { m.engine.Recompute() }

// Reset returns the match to its empty baseline in a single change.
func (m *Match) Reset(mode ResetMode) {
	m.store.Reset(mode == ResetStatsOnly)
	m.log.Debug("Reset match", slog.String("mode", mode.String()))
}

// Perspective starts tracking statistics for observer. The perspective stays
// live until Close is called.
func (m *Match) Perspective(observer model.PlayerID) *Perspective {
	e := engine.New(m.bus, m.log)
	e.MustRegister(definitions(Scoped(m.store, observer), m.opts.halfLength)...)
	e.MustRegister(verdictField(m.store, observer))
	return &Perspective{observer: observer, store: m.store, engine: e}
}

// Perspective holds observer-relative statistics. Events are attributed to the
// observer when they are its actor; the verdict uses the observer's current
// team membership.
type Perspective struct {
	observer model.PlayerID
	store    *store.Store
	engine   *engine.Engine
}

func (p *Perspective) Observer() model.PlayerID { return p.observer }

func (p *Perspective) Stats() Stats { return readStats(p.engine) }

func (p *Perspective) Verdict() Verdict {
	v, err := p.engine.Value(FieldVerdict)
	if err != nil {
		return VerdictUndetermined
	}
	return v.(Verdict)
}

// Team returns the label of the observer's current team.
func (p *Perspective) Team() model.TeamLabel { return p.store.TeamOf(p.observer) }

func (p *Perspective) OnChange(fn func(engine.Update)) func() { return p.engine.OnChange(fn) }

// Close stops tracking. Values stay readable but no longer update.
func (p *Perspective) Close() { p.engine.Close() }
