package engine

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/pable/go-cs-matchstats/internal/bus"
)

// fixture fakes a store: two container sizes plus a per-field compute log.
type fixture struct {
	bus    *bus.Bus
	eng    *Engine
	kills  int
	rounds int
	calls  map[string]int
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{bus: bus.New(), calls: make(map[string]int)}
	f.eng = New(f.bus, nil)
	t.Cleanup(f.eng.Close)
	return f
}

func (f *fixture) count(name string, compute func(Inputs) any) func(Inputs) any {
	return func(in Inputs) any {
		f.calls[name]++
		return compute(in)
	}
}

func (f *fixture) addKill() {
	f.kills++
	f.bus.Publish(bus.Notification{Kind: "kills", Op: bus.OpAdd, Size: f.kills})
}

func (f *fixture) addRound() {
	f.rounds++
	f.bus.Publish(bus.Notification{Kind: "rounds", Op: bus.OpAdd, Size: f.rounds})
}

func (f *fixture) register(t *testing.T) {
	t.Helper()
	// Declared out of order on purpose: kpr before its dependencies.
	require.NoError(t, f.eng.RegisterAll(
		Field{Name: "kpr", Deps: []string{"kills", "rounds"}, Compute: f.count("kpr", func(in Inputs) any {
			r := As[int](in, "rounds")
			if r == 0 {
				return 0.0
			}
			return float64(As[int](in, "kills")) / float64(r)
		})},
		Field{Name: "kills", Sources: []bus.Kind{"kills"}, Compute: f.count("kills", func(Inputs) any { return f.kills })},
		Field{Name: "rounds", Sources: []bus.Kind{"rounds"}, Compute: f.count("rounds", func(Inputs) any { return f.rounds })},
		Field{Name: "label", Sources: []bus.Kind{"teams"}, Compute: f.count("label", func(Inputs) any { return "t" })},
	))
}

func TestRegisterComputesInitialValues(t *testing.T) {
	f := newFixture(t)
	f.register(t)

	require.Equal(t, 0.0, Get[float64](f.eng, "kpr"))
	require.Equal(t, []string{"kills", "rounds", "label", "kpr"}, f.eng.Fields())
	for _, name := range f.eng.Fields() {
		require.Equal(t, 1, f.calls[name], name)
	}
}

func TestHandleRecomputesAffectedSubset(t *testing.T) {
	f := newFixture(t)
	f.register(t)

	f.addRound()
	f.addRound()
	f.addKill()

	require.Equal(t, 0.5, Get[float64](f.eng, "kpr"))
	require.Equal(t, 2, f.calls["kills"])
	require.Equal(t, 3, f.calls["rounds"])
	require.Equal(t, 4, f.calls["kpr"])
	require.Equal(t, 1, f.calls["label"], "unrelated field must not recompute")
}

func TestBatchRecomputesOnce(t *testing.T) {
	f := newFixture(t)
	f.register(t)
	var updates []Update
	f.eng.OnChange(func(u Update) { updates = append(updates, u) })

	f.bus.Batch(func() {
		f.addKill()
		f.addKill()
		f.addRound()
	})

	require.Len(t, updates, 1)
	require.Equal(t, []string{"kills", "rounds", "kpr"}, updates[0].Fields)
	require.Equal(t, 2, f.calls["kpr"])
	require.Equal(t, 2.0, Get[float64](f.eng, "kpr"))
}

func TestUnreadContainerStillNotifies(t *testing.T) {
	f := newFixture(t)
	f.register(t)
	var updates []Update
	f.eng.OnChange(func(u Update) { updates = append(updates, u) })

	f.bus.Publish(bus.Notification{Kind: "players", Op: bus.OpUpdate, Size: 2})

	require.Len(t, updates, 1)
	require.Empty(t, updates[0].Fields)
	require.True(t, updates[0].Trigger.Has("players"))
	for _, name := range f.eng.Fields() {
		require.Equal(t, 1, f.calls[name], "no field reads players")
	}
}

func TestRegisterRejectsCycles(t *testing.T) {
	f := newFixture(t)
	noop := func(Inputs) any { return nil }

	err := f.eng.RegisterAll(
		Field{Name: "a", Deps: []string{"c"}, Compute: noop},
		Field{Name: "b", Deps: []string{"a"}, Compute: noop},
		Field{Name: "c", Deps: []string{"b"}, Compute: noop},
	)
	require.ErrorIs(t, err, ErrCyclicDependency)
	require.Empty(t, f.eng.Fields(), "a rejected batch registers nothing")

	err = f.eng.Register(Field{Name: "self", Deps: []string{"self"}, Compute: noop})
	require.ErrorIs(t, err, ErrCyclicDependency)

	require.Panics(t, func() {
		f.eng.MustRegister(Field{Name: "x", Deps: []string{"y"}, Compute: noop},
			Field{Name: "y", Deps: []string{"x"}, Compute: noop})
	})
}

func TestRegisterRejectsUnknownAndDuplicate(t *testing.T) {
	f := newFixture(t)
	f.register(t)
	noop := func(Inputs) any { return nil }

	require.ErrorIs(t, f.eng.Register(Field{Name: "kills", Compute: noop}), ErrDuplicateField)
	require.ErrorIs(t, f.eng.Register(Field{Name: "adr", Deps: []string{"damage"}, Compute: noop}), ErrUnknownDependency)
	require.NoError(t, f.eng.Register(Field{Name: "kpr2", Deps: []string{"kpr"}, Compute: func(in Inputs) any {
		return As[float64](in, "kpr") * 2
	}}))

	f.addRound()
	f.addKill()
	require.Equal(t, 2.0, Get[float64](f.eng, "kpr2"))

	_, err := f.eng.Value("missing")
	require.ErrorIs(t, err, ErrUnknownField)
}

func TestUndeclaredDependencyPanics(t *testing.T) {
	f := newFixture(t)
	f.register(t)

	require.Panics(t, func() {
		_ = f.eng.Register(Field{Name: "bad", Compute: func(in Inputs) any { return in.Value("kills") }})
	})
}

func TestMutationDuringRecomputePanics(t *testing.T) {
	f := newFixture(t)
	f.register(t)
	require.NoError(t, f.eng.Register(Field{
		Name:    "evil",
		Sources: []bus.Kind{"rounds"},
		Compute: func(Inputs) any {
			if f.rounds > 0 {
				f.addKill()
			}
			return nil
		},
	}))

	require.Panics(t, f.addRound)
}

func TestRecomputeIsIdempotent(t *testing.T) {
	f := newFixture(t)
	f.register(t)
	f.addRound()
	f.addRound()
	f.addRound()
	f.addKill()

	f.eng.Recompute()
	first := f.eng.Values()
	f.eng.Recompute()
	require.Equal(t, first, f.eng.Values())
}

func TestCloseDetachesFromBus(t *testing.T) {
	f := newFixture(t)
	f.register(t)

	f.eng.Close()
	f.addKill()

	require.Equal(t, 0, Get[int](f.eng, "kills"))
}
