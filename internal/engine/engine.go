// Package engine keeps a registry of derived fields and recomputes them when
// the containers they read change.
//
// Each field declares the store containers it reads (Sources) and the other
// fields it reads (Deps). Registration rejects unknown dependencies and cycles,
// so the registry is always a DAG stored in topological order. On a change the
// engine marks every field sourcing a touched container, extends the mark to
// all transitive dependents and recomputes just those fields, in order, before
// the mutating call returns.
//
// The engine performs no locking. All mutations and reads must happen on the
// goroutine that owns the store.
package engine

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"github.com/pable/go-cs-matchstats/internal/bus"
)

var (
	ErrDuplicateField     = errors.New("duplicate field")
	ErrUnknownDependency  = errors.New("unknown dependency")
	ErrCyclicDependency   = errors.New("cyclic dependency")
	ErrUnknownField       = errors.New("unknown field")
	ErrReentrantMutation  = errors.New("mutation during recomputation")
	errMissingComputeFunc = errors.New("missing compute function")
)

// Field declares a derived value. Compute must be a pure function of the
// declared sources and dependencies.
type Field struct {
	Name    string
	Sources []bus.Kind
	Deps    []string
	Compute func(in Inputs) any
}

// Update is handed to change subscribers after a recomputation pass.
type Update struct {
	Trigger bus.Change
	Fields  []string
}

type node struct {
	Field
	deps []*node
}

// Engine is the derived-field registry and its current values.
type Engine struct {
	log       *slog.Logger
	order     []*node
	index     map[string]*node
	values    map[string]any
	computing bool

	nextSub int
	subs    []subscriber
	cancel  func()
}

type subscriber struct {
	id int
	fn func(Update)
}

// New creates an engine listening on b. A nil logger uses slog.Default.
func New(b *bus.Bus, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	e := &Engine{
		log:    logger,
		index:  make(map[string]*node),
		values: make(map[string]any),
	}
	if b != nil {
		e.cancel = b.Subscribe(e.Handle)
	}
	return e
}

// Close detaches the engine from its bus. Values stay readable.
func (e *Engine) Close() {
	if e.cancel != nil {
		e.cancel()
		e.cancel = nil
	}
}

// Register adds a single field. See RegisterAll.
func (e *Engine) Register(f Field) error {
	return e.RegisterAll(f)
}

// RegisterAll adds a batch of fields. Fields in the batch may depend on each
// other in any declaration order and on previously registered fields. The
// batch is added atomically: on error nothing is registered. Each new field is
// computed once before RegisterAll returns.
func (e *Engine) RegisterAll(fields ...Field) error {
	batch := make(map[string]*node, len(fields))
	for _, f := range fields {
		if f.Compute == nil {
			return fmt.Errorf("register %q: %w", f.Name, errMissingComputeFunc)
		}
		if _, ok := e.index[f.Name]; ok {
			return fmt.Errorf("register %q: %w", f.Name, ErrDuplicateField)
		}
		if _, ok := batch[f.Name]; ok {
			return fmt.Errorf("register %q: %w", f.Name, ErrDuplicateField)
		}
		batch[f.Name] = &node{Field: f}
	}

	// Kahn's algorithm over the batch; edges to already registered fields are
	// satisfied by construction.
	indegree := make(map[string]int, len(fields))
	dependents := make(map[string][]string, len(fields))
	for _, f := range fields {
		n := batch[f.Name]
		for _, dep := range f.Deps {
			if d, ok := e.index[dep]; ok {
				n.deps = append(n.deps, d)
				continue
			}
			d, ok := batch[dep]
			if !ok {
				return fmt.Errorf("register %q: %w: %q", f.Name, ErrUnknownDependency, dep)
			}
			n.deps = append(n.deps, d)
			indegree[f.Name]++
			dependents[dep] = append(dependents[dep], f.Name)
		}
	}

	queue := make([]string, 0, len(fields))
	for _, f := range fields {
		if indegree[f.Name] == 0 {
			queue = append(queue, f.Name)
		}
	}
	sorted := make([]*node, 0, len(fields))
	for len(queue) > 0 {
		name := queue[0]
		queue = queue[1:]
		sorted = append(sorted, batch[name])
		for _, d := range dependents[name] {
			indegree[d]--
			if indegree[d] == 0 {
				queue = append(queue, d)
			}
		}
	}
	if len(sorted) != len(fields) {
		var stuck []string
		for _, f := range fields {
			if indegree[f.Name] > 0 {
				stuck = append(stuck, f.Name)
			}
		}
		return fmt.Errorf("register %v: %w", stuck, ErrCyclicDependency)
	}

	for _, n := range sorted {
		e.index[n.Name] = n
		e.order = append(e.order, n)
	}
	e.run(sorted)
	return nil
}

// MustRegister is RegisterAll that panics on error. A bad registry is a
// programming error and should fail before the first mutation.
func (e *Engine) MustRegister(fields ...Field) {
	if err := e.RegisterAll(fields...); err != nil {
		panic(err)
	}
}

// Handle recomputes every field whose dependency closure includes a container
// touched by c. It is the bus handler installed by New. Subscribers are
// notified for every change, with an empty Fields list when no field read the
// touched containers.
func (e *Engine) Handle(c bus.Change) {
	if e.computing {
		panic(fmt.Errorf("handle %v: %w", c.Kinds(), ErrReentrantMutation))
	}
	affected := e.affected(c)
	if len(affected) > 0 {
		e.run(affected)
		e.log.Debug("Recomputed derived fields",
			slog.Int("fields", len(affected)), slog.Any("kinds", c.Kinds()))
	}
	e.notify(Update{Trigger: c, Fields: names(affected)})
}

// Recompute recomputes every registered field.
func (e *Engine) Recompute() {
	if e.computing {
		panic(fmt.Errorf("recompute: %w", ErrReentrantMutation))
	}
	all := slices.Clone(e.order)
	e.run(all)
	e.notify(Update{Fields: names(all)})
}

// affected walks the registry in topological order so a dependency is always
// visited, and marked, before its dependents.
func (e *Engine) affected(c bus.Change) []*node {
	marked := make(map[*node]bool)
	var out []*node
	for _, n := range e.order {
		hit := false
		for _, src := range n.Sources {
			if c.Has(src) {
				hit = true
				break
			}
		}
		if !hit {
			for _, d := range n.deps {
				if marked[d] {
					hit = true
					break
				}
			}
		}
		if hit {
			marked[n] = true
			out = append(out, n)
		}
	}
	return out
}

func (e *Engine) run(nodes []*node) {
	e.computing = true
	defer func() { e.computing = false }()
	for _, n := range nodes {
		e.values[n.Name] = n.Compute(Inputs{e: e, n: n})
	}
}

// OnChange registers fn to run after every recomputation pass and returns a
// function removing it.
func (e *Engine) OnChange(fn func(Update)) func() {
	e.nextSub++
	id := e.nextSub
	e.subs = append(e.subs, subscriber{id: id, fn: fn})
	return func() {
		e.subs = slices.DeleteFunc(e.subs, func(s subscriber) bool { return s.id == id })
	}
}

func (e *Engine) notify(u Update) {
	for _, s := range slices.Clone(e.subs) {
		s.fn(u)
	}
}

// Value returns the current value of a field.
func (e *Engine) Value(name string) (any, error) {
	v, ok := e.values[name]
	if !ok {
		return nil, fmt.Errorf("value %q: %w", name, ErrUnknownField)
	}
	return v, nil
}

// Fields lists registered field names in topological order.
func (e *Engine) Fields() []string {
	return names(e.order)
}

// Values copies every current value.
func (e *Engine) Values() map[string]any {
	out := make(map[string]any, len(e.values))
	for k, v := range e.values {
		out[k] = v
	}
	return out
}

// Get returns the value of name as T. Unknown fields and type mismatches yield
// the zero T.
func Get[T any](e *Engine, name string) T {
	v, _ := e.values[name].(T)
	return v
}

// Inputs gives a compute function access to its declared dependencies.
type Inputs struct {
	e *Engine
	n *node
}

// Value returns the current value of dependency name. Reading a field that was
// not declared in Deps panics, since the engine would not know to recompute the
// reader when it changes.
func (in Inputs) Value(name string) any {
	for _, d := range in.n.deps {
		if d.Name == name {
			return in.e.values[name]
		}
	}
	panic(fmt.Sprintf("field %q reads undeclared dependency %q", in.n.Name, name))
}

// As returns dependency name as T.
func As[T any](in Inputs, name string) T {
	v, _ := in.Value(name).(T)
	return v
}

func names(nodes []*node) []string {
	out := make([]string, len(nodes))
	for i, n := range nodes {
		out[i] = n.Name
	}
	return out
}
