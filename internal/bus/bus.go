// Package bus propagates "collection changed" notifications from the event
// store to its subscribers. Delivery is synchronous: Publish returns only after
// every subscriber has handled the change.
package bus

import "sync"

// Kind names a container in the event store.
type Kind string

// Op is the mutation that produced a notification.
type Op int

const (
	OpAdd Op = iota + 1
	OpUpdate
	OpReset
)

func (o Op) String() string {
	switch o {
	case OpAdd:
		return "add"
	case OpUpdate:
		return "update"
	case OpReset:
		return "reset"
	default:
		return "unknown"
	}
}

// Notification reports that container Kind changed and now holds Size elements.
type Notification struct {
	Kind Kind
	Op   Op
	Size int
}

// Change is the set of notifications delivered together. A plain mutation
// yields a single notification; a batch yields one per touched container.
type Change []Notification

// Has reports whether kind is part of the change.
func (c Change) Has(kind Kind) bool {
	for _, n := range c {
		if n.Kind == kind {
			return true
		}
	}
	return false
}

// Kinds returns the touched containers in first-touched order.
func (c Change) Kinds() []Kind {
	out := make([]Kind, 0, len(c))
	for _, n := range c {
		out = append(out, n.Kind)
	}
	return out
}

// Handler receives changes.
type Handler func(Change)

type subscription struct {
	id int
	fn Handler
}

// Bus fans notifications out to subscribers in subscription order. The bus is
// meant for a single writer; the mutex only protects the subscriber list so
// readers may subscribe from other goroutines.
type Bus struct {
	mu      sync.Mutex
	subs    []subscription
	nextID  int
	depth   int
	pending Change
}

func New() *Bus {
	return &Bus{}
}

// Subscribe registers h and returns a function removing it again.
func (b *Bus) Subscribe(h Handler) func() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	id := b.nextID
	b.subs = append(b.subs, subscription{id: id, fn: h})

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		for i, s := range b.subs {
			if s.id == id {
				b.subs = append(b.subs[:i:i], b.subs[i+1:]...)
				return
			}
		}
	}
}

// Publish delivers n immediately, or queues it when called inside Batch.
func (b *Bus) Publish(n Notification) {
	if b.depth > 0 {
		b.pending = merge(b.pending, n)
		return
	}
	b.deliver(Change{n})
}

// Batch runs fn and delivers every notification it published as one Change
// once fn returns. Batches nest; only the outermost one delivers.
func (b *Bus) Batch(fn func()) {
	b.depth++
	defer func() {
		b.depth--
		if b.depth == 0 && len(b.pending) > 0 {
			change := b.pending
			b.pending = nil
			b.deliver(change)
		}
	}()
	fn()
}

func (b *Bus) deliver(c Change) {
	b.mu.Lock()
	subs := make([]subscription, len(b.subs))
	copy(subs, b.subs)
	b.mu.Unlock()

	for _, s := range subs {
		s.fn(c)
	}
}

// merge keeps one notification per kind; the latest size wins and a reset
// is never downgraded to an add.
func merge(c Change, n Notification) Change {
	for i := range c {
		if c[i].Kind == n.Kind {
			c[i].Size = n.Size
			if c[i].Op != OpReset {
				c[i].Op = n.Op
			}
			return c
		}
	}
	return append(c, n)
}
