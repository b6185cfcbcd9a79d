package store

import "github.com/pable/go-cs-matchstats/internal/bus"

// Collection is an ordered, append-only container of one element kind. Every
// append and clear publishes a notification carrying the resulting size.
type Collection[T any] struct {
	kind  bus.Kind
	items []T
	bus   *bus.Bus
}

func newCollection[T any](kind bus.Kind, b *bus.Bus) *Collection[T] {
	return &Collection[T]{kind: kind, bus: b}
}

func (c *Collection[T]) Kind() bus.Kind { return c.kind }

func (c *Collection[T]) Len() int { return len(c.items) }

// All returns the elements in append order. The returned slice shares storage
// with the collection and must be treated as read-only; its capacity is clipped
// so appending to it never writes into the collection.
func (c *Collection[T]) All() []T {
	return c.items[:len(c.items):len(c.items)]
}

// At returns the i-th element.
func (c *Collection[T]) At(i int) T {
	return c.items[i]
}

// Last returns the most recently appended element.
func (c *Collection[T]) Last() (T, bool) {
	var zero T
	if len(c.items) == 0 {
		return zero, false
	}
	return c.items[len(c.items)-1], true
}

func (c *Collection[T]) add(v T) {
	c.items = append(c.items, v)
	c.bus.Publish(bus.Notification{Kind: c.kind, Op: bus.OpAdd, Size: len(c.items)})
}

func (c *Collection[T]) clear() {
	c.items = nil
	c.bus.Publish(bus.Notification{Kind: c.kind, Op: bus.OpReset, Size: 0})
}
