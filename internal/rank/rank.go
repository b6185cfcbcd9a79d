// Package rank resolves "most X" queries: accumulate a score per candidate,
// then pick the highest. Ties go to the candidate seen first.
package rank

import (
	"sort"

	"golang.org/x/exp/constraints"
)

// Number is any score type a tally can accumulate.
type Number interface {
	constraints.Integer | constraints.Float
}

// Result is the outcome of a ranking. OK is false when there were no
// candidates; Key and Score are zero then.
type Result[K comparable, V Number] struct {
	Key   K
	Score V
	OK    bool
}

// Entry is one ranked candidate.
type Entry[K comparable, V Number] struct {
	Key   K
	Score V
}

// Tally accumulates scores per key and remembers first-seen order.
type Tally[K comparable, V Number] struct {
	order  []K
	scores map[K]V
}

func NewTally[K comparable, V Number]() *Tally[K, V] {
	return &Tally[K, V]{scores: make(map[K]V)}
}

// Touch registers k with a zero score if it is new. Seeding a tally with a
// roster makes roster order the tie-break order.
func (t *Tally[K, V]) Touch(k K) {
	if _, ok := t.scores[k]; !ok {
		t.order = append(t.order, k)
		t.scores[k] = 0
	}
}

// Add adds v to k's score, registering k if needed.
func (t *Tally[K, V]) Add(k K, v V) {
	t.Touch(k)
	t.scores[k] += v
}

func (t *Tally[K, V]) Len() int { return len(t.order) }

// Score returns k's accumulated score.
func (t *Tally[K, V]) Score(k K) V { return t.scores[k] }

// Ranked returns all candidates by descending score; equal scores keep
// first-seen order.
func (t *Tally[K, V]) Ranked() []Entry[K, V] {
	out := make([]Entry[K, V], len(t.order))
	for i, k := range t.order {
		out[i] = Entry[K, V]{Key: k, Score: t.scores[k]}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	return out
}

// Top returns the best candidate, or a Result with OK false for an empty tally.
func (t *Tally[K, V]) Top() Result[K, V] {
	if len(t.order) == 0 {
		return Result[K, V]{}
	}
	best := t.order[0]
	for _, k := range t.order[1:] {
		if t.scores[k] > t.scores[best] {
			best = k
		}
	}
	return Result[K, V]{Key: best, Score: t.scores[best], OK: true}
}
