package bus

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPublishOutsideBatch(t *testing.T) {
	b := New()
	var got []Change
	b.Subscribe(func(c Change) { got = append(got, c) })

	b.Publish(Notification{Kind: "kills", Op: OpAdd, Size: 1})
	b.Publish(Notification{Kind: "rounds", Op: OpAdd, Size: 1})

	require.Equal(t, []Change{
		{{Kind: "kills", Op: OpAdd, Size: 1}},
		{{Kind: "rounds", Op: OpAdd, Size: 1}},
	}, got)
}

func TestBatchCoalescesPerKind(t *testing.T) {
	b := New()
	var got []Change
	b.Subscribe(func(c Change) { got = append(got, c) })

	b.Batch(func() {
		b.Publish(Notification{Kind: "kills", Op: OpAdd, Size: 1})
		b.Publish(Notification{Kind: "rounds", Op: OpReset})
		b.Batch(func() {
			b.Publish(Notification{Kind: "kills", Op: OpAdd, Size: 2})
			b.Publish(Notification{Kind: "rounds", Op: OpAdd, Size: 1})
		})
		require.Empty(t, got, "nested batch must not deliver")
	})

	require.Len(t, got, 1)
	require.Equal(t, Change{
		{Kind: "kills", Op: OpAdd, Size: 2},
		{Kind: "rounds", Op: OpReset, Size: 1},
	}, got[0])
	require.Equal(t, []Kind{"kills", "rounds"}, got[0].Kinds())
	require.True(t, got[0].Has("rounds"))
	require.False(t, got[0].Has("players"))
}

func TestEmptyBatchDeliversNothing(t *testing.T) {
	b := New()
	calls := 0
	b.Subscribe(func(Change) { calls++ })

	b.Batch(func() {})

	require.Zero(t, calls)
}

func TestUnsubscribe(t *testing.T) {
	b := New()
	var first, second int
	cancel := b.Subscribe(func(Change) { first++ })
	b.Subscribe(func(Change) { second++ })

	b.Publish(Notification{Kind: "kills", Op: OpAdd, Size: 1})
	cancel()
	b.Publish(Notification{Kind: "kills", Op: OpAdd, Size: 2})

	require.Equal(t, 1, first)
	require.Equal(t, 2, second)
}
