package rank

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTopEmptyIsAbsent(t *testing.T) {
	tally := NewTally[string, int]()

	top := tally.Top()
	require.False(t, top.OK)
	require.Empty(t, top.Key)
	require.Empty(t, tally.Ranked())
}

func TestTopTieGoesToFirstSeen(t *testing.T) {
	tally := NewTally[string, int]()
	tally.Add("bob", 2)
	tally.Add("alice", 1)
	tally.Add("alice", 1)

	top := tally.Top()
	require.True(t, top.OK)
	require.Equal(t, "bob", top.Key)
	require.Equal(t, 2, top.Score)

	tally.Add("alice", 1)
	require.Equal(t, "alice", tally.Top().Key)
}

func TestTouchSeedsOrder(t *testing.T) {
	tally := NewTally[string, float64]()
	for _, name := range []string{"carol", "alice", "bob"} {
		tally.Touch(name)
	}
	tally.Add("bob", 10.5)
	tally.Add("alice", 10.5)

	require.Equal(t, []Entry[string, float64]{
		{Key: "alice", Score: 10.5},
		{Key: "bob", Score: 10.5},
		{Key: "carol", Score: 0},
	}, tally.Ranked())
	require.Equal(t, "alice", tally.Top().Key)
	require.Equal(t, 3, tally.Len())
	require.Equal(t, 10.5, tally.Score("bob"))
}
