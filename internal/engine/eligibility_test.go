package engine

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEligibilityIndex_AddRemove(t *testing.T) {
	x := newEligibilityIndex()
	for id := uint64(0); id < 5; id++ {
		x.Add(id)
	}
	require.Equal(t, 5, x.Len())

	// Duplicate insert is a no-op.
	x.Add(3)
	require.Equal(t, 5, x.Len())

	// Swap-remove from the middle keeps everything else a member.
	x.Remove(1)
	require.Equal(t, 4, x.Len())
	require.False(t, x.Contains(1))
	for _, id := range []uint64{0, 2, 3, 4} {
		require.True(t, x.Contains(id), "id %d", id)
	}

	// Removing a non-member is a no-op.
	x.Remove(99)
	x.Remove(1)
	require.Equal(t, 4, x.Len())

	// slot bookkeeping stays consistent with the dense slice.
	for i, id := range x.ids {
		require.Equal(t, i, x.slot[id])
	}
}

func TestEligibilityIndex_SizeMatchesHistory(t *testing.T) {
	x := newEligibilityIndex()
	adds, removes := 0, 0
	for id := uint64(0); id < 100; id++ {
		x.Add(id)
		adds++
	}
	for id := uint64(0); id < 100; id += 3 {
		x.Remove(id)
		removes++
	}
	require.Equal(t, adds-removes, x.Len())

	seen := make(map[uint64]bool)
	for _, id := range x.IDs() {
		require.False(t, seen[id], "duplicate id %d", id)
		seen[id] = true
	}
}

func TestEligibilityIndex_RemoveLast(t *testing.T) {
	x := newEligibilityIndex()
	x.Add(7)
	x.Remove(7)
	require.Equal(t, 0, x.Len())
	require.False(t, x.Contains(7))
}
