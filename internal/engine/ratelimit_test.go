package engine

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/curionet/curio/internal/model"
)

func TestRateLimiter_ConsumeUpToCapacity(t *testing.T) {
	rl := newRateLimiter()
	const capacity = 3
	day := dayBucket(1_700_000_000)

	for i := 0; i < capacity; i++ {
		require.NoError(t, rl.consume("alice", day, capacity, model.KindReaction))
	}
	err := rl.consume("alice", day, capacity, model.KindReaction)
	require.ErrorIs(t, err, model.ErrDailyLimit)
	require.Zero(t, rl.remaining("alice", day, capacity, model.KindReaction))
}

func TestRateLimiter_KindsAndDaysAreIndependent(t *testing.T) {
	rl := newRateLimiter()
	day := dayBucket(1_700_000_000)

	require.NoError(t, rl.consume("alice", day, 1, model.KindReaction))
	require.ErrorIs(t, rl.consume("alice", day, 1, model.KindReaction), model.ErrDailyLimit)

	// Messages draw from a separate counter.
	require.NoError(t, rl.consume("alice", day, 1, model.KindMessage))

	// A new day bucket starts at zero.
	require.NoError(t, rl.consume("alice", day+1, 1, model.KindReaction))

	// Other principals are unaffected.
	require.Equal(t, uint64(1), rl.remaining("bob", day, 1, model.KindReaction))
}
