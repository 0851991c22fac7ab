package engine

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestIsqrt(t *testing.T) {
	cases := []struct{ in, want uint64 }{
		{0, 0}, {1, 1}, {2, 1}, {3, 1}, {4, 2}, {8, 2}, {9, 3},
		{1_000_000, 1000}, {4_000_000, 2000}, {999_999, 999},
		{1 << 62, 1 << 31},
	}
	for _, c := range cases {
		require.Equal(t, c.want, isqrt(c.in), "isqrt(%d)", c.in)
	}
}

func TestQuadraticDelta_DiminishingReturns(t *testing.T) {
	const scale = 1_000_000
	prev := quadraticDelta(1, scale)
	sum := prev
	for n := uint64(2); n <= 16; n++ {
		d := quadraticDelta(n, scale)
		require.LessOrEqual(t, d, prev, "delta must be non-increasing at n=%d", n)
		sum += d
		prev = d
	}
	// The deltas telescope: total equals isqrt(16·scale), not 16·isqrt(scale).
	require.Equal(t, isqrt(16*scale), sum)
	require.NotEqual(t, 16*isqrt(scale), sum)
}

func TestDecayFactor_Curve(t *testing.T) {
	const (
		day  = uint64(secondsPerDay)
		base = 100
		min  = 10
	)
	// Full period remaining: no decay.
	require.Equal(t, uint64(base), decayFactor(day, day, min, base))
	require.Equal(t, uint64(base), decayFactor(day+5, day, min, base))

	// Half remaining: quadratic, 12² · 100 / 24² = 25.
	require.Equal(t, uint64(25), decayFactor(day/2, day, min, base))

	// Final hour floors at the minimum: 1·100/576 truncates to 0 → min.
	require.Equal(t, uint64(min), decayFactor(secondsPerHour, day, min, base))

	// No whole unit remaining.
	require.Equal(t, uint64(min), decayFactor(30, day, min, base))
	require.Equal(t, uint64(min), decayFactor(0, day, min, base))
}

func TestDecayFactor_SubHourPeriodUsesMinutes(t *testing.T) {
	const period = 30 * secondsPerMinute
	require.Equal(t, uint64(100), decayFactor(period, period, 10, 100))
	// 15 of 30 minutes left: 15²·100/30² = 25.
	require.Equal(t, uint64(25), decayFactor(15*secondsPerMinute, period, 10, 100))
	require.Equal(t, uint64(10), decayFactor(20, period, 10, 100))
}

func TestScoreContribution_FourReactionsFullDecay(t *testing.T) {
	sc := scoringParams{scale: 1_000_000, decayMin: 10, decayBase: 100}
	var total uint64
	for n := uint64(1); n <= 4; n++ {
		total += scoreContribution(n, secondsPerDay, secondsPerDay, 1, sc)
	}
	// sqrt(4·scale) = 2·sqrt(scale) = 2000.
	require.Equal(t, uint64(2000), total)

	// One fresh engager at the same instant adds sqrt(scale).
	total += scoreContribution(1, secondsPerDay, secondsPerDay, 1, sc)
	require.Equal(t, uint64(3000), total)
}

func TestScoreContribution_ZeroWeight(t *testing.T) {
	sc := scoringParams{scale: 1_000_000, decayMin: 10, decayBase: 100}
	require.Zero(t, scoreContribution(1, secondsPerDay, secondsPerDay, 0, sc))
}
