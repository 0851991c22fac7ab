package engine

// Scoring is quadratic with time decay: the Nth engagement by the same
// principal on one session contributes isqrt(N·scale) − isqrt((N−1)·scale),
// a strictly decreasing delta, scaled down the later in the period it lands.
// Everything here is integer arithmetic with truncating division so scores
// are bit-for-bit reproducible across implementations.

const (
	secondsPerMinute = 60
	secondsPerHour   = 3600
	secondsPerDay    = 86400
)

// isqrt returns the integer square root of x (largest r with r*r <= x),
// by Newton iteration.
func isqrt(x uint64) uint64 {
	if x < 2 {
		return x
	}
	r := x
	next := (r + x/r) / 2
	for next < r {
		r = next
		next = (r + x/r) / 2
	}
	return r
}

// quadraticDelta returns the raw score delta for the count-th engagement,
// before kind weighting and decay. count is 1-based.
func quadraticDelta(count, scale uint64) uint64 {
	return isqrt(count*scale) - isqrt((count-1)*scale)
}

// decayFactor computes the time-decay multiplier in [decayMin, decayBase].
// decayBase means full weight; the curve is quadratic in the number of
// whole units (hours, or minutes for sub-hour periods) remaining.
func decayFactor(timeRemaining, periodDuration, decayMin, decayBase uint64) uint64 {
	if timeRemaining >= periodDuration {
		return decayBase
	}
	var remUnits, totalUnits uint64
	if periodDuration/secondsPerHour > 0 {
		totalUnits = periodDuration / secondsPerHour
		remUnits = timeRemaining / secondsPerHour
	} else {
		totalUnits = periodDuration / secondsPerMinute
		remUnits = timeRemaining / secondsPerMinute
	}
	if totalUnits == 0 || remUnits == 0 {
		return decayMin
	}
	f := remUnits * remUnits * decayBase / (totalUnits * totalUnits)
	if f < decayMin {
		return decayMin
	}
	return f
}

// scoreContribution combines the quadratic delta, the kind weight and the
// decay factor into the amount actually added to the session's scores.
func scoreContribution(count, timeRemaining, periodDuration, kindWeight uint64, sc scoringParams) uint64 {
	if kindWeight == 0 {
		return 0
	}
	delta := quadraticDelta(count, sc.scale) * kindWeight
	factor := decayFactor(timeRemaining, periodDuration, sc.decayMin, sc.decayBase)
	if sc.decayBase == 0 {
		return delta
	}
	return delta * factor / sc.decayBase
}

type scoringParams struct {
	scale     uint64
	decayMin  uint64
	decayBase uint64
}
