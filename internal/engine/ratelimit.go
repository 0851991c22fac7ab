package engine

import "github.com/curionet/curio/internal/model"

// usageKey counts consumption per (principal, day-bucket, kind). A new day
// bucket starts at zero implicitly; nothing is ever reset.
type usageKey struct {
	Principal string
	Day       uint64
	Kind      model.EngagementKind
}

type rateLimiter struct {
	used map[usageKey]uint64
}

func newRateLimiter() *rateLimiter {
	return &rateLimiter{used: make(map[usageKey]uint64)}
}

// dayBucket is integer division of Unix seconds by one day.
func dayBucket(now uint64) uint64 { return now / secondsPerDay }

// remaining reports how many units are left under capacity.
func (r *rateLimiter) remaining(principal string, day, capacity uint64, kind model.EngagementKind) uint64 {
	used := r.used[usageKey{Principal: principal, Day: day, Kind: kind}]
	if used >= capacity {
		return 0
	}
	return capacity - used
}

// consume debits one unit against capacity. One unit per call, regardless of
// how many underlying engagements the call represents.
func (r *rateLimiter) consume(principal string, day, capacity uint64, kind model.EngagementKind) error {
	k := usageKey{Principal: principal, Day: day, Kind: kind}
	if r.used[k] >= capacity {
		return model.ErrDailyLimit
	}
	r.used[k]++
	return nil
}
