package engine

import "time"

// Clock abstracts wall time so tests can drive period boundaries precisely.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// SystemClock returns the production clock.
func SystemClock() Clock { return systemClock{} }
