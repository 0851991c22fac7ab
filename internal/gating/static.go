package gating

import (
	"context"
	"sync"
)

// StaticVerifier resolves weight from an in-process table. It is the
// balance-check analog for deployments without an external snapshot: every
// listed principal carries its configured weight, unlisted principals fall
// back to a default (0 disables them).
type StaticVerifier struct {
	mu            sync.RWMutex
	weights       map[string]uint64
	defaultWeight uint64
}

// NewStaticVerifier returns a verifier granting defaultWeight to unlisted
// principals.
func NewStaticVerifier(defaultWeight uint64) *StaticVerifier {
	return &StaticVerifier{weights: make(map[string]uint64), defaultWeight: defaultWeight}
}

// SetWeight pins a principal's weight. A weight of 0 blocks the principal.
func (v *StaticVerifier) SetWeight(principal string, weight uint64) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.weights[principal] = weight
}

func (v *StaticVerifier) Verify(_ context.Context, principal string, _ uint64, _ []byte) (Result, error) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	w, ok := v.weights[principal]
	if !ok {
		w = v.defaultWeight
	}
	if w == 0 {
		return Result{Valid: false, Reason: "principal has no weight"}, nil
	}
	return Result{Valid: true, Weight: w}, nil
}
