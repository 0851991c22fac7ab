// Package gating defines the verification boundary deciding whether a
// principal may act and with what weight. Implementations differ in scheme
// (static weight table, Merkle-proof snapshot, attestor signature) but share
// one contract; a Valid=false or Weight=0 result is rejected uniformly by
// the engine regardless of which scheme produced it.
package gating

import (
	"context"
	"encoding/binary"
)

// Result is the outcome of a verification call.
type Result struct {
	Valid  bool   `json:"valid"`
	Weight uint64 `json:"weight"`
	Reason string `json:"reason,omitempty"`
}

// Verifier is the consumed capability of the gating collaborator.
type Verifier interface {
	Verify(ctx context.Context, principal string, claimedUnits uint64, proof []byte) (Result, error)
}

// leafPayload is the canonical byte encoding of a (principal, units) claim,
// shared by the Merkle and signature verifiers.
func leafPayload(principal string, units uint64) []byte {
	buf := make([]byte, 0, len(principal)+8)
	buf = append(buf, principal...)
	var u [8]byte
	binary.BigEndian.PutUint64(u[:], units)
	return append(buf, u[:]...)
}
