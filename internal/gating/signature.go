package gating

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// SignatureVerifier accepts claims countersigned by a trusted attestor.
// The proof is a 65-byte recoverable secp256k1 signature over
// keccak256(principal || bigEndian64(units)); the recovered signer must be
// the configured attestor address.
type SignatureVerifier struct {
	attestor common.Address
}

func NewSignatureVerifier(attestor common.Address) *SignatureVerifier {
	return &SignatureVerifier{attestor: attestor}
}

func (v *SignatureVerifier) Verify(_ context.Context, principal string, claimedUnits uint64, proof []byte) (Result, error) {
	if claimedUnits == 0 {
		return Result{Valid: false, Reason: "zero claimed units"}, nil
	}
	if len(proof) != crypto.SignatureLength {
		return Result{Valid: false, Reason: "malformed signature"}, nil
	}
	digest := crypto.Keccak256(leafPayload(principal, claimedUnits))
	pub, err := crypto.SigToPub(digest, proof)
	if err != nil {
		return Result{Valid: false, Reason: "unrecoverable signature"}, nil
	}
	if crypto.PubkeyToAddress(*pub) != v.attestor {
		return Result{Valid: false, Reason: "signer is not the attestor"}, nil
	}
	return Result{Valid: true, Weight: claimedUnits}, nil
}
