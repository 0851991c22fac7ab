package gating

import (
	"bytes"
	"context"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// MerkleVerifier checks claims against a weight-snapshot Merkle root.
// Leaves are keccak256(principal || bigEndian64(units)); interior nodes hash
// the sorted pair, so proofs carry no left/right flags. The proof is sibling
// hashes concatenated, 32 bytes each.
type MerkleVerifier struct {
	root common.Hash
}

func NewMerkleVerifier(root common.Hash) *MerkleVerifier {
	return &MerkleVerifier{root: root}
}

// Root returns the snapshot root this verifier accepts.
func (v *MerkleVerifier) Root() common.Hash { return v.root }

func (v *MerkleVerifier) Verify(_ context.Context, principal string, claimedUnits uint64, proof []byte) (Result, error) {
	if claimedUnits == 0 {
		return Result{Valid: false, Reason: "zero claimed units"}, nil
	}
	if len(proof)%common.HashLength != 0 {
		return Result{Valid: false, Reason: "malformed proof"}, nil
	}
	leaf := crypto.Keccak256(leafPayload(principal, claimedUnits))
	if !VerifyProof(v.root, leaf, proof) {
		return Result{Valid: false, Reason: "proof does not match snapshot root"}, nil
	}
	return Result{Valid: true, Weight: claimedUnits}, nil
}

// VerifyProof folds the sibling path over the leaf and compares against root.
func VerifyProof(root common.Hash, leaf []byte, proof []byte) bool {
	h := leaf
	for off := 0; off < len(proof); off += common.HashLength {
		sib := proof[off : off+common.HashLength]
		if bytes.Compare(h, sib) <= 0 {
			h = crypto.Keccak256(h, sib)
		} else {
			h = crypto.Keccak256(sib, h)
		}
	}
	return bytes.Equal(h, root.Bytes())
}
