package model

import "strings"

// Content-address validation is deliberately shallow: a bounded length and a
// recognized prefix. Whether the address resolves to real, well-formed
// content is the off-chain content layer's problem.
const (
	MinContentAddressLen = 10
	MaxContentAddressLen = 100
)

var contentAddressPrefixes = []string{"ipfs://", "ar://", "Qm", "bafy", "0x"}

// ValidateContentAddress checks length bounds and the prefix allowlist.
func ValidateContentAddress(addr string) error {
	if len(addr) < MinContentAddressLen || len(addr) > MaxContentAddressLen {
		return ErrBadAddress
	}
	for _, p := range contentAddressPrefixes {
		if strings.HasPrefix(addr, p) {
			return nil
		}
	}
	return ErrBadAddress
}
