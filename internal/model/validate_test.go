package model

import (
	"errors"
	"strings"
	"testing"
)

func TestValidateContentAddress(t *testing.T) {
	valid := []string{
		"ipfs://bafybeigdyrzt5",
		"ar://abcdefghij",
		"QmYwAPJzv5CZsnA625s",
		"bafybeigdyrzt5sfp7ud",
		"0x" + strings.Repeat("ab", 20),
	}
	for _, addr := range valid {
		if err := ValidateContentAddress(addr); err != nil {
			t.Errorf("ValidateContentAddress(%q) = %v, want nil", addr, err)
		}
	}

	invalid := []string{
		"",
		"ipfs://x",                           // too short
		"ipfs://" + strings.Repeat("a", 100), // too long
		"http://example.com/content",         // unknown scheme
		strings.Repeat("z", 20),              // no recognized prefix
	}
	for _, addr := range invalid {
		if err := ValidateContentAddress(addr); !errors.Is(err, ErrBadAddress) {
			t.Errorf("ValidateContentAddress(%q) = %v, want ErrBadAddress", addr, err)
		}
	}
}

func TestKindOf(t *testing.T) {
	cases := []struct {
		err  error
		want Kind
	}{
		{ErrBadAddress, KindValidation},
		{ErrNotCreator, KindAuthorization},
		{ErrAlreadyRetracted, KindState},
		{ErrDailyLimit, KindCapacity},
		{ErrInsufficientPayment, KindPayment},
		{errors.New("unrelated"), KindUnknown},
	}
	for _, c := range cases {
		if got := KindOf(c.err); got != c.want {
			t.Errorf("KindOf(%v) = %v, want %v", c.err, got, c.want)
		}
	}
}
