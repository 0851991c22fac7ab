package validate

import (
	"strings"
	"testing"

	"github.com/curionet/curio/internal/model"
)

func TestPrincipal(t *testing.T) {
	valid := []string{"alice", "0xAbC123", "did:key:z6Mk", "node-7_a.b"}
	for _, v := range valid {
		if err := Principal("caller", v); err != nil {
			t.Errorf("Principal(%q) = %v, want nil", v, err)
		}
	}

	invalid := []string{"", "has space", "emojié", strings.Repeat("a", 129)}
	for _, v := range invalid {
		if err := Principal("caller", v); err == nil {
			t.Errorf("Principal(%q) = nil, want error", v)
		}
	}
}

func TestRole(t *testing.T) {
	if r, err := Role("relayer"); err != nil || r != model.RoleRelayer {
		t.Errorf("Role(relayer) = %v, %v", r, err)
	}
	if _, err := Role("superuser"); err == nil {
		t.Error("Role(superuser) should fail")
	}
}

func TestEngagementKind(t *testing.T) {
	if k, err := EngagementKind("reaction"); err != nil || k != model.KindReaction {
		t.Errorf("EngagementKind(reaction) = %v, %v", k, err)
	}
	if _, err := EngagementKind("vote"); err == nil {
		t.Error("EngagementKind(vote) should fail")
	}
}
