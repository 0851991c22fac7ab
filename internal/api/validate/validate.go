package validate

import (
	"fmt"
	"regexp"

	"github.com/curionet/curio/internal/model"
)

// principalRx keeps principals to printable identifier characters. Hex
// addresses, bech32 strings and plain handles all pass.
var principalRx = regexp.MustCompile(`^[A-Za-z0-9:._\-]{1,128}$`)

// Principal validates a principal identifier:
// - 1-128 bytes
// - letters, digits, colon, dot, underscore, hyphen only
func Principal(field, v string) error {
	if v == "" {
		return fmt.Errorf("%s is required", field)
	}
	if !principalRx.MatchString(v) {
		return fmt.Errorf("%s contains invalid characters", field)
	}
	return nil
}

// Role parses a role name.
func Role(v string) (model.Role, error) {
	switch model.Role(v) {
	case model.RoleAdmin, model.RoleRelayer:
		return model.Role(v), nil
	default:
		return "", fmt.Errorf("unknown role %q", v)
	}
}

// EngagementKind parses an engagement kind name.
func EngagementKind(v string) (model.EngagementKind, error) {
	switch model.EngagementKind(v) {
	case model.KindReaction, model.KindMessage:
		return model.EngagementKind(v), nil
	default:
		return "", fmt.Errorf("unknown engagement kind %q", v)
	}
}
