package auth

import (
	"slices"

	"github.com/hirematch/hirematch-api/internal/config"
)

// Gate authorizes a resolved identity against an endpoint's allowed roles.
type Gate struct {
	settings *config.Settings
}

// NewGate creates the authorization gate.
func NewGate(settings *config.Settings) *Gate {
	return &Gate{settings: settings}
}

// Authorize returns nil when identity may proceed. The local role-check
// bypass lives here and only here.
func (g *Gate) Authorize(identity Identity, allowed ...Role) error {
	if g.settings.IsLocal() && g.settings.DisableRoleChecksLocal {
		return nil
	}
	if slices.Contains(allowed, identity.Role) {
		return nil
	}
	return &ErrForbidden{Role: identity.Role}
}
