// Package auth turns inbound request credentials into a trusted identity
// and gates handlers by role.
package auth

// Role is the platform role attached to an identity.
type Role string

// Platform roles. RoleAuthenticated is the identity provider's generic
// placeholder and is always normalized away during resolution.
const (
	RoleAdmin         Role = "admin"
	RoleRecruiter     Role = "recruiter"
	RoleCandidate     Role = "candidate"
	RoleAuthenticated Role = "authenticated"
)

// LocalDevUserID is the fixed synthetic user id used by every local-dev
// bypass path. It is a valid UUID so foreign keys to users.id still work.
const LocalDevUserID = "00000000-0000-0000-0000-000000000001"

// Identity is the resolved (user, role) pair for one request. It is
// reconstructed per request and never persisted as a session.
type Identity struct {
	UserID string
	Role   Role

	// CredentialPresent is false on every dev-bypass path. Store access
	// decisions (ownership filters) key off it in local env.
	CredentialPresent bool
}
