package auth

import (
	"github.com/golang-jwt/jwt/v5"
)

// Claims is the decoded credential payload. Depending on how the identity
// provider is configured, the role can live at the top level, inside
// app-controlled metadata, or inside user-controlled metadata.
type Claims struct {
	Role         string         `json:"role,omitempty"`
	UserID       string         `json:"user_id,omitempty"`
	AppMetadata  map[string]any `json:"app_metadata,omitempty"`
	UserMetadata map[string]any `json:"user_metadata,omitempty"`
	jwt.RegisteredClaims
}

// DerivedRole returns the first non-empty role hint, checking the top-level
// claim, then app metadata, then user metadata.
func (c *Claims) DerivedRole() string {
	if c.Role != "" {
		return c.Role
	}
	if r := metaRole(c.AppMetadata); r != "" {
		return r
	}
	return metaRole(c.UserMetadata)
}

// DerivedUserID returns the subject claim, falling back to the secondary
// user_id claim.
func (c *Claims) DerivedUserID() string {
	if c.Subject != "" {
		return c.Subject
	}
	return c.UserID
}

func metaRole(m map[string]any) string {
	if m == nil {
		return ""
	}
	if r, ok := m["role"].(string); ok {
		return r
	}
	return ""
}
