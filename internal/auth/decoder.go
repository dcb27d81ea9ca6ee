package auth

import (
	"fmt"
	"sync"

	"github.com/MicahParks/keyfunc/v3"
	"github.com/golang-jwt/jwt/v5"
)

// expectedAudience is the audience claim issued by the identity provider.
const expectedAudience = "authenticated"

// remoteAlgorithms is the ordered list of signing schemes accepted against
// the remote key set: legacy RS256, current ES256, and legacy HS256.
var remoteAlgorithms = []string{"HS256", "RS256", "ES256"}

// Decoder verifies bearer credentials against the configured trust anchors.
//
// The symmetric secret, when configured, is tried first so the common case
// never needs the network. The remote key set is fetched lazily on first
// use and cached for the process lifetime; there is no hot key rotation.
type Decoder struct {
	secret  string
	jwksURL string

	mu   sync.Mutex
	keys keyfunc.Keyfunc
}

// NewDecoder creates a decoder over a shared secret and/or a remote JWKS
// endpoint. Either may be empty; a token that no configured anchor can
// verify fails with ErrInvalidCredential.
func NewDecoder(secret, jwksURL string) *Decoder {
	return &Decoder{secret: secret, jwksURL: jwksURL}
}

// Decode verifies token and returns its claims.
func (d *Decoder) Decode(token string) (*Claims, error) {
	// Symmetric fast path. Failure here is not fatal: the token may be
	// signed by an asymmetric provider key instead.
	if d.secret != "" {
		claims := &Claims{}
		_, err := jwt.ParseWithClaims(token, claims,
			func(*jwt.Token) (any, error) { return []byte(d.secret), nil },
			jwt.WithValidMethods([]string{"HS256"}),
			jwt.WithAudience(expectedAudience),
		)
		if err == nil {
			return claims, nil
		}
	}

	keys, err := d.keyset()
	if err != nil {
		return nil, &ErrInvalidCredential{Err: err}
	}

	claims := &Claims{}
	if _, err := jwt.ParseWithClaims(token, claims, keys.Keyfunc,
		jwt.WithValidMethods(remoteAlgorithms),
		jwt.WithAudience(expectedAudience),
	); err != nil {
		return nil, &ErrInvalidCredential{Err: err}
	}
	return claims, nil
}

// keyset returns the cached remote key set, building it on first use.
func (d *Decoder) keyset() (keyfunc.Keyfunc, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.keys != nil {
		return d.keys, nil
	}
	if d.jwksURL == "" {
		return nil, fmt.Errorf("no key set URL configured")
	}
	keys, err := keyfunc.NewDefault([]string{d.jwksURL})
	if err != nil {
		return nil, fmt.Errorf("failed to build key set fetcher: %w", err)
	}
	d.keys = keys
	return keys, nil
}
