package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-key-for-jwt-signing-minimum-32-bytes"

func signToken(t *testing.T, secret string, claims *Claims) string {
	t.Helper()
	now := time.Now()
	if len(claims.Audience) == 0 {
		claims.Audience = jwt.ClaimStrings{expectedAudience}
	}
	if claims.ExpiresAt == nil {
		claims.ExpiresAt = jwt.NewNumericDate(now.Add(time.Hour))
	}
	if claims.IssuedAt == nil {
		claims.IssuedAt = jwt.NewNumericDate(now)
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return token
}

func TestDecoder_SharedSecret(t *testing.T) {
	d := NewDecoder(testSecret, "")
	token := signToken(t, testSecret, &Claims{
		Role:             "recruiter",
		RegisteredClaims: jwt.RegisteredClaims{Subject: "user-1"},
	})

	claims, err := d.Decode(token)
	require.NoError(t, err)
	assert.Equal(t, "recruiter", claims.Role)
	assert.Equal(t, "user-1", claims.Subject)
}

func TestDecoder_WrongSecret(t *testing.T) {
	d := NewDecoder(testSecret, "")
	token := signToken(t, "a-completely-different-signing-secret-value", &Claims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: "user-1"},
	})

	_, err := d.Decode(token)
	require.Error(t, err)
	var invalid *ErrInvalidCredential
	assert.ErrorAs(t, err, &invalid)
}

func TestDecoder_WrongAudience(t *testing.T) {
	d := NewDecoder(testSecret, "")
	token := signToken(t, testSecret, &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:  "user-1",
			Audience: jwt.ClaimStrings{"something-else"},
		},
	})

	_, err := d.Decode(token)
	require.Error(t, err)
}

func TestDecoder_ExpiredToken(t *testing.T) {
	d := NewDecoder(testSecret, "")
	token := signToken(t, testSecret, &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "user-1",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
		},
	})

	_, err := d.Decode(token)
	require.Error(t, err)
}

func TestDecoder_GarbageToken(t *testing.T) {
	d := NewDecoder(testSecret, "")
	_, err := d.Decode("not-a-jwt")
	require.Error(t, err)
	var invalid *ErrInvalidCredential
	assert.ErrorAs(t, err, &invalid)
}

func TestDecoder_NoAnchorsConfigured(t *testing.T) {
	d := NewDecoder("", "")
	token := signToken(t, testSecret, &Claims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: "user-1"},
	})

	_, err := d.Decode(token)
	require.Error(t, err)
	var invalid *ErrInvalidCredential
	assert.ErrorAs(t, err, &invalid)
}

func TestClaims_DerivedRole_Precedence(t *testing.T) {
	tests := []struct {
		name   string
		claims Claims
		want   string
	}{
		{
			name:   "top level wins",
			claims: Claims{Role: "admin", AppMetadata: map[string]any{"role": "recruiter"}},
			want:   "admin",
		},
		{
			name:   "app metadata before user metadata",
			claims: Claims{AppMetadata: map[string]any{"role": "recruiter"}, UserMetadata: map[string]any{"role": "candidate"}},
			want:   "recruiter",
		},
		{
			name:   "user metadata as last resort",
			claims: Claims{UserMetadata: map[string]any{"role": "candidate"}},
			want:   "candidate",
		},
		{
			name:   "non-string metadata role ignored",
			claims: Claims{AppMetadata: map[string]any{"role": 7}},
			want:   "",
		},
		{
			name:   "nothing set",
			claims: Claims{},
			want:   "",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.claims.DerivedRole())
		})
	}
}

func TestClaims_DerivedUserID(t *testing.T) {
	c := Claims{UserID: "secondary", RegisteredClaims: jwt.RegisteredClaims{Subject: "primary"}}
	assert.Equal(t, "primary", c.DerivedUserID())

	c = Claims{UserID: "secondary"}
	assert.Equal(t, "secondary", c.DerivedUserID())
}
