package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("APP_ENV", "")
	t.Setenv("PORT", "")
	t.Setenv("DISABLE_ROLE_CHECKS_LOCAL", "")
	t.Setenv("ORACLE_TIMEOUT_SECONDS", "")
	t.Setenv("ORACLE_MAX_CONCURRENT", "")

	s, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "local", s.AppEnv)
	assert.True(t, s.IsLocal())
	assert.Equal(t, 8080, s.Port)
	assert.True(t, s.DisableRoleChecksLocal)
	assert.Equal(t, 60*time.Second, s.OracleTimeout)
	assert.Equal(t, int64(8), s.OracleMaxConcurrent)
}

func TestLoad_IsLocalCaseInsensitive(t *testing.T) {
	t.Setenv("APP_ENV", "LOCAL")
	s, err := Load()
	require.NoError(t, err)
	assert.True(t, s.IsLocal())
}

func TestLoad_ProductionRequiresTrustAnchor(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("AUTH_JWT_SECRET", "")
	t.Setenv("AUTH_JWKS_URL", "")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "AUTH_JWT_SECRET")
}

func TestLoad_ProductionWithSecret(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("AUTH_JWT_SECRET", "super-secret")

	s, err := Load()
	require.NoError(t, err)
	assert.False(t, s.IsLocal())
}

func TestLoad_DisableRoleChecksOverride(t *testing.T) {
	t.Setenv("APP_ENV", "local")
	t.Setenv("DISABLE_ROLE_CHECKS_LOCAL", "false")

	s, err := Load()
	require.NoError(t, err)
	assert.False(t, s.DisableRoleChecksLocal)
}

func TestLoad_InvalidPort(t *testing.T) {
	t.Setenv("PORT", "not-a-port")
	_, err := Load()
	require.Error(t, err)

	t.Setenv("PORT", "70000")
	_, err = Load()
	require.Error(t, err)
}

func TestLoad_InvalidOracleSettings(t *testing.T) {
	t.Setenv("ORACLE_TIMEOUT_SECONDS", "0")
	_, err := Load()
	require.Error(t, err)

	t.Setenv("ORACLE_TIMEOUT_SECONDS", "")
	t.Setenv("ORACLE_MAX_CONCURRENT", "0")
	_, err = Load()
	require.Error(t, err)
}
