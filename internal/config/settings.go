// Package config provides environment-backed configuration for the API.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Settings holds process-wide configuration, read once at startup.
type Settings struct {
	AppEnv   string
	LogLevel string
	Port     int

	DatabaseURL string

	// Credential trust anchors. JWTSecret enables the symmetric fast path;
	// JWKSURL points at the identity provider's public key set.
	JWTSecret string
	JWKSURL   string

	GeminiAPIKey string

	// Local-only escape hatch: when true and AppEnv is local, role checks
	// are skipped entirely.
	DisableRoleChecksLocal bool

	OracleTimeout       time.Duration
	OracleMaxConcurrent int64
}

// Load reads settings from the environment. Callers load a .env file first
// (see cmd) so both deployment env vars and local files work.
func Load() (*Settings, error) {
	s := &Settings{
		AppEnv:                 envOr("APP_ENV", "local"),
		LogLevel:               envOr("LOG_LEVEL", "info"),
		DatabaseURL:            os.Getenv("DATABASE_URL"),
		JWTSecret:              os.Getenv("AUTH_JWT_SECRET"),
		JWKSURL:                os.Getenv("AUTH_JWKS_URL"),
		GeminiAPIKey:           os.Getenv("GEMINI_API_KEY"),
		DisableRoleChecksLocal: true,
	}

	port, err := envInt("PORT", 8080)
	if err != nil {
		return nil, err
	}
	s.Port = port

	if v := os.Getenv("DISABLE_ROLE_CHECKS_LOCAL"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return nil, fmt.Errorf("invalid DISABLE_ROLE_CHECKS_LOCAL: %w", err)
		}
		s.DisableRoleChecksLocal = b
	}

	timeoutSecs, err := envInt("ORACLE_TIMEOUT_SECONDS", 60)
	if err != nil {
		return nil, err
	}
	s.OracleTimeout = time.Duration(timeoutSecs) * time.Second

	maxConc, err := envInt("ORACLE_MAX_CONCURRENT", 8)
	if err != nil {
		return nil, err
	}
	s.OracleMaxConcurrent = int64(maxConc)

	if err := s.normalize(); err != nil {
		return nil, err
	}
	return s, nil
}

// normalize validates the configuration.
func (s *Settings) normalize() error {
	if s.Port < 1 || s.Port > 65535 {
		return fmt.Errorf("PORT must be in 1..65535, got: %d", s.Port)
	}
	if s.OracleTimeout < time.Second {
		return fmt.Errorf("ORACLE_TIMEOUT_SECONDS must be at least 1")
	}
	if s.OracleMaxConcurrent < 1 {
		return fmt.Errorf("ORACLE_MAX_CONCURRENT must be at least 1")
	}
	if !s.IsLocal() {
		if s.JWTSecret == "" && s.JWKSURL == "" {
			return fmt.Errorf("at least one of AUTH_JWT_SECRET or AUTH_JWKS_URL is required outside local env")
		}
	}
	return nil
}

// IsLocal reports whether the process runs in the local development env.
// All dev bypasses in the auth chain key off this.
func (s *Settings) IsLocal() bool {
	return strings.EqualFold(s.AppEnv, "local")
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}
