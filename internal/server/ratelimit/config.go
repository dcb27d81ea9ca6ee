package ratelimit

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Rule is one rate-limit tier, applied to every path carrying its prefix.
type Rule struct {
	Name   string
	Prefix string
	Method string // empty matches any method
	Limit  int    // requests per Window; 0 means unlimited
	Window time.Duration
	Burst  int // defaults to Limit when 0
}

// Config holds limiter configuration.
type Config struct {
	Enabled         bool
	DefaultLimit    int
	DefaultWindow   time.Duration
	CleanupInterval time.Duration
	Rules           []Rule
}

// LoadConfig reads limiter configuration from the environment and applies
// the built-in endpoint tiers.
func LoadConfig() *Config {
	enabled := envBool("RATE_LIMIT_ENABLED", true)
	if !enabled {
		return &Config{Enabled: false}
	}
	return &Config{
		Enabled:         true,
		DefaultLimit:    envInt("RATE_LIMIT_DEFAULT_LIMIT", 600),
		DefaultWindow:   envDuration("RATE_LIMIT_DEFAULT_WINDOW", time.Minute),
		CleanupInterval: envDuration("RATE_LIMIT_CLEANUP_INTERVAL", 5*time.Minute),
		Rules:           DefaultRules(),
	}
}

// DefaultRules returns the built-in endpoint tiers. Endpoints that fan
// out to the scoring model get the tightest budgets; plain writes sit in
// the middle; reads fall through to the default.
func DefaultRules() []Rule {
	return []Rule{
		{Name: "health", Prefix: "/health", Method: "GET", Limit: 0},

		// Model-backed endpoints.
		{Name: "score", Prefix: "/recruiter/jobs/", Method: "POST", Limit: 30, Window: time.Hour, Burst: 5},
		{Name: "match-check", Prefix: "/candidate/match-check", Method: "POST", Limit: 20, Window: time.Hour, Burst: 3},
		{Name: "autofill", Prefix: "/candidate/profile/autofill", Method: "POST", Limit: 20, Window: time.Hour, Burst: 3},

		// Plain writes.
		{Name: "candidate-write", Prefix: "/candidate/", Method: "POST", Limit: 60, Window: time.Minute, Burst: 10},
		{Name: "candidate-update", Prefix: "/candidate/", Method: "PUT", Limit: 60, Window: time.Minute, Burst: 10},
		{Name: "recruiter-update", Prefix: "/recruiter/", Method: "PUT", Limit: 60, Window: time.Minute, Burst: 10},
		{Name: "admin-write", Prefix: "/admin/", Method: "PUT", Limit: 60, Window: time.Minute, Burst: 10},
	}
}

// match finds the first rule covering path and method, falling back to
// the default tier.
func (c *Config) match(path, method string) Rule {
	for _, rule := range c.Rules {
		if rule.Method != "" && rule.Method != method {
			continue
		}
		if path == rule.Prefix || strings.HasPrefix(path, rule.Prefix) {
			return rule
		}
	}
	return Rule{Name: "default", Limit: c.DefaultLimit, Window: c.DefaultWindow}
}

func envBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return def
}

func envInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func envDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}
