package ratelimit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(rules ...Rule) *Config {
	return &Config{
		Enabled:       true,
		DefaultLimit:  100,
		DefaultWindow: time.Minute,
		Rules:         rules,
	}
}

func TestBurstThenDeny(t *testing.T) {
	limiter := NewLimiter(testConfig(
		Rule{Name: "score", Prefix: "/recruiter/jobs/", Method: "POST", Limit: 3, Window: time.Hour, Burst: 3},
	))
	defer limiter.Stop()

	for i := 0; i < 3; i++ {
		allowed, _ := limiter.Allow("1.2.3.4", "/recruiter/jobs/abc/applications/score", "POST")
		require.True(t, allowed, "request %d should pass", i)
	}
	allowed, info := limiter.Allow("1.2.3.4", "/recruiter/jobs/abc/applications/score", "POST")
	assert.False(t, allowed)
	assert.Equal(t, 3, info.Limit)
	assert.Greater(t, info.RetryAfter, time.Duration(0))
}

func TestClientsIsolated(t *testing.T) {
	limiter := NewLimiter(testConfig(
		Rule{Name: "score", Prefix: "/recruiter/jobs/", Method: "POST", Limit: 1, Window: time.Hour, Burst: 1},
	))
	defer limiter.Stop()

	allowed, _ := limiter.Allow("1.1.1.1", "/recruiter/jobs/abc/match", "POST")
	require.True(t, allowed)
	allowed, _ = limiter.Allow("1.1.1.1", "/recruiter/jobs/abc/match", "POST")
	assert.False(t, allowed)

	allowed, _ = limiter.Allow("2.2.2.2", "/recruiter/jobs/abc/match", "POST")
	assert.True(t, allowed, "a different client has its own bucket")
}

func TestHealthUnlimited(t *testing.T) {
	limiter := NewLimiter(&Config{
		Enabled:       true,
		DefaultLimit:  1,
		DefaultWindow: time.Hour,
		Rules:         DefaultRules(),
	})
	defer limiter.Stop()

	for i := 0; i < 50; i++ {
		allowed, _ := limiter.Allow("1.2.3.4", "/health", "GET")
		require.True(t, allowed)
	}
}

func TestDisabledAllowsEverything(t *testing.T) {
	limiter := NewLimiter(&Config{Enabled: false})
	defer limiter.Stop()

	for i := 0; i < 100; i++ {
		allowed, _ := limiter.Allow("1.2.3.4", "/candidate/match-check", "POST")
		require.True(t, allowed)
	}
}

func TestMatchPrecedence(t *testing.T) {
	cfg := testConfig(DefaultRules()...)

	rule := cfg.match("/candidate/match-check", "POST")
	assert.Equal(t, "match-check", rule.Name)

	rule = cfg.match("/candidate/posts", "POST")
	assert.Equal(t, "candidate-write", rule.Name)

	rule = cfg.match("/jobs", "GET")
	assert.Equal(t, "default", rule.Name)
	assert.Equal(t, 100, rule.Limit)

	// Method must match for method-specific rules.
	rule = cfg.match("/recruiter/jobs/abc/applications", "GET")
	assert.Equal(t, "default", rule.Name)
}
