// Package ratelimit provides token-bucket rate limiting keyed by client
// and endpoint group.
package ratelimit

import (
	"sync"
	"time"
)

// bucket is a token bucket. Tokens refill continuously at refillRate per
// second up to capacity.
type bucket struct {
	capacity   int
	refillRate float64
	tokens     float64
	lastRefill time.Time
	mu         sync.Mutex
}

func newBucket(capacity int, refillRate float64) *bucket {
	return &bucket{
		capacity:   capacity,
		refillRate: refillRate,
		tokens:     float64(capacity),
		lastRefill: time.Now(),
	}
}

func (b *bucket) refillLocked(now time.Time) {
	b.tokens = min(float64(b.capacity), b.tokens+now.Sub(b.lastRefill).Seconds()*b.refillRate)
	b.lastRefill = now
}

// take consumes one token if available.
func (b *bucket) take() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.refillLocked(time.Now())
	if b.tokens >= 1.0 {
		b.tokens -= 1.0
		return true
	}
	return false
}

// status reports the remaining tokens and when the bucket refills fully.
func (b *bucket) status() (remaining int, resetTime time.Time) {
	b.mu.Lock()
	defer b.mu.Unlock()
	now := time.Now()
	b.refillLocked(now)
	remaining = int(b.tokens)
	if b.tokens < float64(b.capacity) {
		missing := float64(b.capacity) - b.tokens
		resetTime = now.Add(time.Duration(missing / b.refillRate * float64(time.Second)))
	} else {
		resetTime = now
	}
	return remaining, resetTime
}

// Info describes the rate-limit state returned with each decision.
type Info struct {
	Allowed    bool
	Limit      int
	Remaining  int
	ResetTime  time.Time
	RetryAfter time.Duration
}

// Limiter applies per-client, per-rule token buckets. Idle buckets are
// reaped to keep the map bounded.
type Limiter struct {
	config     *Config
	buckets    map[string]*bucket
	mu         sync.RWMutex
	lastAccess map[string]time.Time
	accessMu   sync.Mutex

	cleanupTicker *time.Ticker
	cleanupStop   chan struct{}
}

// NewLimiter creates a limiter from config. Nil config means defaults.
func NewLimiter(config *Config) *Limiter {
	if config == nil {
		config = LoadConfig()
	}
	l := &Limiter{
		config:     config,
		buckets:    make(map[string]*bucket),
		lastAccess: make(map[string]time.Time),
	}
	if config.Enabled && config.CleanupInterval > 0 {
		l.cleanupTicker = time.NewTicker(config.CleanupInterval)
		l.cleanupStop = make(chan struct{})
		go l.cleanupLoop()
	}
	return l
}

// Allow decides whether a request from clientID to the given path and
// method may proceed.
func (l *Limiter) Allow(clientID, path, method string) (bool, Info) {
	if !l.config.Enabled {
		return true, Info{Allowed: true}
	}

	rule := l.config.match(path, method)
	if rule.Limit <= 0 {
		return true, Info{Allowed: true}
	}

	key := clientID + ":" + rule.Name
	b := l.getBucket(key, rule)

	l.accessMu.Lock()
	l.lastAccess[key] = time.Now()
	l.accessMu.Unlock()

	allowed := b.take()
	remaining, resetTime := b.status()
	info := Info{
		Allowed:   allowed,
		Limit:     rule.Limit,
		Remaining: remaining,
		ResetTime: resetTime,
	}
	if !allowed {
		if retry := time.Until(resetTime); retry > 0 {
			info.RetryAfter = retry
		}
	}
	return allowed, info
}

func (l *Limiter) getBucket(key string, rule Rule) *bucket {
	l.mu.RLock()
	b, ok := l.buckets[key]
	l.mu.RUnlock()
	if ok {
		return b
	}

	capacity := rule.Burst
	if capacity <= 0 {
		capacity = rule.Limit
	}
	b = newBucket(capacity, float64(rule.Limit)/rule.Window.Seconds())

	l.mu.Lock()
	defer l.mu.Unlock()
	if existing, ok := l.buckets[key]; ok {
		return existing
	}
	l.buckets[key] = b
	return b
}

func (l *Limiter) cleanupLoop() {
	for {
		select {
		case <-l.cleanupTicker.C:
			l.reapIdle()
		case <-l.cleanupStop:
			return
		}
	}
}

func (l *Limiter) reapIdle() {
	cutoff := time.Now().Add(-time.Hour)

	l.mu.Lock()
	defer l.mu.Unlock()
	l.accessMu.Lock()
	defer l.accessMu.Unlock()

	for key, last := range l.lastAccess {
		if last.Before(cutoff) {
			delete(l.buckets, key)
			delete(l.lastAccess, key)
		}
	}
}

// Stop terminates the cleanup goroutine.
func (l *Limiter) Stop() {
	if l.cleanupTicker != nil {
		l.cleanupTicker.Stop()
	}
	if l.cleanupStop != nil {
		close(l.cleanupStop)
	}
}
