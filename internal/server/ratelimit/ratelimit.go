// Package ratelimit provides per-client request limiting using token buckets.
package ratelimit

import (
	"sync"
	"time"
)

// bucket is a token bucket: capacity tokens, refilled at a steady rate.
type bucket struct {
	mu         sync.Mutex
	capacity   int
	refillRate float64 // tokens per second
	tokens     float64
	lastRefill time.Time
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

// status reports remaining tokens and when the bucket refills completely.
func (b *bucket) status() (remaining int, resetTime time.Time) {
	b.mu.Lock()
	defer b.mu.Unlock()
	now := time.Now()
	b.refillLocked(now)

	remaining = int(b.tokens)
	if b.tokens < float64(b.capacity) {
		secondsUntilFull := (float64(b.capacity) - b.tokens) / b.refillRate
		resetTime = now.Add(time.Duration(secondsUntilFull * float64(time.Second)))
	} else {
		resetTime = now
	}
	return remaining, resetTime
}

// Info describes the rate limit status returned alongside each decision.
type Info struct {
	Allowed    bool
	Limit      int
	Remaining  int
	ResetTime  time.Time
	RetryAfter time.Duration
}

// Config holds rate limiting configuration.
type Config struct {
	Enabled         bool
	DefaultLimit    int
	DefaultWindow   time.Duration
	CleanupInterval time.Duration
	Whitelist       map[string]bool
	Blacklist       map[string]bool
	EndpointConfigs []EndpointConfig
}

// Limiter tracks one token bucket per (client, endpoint, method).
type Limiter struct {
	mu         sync.RWMutex
	buckets    map[string]*bucket
	config     *Config
	accessMu   sync.RWMutex
	lastAccess map[string]time.Time
	ticker     *time.Ticker
	stop       chan struct{}
}

// NewLimiter creates a rate limiter. A nil config enables a permissive default.
func NewLimiter(config *Config) *Limiter {
	if config == nil {
		config = &Config{
			Enabled:         true,
			DefaultLimit:    1000,
			DefaultWindow:   time.Minute,
			CleanupInterval: 5 * time.Minute,
			Whitelist:       make(map[string]bool),
			Blacklist:       make(map[string]bool),
		}
	}

	l := &Limiter{
		buckets:    make(map[string]*bucket),
		config:     config,
		lastAccess: make(map[string]time.Time),
	}

	if config.Enabled && config.CleanupInterval > 0 {
		l.ticker = time.NewTicker(config.CleanupInterval)
		l.stop = make(chan struct{})
		go l.cleanupLoop()
	}

	return l
}

// Allow decides whether a request from clientID against endpoint/method may
// proceed, and returns the limit status either way.
func (l *Limiter) Allow(clientID, endpoint, method string) (bool, Info) {
	if !l.config.Enabled || l.config.Whitelist[clientID] {
		return true, Info{Allowed: true}
	}
	if l.config.Blacklist[clientID] {
		return false, Info{}
	}

	cfg := MatchEndpoint(endpoint, method, l.config.EndpointConfigs)
	if cfg == nil {
		cfg = &EndpointConfig{
			Limit:  l.config.DefaultLimit,
			Window: l.config.DefaultWindow,
			Burst:  l.config.DefaultLimit,
		}
	}
	if cfg.Limit <= 0 {
		// Unlimited endpoint, e.g. the health check.
		return true, Info{Allowed: true}
	}

	key := clientID + ":" + endpoint + ":" + method
	b := l.getBucket(key, cfg.Limit, cfg.Window, cfg.Burst)

	l.accessMu.Lock()
	l.lastAccess[key] = time.Now()
	l.accessMu.Unlock()

	allowed := b.take()
	remaining, resetTime := b.status()

	var retryAfter time.Duration
	if !allowed {
		if retryAfter = time.Until(resetTime); retryAfter < 0 {
			retryAfter = 0
		}
	}

	return allowed, Info{
		Allowed:    allowed,
		Limit:      cfg.Limit,
		Remaining:  remaining,
		ResetTime:  resetTime,
		RetryAfter: retryAfter,
	}
}

func (l *Limiter) getBucket(key string, limit int, window time.Duration, burst int) *bucket {
	l.mu.RLock()
	b, ok := l.buckets[key]
	l.mu.RUnlock()
	if ok {
		return b
	}

	capacity := burst
	if capacity <= 0 {
		capacity = limit
	}
	b = newBucket(capacity, float64(limit)/window.Seconds())

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
		case <-l.ticker.C:
			l.dropStaleBuckets()
		case <-l.stop:
			return
		}
	}
}

// dropStaleBuckets removes buckets idle for over an hour.
func (l *Limiter) dropStaleBuckets() {
	cutoff := time.Now().Add(-1 * time.Hour)

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

// Stop halts the background cleanup goroutine.
func (l *Limiter) Stop() {
	if l.ticker != nil {
		l.ticker.Stop()
	}
	if l.stop != nil {
		close(l.stop)
	}
}
