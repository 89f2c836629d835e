// Package ratelimit provides per-client rate limiting on top of token buckets.
package ratelimit

import (
	"math"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Info contains information about rate limit status.
type Info struct {
	Allowed    bool
	Limit      int // burst capacity; 0 when unlimited
	Remaining  int
	RetryAfter time.Duration
}

type bucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// Limiter manages rate limiting for multiple clients.
type Limiter struct {
	config *Config
	now    func() time.Time

	mu      sync.Mutex
	buckets map[string]*bucket // clientID:method:path -> bucket

	stop     chan struct{}
	stopOnce sync.Once
}

// NewLimiter creates a new rate limiter with the given configuration and
// starts the background sweeper when limiting is enabled.
func NewLimiter(config *Config) *Limiter {
	if config == nil {
		config = NewConfig(true, 10, 20)
	}

	l := &Limiter{
		config:  config,
		now:     time.Now,
		buckets: make(map[string]*bucket),
		stop:    make(chan struct{}),
	}

	if config.Enabled && config.CleanupInterval > 0 {
		go l.sweep(config.CleanupInterval)
	}
	return l
}

// Allow checks if a request from the given client is allowed for the specified endpoint.
func (l *Limiter) Allow(clientID, path, method string) (bool, Info) {
	if !l.config.Enabled || l.config.Whitelist[clientID] {
		return true, Info{Allowed: true}
	}
	if l.config.Blacklist[clientID] {
		return false, Info{}
	}

	endpoint := MatchEndpoint(path, method, l.config.EndpointConfigs)
	key := clientID + ":" + method + ":" + path
	if endpoint == nil {
		endpoint = &EndpointConfig{RPS: l.config.DefaultRPS, Burst: l.config.DefaultBurst}
		// default tier is shared across paths
		key = clientID
	} else if endpoint.Path != "" && endpoint.Path != path {
		key = clientID + ":" + method + ":" + endpoint.Path
	}

	if endpoint.RPS <= 0 {
		return true, Info{Allowed: true}
	}

	now := l.now()
	lim := l.limiter(key, endpoint, now)

	burst := lim.Burst()
	if lim.AllowN(now, 1) {
		return true, Info{
			Allowed:   true,
			Limit:     burst,
			Remaining: int(math.Max(0, lim.TokensAt(now))),
		}
	}

	r := lim.ReserveN(now, 1)
	retry := r.DelayFrom(now)
	r.CancelAt(now)

	return false, Info{
		Allowed:    false,
		Limit:      burst,
		Remaining:  0,
		RetryAfter: retry,
	}
}

func (l *Limiter) limiter(key string, endpoint *EndpointConfig, now time.Time) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	b, ok := l.buckets[key]
	if !ok {
		burst := endpoint.Burst
		if burst <= 0 {
			burst = int(math.Ceil(endpoint.RPS))
		}
		b = &bucket{limiter: rate.NewLimiter(rate.Limit(endpoint.RPS), burst)}
		l.buckets[key] = b
	}
	b.lastSeen = now
	return b.limiter
}

func (l *Limiter) sweep(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			l.cleanup()
		case <-l.stop:
			return
		}
	}
}

// cleanup forgets clients idle for longer than the configured timeout.
func (l *Limiter) cleanup() {
	idle := l.config.IdleTimeout
	if idle <= 0 {
		idle = time.Hour
	}
	cutoff := l.now().Add(-idle)

	l.mu.Lock()
	defer l.mu.Unlock()
	for key, b := range l.buckets {
		if b.lastSeen.Before(cutoff) {
			delete(l.buckets, key)
		}
	}
}

// Size returns the number of tracked buckets.
func (l *Limiter) Size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.buckets)
}

// Stop stops the sweeper. It is safe to call more than once.
func (l *Limiter) Stop() {
	l.stopOnce.Do(func() { close(l.stop) })
}
