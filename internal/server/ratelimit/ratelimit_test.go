package ratelimit

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLimiter(t *testing.T, cfg *Config) (*Limiter, *time.Time) {
	t.Helper()
	cfg.CleanupInterval = 0 // no sweeper; tests call cleanup directly
	l := NewLimiter(cfg)
	t.Cleanup(l.Stop)

	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return now }
	return l, &now
}

func TestLimiter_Allow(t *testing.T) {
	l, _ := newTestLimiter(t, NewConfig(true, 1, 3))

	for i := 0; i < 3; i++ {
		allowed, info := l.Allow("10.0.0.1", "/api/archetypes", "GET")
		require.True(t, allowed, "request %d", i)
		assert.Equal(t, 3, info.Limit)
		assert.Equal(t, 2-i, info.Remaining)
	}

	allowed, info := l.Allow("10.0.0.1", "/api/archetypes", "GET")
	assert.False(t, allowed)
	assert.Equal(t, time.Second, info.RetryAfter)

	// other clients have their own bucket
	allowed, _ = l.Allow("10.0.0.2", "/api/archetypes", "GET")
	assert.True(t, allowed)
}

func TestLimiter_Refill(t *testing.T) {
	l, now := newTestLimiter(t, NewConfig(true, 2, 1))

	allowed, _ := l.Allow("c", "/api/shadows", "GET")
	require.True(t, allowed)
	allowed, _ = l.Allow("c", "/api/shadows", "GET")
	require.False(t, allowed)

	*now = now.Add(500 * time.Millisecond)
	allowed, _ = l.Allow("c", "/api/shadows", "GET")
	assert.True(t, allowed)
}

func TestLimiter_DefaultTierSharedAcrossPaths(t *testing.T) {
	l, _ := newTestLimiter(t, NewConfig(true, 1, 2))

	allowed, _ := l.Allow("c", "/api/archetypes", "GET")
	require.True(t, allowed)
	allowed, _ = l.Allow("c", "/api/shadows", "GET")
	require.True(t, allowed)
	allowed, _ = l.Allow("c", "/api/luminaries", "GET")
	assert.False(t, allowed)
}

func TestLimiter_EndpointSpecific(t *testing.T) {
	cfg := NewConfig(true, 100, 100)
	cfg.EndpointConfigs = []EndpointConfig{
		{Path: "/api/auth/code", Method: "POST", RPS: 1, Burst: 1},
		{Path: "/api/runs/", Method: "POST", RPS: 1, Burst: 2},
	}
	l, _ := newTestLimiter(t, cfg)

	allowed, _ := l.Allow("c", "/api/auth/code", "POST")
	require.True(t, allowed)
	allowed, _ = l.Allow("c", "/api/auth/code", "POST")
	assert.False(t, allowed)

	// prefix tier is shared by every run id
	allowed, _ = l.Allow("c", "/api/runs/r1/complete", "POST")
	require.True(t, allowed)
	allowed, _ = l.Allow("c", "/api/runs/r2/complete", "POST")
	require.True(t, allowed)
	allowed, _ = l.Allow("c", "/api/runs/r3/complete", "POST")
	assert.False(t, allowed)

	// GET falls through to the default tier
	allowed, _ = l.Allow("c", "/api/auth/code", "GET")
	assert.True(t, allowed)
}

func TestLimiter_ProbesUnlimited(t *testing.T) {
	l, _ := newTestLimiter(t, NewConfig(true, 1, 1))

	for i := 0; i < 10; i++ {
		allowed, info := l.Allow("c", "/health", "GET")
		require.True(t, allowed)
		assert.Zero(t, info.Limit)
	}
	allowed, _ := l.Allow("c", "/metrics", "GET")
	assert.True(t, allowed)
	assert.Zero(t, l.Size())
}

func TestLimiter_WhitelistBlacklist(t *testing.T) {
	cfg := NewConfig(true, 1, 1)
	cfg.Whitelist = ParseIPList("10.0.0.1, 10.0.0.9")
	cfg.Blacklist = ParseIPList("10.6.6.6")
	l, _ := newTestLimiter(t, cfg)

	for i := 0; i < 5; i++ {
		allowed, _ := l.Allow("10.0.0.1", "/api/shadows", "GET")
		require.True(t, allowed)
	}

	allowed, _ := l.Allow("10.6.6.6", "/api/shadows", "GET")
	assert.False(t, allowed)
}

func TestLimiter_Disabled(t *testing.T) {
	l, _ := newTestLimiter(t, NewConfig(false, 1, 1))

	for i := 0; i < 5; i++ {
		allowed, _ := l.Allow("c", "/api/auth/code", "POST")
		require.True(t, allowed)
	}
	assert.Zero(t, l.Size())
}

func TestLimiter_Cleanup(t *testing.T) {
	cfg := NewConfig(true, 10, 10)
	cfg.IdleTimeout = time.Minute
	l, now := newTestLimiter(t, cfg)

	l.Allow("old", "/api/shadows", "GET")
	*now = now.Add(2 * time.Minute)
	l.Allow("fresh", "/api/shadows", "GET")
	require.Equal(t, 2, l.Size())

	l.cleanup()
	assert.Equal(t, 1, l.Size())
}

func TestLimiter_Concurrent(t *testing.T) {
	l, _ := newTestLimiter(t, NewConfig(true, 1, 50))

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		allowed int
	)
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if ok, _ := l.Allow("c", "/api/shadows", "GET"); ok {
				mu.Lock()
				allowed++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 50, allowed)
}

func TestLimiter_StopIdempotent(t *testing.T) {
	l := NewLimiter(nil)
	l.Stop()
	assert.NotPanics(t, l.Stop)
}

func TestMatchEndpoint(t *testing.T) {
	configs := DefaultEndpointConfigs()

	m := MatchEndpoint("/api/auth/code", "POST", configs)
	require.NotNil(t, m)
	assert.Equal(t, "/api/auth/code", m.Path)

	m = MatchEndpoint("/api/mini-tests/mini-clarity/submit", "POST", configs)
	require.NotNil(t, m)
	assert.Equal(t, "/api/mini-tests/", m.Path)

	assert.Nil(t, MatchEndpoint("/api/mini-tests/mini-clarity", "GET", configs))
}

func TestLimiter_SweeperEvictsIdleClients(t *testing.T) {
	cfg := NewConfig(true, 1, 1)
	cfg.CleanupInterval = 5 * time.Millisecond
	cfg.IdleTimeout = time.Millisecond

	l := NewLimiter(cfg)
	defer l.Stop()

	l.Allow("10.0.0.9", "/api/archetypes", "GET")
	require.Equal(t, 1, l.Size())

	assert.Eventually(t, func() bool { return l.Size() == 0 }, time.Second, 5*time.Millisecond)
}
