package ratelimit

import (
	"strings"
	"time"
)

// EndpointConfig represents rate limiting configuration for a specific endpoint.
type EndpointConfig struct {
	Path   string  // Endpoint path pattern (supports prefix matching)
	Method string  // HTTP method (GET, POST, etc.)
	RPS    float64 // Sustained requests per second; 0 or less is unlimited
	Burst  int     // Burst capacity (defaults to ceil(RPS) if 0)
}

// Config holds rate limiting configuration.
type Config struct {
	Enabled         bool
	DefaultRPS      float64
	DefaultBurst    int
	CleanupInterval time.Duration
	IdleTimeout     time.Duration // clients unseen for this long are forgotten
	Whitelist       map[string]bool
	Blacklist       map[string]bool
	EndpointConfigs []EndpointConfig
}

// NewConfig builds a configuration with the default endpoint tiers.
func NewConfig(enabled bool, rps float64, burst int) *Config {
	return &Config{
		Enabled:         enabled,
		DefaultRPS:      rps,
		DefaultBurst:    burst,
		CleanupInterval: 5 * time.Minute,
		IdleTimeout:     time.Hour,
		Whitelist:       make(map[string]bool),
		Blacklist:       make(map[string]bool),
		EndpointConfigs: DefaultEndpointConfigs(),
	}
}

// DefaultEndpointConfigs returns the default endpoint-specific configurations.
func DefaultEndpointConfigs() []EndpointConfig {
	return []EndpointConfig{
		// Tier 1: access code guessing (strictest)
		{Path: "/api/auth/code", Method: "POST", RPS: 0.2, Burst: 5},

		// Tier 2: writes that score or assemble
		{Path: "/api/mini-tests/", Method: "POST", RPS: 2, Burst: 10},
		{Path: "/api/runs/", Method: "POST", RPS: 1, Burst: 5},
		{Path: "/api/admin/", Method: "POST", RPS: 1, Burst: 5},

		// Tier 3: reads use the default limit
	}
}

// ParseIPList parses a comma-separated list of IP addresses into a set.
func ParseIPList(list string) map[string]bool {
	result := make(map[string]bool)
	for _, ip := range strings.Split(list, ",") {
		ip = strings.TrimSpace(ip)
		if ip != "" {
			result[ip] = true
		}
	}
	return result
}
