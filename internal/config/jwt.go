package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// DefaultJWTIssuer is the iss claim stamped on quiz session tokens.
const DefaultJWTIssuer = "raveliquar"

const (
	defaultSessionHours = 24
	minSecretLength     = 16
)

// JWTConfig signs the bearer tokens handed out when an access code is
// redeemed. A token is scoped to one profile; submits, run completion and
// profile updates verify it against Secret and Issuer.
type JWTConfig struct {
	Secret          string
	ExpirationHours int
	Issuer          string
}

// NewJWTConfig reads the session token settings from the environment:
// JWT_SECRET (required, shared by all replicas so a session survives a
// restart), JWT_EXPIRATION_HOURS (default 24) and JWT_ISSUER.
func NewJWTConfig() (*JWTConfig, error) {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required but not set")
	}

	hours, err := sessionHoursFromEnv()
	if err != nil {
		return nil, err
	}

	cfg := &JWTConfig{
		Secret:          secret,
		ExpirationHours: hours,
		Issuer:          os.Getenv("JWT_ISSUER"),
	}
	if cfg.Issuer == "" {
		cfg.Issuer = DefaultJWTIssuer
	}

	if err := cfg.normalize(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func sessionHoursFromEnv() (int, error) {
	raw := os.Getenv("JWT_EXPIRATION_HOURS")
	if raw == "" {
		return defaultSessionHours, nil
	}
	hours, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid JWT_EXPIRATION_HOURS: %v", err)
	}
	return hours, nil
}

// Expiration is how long a quiz session stays valid after redemption.
func (c *JWTConfig) Expiration() time.Duration {
	return time.Duration(c.ExpirationHours) * time.Hour
}

func (c *JWTConfig) normalize() error {
	if c.Secret == "" {
		return fmt.Errorf("JWT_SECRET cannot be empty")
	}
	if len(c.Secret) < minSecretLength {
		return fmt.Errorf("JWT_SECRET must be at least %d characters", minSecretLength)
	}
	if c.ExpirationHours < 1 {
		return fmt.Errorf("JWT_EXPIRATION_HOURS must be at least 1 hour, got: %d", c.ExpirationHours)
	}
	return nil
}
