package config

import (
	"fmt"
	"os"
	"strconv"

	"golang.org/x/crypto/bcrypt"
)

// AdminKeyConfig holds the bcrypt hash of the shared admin key that protects
// administrative endpoints.
type AdminKeyConfig struct {
	Hash       string
	BcryptCost int
}

// NewAdminKeyConfig creates the admin key configuration from environment
// variables. It reads ADMIN_KEY_HASH (optional; admin routes are refused when
// empty) and BCRYPT_COST (default: 12).
func NewAdminKeyConfig() (*AdminKeyConfig, error) {
	costStr := os.Getenv("BCRYPT_COST")
	if costStr == "" {
		costStr = "12" // default
	}

	cost, err := strconv.Atoi(costStr)
	if err != nil {
		return nil, fmt.Errorf("invalid BCRYPT_COST: %v", err)
	}

	config := &AdminKeyConfig{
		Hash:       os.Getenv("ADMIN_KEY_HASH"),
		BcryptCost: cost,
	}

	if err := config.normalize(); err != nil {
		return nil, err
	}

	return config, nil
}

// normalize validates the configuration.
func (c *AdminKeyConfig) normalize() error {
	if c.BcryptCost < 10 || c.BcryptCost > 14 {
		return fmt.Errorf("bcrypt cost out of range: %d (must be 10-14)", c.BcryptCost)
	}
	if c.Hash != "" {
		if _, err := bcrypt.Cost([]byte(c.Hash)); err != nil {
			return fmt.Errorf("ADMIN_KEY_HASH is not a bcrypt hash: %w", err)
		}
	}
	return nil
}

// Enabled reports whether an admin key is configured.
func (c *AdminKeyConfig) Enabled() bool {
	return c.Hash != ""
}

// HashKey hashes an admin key with the configured cost. Used by the CLI to
// produce a value for ADMIN_KEY_HASH.
func (c *AdminKeyConfig) HashKey(key string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(key), c.BcryptCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash admin key: %w", err)
	}
	return string(hash), nil
}

// VerifyKey reports whether key matches the configured hash. It is always
// false when no hash is configured.
func (c *AdminKeyConfig) VerifyKey(key string) bool {
	if c.Hash == "" || key == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(c.Hash), []byte(key)) == nil
}
