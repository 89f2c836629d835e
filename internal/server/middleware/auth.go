// Package middleware provides HTTP middleware for authentication and authorization.
package middleware

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/jonathan/raveliquar/internal/types"
)

// ContextKey is a typed key for context values to avoid collisions.
type ContextKey string

const (
	profileIDKey ContextKey = "profileID"
	adminKey     ContextKey = "admin"
)

// AdminKeyHeader carries the shared admin key.
const AdminKeyHeader = "X-Admin-Key"

// TokenValidator is an interface for validating session tokens.
// This allows the middleware to work with any JWT service implementation.
type TokenValidator interface {
	ValidateToken(tokenString string) (ProfileIDGetter, error)
}

// ProfileIDGetter is an interface for extracting the profile ID from token claims.
type ProfileIDGetter interface {
	GetProfileID() uuid.UUID
}

// KeyVerifier checks the admin key. *config.AdminKeyConfig satisfies it.
type KeyVerifier interface {
	Enabled() bool
	VerifyKey(key string) bool
}

func deny(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(types.Envelope{Success: false, Message: message})
}

// bearerToken returns the token of a "Bearer <token>" Authorization header.
// The scheme is matched case-insensitively.
func bearerToken(r *http.Request) (string, bool) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return "", false
	}
	parts := strings.Fields(authHeader)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	token := strings.TrimSpace(parts[1])
	return token, token != ""
}

// AuthMiddleware creates middleware that validates session tokens and adds the profile ID to the request context.
func AuthMiddleware(tokens TokenValidator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenString, ok := bearerToken(r)
			if !ok {
				deny(w, http.StatusUnauthorized, "authentication required")
				return
			}

			claims, err := tokens.ValidateToken(tokenString)
			if err != nil {
				deny(w, http.StatusUnauthorized, "invalid or expired session")
				return
			}

			ctx := context.WithValue(r.Context(), profileIDKey, claims.GetProfileID())
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// AdminMiddleware requires a valid X-Admin-Key header. A missing key is 401;
// a wrong key, or no key configured on the server, is 403.
func AdminMiddleware(keys KeyVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := r.Header.Get(AdminKeyHeader)
			if key == "" {
				deny(w, http.StatusUnauthorized, "admin key required")
				return
			}
			if !keys.Enabled() || !keys.VerifyKey(key) {
				deny(w, http.StatusForbidden, "invalid admin key")
				return
			}

			ctx := context.WithValue(r.Context(), adminKey, true)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// EitherMiddleware accepts an admin key or a session token. When the admin
// header is present it alone decides the outcome.
func EitherMiddleware(tokens TokenValidator, keys KeyVerifier) func(http.Handler) http.Handler {
	admin := AdminMiddleware(keys)
	bearer := AuthMiddleware(tokens)
	return func(next http.Handler) http.Handler {
		viaAdmin := admin(next)
		viaBearer := bearer(next)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Header.Get(AdminKeyHeader) != "" {
				viaAdmin.ServeHTTP(w, r)
				return
			}
			viaBearer.ServeHTTP(w, r)
		})
	}
}

// GetProfileID extracts the authenticated profile ID from the request context.
func GetProfileID(r *http.Request) (uuid.UUID, error) {
	profileID, ok := r.Context().Value(profileIDKey).(uuid.UUID)
	if !ok {
		return uuid.Nil, fmt.Errorf("profile ID not found in request context")
	}
	return profileID, nil
}

// IsAdmin reports whether the request was authenticated with the admin key.
func IsAdmin(r *http.Request) bool {
	admin, _ := r.Context().Value(adminKey).(bool)
	return admin
}

// WithProfileID returns ctx carrying profileID, as AuthMiddleware would set it.
func WithProfileID(ctx context.Context, profileID uuid.UUID) context.Context {
	return context.WithValue(ctx, profileIDKey, profileID)
}
