// ABOUTME: Bearer-token authentication middleware for the HTTP API
// ABOUTME: Verifies HMAC-signed JWTs; an empty secret disables auth entirely

package server

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

// AuthMiddleware validates Authorization headers on protected routes
type AuthMiddleware struct {
	secret []byte
}

// NewAuthMiddleware creates the middleware. With an empty secret every
// request passes, which keeps local development friction-free.
func NewAuthMiddleware(secret string) *AuthMiddleware {
	return &AuthMiddleware{secret: []byte(secret)}
}

// Enabled reports whether token verification is active
func (a *AuthMiddleware) Enabled() bool {
	return len(a.secret) > 0
}

// Authenticate rejects requests without a valid bearer token
func (a *AuthMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !a.Enabled() {
			next.ServeHTTP(w, r)

			return
		}

		header := r.Header.Get("Authorization")
		if header == "" {
			writeError(w, http.StatusUnauthorized, "missing authorization header")

			return
		}

		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok {
			writeError(w, http.StatusUnauthorized, "authorization header must use the Bearer scheme")

			return
		}

		if err := a.verify(token); err != nil {
			writeError(w, http.StatusUnauthorized, "invalid token")

			return
		}

		next.ServeHTTP(w, r)
	})
}

// verify parses and validates the JWT signature and standard claims
func (a *AuthMiddleware) verify(token string) error {
	parsed, err := jwt.Parse(token, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}

		return a.secret, nil
	}, jwt.WithValidMethods([]string{"HS256", "HS384", "HS512"}))
	if err != nil {
		return fmt.Errorf("token parse failed: %w", err)
	}

	if !parsed.Valid {
		return fmt.Errorf("token invalid")
	}

	return nil
}
