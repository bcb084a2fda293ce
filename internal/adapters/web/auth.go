package web

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"distribution-backend/internal/core"

	"github.com/golang-jwt/jwt/v5"
)

// jwtClaims is the JWT payload struct used for signing and parsing. The
// subject is recorded as the actor of every change the request makes.
type jwtClaims struct {
	Role string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// IssueToken signs an HS256 token for subject, valid for ttl.
func IssueToken(secret, issuer, subject, role string, ttl time.Duration) (string, error) {
	if secret == "" {
		return "", fmt.Errorf("jwt secret is not configured")
	}
	if strings.TrimSpace(subject) == "" {
		return "", fmt.Errorf("subject is required")
	}
	now := time.Now()
	claims := &jwtClaims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			Issuer:    issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

// RequireAuth is chi middleware that validates a bearer token (or the
// auth_token cookie) and attaches its subject as the acting user. With no
// secret configured every request passes as the system actor.
func (h *Handler) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if h.jwtSecret == "" {
			next.ServeHTTP(w, r)
			return
		}

		raw := bearerToken(r)
		if raw == "" {
			writeError(w, r, "authentication required", "UNAUTHORIZED", http.StatusUnauthorized)
			return
		}

		claims := &jwtClaims{}
		opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})}
		if h.jwtIssuer != "" {
			opts = append(opts, jwt.WithIssuer(h.jwtIssuer))
		}
		token, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
			return []byte(h.jwtSecret), nil
		}, opts...)
		if err != nil || !token.Valid || claims.Subject == "" {
			writeError(w, r, "invalid or expired token", "UNAUTHORIZED", http.StatusUnauthorized)
			return
		}

		ctx := core.WithActor(r.Context(), claims.Subject)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func bearerToken(r *http.Request) string {
	if header := r.Header.Get("Authorization"); header != "" {
		scheme, token, ok := strings.Cut(header, " ")
		if ok && strings.EqualFold(scheme, "Bearer") {
			return strings.TrimSpace(token)
		}
		return ""
	}
	if cookie, err := r.Cookie("auth_token"); err == nil {
		return cookie.Value
	}
	return ""
}
