package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

type contextKey string

const (
	sessionClaimsKey contextKey = "sessionClaims"
	sessionIssuer               = "snabb-mock"
)

// ErrSessionSecretRequired is returned when signing without a secret.
var ErrSessionSecretRequired = errors.New("session secret is required")

// IssueSessionToken signs an HS256 session token for subject, valid for ttl
// from now.
func IssueSessionToken(secret, subject string, ttl time.Duration, now time.Time) (string, error) {
	if secret == "" {
		return "", ErrSessionSecretRequired
	}
	claims := jwt.RegisteredClaims{
		Issuer:    sessionIssuer,
		Subject:   subject,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

// SessionOption configures SessionJWT.
type SessionOption func(*sessionConfig)

type sessionConfig struct {
	now func() time.Time
}

// WithSessionClock validates exp and iat against now instead of wall time.
// Pair it with the clock passed to IssueSessionToken.
func WithSessionClock(now func() time.Time) SessionOption {
	return func(c *sessionConfig) {
		if now != nil {
			c.now = now
		}
	}
}

// SessionJWT requires a bearer token minted by IssueSessionToken with the same
// secret. Accepted claims are stored on the request context.
func SessionJWT(secret string, opts ...SessionOption) func(http.Handler) http.Handler {
	cfg := sessionConfig{now: time.Now}
	for _, opt := range opts {
		opt(&cfg)
	}
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(sessionIssuer),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithTimeFunc(cfg.now),
	)
	key := func(*jwt.Token) (any, error) { return []byte(secret), nil }

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if secret == "" {
				unauthorized(w, "session auth disabled")
				return
			}
			raw, ok := bearerToken(r)
			if !ok {
				unauthorized(w, "missing bearer token")
				return
			}
			var claims jwt.RegisteredClaims
			if _, err := parser.ParseWithClaims(raw, &claims, key); err != nil {
				unauthorized(w, "invalid token")
				return
			}
			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), sessionClaimsKey, claims)))
		})
	}
}

// SessionClaimsFromContext returns the claims SessionJWT accepted.
func SessionClaimsFromContext(ctx context.Context) (jwt.RegisteredClaims, bool) {
	claims, ok := ctx.Value(sessionClaimsKey).(jwt.RegisteredClaims)
	return claims, ok
}

// bearerToken extracts the credentials of an Authorization header. The scheme
// is matched case-insensitively.
func bearerToken(r *http.Request) (string, bool) {
	scheme, token, found := strings.Cut(r.Header.Get("Authorization"), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

func unauthorized(w http.ResponseWriter, msg string) {
	w.Header().Set("WWW-Authenticate", `Bearer realm="snabb"`)
	http.Error(w, msg, http.StatusUnauthorized)
}
