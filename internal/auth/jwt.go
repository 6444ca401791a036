// Package auth provides JWT issuance/verification, password hashing, the
// OAuth provider handshake, and the access-gate middleware.
//
// AUTHENTICATION FLOW OVERVIEW:
//  1. A user registers with POST /register, then logs in with POST /login,
//     OR visits /oauth/{provider} and completes the provider's redirect flow
//  2. Either path ends with the server issuing a signed bearer token
//  3. On subsequent API calls the client sends the token in the
//     Authorization header (raw or "Bearer "-prefixed)
//  4. The gate middleware verifies the token and attaches the resolved
//     Principal to the request context
//
// Tokens are stateless — no session store backs them, the server only needs
// the signing secret to verify. The flip side is that revocation before
// expiry is not supported; the TTL is the only bound on a token's life.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const issuer = "storefront"

// Verification failures, classified so callers can distinguish a token
// that never parsed from one that parsed but failed its checks.
var (
	ErrTokenMalformed = errors.New("auth: malformed token")
	ErrTokenSignature = errors.New("auth: invalid token signature")
	ErrTokenExpired   = errors.New("auth: token expired")
)

// Claims is the payload embedded in every issued token. Subject carries
// the internal user ID; IsAdmin rides along so the admin gate can decide
// without a database lookup.
type Claims struct {
	IsAdmin bool `json:"isAdmin"`
	jwt.RegisteredClaims
}

// TokenService issues and verifies HS256-signed bearer tokens.
//
// It holds the HMAC secret and the configured token lifetime. Both come
// from configuration at construction — the service reads no globals.
type TokenService struct {
	secret []byte
	ttl    time.Duration
}

// NewTokenService creates a TokenService with the given secret and token
// lifetime. The secret should be at least 32 bytes of random data in
// production (openssl rand -hex 32); anything under 16 characters is
// rejected outright.
func NewTokenService(secret string, ttl time.Duration) (*TokenService, error) {
	if len(secret) < 16 {
		return nil, errors.New("auth: JWT secret must be at least 16 characters")
	}
	if ttl <= 0 {
		return nil, errors.New("auth: token TTL must be positive")
	}
	return &TokenService{secret: []byte(secret), ttl: ttl}, nil
}

// Issue creates and signs a token for the given user with the configured TTL.
func (s *TokenService) Issue(userID string, isAdmin bool) (string, error) {
	return s.IssueWithTTL(userID, isAdmin, s.ttl)
}

// IssueWithTTL creates a token with an explicit lifetime. Used by tests to
// mint already-expired tokens.
func (s *TokenService) IssueWithTTL(userID string, isAdmin bool, ttl time.Duration) (string, error) {
	now := time.Now()

	c := Claims{
		IsAdmin: isAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			Issuer:    issuer,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, c)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("auth: signing token: %w", err)
	}

	return signed, nil
}

// Verify parses and checks a token string, returning the embedded claims.
//
// Checks performed (by the jwt library):
//   - Signature is valid and the algorithm is HS256. Restricting the
//     algorithm blocks "alg confusion" tokens signed with none/RS256.
//   - Token is not expired.
//   - Issuer matches, so tokens minted by other apps sharing a secret
//     by accident are rejected.
//
// Failures come back as one of ErrTokenMalformed, ErrTokenSignature or
// ErrTokenExpired (wrapped), never as raw library errors.
func (s *TokenService) Verify(tokenStr string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(
		tokenStr,
		&Claims{},
		func(token *jwt.Token) (any, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("auth: unexpected signing method: %v", token.Header["alg"])
			}
			return s.secret, nil
		},
		jwt.WithValidMethods([]string{"HS256"}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, fmt.Errorf("%w", ErrTokenExpired)
		case errors.Is(err, jwt.ErrTokenMalformed):
			return nil, fmt.Errorf("%w: %v", ErrTokenMalformed, err)
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return nil, fmt.Errorf("%w", ErrTokenSignature)
		default:
			return nil, fmt.Errorf("%w: %v", ErrTokenMalformed, err)
		}
	}

	c, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("%w: bad claims", ErrTokenMalformed)
	}

	if c.Subject == "" {
		return nil, fmt.Errorf("%w: no subject", ErrTokenMalformed)
	}

	return c, nil
}
