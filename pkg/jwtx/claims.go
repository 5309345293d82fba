package jwtx

import (
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/RafatAiub/AmarBin-Backend/pkg/idx"
)

// Default token TTL constants for standard JWT flows.
// These provide sensible security defaults but can be overridden per-service.
const (
	// DefaultAccessTokenTTL is the default lifetime for access tokens.
	// Short-lived for security - typical range is 15m to 1h.
	DefaultAccessTokenTTL = 15 * time.Minute

	// DefaultRefreshTokenTTL is the default lifetime for refresh tokens.
	// Longer-lived for user convenience - typical range is 7d to 30d.
	DefaultRefreshTokenTTL = 7 * 24 * time.Hour
)

// Token type discriminators carried in the "typ" claim. Access and refresh
// tokens are signed with distinct secrets; the claim additionally stops a
// refresh token from being replayed on the access path if both secrets are
// ever misconfigured to the same value.
const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
)

// Claims are the token claims used across the service.
type Claims struct {
	jwt.RegisteredClaims

	// TokenType discriminates access tokens from refresh tokens.
	TokenType string `json:"typ,omitempty"`

	// Role is the account role at issuance time. Authorization re-checks the
	// stored account on every request, this is a hint for clients.
	Role string `json:"role,omitempty"`
}

// NewAccessClaims builds minimally-correct access-token claims. The jti is a
// fresh ULID so tokens from the same second stay distinct and sortable.
func NewAccessClaims(subject, role, issuer string, ttl time.Duration, now time.Time) Claims {
	return Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			ID:        idx.New().String(),
		},
		TokenType: TokenTypeAccess,
		Role:      role,
	}
}

// NewRefreshClaims builds minimally-correct refresh-token claims. Refresh
// tokens carry no role, they are only good for minting new pairs.
func NewRefreshClaims(subject, issuer string, ttl time.Duration, now time.Time) Claims {
	return Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			ID:        idx.New().String(),
		},
		TokenType: TokenTypeRefresh,
	}
}

// ValidateIssuer checks if the issuer matches expected value.
func (c *Claims) ValidateIssuer(expected string) error {
	if expected == "" {
		return nil // nothing to enforce
	}

	if c.Issuer != expected {
		return ErrIssuer
	}

	return nil
}

// ValidateTokenType checks the "typ" discriminator.
func (c *Claims) ValidateTokenType(expected string) error {
	if c.TokenType != expected {
		return ErrTokenType
	}
	return nil
}
