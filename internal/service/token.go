package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/RafatAiub/AmarBin-Backend/internal/domain"
	"github.com/RafatAiub/AmarBin-Backend/internal/revocation"
	"github.com/RafatAiub/AmarBin-Backend/pkg/cryptox"
	"github.com/RafatAiub/AmarBin-Backend/pkg/jwtx"
	"github.com/RafatAiub/AmarBin-Backend/pkg/slogx"
)

// TokenService issues, verifies, and revokes the access/refresh token pair.
// Access and refresh tokens are signed with distinct secrets so a leak of
// one cannot forge the other; the "typ" claim stops cross-replay on top.
type TokenService struct {
	AccessSigner    *jwtx.HS256Signer
	AccessVerifier  *jwtx.HS256Verifier
	RefreshSigner   *jwtx.HS256Signer
	RefreshVerifier *jwtx.HS256Verifier
	Cache           revocation.Cache
	Issuer          string
	AccessTTL       time.Duration
	RefreshTTL      time.Duration
}

// IssuePair mints a fresh access/refresh pair for an account. Signing only
// fails on secret misconfiguration, which config validation rules out before
// the server accepts traffic.
func (s *TokenService) IssuePair(ctx context.Context, accountID string, role domain.Role, now time.Time) (domain.TokenPair, error) {
	access, err := s.AccessSigner.Sign(jwtx.NewAccessClaims(accountID, string(role), s.Issuer, s.AccessTTL, now))
	if err != nil {
		return domain.TokenPair{}, fmt.Errorf("sign access token: %w", err)
	}

	refresh, err := s.RefreshSigner.Sign(jwtx.NewRefreshClaims(accountID, s.Issuer, s.RefreshTTL, now))
	if err != nil {
		return domain.TokenPair{}, fmt.Errorf("sign refresh token: %w", err)
	}

	return domain.TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    "Bearer",
		ExpiresIn:    int64(s.AccessTTL.Seconds()),
	}, nil
}

// VerifyAccess checks signature, expiry, token type, and the revocation
// blacklist. A cache outage degrades to "cannot confirm revocation, proceed"
// with a logged warning; it never rejects the request on its own.
func (s *TokenService) VerifyAccess(ctx context.Context, token string) (jwtx.Claims, error) {
	claims, err := s.AccessVerifier.Verify(token)
	if err != nil {
		return jwtx.Claims{}, mapTokenError(err)
	}
	if err := claims.ValidateTokenType(jwtx.TokenTypeAccess); err != nil {
		return jwtx.Claims{}, ErrWrongTokenType
	}

	revoked, err := s.Cache.Exists(ctx, cryptox.FingerprintToken(token))
	if err != nil {
		slogx.FromContext(ctx).Warn("revocation check degraded, proceeding without blacklist",
			slogx.Err(err))
	} else if revoked {
		return jwtx.Claims{}, ErrTokenRevoked
	}

	return claims, nil
}

// VerifyRefresh checks signature, expiry, and token type against the refresh
// secret. Refresh revocation is store-side (presence in the live set), so
// there is no blacklist consult here.
func (s *TokenService) VerifyRefresh(ctx context.Context, token string) (jwtx.Claims, error) {
	claims, err := s.RefreshVerifier.Verify(token)
	if err != nil {
		return jwtx.Claims{}, mapTokenError(err)
	}
	if err := claims.ValidateTokenType(jwtx.TokenTypeRefresh); err != nil {
		return jwtx.Claims{}, ErrWrongTokenType
	}
	return claims, nil
}

// RevokeAccess blacklists an access token for its remaining lifetime. When
// the cache is down this degrades to a logged warning rather than an error:
// the system favors availability over perfect revocation, and the token
// still dies at its natural expiry.
func (s *TokenService) RevokeAccess(ctx context.Context, token string, ttl time.Duration, reason string) {
	if ttl <= 0 {
		return // already expired, nothing to block
	}
	if err := s.Cache.Set(ctx, cryptox.FingerprintToken(token), reason, ttl); err != nil {
		slogx.FromContext(ctx).Warn("blacklist insert skipped, cache unavailable",
			slogx.Err(err), "reason", reason)
	}
}

// mapTokenError converts jwtx verification failures into the service
// taxonomy. Everything unrecognised collapses into ErrTokenInvalid so the
// caller cannot leak parser detail.
func mapTokenError(err error) error {
	switch {
	case errors.Is(err, jwtx.ErrExpired):
		return ErrTokenExpired
	case errors.Is(err, jwtx.ErrTokenType):
		return ErrWrongTokenType
	default:
		return fmt.Errorf("%w: %v", ErrTokenInvalid, err)
	}
}
