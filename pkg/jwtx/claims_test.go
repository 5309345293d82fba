package jwtx_test

import (
	"testing"
	"time"

	"github.com/RafatAiub/AmarBin-Backend/pkg/idx"
	"github.com/RafatAiub/AmarBin-Backend/pkg/jwtx"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

func TestValidateIssuer(t *testing.T) {
	c := &jwtx.Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer: "amarbin-api",
		},
	}

	t.Run("matching issuer", func(t *testing.T) {
		require.NoError(t, c.ValidateIssuer("amarbin-api"))
	})

	t.Run("empty expected issuer", func(t *testing.T) {
		require.NoError(t, c.ValidateIssuer(""))
	})

	t.Run("mismatched issuer", func(t *testing.T) {
		err := c.ValidateIssuer("other-service")
		require.ErrorIs(t, err, jwtx.ErrIssuer)
	})
}

func TestValidateTokenType(t *testing.T) {
	access := &jwtx.Claims{TokenType: jwtx.TokenTypeAccess}
	refresh := &jwtx.Claims{TokenType: jwtx.TokenTypeRefresh}

	t.Run("matching type", func(t *testing.T) {
		require.NoError(t, access.ValidateTokenType(jwtx.TokenTypeAccess))
		require.NoError(t, refresh.ValidateTokenType(jwtx.TokenTypeRefresh))
	})

	t.Run("refresh used as access", func(t *testing.T) {
		err := refresh.ValidateTokenType(jwtx.TokenTypeAccess)
		require.ErrorIs(t, err, jwtx.ErrTokenType)
	})

	t.Run("access used as refresh", func(t *testing.T) {
		err := access.ValidateTokenType(jwtx.TokenTypeRefresh)
		require.ErrorIs(t, err, jwtx.ErrTokenType)
	})
}

func TestNewAccessClaims(t *testing.T) {
	now := time.Now().UTC()
	c := jwtx.NewAccessClaims("user-1", "admin", "amarbin-api", 15*time.Minute, now)

	require.Equal(t, "user-1", c.Subject)
	require.Equal(t, "admin", c.Role)
	require.Equal(t, jwtx.TokenTypeAccess, c.TokenType)
	require.Equal(t, "amarbin-api", c.Issuer)
	require.WithinDuration(t, now.Add(15*time.Minute), c.ExpiresAt.Time, time.Second)

	// jti must be a well-formed ULID
	_, err := idx.Parse(c.ID)
	require.NoError(t, err)
}

func TestNewRefreshClaims(t *testing.T) {
	now := time.Now().UTC()
	c := jwtx.NewRefreshClaims("user-1", "amarbin-api", 7*24*time.Hour, now)

	require.Equal(t, "user-1", c.Subject)
	require.Empty(t, c.Role, "refresh tokens carry no role")
	require.Equal(t, jwtx.TokenTypeRefresh, c.TokenType)
	require.WithinDuration(t, now.Add(7*24*time.Hour), c.ExpiresAt.Time, time.Second)

	_, err := idx.Parse(c.ID)
	require.NoError(t, err)
}

func TestClaimsUniqueJTI(t *testing.T) {
	now := time.Now().UTC()
	a := jwtx.NewAccessClaims("user-1", "user", "", time.Minute, now)
	b := jwtx.NewAccessClaims("user-1", "user", "", time.Minute, now)
	require.NotEqual(t, a.ID, b.ID, "same-instant claims must get distinct jtis")
}
