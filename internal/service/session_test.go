package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/RafatAiub/AmarBin-Backend/internal/domain"
	"github.com/RafatAiub/AmarBin-Backend/pkg/jwtx"
)

func TestRegisterAndAuthenticate(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	ctx := context.Background()

	account, pair := registerCustomer(t, env, "new@example.com")
	require.Equal(t, domain.RoleCustomer, account.Role)
	require.Equal(t, "new@example.com", account.Email)
	require.NotEmpty(t, pair.AccessToken)
	require.NotEmpty(t, pair.RefreshToken)

	got, claims, err := env.sessions.Authenticate(ctx, pair.AccessToken)
	require.NoError(t, err)
	require.Equal(t, account.ID, got.ID)
	require.Equal(t, account.ID, claims.Subject)

	sessions, err := env.sessions.Sessions(ctx, account.ID)
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	require.Equal(t, "203.0.113.9", sessions[0].SourceAddress)
	require.Equal(t, "go-test/1.0", sessions[0].DeviceContext)
}

func TestRegisterNormalizesAndRejectsDuplicates(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	ctx := context.Background()

	account, _, err := env.sessions.Register(ctx, RegisterInput{
		Email:    "  Dup@Example.COM ",
		Name:     "First",
		Password: testPassword,
	})
	require.NoError(t, err)
	require.Equal(t, "dup@example.com", account.Email)

	_, _, err = env.sessions.Register(ctx, RegisterInput{
		Email:    "dup@example.com",
		Name:     "Second",
		Password: testPassword,
	})
	require.ErrorIs(t, err, ErrConflict)
}

func TestRegisterValidation(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	ctx := context.Background()

	cases := []struct {
		name string
		in   RegisterInput
	}{
		{"missing email", RegisterInput{Name: "A", Password: testPassword}},
		{"malformed email", RegisterInput{Email: "not-an-email", Name: "A", Password: testPassword}},
		{"missing name", RegisterInput{Email: "a@example.com", Password: testPassword}},
		{"short password", RegisterInput{Email: "a@example.com", Name: "A", Password: "short"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := env.sessions.Register(ctx, tc.in)
			require.ErrorIs(t, err, ErrValidation)
		})
	}
}

func TestLoginUnknownEmailAndWrongPasswordLookAlike(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)

	registerCustomer(t, env, "known@example.com")

	_, _, unknownErr := login(t, env, "nobody@example.com", testPassword)
	_, _, wrongErr := login(t, env, "known@example.com", "wrong-password-123")

	require.ErrorIs(t, unknownErr, ErrInvalidCredentials)
	require.ErrorIs(t, wrongErr, ErrInvalidCredentials)
	require.Equal(t, unknownErr, wrongErr)
}

func TestLoginLockoutFlow(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	ctx := context.Background()

	account, _ := registerCustomer(t, env, "victim@example.com")

	// Five wrong passwords. Every one of them reads as plain invalid
	// credentials, including the fifth that trips the lock.
	for i := 0; i < env.guard.MaxAttempts; i++ {
		_, _, err := login(t, env, "victim@example.com", "wrong-password-123")
		require.ErrorIs(t, err, ErrInvalidCredentials)
	}

	// Now even the correct password bounces off the lock, with the unlock
	// time surfaced, and the password is never compared.
	_, _, err := login(t, env, "victim@example.com", testPassword)
	var locked *AccountLockedError
	require.ErrorAs(t, err, &locked)
	require.WithinDuration(t, time.Now().Add(env.guard.LockDuration), locked.Until, 5*time.Second)

	// Simulate the lock window passing.
	past := time.Now().UTC().Add(-time.Second)
	require.NoError(t, env.store.Accounts().UpdateLockout(ctx, account.ID, env.guard.MaxAttempts, true, &past))

	got, _, err := login(t, env, "victim@example.com", testPassword)
	require.NoError(t, err)
	require.Zero(t, got.FailedAttempts)
	require.False(t, got.Locked)

	a, err := env.store.Accounts().GetAccountByID(ctx, account.ID)
	require.NoError(t, err)
	require.Zero(t, a.FailedAttempts)
	require.False(t, a.Locked)
	require.NotNil(t, a.LastLoginAt)
}

func TestLoginAppendsHistory(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	ctx := context.Background()

	account, _ := registerCustomer(t, env, "history@example.com")

	_, _, err := login(t, env, "history@example.com", "wrong-password-123")
	require.ErrorIs(t, err, ErrInvalidCredentials)
	_, _, err = login(t, env, "history@example.com", testPassword)
	require.NoError(t, err)

	history, err := env.sessions.LoginHistory(ctx, account.ID)
	require.NoError(t, err)
	require.Len(t, history, 2)
	require.True(t, history[0].Success)
	require.False(t, history[1].Success)
	require.Equal(t, "203.0.113.9", history[0].SourceAddress)
}

func TestRefreshRotation(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	ctx := context.Background()

	account, pair := registerCustomer(t, env, "rotate@example.com")

	got, next, err := env.sessions.Refresh(ctx, pair.RefreshToken)
	require.NoError(t, err)
	require.Equal(t, account.ID, got.ID)
	require.NotEqual(t, pair.RefreshToken, next.RefreshToken)

	// The old token's signature still verifies, but rotation removed it
	// from the live set, so replaying it reads as revoked.
	_, _, err = env.sessions.Refresh(ctx, pair.RefreshToken)
	require.ErrorIs(t, err, ErrTokenRevoked)

	// The successor keeps working, and the rotation reused the slot rather
	// than growing the session set.
	_, _, err = env.sessions.Refresh(ctx, next.RefreshToken)
	require.NoError(t, err)

	sessions, err := env.sessions.Sessions(ctx, account.ID)
	require.NoError(t, err)
	require.Len(t, sessions, 1)
}

func TestRefreshRejectsGarbageAndAccessTokens(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	ctx := context.Background()

	_, pair := registerCustomer(t, env, "refresh-junk@example.com")

	_, _, err := env.sessions.Refresh(ctx, "junk")
	require.ErrorIs(t, err, ErrTokenInvalid)

	_, _, err = env.sessions.Refresh(ctx, pair.AccessToken)
	require.ErrorIs(t, err, ErrTokenInvalid)
}

func TestSessionSetBounded(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	ctx := context.Background()

	sessions := *env.sessions
	sessions.MaxSessions = 2

	account, first, err := sessions.Register(ctx, RegisterInput{
		Email:    "devices@example.com",
		Name:     "Devices",
		Password: testPassword,
	})
	require.NoError(t, err)

	_, second, err := sessions.Login(ctx, LoginInput{Email: "devices@example.com", Password: testPassword})
	require.NoError(t, err)
	_, third, err := sessions.Login(ctx, LoginInput{Email: "devices@example.com", Password: testPassword})
	require.NoError(t, err)

	live, err := sessions.Sessions(ctx, account.ID)
	require.NoError(t, err)
	require.Len(t, live, 2)

	// The oldest session was evicted; its refresh token no longer works.
	_, _, err = sessions.Refresh(ctx, first.RefreshToken)
	require.ErrorIs(t, err, ErrTokenRevoked)

	_, _, err = sessions.Refresh(ctx, second.RefreshToken)
	require.NoError(t, err)
	_, _, err = sessions.Refresh(ctx, third.RefreshToken)
	require.NoError(t, err)
}

func TestLogoutKillsBothTokens(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	ctx := context.Background()

	account, pair := registerCustomer(t, env, "logout@example.com")

	claims, err := env.tokens.VerifyAccess(ctx, pair.AccessToken)
	require.NoError(t, err)

	require.NoError(t, env.sessions.Logout(ctx, LogoutInput{
		AccountID:    account.ID,
		AccessToken:  pair.AccessToken,
		Claims:       claims,
		RefreshToken: pair.RefreshToken,
	}))

	_, _, err = env.sessions.Authenticate(ctx, pair.AccessToken)
	require.ErrorIs(t, err, ErrTokenRevoked)

	_, _, err = env.sessions.Refresh(ctx, pair.RefreshToken)
	require.ErrorIs(t, err, ErrTokenRevoked)
}

func TestLogoutAllDevices(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	ctx := context.Background()

	account, pair := registerCustomer(t, env, "everywhere@example.com")
	_, other, err := login(t, env, "everywhere@example.com", testPassword)
	require.NoError(t, err)

	claims, err := env.tokens.VerifyAccess(ctx, pair.AccessToken)
	require.NoError(t, err)

	require.NoError(t, env.sessions.Logout(ctx, LogoutInput{
		AccountID:   account.ID,
		AccessToken: pair.AccessToken,
		Claims:      claims,
		AllDevices:  true,
	}))

	live, err := env.sessions.Sessions(ctx, account.ID)
	require.NoError(t, err)
	require.Empty(t, live)

	_, _, err = env.sessions.Refresh(ctx, other.RefreshToken)
	require.ErrorIs(t, err, ErrTokenRevoked)
}

func TestChangePasswordLogsOutEverywhere(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	ctx := context.Background()

	account, pair := registerCustomer(t, env, "rotatepw@example.com")
	_, other, err := login(t, env, "rotatepw@example.com", testPassword)
	require.NoError(t, err)

	claims, err := env.tokens.VerifyAccess(ctx, pair.AccessToken)
	require.NoError(t, err)

	const newPassword = "brand-new-password-1"
	require.NoError(t, env.sessions.ChangePassword(ctx, ChangePasswordInput{
		AccountID:       account.ID,
		CurrentPassword: testPassword,
		NewPassword:     newPassword,
		AccessToken:     pair.AccessToken,
		Claims:          claims,
	}))

	// The current access token died with the change.
	_, _, err = env.sessions.Authenticate(ctx, pair.AccessToken)
	require.ErrorIs(t, err, ErrTokenRevoked)

	// Every refresh token died with it.
	_, _, err = env.sessions.Refresh(ctx, pair.RefreshToken)
	require.ErrorIs(t, err, ErrTokenRevoked)
	_, _, err = env.sessions.Refresh(ctx, other.RefreshToken)
	require.ErrorIs(t, err, ErrTokenRevoked)

	// Only the new password logs in.
	_, _, err = login(t, env, "rotatepw@example.com", testPassword)
	require.ErrorIs(t, err, ErrInvalidCredentials)
	_, _, err = login(t, env, "rotatepw@example.com", newPassword)
	require.NoError(t, err)
}

func TestChangePasswordRequiresCurrent(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	ctx := context.Background()

	account, pair := registerCustomer(t, env, "verify-current@example.com")
	claims, err := env.tokens.VerifyAccess(ctx, pair.AccessToken)
	require.NoError(t, err)

	err = env.sessions.ChangePassword(ctx, ChangePasswordInput{
		AccountID:       account.ID,
		CurrentPassword: "wrong-password-123",
		NewPassword:     "whatever-new-pass-1",
		AccessToken:     pair.AccessToken,
		Claims:          claims,
	})
	require.ErrorIs(t, err, ErrInvalidCredentials)

	err = env.sessions.ChangePassword(ctx, ChangePasswordInput{
		AccountID:       account.ID,
		CurrentPassword: testPassword,
		NewPassword:     "short",
		AccessToken:     pair.AccessToken,
		Claims:          claims,
	})
	require.ErrorIs(t, err, ErrValidation)
}

func TestStaleTokenRejectedEvenWithCacheDown(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	ctx := context.Background()

	account, pair := registerCustomer(t, env, "stale@example.com")

	// Mint an access token that predates the password change by a couple of
	// seconds, so iat < password_changed_at regardless of clock granularity.
	oldAccess, err := env.tokens.AccessSigner.Sign(jwtx.NewAccessClaims(
		account.ID, string(account.Role), testIssuer, 15*time.Minute, time.Now().UTC().Add(-2*time.Second)))
	require.NoError(t, err)

	_, _, err = env.sessions.Authenticate(ctx, oldAccess)
	require.NoError(t, err)

	claims, err := env.tokens.VerifyAccess(ctx, pair.AccessToken)
	require.NoError(t, err)

	// Take the blacklist away entirely. The change-password flow degrades
	// to a warning on the blacklist insert.
	env.mr.Close()

	require.NoError(t, env.sessions.ChangePassword(ctx, ChangePasswordInput{
		AccountID:       account.ID,
		CurrentPassword: testPassword,
		NewPassword:     "brand-new-password-1",
		AccessToken:     pair.AccessToken,
		Claims:          claims,
	}))

	// With no blacklist to consult, the staleness check is what stops the
	// pre-change token from authenticating.
	_, _, err = env.sessions.Authenticate(ctx, oldAccess)
	require.ErrorIs(t, err, ErrTokenStale)
}

func TestAuthenticateAccountGone(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	ctx := context.Background()

	account, pair := registerCustomer(t, env, "deleted@example.com")
	require.NoError(t, env.store.Accounts().DeleteAccount(ctx, account.ID))

	_, _, err := env.sessions.Authenticate(ctx, pair.AccessToken)
	require.ErrorIs(t, err, ErrAccountNotFound)
}

func TestAuthenticateLockedAccount(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	ctx := context.Background()

	account, pair := registerCustomer(t, env, "gate-locked@example.com")

	until := time.Now().UTC().Add(10 * time.Minute)
	require.NoError(t, env.store.Accounts().UpdateLockout(ctx, account.ID, 5, true, &until))

	_, _, err := env.sessions.Authenticate(ctx, pair.AccessToken)
	var locked *AccountLockedError
	require.ErrorAs(t, err, &locked)
	require.WithinDuration(t, until, locked.Until, time.Second)
}

func TestOptionalAuthenticate(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	ctx := context.Background()

	account, pair := registerCustomer(t, env, "optional@example.com")

	got, claims, ok := env.sessions.OptionalAuthenticate(ctx, pair.AccessToken)
	require.True(t, ok)
	require.Equal(t, account.ID, got.ID)
	require.Equal(t, account.ID, claims.Subject)

	_, _, ok = env.sessions.OptionalAuthenticate(ctx, "garbage")
	require.False(t, ok)

	// A stale token stays anonymous: the optional gate runs the whole
	// pipeline before deciding to swallow the failure.
	stale, err := env.tokens.AccessSigner.Sign(jwtx.NewAccessClaims(
		account.ID, string(account.Role), testIssuer, 15*time.Minute, time.Now().UTC().Add(-2*time.Second)))
	require.NoError(t, err)

	vclaims, err := env.tokens.VerifyAccess(ctx, pair.AccessToken)
	require.NoError(t, err)
	require.NoError(t, env.sessions.ChangePassword(ctx, ChangePasswordInput{
		AccountID:       account.ID,
		CurrentPassword: testPassword,
		NewPassword:     "brand-new-password-1",
		AccessToken:     pair.AccessToken,
		Claims:          vclaims,
	}))

	_, _, ok = env.sessions.OptionalAuthenticate(ctx, stale)
	require.False(t, ok)
}

func TestRefreshAccountDeletedMidSession(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	ctx := context.Background()

	account, pair := registerCustomer(t, env, "vanishing@example.com")

	// Deleting the account cascades its refresh tokens away, so the flow
	// trips the live-set check before it ever reaches the account lookup.
	require.NoError(t, env.store.Accounts().DeleteAccount(ctx, account.ID))

	_, _, err := env.sessions.Refresh(ctx, pair.RefreshToken)
	require.ErrorIs(t, err, ErrTokenRevoked)
}
