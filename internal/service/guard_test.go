package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestRecordFailureLocksAtMax(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	ctx := context.Background()
	now := time.Now().UTC()

	account, _ := registerCustomer(t, env, "lockme@example.com")

	for i := 1; i < env.guard.MaxAttempts; i++ {
		a, err := env.store.Accounts().GetAccountByID(ctx, account.ID)
		require.NoError(t, err)
		require.NoError(t, env.guard.RecordFailure(ctx, a, now, "203.0.113.9", "go-test/1.0"))

		a, err = env.store.Accounts().GetAccountByID(ctx, account.ID)
		require.NoError(t, err)
		require.Equal(t, i, a.FailedAttempts)
		require.False(t, a.Locked)
	}

	a, err := env.store.Accounts().GetAccountByID(ctx, account.ID)
	require.NoError(t, err)
	require.NoError(t, env.guard.RecordFailure(ctx, a, now, "203.0.113.9", "go-test/1.0"))

	a, err = env.store.Accounts().GetAccountByID(ctx, account.ID)
	require.NoError(t, err)
	require.Equal(t, env.guard.MaxAttempts, a.FailedAttempts)
	require.True(t, a.Locked)
	require.NotNil(t, a.LockUntil)
	require.WithinDuration(t, now.Add(env.guard.LockDuration), *a.LockUntil, 2*time.Second)

	history, err := env.store.LoginHistory().ListAccountLoginHistory(ctx, account.ID, 20)
	require.NoError(t, err)
	require.Len(t, history, env.guard.MaxAttempts)
	for _, rec := range history {
		require.False(t, rec.Success)
	}
}

func TestRecordFailureResetsExpiredLock(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	ctx := context.Background()
	now := time.Now().UTC()

	account, _ := registerCustomer(t, env, "expired-lock@example.com")

	past := now.Add(-time.Minute)
	require.NoError(t, env.store.Accounts().UpdateLockout(ctx, account.ID, 5, true, &past))

	a, err := env.store.Accounts().GetAccountByID(ctx, account.ID)
	require.NoError(t, err)
	require.NoError(t, env.guard.RecordFailure(ctx, a, now, "203.0.113.9", "go-test/1.0"))

	// The stale lock cleared and this failure started a fresh series rather
	// than instantly re-locking off the old counter.
	a, err = env.store.Accounts().GetAccountByID(ctx, account.ID)
	require.NoError(t, err)
	require.Equal(t, 1, a.FailedAttempts)
	require.False(t, a.Locked)
	require.Nil(t, a.LockUntil)
}

func TestRecordSuccessResetsCounters(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	ctx := context.Background()
	now := time.Now().UTC()

	account, _ := registerCustomer(t, env, "reset@example.com")
	require.NoError(t, env.store.Accounts().UpdateLockout(ctx, account.ID, 3, false, nil))

	a, err := env.store.Accounts().GetAccountByID(ctx, account.ID)
	require.NoError(t, err)
	updated, err := env.guard.RecordSuccess(ctx, a, now, "203.0.113.9", "go-test/1.0")
	require.NoError(t, err)
	require.Zero(t, updated.FailedAttempts)
	require.False(t, updated.Locked)
	require.NotNil(t, updated.LastLoginAt)

	a, err = env.store.Accounts().GetAccountByID(ctx, account.ID)
	require.NoError(t, err)
	require.Zero(t, a.FailedAttempts)
	require.NotNil(t, a.LastLoginAt)
	require.WithinDuration(t, now, *a.LastLoginAt, 2*time.Second)

	history, err := env.store.LoginHistory().ListAccountLoginHistory(ctx, account.ID, 20)
	require.NoError(t, err)
	require.NotEmpty(t, history)
	require.True(t, history[0].Success)
}

func TestLoginHistoryBounded(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	ctx := context.Background()
	now := time.Now().UTC()

	account, _ := registerCustomer(t, env, "bounded@example.com")

	guard := &LoginGuard{Store: env.store, MaxAttempts: 100, LockDuration: time.Minute, HistoryLimit: 3}
	for i := 0; i < 5; i++ {
		a, err := env.store.Accounts().GetAccountByID(ctx, account.ID)
		require.NoError(t, err)
		require.NoError(t, guard.RecordFailure(ctx, a, now.Add(time.Duration(i)*time.Second), "203.0.113.9", fmt.Sprintf("device-%d", i)))
	}

	history, err := env.store.LoginHistory().ListAccountLoginHistory(ctx, account.ID, 20)
	require.NoError(t, err)
	require.Len(t, history, 3)
	require.Equal(t, "device-4", history[0].DeviceContext)
	require.Equal(t, "device-2", history[2].DeviceContext)
}
