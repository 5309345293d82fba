package service

import (
	"context"
	"fmt"
	"time"

	"github.com/RafatAiub/AmarBin-Backend/internal/domain"
	"github.com/RafatAiub/AmarBin-Backend/internal/store"
	"github.com/RafatAiub/AmarBin-Backend/pkg/idx"
	"github.com/RafatAiub/AmarBin-Backend/pkg/slogx"
)

// LoginGuard enforces the lockout policy around password checks and keeps
// the per-account login audit trail. It never decides whether a password is
// right, only what a pass/fail outcome does to the account's counters.
type LoginGuard struct {
	Store        store.Store
	MaxAttempts  int
	LockDuration time.Duration
	HistoryLimit int
}

// RecordFailure bumps the failure counter, locking the account once the
// counter reaches MaxAttempts. An expired lock is reset lazily here: the
// stale lock clears and this failure counts as the first of a new series.
func (g *LoginGuard) RecordFailure(ctx context.Context, a domain.Account, now time.Time, source, device string) error {
	if a.Locked && !a.IsLocked(now) {
		a.Locked = false
		a.LockUntil = nil
		a.FailedAttempts = 0
	}

	a.FailedAttempts++
	if a.FailedAttempts >= g.MaxAttempts {
		until := now.Add(g.LockDuration)
		a.Locked = true
		a.LockUntil = &until

		slogx.FromContext(ctx).Warn("account locked after repeated login failures",
			"account_id", a.ID,
			"failed_attempts", a.FailedAttempts,
			"lock_until", until)
	}

	err := g.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.Accounts().UpdateLockout(ctx, a.ID, a.FailedAttempts, a.Locked, a.LockUntil); err != nil {
			return fmt.Errorf("update lockout: %w", err)
		}
		return g.appendHistory(ctx, tx, a.ID, now, source, device, false)
	})
	if err != nil {
		return fmt.Errorf("record login failure: %w", err)
	}
	return nil
}

// RecordSuccess resets the lockout counters, stamps last_login_at, and
// appends a successful audit entry. The returned account reflects the
// post-login state.
func (g *LoginGuard) RecordSuccess(ctx context.Context, a domain.Account, now time.Time, source, device string) (domain.Account, error) {
	err := g.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.Accounts().UpdateLockout(ctx, a.ID, 0, false, nil); err != nil {
			return fmt.Errorf("reset lockout: %w", err)
		}
		if err := tx.Accounts().UpdateLastLogin(ctx, a.ID, now); err != nil {
			return fmt.Errorf("stamp last login: %w", err)
		}
		return g.appendHistory(ctx, tx, a.ID, now, source, device, true)
	})
	if err != nil {
		return domain.Account{}, fmt.Errorf("record login success: %w", err)
	}

	a.FailedAttempts = 0
	a.Locked = false
	a.LockUntil = nil
	a.LastLoginAt = &now
	return a, nil
}

func (g *LoginGuard) appendHistory(ctx context.Context, tx store.Tx, accountID string, at time.Time, source, device string, success bool) error {
	rec := domain.LoginRecord{
		ID:            idx.New().String(),
		AccountID:     accountID,
		At:            at,
		SourceAddress: source,
		DeviceContext: device,
		Success:       success,
	}
	if err := tx.LoginHistory().AppendLoginRecord(ctx, rec); err != nil {
		return fmt.Errorf("append login record: %w", err)
	}
	if err := tx.LoginHistory().TrimLoginHistory(ctx, accountID, g.HistoryLimit); err != nil {
		return fmt.Errorf("trim login history: %w", err)
	}
	return nil
}
