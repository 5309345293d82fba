package domain_test

import (
	"testing"
	"time"

	"github.com/RafatAiub/AmarBin-Backend/internal/domain"
	"github.com/stretchr/testify/require"
)

func TestAccountIsLocked(t *testing.T) {
	now := time.Now().UTC()
	future := now.Add(10 * time.Minute)
	past := now.Add(-10 * time.Minute)

	t.Run("locked with future deadline", func(t *testing.T) {
		a := &domain.Account{Locked: true, LockUntil: &future}
		require.True(t, a.IsLocked(now))
	})

	t.Run("lazy unlock after deadline", func(t *testing.T) {
		a := &domain.Account{Locked: true, LockUntil: &past}
		require.False(t, a.IsLocked(now), "expired lock counts as open even before the flag is cleared")
	})

	t.Run("never locked", func(t *testing.T) {
		a := &domain.Account{}
		require.False(t, a.IsLocked(now))
	})

	t.Run("flag without deadline", func(t *testing.T) {
		a := &domain.Account{Locked: true}
		require.False(t, a.IsLocked(now))
	})
}

func TestPickupStatusTransitions(t *testing.T) {
	allowed := []struct {
		from, to domain.PickupStatus
	}{
		{domain.PickupPending, domain.PickupScheduled},
		{domain.PickupPending, domain.PickupCancelled},
		{domain.PickupScheduled, domain.PickupInProgress},
		{domain.PickupScheduled, domain.PickupCancelled},
		{domain.PickupInProgress, domain.PickupCompleted},
	}
	for _, tt := range allowed {
		require.True(t, tt.from.CanTransition(tt.to), "%s -> %s should be allowed", tt.from, tt.to)
	}

	denied := []struct {
		from, to domain.PickupStatus
	}{
		{domain.PickupPending, domain.PickupCompleted},
		{domain.PickupPending, domain.PickupInProgress},
		{domain.PickupScheduled, domain.PickupCompleted},
		{domain.PickupInProgress, domain.PickupCancelled},
		{domain.PickupCompleted, domain.PickupPending},
		{domain.PickupCancelled, domain.PickupScheduled},
		{domain.PickupCompleted, domain.PickupCancelled},
	}
	for _, tt := range denied {
		require.False(t, tt.from.CanTransition(tt.to), "%s -> %s should be denied", tt.from, tt.to)
	}
}

func TestRoleValid(t *testing.T) {
	for _, r := range []domain.Role{domain.RoleAdmin, domain.RoleEmployee, domain.RoleCustomer} {
		require.True(t, r.Valid())
	}
	require.False(t, domain.Role("superuser").Valid())
	require.False(t, domain.Role("").Valid())
}

func TestWasteTypeValid(t *testing.T) {
	for _, w := range []domain.WasteType{domain.WasteHousehold, domain.WasteRecyclable, domain.WasteOrganic, domain.WasteHazardous} {
		require.True(t, w.Valid())
	}
	require.False(t, domain.WasteType("nuclear").Valid())
}
