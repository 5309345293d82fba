package domain

import "time"

// Role determines what an account may do. Customers raise pickup requests,
// employees fulfil them, admins manage accounts and see everything.
type Role string

const (
	RoleAdmin    Role = "admin"
	RoleEmployee Role = "employee"
	RoleCustomer Role = "customer"
)

// Valid reports whether the role is one of the known set.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleEmployee, RoleCustomer:
		return true
	}
	return false
}

type Account struct {
	ID           string
	Email        string // stored lowercase, unique
	Name         string
	PasswordHash string // argon2 encoded
	Role         Role

	// Lockout state. LockUntil is only meaningful while Locked is set.
	FailedAttempts int
	Locked         bool
	LockUntil      *time.Time

	// Access tokens issued before PasswordChangedAt are stale and must be
	// rejected even when their signature still verifies.
	PasswordChangedAt *time.Time

	LastLoginAt *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// IsLocked reports whether the account is locked out at the given instant.
// Unlocking is lazy: once LockUntil passes the account counts as open even if
// the persisted flag hasn't been cleared yet.
func (a *Account) IsLocked(now time.Time) bool {
	return a.Locked && a.LockUntil != nil && now.Before(*a.LockUntil)
}
