package store

import (
	"context"
	"errors"
	"time"

	"github.com/RafatAiub/AmarBin-Backend/internal/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
)

// Store is the root data access interface. Concrete drivers (sqlite, postgres)
// implement this. It exposes sub-repositories to keep concerns tidy and
// testable.
type Store interface {
	Accounts() Accounts
	RefreshTokens() RefreshTokens
	LoginHistory() LoginHistory
	Pickups() Pickups

	ApplyMigrations() error

	// Tx starts a read/write transaction and returns a Tx-scoped Store.
	// Use it for multi-step operations that must be atomic (e.g., refresh rotation).
	// The caller MUST call Commit() or Rollback() on the returned Tx.
	Tx(ctx context.Context) (Tx, error)

	// WithTx executes a function within a transaction.
	// If fn returns an error, the transaction is rolled back.
	// If fn returns nil, the transaction is committed.
	// This is the recommended way to handle transactions as it automatically
	// handles commit/rollback logic.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	// Close releases any underlying resources (optional for sqlite).
	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error
}

// Tx is a transactional store. It embeds the same repos but adds Commit/Rollback.
type Tx interface {
	Store
	Commit() error
	Rollback() error
}

type Accounts interface {
	// GetAccountByID returns an account by id.
	GetAccountByID(ctx context.Context, id string) (domain.Account, error)

	// GetAccountByEmail looks up by the canonical (lowercase) email.
	GetAccountByEmail(ctx context.Context, email string) (domain.Account, error)

	// CreateAccount inserts a new account (id is provided by app via ULID).
	// Returns ErrAlreadyExists when the email is taken.
	CreateAccount(ctx context.Context, a domain.Account) error

	// UpdateLockout persists the lockout counters after a login attempt.
	UpdateLockout(ctx context.Context, accountID string, failedAttempts int, locked bool, lockUntil *time.Time) error

	// UpdateLastLogin stamps last_login_at and bumps updated_at.
	UpdateLastLogin(ctx context.Context, accountID string, at time.Time) error

	// UpdatePasswordHash sets the password_hash (argon2) together with the
	// password_changed_at marker that stales older access tokens.
	UpdatePasswordHash(ctx context.Context, accountID, newHash string, changedAt time.Time) error

	// UpdateName mutates the display name and bumps updated_at.
	UpdateName(ctx context.Context, accountID, name string) error

	// UpdateRole changes the account role (admin operation).
	UpdateRole(ctx context.Context, accountID string, role domain.Role) error

	// ClearExpiredLocks resets lockout state on every account whose lock
	// deadline has passed. Housekeeping; the request path relies on lazy
	// unlock and does not need this to have run.
	ClearExpiredLocks(ctx context.Context, now time.Time) error

	// ListAccounts returns a filtered page ordered by creation (newest first).
	ListAccounts(ctx context.Context, f AccountFilter) ([]domain.Account, error)

	// CountAccounts returns the total matching the filter (ignores paging).
	CountAccounts(ctx context.Context, f AccountFilter) (int, error)

	// DeleteAccount cascades to refresh_tokens and login_history (per schema).
	DeleteAccount(ctx context.Context, accountID string) error

	// IsEmpty returns true if there are no accounts.
	IsEmpty(ctx context.Context) (bool, error)
}

// AccountFilter narrows account listings. Zero values mean "don't filter".
type AccountFilter struct {
	Role   domain.Role
	Limit  int
	Offset int
}

type RefreshTokens interface {
	// CreateRefreshToken stores a new refresh token record.
	CreateRefreshToken(ctx context.Context, t domain.RefreshToken) error

	// GetRefreshTokenByHash returns the record by its SHA-256 fingerprint.
	GetRefreshTokenByHash(ctx context.Context, hash string) (domain.RefreshToken, error)

	// ReplaceRefreshToken rewrites an existing record in place with the
	// successor's hash and lifetime. This is rotation-on-use: the row id
	// survives, the old token value does not.
	ReplaceRefreshToken(ctx context.Context, id, newHash string, issuedAt, expiresAt time.Time) error

	// DeleteRefreshTokenByHash removes a single session slot.
	DeleteRefreshTokenByHash(ctx context.Context, hash string) error

	// DeleteAccountRefreshTokens clears the whole set (logout-all, password change).
	DeleteAccountRefreshTokens(ctx context.Context, accountID string) error

	// ListAccountRefreshTokens returns the live set, newest first.
	ListAccountRefreshTokens(ctx context.Context, accountID string) ([]domain.RefreshToken, error)

	// CountAccountRefreshTokens returns the current set size.
	CountAccountRefreshTokens(ctx context.Context, accountID string) (int, error)

	// TrimAccountRefreshTokens evicts the oldest records beyond keep.
	TrimAccountRefreshTokens(ctx context.Context, accountID string, keep int) error

	// DeleteExpiredRefreshTokens is housekeeping.
	DeleteExpiredRefreshTokens(ctx context.Context) error
}

type LoginHistory interface {
	// AppendLoginRecord writes one audit entry.
	AppendLoginRecord(ctx context.Context, rec domain.LoginRecord) error

	// TrimLoginHistory evicts the oldest entries beyond keep for an account.
	TrimLoginHistory(ctx context.Context, accountID string, keep int) error

	// ListAccountLoginHistory returns the newest entries first.
	ListAccountLoginHistory(ctx context.Context, accountID string, limit int) ([]domain.LoginRecord, error)
}

// PickupFilter narrows pickup listings. Zero values mean "don't filter".
type PickupFilter struct {
	CustomerID string
	Status     domain.PickupStatus
	WasteType  domain.WasteType
	Limit      int
	Offset     int
}

type Pickups interface {
	// CreatePickup inserts a new pickup request.
	CreatePickup(ctx context.Context, p domain.PickupRequest) error

	// GetPickupByID returns a pickup request by id.
	GetPickupByID(ctx context.Context, id string) (domain.PickupRequest, error)

	// ListPickups returns a filtered page ordered by creation (newest first).
	ListPickups(ctx context.Context, f PickupFilter) ([]domain.PickupRequest, error)

	// CountPickups returns the total matching the filter (ignores paging).
	CountPickups(ctx context.Context, f PickupFilter) (int, error)

	// CountPickupsByStatus returns totals keyed by status.
	CountPickupsByStatus(ctx context.Context) (map[domain.PickupStatus]int, error)

	// UpdatePickup rewrites the mutable fields of a pickup request.
	UpdatePickup(ctx context.Context, p domain.PickupRequest) error

	// DeletePickup removes a pickup request (admin operation).
	DeletePickup(ctx context.Context, id string) error
}
