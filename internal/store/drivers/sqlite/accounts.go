package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/RafatAiub/AmarBin-Backend/internal/domain"
	"github.com/RafatAiub/AmarBin-Backend/internal/store"
)

type accountsRepo struct {
	db dbtx
}

var _ store.Accounts = (*accountsRepo)(nil)

const accountColumns = `id, email, name, password_hash, role, failed_attempts, locked, lock_until, password_changed_at, last_login_at, created_at, updated_at`

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanAccount(rs rowScanner) (domain.Account, error) {
	var (
		a         domain.Account
		role      string
		lockUntil sql.NullTime
		pwChanged sql.NullTime
		lastLogin sql.NullTime
	)
	if err := rs.Scan(
		&a.ID, &a.Email, &a.Name, &a.PasswordHash, &role,
		&a.FailedAttempts, &a.Locked, &lockUntil, &pwChanged, &lastLogin,
		&a.CreatedAt, &a.UpdatedAt,
	); err != nil {
		return domain.Account{}, err
	}
	a.Role = domain.Role(role)
	a.LockUntil = timePtr(lockUntil)
	a.PasswordChangedAt = timePtr(pwChanged)
	a.LastLoginAt = timePtr(lastLogin)
	return a, nil
}

func (r *accountsRepo) GetAccountByID(ctx context.Context, id string) (domain.Account, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE id = ?`, id)
	a, err := scanAccount(row)
	if err != nil {
		return domain.Account{}, mapNotFound(err)
	}
	return a, nil
}

func (r *accountsRepo) GetAccountByEmail(ctx context.Context, email string) (domain.Account, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE email = ?`, email)
	a, err := scanAccount(row)
	if err != nil {
		return domain.Account{}, mapNotFound(err)
	}
	return a, nil
}

func (r *accountsRepo) CreateAccount(ctx context.Context, a domain.Account) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO accounts (
			id, email, name, password_hash, role,
			failed_attempts, locked, lock_until, password_changed_at, last_login_at,
			created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		a.ID, a.Email, a.Name, a.PasswordHash, string(a.Role),
		a.FailedAttempts, a.Locked, nullTime(a.LockUntil), nullTime(a.PasswordChangedAt), nullTime(a.LastLoginAt),
		a.CreatedAt.UTC(), a.UpdatedAt.UTC(),
	)
	return mapConflict(err)
}

func (r *accountsRepo) UpdateLockout(ctx context.Context, accountID string, failedAttempts int, locked bool, lockUntil *time.Time) error {
	return execAffectingOne(ctx, r.db, `
		UPDATE accounts
		SET failed_attempts = ?, locked = ?, lock_until = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?`,
		failedAttempts, locked, nullTime(lockUntil), accountID)
}

func (r *accountsRepo) UpdateLastLogin(ctx context.Context, accountID string, at time.Time) error {
	return execAffectingOne(ctx, r.db, `
		UPDATE accounts
		SET last_login_at = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?`,
		at.UTC(), accountID)
}

func (r *accountsRepo) UpdatePasswordHash(ctx context.Context, accountID, newHash string, changedAt time.Time) error {
	return execAffectingOne(ctx, r.db, `
		UPDATE accounts
		SET password_hash = ?, password_changed_at = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?`,
		newHash, changedAt.UTC(), accountID)
}

func (r *accountsRepo) UpdateName(ctx context.Context, accountID, name string) error {
	return execAffectingOne(ctx, r.db, `
		UPDATE accounts
		SET name = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?`,
		name, accountID)
}

func (r *accountsRepo) UpdateRole(ctx context.Context, accountID string, role domain.Role) error {
	return execAffectingOne(ctx, r.db, `
		UPDATE accounts
		SET role = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?`,
		string(role), accountID)
}

func (r *accountsRepo) ClearExpiredLocks(ctx context.Context, now time.Time) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE accounts
		SET failed_attempts = 0, locked = 0, lock_until = NULL, updated_at = CURRENT_TIMESTAMP
		WHERE locked = 1 AND lock_until IS NOT NULL AND lock_until < ?`,
		now.UTC())
	return err
}

// accountFilterClause builds the WHERE fragment for a filter. Zero-valued
// fields are skipped.
func accountFilterClause(f store.AccountFilter) (string, []any) {
	if f.Role == "" {
		return "", nil
	}
	return " WHERE role = ?", []any{string(f.Role)}
}

func (r *accountsRepo) ListAccounts(ctx context.Context, f store.AccountFilter) ([]domain.Account, error) {
	if f.Limit <= 0 {
		f.Limit = 50
	}
	clause, args := accountFilterClause(f)
	args = append(args, f.Limit, f.Offset)

	rows, err := r.db.QueryContext(ctx,
		`SELECT `+accountColumns+` FROM accounts`+clause+`
		ORDER BY created_at DESC, id DESC
		LIMIT ? OFFSET ?`,
		args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Account
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (r *accountsRepo) CountAccounts(ctx context.Context, f store.AccountFilter) (int, error) {
	clause, args := accountFilterClause(f)
	var n int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM accounts`+clause, args...).Scan(&n)
	return n, err
}

func (r *accountsRepo) DeleteAccount(ctx context.Context, accountID string) error {
	return execAffectingOne(ctx, r.db, `DELETE FROM accounts WHERE id = ?`, accountID)
}

func (r *accountsRepo) IsEmpty(ctx context.Context) (bool, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM accounts LIMIT 1`).Scan(&n); err != nil {
		return false, err
	}
	return n == 0, nil
}
