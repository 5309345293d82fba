package sqlite

import (
	"context"
	"time"

	"github.com/RafatAiub/AmarBin-Backend/internal/domain"
	"github.com/RafatAiub/AmarBin-Backend/internal/store"
)

type refreshTokensRepo struct {
	db dbtx
}

var _ store.RefreshTokens = (*refreshTokensRepo)(nil)

const refreshTokenColumns = `id, account_id, token_hash, source_address, device_context, issued_at, expires_at, created_at, updated_at`

func scanRefreshToken(rs rowScanner) (domain.RefreshToken, error) {
	var t domain.RefreshToken
	if err := rs.Scan(
		&t.ID, &t.AccountID, &t.TokenHash, &t.SourceAddress, &t.DeviceContext,
		&t.IssuedAt, &t.ExpiresAt, &t.CreatedAt, &t.UpdatedAt,
	); err != nil {
		return domain.RefreshToken{}, err
	}
	return t, nil
}

func (r *refreshTokensRepo) CreateRefreshToken(ctx context.Context, t domain.RefreshToken) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO refresh_tokens (
			id, account_id, token_hash, source_address, device_context,
			issued_at, expires_at, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.AccountID, t.TokenHash, t.SourceAddress, t.DeviceContext,
		t.IssuedAt.UTC(), t.ExpiresAt.UTC(), t.CreatedAt.UTC(), t.UpdatedAt.UTC(),
	)
	return mapConflict(err)
}

func (r *refreshTokensRepo) GetRefreshTokenByHash(ctx context.Context, hash string) (domain.RefreshToken, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+refreshTokenColumns+` FROM refresh_tokens WHERE token_hash = ?`, hash)
	t, err := scanRefreshToken(row)
	if err != nil {
		return domain.RefreshToken{}, mapNotFound(err)
	}
	return t, nil
}

func (r *refreshTokensRepo) ReplaceRefreshToken(ctx context.Context, id, newHash string, issuedAt, expiresAt time.Time) error {
	return execAffectingOne(ctx, r.db, `
		UPDATE refresh_tokens
		SET token_hash = ?, issued_at = ?, expires_at = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?`,
		newHash, issuedAt.UTC(), expiresAt.UTC(), id)
}

func (r *refreshTokensRepo) DeleteRefreshTokenByHash(ctx context.Context, hash string) error {
	return execAffectingOne(ctx, r.db,
		`DELETE FROM refresh_tokens WHERE token_hash = ?`, hash)
}

func (r *refreshTokensRepo) DeleteAccountRefreshTokens(ctx context.Context, accountID string) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM refresh_tokens WHERE account_id = ?`, accountID)
	return err
}

func (r *refreshTokensRepo) ListAccountRefreshTokens(ctx context.Context, accountID string) ([]domain.RefreshToken, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+refreshTokenColumns+` FROM refresh_tokens
		WHERE account_id = ?
		ORDER BY issued_at DESC, id DESC`,
		accountID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.RefreshToken
	for rows.Next() {
		t, err := scanRefreshToken(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (r *refreshTokensRepo) CountAccountRefreshTokens(ctx context.Context, accountID string) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM refresh_tokens WHERE account_id = ?`, accountID).Scan(&n)
	return n, err
}

// TrimAccountRefreshTokens keeps the keep most recently issued tokens for an
// account and evicts the rest. Row ids are ULIDs, so id order breaks ties for
// tokens issued within the same instant.
func (r *refreshTokensRepo) TrimAccountRefreshTokens(ctx context.Context, accountID string, keep int) error {
	_, err := r.db.ExecContext(ctx, `
		DELETE FROM refresh_tokens
		WHERE account_id = ?
		  AND id NOT IN (
			SELECT id FROM refresh_tokens
			WHERE account_id = ?
			ORDER BY issued_at DESC, id DESC
			LIMIT ?
		  )`,
		accountID, accountID, keep)
	return err
}

func (r *refreshTokensRepo) DeleteExpiredRefreshTokens(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM refresh_tokens WHERE expires_at < ?`, time.Now().UTC())
	return err
}
