package sqlite

import (
	"context"

	"github.com/RafatAiub/AmarBin-Backend/internal/domain"
	"github.com/RafatAiub/AmarBin-Backend/internal/store"
)

type loginHistoryRepo struct {
	db dbtx
}

var _ store.LoginHistory = (*loginHistoryRepo)(nil)

func (r *loginHistoryRepo) AppendLoginRecord(ctx context.Context, rec domain.LoginRecord) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO login_history (id, account_id, at, source_address, device_context, success)
		VALUES (?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.AccountID, rec.At.UTC(), rec.SourceAddress, rec.DeviceContext, rec.Success,
	)
	return err
}

func (r *loginHistoryRepo) TrimLoginHistory(ctx context.Context, accountID string, keep int) error {
	_, err := r.db.ExecContext(ctx, `
		DELETE FROM login_history
		WHERE account_id = ?
		  AND id NOT IN (
			SELECT id FROM login_history
			WHERE account_id = ?
			ORDER BY at DESC, id DESC
			LIMIT ?
		  )`,
		accountID, accountID, keep)
	return err
}

func (r *loginHistoryRepo) ListAccountLoginHistory(ctx context.Context, accountID string, limit int) ([]domain.LoginRecord, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, account_id, at, source_address, device_context, success
		FROM login_history
		WHERE account_id = ?
		ORDER BY at DESC, id DESC
		LIMIT ?`,
		accountID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.LoginRecord
	for rows.Next() {
		var rec domain.LoginRecord
		if err := rows.Scan(&rec.ID, &rec.AccountID, &rec.At, &rec.SourceAddress, &rec.DeviceContext, &rec.Success); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}
