package sqlite

import (
	"context"
	"database/sql"
	"strings"

	"github.com/RafatAiub/AmarBin-Backend/internal/domain"
	"github.com/RafatAiub/AmarBin-Backend/internal/store"
)

type pickupsRepo struct {
	db dbtx
}

var _ store.Pickups = (*pickupsRepo)(nil)

const pickupColumns = `id, customer_id, assignee_id, waste_type, quantity_kg, address, notes, preferred_date, status, scheduled_for, completed_at, cancelled_at, created_at, updated_at`

func scanPickup(rs rowScanner) (domain.PickupRequest, error) {
	var (
		p         domain.PickupRequest
		assignee  sql.NullString
		preferred sql.NullTime
		scheduled sql.NullTime
		completed sql.NullTime
		cancelled sql.NullTime
		waste     string
		status    string
	)
	if err := rs.Scan(
		&p.ID, &p.CustomerID, &assignee, &waste, &p.QuantityKG, &p.Address, &p.Notes,
		&preferred, &status, &scheduled, &completed, &cancelled,
		&p.CreatedAt, &p.UpdatedAt,
	); err != nil {
		return domain.PickupRequest{}, err
	}
	p.AssigneeID = strPtr(assignee)
	p.WasteType = domain.WasteType(waste)
	p.Status = domain.PickupStatus(status)
	p.PreferredDate = timePtr(preferred)
	p.ScheduledFor = timePtr(scheduled)
	p.CompletedAt = timePtr(completed)
	p.CancelledAt = timePtr(cancelled)
	return p, nil
}

// pickupFilterClause builds the WHERE fragment for a filter. Zero-valued
// fields are skipped.
func pickupFilterClause(f store.PickupFilter) (string, []any) {
	var (
		where []string
		args  []any
	)
	if f.CustomerID != "" {
		where = append(where, "customer_id = ?")
		args = append(args, f.CustomerID)
	}
	if f.Status != "" {
		where = append(where, "status = ?")
		args = append(args, string(f.Status))
	}
	if f.WasteType != "" {
		where = append(where, "waste_type = ?")
		args = append(args, string(f.WasteType))
	}
	if len(where) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(where, " AND "), args
}

func (r *pickupsRepo) CreatePickup(ctx context.Context, p domain.PickupRequest) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO pickups (
			id, customer_id, assignee_id, waste_type, quantity_kg, address, notes,
			preferred_date, status, scheduled_for, completed_at, cancelled_at,
			created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.CustomerID, nullStringPtr(p.AssigneeID), string(p.WasteType), p.QuantityKG, p.Address, p.Notes,
		nullTime(p.PreferredDate), string(p.Status), nullTime(p.ScheduledFor), nullTime(p.CompletedAt), nullTime(p.CancelledAt),
		p.CreatedAt.UTC(), p.UpdatedAt.UTC(),
	)
	return mapConflict(err)
}

func (r *pickupsRepo) GetPickupByID(ctx context.Context, id string) (domain.PickupRequest, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+pickupColumns+` FROM pickups WHERE id = ?`, id)
	p, err := scanPickup(row)
	if err != nil {
		return domain.PickupRequest{}, mapNotFound(err)
	}
	return p, nil
}

func (r *pickupsRepo) ListPickups(ctx context.Context, f store.PickupFilter) ([]domain.PickupRequest, error) {
	if f.Limit <= 0 {
		f.Limit = 50
	}
	clause, args := pickupFilterClause(f)
	args = append(args, f.Limit, f.Offset)

	rows, err := r.db.QueryContext(ctx,
		`SELECT `+pickupColumns+` FROM pickups`+clause+`
		ORDER BY created_at DESC, id DESC
		LIMIT ? OFFSET ?`,
		args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.PickupRequest
	for rows.Next() {
		p, err := scanPickup(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *pickupsRepo) CountPickups(ctx context.Context, f store.PickupFilter) (int, error) {
	clause, args := pickupFilterClause(f)
	var n int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM pickups`+clause, args...).Scan(&n)
	return n, err
}

func (r *pickupsRepo) CountPickupsByStatus(ctx context.Context) (map[domain.PickupStatus]int, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT status, COUNT(*) FROM pickups GROUP BY status`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[domain.PickupStatus]int)
	for rows.Next() {
		var (
			status string
			n      int
		)
		if err := rows.Scan(&status, &n); err != nil {
			return nil, err
		}
		out[domain.PickupStatus(status)] = n
	}
	return out, rows.Err()
}

func (r *pickupsRepo) UpdatePickup(ctx context.Context, p domain.PickupRequest) error {
	return execAffectingOne(ctx, r.db, `
		UPDATE pickups
		SET assignee_id = ?, waste_type = ?, quantity_kg = ?, address = ?, notes = ?,
		    preferred_date = ?, status = ?, scheduled_for = ?, completed_at = ?, cancelled_at = ?,
		    updated_at = ?
		WHERE id = ?`,
		nullStringPtr(p.AssigneeID), string(p.WasteType), p.QuantityKG, p.Address, p.Notes,
		nullTime(p.PreferredDate), string(p.Status), nullTime(p.ScheduledFor), nullTime(p.CompletedAt), nullTime(p.CancelledAt),
		p.UpdatedAt.UTC(), p.ID)
}

func (r *pickupsRepo) DeletePickup(ctx context.Context, id string) error {
	return execAffectingOne(ctx, r.db, `DELETE FROM pickups WHERE id = ?`, id)
}
