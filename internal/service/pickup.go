package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/RafatAiub/AmarBin-Backend/internal/domain"
	"github.com/RafatAiub/AmarBin-Backend/internal/store"
	"github.com/RafatAiub/AmarBin-Backend/pkg/idx"
	"github.com/RafatAiub/AmarBin-Backend/pkg/slogx"
)

const (
	defaultPageLimit = 20
	maxPageLimit     = 100
)

// PickupService owns the pickup-request lifecycle. Role gates live in the
// HTTP middleware; everything data-dependent (ownership, assignment, status
// transitions) is checked here so it holds no matter how the call arrives.
type PickupService struct {
	Store store.Store
}

type CreatePickupInput struct {
	CustomerID    string
	WasteType     domain.WasteType
	QuantityKG    float64
	Address       string
	Notes         string
	PreferredDate *time.Time
}

// UpdatePickupInput patches a pending request. Nil fields are left alone.
type UpdatePickupInput struct {
	WasteType     *domain.WasteType
	QuantityKG    *float64
	Address       *string
	Notes         *string
	PreferredDate *time.Time
}

// ListPickupsInput carries the query-string filters. Status and WasteType
// are raw strings so the service owns rejecting unknown values.
type ListPickupsInput struct {
	Status    string
	WasteType string
	Page      int
	Limit     int
}

// Create opens a new pickup request in pending state.
func (s *PickupService) Create(ctx context.Context, in CreatePickupInput) (domain.PickupRequest, error) {
	now := time.Now().UTC()

	in.Address = strings.TrimSpace(in.Address)
	if !in.WasteType.Valid() {
		return domain.PickupRequest{}, fmt.Errorf("%w: unknown waste type %q", ErrValidation, in.WasteType)
	}
	if in.QuantityKG <= 0 {
		return domain.PickupRequest{}, fmt.Errorf("%w: quantity_kg must be positive", ErrValidation)
	}
	if in.Address == "" {
		return domain.PickupRequest{}, fmt.Errorf("%w: address is required", ErrValidation)
	}

	p := domain.PickupRequest{
		ID:            idx.New().String(),
		CustomerID:    in.CustomerID,
		WasteType:     in.WasteType,
		QuantityKG:    in.QuantityKG,
		Address:       in.Address,
		Notes:         strings.TrimSpace(in.Notes),
		PreferredDate: in.PreferredDate,
		Status:        domain.PickupPending,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.Store.Pickups().CreatePickup(ctx, p); err != nil {
		return domain.PickupRequest{}, fmt.Errorf("create pickup: %w", err)
	}

	slogx.FromContext(ctx).Info("pickup requested",
		"pickup_id", p.ID, "customer_id", p.CustomerID, "waste_type", p.WasteType)
	return p, nil
}

// Get returns one request. Customers only see their own.
func (s *PickupService) Get(ctx context.Context, requester domain.Account, id string) (domain.PickupRequest, error) {
	p, err := s.Store.Pickups().GetPickupByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.PickupRequest{}, ErrNotFound
		}
		return domain.PickupRequest{}, err
	}
	if requester.Role == domain.RoleCustomer && p.CustomerID != requester.ID {
		return domain.PickupRequest{}, ErrForbidden
	}
	return p, nil
}

// List returns a page of requests plus the unpaged total. Customers are
// scoped to their own requests; employees and admins see everything.
func (s *PickupService) List(ctx context.Context, requester domain.Account, in ListPickupsInput) ([]domain.PickupRequest, int, error) {
	f := store.PickupFilter{}

	if requester.Role == domain.RoleCustomer {
		f.CustomerID = requester.ID
	}
	if in.Status != "" {
		status := domain.PickupStatus(in.Status)
		if !status.Valid() {
			return nil, 0, fmt.Errorf("%w: unknown status %q", ErrValidation, in.Status)
		}
		f.Status = status
	}
	if in.WasteType != "" {
		waste := domain.WasteType(in.WasteType)
		if !waste.Valid() {
			return nil, 0, fmt.Errorf("%w: unknown waste type %q", ErrValidation, in.WasteType)
		}
		f.WasteType = waste
	}
	f.Limit, f.Offset = pageWindow(in.Page, in.Limit)

	total, err := s.Store.Pickups().CountPickups(ctx, f)
	if err != nil {
		return nil, 0, err
	}
	list, err := s.Store.Pickups().ListPickups(ctx, f)
	if err != nil {
		return nil, 0, err
	}
	return list, total, nil
}

// Update patches a request's details. Only the owning customer may do this,
// and only while the request is still pending.
func (s *PickupService) Update(ctx context.Context, requester domain.Account, id string, in UpdatePickupInput) (domain.PickupRequest, error) {
	p, err := s.Get(ctx, requester, id)
	if err != nil {
		return domain.PickupRequest{}, err
	}
	if p.CustomerID != requester.ID {
		return domain.PickupRequest{}, ErrForbidden
	}
	if p.Status != domain.PickupPending {
		return domain.PickupRequest{}, fmt.Errorf("%w: request can only be edited while pending", ErrValidation)
	}

	if in.WasteType != nil {
		if !in.WasteType.Valid() {
			return domain.PickupRequest{}, fmt.Errorf("%w: unknown waste type %q", ErrValidation, *in.WasteType)
		}
		p.WasteType = *in.WasteType
	}
	if in.QuantityKG != nil {
		if *in.QuantityKG <= 0 {
			return domain.PickupRequest{}, fmt.Errorf("%w: quantity_kg must be positive", ErrValidation)
		}
		p.QuantityKG = *in.QuantityKG
	}
	if in.Address != nil {
		addr := strings.TrimSpace(*in.Address)
		if addr == "" {
			return domain.PickupRequest{}, fmt.Errorf("%w: address is required", ErrValidation)
		}
		p.Address = addr
	}
	if in.Notes != nil {
		p.Notes = strings.TrimSpace(*in.Notes)
	}
	if in.PreferredDate != nil {
		p.PreferredDate = in.PreferredDate
	}

	p.UpdatedAt = time.Now().UTC()
	if err := s.Store.Pickups().UpdatePickup(ctx, p); err != nil {
		return domain.PickupRequest{}, fmt.Errorf("update pickup: %w", err)
	}
	return p, nil
}

// Assign hands a pending request to an employee and schedules it. With no
// explicit time the customer's preferred date wins, falling back to next-day.
func (s *PickupService) Assign(ctx context.Context, id, employeeID string, scheduledFor *time.Time) (domain.PickupRequest, error) {
	now := time.Now().UTC()

	p, err := s.Store.Pickups().GetPickupByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.PickupRequest{}, ErrNotFound
		}
		return domain.PickupRequest{}, err
	}

	employee, err := s.Store.Accounts().GetAccountByID(ctx, employeeID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.PickupRequest{}, fmt.Errorf("%w: employee not found", ErrValidation)
		}
		return domain.PickupRequest{}, err
	}
	if employee.Role != domain.RoleEmployee {
		return domain.PickupRequest{}, fmt.Errorf("%w: assignee must be an employee", ErrValidation)
	}

	if !p.Status.CanTransition(domain.PickupScheduled) {
		return domain.PickupRequest{}, fmt.Errorf("%w: %s -> scheduled", ErrInvalidTransition, p.Status)
	}

	when := scheduledFor
	if when == nil {
		when = p.PreferredDate
	}
	if when == nil {
		next := now.Add(24 * time.Hour)
		when = &next
	}

	p.AssigneeID = &employee.ID
	p.Status = domain.PickupScheduled
	p.ScheduledFor = when
	p.UpdatedAt = now
	if err := s.Store.Pickups().UpdatePickup(ctx, p); err != nil {
		return domain.PickupRequest{}, fmt.Errorf("assign pickup: %w", err)
	}

	slogx.FromContext(ctx).Info("pickup assigned",
		"pickup_id", p.ID, "assignee_id", employee.ID, "scheduled_for", *when)
	return p, nil
}

// UpdateStatus moves a request through the working stages. Only the assigned
// employee (or an admin) may report progress, and only in_progress and
// completed are reachable here; cancellation has its own path.
func (s *PickupService) UpdateStatus(ctx context.Context, requester domain.Account, id string, next domain.PickupStatus) (domain.PickupRequest, error) {
	now := time.Now().UTC()

	if next != domain.PickupInProgress && next != domain.PickupCompleted {
		return domain.PickupRequest{}, fmt.Errorf("%w: status must be in_progress or completed", ErrValidation)
	}

	p, err := s.Store.Pickups().GetPickupByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.PickupRequest{}, ErrNotFound
		}
		return domain.PickupRequest{}, err
	}

	assigned := p.AssigneeID != nil && *p.AssigneeID == requester.ID
	if !assigned && requester.Role != domain.RoleAdmin {
		return domain.PickupRequest{}, ErrForbidden
	}

	if !p.Status.CanTransition(next) {
		return domain.PickupRequest{}, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, p.Status, next)
	}

	p.Status = next
	if next == domain.PickupCompleted {
		p.CompletedAt = &now
	}
	p.UpdatedAt = now
	if err := s.Store.Pickups().UpdatePickup(ctx, p); err != nil {
		return domain.PickupRequest{}, fmt.Errorf("update pickup status: %w", err)
	}
	return p, nil
}

// Cancel aborts a request that has not started yet. The owning customer or
// an admin may cancel while the request is pending or scheduled.
func (s *PickupService) Cancel(ctx context.Context, requester domain.Account, id string) (domain.PickupRequest, error) {
	now := time.Now().UTC()

	p, err := s.Store.Pickups().GetPickupByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.PickupRequest{}, ErrNotFound
		}
		return domain.PickupRequest{}, err
	}

	owner := p.CustomerID == requester.ID
	if !owner && requester.Role != domain.RoleAdmin {
		return domain.PickupRequest{}, ErrForbidden
	}

	if !p.Status.CanTransition(domain.PickupCancelled) {
		return domain.PickupRequest{}, fmt.Errorf("%w: %s -> cancelled", ErrInvalidTransition, p.Status)
	}

	p.Status = domain.PickupCancelled
	p.CancelledAt = &now
	p.UpdatedAt = now
	if err := s.Store.Pickups().UpdatePickup(ctx, p); err != nil {
		return domain.PickupRequest{}, fmt.Errorf("cancel pickup: %w", err)
	}
	return p, nil
}

// Delete removes a request outright. Admin-only, gated at the router.
func (s *PickupService) Delete(ctx context.Context, id string) error {
	if err := s.Store.Pickups().DeletePickup(ctx, id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("delete pickup: %w", err)
	}
	return nil
}

// Stats returns request counts keyed by status, with zeroes filled in so
// every status always appears.
func (s *PickupService) Stats(ctx context.Context) (map[domain.PickupStatus]int, error) {
	counts, err := s.Store.Pickups().CountPickupsByStatus(ctx)
	if err != nil {
		return nil, err
	}
	for _, st := range []domain.PickupStatus{
		domain.PickupPending, domain.PickupScheduled, domain.PickupInProgress,
		domain.PickupCompleted, domain.PickupCancelled,
	} {
		if _, ok := counts[st]; !ok {
			counts[st] = 0
		}
	}
	return counts, nil
}

// pageWindow turns 1-based page/limit query values into a store window,
// clamping junk input to sane defaults.
func pageWindow(page, limit int) (storeLimit, offset int) {
	if limit <= 0 {
		limit = defaultPageLimit
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}
	if page <= 0 {
		page = 1
	}
	return limit, (page - 1) * limit
}
