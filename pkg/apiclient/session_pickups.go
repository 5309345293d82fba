package apiclient

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
)

// ListPickupsOptions filters and pages a pickup listing. Zero values are
// omitted and the server applies its defaults.
type ListPickupsOptions struct {
	Status    string
	WasteType string
	Page      int
	Limit     int
}

func (o ListPickupsOptions) query() string {
	q := url.Values{}
	if o.Status != "" {
		q.Set("status", o.Status)
	}
	if o.WasteType != "" {
		q.Set("waste_type", o.WasteType)
	}
	if o.Page > 0 {
		q.Set("page", strconv.Itoa(o.Page))
	}
	if o.Limit > 0 {
		q.Set("limit", strconv.Itoa(o.Limit))
	}
	if len(q) == 0 {
		return ""
	}
	return "?" + q.Encode()
}

// CreatePickup submits a new waste pickup request for the session's account.
// Only customers can create pickups.
func (s *Session) CreatePickup(ctx context.Context, req CreatePickupRequest) (*PickupInfo, error) {
	var pickup PickupInfo
	if err := s.doAuthJSON(ctx, http.MethodPost, "/pickups", req, &pickup, http.StatusCreated); err != nil {
		return nil, err
	}
	return &pickup, nil
}

// ListPickups returns a page of pickups. Customers see their own requests,
// staff see everything.
func (s *Session) ListPickups(ctx context.Context, opts ListPickupsOptions) (*PickupPage, error) {
	var page PickupPage
	if err := s.doAuthJSON(ctx, http.MethodGet, "/pickups"+opts.query(), nil, &page, http.StatusOK); err != nil {
		return nil, err
	}
	return &page, nil
}

// GetPickup retrieves a single pickup by ID.
func (s *Session) GetPickup(ctx context.Context, id string) (*PickupInfo, error) {
	var pickup PickupInfo
	if err := s.doAuthJSON(ctx, http.MethodGet, "/pickups/"+id, nil, &pickup, http.StatusOK); err != nil {
		return nil, err
	}
	return &pickup, nil
}

// UpdatePickup edits a pickup that is still pending. Nil fields are left
// unchanged.
func (s *Session) UpdatePickup(ctx context.Context, id string, req UpdatePickupRequest) (*PickupInfo, error) {
	var pickup PickupInfo
	if err := s.doAuthJSON(ctx, http.MethodPatch, "/pickups/"+id, req, &pickup, http.StatusOK); err != nil {
		return nil, err
	}
	return &pickup, nil
}

// AssignPickup schedules a pending pickup onto an employee. Admin only.
func (s *Session) AssignPickup(ctx context.Context, id string, req AssignPickupRequest) (*PickupInfo, error) {
	var pickup PickupInfo
	if err := s.doAuthJSON(ctx, http.MethodPost, "/pickups/"+id+"/assign", req, &pickup, http.StatusOK); err != nil {
		return nil, err
	}
	return &pickup, nil
}

// UpdatePickupStatus moves a scheduled pickup forward, to "in_progress" or
// "completed". Employees can only advance pickups assigned to them.
func (s *Session) UpdatePickupStatus(ctx context.Context, id, status string) (*PickupInfo, error) {
	req := UpdateStatusRequest{Status: status}

	var pickup PickupInfo
	if err := s.doAuthJSON(ctx, http.MethodPost, "/pickups/"+id+"/status", req, &pickup, http.StatusOK); err != nil {
		return nil, err
	}
	return &pickup, nil
}

// CancelPickup cancels a pickup that has not started yet. The owning
// customer or an admin can cancel.
func (s *Session) CancelPickup(ctx context.Context, id string) (*PickupInfo, error) {
	var pickup PickupInfo
	if err := s.doAuthJSON(ctx, http.MethodPost, "/pickups/"+id+"/cancel", nil, &pickup, http.StatusOK); err != nil {
		return nil, err
	}
	return &pickup, nil
}

// DeletePickup removes a pickup record entirely. Admin only.
func (s *Session) DeletePickup(ctx context.Context, id string) error {
	return s.doAuthJSON(ctx, http.MethodDelete, "/pickups/"+id, nil, nil, http.StatusOK)
}

// PickupStats returns the count of pickups per status. Admin only.
func (s *Session) PickupStats(ctx context.Context) (StatsResponse, error) {
	var stats StatsResponse
	if err := s.doAuthJSON(ctx, http.MethodGet, "/pickups/stats", nil, &stats, http.StatusOK); err != nil {
		return nil, err
	}
	return stats, nil
}
