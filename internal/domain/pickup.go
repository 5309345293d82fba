package domain

import "time"

// PickupStatus tracks a request through its lifecycle. Transitions are
// enforced in the service layer; the store persists whatever it is given.
type PickupStatus string

const (
	PickupPending    PickupStatus = "pending"
	PickupScheduled  PickupStatus = "scheduled"
	PickupInProgress PickupStatus = "in_progress"
	PickupCompleted  PickupStatus = "completed"
	PickupCancelled  PickupStatus = "cancelled"
)

// Valid reports whether the status is one of the known set.
func (s PickupStatus) Valid() bool {
	switch s {
	case PickupPending, PickupScheduled, PickupInProgress, PickupCompleted, PickupCancelled:
		return true
	}
	return false
}

// CanTransition reports whether moving from s to next is allowed.
// Completed and cancelled are terminal.
func (s PickupStatus) CanTransition(next PickupStatus) bool {
	switch s {
	case PickupPending:
		return next == PickupScheduled || next == PickupCancelled
	case PickupScheduled:
		return next == PickupInProgress || next == PickupCancelled
	case PickupInProgress:
		return next == PickupCompleted
	}
	return false
}

// WasteType categorises what the customer wants collected.
type WasteType string

const (
	WasteHousehold  WasteType = "household"
	WasteRecyclable WasteType = "recyclable"
	WasteOrganic    WasteType = "organic"
	WasteHazardous  WasteType = "hazardous"
	WasteBulk       WasteType = "bulk"
)

// Valid reports whether the waste type is one of the known set.
func (w WasteType) Valid() bool {
	switch w {
	case WasteHousehold, WasteRecyclable, WasteOrganic, WasteHazardous, WasteBulk:
		return true
	}
	return false
}

// PickupRequest is a customer's ask for a waste collection.
type PickupRequest struct {
	ID         string
	CustomerID string
	AssigneeID *string // employee working the request, nil until scheduled

	WasteType     WasteType
	QuantityKG    float64
	Address       string
	Notes         string
	PreferredDate *time.Time

	Status       PickupStatus
	ScheduledFor *time.Time
	CompletedAt  *time.Time
	CancelledAt  *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}
