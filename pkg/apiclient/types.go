package apiclient

import (
	"encoding/json"
	"time"
)

// ============================================================================
// Envelope Types
// ============================================================================

// Envelope is the uniform response wrapper every endpoint returns. Data holds
// the endpoint-specific payload and is decoded in a second pass.
type Envelope struct {
	Status    string          `json:"status"`
	Message   string          `json:"message"`
	Timestamp time.Time       `json:"timestamp"`
	Errors    []string        `json:"errors,omitempty"`
	Data      json.RawMessage `json:"data,omitempty"`
}

// LockoutData rides in the data field of a 423 response.
type LockoutData struct {
	// LockUntil is when the account unlocks and logins may resume.
	LockUntil time.Time `json:"lock_until"`
}

// ============================================================================
// Auth Types
// ============================================================================

type RegisterRequest struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Password string `json:"password"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// LogoutRequest tears down the current session. Set All to log out every
// device; RefreshToken removes just that session slot.
type LogoutRequest struct {
	RefreshToken string `json:"refresh_token,omitempty"`
	All          bool   `json:"all,omitempty"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

type UpdateProfileRequest struct {
	Name string `json:"name"`
}

// TokenPair is the access/refresh pair issued at register, login, and
// refresh. The access token goes into the Authorization header; the refresh
// token is only ever sent to POST /auth/refresh and POST /auth/logout.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`

	// TokenType is always "Bearer".
	TokenType string `json:"token_type"`

	// ExpiresIn is the access token lifetime in seconds.
	ExpiresIn int64 `json:"expires_in"`
}

// UserInfo is the public view of an account. The password hash and lockout
// counters never leave the server.
type UserInfo struct {
	ID        string     `json:"id"`
	Email     string     `json:"email"`
	Name      string     `json:"name"`
	Role      string     `json:"role"`
	LastLogin *time.Time `json:"last_login,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// AuthResponse is the register/login payload: the signed-in user plus a
// fresh token pair.
type AuthResponse struct {
	User   UserInfo  `json:"user"`
	Tokens TokenPair `json:"tokens"`
}

// SessionInfo describes one live refresh-token slot. The token itself is
// never returned, only metadata the account holder can recognise.
type SessionInfo struct {
	ID            string    `json:"id"`
	SourceAddress string    `json:"source_address,omitempty"`
	DeviceContext string    `json:"device_context,omitempty"`
	IssuedAt      time.Time `json:"issued_at"`
	ExpiresAt     time.Time `json:"expires_at"`
}

// LoginRecordInfo is one entry in the bounded login audit trail.
type LoginRecordInfo struct {
	At            time.Time `json:"at"`
	SourceAddress string    `json:"source_address,omitempty"`
	DeviceContext string    `json:"device_context,omitempty"`
	Success       bool      `json:"success"`
}

// ============================================================================
// Pickup Types
// ============================================================================

type CreatePickupRequest struct {
	WasteType     string     `json:"waste_type"`
	QuantityKG    float64    `json:"quantity_kg"`
	Address       string     `json:"address"`
	Notes         string     `json:"notes,omitempty"`
	PreferredDate *time.Time `json:"preferred_date,omitempty"`
}

// UpdatePickupRequest patches a pending request; absent fields stay as-is.
type UpdatePickupRequest struct {
	WasteType     *string    `json:"waste_type,omitempty"`
	QuantityKG    *float64   `json:"quantity_kg,omitempty"`
	Address       *string    `json:"address,omitempty"`
	Notes         *string    `json:"notes,omitempty"`
	PreferredDate *time.Time `json:"preferred_date,omitempty"`
}

type AssignPickupRequest struct {
	EmployeeID   string     `json:"employee_id"`
	ScheduledFor *time.Time `json:"scheduled_for,omitempty"`
}

type UpdateStatusRequest struct {
	// Status must be "in_progress" or "completed"; cancellation has its own
	// endpoint.
	Status string `json:"status"`
}

type PickupInfo struct {
	ID         string  `json:"id"`
	CustomerID string  `json:"customer_id"`
	AssigneeID *string `json:"assignee_id,omitempty"`

	WasteType     string     `json:"waste_type"`
	QuantityKG    float64    `json:"quantity_kg"`
	Address       string     `json:"address"`
	Notes         string     `json:"notes,omitempty"`
	PreferredDate *time.Time `json:"preferred_date,omitempty"`

	Status       string     `json:"status"`
	ScheduledFor *time.Time `json:"scheduled_for,omitempty"`
	CompletedAt  *time.Time `json:"completed_at,omitempty"`
	CancelledAt  *time.Time `json:"cancelled_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// PickupPage is one page of a pickup listing plus the unpaged total.
type PickupPage struct {
	Items []PickupInfo `json:"items"`
	Total int          `json:"total"`
	Page  int          `json:"page"`
	Limit int          `json:"limit"`
}

// StatsResponse maps pickup status to count. Every status is present, zero
// or not.
type StatsResponse map[string]int

// ============================================================================
// User Management Types
// ============================================================================

type CreateUserRequest struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

type UpdateRoleRequest struct {
	Role string `json:"role"`
}

type UserPage struct {
	Items []UserInfo `json:"items"`
	Total int        `json:"total"`
	Page  int        `json:"page"`
	Limit int        `json:"limit"`
}

// ============================================================================
// Health Types
// ============================================================================

// HealthResponse is returned by the /livez and /readyz endpoints.
type HealthResponse struct {
	Status  string `json:"status"`
	Uptime  string `json:"uptime"`
	Version string `json:"version"`

	// Checks is only populated by /readyz.
	Checks *HealthChecks `json:"checks,omitempty"`
}

// HealthChecks reports per-dependency state. The database is mandatory for
// readiness; the revocation cache is reported but never fails the probe.
type HealthChecks struct {
	Database string `json:"database"`
	Cache    string `json:"cache"`
}
