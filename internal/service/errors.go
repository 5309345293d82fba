package service

import (
	"errors"
	"fmt"
	"time"
)

// Error taxonomy. The HTTP layer maps these to status codes; every
// authentication failure keeps a generic client-facing message while the
// internal reason is logged.
var (
	ErrInvalidCredentials = errors.New("invalid_credentials")
	ErrConflict           = errors.New("email_already_registered")

	ErrTokenInvalid    = errors.New("token_invalid")
	ErrTokenExpired    = errors.New("token_expired")
	ErrTokenRevoked    = errors.New("token_revoked")
	ErrTokenStale      = errors.New("token_stale")
	ErrWrongTokenType  = errors.New("wrong_token_type")
	ErrAccountNotFound = errors.New("account_not_found")

	ErrValidation        = errors.New("validation_failed")
	ErrForbidden         = errors.New("forbidden")
	ErrNotFound          = errors.New("not_found")
	ErrInvalidTransition = errors.New("invalid_status_transition")

	ErrLastAdmin  = errors.New("last_admin")
	ErrSelfDelete = errors.New("self_delete")
)

// AccountLockedError signals an active lockout and carries the deadline so
// the HTTP layer can surface a retry time alongside the 423.
type AccountLockedError struct {
	Until time.Time
}

func (e *AccountLockedError) Error() string {
	return fmt.Sprintf("account locked until %s", e.Until.UTC().Format(time.RFC3339))
}
