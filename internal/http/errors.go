package http

import (
	"errors"
	"net/http"
	"strings"

	"github.com/RafatAiub/AmarBin-Backend/internal/service"
	"github.com/RafatAiub/AmarBin-Backend/pkg/apiclient"
	"github.com/RafatAiub/AmarBin-Backend/pkg/httpx"
	"github.com/RafatAiub/AmarBin-Backend/pkg/slogx"
)

// writeAuthError responds to a failed authentication gate. Every token
// problem collapses into one generic 401 so callers cannot probe which
// check failed; the lockout case alone is distinct because the client is
// expected to tell the user when to come back.
func writeAuthError(w http.ResponseWriter, r *http.Request, err error) {
	var locked *service.AccountLockedError
	if errors.As(err, &locked) {
		httpx.ErrorData(w, http.StatusLocked, "account locked", apiclient.LockoutData{LockUntil: locked.Until})
		return
	}

	slogx.FromContext(r.Context()).Warn("authentication rejected",
		slogx.Err(err), "user_agent", r.UserAgent())
	httpx.Error(w, http.StatusUnauthorized, "invalid or expired token")
}

// writeServiceError maps the service error taxonomy onto HTTP responses.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var locked *service.AccountLockedError

	switch {
	case errors.As(err, &locked):
		httpx.ErrorData(w, http.StatusLocked, "account locked", apiclient.LockoutData{LockUntil: locked.Until})

	case errors.Is(err, service.ErrValidation):
		httpx.Error(w, http.StatusBadRequest, "validation failed", errDetail(err, service.ErrValidation.Error()))

	case errors.Is(err, service.ErrConflict):
		httpx.Error(w, http.StatusBadRequest, "email already registered")

	case errors.Is(err, service.ErrInvalidCredentials):
		httpx.Error(w, http.StatusUnauthorized, "invalid credentials")

	case errors.Is(err, service.ErrTokenInvalid),
		errors.Is(err, service.ErrTokenExpired),
		errors.Is(err, service.ErrTokenRevoked),
		errors.Is(err, service.ErrTokenStale),
		errors.Is(err, service.ErrWrongTokenType),
		errors.Is(err, service.ErrAccountNotFound):
		slogx.FromContext(r.Context()).Warn("token rejected",
			slogx.Err(err), "user_agent", r.UserAgent())
		httpx.Error(w, http.StatusUnauthorized, "invalid or expired token")

	case errors.Is(err, service.ErrForbidden):
		httpx.Error(w, http.StatusForbidden, "insufficient permissions")

	case errors.Is(err, service.ErrNotFound):
		httpx.Error(w, http.StatusNotFound, "not found")

	case errors.Is(err, service.ErrInvalidTransition):
		httpx.Error(w, http.StatusBadRequest, "invalid status transition", errDetail(err, service.ErrInvalidTransition.Error()))

	case errors.Is(err, service.ErrLastAdmin):
		httpx.Error(w, http.StatusBadRequest, "cannot remove the last admin")

	case errors.Is(err, service.ErrSelfDelete):
		httpx.Error(w, http.StatusBadRequest, "cannot delete your own account")

	default:
		slogx.FromContext(r.Context()).Error("request failed", slogx.Err(err))
		httpx.Error(w, http.StatusInternalServerError, "internal error")
	}
}

// errDetail strips the sentinel prefix so the human-readable remainder can
// ride in the envelope's errors array.
func errDetail(err error, sentinel string) string {
	return strings.TrimPrefix(strings.TrimPrefix(err.Error(), sentinel), ": ")
}
