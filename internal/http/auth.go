package http

import (
	"errors"
	"net/http"

	"github.com/RafatAiub/AmarBin-Backend/internal/service"
	"github.com/RafatAiub/AmarBin-Backend/pkg/apiclient"
	"github.com/RafatAiub/AmarBin-Backend/pkg/httpx"
)

// AuthHandler serves the /auth surface: registration, the login/refresh/
// logout session lifecycle, password changes, and the self-service views.
type AuthHandler struct {
	Sessions *service.SessionService
	Users    *service.UserService
}

// HandleRegister creates a customer account and signs it straight in.
func (h *AuthHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req apiclient.RegisterRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	source, device := requestSource(r)
	account, pair, err := h.Sessions.Register(r.Context(), service.RegisterInput{
		Email:         req.Email,
		Name:          req.Name,
		Password:      req.Password,
		SourceAddress: source,
		DeviceContext: device,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.Success(w, http.StatusCreated, "account registered", apiclient.AuthResponse{
		User:   userInfo(account),
		Tokens: tokenPair(pair),
	})
}

// HandleLogin trades credentials for a token pair. Lockout surfaces as 423
// with the unlock time; everything else that goes wrong is a uniform 401.
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req apiclient.LoginRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Email == "" || req.Password == "" {
		httpx.Error(w, http.StatusBadRequest, "email and password are required")
		return
	}

	source, device := requestSource(r)
	account, pair, err := h.Sessions.Login(r.Context(), service.LoginInput{
		Email:         req.Email,
		Password:      req.Password,
		SourceAddress: source,
		DeviceContext: device,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.Success(w, http.StatusOK, "login successful", apiclient.AuthResponse{
		User:   userInfo(account),
		Tokens: tokenPair(pair),
	})
}

// HandleRefresh rotates a refresh token for a fresh pair.
func (h *AuthHandler) HandleRefresh(w http.ResponseWriter, r *http.Request) {
	var req apiclient.RefreshRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.RefreshToken == "" {
		httpx.Error(w, http.StatusBadRequest, "refresh_token is required")
		return
	}

	_, pair, err := h.Sessions.Refresh(r.Context(), req.RefreshToken)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.Success(w, http.StatusOK, "token refreshed", tokenPair(pair))
}

// HandleLogout blacklists the presented access token and removes refresh
// state. An empty body logs out just this access token; refresh_token in the
// body also frees that session slot; all=true clears every device.
func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	p, ok := principalFrom(r.Context())
	if !ok {
		httpx.Error(w, http.StatusUnauthorized, "authentication required")
		return
	}

	var req apiclient.LogoutRequest
	if !decodeJSONAllowEmpty(w, r, &req) {
		return
	}

	err := h.Sessions.Logout(r.Context(), service.LogoutInput{
		AccountID:    p.Account.ID,
		AccessToken:  p.Token,
		Claims:       p.Claims,
		RefreshToken: req.RefreshToken,
		AllDevices:   req.All,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.Success(w, http.StatusOK, "logged out", nil)
}

// HandleChangePassword re-verifies the current password and rotates to the
// new one, which logs the account out everywhere.
func (h *AuthHandler) HandleChangePassword(w http.ResponseWriter, r *http.Request) {
	p, ok := principalFrom(r.Context())
	if !ok {
		httpx.Error(w, http.StatusUnauthorized, "authentication required")
		return
	}

	var req apiclient.ChangePasswordRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.CurrentPassword == "" || req.NewPassword == "" {
		httpx.Error(w, http.StatusBadRequest, "current_password and new_password are required")
		return
	}

	err := h.Sessions.ChangePassword(r.Context(), service.ChangePasswordInput{
		AccountID:       p.Account.ID,
		CurrentPassword: req.CurrentPassword,
		NewPassword:     req.NewPassword,
		AccessToken:     p.Token,
		Claims:          p.Claims,
	})
	if err != nil {
		// A wrong current password on an already-authenticated request is a
		// bad request, not a failed login.
		if errors.Is(err, service.ErrInvalidCredentials) {
			httpx.Error(w, http.StatusBadRequest, "current password is incorrect")
			return
		}
		writeServiceError(w, r, err)
		return
	}

	httpx.Success(w, http.StatusOK, "password changed", nil)
}

// HandleMe returns the authenticated account.
func (h *AuthHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	p, ok := principalFrom(r.Context())
	if !ok {
		httpx.Error(w, http.StatusUnauthorized, "authentication required")
		return
	}
	httpx.Success(w, http.StatusOK, "ok", userInfo(p.Account))
}

// HandleUpdateMe renames the authenticated account.
func (h *AuthHandler) HandleUpdateMe(w http.ResponseWriter, r *http.Request) {
	p, ok := principalFrom(r.Context())
	if !ok {
		httpx.Error(w, http.StatusUnauthorized, "authentication required")
		return
	}

	var req apiclient.UpdateProfileRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	account, err := h.Users.UpdateProfile(r.Context(), p.Account.ID, req.Name)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.Success(w, http.StatusOK, "profile updated", userInfo(account))
}

// HandleSessions lists the caller's live refresh-token slots.
func (h *AuthHandler) HandleSessions(w http.ResponseWriter, r *http.Request) {
	p, ok := principalFrom(r.Context())
	if !ok {
		httpx.Error(w, http.StatusUnauthorized, "authentication required")
		return
	}

	sessions, err := h.Sessions.Sessions(r.Context(), p.Account.ID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	out := make([]apiclient.SessionInfo, 0, len(sessions))
	for _, s := range sessions {
		out = append(out, sessionInfo(s))
	}
	httpx.Success(w, http.StatusOK, "ok", out)
}

// HandleHistory lists the caller's recent login attempts, newest first.
func (h *AuthHandler) HandleHistory(w http.ResponseWriter, r *http.Request) {
	p, ok := principalFrom(r.Context())
	if !ok {
		httpx.Error(w, http.StatusUnauthorized, "authentication required")
		return
	}

	history, err := h.Sessions.LoginHistory(r.Context(), p.Account.ID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	out := make([]apiclient.LoginRecordInfo, 0, len(history))
	for _, rec := range history {
		out = append(out, loginRecordInfo(rec))
	}
	httpx.Success(w, http.StatusOK, "ok", out)
}
