package http

import (
	"net/http"

	"github.com/RafatAiub/AmarBin-Backend/internal/domain"
	"github.com/RafatAiub/AmarBin-Backend/internal/service"
	"github.com/RafatAiub/AmarBin-Backend/pkg/apiclient"
	"github.com/RafatAiub/AmarBin-Backend/pkg/httpx"
)

// UsersHandler serves the admin-only /users surface.
type UsersHandler struct {
	Users *service.UserService
}

// HandleList returns a page of accounts, optionally filtered by role.
func (h *UsersHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	page, limit := clampPage(queryInt(r, "page", 1), queryInt(r, "limit", 0))
	items, total, err := h.Users.List(r.Context(), service.ListUsersInput{
		Role:  r.URL.Query().Get("role"),
		Page:  page,
		Limit: limit,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	out := apiclient.UserPage{
		Items: make([]apiclient.UserInfo, 0, len(items)),
		Total: total,
		Page:  page,
		Limit: limit,
	}
	for _, item := range items {
		out.Items = append(out.Items, userInfo(item))
	}
	httpx.Success(w, http.StatusOK, "ok", out)
}

// HandleGet returns one account by id.
func (h *UsersHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	account, err := h.Users.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.Success(w, http.StatusOK, "ok", userInfo(account))
}

// HandleCreate provisions an account with an explicit role, typically an
// employee or another admin.
func (h *UsersHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req apiclient.CreateUserRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	account, err := h.Users.Create(r.Context(), service.CreateUserInput{
		Email:    req.Email,
		Name:     req.Name,
		Password: req.Password,
		Role:     domain.Role(req.Role),
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.Success(w, http.StatusCreated, "user created", userInfo(account))
}

// HandleUpdateRole changes an account's role, guarding the last admin.
func (h *UsersHandler) HandleUpdateRole(w http.ResponseWriter, r *http.Request) {
	var req apiclient.UpdateRoleRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	account, err := h.Users.UpdateRole(r.Context(), r.PathValue("id"), domain.Role(req.Role))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.Success(w, http.StatusOK, "role updated", userInfo(account))
}

// HandleDelete removes an account, its sessions, and its login history.
func (h *UsersHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	p, ok := principalFrom(r.Context())
	if !ok {
		httpx.Error(w, http.StatusUnauthorized, "authentication required")
		return
	}

	if err := h.Users.Delete(r.Context(), p.Account.ID, r.PathValue("id")); err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.Success(w, http.StatusOK, "user deleted", nil)
}
