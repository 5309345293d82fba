package apiclient

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
)

// ListUsersOptions filters and pages a user listing. Zero values are omitted.
type ListUsersOptions struct {
	Role  string
	Page  int
	Limit int
}

func (o ListUsersOptions) query() string {
	q := url.Values{}
	if o.Role != "" {
		q.Set("role", o.Role)
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

// ListUsers returns a page of accounts. Admin only, like everything under
// /users.
func (s *Session) ListUsers(ctx context.Context, opts ListUsersOptions) (*UserPage, error) {
	var page UserPage
	if err := s.doAuthJSON(ctx, http.MethodGet, "/users"+opts.query(), nil, &page, http.StatusOK); err != nil {
		return nil, err
	}
	return &page, nil
}

// GetUser retrieves a single account by ID.
func (s *Session) GetUser(ctx context.Context, id string) (*UserInfo, error) {
	var user UserInfo
	if err := s.doAuthJSON(ctx, http.MethodGet, "/users/"+id, nil, &user, http.StatusOK); err != nil {
		return nil, err
	}
	return &user, nil
}

// CreateUser provisions an account with an explicit role, typically an
// employee or another admin.
func (s *Session) CreateUser(ctx context.Context, req CreateUserRequest) (*UserInfo, error) {
	var user UserInfo
	if err := s.doAuthJSON(ctx, http.MethodPost, "/users", req, &user, http.StatusCreated); err != nil {
		return nil, err
	}
	return &user, nil
}

// UpdateUserRole changes an account's role. Demoting the last remaining
// admin is rejected by the server.
func (s *Session) UpdateUserRole(ctx context.Context, id, role string) (*UserInfo, error) {
	req := UpdateRoleRequest{Role: role}

	var user UserInfo
	if err := s.doAuthJSON(ctx, http.MethodPatch, "/users/"+id+"/role", req, &user, http.StatusOK); err != nil {
		return nil, err
	}
	return &user, nil
}

// DeleteUser removes an account and revokes all of its sessions.
func (s *Session) DeleteUser(ctx context.Context, id string) error {
	return s.doAuthJSON(ctx, http.MethodDelete, "/users/"+id, nil, nil, http.StatusOK)
}
