package apiclient

import (
	"context"
	"net/http"
	"time"
)

// Me retrieves the account behind this session.
func (s *Session) Me(ctx context.Context) (*UserInfo, error) {
	var user UserInfo
	if err := s.doAuthJSON(ctx, http.MethodGet, "/auth/me", nil, &user, http.StatusOK); err != nil {
		return nil, err
	}
	return &user, nil
}

// UpdateProfile changes the display name of the account.
func (s *Session) UpdateProfile(ctx context.Context, name string) (*UserInfo, error) {
	req := UpdateProfileRequest{Name: name}

	var user UserInfo
	if err := s.doAuthJSON(ctx, http.MethodPatch, "/auth/me", req, &user, http.StatusOK); err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.user = user
	s.mu.Unlock()

	return &user, nil
}

// ChangePassword sets a new password after verifying the current one. The
// server revokes every session of the account on success, this one included,
// so the caller must log in again afterwards.
func (s *Session) ChangePassword(ctx context.Context, currentPassword, newPassword string) error {
	req := ChangePasswordRequest{
		CurrentPassword: currentPassword,
		NewPassword:     newPassword,
	}

	if err := s.doAuthJSON(ctx, http.MethodPatch, "/auth/change-password", req, nil, http.StatusOK); err != nil {
		return err
	}

	s.mu.Lock()
	s.accessToken = ""
	s.refreshToken = ""
	s.expiresAt = time.Time{}
	s.mu.Unlock()

	return nil
}

// ActiveSessions lists the account's live refresh sessions, newest first.
func (s *Session) ActiveSessions(ctx context.Context) ([]SessionInfo, error) {
	var sessions []SessionInfo
	if err := s.doAuthJSON(ctx, http.MethodGet, "/auth/sessions", nil, &sessions, http.StatusOK); err != nil {
		return nil, err
	}
	return sessions, nil
}

// LoginHistory lists recent login attempts against the account, newest
// first, successes and failures both.
func (s *Session) LoginHistory(ctx context.Context) ([]LoginRecordInfo, error) {
	var records []LoginRecordInfo
	if err := s.doAuthJSON(ctx, http.MethodGet, "/auth/history", nil, &records, http.StatusOK); err != nil {
		return nil, err
	}
	return records, nil
}
