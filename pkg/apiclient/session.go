package apiclient

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"
)

// tokenExpiryBuffer refreshes the access token slightly before its actual
// expiry so in-flight requests do not race the deadline.
const tokenExpiryBuffer = 30 * time.Second

// Session is an authenticated session with automatic access token refresh.
// It is safe for concurrent use.
type Session struct {
	client *Client

	mu           sync.RWMutex
	user         UserInfo
	accessToken  string
	refreshToken string
	expiresAt    time.Time
}

func newSession(c *Client, auth AuthResponse) *Session {
	return &Session{
		client:       c,
		user:         auth.User,
		accessToken:  auth.Tokens.AccessToken,
		refreshToken: auth.Tokens.RefreshToken,
		expiresAt:    time.Now().Add(time.Duration(auth.Tokens.ExpiresIn) * time.Second),
	}
}

// getValidToken returns the current access token, refreshing it first when
// it is expired or about to expire.
func (s *Session) getValidToken(ctx context.Context) (string, error) {
	s.mu.RLock()
	if time.Now().Before(s.expiresAt.Add(-tokenExpiryBuffer)) {
		token := s.accessToken
		s.mu.RUnlock()
		return token, nil
	}
	s.mu.RUnlock()

	s.mu.Lock()
	defer s.mu.Unlock()

	// Another goroutine may have refreshed while we waited for the lock.
	if time.Now().Before(s.expiresAt.Add(-tokenExpiryBuffer)) {
		return s.accessToken, nil
	}

	if s.refreshToken == "" {
		return "", fmt.Errorf("session has been logged out")
	}

	pair, err := s.client.RefreshTokens(ctx, s.refreshToken)
	if err != nil {
		return "", fmt.Errorf("failed to refresh session: %w", err)
	}

	s.accessToken = pair.AccessToken
	s.refreshToken = pair.RefreshToken
	s.expiresAt = time.Now().Add(time.Duration(pair.ExpiresIn) * time.Second)

	return s.accessToken, nil
}

// AccessToken returns the current access token. It may be expired; use a
// session method instead when you need a token that is still valid.
func (s *Session) AccessToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.accessToken
}

// RefreshToken returns the current refresh token, for callers persisting the
// session across restarts.
func (s *Session) RefreshToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.refreshToken
}

// User returns the account the session was created for. It is the zero value
// on sessions restored with NewSessionFromTokens; call Me for fresh data.
func (s *Session) User() UserInfo {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user
}

// Logout revokes this session's tokens on the server and clears them
// locally. The session cannot be used afterwards.
func (s *Session) Logout(ctx context.Context) error {
	return s.logout(ctx, false)
}

// LogoutAll revokes every session of the account, not just this one.
func (s *Session) LogoutAll(ctx context.Context) error {
	return s.logout(ctx, true)
}

func (s *Session) logout(ctx context.Context, all bool) error {
	// Refresh up front if needed, so the body carries the refresh token the
	// server currently knows rather than one a mid-request rotation retired.
	if _, err := s.getValidToken(ctx); err != nil {
		return err
	}

	s.mu.RLock()
	req := LogoutRequest{RefreshToken: s.refreshToken, All: all}
	s.mu.RUnlock()

	if err := s.doAuthJSON(ctx, http.MethodPost, "/auth/logout", req, nil, http.StatusOK); err != nil {
		return err
	}

	s.mu.Lock()
	s.accessToken = ""
	s.refreshToken = ""
	s.expiresAt = time.Time{}
	s.mu.Unlock()

	return nil
}
