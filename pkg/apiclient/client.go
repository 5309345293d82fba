package apiclient

import (
	"context"
	"net/http"
	"time"
)

// Client is the client for the AmarBin waste pickup API.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
}

// New creates a client for the API at the given base URL.
//
// Example:
//
//	client := apiclient.New("http://localhost:8080")
//	session, err := client.Login(ctx, "resident@example.com", "secret")
func New(baseURL string) *Client {
	return &Client{
		BaseURL: baseURL,
		HTTPClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// Register creates a new customer account and returns an authenticated
// session for it.
func (c *Client) Register(ctx context.Context, req RegisterRequest) (*Session, error) {
	var auth AuthResponse
	if err := c.doJSON(ctx, http.MethodPost, "/auth/register", req, &auth, http.StatusCreated); err != nil {
		return nil, err
	}
	return newSession(c, auth), nil
}

// Login authenticates with email and password and returns a session.
//
// When the account is locked after repeated failures the returned error is
// an *AccountLockedError carrying the unlock time.
func (c *Client) Login(ctx context.Context, email, password string) (*Session, error) {
	req := LoginRequest{Email: email, Password: password}

	var auth AuthResponse
	if err := c.doJSON(ctx, http.MethodPost, "/auth/login", req, &auth, http.StatusOK); err != nil {
		return nil, err
	}
	return newSession(c, auth), nil
}

// RefreshTokens exchanges a refresh token for a new token pair. The old
// refresh token is revoked server-side and cannot be used again.
func (c *Client) RefreshTokens(ctx context.Context, refreshToken string) (*TokenPair, error) {
	req := RefreshRequest{RefreshToken: refreshToken}

	var pair TokenPair
	if err := c.doJSON(ctx, http.MethodPost, "/auth/refresh", req, &pair, http.StatusOK); err != nil {
		return nil, err
	}
	return &pair, nil
}

// NewSessionFromTokens builds a session from previously stored tokens, for
// example after restarting a process that persisted them. The access token
// is refreshed on first use if expiresIn has already elapsed.
func (c *Client) NewSessionFromTokens(accessToken, refreshToken string, expiresIn int64) *Session {
	return &Session{
		client:       c,
		accessToken:  accessToken,
		refreshToken: refreshToken,
		expiresAt:    time.Now().Add(time.Duration(expiresIn) * time.Second),
	}
}
