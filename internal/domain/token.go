package domain

import "time"

// TokenPair is what the auth endpoints return: a short-lived access token and
// a long-lived refresh token, signed with distinct secrets.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type,omitempty"` // typically "Bearer"
	ExpiresIn    int64  `json:"expires_in"`           // seconds until access-token expiry
}

// RefreshToken models one stored session slot. Only the SHA-256 fingerprint
// of the signed token is persisted, never the raw value. Rotation-on-use
// rewrites the same record with the successor's hash and expiry.
type RefreshToken struct {
	ID            string
	AccountID     string
	TokenHash     string // deterministic fingerprint (base64url SHA-256)
	SourceAddress string // client IP captured at issuance
	DeviceContext string // user agent captured at issuance
	IssuedAt      time.Time
	ExpiresAt     time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
