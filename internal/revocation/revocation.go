// Package revocation holds the access-token blacklist. Entries are keyed by
// token fingerprint and expire with the token they block, so the cache never
// grows beyond the set of live revoked tokens.
//
// The cache is an optional accelerator: callers must treat ErrUnavailable as
// "cannot confirm revocation" and degrade rather than fail the request.
package revocation

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrUnavailable wraps every backend outage. Callers branch on it with
	// errors.Is and take their degrade path.
	ErrUnavailable = errors.New("revocation: cache unavailable")

	// ErrNotFound is returned by Get when the fingerprint is not revoked.
	ErrNotFound = errors.New("revocation: not found")
)

// Cache is the revocation capability. Implementations namespace their own
// keys; callers pass bare token fingerprints.
type Cache interface {
	// Set marks a fingerprint revoked for ttl, recording why.
	Set(ctx context.Context, fingerprint, reason string, ttl time.Duration) error

	// Get returns the recorded reason, or ErrNotFound.
	Get(ctx context.Context, fingerprint string) (string, error)

	// Exists reports whether the fingerprint is currently revoked.
	Exists(ctx context.Context, fingerprint string) (bool, error)

	// Delete clears a revocation before its TTL lapses.
	Delete(ctx context.Context, fingerprint string) error

	// Available reports point-in-time backend reachability.
	Available(ctx context.Context) bool
}

// Disabled returns a Cache for deployments without a cache backend. Every
// operation reports ErrUnavailable, so call sites run the same degrade path
// they would during an outage.
func Disabled() Cache { return disabled{} }

type disabled struct{}

func (disabled) Set(context.Context, string, string, time.Duration) error { return ErrUnavailable }
func (disabled) Get(context.Context, string) (string, error)              { return "", ErrUnavailable }
func (disabled) Exists(context.Context, string) (bool, error)             { return false, ErrUnavailable }
func (disabled) Delete(context.Context, string) error                     { return ErrUnavailable }
func (disabled) Available(context.Context) bool                           { return false }
