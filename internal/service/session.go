package service

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/RafatAiub/AmarBin-Backend/internal/domain"
	"github.com/RafatAiub/AmarBin-Backend/internal/store"
	"github.com/RafatAiub/AmarBin-Backend/pkg/cryptox"
	"github.com/RafatAiub/AmarBin-Backend/pkg/idx"
	"github.com/RafatAiub/AmarBin-Backend/pkg/jwtx"
	"github.com/RafatAiub/AmarBin-Backend/pkg/slogx"
)

const minPasswordLength = 8

// RegisterInput carries everything the self-service registration flow needs.
// SourceAddress and DeviceContext are recorded against the session slot so
// the account holder can recognise their own devices later.
type RegisterInput struct {
	Email         string
	Name          string
	Password      string
	SourceAddress string
	DeviceContext string
}

type LoginInput struct {
	Email         string
	Password      string
	SourceAddress string
	DeviceContext string
}

// LogoutInput identifies what to tear down. RefreshToken may be empty when
// the client only wants the access token dead; AllDevices clears the whole
// refresh set instead of one slot.
type LogoutInput struct {
	AccountID    string
	AccessToken  string
	Claims       jwtx.Claims
	RefreshToken string
	AllDevices   bool
}

type ChangePasswordInput struct {
	AccountID       string
	CurrentPassword string
	NewPassword     string
	AccessToken     string
	Claims          jwtx.Claims
}

// SessionService orchestrates the account/session lifecycle: registration,
// login with lockout, refresh rotation, logout, password change, and the
// authentication gate every protected request passes through.
type SessionService struct {
	Store       store.Store
	Tokens      *TokenService
	Guard       *LoginGuard
	MaxSessions int
}

// Register creates a customer account and signs it straight in. The role is
// always customer here; privileged accounts come from the admin user path.
func (s *SessionService) Register(ctx context.Context, in RegisterInput) (domain.Account, domain.TokenPair, error) {
	now := time.Now().UTC()
	l := slogx.FromContext(ctx)

	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.Name = strings.TrimSpace(in.Name)
	if err := validateRegistration(in); err != nil {
		return domain.Account{}, domain.TokenPair{}, err
	}

	// Pre-check for a friendlier error. The unique index still backstops
	// races, mapped below.
	if _, err := s.Store.Accounts().GetAccountByEmail(ctx, in.Email); err == nil {
		return domain.Account{}, domain.TokenPair{}, ErrConflict
	} else if !errors.Is(err, store.ErrNotFound) {
		return domain.Account{}, domain.TokenPair{}, err
	}

	hash, err := cryptox.HashPassword(in.Password)
	if err != nil {
		return domain.Account{}, domain.TokenPair{}, fmt.Errorf("hash password: %w", err)
	}

	account := domain.Account{
		ID:           idx.New().String(),
		Email:        in.Email,
		Name:         in.Name,
		PasswordHash: hash,
		Role:         domain.RoleCustomer,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	pair, err := s.Tokens.IssuePair(ctx, account.ID, account.Role, now)
	if err != nil {
		return domain.Account{}, domain.TokenPair{}, err
	}

	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.Accounts().CreateAccount(ctx, account); err != nil {
			if errors.Is(err, store.ErrAlreadyExists) {
				return ErrConflict
			}
			return err
		}
		return s.storeSession(ctx, tx, account.ID, pair.RefreshToken, in.SourceAddress, in.DeviceContext, now)
	})
	if err != nil {
		return domain.Account{}, domain.TokenPair{}, err
	}

	l.Info("account registered", "account_id", account.ID, "email", account.Email)
	return account, pair, nil
}

// Login authenticates by email and password. The error for "no such account"
// and "wrong password" is deliberately the same so callers cannot probe which
// emails exist. A locked account is reported before any password comparison,
// so lockout also hides whether the supplied password was right.
func (s *SessionService) Login(ctx context.Context, in LoginInput) (domain.Account, domain.TokenPair, error) {
	now := time.Now().UTC()
	l := slogx.FromContext(ctx)

	email := strings.ToLower(strings.TrimSpace(in.Email))

	account, err := s.Store.Accounts().GetAccountByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			l.Warn("login failed, unknown email",
				"email", email, "source", in.SourceAddress, "device", in.DeviceContext)
			return domain.Account{}, domain.TokenPair{}, ErrInvalidCredentials
		}
		return domain.Account{}, domain.TokenPair{}, err
	}

	if account.IsLocked(now) {
		l.Warn("login rejected, account locked",
			"account_id", account.ID, "lock_until", *account.LockUntil,
			"source", in.SourceAddress, "device", in.DeviceContext)
		return domain.Account{}, domain.TokenPair{}, &AccountLockedError{Until: *account.LockUntil}
	}

	if err := cryptox.VerifyPassword(in.Password, account.PasswordHash); err != nil {
		l.Warn("login failed, wrong password",
			"account_id", account.ID, "source", in.SourceAddress, "device", in.DeviceContext)
		if gerr := s.Guard.RecordFailure(ctx, account, now, in.SourceAddress, in.DeviceContext); gerr != nil {
			l.Error("failed to record login failure", slogx.Err(gerr), "account_id", account.ID)
		}
		return domain.Account{}, domain.TokenPair{}, ErrInvalidCredentials
	}

	account, err = s.Guard.RecordSuccess(ctx, account, now, in.SourceAddress, in.DeviceContext)
	if err != nil {
		return domain.Account{}, domain.TokenPair{}, err
	}

	pair, err := s.Tokens.IssuePair(ctx, account.ID, account.Role, now)
	if err != nil {
		return domain.Account{}, domain.TokenPair{}, err
	}

	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		return s.storeSession(ctx, tx, account.ID, pair.RefreshToken, in.SourceAddress, in.DeviceContext, now)
	})
	if err != nil {
		return domain.Account{}, domain.TokenPair{}, err
	}

	l.Info("login succeeded", "account_id", account.ID)
	return account, pair, nil
}

// Refresh rotates a refresh token: the caller trades a live token for a new
// pair, and the stored record is rewritten in place with the successor's
// fingerprint. The slot keeps its original source address and device context
// since it is still the same logical session. A second use of the old token
// then misses the live set and is treated as revoked, which is what bounds
// the damage of a stolen token.
func (s *SessionService) Refresh(ctx context.Context, refreshToken string) (domain.Account, domain.TokenPair, error) {
	now := time.Now().UTC()
	l := slogx.FromContext(ctx)

	claims, err := s.Tokens.VerifyRefresh(ctx, refreshToken)
	if err != nil {
		return domain.Account{}, domain.TokenPair{}, err
	}

	rec, err := s.Store.RefreshTokens().GetRefreshTokenByHash(ctx, cryptox.FingerprintToken(refreshToken))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			// Signature is valid but the token is not in the live set, so it
			// was rotated away, evicted, or cleared by logout/password change.
			l.Info("refresh token not in live set, treating as revoked", "account_id", claims.Subject)
			return domain.Account{}, domain.TokenPair{}, ErrTokenRevoked
		}
		return domain.Account{}, domain.TokenPair{}, err
	}
	if rec.AccountID != claims.Subject {
		return domain.Account{}, domain.TokenPair{}, ErrTokenInvalid
	}
	if now.After(rec.ExpiresAt) {
		return domain.Account{}, domain.TokenPair{}, ErrTokenExpired
	}

	account, err := s.Store.Accounts().GetAccountByID(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Account{}, domain.TokenPair{}, ErrAccountNotFound
		}
		return domain.Account{}, domain.TokenPair{}, err
	}

	pair, err := s.Tokens.IssuePair(ctx, account.ID, account.Role, now)
	if err != nil {
		return domain.Account{}, domain.TokenPair{}, err
	}

	newHash := cryptox.FingerprintToken(pair.RefreshToken)
	if err := s.Store.RefreshTokens().ReplaceRefreshToken(ctx, rec.ID, newHash, now, now.Add(s.Tokens.RefreshTTL)); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			// Slot vanished between lookup and rotate (logout-all racing us).
			return domain.Account{}, domain.TokenPair{}, ErrTokenRevoked
		}
		return domain.Account{}, domain.TokenPair{}, err
	}

	return account, pair, nil
}

// Logout blacklists the presented access token for its remaining lifetime
// and removes refresh state: one slot when a refresh token is supplied,
// every slot when AllDevices is set. Possession of a refresh token is
// authorization enough to destroy it.
func (s *SessionService) Logout(ctx context.Context, in LogoutInput) error {
	now := time.Now().UTC()
	l := slogx.FromContext(ctx)

	if in.Claims.ExpiresAt != nil {
		s.Tokens.RevokeAccess(ctx, in.AccessToken, in.Claims.ExpiresAt.Time.Sub(now), "logout")
	}

	switch {
	case in.AllDevices:
		if err := s.Store.RefreshTokens().DeleteAccountRefreshTokens(ctx, in.AccountID); err != nil {
			return fmt.Errorf("clear refresh tokens: %w", err)
		}
		l.Info("logged out everywhere", "account_id", in.AccountID)
	case in.RefreshToken != "":
		err := s.Store.RefreshTokens().DeleteRefreshTokenByHash(ctx, cryptox.FingerprintToken(in.RefreshToken))
		if err != nil && !errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("delete refresh token: %w", err)
		}
		l.Info("logged out", "account_id", in.AccountID)
	default:
		l.Info("logged out, access token only", "account_id", in.AccountID)
	}
	return nil
}

// ChangePassword re-verifies the current password, rehashes, and then logs
// the account out everywhere: the refresh set is cleared, password_changed_at
// makes every earlier access token stale, and the current access token is
// blacklisted on top so it dies immediately rather than at the next gate.
func (s *SessionService) ChangePassword(ctx context.Context, in ChangePasswordInput) error {
	now := time.Now().UTC()
	l := slogx.FromContext(ctx)

	account, err := s.Store.Accounts().GetAccountByID(ctx, in.AccountID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrAccountNotFound
		}
		return err
	}

	if err := cryptox.VerifyPassword(in.CurrentPassword, account.PasswordHash); err != nil {
		return ErrInvalidCredentials
	}
	if len(in.NewPassword) < minPasswordLength {
		return fmt.Errorf("%w: password must be at least %d characters", ErrValidation, minPasswordLength)
	}

	hash, err := cryptox.HashPassword(in.NewPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.Accounts().UpdatePasswordHash(ctx, in.AccountID, hash, now); err != nil {
			return fmt.Errorf("update password hash: %w", err)
		}
		if err := tx.RefreshTokens().DeleteAccountRefreshTokens(ctx, in.AccountID); err != nil {
			return fmt.Errorf("clear refresh tokens: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	if in.Claims.ExpiresAt != nil {
		s.Tokens.RevokeAccess(ctx, in.AccessToken, in.Claims.ExpiresAt.Time.Sub(now), "password_change")
	}

	l.Info("password changed, all sessions cleared", "account_id", in.AccountID)
	return nil
}

// Authenticate is the gate every protected request passes through. Five
// checks, in order: token signature and expiry, revocation blacklist,
// account existence, lockout, and staleness against password_changed_at.
// Identity only attaches once all five pass.
func (s *SessionService) Authenticate(ctx context.Context, token string) (domain.Account, jwtx.Claims, error) {
	now := time.Now().UTC()

	claims, err := s.Tokens.VerifyAccess(ctx, token)
	if err != nil {
		return domain.Account{}, jwtx.Claims{}, err
	}

	account, err := s.Store.Accounts().GetAccountByID(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Account{}, jwtx.Claims{}, ErrAccountNotFound
		}
		return domain.Account{}, jwtx.Claims{}, err
	}

	if account.IsLocked(now) {
		return domain.Account{}, jwtx.Claims{}, &AccountLockedError{Until: *account.LockUntil}
	}

	// A token minted before the last password change verifies fine but must
	// not attach an identity.
	if account.PasswordChangedAt != nil && claims.IssuedAt != nil &&
		claims.IssuedAt.Time.Before(*account.PasswordChangedAt) {
		return domain.Account{}, jwtx.Claims{}, ErrTokenStale
	}

	return account, claims, nil
}

// OptionalAuthenticate runs the full gate and swallows any failure into an
// anonymous result. A stale or revoked token comes back anonymous, never as
// a partial identity.
func (s *SessionService) OptionalAuthenticate(ctx context.Context, token string) (domain.Account, jwtx.Claims, bool) {
	account, claims, err := s.Authenticate(ctx, token)
	if err != nil {
		return domain.Account{}, jwtx.Claims{}, false
	}
	return account, claims, true
}

// Sessions lists the live refresh-token slots for an account, newest first.
func (s *SessionService) Sessions(ctx context.Context, accountID string) ([]domain.RefreshToken, error) {
	return s.Store.RefreshTokens().ListAccountRefreshTokens(ctx, accountID)
}

// LoginHistory returns the bounded login audit trail, newest first.
func (s *SessionService) LoginHistory(ctx context.Context, accountID string) ([]domain.LoginRecord, error) {
	return s.Store.LoginHistory().ListAccountLoginHistory(ctx, accountID, s.Guard.HistoryLimit)
}

// storeSession persists one refresh-token slot and evicts the oldest beyond
// MaxSessions, inside the caller's transaction.
func (s *SessionService) storeSession(ctx context.Context, tx store.Tx, accountID, refreshToken, source, device string, now time.Time) error {
	rec := domain.RefreshToken{
		ID:            idx.New().String(),
		AccountID:     accountID,
		TokenHash:     cryptox.FingerprintToken(refreshToken),
		SourceAddress: source,
		DeviceContext: device,
		IssuedAt:      now,
		ExpiresAt:     now.Add(s.Tokens.RefreshTTL),
	}
	if err := tx.RefreshTokens().CreateRefreshToken(ctx, rec); err != nil {
		return fmt.Errorf("store refresh token: %w", err)
	}
	if err := tx.RefreshTokens().TrimAccountRefreshTokens(ctx, accountID, s.MaxSessions); err != nil {
		return fmt.Errorf("trim refresh tokens: %w", err)
	}
	return nil
}

func validateRegistration(in RegisterInput) error {
	return validateAccountFields(in.Email, in.Name, in.Password)
}

// validateAccountFields is shared by self-service registration and the
// admin user-creation path. Inputs are expected pre-trimmed.
func validateAccountFields(email, name, password string) error {
	if email == "" {
		return fmt.Errorf("%w: email is required", ErrValidation)
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return fmt.Errorf("%w: email is not valid", ErrValidation)
	}
	if name == "" {
		return fmt.Errorf("%w: name is required", ErrValidation)
	}
	if len(password) < minPasswordLength {
		return fmt.Errorf("%w: password must be at least %d characters", ErrValidation, minPasswordLength)
	}
	return nil
}
