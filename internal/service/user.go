package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/RafatAiub/AmarBin-Backend/internal/domain"
	"github.com/RafatAiub/AmarBin-Backend/internal/store"
	"github.com/RafatAiub/AmarBin-Backend/pkg/cryptox"
	"github.com/RafatAiub/AmarBin-Backend/pkg/idx"
	"github.com/RafatAiub/AmarBin-Backend/pkg/slogx"
)

// UserService covers admin account management plus the small self-service
// profile surface. Role gating happens at the router; the data-dependent
// guards (last admin, self-delete) live here.
type UserService struct {
	Store store.Store
}

type CreateUserInput struct {
	Email    string
	Name     string
	Password string
	Role     domain.Role
}

type ListUsersInput struct {
	Role  string
	Page  int
	Limit int
}

// List returns a page of accounts plus the unpaged total.
func (s *UserService) List(ctx context.Context, in ListUsersInput) ([]domain.Account, int, error) {
	f := store.AccountFilter{}
	if in.Role != "" {
		role := domain.Role(in.Role)
		if !role.Valid() {
			return nil, 0, fmt.Errorf("%w: unknown role %q", ErrValidation, in.Role)
		}
		f.Role = role
	}
	f.Limit, f.Offset = pageWindow(in.Page, in.Limit)

	total, err := s.Store.Accounts().CountAccounts(ctx, f)
	if err != nil {
		return nil, 0, err
	}
	list, err := s.Store.Accounts().ListAccounts(ctx, f)
	if err != nil {
		return nil, 0, err
	}
	return list, total, nil
}

// Get fetches one account by id.
func (s *UserService) Get(ctx context.Context, id string) (domain.Account, error) {
	a, err := s.Store.Accounts().GetAccountByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Account{}, ErrNotFound
		}
		return domain.Account{}, err
	}
	return a, nil
}

// Create is the privileged account-creation path: unlike self-service
// registration the role is settable, and no tokens are issued.
func (s *UserService) Create(ctx context.Context, in CreateUserInput) (domain.Account, error) {
	now := time.Now().UTC()

	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.Name = strings.TrimSpace(in.Name)
	if err := validateAccountFields(in.Email, in.Name, in.Password); err != nil {
		return domain.Account{}, err
	}
	if !in.Role.Valid() {
		return domain.Account{}, fmt.Errorf("%w: unknown role %q", ErrValidation, in.Role)
	}

	hash, err := cryptox.HashPassword(in.Password)
	if err != nil {
		return domain.Account{}, fmt.Errorf("hash password: %w", err)
	}

	a := domain.Account{
		ID:           idx.New().String(),
		Email:        in.Email,
		Name:         in.Name,
		PasswordHash: hash,
		Role:         in.Role,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.Store.Accounts().CreateAccount(ctx, a); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return domain.Account{}, ErrConflict
		}
		return domain.Account{}, fmt.Errorf("create account: %w", err)
	}

	slogx.FromContext(ctx).Info("account created",
		"account_id", a.ID, "email", a.Email, "role", a.Role)
	return a, nil
}

// UpdateRole changes an account's role. Demoting the last remaining admin
// is refused so the system cannot lock itself out of administration.
func (s *UserService) UpdateRole(ctx context.Context, id string, role domain.Role) (domain.Account, error) {
	if !role.Valid() {
		return domain.Account{}, fmt.Errorf("%w: unknown role %q", ErrValidation, role)
	}

	a, err := s.Get(ctx, id)
	if err != nil {
		return domain.Account{}, err
	}
	if a.Role == role {
		return a, nil
	}

	if a.Role == domain.RoleAdmin {
		if err := s.ensureNotLastAdmin(ctx); err != nil {
			return domain.Account{}, err
		}
	}

	if err := s.Store.Accounts().UpdateRole(ctx, id, role); err != nil {
		return domain.Account{}, fmt.Errorf("update role: %w", err)
	}

	slogx.FromContext(ctx).Info("role changed",
		"account_id", a.ID, "from", a.Role, "to", role)
	a.Role = role
	return a, nil
}

// Delete removes an account. Refresh tokens and login history cascade away
// with it; pickups keep their customer_id. Admins cannot delete themselves,
// and the last admin cannot be deleted at all.
func (s *UserService) Delete(ctx context.Context, requesterID, id string) error {
	if requesterID == id {
		return ErrSelfDelete
	}

	a, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if a.Role == domain.RoleAdmin {
		if err := s.ensureNotLastAdmin(ctx); err != nil {
			return err
		}
	}

	if err := s.Store.Accounts().DeleteAccount(ctx, id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("delete account: %w", err)
	}

	slogx.FromContext(ctx).Info("account deleted", "account_id", id, "by", requesterID)
	return nil
}

// UpdateProfile is the self-service rename.
func (s *UserService) UpdateProfile(ctx context.Context, accountID, name string) (domain.Account, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return domain.Account{}, fmt.Errorf("%w: name is required", ErrValidation)
	}

	a, err := s.Store.Accounts().GetAccountByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Account{}, ErrAccountNotFound
		}
		return domain.Account{}, err
	}

	if err := s.Store.Accounts().UpdateName(ctx, accountID, name); err != nil {
		return domain.Account{}, fmt.Errorf("update name: %w", err)
	}
	a.Name = name
	return a, nil
}

// EnsureAdmin seeds the configured admin account at startup if no account
// holds that email yet. Reports whether it created anything.
func (s *UserService) EnsureAdmin(ctx context.Context, email, name, password string) (bool, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	_, err := s.Store.Accounts().GetAccountByEmail(ctx, email)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return false, err
	}

	// A missing admin email on a populated database usually means the
	// configured email changed after launch. Seed anyway, but say so.
	empty, err := s.Store.Accounts().IsEmpty(ctx)
	if err != nil {
		return false, err
	}
	if !empty {
		slogx.FromContext(ctx).Warn("seeding admin into a populated database", "email", email)
	}

	_, err = s.Create(ctx, CreateUserInput{
		Email:    email,
		Name:     name,
		Password: password,
		Role:     domain.RoleAdmin,
	})
	if err != nil {
		if errors.Is(err, ErrConflict) {
			return false, nil
		}
		return false, fmt.Errorf("seed admin account: %w", err)
	}
	return true, nil
}

func (s *UserService) ensureNotLastAdmin(ctx context.Context) error {
	admins, err := s.Store.Accounts().CountAccounts(ctx, store.AccountFilter{Role: domain.RoleAdmin})
	if err != nil {
		return fmt.Errorf("count admins: %w", err)
	}
	if admins <= 1 {
		return ErrLastAdmin
	}
	return nil
}
