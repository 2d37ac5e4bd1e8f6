package service

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/regeshengen/water-quality-api/internal/common"
	"github.com/regeshengen/water-quality-api/internal/common/security"
	"github.com/regeshengen/water-quality-api/internal/domain/model"
	"github.com/regeshengen/water-quality-api/internal/domain/repository"
)

const (
	minUsernameLength = 3
	minPasswordLength = 6
	// bcrypt only accepts inputs up to 72 bytes.
	maxPasswordBytes = 72
)

type UserService struct {
	userRepo repository.UserRepository
}

func NewUserService(userRepo repository.UserRepository) *UserService {
	return &UserService{userRepo: userRepo}
}

type CreateUserRequest struct {
	Email    string     `json:"email"`
	Username string     `json:"username"`
	Password string     `json:"password"`
	Role     model.Role `json:"role,omitempty"`
}

type UpdateUserRequest struct {
	Email    *string     `json:"email,omitempty"`
	Username *string     `json:"username,omitempty"`
	Password *string     `json:"password,omitempty"`
	Role     *model.Role `json:"role,omitempty"`
}

func (s *UserService) Create(ctx context.Context, req CreateUserRequest) (*model.User, error) {
	req.Email = strings.TrimSpace(req.Email)
	if err := validateEmail(req.Email); err != nil {
		return nil, err
	}
	if err := validateUsername(req.Username); err != nil {
		return nil, err
	}
	if err := validatePassword(req.Password); err != nil {
		return nil, err
	}
	if req.Role == "" {
		req.Role = model.RoleCustomer
	}
	if !req.Role.Valid() {
		return nil, invalidRole(req.Role)
	}

	if err := s.ensureEmailFree(ctx, req.Email, ""); err != nil {
		return nil, err
	}

	// The store only ever sees the hash.
	hashedPassword, err := security.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &model.User{
		ID:           uuid.NewString(),
		Email:        req.Email,
		Username:     req.Username,
		PasswordHash: hashedPassword,
		Role:         req.Role,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, common.StoreError("failed to create user", err)
	}
	return user.Sanitized(), nil
}

func (s *UserService) List(ctx context.Context) ([]model.User, error) {
	users, err := s.userRepo.List(ctx)
	if err != nil {
		return nil, common.StoreError("failed to list users", err)
	}
	for i := range users {
		users[i].PasswordHash = ""
	}
	return users, nil
}

func (s *UserService) FindByID(ctx context.Context, id string) (*model.User, error) {
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		return nil, common.StoreError("failed to load user", err)
	}
	return user.Sanitized(), nil
}

// FindByEmail returns nil without error when no user has the address. The
// returned user keeps its password hash for credential checks.
func (s *UserService) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, nil
		}
		return nil, common.StoreError("failed to load user", err)
	}
	return user, nil
}

func (s *UserService) Update(ctx context.Context, id string, req UpdateUserRequest) (*model.User, error) {
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		return nil, common.StoreError("failed to load user", err)
	}

	if req.Email != nil {
		email := strings.TrimSpace(*req.Email)
		if err := validateEmail(email); err != nil {
			return nil, err
		}
		if email != user.Email {
			if err := s.ensureEmailFree(ctx, email, user.ID); err != nil {
				return nil, err
			}
			user.Email = email
		}
	}
	if req.Username != nil {
		if err := validateUsername(*req.Username); err != nil {
			return nil, err
		}
		user.Username = *req.Username
	}
	if req.Password != nil {
		if err := validatePassword(*req.Password); err != nil {
			return nil, err
		}
		hashedPassword, err := security.HashPassword(*req.Password)
		if err != nil {
			return nil, fmt.Errorf("failed to hash password: %w", err)
		}
		user.PasswordHash = hashedPassword
	}
	if req.Role != nil {
		if !req.Role.Valid() {
			return nil, invalidRole(*req.Role)
		}
		user.Role = *req.Role
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, common.StoreError("failed to update user", err)
	}
	return user.Sanitized(), nil
}

func (s *UserService) Remove(ctx context.Context, id string) error {
	if err := s.userRepo.Delete(ctx, id); err != nil {
		return common.StoreError("failed to delete user", err)
	}
	return nil
}

// ensureEmailFree fails with ErrConflict when another user than exceptID
// holds email. The users table enforces the same rule for concurrent writes.
func (s *UserService) ensureEmailFree(ctx context.Context, email, exceptID string) error {
	existing, err := s.userRepo.FindByEmail(ctx, email)
	switch {
	case errors.Is(err, common.ErrNotFound):
		return nil
	case err != nil:
		return common.StoreError("failed to check email", err)
	case existing.ID != exceptID:
		return common.Errorf("email %q is already in use: %w", email, common.ErrConflict)
	}
	return nil
}

func validateEmail(email string) error {
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return common.Errorf("email must be a valid address: %w", common.ErrBadRequest)
	}
	return nil
}

func validateUsername(username string) error {
	if utf8.RuneCountInString(strings.TrimSpace(username)) < minUsernameLength {
		return common.Errorf("username must be at least %d characters: %w", minUsernameLength, common.ErrBadRequest)
	}
	return nil
}

func validatePassword(password string) error {
	if utf8.RuneCountInString(password) < minPasswordLength {
		return common.Errorf("password must be at least %d characters: %w", minPasswordLength, common.ErrBadRequest)
	}
	if len(password) > maxPasswordBytes {
		return common.Errorf("password must be at most %d bytes: %w", maxPasswordBytes, common.ErrBadRequest)
	}
	return nil
}

func invalidRole(role model.Role) error {
	return common.Errorf("role %q must be %s or %s: %w", role, model.RoleAdministrator, model.RoleCustomer, common.ErrBadRequest)
}
