package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/regeshengen/water-quality-api/internal/common"
	"github.com/regeshengen/water-quality-api/internal/common/security"
	"github.com/regeshengen/water-quality-api/internal/domain/model"
)

// errInvalidCredentials is deliberately vague about which field was wrong.
var errInvalidCredentials = fmt.Errorf("invalid credentials: %w", common.ErrUnauthorized)

type AuthService struct {
	users  *UserService
	tokens *security.TokenManager
}

func NewAuthService(users *UserService, tokens *security.TokenManager) *AuthService {
	return &AuthService{users: users, tokens: tokens}
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type AuthResponse struct {
	AccessToken string      `json:"access_token"`
	User        *model.User `json:"user"`
}

// ValidateCredentials returns the matching user without its password hash,
// or nil when the email is unknown or the password does not match.
func (s *AuthService) ValidateCredentials(ctx context.Context, email, password string) (*model.User, error) {
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if user == nil || !security.CheckPasswordHash(password, user.PasswordHash) {
		return nil, nil
	}
	return user.Sanitized(), nil
}

func (s *AuthService) IssueSession(user *model.User) (*AuthResponse, error) {
	token, err := s.tokens.GenerateToken(user.ID, user.Email, string(user.Role))
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}
	return &AuthResponse{AccessToken: token, User: user.Sanitized()}, nil
}

func (s *AuthService) Login(ctx context.Context, req LoginRequest) (*AuthResponse, error) {
	if req.Email == "" || req.Password == "" {
		return nil, errInvalidCredentials
	}
	user, err := s.ValidateCredentials(ctx, req.Email, req.Password)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, errInvalidCredentials
	}
	return s.IssueSession(user)
}

// Register creates a user, defaulting the role to CUSTOMER. User errors are
// returned unchanged.
func (s *AuthService) Register(ctx context.Context, req CreateUserRequest) (*model.User, error) {
	if req.Role == "" {
		req.Role = model.RoleCustomer
	}
	return s.users.Create(ctx, req)
}

// Profile loads the user a verified token points at. A subject that no
// longer exists is treated as an invalid session.
func (s *AuthService) Profile(ctx context.Context, userID string) (*model.User, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, fmt.Errorf("session user no longer exists: %w", common.ErrUnauthorized)
		}
		return nil, err
	}
	return user, nil
}
