package service

import (
	"context"
	"fmt"

	"bookswap/internal/auth"
	"bookswap/internal/errors"
	"bookswap/internal/model"
)

// AuthService orchestrates registration and login, issuing bearer tokens on
// success.
type AuthService interface {
	Register(ctx context.Context, email, password, confirmPassword, name string) (token string, user *model.User, err error)
	Login(ctx context.Context, email, password string) (token string, user *model.User, err error)
}

type authService struct {
	users      UserService
	jwtService *auth.JWTService
}

// NewAuthService creates a new authentication service.
func NewAuthService(users UserService, jwtService *auth.JWTService) AuthService {
	return &authService{
		users:      users,
		jwtService: jwtService,
	}
}

// Register creates a new user and issues a token for immediate use. The
// confirmation check happens before any store access, so a mismatch never
// creates a user.
func (s *authService) Register(ctx context.Context, email, password, confirmPassword, name string) (string, *model.User, error) {
	if password != confirmPassword {
		return "", nil, errors.ErrPasswordMismatch
	}

	user, err := s.users.Register(ctx, email, password, name)
	if err != nil {
		return "", nil, err
	}

	token, err := s.jwtService.Generate(user.Email, user.ID)
	if err != nil {
		return "", nil, fmt.Errorf("generate token: %w", err)
	}

	return token, user, nil
}

// Login verifies credentials and issues a token. Credential failures are
// reported uniformly as ErrInvalidCredentials.
func (s *authService) Login(ctx context.Context, email, password string) (string, *model.User, error) {
	user, err := s.users.VerifyCredentials(ctx, email, password)
	if err != nil {
		return "", nil, err
	}

	token, err := s.jwtService.Generate(user.Email, user.ID)
	if err != nil {
		return "", nil, fmt.Errorf("generate token: %w", err)
	}

	return token, user, nil
}
