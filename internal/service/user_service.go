package service

import (
	"context"
	"encoding/json"
	goerrors "errors"
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"bookswap/internal/cache"
	"bookswap/internal/errors"
	"bookswap/internal/model"
	"bookswap/internal/repository"
)

// bcryptCost is the bcrypt work factor. Raising it slows offline brute force
// at the price of login/register latency.
const bcryptCost = 10

const userCacheTTL = 5 * time.Minute

// UserService handles user registration, lookup, and credential verification.
type UserService interface {
	Register(ctx context.Context, email, password, name string) (*model.User, error)
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	VerifyCredentials(ctx context.Context, email, password string) (*model.User, error)
}

type userService struct {
	repo  repository.UserRepository
	cache *cache.Client
}

// NewUserService creates a new user service.
func NewUserService(repo repository.UserRepository, cache *cache.Client) UserService {
	return &userService{
		repo:  repo,
		cache: cache,
	}
}

func (s *userService) cacheKey(email string) string {
	return fmt.Sprintf("user:email:%s", email)
}

// Register creates a new user with a bcrypt-hashed password. The email lookup
// is a courtesy check; the unique index on email is the real guard, and a
// duplicate key error from the insert maps to the same ErrEmailTaken.
func (s *userService) Register(ctx context.Context, email, password, name string) (*model.User, error) {
	existing, err := s.repo.FindByEmail(ctx, email)
	if err == nil && existing != nil {
		return nil, errors.ErrEmailTaken
	}
	if err != nil && !goerrors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("check user existence: %w", err)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &model.User{
		Email:        email,
		PasswordHash: string(hashedPassword),
		Name:         name,
	}

	if err := s.repo.Create(ctx, user); err != nil {
		if goerrors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, errors.ErrEmailTaken
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	return user, nil
}

// VerifyCredentials checks a password against the stored bcrypt hash. It
// reads straight from the repository because cached entries are serialized
// without the password hash. Any failure collapses to ErrInvalidCredentials
// so callers cannot learn whether the email exists.
func (s *userService) VerifyCredentials(ctx context.Context, email, password string) (*model.User, error) {
	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		return nil, errors.ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, errors.ErrInvalidCredentials
	}

	return user, nil
}

// FindByEmail looks up a user with a cache-aside read. User records never
// change within this system's scope, so cached entries are not invalidated.
// The cached copy omits the password hash; credential checks must go through
// VerifyCredentials.
func (s *userService) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	if data, _ := s.cache.Get(ctx, s.cacheKey(email)); data != nil {
		var cached model.User
		if err := json.Unmarshal(data, &cached); err == nil {
			return &cached, nil
		}
	}

	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if goerrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.ErrUserNotFound
		}
		return nil, err
	}

	if payload, err := json.Marshal(user); err == nil {
		_ = s.cache.Set(ctx, s.cacheKey(email), payload, userCacheTTL)
	}

	return user, nil
}
