package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"bookswap/internal/auth"
	"bookswap/internal/errors"
	"bookswap/internal/model"
)

// MockUserService is a mock implementation of UserService.
type MockUserService struct {
	mock.Mock
}

func (m *MockUserService) Register(ctx context.Context, email, password, name string) (*model.User, error) {
	args := m.Called(ctx, email, password, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserService) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserService) VerifyCredentials(ctx context.Context, email, password string) (*model.User, error) {
	args := m.Called(ctx, email, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func newTestJWTService() *auth.JWTService {
	return auth.NewJWTService("test-secret", time.Hour)
}

func TestAuthService_Register(t *testing.T) {
	tests := []struct {
		name            string
		email           string
		password        string
		confirmPassword string
		userName        string
		setupMock       func(*MockUserService)
		expectedError   error
	}{
		{
			name:            "successful registration",
			email:           "ann@example.com",
			password:        "secret1",
			confirmPassword: "secret1",
			userName:        "Ann",
			setupMock: func(m *MockUserService) {
				m.On("Register", mock.Anything, "ann@example.com", "secret1", "Ann").
					Return(&model.User{ID: 1, Email: "ann@example.com", Name: "Ann"}, nil)
			},
		},
		{
			name:            "password confirmation mismatch never reaches the store",
			email:           "ann@example.com",
			password:        "secret1",
			confirmPassword: "secret2",
			userName:        "Ann",
			setupMock:       func(m *MockUserService) {},
			expectedError:   errors.ErrPasswordMismatch,
		},
		{
			name:            "duplicate email propagates",
			email:           "taken@example.com",
			password:        "secret1",
			confirmPassword: "secret1",
			userName:        "Ann",
			setupMock: func(m *MockUserService) {
				m.On("Register", mock.Anything, "taken@example.com", "secret1", "Ann").
					Return(nil, errors.ErrEmailTaken)
			},
			expectedError: errors.ErrEmailTaken,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			users := new(MockUserService)
			tt.setupMock(users)
			jwtService := newTestJWTService()
			svc := NewAuthService(users, jwtService)

			token, user, err := svc.Register(context.Background(), tt.email, tt.password, tt.confirmPassword, tt.userName)

			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
				assert.Empty(t, token)
				assert.Nil(t, user)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tt.email, user.Email)

				// The issued token must embed the registered identity.
				claims, err := jwtService.Validate(token)
				assert.NoError(t, err)
				assert.Equal(t, user.ID, claims.UserID)
				assert.Equal(t, user.Email, claims.Email())
			}
			users.AssertExpectations(t)
		})
	}
}

func TestAuthService_Login(t *testing.T) {
	tests := []struct {
		name          string
		email         string
		password      string
		setupMock     func(*MockUserService)
		expectedError error
	}{
		{
			name:     "successful login",
			email:    "ann@example.com",
			password: "secret1",
			setupMock: func(m *MockUserService) {
				m.On("VerifyCredentials", mock.Anything, "ann@example.com", "secret1").
					Return(&model.User{ID: 1, Email: "ann@example.com"}, nil)
			},
		},
		{
			name:     "invalid credentials",
			email:    "ann@example.com",
			password: "wrong",
			setupMock: func(m *MockUserService) {
				m.On("VerifyCredentials", mock.Anything, "ann@example.com", "wrong").
					Return(nil, errors.ErrInvalidCredentials)
			},
			expectedError: errors.ErrInvalidCredentials,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			users := new(MockUserService)
			tt.setupMock(users)
			jwtService := newTestJWTService()
			svc := NewAuthService(users, jwtService)

			token, user, err := svc.Login(context.Background(), tt.email, tt.password)

			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
				assert.Empty(t, token)
				assert.Nil(t, user)
			} else {
				assert.NoError(t, err)

				claims, err := jwtService.Validate(token)
				assert.NoError(t, err)
				assert.Equal(t, user.ID, claims.UserID)
				assert.Equal(t, user.Email, claims.Email())
			}
			users.AssertExpectations(t)
		})
	}
}
