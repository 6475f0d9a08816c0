package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"parley/internal/domain"
	"parley/internal/security"
	"parley/internal/service"
)

type MockUserRepo struct {
	mock.Mock
}

func (m *MockUserRepo) Create(ctx context.Context, u *domain.User) error {
	args := m.Called(ctx, u)
	if args.Error(0) == nil {
		u.ID = 1
		u.CreatedAt = time.Now().UTC()
	}
	return args.Error(0)
}

func (m *MockUserRepo) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepo) ListOthers(ctx context.Context, excludeID int64) ([]*domain.User, error) {
	args := m.Called(ctx, excludeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.User), args.Error(1)
}

func newAuthService(users domain.UserRepository) *service.AuthService {
	tokens := security.NewTokenService("test-secret", time.Hour)
	hasher := security.NewPasswordHasher(4)
	return service.NewAuthService(users, tokens, hasher)
}

func TestRegister(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		users := new(MockUserRepo)
		svc := newAuthService(users)
		users.On("Create", mock.Anything, mock.Anything).Return(nil)

		resp, err := svc.Register(ctx, service.RegisterInput{Email: "alice@example.com", Password: "password1"})
		assert.NoError(t, err)
		assert.NotEmpty(t, resp.Token)
		assert.Equal(t, "alice@example.com", resp.User.Email)
		// The stored hash must never be the plaintext.
		assert.NotEqual(t, "password1", resp.User.PasswordHash)
	})

	t.Run("DuplicateEmail", func(t *testing.T) {
		users := new(MockUserRepo)
		svc := newAuthService(users)
		users.On("Create", mock.Anything, mock.Anything).Return(domain.ErrConflict)

		_, err := svc.Register(ctx, service.RegisterInput{Email: "alice@example.com", Password: "password1"})
		assert.ErrorIs(t, err, domain.ErrConflict)
	})

	t.Run("MissingFields", func(t *testing.T) {
		users := new(MockUserRepo)
		svc := newAuthService(users)

		_, err := svc.Register(ctx, service.RegisterInput{Email: "alice@example.com"})
		assert.ErrorIs(t, err, domain.ErrInvalidArgument)
		users.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})
}

func TestLogin(t *testing.T) {
	ctx := context.Background()
	hasher := security.NewPasswordHasher(4)
	hashed, _ := hasher.Hash("password1")
	alice := &domain.User{ID: 1, Email: "alice@example.com", PasswordHash: hashed}

	t.Run("Success", func(t *testing.T) {
		users := new(MockUserRepo)
		svc := newAuthService(users)
		users.On("GetByEmail", mock.Anything, "alice@example.com").Return(alice, nil)

		resp, err := svc.Login(ctx, service.LoginInput{Email: "alice@example.com", Password: "password1"})
		assert.NoError(t, err)
		assert.NotEmpty(t, resp.Token)
		assert.Equal(t, int64(1), resp.User.ID)
	})

	t.Run("WrongPassword", func(t *testing.T) {
		users := new(MockUserRepo)
		svc := newAuthService(users)
		users.On("GetByEmail", mock.Anything, "alice@example.com").Return(alice, nil)

		_, err := svc.Login(ctx, service.LoginInput{Email: "alice@example.com", Password: "nope"})
		assert.ErrorIs(t, err, domain.ErrUnauthorized)
	})

	t.Run("UnknownUser", func(t *testing.T) {
		users := new(MockUserRepo)
		svc := newAuthService(users)
		users.On("GetByEmail", mock.Anything, "ghost@example.com").Return(nil, nil)

		_, err := svc.Login(ctx, service.LoginInput{Email: "ghost@example.com", Password: "password1"})
		assert.ErrorIs(t, err, domain.ErrUnauthorized)
	})
}
