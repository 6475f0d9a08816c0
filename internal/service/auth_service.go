package service

import (
	"context"
	"errors"
	"fmt"

	"parley/internal/domain"
	"parley/internal/security"
)

// AuthService handles registration and login.
type AuthService struct {
	users  domain.UserRepository
	tokens *security.TokenService
	hash   *security.PasswordHasher
}

func NewAuthService(users domain.UserRepository, tokens *security.TokenService, hash *security.PasswordHasher) *AuthService {
	return &AuthService{
		users:  users,
		tokens: tokens,
		hash:   hash,
	}
}

type RegisterInput struct {
	Email       string
	Password    string
	DisplayName *string
}

type LoginInput struct {
	Email    string
	Password string
}

// TokenResponse carries the issued identity assertion and its user.
type TokenResponse struct {
	Token string       `json:"token"`
	User  *domain.User `json:"user"`
}

func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*TokenResponse, error) {
	if in.Email == "" || in.Password == "" {
		return nil, domain.ErrInvalidArgument
	}

	hashed, err := s.hash.Hash(in.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &domain.User{
		Email:        in.Email,
		PasswordHash: hashed,
		DisplayName:  in.DisplayName,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, domain.ErrConflict) {
			return nil, domain.ErrConflict
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	token, err := s.tokens.CreateForUser(user.ID, user.Email)
	if err != nil {
		return nil, fmt.Errorf("create token: %w", err)
	}
	return &TokenResponse{Token: token, User: user}, nil
}

func (s *AuthService) Login(ctx context.Context, in LoginInput) (*TokenResponse, error) {
	user, err := s.users.GetByEmail(ctx, in.Email)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	if user == nil {
		return nil, domain.ErrUnauthorized
	}
	if err := s.hash.Verify(in.Password, user.PasswordHash); err != nil {
		return nil, domain.ErrUnauthorized
	}

	token, err := s.tokens.CreateForUser(user.ID, user.Email)
	if err != nil {
		return nil, fmt.Errorf("create token: %w", err)
	}
	return &TokenResponse{Token: token, User: user}, nil
}
