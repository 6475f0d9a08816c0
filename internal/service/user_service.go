package service

import (
	"context"

	"parley/internal/domain"
)

// UserService provides user-related operations.
type UserService struct {
	users domain.UserRepository
}

func NewUserService(users domain.UserRepository) *UserService {
	return &UserService{users: users}
}

func (s *UserService) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	return s.users.GetByID(ctx, id)
}

// ListOthers returns every user except the caller, for the new-conversation
// picker.
func (s *UserService) ListOthers(ctx context.Context, callerID int64) ([]*domain.User, error) {
	return s.users.ListOthers(ctx, callerID)
}
