package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/kirillkom/project-doc-chat/internal/core/domain"
)

type UserStore struct {
	mu    sync.RWMutex
	users map[string]domain.User
}

func NewUserStore() *UserStore {
	return &UserStore{users: make(map[string]domain.User)}
}

func (s *UserStore) CreateUser(_ context.Context, user *domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.users[user.Email]; exists {
		return domain.WrapError(domain.ErrConflict, "create user", fmt.Errorf("email already registered: %s", user.Email))
	}
	s.users[user.Email] = *user
	return nil
}

func (s *UserStore) GetUser(_ context.Context, email string) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, ok := s.users[email]
	if !ok {
		return nil, domain.WrapError(domain.ErrNotFound, "get user", fmt.Errorf("email=%s", email))
	}
	return &user, nil
}
