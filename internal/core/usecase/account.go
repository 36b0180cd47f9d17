package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/kirillkom/project-doc-chat/internal/core/domain"
	"github.com/kirillkom/project-doc-chat/internal/core/ports"
)

// MaxPasswordBytes is the bcrypt input limit.
const MaxPasswordBytes = 72

type AccountUseCase struct {
	users  ports.UserStore
	hasher ports.PasswordHasher
	tokens ports.TokenIssuer
}

func NewAccountUseCase(
	users ports.UserStore,
	hasher ports.PasswordHasher,
	tokens ports.TokenIssuer,
) *AccountUseCase {
	return &AccountUseCase{
		users:  users,
		hasher: hasher,
		tokens: tokens,
	}
}

func (uc *AccountUseCase) Register(ctx context.Context, email, password string) error {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return domain.WrapError(domain.ErrInvalidInput, "register", errors.New("email and password are required"))
	}
	if len(password) > MaxPasswordBytes {
		return domain.WrapError(domain.ErrInvalidInput, "register", fmt.Errorf("password exceeds %d bytes", MaxPasswordBytes))
	}

	hash, err := uc.hasher.Hash(password)
	if err != nil {
		if domain.IsKind(err, domain.ErrInvalidInput) {
			return err
		}
		return fmt.Errorf("hash password: %w", err)
	}

	user := &domain.User{
		Email:        email,
		PasswordHash: hash,
		CreatedAt:    time.Now().UTC(),
	}
	if err := uc.users.CreateUser(ctx, user); err != nil {
		if domain.IsKind(err, domain.ErrConflict) {
			return err
		}
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

func (uc *AccountUseCase) Login(ctx context.Context, email, password string) (domain.AccessToken, error) {
	email = strings.TrimSpace(email)
	user, err := uc.users.GetUser(ctx, email)
	if err != nil {
		if domain.IsKind(err, domain.ErrNotFound) {
			return domain.AccessToken{}, invalidCredentials()
		}
		return domain.AccessToken{}, fmt.Errorf("load user: %w", err)
	}
	if !uc.hasher.Verify(user.PasswordHash, password) {
		return domain.AccessToken{}, invalidCredentials()
	}

	token, err := uc.tokens.Issue(user.Email)
	if err != nil {
		return domain.AccessToken{}, fmt.Errorf("issue token: %w", err)
	}
	return token, nil
}

// Authenticate maps a presented bearer token to the owning user's email.
func (uc *AccountUseCase) Authenticate(_ context.Context, token string) (string, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return "", domain.WrapError(domain.ErrUnauthorized, "authenticate", errors.New("missing token"))
	}
	subject, err := uc.tokens.Verify(token)
	if err != nil {
		return "", domain.WrapError(domain.ErrUnauthorized, "authenticate", err)
	}
	return subject, nil
}

func invalidCredentials() error {
	return domain.WrapError(domain.ErrUnauthorized, "login", errors.New("invalid credentials"))
}
