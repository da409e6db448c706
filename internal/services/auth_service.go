package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"billhub/internal/core"
	"billhub/internal/log"
	"billhub/internal/storage"
)

// LoginInput is the login form.
type LoginInput struct {
	Phone    string `validate:"required"`
	Password string `validate:"required"`
	Remember bool
}

// RegisterInput creates a resident account.
type RegisterInput struct {
	Phone    string `validate:"required,min=4,max=20"`
	Name     string `validate:"required,max=100"`
	LastName string `validate:"max=100"`
	Password string `validate:"required,min=4,max=72"`
}

// AuthService checks resident credentials.
type AuthService struct {
	users  UserStore
	logger *log.Logger
}

func NewAuthService(users UserStore, logger *log.Logger) *AuthService {
	return &AuthService{users: users, logger: logger.WithComponent(log.ComponentAuth)}
}

// Login returns the user for a phone and password. Empty fields yield a
// *FieldError, an unknown phone ErrPhoneNotRegistered and a wrong password
// ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, in LoginInput) (core.User, error) {
	in.Phone = strings.TrimSpace(in.Phone)
	if err := check(in); err != nil {
		return core.User{}, err
	}

	u, err := s.users.UserByPhone(ctx, in.Phone)
	if errors.Is(err, storage.ErrNotFound) {
		s.logger.InfoContext(ctx, "Login with unknown phone", log.FieldOperation, log.OpLogin)
		return core.User{}, ErrPhoneNotRegistered
	}
	if err != nil {
		return core.User{}, fmt.Errorf("look up user: %w", err)
	}

	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(in.Password)) != nil {
		s.logger.InfoContext(ctx, "Login with wrong password", log.FieldOperation, log.OpLogin)
		return core.User{}, ErrInvalidCredentials
	}
	return u, nil
}

// Register hashes the password and stores a new user.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (core.User, error) {
	in.Phone = strings.TrimSpace(in.Phone)
	if err := check(in); err != nil {
		return core.User{}, err
	}
	hash, err := HashPassword(in.Password)
	if err != nil {
		return core.User{}, err
	}
	u := core.User{
		ID:           uuid.NewString(),
		Phone:        in.Phone,
		Name:         strings.TrimSpace(in.Name),
		LastName:     strings.TrimSpace(in.LastName),
		PasswordHash: hash,
	}
	if err := s.users.CreateUser(ctx, u); err != nil {
		return core.User{}, fmt.Errorf("create user: %w", err)
	}
	s.logger.InfoContext(ctx, "User registered", log.FieldOperation, log.OpCreate)
	return u, nil
}

// User returns the user behind a session identity.
func (s *AuthService) User(ctx context.Context, phone string) (core.User, error) {
	u, err := s.users.UserByPhone(ctx, phone)
	if errors.Is(err, storage.ErrNotFound) {
		return core.User{}, ErrUserNotFound
	}
	return u, err
}

// HashPassword returns a bcrypt hash of password.
func HashPassword(password string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(b), nil
}
