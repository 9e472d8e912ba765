package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/exguesich/tagebuch-app/internal/auth"
	"github.com/exguesich/tagebuch-app/internal/model"
	"github.com/exguesich/tagebuch-app/internal/repository"
)

// AuthService handles registration and credential verification.
type AuthService struct {
	repo *repository.Repository
}

// NewAuthService creates a new AuthService.
func NewAuthService(repo *repository.Repository) *AuthService {
	return &AuthService{repo: repo}
}

// RegisterInput defines input for creating an account.
type RegisterInput struct {
	Username string
	Email    string
	Password string
}

// Register creates a new user. The password is stored only as a salted
// argon2id hash. Username and email are pre-checked so duplicates fail
// with a clear validation error instead of a raw constraint violation.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*model.User, error) {
	username := strings.TrimSpace(input.Username)
	email := strings.ToLower(strings.TrimSpace(input.Email))

	if username == "" || email == "" || input.Password == "" {
		return nil, ErrMissingFields
	}

	usernameTaken, emailTaken, err := s.repo.UserExists(ctx, username, email)
	if err != nil {
		return nil, fmt.Errorf("check existing user: %w", err)
	}
	if usernameTaken {
		return nil, ErrUsernameTaken
	}
	if emailTaken {
		return nil, ErrEmailTaken
	}

	hash, err := auth.HashPassword(input.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &model.User{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
	}
	if err := s.repo.CreateUser(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// LoginInput defines input for establishing a session.
type LoginInput struct {
	Email    string
	Password string
}

// Login verifies credentials. Unknown email and wrong password both
// return ErrInvalidCredentials, so a caller cannot probe which accounts
// exist.
func (s *AuthService) Login(ctx context.Context, input LoginInput) (*model.User, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))
	password := strings.TrimSpace(input.Password)

	user, err := s.repo.GetUserByEmail(ctx, email)
	if errors.Is(err, repository.ErrUserNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("look up user: %w", err)
	}

	ok, err := auth.VerifyPassword(password, user.PasswordHash)
	if err != nil || !ok {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}
