// Package service provides business logic for the application.
package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/chatforge/chatforge/internal/auth"
	"github.com/chatforge/chatforge/internal/model"
	"github.com/chatforge/chatforge/internal/repository"
)

// Account service errors.
var (
	ErrInvalidUsername    = errors.New("username must be 3-50 chars, alphanumeric plus hyphen and underscore")
	ErrInvalidEmail       = errors.New("invalid email address")
	ErrWeakPassword       = errors.New("password must be at least 8 characters")
	ErrUsernameTaken      = errors.New("username already taken")
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid username or password")
)

var (
	usernameRegex = regexp.MustCompile(`^[a-zA-Z0-9_-]{3,50}$`)
	emailRegex    = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
)

const minPasswordLength = 8

// AccountService handles registration and login.
type AccountService struct {
	repo      *repository.Repository
	jwtSecret []byte
	tokenTTL  time.Duration
}

// NewAccountService creates a new AccountService.
func NewAccountService(repo *repository.Repository, jwtSecret []byte, tokenTTL time.Duration) *AccountService {
	return &AccountService{
		repo:      repo,
		jwtSecret: jwtSecret,
		tokenTTL:  tokenTTL,
	}
}

// RegisterInput defines input for creating an account.
type RegisterInput struct {
	Username string
	Email    string
	Password string
}

// Register creates a new account and returns it with a signed token.
func (s *AccountService) Register(ctx context.Context, input RegisterInput) (*model.User, string, error) {
	if !usernameRegex.MatchString(input.Username) {
		return nil, "", ErrInvalidUsername
	}
	if !emailRegex.MatchString(input.Email) {
		return nil, "", ErrInvalidEmail
	}
	if len(input.Password) < minPasswordLength {
		return nil, "", ErrWeakPassword
	}

	hash, err := auth.HashPassword(input.Password)
	if err != nil {
		return nil, "", fmt.Errorf("failed to hash password: %w", err)
	}

	now := time.Now().UTC()
	user := &model.User{
		ID:           ulid.Make().String(),
		Username:     input.Username,
		Email:        input.Email,
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.repo.CreateUser(ctx, user); err != nil {
		if errors.Is(err, repository.ErrUsernameExists) {
			return nil, "", ErrUsernameTaken
		}
		if errors.Is(err, repository.ErrEmailExists) {
			return nil, "", ErrEmailTaken
		}
		return nil, "", fmt.Errorf("failed to create user: %w", err)
	}

	token, err := auth.GenerateToken(user.ID, user.Username, s.jwtSecret, s.tokenTTL)
	if err != nil {
		return nil, "", fmt.Errorf("failed to sign token: %w", err)
	}

	return user, token, nil
}

// Login authenticates a user and returns a signed token.
// Unknown username and wrong password are indistinguishable to the caller.
func (s *AccountService) Login(ctx context.Context, username, password string) (*model.User, string, error) {
	user, err := s.repo.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", err
	}

	ok, err := auth.VerifyPassword(password, user.PasswordHash)
	if err != nil {
		return nil, "", fmt.Errorf("failed to verify password: %w", err)
	}
	if !ok {
		return nil, "", ErrInvalidCredentials
	}

	token, err := auth.GenerateToken(user.ID, user.Username, s.jwtSecret, s.tokenTTL)
	if err != nil {
		return nil, "", fmt.Errorf("failed to sign token: %w", err)
	}

	return user, token, nil
}
