package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"task_tracker/internal/models"
	"task_tracker/internal/repository"
)

// Domain errors for auth flows.
var (
	ErrConflict      = errors.New("username or email already registered")
	ErrUnauthorized  = errors.New("wrong credentials")
	ErrUserNotFound  = errors.New("user not found")
	ErrEmptyPassword = errors.New("password is empty")
)

// dummyPassword is hashed once so logins for unknown users still run a verification.
const dummyPassword = "task-tracker-unknown-user"

// AuthService handles registration, login and token resolution.
type AuthService struct {
	users    repository.UserRepo
	hasher   PasswordHasher
	tokens   *TokenManager
	tokenTTL time.Duration

	dummyDigest string
}

func NewAuthService(users repository.UserRepo, hasher PasswordHasher, tokens *TokenManager, tokenTTL time.Duration) (*AuthService, error) {
	if tokenTTL <= 0 {
		tokenTTL = AccessTokenTTL
	}
	dummy, err := hasher.Hash(dummyPassword)
	if err != nil {
		return nil, fmt.Errorf("prepare dummy digest: %w", err)
	}
	return &AuthService{
		users:       users,
		hasher:      hasher,
		tokens:      tokens,
		tokenTTL:    tokenTTL,
		dummyDigest: dummy,
	}, nil
}

// Register hashes the password, creates the user and returns an access token.
// A taken username or email yields ErrConflict and stores nothing.
func (s *AuthService) Register(ctx context.Context, username, email, password string) (string, error) {
	if strings.TrimSpace(password) == "" {
		return "", ErrEmptyPassword
	}
	hash, err := s.hasher.Hash(password)
	if err != nil {
		if errors.Is(err, ErrPasswordTooLong) {
			return "", err
		}
		return "", fmt.Errorf("hash password: %w", err)
	}

	u, err := s.users.Create(ctx, models.User{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
	})
	if err != nil {
		if errors.Is(err, repository.ErrUserExists) {
			return "", ErrConflict
		}
		return "", fmt.Errorf("create user %q: %w", username, err)
	}
	return s.tokens.Issue(u.Username, s.tokenTTL)
}

// Login validates credentials and returns an access token. Unknown users and
// wrong passwords both yield ErrUnauthorized after the same amount of work.
func (s *AuthService) Login(ctx context.Context, username, password string) (string, error) {
	u, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return "", fmt.Errorf("load user %q: %w", username, err)
	}
	if u == nil || password == "" {
		s.hasher.Verify(password, s.dummyDigest)
		return "", ErrUnauthorized
	}
	if !s.hasher.Verify(password, u.PasswordHash) {
		return "", ErrUnauthorized
	}
	return s.tokens.Issue(u.Username, s.tokenTTL)
}

// ParseToken resolves a bearer token to the username of an existing user.
func (s *AuthService) ParseToken(ctx context.Context, accessToken string) (string, error) {
	username, err := s.tokens.Verify(accessToken)
	if err != nil {
		return "", err
	}
	u, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return "", fmt.Errorf("load user %q: %w", username, err)
	}
	if u == nil {
		return "", ErrUserNotFound
	}
	return u.Username, nil
}
