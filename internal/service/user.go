// Package service provides business logic for the application.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/taskhive/taskhive/internal/auth"
	"github.com/taskhive/taskhive/internal/metrics"
	"github.com/taskhive/taskhive/internal/model"
	"github.com/taskhive/taskhive/internal/repository"
)

// User service errors.
var (
	ErrDuplicateUser      = errors.New("username is already taken")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrMissingCredentials = errors.New("username and password are required")
	ErrUsernameTooLong    = errors.New("username exceeds maximum length")
)

const maxUsernameLength = 50

// UserStore is the persistence surface the user service depends on.
type UserStore interface {
	CreateUser(ctx context.Context, user *model.User) error
	GetUserByUsername(ctx context.Context, username string) (*model.User, error)
}

// UserService handles registration and credential verification.
type UserService struct {
	store   UserStore
	metrics metrics.Recorder
}

// NewUserService creates a new UserService.
func NewUserService(store UserStore, recorder metrics.Recorder) *UserService {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &UserService{
		store:   store,
		metrics: recorder,
	}
}

// Register creates a new free-tier account with a zeroed request counter.
func (s *UserService) Register(ctx context.Context, username, password string) (*model.User, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, ErrMissingCredentials
	}
	if len(username) > maxUsernameLength {
		return nil, ErrUsernameTooLong
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &model.User{
		ID:           ulid.Make().String(),
		Username:     username,
		PasswordHash: hash,
		Tier:         model.TierFree,
		RequestCount: 0,
		CreatedAt:    time.Now().UTC(),
	}

	if err := s.store.CreateUser(ctx, user); err != nil {
		if errors.Is(err, repository.ErrUsernameExists) {
			return nil, ErrDuplicateUser
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.metrics.IncUserRegistered()

	return user, nil
}

// Authenticate verifies the given credentials and returns the matching user.
// A missing user and a wrong password both come back as ErrInvalidCredentials
// so the response does not reveal which usernames exist.
func (s *UserService) Authenticate(ctx context.Context, username, password string) (*model.User, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		s.metrics.IncLoginFailed()
		return nil, ErrInvalidCredentials
	}

	user, err := s.store.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			s.metrics.IncLoginFailed()
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	match, err := auth.VerifyPassword(password, user.PasswordHash)
	if err != nil || !match {
		s.metrics.IncLoginFailed()
		return nil, ErrInvalidCredentials
	}

	s.metrics.IncLoginSucceeded()

	return user, nil
}
