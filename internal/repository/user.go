package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/taskhive/taskhive/internal/model"
)

// Common errors for user repository operations.
var (
	ErrUserNotFound   = errors.New("user not found")
	ErrUsernameExists = errors.New("username already exists")
	ErrQuotaExceeded  = errors.New("request quota exceeded")
)

// CreateUser inserts a new user into the database.
func (r *Repository) CreateUser(ctx context.Context, user *model.User) error {
	query := `
		INSERT INTO users (id, username, password_hash, tier, request_count, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.pool.Exec(ctx, query,
		user.ID,
		user.Username,
		user.PasswordHash,
		user.Tier,
		user.RequestCount,
		user.CreatedAt,
	)

	if err != nil {
		if isUniqueViolation(err) {
			return ErrUsernameExists
		}
		return fmt.Errorf("failed to create user: %w", err)
	}

	return nil
}

// GetUserByID retrieves a user by their ID.
func (r *Repository) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	query := `
		SELECT id, username, password_hash, tier, request_count, created_at
		FROM users
		WHERE id = $1
	`

	var user model.User
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&user.ID,
		&user.Username,
		&user.PasswordHash,
		&user.Tier,
		&user.RequestCount,
		&user.CreatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user by ID: %w", err)
	}

	return &user, nil
}

// GetUserByUsername retrieves a user by their username.
func (r *Repository) GetUserByUsername(ctx context.Context, username string) (*model.User, error) {
	query := `
		SELECT id, username, password_hash, tier, request_count, created_at
		FROM users
		WHERE username = $1
	`

	var user model.User
	err := r.pool.QueryRow(ctx, query, username).Scan(
		&user.ID,
		&user.Username,
		&user.PasswordHash,
		&user.Tier,
		&user.RequestCount,
		&user.CreatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user by username: %w", err)
	}

	return &user, nil
}

// UpdateUserTier sets a user's tier. Used by the operator tooling; there is
// no self-service upgrade endpoint.
func (r *Repository) UpdateUserTier(ctx context.Context, userID, tier string) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE users SET tier = $2 WHERE id = $1`, userID, tier)
	if err != nil {
		return fmt.Errorf("failed to update tier: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrUserNotFound
	}
	return nil
}

// ConsumeQuota performs the check-and-increment of a user's request counter
// as a single conditional UPDATE, so two concurrent calls can never both
// pass the check on the same remaining slot. The guard mirrors quota.Allow:
// paid accounts always increment, free accounts only below freeLimit.
// Returns the counter value after the increment.
func (r *Repository) ConsumeQuota(ctx context.Context, userID string, freeLimit int64) (int64, error) {
	query := `
		UPDATE users
		SET request_count = request_count + 1
		WHERE id = $1 AND (tier <> 'free' OR request_count < $2)
		RETURNING request_count
	`

	var count int64
	err := r.pool.QueryRow(ctx, query, userID, freeLimit).Scan(&count)
	if err == nil {
		return count, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return 0, fmt.Errorf("failed to consume quota: %w", err)
	}

	// No row updated: either the user vanished or the guard denied it.
	var exists bool
	if err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM users WHERE id = $1)`, userID,
	).Scan(&exists); err != nil {
		return 0, fmt.Errorf("failed to check user after denied increment: %w", err)
	}
	if !exists {
		return 0, ErrUserNotFound
	}
	return 0, ErrQuotaExceeded
}
