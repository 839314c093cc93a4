package service

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskhive/taskhive/internal/auth"
	"github.com/taskhive/taskhive/internal/metrics"
	"github.com/taskhive/taskhive/internal/model"
	"github.com/taskhive/taskhive/internal/repository"
)

// fakeUserStore is an in-memory UserStore.
type fakeUserStore struct {
	byID   map[string]*model.User
	byName map[string]*model.User
	err    error
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{
		byID:   make(map[string]*model.User),
		byName: make(map[string]*model.User),
	}
}

func (f *fakeUserStore) CreateUser(_ context.Context, user *model.User) error {
	if f.err != nil {
		return f.err
	}
	if _, exists := f.byName[user.Username]; exists {
		return repository.ErrUsernameExists
	}
	f.byID[user.ID] = user
	f.byName[user.Username] = user
	return nil
}

func (f *fakeUserStore) GetUserByUsername(_ context.Context, username string) (*model.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	u, ok := f.byName[username]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	return u, nil
}

func TestUserService_Register(t *testing.T) {
	t.Parallel()

	store := newFakeUserStore()
	svc := NewUserService(store, nil)

	user, err := svc.Register(context.Background(), "alice", "hunter2")
	require.NoError(t, err)

	assert.NotEmpty(t, user.ID)
	assert.Equal(t, "alice", user.Username)
	assert.Equal(t, model.TierFree, user.Tier)
	assert.Zero(t, user.RequestCount)
	assert.False(t, user.CreatedAt.IsZero())

	// Stored hash verifies against the original password
	match, err := auth.VerifyPassword("hunter2", user.PasswordHash)
	require.NoError(t, err)
	assert.True(t, match)
}

func TestUserService_RegisterTrimsUsername(t *testing.T) {
	t.Parallel()

	store := newFakeUserStore()
	svc := NewUserService(store, nil)

	user, err := svc.Register(context.Background(), "  alice  ", "hunter2")
	require.NoError(t, err)
	assert.Equal(t, "alice", user.Username)
}

func TestUserService_RegisterDuplicate(t *testing.T) {
	t.Parallel()

	store := newFakeUserStore()
	svc := NewUserService(store, nil)

	_, err := svc.Register(context.Background(), "alice", "hunter2")
	require.NoError(t, err)

	_, err = svc.Register(context.Background(), "alice", "other")
	assert.ErrorIs(t, err, ErrDuplicateUser)
}

func TestUserService_RegisterValidation(t *testing.T) {
	t.Parallel()

	store := newFakeUserStore()
	svc := NewUserService(store, nil)

	tests := []struct {
		name     string
		username string
		password string
		wantErr  error
	}{
		{"empty username", "", "pw", ErrMissingCredentials},
		{"empty password", "alice", "", ErrMissingCredentials},
		{"whitespace username", "   ", "pw", ErrMissingCredentials},
		{"long username", strings.Repeat("a", maxUsernameLength+1), "pw", ErrUsernameTooLong},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := svc.Register(context.Background(), tt.username, tt.password)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestUserService_Authenticate(t *testing.T) {
	t.Parallel()

	store := newFakeUserStore()
	rec := metrics.NewInMemory()
	svc := NewUserService(store, rec)

	registered, err := svc.Register(context.Background(), "alice", "hunter2")
	require.NoError(t, err)

	user, err := svc.Authenticate(context.Background(), "alice", "hunter2")
	require.NoError(t, err)
	assert.Equal(t, registered.ID, user.ID)

	snap := rec.Snapshot()
	assert.Equal(t, uint64(1), snap.LoginsSucceeded)
}

func TestUserService_AuthenticateFailures(t *testing.T) {
	t.Parallel()

	store := newFakeUserStore()
	svc := NewUserService(store, nil)

	_, err := svc.Register(context.Background(), "alice", "hunter2")
	require.NoError(t, err)

	tests := []struct {
		name     string
		username string
		password string
	}{
		{"wrong password", "alice", "nope"},
		{"unknown user", "mallory", "hunter2"},
		{"empty username", "", "hunter2"},
		{"empty password", "alice", ""},
	}

	// All failure modes return the same error so responses cannot be
	// used to probe which usernames exist.
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := svc.Authenticate(context.Background(), tt.username, tt.password)
			assert.ErrorIs(t, err, ErrInvalidCredentials)
		})
	}
}
