//go:build integration

package repository

import (
	"context"
	"sync"
	"testing"

	"github.com/taskhive/taskhive/internal/quota"
	"github.com/taskhive/taskhive/internal/testutil"
)

func setupRepo(t *testing.T) (*Repository, context.Context) {
	t.Helper()

	databaseURL := testutil.RequireEnv(t, "DATABASE_URL")
	ctx := context.Background()

	if err := Migrate(databaseURL); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	repo, err := New(ctx, databaseURL)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	t.Cleanup(repo.Close)

	unlock, err := testutil.AcquireDBLock(ctx, repo.Pool())
	if err != nil {
		t.Fatalf("acquire lock: %v", err)
	}
	t.Cleanup(func() {
		if err := unlock(); err != nil {
			t.Errorf("release lock: %v", err)
		}
	})

	if err := testutil.TruncateAll(ctx, repo.Pool()); err != nil {
		t.Fatalf("truncate: %v", err)
	}

	return repo, ctx
}

func TestRepository_CreateUser_Duplicate(t *testing.T) {
	repo, ctx := setupRepo(t)

	user := testutil.NewTestUser(t, testutil.UniqueUsername("alice"))
	if err := repo.CreateUser(ctx, user); err != nil {
		t.Fatalf("create: %v", err)
	}

	dup := testutil.NewTestUser(t, user.Username)
	if err := repo.CreateUser(ctx, dup); err != ErrUsernameExists {
		t.Errorf("duplicate create error = %v, want ErrUsernameExists", err)
	}
}

func TestRepository_GetUser(t *testing.T) {
	repo, ctx := setupRepo(t)

	user := testutil.NewTestUser(t, testutil.UniqueUsername("bob"))
	if err := repo.CreateUser(ctx, user); err != nil {
		t.Fatalf("create: %v", err)
	}

	byID, err := repo.GetUserByID(ctx, user.ID)
	if err != nil {
		t.Fatalf("get by ID: %v", err)
	}
	if byID.Username != user.Username {
		t.Errorf("username = %q, want %q", byID.Username, user.Username)
	}

	byName, err := repo.GetUserByUsername(ctx, user.Username)
	if err != nil {
		t.Fatalf("get by username: %v", err)
	}
	if byName.ID != user.ID {
		t.Errorf("ID = %q, want %q", byName.ID, user.ID)
	}

	if _, err := repo.GetUserByID(ctx, "missing"); err != ErrUserNotFound {
		t.Errorf("missing user error = %v, want ErrUserNotFound", err)
	}
}

func TestRepository_ConsumeQuota_FreeTier(t *testing.T) {
	repo, ctx := setupRepo(t)

	user := testutil.NewTestUser(t, testutil.UniqueUsername("carol"))
	if err := repo.CreateUser(ctx, user); err != nil {
		t.Fatalf("create: %v", err)
	}

	for want := int64(1); want <= quota.MaxFreeRequests; want++ {
		count, err := repo.ConsumeQuota(ctx, user.ID, quota.MaxFreeRequests)
		if err != nil {
			t.Fatalf("consume %d: %v", want, err)
		}
		if count != want {
			t.Errorf("count = %d, want %d", count, want)
		}
	}

	if _, err := repo.ConsumeQuota(ctx, user.ID, quota.MaxFreeRequests); err != ErrQuotaExceeded {
		t.Errorf("exhausted consume error = %v, want ErrQuotaExceeded", err)
	}

	// Counter stays at the limit after denial
	stored, err := repo.GetUserByID(ctx, user.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if stored.RequestCount != quota.MaxFreeRequests {
		t.Errorf("stored count = %d, want %d", stored.RequestCount, quota.MaxFreeRequests)
	}
}

func TestRepository_ConsumeQuota_PaidTier(t *testing.T) {
	repo, ctx := setupRepo(t)

	user := testutil.NewTestPaidUser(t, testutil.UniqueUsername("dave"))
	if err := repo.CreateUser(ctx, user); err != nil {
		t.Fatalf("create: %v", err)
	}

	calls := quota.MaxFreeRequests * 3
	for i := int64(0); i < calls; i++ {
		if _, err := repo.ConsumeQuota(ctx, user.ID, quota.MaxFreeRequests); err != nil {
			t.Fatalf("paid consume %d: %v", i+1, err)
		}
	}

	stored, err := repo.GetUserByID(ctx, user.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if stored.RequestCount != calls {
		t.Errorf("stored count = %d, want %d", stored.RequestCount, calls)
	}
}

func TestRepository_ConsumeQuota_MissingUser(t *testing.T) {
	repo, ctx := setupRepo(t)

	if _, err := repo.ConsumeQuota(ctx, "missing", quota.MaxFreeRequests); err != ErrUserNotFound {
		t.Errorf("missing user consume error = %v, want ErrUserNotFound", err)
	}
}

// TestRepository_ConsumeQuota_Concurrent races goroutines against the last
// remaining quota slot. The conditional UPDATE must let exactly one through.
func TestRepository_ConsumeQuota_Concurrent(t *testing.T) {
	repo, ctx := setupRepo(t)

	user := testutil.NewTestUser(t, testutil.UniqueUsername("erin"))
	user.RequestCount = quota.MaxFreeRequests - 1
	if err := repo.CreateUser(ctx, user); err != nil {
		t.Fatalf("create: %v", err)
	}

	const workers = 10
	var wg sync.WaitGroup
	errs := make([]error, workers)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = repo.ConsumeQuota(ctx, user.ID, quota.MaxFreeRequests)
		}(i)
	}
	wg.Wait()

	allowed, denied := 0, 0
	for _, err := range errs {
		switch err {
		case nil:
			allowed++
		case ErrQuotaExceeded:
			denied++
		default:
			t.Errorf("unexpected error: %v", err)
		}
	}

	if allowed != 1 {
		t.Errorf("allowed = %d, want exactly 1", allowed)
	}
	if denied != workers-1 {
		t.Errorf("denied = %d, want %d", denied, workers-1)
	}

	stored, err := repo.GetUserByID(ctx, user.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if stored.RequestCount != quota.MaxFreeRequests {
		t.Errorf("final count = %d, want %d", stored.RequestCount, quota.MaxFreeRequests)
	}
}
