package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/taskhive/taskhive/internal/model"
)

const (
	// identityCachePrefix is the Redis key prefix for the identity cache.
	identityCachePrefix = "identity:"
	// identityCacheTTL is the time-to-live for cached identities.
	// Quota enforcement reads the counter from Postgres on every gated
	// call, so a short window of tier staleness here is harmless.
	identityCacheTTL = time.Minute
)

// cachedIdentity is the identity representation stored in Redis.
type cachedIdentity struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	Tier     string `json:"tier"`
}

// GetIdentity retrieves a cached identity by user ID.
// Returns nil on a cache miss.
func (c *Cache) GetIdentity(ctx context.Context, userID string) (*model.Identity, error) {
	key := identityCachePrefix + userID

	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		// Cache miss is not an error
		return nil, nil //nolint:nilerr
	}

	var cached cachedIdentity
	if err := json.Unmarshal(data, &cached); err != nil {
		// Corrupted cache entry - treat as miss
		return nil, nil //nolint:nilerr
	}

	return &model.Identity{
		UserID:   cached.UserID,
		Username: cached.Username,
		Tier:     cached.Tier,
	}, nil
}

// SetIdentity caches an identity.
func (c *Cache) SetIdentity(ctx context.Context, id *model.Identity) error {
	key := identityCachePrefix + id.UserID

	data, err := json.Marshal(cachedIdentity{
		UserID:   id.UserID,
		Username: id.Username,
		Tier:     id.Tier,
	})
	if err != nil {
		return fmt.Errorf("marshal identity: %w", err)
	}

	return c.client.Set(ctx, key, data, identityCacheTTL).Err()
}

// DeleteIdentity removes a cached identity.
func (c *Cache) DeleteIdentity(ctx context.Context, userID string) error {
	key := identityCachePrefix + userID
	return c.client.Del(ctx, key).Err()
}
