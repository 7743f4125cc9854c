package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/fortuna/augur/internal/features"
)

// RedisCache handles caching and fast state storage
type RedisCache struct {
	client *redis.Client
}

// NewRedisCache creates a new Redis cache connection
func NewRedisCache(redisURL string) (*RedisCache, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}

	client := redis.NewClient(opt)

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return &RedisCache{
		client: client,
	}, nil
}

// Close closes the Redis connection
func (rc *RedisCache) Close() error {
	return rc.client.Close()
}

// Client returns the underlying Redis client
func (rc *RedisCache) Client() *redis.Client {
	return rc.client
}

// HealthCheck pings Redis to verify connection
func (rc *RedisCache) HealthCheck(ctx context.Context) error {
	return rc.client.Ping(ctx).Err()
}

// Set stores a key-value pair with TTL
func (rc *RedisCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	return rc.client.Set(ctx, key, value, ttl).Err()
}

// Get retrieves a value by key
func (rc *RedisCache) Get(ctx context.Context, key string) (string, error) {
	return rc.client.Get(ctx, key).Result()
}

// Delete removes a key
func (rc *RedisCache) Delete(ctx context.Context, keys ...string) error {
	return rc.client.Del(ctx, keys...).Err()
}

// Form snapshots are cached per team after every dataset build so the REST
// layer can answer team-form requests without touching Atlas.

const snapshotTTL = 26 * time.Hour

func snapshotKey(teamID string) string {
	return fmt.Sprintf("augur:form:%s", teamID)
}

// SetTeamSnapshot caches one team's current form snapshot
func (rc *RedisCache) SetTeamSnapshot(ctx context.Context, teamID string, snap features.Snapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return err
	}

	return rc.client.Set(ctx, snapshotKey(teamID), data, snapshotTTL).Err()
}

// GetTeamSnapshot retrieves a cached form snapshot. Returns redis.Nil via the
// error when the team has no cached snapshot.
func (rc *RedisCache) GetTeamSnapshot(ctx context.Context, teamID string) (*features.Snapshot, error) {
	data, err := rc.client.Get(ctx, snapshotKey(teamID)).Result()
	if err != nil {
		return nil, err
	}

	var snap features.Snapshot
	if err := json.Unmarshal([]byte(data), &snap); err != nil {
		return nil, err
	}

	return &snap, nil
}
