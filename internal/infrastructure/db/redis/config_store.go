package redis

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// keyPrefix namespaces site configuration away from other users of the
// same Redis database.
const keyPrefix = "siteconfig:"

// ConfigStore is the Redis-backed service configuration store. Values are
// plain strings; keys carry no TTL, config lives until overwritten. Reads
// are eventually consistent across instances by assumption — callers must
// not rely on read-your-writes beyond a single request.
type ConfigStore struct {
	client *redis.Client
}

// NewConfigStore creates a ConfigStore wrapping the given Redis client.
func NewConfigStore(client *redis.Client) *ConfigStore {
	return &ConfigStore{client: client}
}

// Get returns the stored value, or "" when the key is absent.
func (s *ConfigStore) Get(ctx context.Context, key string) (string, error) {
	val, err := s.client.Get(ctx, keyPrefix+key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", nil
		}
		return "", fmt.Errorf("config get %q: %w", key, err)
	}
	return val, nil
}

// Put stores a value under the key, overwriting any previous value.
func (s *ConfigStore) Put(ctx context.Context, key, value string) error {
	if err := s.client.Set(ctx, keyPrefix+key, value, 0).Err(); err != nil {
		return fmt.Errorf("config put %q: %w", key, err)
	}
	return nil
}
