// internal/rules/store.go
package rules

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

const redisRulesKey = "rules:active"

// RedisStore keeps the full rule set as a JSON array under a single key.
type RedisStore struct {
	client *redis.Client
	key    string
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client, key: redisRulesKey}
}

// NewRedisStoreWithKey uses a deployment-specific key, for running several
// rule sets against one Redis.
func NewRedisStoreWithKey(client *redis.Client, key string) *RedisStore {
	if key == "" {
		key = redisRulesKey
	}
	return &RedisStore{client: client, key: key}
}

func (s *RedisStore) Load(ctx context.Context) ([]BusinessRule, error) {
	data, err := s.client.Get(ctx, s.key).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read rule set: %w", err)
	}

	var rules []BusinessRule
	if err := json.Unmarshal([]byte(data), &rules); err != nil {
		return nil, fmt.Errorf("decode rule set: %w", err)
	}
	return rules, nil
}

func (s *RedisStore) Save(ctx context.Context, rules []BusinessRule) error {
	data, err := json.Marshal(rules)
	if err != nil {
		return fmt.Errorf("encode rule set: %w", err)
	}
	if err := s.client.Set(ctx, s.key, data, 0).Err(); err != nil {
		return fmt.Errorf("write rule set: %w", err)
	}
	return nil
}

// MemoryStore is the in-process fallback used by tests and the seeded
// deployment mode.
type MemoryStore struct {
	rules []BusinessRule
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Load(_ context.Context) ([]BusinessRule, error) {
	out := make([]BusinessRule, len(s.rules))
	copy(out, s.rules)
	return out, nil
}

func (s *MemoryStore) Save(_ context.Context, rules []BusinessRule) error {
	s.rules = make([]BusinessRule, len(rules))
	copy(s.rules, rules)
	return nil
}
