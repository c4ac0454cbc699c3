package session

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "qcr:session:"

// RedisStore keeps session values in one Redis hash per token.
type RedisStore struct {
	Client *redis.Client
	TTL    time.Duration
}

func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{Client: client, TTL: ttl}
}

func redisKey(token string) string {
	return redisKeyPrefix + token
}

func (s *RedisStore) Load(ctx context.Context, token string) (State, error) {
	values, err := s.Client.HGetAll(ctx, redisKey(token)).Result()
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	return State(values), nil
}

func (s *RedisStore) Save(ctx context.Context, token string, st State) error {
	if len(st) == 0 {
		return nil
	}
	key := redisKey(token)
	fields := make(map[string]interface{}, len(st))
	for k, v := range st {
		fields[k] = v
	}

	pipe := s.Client.TxPipeline()
	pipe.HSet(ctx, key, fields)
	if s.TTL > 0 {
		pipe.Expire(ctx, key, s.TTL)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, token string) error {
	return s.Client.Del(ctx, redisKey(token)).Err()
}
