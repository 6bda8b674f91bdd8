package presence

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Abdulkaium05/echo-backend/internal/domain"
)

// presenceTTL bounds how long a last-seen key outlives its user's activity.
const presenceTTL = 30 * 24 * time.Hour

// RedisStore keeps last-activity instants in Redis so any instance can answer
// status queries.
type RedisStore struct {
	client *redis.Client
	prefix string
}

func NewRedisStore(client *redis.Client, prefix string) *RedisStore {
	return &RedisStore{client: client, prefix: prefix}
}

func (s *RedisStore) key(userID string) string {
	return fmt.Sprintf("%s:presence:%s", s.prefix, userID)
}

func (s *RedisStore) Touch(ctx context.Context, userID string, at time.Time) error {
	err := s.client.Set(ctx, s.key(userID), at.UnixMilli(), presenceTTL).Err()
	if err != nil {
		return fmt.Errorf("presence touch: %v: %w", err, domain.ErrStorageUnavailable)
	}
	return nil
}

func (s *RedisStore) LastActive(ctx context.Context, userID string) (time.Time, error) {
	v, err := s.client.Get(ctx, s.key(userID)).Result()
	if err == redis.Nil {
		return time.Time{}, nil
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("presence get: %v: %w", err, domain.ErrStorageUnavailable)
	}
	ms, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return time.Time{}, fmt.Errorf("presence value %q: %w", v, domain.ErrInvalidInput)
	}
	return time.UnixMilli(ms).UTC(), nil
}
