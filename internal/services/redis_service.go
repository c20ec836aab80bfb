package services

import (
	"context"
	"fmt"
	"time"

	"teamchat-service/internal/models"

	"github.com/redis/go-redis/v9"
)

// stickyTTL keeps an explicit status around long enough to survive any
// realistic reconnect, while still expiring abandoned entries.
const stickyTTL = 24 * time.Hour

// RedisService backs the engine's sticky presence store and the HTTP rate
// limiter.
type RedisService struct {
	client *redis.Client
}

func NewRedisService(client *redis.Client) *RedisService {
	return &RedisService{client: client}
}

// =============================================================================
// Sticky presence (websocket.StatusStore)
// =============================================================================

func stickyKey(userID uint) string {
	return fmt.Sprintf("presence:sticky:%d", userID)
}

func (r *RedisService) SaveSticky(ctx context.Context, userID uint, status models.UserStatus) error {
	return r.client.Set(ctx, stickyKey(userID), string(status), stickyTTL).Err()
}

func (r *RedisService) LoadSticky(ctx context.Context, userID uint) (models.UserStatus, bool, error) {
	val, err := r.client.Get(ctx, stickyKey(userID)).Result()
	if err == redis.Nil {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return models.UserStatus(val), true, nil
}

func (r *RedisService) ClearSticky(ctx context.Context, userID uint) error {
	return r.client.Del(ctx, stickyKey(userID)).Err()
}

// =============================================================================
// Rate limiting
// =============================================================================

// CheckRateLimit counts requests under key within a rolling window and
// reports whether this one is still allowed.
func (r *RedisService) CheckRateLimit(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	pipe := r.client.Pipeline()
	incr := pipe.Incr(ctx, key)
	pipe.ExpireNX(ctx, key, window)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, err
	}
	return incr.Val() <= int64(limit), nil
}
