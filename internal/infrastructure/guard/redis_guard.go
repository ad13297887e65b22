package guard

import (
	"context"
	"fmt"
	"isp-billing/internal/pkg/apperrors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const keyPrefix = "processing:"

// releaseScript deletes the marker only while it still holds the caller's token.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

type redisCmdable interface {
	redis.Scripter
	SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.BoolCmd
}

var _ redisCmdable = (*redis.Client)(nil)

// RedisGuard keeps processing markers in redis so that every instance of the service sees them.
// Markers expire after ttl in case a holder dies before releasing.
type RedisGuard struct {
	client redisCmdable
	ttl    time.Duration
	logger *slog.Logger
}

func NewRedisGuard(client *redis.Client, ttl time.Duration, logger *slog.Logger) *RedisGuard {
	if client == nil {
		panic("redis client cannot be nil for RedisGuard")
	}
	return newRedisGuard(client, ttl, logger)
}

func newRedisGuard(client redisCmdable, ttl time.Duration, logger *slog.Logger) *RedisGuard {
	if logger == nil {
		panic("logger cannot be nil")
	}
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &RedisGuard{
		client: client,
		ttl:    ttl,
		logger: logger.With("component", "RedisGuard"),
	}
}

// Acquire sets the marker with SET NX PX. When redis itself fails the guard lets the
// request through and the store's uniqueness constraint still applies.
func (g *RedisGuard) Acquire(ctx context.Context, key string) (func(), error) {
	redisKey := keyPrefix + key
	token := uuid.NewString()

	ok, err := g.client.SetNX(ctx, redisKey, token, g.ttl).Result()
	if err != nil {
		g.logger.ErrorContext(ctx, "Redis SETNX failed, proceeding without processing marker",
			slog.String("key", redisKey), slog.Any("error", err))
		return func() {}, nil
	}
	if !ok {
		g.logger.WarnContext(ctx, "Processing marker already held", slog.String("key", redisKey))
		return nil, fmt.Errorf("%w: %s", apperrors.ErrProcessing, key)
	}

	return func() { g.release(redisKey, token) }, nil
}

func (g *RedisGuard) release(redisKey, token string) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	deleted, err := releaseScript.Run(ctx, g.client, []string{redisKey}, token).Int()
	if err != nil {
		g.logger.Error("Failed to release processing marker", "key", redisKey, "error", err)
		return
	}
	if deleted == 0 {
		g.logger.Warn("Processing marker expired or was taken over, not releasing", "key", redisKey)
	}
}
