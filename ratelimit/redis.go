package ratelimit

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

const DefaultRedisPrefix = "token-rate:"

var allowScript = redis.NewScript(`
	local current = redis.call("GET", KEYS[1])
	if current == false then
		redis.call("SET", KEYS[1], 1, "PX", ARGV[2])
		return 1
	end
	local count = tonumber(current)
	if count >= tonumber(ARGV[1]) then
		return 0
	end
	redis.call("INCR", KEYS[1])
	return 1
`)

// RedisLimiter shares windows across service instances.
type RedisLimiter struct {
	client    redis.Scripter
	keyPrefix string
}

func NewRedisLimiter(client redis.Scripter, keyPrefix string) *RedisLimiter {
	if keyPrefix == "" {
		keyPrefix = DefaultRedisPrefix
	}
	return &RedisLimiter{
		client:    client,
		keyPrefix: keyPrefix,
	}
}

func (l *RedisLimiter) key(key string) string {
	return l.keyPrefix + key
}

func (l *RedisLimiter) Allow(ctx context.Context, key string, limit int, window time.Duration) error {
	result, err := allowScript.Run(ctx, l.client, []string{l.key(key)}, limit, window.Milliseconds()).Int()
	if err != nil {
		return err
	}
	if result == 0 {
		return ErrLimitExceeded
	}
	return nil
}
