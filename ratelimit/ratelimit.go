// Package ratelimit throttles token issuance with fixed windows per key.
package ratelimit

import (
	"context"
	"errors"
	"time"
)

var ErrLimitExceeded = errors.New("rate limit exceeded")

// Limiter counts calls per key. Allow returns ErrLimitExceeded once key
// has been seen limit times within the current window.
type Limiter interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) error
}
