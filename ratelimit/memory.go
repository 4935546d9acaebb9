package ratelimit

import (
	"context"
	"sync"
	"time"
)

type MemoryLimiter struct {
	mu   sync.Mutex
	now  func() time.Time
	keys map[string]*window
}

type window struct {
	count int
	end   time.Time
}

func NewMemoryLimiter(now func() time.Time) *MemoryLimiter {
	if now == nil {
		now = time.Now
	}
	return &MemoryLimiter{
		now:  now,
		keys: make(map[string]*window),
	}
}

func (l *MemoryLimiter) Allow(_ context.Context, key string, limit int, win time.Duration) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	w, exists := l.keys[key]

	if !exists || !now.Before(w.end) {
		l.keys[key] = &window{
			count: 1,
			end:   now.Add(win),
		}
		return nil
	}

	if w.count >= limit {
		return ErrLimitExceeded
	}

	w.count++
	return nil
}
