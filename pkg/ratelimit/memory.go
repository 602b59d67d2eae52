package ratelimit

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

type window struct {
	count   int64
	resetAt time.Time
}

// MemoryLimiter keeps one counter per key in a bounded LRU. Entries expire
// with their window, so idle keys never need a sweeper.
type MemoryLimiter struct {
	mu      sync.Mutex
	windows *expirable.LRU[string, *window]
	limit   int
	period  time.Duration
	now     func() time.Time
}

type MemoryOption func(*MemoryLimiter)

func WithMemoryClock(now func() time.Time) MemoryOption {
	return func(l *MemoryLimiter) {
		if now != nil {
			l.now = now
		}
	}
}

func NewMemoryLimiter(cfg Config, opts ...MemoryOption) (*MemoryLimiter, error) {
	if cfg.Max <= 0 {
		return nil, errors.New("rate limit max must be > 0")
	}
	if cfg.Window <= 0 {
		return nil, errors.New("rate limit window must be > 0")
	}
	size := cfg.CacheSize
	if size <= 0 {
		size = 10000
	}

	l := &MemoryLimiter{
		windows: expirable.NewLRU[string, *window](size, nil, cfg.Window),
		limit:   cfg.Max,
		period:  cfg.Window,
		now:     time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(l)
		}
	}
	return l, nil
}

func (l *MemoryLimiter) Check(_ context.Context, key string) (Decision, error) {
	if strings.TrimSpace(key) == "" {
		return Decision{}, ErrEmptyKey
	}

	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	w, ok := l.windows.Get(key)
	if !ok || !now.Before(w.resetAt) {
		w = &window{resetAt: now.Add(l.period)}
		l.windows.Add(key, w)
	}
	if w.count < int64(l.limit) {
		w.count++
		return decide(w.count, l.limit, w.resetAt), nil
	}

	// Rejected requests do not extend the count past the limit.
	return decide(int64(l.limit)+1, l.limit, w.resetAt), nil
}

var _ Limiter = (*MemoryLimiter)(nil)
