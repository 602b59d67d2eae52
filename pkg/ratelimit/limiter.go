// Package ratelimit implements fixed-window request counters.
package ratelimit

import (
	"context"
	"errors"
	"time"
)

const (
	BackendMemory  = "memory"
	BackendUpstash = "upstash"
)

var ErrEmptyKey = errors.New("rate limit key is empty")

// Decision is the outcome of counting one request against its window.
type Decision struct {
	Allowed   bool
	Limit     int
	Remaining int
	ResetAt   time.Time
}

// RetryAfter is the time left until the window resets, rounded up to whole
// seconds and never below one second.
func (d Decision) RetryAfter(now time.Time) time.Duration {
	wait := d.ResetAt.Sub(now)
	if wait <= 0 {
		return time.Second
	}
	if rem := wait % time.Second; rem != 0 {
		wait += time.Second - rem
	}
	return wait
}

// Limiter counts a request for key and reports whether it fits in the
// current window.
type Limiter interface {
	Check(ctx context.Context, key string) (Decision, error)
}

type Config struct {
	Window    time.Duration `envconfig:"WINDOW" default:"60s"`
	Max       int           `envconfig:"MAX" default:"20"`
	Backend   string        `envconfig:"BACKEND" default:"memory"`
	CacheSize int           `envconfig:"CACHE_SIZE" split_words:"true" default:"10000"`
}

func decide(count int64, limit int, resetAt time.Time) Decision {
	remaining := limit - int(count)
	if remaining < 0 {
		remaining = 0
	}
	return Decision{
		Allowed:   count <= int64(limit),
		Limit:     limit,
		Remaining: remaining,
		ResetAt:   resetAt,
	}
}
