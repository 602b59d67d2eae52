package ratelimit

import (
	"fmt"
)

// New builds the limiter selected by cfg.Backend. upstash is only called
// when the upstash backend is selected.
func New(cfg Config, upstash func() UpstashConfig) (Limiter, error) {
	switch cfg.Backend {
	case "", BackendMemory:
		l, err := NewMemoryLimiter(cfg)
		if err != nil {
			return nil, err
		}
		return l, nil
	case BackendUpstash:
		if upstash == nil {
			return nil, fmt.Errorf("rate limit backend %q needs upstash config", cfg.Backend)
		}
		l, err := NewUpstashLimiter(upstash(), cfg)
		if err != nil {
			return nil, err
		}
		return l, nil
	default:
		return nil, fmt.Errorf("unknown rate limit backend %q", cfg.Backend)
	}
}
