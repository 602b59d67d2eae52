package ratelimit

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	defaultKeyPrefix     = "ratelimit:"
	maxResponseSizeBytes = 1 << 16
)

// fixedWindowScript increments the counter and starts the window on the
// first hit. It returns {count, pttl}.
const fixedWindowScript = `local current = redis.call('INCR', KEYS[1])
local ttl = redis.call('PTTL', KEYS[1])
if current == 1 or ttl < 0 then
  redis.call('PEXPIRE', KEYS[1], ARGV[1])
  ttl = tonumber(ARGV[1])
end
return {current, ttl}`

type UpstashConfig struct {
	URL     string        `envconfig:"URL" split_words:"true" required:"true"`
	Token   string        `envconfig:"TOKEN" split_words:"true" required:"true"`
	Timeout time.Duration `envconfig:"TIMEOUT" split_words:"true" default:"10s"`
}

// UpstashOption customizes UpstashLimiter.
type UpstashOption func(*UpstashLimiter)

func WithKeyPrefix(prefix string) UpstashOption {
	return func(l *UpstashLimiter) {
		trimmed := strings.TrimSpace(prefix)
		if trimmed != "" {
			l.keyPrefix = trimmed
		}
	}
}

func WithHTTPClient(client *http.Client) UpstashOption {
	return func(l *UpstashLimiter) {
		if client != nil {
			l.httpClient = client
		}
	}
}

func WithUpstashClock(now func() time.Time) UpstashOption {
	return func(l *UpstashLimiter) {
		if now != nil {
			l.now = now
		}
	}
}

// UpstashLimiter keeps the counters in Upstash Redis via REST so that every
// process behind the same database shares one window per key.
type UpstashLimiter struct {
	baseURL    string
	token      string
	httpClient *http.Client
	keyPrefix  string
	limit      int
	window     time.Duration
	now        func() time.Time
}

type redisRESTResponse struct {
	Result json.RawMessage `json:"result"`
	Error  string          `json:"error"`
}

func NewUpstashLimiter(cfg UpstashConfig, limits Config, opts ...UpstashOption) (*UpstashLimiter, error) {
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.URL), "/")
	if baseURL == "" {
		return nil, errors.New("upstash redis url is required")
	}
	if _, err := url.ParseRequestURI(baseURL); err != nil {
		return nil, fmt.Errorf("invalid redis rest url: %w", err)
	}

	token := strings.TrimSpace(cfg.Token)
	if token == "" {
		return nil, errors.New("upstash redis token is required")
	}
	if limits.Max <= 0 {
		return nil, errors.New("rate limit max must be > 0")
	}
	if limits.Window < time.Millisecond {
		return nil, errors.New("rate limit window must be >= 1ms")
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	l := &UpstashLimiter{
		baseURL: baseURL,
		token:   token,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		keyPrefix: defaultKeyPrefix,
		limit:     limits.Max,
		window:    limits.Window,
		now:       time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(l)
		}
	}
	return l, nil
}

func (l *UpstashLimiter) Check(ctx context.Context, key string) (Decision, error) {
	redisKey, err := l.redisKey(key)
	if err != nil {
		return Decision{}, err
	}

	resp, err := l.exec(ctx, []any{"EVAL", fixedWindowScript, 1, redisKey, l.window.Milliseconds()})
	if err != nil {
		return Decision{}, err
	}

	var pair []int64
	if err := json.Unmarshal(resp.Result, &pair); err != nil {
		return Decision{}, fmt.Errorf("decode rate limit result: %w", err)
	}
	if len(pair) != 2 {
		return Decision{}, fmt.Errorf("unexpected rate limit result: %s", string(resp.Result))
	}

	resetAt := l.now().Add(time.Duration(pair[1]) * time.Millisecond)
	return decide(pair[0], l.limit, resetAt), nil
}

func (l *UpstashLimiter) redisKey(key string) (string, error) {
	if strings.TrimSpace(key) == "" {
		return "", ErrEmptyKey
	}
	return l.keyPrefix + key, nil
}

func (l *UpstashLimiter) exec(ctx context.Context, command []any) (*redisRESTResponse, error) {
	if len(command) == 0 {
		return nil, errors.New("empty redis command")
	}

	body, err := json.Marshal(command)
	if err != nil {
		return nil, fmt.Errorf("marshal redis command: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, l.baseURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build redis request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+l.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := l.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute redis request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSizeBytes))
	if err != nil {
		return nil, fmt.Errorf("read redis response: %w", err)
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, fmt.Errorf("redis http status=%d body=%s", resp.StatusCode, string(raw))
	}

	var parsed redisRESTResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, fmt.Errorf("decode redis response: %w", err)
	}
	if parsed.Error != "" {
		return nil, errors.New(parsed.Error)
	}
	return &parsed, nil
}

var _ Limiter = (*UpstashLimiter)(nil)
