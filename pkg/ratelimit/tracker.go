package ratelimit

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// Prometheus metrics for rate limit tracking.
var (
	rateLimitBlocksTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "uniprot_rate_limit_blocks_total",
		Help: "Total number of requests blocked during an active cooldown",
	})

	rateLimitCooldownsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "uniprot_rate_limit_cooldowns_total",
		Help: "Total number of cooldowns recorded from 429 responses",
	})

	rateLimitCooldownSeconds = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "uniprot_rate_limit_cooldown_seconds",
		Help: "Duration of the most recently recorded cooldown in seconds",
	})
)

// Tracker records 429 cooldowns in Redis and gates new requests until the
// cooldown deadline passes.
type Tracker struct {
	redis  *redis.Client
	logger zerolog.Logger
}

// NewTracker creates a new cooldown tracker.
func NewTracker(redisClient *redis.Client, logger zerolog.Logger) *Tracker {
	return &Tracker{
		redis:  redisClient,
		logger: logger,
	}
}

// GetState retrieves the current cooldown state from Redis.
// Returns an inactive state if no cooldown has been recorded.
func (t *Tracker) GetState(ctx context.Context) (*State, error) {
	untilUnix, err := t.redis.Get(ctx, RedisKeyCooldownUntil).Int64()
	if err == redis.Nil {
		return &State{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get cooldown deadline: %w", err)
	}

	state := &State{
		CooldownUntil: time.Unix(untilUnix, 0),
	}

	lastUpdateStr, err := t.redis.Get(ctx, RedisKeyLastUpdate).Result()
	if err != nil && err != redis.Nil {
		return nil, fmt.Errorf("get last update: %w", err)
	}
	if lastUpdateStr != "" {
		if err := json.Unmarshal([]byte(lastUpdateStr), &state.LastUpdate); err != nil {
			return nil, fmt.Errorf("parse last update: %w", err)
		}
	}

	return state, nil
}

// ShouldAllowRequest reports whether a new request may be issued.
// Returns false while a cooldown recorded by any process is active.
func (t *Tracker) ShouldAllowRequest(ctx context.Context) (bool, error) {
	state, err := t.GetState(ctx)
	if err != nil {
		return false, err
	}

	if state.Active() {
		rateLimitBlocksTotal.Inc()
		t.logger.Warn().
			Dur("remaining", state.Remaining()).
			Msg("Request blocked by active cooldown")
		return false, nil
	}

	return true, nil
}

// UpdateFromResponse records the cooldown advertised by a 429 response.
// Responses with any other status are ignored.
func (t *Tracker) UpdateFromResponse(ctx context.Context, resp *http.Response) error {
	if resp == nil || resp.StatusCode != http.StatusTooManyRequests {
		return nil
	}

	cooldown := parseRetryAfter(resp.Header)
	until := time.Now().Add(cooldown)

	lastUpdateJSON, err := json.Marshal(time.Now())
	if err != nil {
		return fmt.Errorf("marshal last update: %w", err)
	}

	// The keys expire with the cooldown so stale state cleans itself up.
	pipe := t.redis.Pipeline()
	pipe.Set(ctx, RedisKeyCooldownUntil, until.Unix(), cooldown)
	pipe.Set(ctx, RedisKeyLastUpdate, lastUpdateJSON, cooldown)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("store cooldown state: %w", err)
	}

	rateLimitCooldownsTotal.Inc()
	rateLimitCooldownSeconds.Set(cooldown.Seconds())

	t.logger.Warn().
		Dur("cooldown", cooldown).
		Time("until", until).
		Msg("Recorded 429 cooldown")

	return nil
}

// parseRetryAfter reads the Retry-After header as either delay-seconds or
// an HTTP date. Falls back to DefaultCooldown when absent or unparsable.
func parseRetryAfter(headers http.Header) time.Duration {
	value := headers.Get("Retry-After")
	if value == "" {
		return DefaultCooldown
	}

	if seconds, err := strconv.Atoi(value); err == nil {
		if seconds <= 0 {
			return DefaultCooldown
		}
		return time.Duration(seconds) * time.Second
	}

	if at, err := http.ParseTime(value); err == nil {
		delay := time.Until(at)
		if delay <= 0 {
			return DefaultCooldown
		}
		return delay
	}

	return DefaultCooldown
}
