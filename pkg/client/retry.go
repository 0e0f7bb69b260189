package client

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus metrics for retry operations.
var (
	retriesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "uniprot_retries_total",
		Help: "Total number of retry attempts by error class",
	}, []string{"error_class"})

	retryBackoffSeconds = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "uniprot_retry_backoff_seconds",
		Help:    "Backoff duration for retries by error class",
		Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
	}, []string{"error_class"})

	retryExhaustedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "uniprot_retry_exhausted_total",
		Help: "Total number of times retry attempts were exhausted by error class",
	}, []string{"error_class"})
)

// RetryPolicy controls automatic retries of transient failures. It is
// configured once at client construction and applied uniformly to every
// HTTP call.
type RetryPolicy struct {
	// MaxAttempts is the maximum number of attempts per URL, including
	// the initial request.
	MaxAttempts int

	// BackoffFactor scales the exponential backoff: the sleep before
	// retry n is BackoffFactor * 2^(n-1) seconds, with ±20% jitter.
	BackoffFactor float64

	// RetryableStatusCodes are the HTTP status codes retried automatically.
	RetryableStatusCodes map[int]bool
}

// DefaultRetryPolicy returns the retry policy used against the public
// UniProt endpoint: 5 attempts, 0.25 backoff factor, retry on 5xx
// gateway-style failures.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts:   5,
		BackoffFactor: 0.25,
		RetryableStatusCodes: map[int]bool{
			500: true,
			502: true,
			503: true,
			504: true,
		},
	}
}

// Retryable reports whether a status code is in the retryable set.
func (p RetryPolicy) Retryable(statusCode int) bool {
	return p.RetryableStatusCodes[statusCode]
}

// attemptFunc performs one attempt. It reports whether a failure may be
// retried; a nil error always ends the loop.
type attemptFunc func() (retryable bool, errClass ErrorClass, err error)

// retryWithBackoff executes fn with exponential backoff per the client's
// retry policy. It respects context cancellation and adds jitter to avoid
// synchronized retries against the same endpoint.
func (c *Client) retryWithBackoff(ctx context.Context, fn attemptFunc) error {
	policy := c.config.Retry

	var lastErr error
	var lastClass ErrorClass
	backoff := time.Duration(policy.BackoffFactor * float64(time.Second))

	for attempt := 1; attempt <= policy.MaxAttempts; attempt++ {
		retryable, errClass, err := fn()
		if err == nil {
			if attempt > 1 {
				c.logger.Info().
					Int("attempt", attempt).
					Msg("Request succeeded after retry")
			}
			return nil
		}

		lastErr = err
		lastClass = errClass

		if !retryable {
			return lastErr
		}

		if attempt >= policy.MaxAttempts {
			break
		}

		retriesTotal.WithLabelValues(string(errClass)).Inc()

		// ±20% jitter
		jitter := time.Duration(float64(backoff) * (0.8 + rand.Float64()*0.4))
		if c.config.MaxBackoff > 0 && jitter > c.config.MaxBackoff {
			jitter = c.config.MaxBackoff
		}
		retryBackoffSeconds.WithLabelValues(string(errClass)).Observe(jitter.Seconds())

		c.logger.Debug().
			Str("error_class", string(errClass)).
			Int("attempt", attempt).
			Dur("backoff", jitter).
			Msg("Retrying request after backoff")

		select {
		case <-ctx.Done():
			c.logger.Warn().
				Str("error_class", string(errClass)).
				Int("attempt", attempt).
				Msg("Context cancelled during retry backoff")
			return fmt.Errorf("%w: %v", ErrContextCancelled, ctx.Err())
		case <-time.After(jitter):
		}

		backoff *= 2
		if c.config.MaxBackoff > 0 && backoff > c.config.MaxBackoff {
			backoff = c.config.MaxBackoff
		}
	}

	retryExhaustedTotal.WithLabelValues(string(lastClass)).Inc()
	c.logger.Warn().
		Str("error_class", string(lastClass)).
		Int("max_attempts", policy.MaxAttempts).
		Msg("Retry attempts exhausted")

	return fmt.Errorf("%w after %d attempts: %w", ErrRetryExhausted, policy.MaxAttempts, lastErr)
}
