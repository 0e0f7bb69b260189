// Package client provides the resilient HTTP executor used for all
// UniProtKB search requests: automatic retry with exponential backoff,
// error classification, and request metrics.
package client

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/protsearch/uniprot-client/pkg/ratelimit"
)

// Prometheus metrics for request operations.
var (
	requestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "uniprot_requests_total",
		Help: "Total UniProt requests by endpoint and status",
	}, []string{"endpoint", "status"})

	requestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "uniprot_request_duration_seconds",
		Help:    "UniProt request duration in seconds by endpoint",
		Buckets: []float64{0.1, 0.5, 1, 2, 5, 10},
	}, []string{"endpoint"})

	errorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "uniprot_errors_total",
		Help: "Total UniProt errors by class",
	}, []string{"class"})
)

// Config holds the client configuration.
type Config struct {
	// User-Agent header sent with every request. UniProt asks API
	// consumers to identify themselves; format: "AppName/Version (contact)".
	UserAgent string

	// Timeout per HTTP request (default 30s).
	Timeout time.Duration

	// MaxBackoff caps a single retry sleep (default 30s).
	MaxBackoff time.Duration

	// Retry is the transient-failure retry policy.
	Retry RetryPolicy

	// Limiter gates requests during a shared 429 cooldown. Optional.
	Limiter *ratelimit.Tracker
}

// DefaultConfig returns a safe default configuration.
func DefaultConfig(userAgent string) Config {
	return Config{
		UserAgent:  userAgent,
		Timeout:    30 * time.Second,
		MaxBackoff: 30 * time.Second,
		Retry:      DefaultRetryPolicy(),
	}
}

// Client executes HTTP GET requests with retry and classification.
// It is safe for use from independent call sites; each call owns its
// own state.
type Client struct {
	httpClient *http.Client
	config     Config
	logger     zerolog.Logger
}

// New creates a new client.
func New(cfg Config) (*Client, error) {
	if cfg.UserAgent == "" {
		return nil, fmt.Errorf("user-agent is required")
	}
	if cfg.Retry.MaxAttempts < 1 {
		return nil, fmt.Errorf("retry max_attempts must be >= 1 (got %d)", cfg.Retry.MaxAttempts)
	}
	if cfg.Retry.BackoffFactor < 0 {
		return nil, fmt.Errorf("retry backoff_factor must be >= 0 (got %v)", cfg.Retry.BackoffFactor)
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}

	logger := log.With().Str("component", "uniprot-client").Logger()

	return &Client{
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		config: cfg,
		logger: logger,
	}, nil
}

// Get performs an HTTP GET against rawURL, transparently retrying network
// errors and configured status codes per the retry policy. Non-retryable
// error statuses (e.g. 4xx) are not treated as call failures: the response
// is returned to the caller, which decides how to handle the status.
func (c *Client) Get(ctx context.Context, rawURL string) (*http.Response, error) {
	endpoint := rawURL
	if u, err := url.Parse(rawURL); err == nil && u.Path != "" {
		endpoint = u.Path
	}

	startTime := time.Now()
	defer func() {
		requestDuration.WithLabelValues(endpoint).Observe(time.Since(startTime).Seconds())
	}()

	if c.config.Limiter != nil {
		allowed, err := c.config.Limiter.ShouldAllowRequest(ctx)
		if err != nil {
			c.logger.Warn().Err(err).Msg("Rate limit check failed, allowing request")
		} else if !allowed {
			c.logger.Warn().
				Str("endpoint", endpoint).
				Msg("Request blocked by rate limit cooldown")
			requestsTotal.WithLabelValues(endpoint, "rate_limited").Inc()
			return nil, fmt.Errorf("request blocked: rate limit cooldown active")
		}
	}

	c.logger.Debug().
		Str("endpoint", endpoint).
		Msg("Executing UniProt request")

	var resp *http.Response

	retryErr := c.retryWithBackoff(ctx, func() (bool, ErrorClass, error) {
		// Requests are GET with no body, so a fresh request per attempt
		// is cheap and avoids body-reuse pitfalls.
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
		if err != nil {
			return false, "", fmt.Errorf("create request: %w", err)
		}
		req.Header.Set("User-Agent", c.config.UserAgent)
		req.Header.Set("Accept", "*/*")

		r, reqErr := c.httpClient.Do(req)
		if reqErr != nil {
			c.logger.Error().Err(reqErr).Str("endpoint", endpoint).Msg("HTTP request failed")
			errorsTotal.WithLabelValues(string(ErrorClassNetwork)).Inc()
			requestsTotal.WithLabelValues(endpoint, "network_error").Inc()
			return true, ErrorClassNetwork, reqErr
		}

		requestsTotal.WithLabelValues(endpoint, strconv.Itoa(r.StatusCode)).Inc()

		if r.StatusCode == http.StatusTooManyRequests && c.config.Limiter != nil {
			if err := c.config.Limiter.UpdateFromResponse(ctx, r); err != nil {
				c.logger.Warn().Err(err).Msg("Failed to record rate limit cooldown")
			}
		}

		if c.config.Retry.Retryable(r.StatusCode) {
			errClass := ClassifyStatus(r.StatusCode)
			errorsTotal.WithLabelValues(string(errClass)).Inc()

			c.logger.Warn().
				Str("endpoint", endpoint).
				Int("status", r.StatusCode).
				Str("error_class", string(errClass)).
				Msg("Retryable UniProt response")

			// Drain and close before retrying the same URL
			io.Copy(io.Discard, r.Body)
			r.Body.Close()

			return true, errClass, &APIError{
				StatusCode: r.StatusCode,
				ErrorClass: errClass,
				Message:    r.Status,
			}
		}

		if r.StatusCode >= 400 {
			errClass := ClassifyStatus(r.StatusCode)
			errorsTotal.WithLabelValues(string(errClass)).Inc()
			c.logger.Warn().
				Str("endpoint", endpoint).
				Int("status", r.StatusCode).
				Str("error_class", string(errClass)).
				Msg("Non-retryable UniProt error response")
		}

		resp = r
		return false, "", nil
	})

	if retryErr != nil {
		return nil, retryErr
	}

	return resp, nil
}

// SetHTTPClient sets a custom HTTP client (for testing).
func (c *Client) SetHTTPClient(client *http.Client) {
	c.httpClient = client
}
