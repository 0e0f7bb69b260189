package pagination

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"

	"github.com/protsearch/uniprot-client/pkg/cache"
	"github.com/protsearch/uniprot-client/pkg/client"
	"github.com/protsearch/uniprot-client/pkg/logging"
	"github.com/protsearch/uniprot-client/pkg/query"
	"github.com/protsearch/uniprot-client/pkg/table"
)

// Prometheus metrics for pagination.
var (
	pagesFetchedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "uniprot_pages_fetched_total",
		Help: "Total number of result pages fetched",
	})

	rowsFetchedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "uniprot_rows_fetched_total",
		Help: "Total number of result rows fetched",
	})

	partialResultsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "uniprot_partial_results_total",
		Help: "Total number of fetches aborted after collecting at least one page",
	})
)

// ErrPartialResult marks a fetch that failed mid-pagination. The returned
// table still holds every row collected before the failure; callers use
// errors.Is to distinguish "exhausted" from "errored with partial data".
var ErrPartialResult = errors.New("partial result")

// nextLinkPattern matches the pagination header contract: a Link header
// value of the form `<URL>; rel="next"`.
var nextLinkPattern = regexp.MustCompile(`<([^>]+)>;\s*rel="next"`)

// fetchState tracks pagination progress.
type fetchState int

const (
	// stateFetching means a page URL is pending.
	stateFetching fetchState = iota
	// stateDone means pagination is exhausted.
	stateDone
)

// Config holds fetcher configuration.
type Config struct {
	// BaseURL is the search endpoint (default: the public UniProtKB endpoint).
	BaseURL string

	// Cache memoizes complete tables by request signature. Optional.
	Cache *cache.Manager

	// CacheTTL is how long memoized tables stay fresh (default 1h).
	CacheTTL time.Duration
}

// DefaultConfig returns safe fetcher defaults.
func DefaultConfig() Config {
	return Config{
		BaseURL:  query.DefaultBaseURL,
		CacheTTL: 1 * time.Hour,
	}
}

// Fetcher performs paginated searches and accumulates the rows of every
// page into one table.
type Fetcher struct {
	client *client.Client
	config Config
	logger zerolog.Logger
}

// NewFetcher creates a fetcher on top of the given request executor.
func NewFetcher(c *client.Client, cfg Config) *Fetcher {
	if cfg.BaseURL == "" {
		cfg.BaseURL = query.DefaultBaseURL
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = 1 * time.Hour
	}

	return &Fetcher{
		client: c,
		config: cfg,
		logger: logging.NewLogger("pagination"),
	}
}

// FetchAll issues the search and follows next links until the result set
// is exhausted, returning all rows in page-arrival order.
//
// Failure contract: a failure on the first page returns an empty table and
// the error; a failure after at least one successful page returns the rows
// collected so far and an error wrapping ErrPartialResult. Rows already
// fetched are never discarded.
func (f *Fetcher) FetchAll(ctx context.Context, req query.Request) (*table.Table, error) {
	start := time.Now()

	if f.config.Cache != nil {
		key := cache.KeyForRequest(f.config.BaseURL, req)
		entry, err := f.config.Cache.Get(ctx, key)
		if err != nil && err != cache.ErrCacheMiss {
			f.logger.Warn().Err(err).Msg("Cache get error")
		}
		if entry != nil {
			f.logger.Debug().
				Str("key", key.String()).
				Int("rows", len(entry.Rows)).
				Msg("Serving memoized result table")
			return entry.Table(), nil
		}
	}

	pageURL, err := req.URL(f.config.BaseURL)
	if err != nil {
		return table.New(), fmt.Errorf("build request url: %w", err)
	}

	tbl := table.New()
	pages := 0
	state := stateFetching

	for state == stateFetching {
		resp, err := f.client.Get(ctx, pageURL)
		if err != nil {
			// Retry already happened below us; this failure is terminal.
			f.logger.Error().
				Err(err).
				Int("pages_fetched", pages).
				Msg("Page fetch failed, aborting pagination")
			return tbl, f.abortError(pages, fmt.Errorf("fetch page %d: %w", pages+1, err))
		}

		body, readErr := io.ReadAll(resp.Body)
		resp.Body.Close()

		if resp.StatusCode >= 400 {
			errClass := client.ClassifyStatus(resp.StatusCode)
			f.logger.Error().
				Int("status", resp.StatusCode).
				Str("error_class", string(errClass)).
				Int("pages_fetched", pages).
				Msg("Error status mid-pagination, aborting")
			return tbl, f.abortError(pages, &client.APIError{
				StatusCode: resp.StatusCode,
				ErrorClass: errClass,
				Message:    resp.Status,
			})
		}

		if readErr != nil {
			return tbl, f.abortError(pages, fmt.Errorf("read page %d body: %w", pages+1, readErr))
		}

		if totalStr := resp.Header.Get("X-Total-Results"); totalStr != "" {
			if total, err := strconv.Atoi(totalStr); err == nil {
				tbl.TotalResults = total
			}
		}

		columns, rows := table.ParseTSV(string(body))
		tbl.Append(columns, rows)
		pages++
		pagesFetchedTotal.Inc()
		rowsFetchedTotal.Add(float64(len(rows)))

		next := NextLink(resp.Header)
		f.logger.Debug().
			Int("page", pages).
			Int("rows", len(rows)).
			Bool("has_next", next != "").
			Msg("Page fetched")

		if next == "" {
			state = stateDone
		} else {
			pageURL = next
		}
	}

	f.logger.Info().
		Int("pages", pages).
		Int("rows", tbl.Len()).
		Int("total_results", tbl.TotalResults).
		Dur("duration", time.Since(start)).
		Msg("Fetch complete")

	if f.config.Cache != nil {
		key := cache.KeyForRequest(f.config.BaseURL, req)
		entry := cache.NewEntry(tbl, f.config.CacheTTL)
		if err := f.config.Cache.Set(ctx, key, entry); err != nil {
			f.logger.Warn().Err(err).Msg("Failed to memoize result table")
		} else {
			f.logger.Debug().
				Str("key", key.String()).
				Dur("ttl", f.config.CacheTTL).
				Msg("Memoized result table")
		}
	}

	return tbl, nil
}

// abortError wraps a mid-pagination failure. Failures after at least one
// collected page carry ErrPartialResult so callers can tell the returned
// rows are incomplete.
func (f *Fetcher) abortError(pages int, err error) error {
	if pages == 0 {
		return err
	}
	partialResultsTotal.Inc()
	return fmt.Errorf("%w after %d pages: %w", ErrPartialResult, pages, err)
}

// NextLink extracts the next-page URL from the Link response header.
// Returns "" when the header is absent or carries no rel="next" link,
// which means pagination is exhausted.
func NextLink(headers http.Header) string {
	link := headers.Get("Link")
	if link == "" {
		return ""
	}
	match := nextLinkPattern.FindStringSubmatch(link)
	if match == nil {
		return ""
	}
	return match[1]
}
