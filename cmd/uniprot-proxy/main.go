package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/protsearch/uniprot-client/pkg/cache"
	"github.com/protsearch/uniprot-client/pkg/client"
	"github.com/protsearch/uniprot-client/pkg/logging"
	"github.com/protsearch/uniprot-client/pkg/pagination"
	"github.com/protsearch/uniprot-client/pkg/query"
	"github.com/protsearch/uniprot-client/pkg/ratelimit"
	"github.com/protsearch/uniprot-client/pkg/table"
)

func main() {
	// Configuration from environment
	redisURL := getEnv("REDIS_URL", "")
	port := getEnv("PORT", "8080")
	userAgent := getEnv("USER_AGENT", "uniprot-proxy/0.1.0")
	baseURL := getEnv("UNIPROT_BASE_URL", query.DefaultBaseURL)

	logging.Setup(logging.DefaultConfig())

	// Redis is optional; without it the proxy runs uncached.
	var redisClient *redis.Client
	var cacheManager *cache.Manager
	if redisURL != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr: redisURL,
		})

		ctx := context.Background()
		if err := redisClient.Ping(ctx).Err(); err != nil {
			log.Fatalf("Failed to connect to Redis: %v", err)
		}
		log.Printf("Connected to Redis at %s", redisURL)

		cacheManager = cache.NewManager(redisClient)
	} else {
		log.Printf("REDIS_URL not set, result caching disabled")
	}

	cfg := client.DefaultConfig(userAgent)
	if redisClient != nil {
		cfg.Limiter = ratelimit.NewTracker(redisClient, logging.NewLogger("ratelimit"))
	}

	apiClient, err := client.New(cfg)
	if err != nil {
		log.Fatalf("Failed to create UniProt client: %v", err)
	}

	fetcher := pagination.NewFetcher(apiClient, pagination.Config{
		BaseURL: baseURL,
		Cache:   cacheManager,
	})

	// HTTP Server
	http.HandleFunc("/health", healthHandler)
	http.HandleFunc("/ready", readyHandler(redisClient))
	http.Handle("/metrics", promhttp.Handler())
	http.HandleFunc("/search", searchHandler(fetcher))

	addr := ":" + port
	log.Printf("Starting UniProt proxy server on %s", addr)
	log.Printf("Upstream: %s", baseURL)

	if err := http.ListenAndServe(addr, nil); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	fmt.Fprintf(w, "OK")
}

func readyHandler(redisClient *redis.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if redisClient != nil {
			if err := redisClient.Ping(r.Context()).Err(); err != nil {
				http.Error(w, fmt.Sprintf("redis unavailable: %v", err), http.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, "OK")
	}
}

// searchResponse is the JSON rendering of an assembled result table.
type searchResponse struct {
	TotalResults int         `json:"total_results"`
	Rows         int         `json:"rows"`
	Partial      bool        `json:"partial"`
	Columns      []string    `json:"columns"`
	Results      []table.Row `json:"results"`
}

func searchHandler(fetcher *pagination.Fetcher) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query().Get("query")
		if q == "" {
			http.Error(w, "missing query parameter", http.StatusBadRequest)
			return
		}

		opts := []query.Option{}
		if fields := r.URL.Query().Get("fields"); fields != "" {
			opts = append(opts, query.WithParam("fields", fields))
		}
		if sizeStr := r.URL.Query().Get("size"); sizeStr != "" {
			size, err := strconv.Atoi(sizeStr)
			if err != nil || size <= 0 {
				http.Error(w, "invalid size parameter", http.StatusBadRequest)
				return
			}
			opts = append(opts, query.WithSize(size))
		}

		req := query.New(q, opts...)

		ctx, cancel := context.WithTimeout(r.Context(), 60*time.Second)
		defer cancel()

		tbl, err := fetcher.FetchAll(ctx, req)
		partial := errors.Is(err, pagination.ErrPartialResult)
		if err != nil && !partial {
			http.Error(w, fmt.Sprintf("UniProt request failed: %v", err), http.StatusBadGateway)
			return
		}

		resp := searchResponse{
			TotalResults: tbl.TotalResults,
			Rows:         tbl.Len(),
			Partial:      partial,
			Columns:      tbl.Columns,
			Results:      tbl.Rows,
		}

		w.Header().Set("Content-Type", "application/json")
		if partial {
			w.Header().Set("X-Partial-Result", "true")
		}
		if err := json.NewEncoder(w).Encode(resp); err != nil {
			log.Printf("Failed to write response: %v", err)
		}
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
