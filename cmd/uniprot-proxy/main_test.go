package main

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/protsearch/uniprot-client/internal/testutil"
	"github.com/protsearch/uniprot-client/pkg/client"
	"github.com/protsearch/uniprot-client/pkg/pagination"
)

func newTestFetcher(t *testing.T, mock *testutil.MockUniProt) *pagination.Fetcher {
	t.Helper()

	cfg := client.DefaultConfig("uniprot-proxy-test/1.0")
	cfg.Retry.MaxAttempts = 2
	cfg.Retry.BackoffFactor = 0.001

	apiClient, err := client.New(cfg)
	if err != nil {
		t.Fatalf("Failed to create client: %v", err)
	}

	return pagination.NewFetcher(apiClient, pagination.Config{
		BaseURL: mock.SearchURL(),
	})
}

func TestHealthEndpoint(t *testing.T) {
	req := httptest.NewRequest("GET", "/health", nil)
	w := httptest.NewRecorder()

	healthHandler(w, req)

	resp := w.Result()
	body, _ := io.ReadAll(resp.Body)

	if resp.StatusCode != http.StatusOK {
		t.Errorf("Expected status 200, got %d", resp.StatusCode)
	}

	if string(body) != "OK" {
		t.Errorf("Expected body 'OK', got %s", string(body))
	}
}

func TestReadyEndpoint_NoRedis(t *testing.T) {
	handler := readyHandler(nil)

	req := httptest.NewRequest("GET", "/ready", nil)
	w := httptest.NewRecorder()

	handler(w, req)

	resp := w.Result()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("Expected status 200 without Redis configured, got %d", resp.StatusCode)
	}
}

func TestSearchHandler(t *testing.T) {
	mock := testutil.NewMockUniProt()
	defer mock.Close()

	mock.SetPages(3,
		testutil.PageFixture{Body: testutil.TSVPage(
			"Entry\tProtein names",
			"P01325\tInsulin-1",
			"P01326\tInsulin-2",
		)},
		testutil.PageFixture{Body: testutil.TSVPage(
			"Entry\tProtein names",
			"P01327\tInsulin-like",
		)},
	)

	handler := searchHandler(newTestFetcher(t, mock))

	req := httptest.NewRequest("GET", "/search?query=insulin&size=2", nil)
	w := httptest.NewRecorder()

	handler(w, req)

	resp := w.Result()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", resp.StatusCode)
	}

	var result searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}

	if result.Rows != 3 {
		t.Errorf("Rows = %d, want 3", result.Rows)
	}
	if result.TotalResults != 3 {
		t.Errorf("TotalResults = %d, want 3", result.TotalResults)
	}
	if result.Partial {
		t.Error("Partial should be false for a completed fetch")
	}
	if mock.RequestCount() != 2 {
		t.Errorf("Request count = %d, want 2", mock.RequestCount())
	}
}

func TestSearchHandler_MissingQuery(t *testing.T) {
	mock := testutil.NewMockUniProt()
	defer mock.Close()

	handler := searchHandler(newTestFetcher(t, mock))

	req := httptest.NewRequest("GET", "/search", nil)
	w := httptest.NewRecorder()

	handler(w, req)

	if w.Result().StatusCode != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", w.Result().StatusCode)
	}
}

func TestSearchHandler_PartialResult(t *testing.T) {
	mock := testutil.NewMockUniProt()
	defer mock.Close()

	mock.SetPages(3,
		testutil.PageFixture{Body: testutil.TSVPage(
			"Entry\tProtein names",
			"P01325\tInsulin-1",
			"P01326\tInsulin-2",
		)},
		testutil.PageFixture{Body: testutil.TSVPage(
			"Entry\tProtein names",
			"P01327\tInsulin-like",
		)},
	)
	mock.FailPage(1, http.StatusBadRequest, 1)

	handler := searchHandler(newTestFetcher(t, mock))

	req := httptest.NewRequest("GET", "/search?query=insulin&size=2", nil)
	w := httptest.NewRecorder()

	handler(w, req)

	resp := w.Result()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Expected status 200 with partial data, got %d", resp.StatusCode)
	}
	if resp.Header.Get("X-Partial-Result") != "true" {
		t.Error("Expected X-Partial-Result header on partial response")
	}

	var result searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if !result.Partial {
		t.Error("Partial should be true")
	}
	if result.Rows != 2 {
		t.Errorf("Rows = %d, want 2 (page 1 only)", result.Rows)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	req := httptest.NewRequest("GET", "/metrics", nil)
	w := httptest.NewRecorder()

	handler := promhttp.Handler()
	handler.ServeHTTP(w, req)

	resp := w.Result()
	body, _ := io.ReadAll(resp.Body)

	if resp.StatusCode != http.StatusOK {
		t.Errorf("Expected status 200, got %d", resp.StatusCode)
	}

	bodyStr := string(body)
	if !strings.Contains(bodyStr, "# HELP") || !strings.Contains(bodyStr, "# TYPE") {
		t.Error("Expected Prometheus format metrics output")
	}
}
