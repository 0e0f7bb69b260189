// Package testutil provides testing utilities for the UniProt client.
package testutil

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
)

// PageFixture is one scripted page of TSV search results.
type PageFixture struct {
	// Body is the tab-separated page body including the header row.
	Body string
}

// MockUniProt is a configurable mock UniProt search server. Pages are
// scripted in order and chained with Link headers; pages are addressed by
// a cursor query parameter, mirroring the real API's opaque next links.
type MockUniProt struct {
	server *httptest.Server

	mu           sync.RWMutex
	pages        []PageFixture
	totalResults int
	failures     map[int][]int // page index -> queued statuses served before the page
	handlers     map[string]http.HandlerFunc
	requestCount int
	pageRequests map[int]int
}

// NewMockUniProt creates a new mock search server.
func NewMockUniProt() *MockUniProt {
	mock := &MockUniProt{
		failures:     make(map[int][]int),
		handlers:     make(map[string]http.HandlerFunc),
		pageRequests: make(map[int]int),
	}

	mock.server = httptest.NewServer(http.HandlerFunc(mock.handle))

	return mock
}

// URL returns the mock server URL.
func (m *MockUniProt) URL() string {
	return m.server.URL
}

// SearchURL returns the mock search endpoint, usable as a fetcher base URL.
func (m *MockUniProt) SearchURL() string {
	return m.server.URL + "/uniprotkb/search"
}

// Close shuts down the mock server.
func (m *MockUniProt) Close() {
	m.server.Close()
}

// Reset clears scripted pages, failures and counters.
func (m *MockUniProt) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pages = nil
	m.totalResults = 0
	m.failures = make(map[int][]int)
	m.requestCount = 0
	m.pageRequests = make(map[int]int)
}

// SetPages scripts the result pages served in order. totalResults is
// reported via the X-Total-Results header on every page.
func (m *MockUniProt) SetPages(totalResults int, pages ...PageFixture) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.totalResults = totalResults
	m.pages = pages
}

// FailPage queues count failure responses with the given status before
// page (0-based) is served. Used to exercise retry behavior.
func (m *MockUniProt) FailPage(page, statusCode, count int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := 0; i < count; i++ {
		m.failures[page] = append(m.failures[page], statusCode)
	}
}

// SetHandler sets a custom handler for a specific path, bypassing the
// scripted pages.
func (m *MockUniProt) SetHandler(path string, handler http.HandlerFunc) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handlers[path] = handler
}

// RequestCount returns the total number of requests served.
func (m *MockUniProt) RequestCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.requestCount
}

// PageRequests returns how many requests hit the given page (0-based),
// including failed attempts.
func (m *MockUniProt) PageRequests(page int) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.pageRequests[page]
}

func (m *MockUniProt) handle(w http.ResponseWriter, r *http.Request) {
	m.mu.Lock()
	m.requestCount++
	handler, custom := m.handlers[r.URL.Path]
	m.mu.Unlock()

	if custom {
		handler(w, r)
		return
	}

	page := 0
	if cursor := r.URL.Query().Get("cursor"); cursor != "" {
		if n, err := strconv.Atoi(cursor); err == nil {
			page = n
		}
	}

	m.mu.Lock()
	m.pageRequests[page]++
	if queued := m.failures[page]; len(queued) > 0 {
		status := queued[0]
		m.failures[page] = queued[1:]
		m.mu.Unlock()
		http.Error(w, http.StatusText(status), status)
		return
	}
	pages := m.pages
	total := m.totalResults
	m.mu.Unlock()

	if page >= len(pages) {
		http.Error(w, "no such page", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "text/plain; format=tsv")
	w.Header().Set("X-Total-Results", strconv.Itoa(total))

	if page < len(pages)-1 {
		next := m.nextPageURL(r, page+1)
		w.Header().Set("Link", fmt.Sprintf(`<%s>; rel="next"`, next))
	}

	w.WriteHeader(http.StatusOK)
	w.Write([]byte(pages[page].Body))
}

// nextPageURL builds the absolute URL of the next page, preserving the
// original query parameters the way the real API does.
func (m *MockUniProt) nextPageURL(r *http.Request, page int) string {
	values := r.URL.Query()
	values.Set("cursor", strconv.Itoa(page))
	return m.server.URL + r.URL.Path + "?" + values.Encode()
}

// TSVPage builds a TSV page body from a header line and data lines.
func TSVPage(header string, rows ...string) string {
	lines := append([]string{header}, rows...)
	return strings.Join(lines, "\n") + "\n"
}
