package cache

import (
	"time"

	"github.com/protsearch/uniprot-client/pkg/table"
)

// Entry is a cached result table.
type Entry struct {
	// Columns of the memoized table, in order.
	Columns []string `json:"columns"`

	// Rows of the memoized table, in order.
	Rows []table.Row `json:"rows"`

	// TotalResults is the server-reported total match count.
	TotalResults int `json:"total_results"`

	// CachedAt is when the table was stored.
	CachedAt time.Time `json:"cached_at"`

	// Expires is when the entry becomes stale.
	Expires time.Time `json:"expires"`
}

// NewEntry creates a cache entry for a complete table with the given TTL.
func NewEntry(t *table.Table, ttl time.Duration) *Entry {
	now := time.Now()
	return &Entry{
		Columns:      t.Columns,
		Rows:         t.Rows,
		TotalResults: t.TotalResults,
		CachedAt:     now,
		Expires:      now.Add(ttl),
	}
}

// IsExpired returns true if the cache entry has expired.
func (e *Entry) IsExpired() bool {
	return time.Now().After(e.Expires)
}

// TTL returns the time until expiration.
// Returns 0 if already expired.
func (e *Entry) TTL() time.Duration {
	ttl := time.Until(e.Expires)
	if ttl < 0 {
		return 0
	}
	return ttl
}

// Table reconstructs the memoized result table.
func (e *Entry) Table() *table.Table {
	return &table.Table{
		Columns:      e.Columns,
		Rows:         e.Rows,
		TotalResults: e.TotalResults,
	}
}
