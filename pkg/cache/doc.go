// Package cache provides time-bound memoization of assembled result tables
// with a Redis backend.
//
// Following a multi-page UniProt search to exhaustion is expensive, so
// complete tables are stored under a canonical request signature and served
// from Redis until the entry's TTL expires. The cache is an optional
// dependency injected into the pagination fetcher; the fetch algorithm is
// correct without it.
//
// Partial tables (aborted pagination) are never cached.
package cache
