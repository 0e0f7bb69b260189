// Package pagination follows cursor-style pagination of UniProtKB search
// results and assembles all pages into a single table.
//
// UniProt chains pages with a Link response header of the form
// `<URL>; rel="next"`; the absence of a matching header means the result
// set is exhausted. Pages are inherently sequential because each page URL
// comes from the previous response, so the fetcher issues one request at a
// time.
//
// Example usage:
//
//	fetcher := pagination.NewFetcher(apiClient, pagination.DefaultConfig())
//	tbl, err := fetcher.FetchAll(ctx, query.New("insulin"))
//
// The fetcher:
//   - Builds the initial URL from the request parameters
//   - Follows next links until exhausted
//   - Parses each TSV page and appends rows in arrival order
//   - Returns accumulated rows with ErrPartialResult when a later page fails
//   - Optionally memoizes complete tables in a TTL cache
package pagination
