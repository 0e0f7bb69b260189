package cache

import (
	"fmt"
	"net/url"
	"sort"
	"strings"

	"github.com/protsearch/uniprot-client/pkg/query"
)

// Key identifies a memoized result table: the endpoint plus the full
// request parameter set.
type Key struct {
	// BaseURL is the search endpoint the request was issued against.
	BaseURL string

	// Params are the request query parameters.
	Params url.Values
}

// KeyForRequest builds the cache key for a request against a base URL.
func KeyForRequest(base string, req query.Request) Key {
	if base == "" {
		base = query.DefaultBaseURL
	}
	return Key{
		BaseURL: base,
		Params:  req.Values(),
	}
}

// String generates a deterministic cache key string.
// Format: uniprot:host/path:param1=val1:param2=val2
//
// Example:
//
//	uniprot:rest.uniprot.org/uniprotkb/search:format=tsv:query=insulin:size=500
func (k Key) String() string {
	parts := []string{"uniprot"}

	endpoint := k.BaseURL
	if u, err := url.Parse(k.BaseURL); err == nil && u.Host != "" {
		endpoint = u.Host + u.Path
	}
	endpoint = strings.Trim(endpoint, "/")
	if endpoint != "" {
		parts = append(parts, endpoint)
	}

	// Sorted for determinism
	if len(k.Params) > 0 {
		keys := make([]string, 0, len(k.Params))
		for key := range k.Params {
			keys = append(keys, key)
		}
		sort.Strings(keys)

		for _, key := range keys {
			parts = append(parts, fmt.Sprintf("%s=%s", key, k.Params.Get(key)))
		}
	}

	return strings.Join(parts, ":")
}
