// Package query builds and parses UniProtKB search requests.
package query

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// Defaults for UniProtKB search requests.
const (
	// DefaultBaseURL is the public UniProtKB search endpoint.
	DefaultBaseURL = "https://rest.uniprot.org/uniprotkb/search"

	// DefaultFormat is the response serialization (tab-separated text).
	DefaultFormat = "tsv"

	// DefaultSize is the page size requested from the API.
	DefaultSize = 500
)

// Request describes a single UniProtKB search. It is immutable once
// constructed; build one with New and functional options.
type Request struct {
	query  string
	format string
	size   int
	extra  map[string]string
}

// Option configures a Request during construction.
type Option func(*Request)

// WithFormat sets the response serialization (e.g. "tsv", "json").
func WithFormat(format string) Option {
	return func(r *Request) {
		r.format = format
	}
}

// WithSize sets the page size.
func WithSize(size int) Option {
	return func(r *Request) {
		r.size = size
	}
}

// WithParam adds a passthrough query parameter (e.g. "fields").
// The reserved parameters query, format and size cannot be overridden.
func WithParam(key, value string) Option {
	return func(r *Request) {
		switch key {
		case "query", "format", "size":
			return
		}
		r.extra[key] = value
	}
}

// WithFields sets the fields parameter to select output columns.
// Names are UniProtKB API field names (see Fields for the label mapping).
func WithFields(names ...string) Option {
	return func(r *Request) {
		if len(names) > 0 {
			r.extra["fields"] = strings.Join(names, ",")
		}
	}
}

// New creates a Request for the given search expression.
func New(query string, opts ...Option) Request {
	r := Request{
		query:  query,
		format: DefaultFormat,
		size:   DefaultSize,
		extra:  make(map[string]string),
	}
	for _, opt := range opts {
		opt(&r)
	}
	return r
}

// Query returns the search expression.
func (r Request) Query() string { return r.query }

// Format returns the output serialization.
func (r Request) Format() string { return r.format }

// Size returns the page size.
func (r Request) Size() int { return r.size }

// Extra returns a copy of the passthrough parameters.
func (r Request) Extra() map[string]string {
	extra := make(map[string]string, len(r.extra))
	for k, v := range r.extra {
		extra[k] = v
	}
	return extra
}

// Values returns all request parameters as url.Values.
func (r Request) Values() url.Values {
	v := url.Values{}
	v.Set("query", r.query)
	v.Set("format", r.format)
	v.Set("size", strconv.Itoa(r.size))
	for key, value := range r.extra {
		v.Set(key, value)
	}
	return v
}

// URL builds the initial request URL against the given base URL.
// Parameters are percent-encoded and sorted, so the result is deterministic.
func (r Request) URL(base string) (string, error) {
	if base == "" {
		base = DefaultBaseURL
	}
	u, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("parse base url: %w", err)
	}
	u.RawQuery = r.Values().Encode()
	return u.String(), nil
}

// ParseURL reconstructs a Request from a URL built by Request.URL.
// Query, format and size round-trip exactly; all other parameters are
// restored as passthrough parameters.
func ParseURL(raw string) (Request, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return Request{}, fmt.Errorf("parse request url: %w", err)
	}

	values := u.Query()
	if !values.Has("query") {
		return Request{}, fmt.Errorf("missing query parameter")
	}

	r := Request{
		query:  values.Get("query"),
		format: DefaultFormat,
		size:   DefaultSize,
		extra:  make(map[string]string),
	}

	if format := values.Get("format"); format != "" {
		r.format = format
	}
	if sizeStr := values.Get("size"); sizeStr != "" {
		size, err := strconv.Atoi(sizeStr)
		if err != nil {
			return Request{}, fmt.Errorf("parse size parameter: %w", err)
		}
		r.size = size
	}

	for key := range values {
		switch key {
		case "query", "format", "size":
			continue
		}
		r.extra[key] = values.Get(key)
	}

	return r, nil
}
