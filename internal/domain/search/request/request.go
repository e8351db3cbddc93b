package request

import (
	"fmt"
	"slices"
)

// Search parameter limits.
const (
	// MaxQueryLength is the maximum allowed query body length.
	MaxQueryLength = 4096
	DefaultFrom    = 0
	DefaultSize    = 10
	MaxSize        = 1000
)

// Options are the caller-facing search parameters. Zero values mean "use the default".
type Options struct {
	Index string
	Types []string
	From  int
	Size  int
	// Info is passed through untouched to every lookup strategy invocation.
	Info any
}

// Request is a validated search request with defaults applied.
type Request struct {
	index string
	types []string
	query string
	from  int
	size  int
	info  any
}

// New merges opts with the default index and pagination defaults.
// The query body is opaque: it is passed to the engine as-is.
func New(query string, opts Options, defaultIndex string) (Request, error) {
	if len(query) > MaxQueryLength {
		return Request{}, fmt.Errorf("query too long (max %d chars)", MaxQueryLength)
	}
	index := opts.Index
	if index == "" {
		index = defaultIndex
	}
	if index == "" {
		return Request{}, fmt.Errorf("index is required")
	}
	from := opts.From
	if from < 0 {
		return Request{}, fmt.Errorf("from must not be negative")
	}
	size := opts.Size
	if size <= 0 {
		size = DefaultSize
	}
	if size > MaxSize {
		size = MaxSize
	}
	return Request{
		index: index,
		types: slices.Clone(opts.Types),
		query: query,
		from:  from,
		size:  size,
		info:  opts.Info,
	}, nil
}

// ClampSize lowers the page size to limit when limit is positive and smaller.
func (r Request) ClampSize(limit int) Request {
	if limit > 0 && r.size > limit {
		r.size = limit
	}
	return r
}

// Index returns the index name to query.
func (r Request) Index() string { return r.index }

// Types returns the type filter; empty means every type in the index.
func (r Request) Types() []string { return r.types }

// Query returns the opaque query body.
func (r Request) Query() string { return r.query }

// From returns the pagination offset.
func (r Request) From() int { return r.from }

// Size returns the page size.
func (r Request) Size() int { return r.size }

// Info returns the per-call context passed to lookups.
func (r Request) Info() any { return r.info }
