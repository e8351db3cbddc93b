package search

import (
	"context"

	"github.com/kailas-cloud/searchsync/internal/domain/descriptor"
	"github.com/kailas-cloud/searchsync/internal/domain/record"
	"github.com/kailas-cloud/searchsync/internal/domain/search/request"
	"github.com/kailas-cloud/searchsync/internal/domain/search/result"
)

// Engine runs queries against the search index.
type Engine interface {
	Search(ctx context.Context, req request.Request) (result.Page, error)
}

// Store reads canonical records for the default lookup.
type Store interface {
	FindOne(ctx context.Context, typ, id string) (record.Record, error)
}

// Registry resolves the descriptor of a hit's type.
type Registry interface {
	Get(name string) (descriptor.Descriptor, bool)
	DefaultIndex() string
}
