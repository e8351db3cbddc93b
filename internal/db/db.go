package db

import (
	"context"
	"time"

	"github.com/kailas-cloud/searchsync/internal/domain/bulk"
	"github.com/kailas-cloud/searchsync/internal/domain/search/request"
	"github.com/kailas-cloud/searchsync/internal/domain/search/result"
)

// MatchAll is the engine-neutral query matching every document of an index.
const MatchAll = "*"

// Engine is the search index facade combining all sub-interfaces.
//
//nolint:interfacebloat // facade by design -- consumers use narrow sub-interfaces (ISP)
type Engine interface {
	Pinger
	Bulker
	Searcher
	IndexManager
	Close()
	WaitForReady(ctx context.Context, timeout time.Duration) error
}

// Pinger checks engine connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Bulker submits index and delete operations in one call.
// A transport failure is returned as error; item rejections are reported in the response.
type Bulker interface {
	Bulk(ctx context.Context, items []bulk.Item, opts bulk.Options) (bulk.Response, error)
}

// Searcher runs an opaque query against one index.
type Searcher interface {
	Search(ctx context.Context, req request.Request) (result.Page, error)
}

// IndexManager provides index administration.
type IndexManager interface {
	PutMapping(ctx context.Context, m Mapping) error
	Refresh(ctx context.Context, index string) error
	Flush(ctx context.Context, index string) error
	DeleteByQuery(ctx context.Context, index, query string) error
}
