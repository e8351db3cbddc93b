package chi

import (
	"context"

	"github.com/kailas-cloud/searchsync/internal/domain/descriptor"
	"github.com/kailas-cloud/searchsync/internal/domain/record"
	"github.com/kailas-cloud/searchsync/internal/domain/search/request"
	syncuc "github.com/kailas-cloud/searchsync/internal/usecase/sync"
)

// Searcher runs queries and resolves hits into records.
type Searcher interface {
	Search(ctx context.Context, opts request.Options, query string) ([]record.Record, error)
}

// Synchronizer runs full synchronizations.
type Synchronizer interface {
	SynchronizeType(ctx context.Context, typeName string) (syncuc.Result, error)
	SynchronizeAll(ctx context.Context) ([]syncuc.Result, error)
}

// RecordStore is the primary store. Its mutations fire the index hooks.
type RecordStore interface {
	FindOne(ctx context.Context, typ, id string) (record.Record, error)
	Save(ctx context.Context, rec record.Record) error
	Remove(ctx context.Context, typ, id string) error
}

// Administrator runs index administration.
type Administrator interface {
	PutMapping(ctx context.Context, typeName string) error
	PutMappings(ctx context.Context) error
	Refresh(ctx context.Context, index string) error
	Flush(ctx context.Context, index string) error
	Truncate(ctx context.Context, index string) error
}

// Registry resolves type descriptors.
type Registry interface {
	Require(name string) (descriptor.Descriptor, error)
}
