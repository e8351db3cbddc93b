package bulk

import (
	"context"

	dombulk "github.com/kailas-cloud/searchsync/internal/domain/bulk"
)

// Engine submits bulk operations to the search index.
type Engine interface {
	Bulk(ctx context.Context, items []dombulk.Item, opts dombulk.Options) (dombulk.Response, error)
}
