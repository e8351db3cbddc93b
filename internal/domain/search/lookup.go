package search

import (
	"context"

	"github.com/kailas-cloud/searchsync/internal/domain/record"
	"github.com/kailas-cloud/searchsync/internal/domain/search/result"
)

// Lookup resolves a hit back into a live record. It returns domain.ErrNotFound
// when the record no longer exists and any other error on failure.
// info is the opaque per-call value from the search options.
type Lookup interface {
	Resolve(ctx context.Context, hit result.Hit, info any) (record.Record, error)
}

// LookupFunc adapts a plain function to Lookup.
type LookupFunc func(ctx context.Context, hit result.Hit, info any) (record.Record, error)

// Resolve calls f.
func (f LookupFunc) Resolve(ctx context.Context, hit result.Hit, info any) (record.Record, error) {
	return f(ctx, hit, info)
}
