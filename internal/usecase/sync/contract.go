package sync

import (
	"context"

	"github.com/kailas-cloud/searchsync/internal/domain/descriptor"
	"github.com/kailas-cloud/searchsync/internal/domain/field"
	"github.com/kailas-cloud/searchsync/internal/domain/record"
)

// Store streams every record of a type from the primary store.
type Store interface {
	Stream(ctx context.Context, typ string) (record.Stream, error)
}

// Projector converts a record into an indexable document.
type Projector interface {
	Project(ctx context.Context, rec record.Record, spec field.Spec) (field.Document, error)
}

// Registry resolves type descriptors.
type Registry interface {
	Require(name string) (descriptor.Descriptor, error)
	All() []descriptor.Descriptor
}
