package hook

import (
	"context"

	"github.com/kailas-cloud/searchsync/internal/domain/descriptor"
	"github.com/kailas-cloud/searchsync/internal/domain/field"
	"github.com/kailas-cloud/searchsync/internal/domain/record"
)

// Projector converts a record into an indexable document.
type Projector interface {
	Project(ctx context.Context, rec record.Record, spec field.Spec) (field.Document, error)
}

// Registry accepts descriptors attached at runtime.
type Registry interface {
	Register(d descriptor.Descriptor) (descriptor.Descriptor, error)
}

// ErrorSink receives hook failures. It must be safe for concurrent use.
type ErrorSink func(op string, rec record.Record, err error)
