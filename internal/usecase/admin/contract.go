package admin

import (
	"github.com/kailas-cloud/searchsync/internal/db"
	"github.com/kailas-cloud/searchsync/internal/domain/descriptor"
)

// Engine is the administrative surface of the search index.
type Engine interface {
	db.Pinger
	db.IndexManager
}

// Registry resolves type descriptors.
type Registry interface {
	Require(name string) (descriptor.Descriptor, error)
	All() []descriptor.Descriptor
	Indexes() []string
}
