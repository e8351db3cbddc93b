package bleve

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/keyword"
	"github.com/blevesearch/bleve/v2/mapping"

	"github.com/kailas-cloud/searchsync/internal/db"
)

// Compile-time check: Engine implements db.Engine.
var _ db.Engine = (*Engine)(nil)

// ErrClosed is returned by every call after Close.
var ErrClosed = errors.New("bleve: engine closed")

// Config holds the on-disk location of the indexes. An empty Path keeps every
// index in memory.
type Config struct {
	Path string
}

// Engine implements db.Engine on in-process bleve indexes, one per index name.
// Indexes open lazily; mappings put before the first open shape the index.
type Engine struct {
	cfg Config

	mu       sync.Mutex
	closed   bool
	indexes  map[string]bleve.Index
	mappings map[string]*mapping.IndexMappingImpl
}

// NewEngine creates an engine. No index is opened until it is used.
func NewEngine(cfg Config) *Engine {
	return &Engine{
		cfg:      cfg,
		indexes:  make(map[string]bleve.Index),
		mappings: make(map[string]*mapping.IndexMappingImpl),
	}
}

// Ping reports whether the engine is still open.
func (e *Engine) Ping(_ context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return ErrClosed
	}
	return nil
}

// WaitForReady returns immediately: an in-process engine is ready once created.
func (e *Engine) WaitForReady(ctx context.Context, _ time.Duration) error {
	return e.Ping(ctx)
}

// Close closes every open index.
func (e *Engine) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	for name, idx := range e.indexes {
		_ = idx.Close()
		delete(e.indexes, name)
	}
	e.closed = true
}

// Refresh is a no-op: a completed batch is visible to the next search.
func (e *Engine) Refresh(ctx context.Context, _ string) error { return e.Ping(ctx) }

// Flush is a no-op: bleve persists batches on its own schedule.
func (e *Engine) Flush(ctx context.Context, _ string) error { return e.Ping(ctx) }

// PutMapping registers the document mapping of one type. Bleve mappings are fixed
// when an index is created, so a type first mapped after its index opened is rejected.
func (e *Engine) PutMapping(_ context.Context, m db.Mapping) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return ErrClosed
	}

	im := e.mappingFor(m.Index)
	if _, ok := im.TypeMapping[m.Type]; ok {
		return nil
	}
	if _, open := e.indexes[m.Index]; open {
		return &db.Error{
			Op:  db.OpPutMapping,
			Err: fmt.Errorf("index %s is already open, type %s must be mapped before the first write", m.Index, m.Type),
		}
	}
	im.AddDocumentMapping(m.Type, documentMapping(m))
	return nil
}

// index returns the open index for name, creating or opening it on first use.
func (e *Engine) index(name string) (bleve.Index, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return nil, ErrClosed
	}
	if idx, ok := e.indexes[name]; ok {
		return idx, nil
	}

	idx, err := e.open(name)
	if err != nil {
		return nil, &db.Error{Op: db.OpOpen, Err: fmt.Errorf("index %s: %w", name, err)}
	}
	e.indexes[name] = idx
	return idx, nil
}

func (e *Engine) open(name string) (bleve.Index, error) {
	im := e.mappingFor(name)
	if e.cfg.Path == "" {
		return bleve.NewMemOnly(im)
	}
	path := filepath.Join(e.cfg.Path, name+".bleve")
	idx, err := bleve.Open(path)
	if errors.Is(err, bleve.ErrorIndexPathDoesNotExist) {
		return bleve.New(path, im)
	}
	return idx, err
}

// mappingFor returns the pending index mapping of name. Callers hold e.mu.
func (e *Engine) mappingFor(name string) *mapping.IndexMappingImpl {
	if im, ok := e.mappings[name]; ok {
		return im
	}
	im := bleve.NewIndexMapping()
	im.TypeField = typeField
	im.DefaultMapping.AddFieldMappingsAt(typeField, keywordField())
	e.mappings[name] = im
	return im
}

func documentMapping(m db.Mapping) *mapping.DocumentMapping {
	dm := bleve.NewDocumentMapping()
	for _, f := range m.Fields {
		if !isPlainName(f.Name) {
			// Dotted keys stay dynamic: bleve would read them as nested paths.
			continue
		}
		switch f.Kind {
		case db.FieldKeyword:
			dm.AddFieldMappingsAt(f.Name, keywordField())
		case db.FieldText:
			dm.AddFieldMappingsAt(f.Name, bleve.NewTextFieldMapping())
		case db.FieldGeoPoint:
			dm.AddFieldMappingsAt(f.Name, bleve.NewGeoPointFieldMapping())
		}
	}
	return dm
}

func keywordField() *mapping.FieldMapping {
	fm := bleve.NewTextFieldMapping()
	fm.Analyzer = keyword.Name
	return fm
}

func isPlainName(s string) bool {
	for _, r := range s {
		if r == '.' {
			return false
		}
	}
	return s != ""
}
