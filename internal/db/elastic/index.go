package elastic

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/kailas-cloud/searchsync/internal/db"
)

// PutMapping creates the index with the type's properties, or merges them into
// the existing mapping.
func (s *Store) PutMapping(ctx context.Context, m db.Mapping) error {
	props := properties(m)

	exists, err := s.indexExists(ctx, m.Index)
	if err != nil {
		return err
	}
	if !exists {
		body, err := json.Marshal(map[string]any{"mappings": map[string]any{"properties": props}})
		if err != nil {
			return fmt.Errorf("marshal mapping: %w", err)
		}
		res, err := s.es.Indices.Create(m.Index,
			s.es.Indices.Create.WithContext(ctx),
			s.es.Indices.Create.WithBody(bytes.NewReader(body)),
		)
		if err := checkResponse(db.OpCreateIndex, res, err); err != nil {
			return err
		}
		discard(res)
		return nil
	}

	body, err := json.Marshal(map[string]any{"properties": props})
	if err != nil {
		return fmt.Errorf("marshal mapping: %w", err)
	}
	res, err := s.es.Indices.PutMapping([]string{m.Index}, bytes.NewReader(body),
		s.es.Indices.PutMapping.WithContext(ctx),
	)
	if err := checkResponse(db.OpPutMapping, res, err); err != nil {
		return err
	}
	discard(res)
	return nil
}

// Refresh makes recent writes of index visible to search.
func (s *Store) Refresh(ctx context.Context, index string) error {
	res, err := s.es.Indices.Refresh(
		s.es.Indices.Refresh.WithContext(ctx),
		s.es.Indices.Refresh.WithIndex(index),
	)
	if err := checkResponse(db.OpRefresh, res, err); err != nil {
		return err
	}
	discard(res)
	return nil
}

// Flush persists the index's in-memory operations to disk.
func (s *Store) Flush(ctx context.Context, index string) error {
	res, err := s.es.Indices.Flush(
		s.es.Indices.Flush.WithContext(ctx),
		s.es.Indices.Flush.WithIndex(index),
	)
	if err := checkResponse(db.OpFlush, res, err); err != nil {
		return err
	}
	discard(res)
	return nil
}

func (s *Store) indexExists(ctx context.Context, index string) (bool, error) {
	res, err := s.es.Indices.Exists([]string{index}, s.es.Indices.Exists.WithContext(ctx))
	if err != nil {
		return false, &db.Error{Op: db.OpIndexInfo, Err: err}
	}
	defer discard(res)
	switch res.StatusCode {
	case http.StatusOK:
		return true, nil
	case http.StatusNotFound:
		return false, nil
	default:
		return false, &db.Error{Op: db.OpIndexInfo, Err: fmt.Errorf("status %s", res.Status())}
	}
}

func properties(m db.Mapping) map[string]any {
	props := make(map[string]any, len(m.Fields))
	for _, f := range m.Fields {
		switch f.Kind {
		case db.FieldKeyword:
			props[f.Name] = map[string]any{"type": "keyword"}
		case db.FieldText:
			props[f.Name] = map[string]any{"type": "text"}
		case db.FieldGeoPoint:
			props[f.Name] = map[string]any{"type": "geo_point"}
		}
	}
	return props
}
