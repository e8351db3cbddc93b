package redis

import (
	"context"
	"errors"
	"strconv"

	"github.com/kailas-cloud/searchsync/internal/db"
)

// deletePageSize bounds the number of keys removed per DEL during DeleteByQuery.
const deletePageSize = 500

// PutMapping creates the FT index of m.Index or adds the missing fields to it.
// Fields already present in the schema are left untouched.
func (s *Store) PutMapping(ctx context.Context, m db.Mapping) error {
	sc, err := s.schemaFor(m)
	if err != nil {
		return err
	}

	exists, err := s.indexExists(ctx, sc.Name)
	if err != nil {
		return err
	}
	if !exists {
		err = s.createIndex(ctx, sc)
		if err == nil {
			return nil
		}
		if !errors.Is(err, db.ErrIndexExists) {
			return err
		}
	}
	return s.alterIndex(ctx, sc)
}

// Refresh is a no-op: Redis indexes JSON documents synchronously on write.
func (s *Store) Refresh(_ context.Context, _ string) error { return nil }

// Flush is a no-op: persistence is governed by the server's own configuration.
func (s *Store) Flush(_ context.Context, _ string) error { return nil }

// DeleteByQuery removes every document of index matching query, page by page.
// An index that does not exist yet has nothing to delete.
func (s *Store) DeleteByQuery(ctx context.Context, index, query string) error {
	q := buildQuery(query, nil)
	name := s.indexName(index)

	for {
		cmd := s.b().Arbitrary("FT.SEARCH").
			Args(name, q, "NOCONTENT", "LIMIT", "0", strconv.Itoa(deletePageSize), "DIALECT", "2").
			Build()
		raw, err := s.do(ctx, cmd).ToArray()
		if err != nil {
			if isUnknownIndex(err) {
				return nil
			}
			return &db.Error{Op: db.OpSearch, Err: err}
		}

		keys := make([]string, 0, len(raw))
		for i := 1; i < len(raw); i++ {
			if key, err := raw[i].ToString(); err == nil {
				keys = append(keys, key)
			}
		}
		if len(keys) == 0 {
			return nil
		}

		del := s.b().Del().Key(keys...).Build()
		n, err := s.do(ctx, del).AsInt64()
		if err != nil {
			return &db.Error{Op: db.OpDel, Err: err}
		}
		if n == 0 {
			return nil
		}
	}
}

// createIndex runs FT.CREATE for sc.
func (s *Store) createIndex(ctx context.Context, sc schema) error {
	args, err := sc.createArgs()
	if err != nil {
		return err
	}

	cmd := s.b().Arbitrary("FT.CREATE").Args(args...).Build()
	if err := s.do(ctx, cmd).Error(); err != nil {
		if isRedisErr(err, "index already exists") {
			return db.ErrIndexExists
		}
		return &db.Error{Op: db.OpCreateIndex, Err: err}
	}
	return nil
}

// alterIndex adds every attribute of sc to the existing index, one FT.ALTER each.
// Attributes the index already has are skipped.
func (s *Store) alterIndex(ctx context.Context, sc schema) error {
	for _, a := range sc.Attrs {
		attrArgs, err := a.args()
		if err != nil {
			return err
		}
		args := append([]string{sc.Name, "SCHEMA", "ADD"}, attrArgs...)
		cmd := s.b().Arbitrary("FT.ALTER").Args(args...).Build()
		if err := s.do(ctx, cmd).Error(); err != nil {
			if isRedisErr(err, "duplicate") {
				continue
			}
			return &db.Error{Op: db.OpAlterIndex, Err: err}
		}
	}
	return nil
}

// indexExists probes index existence via FT.INFO; "unknown index name" means absent.
func (s *Store) indexExists(ctx context.Context, name string) (bool, error) {
	cmd := s.b().Arbitrary("FT.INFO").Args(name).Build()
	if err := s.do(ctx, cmd).Error(); err != nil {
		if isUnknownIndex(err) {
			return false, nil
		}
		return false, &db.Error{Op: db.OpIndexInfo, Err: err}
	}
	return true, nil
}

func isUnknownIndex(err error) bool {
	return isRedisErr(err, "unknown index name") || isRedisErr(err, "no such index")
}
