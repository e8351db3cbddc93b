// Package sqlite is the primary record store. Records are kept as JSON bodies keyed by
// (type, id); observers subscribed per type are notified after each committed mutation.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/zap"
	_ "modernc.org/sqlite" // database/sql driver "sqlite"

	"github.com/kailas-cloud/searchsync/internal/domain"
	"github.com/kailas-cloud/searchsync/internal/domain/record"
)

// MemoryPath opens a private in-memory database.
const MemoryPath = ":memory:"

const schema = `
CREATE TABLE IF NOT EXISTS records (
	type       TEXT    NOT NULL,
	id         TEXT    NOT NULL,
	body       TEXT    NOT NULL,
	updated_at INTEGER NOT NULL,
	PRIMARY KEY (type, id)
);
`

// Observer receives post-commit notifications for one record type.
type Observer interface {
	OnSaved(ctx context.Context, rec record.Record)
	OnRemoved(ctx context.Context, rec record.Record)
}

// Store is a SQLite-backed record store.
type Store struct {
	db     *sql.DB
	logger *zap.Logger

	mu        sync.RWMutex
	observers map[string][]Observer
}

// Open opens (creating when needed) the database at path.
func Open(path string, logger *zap.Logger) (*Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if path == "" {
		return nil, fmt.Errorf("sqlite path is required")
	}
	if path != MemoryPath {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("create store directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if path == MemoryPath {
		// every connection would get its own empty database
		db.SetMaxOpenConns(1)
	} else if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("enable WAL: %w", err)
	}
	if _, err := db.Exec("PRAGMA busy_timeout=5000"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("set busy timeout: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}

	return &Store{db: db, logger: logger, observers: make(map[string][]Observer)}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping checks the database connection.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Subscribe registers obs for mutations of typ.
func (s *Store) Subscribe(typ string, obs Observer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.observers[typ] = append(s.observers[typ], obs)
}

// Save upserts rec and notifies observers once the write is committed.
func (s *Store) Save(ctx context.Context, rec record.Record) error {
	if rec.IsZero() {
		return fmt.Errorf("save: %w", domain.ErrInvalidRecord)
	}
	body, err := json.Marshal(rec.Fields())
	if err != nil {
		return fmt.Errorf("marshal %s/%s: %w", rec.Type(), rec.ID(), err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO records (type, id, body, updated_at) VALUES (?, ?, ?, ?)
		ON CONFLICT (type, id) DO UPDATE SET body = excluded.body, updated_at = excluded.updated_at`,
		rec.Type(), rec.ID(), string(body), time.Now().UnixMilli())
	if err != nil {
		return fmt.Errorf("save %s/%s: %w", rec.Type(), rec.ID(), err)
	}

	for _, obs := range s.subscribers(rec.Type()) {
		obs.OnSaved(ctx, rec)
	}
	return nil
}

// Remove deletes the record and notifies observers with its last stored state.
func (s *Store) Remove(ctx context.Context, typ, id string) error {
	rec, err := s.FindOne(ctx, typ, id)
	if err != nil {
		return err
	}

	res, err := s.db.ExecContext(ctx, `DELETE FROM records WHERE type = ? AND id = ?`, typ, id)
	if err != nil {
		return fmt.Errorf("remove %s/%s: %w", typ, id, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("%s/%s: %w", typ, id, domain.ErrNotFound)
	}

	for _, obs := range s.subscribers(typ) {
		obs.OnRemoved(ctx, rec)
	}
	return nil
}

// FindOne returns the record identified by (typ, id), or domain.ErrNotFound.
func (s *Store) FindOne(ctx context.Context, typ, id string) (record.Record, error) {
	var body string
	err := s.db.QueryRowContext(ctx,
		`SELECT body FROM records WHERE type = ? AND id = ?`, typ, id).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return record.Record{}, fmt.Errorf("%s/%s: %w", typ, id, domain.ErrNotFound)
	}
	if err != nil {
		return record.Record{}, fmt.Errorf("find %s/%s: %w", typ, id, err)
	}
	return decode(typ, id, body)
}

// Count returns the number of stored records of typ.
func (s *Store) Count(ctx context.Context, typ string) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM records WHERE type = ?`, typ).Scan(&n); err != nil {
		return 0, fmt.Errorf("count %s: %w", typ, err)
	}
	return n, nil
}

// Stream opens a cursor over every record of typ, ordered by id. Rows are read from
// the database only as the consumer advances.
func (s *Store) Stream(ctx context.Context, typ string) (record.Stream, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, body FROM records WHERE type = ? ORDER BY id`, typ)
	if err != nil {
		return nil, fmt.Errorf("stream %s: %w", typ, err)
	}
	return &rowStream{typ: typ, rows: rows}, nil
}

func (s *Store) subscribers(typ string) []Observer {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Observer(nil), s.observers[typ]...)
}

func decode(typ, id, body string) (record.Record, error) {
	var fields map[string]any
	if err := json.Unmarshal([]byte(body), &fields); err != nil {
		return record.Record{}, fmt.Errorf("decode %s/%s: %w", typ, id, err)
	}
	return record.Reconstruct(typ, id, fields), nil
}

type rowStream struct {
	typ  string
	rows *sql.Rows
	cur  record.Record
	err  error
}

func (r *rowStream) Next() bool {
	if r.err != nil {
		return false
	}
	if !r.rows.Next() {
		r.err = r.rows.Err()
		_ = r.rows.Close()
		return false
	}
	var id, body string
	if err := r.rows.Scan(&id, &body); err != nil {
		r.err = fmt.Errorf("scan %s: %w", r.typ, err)
		_ = r.rows.Close()
		return false
	}
	rec, err := decode(r.typ, id, body)
	if err != nil {
		r.err = err
		_ = r.rows.Close()
		return false
	}
	r.cur = rec
	return true
}

func (r *rowStream) Record() record.Record { return r.cur }

func (r *rowStream) Err() error { return r.err }

func (r *rowStream) Close() error { return r.rows.Close() }
