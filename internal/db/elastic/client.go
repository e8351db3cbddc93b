package elastic

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"

	"github.com/kailas-cloud/searchsync/internal/db"
)

// Compile-time check: Store implements db.Engine.
var _ db.Engine = (*Store)(nil)

// Config holds connection parameters for an Elasticsearch cluster.
type Config struct {
	Addrs    []string
	Username string
	Password string
	// Transport overrides the HTTP transport (tests).
	Transport http.RoundTripper
}

// Store implements db.Engine on Elasticsearch. Documents of every type share the
// index; their _id is "<type>:<id>" and the source carries the _type tag.
type Store struct {
	es *elasticsearch.Client
}

// NewStore creates an Elasticsearch store. No request is sent until first use.
func NewStore(cfg Config) (*Store, error) {
	if len(cfg.Addrs) == 0 {
		return nil, fmt.Errorf("addrs is required")
	}
	es, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: cfg.Addrs,
		Username:  cfg.Username,
		Password:  cfg.Password,
		Transport: cfg.Transport,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}
	return &Store{es: es}, nil
}

// Ping checks connectivity.
func (s *Store) Ping(ctx context.Context) error {
	res, err := s.es.Ping(s.es.Ping.WithContext(ctx))
	if err := checkResponse(db.OpPing, res, err); err != nil {
		return err
	}
	discard(res)
	return nil
}

// Close is a no-op: the HTTP client holds no dedicated resources.
func (s *Store) Close() {}

// WaitForReady polls Ping until the cluster responds or timeout expires.
func (s *Store) WaitForReady(ctx context.Context, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ticker := time.NewTicker(250 * time.Millisecond)
	defer ticker.Stop()

	for {
		if err := s.Ping(ctx); err == nil {
			return nil
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("timeout waiting for elasticsearch: %w", ctx.Err())
		case <-ticker.C:
		}
	}
}

// checkResponse turns a transport error or an error status into a *db.Error and
// closes the body in both cases.
func checkResponse(op string, res *esapi.Response, err error) error {
	if err != nil {
		return &db.Error{Op: op, Err: err}
	}
	if res.IsError() {
		defer res.Body.Close()
		body, _ := io.ReadAll(io.LimitReader(res.Body, 4096))
		return &db.Error{Op: op, Err: fmt.Errorf("status %s: %s", res.Status(), body)}
	}
	return nil
}

// decode reads a JSON body into v and closes it.
func decode(op string, res *esapi.Response, v any) error {
	defer res.Body.Close()
	if err := json.NewDecoder(res.Body).Decode(v); err != nil {
		return &db.Error{Op: op, Err: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}

// discard closes a body whose content is not needed.
func discard(res *esapi.Response) {
	_, _ = io.Copy(io.Discard, res.Body)
	res.Body.Close()
}
