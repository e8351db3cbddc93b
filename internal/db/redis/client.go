package redis

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/redis/rueidis"

	"github.com/kailas-cloud/searchsync/internal/db"
)

// Compile-time check: Store implements db.Engine.
var _ db.Engine = (*Store)(nil)

// DefaultKeyPrefix namespaces index names and document keys.
const DefaultKeyPrefix = "searchsync:"

// readyPollInterval paces WaitForReady.
const readyPollInterval = 100 * time.Millisecond

// Config holds connection parameters for a Redis store.
type Config struct {
	Addrs     []string
	Username  string
	Password  string
	DB        int
	KeyPrefix string
}

// Store implements db.Engine on Redis 8 / Redis Stack (RedisJSON + RediSearch).
// Each logical index is one FT index over the JSON keys <prefix><index>:<type>:<id>.
type Store struct {
	client rueidis.Client
	prefix string
}

// NewStore connects to Redis. Client-side caching stays off: documents are
// written far more often than they are read back by key.
func NewStore(cfg Config) (*Store, error) {
	if len(cfg.Addrs) == 0 {
		return nil, fmt.Errorf("addrs is required")
	}

	client, err := rueidis.NewClient(rueidis.ClientOption{
		InitAddress:  cfg.Addrs,
		Username:     cfg.Username,
		Password:     cfg.Password,
		SelectDB:     cfg.DB,
		DisableCache: true,
		AlwaysRESP2:  true, // FT.SEARCH replies are parsed as RESP2 arrays
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}
	return newStore(client, cfg.KeyPrefix), nil
}

// NewStoreForTest wraps an injected client using the default key prefix.
func NewStoreForTest(c rueidis.Client) *Store {
	return newStore(c, "")
}

func newStore(c rueidis.Client, prefix string) *Store {
	if prefix == "" {
		prefix = DefaultKeyPrefix
	}
	return &Store{client: c, prefix: prefix}
}

// Ping checks connectivity.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.do(ctx, s.b().Ping().Build()).Error(); err != nil {
		return &db.Error{Op: db.OpPing, Err: err}
	}
	return nil
}

// Close shuts down the client.
func (s *Store) Close() {
	s.client.Close()
}

// WaitForReady pings until Redis answers or timeout expires.
func (s *Store) WaitForReady(ctx context.Context, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ticker := time.NewTicker(readyPollInterval)
	defer ticker.Stop()

	var lastErr error
	for {
		if lastErr = s.Ping(ctx); lastErr == nil {
			return nil
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("timeout waiting for redis: %w", lastErr)
		case <-ticker.C:
		}
	}
}

// indexName returns the FT index name for a logical index.
func (s *Store) indexName(index string) string {
	return s.prefix + index
}

// keyPrefix returns the document key prefix covered by the FT index.
func (s *Store) keyPrefix(index string) string {
	return s.prefix + index + ":"
}

// docKey returns the key of one document: <prefix><index>:<type>:<id>.
func (s *Store) docKey(index, docID string) string {
	return s.keyPrefix(index) + docID
}

func (s *Store) do(ctx context.Context, cmd rueidis.Completed) rueidis.RedisResult {
	return s.client.Do(ctx, cmd)
}

func (s *Store) b() rueidis.Builder {
	return s.client.B()
}

// isRedisErr reports whether err is a server error whose message contains substr,
// ignoring case. Transport errors never match.
func isRedisErr(err error, substr string) bool {
	re, ok := rueidis.IsRedisErr(err)
	if !ok {
		return false
	}
	return containsIgnoreCase(re.Error(), substr)
}

func containsIgnoreCase(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}
