package bulk

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/searchsync/internal/domain"
	dombulk "github.com/kailas-cloud/searchsync/internal/domain/bulk"
	"github.com/kailas-cloud/searchsync/internal/metrics"
)

// DefaultBatchSize is the number of buffered items that triggers a flush.
const DefaultBatchSize = 200

// Flush describes one bulk submission.
type Flush struct {
	Items  int
	Failed int
}

// Stats accumulates the outcome of every flush of a batcher.
type Stats struct {
	Batches int
	Items   int
	Failed  int
}

// Batcher buffers bulk items and submits them in fixed-size batches. One batcher
// serves one synchronization; concurrent Add calls are serialized.
type Batcher struct {
	engine  Engine
	size    int
	options dombulk.Options
	logger  *zap.Logger

	mu    sync.Mutex
	items []dombulk.Item
	stats Stats
}

// Option configures a Batcher.
type Option func(*Batcher)

// WithBatchSize sets the flush threshold. Non-positive values keep the default.
func WithBatchSize(n int) Option {
	return func(b *Batcher) {
		if n > 0 {
			b.size = n
		}
	}
}

// WithRefresh asks the engine to make each batch visible to search immediately.
func WithRefresh(refresh bool) Option {
	return func(b *Batcher) { b.options.Refresh = refresh }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(b *Batcher) {
		if l != nil {
			b.logger = l
		}
	}
}

// NewBatcher creates a batcher submitting to engine.
func NewBatcher(engine Engine, opts ...Option) *Batcher {
	b := &Batcher{engine: engine, size: DefaultBatchSize, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(b)
	}
	b.items = make([]dombulk.Item, 0, b.size)
	return b
}

// Size returns the flush threshold.
func (b *Batcher) Size() int { return b.size }

// Len returns the number of buffered items.
func (b *Batcher) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.items)
}

// Stats returns the totals of every flush so far.
func (b *Batcher) Stats() Stats {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.stats
}

// Add buffers item. When the buffer reaches the threshold it is flushed before Add
// returns, and the flush error (if any) is returned.
func (b *Batcher) Add(ctx context.Context, item dombulk.Item) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.items = append(b.items, item)
	if len(b.items) < b.size {
		return nil
	}
	b.logger.Debug(fmt.Sprintf("pushing %d bulk items", len(b.items)))
	_, err := b.flushLocked(ctx)
	return err
}

// Flush submits the buffered items. An empty buffer is a no-op.
func (b *Batcher) Flush(ctx context.Context) (Flush, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.flushLocked(ctx)
}

func (b *Batcher) flushLocked(ctx context.Context) (Flush, error) {
	if len(b.items) == 0 {
		return Flush{}, nil
	}

	items := b.items
	b.items = make([]dombulk.Item, 0, b.size)

	index := items[0].Index()
	for _, it := range items {
		metrics.BulkItemsTotal.WithLabelValues(it.Index(), string(it.Action())).Inc()
	}

	start := time.Now()
	resp, err := b.engine.Bulk(ctx, items, b.options)
	metrics.BulkFlushDuration.WithLabelValues(index).Observe(time.Since(start).Seconds())

	b.stats.Batches++
	b.stats.Items += len(items)

	if err != nil {
		b.stats.Failed += len(items)
		metrics.BulkFlushesTotal.WithLabelValues(index, "error").Inc()
		b.logger.Error("bulk submission failed", zap.Int("items", len(items)), zap.Error(err))
		return Flush{Items: len(items), Failed: len(items)}, &domain.BulkSubmissionError{Items: len(items), Err: err}
	}

	failed := resp.Failed()
	b.stats.Failed += failed
	if resp.Errors {
		metrics.BulkFlushesTotal.WithLabelValues(index, "partial").Inc()
		b.logger.Error("bulk submission reported errors",
			zap.Int("items", len(items)), zap.Int("failed", failed), zap.Error(resp.FirstError()))
		return Flush{Items: len(items), Failed: failed}, &domain.BulkSubmissionError{
			Items: len(items),
			Err:   fmt.Errorf("%d of %d items rejected: %w", failed, len(items), firstOr(resp.FirstError())),
		}
	}

	metrics.BulkFlushesTotal.WithLabelValues(index, "ok").Inc()
	b.logger.Info("bulk submission succeeded", zap.String("index", index), zap.Int("items", len(items)))
	return Flush{Items: len(items)}, nil
}

var errRejected = errors.New("engine flagged errors")

func firstOr(err error) error {
	if err == nil {
		return errRejected
	}
	return err
}
