package sync

import (
	"context"
	"fmt"
	gosync "sync"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/kailas-cloud/searchsync/internal/domain"
	dombulk "github.com/kailas-cloud/searchsync/internal/domain/bulk"
	"github.com/kailas-cloud/searchsync/internal/logger"
	"github.com/kailas-cloud/searchsync/internal/metrics"
	"github.com/kailas-cloud/searchsync/internal/usecase/bulk"
)

// Result summarizes the synchronization of one type.
type Result struct {
	Type     string
	Streamed int
	Indexed  int
	Failed   int
	Batches  int
	Duration time.Duration
	// BulkErrors holds every bulk submission failure, in flush order.
	BulkErrors []error
}

// Service streams record types from the store into the search index.
type Service struct {
	store     Store
	engine    bulk.Engine
	projector Projector
	registry  Registry
	batchSize int
	logger    *zap.Logger
}

// New creates a synchronization service.
func New(store Store, engine bulk.Engine, projector Projector, registry Registry, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		store: store, engine: engine, projector: projector, registry: registry,
		batchSize: bulk.DefaultBatchSize,
		logger:    logger,
	}
}

// WithBatchSize configures the bulk flush threshold.
func (s *Service) WithBatchSize(size int) *Service {
	if size > 0 {
		s.batchSize = size
	}
	return s
}

// SynchronizeType indexes every stored record of typeName. The next record is pulled
// only after the current one has been buffered (and flushed, at the threshold).
// Projection failures are counted and skipped; a stream failure aborts the type.
// Bulk failures are collected and returned together once the stream is drained.
func (s *Service) SynchronizeType(ctx context.Context, typeName string) (res Result, err error) {
	res.Type = typeName
	start := time.Now()
	defer func() {
		res.Duration = time.Since(start)
		metrics.SyncDuration.WithLabelValues(typeName).Observe(res.Duration.Seconds())
	}()

	desc, err := s.registry.Require(typeName)
	if err != nil {
		return res, err
	}

	stream, err := s.store.Stream(ctx, typeName)
	if err != nil {
		return res, &domain.StreamError{Type: typeName, Err: err}
	}
	defer func() { _ = stream.Close() }()

	ctx, log := logger.WithFields(ctx, s.logger, zap.String("type", typeName), zap.String("index", desc.Index()))
	batcher := bulk.NewBatcher(s.engine, bulk.WithBatchSize(s.batchSize), bulk.WithLogger(log))

	for stream.Next() {
		rec := stream.Record()
		res.Streamed++

		doc, err := s.projector.Project(ctx, rec, desc.Spec())
		if err != nil {
			res.Failed++
			metrics.SyncRecordsTotal.WithLabelValues(typeName, "failed").Inc()
			log.Error("projection failed", zap.String("id", rec.ID()), zap.Error(err))
			continue
		}

		if err := batcher.Add(ctx, dombulk.Index(desc.Index(), typeName, rec.ID(), doc)); err != nil {
			res.BulkErrors = append(res.BulkErrors, err)
		}
	}
	if err := stream.Err(); err != nil {
		s.collectStats(&res, batcher)
		log.Error("stream failed", zap.Int("streamed", res.Streamed), zap.Error(err))
		return res, &domain.StreamError{Type: typeName, Err: err}
	}

	if _, err := batcher.Flush(ctx); err != nil {
		res.BulkErrors = append(res.BulkErrors, err)
	}
	s.collectStats(&res, batcher)

	log.Debug(fmt.Sprintf("streamed %d from %s", res.Streamed, typeName))
	metrics.SyncRecordsTotal.WithLabelValues(typeName, "indexed").Add(float64(res.Indexed))

	if len(res.BulkErrors) > 0 {
		return res, fmt.Errorf("synchronize %s: %w", typeName, multierr.Combine(res.BulkErrors...))
	}
	return res, nil
}

func (s *Service) collectStats(res *Result, b *bulk.Batcher) {
	st := b.Stats()
	res.Batches = st.Batches
	res.Indexed = st.Items - st.Failed
}

// SynchronizeAll synchronizes every registered type concurrently, each with its own
// batcher, and waits for all of them. Results follow registry order.
func (s *Service) SynchronizeAll(ctx context.Context) ([]Result, error) {
	descs := s.registry.All()
	results := make([]Result, len(descs))
	errs := make([]error, len(descs))

	var wg gosync.WaitGroup
	for i, d := range descs {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i], errs[i] = s.SynchronizeType(ctx, d.Name())
		}()
	}
	wg.Wait()

	return results, multierr.Combine(errs...)
}
