package search

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/kailas-cloud/searchsync/internal/domain"
	"github.com/kailas-cloud/searchsync/internal/domain/record"
	"github.com/kailas-cloud/searchsync/internal/domain/search/request"
	"github.com/kailas-cloud/searchsync/internal/domain/search/result"
	"github.com/kailas-cloud/searchsync/internal/metrics"
)

// Service runs queries and resolves every hit back into a live record.
type Service struct {
	engine         Engine
	store          Store
	registry       Registry
	defaultSize    int
	maxSize        int
	maxConcurrency int
	logger         *zap.Logger
}

// New creates a search service.
func New(engine Engine, store Store, registry Registry, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{engine: engine, store: store, registry: registry, logger: logger}
}

// WithMaxConcurrency bounds the number of concurrent lookups. Zero means unbounded.
func (s *Service) WithMaxConcurrency(n int) *Service {
	if n >= 0 {
		s.maxConcurrency = n
	}
	return s
}

// WithDefaultSize sets the page size used when the caller does not pass one.
func (s *Service) WithDefaultSize(n int) *Service {
	if n > 0 {
		s.defaultSize = n
	}
	return s
}

// WithMaxSize caps the page size callers may request.
func (s *Service) WithMaxSize(n int) *Service {
	if n > 0 {
		s.maxSize = n
	}
	return s
}

// Search queries the index and resolves hits in hit order. Hits whose type is not
// registered and hits whose record no longer exists are dropped. Any other lookup
// failure fails the whole call once every lookup has settled.
func (s *Service) Search(ctx context.Context, opts request.Options, query string) ([]record.Record, error) {
	if opts.Size <= 0 && s.defaultSize > 0 {
		opts.Size = s.defaultSize
	}
	req, err := request.New(query, opts, s.registry.DefaultIndex())
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrInvalidQuery, err)
	}
	req = req.ClampSize(s.maxSize)

	page, err := s.engine.Search(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("search %s: %w", req.Index(), err)
	}
	if len(page.Hits) == 0 {
		return []record.Record{}, nil
	}

	resolved := make([]record.Record, len(page.Hits))
	found := make([]bool, len(page.Hits))

	var g errgroup.Group
	if s.maxConcurrency > 0 {
		g.SetLimit(s.maxConcurrency)
	}
	for i, hit := range page.Hits {
		g.Go(func() error {
			rec, ok, err := s.resolve(ctx, hit, req.Info())
			if err != nil {
				return err
			}
			resolved[i], found[i] = rec, ok
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make([]record.Record, 0, len(resolved))
	for i, rec := range resolved {
		if found[i] {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (s *Service) resolve(ctx context.Context, hit result.Hit, info any) (record.Record, bool, error) {
	log := s.logger.With(zap.String("type", hit.Type()), zap.String("id", hit.ID()))

	desc, ok := s.registry.Get(hit.Type())
	if !ok {
		metrics.SearchLookupsTotal.WithLabelValues(hit.Type(), "unknown_type").Inc()
		log.Error("search hit dropped", zap.Error(domain.NewConfigurationError(hit.Type())))
		return record.Record{}, false, nil
	}

	var rec record.Record
	var err error
	if lookup := desc.Lookup(); lookup != nil {
		rec, err = lookup.Resolve(ctx, hit, info)
	} else {
		rec, err = s.store.FindOne(ctx, hit.Type(), hit.ID())
	}

	switch {
	case errors.Is(err, domain.ErrNotFound):
		metrics.SearchLookupsTotal.WithLabelValues(hit.Type(), "not_found").Inc()
		log.Warn("search object not found")
		return record.Record{}, false, nil
	case err != nil:
		metrics.SearchLookupsTotal.WithLabelValues(hit.Type(), "error").Inc()
		return record.Record{}, false, &domain.LookupError{Type: hit.Type(), ID: hit.ID(), Err: err}
	}
	metrics.SearchLookupsTotal.WithLabelValues(hit.Type(), "found").Inc()
	return rec, true, nil
}
