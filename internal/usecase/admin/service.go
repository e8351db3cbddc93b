package admin

import (
	"context"
	"fmt"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/kailas-cloud/searchsync/internal/db"
)

// Service passes administrative operations through to the engine.
type Service struct {
	engine   Engine
	registry Registry
	logger   *zap.Logger
}

// New creates an admin service.
func New(engine Engine, registry Registry, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{engine: engine, registry: registry, logger: logger}
}

// PutMapping declares the index fields of typeName.
func (s *Service) PutMapping(ctx context.Context, typeName string) error {
	desc, err := s.registry.Require(typeName)
	if err != nil {
		return err
	}
	m := db.MappingFor(desc)
	if err := s.engine.PutMapping(ctx, m); err != nil {
		return fmt.Errorf("put mapping %s: %w", typeName, err)
	}
	s.logger.Info("mapping updated",
		zap.String("type", typeName), zap.String("index", m.Index), zap.Int("fields", len(m.Fields)))
	return nil
}

// PutMappings declares the mappings of every registered type.
func (s *Service) PutMappings(ctx context.Context) error {
	var errs error
	for _, d := range s.registry.All() {
		errs = multierr.Append(errs, s.PutMapping(ctx, d.Name()))
	}
	return errs
}

// Refresh makes recent writes to index visible to search.
func (s *Service) Refresh(ctx context.Context, index string) error {
	if err := s.engine.Refresh(ctx, index); err != nil {
		return fmt.Errorf("refresh %s: %w", index, err)
	}
	return nil
}

// Flush persists recent writes to index.
func (s *Service) Flush(ctx context.Context, index string) error {
	if err := s.engine.Flush(ctx, index); err != nil {
		return fmt.Errorf("flush %s: %w", index, err)
	}
	return nil
}

// Truncate deletes every document in index.
func (s *Service) Truncate(ctx context.Context, index string) error {
	if err := s.engine.DeleteByQuery(ctx, index, db.MatchAll); err != nil {
		return fmt.Errorf("truncate %s: %w", index, err)
	}
	s.logger.Info("index truncated", zap.String("index", index))
	return nil
}

// TruncateAll truncates every index in use by a registered type.
func (s *Service) TruncateAll(ctx context.Context) error {
	var errs error
	for _, idx := range s.registry.Indexes() {
		errs = multierr.Append(errs, s.Truncate(ctx, idx))
	}
	return errs
}

// Ping checks engine connectivity.
func (s *Service) Ping(ctx context.Context) error {
	return s.engine.Ping(ctx)
}
