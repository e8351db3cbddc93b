package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/kailas-cloud/searchsync/internal/domain"
	"github.com/kailas-cloud/searchsync/internal/domain/descriptor"
	"github.com/kailas-cloud/searchsync/internal/domain/record"
	"github.com/kailas-cloud/searchsync/internal/logger"
)

// Change event operations.
const (
	OpSave   = "save"
	OpRemove = "remove"
)

// Event is one record mutation published by an upstream system.
type Event struct {
	Op     string         `json:"op"`
	Type   string         `json:"type"`
	ID     string         `json:"id,omitempty"`
	Record map[string]any `json:"record,omitempty"`
}

// RecordStore applies mutations. Its observers keep the index in step.
type RecordStore interface {
	Save(ctx context.Context, rec record.Record) error
	Remove(ctx context.Context, typ, id string) error
}

// Registry resolves type descriptors.
type Registry interface {
	Require(name string) (descriptor.Descriptor, error)
}

// Handler applies change events to the record store.
type Handler struct {
	store    RecordStore
	registry Registry
	logger   *zap.Logger
}

// NewHandler creates a change event handler.
func NewHandler(store RecordStore, registry Registry, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{store: store, registry: registry, logger: logger}
}

// Handle decodes msg and applies it. Removing an absent record is not an error.
func (h *Handler) Handle(ctx context.Context, msg kafka.Message) error {
	var ev Event
	if err := json.Unmarshal(msg.Value, &ev); err != nil {
		return fmt.Errorf("decode event at %s/%d@%d: %w", msg.Topic, msg.Partition, msg.Offset, err)
	}

	ctx, log := logger.WithFields(ctx, h.logger,
		zap.String("op", ev.Op), zap.String("type", ev.Type),
		zap.Int("partition", msg.Partition), zap.Int64("offset", msg.Offset),
	)

	desc, err := h.registry.Require(ev.Type)
	if err != nil {
		return err
	}

	switch ev.Op {
	case OpSave:
		return h.save(ctx, log, desc, ev)
	case OpRemove:
		return h.remove(ctx, log, desc, ev)
	default:
		return fmt.Errorf("unknown op %q for %s: %w", ev.Op, ev.Type, domain.ErrInvalidRecord)
	}
}

func (h *Handler) save(ctx context.Context, log *zap.Logger, desc descriptor.Descriptor, ev Event) error {
	fields := ev.Record
	if fields == nil {
		return fmt.Errorf("save %s without record: %w", ev.Type, domain.ErrInvalidRecord)
	}
	if _, ok := fields[desc.IdentityField()]; !ok && ev.ID != "" {
		fields[desc.IdentityField()] = ev.ID
	}
	rec, err := desc.NewRecord(fields)
	if err != nil {
		return err
	}
	if err := h.store.Save(ctx, rec); err != nil {
		return fmt.Errorf("save %s/%s: %w", rec.Type(), rec.ID(), err)
	}
	log.Debug("record saved", zap.String("id", rec.ID()))
	return nil
}

func (h *Handler) remove(ctx context.Context, log *zap.Logger, desc descriptor.Descriptor, ev Event) error {
	id := ev.ID
	if id == "" && ev.Record != nil {
		if rec, err := desc.NewRecord(ev.Record); err == nil {
			id = rec.ID()
		}
	}
	if id == "" {
		return fmt.Errorf("remove %s without id: %w", ev.Type, domain.ErrInvalidRecord)
	}

	err := h.store.Remove(ctx, ev.Type, id)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		log.Debug("record already removed", zap.String("id", id))
		return nil
	case err != nil:
		return fmt.Errorf("remove %s/%s: %w", ev.Type, id, err)
	}
	log.Debug("record removed", zap.String("id", id))
	return nil
}
