package hook

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	dombulk "github.com/kailas-cloud/searchsync/internal/domain/bulk"
	"github.com/kailas-cloud/searchsync/internal/domain/descriptor"
	"github.com/kailas-cloud/searchsync/internal/domain/record"
	"github.com/kailas-cloud/searchsync/internal/logger"
	"github.com/kailas-cloud/searchsync/internal/metrics"
	"github.com/kailas-cloud/searchsync/internal/usecase/bulk"
)

// ErrClosed is reported to the error sink for events that arrive after Close.
var ErrClosed = errors.New("hook dispatcher closed")

// Hook operation names.
const (
	OpSave   = "save"
	OpRemove = "remove"
)

// Dispatcher keeps the index in step with single-record mutations. Each event runs
// as a detached task; its outcome never reaches the mutation that triggered it.
type Dispatcher struct {
	engine    bulk.Engine
	projector Projector
	registry  Registry
	logger    *zap.Logger
	sink      ErrorSink

	mu     sync.Mutex
	closed bool
	wg     sync.WaitGroup
}

// New creates a dispatcher.
func New(engine bulk.Engine, projector Projector, registry Registry, l *zap.Logger) *Dispatcher {
	if l == nil {
		l = zap.NewNop()
	}
	return &Dispatcher{engine: engine, projector: projector, registry: registry, logger: l}
}

// WithErrorSink forwards every hook failure to sink.
func (d *Dispatcher) WithErrorSink(sink ErrorSink) *Dispatcher {
	d.sink = sink
	return d
}

// OnSaved indexes rec in the background.
func (d *Dispatcher) OnSaved(ctx context.Context, rec record.Record, desc descriptor.Descriptor) {
	d.spawn(ctx, OpSave, rec, func(ctx context.Context, log *zap.Logger) error {
		doc, err := d.projector.Project(ctx, rec, desc.Spec())
		if err != nil {
			return err
		}
		return d.submit(ctx, log, desc, dombulk.Index(desc.Index(), desc.Name(), rec.ID(), doc))
	})
}

// OnRemoved deletes rec from the index in the background.
func (d *Dispatcher) OnRemoved(ctx context.Context, rec record.Record, desc descriptor.Descriptor) {
	d.spawn(ctx, OpRemove, rec, func(ctx context.Context, log *zap.Logger) error {
		return d.submit(ctx, log, desc, dombulk.Delete(desc.Index(), desc.Name(), rec.ID()))
	})
}

// Wait blocks until every in-flight hook task has finished. Events must not be
// dispatched while Wait runs; use Close when the event source may still be live.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

// Close stops accepting events and waits for the in-flight ones. Events arriving
// afterwards are dropped and reported to the error sink as ErrClosed.
func (d *Dispatcher) Close() {
	d.mu.Lock()
	d.closed = true
	d.mu.Unlock()
	d.wg.Wait()
}

func (d *Dispatcher) spawn(
	ctx context.Context, op string, rec record.Record,
	task func(ctx context.Context, log *zap.Logger) error,
) {
	detached := context.WithoutCancel(ctx)
	log := logger.FromContextOr(detached, d.logger).With(
		zap.String("op", op), zap.String("type", rec.Type()), zap.String("id", rec.ID()),
	)

	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		metrics.HookEventsTotal.WithLabelValues(op, "dropped").Inc()
		log.Warn("hook dropped", zap.Error(ErrClosed))
		if d.sink != nil {
			d.sink(op, rec, ErrClosed)
		}
		return
	}
	d.wg.Add(1)
	d.mu.Unlock()

	go func() {
		defer d.wg.Done()
		if err := task(detached, log); err != nil {
			metrics.HookEventsTotal.WithLabelValues(op, "error").Inc()
			log.Error("hook failed", zap.Error(err))
			if d.sink != nil {
				d.sink(op, rec, err)
			}
			return
		}
		metrics.HookEventsTotal.WithLabelValues(op, "ok").Inc()
	}()
}

func (d *Dispatcher) submit(ctx context.Context, log *zap.Logger, desc descriptor.Descriptor, item dombulk.Item) error {
	b := bulk.NewBatcher(d.engine,
		bulk.WithBatchSize(1),
		bulk.WithRefresh(desc.Refresh()),
		bulk.WithLogger(log),
	)
	if err := b.Add(ctx, item); err != nil {
		return fmt.Errorf("%s %s: %w", item.Action(), item.DocumentID(), err)
	}
	return nil
}

// Hooks are the save/remove callbacks bound to one descriptor. They satisfy the
// record store's observer contract.
type Hooks struct {
	d    *Dispatcher
	desc descriptor.Descriptor
}

// Descriptor returns the bound descriptor.
func (h Hooks) Descriptor() descriptor.Descriptor { return h.desc }

// OnSaved dispatches an index task for rec.
func (h Hooks) OnSaved(ctx context.Context, rec record.Record) { h.d.OnSaved(ctx, rec, h.desc) }

// OnRemoved dispatches a delete task for rec.
func (h Hooks) OnRemoved(ctx context.Context, rec record.Record) { h.d.OnRemoved(ctx, rec, h.desc) }

// Attach registers desc and returns its bound hooks.
func (d *Dispatcher) Attach(desc descriptor.Descriptor) (Hooks, error) {
	registered, err := d.registry.Register(desc)
	if err != nil {
		return Hooks{}, fmt.Errorf("attach %s: %w", desc.Name(), err)
	}
	return Hooks{d: d, desc: registered}, nil
}

// Bind returns hooks for an already registered descriptor.
func (d *Dispatcher) Bind(desc descriptor.Descriptor) Hooks {
	return Hooks{d: d, desc: desc}
}
