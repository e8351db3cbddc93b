package kafka

import (
	"context"
	"errors"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// Config holds consumer settings.
type Config struct {
	Brokers  []string
	GroupID  string
	Topic    string
	MinBytes int
	MaxBytes int
}

// Reader is the subset of *kafka.Reader the consumer uses.
type Reader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Consumer reads change events and hands them to a Handler. Offsets are committed
// after handling, so an event is applied at least once.
type Consumer struct {
	reader  Reader
	handler *Handler
	logger  *zap.Logger
	backoff time.Duration
}

// NewConsumer creates a consumer group reader for cfg.
func NewConsumer(cfg Config, handler *Handler, logger *zap.Logger) (*Consumer, error) {
	if len(cfg.Brokers) == 0 || cfg.Topic == "" {
		return nil, errors.New("kafka: brokers and topic are required")
	}
	r := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        cfg.Brokers,
		GroupID:        cfg.GroupID,
		Topic:          cfg.Topic,
		MinBytes:       cfg.MinBytes,
		MaxBytes:       cfg.MaxBytes,
		MaxWait:        time.Second,
		StartOffset:    kafka.FirstOffset,
		CommitInterval: 0,
	})
	return NewConsumerWithReader(r, handler, logger), nil
}

// NewConsumerWithReader wraps an existing reader.
func NewConsumerWithReader(r Reader, handler *Handler, logger *zap.Logger) *Consumer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Consumer{reader: r, handler: handler, logger: logger, backoff: time.Second}
}

// Run consumes until ctx is cancelled. A handler failure is logged and the event
// is committed; a read failure is retried after a short pause.
func (c *Consumer) Run(ctx context.Context) error {
	defer func() {
		if err := c.reader.Close(); err != nil {
			c.logger.Warn("kafka reader close", zap.Error(err))
		}
	}()
	c.logger.Info("kafka consumer started")

	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				c.logger.Info("kafka consumer stopping")
				return nil
			}
			c.logger.Error("kafka fetch", zap.Error(err))
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(c.backoff):
			}
			continue
		}

		if err := c.handler.Handle(ctx, msg); err != nil {
			c.logger.Error("kafka event rejected",
				zap.String("topic", msg.Topic),
				zap.Int("partition", msg.Partition),
				zap.Int64("offset", msg.Offset),
				zap.Error(err),
			)
		}

		if err := c.reader.CommitMessages(ctx, msg); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			c.logger.Error("kafka commit", zap.Error(err))
		}
	}
}
