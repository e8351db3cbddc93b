package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	kafkaTransport "github.com/kailas-cloud/searchsync/internal/transport/kafka"
)

var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "Apply record change events from Kafka. Deploy separately from serve.",
	RunE:  runWorker,
}

func runWorker(_ *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, "worker")
	if err != nil {
		return err
	}
	defer a.Close()

	kc := a.cfg.Kafka
	if len(kc.Brokers) == 0 {
		return fmt.Errorf("worker requires kafka.brokers")
	}

	handler := kafkaTransport.NewHandler(a.store, a.registry, a.logger)
	consumer, err := kafkaTransport.NewConsumer(kafkaTransport.Config{
		Brokers:  kc.Brokers,
		GroupID:  kc.GroupID,
		Topic:    kc.Topic,
		MinBytes: kc.MinBytes,
		MaxBytes: kc.MaxBytes,
	}, handler, a.logger)
	if err != nil {
		return err
	}

	a.logger.Info("Starting Kafka consumer",
		zap.Strings("brokers", kc.Brokers),
		zap.String("group", kc.GroupID),
		zap.String("topic", kc.Topic),
	)
	return consumer.Run(ctx)
}
