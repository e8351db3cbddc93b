package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	syncuc "github.com/kailas-cloud/searchsync/internal/usecase/sync"
)

var syncCmd = &cobra.Command{
	Use:   "sync [type...]",
	Short: "Rebuild the index from the record store (all types when none given)",
	RunE:  runSync,
}

func runSync(_ *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, "sync")
	if err != nil {
		return err
	}
	defer a.Close()

	if len(args) == 0 {
		results, err := a.sync.SynchronizeAll(ctx)
		logResults(a.logger, results)
		return err
	}

	for _, name := range args {
		res, err := a.sync.SynchronizeType(ctx, name)
		logResults(a.logger, []syncuc.Result{res})
		if err != nil {
			return err
		}
	}
	return nil
}

func logResults(logger *zap.Logger, results []syncuc.Result) {
	for _, r := range results {
		logger.Info("sync finished",
			zap.String("type", r.Type),
			zap.Int("streamed", r.Streamed),
			zap.Int("indexed", r.Indexed),
			zap.Int("failed", r.Failed),
			zap.Int("batches", r.Batches),
			zap.Duration("duration", r.Duration),
		)
	}
}
