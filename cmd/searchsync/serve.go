package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	chiTransport "github.com/kailas-cloud/searchsync/internal/transport/chi"
	adminuc "github.com/kailas-cloud/searchsync/internal/usecase/admin"
	healthuc "github.com/kailas-cloud/searchsync/internal/usecase/health"
	searchuc "github.com/kailas-cloud/searchsync/internal/usecase/search"
)

var flagPutMappings bool

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API (search, sync, records, admin)",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().BoolVar(&flagPutMappings, "put-mappings", true, "put index mappings before serving")
}

func runServe(_ *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, "api")
	if err != nil {
		return err
	}
	defer a.Close()
	logger := a.logger

	adminSvc := adminuc.New(a.engine, a.registry, logger)
	if flagPutMappings {
		if err := adminSvc.PutMappings(ctx); err != nil {
			logger.Error("Failed to put mappings", zap.Error(err))
		}
	}

	searchSvc := searchuc.New(a.engine, a.store, a.registry, logger).
		WithDefaultSize(a.cfg.Index.DefaultPageSize).
		WithMaxSize(a.cfg.Index.MaxPageSize).
		WithMaxConcurrency(a.cfg.Index.MaxLookupConcurrency)
	healthSvc := healthuc.New(a.engine, a.store)

	server := chiTransport.NewServer(searchSvc, a.sync, a.store, adminSvc, healthSvc, a.registry, logger)

	addr := fmt.Sprintf(":%d", a.cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      server.Router(a.cfg.Auth.APIKeys),
		ReadTimeout:  time.Duration(a.cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(a.cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("Received shutdown signal")
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(a.cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
	return nil
}
