package main

import (
	"context"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	adminuc "github.com/kailas-cloud/searchsync/internal/usecase/admin"
)

var mappingCmd = &cobra.Command{
	Use:   "mapping [type...]",
	Short: "Put index mappings (all types when none given)",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withAdmin(cmd.Context(), "mapping", func(ctx context.Context, svc *adminuc.Service, logger *zap.Logger) error {
			if len(args) == 0 {
				return svc.PutMappings(ctx)
			}
			for _, name := range args {
				if err := svc.PutMapping(ctx, name); err != nil {
					return err
				}
				logger.Info("mapping put", zap.String("type", name))
			}
			return nil
		})
	},
}

var truncateCmd = &cobra.Command{
	Use:   "truncate [index...]",
	Short: "Delete every document of the given indexes (all indexes when none given)",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withAdmin(cmd.Context(), "truncate", func(ctx context.Context, svc *adminuc.Service, logger *zap.Logger) error {
			if len(args) == 0 {
				return svc.TruncateAll(ctx)
			}
			for _, index := range args {
				if err := svc.Truncate(ctx, index); err != nil {
					return err
				}
				logger.Info("index truncated", zap.String("index", index))
			}
			return nil
		})
	},
}

func withAdmin(ctx context.Context, component string, fn func(context.Context, *adminuc.Service, *zap.Logger) error) error {
	if ctx == nil {
		ctx = context.Background()
	}
	a, err := newApp(ctx, component)
	if err != nil {
		return err
	}
	defer a.Close()
	return fn(ctx, adminuc.New(a.engine, a.registry, a.logger), a.logger)
}
