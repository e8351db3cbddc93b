package main

import (
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/kailas-cloud/searchsync/internal/config"
	"github.com/kailas-cloud/searchsync/internal/version"
)

var (
	flagEnv    string
	flagConfig string
)

var rootCmd = &cobra.Command{
	Use:          "searchsync",
	Short:        "Keep search indexes in step with the record store",
	Version:      version.String(),
	SilenceUsage: true,
	RunE:         runServe,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		_ = godotenv.Load(".env")
		_ = godotenv.Load("../.env")
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagEnv, "env", "", "environment name (default: $ENV or local)")
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "explicit config file path")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(syncCmd)
	rootCmd.AddCommand(workerCmd)
	rootCmd.AddCommand(mappingCmd)
	rootCmd.AddCommand(truncateCmd)
}

func loadConfig() (config.Config, string, error) {
	env := flagEnv
	if env == "" {
		env = config.GetEnv()
	}
	if flagConfig != "" {
		cfg, err := config.LoadFile(flagConfig)
		return cfg, env, err
	}
	cfg, err := config.Load(env)
	return cfg, env, err
}
