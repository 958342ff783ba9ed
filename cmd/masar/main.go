package main

import (
	"context"
	"fmt"
	"os"

	"github.com/masar-hq/masar/engine/infra/postgres"
	"github.com/masar-hq/masar/engine/infra/server"
	"github.com/masar-hq/masar/pkg/config"
	"github.com/masar-hq/masar/pkg/logger"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var debug bool
	cmd := &cobra.Command{
		Use:   "masar",
		Short: "Multi-tenant project scheduling engine",
	}
	cmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
	cmd.AddCommand(serveCmd(cmd.PersistentFlags()), migrateCmd())
	return cmd
}

func newLogger(flags *pflag.FlagSet) logger.Logger {
	cfg := logger.DefaultConfig()
	if debug, err := flags.GetBool("debug"); err == nil && debug {
		cfg.Level = logger.DebugLevel
	}
	return logger.NewLogger(cfg)
}

func serveCmd(flags *pflag.FlagSet) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			log := newLogger(flags)
			return server.New(cfg, log).Run(cmd.Context())
		},
	}
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations and exit",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			ctx := logger.ContextWithLogger(context.Background(), logger.NewLogger(nil))
			return postgres.ApplyMigrations(ctx, cfg.Database.URL)
		},
	}
}
