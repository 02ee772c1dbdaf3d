// Package main implements the filetrack backend: it accepts uploads, assigns
// task ids, simulates processing and answers status queries.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/phrazzld/filetrack/internal/config"
	"github.com/phrazzld/filetrack/internal/platform/logger"
	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:           "filetrack-server",
		Short:         "Upload and status backend for filetrack",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadAppConfig(configPath)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				return err
			}

			appLogger, err := logger.Setup(cfg.Server)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error: failed to set up logger: %v\n", err)
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			app, err := newApplication(cfg, appLogger)
			if err != nil {
				appLogger.Error("failed to initialize application", "error", err)
				return err
			}

			if err := app.Run(ctx); err != nil {
				appLogger.Error("server terminated with error", "error", err)
				return err
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "path to a filetrack.yaml config file")
	cmd.SetContext(context.Background())
	return cmd
}

// loadAppConfig loads configuration from path, or from the default search
// locations and environment when path is empty.
func loadAppConfig(path string) (*config.Config, error) {
	cfg, err := config.LoadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	slog.Info("server configuration loaded",
		"port", cfg.Server.Port,
		"log_level", cfg.Server.LogLevel,
		"store_driver", cfg.Store.Driver,
		"sentry_enabled", cfg.Sentry.DSN != "")
	return cfg, nil
}
