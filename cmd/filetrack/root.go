package main

import (
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/phrazzld/filetrack/internal/client"
	"github.com/phrazzld/filetrack/internal/config"
	"github.com/phrazzld/filetrack/internal/platform/logger"
	"github.com/phrazzld/filetrack/internal/tracker"
	"github.com/phrazzld/filetrack/internal/tui"
	"github.com/spf13/cobra"
)

// globalFlags are shared by every subcommand.
type globalFlags struct {
	configPath   string
	server       string
	pollInterval time.Duration
	logLevel     string
}

func newRootCmd() *cobra.Command {
	flags := &globalFlags{}

	cmd := &cobra.Command{
		Use:   "filetrack",
		Short: "Upload files and follow their processing status",
		Long: `filetrack uploads PDF and image files to a filetrack server and polls each
upload until processing completes or fails. Without a subcommand it starts
an interactive terminal UI.`,
		Version:       "0.1.0",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadClientConfig(flags)
			if err != nil {
				return err
			}

			// The UI owns the terminal, so logs are dropped.
			notify, changes := tui.ChangeFeed()
			t := newTracker(cfg, logger.Discard(), tracker.WithOnChange(notify))
			return tui.Run(t, changes)
		},
	}

	pf := cmd.PersistentFlags()
	pf.StringVarP(&flags.configPath, "config", "c", "", "path to a filetrack.yaml config file")
	pf.StringVarP(&flags.server, "server", "s", "", "server base URL (overrides config)")
	pf.DurationVar(&flags.pollInterval, "poll-interval", 0, "status poll interval (overrides config)")
	pf.StringVar(&flags.logLevel, "log-level", "warn", "log level for subcommands: debug, info, warn or error")

	cmd.AddCommand(newUploadCmd(flags))
	cmd.AddCommand(newStatusCmd(flags))
	return cmd
}

// loadClientConfig loads configuration and applies flag overrides.
func loadClientConfig(flags *globalFlags) (*config.Config, error) {
	cfg, err := config.LoadFile(flags.configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	if flags.server != "" {
		cfg.Client.BaseURL = flags.server
	}
	if flags.pollInterval > 0 {
		cfg.Poller.Interval = flags.pollInterval
	}
	if err := config.Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// newCommandLogger returns a text logger on w for non-interactive commands.
func newCommandLogger(w io.Writer, level string) *slog.Logger {
	return logger.New(w, config.ServerConfig{LogLevel: level, LogFormat: "text"})
}

// newTracker builds a tracker from cfg. Extra options are applied last.
func newTracker(cfg *config.Config, log *slog.Logger, opts ...tracker.Option) *tracker.Tracker {
	c := client.New(cfg.Client.BaseURL, cfg.Client.RequestTimeout, log)

	base := []tracker.Option{
		tracker.WithPollInterval(cfg.Poller.Interval),
		tracker.WithRetryBudget(cfg.Poller.RetryBudget),
		tracker.WithMaxFileSize(cfg.Upload.MaxFileBytes),
		tracker.WithLogger(log),
	}
	return tracker.New(c, append(base, opts...)...)
}
