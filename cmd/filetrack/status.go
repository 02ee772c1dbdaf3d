package main

import (
	"fmt"

	"github.com/phrazzld/filetrack/internal/client"
	"github.com/spf13/cobra"
)

func newStatusCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "status TASK_ID",
		Short: "Print the server-side status of a task",
		Long: `Status asks the server once for the status of a task. Ids the server has
never issued are reported as pending.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadClientConfig(flags)
			if err != nil {
				return err
			}
			log := newCommandLogger(cmd.ErrOrStderr(), flags.logLevel)

			c := client.New(cfg.Client.BaseURL, cfg.Client.RequestTimeout, log)
			status, err := c.Status(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("failed to fetch status: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", args[0], status)
			return nil
		},
	}
}
