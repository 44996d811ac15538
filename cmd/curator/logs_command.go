package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"curator/internal/logs"
)

func newLogsCommand(ctx *commandContext) *cobra.Command {
	var lines int
	var follow bool

	cmd := &cobra.Command{
		Use:   "logs",
		Short: "Show recent daemon log output",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logPath := filepath.Join(cfg.Paths.LogDir, "curator.log")
			stdout := cmd.OutOrStdout()

			recent, err := logs.Tail(logPath, lines)
			if err != nil {
				return err
			}
			for _, line := range recent {
				fmt.Fprintln(stdout, line)
			}

			if !follow {
				return nil
			}
			return logs.Follow(cmd.Context(), logPath, func(line string) {
				fmt.Fprintln(stdout, line)
			})
		},
	}

	cmd.Flags().IntVar(&lines, "lines", 50, "Number of recent lines to print")
	cmd.Flags().BoolVar(&follow, "follow", false, "Keep printing lines as they are written")
	return cmd
}
