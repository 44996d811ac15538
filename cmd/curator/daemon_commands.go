package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"curator/internal/ipc"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show daemon status and the most recent sync run",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				status, err := client.Status()
				if err != nil {
					return err
				}

				stdout := cmd.OutOrStdout()
				colorize := shouldColorize(stdout)

				fmt.Fprintf(stdout, "Running:      %s\n", yesNo(status.Running))
				if status.Running {
					fmt.Fprintf(stdout, "PID:          %d\n", status.PID)
				}
				fmt.Fprintf(stdout, "History DB:   %s\n", status.HistoryDBPath)
				fmt.Fprintf(stdout, "Lock file:    %s\n", status.LockPath)

				if status.LastRun == nil {
					fmt.Fprintln(stdout, "Last run:     none recorded")
					return nil
				}
				run := status.LastRun
				fmt.Fprintf(stdout, "Last run:     %s (%s, %s)\n", run.ID, run.Trigger, renderStatus(run.Status, colorize))
				fmt.Fprintf(stdout, "  Started:    %s\n", run.StartedAt)
				if run.FinishedAt != "" {
					fmt.Fprintf(stdout, "  Finished:   %s\n", run.FinishedAt)
				}
				fmt.Fprintf(stdout, "  Collections: %d (%d failed)\n", run.CollectionsTotal, run.CollectionsFailed)
				fmt.Fprintf(stdout, "  Items:      %d added, %d removed\n", run.ItemsAdded, run.ItemsRemoved)
				if run.ErrorMessage != "" {
					fmt.Fprintf(stdout, "  Error:      %s\n", run.ErrorMessage)
				}
				return nil
			})
		},
	}
}

func newStopCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "stop",
		Short: "Stop the curator daemon",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.Stop()
				if err != nil {
					return err
				}
				if resp.Stopped {
					fmt.Fprintln(cmd.OutOrStdout(), "Daemon stopped")
				} else {
					fmt.Fprintln(cmd.OutOrStdout(), "Stop request sent")
				}
				return nil
			})
		},
	}
}

func newTestNotifyCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "test-notify",
		Short: "Send a test notification",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.TestNotification()
				if err != nil {
					return err
				}
				switch {
				case resp.Message != "":
					fmt.Fprintln(cmd.OutOrStdout(), resp.Message)
				case resp.Sent:
					fmt.Fprintln(cmd.OutOrStdout(), "Test notification sent")
				default:
					fmt.Fprintln(cmd.OutOrStdout(), "Notification not sent")
				}
				return nil
			})
		},
	}
}
