package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"curator/internal/ipc"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history [run-id]",
		Short: "Show recent sync runs, or the details of one run",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			stdout := cmd.OutOrStdout()
			colorize := shouldColorize(stdout)

			return ctx.withClient(func(client *ipc.Client) error {
				if len(args) == 1 {
					resp, err := client.RunCollections(args[0])
					if err != nil {
						return err
					}
					if len(resp.Collections) == 0 {
						fmt.Fprintln(stdout, "No collection results recorded for this run")
						return nil
					}
					printSyncResults(stdout, args[0], resp.Collections, colorize)
					return nil
				}

				resp, err := client.History(limit)
				if err != nil {
					return err
				}
				if len(resp.Runs) == 0 {
					fmt.Fprintln(stdout, "No sync runs recorded")
					return nil
				}
				rows := make([][]string, 0, len(resp.Runs))
				for _, run := range resp.Runs {
					rows = append(rows, []string{
						run.ID,
						run.Trigger,
						renderStatus(run.Status, colorize),
						run.StartedAt,
						fmt.Sprintf("%d", run.CollectionsTotal),
						fmt.Sprintf("%d", run.ItemsAdded),
						fmt.Sprintf("%d", run.ItemsRemoved),
					})
				}
				fmt.Fprintln(stdout, renderTable(
					[]string{"Run", "Trigger", "Status", "Started", "Collections", "Added", "Removed"},
					rows,
					[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignRight, alignRight, alignRight},
				))
				return nil
			})
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum number of runs to list")
	return cmd
}
