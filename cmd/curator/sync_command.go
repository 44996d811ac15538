package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"curator/internal/history"
	"curator/internal/ipc"
	"curator/internal/media"
	"curator/internal/syncer"
)

func newSyncCommand(ctx *commandContext) *cobra.Command {
	var direct bool

	cmd := &cobra.Command{
		Use:   "sync [collection-id]",
		Short: "Run a sync pass over all collections, or a single one",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			collectionID := ""
			if len(args) == 1 {
				collectionID = args[0]
			}
			stdout := cmd.OutOrStdout()

			if !direct {
				err := ctx.withClient(func(client *ipc.Client) error {
					var resp *ipc.SyncResponse
					var err error
					if collectionID == "" {
						resp, err = client.SyncAll()
					} else {
						resp, err = client.SyncCollection(collectionID)
					}
					if err != nil {
						return err
					}
					printSyncResults(stdout, resp.RunID, resp.Collections, shouldColorize(stdout))
					return nil
				})
				if err == nil {
					return nil
				}
				fmt.Fprintf(stdout, "Daemon unavailable (%v); running one-shot sync\n", err)
			}

			s, cleanup, err := ctx.directSyncer(true)
			if err != nil {
				return err
			}
			defer cleanup()

			var outcome *syncer.Outcome
			if collectionID == "" {
				outcome, err = s.SyncAll(cmd.Context(), history.TriggerManual)
			} else {
				outcome, err = s.SyncCollection(cmd.Context(), history.TriggerManual, media.ItemID(collectionID))
			}
			if err != nil {
				return err
			}

			runID := ""
			if outcome.Run != nil {
				runID = outcome.Run.ID
			}
			results := make([]ipc.CollectionResult, 0, len(outcome.Collections))
			for _, result := range outcome.Collections {
				results = append(results, ipc.CollectionResult{
					CollectionID:   result.CollectionID,
					CollectionName: result.CollectionName,
					Status:         string(result.Status),
					Matched:        result.Matched,
					Added:          result.Added,
					Removed:        result.Removed,
					ErrorMessage:   result.ErrorMessage,
				})
			}
			printSyncResults(stdout, runID, results, shouldColorize(stdout))
			return nil
		},
	}

	cmd.Flags().BoolVar(&direct, "direct", false, "Sync without the daemon, talking to Emby directly")
	return cmd
}

func printSyncResults(out io.Writer, runID string, results []ipc.CollectionResult, colorize bool) {
	if runID != "" {
		fmt.Fprintf(out, "Run %s\n", runID)
	}
	if len(results) == 0 {
		fmt.Fprintln(out, "No collections with sync rules")
		return
	}

	rows := make([][]string, 0, len(results))
	added, removed := 0, 0
	for _, result := range results {
		rows = append(rows, []string{
			result.CollectionName,
			renderStatus(result.Status, colorize),
			fmt.Sprintf("%d", result.Matched),
			fmt.Sprintf("%d", result.Added),
			fmt.Sprintf("%d", result.Removed),
			result.ErrorMessage,
		})
		added += result.Added
		removed += result.Removed
	}
	fmt.Fprintln(out, renderTable(
		[]string{"Collection", "Status", "Matched", "Added", "Removed", "Error"},
		rows,
		[]columnAlignment{alignLeft, alignLeft, alignRight, alignRight, alignRight, alignLeft},
	))
	fmt.Fprintf(out, "%d added, %d removed across %d collections\n", added, removed, len(results))
}
