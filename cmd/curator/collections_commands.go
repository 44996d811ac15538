package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"curator/internal/ipc"
	"curator/internal/media"
)

func newCollectionsCommand(ctx *commandContext) *cobra.Command {
	collectionsCmd := &cobra.Command{
		Use:   "collections",
		Short: "Manage library collections",
	}

	collectionsCmd.AddCommand(newCollectionsListCommand(ctx))
	collectionsCmd.AddCommand(newCollectionsCreateCommand(ctx))
	collectionsCmd.AddCommand(newCollectionsDeleteCommand(ctx))

	return collectionsCmd
}

func newCollectionsListCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List collections and their sync rules",
		RunE: func(cmd *cobra.Command, args []string) error {
			stdout := cmd.OutOrStdout()

			// Prefer the daemon so the listing reflects its view, but fall
			// back to asking Emby directly when it is offline.
			var infos []ipc.CollectionInfo
			err := ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.Collections()
				if err != nil {
					return err
				}
				infos = resp.Collections
				return nil
			})
			if err != nil {
				s, cleanup, derr := ctx.directSyncer(false)
				if derr != nil {
					return derr
				}
				defer cleanup()
				collections, lerr := s.ListCollections(cmd.Context())
				if lerr != nil {
					return lerr
				}
				for _, collection := range collections {
					info := ipc.CollectionInfo{
						ID:        string(collection.ID),
						Name:      collection.Name,
						ItemCount: len(collection.ItemIDs),
					}
					if _, parsed, gerr := s.GetCriteria(cmd.Context(), collection.ID); gerr == nil && parsed != nil {
						info.HasCriteria = true
						info.Criteria = parsed.Summary()
					}
					infos = append(infos, info)
				}
			}

			if len(infos) == 0 {
				fmt.Fprintln(stdout, "No collections found")
				return nil
			}
			rows := make([][]string, 0, len(infos))
			for _, info := range infos {
				rows = append(rows, []string{
					info.ID,
					info.Name,
					fmt.Sprintf("%d", info.ItemCount),
					yesNo(info.HasCriteria),
					info.Criteria,
				})
			}
			fmt.Fprintln(stdout, renderTable(
				[]string{"ID", "Name", "Items", "Synced", "Rules"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignRight, alignLeft, alignLeft},
			))
			return nil
		},
	}
}

func newCollectionsCreateCommand(ctx *commandContext) *cobra.Command {
	flags := newCriteriaFlags()

	cmd := &cobra.Command{
		Use:   "create <name>",
		Short: "Create a collection, optionally with sync rules",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, cleanup, err := ctx.directSyncer(false)
			if err != nil {
				return err
			}
			defer cleanup()

			c, err := flags.criteria()
			if err != nil {
				return err
			}
			collection, err := s.CreateCollection(cmd.Context(), args[0], c)
			if err != nil {
				return err
			}
			stdout := cmd.OutOrStdout()
			fmt.Fprintf(stdout, "Created collection %s (%s)\n", collection.Name, collection.ID)
			if c != nil {
				fmt.Fprintf(stdout, "Sync rules: %s\n", c.Summary())
			}
			return nil
		},
	}

	flags.register(cmd)
	return cmd
}

func newCollectionsDeleteCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <collection-id>",
		Short: "Delete a collection",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, cleanup, err := ctx.directSyncer(false)
			if err != nil {
				return err
			}
			defer cleanup()

			if err := s.DeleteCollection(cmd.Context(), media.ItemID(args[0])); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted collection %s\n", args[0])
			return nil
		},
	}
}
