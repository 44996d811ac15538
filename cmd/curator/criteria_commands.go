package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"curator/internal/criteria"
	"curator/internal/media"
)

// criteriaFlags collects rule flags shared by `criteria set` and
// `collections create`. Bound flags only become constraints when the user
// actually passed them, so zero values never sneak into the encoded rules.
type criteriaFlags struct {
	cmd *cobra.Command

	genres   []string
	tags     []string
	keywords []string

	minYear   int
	maxYear   int
	minRating float64
	maxRating float64
	minBScore float64
}

func newCriteriaFlags() *criteriaFlags {
	return &criteriaFlags{}
}

func (f *criteriaFlags) register(cmd *cobra.Command) {
	f.cmd = cmd
	cmd.Flags().StringSliceVar(&f.genres, "genre", nil, "Require a genre (repeatable)")
	cmd.Flags().StringSliceVar(&f.tags, "tag", nil, "Require a library tag (repeatable)")
	cmd.Flags().StringSliceVar(&f.keywords, "keyword", nil, "Require a TMDB keyword (repeatable)")
	cmd.Flags().IntVar(&f.minYear, "min-year", 0, "Earliest release year")
	cmd.Flags().IntVar(&f.maxYear, "max-year", 0, "Latest release year")
	cmd.Flags().Float64Var(&f.minRating, "min-rating", 0, "Minimum community rating (0-10)")
	cmd.Flags().Float64Var(&f.maxRating, "max-rating", 0, "Maximum community rating (0-10)")
	cmd.Flags().Float64Var(&f.minBScore, "min-b-score", 0, "Minimum b-movie score (0-1)")
}

func (f *criteriaFlags) criteria() (*criteria.Criteria, error) {
	if f.cmd == nil {
		return nil, nil
	}
	flags := f.cmd.Flags()

	c := criteria.Criteria{
		Genres:   f.genres,
		Tags:     f.tags,
		Keywords: f.keywords,
	}
	if flags.Changed("min-year") {
		v := f.minYear
		c.MinYear = &v
	}
	if flags.Changed("max-year") {
		v := f.maxYear
		c.MaxYear = &v
	}
	if flags.Changed("min-rating") {
		v := f.minRating
		c.MinRating = &v
	}
	if flags.Changed("max-rating") {
		v := f.maxRating
		c.MaxRating = &v
	}
	if flags.Changed("min-b-score") {
		v := f.minBScore
		c.MinAffinity = &v
	}

	c.Normalize()
	if c.IsEmpty() {
		return nil, nil
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func newCriteriaCommand(ctx *commandContext) *cobra.Command {
	criteriaCmd := &cobra.Command{
		Use:   "criteria",
		Short: "Inspect and edit collection sync rules",
	}

	criteriaCmd.AddCommand(newCriteriaGetCommand(ctx))
	criteriaCmd.AddCommand(newCriteriaSetCommand(ctx))
	criteriaCmd.AddCommand(newCriteriaClearCommand(ctx))

	return criteriaCmd
}

func newCriteriaGetCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "get <collection-id>",
		Short: "Show a collection's sync rules",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, cleanup, err := ctx.directSyncer(false)
			if err != nil {
				return err
			}
			defer cleanup()

			collection, parsed, err := s.GetCriteria(cmd.Context(), media.ItemID(args[0]))
			if err != nil {
				return err
			}
			stdout := cmd.OutOrStdout()
			fmt.Fprintf(stdout, "Collection: %s (%s)\n", collection.Name, collection.ID)
			if parsed == nil {
				fmt.Fprintln(stdout, "No sync rules configured")
				return nil
			}
			fmt.Fprintf(stdout, "Rules: %s\n", parsed.Summary())
			if parsed.NeedsEnrichment() {
				fmt.Fprintln(stdout, "Requires TMDB enrichment")
			}
			return nil
		},
	}
}

func newCriteriaSetCommand(ctx *commandContext) *cobra.Command {
	flags := newCriteriaFlags()

	cmd := &cobra.Command{
		Use:   "set <collection-id>",
		Short: "Replace a collection's sync rules",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := flags.criteria()
			if err != nil {
				return err
			}
			if c == nil {
				return fmt.Errorf("no rules given; pass at least one constraint flag")
			}

			s, cleanup, err := ctx.directSyncer(false)
			if err != nil {
				return err
			}
			defer cleanup()

			if err := s.SetCriteria(cmd.Context(), media.ItemID(args[0]), *c); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Sync rules set: %s\n", c.Summary())
			return nil
		},
	}

	flags.register(cmd)
	return cmd
}

func newCriteriaClearCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "clear <collection-id>",
		Short: "Remove a collection's sync rules",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, cleanup, err := ctx.directSyncer(false)
			if err != nil {
				return err
			}
			defer cleanup()

			if err := s.ClearCriteria(cmd.Context(), media.ItemID(args[0])); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Sync rules cleared for %s\n", args[0])
			return nil
		},
	}
}
