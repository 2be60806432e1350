package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"clipgen/internal/clipstore"
	"clipgen/internal/mirror"
)

func newMirrorCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mirror",
		Short: "Maintain the searchable SQLite mirror of completed clips",
	}
	cmd.AddCommand(newMirrorSyncCommand(ctx))
	cmd.AddCommand(newMirrorListCommand(ctx))
	return cmd
}

func newMirrorSyncCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Copy completed clip records into the mirror",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.clipStore(cmd)
			if err != nil {
				return err
			}
			return ctx.withMirror(cmd, func(m *mirror.Store) error {
				result, err := m.Sync(cmd.Context(), store)
				if err != nil {
					return err
				}
				total, err := m.Count(cmd.Context())
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Scanned %d completed clips: %d inserted, %d already mirrored (%d total)\n",
					result.Scanned, result.Inserted, result.Existing, total)
				return nil
			})
		},
	}
}

func newMirrorListCommand(ctx *commandContext) *cobra.Command {
	var filter mirror.Filter
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "Search mirrored clips",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withMirror(cmd, func(m *mirror.Store) error {
				clips, err := m.GetClips(cmd.Context(), filter)
				if err != nil {
					return err
				}
				if asJSON {
					if clips == nil {
						clips = []clipstore.ClipMetadata{}
					}
					return writeJSON(cmd, clips)
				}
				out := cmd.OutOrStdout()
				if len(clips) == 0 {
					fmt.Fprintln(out, "No mirrored clips match")
					return nil
				}
				rows := make([][]string, 0, len(clips))
				for _, clip := range clips {
					rows = append(rows, []string{
						clip.ID,
						clip.Title,
						clip.Sentence,
						strconv.FormatFloat(clip.Confidence, 'f', 2, 64),
					})
				}
				fmt.Fprint(out, renderTable(
					[]string{"ID", "Title", "Sentence", "Confidence"},
					rows,
					[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight},
				))
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&filter.Query, "query", "q", "", "Case-insensitive text match on sentence, title, or search query")
	cmd.Flags().StringVar(&filter.SourceFile, "source", "", "Exact source file path")
	cmd.Flags().IntVar(&filter.Limit, "limit", 50, "Maximum rows to return (0 for all)")
	cmd.Flags().IntVar(&filter.Offset, "offset", 0, "Rows to skip (requires --limit)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit clips as JSON")
	return cmd
}
