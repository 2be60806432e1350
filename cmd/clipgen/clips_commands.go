package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"clipgen/internal/clipstore"
)

func newClipsCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clips",
		Short: "Inspect and manage clip records",
	}
	cmd.AddCommand(newClipsListCommand(ctx))
	cmd.AddCommand(newClipsShowCommand(ctx))
	cmd.AddCommand(newClipsDeleteCommand(ctx))
	return cmd
}

func newClipsListCommand(ctx *commandContext) *cobra.Command {
	var tag string
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List clip records, optionally filtered by stage tag",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.clipStore(cmd)
			if err != nil {
				return err
			}
			var records []clipstore.ClipMetadata
			if tag = strings.TrimSpace(tag); tag != "" {
				records = store.FilterByTag(tag)
			} else {
				records = store.LoadAll()
			}

			if asJSON {
				if records == nil {
					records = []clipstore.ClipMetadata{}
				}
				return writeJSON(cmd, records)
			}

			out := cmd.OutOrStdout()
			if len(records) == 0 {
				fmt.Fprintln(out, "No clips found")
				return nil
			}
			colorize := shouldColorize(out)
			rows := make([][]string, 0, len(records))
			for _, record := range records {
				rows = append(rows, []string{
					record.ID,
					colorizeStage(record.Stage(), colorize),
					record.Title,
					record.StartTime + " - " + record.EndTime,
					record.Duration,
				})
			}
			fmt.Fprint(out, renderTable(
				[]string{"ID", "Stage", "Title", "Span", "Duration"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignRight},
			))
			return nil
		},
	}
	cmd.Flags().StringVar(&tag, "tag", "", "Only list clips carrying this tag (stage-1-json, stage-2-thumbnail, completed)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit records as JSON")
	return cmd
}

func newClipsShowCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show one clip record and the state of its files",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			store, err := ctx.clipStore(cmd)
			if err != nil {
				return err
			}
			record, err := store.Get(args[0])
			if errors.Is(err, clipstore.ErrNotFound) {
				return fmt.Errorf("clip %s not found", args[0])
			}
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd, record)
			}

			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)
			fmt.Fprintf(out, "ID:        %s\n", record.ID)
			fmt.Fprintf(out, "Title:     %s\n", record.Title)
			fmt.Fprintf(out, "Stage:     %s\n", colorizeStage(record.Stage(), colorize))
			fmt.Fprintf(out, "Source:    %s\n", record.SourceFile)
			fmt.Fprintf(out, "Span:      %s - %s (%ss)\n", record.StartTime, record.EndTime, record.Duration)
			fmt.Fprintf(out, "Sentence:  %s\n", record.Sentence)
			if record.TranslatedText != "" {
				fmt.Fprintf(out, "Translate: %s\n", record.TranslatedText)
			}
			fmt.Fprintf(out, "Created:   %s (%s)\n", record.CreatedAt.Format("2006-01-02 15:04:05"), humanize.Time(record.CreatedAt))
			fmt.Fprintf(out, "Clip:      %s\n", describeFile(record.ClipPath, cfg.LocalPath(record.ClipPath), colorize))
			if record.ThumbnailPath != "" {
				fmt.Fprintf(out, "Thumbnail: %s\n", describeFile(record.ThumbnailPath, cfg.LocalPath(record.ThumbnailPath), colorize))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit the record as JSON")
	return cmd
}

func describeFile(public, local string, colorize bool) string {
	if local == "" {
		return public
	}
	info, err := os.Stat(local)
	if err != nil || !info.Mode().IsRegular() {
		return public + " " + colorizeStatus(false, "[missing]", colorize)
	}
	return fmt.Sprintf("%s %s", public, colorizeStatus(true, "["+humanize.IBytes(uint64(info.Size()))+"]", colorize))
}

func newClipsDeleteCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a clip record and its media files",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.clipStore(cmd)
			if err != nil {
				return err
			}
			if _, err := store.Get(args[0]); err != nil {
				if errors.Is(err, clipstore.ErrNotFound) {
					return fmt.Errorf("clip %s not found", args[0])
				}
				return err
			}
			if !store.Delete(args[0]) {
				return fmt.Errorf("delete clip %s failed; see logs", args[0])
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted clip %s\n", args[0])
			return nil
		},
	}
}
