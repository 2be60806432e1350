package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"clipgen/internal/clipstore"
	"clipgen/internal/mirror"
	"clipgen/internal/pipeline"
)

type stageSummary struct {
	Succeeded  int   `json:"succeeded"`
	Failed     int   `json:"failed"`
	Skipped    int   `json:"skipped"`
	DurationMS int64 `json:"durationMs"`
}

type batchSummary struct {
	BatchID           string       `json:"batchId"`
	JSONCreated       int          `json:"jsonCreated"`
	ThumbnailsCreated int          `json:"thumbnailsCreated"`
	ClipsCreated      int          `json:"clipsCreated"`
	Metadata          stageSummary `json:"metadata"`
	Thumbnails        stageSummary `json:"thumbnails"`
	Clips             stageSummary `json:"clips"`
	TotalMS           int64        `json:"totalMs"`
	ClipIDs           []string     `json:"clipIds"`
}

func newRunCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool
	var syncMirror bool

	cmd := &cobra.Command{
		Use:   "run <requests.json|->",
		Short: "Run one clip batch from a JSON array of span requests",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			requests, err := loadRequests(cmd, args[0])
			if err != nil {
				return err
			}
			p, err := ctx.pipeline(cmd)
			if err != nil {
				return err
			}
			result, err := p.RunBatch(cmd.Context(), requests)
			if errors.Is(err, pipeline.ErrBatchLocked) {
				return fmt.Errorf("%w; retry once it finishes", err)
			}
			if err != nil {
				return err
			}

			summary := summarizeBatch(result)
			if syncMirror {
				if err := ctx.withMirror(cmd, func(m *mirror.Store) error {
					store, err := ctx.clipStore(cmd)
					if err != nil {
						return err
					}
					_, err = m.Sync(cmd.Context(), store)
					return err
				}); err != nil {
					return fmt.Errorf("mirror sync: %w", err)
				}
			}

			if asJSON {
				return writeJSON(cmd, summary)
			}
			renderBatchSummary(cmd, summary)
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit the batch summary as JSON")
	cmd.Flags().BoolVar(&syncMirror, "sync-mirror", false, "Copy completed clips into the mirror database afterwards")
	return cmd
}

func loadRequests(cmd *cobra.Command, path string) ([]clipstore.Request, error) {
	data, err := readAllInput(cmd, path)
	if err != nil {
		return nil, fmt.Errorf("read requests: %w", err)
	}
	var requests []clipstore.Request
	if err := json.Unmarshal(data, &requests); err != nil {
		return nil, fmt.Errorf("parse requests: %w", err)
	}
	return requests, nil
}

func summarizeBatch(result pipeline.BatchResult) batchSummary {
	summary := batchSummary{
		BatchID:           result.BatchID,
		JSONCreated:       result.Metadata.Succeeded,
		ThumbnailsCreated: result.Thumbnails.Succeeded,
		ClipsCreated:      result.Clips.Succeeded,
		Metadata:          stageOf(result.Metadata, result.Timings.Metadata),
		Thumbnails:        stageOf(result.Thumbnails, result.Timings.Thumbnails),
		Clips:             stageOf(result.Clips, result.Timings.Clips),
		TotalMS:           result.Timings.Total.Milliseconds(),
		ClipIDs:           make([]string, 0, len(result.Records)),
	}
	for _, record := range result.Records {
		summary.ClipIDs = append(summary.ClipIDs, record.ID)
	}
	return summary
}

func stageOf(counts pipeline.StageCounts, elapsed time.Duration) stageSummary {
	return stageSummary{
		Succeeded:  counts.Succeeded,
		Failed:     counts.Failed,
		Skipped:    counts.Skipped,
		DurationMS: elapsed.Milliseconds(),
	}
}

func renderBatchSummary(cmd *cobra.Command, summary batchSummary) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Batch %s\n", summary.BatchID)

	rows := [][]string{
		stageRow("metadata", summary.Metadata),
		stageRow("thumbnails", summary.Thumbnails),
		stageRow("clips", summary.Clips),
	}
	fmt.Fprint(out, renderTable(
		[]string{"Stage", "Succeeded", "Failed", "Skipped", "Duration"},
		rows,
		[]columnAlignment{alignLeft, alignRight, alignRight, alignRight, alignRight},
	))
	fmt.Fprintf(out, "Total: %s\n", formatMillis(summary.TotalMS))
	if len(summary.ClipIDs) > 0 {
		fmt.Fprintf(out, "Clips: %s\n", strings.Join(summary.ClipIDs, ", "))
	}
}

func stageRow(name string, stage stageSummary) []string {
	return []string{
		name,
		strconv.Itoa(stage.Succeeded),
		strconv.Itoa(stage.Failed),
		strconv.Itoa(stage.Skipped),
		formatMillis(stage.DurationMS),
	}
}

func formatMillis(ms int64) string {
	return (time.Duration(ms) * time.Millisecond).String()
}
