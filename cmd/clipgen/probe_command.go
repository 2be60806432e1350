package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"clipgen/internal/deps"
	"clipgen/internal/ffmpeg"
)

func newProbeCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "probe <file>",
		Short: "Validate a source file and list its streams",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			validator, err := ctx.validator()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			path := args[0]

			result := validator.Validate(path)
			if !result.OK() {
				return result.Err
			}
			colorize := shouldColorize(out)
			fmt.Fprintf(out, "File:      %s\n", path)
			fmt.Fprintf(out, "Size:      %s\n", humanize.IBytes(uint64(result.SizeBytes)))
			if entry, ok := validator.BlacklistMatch(path); ok {
				fmt.Fprintf(out, "Blacklist: %s\n", colorizeStatus(false, "matches "+strconv.Quote(entry), colorize))
			}
			if soft := validator.CheckSoftLimit(path, cfg.MaxFileSizeBytes()); !soft.OK() {
				fmt.Fprintf(out, "Limit:     %s\n", colorizeStatus(false, soft.Err.Error(), colorize))
			}

			ffprobe := deps.ResolveFFprobe(cfg.Encoder.FFmpegBinary, cfg.Encoder.FFprobeBinary)
			if !ffprobe.Available {
				return fmt.Errorf("ffprobe unavailable: %s", ffprobe.Detail)
			}
			probe, err := ffmpeg.Probe(cmd.Context(), ffprobe.Path, path)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "Container: %s\n", probe.Format.FormatName)
			fmt.Fprintf(out, "Duration:  %s\n", probe.Duration().Round(time.Millisecond))

			rows := make([][]string, 0, len(probe.Streams))
			for _, stream := range probe.Streams {
				detail := ""
				switch stream.CodecType {
				case "video":
					detail = fmt.Sprintf("%dx%d", stream.Width, stream.Height)
				case "audio":
					detail = fmt.Sprintf("%d ch", stream.Channels)
				}
				rows = append(rows, []string{
					strconv.Itoa(stream.Index),
					stream.CodecType,
					stream.CodecName,
					detail,
					stream.Tags.Language,
				})
			}
			if len(rows) > 0 {
				fmt.Fprint(out, renderTable(
					[]string{"#", "Type", "Codec", "Detail", "Language"},
					rows,
					[]columnAlignment{alignRight, alignLeft, alignLeft, alignLeft, alignLeft},
				))
			}
			return nil
		},
	}
}
