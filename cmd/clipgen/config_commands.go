package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"clipgen/internal/config"
)

func newConfigCommand(ctx *commandContext) *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration utilities",
	}
	configCmd.AddCommand(newConfigValidateCommand(ctx))
	configCmd.AddCommand(newConfigInitCommand())
	return configCmd
}

func newConfigInitCommand() *cobra.Command {
	var targetPath string
	var overwrite bool

	cmd := &cobra.Command{
		Use:         "init",
		Short:       "Create a sample configuration file",
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			target, err := initTarget(targetPath)
			if err != nil {
				return err
			}
			if !overwrite {
				_, statErr := os.Stat(target)
				switch {
				case statErr == nil:
					return fmt.Errorf("config file already exists at %s (use --overwrite to replace it)", target)
				case !errors.Is(statErr, fs.ErrNotExist):
					return fmt.Errorf("check config path: %w", statErr)
				}
			}
			if err := config.CreateSample(target); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Wrote sample configuration to %s\n", target)
			fmt.Fprintln(out, "Set paths.output_dir and paths.public_prefix to match the web server before running a batch.")
			return nil
		},
	}

	cmd.Flags().StringVarP(&targetPath, "path", "p", "", "Destination for the configuration file")
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "Overwrite existing configuration if present")
	return cmd
}

func initTarget(flagValue string) (string, error) {
	if target := strings.TrimSpace(flagValue); target != "" {
		expanded, err := config.ExpandPath(target)
		if err != nil {
			return "", fmt.Errorf("resolve config path: %w", err)
		}
		return expanded, nil
	}
	path, err := config.DefaultConfigPath()
	if err != nil {
		return "", fmt.Errorf("determine default config path: %w", err)
	}
	return path, nil
}

func newConfigValidateCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Validate configuration and show the effective settings",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			out := cmd.OutOrStdout()
			source := ctx.configPath
			if !ctx.configSeen {
				source += " (not found; defaults used)"
			}
			fmt.Fprintf(out, "Config path: %s\n", source)
			fmt.Fprint(out, renderTable(
				[]string{"Setting", "Value"},
				effectiveSettings(cfg),
				[]columnAlignment{alignLeft, alignLeft},
			))
			fmt.Fprintln(out, "Configuration valid")
			return nil
		},
	}
}

func effectiveSettings(cfg *config.Config) [][]string {
	blacklist := strconv.Itoa(len(cfg.Pipeline.Blacklist)) + " entries"
	return [][]string{
		{"paths.output_dir", cfg.Paths.OutputDir},
		{"paths.thumbnail_dir", cfg.Paths.ThumbnailDir},
		{"paths.public_prefix", cfg.Paths.PublicPrefix},
		{"paths.mirror_db", cfg.Paths.MirrorDB},
		{"encoder.ffmpeg_binary", cfg.Encoder.FFmpegBinary},
		{"encoder.clip_timeout", cfg.ClipTimeout().String()},
		{"encoder.thumbnail_timeout", cfg.ThumbnailTimeout().String()},
		{"pipeline.batch_sizes", fmt.Sprintf("thumbnails=%d clips=%d", cfg.Pipeline.ThumbnailBatchSize, cfg.Pipeline.ClipBatchSize)},
		{"pipeline.max_clip_duration", cfg.MaxClipDuration().String()},
		{"pipeline.max_file_size_gb", strconv.FormatFloat(cfg.Pipeline.MaxFileSizeGB, 'f', -1, 64)},
		{"pipeline.blacklist", blacklist},
	}
}
