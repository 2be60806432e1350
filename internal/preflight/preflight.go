package preflight

import (
	"context"
	"path/filepath"
	"strings"

	"clipgen/internal/config"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// RunAll executes the directory and encoder checks for the given config.
func RunAll(ctx context.Context, cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}

	results := []Result{
		CheckDirectoryAccess("Output directory", cfg.Paths.OutputDir),
		CheckDirectoryAccess("Thumbnail directory", cfg.Paths.ThumbnailDir),
	}
	if strings.TrimSpace(cfg.Paths.LogDir) != "" {
		results = append(results, CheckDirectoryAccess("Log directory", cfg.Paths.LogDir))
	}
	if db := strings.TrimSpace(cfg.Paths.MirrorDB); db != "" {
		results = append(results, CheckDirectoryAccess("Mirror directory", filepath.Dir(db)))
	}
	results = append(results, CheckEncoder(ctx, cfg.Encoder.FFmpegBinary))
	return results
}
