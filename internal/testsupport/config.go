package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"clipgen/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// Timeouts are shortened so supervised stubs fail fast.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.OutputDir = filepath.Join(base, "clips")
	cfgVal.Paths.ThumbnailDir = filepath.Join(base, "clips", "thumbnails")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Paths.MirrorDB = filepath.Join(base, "mirror.db")
	cfgVal.Encoder.ClipTimeoutMS = 5_000
	cfgVal.Encoder.ThumbnailTimeoutMS = 5_000
	cfgVal.Encoder.StallThresholdSeconds = 2
	cfgVal.Encoder.StallCheckIntervalSeconds = 1

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	if err := builder.cfg.EnsureDirectories(); err != nil {
		t.Fatalf("ensure directories: %v", err)
	}
	return builder.cfg
}

// WithBlacklist replaces the configured blacklist entries.
func WithBlacklist(entries ...string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Pipeline.Blacklist = append([]string(nil), entries...)
	}
}

// WithFFmpeg points the encoder at the given binary.
func WithFFmpeg(path string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Encoder.FFmpegBinary = path
	}
}

// WithBatchSizes overrides the stage 2 and stage 3 chunk sizes.
func WithBatchSizes(thumbnails, clips int) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Pipeline.ThumbnailBatchSize = thumbnails
		b.cfg.Pipeline.ClipBatchSize = clips
	}
}

// WithStubbedBinaries writes stub executables for the provided names and
// prepends them to PATH. If names is empty, ffmpeg and ffprobe are stubbed.
func WithStubbedBinaries(names ...string) ConfigOption {
	return func(b *configBuilder) {
		if len(names) == 0 {
			names = []string{"ffmpeg", "ffprobe"}
		}
		binDir := filepath.Join(b.baseDir, "bin")
		for _, name := range names {
			WriteScript(b.t, binDir, name, "exit 0\n")
		}

		oldPath := os.Getenv("PATH")
		if err := os.Setenv("PATH", binDir+string(os.PathListSeparator)+oldPath); err != nil {
			b.t.Fatalf("set PATH: %v", err)
		}
		b.t.Cleanup(func() {
			_ = os.Setenv("PATH", oldPath)
		})
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.OutputDir)
}
