package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/pelletier/go-toml/v2"

	"clipgen/internal/config"
)

func TestLoadDefaultConfigExpandsPaths(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	t.Chdir(t.TempDir())

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved == "" {
		t.Fatal("expected resolved path")
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}

	wantOutput := filepath.Join(tempHome, ".local", "share", "clipgen", "clips")
	if cfg.Paths.OutputDir != wantOutput {
		t.Fatalf("unexpected output dir: got %q want %q", cfg.Paths.OutputDir, wantOutput)
	}
	if cfg.Paths.ThumbnailDir != filepath.Join(wantOutput, "thumbnails") {
		t.Fatalf("unexpected thumbnail dir: %q", cfg.Paths.ThumbnailDir)
	}
	if cfg.Pipeline.MaxFileSizeGB != 10 {
		t.Fatalf("unexpected max file size: %v", cfg.Pipeline.MaxFileSizeGB)
	}
	if cfg.MaxClipDuration() != 300*time.Second {
		t.Fatalf("unexpected max clip duration: %v", cfg.MaxClipDuration())
	}
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories failed: %v", err)
	}
	for _, dir := range []string{cfg.Paths.OutputDir, cfg.Paths.ThumbnailDir, cfg.Paths.LogDir} {
		info, err := os.Stat(dir)
		if err != nil {
			t.Fatalf("expected directory %q to exist: %v", dir, err)
		}
		if !info.IsDir() {
			t.Fatalf("expected %q to be directory", dir)
		}
	}
}

func TestLoadCustomPath(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "clipgen.toml")

	type payload struct {
		Paths struct {
			OutputDir    string `toml:"output_dir"`
			PublicPrefix string `toml:"public_prefix"`
		} `toml:"paths"`
		Pipeline struct {
			ClipBatchSize int      `toml:"clip_batch_size"`
			Blacklist     []string `toml:"blacklist"`
		} `toml:"pipeline"`
		Clip struct {
			Extension string `toml:"extension"`
		} `toml:"clip"`
	}
	custom := payload{}
	custom.Paths.OutputDir = filepath.Join(tempDir, "out")
	custom.Paths.PublicPrefix = "/media/"
	custom.Pipeline.ClipBatchSize = 1
	custom.Pipeline.Blacklist = []string{" bad.mkv ", ""}
	custom.Clip.Extension = ".MP4"

	data, err := toml.Marshal(custom)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists || resolved != configPath {
		t.Fatalf("expected custom path to be used, got %q exists=%v", resolved, exists)
	}
	if cfg.Pipeline.ClipBatchSize != 1 {
		t.Fatalf("unexpected clip batch size: %d", cfg.Pipeline.ClipBatchSize)
	}
	if len(cfg.Pipeline.Blacklist) != 1 || cfg.Pipeline.Blacklist[0] != "bad.mkv" {
		t.Fatalf("unexpected blacklist: %#v", cfg.Pipeline.Blacklist)
	}
	if cfg.Clip.Extension != "mp4" {
		t.Fatalf("expected normalized extension, got %q", cfg.Clip.Extension)
	}
	if got := cfg.ClipPublicPath("abc"); got != "/media/abc.mp4" {
		t.Fatalf("unexpected clip public path: %q", got)
	}
	if got := cfg.ThumbnailPublicPath("abc"); got != "/media/thumbnails/abc.jpg" {
		t.Fatalf("unexpected thumbnail public path: %q", got)
	}
	if got := cfg.ClipFilePath("abc"); got != filepath.Join(tempDir, "out", "abc.mp4") {
		t.Fatalf("unexpected clip file path: %q", got)
	}
	if got := cfg.LocalPath("/media/thumbnails/abc.jpg"); got != cfg.ThumbnailFilePath("abc") {
		t.Fatalf("unexpected thumbnail local path: %q", got)
	}
	if got := cfg.LocalPath("/media/abc.mp4"); got != cfg.ClipFilePath("abc") {
		t.Fatalf("unexpected clip local path: %q", got)
	}
	if got := cfg.LocalPath("/elsewhere/abc.mp4"); got != "" {
		t.Fatalf("expected empty path outside prefix, got %q", got)
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Chdir(t.TempDir())
	t.Setenv("MAX_FILE_SIZE_GB", "2.5")
	t.Setenv("THUMBNAIL_BATCH_SIZE", "1")
	t.Setenv("CLIP_TIMEOUT_MS", "60000")
	t.Setenv("FFMPEG_PATH", "/opt/ffmpeg/bin/ffmpeg")

	cfg, _, _, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Pipeline.MaxFileSizeGB != 2.5 {
		t.Fatalf("unexpected max file size: %v", cfg.Pipeline.MaxFileSizeGB)
	}
	if cfg.MaxFileSizeBytes() != int64(2.5*1024*1024*1024) {
		t.Fatalf("unexpected max file size bytes: %d", cfg.MaxFileSizeBytes())
	}
	if cfg.Pipeline.ThumbnailBatchSize != 1 {
		t.Fatalf("unexpected thumbnail batch size: %d", cfg.Pipeline.ThumbnailBatchSize)
	}
	if cfg.ClipTimeout() != time.Minute {
		t.Fatalf("unexpected clip timeout: %v", cfg.ClipTimeout())
	}
	if cfg.Encoder.FFmpegBinary != "/opt/ffmpeg/bin/ffmpeg" {
		t.Fatalf("unexpected ffmpeg binary: %q", cfg.Encoder.FFmpegBinary)
	}
}

func TestEnvOverrideRejectsGarbage(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Chdir(t.TempDir())
	t.Setenv("CLIP_BATCH_SIZE", "two")

	if _, _, _, err := config.Load(""); err == nil || !strings.Contains(err.Error(), "CLIP_BATCH_SIZE") {
		t.Fatalf("expected CLIP_BATCH_SIZE error, got %v", err)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.Config)
		want   string
	}{
		{"zero clip batch", func(c *config.Config) { c.Pipeline.ClipBatchSize = 0 }, "pipeline.clip_batch_size"},
		{"zero thumbnail timeout", func(c *config.Config) { c.Encoder.ThumbnailTimeoutMS = 0 }, "encoder.thumbnail_timeout_ms"},
		{"negative file size", func(c *config.Config) { c.Pipeline.MaxFileSizeGB = -1 }, "pipeline.max_file_size_gb"},
		{"crf out of range", func(c *config.Config) { c.Clip.CRF = 70 }, "clip.crf"},
		{"missing output", func(c *config.Config) { c.Paths.OutputDir = "" }, "paths.output_dir"},
		{"bad log format", func(c *config.Config) { c.Logging.Format = "xml" }, "logging.format"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Default()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("expected error mentioning %q, got %v", tt.want, err)
			}
		})
	}
}

func TestCreateSampleIsLoadable(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample: %v", err)
	}
	cfg, _, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load sample: %v", err)
	}
	if !exists {
		t.Fatal("expected sample file to exist")
	}
	if cfg.Clip.VideoCodec != "libx264" {
		t.Fatalf("unexpected sample codec: %q", cfg.Clip.VideoCodec)
	}
}
