package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.applyEnvOverrides(); err != nil {
		return err
	}
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeEncoder()
	c.normalizeMedia()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if c.Paths.OutputDir, err = expandPath(strings.TrimSpace(c.Paths.OutputDir)); err != nil {
		return fmt.Errorf("paths.output_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.ThumbnailDir) == "" && c.Paths.OutputDir != "" {
		c.Paths.ThumbnailDir = filepath.Join(c.Paths.OutputDir, "thumbnails")
	}
	if c.Paths.ThumbnailDir, err = expandPath(strings.TrimSpace(c.Paths.ThumbnailDir)); err != nil {
		return fmt.Errorf("paths.thumbnail_dir: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(strings.TrimSpace(c.Paths.LogDir)); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	if c.Paths.MirrorDB, err = expandPath(strings.TrimSpace(c.Paths.MirrorDB)); err != nil {
		return fmt.Errorf("paths.mirror_db: %w", err)
	}
	c.Paths.PublicPrefix = strings.TrimSpace(c.Paths.PublicPrefix)
	return nil
}

func (c *Config) normalizeEncoder() {
	c.Encoder.FFmpegBinary = strings.TrimSpace(c.Encoder.FFmpegBinary)
	if c.Encoder.FFmpegBinary == "" {
		c.Encoder.FFmpegBinary = defaultFFmpegBinary
	}
	c.Encoder.FFprobeBinary = strings.TrimSpace(c.Encoder.FFprobeBinary)
	if c.Encoder.FFprobeBinary == "" {
		c.Encoder.FFprobeBinary = defaultFFprobeBinary
	}
}

func (c *Config) normalizeMedia() {
	c.Thumbnail.Format = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(c.Thumbnail.Format), "."))
	c.Clip.Extension = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(c.Clip.Extension), "."))

	cleaned := make([]string, 0, len(c.Pipeline.Blacklist))
	for _, entry := range c.Pipeline.Blacklist {
		if trimmed := strings.TrimSpace(entry); trimmed != "" {
			cleaned = append(cleaned, trimmed)
		}
	}
	c.Pipeline.Blacklist = cleaned
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}

// applyEnvOverrides lets deployments tune limits without editing the file.
func (c *Config) applyEnvOverrides() error {
	ints := []struct {
		env    string
		target *int
	}{
		{"THUMBNAIL_BATCH_SIZE", &c.Pipeline.ThumbnailBatchSize},
		{"CLIP_BATCH_SIZE", &c.Pipeline.ClipBatchSize},
		{"MAX_CLIP_DURATION", &c.Pipeline.MaxClipDurationSeconds},
		{"CLIP_TIMEOUT_MS", &c.Encoder.ClipTimeoutMS},
		{"THUMBNAIL_TIMEOUT_MS", &c.Encoder.ThumbnailTimeoutMS},
	}
	for _, item := range ints {
		value, ok := lookupEnv(item.env)
		if !ok {
			continue
		}
		parsed, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("%s: invalid integer %q", item.env, value)
		}
		*item.target = parsed
	}

	if value, ok := lookupEnv("MAX_FILE_SIZE_GB"); ok {
		parsed, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("MAX_FILE_SIZE_GB: invalid number %q", value)
		}
		c.Pipeline.MaxFileSizeGB = parsed
	}
	if value, ok := lookupEnv("FFMPEG_PATH"); ok {
		c.Encoder.FFmpegBinary = value
	}
	return nil
}

func lookupEnv(key string) (string, bool) {
	value, ok := os.LookupEnv(key)
	if !ok {
		return "", false
	}
	value = strings.TrimSpace(value)
	return value, value != ""
}
