package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	OutputDir    string `toml:"output_dir"`
	ThumbnailDir string `toml:"thumbnail_dir"`
	LogDir       string `toml:"log_dir"`
	PublicPrefix string `toml:"public_prefix"`
	MirrorDB     string `toml:"mirror_db"`
}

// Encoder contains external encoder invocation and supervision settings.
type Encoder struct {
	FFmpegBinary              string `toml:"ffmpeg_binary"`
	FFprobeBinary             string `toml:"ffprobe_binary"`
	ClipTimeoutMS             int    `toml:"clip_timeout_ms"`
	ThumbnailTimeoutMS        int    `toml:"thumbnail_timeout_ms"`
	StallThresholdSeconds     int    `toml:"stall_threshold_seconds"`
	StallCheckIntervalSeconds int    `toml:"stall_check_interval_seconds"`
}

// Pipeline contains batch sizing and input limits for clip generation.
type Pipeline struct {
	ThumbnailBatchSize     int      `toml:"thumbnail_batch_size"`
	ClipBatchSize          int      `toml:"clip_batch_size"`
	MaxClipDurationSeconds int      `toml:"max_clip_duration_seconds"`
	MaxFileSizeGB          float64  `toml:"max_file_size_gb"`
	Blacklist              []string `toml:"blacklist"`
}

// Thumbnail controls the single-frame extract produced in stage 2.
type Thumbnail struct {
	Width      int     `toml:"width"`
	Height     int     `toml:"height"`
	Format     string  `toml:"format"`
	Quality    int     `toml:"quality"`
	Correction bool    `toml:"correction"`
	Brightness float64 `toml:"brightness"`
	Contrast   float64 `toml:"contrast"`
	Saturation float64 `toml:"saturation"`
}

// Clip controls the trim-and-encode command produced in stage 3.
type Clip struct {
	Extension    string `toml:"extension"`
	VideoCodec   string `toml:"video_codec"`
	AudioCodec   string `toml:"audio_codec"`
	Preset       string `toml:"preset"`
	CRF          int    `toml:"crf"`
	AudioBitrate string `toml:"audio_bitrate"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for clipgen.
type Config struct {
	Paths     Paths     `toml:"paths"`
	Encoder   Encoder   `toml:"encoder"`
	Pipeline  Pipeline  `toml:"pipeline"`
	Thumbnail Thumbnail `toml:"thumbnail"`
	Clip      Clip      `toml:"clip"`
	Logging   Logging   `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath(defaultConfigPath)
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		if _, err := os.Stat(expanded); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := expandPath(defaultConfigPath)
	if err != nil {
		return "", false, err
	}
	projectPath, err := filepath.Abs("clipgen.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}
	return defaultPath, false, nil
}

// EnsureDirectories creates the output, thumbnail, and log directories.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.OutputDir, c.Paths.ThumbnailDir, c.Paths.LogDir} {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// ClipTimeout is the hard limit for one stage-3 encoder invocation.
func (c *Config) ClipTimeout() time.Duration {
	return time.Duration(c.Encoder.ClipTimeoutMS) * time.Millisecond
}

// ThumbnailTimeout is the hard limit for one stage-2 encoder invocation.
func (c *Config) ThumbnailTimeout() time.Duration {
	return time.Duration(c.Encoder.ThumbnailTimeoutMS) * time.Millisecond
}

// StallThreshold is the silence period after which a running encoder is reported as stalled.
func (c *Config) StallThreshold() time.Duration {
	return time.Duration(c.Encoder.StallThresholdSeconds) * time.Second
}

// StallCheckInterval is how often supervised processes are checked for stalls.
func (c *Config) StallCheckInterval() time.Duration {
	return time.Duration(c.Encoder.StallCheckIntervalSeconds) * time.Second
}

// MaxClipDuration is the longest span stage 3 will encode.
func (c *Config) MaxClipDuration() time.Duration {
	return time.Duration(c.Pipeline.MaxClipDurationSeconds) * time.Second
}

// MaxFileSizeBytes converts the soft source-size ceiling to bytes.
func (c *Config) MaxFileSizeBytes() int64 {
	return int64(c.Pipeline.MaxFileSizeGB * 1024 * 1024 * 1024)
}

// ClipPublicPath returns the web-relative path for a clip file.
func (c *Config) ClipPublicPath(id string) string {
	return joinPublic(c.Paths.PublicPrefix, id+"."+c.Clip.Extension)
}

// ThumbnailPublicPath returns the web-relative path for a thumbnail file.
func (c *Config) ThumbnailPublicPath(id string) string {
	return joinPublic(c.Paths.PublicPrefix, "thumbnails", id+"."+c.Thumbnail.Format)
}

// ClipFilePath returns the on-disk location of a clip file.
func (c *Config) ClipFilePath(id string) string {
	return filepath.Join(c.Paths.OutputDir, id+"."+c.Clip.Extension)
}

// ThumbnailFilePath returns the on-disk location of a thumbnail file.
func (c *Config) ThumbnailFilePath(id string) string {
	return filepath.Join(c.Paths.ThumbnailDir, id+"."+c.Thumbnail.Format)
}

// LocalPath maps a web-relative clip or thumbnail path back to its on-disk
// location. Paths outside the public prefix return "".
func (c *Config) LocalPath(public string) string {
	prefix := joinPublic(c.Paths.PublicPrefix) // "<prefix>/"
	if !strings.HasPrefix(public, prefix) {
		return ""
	}
	rel := strings.TrimPrefix(public, prefix)
	if name, ok := strings.CutPrefix(rel, "thumbnails/"); ok && !strings.Contains(name, "/") {
		return filepath.Join(c.Paths.ThumbnailDir, name)
	}
	if rel == "" || strings.Contains(rel, "/") {
		return ""
	}
	return filepath.Join(c.Paths.OutputDir, rel)
}

func joinPublic(prefix string, parts ...string) string {
	prefix = "/" + strings.Trim(strings.TrimSpace(prefix), "/")
	joined := strings.Join(parts, "/")
	if prefix == "/" {
		return "/" + joined
	}
	return prefix + "/" + joined
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
