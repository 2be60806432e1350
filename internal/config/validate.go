package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateEncoder(); err != nil {
		return err
	}
	if err := c.validatePipeline(); err != nil {
		return err
	}
	if err := c.validateOutputFormats(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validatePaths() error {
	if strings.TrimSpace(c.Paths.OutputDir) == "" {
		return errors.New("paths.output_dir must be set")
	}
	return nil
}

func (c *Config) validateEncoder() error {
	return ensurePositive(
		namedInt{"encoder.clip_timeout_ms", c.Encoder.ClipTimeoutMS},
		namedInt{"encoder.thumbnail_timeout_ms", c.Encoder.ThumbnailTimeoutMS},
		namedInt{"encoder.stall_threshold_seconds", c.Encoder.StallThresholdSeconds},
		namedInt{"encoder.stall_check_interval_seconds", c.Encoder.StallCheckIntervalSeconds},
	)
}

func (c *Config) validatePipeline() error {
	if err := ensurePositive(
		namedInt{"pipeline.thumbnail_batch_size", c.Pipeline.ThumbnailBatchSize},
		namedInt{"pipeline.clip_batch_size", c.Pipeline.ClipBatchSize},
		namedInt{"pipeline.max_clip_duration_seconds", c.Pipeline.MaxClipDurationSeconds},
	); err != nil {
		return err
	}
	if c.Pipeline.MaxFileSizeGB <= 0 {
		return errors.New("pipeline.max_file_size_gb must be positive")
	}
	return nil
}

func (c *Config) validateOutputFormats() error {
	if c.Clip.Extension == "" {
		return errors.New("clip.extension must be set")
	}
	if strings.TrimSpace(c.Clip.VideoCodec) == "" || strings.TrimSpace(c.Clip.AudioCodec) == "" {
		return errors.New("clip.video_codec and clip.audio_codec must be set")
	}
	if c.Clip.CRF < 0 || c.Clip.CRF > 51 {
		return errors.New("clip.crf must be between 0 and 51")
	}
	if c.Thumbnail.Format == "" {
		return errors.New("thumbnail.format must be set")
	}
	if c.Thumbnail.Width <= 0 || c.Thumbnail.Height <= 0 {
		return errors.New("thumbnail.width and thumbnail.height must be positive")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q", c.Logging.Format)
	}
	return nil
}

type namedInt struct {
	name  string
	value int
}

func ensurePositive(values ...namedInt) error {
	for _, v := range values {
		if v.value <= 0 {
			return fmt.Errorf("%s must be positive", v.name)
		}
	}
	return nil
}
