package config

const (
	defaultConfigPath            = "~/.config/clipgen/config.toml"
	defaultOutputDir             = "~/.local/share/clipgen/clips"
	defaultLogDir                = "~/.local/share/clipgen/logs"
	defaultMirrorDB              = "~/.local/share/clipgen/mirror.db"
	defaultPublicPrefix          = "/clips"
	defaultFFmpegBinary          = "ffmpeg"
	defaultFFprobeBinary         = "ffprobe"
	defaultClipTimeoutMS         = 120_000
	defaultThumbnailTimeoutMS    = 30_000
	defaultStallThresholdSeconds = 15
	defaultStallCheckSeconds     = 5
	defaultThumbnailBatchSize    = 2
	defaultClipBatchSize         = 2
	defaultMaxClipDuration       = 300
	defaultMaxFileSizeGB         = 10
	defaultLogFormat             = "console"
	defaultLogLevel              = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			OutputDir:    defaultOutputDir,
			LogDir:       defaultLogDir,
			PublicPrefix: defaultPublicPrefix,
			MirrorDB:     defaultMirrorDB,
		},
		Encoder: Encoder{
			FFmpegBinary:              defaultFFmpegBinary,
			FFprobeBinary:             defaultFFprobeBinary,
			ClipTimeoutMS:             defaultClipTimeoutMS,
			ThumbnailTimeoutMS:        defaultThumbnailTimeoutMS,
			StallThresholdSeconds:     defaultStallThresholdSeconds,
			StallCheckIntervalSeconds: defaultStallCheckSeconds,
		},
		Pipeline: Pipeline{
			ThumbnailBatchSize:     defaultThumbnailBatchSize,
			ClipBatchSize:          defaultClipBatchSize,
			MaxClipDurationSeconds: defaultMaxClipDuration,
			MaxFileSizeGB:          defaultMaxFileSizeGB,
		},
		Thumbnail: Thumbnail{
			Width:      480,
			Height:     270,
			Format:     "jpg",
			Quality:    3,
			Correction: true,
			Brightness: 0.03,
			Contrast:   1.05,
			Saturation: 1.1,
		},
		Clip: Clip{
			Extension:    "mp4",
			VideoCodec:   "libx264",
			AudioCodec:   "aac",
			Preset:       "veryfast",
			CRF:          23,
			AudioBitrate: "128k",
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
