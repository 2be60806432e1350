package ffmpeg

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"clipgen/internal/config"
	"clipgen/internal/timecode"
)

// Span is the source region an encoder command operates on.
type Span struct {
	Source string
	Start  time.Duration
	End    time.Duration
}

// Duration returns End - Start.
func (s Span) Duration() time.Duration {
	return s.End - s.Start
}

func preamble() []string {
	// -stats keeps time= markers on stderr while -loglevel error hides the banner noise.
	return []string{"-hide_banner", "-nostdin", "-loglevel", "error", "-stats"}
}

// ThumbnailArgs builds a single-frame extract at the span start, scaled and
// padded into the configured box.
func ThumbnailArgs(cfg config.Thumbnail, span Span, output string) []string {
	args := make([]string, 0, 24)
	args = append(args, preamble()...)
	args = append(args,
		"-ss", timecode.FFmpeg(span.Start),
		"-i", span.Source,
		"-frames:v", "1",
		"-vf", ThumbnailFilter(cfg),
	)
	if strings.EqualFold(cfg.Format, "jpg") || strings.EqualFold(cfg.Format, "jpeg") {
		args = append(args, "-q:v", strconv.Itoa(cfg.Quality))
	}
	args = append(args, "-an", "-sn", "-y", output)
	return args
}

// ThumbnailFilter returns the -vf chain for thumbnails.
func ThumbnailFilter(cfg config.Thumbnail) string {
	w, h := cfg.Width, cfg.Height
	filters := []string{
		fmt.Sprintf("scale=%d:%d:force_original_aspect_ratio=decrease", w, h),
		fmt.Sprintf("pad=%d:%d:(ow-iw)/2:(oh-ih)/2", w, h),
	}
	if cfg.Correction {
		filters = append(filters, fmt.Sprintf("eq=brightness=%s:contrast=%s:saturation=%s",
			formatFloat(cfg.Brightness), formatFloat(cfg.Contrast), formatFloat(cfg.Saturation)))
	}
	return strings.Join(filters, ",")
}

// ClipArgs builds the trim-and-encode command for the final clip.
func ClipArgs(cfg config.Clip, span Span, output string) []string {
	args := make([]string, 0, 40)
	args = append(args, preamble()...)
	args = append(args,
		"-ss", timecode.FFmpeg(span.Start),
		"-i", span.Source,
		"-t", timecode.Seconds(span.Duration()),
		"-map", "0:v:0",
		"-map", "0:a:0?",
		"-sn", "-dn",
		"-c:v", cfg.VideoCodec,
	)
	if preset := strings.TrimSpace(cfg.Preset); preset != "" {
		args = append(args, "-preset", preset)
	}
	args = append(args,
		"-crf", strconv.Itoa(cfg.CRF),
		"-pix_fmt", "yuv420p",
		"-c:a", cfg.AudioCodec,
	)
	if bitrate := strings.TrimSpace(cfg.AudioBitrate); bitrate != "" {
		args = append(args, "-b:a", bitrate)
	}
	args = append(args, "-movflags", "+faststart", "-y", output)
	return args
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
