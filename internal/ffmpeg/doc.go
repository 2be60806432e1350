// Package ffmpeg shapes the encoder argument vectors used by the clip
// pipeline and wraps ffprobe for source inspection.
//
// Both command shapes place -ss before -i so ffmpeg uses its keyframe seek
// path, and both end with the output path. Arguments are built as slices and
// never passed through a shell.
package ffmpeg
