package deps

import (
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"

	"clipgen/internal/config"
)

// EncoderRequirements lists the binaries clipgen invokes.
func EncoderRequirements(cfg *config.Config) []Requirement {
	return []Requirement{
		{
			Name:        "FFmpeg",
			Command:     cfg.Encoder.FFmpegBinary,
			Description: "Extracts thumbnails and encodes clips",
		},
	}
}

// ResolveFFprobe reports the ffprobe binary clipgen will run.
//
// An explicitly configured ffprobe wins. With the default name, an ffprobe
// sitting next to the configured ffmpeg is preferred over PATH so a custom
// FFMPEG_PATH build is paired with its own probe.
func ResolveFFprobe(ffmpegCommand, ffprobeCommand string) Status {
	probe := strings.TrimSpace(ffprobeCommand)
	if probe == "" {
		probe = "ffprobe"
	}
	req := Requirement{
		Name:        "FFprobe",
		Command:     probe,
		Description: "Inspects source media for clipgen probe",
		Optional:    true,
	}

	if probe == "ffprobe" {
		if resolved, err := exec.LookPath(strings.TrimSpace(ffmpegCommand)); err == nil {
			candidate := filepath.Join(filepath.Dir(resolved), executableName("ffprobe"))
			if info, statErr := os.Stat(candidate); statErr == nil && isExecutable(info) {
				return Status{Requirement: req, Path: candidate, Available: true}
			}
		}
	}
	return resolve(req)
}

func executableName(base string) string {
	if runtime.GOOS == "windows" {
		return base + ".exe"
	}
	return base
}

func isExecutable(info os.FileInfo) bool {
	if info == nil || info.IsDir() {
		return false
	}
	if runtime.GOOS == "windows" {
		return true
	}
	return info.Mode().Perm()&0o111 != 0
}
