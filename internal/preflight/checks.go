package preflight

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"golang.org/x/sys/unix"

	"clipgen/internal/config"
	"clipgen/internal/deps"
)

const encoderCheckTimeout = 5 * time.Second

// CheckEncoder runs "<binary> -version" and reports the first output line.
// It uses a 5-second timeout and a single attempt.
func CheckEncoder(ctx context.Context, binary string) Result {
	const name = "FFmpeg execution"

	binary = strings.TrimSpace(binary)
	if binary == "" {
		return Result{Name: name, Detail: "binary not configured"}
	}

	checkCtx, cancel := context.WithTimeout(ctx, encoderCheckTimeout)
	defer cancel()

	output, err := exec.CommandContext(checkCtx, binary, "-version").Output()
	if err != nil {
		return Result{Name: name, Detail: summarizeExecError(err)}
	}
	line, _, _ := strings.Cut(strings.TrimSpace(string(output)), "\n")
	if line == "" {
		line = "runs (no version output)"
	}
	return Result{Name: name, Passed: true, Detail: strings.TrimSpace(line)}
}

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	if strings.TrimSpace(path) == "" {
		return Result{Name: name, Detail: "not configured"}
	}
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// CheckSystemDeps evaluates the encoder binaries for the given config. FFmpeg
// is required; ffprobe only backs "clipgen probe".
func CheckSystemDeps(cfg *config.Config) []deps.Status {
	statuses := deps.CheckBinaries(deps.EncoderRequirements(cfg))
	return append(statuses, deps.ResolveFFprobe(cfg.Encoder.FFmpegBinary, cfg.Encoder.FFprobeBinary))
}

func summarizeExecError(err error) string {
	if errors.Is(err, context.DeadlineExceeded) {
		return "timed out waiting for -version"
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		if stderr := strings.TrimSpace(string(exitErr.Stderr)); stderr != "" {
			return fmt.Sprintf("exit %d: %s", exitErr.ExitCode(), stderr)
		}
		return fmt.Sprintf("exit %d", exitErr.ExitCode())
	}
	return err.Error()
}
