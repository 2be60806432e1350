package testsupport

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// WriteScript writes an executable /bin/sh script into dir and returns its path.
func WriteScript(t testing.TB, dir, name, body string) string {
	t.Helper()

	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", dir, err)
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+body), 0o755); err != nil {
		t.Fatalf("write script %s: %v", name, err)
	}
	return path
}

// FFmpegStub controls the behaviour of a stub encoder written by StubFFmpeg.
type FFmpegStub struct {
	// FailOn lists substrings; an invocation whose arguments contain any of
	// them exits 1 without writing output.
	FailOn []string
	// HangOn lists substrings; a matching invocation sleeps far past any test timeout.
	HangOn []string
	// Delay is a sleep argument (e.g. "0.3") applied before succeeding.
	Delay string
}

// StubFFmpeg writes a fake encoder that records each invocation, prints a
// progress marker on stderr, and creates its final argument as the output
// file. It returns the script path and the invocation log path.
func StubFFmpeg(t testing.TB, dir string, stub FFmpegStub) (string, string) {
	t.Helper()

	logPath := filepath.Join(dir, "ffmpeg-calls.log")
	var b strings.Builder
	fmt.Fprintf(&b, "echo \"$*\" >> %s\n", shellQuote(logPath))
	b.WriteString("for arg; do out=\"$arg\"; done\n")
	b.WriteString("case \"$*\" in\n")
	for _, pattern := range stub.FailOn {
		fmt.Fprintf(&b, "  *%s*) echo \"stub: simulated encoder failure\" >&2; exit 1 ;;\n", shellQuote(pattern))
	}
	for _, pattern := range stub.HangOn {
		fmt.Fprintf(&b, "  *%s*) exec sleep 60 ;;\n", shellQuote(pattern))
	}
	b.WriteString("esac\n")
	if stub.Delay != "" {
		fmt.Fprintf(&b, "sleep %s\n", stub.Delay)
	}
	b.WriteString("echo \"frame=1 fps=0.0 time=00:00:01.00 bitrate=N/A speed=1x\" >&2\n")
	b.WriteString("printf 'stub' > \"$out\"\n")
	b.WriteString("exit 0\n")

	return WriteScript(t, dir, "ffmpeg", b.String()), logPath
}

// ReadCalls returns the recorded invocations of a StubFFmpeg script, one per line.
func ReadCalls(t testing.TB, logPath string) []string {
	t.Helper()

	data, err := os.ReadFile(logPath)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		t.Fatalf("read %s: %v", logPath, err)
	}
	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	if len(lines) == 1 && lines[0] == "" {
		return nil
	}
	return lines
}

func shellQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}
