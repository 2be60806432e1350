package media_test

import (
	"errors"
	"path/filepath"
	"testing"

	"clipgen/internal/media"
	"clipgen/internal/testsupport"
)

func TestValidateAcceptsRegularFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "Show - S01E01.mkv")
	testsupport.WriteFile(t, path, 2048)

	result := media.NewValidator(nil).Validate(path)
	if !result.OK() {
		t.Fatalf("expected valid result, got %v", result.Err)
	}
	if !result.Exists || !result.IsRegularFile || result.SizeBytes != 2048 {
		t.Fatalf("unexpected result: %#v", result)
	}
}

func TestValidateRejectsMissingAndDirectories(t *testing.T) {
	dir := t.TempDir()
	v := media.NewValidator(nil)

	missing := v.Validate(filepath.Join(dir, "nope.mkv"))
	if !errors.Is(missing.Err, media.ErrMissing) || missing.Exists {
		t.Fatalf("expected ErrMissing, got %#v", missing)
	}

	empty := v.Validate("  ")
	if !errors.Is(empty.Err, media.ErrMissing) {
		t.Fatalf("expected ErrMissing for blank path, got %v", empty.Err)
	}

	notRegular := v.Validate(dir)
	if !errors.Is(notRegular.Err, media.ErrNotRegular) || !notRegular.Exists || notRegular.IsRegularFile {
		t.Fatalf("expected ErrNotRegular, got %#v", notRegular)
	}
}

func TestValidateRejectsFilesOverHardLimit(t *testing.T) {
	if media.HardSizeLimitBytes != 3_145_728_000 {
		t.Fatalf("hard limit = %d, want 3000 MiB", media.HardSizeLimitBytes)
	}
	path := filepath.Join(t.TempDir(), "huge.mkv")
	testsupport.SparseFile(t, path, media.HardSizeLimitBytes+1)

	atLimit := filepath.Join(t.TempDir(), "edge.mkv")
	testsupport.SparseFile(t, atLimit, media.HardSizeLimitBytes)
	if res := media.NewValidator(nil).Validate(atLimit); !res.OK() {
		t.Fatalf("file exactly at the limit should pass, got %v", res.Err)
	}

	result := media.NewValidator(nil).Validate(path)
	if !errors.Is(result.Err, media.ErrTooLarge) {
		t.Fatalf("expected ErrTooLarge, got %v", result.Err)
	}
}

func TestCheckSoftLimit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "clip.mkv")
	testsupport.WriteFile(t, path, 4096)
	v := media.NewValidator(nil)

	if res := v.CheckSoftLimit(path, 8192); !res.OK() {
		t.Fatalf("expected file under soft limit, got %v", res.Err)
	}
	if res := v.CheckSoftLimit(path, 1024); !errors.Is(res.Err, media.ErrTooLarge) {
		t.Fatalf("expected ErrTooLarge, got %v", res.Err)
	}
	if res := v.CheckSoftLimit(path+".gone", 1024); !errors.Is(res.Err, media.ErrMissing) {
		t.Fatalf("expected ErrMissing, got %v", res.Err)
	}
}

func TestIsBlacklisted(t *testing.T) {
	v := media.NewValidator([]string{"Broken Show - S02E05", "  ", "corrupt.mkv"})

	tests := []struct {
		path string
		want bool
	}{
		{"/media/tv/Broken Show - S02E05 - Pilot.mkv", true},
		{"/media/movies/corrupt.mkv", true},
		{"/media/movies/fine.mkv", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := v.IsBlacklisted(tt.path); got != tt.want {
			t.Fatalf("IsBlacklisted(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}
	if len(v.Blacklist()) != 2 {
		t.Fatalf("blank entries should be dropped, got %#v", v.Blacklist())
	}
	if entry, ok := v.BlacklistMatch("/x/corrupt.mkv"); !ok || entry != "corrupt.mkv" {
		t.Fatalf("unexpected match: %q %v", entry, ok)
	}
}

func TestSetBlacklistReplacesEntries(t *testing.T) {
	v := media.NewValidator([]string{"old.mkv"})
	v.SetBlacklist([]string{"new.mkv", ""})

	if v.IsBlacklisted("/media/old.mkv") {
		t.Fatal("replaced entry should no longer match")
	}
	if !v.IsBlacklisted("/media/new.mkv") {
		t.Fatal("expected new entry to match")
	}
	if got := v.Blacklist(); len(got) != 1 {
		t.Fatalf("expected one entry, got %#v", got)
	}
}
