package media

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/dustin/go-humanize"
)

// HardSizeLimitBytes is the absolute ceiling applied by Validate: 3000 MB
// counted in binary units (3000 MiB, 3,145,728,000 bytes). The configurable
// soft ceiling is enforced separately by CheckSoftLimit.
const HardSizeLimitBytes int64 = 3000 * 1024 * 1024

var (
	ErrMissing    = errors.New("source file does not exist")
	ErrNotRegular = errors.New("source is not a regular file")
	ErrTooLarge   = errors.New("source file too large")
	ErrUnreadable = errors.New("source file cannot be inspected")
)

// Result describes one validation attempt.
type Result struct {
	Path          string
	Exists        bool
	IsRegularFile bool
	SizeBytes     int64
	Err           error
}

// OK reports whether the source passed validation.
func (r Result) OK() bool {
	return r.Err == nil
}

// Validator checks source media against existence, type, size, and blacklist rules.
type Validator struct {
	mu        sync.RWMutex
	blacklist []string
	hardLimit int64
}

// NewValidator builds a validator using the given blacklist entries.
func NewValidator(blacklist []string) *Validator {
	return &Validator{blacklist: cleanEntries(blacklist), hardLimit: HardSizeLimitBytes}
}

// SetBlacklist replaces the entries. Checks already in flight keep the list
// they started with; the next check sees the new one.
func (v *Validator) SetBlacklist(entries []string) {
	cleaned := cleanEntries(entries)
	v.mu.Lock()
	v.blacklist = cleaned
	v.mu.Unlock()
}

func cleanEntries(blacklist []string) []string {
	entries := make([]string, 0, len(blacklist))
	for _, entry := range blacklist {
		if trimmed := strings.TrimSpace(entry); trimmed != "" {
			entries = append(entries, trimmed)
		}
	}
	return entries
}

// Validate stats path and reports whether it is an existing regular file
// below the hard ceiling.
func (v *Validator) Validate(path string) Result {
	result := Result{Path: path}
	if strings.TrimSpace(path) == "" {
		result.Err = fmt.Errorf("%w: empty path", ErrMissing)
		return result
	}

	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			result.Err = fmt.Errorf("%w: %s", ErrMissing, path)
		} else {
			result.Err = fmt.Errorf("%w: %v", ErrUnreadable, err)
		}
		return result
	}
	result.Exists = true
	result.IsRegularFile = info.Mode().IsRegular()
	result.SizeBytes = info.Size()

	if !result.IsRegularFile {
		result.Err = fmt.Errorf("%w: %s (%s)", ErrNotRegular, path, info.Mode().Type())
		return result
	}
	if v.hardLimit > 0 && result.SizeBytes > v.hardLimit {
		result.Err = fmt.Errorf("%w: %s exceeds %s", ErrTooLarge,
			humanize.IBytes(uint64(result.SizeBytes)), humanize.IBytes(uint64(v.hardLimit)))
	}
	return result
}

// CheckSoftLimit re-stats path against the configurable ceiling used right
// before a clip is encoded.
func (v *Validator) CheckSoftLimit(path string, limit int64) Result {
	result := Result{Path: path}
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			result.Err = fmt.Errorf("%w: %s", ErrMissing, path)
		} else {
			result.Err = fmt.Errorf("%w: %v", ErrUnreadable, err)
		}
		return result
	}
	result.Exists = true
	result.IsRegularFile = info.Mode().IsRegular()
	result.SizeBytes = info.Size()
	if limit > 0 && result.SizeBytes > limit {
		result.Err = fmt.Errorf("%w: %s exceeds configured %s", ErrTooLarge,
			humanize.IBytes(uint64(result.SizeBytes)), humanize.IBytes(uint64(limit)))
	}
	return result
}

// IsBlacklisted reports whether path contains any blacklist entry.
func (v *Validator) IsBlacklisted(path string) bool {
	_, ok := v.BlacklistMatch(path)
	return ok
}

// BlacklistMatch returns the first blacklist entry contained in path.
func (v *Validator) BlacklistMatch(path string) (string, bool) {
	if v == nil || path == "" {
		return "", false
	}
	v.mu.RLock()
	defer v.mu.RUnlock()
	for _, entry := range v.blacklist {
		if strings.Contains(path, entry) {
			return entry, true
		}
	}
	return "", false
}

// Blacklist returns a copy of the configured entries.
func (v *Validator) Blacklist() []string {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return append([]string(nil), v.blacklist...)
}
