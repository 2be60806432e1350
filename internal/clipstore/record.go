package clipstore

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"clipgen/internal/timecode"
)

// Request is one span reference submitted for clipping.
type Request struct {
	SourceFile  string  `json:"sourceFile"`
	SourceDir   string  `json:"sourceDir,omitempty"`
	Start       string  `json:"start"`
	End         string  `json:"end"`
	Query       string  `json:"query,omitempty"`
	Subtitle    string  `json:"subtitle"`
	Translation string  `json:"translation,omitempty"`
	Confidence  float64 `json:"confidence,omitempty"`
}

// Source resolves the media path to an absolute one, joining a relative
// SourceFile onto SourceDir first and then onto the working directory.
func (r Request) Source() string {
	src := strings.TrimSpace(r.SourceFile)
	if src == "" {
		return ""
	}
	if dir := strings.TrimSpace(r.SourceDir); dir != "" && !filepath.IsAbs(src) {
		src = filepath.Join(dir, src)
	}
	abs, err := filepath.Abs(src)
	if err != nil {
		return filepath.Clean(src)
	}
	return abs
}

// Key is the deduplication identity of a request or record. Fields compare
// as exact strings.
type Key struct {
	SourceFile string
	Start      string
	End        string
}

func (k Key) String() string {
	return fmt.Sprintf("%s [%s-%s]", k.SourceFile, k.Start, k.End)
}

// Key returns the request's deduplication key.
func (r Request) Key() Key {
	return Key{SourceFile: r.Source(), Start: strings.TrimSpace(r.Start), End: strings.TrimSpace(r.End)}
}

// Span parses the request timestamps.
func (r Request) Span() (time.Duration, time.Duration, error) {
	start, err := timecode.Parse(r.Start)
	if err != nil {
		return 0, 0, fmt.Errorf("start %q: %w", r.Start, err)
	}
	end, err := timecode.Parse(r.End)
	if err != nil {
		return 0, 0, fmt.Errorf("end %q: %w", r.End, err)
	}
	return start, end, nil
}

// ClipMetadata is the persisted record for one clip.
type ClipMetadata struct {
	ID             string    `json:"id"`
	Title          string    `json:"title"`
	Sentence       string    `json:"sentence"`
	OriginalText   string    `json:"originalText"`
	TranslatedText string    `json:"translatedText,omitempty"`
	StartTime      string    `json:"startTime"`
	EndTime        string    `json:"endTime"`
	SourceFile     string    `json:"sourceFile"`
	ClipPath       string    `json:"clipPath"`
	ThumbnailPath  string    `json:"thumbnailPath,omitempty"`
	CreatedAt      time.Time `json:"createdAt"`
	Duration       string    `json:"duration"`
	SearchQuery    string    `json:"searchQuery"`
	Confidence     float64   `json:"confidence"`
	Tags           []string  `json:"tags"`
}

// Key returns the record's deduplication key.
func (m ClipMetadata) Key() Key {
	return Key{SourceFile: m.SourceFile, Start: m.StartTime, End: m.EndTime}
}

// Span parses the stored timestamps.
func (m ClipMetadata) Span() (time.Duration, time.Duration, error) {
	return Request{Start: m.StartTime, End: m.EndTime}.Span()
}

// IsDuplicate reports whether any existing record shares the request's key.
func IsDuplicate(req Request, existing []ClipMetadata) bool {
	key := req.Key()
	for _, record := range existing {
		if record.Key() == key {
			return true
		}
	}
	return false
}
