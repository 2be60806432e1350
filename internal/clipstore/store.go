package clipstore

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"clipgen/internal/config"
	"clipgen/internal/fileutil"
	"clipgen/internal/logging"
	"clipgen/internal/textutil"
	"clipgen/internal/timecode"
)

var (
	// ErrNotFound indicates no record exists for the requested id.
	ErrNotFound = errors.New("clip not found")
	// ErrInvalidID indicates the id is not a UUID and cannot name a record.
	ErrInvalidID = errors.New("invalid clip id")
)

// Store reads and writes clip records.
type Store struct {
	cfg    *config.Config
	dir    string
	logger *slog.Logger
	now    func() time.Time
}

// NewStore builds a store rooted at cfg.Paths.OutputDir.
func NewStore(cfg *config.Config, logger *slog.Logger) *Store {
	return &Store{
		cfg:    cfg,
		dir:    cfg.Paths.OutputDir,
		logger: logging.NewComponentLogger(logger, "clipstore"),
		now:    time.Now,
	}
}

// Dir returns the directory holding the JSON records.
func (s *Store) Dir() string {
	return s.dir
}

func (s *Store) recordPath(id string) string {
	return filepath.Join(s.dir, id+".json")
}

// LoadAll parses every record in the output directory. Files that cannot be
// read or decoded are skipped so leftovers from a crashed run never block a
// batch. Results are ordered by creation time.
func (s *Store) LoadAll() []ClipMetadata {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			logging.WarnWithContext(s.logger, "clip directory unreadable", "clipstore_scan_failed",
				logging.String("dir", s.dir),
				logging.Error(err),
				logging.String(logging.FieldImpact, "existing clips are invisible to deduplication"),
				logging.String(logging.FieldErrorHint, "check paths.output_dir permissions"),
			)
		}
		return nil
	}

	records := make([]ClipMetadata, 0, len(entries))
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || strings.HasPrefix(name, ".") || filepath.Ext(name) != ".json" {
			continue
		}
		record, err := readRecord(filepath.Join(s.dir, name))
		if err != nil {
			s.logger.Debug("skipping unreadable clip record",
				logging.String("file", name),
				logging.Error(err),
			)
			continue
		}
		records = append(records, record)
	}
	sort.SliceStable(records, func(i, j int) bool {
		if !records[i].CreatedAt.Equal(records[j].CreatedAt) {
			return records[i].CreatedAt.Before(records[j].CreatedAt)
		}
		return records[i].ID < records[j].ID
	})
	return records
}

func readRecord(path string) (ClipMetadata, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return ClipMetadata{}, err
	}
	var record ClipMetadata
	if err := json.Unmarshal(data, &record); err != nil {
		return ClipMetadata{}, fmt.Errorf("decode %s: %w", filepath.Base(path), err)
	}
	if strings.TrimSpace(record.ID) == "" {
		return ClipMetadata{}, fmt.Errorf("decode %s: missing id", filepath.Base(path))
	}
	return record, nil
}

// Create builds the initial record for req. Nothing is written until Save.
func (s *Store) Create(req Request, id string) ClipMetadata {
	key := req.Key()
	duration := "0.000"
	if start, end, err := req.Span(); err == nil {
		duration = timecode.Seconds(end - start)
	}
	sentence := textutil.Normalize(strings.Join(strings.Fields(req.Subtitle), " "))
	return ClipMetadata{
		ID:             id,
		Title:          textutil.DeriveTitle(key.SourceFile),
		Sentence:       sentence,
		OriginalText:   strings.TrimSpace(req.Subtitle),
		TranslatedText: textutil.Normalize(req.Translation),
		StartTime:      key.Start,
		EndTime:        key.End,
		SourceFile:     key.SourceFile,
		ClipPath:       s.cfg.ClipPublicPath(id),
		CreatedAt:      s.now().UTC(),
		Duration:       duration,
		SearchQuery:    strings.TrimSpace(req.Query),
		Confidence:     req.Confidence,
		Tags:           []string{TagStage1},
	}
}

// Save writes the full record. Failures are logged and reported as false.
func (s *Store) Save(record ClipMetadata) bool {
	if err := s.write(record); err != nil {
		logging.ErrorWithContext(s.logger, "failed to save clip record", "clipstore_write_failed",
			logging.String(logging.FieldClipID, record.ID),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check free space and permissions on paths.output_dir"),
		)
		return false
	}
	return true
}

func (s *Store) write(record ClipMetadata) error {
	if err := uuid.Validate(record.ID); err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidID, record.ID)
	}
	payload, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return fmt.Errorf("encode record: %w", err)
	}
	payload = append(payload, '\n')
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("ensure clip directory: %w", err)
	}
	return fileutil.WriteFileAtomic(s.recordPath(record.ID), payload, 0o644)
}

// Patch lists the fields a stage may change on an existing record.
type Patch struct {
	ThumbnailPath *string
	// AdvanceTo replaces the current stage tag; it must rank above it.
	AdvanceTo string
}

// Update applies patch to record and rewrites the file. It returns the
// updated record and false when the tag move would regress or the write fails;
// in that case the file is left as it was.
func (s *Store) Update(record ClipMetadata, patch Patch) (ClipMetadata, bool) {
	updated := record
	updated.Tags = append([]string(nil), record.Tags...)
	if patch.ThumbnailPath != nil {
		updated.ThumbnailPath = *patch.ThumbnailPath
	}
	if patch.AdvanceTo != "" {
		tags, ok := advanceTags(updated.Tags, patch.AdvanceTo)
		if !ok {
			logging.WarnWithContext(s.logger, "refusing to move clip backwards", "clipstore_tag_regression",
				logging.String(logging.FieldClipID, record.ID),
				logging.String("current_tag", record.Stage()),
				logging.String("requested_tag", patch.AdvanceTo),
				logging.String(logging.FieldImpact, "record left unchanged"),
				logging.String(logging.FieldErrorHint, "stage tags only move forward"),
			)
			return record, false
		}
		updated.Tags = tags
	}
	if !s.Save(updated) {
		return record, false
	}
	return updated, true
}

// Get loads a single record.
func (s *Store) Get(id string) (ClipMetadata, error) {
	id = strings.TrimSpace(id)
	if err := uuid.Validate(id); err != nil {
		return ClipMetadata{}, fmt.Errorf("%w: %q", ErrInvalidID, id)
	}
	record, err := readRecord(s.recordPath(id))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return ClipMetadata{}, fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return ClipMetadata{}, err
	}
	return record, nil
}

// Delete removes a record together with its clip and thumbnail files. It
// returns false when the record does not exist or cannot be removed.
func (s *Store) Delete(id string) bool {
	record, err := s.Get(id)
	if err != nil {
		s.logger.Debug("delete skipped", logging.String(logging.FieldClipID, id), logging.Error(err))
		return false
	}
	for _, public := range []string{record.ClipPath, record.ThumbnailPath} {
		local := s.cfg.LocalPath(public)
		if local == "" {
			continue
		}
		if _, err := fileutil.RemoveIfExists(local); err != nil {
			logging.WarnWithContext(s.logger, "failed to remove clip media", "clipstore_media_delete_failed",
				logging.String(logging.FieldClipID, id),
				logging.String("path", local),
				logging.Error(err),
				logging.String(logging.FieldImpact, "orphaned media file remains on disk"),
				logging.String(logging.FieldErrorHint, "remove the file manually"),
			)
		}
	}
	if _, err := fileutil.RemoveIfExists(s.recordPath(record.ID)); err != nil {
		logging.ErrorWithContext(s.logger, "failed to delete clip record", "clipstore_delete_failed",
			logging.String(logging.FieldClipID, id),
			logging.Error(err),
		)
		return false
	}
	s.logger.Info("clip deleted", logging.String(logging.FieldClipID, id))
	return true
}

// FilterByTag returns every record carrying tag.
func (s *Store) FilterByTag(tag string) []ClipMetadata {
	all := s.LoadAll()
	out := make([]ClipMetadata, 0, len(all))
	for _, record := range all {
		if record.HasTag(tag) {
			out = append(out, record)
		}
	}
	return out
}
