package mirror

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"clipgen/internal/clipstore"
	"clipgen/internal/logging"
)

//go:embed schema.sql
var schemaSQL string

// schemaVersion is bumped whenever schema.sql changes shape.
const schemaVersion = 1

// ErrSchemaMismatch indicates the database was created by a different schema version.
var ErrSchemaMismatch = errors.New("mirror schema version mismatch")

// Store is the SQLite-backed clip index.
type Store struct {
	db     *sql.DB
	path   string
	logger *slog.Logger
	now    func() time.Time
}

// Open creates or connects to the mirror database at path.
func Open(path string, logger *slog.Logger) (*Store, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("mirror: database path not configured")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("ensure mirror directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{
		db:     db,
		path:   path,
		logger: logging.NewComponentLogger(logger, "mirror"),
		now:    time.Now,
	}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the database file location.
func (s *Store) Path() string {
	return s.path
}

func (s *Store) initSchema(ctx context.Context) error {
	var tableExists int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(1) FROM sqlite_master WHERE type='table' AND name='schema_version'",
	).Scan(&tableExists)
	if err != nil {
		return fmt.Errorf("check schema_version table: %w", err)
	}

	if tableExists == 0 {
		return s.createSchema(ctx)
	}

	var version int
	if err := s.db.QueryRowContext(ctx, "SELECT version FROM schema_version LIMIT 1").Scan(&version); err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	if version != schemaVersion {
		return fmt.Errorf("%w: database has version %d, expected %d (delete %s and run 'clipgen mirror sync')",
			ErrSchemaMismatch, version, schemaVersion, s.path)
	}
	return nil
}

func (s *Store) createSchema(ctx context.Context) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "INSERT INTO schema_version (version) VALUES (?)", schemaVersion); err != nil {
		return fmt.Errorf("record schema version: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema: %w", err)
	}
	return nil
}

// CreateClip inserts record unless a row with its id already exists. It
// reports whether a row was inserted.
func (s *Store) CreateClip(ctx context.Context, record clipstore.ClipMetadata) (bool, error) {
	if strings.TrimSpace(record.ID) == "" {
		return false, errors.New("mirror: clip id is empty")
	}
	tags, err := json.Marshal(record.Tags)
	if err != nil {
		return false, fmt.Errorf("encode tags: %w", err)
	}
	res, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO clips (
            id, title, sentence, original_text, translated_text, start_time, end_time,
            source_file, clip_path, thumbnail_path, created_at, duration, search_query,
            confidence, tags, mirrored_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		record.ID,
		record.Title,
		record.Sentence,
		record.OriginalText,
		nullableString(record.TranslatedText),
		record.StartTime,
		record.EndTime,
		record.SourceFile,
		record.ClipPath,
		nullableString(record.ThumbnailPath),
		record.CreatedAt.UTC().Format(time.RFC3339Nano),
		record.Duration,
		record.SearchQuery,
		record.Confidence,
		string(tags),
		s.now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return false, fmt.Errorf("insert clip %s: %w", record.ID, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return affected == 1, nil
}

// Filter narrows GetClips results. Zero values match everything.
type Filter struct {
	// Query matches case-insensitively against sentence, title, and search query.
	Query string
	// SourceFile matches the exact source path.
	SourceFile string
	Limit      int
	Offset     int
}

// GetClips returns mirrored clips, newest first.
func (s *Store) GetClips(ctx context.Context, filter Filter) ([]clipstore.ClipMetadata, error) {
	var (
		where []string
		args  []any
	)
	if q := strings.TrimSpace(filter.Query); q != "" {
		pattern := "%" + escapeLike(strings.ToLower(q)) + "%"
		where = append(where, `(LOWER(sentence) LIKE ? ESCAPE '\' OR LOWER(title) LIKE ? ESCAPE '\' OR LOWER(search_query) LIKE ? ESCAPE '\')`)
		args = append(args, pattern, pattern, pattern)
	}
	if src := strings.TrimSpace(filter.SourceFile); src != "" {
		where = append(where, "source_file = ?")
		args = append(args, src)
	}

	query := `SELECT id, title, sentence, original_text, translated_text, start_time, end_time,
        source_file, clip_path, thumbnail_path, created_at, duration, search_query, confidence, tags
        FROM clips`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY created_at DESC, id"
	if filter.Limit > 0 {
		query += " LIMIT ? OFFSET ?"
		args = append(args, filter.Limit, max(filter.Offset, 0))
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query clips: %w", err)
	}
	defer rows.Close()

	var clips []clipstore.ClipMetadata
	for rows.Next() {
		record, err := scanClip(rows)
		if err != nil {
			return nil, err
		}
		clips = append(clips, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate clips: %w", err)
	}
	return clips, nil
}

// Count returns the number of mirrored clips.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(1) FROM clips").Scan(&n); err != nil {
		return 0, fmt.Errorf("count clips: %w", err)
	}
	return n, nil
}

func scanClip(rows *sql.Rows) (clipstore.ClipMetadata, error) {
	var (
		record     clipstore.ClipMetadata
		translated sql.NullString
		thumbnail  sql.NullString
		createdAt  string
		tags       string
	)
	if err := rows.Scan(
		&record.ID,
		&record.Title,
		&record.Sentence,
		&record.OriginalText,
		&translated,
		&record.StartTime,
		&record.EndTime,
		&record.SourceFile,
		&record.ClipPath,
		&thumbnail,
		&createdAt,
		&record.Duration,
		&record.SearchQuery,
		&record.Confidence,
		&tags,
	); err != nil {
		return clipstore.ClipMetadata{}, fmt.Errorf("scan clip: %w", err)
	}
	record.TranslatedText = translated.String
	record.ThumbnailPath = thumbnail.String
	if ts, err := time.Parse(time.RFC3339Nano, createdAt); err == nil {
		record.CreatedAt = ts
	}
	if err := json.Unmarshal([]byte(tags), &record.Tags); err != nil {
		return clipstore.ClipMetadata{}, fmt.Errorf("decode tags for %s: %w", record.ID, err)
	}
	return record, nil
}

func nullableString(value string) any {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	return value
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
