package mirror

import (
	"context"
	"fmt"

	"clipgen/internal/clipstore"
	"clipgen/internal/logging"
)

// Source lists clip records by tag.
type Source interface {
	FilterByTag(tag string) []clipstore.ClipMetadata
}

// SyncResult summarizes one Sync pass.
type SyncResult struct {
	Scanned  int
	Inserted int
	Existing int
}

// Sync copies every completed record from source that the mirror lacks.
func (s *Store) Sync(ctx context.Context, source Source) (SyncResult, error) {
	var result SyncResult
	for _, record := range source.FilterByTag(clipstore.TagCompleted) {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		result.Scanned++
		inserted, err := s.CreateClip(ctx, record)
		if err != nil {
			return result, fmt.Errorf("sync %s: %w", record.ID, err)
		}
		if inserted {
			result.Inserted++
			s.logger.Debug("clip mirrored", logging.String(logging.FieldClipID, record.ID))
		} else {
			result.Existing++
		}
	}
	s.logger.Info("mirror sync complete",
		logging.Int("scanned", result.Scanned),
		logging.Int("inserted", result.Inserted),
		logging.Int("existing", result.Existing),
	)
	return result, nil
}
