package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"

	"clipgen/internal/clipstore"
	"clipgen/internal/config"
	"clipgen/internal/logging"
	"clipgen/internal/media"
	"clipgen/internal/supervisor"
)

// ErrBatchLocked is returned when another batch holds the output directory lock.
var ErrBatchLocked = errors.New("another clip batch is already running")

const lockFileName = ".clipgen.lock"

// Runner executes one encoder job.
type Runner interface {
	Run(ctx context.Context, job supervisor.Job) supervisor.Outcome
}

// StageCounts aggregates item outcomes for one stage.
type StageCounts struct {
	Succeeded int
	Failed    int
	Skipped   int
}

// Processed is the number of items the stage looked at.
func (c StageCounts) Processed() int {
	return c.Succeeded + c.Failed + c.Skipped
}

func (c *StageCounts) add(status itemStatus) {
	switch status {
	case statusSucceeded:
		c.Succeeded++
	case statusFailed:
		c.Failed++
	default:
		c.Skipped++
	}
}

// Timings records wall-clock duration per stage.
type Timings struct {
	Metadata   time.Duration
	Thumbnails time.Duration
	Clips      time.Duration
	Total      time.Duration
}

// BatchResult is the aggregate outcome of RunBatch.
type BatchResult struct {
	BatchID    string
	Metadata   StageCounts
	Thumbnails StageCounts
	Clips      StageCounts
	Timings    Timings
	// Records holds the latest state of every record created by this batch.
	Records []clipstore.ClipMetadata
}

// Pipeline orchestrates clip generation.
type Pipeline struct {
	cfg       *config.Config
	store     *clipstore.Store
	validator *media.Validator
	runner    Runner
	logger    *slog.Logger
	newID     func() string
	now       func() time.Time
}

// New wires a pipeline from its collaborators.
func New(cfg *config.Config, store *clipstore.Store, validator *media.Validator, runner Runner, logger *slog.Logger) *Pipeline {
	return &Pipeline{
		cfg:       cfg,
		store:     store,
		validator: validator,
		runner:    runner,
		logger:    logging.NewComponentLogger(logger, "pipeline"),
		newID:     uuid.NewString,
		now:       time.Now,
	}
}

// RunBatch processes requests through all three stages. It only returns an
// error when the batch cannot start; item failures are reported in the result.
func (p *Pipeline) RunBatch(ctx context.Context, requests []clipstore.Request) (BatchResult, error) {
	if err := p.cfg.EnsureDirectories(); err != nil {
		return BatchResult{}, err
	}
	lock := flock.New(filepath.Join(p.cfg.Paths.OutputDir, lockFileName))
	locked, err := lock.TryLock()
	if err != nil {
		return BatchResult{}, fmt.Errorf("acquire batch lock: %w", err)
	}
	if !locked {
		return BatchResult{}, ErrBatchLocked
	}
	defer func() {
		if err := lock.Unlock(); err != nil {
			p.logger.Warn("failed to release batch lock",
				logging.String(logging.FieldEventType, "batch_lock_release_failed"),
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "remove "+lock.Path()+" if no batch is running"),
				logging.String(logging.FieldImpact, "the next batch may report the lock as busy"),
			)
		}
	}()

	result := BatchResult{BatchID: p.newID()}
	ctx = logging.WithBatchID(ctx, result.BatchID)
	logger := logging.WithContext(ctx, p.logger)
	logger.Info("clip batch started", logging.Int("requests", len(requests)))
	batchStart := p.now()

	stageStart := p.now()
	records, counts := p.materialize(logging.WithStage(ctx, "metadata"), requests)
	result.Metadata = counts
	result.Timings.Metadata = p.now().Sub(stageStart)

	stageStart = p.now()
	records, result.Thumbnails = p.runStage(logging.WithStage(ctx, "thumbnails"), records,
		p.cfg.Pipeline.ThumbnailBatchSize, p.thumbnail)
	result.Timings.Thumbnails = p.now().Sub(stageStart)

	stageStart = p.now()
	records, result.Clips = p.runStage(logging.WithStage(ctx, "clips"), records,
		p.cfg.Pipeline.ClipBatchSize, p.clip)
	result.Timings.Clips = p.now().Sub(stageStart)

	result.Records = records
	result.Timings.Total = p.now().Sub(batchStart)

	logger.Info("clip batch finished",
		logging.Int("json_created", result.Metadata.Succeeded),
		logging.Int("json_skipped", result.Metadata.Skipped),
		logging.Int("thumbnails_created", result.Thumbnails.Succeeded),
		logging.Int("thumbnails_failed", result.Thumbnails.Failed),
		logging.Int("clips_created", result.Clips.Succeeded),
		logging.Int("clips_failed", result.Clips.Failed),
		logging.Int("clips_rejected", result.Clips.Skipped),
		logging.Duration("elapsed", result.Timings.Total.Round(time.Millisecond)),
	)
	return result, nil
}

// outputExists guards against an encoder that exits 0 without writing output.
func outputExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular() && info.Size() > 0
}
