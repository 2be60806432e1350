package pipeline

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"clipgen/internal/clipstore"
	"clipgen/internal/ffmpeg"
	"clipgen/internal/logging"
	"clipgen/internal/supervisor"
)

type itemStatus int

const (
	statusSkipped itemStatus = iota
	statusSucceeded
	statusFailed
)

type itemResult struct {
	record clipstore.ClipMetadata
	status itemStatus
}

// dedupeRequests drops exact repeats of an earlier request in the same batch.
func dedupeRequests(requests []clipstore.Request) ([]clipstore.Request, []clipstore.Request) {
	seen := make(map[clipstore.Key]struct{}, len(requests))
	unique := make([]clipstore.Request, 0, len(requests))
	var dropped []clipstore.Request
	for _, req := range requests {
		key := req.Key()
		if _, ok := seen[key]; ok {
			dropped = append(dropped, req)
			continue
		}
		seen[key] = struct{}{}
		unique = append(unique, req)
	}
	return unique, dropped
}

// materialize is stage 1: filter requests and persist one record per survivor.
// Duplicates are checked against records loaded once at the start.
func (p *Pipeline) materialize(ctx context.Context, requests []clipstore.Request) ([]clipstore.ClipMetadata, StageCounts) {
	logger := logging.WithContext(ctx, p.logger)
	var counts StageCounts

	unique, dropped := dedupeRequests(requests)
	for _, req := range dropped {
		counts.add(statusSkipped)
		logger.Info("skipping repeated request in batch", logging.String("key", req.Key().String()))
	}

	existing := p.store.LoadAll()
	created := make([]clipstore.ClipMetadata, 0, len(unique))
	for _, req := range unique {
		key := req.Key()
		reqLogger := logger.With(logging.String("source", key.SourceFile), logging.String("start", key.Start), logging.String("end", key.End))

		if key.SourceFile == "" {
			counts.add(statusSkipped)
			reqLogger.Warn("skipping request without source file",
				logging.String(logging.FieldEventType, "request_rejected"),
				logging.String(logging.FieldImpact, "no clip is created for this request"),
				logging.String(logging.FieldErrorHint, "include sourceFile in the request"),
			)
			continue
		}
		if entry, ok := p.validator.BlacklistMatch(key.SourceFile); ok {
			counts.add(statusSkipped)
			reqLogger.Info("skipping blacklisted source",
				logging.String(logging.FieldEventType, "source_blacklisted"),
				logging.String("entry", entry),
			)
			continue
		}
		if clipstore.IsDuplicate(req, existing) {
			counts.add(statusSkipped)
			reqLogger.Info("skipping request that already has a clip",
				logging.String(logging.FieldEventType, "request_duplicate"),
			)
			continue
		}
		if _, _, err := req.Span(); err != nil {
			counts.add(statusSkipped)
			logging.WarnWithContext(reqLogger, "skipping request with unparseable span", "request_rejected",
				logging.Error(err),
				logging.String(logging.FieldImpact, "no clip is created for this request"),
				logging.String(logging.FieldErrorHint, "timestamps must look like HH:MM:SS,mmm"),
			)
			continue
		}
		if result := p.validator.Validate(key.SourceFile); !result.OK() {
			counts.add(statusSkipped)
			logging.WarnWithContext(reqLogger, "skipping invalid source media", "source_invalid",
				logging.Error(result.Err),
				logging.Int64("size_bytes", result.SizeBytes),
				logging.String(logging.FieldImpact, "no clip is created for this request"),
				logging.String(logging.FieldErrorHint, "check the source path and file size"),
			)
			continue
		}

		record := p.store.Create(req, p.newID())
		if !p.store.Save(record) {
			counts.add(statusFailed)
			continue
		}
		counts.add(statusSucceeded)
		created = append(created, record)
		reqLogger.Debug("clip record created", logging.String(logging.FieldClipID, record.ID), logging.String("title", record.Title))
	}

	logger.Info("metadata stage complete",
		logging.Int("created", counts.Succeeded),
		logging.Int("skipped", counts.Skipped),
		logging.Int("failed", counts.Failed),
	)
	return created, counts
}

type stageFunc func(ctx context.Context, record clipstore.ClipMetadata) itemResult

// runStage fans each chunk out, waits for all of it, then moves on. Results
// are written to per-index slots and only aggregated after the join.
func (p *Pipeline) runStage(ctx context.Context, records []clipstore.ClipMetadata, chunkSize int, fn stageFunc) ([]clipstore.ClipMetadata, StageCounts) {
	logger := logging.WithContext(ctx, p.logger)
	if chunkSize <= 0 {
		chunkSize = 1
	}
	out := make([]clipstore.ClipMetadata, len(records))
	var total StageCounts

	for offset := 0; offset < len(records); offset += chunkSize {
		chunk := records[offset:min(offset+chunkSize, len(records))]
		results := make([]itemResult, len(chunk))

		var g errgroup.Group
		for i, record := range chunk {
			g.Go(func() error {
				results[i] = fn(logging.WithClipID(ctx, record.ID), record)
				return nil
			})
		}
		_ = g.Wait()

		var counts StageCounts
		for i, res := range results {
			out[offset+i] = res.record
			counts.add(res.status)
		}
		total.Succeeded += counts.Succeeded
		total.Failed += counts.Failed
		total.Skipped += counts.Skipped
		logger.Debug("chunk complete",
			logging.Int("chunk_start", offset),
			logging.Int("chunk_size", len(chunk)),
			logging.Int("succeeded", counts.Succeeded),
			logging.Int("failed", counts.Failed),
			logging.Int("skipped", counts.Skipped),
		)
	}

	logger.Info("stage complete",
		logging.Int("succeeded", total.Succeeded),
		logging.Int("failed", total.Failed),
		logging.Int("skipped", total.Skipped),
	)
	return out, total
}

// thumbnail is stage 2 for one record. The source is validated again since
// it may have moved or grown after stage 1.
func (p *Pipeline) thumbnail(ctx context.Context, record clipstore.ClipMetadata) itemResult {
	logger := logging.WithContext(ctx, p.logger)
	fail := itemResult{record: record, status: statusFailed}
	if ctx.Err() != nil {
		return fail
	}

	if result := p.validator.Validate(record.SourceFile); !result.OK() {
		logging.WarnWithContext(logger, "source failed check before thumbnail", "source_invalid",
			logging.Error(result.Err),
			logging.String(logging.FieldImpact, "no thumbnail; clip stage checks the source again"),
			logging.String(logging.FieldErrorHint, "check the source path and file size"),
		)
		return itemResult{record: record, status: statusSkipped}
	}

	start, end, err := record.Span()
	if err != nil {
		logging.WarnWithContext(logger, "cannot seek for thumbnail", "thumbnail_span_invalid",
			logging.Error(err),
			logging.String(logging.FieldImpact, "record stays at "+record.Stage()),
		)
		return fail
	}

	output := p.cfg.ThumbnailFilePath(record.ID)
	span := ffmpeg.Span{Source: record.SourceFile, Start: start, End: end}
	outcome := p.runner.Run(ctx, supervisor.Job{
		Name:    "thumbnail",
		Binary:  p.cfg.Encoder.FFmpegBinary,
		Args:    ffmpeg.ThumbnailArgs(p.cfg.Thumbnail, span, output),
		Timeout: p.cfg.ThumbnailTimeout(),
	})
	if !p.encoded(logger, outcome, output, record) {
		return fail
	}

	public := p.cfg.ThumbnailPublicPath(record.ID)
	updated, ok := p.store.Update(record, clipstore.Patch{ThumbnailPath: &public, AdvanceTo: clipstore.TagStage2})
	if !ok {
		return fail
	}
	logger.Debug("thumbnail created", logging.String("path", output))
	return itemResult{record: updated, status: statusSucceeded}
}

// clip is stage 3 for one record. Input checks run again here because the
// blacklist or the source file may have changed since stage 1.
func (p *Pipeline) clip(ctx context.Context, record clipstore.ClipMetadata) itemResult {
	logger := logging.WithContext(ctx, p.logger)
	reject := func(msg, eventType string, attrs ...logging.Attr) itemResult {
		attrs = append(attrs,
			logging.String(logging.FieldImpact, "clip not encoded; record stays at "+record.Stage()),
		)
		logging.WarnWithContext(logger, msg, eventType, attrs...)
		return itemResult{record: record, status: statusSkipped}
	}
	if ctx.Err() != nil {
		return itemResult{record: record, status: statusFailed}
	}

	if entry, ok := p.validator.BlacklistMatch(record.SourceFile); ok {
		return reject("source blacklisted before clip encode", "source_blacklisted",
			logging.String("entry", entry),
			logging.String(logging.FieldErrorHint, "remove the entry from pipeline.blacklist to allow this source"),
		)
	}
	if result := p.validator.CheckSoftLimit(record.SourceFile, p.cfg.MaxFileSizeBytes()); !result.OK() {
		return reject("source failed size check before clip encode", "source_invalid",
			logging.Error(result.Err),
			logging.String(logging.FieldErrorHint, "raise pipeline.max_file_size_gb or use a smaller source"),
		)
	}
	start, end, err := record.Span()
	if err != nil {
		return reject("clip span unparseable", "clip_span_invalid", logging.Error(err))
	}
	if start >= end {
		return reject("clip span is empty or reversed", "clip_span_invalid",
			logging.String("start", record.StartTime),
			logging.String("end", record.EndTime),
			logging.String(logging.FieldErrorHint, "end must be after start"),
		)
	}
	if limit := p.cfg.MaxClipDuration(); end-start > limit {
		return reject("clip span exceeds maximum duration", "clip_span_invalid",
			logging.Duration("span", end-start),
			logging.Duration("max", limit),
			logging.String(logging.FieldErrorHint, "shorten the span or raise pipeline.max_clip_duration_seconds"),
		)
	}

	output := p.cfg.ClipFilePath(record.ID)
	span := ffmpeg.Span{Source: record.SourceFile, Start: start, End: end}
	outcome := p.runner.Run(ctx, supervisor.Job{
		Name:             "clip",
		Binary:           p.cfg.Encoder.FFmpegBinary,
		Args:             ffmpeg.ClipArgs(p.cfg.Clip, span, output),
		ExpectedDuration: span.Duration(),
		Timeout:          p.cfg.ClipTimeout(),
	})
	if !p.encoded(logger, outcome, output, record) {
		return itemResult{record: record, status: statusFailed}
	}

	updated, ok := p.store.Update(record, clipstore.Patch{AdvanceTo: clipstore.TagCompleted})
	if !ok {
		return itemResult{record: record, status: statusFailed}
	}
	logger.Info("clip completed",
		logging.String("title", record.Title),
		logging.String("path", output),
		logging.Duration("encode_time", outcome.Elapsed.Round(time.Millisecond)),
	)
	return itemResult{record: updated, status: statusSucceeded}
}

// encoded reports whether an encoder run left a usable output file. The
// supervisor has already logged process-level failures.
func (p *Pipeline) encoded(logger *slog.Logger, outcome supervisor.Outcome, output string, record clipstore.ClipMetadata) bool {
	if !outcome.Success {
		return false
	}
	if outputExists(output) {
		return true
	}
	logging.WarnWithContext(logger, "encoder exited cleanly without writing output", "encoder_output_missing",
		logging.String("path", output),
		logging.String("stderr_tail", strings.TrimSpace(outcome.StderrTail)),
		logging.String(logging.FieldImpact, "record stays at "+record.Stage()),
		logging.String(logging.FieldErrorHint, "check encoder arguments and output directory permissions"),
	)
	return false
}
