package content

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"slices"

	"folio/internal/config"
	models "folio/internal/domain/models/content"
	contentRepo "folio/internal/domain/repositories/content"
	contentSvc "folio/internal/domain/services/content"
)

type reprocessor struct {
	contents  contentRepo.ContentRepository
	processor contentSvc.ContentProcessor
	tracker   contentSvc.AssetTracker
	logger    *slog.Logger
}

// NewReprocessor creates the batch reprocessor for stored content.
func NewReprocessor(
	contents contentRepo.ContentRepository,
	processor contentSvc.ContentProcessor,
	tracker contentSvc.AssetTracker,
	logger *slog.Logger,
) contentSvc.ContentReprocessor {
	return &reprocessor{
		contents:  contents,
		processor: processor,
		tracker:   tracker,
		logger:    logger,
	}
}

// Reprocess re-runs the pipeline over stored records in id order, one small
// batch at a time. Each record is handled on its own: a record that fails
// is reported and skipped. Only a failure to list a batch, or ctx being
// cancelled, ends the run early; the report then holds LastID to resume from.
func (r *reprocessor) Reprocess(ctx context.Context, opts contentSvc.ReprocessOptions) (*contentSvc.ReprocessReport, error) {
	batchSize := opts.BatchSize
	if batchSize <= 0 {
		batchSize = config.DefaultReprocessBatchSize
	}

	report := &contentSvc.ReprocessReport{
		Failed: []contentSvc.FailedRecord{},
		LastID: opts.AfterID,
	}

	r.logger.Info("reprocessing started",
		"batch_size", batchSize,
		"after_id", opts.AfterID,
		"limit", opts.Limit,
		"dry_run", opts.DryRun,
	)

	for {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		size := batchSize
		if opts.Limit > 0 {
			size = min(size, opts.Limit-report.Processed)
			if size <= 0 {
				break
			}
		}

		batch, err := r.contents.ListBatch(ctx, report.LastID, size)
		if err != nil {
			return report, fmt.Errorf("list batch after %q: %w", report.LastID, err)
		}

		for i := range batch {
			r.reprocessOne(ctx, &batch[i], opts.DryRun, report)
			report.LastID = batch[i].ID
		}

		r.logger.Debug("batch reprocessed",
			"records", len(batch),
			"last_id", report.LastID,
		)

		if len(batch) < size {
			break
		}
	}

	r.logger.Info("reprocessing finished",
		"processed", report.Processed,
		"updated", report.Updated,
		"unchanged", report.Unchanged,
		"failed", len(report.Failed),
		"last_id", report.LastID,
	)

	return report, nil
}

func (r *reprocessor) reprocessOne(ctx context.Context, record *models.Content, dryRun bool, report *contentSvc.ReprocessReport) {
	report.Processed++

	// A stored type that is no longer valid is ignored by the classifier.
	hint := record.ContentType
	processed, err := r.processor.Process(record.ContentOriginal, &hint)
	if err != nil {
		r.fail(report, record.ID, err)
		return
	}

	if !derivedFieldsChanged(record, processed) {
		report.Unchanged++
		return
	}

	if dryRun {
		report.Updated++
		return
	}

	oldIDs := record.InlineAssetIDs
	record.ApplyProcessed(processed)
	if err := r.contents.Update(ctx, record); err != nil {
		r.fail(report, record.ID, err)
		return
	}

	r.tracker.ReconcileOnUpdate(ctx, record.ID, oldIDs, record.InlineAssetIDs)
	report.Updated++
}

func (r *reprocessor) fail(report *contentSvc.ReprocessReport, id string, err error) {
	r.logger.Warn("record reprocessing failed", "id", id, "error", err)
	report.Failed = append(report.Failed, contentSvc.FailedRecord{ID: id, Error: err.Error()})
}

func derivedFieldsChanged(record *models.Content, p models.ProcessedContent) bool {
	return record.ContentType != p.ContentType ||
		record.ContentRendered != p.ContentRendered ||
		record.ContentText != p.ContentText ||
		record.WordCount != p.WordCount ||
		record.ReadingTime != p.ReadingTime ||
		!slices.Equal(record.InlineAssetIDs, p.InlineAssetIDs) ||
		!frontMatterEqual(record.FrontMatter, p.FrontMatter)
}

// frontMatterEqual compares by JSON encoding, since stored front matter comes
// back from jsonb with numbers as float64.
func frontMatterEqual(a, b map[string]any) bool {
	if len(a) == 0 && len(b) == 0 {
		return true
	}
	ja, errA := json.Marshal(a)
	jb, errB := json.Marshal(b)
	return errA == nil && errB == nil && bytes.Equal(ja, jb)
}
