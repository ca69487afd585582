package content

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"folio/internal/domain"
	models "folio/internal/domain/models/content"
	contentRepo "folio/internal/domain/repositories/content"
	contentSvc "folio/internal/domain/services/content"
	"folio/internal/repository/memory"
	"folio/internal/service/content/assets"
	"folio/internal/service/content/processing"
)

// poisonProcessor fails on any body containing "POISON".
type poisonProcessor struct {
	contentSvc.ContentProcessor
}

func (p poisonProcessor) Process(raw string, hint *models.ContentType) (models.ProcessedContent, error) {
	if strings.Contains(raw, "POISON") {
		return models.ProcessedContent{}, &domain.ContentProcessingError{Stage: domain.StageRender, Err: errors.New("poisoned")}
	}
	return p.ContentProcessor.Process(raw, hint)
}

// brokenBatches fails every ListBatch call after the first.
type brokenBatches struct {
	*memory.ContentRepository
	calls int
}

func (b *brokenBatches) ListBatch(ctx context.Context, afterID string, limit int) ([]models.Content, error) {
	b.calls++
	if b.calls > 1 {
		return nil, errors.New("connection reset")
	}
	return b.ContentRepository.ListBatch(ctx, afterID, limit)
}

type reprocessHarness struct {
	contents *memory.ContentRepository
	assets   *memory.AssetRepository
	logger   *slog.Logger
}

func newReprocessHarness(t *testing.T) *reprocessHarness {
	t.Helper()
	contents := memory.NewContentRepository()
	return &reprocessHarness{
		contents: contents,
		assets:   memory.NewAssetRepository(contents),
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

// seed stores a record whose derived fields are stale.
func (h *reprocessHarness) seed(t *testing.T, id, body string, contentType models.ContentType) {
	t.Helper()
	require.NoError(t, h.contents.Create(context.Background(), &models.Content{
		ID:              id,
		AuthorID:        author,
		Title:           id,
		ContentOriginal: body,
		ContentType:     contentType,
		ContentRendered: "<p>stale</p>",
		ContentText:     "stale",
		WordCount:       1,
		ReadingTime:     1,
	}))
}

func (h *reprocessHarness) reprocessor(repo contentRepo.ContentRepository) contentSvc.ContentReprocessor {
	tracker := assets.NewTracker(h.assets, h.contents, &discardObjects{}, h.logger)
	return NewReprocessor(repo, poisonProcessor{processing.NewProcessor(h.logger)}, tracker, h.logger)
}

func TestReprocess_UpdatesStaleRecords(t *testing.T) {
	ctx := context.Background()
	h := newReprocessHarness(t)
	require.NoError(t, h.assets.Create(ctx, &models.Asset{ID: "cafebabe", StorageKey: "cafebabe"}))

	h.seed(t, "r1", "# Fresh\n\n![x](/api/files/cafebabe)", models.ContentTypeLightweightMarkup)
	h.seed(t, "r2", "plain words", models.ContentTypePlain)

	report, err := h.reprocessor(h.contents).Reprocess(ctx, contentSvc.ReprocessOptions{BatchSize: 1})
	require.NoError(t, err)

	assert.Equal(t, 2, report.Processed)
	assert.Equal(t, 2, report.Updated)
	assert.Empty(t, report.Failed)
	assert.Equal(t, "r2", report.LastID)

	r1, err := h.contents.GetByID(ctx, "r1")
	require.NoError(t, err)
	assert.Contains(t, r1.ContentRendered, "<h1>Fresh</h1>")
	assert.Equal(t, []string{"cafebabe"}, r1.InlineAssetIDs)

	asset, err := h.assets.GetByID(ctx, "cafebabe")
	require.NoError(t, err)
	assert.True(t, asset.IsClaimedBy("r1"))

	// A second run finds nothing to change.
	report, err = h.reprocessor(h.contents).Reprocess(ctx, contentSvc.ReprocessOptions{})
	require.NoError(t, err)
	assert.Equal(t, 2, report.Unchanged)
	assert.Equal(t, 0, report.Updated)
}

func TestReprocess_KeepsStoredType(t *testing.T) {
	ctx := context.Background()
	h := newReprocessHarness(t)
	h.seed(t, "r1", "# literal", models.ContentTypePlain)

	_, err := h.reprocessor(h.contents).Reprocess(ctx, contentSvc.ReprocessOptions{})
	require.NoError(t, err)

	r1, err := h.contents.GetByID(ctx, "r1")
	require.NoError(t, err)
	assert.Equal(t, models.ContentTypePlain, r1.ContentType)
	assert.Equal(t, "<p># literal</p>\n", r1.ContentRendered)
}

func TestReprocess_BadRecordDoesNotHaltBatch(t *testing.T) {
	ctx := context.Background()
	h := newReprocessHarness(t)

	for i := 1; i <= 5; i++ {
		body := fmt.Sprintf("record %d", i)
		if i == 2 {
			body = "POISON"
		}
		h.seed(t, fmt.Sprintf("r%d", i), body, models.ContentTypePlain)
	}

	report, err := h.reprocessor(h.contents).Reprocess(ctx, contentSvc.ReprocessOptions{BatchSize: 2})
	require.NoError(t, err)

	assert.Equal(t, 5, report.Processed)
	assert.Equal(t, 4, report.Updated)
	require.Len(t, report.Failed, 1)
	assert.Equal(t, "r2", report.Failed[0].ID)
	assert.Contains(t, report.Failed[0].Error, "poisoned")

	r2, err := h.contents.GetByID(ctx, "r2")
	require.NoError(t, err)
	assert.Equal(t, "<p>stale</p>", r2.ContentRendered, "failed record left untouched")
}

func TestReprocess_DryRunWritesNothing(t *testing.T) {
	ctx := context.Background()
	h := newReprocessHarness(t)
	h.seed(t, "r1", "fresh text", models.ContentTypePlain)

	report, err := h.reprocessor(h.contents).Reprocess(ctx, contentSvc.ReprocessOptions{DryRun: true})
	require.NoError(t, err)
	assert.Equal(t, 1, report.Updated)

	r1, err := h.contents.GetByID(ctx, "r1")
	require.NoError(t, err)
	assert.Equal(t, "<p>stale</p>", r1.ContentRendered)
}

func TestReprocess_LimitAndResume(t *testing.T) {
	ctx := context.Background()
	h := newReprocessHarness(t)
	for _, id := range []string{"a", "b", "c", "d", "e"} {
		h.seed(t, id, "text "+id, models.ContentTypePlain)
	}

	report, err := h.reprocessor(h.contents).Reprocess(ctx, contentSvc.ReprocessOptions{BatchSize: 2, Limit: 3})
	require.NoError(t, err)
	assert.Equal(t, 3, report.Processed)
	assert.Equal(t, "c", report.LastID)

	report, err = h.reprocessor(h.contents).Reprocess(ctx, contentSvc.ReprocessOptions{BatchSize: 2, AfterID: report.LastID})
	require.NoError(t, err)
	assert.Equal(t, 2, report.Processed)
	assert.Equal(t, "e", report.LastID)
}

func TestReprocess_ListFailureReturnsPartialReport(t *testing.T) {
	ctx := context.Background()
	h := newReprocessHarness(t)
	for _, id := range []string{"a", "b", "c"} {
		h.seed(t, id, "text "+id, models.ContentTypePlain)
	}

	repo := &brokenBatches{ContentRepository: h.contents}
	report, err := h.reprocessor(repo).Reprocess(ctx, contentSvc.ReprocessOptions{BatchSize: 2})
	require.Error(t, err)
	assert.Equal(t, 2, report.Processed)
	assert.Equal(t, "b", report.LastID)
}

func TestReprocess_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	h := newReprocessHarness(t)
	h.seed(t, "a", "text", models.ContentTypePlain)

	report, err := h.reprocessor(h.contents).Reprocess(ctx, contentSvc.ReprocessOptions{})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, report.Processed)
}
