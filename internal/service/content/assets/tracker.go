package assets

import (
	"context"
	"errors"
	"log/slog"

	"folio/internal/domain"
	models "folio/internal/domain/models/content"
	contentRepo "folio/internal/domain/repositories/content"
	contentSvc "folio/internal/domain/services/content"
)

type tracker struct {
	assetRepo contentRepo.AssetRepository
	contents  contentRepo.ContentRepository
	objects   contentRepo.ObjectStore
	logger    *slog.Logger
}

// NewTracker creates the asset reference tracker.
// Claims are last-writer-wins; deletion re-checks liveness with a scan of
// live content instead of trusting the claim.
func NewTracker(
	assetRepo contentRepo.AssetRepository,
	contents contentRepo.ContentRepository,
	objects contentRepo.ObjectStore,
	logger *slog.Logger,
) contentSvc.AssetTracker {
	return &tracker{
		assetRepo: assetRepo,
		contents:  contents,
		objects:   objects,
		logger:    logger,
	}
}

// Associate claims every asset for ownerID. A failed claim is logged and skipped.
func (t *tracker) Associate(ctx context.Context, ownerID string, assetIDs []string) {
	for _, id := range assetIDs {
		if err := t.assetRepo.SetAttachment(ctx, id, models.AttachmentTypeInline, ownerID); err != nil {
			t.warn("associate", ownerID, id, err)
			continue
		}
		t.logger.Debug("asset claimed", "owner_id", ownerID, "asset_id", id)
	}
}

// Disassociate releases every asset still claimed by ownerID.
func (t *tracker) Disassociate(ctx context.Context, ownerID string, assetIDs []string) {
	for _, id := range assetIDs {
		cleared, err := t.assetRepo.ClearAttachment(ctx, id, ownerID)
		if err != nil {
			t.warn("disassociate", ownerID, id, err)
			continue
		}
		if cleared {
			t.logger.Debug("asset released", "owner_id", ownerID, "asset_id", id)
		}
	}
}

// ReconcileOnUpdate releases assets no longer referenced and claims new ones.
func (t *tracker) ReconcileOnUpdate(ctx context.Context, ownerID string, oldIDs, newIDs []string) {
	removed := difference(oldIDs, newIDs)
	added := difference(newIDs, oldIDs)

	if len(removed) > 0 || len(added) > 0 {
		t.logger.Debug("reconciling asset claims",
			"owner_id", ownerID,
			"removed", len(removed),
			"added", len(added),
		)
	}

	t.Disassociate(ctx, ownerID, removed)
	t.Associate(ctx, ownerID, added)
}

// CleanupOnDelete runs after ownerID has been deleted. Each asset still named
// by another live record is retained and released; the rest are removed from
// the object store and the asset table. Any failure keeps the asset.
func (t *tracker) CleanupOnDelete(ctx context.Context, ownerID string, ownedIDs []string) models.CleanupResult {
	result := models.CleanupResult{
		Deleted:  []string{},
		Retained: []string{},
	}

	for _, id := range unique(ownedIDs) {
		if t.deleteIfOrphaned(ctx, ownerID, id) {
			result.Deleted = append(result.Deleted, id)
		} else {
			result.Retained = append(result.Retained, id)
		}
	}

	t.logger.Info("asset cleanup finished",
		"owner_id", ownerID,
		"deleted", len(result.Deleted),
		"retained", len(result.Retained),
	)
	return result
}

// deleteIfOrphaned reports whether the asset was physically removed.
func (t *tracker) deleteIfOrphaned(ctx context.Context, ownerID, id string) bool {
	referenced, err := t.contents.ExistsReferencingAsset(ctx, id, ownerID)
	if err != nil {
		t.warn("cleanup_scan", ownerID, id, err)
		return false
	}

	if referenced {
		if _, err := t.assetRepo.ClearAttachment(ctx, id, ownerID); err != nil {
			t.warn("cleanup_release", ownerID, id, err)
		}
		return false
	}

	// The scan above is repeated inside the delete: a record saved since
	// then keeps the asset.
	removed, err := t.assetRepo.DeleteIfUnreferenced(ctx, id, ownerID, t.objects.Delete)
	if err != nil {
		t.warn("cleanup_delete", ownerID, id, err)
		return false
	}
	if !removed {
		if _, err := t.assetRepo.ClearAttachment(ctx, id, ownerID); err != nil && !errors.Is(err, domain.ErrNotFound) {
			t.warn("cleanup_release", ownerID, id, err)
		}
		t.logger.Debug("asset referenced or missing at delete time", "owner_id", ownerID, "asset_id", id)
		return false
	}

	t.logger.Debug("orphaned asset deleted", "owner_id", ownerID, "asset_id", id)
	return true
}

func (t *tracker) warn(operation, ownerID, assetID string, err error) {
	t.logger.Warn("asset tracking failed",
		"operation", operation,
		"owner_id", ownerID,
		"asset_id", assetID,
		"error", err,
	)
}

// difference returns the ids in a that are not in b, keeping a's order.
func difference(a, b []string) []string {
	exclude := make(map[string]struct{}, len(b))
	for _, id := range b {
		exclude[id] = struct{}{}
	}

	var out []string
	for _, id := range unique(a) {
		if _, ok := exclude[id]; !ok {
			out = append(out, id)
		}
	}
	return out
}

func unique(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
