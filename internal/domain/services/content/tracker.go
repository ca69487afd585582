package content

import (
	"context"

	models "folio/internal/domain/models/content"
)

// AssetTracker maintains asset claims as content is created, edited and deleted.
// Failures are logged, never returned, except through CleanupResult.Retained.
type AssetTracker interface {
	Associate(ctx context.Context, ownerID string, assetIDs []string)
	Disassociate(ctx context.Context, ownerID string, assetIDs []string)
	ReconcileOnUpdate(ctx context.Context, ownerID string, oldIDs, newIDs []string)
	CleanupOnDelete(ctx context.Context, ownerID string, ownedIDs []string) models.CleanupResult
}
