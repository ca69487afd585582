package content

import (
	"context"
	"io"

	models "folio/internal/domain/models/content"
)

// AssetRepository defines data access operations for uploaded assets
type AssetRepository interface {
	// Create registers metadata for an uploaded asset
	Create(ctx context.Context, asset *models.Asset) error

	// GetByID retrieves an asset by ID
	GetByID(ctx context.Context, id string) (*models.Asset, error)

	// SetAttachment claims the asset for ownerID (last writer wins)
	SetAttachment(ctx context.Context, id string, attachmentType models.AttachmentType, ownerID string) error

	// ClearAttachment clears the claim only if ownerID currently holds it.
	// Returns true if a claim was cleared.
	ClearAttachment(ctx context.Context, id, ownerID string) (bool, error)

	// DeleteIfUnreferenced removes the asset only while no live content record
	// other than excludeID renders it, checked in the same statement as the
	// delete. removeObject runs for the removed asset before the removal is
	// final; its error keeps the record. Returns false when the asset is still
	// referenced or does not exist.
	DeleteIfUnreferenced(ctx context.Context, id, excludeID string, removeObject func(context.Context, *models.Asset) error) (bool, error)
}

// ObjectStore holds the asset bytes. Only physical deletion is needed here.
type ObjectStore interface {
	Delete(ctx context.Context, asset *models.Asset) error
}

// FileStore is the full object store used by the upload and download paths.
type FileStore interface {
	ObjectStore

	// Put writes the bytes for key and returns the number written
	Put(ctx context.Context, key string, r io.Reader) (int64, error)

	// Open returns a reader for the bytes stored under key
	Open(ctx context.Context, key string) (io.ReadCloser, error)
}
