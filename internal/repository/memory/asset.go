package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"folio/internal/domain"
	models "folio/internal/domain/models/content"
	contentRepo "folio/internal/domain/repositories/content"
)

// AssetRepository is an in-memory implementation of contentRepo.AssetRepository.
type AssetRepository struct {
	mu       sync.RWMutex
	assets   map[string]*models.Asset
	contents *ContentRepository
	now      func() time.Time
}

// NewAssetRepository creates an empty in-memory asset repository.
// DeleteIfUnreferenced scans contents; nil means no record references anything.
func NewAssetRepository(contents *ContentRepository) *AssetRepository {
	return &AssetRepository{
		assets:   make(map[string]*models.Asset),
		contents: contents,
		now:      time.Now,
	}
}

var _ contentRepo.AssetRepository = (*AssetRepository)(nil)

// Create stores a copy of asset, assigning an ID when none is set.
func (r *AssetRepository) Create(_ context.Context, asset *models.Asset) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if asset.ID == "" {
		asset.ID = uuid.NewString()
	}
	if _, exists := r.assets[asset.ID]; exists {
		return &domain.ConflictError{
			Message:      fmt.Sprintf("asset %s already exists", asset.ID),
			ResourceType: "asset",
			ResourceID:   asset.ID,
		}
	}

	now := r.now().UTC()
	asset.CreatedAt = now
	asset.UpdatedAt = now
	r.assets[asset.ID] = cloneAsset(asset)
	return nil
}

// GetByID returns a copy of the asset.
func (r *AssetRepository) GetByID(_ context.Context, id string) (*models.Asset, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	asset, ok := r.assets[id]
	if !ok {
		return nil, fmt.Errorf("asset %s: %w", id, domain.ErrNotFound)
	}
	return cloneAsset(asset), nil
}

// SetAttachment overwrites the claim on the asset.
func (r *AssetRepository) SetAttachment(_ context.Context, id string, attachmentType models.AttachmentType, ownerID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	asset, ok := r.assets[id]
	if !ok {
		return fmt.Errorf("asset %s: %w", id, domain.ErrNotFound)
	}

	t := attachmentType
	owner := ownerID
	asset.AttachmentType = &t
	asset.AttachmentOwnerID = &owner
	asset.UpdatedAt = r.now().UTC()
	return nil
}

// ClearAttachment clears the claim when ownerID holds it.
func (r *AssetRepository) ClearAttachment(_ context.Context, id, ownerID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	asset, ok := r.assets[id]
	if !ok {
		return false, fmt.Errorf("asset %s: %w", id, domain.ErrNotFound)
	}
	if !asset.IsClaimedBy(ownerID) {
		return false, nil
	}

	asset.AttachmentType = nil
	asset.AttachmentOwnerID = nil
	asset.UpdatedAt = r.now().UTC()
	return true, nil
}

// DeleteIfUnreferenced holds both repositories' locks across the scan and
// the delete, so no record can start referencing the asset in between.
func (r *AssetRepository) DeleteIfUnreferenced(ctx context.Context, id, excludeID string, removeObject func(context.Context, *models.Asset) error) (bool, error) {
	ref, err := assetReference(id)
	if err != nil {
		return false, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	asset, ok := r.assets[id]
	if !ok {
		return false, nil
	}

	if r.contents != nil {
		r.contents.mu.RLock()
		defer r.contents.mu.RUnlock()
		if r.contents.referencedLocked(ref, excludeID) {
			return false, nil
		}
	}

	if err := removeObject(ctx, cloneAsset(asset)); err != nil {
		return false, fmt.Errorf("remove asset bytes: %w", err)
	}
	delete(r.assets, id)
	return true, nil
}

func cloneAsset(src *models.Asset) *models.Asset {
	copied := *src
	if src.AttachmentType != nil {
		t := *src.AttachmentType
		copied.AttachmentType = &t
	}
	if src.AttachmentOwnerID != nil {
		owner := *src.AttachmentOwnerID
		copied.AttachmentOwnerID = &owner
	}
	return &copied
}
