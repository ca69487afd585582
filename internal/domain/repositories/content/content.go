package content

import (
	"context"

	models "folio/internal/domain/models/content"
)

// ContentRepository defines data access operations for content records
type ContentRepository interface {
	// Create inserts a new content record and fills in ID and timestamps
	Create(ctx context.Context, c *models.Content) error

	// GetByID retrieves a live (not deleted) content record
	GetByID(ctx context.Context, id string) (*models.Content, error)

	// Update overwrites title and all processed fields of an existing record
	Update(ctx context.Context, c *models.Content) error

	// Delete soft-deletes a content record
	Delete(ctx context.Context, id string) error

	// ExistsReferencingAsset reports whether any live record other than excludeID
	// has rendered HTML naming the given asset
	ExistsReferencingAsset(ctx context.Context, assetID, excludeID string) (bool, error)

	// ListBatch returns up to limit live records with ID greater than afterID, ordered by ID
	ListBatch(ctx context.Context, afterID string, limit int) ([]models.Content, error)

	// Search performs full-text search over content_text
	Search(ctx context.Context, opts *SearchOptions) (*models.SearchResults, error)
}

// SearchOptions configures a content search
type SearchOptions struct {
	Query    string
	AuthorID string // Optional author filter
	Limit    int
	Offset   int
}
