package content

import (
	"context"

	models "folio/internal/domain/models/content"
)

// ContentService handles content record business logic
type ContentService interface {
	// CreateContent processes and persists new content, then claims its inline assets
	CreateContent(ctx context.Context, req *CreateContentRequest) (*models.Content, error)

	// GetContent retrieves a content record
	GetContent(ctx context.Context, id string) (*models.Content, error)

	// UpdateContent re-processes edited content and reconciles asset claims
	UpdateContent(ctx context.Context, id string, req *UpdateContentRequest) (*models.Content, error)

	// DeleteContent deletes a record and cleans up orphaned assets
	DeleteContent(ctx context.Context, id, authorID string) (*models.CleanupResult, error)

	// PreviewContent renders content without persisting anything
	PreviewContent(ctx context.Context, req *PreviewContentRequest) (*models.PreviewResult, error)

	// SearchContent performs full-text search over plain text
	SearchContent(ctx context.Context, req *SearchContentRequest) (*models.SearchResults, error)

	// ExportMarkdown converts a record's sanitized HTML to lightweight markup
	ExportMarkdown(ctx context.Context, id string) (string, error)
}

// CreateContentRequest represents a content creation request
type CreateContentRequest struct {
	AuthorID    string `json:"-"` // Set by handler from auth context
	Title       string `json:"title"`
	Content     string `json:"content"`
	ContentType string `json:"content_type,omitempty"` // Optional hint
}

// UpdateContentRequest represents a content update request
type UpdateContentRequest struct {
	AuthorID    string  `json:"-"`
	Title       *string `json:"title,omitempty"`
	Content     *string `json:"content,omitempty"`
	ContentType *string `json:"content_type,omitempty"`
}

// PreviewContentRequest represents a live preview request
type PreviewContentRequest struct {
	Content     string `json:"content"`
	ContentType string `json:"content_type,omitempty"`
}

// SearchContentRequest represents a content search request
type SearchContentRequest struct {
	Query    string `json:"query"`
	AuthorID string `json:"author_id,omitempty"`
	Limit    int    `json:"limit,omitempty"`  // default: 20, max: 100
	Offset   int    `json:"offset,omitempty"` // default: 0
}

// ContentReprocessor re-runs the pipeline over stored records in batches
type ContentReprocessor interface {
	Reprocess(ctx context.Context, opts ReprocessOptions) (*ReprocessReport, error)
}

// ReprocessOptions configures a batch reprocessing run
type ReprocessOptions struct {
	BatchSize int
	AfterID   string // Resume after this ID
	Limit     int    // Max records to visit; 0 = all
	DryRun    bool
}

// ReprocessReport summarises a reprocessing run
type ReprocessReport struct {
	Processed int            `json:"processed"`
	Updated   int            `json:"updated"`
	Unchanged int            `json:"unchanged"`
	Failed    []FailedRecord `json:"failed"`
	LastID    string         `json:"last_id"`
}

// FailedRecord identifies a record that could not be reprocessed
type FailedRecord struct {
	ID    string `json:"id"`
	Error string `json:"error"`
}
