package content

import (
	models "folio/internal/domain/models/content"
)

// ContentProcessor turns raw author input into a ProcessedContent.
// Implementations are stateless and safe for concurrent use.
type ContentProcessor interface {
	// Process runs the full pipeline: classify, render, sanitize, extract.
	// Any stage failure is returned as *domain.ContentProcessingError.
	Process(raw string, hint *models.ContentType) (models.ProcessedContent, error)

	// Preview runs the same pipeline for no-persistence call sites.
	Preview(raw string, hint *models.ContentType) (models.PreviewResult, error)
}
