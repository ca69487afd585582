package content

import (
	"context"
	"io"

	models "folio/internal/domain/models/content"
)

// AssetService handles uploaded files referenced from content
type AssetService interface {
	// Upload stores the bytes and registers an unattached asset
	Upload(ctx context.Context, req *UploadAssetRequest) (*models.Asset, error)

	// Open returns the asset and a reader for its bytes. The caller closes the reader.
	Open(ctx context.Context, id string) (*models.Asset, io.ReadCloser, error)
}

// UploadAssetRequest represents one uploaded file
type UploadAssetRequest struct {
	Filename string
	MimeType string
	Body     io.Reader
}
