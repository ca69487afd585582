package assets

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"

	"folio/internal/config"
	"folio/internal/domain"
	models "folio/internal/domain/models/content"
	contentRepo "folio/internal/domain/repositories/content"
	contentSvc "folio/internal/domain/services/content"
)

// imageExtensions lists the accepted upload types. SVG is excluded: it can
// carry script and is served from our own origin.
var imageExtensions = map[string]string{
	"image/png":  ".png",
	"image/jpeg": ".jpg",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// sniffLen is how much of the body http.DetectContentType looks at.
const sniffLen = 512

type fileService struct {
	assets contentRepo.AssetRepository
	files  contentRepo.FileStore
	logger *slog.Logger
}

// NewFileService creates the upload and download service for assets
func NewFileService(assets contentRepo.AssetRepository, files contentRepo.FileStore, logger *slog.Logger) contentSvc.AssetService {
	return &fileService{
		assets: assets,
		files:  files,
		logger: logger,
	}
}

// Upload stores the bytes under a fresh key, then registers the asset. The
// type is taken from the bytes, not from what the client declared.
func (s *fileService) Upload(ctx context.Context, req *contentSvc.UploadAssetRequest) (*models.Asset, error) {
	err := validation.ValidateStruct(req,
		validation.Field(&req.Filename, validation.Required, validation.Length(1, 255)),
		validation.Field(&req.Body, validation.NotNil),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	head := make([]byte, sniffLen)
	n, err := io.ReadFull(req.Body, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	head = head[:n]
	if n == 0 {
		return nil, &domain.ValidationError{Message: "file is empty"}
	}

	mimeType, _, _ := strings.Cut(http.DetectContentType(head), ";")
	ext, ok := imageExtensions[mimeType]
	if !ok {
		return nil, &domain.ValidationError{Message: fmt.Sprintf("unsupported file type %q", mimeType)}
	}

	asset := &models.Asset{
		StorageKey: uuid.NewString() + ext,
		Filename:   req.Filename,
		MimeType:   mimeType,
	}

	body := io.LimitReader(io.MultiReader(bytes.NewReader(head), req.Body), config.MaxAssetBytes+1)
	size, err := s.files.Put(ctx, asset.StorageKey, body)
	if err != nil {
		return nil, fmt.Errorf("store upload: %w", err)
	}
	asset.SizeBytes = size

	if size > config.MaxAssetBytes {
		s.discard(ctx, asset)
		return nil, &domain.ValidationError{Message: fmt.Sprintf("file exceeds %d bytes", config.MaxAssetBytes)}
	}

	if err := s.assets.Create(ctx, asset); err != nil {
		s.discard(ctx, asset)
		return nil, err
	}

	s.logger.Info("asset uploaded",
		"asset_id", asset.ID,
		"mime_type", asset.MimeType,
		"size_bytes", asset.SizeBytes,
	)

	return asset, nil
}

// Open returns the asset metadata and its bytes
func (s *fileService) Open(ctx context.Context, id string) (*models.Asset, io.ReadCloser, error) {
	asset, err := s.assets.GetByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	rc, err := s.files.Open(ctx, asset.StorageKey)
	if err != nil {
		return nil, nil, err
	}
	return asset, rc, nil
}

// discard removes bytes written for an upload that was rejected afterwards.
func (s *fileService) discard(ctx context.Context, asset *models.Asset) {
	if err := s.files.Delete(ctx, asset); err != nil {
		s.logger.Warn("failed to remove rejected upload",
			"storage_key", asset.StorageKey,
			"error", err,
		)
	}
}
