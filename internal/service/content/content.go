package content

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"folio/internal/config"
	"folio/internal/domain"
	models "folio/internal/domain/models/content"
	"folio/internal/domain/repositories"
	contentRepo "folio/internal/domain/repositories/content"
	contentSvc "folio/internal/domain/services/content"
	"folio/internal/service/content/converter"
)

// contentService implements the ContentService interface
type contentService struct {
	contents  contentRepo.ContentRepository
	processor contentSvc.ContentProcessor
	tracker   contentSvc.AssetTracker
	markdown  *converter.MarkdownConverter
	txManager repositories.TransactionManager
	logger    *slog.Logger
}

// NewContentService creates a new content service
func NewContentService(
	contents contentRepo.ContentRepository,
	processor contentSvc.ContentProcessor,
	tracker contentSvc.AssetTracker,
	txManager repositories.TransactionManager,
	logger *slog.Logger,
) contentSvc.ContentService {
	return &contentService{
		contents:  contents,
		processor: processor,
		tracker:   tracker,
		markdown:  converter.NewMarkdownConverter(),
		txManager: txManager,
		logger:    logger,
	}
}

// CreateContent processes and stores new content, then claims its inline assets.
// Claims are written after the record commits: they are best-effort and a
// failed claim must not roll the record back.
func (s *contentService) CreateContent(ctx context.Context, req *contentSvc.CreateContentRequest) (*models.Content, error) {
	if err := validateCreateRequest(req); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	processed, err := s.processor.Process(req.Content, models.ParseContentType(req.ContentType))
	if err != nil {
		return nil, err
	}

	record := &models.Content{
		AuthorID: req.AuthorID,
		Title:    strings.TrimSpace(req.Title),
	}
	record.ApplyProcessed(processed)

	err = s.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		return s.contents.Create(txCtx, record)
	})
	if err != nil {
		return nil, err
	}

	s.tracker.Associate(ctx, record.ID, record.InlineAssetIDs)

	s.logger.Info("content created",
		"id", record.ID,
		"author_id", record.AuthorID,
		"content_type", record.ContentType,
		"word_count", record.WordCount,
		"inline_assets", len(record.InlineAssetIDs),
	)

	return record, nil
}

// GetContent retrieves a content record
func (s *contentService) GetContent(ctx context.Context, id string) (*models.Content, error) {
	return s.contents.GetByID(ctx, id)
}

// UpdateContent re-runs the full pipeline whenever the body or its type
// changes. Without an explicit type the stored one is used as the hint, so
// raw markup stays raw markup across edits.
func (s *contentService) UpdateContent(ctx context.Context, id string, req *contentSvc.UpdateContentRequest) (*models.Content, error) {
	if err := validateUpdateRequest(req); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	var (
		record *models.Content
		oldIDs []string
	)
	err := s.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		existing, err := s.contents.GetByID(txCtx, id)
		if err != nil {
			return err
		}
		if existing.AuthorID != req.AuthorID {
			return &domain.ForbiddenError{Message: "only the author can edit this content"}
		}
		oldIDs = existing.InlineAssetIDs

		if req.Title != nil {
			existing.Title = strings.TrimSpace(*req.Title)
		}

		if req.Content != nil || req.ContentType != nil {
			raw := existing.ContentOriginal
			if req.Content != nil {
				raw = *req.Content
			}
			hint := &existing.ContentType
			if req.ContentType != nil {
				hint = models.ParseContentType(*req.ContentType)
			}

			processed, err := s.processor.Process(raw, hint)
			if err != nil {
				return err
			}
			existing.ApplyProcessed(processed)
		}

		if err := s.contents.Update(txCtx, existing); err != nil {
			return err
		}
		record = existing
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.tracker.ReconcileOnUpdate(ctx, record.ID, oldIDs, record.InlineAssetIDs)

	s.logger.Info("content updated",
		"id", record.ID,
		"content_type", record.ContentType,
		"word_count", record.WordCount,
		"inline_assets", len(record.InlineAssetIDs),
	)

	return record, nil
}

// DeleteContent soft-deletes the record, then removes inline assets that no
// other live record still renders.
func (s *contentService) DeleteContent(ctx context.Context, id, authorID string) (*models.CleanupResult, error) {
	var owned []string
	err := s.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		existing, err := s.contents.GetByID(txCtx, id)
		if err != nil {
			return err
		}
		if existing.AuthorID != authorID {
			return &domain.ForbiddenError{Message: "only the author can delete this content"}
		}
		owned = existing.InlineAssetIDs
		return s.contents.Delete(txCtx, id)
	})
	if err != nil {
		return nil, err
	}

	// The scan must see the committed delete, so cleanup runs outside the tx.
	result := s.tracker.CleanupOnDelete(ctx, id, owned)

	s.logger.Info("content deleted",
		"id", id,
		"assets_deleted", len(result.Deleted),
		"assets_retained", len(result.Retained),
	)

	return &result, nil
}

// PreviewContent runs the pipeline without storing anything
func (s *contentService) PreviewContent(ctx context.Context, req *contentSvc.PreviewContentRequest) (*models.PreviewResult, error) {
	err := validation.ValidateStruct(req,
		validation.Field(&req.Content, validation.By(maxBytes(config.MaxContentLength))),
		validation.Field(&req.ContentType, validation.By(contentTypeHint)),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	preview, err := s.processor.Preview(req.Content, models.ParseContentType(req.ContentType))
	if err != nil {
		return nil, err
	}
	return &preview, nil
}

// SearchContent performs full-text search
func (s *contentService) SearchContent(ctx context.Context, req *contentSvc.SearchContentRequest) (*models.SearchResults, error) {
	if req.Limit == 0 {
		req.Limit = config.DefaultSearchLimit
	}

	err := validation.ValidateStruct(req,
		validation.Field(&req.Query, validation.Required, validation.Length(1, 500)),
		validation.Field(&req.Limit, validation.Min(1), validation.Max(config.MaxSearchLimit)),
		validation.Field(&req.Offset, validation.Min(0)),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	return s.contents.Search(ctx, &contentRepo.SearchOptions{
		Query:    strings.TrimSpace(req.Query),
		AuthorID: req.AuthorID,
		Limit:    req.Limit,
		Offset:   req.Offset,
	})
}

// ExportMarkdown converts the stored sanitized HTML to lightweight markup.
// Lightweight-markup records return their original body unchanged.
func (s *contentService) ExportMarkdown(ctx context.Context, id string) (string, error) {
	record, err := s.contents.GetByID(ctx, id)
	if err != nil {
		return "", err
	}

	if record.ContentType == models.ContentTypeLightweightMarkup {
		return record.ContentOriginal, nil
	}

	markdown, err := s.markdown.Convert(record.ContentRendered)
	if err != nil {
		return "", fmt.Errorf("export content %s: %w", id, err)
	}
	return markdown, nil
}

func validateCreateRequest(req *contentSvc.CreateContentRequest) error {
	return validation.ValidateStruct(req,
		validation.Field(&req.AuthorID, validation.Required),
		validation.Field(&req.Title,
			validation.Required,
			validation.By(notBlank),
			validation.Length(1, config.MaxTitleLength),
		),
		validation.Field(&req.Content, validation.By(maxBytes(config.MaxContentLength))),
		validation.Field(&req.ContentType, validation.By(contentTypeHint)),
	)
}

func validateUpdateRequest(req *contentSvc.UpdateContentRequest) error {
	return validation.ValidateStruct(req,
		validation.Field(&req.AuthorID, validation.Required),
		validation.Field(&req.Title,
			validation.NilOrNotEmpty,
			validation.By(notBlank),
			validation.Length(1, config.MaxTitleLength),
		),
		validation.Field(&req.Content, validation.By(maxBytes(config.MaxContentLength))),
		validation.Field(&req.ContentType, validation.By(contentTypeHint)),
	)
}

// maxBytes limits a string (or *string) by byte length; validation.Length counts runes.
func maxBytes(limit int) validation.RuleFunc {
	return func(value any) error {
		s, ok := stringValue(value)
		if ok && len(s) > limit {
			return fmt.Errorf("must be at most %d bytes", limit)
		}
		return nil
	}
}

func notBlank(value any) error {
	s, ok := stringValue(value)
	if ok && s != "" && strings.TrimSpace(s) == "" {
		return errors.New("cannot be blank")
	}
	return nil
}

// contentTypeHint accepts an empty hint or any recognised type name or alias.
func contentTypeHint(value any) error {
	s, ok := stringValue(value)
	if !ok || s == "" {
		return nil
	}
	if models.ParseContentType(s) == nil {
		return fmt.Errorf("unknown content type %q", s)
	}
	return nil
}

func stringValue(value any) (string, bool) {
	switch v := value.(type) {
	case string:
		return v, true
	case *string:
		if v == nil {
			return "", false
		}
		return *v, true
	}
	return "", false
}
