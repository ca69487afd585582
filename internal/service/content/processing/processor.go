package processing

import (
	"fmt"
	"log/slog"
	"strings"

	"folio/internal/domain"
	models "folio/internal/domain/models/content"
	contentSvc "folio/internal/domain/services/content"
	"folio/internal/service/content/processing/sanitizer"
)

// processor implements contentSvc.ContentProcessor.
// Pipeline order is fixed: classify -> front matter -> render -> sanitize -> verify -> extract.
type processor struct {
	renderer  *Renderer
	sanitizer *sanitizer.HTMLSanitizer
	extractor *Extractor
	logger    *slog.Logger
}

// NewProcessor creates the content processing pipeline.
// All components are built once and shared; none hold per-call state.
func NewProcessor(logger *slog.Logger) contentSvc.ContentProcessor {
	return &processor{
		renderer:  NewRenderer(),
		sanitizer: sanitizer.NewHTMLSanitizer(),
		extractor: NewExtractor(),
		logger:    logger,
	}
}

// Process runs raw through the full pipeline.
func (p *processor) Process(raw string, hint *models.ContentType) (models.ProcessedContent, error) {
	contentType, err := runStage(p, domain.StageClassify, func() (models.ContentType, error) {
		return Classify(raw, hint), nil
	})
	if err != nil {
		return models.ProcessedContent{}, err
	}

	body := raw
	var frontMatter map[string]any
	if contentType == models.ContentTypeLightweightMarkup {
		body, err = runStage(p, domain.StageFrontMatter, func() (string, error) {
			fm, rest, ok := splitFrontMatter(raw)
			if ok {
				frontMatter = fm
			}
			return rest, nil
		})
		if err != nil {
			return models.ProcessedContent{}, err
		}
	}

	unsafeHTML, err := runStage(p, domain.StageRender, func() (string, error) {
		switch contentType {
		case models.ContentTypeLightweightMarkup:
			return p.renderer.Render(body)
		case models.ContentTypePlain:
			return RenderPlain(body), nil
		case models.ContentTypeRawMarkup:
			return body, nil
		default:
			return "", fmt.Errorf("unsupported content type %q", contentType)
		}
	})
	if err != nil {
		return models.ProcessedContent{}, err
	}

	rendered, err := runStage(p, domain.StageSanitize, func() (string, error) {
		return p.sanitizer.Sanitize(unsafeHTML), nil
	})
	if err != nil {
		return models.ProcessedContent{}, err
	}

	if _, err := runStage(p, domain.StageVerify, func() (struct{}, error) {
		return struct{}{}, sanitizer.Verify(rendered)
	}); err != nil {
		return models.ProcessedContent{}, err
	}

	meta, err := runStage(p, domain.StageExtract, func() (Metadata, error) {
		return p.extractor.Extract(rendered)
	})
	if err != nil {
		return models.ProcessedContent{}, err
	}

	text := meta.PlainText
	if text == "" && strings.TrimSpace(raw) != "" {
		text = fallbackText(meta)
	}

	return models.ProcessedContent{
		ContentOriginal: raw,
		ContentType:     contentType,
		ContentRendered: rendered,
		ContentText:     text,
		WordCount:       meta.WordCount,
		ReadingTime:     meta.ReadingTime,
		InlineAssetIDs:  meta.InlineAssetIDs,
		FrontMatter:     frontMatter,
	}, nil
}

// Preview runs the same pipeline as Process and keeps the preview fields.
func (p *processor) Preview(raw string, hint *models.ContentType) (models.PreviewResult, error) {
	processed, err := p.Process(raw, hint)
	if err != nil {
		return models.PreviewResult{}, err
	}
	return models.PreviewResult{
		ContentRendered: processed.ContentRendered,
		WordCount:       processed.WordCount,
		ReadingTime:     processed.ReadingTime,
		InlineAssetIDs:  processed.InlineAssetIDs,
	}, nil
}

// emptyTextPlaceholder is the content_text of non-blank input that sanitizes
// to nothing readable.
const emptyTextPlaceholder = "[no text]"

// fallbackText keeps content_text non-empty for non-blank input whose
// rendered form has no text. It draws only on the sanitized output, and
// word counts are left to the extractor.
func fallbackText(meta Metadata) string {
	switch {
	case meta.ImageText != "":
		return meta.ImageText
	case meta.ImageNames != "":
		return meta.ImageNames
	default:
		return emptyTextPlaceholder
	}
}

// runStage executes one pipeline stage, converting errors and panics into a
// logged *domain.ContentProcessingError naming the stage.
func runStage[T any](p *processor, stage domain.ProcessingStage, fn func() (T, error)) (out T, err error) {
	defer func() {
		if r := recover(); r != nil {
			var zero T
			out = zero
			err = p.fail(stage, fmt.Errorf("panic: %v", r))
		}
	}()

	out, err = fn()
	if err != nil {
		return out, p.fail(stage, err)
	}
	return out, nil
}

func (p *processor) fail(stage domain.ProcessingStage, err error) error {
	p.logger.Error("content processing failed",
		"stage", stage,
		"error", err,
	)
	return &domain.ContentProcessingError{Stage: stage, Err: err}
}
