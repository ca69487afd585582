package content

import (
	"time"
)

// ContentType is the resolved authoring format of a piece of content.
// It is a closed set; dispatch over it with a switch.
type ContentType string

const (
	ContentTypePlain             ContentType = "plain"
	ContentTypeLightweightMarkup ContentType = "lightweight_markup"
	ContentTypeRawMarkup         ContentType = "raw_markup"
)

// ContentTypes lists every supported content type.
var ContentTypes = []ContentType{
	ContentTypePlain,
	ContentTypeLightweightMarkup,
	ContentTypeRawMarkup,
}

// IsValid reports whether t is one of the supported content types.
func (t ContentType) IsValid() bool {
	switch t {
	case ContentTypePlain, ContentTypeLightweightMarkup, ContentTypeRawMarkup:
		return true
	}
	return false
}

// ParseContentType converts a caller supplied hint into a content type.
// Empty or unknown values yield nil ("no hint"). Common aliases are accepted.
func ParseContentType(hint string) *ContentType {
	var t ContentType
	switch hint {
	case "plain", "text", "plaintext":
		t = ContentTypePlain
	case "lightweight_markup", "markdown", "md":
		t = ContentTypeLightweightMarkup
	case "raw_markup", "html":
		t = ContentTypeRawMarkup
	default:
		return nil
	}
	return &t
}

// ProcessedContent is the immutable result of running content through the pipeline.
type ProcessedContent struct {
	ContentOriginal string         `json:"content_original"`
	ContentType     ContentType    `json:"content_type"`
	ContentRendered string         `json:"content_rendered"`
	ContentText     string         `json:"content_text"`
	WordCount       int            `json:"word_count"`
	ReadingTime     int            `json:"reading_time"`
	InlineAssetIDs  []string       `json:"inline_asset_ids"`
	FrontMatter     map[string]any `json:"front_matter,omitempty"`
}

// PreviewResult is the subset of ProcessedContent returned to live-preview callers.
type PreviewResult struct {
	ContentRendered string   `json:"content_rendered"`
	WordCount       int      `json:"word_count"`
	ReadingTime     int      `json:"reading_time"`
	InlineAssetIDs  []string `json:"inline_asset_ids"`
}

// Content is a persisted content record.
type Content struct {
	ID              string         `json:"id" db:"id"`
	AuthorID        string         `json:"author_id" db:"author_id"`
	Title           string         `json:"title" db:"title"`
	ContentOriginal string         `json:"content_original" db:"content_original"`
	ContentType     ContentType    `json:"content_type" db:"content_type"`
	ContentRendered string         `json:"content_rendered" db:"content_rendered"`
	ContentText     string         `json:"content_text" db:"content_text"`
	WordCount       int            `json:"word_count" db:"word_count"`
	ReadingTime     int            `json:"reading_time" db:"reading_time"`
	InlineAssetIDs  []string       `json:"inline_asset_ids" db:"inline_asset_ids"`
	FrontMatter     map[string]any `json:"front_matter,omitempty" db:"front_matter"`
	CreatedAt       time.Time      `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at" db:"updated_at"`
	DeletedAt       *time.Time     `json:"deleted_at,omitempty" db:"deleted_at"`
}

// ApplyProcessed copies every derived field of p onto the record.
func (c *Content) ApplyProcessed(p ProcessedContent) {
	c.ContentOriginal = p.ContentOriginal
	c.ContentType = p.ContentType
	c.ContentRendered = p.ContentRendered
	c.ContentText = p.ContentText
	c.WordCount = p.WordCount
	c.ReadingTime = p.ReadingTime
	c.InlineAssetIDs = append([]string(nil), p.InlineAssetIDs...)
	c.FrontMatter = p.FrontMatter
}

// SearchResult is a single content match with a plain-text snippet.
type SearchResult struct {
	Content Content `json:"content"`
	Snippet string  `json:"snippet"`
	Score   float64 `json:"score"`
}

// SearchResults is a page of search matches.
type SearchResults struct {
	Results []SearchResult `json:"results"`
	Total   int            `json:"total"`
	Limit   int            `json:"limit"`
	Offset  int            `json:"offset"`
}
