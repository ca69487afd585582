// Package memory provides in-memory repositories for tests and for running
// the server without a database.
package memory

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"folio/internal/domain"
	models "folio/internal/domain/models/content"
	contentRepo "folio/internal/domain/repositories/content"
)

const snippetRadius = 80

// ContentRepository is an in-memory implementation of contentRepo.ContentRepository.
type ContentRepository struct {
	mu       sync.RWMutex
	contents map[string]*models.Content
	now      func() time.Time
}

// NewContentRepository creates an empty in-memory content repository.
func NewContentRepository() *ContentRepository {
	return &ContentRepository{
		contents: make(map[string]*models.Content),
		now:      time.Now,
	}
}

var _ contentRepo.ContentRepository = (*ContentRepository)(nil)

// Create stores a copy of c, assigning an ID when none is set.
func (r *ContentRepository) Create(_ context.Context, c *models.Content) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if _, exists := r.contents[c.ID]; exists {
		return &domain.ConflictError{
			Message:      fmt.Sprintf("content %s already exists", c.ID),
			ResourceType: "content",
			ResourceID:   c.ID,
		}
	}

	now := r.now().UTC()
	c.CreatedAt = now
	c.UpdatedAt = now
	r.contents[c.ID] = cloneContent(c)
	return nil
}

// GetByID returns a copy of a live record.
func (r *ContentRepository) GetByID(_ context.Context, id string) (*models.Content, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rec, ok := r.contents[id]
	if !ok || rec.DeletedAt != nil {
		return nil, fmt.Errorf("content %s: %w", id, domain.ErrNotFound)
	}
	return cloneContent(rec), nil
}

// Update replaces a live record.
func (r *ContentRepository) Update(_ context.Context, c *models.Content) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.contents[c.ID]
	if !ok || rec.DeletedAt != nil {
		return fmt.Errorf("content %s: %w", c.ID, domain.ErrNotFound)
	}

	c.CreatedAt = rec.CreatedAt
	c.UpdatedAt = r.now().UTC()
	r.contents[c.ID] = cloneContent(c)
	return nil
}

// Delete marks a live record as deleted.
func (r *ContentRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.contents[id]
	if !ok || rec.DeletedAt != nil {
		return fmt.Errorf("content %s: %w", id, domain.ErrNotFound)
	}

	now := r.now().UTC()
	rec.DeletedAt = &now
	rec.UpdatedAt = now
	return nil
}

// ExistsReferencingAsset scans every live record except excludeID.
func (r *ContentRepository) ExistsReferencingAsset(_ context.Context, assetID, excludeID string) (bool, error) {
	ref, err := assetReference(assetID)
	if err != nil {
		return false, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.referencedLocked(ref, excludeID), nil
}

// referencedLocked reports whether a live record other than excludeID matches
// ref. The caller holds r.mu.
func (r *ContentRepository) referencedLocked(ref *regexp.Regexp, excludeID string) bool {
	for id, rec := range r.contents {
		if id == excludeID || rec.DeletedAt != nil {
			continue
		}
		if ref.MatchString(rec.ContentRendered) {
			return true
		}
	}
	return false
}

// ListBatch returns live records ordered by ID, starting after afterID.
func (r *ContentRepository) ListBatch(_ context.Context, afterID string, limit int) ([]models.Content, error) {
	if limit <= 0 {
		return nil, fmt.Errorf("list batch: limit must be positive: %w", domain.ErrValidation)
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]string, 0, len(r.contents))
	for id, rec := range r.contents {
		if rec.DeletedAt == nil && id > afterID {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	if len(ids) > limit {
		ids = ids[:limit]
	}

	out := make([]models.Content, 0, len(ids))
	for _, id := range ids {
		out = append(out, *cloneContent(r.contents[id]))
	}
	return out, nil
}

// Search matches the query case-insensitively against title and plain text.
// Title matches score higher, mirroring the weighting of the postgres repository.
func (r *ContentRepository) Search(_ context.Context, opts *contentRepo.SearchOptions) (*models.SearchResults, error) {
	query := strings.ToLower(strings.TrimSpace(opts.Query))

	r.mu.RLock()
	var matches []models.SearchResult
	for _, rec := range r.contents {
		if rec.DeletedAt != nil {
			continue
		}
		if opts.AuthorID != "" && rec.AuthorID != opts.AuthorID {
			continue
		}

		var score float64
		if strings.Contains(strings.ToLower(rec.Title), query) {
			score += 2
		}
		if strings.Contains(strings.ToLower(rec.ContentText), query) {
			score++
		}
		if score == 0 {
			continue
		}

		matches = append(matches, models.SearchResult{
			Content: *cloneContent(rec),
			Snippet: snippet(rec.ContentText, query),
			Score:   score,
		})
	}
	r.mu.RUnlock()

	sort.Slice(matches, func(i, j int) bool {
		if matches[i].Score != matches[j].Score {
			return matches[i].Score > matches[j].Score
		}
		return matches[i].Content.ID < matches[j].Content.ID
	})

	total := len(matches)
	start := min(opts.Offset, total)
	end := min(start+opts.Limit, total)

	return &models.SearchResults{
		Results: matches[start:end],
		Total:   total,
		Limit:   opts.Limit,
		Offset:  opts.Offset,
	}, nil
}

// assetReference matches the asset URL for id as a whole path segment.
func assetReference(id string) (*regexp.Regexp, error) {
	if id == "" {
		return nil, fmt.Errorf("empty asset id: %w", domain.ErrValidation)
	}
	return regexp.Compile(`/api/files/` + regexp.QuoteMeta(id) + `(?:[^0-9A-Za-z_-]|$)`)
}

func snippet(text, query string) string {
	idx := strings.Index(strings.ToLower(text), query)
	if idx < 0 {
		idx = 0
	}
	start := max(0, idx-snippetRadius)
	end := min(len(text), idx+len(query)+snippetRadius)

	// Keep slice bounds on rune boundaries.
	for start > 0 && !isRuneStart(text[start]) {
		start--
	}
	for end < len(text) && !isRuneStart(text[end]) {
		end++
	}
	return strings.TrimSpace(text[start:end])
}

func isRuneStart(b byte) bool {
	return b&0xC0 != 0x80
}

func cloneContent(src *models.Content) *models.Content {
	if src == nil {
		return nil
	}

	copied := *src
	copied.InlineAssetIDs = append([]string(nil), src.InlineAssetIDs...)
	if src.FrontMatter != nil {
		copied.FrontMatter = make(map[string]any, len(src.FrontMatter))
		for k, v := range src.FrontMatter {
			copied.FrontMatter[k] = v
		}
	}
	if src.DeletedAt != nil {
		deleted := *src.DeletedAt
		copied.DeletedAt = &deleted
	}
	return &copied
}
