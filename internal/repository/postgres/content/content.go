package content

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"folio/internal/domain"
	models "folio/internal/domain/models/content"
	contentRepo "folio/internal/domain/repositories/content"
	"folio/internal/repository/postgres"
)

// Text search configuration; 'simple' does no stemming so every language works.
const searchConfig = "simple"

const contentColumns = `id, author_id, title, content_original, content_type, content_rendered,
	content_text, word_count, reading_time, inline_asset_ids, front_matter,
	created_at, updated_at`

// PostgresContentRepository implements the ContentRepository interface
type PostgresContentRepository struct {
	pool   *pgxpool.Pool
	tables *postgres.TableNames
	logger *slog.Logger
}

// NewContentRepository creates a new content repository
func NewContentRepository(config *postgres.RepositoryConfig) contentRepo.ContentRepository {
	return &PostgresContentRepository{
		pool:   config.Pool,
		tables: config.Tables,
		logger: config.Logger,
	}
}

// Create inserts a content record
func (r *PostgresContentRepository) Create(ctx context.Context, c *models.Content) error {
	frontMatter, err := encodeFrontMatter(c.FrontMatter)
	if err != nil {
		return err
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (author_id, title, content_original, content_type, content_rendered,
		                content_text, word_count, reading_time, inline_asset_ids, front_matter)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, created_at, updated_at
	`, r.tables.Contents)

	executor := postgres.GetExecutor(ctx, r.pool)
	err = executor.QueryRow(ctx, query,
		c.AuthorID,
		c.Title,
		c.ContentOriginal,
		c.ContentType,
		c.ContentRendered,
		c.ContentText,
		c.WordCount,
		c.ReadingTime,
		nonNil(c.InlineAssetIDs),
		frontMatter,
	).Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create content: %w", err)
	}

	return nil
}

// GetByID retrieves a live content record
func (r *PostgresContentRepository) GetByID(ctx context.Context, id string) (*models.Content, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE id = $1 AND deleted_at IS NULL
	`, contentColumns, r.tables.Contents)

	executor := postgres.GetExecutor(ctx, r.pool)
	c, err := scanContent(executor.QueryRow(ctx, query, id))
	if err != nil {
		if postgres.IsPgNoRowsError(err) || postgres.IsPgInvalidTextError(err) {
			return nil, fmt.Errorf("content %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get content: %w", err)
	}

	return c, nil
}

// Update overwrites title and processed fields
func (r *PostgresContentRepository) Update(ctx context.Context, c *models.Content) error {
	frontMatter, err := encodeFrontMatter(c.FrontMatter)
	if err != nil {
		return err
	}

	query := fmt.Sprintf(`
		UPDATE %s
		SET title = $1, content_original = $2, content_type = $3, content_rendered = $4,
		    content_text = $5, word_count = $6, reading_time = $7, inline_asset_ids = $8,
		    front_matter = $9, updated_at = now()
		WHERE id = $10 AND deleted_at IS NULL
		RETURNING updated_at
	`, r.tables.Contents)

	executor := postgres.GetExecutor(ctx, r.pool)
	err = executor.QueryRow(ctx, query,
		c.Title,
		c.ContentOriginal,
		c.ContentType,
		c.ContentRendered,
		c.ContentText,
		c.WordCount,
		c.ReadingTime,
		nonNil(c.InlineAssetIDs),
		frontMatter,
		c.ID,
	).Scan(&c.UpdatedAt)
	if err != nil {
		if postgres.IsPgNoRowsError(err) {
			return fmt.Errorf("content %s: %w", c.ID, domain.ErrNotFound)
		}
		return fmt.Errorf("update content: %w", err)
	}

	return nil
}

// Delete soft-deletes a content record
func (r *PostgresContentRepository) Delete(ctx context.Context, id string) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET deleted_at = now(), updated_at = now()
		WHERE id = $1 AND deleted_at IS NULL
	`, r.tables.Contents)

	executor := postgres.GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete content: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("content %s: %w", id, domain.ErrNotFound)
	}

	return nil
}

// ExistsReferencingAsset scans the rendered HTML of live records. Sanitized
// output always double-quotes attribute values, so the closing quote bounds
// the id and a prefix of a longer id never matches.
func (r *PostgresContentRepository) ExistsReferencingAsset(ctx context.Context, assetID, excludeID string) (bool, error) {
	query := fmt.Sprintf(`
		SELECT EXISTS (
			SELECT 1
			FROM %s
			WHERE deleted_at IS NULL
			  AND id::text <> $2
			  AND strpos(content_rendered, '/api/files/' || $1::text || '"') > 0
		)
	`, r.tables.Contents)

	var exists bool
	executor := postgres.GetExecutor(ctx, r.pool)
	if err := executor.QueryRow(ctx, query, assetID, excludeID).Scan(&exists); err != nil {
		return false, fmt.Errorf("scan asset references: %w", err)
	}

	return exists, nil
}

// ListBatch returns live records after afterID in id order
func (r *PostgresContentRepository) ListBatch(ctx context.Context, afterID string, limit int) ([]models.Content, error) {
	if limit <= 0 {
		return nil, fmt.Errorf("list batch: limit must be positive: %w", domain.ErrValidation)
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE deleted_at IS NULL AND id::text > $1
		ORDER BY id::text
		LIMIT $2
	`, contentColumns, r.tables.Contents)

	executor := postgres.GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, afterID, limit)
	if err != nil {
		return nil, fmt.Errorf("list content batch: %w", err)
	}
	defer rows.Close()

	var contents []models.Content
	for rows.Next() {
		c, err := scanContent(rows)
		if err != nil {
			return nil, fmt.Errorf("scan content: %w", err)
		}
		contents = append(contents, *c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate content batch: %w", err)
	}

	return contents, nil
}

// Search performs full-text search over title and plain text.
//   - websearch_to_tsquery accepts quoted phrases, OR and -exclusions
//   - title matches are weighted 2x
//   - ts_headline builds the snippet from content_text
func (r *PostgresContentRepository) Search(ctx context.Context, opts *contentRepo.SearchOptions) (*models.SearchResults, error) {
	// The config is inlined so the expressions match the GIN indexes.
	where := fmt.Sprintf(`deleted_at IS NULL
		  AND (to_tsvector('%[1]s', title) @@ websearch_to_tsquery('%[1]s', $1)
		       OR to_tsvector('%[1]s', content_text) @@ websearch_to_tsquery('%[1]s', $1))`, searchConfig)
	args := []any{opts.Query}

	if opts.AuthorID != "" {
		where += ` AND author_id::text = $2`
		args = append(args, opts.AuthorID)
	}

	total, err := r.countMatches(ctx, where, args)
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf(`
		SELECT %[1]s,
		       ts_headline('%[2]s', content_text, websearch_to_tsquery('%[2]s', $1),
		                   'MaxWords=35, MinWords=15, MaxFragments=1, StartSel="", StopSel=""') AS snippet,
		       ts_rank(to_tsvector('%[2]s', title), websearch_to_tsquery('%[2]s', $1)) * 2.0
		         + ts_rank(to_tsvector('%[2]s', content_text), websearch_to_tsquery('%[2]s', $1)) AS rank_score
		FROM %[3]s
		WHERE %[4]s
		ORDER BY rank_score DESC, id
		LIMIT $%[5]d OFFSET $%[6]d
	`, contentColumns, searchConfig, r.tables.Contents, where, len(args)+1, len(args)+2)
	args = append(args, opts.Limit, opts.Offset)

	executor := postgres.GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("full-text search query failed: %w", err)
	}
	defer rows.Close()

	results := []models.SearchResult{}
	for rows.Next() {
		var (
			c           models.Content
			frontMatter []byte
			snippet     string
			score       float64
		)
		err := rows.Scan(
			&c.ID, &c.AuthorID, &c.Title, &c.ContentOriginal, &c.ContentType, &c.ContentRendered,
			&c.ContentText, &c.WordCount, &c.ReadingTime, &c.InlineAssetIDs, &frontMatter,
			&c.CreatedAt, &c.UpdatedAt,
			&snippet, &score,
		)
		if err != nil {
			return nil, fmt.Errorf("scan search result: %w", err)
		}
		if c.FrontMatter, err = decodeFrontMatter(frontMatter); err != nil {
			return nil, err
		}
		results = append(results, models.SearchResult{Content: c, Snippet: snippet, Score: score})
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate search results: %w", err)
	}

	return &models.SearchResults{
		Results: results,
		Total:   total,
		Limit:   opts.Limit,
		Offset:  opts.Offset,
	}, nil
}

func (r *PostgresContentRepository) countMatches(ctx context.Context, where string, args []any) (int, error) {
	query := fmt.Sprintf(`SELECT COUNT(*) FROM %s WHERE %s`, r.tables.Contents, where)

	var total int
	executor := postgres.GetExecutor(ctx, r.pool)
	if err := executor.QueryRow(ctx, query, args...).Scan(&total); err != nil {
		return 0, fmt.Errorf("count search matches: %w", err)
	}
	return total, nil
}

func scanContent(row pgx.Row) (*models.Content, error) {
	var (
		c           models.Content
		frontMatter []byte
	)
	err := row.Scan(
		&c.ID,
		&c.AuthorID,
		&c.Title,
		&c.ContentOriginal,
		&c.ContentType,
		&c.ContentRendered,
		&c.ContentText,
		&c.WordCount,
		&c.ReadingTime,
		&c.InlineAssetIDs,
		&frontMatter,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if c.FrontMatter, err = decodeFrontMatter(frontMatter); err != nil {
		return nil, err
	}
	return &c, nil
}

func encodeFrontMatter(fm map[string]any) ([]byte, error) {
	if len(fm) == 0 {
		return nil, nil
	}
	data, err := json.Marshal(fm)
	if err != nil {
		return nil, fmt.Errorf("encode front matter: %w", err)
	}
	return data, nil
}

func decodeFrontMatter(data []byte) (map[string]any, error) {
	if len(data) == 0 {
		return nil, nil
	}
	var fm map[string]any
	if err := json.Unmarshal(data, &fm); err != nil {
		return nil, fmt.Errorf("decode front matter: %w", err)
	}
	return fm, nil
}

func nonNil(ids []string) []string {
	if ids == nil {
		return []string{}
	}
	return ids
}
