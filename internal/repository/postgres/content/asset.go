package content

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"folio/internal/domain"
	models "folio/internal/domain/models/content"
	"folio/internal/domain/repositories"
	contentRepo "folio/internal/domain/repositories/content"
	"folio/internal/repository/postgres"
)

// PostgresAssetRepository implements the AssetRepository interface
type PostgresAssetRepository struct {
	pool   *pgxpool.Pool
	tables *postgres.TableNames
	logger *slog.Logger
}

// NewAssetRepository creates a new asset repository
func NewAssetRepository(config *postgres.RepositoryConfig) contentRepo.AssetRepository {
	return &PostgresAssetRepository{
		pool:   config.Pool,
		tables: config.Tables,
		logger: config.Logger,
	}
}

// Create registers metadata for an uploaded asset
func (r *PostgresAssetRepository) Create(ctx context.Context, asset *models.Asset) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (storage_key, filename, mime_type, size_bytes)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at
	`, r.tables.Assets)

	executor := postgres.GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query,
		asset.StorageKey,
		asset.Filename,
		asset.MimeType,
		asset.SizeBytes,
	).Scan(&asset.ID, &asset.CreatedAt, &asset.UpdatedAt)
	if err != nil {
		if postgres.IsPgDuplicateError(err) {
			return &domain.ConflictError{
				Message:      fmt.Sprintf("asset with storage key '%s' already exists", asset.StorageKey),
				ResourceType: "asset",
			}
		}
		return fmt.Errorf("create asset: %w", err)
	}

	return nil
}

// GetByID retrieves an asset by ID
func (r *PostgresAssetRepository) GetByID(ctx context.Context, id string) (*models.Asset, error) {
	query := fmt.Sprintf(`
		SELECT id, storage_key, filename, mime_type, size_bytes,
		       attachment_type, attachment_owner_id, created_at, updated_at
		FROM %s
		WHERE id = $1
	`, r.tables.Assets)

	var asset models.Asset
	executor := postgres.GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query, id).Scan(
		&asset.ID,
		&asset.StorageKey,
		&asset.Filename,
		&asset.MimeType,
		&asset.SizeBytes,
		&asset.AttachmentType,
		&asset.AttachmentOwnerID,
		&asset.CreatedAt,
		&asset.UpdatedAt,
	)
	if err != nil {
		if postgres.IsPgNoRowsError(err) || postgres.IsPgInvalidTextError(err) {
			return nil, fmt.Errorf("asset %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get asset: %w", err)
	}

	return &asset, nil
}

// SetAttachment claims the asset for ownerID, replacing any existing claim
func (r *PostgresAssetRepository) SetAttachment(ctx context.Context, id string, attachmentType models.AttachmentType, ownerID string) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET attachment_type = $1, attachment_owner_id = $2, updated_at = now()
		WHERE id = $3
	`, r.tables.Assets)

	executor := postgres.GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query, string(attachmentType), ownerID, id)
	if err != nil {
		if postgres.IsPgInvalidTextError(err) {
			return fmt.Errorf("asset %s: %w", id, domain.ErrNotFound)
		}
		return fmt.Errorf("set asset attachment: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("asset %s: %w", id, domain.ErrNotFound)
	}

	return nil
}

// ClearAttachment clears the claim only while ownerID still holds it. The
// ownership check is part of the UPDATE, so a concurrent re-claim by another
// record is never undone.
func (r *PostgresAssetRepository) ClearAttachment(ctx context.Context, id, ownerID string) (bool, error) {
	query := fmt.Sprintf(`
		UPDATE %s
		SET attachment_type = NULL, attachment_owner_id = NULL, updated_at = now()
		WHERE id = $1 AND attachment_owner_id::text = $2
	`, r.tables.Assets)

	executor := postgres.GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query, id, ownerID)
	if err != nil {
		if postgres.IsPgInvalidTextError(err) {
			return false, fmt.Errorf("asset %s: %w", id, domain.ErrNotFound)
		}
		return false, fmt.Errorf("clear asset attachment: %w", err)
	}

	return result.RowsAffected() > 0, nil
}


// DeleteIfUnreferenced deletes the row and scans for references in one
// statement, then removes the bytes before committing. A savepoint is used
// when ctx already carries a transaction.
func (r *PostgresAssetRepository) DeleteIfUnreferenced(ctx context.Context, id, excludeID string, removeObject func(context.Context, *models.Asset) error) (bool, error) {
	query := fmt.Sprintf(`
		DELETE FROM %s a
		WHERE a.id = $1
		  AND NOT EXISTS (
			SELECT 1
			FROM %s c
			WHERE c.deleted_at IS NULL
			  AND c.id::text <> $2
			  AND strpos(c.content_rendered, '/api/files/' || a.id::text || '"') > 0
		  )
		RETURNING a.id, a.storage_key, a.filename, a.mime_type, a.size_bytes,
		          a.attachment_type, a.attachment_owner_id, a.created_at, a.updated_at
	`, r.tables.Assets, r.tables.Contents)

	var tx pgx.Tx
	var err error
	if outer := repositories.GetTx(ctx); outer != nil {
		tx, err = outer.Begin(ctx)
	} else {
		tx, err = r.pool.Begin(ctx)
	}
	if err != nil {
		return false, fmt.Errorf("begin asset delete: %w", err)
	}
	defer func() {
		if err := tx.Rollback(ctx); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
			r.logger.Warn("asset delete rollback failed", "asset_id", id, "error", err)
		}
	}()

	var asset models.Asset
	err = tx.QueryRow(ctx, query, id, excludeID).Scan(
		&asset.ID,
		&asset.StorageKey,
		&asset.Filename,
		&asset.MimeType,
		&asset.SizeBytes,
		&asset.AttachmentType,
		&asset.AttachmentOwnerID,
		&asset.CreatedAt,
		&asset.UpdatedAt,
	)
	if err != nil {
		if postgres.IsPgNoRowsError(err) || postgres.IsPgInvalidTextError(err) {
			return false, nil
		}
		return false, fmt.Errorf("delete unreferenced asset: %w", err)
	}

	if err := removeObject(ctx, &asset); err != nil {
		return false, fmt.Errorf("remove asset bytes: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return false, fmt.Errorf("commit asset delete: %w", err)
	}
	return true, nil
}
