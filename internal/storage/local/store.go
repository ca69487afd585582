// Package local stores asset bytes on the local filesystem.
package local

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"folio/internal/domain"
	models "folio/internal/domain/models/content"
	contentRepo "folio/internal/domain/repositories/content"
)

// Store keeps one file per asset in a flat directory.
type Store struct {
	root   string
	logger *slog.Logger
}

// NewStore creates the root directory if needed.
func NewStore(root string, logger *slog.Logger) (*Store, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create files dir: %w", err)
	}
	return &Store{root: root, logger: logger}, nil
}

var _ contentRepo.FileStore = (*Store)(nil)

// Put writes r to key atomically: bytes go to a temp file that is renamed
// into place once fully written.
func (s *Store) Put(ctx context.Context, key string, r io.Reader) (int64, error) {
	path, err := s.path(key)
	if err != nil {
		return 0, err
	}

	tmp, err := os.CreateTemp(s.root, ".upload-*")
	if err != nil {
		return 0, fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	n, err := io.Copy(tmp, contextReader{ctx: ctx, r: r})
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return 0, fmt.Errorf("write %s: %w", key, err)
	}

	if err := os.Rename(tmp.Name(), path); err != nil {
		return 0, fmt.Errorf("store %s: %w", key, err)
	}
	return n, nil
}

// Open returns the stored bytes for key.
func (s *Store) Open(_ context.Context, key string) (io.ReadCloser, error) {
	path, err := s.path(key)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("file %s: %w", key, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("open %s: %w", key, err)
	}
	return f, nil
}

// Delete removes the asset's bytes. A file that is already gone counts as deleted.
func (s *Store) Delete(_ context.Context, asset *models.Asset) error {
	path, err := s.path(asset.StorageKey)
	if err != nil {
		return err
	}

	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("delete %s: %w", asset.StorageKey, err)
	}

	s.logger.Debug("asset file deleted", "asset_id", asset.ID, "storage_key", asset.StorageKey)
	return nil
}

// path resolves key inside root. Keys are single path elements.
func (s *Store) path(key string) (string, error) {
	if key == "" || key == "." || key == ".." || strings.ContainsAny(key, `/\`) || strings.HasPrefix(key, ".") {
		return "", &domain.ValidationError{Message: fmt.Sprintf("invalid storage key %q", key)}
	}
	return filepath.Join(s.root, key), nil
}

// contextReader stops a copy once ctx is done.
type contextReader struct {
	ctx context.Context
	r   io.Reader
}

func (c contextReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(p)
}
