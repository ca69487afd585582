package app

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"folio/internal/config"
	"folio/internal/repository/memory"
)

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestNew_MemoryInDev(t *testing.T) {
	cfg := &config.Config{Environment: "dev", FilesDir: filepath.Join(t.TempDir(), "files")}

	a, err := New(context.Background(), cfg, discard())
	require.NoError(t, err)
	defer a.Close()

	assert.Nil(t, a.Pool)
	assert.IsType(t, &memory.ContentRepository{}, a.Contents)
	assert.NotNil(t, a.Tracker)
	assert.NotNil(t, a.Processor)

	_, err = os.Stat(cfg.FilesDir)
	assert.NoError(t, err, "files dir created")
}

func TestNew_ProdRequiresDatabase(t *testing.T) {
	cfg := &config.Config{Environment: "prod", FilesDir: t.TempDir()}
	_, err := New(context.Background(), cfg, discard())
	assert.Error(t, err)
}

func TestNewLogger_WritesLogFile(t *testing.T) {
	dir := t.TempDir()
	logger, closeFn, err := NewLogger(&config.Config{LogDir: dir, LogMaxFiles: 2})
	require.NoError(t, err)

	logger.Info("hello")
	closeFn()

	files, err := filepath.Glob(filepath.Join(dir, "folio-*.log"))
	require.NoError(t, err)
	require.Len(t, files, 1)
	data, err := os.ReadFile(files[0])
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"hello"`)
}
