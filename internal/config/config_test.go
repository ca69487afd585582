package config

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{"ENVIRONMENT", "PORT", "DATABASE_URL", "AUTH_DISABLED", "DEBUG", "REPROCESS_BATCH_SIZE"} {
		t.Setenv(key, "")
	}

	cfg := Load()
	assert.Equal(t, "dev", cfg.Environment)
	assert.Equal(t, "8080", cfg.Port)
	assert.Empty(t, cfg.DatabaseURL)
	assert.Equal(t, DefaultReprocessBatchSize, cfg.ReprocessBatchSize)
	assert.True(t, cfg.Debug, "debug defaults on outside prod")
	assert.False(t, cfg.AuthDisabled)
}

func TestLoad_AuthBypassIgnoredInProd(t *testing.T) {
	t.Setenv("AUTH_DISABLED", "true")

	t.Setenv("ENVIRONMENT", "dev")
	assert.True(t, Load().AuthDisabled)

	t.Setenv("ENVIRONMENT", "prod")
	cfg := Load()
	assert.False(t, cfg.AuthDisabled)
	assert.False(t, cfg.Debug)
}

func TestGetEnvInt(t *testing.T) {
	tests := []struct {
		value string
		want  int
	}{
		{"", 7},
		{"25", 25},
		{"abc", 7},
		{"0", 7},
		{"-3", 7},
	}
	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			t.Setenv("FOLIO_TEST_INT", tt.value)
			assert.Equal(t, tt.want, getEnvInt("FOLIO_TEST_INT", 7))
		})
	}
}

func TestSetupLogFile_KeepsNewest(t *testing.T) {
	dir := t.TempDir()
	for i := 1; i <= 3; i++ {
		name := filepath.Join(dir, fmt.Sprintf("folio-2020-01-0%dT00-00-00.log", i))
		require.NoError(t, os.WriteFile(name, nil, 0o644))
	}

	f, err := SetupLogFile(dir, 2)
	require.NoError(t, err)
	defer f.Close()

	files, err := filepath.Glob(filepath.Join(dir, "folio-*.log"))
	require.NoError(t, err)
	assert.Len(t, files, 2)
	assert.NotContains(t, files, filepath.Join(dir, "folio-2020-01-02T00-00-00.log"))
	assert.Contains(t, files, f.Name())
}
