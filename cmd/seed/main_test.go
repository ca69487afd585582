package main

import (
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"folio/internal/config"
	models "folio/internal/domain/models/content"
	"folio/internal/service/content/processing"
)

func TestSamplesProcess(t *testing.T) {
	p := processing.NewProcessor(slog.New(slog.NewTextHandler(io.Discard, nil)))

	want := []models.ContentType{
		models.ContentTypePlain,
		models.ContentTypeLightweightMarkup,
		models.ContentTypeRawMarkup,
	}

	list := samples("author")
	require.Len(t, list, len(want))
	for i, s := range list {
		t.Run(s.Title, func(t *testing.T) {
			out, err := p.Process(s.Content, models.ParseContentType(s.ContentType))
			require.NoError(t, err)
			assert.Equal(t, want[i], out.ContentType)
			assert.NotContains(t, out.ContentRendered, "<script")
			assert.NotContains(t, out.ContentRendered, "javascript:")
			assert.NotEmpty(t, out.ContentText)
		})
	}
}

func TestSeedCmd_Guards(t *testing.T) {
	cmd := newRootCmd(&config.Config{Environment: "dev"})
	cmd.SetArgs(nil)
	cmd.SetOut(io.Discard)
	cmd.SetErr(io.Discard)
	assert.ErrorContains(t, cmd.Execute(), "DATABASE_URL")

	cmd = newRootCmd(&config.Config{Environment: "prod", DatabaseURL: "postgres://x"})
	cmd.SetArgs([]string{"--drop-tables"})
	cmd.SetOut(io.Discard)
	cmd.SetErr(io.Discard)
	assert.ErrorContains(t, cmd.Execute(), "blocked")
}
