package processing

import (
	"testing"

	"github.com/stretchr/testify/assert"

	models "folio/internal/domain/models/content"
)

func typePtr(t models.ContentType) *models.ContentType {
	return &t
}

func TestClassify_HintWins(t *testing.T) {
	inputs := []string{
		"# Heading\n\n- list",
		"plain words only",
		"<p>html</p>",
		"",
	}

	for _, hint := range models.ContentTypes {
		for _, raw := range inputs {
			assert.Equal(t, hint, Classify(raw, typePtr(hint)), "hint %s, raw %q", hint, raw)
		}
	}
}

func TestClassify_InvalidHintFallsBackToDetection(t *testing.T) {
	assert.Equal(t, models.ContentTypeLightweightMarkup, Classify("# Title", typePtr("bogus")))
	assert.Equal(t, models.ContentTypePlain, Classify("no markup here", typePtr("")))
}

func TestClassify_Detection(t *testing.T) {
	tests := []struct {
		name      string
		raw       string
		want      models.ContentType
		signature string
	}{
		{name: "heading", raw: "intro\n## Section\nbody", want: models.ContentTypeLightweightMarkup, signature: "heading"},
		{name: "bold", raw: "this is **important** text", want: models.ContentTypeLightweightMarkup, signature: "strong"},
		{name: "underscore bold", raw: "this is __important__ text", want: models.ContentTypeLightweightMarkup, signature: "strong"},
		{name: "italic", raw: "this is *subtle* text", want: models.ContentTypeLightweightMarkup, signature: "emphasis"},
		{name: "link", raw: "see [the docs](https://example.com) first", want: models.ContentTypeLightweightMarkup, signature: "image_or_link"},
		{name: "image", raw: "![diagram](/api/files/abcdef12)", want: models.ContentTypeLightweightMarkup, signature: "image_or_link"},
		{name: "bullet list", raw: "groceries\n- milk\n- eggs", want: models.ContentTypeLightweightMarkup, signature: "list"},
		{name: "ordered list", raw: "steps\n1. open\n2. close", want: models.ContentTypeLightweightMarkup, signature: "list"},
		{name: "fenced code", raw: "```go\nfmt.Println()\n```", want: models.ContentTypeLightweightMarkup, signature: "fenced_code"},
		{name: "plain sentence", raw: "Just a short note to self.", want: models.ContentTypePlain},
		{name: "hashtag is not a heading", raw: "#golang is fun", want: models.ContentTypePlain},
		{name: "arithmetic is not emphasis", raw: "2 * 3 * 4 = 24", want: models.ContentTypePlain},
		{name: "snake case is not emphasis", raw: "set max_open_conns to 10", want: models.ContentTypePlain},
		{name: "html is not markup", raw: "<p>hello</p>", want: models.ContentTypePlain},
		{name: "empty", raw: "", want: models.ContentTypePlain},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.raw, nil))

			sig, ok := DetectSignature(tt.raw)
			assert.Equal(t, tt.signature != "", ok)
			assert.Equal(t, tt.signature, sig)
		})
	}
}

func TestParseContentType(t *testing.T) {
	tests := []struct {
		hint string
		want *models.ContentType
	}{
		{"plain", typePtr(models.ContentTypePlain)},
		{"markdown", typePtr(models.ContentTypeLightweightMarkup)},
		{"lightweight_markup", typePtr(models.ContentTypeLightweightMarkup)},
		{"html", typePtr(models.ContentTypeRawMarkup)},
		{"raw_markup", typePtr(models.ContentTypeRawMarkup)},
		{"", nil},
		{"docx", nil},
	}

	for _, tt := range tests {
		t.Run(tt.hint, func(t *testing.T) {
			assert.Equal(t, tt.want, models.ParseContentType(tt.hint))
		})
	}
}
