package processing

import (
	"bytes"
	"fmt"
	"html"
	"regexp"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	gmhtml "github.com/yuin/goldmark/renderer/html"
)

// Renderer converts lightweight markup into an HTML fragment.
// It handles syntax only; the output is not safe until sanitized.
//
// Thread-safe for concurrent use.
type Renderer struct {
	engine goldmark.Markdown
}

// NewRenderer creates a renderer with GFM tables, strikethrough, task lists and
// autolinks. Raw HTML passes through so the sanitizer sees exactly what the
// author wrote.
func NewRenderer() *Renderer {
	return &Renderer{
		engine: goldmark.New(
			goldmark.WithExtensions(
				extension.GFM,
			),
			goldmark.WithRendererOptions(
				gmhtml.WithUnsafe(),
			),
		),
	}
}

// Render converts markup to HTML. goldmark is a linear-time CommonMark parser
// and never rejects input: unrecognized syntax is emitted as literal text.
func (r *Renderer) Render(markup string) (string, error) {
	var buf bytes.Buffer
	if err := r.engine.Convert([]byte(markup), &buf); err != nil {
		return "", fmt.Errorf("markdown render: %w", err)
	}
	return buf.String(), nil
}

var blankLines = regexp.MustCompile(`\n[ \t]*\n`)

// RenderPlain escapes plain text and turns it into paragraphs: blank lines
// separate paragraphs, single newlines become <br>.
func RenderPlain(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")

	var b strings.Builder
	for _, para := range blankLines.Split(text, -1) {
		para = strings.Trim(para, "\n")
		if strings.TrimSpace(para) == "" {
			continue
		}
		lines := strings.Split(para, "\n")
		for i, line := range lines {
			lines[i] = html.EscapeString(line)
		}
		b.WriteString("<p>")
		b.WriteString(strings.Join(lines, "<br>\n"))
		b.WriteString("</p>\n")
	}
	return b.String()
}
