package converter

import (
	"fmt"
	"strings"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/JohannesKaufmann/html-to-markdown/plugin"
)

// MarkdownConverter turns stored, already sanitized HTML back into
// lightweight markup so legacy raw-markup records can be edited in the
// markdown editor.
//
// Thread-safe for concurrent use once constructed.
type MarkdownConverter struct {
	converter *md.Converter
}

// NewMarkdownConverter creates a converter with GitHub-flavored tables,
// strikethrough and task lists.
func NewMarkdownConverter() *MarkdownConverter {
	conv := md.NewConverter("", true, &md.Options{
		HeadingStyle:     "atx",
		CodeBlockStyle:   "fenced",
		BulletListMarker: "-",
	})
	conv.Use(plugin.GitHubFlavored())

	return &MarkdownConverter{converter: conv}
}

// Convert transforms sanitized HTML into markdown. The input must already
// have been through the sanitizer; no filtering happens here.
func (c *MarkdownConverter) Convert(sanitizedHTML string) (string, error) {
	markdown, err := c.converter.ConvertString(sanitizedHTML)
	if err != nil {
		return "", fmt.Errorf("convert html to markdown: %w", err)
	}
	return strings.TrimSpace(markdown) + "\n", nil
}
