package processing

import (
	"fmt"
	"net/url"
	"path"
	"regexp"
	"strings"
	"unicode"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"folio/internal/config"
)

// Metadata holds the attributes derived from sanitized HTML.
type Metadata struct {
	PlainText      string
	WordCount      int
	ReadingTime    int
	InlineAssetIDs []string
	// ImageText is the alt/title text of every image, used only as a
	// plain-text fallback for content that has no other text.
	ImageText string
	// ImageNames is the last path segment of every image source, still
	// percent-encoded so it never carries markup characters.
	ImageNames string
}

// assetSrc captures the identifier of an internal asset reference. It is
// looser than the sanitizer's URL contract so extraction also works on
// fragments that were never sanitized.
var assetSrc = regexp.MustCompile(`^/api/files/([0-9A-Za-z_-]+)/?$`)

// Elements that separate words when their tags are stripped.
var blockElements = map[atom.Atom]bool{
	atom.P: true, atom.Br: true, atom.Hr: true, atom.Blockquote: true, atom.Pre: true,
	atom.H1: true, atom.H2: true, atom.H3: true, atom.H4: true, atom.H5: true, atom.H6: true,
	atom.Ul: true, atom.Ol: true, atom.Li: true,
	atom.Table: true, atom.Thead: true, atom.Tbody: true, atom.Tr: true, atom.Th: true, atom.Td: true,
	atom.Div: true, atom.Section: true, atom.Article: true, atom.Img: true,
}

// Elements whose text is never part of the readable content.
var skippedElements = map[atom.Atom]bool{
	atom.Script: true, atom.Style: true, atom.Noscript: true, atom.Template: true,
}

// Extractor derives plain text, word count, reading time and inline asset ids.
// It is stateless and safe for concurrent use.
type Extractor struct{}

// NewExtractor creates a new metadata extractor
func NewExtractor() *Extractor {
	return &Extractor{}
}

// Extract parses fragment and derives its metadata.
func (e *Extractor) Extract(fragment string) (Metadata, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return Metadata{}, fmt.Errorf("parse html: %w", err)
	}

	var b strings.Builder
	for _, n := range doc.Find("body").Nodes {
		collectText(n, &b)
	}
	text := CollapseWhitespace(b.String())

	var ids []string
	seen := make(map[string]struct{})
	var imageText, imageNames []string
	doc.Find("img").Each(func(_ int, img *goquery.Selection) {
		for _, attr := range []string{"alt", "title"} {
			if v, ok := img.Attr(attr); ok && strings.TrimSpace(v) != "" {
				imageText = append(imageText, v)
			}
		}
		src, ok := img.Attr("src")
		if !ok {
			return
		}
		if name := imageName(src); name != "" {
			imageNames = append(imageNames, name)
		}
		m := assetSrc.FindStringSubmatch(strings.TrimSpace(src))
		if m == nil {
			return
		}
		if _, dup := seen[m[1]]; dup {
			return
		}
		seen[m[1]] = struct{}{}
		ids = append(ids, m[1])
	})

	words := CountWords(text)
	return Metadata{
		PlainText:      text,
		WordCount:      words,
		ReadingTime:    ReadingTime(words),
		InlineAssetIDs: ids,
		ImageText:      CollapseWhitespace(strings.Join(imageText, " ")),
		ImageNames:     strings.Join(imageNames, " "),
	}, nil
}

// imageName returns the escaped last path segment of src, or "".
func imageName(src string) string {
	u, err := url.Parse(strings.TrimSpace(src))
	if err != nil {
		return ""
	}
	name := path.Base(u.EscapedPath())
	if name == "." || name == "/" {
		return ""
	}
	return name
}

// collectText appends the decoded text below n, padding block boundaries with spaces.
func collectText(n *html.Node, b *strings.Builder) {
	switch n.Type {
	case html.TextNode:
		b.WriteString(n.Data)
		return
	case html.ElementNode:
		if skippedElements[n.DataAtom] {
			return
		}
	}

	block := n.Type == html.ElementNode && blockElements[n.DataAtom]
	if block {
		b.WriteByte(' ')
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collectText(c, b)
	}
	if block {
		b.WriteByte(' ')
	}
}

// CollapseWhitespace replaces runs of whitespace with a single space and trims.
func CollapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// CountWords counts maximal runs of non-whitespace, ignoring tokens made only of
// punctuation or symbols. Non-space-delimited scripts count one word per run.
func CountWords(text string) int {
	count := 0
	for _, token := range strings.Fields(text) {
		if hasWordRune(token) {
			count++
		}
	}
	return count
}

func hasWordRune(token string) bool {
	for _, r := range token {
		if unicode.IsLetter(r) || unicode.IsNumber(r) {
			return true
		}
	}
	return false
}

// ReadingTime returns the estimated reading time in minutes:
// max(1, round(words / WordsPerMinute)), rounding halves up.
func ReadingTime(words int) int {
	if words <= 0 {
		return 1
	}
	minutes := (words + config.WordsPerMinute/2) / config.WordsPerMinute
	return max(1, minutes)
}
