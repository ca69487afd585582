package sanitizer

import (
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"golang.org/x/net/html"
)

// AssetURLPattern is the internal asset reference contract shared with the
// file storage layer. It must match exactly.
const AssetURLPattern = `^/api/files/[0-9a-f-]{8,}$`

// ErrDisallowedMarkup is returned by Verify when HTML escapes the allow-list.
var ErrDisallowedMarkup = errors.New("disallowed markup")

var (
	// Absolute http(s) URL or internal asset reference. Everything else,
	// including relative paths, javascript: and data:, is dropped.
	urlPattern    = regexp.MustCompile(`^(?:(?i:https?)://\S+|/api/files/[0-9a-f-]{8,})$`)
	classPattern  = regexp.MustCompile(`^[\w\- ]{1,200}$`)
	targetPattern = regexp.MustCompile(`^(?:_blank|_self|_parent|_top)$`)
)

// allowList maps each permitted tag to its permitted attributes.
var allowList = map[string]map[string]bool{
	"p": nil, "br": nil, "strong": nil, "em": nil, "u": nil, "hr": nil, "blockquote": nil,
	"h1": nil, "h2": nil, "h3": nil, "h4": nil, "h5": nil, "h6": nil,
	"ul": nil, "ol": nil, "li": nil,
	"code":  {"class": true},
	"pre":   {"class": true},
	"img":   {"src": true, "alt": true, "title": true},
	"a":     {"href": true, "title": true, "target": true},
	"table": {"class": true},
	"thead": {"class": true},
	"tbody": {"class": true},
	"tr":    {"class": true},
	"th":    {"class": true},
	"td":    {"class": true},
}

// HTMLSanitizer restricts an HTML fragment to a fixed allow-list of tags,
// attributes and URL schemes. Disallowed elements are unwrapped (their text
// is kept); script-like elements are dropped together with their content.
//
// Thread-safe for concurrent use.
type HTMLSanitizer struct {
	policy *bluemonday.Policy
}

// NewHTMLSanitizer creates a sanitizer for author content.
func NewHTMLSanitizer() *HTMLSanitizer {
	policy := bluemonday.NewPolicy()

	policy.AllowElements(
		"p", "br", "strong", "em", "u", "hr", "blockquote",
		"h1", "h2", "h3", "h4", "h5", "h6",
		"ul", "ol", "li",
		"code", "pre",
		"table", "thead", "tbody", "tr", "th", "td",
	)

	policy.AllowAttrs("class").Matching(classPattern).OnElements(
		"code", "pre", "table", "thead", "tbody", "tr", "th", "td",
	)

	// URLs must parse; relative URLs are allowed only so the asset
	// pattern can match, urlPattern rejects every other relative form.
	policy.RequireParseableURLs(true)
	policy.AllowRelativeURLs(true)
	policy.AllowURLSchemes("http", "https")

	policy.AllowAttrs("href").Matching(urlPattern).OnElements("a")
	policy.AllowAttrs("title").OnElements("a")
	policy.AllowAttrs("target").Matching(targetPattern).OnElements("a")

	policy.AllowAttrs("src").Matching(urlPattern).OnElements("img")
	policy.AllowAttrs("alt", "title").OnElements("img")

	return &HTMLSanitizer{policy: policy}
}

// Sanitize returns fragment restricted to the allow-list. It never fails:
// offending attributes are removed, and a link or image left without its
// URL is unwrapped. Sanitizing the output again is a no-op.
func (s *HTMLSanitizer) Sanitize(fragment string) string {
	return s.policy.Sanitize(fragment)
}

// Verify walks fragment and reports the first tag, attribute or URL outside
// the allow-list. Sanitize output always verifies; a failure is a bug.
func Verify(fragment string) error {
	z := html.NewTokenizer(strings.NewReader(fragment))
	for {
		switch z.Next() {
		case html.ErrorToken:
			if err := z.Err(); err != io.EOF {
				return fmt.Errorf("tokenize: %w", err)
			}
			return nil
		case html.StartTagToken, html.SelfClosingTagToken, html.EndTagToken:
			tok := z.Token()
			attrs, ok := allowList[tok.Data]
			if !ok {
				return fmt.Errorf("%w: tag <%s>", ErrDisallowedMarkup, tok.Data)
			}
			for _, attr := range tok.Attr {
				if !attrs[attr.Key] {
					return fmt.Errorf("%w: attribute %q on <%s>", ErrDisallowedMarkup, attr.Key, tok.Data)
				}
				if (attr.Key == "href" || attr.Key == "src") && !urlPattern.MatchString(attr.Val) {
					return fmt.Errorf("%w: url %q on <%s>", ErrDisallowedMarkup, attr.Val, tok.Data)
				}
			}
		}
	}
}

// IsAllowedURL reports whether value may appear in an href or src attribute.
func IsAllowedURL(value string) bool {
	return urlPattern.MatchString(value)
}
