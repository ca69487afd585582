package processing

import (
	"regexp"

	models "folio/internal/domain/models/content"
)

// markupSignature is one lightweight-markup construct the classifier looks for.
type markupSignature struct {
	name    string
	pattern *regexp.Regexp
}

// Checked in order; the first match decides. All patterns are RE2 and run in
// linear time on adversarial input.
var markupSignatures = []markupSignature{
	{"heading", regexp.MustCompile(`(?m)^ {0,3}#{1,6}[ \t]+\S`)},
	{"strong", regexp.MustCompile(`\*\*[^*\n]+\*\*|(?:^|\W)__[^_\n]+__(?:\W|$)`)},
	{"emphasis", regexp.MustCompile(`(?:^|[^*\w])\*[^*\s][^*\n]*\*|(?:^|\W)_[^_\s][^_\n]*_(?:\W|$)`)},
	{"image_or_link", regexp.MustCompile(`!?\[[^\]\n]*\]\([^)\s]+[^)\n]*\)`)},
	{"list", regexp.MustCompile(`(?m)^ {0,3}(?:[-*+]|\d{1,9}[.)])[ \t]+\S`)},
	{"fenced_code", regexp.MustCompile("(?m)^ {0,3}(?:```|~~~)")},
}

// Classify resolves the content type of raw. A valid hint always wins;
// otherwise raw is scanned for lightweight-markup signatures.
func Classify(raw string, hint *models.ContentType) models.ContentType {
	if hint != nil && hint.IsValid() {
		return *hint
	}
	if _, ok := DetectSignature(raw); ok {
		return models.ContentTypeLightweightMarkup
	}
	return models.ContentTypePlain
}

// DetectSignature returns the name of the first lightweight-markup signature found in raw.
func DetectSignature(raw string) (string, bool) {
	for _, sig := range markupSignatures {
		if sig.pattern.MatchString(raw) {
			return sig.name, true
		}
	}
	return "", false
}
