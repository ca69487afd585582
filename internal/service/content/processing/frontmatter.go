package processing

import (
	"strings"

	"gopkg.in/yaml.v3"
)

// splitFrontMatter separates a leading YAML front matter block from markup.
// Expected format:
//
//	---
//	title: Hello
//	tags: [a, b]
//	---
//	# Markup here
//
// Anything that is not a closed block holding a YAML mapping is left in place
// and rendered as ordinary markup.
func splitFrontMatter(markup string) (map[string]any, string, bool) {
	normalized := strings.ReplaceAll(markup, "\r\n", "\n")
	if !strings.HasPrefix(normalized, "---\n") {
		return nil, markup, false
	}

	rest := normalized[len("---\n"):]
	end := -1
	offset := 0
	for _, line := range strings.SplitAfter(rest, "\n") {
		if strings.TrimSpace(line) == "---" {
			end = offset
			break
		}
		offset += len(line)
	}
	if end < 0 {
		return nil, markup, false
	}

	var metadata map[string]any
	if err := yaml.Unmarshal([]byte(rest[:end]), &metadata); err != nil || len(metadata) == 0 {
		return nil, markup, false
	}

	body := rest[end:]
	if i := strings.IndexByte(body, '\n'); i >= 0 {
		body = body[i+1:]
	} else {
		body = ""
	}
	return metadata, body, true
}
