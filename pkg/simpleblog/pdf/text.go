package pdf

import (
	"html"
	"regexp"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// strictPolicy removes every element; it is safe for concurrent use.
var strictPolicy = bluemonday.StrictPolicy()

// blockBoundary matches tags that end a line of text in rendered HTML.
var blockBoundary = regexp.MustCompile(`(?i)<br\s*/?>|</(p|div|h[1-6]|li|blockquote|pre|tr)\s*>`)

// PlainText converts post content from HTML to plain text. Block elements and
// <br> become line breaks, entities are decoded, blank lines are collapsed.
func PlainText(content string) string {
	withBreaks := blockBoundary.ReplaceAllString(content, "$0\n")
	text := html.UnescapeString(strictPolicy.Sanitize(withBreaks))

	lines := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
	out := make([]string, 0, len(lines))
	blank := false
	for _, line := range lines {
		line = strings.Join(strings.Fields(line), " ")
		if line == "" {
			if !blank && len(out) > 0 {
				out = append(out, "")
			}
			blank = true
			continue
		}
		blank = false
		out = append(out, line)
	}
	return strings.TrimSpace(strings.Join(out, "\n"))
}
