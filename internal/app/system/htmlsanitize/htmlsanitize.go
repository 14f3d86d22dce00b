// Package htmlsanitize strips markup from user-supplied note text before
// it is stored.
package htmlsanitize

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// strict removes all HTML elements and attributes, leaving text content.
var strict = bluemonday.StrictPolicy()

// Text returns s with all HTML tags removed and entities decoded, so
// `<script>alert(1)</script>hi` becomes `hi`. Whitespace at the ends is
// trimmed.
func Text(s string) string {
	if s == "" {
		return ""
	}
	cleaned := strict.Sanitize(s)
	// bluemonday escapes entities in text nodes; decode them back so the
	// stored value reads as the user typed it.
	return strings.TrimSpace(html.UnescapeString(cleaned))
}

// Texts applies Text to every element of ss, dropping entries that end
// up empty.
func Texts(ss []string) []string {
	if len(ss) == 0 {
		return ss
	}
	out := make([]string, 0, len(ss))
	for _, s := range ss {
		if t := Text(s); t != "" {
			out = append(out, t)
		}
	}
	return out
}
