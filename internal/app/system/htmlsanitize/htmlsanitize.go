// Package htmlsanitize cleans user-supplied text before it is stored or
// rendered. Memo descriptions may carry lightweight formatting; titles are
// always plain text.
package htmlsanitize

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var (
	// ugc allows the formatting a memo description can carry: inline
	// emphasis, links, lists, and paragraphs. Scripts, event handlers,
	// iframes, and forms are stripped.
	ugc = bluemonday.UGCPolicy()

	// strict strips every tag, leaving text content only.
	strict = bluemonday.StrictPolicy()
)

// Sanitize returns s with any unsafe HTML removed. Safe formatting tags
// (p, strong, em, ul, ol, li, a, blockquote, code, pre, br) survive.
func Sanitize(s string) string {
	if s == "" {
		return ""
	}
	return ugc.Sanitize(s)
}

// StripTags removes all HTML from s and unescapes entities, returning the
// plain text content. Used for memo titles and group names, which never
// carry markup.
func StripTags(s string) string {
	if s == "" {
		return ""
	}
	return strings.TrimSpace(html.UnescapeString(strict.Sanitize(s)))
}
