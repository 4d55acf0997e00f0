package naver

import (
	"regexp"
	"strings"
)

var tagPattern = regexp.MustCompile(`<[^>]*>`)
var spacePattern = regexp.MustCompile(`\s+`)

// stripHTML removes markup fragments such as the <b> highlights the search
// API wraps around matched terms.
func stripHTML(s string) string {
	return tagPattern.ReplaceAllString(s, "")
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(spacePattern.ReplaceAllString(stripHTML(s), "")))
}

// matches reports whether two strings refer to the same title or author once
// markup, whitespace and case are ignored. Substring containment counts in
// either direction, so subtitles and co-author lists still match.
func matches(query, result string) bool {
	a := normalize(query)
	b := normalize(result)

	if a == b {
		return true
	}
	return strings.Contains(a, b) || strings.Contains(b, a)
}
