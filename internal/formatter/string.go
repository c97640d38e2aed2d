package formatter

import (
	"regexp"
	"strings"
)

var (
	separatorRX = regexp.MustCompile(`[\s_]+`)
	hyphensRX   = regexp.MustCompile(`-+`)
)

// NormalizeSlug lowercases s, turns whitespace and underscores into hyphens
// and collapses repeated hyphens. Characters outside [a-z0-9-] are kept so
// that validation can reject them instead of silently rewriting the slug.
func NormalizeSlug(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = separatorRX.ReplaceAllString(s, "-")
	s = hyphensRX.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}
