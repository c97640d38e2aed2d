package sanitizer

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// HTMLStripperer removes markup from untrusted text input.
type HTMLStripperer interface {
	StripHTML(s string) string
}

type HTMLStripper struct {
	bm *bluemonday.Policy
}

var _ HTMLStripperer = (*HTMLStripper)(nil)

// NewHTMLStripper return a new instance of blue monday policy
func NewHTMLStripper() *HTMLStripper {
	return &HTMLStripper{
		bm: bluemonday.StrictPolicy(),
	}
}

// StripHTML drops every tag and trims the result. bluemonday escapes
// entities on output, so they are unescaped again to keep "&" and quotes readable.
func (hs *HTMLStripper) StripHTML(s string) string {
	if s == "" {
		return s
	}
	return strings.TrimSpace(html.UnescapeString(hs.bm.Sanitize(s)))
}

// StripHTMLPtr applies StripHTML to an optional value.
func StripHTMLPtr(s HTMLStripperer, v *string) *string {
	if v == nil {
		return nil
	}
	cleaned := s.StripHTML(*v)
	return &cleaned
}
