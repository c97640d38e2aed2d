package sanitizer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHTMLStripper_StripHTML(t *testing.T) {
	s := NewHTMLStripper()

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain text", "Phones", "Phones"},
		{"tags removed", "<b>Phones</b> & <i>Tablets</i>", "Phones & Tablets"},
		{"script removed", `<script>alert("x")</script>Audio`, "Audio"},
		{"whitespace trimmed", "  Home  ", "Home"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, s.StripHTML(tt.input))
		})
	}
}

func TestStripHTMLPtr(t *testing.T) {
	s := NewHTMLStripper()

	assert.Nil(t, StripHTMLPtr(s, nil))

	in := "<p>Best sellers</p>"
	out := StripHTMLPtr(s, &in)
	if assert.NotNil(t, out) {
		assert.Equal(t, "Best sellers", *out)
	}
}
