package render

import (
	"html/template"
	"strings"

	"github.com/rcliao/vela/internal/model"
)

// safeColor passes hex colors through as CSS and replaces anything else
// with fallback.
func safeColor(c, fallback string) template.CSS {
	if !model.IsHexColor(c) {
		c = fallback
	}
	return template.CSS(c)
}

// cssString strips characters that could end a quoted CSS string.
func cssString(s string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '\'', '"', '\\', '<', '>', ';', '{', '}':
			return -1
		}
		return r
	}, s)
}

// expandHex turns #rgb into #rrggbb and drops an alpha channel, which is
// the form terminal color profiles accept.
func expandHex(c string) string {
	if !model.IsHexColor(c) {
		return ""
	}
	h := c[1:]
	switch len(h) {
	case 3:
		return "#" + string([]byte{h[0], h[0], h[1], h[1], h[2], h[2]})
	case 8:
		return "#" + h[:6]
	}
	return c
}
