package swatch

import (
	"fmt"
	"strconv"
	"strings"
)

// PatternDef returns the SVG <pattern> element that overlays patternID on a
// base of colorHex, and the element id to reference it with url(#id).
// NONE and unknown patterns return empty strings.
func PatternDef(patternID, colorHex string) (id, def string) {
	pattern := strings.ToUpper(strings.TrimSpace(patternID))
	color := strings.ToUpper(strings.TrimPrefix(strings.TrimSpace(colorHex), "#"))
	ink := contrastInk(color)

	var body string
	switch pattern {
	case "PATTERN_1":
		// 斜めストライプ
		body = fmt.Sprintf(`<path d="M0,8 L8,0" stroke="%s" stroke-width="2" stroke-opacity="0.45"/>`, ink)
	case "PATTERN_2":
		// ドット
		body = fmt.Sprintf(`<circle cx="4" cy="4" r="1.6" fill="%s" fill-opacity="0.45"/>`, ink)
	case "PATTERN_3":
		// チェック
		body = fmt.Sprintf(`<rect width="4" height="4" fill="%s" fill-opacity="0.35"/><rect x="4" y="4" width="4" height="4" fill="%s" fill-opacity="0.35"/>`, ink, ink)
	default:
		return "", ""
	}

	id = fmt.Sprintf("p-%s-%s", strings.ToLower(pattern), strings.ToLower(color))
	def = fmt.Sprintf(`<pattern id="%s" width="8" height="8" patternUnits="userSpaceOnUse">%s</pattern>`, id, body)
	return id, def
}

// contrastInk picks black or white, whichever reads better on color (RRGGBB).
func contrastInk(color string) string {
	if len(color) != 6 {
		return "#000000"
	}
	v, err := strconv.ParseUint(color, 16, 32)
	if err != nil {
		return "#000000"
	}
	r, g, b := float64(v>>16&0xff), float64(v>>8&0xff), float64(v&0xff)
	// ITU-R BT.601 の輝度
	if 0.299*r+0.587*g+0.114*b < 128 {
		return "#FFFFFF"
	}
	return "#000000"
}
