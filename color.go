package compose

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"

	"golang.org/x/image/colornames"
)

// ParseColor parses a CSS-style color: "#RGB", "#RGBA", "#RRGGBB",
// "#RRGGBBAA", "rgb(r, g, b)", "rgba(r, g, b, a)", "transparent", or an
// SVG color keyword such as "white".
func ParseColor(s string) (color.NRGBA, error) {
	s = strings.TrimSpace(s)
	lower := strings.ToLower(s)
	switch {
	case strings.HasPrefix(s, "#"):
		return parseHexColor(s[1:])
	case strings.HasPrefix(lower, "rgb"):
		return parseFuncColor(lower)
	case lower == "transparent":
		return color.NRGBA{}, nil
	}
	if c, ok := colornames.Map[lower]; ok {
		return color.NRGBA{R: c.R, G: c.G, B: c.B, A: c.A}, nil
	}
	return color.NRGBA{}, fmt.Errorf("compose: unrecognized color %q", s)
}

// parseHexColor parses the digits of a hex color without the leading '#'.
func parseHexColor(hex string) (color.NRGBA, error) {
	var r, g, b uint32
	a := uint32(255)
	ok := true

	switch len(hex) {
	case 3: // RGB
		ok = parseHex(hex[0:1], &r) && parseHex(hex[1:2], &g) && parseHex(hex[2:3], &b)
		r, g, b = r*17, g*17, b*17
	case 4: // RGBA
		ok = parseHex(hex[0:1], &r) && parseHex(hex[1:2], &g) && parseHex(hex[2:3], &b) && parseHex(hex[3:4], &a)
		r, g, b, a = r*17, g*17, b*17, a*17
	case 6: // RRGGBB
		ok = parseHex(hex[0:2], &r) && parseHex(hex[2:4], &g) && parseHex(hex[4:6], &b)
	case 8: // RRGGBBAA
		ok = parseHex(hex[0:2], &r) && parseHex(hex[2:4], &g) && parseHex(hex[4:6], &b) && parseHex(hex[6:8], &a)
	default:
		ok = false
	}
	if !ok {
		return color.NRGBA{}, fmt.Errorf("compose: invalid hex color %q", "#"+hex)
	}
	return color.NRGBA{R: uint8(r), G: uint8(g), B: uint8(b), A: uint8(a)}, nil
}

// parseHex accumulates hex digits of s into val. It reports false on the
// first non-hex character.
func parseHex(s string, val *uint32) bool {
	*val = 0
	for i := 0; i < len(s); i++ {
		c := s[i]
		*val *= 16
		switch {
		case '0' <= c && c <= '9':
			*val += uint32(c - '0')
		case 'a' <= c && c <= 'f':
			*val += uint32(c - 'a' + 10)
		case 'A' <= c && c <= 'F':
			*val += uint32(c - 'A' + 10)
		default:
			return false
		}
	}
	return true
}

// parseFuncColor parses rgb(...) and rgba(...) in lower case. Channels are
// 0-255 or percentages; alpha is 0-1 or a percentage.
func parseFuncColor(s string) (color.NRGBA, error) {
	open, end := strings.IndexByte(s, '('), strings.LastIndexByte(s, ')')
	if open < 0 || end < open {
		return color.NRGBA{}, fmt.Errorf("compose: invalid color %q", s)
	}
	args := strings.FieldsFunc(s[open+1:end], func(r rune) bool {
		return r == ',' || r == ' ' || r == '/'
	})
	if len(args) != 3 && len(args) != 4 {
		return color.NRGBA{}, fmt.Errorf("compose: invalid color %q", s)
	}

	var ch [4]uint8
	ch[3] = 255
	for i, arg := range args {
		scale := 1.0
		switch {
		case strings.HasSuffix(arg, "%"):
			arg = strings.TrimSuffix(arg, "%")
			scale = 2.55
		case i == 3:
			scale = 255
		}
		v, err := strconv.ParseFloat(arg, 64)
		if err != nil {
			return color.NRGBA{}, fmt.Errorf("compose: invalid color %q: %w", s, err)
		}
		ch[i] = uint8(clamp255(v*scale + 0.5))
	}
	return color.NRGBA{R: ch[0], G: ch[1], B: ch[2], A: ch[3]}, nil
}

// clamp255 restricts a value to [0, 255] range.
func clamp255(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 255 {
		return 255
	}
	return x
}

// paintColor resolves a color field for painting. Unparseable values
// paint in the default color.
func paintColor(s string) color.NRGBA {
	if s == "" {
		s = DefaultColor
	}
	c, err := ParseColor(s)
	if err != nil {
		Logger().Debug("compose: using default color", "value", s, "error", err)
		return color.NRGBA{A: 255}
	}
	return c
}
