package render

import (
	"errors"
	"fmt"
	"image/color"
	"strconv"
	"strings"
)

// ErrInvalidColor is returned for strings that are not #RGB or #RRGGBB.
var ErrInvalidColor = errors.New("invalid hex color")

// Color is an opaque sRGB colour.
type Color struct {
	R, G, B uint8
}

// ParseHex parses "#RRGGBB" or the short "#RGB" form. The leading '#' is
// optional.
func ParseHex(s string) (Color, error) {
	hex := strings.TrimPrefix(strings.TrimSpace(s), "#")

	var parts [3]string
	scale := uint64(1)
	switch len(hex) {
	case 6:
		parts = [3]string{hex[0:2], hex[2:4], hex[4:6]}
	case 3:
		parts = [3]string{hex[0:1], hex[1:2], hex[2:3]}
		scale = 17
	default:
		return Color{}, fmt.Errorf("%w: %q", ErrInvalidColor, s)
	}

	var rgb [3]uint8
	for i, p := range parts {
		v, err := strconv.ParseUint(p, 16, 8)
		if err != nil {
			return Color{}, fmt.Errorf("%w: %q", ErrInvalidColor, s)
		}
		rgb[i] = uint8(v * scale)
	}
	return Color{R: rgb[0], G: rgb[1], B: rgb[2]}, nil
}

// RGBA returns the colour as an opaque color.RGBA.
func (c Color) RGBA() color.RGBA {
	return color.RGBA{R: c.R, G: c.G, B: c.B, A: 0xff}
}

// String returns the colour in #rrggbb form.
func (c Color) String() string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}
