// Package capture turns a finished selection into the tool's output:
// formatted coordinates, an image of the region, or OCR text.
package capture

import (
	"strconv"
	"strings"

	"github.com/1broseidon/gulp/internal/geom"
)

// DefaultFormat prints "x,y wxh".
const DefaultFormat = "%x,%y %wx%h"

// FormatCoordinates expands the placeholders in format:
//
//	%x %y  top-left corner
//	%w %h  size
//	%X %Y  bottom-right corner (exclusive)
func FormatCoordinates(format string, r geom.Rect) string {
	if format == "" {
		format = DefaultFormat
	}
	return strings.NewReplacer(
		"%x", strconv.Itoa(r.X),
		"%y", strconv.Itoa(r.Y),
		"%w", strconv.Itoa(r.Width),
		"%h", strconv.Itoa(r.Height),
		"%X", strconv.Itoa(r.Right()),
		"%Y", strconv.Itoa(r.Bottom()),
	).Replace(format)
}
