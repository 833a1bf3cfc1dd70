// Package geom holds the rectangle type shared by every part of the picker.
package geom

import (
	"fmt"
	"image"
)

// Rect describes a rectangular region in screen coordinates. The region is
// half-open: it covers [X, X+Width) × [Y, Y+Height).
type Rect struct {
	X      int
	Y      int
	Width  int
	Height int
}

// FromPoints returns the rectangle spanned by two corners, in any order.
func FromPoints(x1, y1, x2, y2 int) Rect {
	return Rect{
		X:      min(x1, x2),
		Y:      min(y1, y2),
		Width:  abs(x2 - x1),
		Height: abs(y2 - y1),
	}
}

// IsValid reports whether the rectangle has a non-zero area.
func (r Rect) IsValid() bool {
	return r.Width > 0 && r.Height > 0
}

// Intersects reports whether r and o overlap. Rectangles that only share an
// edge do not intersect.
func (r Rect) Intersects(o Rect) bool {
	return r.X < o.X+o.Width &&
		r.X+r.Width > o.X &&
		r.Y < o.Y+o.Height &&
		r.Y+r.Height > o.Y
}

// Contains reports whether the point lies inside r.
func (r Rect) Contains(x, y int) bool {
	return x >= r.X && x < r.X+r.Width &&
		y >= r.Y && y < r.Y+r.Height
}

// Translate returns r shifted by (dx, dy).
func (r Rect) Translate(dx, dy int) Rect {
	r.X += dx
	r.Y += dy
	return r
}

// Area returns Width*Height.
func (r Rect) Area() int {
	return r.Width * r.Height
}

// Right returns the exclusive right edge.
func (r Rect) Right() int { return r.X + r.Width }

// Bottom returns the exclusive bottom edge.
func (r Rect) Bottom() int { return r.Y + r.Height }

// Intersect returns the overlapping part of r and o, or the zero Rect.
func (r Rect) Intersect(o Rect) Rect {
	x0, y0 := max(r.X, o.X), max(r.Y, o.Y)
	x1, y1 := min(r.Right(), o.Right()), min(r.Bottom(), o.Bottom())
	if x1 <= x0 || y1 <= y0 {
		return Rect{}
	}
	return Rect{X: x0, Y: y0, Width: x1 - x0, Height: y1 - y0}
}

// Image converts r to an image.Rectangle.
func (r Rect) Image() image.Rectangle {
	return image.Rect(r.X, r.Y, r.Right(), r.Bottom())
}

func (r Rect) String() string {
	return fmt.Sprintf("%dx%d+%d+%d", r.Width, r.Height, r.X, r.Y)
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
