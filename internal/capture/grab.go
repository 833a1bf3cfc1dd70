package capture

import (
	"errors"
	"fmt"
	"image"

	"github.com/kbinani/screenshot"

	"github.com/1broseidon/gulp/internal/geom"
)

// ErrNotOnOutput is returned when a selection touches no output.
var ErrNotOnOutput = errors.New("selection is not on any output")

// Grabber reads screen pixels in global coordinates.
type Grabber interface {
	Grab(r image.Rectangle) (*image.RGBA, error)
}

// ScreenGrabber captures from the running display server.
type ScreenGrabber struct{}

// Grab captures r from the screen.
func (ScreenGrabber) Grab(r image.Rectangle) (*image.RGBA, error) {
	img, err := screenshot.CaptureRect(r)
	if err != nil {
		return nil, fmt.Errorf("capture %v: %w", r, err)
	}
	return img, nil
}

// Locate finds the first output the selection intersects and returns its
// index with the selection in that output's local coordinates, cropped to
// the output.
func Locate(r geom.Rect, outputs []geom.Rect) (int, geom.Rect, error) {
	for i, out := range outputs {
		if !r.Intersects(out) {
			continue
		}
		local := r.Translate(-out.X, -out.Y).
			Intersect(geom.Rect{Width: out.Width, Height: out.Height})
		if !local.IsValid() {
			continue
		}
		return i, local, nil
	}
	return -1, geom.Rect{}, fmt.Errorf("%w: %v", ErrNotOnOutput, r)
}

// Region captures the part of r that lies on its output. A selection that
// spans monitors is cut at the edge of the first one it touches.
func Region(g Grabber, r geom.Rect, outputs []geom.Rect) (*image.RGBA, error) {
	idx, local, err := Locate(r, outputs)
	if err != nil {
		return nil, err
	}
	out := outputs[idx]
	return g.Grab(local.Translate(out.X, out.Y).Image())
}
