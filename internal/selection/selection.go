// Package selection tracks the lifecycle of one region pick: hovering over
// windows, dragging a rectangle, and completion.
package selection

import (
	"github.com/1broseidon/gulp/internal/geom"
)

// Mode is the phase of a selection session.
type Mode int

const (
	// ModeHover means no button is held; snap targets are previewed.
	ModeHover Mode = iota
	// ModeSelecting means a drag is in progress.
	ModeSelecting
	// ModeComplete means the selection is final.
	ModeComplete
)

// String returns the string representation of the mode
func (m Mode) String() string {
	switch m {
	case ModeHover:
		return "hover"
	case ModeSelecting:
		return "selecting"
	case ModeComplete:
		return "complete"
	default:
		return "unknown"
	}
}

// Options adjust how presses and drags shape the rectangle.
type Options struct {
	// PointMode makes a press select a single pixel and complete at once.
	PointMode bool
	// AspectRatio, when positive, constrains width/height during drags.
	AspectRatio float64
}

// Selection holds the session-wide state in global coordinates.
type Selection struct {
	opts Options

	mode     Mode
	hoverX   int
	hoverY   int
	rect     *geom.Rect
	snap     *geom.Rect
	animated *geom.Rect
}

// New creates a selection in hover mode.
func New(opts Options) *Selection {
	return &Selection{opts: opts, mode: ModeHover}
}

// FromRect creates a selection whose rectangle is r. Used to build per-output
// views of the session.
func FromRect(r geom.Rect) *Selection {
	return &Selection{mode: ModeSelecting, rect: &r}
}

// Mode returns the current phase.
func (s *Selection) Mode() Mode { return s.mode }

// HoverPos returns the last press position.
func (s *Selection) HoverPos() (int, int) { return s.hoverX, s.hoverY }

// StartSelection begins a drag at (x, y). In point mode the selection is a
// 1x1 rectangle and completes immediately.
func (s *Selection) StartSelection(x, y int) {
	s.mode = ModeSelecting
	s.hoverX, s.hoverY = x, y

	if s.opts.PointMode {
		s.rect = &geom.Rect{X: x, Y: y, Width: 1, Height: 1}
		s.mode = ModeComplete
		return
	}
	s.rect = &geom.Rect{X: x, Y: y}
}

// UpdateDrag recomputes the rectangle from the drag start and the current
// pointer position. It does nothing unless a drag is in progress.
func (s *Selection) UpdateDrag(startX, startY, curX, curY int) {
	if s.mode != ModeSelecting {
		return
	}
	r := geom.FromPoints(startX, startY, curX, curY)
	if s.opts.AspectRatio > 0 && r.Height > 0 {
		current := float64(r.Width) / float64(r.Height)
		switch {
		case current > s.opts.AspectRatio:
			r.Width = int(float64(r.Height) * s.opts.AspectRatio)
		case current < s.opts.AspectRatio:
			r.Height = int(float64(r.Width) / s.opts.AspectRatio)
		}
	}
	s.rect = &r
}

// Complete marks the selection final.
func (s *Selection) Complete() {
	s.mode = ModeComplete
}

// SetRect replaces the rectangle, e.g. with a clicked snap target.
func (s *Selection) SetRect(r geom.Rect) {
	s.rect = &r
}

// Selection returns the rectangle only if it has a non-zero area.
func (s *Selection) Selection() (geom.Rect, bool) {
	if s.rect == nil || !s.rect.IsValid() {
		return geom.Rect{}, false
	}
	return *s.rect, true
}

// Rect returns the raw rectangle, which may have zero area mid-drag.
func (s *Selection) Rect() (geom.Rect, bool) {
	if s.rect == nil {
		return geom.Rect{}, false
	}
	return *s.rect, true
}

// SetSnapTarget sets or clears (nil) the detected window rectangle.
func (s *Selection) SetSnapTarget(r *geom.Rect) { s.snap = copyRect(r) }

// SnapTarget returns the detected window rectangle.
func (s *Selection) SnapTarget() (geom.Rect, bool) { return deref(s.snap) }

// SetAnimatedSnapTarget sets or clears (nil) the animated preview rectangle.
func (s *Selection) SetAnimatedSnapTarget(r *geom.Rect) { s.animated = copyRect(r) }

// AnimatedSnapTarget returns the animator's current output.
func (s *Selection) AnimatedSnapTarget() (geom.Rect, bool) { return deref(s.animated) }

// CurrentSnapTarget prefers the animated rectangle over the static one.
func (s *Selection) CurrentSnapTarget() (geom.Rect, bool) {
	if r, ok := deref(s.animated); ok {
		return r, true
	}
	return deref(s.snap)
}

func copyRect(r *geom.Rect) *geom.Rect {
	if r == nil {
		return nil
	}
	c := *r
	return &c
}

func deref(r *geom.Rect) (geom.Rect, bool) {
	if r == nil {
		return geom.Rect{}, false
	}
	return *r, true
}
