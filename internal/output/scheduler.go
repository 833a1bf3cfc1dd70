// Package output paces redraws across monitors. Each output repaints at its
// own frame interval and receives the selection in its local coordinates.
package output

import (
	"errors"
	"fmt"
	"image"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"github.com/1broseidon/gulp/internal/display"
	"github.com/1broseidon/gulp/internal/geom"
	"github.com/1broseidon/gulp/internal/selection"
)

// DefaultRefreshMHz is assumed when an output does not report its refresh rate.
const DefaultRefreshMHz = 60000

// Renderer turns a local selection view into a full-output frame.
type Renderer interface {
	Render(view *selection.Selection, width, height int) (*image.RGBA, error)
}

// FrameTime returns the repaint interval for an output. A positive fpsOverride
// applies to every output; otherwise the output's refresh rate (in mHz) is
// used, falling back to 60 Hz.
func FrameTime(fpsOverride, refreshMHz int) time.Duration {
	fps := fpsOverride
	if fps <= 0 {
		if refreshMHz <= 0 {
			refreshMHz = DefaultRefreshMHz
		}
		fps = refreshMHz / 1000
	}
	fps = max(fps, 1)
	return time.Duration(1_000_000/fps) * time.Microsecond
}

// Output is one monitor's overlay and its paint timing.
type Output struct {
	ID         int
	Name       string
	Bounds     geom.Rect
	Configured bool
	LastRender time.Time
	FrameTime  time.Duration
	Surface    display.Surface
}

// Due reports whether the output should repaint at now.
func (o *Output) Due(now time.Time) bool {
	return o.Configured && now.Sub(o.LastRender) >= o.FrameTime
}

// Scheduler owns every output. It is driven from a single goroutine.
type Scheduler struct {
	outputs     map[int]*Output
	renderer    Renderer
	fpsOverride int
	log         zerolog.Logger
}

// NewScheduler creates an empty scheduler. fpsOverride <= 0 means use each
// output's refresh rate.
func NewScheduler(renderer Renderer, fpsOverride int, log zerolog.Logger) *Scheduler {
	return &Scheduler{
		outputs:     map[int]*Output{},
		renderer:    renderer,
		fpsOverride: fpsOverride,
		log:         log,
	}
}

// AddOutput registers a monitor. It stays unconfigured until Configure.
func (s *Scheduler) AddOutput(info display.OutputInfo, surface display.Surface) *Output {
	o := &Output{
		ID:        info.ID,
		Name:      info.Name,
		Bounds:    info.Bounds,
		FrameTime: FrameTime(s.fpsOverride, info.RefreshMHz),
		Surface:   surface,
	}
	s.outputs[info.ID] = o
	s.log.Info().Int("output", info.ID).Str("name", info.Name).
		Stringer("bounds", info.Bounds).Dur("frame_time", o.FrameTime).
		Msg("output added")
	return o
}

// RemoveOutput forgets a monitor.
func (s *Scheduler) RemoveOutput(id int) {
	if _, ok := s.outputs[id]; !ok {
		return
	}
	delete(s.outputs, id)
	s.log.Info().Int("output", id).Msg("output removed")
}

// Configure marks an output ready for drawing and records its size when the
// event carries one.
func (s *Scheduler) Configure(id int, width, height int) bool {
	o, ok := s.outputs[id]
	if !ok {
		return false
	}
	if width > 0 && height > 0 {
		o.Bounds.Width, o.Bounds.Height = width, height
	}
	o.Configured = true
	return true
}

// Output returns an output by id.
func (s *Scheduler) Output(id int) (*Output, bool) {
	o, ok := s.outputs[id]
	return o, ok
}

// Outputs returns every output ordered by id.
func (s *Scheduler) Outputs() []*Output {
	out := make([]*Output, 0, len(s.outputs))
	for _, o := range s.outputs {
		out = append(out, o)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Geometries returns the global bounds of every output ordered by id.
func (s *Scheduler) Geometries() []geom.Rect {
	outs := s.Outputs()
	rects := make([]geom.Rect, len(outs))
	for i, o := range outs {
		rects[i] = o.Bounds
	}
	return rects
}

// Len returns the number of outputs.
func (s *Scheduler) Len() int { return len(s.outputs) }

// ConfiguredCount returns how many outputs are ready for drawing.
func (s *Scheduler) ConfiguredCount() int {
	n := 0
	for _, o := range s.outputs {
		if o.Configured {
			n++
		}
	}
	return n
}

// RedrawAll repaints every configured output whose frame interval has
// elapsed since its last paint, and returns how many were attempted. Outputs
// that are not due are skipped, not queued. A failing output does not stop
// the others; its error is joined into the result and it waits a full frame
// before the next attempt.
func (s *Scheduler) RedrawAll(now time.Time, sel *selection.Selection) (int, error) {
	attempted := 0
	var errs []error
	for _, o := range s.Outputs() {
		if !o.Due(now) {
			continue
		}
		o.LastRender = now
		attempted++
		if err := s.draw(o, sel); err != nil {
			errs = append(errs, err)
		}
	}
	return attempted, errors.Join(errs...)
}

// Draw repaints a single output immediately, ignoring its frame interval.
func (s *Scheduler) Draw(id int, now time.Time, sel *selection.Selection) error {
	o, ok := s.outputs[id]
	if !ok {
		return fmt.Errorf("unknown output %d", id)
	}
	if err := s.draw(o, sel); err != nil {
		return err
	}
	o.LastRender = now
	return nil
}

func (s *Scheduler) draw(o *Output, sel *selection.Selection) error {
	view := LocalView(sel, o.Bounds)
	img, err := s.renderer.Render(view, o.Bounds.Width, o.Bounds.Height)
	if err != nil {
		return fmt.Errorf("render output %d: %w", o.ID, err)
	}
	if err := o.Surface.Attach(img); err != nil {
		return fmt.Errorf("attach frame to output %d: %w", o.ID, err)
	}
	return nil
}

// ClearAll hides every overlay.
func (s *Scheduler) ClearAll() error {
	for _, o := range s.Outputs() {
		if err := o.Surface.Clear(); err != nil {
			return fmt.Errorf("clear output %d: %w", o.ID, err)
		}
	}
	return nil
}

// LocalView builds the selection an output should draw, in its local
// coordinates. A rectangle that touches the output is translated whole, not
// clipped, so a selection spanning monitors stays continuous. Until a drag has
// produced a rectangle with area, the snap target (animated first) is carried
// over as well so a plain click still previews the window it will pick.
func LocalView(sel *selection.Selection, bounds geom.Rect) *selection.Selection {
	r, hasRect := sel.Rect()
	touches := hasRect && r.Intersects(bounds)
	if hasRect && r.IsValid() {
		if touches {
			return selection.FromRect(r.Translate(-bounds.X, -bounds.Y))
		}
		return selection.New(selection.Options{})
	}

	view := selection.New(selection.Options{})
	if touches {
		view = selection.FromRect(r.Translate(-bounds.X, -bounds.Y))
	}
	if snap, ok := sel.CurrentSnapTarget(); ok {
		local := snap.Translate(-bounds.X, -bounds.Y)
		view.SetAnimatedSnapTarget(&local)
	}
	return view
}
