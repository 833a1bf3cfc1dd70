// Package picker runs the interactive selection loop: it waits for input,
// steps the snap animation, repaints outputs and decides when the session
// ends.
package picker

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/rs/zerolog"

	"github.com/1broseidon/gulp/internal/animation"
	"github.com/1broseidon/gulp/internal/display"
	"github.com/1broseidon/gulp/internal/geom"
	"github.com/1broseidon/gulp/internal/output"
	"github.com/1broseidon/gulp/internal/selection"
	"github.com/1broseidon/gulp/internal/windows"
)

// ErrCancelled is returned when the user aborts with Escape or right click,
// or when the context passed to Run is cancelled.
var ErrCancelled = errors.New("selection cancelled by user")

const (
	// SnapThreshold is how far from a window the pointer may be and still
	// snap to it.
	SnapThreshold = windows.DefaultSnapThreshold

	// IdleTimeout is the poll interval while the snap animation is at rest.
	IdleTimeout = 33 * time.Millisecond
	// AnimationTimeout is the poll interval while the snap animation moves.
	AnimationTimeout = 8 * time.Millisecond

	// DefaultSettleDelay gives the display server a frame to drop the
	// overlays before the screen is captured.
	DefaultSettleDelay = 16 * time.Millisecond
)

// Used when neither the window backend nor the display knows the pointer.
const fallbackCursorX, fallbackCursorY = 1280, 720

// PollTimeout picks how long to wait for input. Without an animation the
// loop sleeps until the next event (-1).
func PollTimeout(spring *animation.Spring) time.Duration {
	switch {
	case spring == nil:
		return -1
	case spring.IsSettled():
		return IdleTimeout
	default:
		return AnimationTimeout
	}
}

// EventSource is the part of a display backend the loop drives.
type EventSource interface {
	Outputs() ([]display.OutputInfo, error)
	Surface(outputID int) (display.Surface, error)
	Wait(ctx context.Context, timeout time.Duration) (display.Event, bool, error)
	Roundtrip() error
	PointerPosition() (x, y int, ok bool)
}

// Options tune a picking session.
type Options struct {
	Selection   selection.Options
	NoAnimation bool
	// RefreshInterval re-reads the window list while hovering once the
	// snapshot is older than this. Zero keeps the first snapshot.
	RefreshInterval time.Duration
	SettleDelay     time.Duration
}

// Picker owns all mutable session state. It is not safe for concurrent use.
type Picker struct {
	opts    Options
	source  EventSource
	manager *windows.Manager
	sched   *output.Scheduler
	sel     *selection.Selection
	log     zerolog.Logger

	now   func() time.Time
	sleep func(time.Duration)

	spring    *animation.Spring
	lastFrame time.Time

	pointerX, pointerY float64
	pointerKnown       bool
	pressed            bool
	startX, startY     int

	needsRedraw bool
	done        bool
	cancelled   bool
}

// New creates a picker. A nil manager disables window snapping.
func New(opts Options, source EventSource, manager *windows.Manager, sched *output.Scheduler, log zerolog.Logger) *Picker {
	if opts.SettleDelay <= 0 {
		opts.SettleDelay = DefaultSettleDelay
	}
	return &Picker{
		opts:    opts,
		source:  source,
		manager: manager,
		sched:   sched,
		sel:     selection.New(opts.Selection),
		log:     log,
		now:     time.Now,
		sleep:   time.Sleep,
	}
}

// Selection exposes the session selection.
func (p *Picker) Selection() *selection.Selection { return p.sel }

// Run drives the loop until the user completes or cancels a selection and
// returns the chosen rectangle in global coordinates.
func (p *Picker) Run(ctx context.Context) (geom.Rect, error) {
	infos, err := p.source.Outputs()
	if err != nil {
		return geom.Rect{}, fmt.Errorf("list outputs: %w", err)
	}
	if len(infos) == 0 {
		return geom.Rect{}, errors.New("no outputs available")
	}
	for _, info := range infos {
		p.addOutput(info)
	}

	p.lastFrame = p.now()
	p.initSnap(ctx)
	p.needsRedraw = true

	for {
		if err := ctx.Err(); err != nil {
			return geom.Rect{}, fmt.Errorf("%w: %w", ErrCancelled, err)
		}

		timeout := PollTimeout(p.spring)
		if p.needsRedraw && (timeout < 0 || timeout > AnimationTimeout) {
			// A frame skipped by throttling is retried soon rather than
			// waiting for the next input event.
			timeout = AnimationTimeout
		}

		ev, ok, err := p.source.Wait(ctx, timeout)
		if err != nil {
			if ctx.Err() != nil {
				return geom.Rect{}, fmt.Errorf("%w: %w", ErrCancelled, ctx.Err())
			}
			return geom.Rect{}, fmt.Errorf("wait for events: %w", err)
		}
		if ok {
			p.handle(ctx, ev)
		}

		if p.spring != nil {
			p.updateAnimation()
		}

		if p.needsRedraw && !p.done && !p.cancelled {
			p.needsRedraw = false
			attempted, err := p.sched.RedrawAll(p.now(), p.sel)
			if err != nil {
				p.log.Warn().Err(err).Msg("redraw failed")
			}
			if attempted < p.sched.ConfiguredCount() {
				p.needsRedraw = true
			}
		}

		if p.cancelled {
			return geom.Rect{}, ErrCancelled
		}
		if p.done {
			return p.finish()
		}
	}
}

func (p *Picker) handle(ctx context.Context, ev display.Event) {
	switch ev.Kind {
	case display.EventPointerMotion:
		p.handleMotion(ctx, ev.Output, ev.X, ev.Y)

	case display.EventButton:
		switch {
		case ev.Button == display.ButtonLeft:
			p.setPointer(ev.Output, ev.X, ev.Y)
			p.handleButton(ev.Pressed)
		case ev.Button == display.ButtonRight && ev.Pressed:
			p.cancel("right button")
		}

	case display.EventKey:
		if ev.Pressed && ev.Key == display.KeyEscape {
			p.cancel("escape")
		}

	case display.EventOutputAdded:
		p.addOutput(ev.Info)
		p.needsRedraw = true

	case display.EventOutputRemoved:
		p.sched.RemoveOutput(ev.Output)

	case display.EventOutputConfigured:
		if !p.sched.Configure(ev.Output, ev.Info.Bounds.Width, ev.Info.Bounds.Height) {
			p.log.Debug().Int("output", ev.Output).Msg("configure for unknown output")
			return
		}
		if err := p.sched.Draw(ev.Output, p.now(), p.sel); err != nil {
			p.log.Warn().Err(err).Int("output", ev.Output).Msg("initial draw failed")
		}
	}
}

func (p *Picker) addOutput(info display.OutputInfo) {
	surface, err := p.source.Surface(info.ID)
	if err != nil {
		p.log.Warn().Err(err).Int("output", info.ID).Msg("no surface for output")
		return
	}
	p.sched.AddOutput(info, surface)
}

// setPointer records the pointer in global coordinates.
func (p *Picker) setPointer(outputID int, x, y float64) (int, int) {
	if o, ok := p.sched.Output(outputID); ok {
		x += float64(o.Bounds.X)
		y += float64(o.Bounds.Y)
	}
	p.pointerX, p.pointerY = x, y
	p.pointerKnown = true
	return int(x), int(y)
}

func (p *Picker) handleMotion(ctx context.Context, outputID int, x, y float64) {
	gx, gy := p.setPointer(outputID, x, y)

	if p.pressed {
		p.sel.UpdateDrag(p.startX, p.startY, gx, gy)
		p.needsRedraw = true
		return
	}
	if p.manager == nil {
		return
	}

	p.maybeRefresh(ctx)

	var target *geom.Rect
	if w, _, ok := p.manager.FindNearestWindow(gx, gy, SnapThreshold); ok {
		r := w.Rect
		target = &r
	}
	current, hasCurrent := p.sel.SnapTarget()
	if (target == nil && !hasCurrent) || (target != nil && hasCurrent && *target == current) {
		return
	}

	if target == nil {
		p.log.Info().Msg("snap target: none")
		p.spring = nil
		p.sel.SetAnimatedSnapTarget(nil)
	} else {
		p.log.Info().Stringer("rect", *target).Msg("snap target")
		p.animateTo(*target, gx, gy)
	}
	p.sel.SetSnapTarget(target)
	p.needsRedraw = true
}

// animateTo retargets the spring, starting a new one from a 1x1 rectangle at
// the pointer when none is running.
func (p *Picker) animateTo(target geom.Rect, px, py int) {
	if p.opts.NoAnimation {
		return
	}
	if p.spring == nil {
		p.spring = animation.New(geom.Rect{X: px, Y: py, Width: 1, Height: 1})
		p.lastFrame = p.now()
	}
	p.spring.SetTarget(target)
}

func (p *Picker) maybeRefresh(ctx context.Context) {
	if p.opts.RefreshInterval <= 0 {
		return
	}
	if p.now().Sub(p.manager.RefreshedAt()) < p.opts.RefreshInterval {
		return
	}
	if err := p.manager.Refresh(ctx); err != nil {
		p.log.Warn().Err(err).Msg("window refresh failed, keeping previous snapshot")
	}
}

func (p *Picker) handleButton(pressed bool) {
	p.needsRedraw = true
	px, py := int(p.pointerX), int(p.pointerY)

	if pressed {
		p.pressed = true
		p.startX, p.startY = px, py
		p.sel.StartSelection(px, py)
		if p.sel.Mode() == selection.ModeComplete {
			p.complete()
		}
		return
	}

	p.pressed = false
	if _, ok := p.sel.Selection(); ok {
		p.complete()
		return
	}
	if snap, ok := p.sel.SnapTarget(); ok {
		p.log.Info().Stringer("rect", snap).Msg("using snap target on click")
		p.sel.StartSelection(snap.X, snap.Y)
		p.sel.UpdateDrag(snap.X, snap.Y, snap.Right(), snap.Bottom())
		p.complete()
	}
}

func (p *Picker) complete() {
	if _, ok := p.sel.Selection(); !ok {
		return
	}
	p.sel.Complete()
	p.done = true
}

func (p *Picker) cancel(reason string) {
	p.log.Debug().Str("reason", reason).Msg("selection cancelled")
	p.cancelled = true
}

// finish hides the overlays so a following screen capture sees the desktop.
func (p *Picker) finish() (geom.Rect, error) {
	rect, _ := p.sel.Selection()
	if err := p.sched.ClearAll(); err != nil {
		p.log.Warn().Err(err).Msg("failed to clear overlays")
	}
	if err := p.source.Roundtrip(); err != nil {
		p.log.Warn().Err(err).Msg("roundtrip failed")
	}
	p.sleep(p.opts.SettleDelay)
	p.log.Info().Stringer("rect", rect).Msg("selection complete")
	return rect, nil
}

// initSnap takes the first window snapshot and snaps to the window nearest
// the cursor. A failed snapshot disables snapping for the session.
func (p *Picker) initSnap(ctx context.Context) {
	if p.manager == nil {
		return
	}
	if p.manager.RefreshedAt().IsZero() {
		if err := p.manager.Refresh(ctx); err != nil {
			p.log.Warn().Err(err).Msg("failed to load windows, snapping disabled")
			p.manager = nil
			return
		}
	}

	x, y := p.cursor(ctx)
	w, _, ok := p.manager.FindNearestWindow(x, y, SnapThreshold)
	if !ok {
		return
	}
	p.log.Info().Stringer("rect", w.Rect).Msg("initial snap target")
	p.animateTo(w.Rect, x, y)
	p.sel.SetSnapTarget(&w.Rect)
}

// cursor asks the window backend first, then the display, then falls back
// to the last seen pointer or a fixed point.
func (p *Picker) cursor(ctx context.Context) (int, int) {
	x, y, err := p.manager.CursorPosition(ctx)
	if err == nil {
		p.log.Info().Int("x", x).Int("y", y).Msg("cursor position from window backend")
		return x, y
	}
	p.log.Warn().Err(err).Msg("failed to get cursor position from window backend")

	if x, y, ok := p.source.PointerPosition(); ok {
		return x, y
	}
	if p.pointerKnown {
		return int(p.pointerX), int(p.pointerY)
	}
	return fallbackCursorX, fallbackCursorY
}

func (p *Picker) updateAnimation() {
	now := p.now()
	dt := now.Sub(p.lastFrame).Seconds()
	p.lastFrame = now

	p.spring.Update(math.Max(dt, 0))
	cur := p.spring.Current()
	p.sel.SetAnimatedSnapTarget(&cur)
	if !p.spring.IsSettled() {
		p.needsRedraw = true
	}
}
