package x11

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/BurntSushi/xgb/randr"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/keybind"
	"github.com/BurntSushi/xgbutil/xcursor"
	"github.com/BurntSushi/xgbutil/xevent"
	"github.com/BurntSushi/xgbutil/xgraphics"
	"github.com/rs/zerolog"

	"github.com/1broseidon/gulp/internal/display"
)

// Backend implements display.Backend on an X server: one overlay per RandR
// monitor, with the pointer and keyboard grabbed for the whole session.
//
// X callbacks run on the xevent goroutine and only translate events into
// display.Event values; all drawing happens on the caller's goroutine.
type Backend struct {
	conn   *Connection
	log    zerolog.Logger
	events chan display.Event

	mu       sync.Mutex
	overlays map[int]*Overlay
	byWindow map[xproto.Window]int

	cursor   xproto.Cursor
	loopDone chan struct{}
	closeMu  sync.Once
}

var _ display.Backend = (*Backend)(nil)

// Open connects to the X server, snapshots the desktop, maps one overlay per
// monitor and grabs input.
func Open(log zerolog.Logger) (*Backend, error) {
	conn, err := NewConnection()
	if err != nil {
		return nil, err
	}

	b := &Backend{
		conn:     conn,
		log:      log,
		events:   make(chan display.Event, 256),
		overlays: map[int]*Overlay{},
		byWindow: map[xproto.Window]int{},
	}

	monitors, err := conn.GetMonitors()
	if err != nil {
		conn.Close()
		return nil, err
	}
	if len(monitors) == 0 {
		conn.Close()
		return nil, fmt.Errorf("no monitors found")
	}

	desktop, err := xgraphics.NewDrawable(conn.XUtil, xproto.Drawable(conn.Root))
	if err != nil {
		log.Warn().Err(err).Msg("failed to snapshot desktop, overlay background will be black")
		desktop = nil
	}

	for _, mon := range monitors {
		if _, err := b.addOverlay(mon, desktop); err != nil {
			b.Close()
			return nil, err
		}
	}
	if desktop != nil {
		desktop.Destroy()
	}

	if err := randr.SelectInputChecked(conn.XUtil.Conn(), conn.Root, randr.NotifyMaskScreenChange).Check(); err != nil {
		log.Warn().Err(err).Msg("failed to watch for monitor changes")
	}
	xevent.HookFun(b.hook).Connect(conn.XUtil)

	for _, o := range b.overlays {
		o.Show()
	}
	if err := b.grabInput(); err != nil {
		b.Close()
		return nil, err
	}

	b.loopDone = make(chan struct{})
	before, after, quit := xevent.MainPing(conn.XUtil)
	go func() {
		defer close(b.loopDone)
		// Callbacks run on the ping loop, so nothing emits after it stops.
		defer close(b.events)
		for {
			select {
			case <-before:
				<-after
			case <-quit:
				return
			}
		}
	}()
	return b, nil
}

func (b *Backend) addOverlay(mon Monitor, desktop *xgraphics.Image) (*Overlay, error) {
	o, err := newOverlay(b.conn, mon, desktop)
	if err != nil {
		return nil, fmt.Errorf("overlay for %s: %w", mon.Name, err)
	}
	b.connectCallbacks(o)

	b.mu.Lock()
	b.overlays[mon.ID] = o
	b.byWindow[o.Window()] = mon.ID
	b.mu.Unlock()

	b.log.Debug().Int("output", mon.ID).Str("name", mon.Name).
		Stringer("bounds", mon.Bounds).Int("refresh_mhz", mon.RefreshMHz).
		Msg("created overlay")
	return o, nil
}

func (b *Backend) removeOverlay(id int) {
	b.mu.Lock()
	o, ok := b.overlays[id]
	if ok {
		delete(b.overlays, id)
		delete(b.byWindow, o.Window())
	}
	b.mu.Unlock()
	if ok {
		o.Destroy()
	}
}

func (b *Backend) outputOf(win xproto.Window) (int, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	id, ok := b.byWindow[win]
	return id, ok
}

func (b *Backend) emit(ev display.Event) {
	select {
	case b.events <- ev:
	default:
		b.log.Warn().Stringer("kind", ev.Kind).Msg("event queue full, dropping event")
	}
}

func (b *Backend) connectCallbacks(o *Overlay) {
	xu := b.conn.XUtil
	win := o.Window()

	xevent.MotionNotifyFun(func(_ *xgbutil.XUtil, ev xevent.MotionNotifyEvent) {
		if id, ok := b.outputOf(ev.Event); ok {
			b.emit(display.Event{Kind: display.EventPointerMotion, Output: id,
				X: float64(ev.EventX), Y: float64(ev.EventY)})
		}
	}).Connect(xu, win)

	xevent.ButtonPressFun(func(_ *xgbutil.XUtil, ev xevent.ButtonPressEvent) {
		b.emitButton(ev.Event, ev.Detail, float64(ev.EventX), float64(ev.EventY), true)
	}).Connect(xu, win)

	xevent.ButtonReleaseFun(func(_ *xgbutil.XUtil, ev xevent.ButtonReleaseEvent) {
		b.emitButton(ev.Event, ev.Detail, float64(ev.EventX), float64(ev.EventY), false)
	}).Connect(xu, win)

	xevent.KeyPressFun(func(xu *xgbutil.XUtil, ev xevent.KeyPressEvent) {
		id, _ := b.outputOf(ev.Event)
		sym := keybind.KeysymGet(xu, ev.Detail, 0)
		b.emit(display.Event{Kind: display.EventKey, Output: id, Key: uint32(sym), Pressed: true})
	}).Connect(xu, win)

	xevent.ExposeFun(func(_ *xgbutil.XUtil, ev xevent.ExposeEvent) {
		if ev.Count != 0 {
			return
		}
		b.mu.Lock()
		o, ok := b.overlays[b.byWindow[ev.Window]]
		b.mu.Unlock()
		if !ok || o.Window() != ev.Window {
			return
		}
		b.emit(display.Event{Kind: display.EventOutputConfigured, Output: o.monitorID,
			Info: display.OutputInfo{ID: o.monitorID, Bounds: o.Bounds()}})
	}).Connect(xu, win)
}

func (b *Backend) emitButton(win xproto.Window, detail xproto.Button, x, y float64, pressed bool) {
	id, ok := b.outputOf(win)
	if !ok {
		return
	}
	code, ok := linuxButton(detail)
	if !ok {
		return
	}
	b.emit(display.Event{Kind: display.EventButton, Output: id, X: x, Y: y,
		Button: code, Pressed: pressed})
}

// linuxButton maps core X button numbers to Linux input codes. Wheel
// buttons are ignored.
func linuxButton(detail xproto.Button) (uint32, bool) {
	switch detail {
	case xproto.ButtonIndex1:
		return display.ButtonLeft, true
	case xproto.ButtonIndex2:
		return 0x112, true
	case xproto.ButtonIndex3:
		return display.ButtonRight, true
	default:
		return 0, false
	}
}

// hook watches for RandR screen changes, which the core callbacks do not see.
func (b *Backend) hook(_ *xgbutil.XUtil, event interface{}) bool {
	if _, ok := event.(randr.ScreenChangeNotifyEvent); ok {
		b.syncMonitors()
	}
	return true
}

// syncMonitors re-enumerates monitors and reports additions and removals.
func (b *Backend) syncMonitors() {
	monitors, err := b.conn.GetMonitors()
	if err != nil {
		b.log.Warn().Err(err).Msg("failed to re-enumerate monitors")
		return
	}

	seen := map[int]bool{}
	for _, mon := range monitors {
		seen[mon.ID] = true
		b.mu.Lock()
		existing, ok := b.overlays[mon.ID]
		b.mu.Unlock()
		if ok && existing.Bounds() == mon.Bounds {
			continue
		}
		if ok {
			b.removeOverlay(mon.ID)
			b.emit(display.Event{Kind: display.EventOutputRemoved, Output: mon.ID})
		}
		o, err := b.addOverlay(mon, nil)
		if err != nil {
			b.log.Warn().Err(err).Msg("failed to create overlay for new monitor")
			continue
		}
		o.Show()
		b.emit(display.Event{Kind: display.EventOutputAdded, Output: mon.ID, Info: monitorInfo(mon)})
	}

	b.mu.Lock()
	var gone []int
	for id := range b.overlays {
		if !seen[id] {
			gone = append(gone, id)
		}
	}
	b.mu.Unlock()
	for _, id := range gone {
		b.removeOverlay(id)
		b.emit(display.Event{Kind: display.EventOutputRemoved, Output: id})
	}
}

func (b *Backend) grabInput() error {
	xu := b.conn.XUtil

	var grabWin xproto.Window
	for _, o := range b.overlays {
		grabWin = o.Window()
		break
	}

	cursor, err := xcursor.CreateCursor(xu, xcursor.Crosshair)
	if err != nil {
		b.log.Warn().Err(err).Msg("failed to create crosshair cursor")
		cursor = 0
	}
	b.cursor = cursor

	reply, err := xproto.GrabPointer(xu.Conn(), true, b.conn.Root,
		xproto.EventMaskButtonPress|xproto.EventMaskButtonRelease|xproto.EventMaskPointerMotion,
		xproto.GrabModeAsync, xproto.GrabModeAsync, xproto.WindowNone, cursor,
		xproto.TimeCurrentTime).Reply()
	if err != nil {
		return fmt.Errorf("failed to grab pointer: %w", err)
	}
	if reply.Status != xproto.GrabStatusSuccess {
		return fmt.Errorf("pointer grab failed with status %d", reply.Status)
	}

	if err := keybind.GrabKeyboard(xu, grabWin); err != nil {
		return err
	}
	xevent.RedirectKeyEvents(xu, grabWin)
	return nil
}

func monitorInfo(mon Monitor) display.OutputInfo {
	return display.OutputInfo{
		ID:         mon.ID,
		Name:       mon.Name,
		Bounds:     mon.Bounds,
		RefreshMHz: mon.RefreshMHz,
	}
}

// Outputs lists the monitors that currently have an overlay.
func (b *Backend) Outputs() ([]display.OutputInfo, error) {
	monitors, err := b.conn.GetMonitors()
	if err != nil {
		return nil, err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	var out []display.OutputInfo
	for _, mon := range monitors {
		if _, ok := b.overlays[mon.ID]; ok {
			out = append(out, monitorInfo(mon))
		}
	}
	return out, nil
}

// Surface returns the overlay of an output.
func (b *Backend) Surface(outputID int) (display.Surface, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	o, ok := b.overlays[outputID]
	if !ok {
		return nil, fmt.Errorf("no overlay for output %d", outputID)
	}
	return o, nil
}

// ErrClosed is returned by Wait once the event loop has stopped.
var ErrClosed = errors.New("display connection closed")

// Wait returns the next event, or ok=false once timeout elapses.
func (b *Backend) Wait(ctx context.Context, timeout time.Duration) (display.Event, bool, error) {
	var expired <-chan time.Time
	if timeout >= 0 {
		timer := time.NewTimer(timeout)
		defer timer.Stop()
		expired = timer.C
	}

	select {
	case ev, ok := <-b.events:
		if !ok {
			return display.Event{}, false, ErrClosed
		}
		return ev, true, nil
	case <-expired:
		return display.Event{}, false, nil
	case <-ctx.Done():
		return display.Event{}, false, ctx.Err()
	}
}

// Roundtrip waits until the server has processed every request.
func (b *Backend) Roundtrip() error {
	b.conn.Sync()
	return nil
}

// PointerPosition queries the pointer in root coordinates.
func (b *Backend) PointerPosition() (int, int, bool) {
	x, y, err := b.conn.PointerPosition()
	if err != nil {
		return 0, 0, false
	}
	return x, y, true
}

// Close releases grabs, destroys overlays and disconnects.
func (b *Backend) Close() error {
	b.closeMu.Do(func() {
		xu := b.conn.XUtil
		xevent.Quit(xu)
		xproto.UngrabPointer(xu.Conn(), xproto.TimeCurrentTime)
		keybind.UngrabKeyboard(xu)
		xevent.RedirectKeyEvents(xu, 0)

		b.mu.Lock()
		ids := make([]int, 0, len(b.overlays))
		for id := range b.overlays {
			ids = append(ids, id)
		}
		b.mu.Unlock()
		for _, id := range ids {
			b.removeOverlay(id)
		}
		if b.cursor != 0 {
			xproto.FreeCursor(xu.Conn(), b.cursor)
		}
		b.conn.Sync()

		// The event loop sees Quit only after its next event (the overlay
		// DestroyNotify), and treats a closed connection as fatal, so the
		// connection is closed only once the loop has stopped.
		if b.loopDone == nil {
			b.conn.Close()
			return
		}
		select {
		case <-b.loopDone:
			b.conn.Close()
		case <-time.After(100 * time.Millisecond):
			b.log.Debug().Msg("event loop still running, leaving X connection open")
		}
	})
	return nil
}
