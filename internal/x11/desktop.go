package x11

import (
	"fmt"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/ewmh"
	"github.com/BurntSushi/xgbutil/icccm"
	"github.com/BurntSushi/xgbutil/xwindow"

	"github.com/1broseidon/gulp/internal/geom"
)

// StickyDesktop is the _NET_WM_DESKTOP value of windows shown on every desktop.
const StickyDesktop = -1

// ClientWindow is a managed top-level window from the EWMH client list.
type ClientWindow struct {
	ID         xproto.Window
	Title      string
	Bounds     geom.Rect // including decorations
	Desktop    int
	Mapped     bool
	Hidden     bool
	Fullscreen bool
}

// GetCurrentDesktop returns the current virtual desktop number (0-indexed).
// Uses _NET_CURRENT_DESKTOP atom. Returns 0 with an error if detection fails.
func (c *Connection) GetCurrentDesktop() (int, error) {
	desktop, err := ewmh.CurrentDesktopGet(c.XUtil)
	if err != nil {
		return 0, fmt.Errorf("failed to get current desktop: %w", err)
	}
	return int(desktop), nil
}

// GetWindowDesktop returns the desktop number a window is on.
// Uses _NET_WM_DESKTOP atom. Returns StickyDesktop for windows visible on all desktops.
func (c *Connection) GetWindowDesktop(windowID xproto.Window) (int, error) {
	desktop, err := ewmh.WmDesktopGet(c.XUtil, windowID)
	if err != nil {
		return 0, fmt.Errorf("failed to get window desktop: %w", err)
	}
	// 0xFFFFFFFF means the window is on all desktops (sticky)
	if desktop == 0xFFFFFFFF {
		return StickyDesktop, nil
	}
	return int(desktop), nil
}

// ClientWindows lists the normal windows of the EWMH client list in stacking
// order, bottom first.
func (c *Connection) ClientWindows() ([]ClientWindow, error) {
	clients, err := ewmh.ClientListStackingGet(c.XUtil)
	if err != nil || len(clients) == 0 {
		clients, err = ewmh.ClientListGet(c.XUtil)
		if err != nil {
			return nil, fmt.Errorf("failed to get client list: %w", err)
		}
	}

	out := make([]ClientWindow, 0, len(clients))
	for _, win := range clients {
		if !c.IsNormalWindow(win) {
			continue
		}

		bounds, err := xwindow.New(c.XUtil, win).DecorGeometry()
		if err != nil {
			continue
		}

		cw := ClientWindow{
			ID: win,
			Bounds: geom.Rect{
				X:      bounds.X(),
				Y:      bounds.Y(),
				Width:  bounds.Width(),
				Height: bounds.Height(),
			},
			Mapped: true,
		}

		if desk, err := c.GetWindowDesktop(win); err == nil {
			cw.Desktop = desk
		}

		if attrs, err := xproto.GetWindowAttributes(c.XUtil.Conn(), win).Reply(); err == nil {
			cw.Mapped = attrs.MapState == xproto.MapStateViewable
		}
		if state, err := icccm.WmStateGet(c.XUtil, win); err == nil && state.State == icccm.StateIconic {
			cw.Hidden = true
		}
		if states, err := ewmh.WmStateGet(c.XUtil, win); err == nil {
			for _, s := range states {
				switch s {
				case "_NET_WM_STATE_HIDDEN":
					cw.Hidden = true
				case "_NET_WM_STATE_FULLSCREEN":
					cw.Fullscreen = true
				}
			}
		}

		if name, err := ewmh.WmNameGet(c.XUtil, win); err == nil && name != "" {
			cw.Title = name
		} else if name, err := icccm.WmNameGet(c.XUtil, win); err == nil {
			cw.Title = name
		}

		out = append(out, cw)
	}
	return out, nil
}

// IsNormalWindow checks if a window is a normal application window
func (c *Connection) IsNormalWindow(windowID xproto.Window) bool {
	types, err := ewmh.WmWindowTypeGet(c.XUtil, windowID)
	if err != nil {
		// If we can't determine type, assume it's normal
		return true
	}

	for _, t := range types {
		if t == "_NET_WM_WINDOW_TYPE_NORMAL" || t == "_NET_WM_WINDOW_TYPE_DIALOG" {
			return true
		}
		// Reject desktop, dock, splash, etc.
		if t == "_NET_WM_WINDOW_TYPE_DESKTOP" ||
			t == "_NET_WM_WINDOW_TYPE_DOCK" ||
			t == "_NET_WM_WINDOW_TYPE_SPLASH" ||
			t == "_NET_WM_WINDOW_TYPE_NOTIFICATION" {
			return false
		}
	}

	// If no specific type is set, assume it's normal
	return len(types) == 0
}
