package windows

import (
	"context"
	"fmt"

	"github.com/1broseidon/gulp/internal/x11"
)

// X11Backend reads the EWMH client list. X desktops span every monitor, so
// each monitor reports the current desktop as its active workspace and
// sticky windows are placed on it.
type X11Backend struct {
	conn *x11.Connection
}

// NewX11Backend opens a dedicated connection for window queries.
func NewX11Backend() (*X11Backend, error) {
	conn, err := x11.NewConnection()
	if err != nil {
		return nil, err
	}
	return &X11Backend{conn: conn}, nil
}

func (b *X11Backend) Name() string { return "x11" }

func (b *X11Backend) FetchWindows(ctx context.Context) ([]WindowInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	monitors, err := b.conn.GetMonitors()
	if err != nil {
		return nil, err
	}
	clients, err := b.conn.ClientWindows()
	if err != nil {
		return nil, err
	}
	current, err := b.conn.GetCurrentDesktop()
	if err != nil {
		current = 0
	}

	out := make([]WindowInfo, 0, len(clients))
	for _, c := range clients {
		cx := c.Bounds.X + c.Bounds.Width/2
		cy := c.Bounds.Y + c.Bounds.Height/2
		mon, ok := x11.MonitorAt(monitors, cx, cy)
		if !ok {
			continue
		}

		desk := c.Desktop
		if desk == x11.StickyDesktop {
			desk = current
		}
		out = append(out, WindowInfo{
			Rect:        c.Bounds,
			MonitorID:   mon.ID,
			WorkspaceID: desk,
			Mapped:      c.Mapped,
			Hidden:      c.Hidden,
			Fullscreen:  c.Fullscreen,
			Title:       c.Title,
		})
	}
	return out, nil
}

func (b *X11Backend) CursorPosition(ctx context.Context) (int, int, error) {
	if err := ctx.Err(); err != nil {
		return 0, 0, err
	}
	return b.conn.PointerPosition()
}

func (b *X11Backend) ActiveWorkspaces(ctx context.Context) (map[int]int, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	current, err := b.conn.GetCurrentDesktop()
	if err != nil {
		return nil, err
	}
	monitors, err := b.conn.GetMonitors()
	if err != nil {
		return nil, fmt.Errorf("failed to list monitors: %w", err)
	}

	active := make(map[int]int, len(monitors))
	for _, m := range monitors {
		active[m.ID] = current
	}
	return active, nil
}

// Close disconnects from the X server.
func (b *X11Backend) Close() error {
	b.conn.Close()
	return nil
}
