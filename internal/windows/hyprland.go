package windows

import (
	"context"
	"fmt"
	"os"
	"reflect"
	"time"

	"github.com/thiagokokada/hyprland-go"

	"github.com/1broseidon/gulp/internal/geom"
	"github.com/1broseidon/gulp/internal/runtimepath"
)

// DefaultIPCTimeout bounds a single Hyprland socket request.
const DefaultIPCTimeout = 500 * time.Millisecond

// HyprlandAvailable reports whether a Hyprland instance is advertised in the
// environment.
func HyprlandAvailable() bool {
	return os.Getenv("HYPRLAND_INSTANCE_SIGNATURE") != ""
}

// HyprlandBackend queries Hyprland through its request socket.
type HyprlandBackend struct {
	client  *hyprland.RequestClient
	timeout time.Duration
}

// NewHyprlandBackend connects to the instance named by
// HYPRLAND_INSTANCE_SIGNATURE.
func NewHyprlandBackend(timeout time.Duration) (b *HyprlandBackend, err error) {
	path, err := runtimepath.HyprlandSocketPath()
	if err != nil {
		return nil, err
	}
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("hyprland socket %s: %w", path, err)
	}

	// MustClient panics when the socket cannot be resolved.
	defer func() {
		if r := recover(); r != nil {
			b, err = nil, fmt.Errorf("connect to hyprland: %v", r)
		}
	}()
	if timeout <= 0 {
		timeout = DefaultIPCTimeout
	}
	return &HyprlandBackend{client: hyprland.MustClient(), timeout: timeout}, nil
}

func (h *HyprlandBackend) Name() string { return "hyprland" }

// bounded runs one request and gives up once the IPC timeout or ctx expires.
// The client has no cancellation of its own, so an abandoned request finishes
// in the background and its reply is dropped.
func bounded[T any](ctx context.Context, timeout time.Duration, what string, call func() (T, error)) (T, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	type result struct {
		v   T
		err error
	}
	done := make(chan result, 1)
	go func() {
		v, err := call()
		done <- result{v, err}
	}()

	var zero T
	select {
	case r := <-done:
		if r.err != nil {
			return zero, fmt.Errorf("hyprland %s: %w", what, r.err)
		}
		return r.v, nil
	case <-ctx.Done():
		return zero, fmt.Errorf("hyprland %s: %w", what, ctx.Err())
	}
}

// FetchWindows lists all clients.
func (h *HyprlandBackend) FetchWindows(ctx context.Context) ([]WindowInfo, error) {
	clients, err := bounded(ctx, h.timeout, "clients", h.client.Clients)
	if err != nil {
		return nil, err
	}

	out := make([]WindowInfo, 0, len(clients))
	for _, c := range clients {
		if len(c.At) < 2 || len(c.Size) < 2 {
			continue
		}
		title := c.Title
		if title == "" {
			title = c.Class
		}
		out = append(out, WindowInfo{
			Rect:        geom.Rect{X: c.At[0], Y: c.At[1], Width: c.Size[0], Height: c.Size[1]},
			MonitorID:   c.Monitor,
			WorkspaceID: c.Workspace.Id,
			Mapped:      c.Mapped,
			Hidden:      c.Hidden,
			Fullscreen:  isSet(c.Fullscreen),
			Title:       title,
		})
	}
	return out, nil
}

// CursorPosition returns the global pointer position.
func (h *HyprlandBackend) CursorPosition(ctx context.Context) (int, int, error) {
	pos, err := bounded(ctx, h.timeout, "cursorpos", h.client.CursorPos)
	if err != nil {
		return 0, 0, err
	}
	return pos.X, pos.Y, nil
}

// ActiveWorkspaces maps each monitor to the workspace it shows.
func (h *HyprlandBackend) ActiveWorkspaces(ctx context.Context) (map[int]int, error) {
	monitors, err := bounded(ctx, h.timeout, "monitors", h.client.Monitors)
	if err != nil {
		return nil, err
	}
	active := make(map[int]int, len(monitors))
	for _, m := range monitors {
		active[m.Id] = m.ActiveWorkspace.Id
	}
	return active, nil
}

// isSet reports whether a fullscreen field is on. Hyprland reported it as a
// bool before switching to a fullscreen mode number.
func isSet(v any) bool {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Bool:
		return rv.Bool()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int() != 0
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return rv.Uint() != 0
	default:
		return false
	}
}
