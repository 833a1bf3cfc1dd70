// Package windows finds the window rectangles the picker can snap to.
//
// A Backend talks to the window manager; the Manager caches one snapshot of
// its answers and runs the geometric queries against it.
package windows

import (
	"context"
	"errors"
	"fmt"

	"github.com/1broseidon/gulp/internal/geom"
)

// ErrBackendUnavailable is returned by backends that cannot answer queries.
var ErrBackendUnavailable = errors.New("window backend unavailable")

// WindowInfo is one top-level window as reported by the backend.
type WindowInfo struct {
	Rect        geom.Rect
	MonitorID   int
	WorkspaceID int
	Mapped      bool
	Hidden      bool
	Fullscreen  bool
	Title       string
}

// IsSnappable reports whether the window may be offered as a snap target.
// Fullscreen windows are eligible.
func (w WindowInfo) IsSnappable() bool {
	return w.Mapped && !w.Hidden
}

func (w WindowInfo) String() string {
	return fmt.Sprintf("monitor %d workspace %d at (%d, %d) size %dx%d",
		w.MonitorID, w.WorkspaceID, w.Rect.X, w.Rect.Y, w.Rect.Width, w.Rect.Height)
}

// Backend queries a window manager.
type Backend interface {
	// Name identifies the backend in logs.
	Name() string
	FetchWindows(ctx context.Context) ([]WindowInfo, error)
	CursorPosition(ctx context.Context) (x, y int, err error)
	// ActiveWorkspaces maps monitor id to the workspace shown on it.
	ActiveWorkspaces(ctx context.Context) (map[int]int, error)
}

// NullBackend reports no windows. It is used when no window manager could
// be detected, which disables snapping.
type NullBackend struct{}

func (NullBackend) Name() string { return "none" }

func (NullBackend) FetchWindows(context.Context) ([]WindowInfo, error) { return nil, nil }

func (NullBackend) CursorPosition(context.Context) (int, int, error) {
	return 0, 0, ErrBackendUnavailable
}

func (NullBackend) ActiveWorkspaces(context.Context) (map[int]int, error) {
	return map[int]int{}, nil
}
