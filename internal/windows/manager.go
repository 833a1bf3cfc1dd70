package windows

import (
	"context"
	"fmt"
	"io"
	"math"
	"time"

	"github.com/rs/zerolog"

	"github.com/1broseidon/gulp/internal/geom"
)

// DefaultSnapThreshold is how far, in pixels, the pointer may be from a window
// for it to become the snap target.
const DefaultSnapThreshold = 50

// Manager caches the most recent window snapshot of a Backend. It is not safe
// for concurrent use.
type Manager struct {
	backend Backend
	log     zerolog.Logger
	now     func() time.Time

	windows          []WindowInfo
	activeWorkspaces map[int]int
	refreshedAt      time.Time
}

// NewManager creates a manager with an empty cache. Call Refresh to populate it.
func NewManager(backend Backend, log zerolog.Logger) *Manager {
	return &Manager{
		backend:          backend,
		log:              log,
		now:              time.Now,
		activeWorkspaces: map[int]int{},
	}
}

// Close releases the backend's connection if it holds one.
func (m *Manager) Close() error {
	if c, ok := m.backend.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// Backend returns the backend the manager queries.
func (m *Manager) Backend() Backend { return m.backend }

// RefreshedAt returns the time of the last successful refresh.
func (m *Manager) RefreshedAt() time.Time { return m.refreshedAt }

// Refresh fetches a new snapshot. On a window query failure the previous
// snapshot is kept and the error returned. A workspace query failure is
// logged and treated as "no active workspace known".
func (m *Manager) Refresh(ctx context.Context) error {
	wins, err := m.backend.FetchWindows(ctx)
	if err != nil {
		return fmt.Errorf("fetch windows from %s: %w", m.backend.Name(), err)
	}

	active, err := m.backend.ActiveWorkspaces(ctx)
	if err != nil {
		m.log.Warn().Err(err).Msg("failed to query active workspaces")
		active = map[int]int{}
	}
	if active == nil {
		active = map[int]int{}
	}

	m.windows = wins
	m.activeWorkspaces = active
	m.refreshedAt = m.now()

	snappable := m.SnappableWindows()
	m.log.Info().
		Int("windows", len(wins)).
		Int("snappable", len(snappable)).
		Interface("active_workspaces", active).
		Msg("refreshed window snapshot")
	for i, w := range snappable {
		m.log.Debug().Int("index", i).Stringer("window", w).Msg("snappable window")
	}
	return nil
}

// CursorPosition asks the backend for the global pointer position.
func (m *Manager) CursorPosition(ctx context.Context) (int, int, error) {
	return m.backend.CursorPosition(ctx)
}

// Windows returns the cached snapshot.
func (m *Manager) Windows() []WindowInfo { return m.windows }

// ActiveWorkspaces returns the cached monitor -> workspace map.
func (m *Manager) ActiveWorkspaces() map[int]int { return m.activeWorkspaces }

// SnappableWindows returns the cached windows that are snappable and sit on
// the active workspace of their monitor, in backend order.
func (m *Manager) SnappableWindows() []WindowInfo {
	var out []WindowInfo
	for _, w := range m.windows {
		if !w.IsSnappable() {
			continue
		}
		ws, ok := m.activeWorkspaces[w.MonitorID]
		if !ok || ws != w.WorkspaceID {
			continue
		}
		out = append(out, w)
	}
	return out
}

// FindWindowAtPoint returns the snappable window containing (x, y). When
// several overlap, the smallest one wins, then the earliest in backend order.
func (m *Manager) FindWindowAtPoint(x, y int) (WindowInfo, bool) {
	var (
		best  WindowInfo
		found bool
	)
	for _, w := range m.SnappableWindows() {
		if !w.Rect.Contains(x, y) {
			continue
		}
		if !found || w.Rect.Area() < best.Rect.Area() {
			best, found = w, true
		}
	}
	return best, found
}

// FindNearestWindow returns the snappable window closest to (x, y) and its
// distance, provided that distance is at most threshold. A containing window
// always wins with distance 0. Ties prefer the smaller window, then backend
// order.
func (m *Manager) FindNearestWindow(x, y, threshold int) (WindowInfo, int, bool) {
	if w, ok := m.FindWindowAtPoint(x, y); ok {
		return w, 0, true
	}

	var (
		best     WindowInfo
		bestDist int
		found    bool
	)
	for _, w := range m.SnappableWindows() {
		d := DistanceToRect(x, y, w.Rect)
		if d > threshold {
			continue
		}
		if !found || d < bestDist || (d == bestDist && w.Rect.Area() < best.Rect.Area()) {
			best, bestDist, found = w, d, true
		}
	}
	return best, bestDist, found
}

// DistanceToRect returns the Euclidean distance from (x, y) to the nearest
// point of r, truncated to an integer. Points on the right or bottom edge
// count as distance 0.
func DistanceToRect(x, y int, r geom.Rect) int {
	var dx, dy int
	switch {
	case x < r.X:
		dx = r.X - x
	case x > r.X+r.Width:
		dx = x - (r.X + r.Width)
	}
	switch {
	case y < r.Y:
		dy = r.Y - y
	case y > r.Y+r.Height:
		dy = y - (r.Y + r.Height)
	}
	return int(math.Sqrt(float64(dx*dx + dy*dy)))
}
