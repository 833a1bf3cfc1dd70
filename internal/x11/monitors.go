package x11

import (
	"fmt"

	"github.com/BurntSushi/xgb/randr"
	"github.com/BurntSushi/xgb/xproto"

	"github.com/1broseidon/gulp/internal/geom"
)

// Monitor represents a physical display
type Monitor struct {
	ID         int
	Name       string
	Bounds     geom.Rect
	RefreshMHz int // 0 when the mode timings are unknown
}

// GetMonitors retrieves all active monitors using XRandR
func (c *Connection) GetMonitors() ([]Monitor, error) {
	resources, err := randr.GetScreenResources(c.XUtil.Conn(), c.Root).Reply()
	if err != nil {
		return nil, fmt.Errorf("failed to get screen resources: %w", err)
	}

	modes := make(map[uint32]randr.ModeInfo, len(resources.Modes))
	for _, m := range resources.Modes {
		modes[m.Id] = m
	}

	var monitors []Monitor

	// Query each CRTC for active monitors
	for i, crtc := range resources.Crtcs {
		crtcInfo, err := randr.GetCrtcInfo(c.XUtil.Conn(), crtc, resources.ConfigTimestamp).Reply()
		if err != nil {
			continue
		}

		// Skip disabled CRTCs
		if crtcInfo.Width == 0 || crtcInfo.Height == 0 || len(crtcInfo.Outputs) == 0 {
			continue
		}

		outputName := fmt.Sprintf("Monitor%d", i)
		outputInfo, err := randr.GetOutputInfo(c.XUtil.Conn(), crtcInfo.Outputs[0], resources.ConfigTimestamp).Reply()
		if err == nil {
			outputName = string(outputInfo.Name)
		}

		refresh := 0
		if mode, ok := modes[uint32(crtcInfo.Mode)]; ok {
			refresh = RefreshMHz(mode)
		}

		monitors = append(monitors, Monitor{
			ID:   i,
			Name: outputName,
			Bounds: geom.Rect{
				X:      int(crtcInfo.X),
				Y:      int(crtcInfo.Y),
				Width:  int(crtcInfo.Width),
				Height: int(crtcInfo.Height),
			},
			RefreshMHz: refresh,
		})
	}

	return monitors, nil
}

// RefreshMHz derives the refresh rate of a mode in millihertz.
func RefreshMHz(mode randr.ModeInfo) int {
	total := uint64(mode.Htotal) * uint64(mode.Vtotal)
	if total == 0 || mode.DotClock == 0 {
		return 0
	}
	return int(uint64(mode.DotClock) * 1000 / total)
}

// PointerPosition returns the pointer position relative to the root window.
func (c *Connection) PointerPosition() (int, int, error) {
	pointer, err := xproto.QueryPointer(c.XUtil.Conn(), c.Root).Reply()
	if err != nil {
		return 0, 0, fmt.Errorf("failed to query pointer: %w", err)
	}
	return int(pointer.RootX), int(pointer.RootY), nil
}

// MonitorAt returns the monitor containing (x, y).
func MonitorAt(monitors []Monitor, x, y int) (Monitor, bool) {
	for _, mon := range monitors {
		if mon.Bounds.Contains(x, y) {
			return mon, true
		}
	}
	return Monitor{}, false
}
