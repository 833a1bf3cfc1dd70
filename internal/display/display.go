// Package display defines what the picker needs from a windowing system:
// output enumeration, one overlay surface per output, and input delivery.
package display

import (
	"context"
	"image"
	"time"

	"github.com/1broseidon/gulp/internal/geom"
)

// Linux input button codes.
const (
	ButtonLeft  uint32 = 0x110
	ButtonRight uint32 = 0x111
)

// KeyEscape is the Escape keysym.
const KeyEscape uint32 = 0xff1b

// EventKind identifies the payload of an Event.
type EventKind int

const (
	EventNone EventKind = iota
	EventPointerMotion
	EventButton
	EventKey
	EventOutputAdded
	EventOutputRemoved
	EventOutputConfigured
)

// String returns the string representation of the kind
func (k EventKind) String() string {
	switch k {
	case EventPointerMotion:
		return "pointer-motion"
	case EventButton:
		return "button"
	case EventKey:
		return "key"
	case EventOutputAdded:
		return "output-added"
	case EventOutputRemoved:
		return "output-removed"
	case EventOutputConfigured:
		return "output-configured"
	default:
		return "none"
	}
}

// Event is one input or output-lifecycle notification. Pointer coordinates
// are local to the surface of Output.
type Event struct {
	Kind    EventKind
	Output  int
	X       float64
	Y       float64
	Button  uint32
	Pressed bool
	Key     uint32
	Info    OutputInfo
}

// OutputInfo describes a monitor in the global coordinate space.
type OutputInfo struct {
	ID         int
	Name       string
	Bounds     geom.Rect
	RefreshMHz int
}

// Surface is the overlay drawn on top of one output.
type Surface interface {
	// Attach submits a full frame. The image covers the whole output.
	Attach(img *image.RGBA) error
	// Clear hides the overlay so the desktop underneath is visible.
	Clear() error
}

// Backend is a connected windowing system.
type Backend interface {
	Outputs() ([]OutputInfo, error)
	Surface(outputID int) (Surface, error)
	// Wait blocks until an event arrives, the timeout elapses or ctx is
	// done. A negative timeout waits without limit. ok is false on timeout.
	Wait(ctx context.Context, timeout time.Duration) (ev Event, ok bool, err error)
	// Roundtrip flushes pending requests and waits for the server.
	Roundtrip() error
	// PointerPosition returns the global pointer position if known.
	PointerPosition() (x, y int, ok bool)
	Close() error
}
