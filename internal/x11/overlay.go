package x11

import (
	"fmt"
	"image"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/xgraphics"
	"github.com/BurntSushi/xgbutil/xwindow"

	"github.com/1broseidon/gulp/internal/geom"
)

const overlayEventMask = xproto.EventMaskKeyPress |
	xproto.EventMaskButtonPress |
	xproto.EventMaskButtonRelease |
	xproto.EventMaskPointerMotion |
	xproto.EventMaskExposure |
	xproto.EventMaskStructureNotify

// Overlay is a full-monitor override-redirect window. Frames are composited
// over a snapshot of the desktop taken before the overlay was mapped, so the
// dimming looks translucent without a compositing manager.
type Overlay struct {
	conn       *Connection
	monitorID  int
	bounds     geom.Rect
	win        *xwindow.Window
	frame      *xgraphics.Image
	background []uint8 // BGRA, nil means black
	mapped     bool
}

// newOverlay creates (but does not map) the overlay for mon. desktop may be
// nil when no snapshot could be taken.
func newOverlay(c *Connection, mon Monitor, desktop *xgraphics.Image) (*Overlay, error) {
	win, err := xwindow.Generate(c.XUtil)
	if err != nil {
		return nil, fmt.Errorf("failed to allocate overlay window: %w", err)
	}

	w, h := max(mon.Bounds.Width, 1), max(mon.Bounds.Height, 1)

	// Value list order follows the bit positions of the mask (low -> high):
	// back_pixel, override_redirect, event_mask.
	err = win.CreateChecked(c.Root, mon.Bounds.X, mon.Bounds.Y, w, h,
		xproto.CwBackPixel|xproto.CwOverrideRedirect|xproto.CwEventMask,
		0, 1, uint32(overlayEventMask))
	if err != nil {
		return nil, fmt.Errorf("failed to create overlay window: %w", err)
	}

	o := &Overlay{
		conn:      c,
		monitorID: mon.ID,
		bounds:    mon.Bounds,
		win:       win,
		frame:     xgraphics.New(c.XUtil, image.Rect(0, 0, w, h)),
	}
	if desktop != nil {
		o.background = cropBGRA(desktop.Pix, desktop.Stride, desktop.Rect,
			image.Rect(mon.Bounds.X, mon.Bounds.Y, mon.Bounds.X+w, mon.Bounds.Y+h))
	}

	if err := o.frame.XSurfaceSet(win.Id); err != nil {
		win.Destroy()
		return nil, fmt.Errorf("failed to attach overlay pixmap: %w", err)
	}
	copy(o.frame.Pix, o.background)
	o.frame.XDraw()
	return o, nil
}

// Window returns the X window id.
func (o *Overlay) Window() xproto.Window { return o.win.Id }

// Bounds returns the global geometry of the overlay.
func (o *Overlay) Bounds() geom.Rect { return o.bounds }

// Show maps the overlay above every other window.
func (o *Overlay) Show() {
	if o.mapped {
		return
	}
	o.win.Map()
	o.win.Stack(xproto.StackModeAbove)
	o.mapped = true
}

// Attach composites img over the desktop snapshot and paints it.
func (o *Overlay) Attach(img *image.RGBA) error {
	b := o.frame.Bounds()
	if img.Bounds().Dx() != b.Dx() || img.Bounds().Dy() != b.Dy() {
		return fmt.Errorf("frame is %dx%d, overlay is %dx%d",
			img.Bounds().Dx(), img.Bounds().Dy(), b.Dx(), b.Dy())
	}

	compositeOver(o.frame.Pix, o.background, img)
	if err := o.frame.XDrawChecked(); err != nil {
		return fmt.Errorf("failed to upload overlay frame: %w", err)
	}
	o.frame.XPaint(o.win.Id)
	o.Show()
	return nil
}

// Clear unmaps the overlay.
func (o *Overlay) Clear() error {
	if !o.mapped {
		return nil
	}
	o.win.Unmap()
	o.mapped = false
	return nil
}

// Destroy frees the window and its pixmap.
func (o *Overlay) Destroy() {
	o.frame.Destroy()
	o.win.Destroy()
}

// compositeOver writes src (premultiplied RGBA) over bg into dst. dst and bg
// are tightly packed BGRA buffers of the same size as src.
func compositeOver(dst, bg []uint8, src *image.RGBA) {
	w, h := src.Rect.Dx(), src.Rect.Dy()
	for y := 0; y < h; y++ {
		srow := src.Pix[y*src.Stride : y*src.Stride+w*4]
		drow := dst[y*w*4 : (y+1)*w*4]
		for x := 0; x < w; x++ {
			i := x * 4
			r, g, b, a := uint32(srow[i]), uint32(srow[i+1]), uint32(srow[i+2]), uint32(srow[i+3])
			inv := 255 - a

			var bb, bgc, br uint32
			if bg != nil {
				off := y*w*4 + i
				bb, bgc, br = uint32(bg[off]), uint32(bg[off+1]), uint32(bg[off+2])
			}

			drow[i] = uint8(b + bb*inv/255)
			drow[i+1] = uint8(g + bgc*inv/255)
			drow[i+2] = uint8(r + br*inv/255)
			drow[i+3] = 0xff
		}
	}
}

// cropBGRA copies the part of a BGRA buffer covered by r into a new tightly
// packed buffer. Areas of r outside srcRect stay black.
func cropBGRA(src []uint8, srcStride int, srcRect, r image.Rectangle) []uint8 {
	w, h := r.Dx(), r.Dy()
	out := make([]uint8, w*h*4)
	clip := r.Intersect(srcRect)
	if clip.Empty() {
		return out
	}
	for y := clip.Min.Y; y < clip.Max.Y; y++ {
		so := (y-srcRect.Min.Y)*srcStride + (clip.Min.X-srcRect.Min.X)*4
		do := (y-r.Min.Y)*w*4 + (clip.Min.X-r.Min.X)*4
		copy(out[do:do+clip.Dx()*4], src[so:so+clip.Dx()*4])
	}
	return out
}
