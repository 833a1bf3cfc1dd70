// Package render draws the picker overlay: a dimmed output with the selection
// (or hovered snap target) cut out, a border around it and a size label.
package render

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"math"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"

	"github.com/1broseidon/gulp/internal/geom"
	"github.com/1broseidon/gulp/internal/selection"
)

// Size labels are only drawn on rectangles larger than this.
const (
	minLabelWidth  = 80
	minLabelHeight = 40
)

// Options control the overlay appearance.
type Options struct {
	BorderColor     Color
	BorderThickness int
	BorderRounding  int
	DimOpacity      float64
	FontFamily      string
	FontSize        float64
	FontWeight      string
}

// Renderer produces overlay frames. Frames are reused between calls of the
// same size, so a frame is only valid until the next Render.
type Renderer struct {
	opts   Options
	dim    color.RGBA
	border color.RGBA
	face   font.Face
	log    zerolog.Logger

	frames map[image.Point]*image.RGBA
}

// New builds a renderer and loads its label font.
func New(opts Options, log zerolog.Logger) (*Renderer, error) {
	if opts.DimOpacity < 0 || opts.DimOpacity > 1 {
		return nil, fmt.Errorf("dim opacity %.2f outside [0,1]", opts.DimOpacity)
	}
	face, err := loadFace(opts.FontFamily, opts.FontSize, opts.FontWeight, log)
	if err != nil {
		return nil, err
	}
	a := uint8(math.Round(opts.DimOpacity * 255))
	return &Renderer{
		opts:   opts,
		dim:    color.RGBA{A: a},
		border: opts.BorderColor.RGBA(),
		face:   face,
		log:    log,
		frames: map[image.Point]*image.RGBA{},
	}, nil
}

// findFont resolves a family name and weight to a font file.
var findFont = fcMatch

// fcMatch asks fontconfig for the best file matching family and weight.
// fontconfig always answers with some font, substituting when the family is
// not installed.
func fcMatch(family, weight string) (string, error) {
	pattern := family + ":weight=" + strings.ToLower(weight)
	out, err := exec.Command("fc-match", "--format=%{file}", pattern).Output()
	if err != nil {
		return "", fmt.Errorf("fc-match %q: %w", pattern, err)
	}
	path := strings.TrimSpace(string(out))
	if path == "" {
		return "", fmt.Errorf("fc-match %q: no font file", pattern)
	}
	return path, nil
}

// loadFace resolves the label font. A family naming a font file is loaded
// from disk, any other family through fontconfig. The bundled Go fonts are
// used when neither yields a parsable font.
func loadFace(family string, size float64, weight string, log zerolog.Logger) (font.Face, error) {
	if size <= 0 {
		return basicfont.Face7x13, nil
	}

	builtin := gobold.TTF
	if strings.EqualFold(weight, "Normal") {
		builtin = goregular.TTF
	}

	path := family
	switch strings.ToLower(filepath.Ext(family)) {
	case ".ttf", ".otf":
	default:
		path = ""
		if family != "" {
			p, err := findFont(family, weight)
			if err != nil {
				log.Warn().Err(err).Str("family", family).Msg("font lookup failed, using built-in font")
			}
			path = p
		}
	}

	f := parseFontFile(path, log)
	if f == nil {
		var err error
		if f, err = opentype.Parse(builtin); err != nil {
			return nil, fmt.Errorf("parse font: %w", err)
		}
	}
	face, err := opentype.NewFace(f, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, fmt.Errorf("create font face: %w", err)
	}
	return face, nil
}

// parseFontFile loads path, returning nil when it is empty or unusable.
func parseFontFile(path string, log zerolog.Logger) *opentype.Font {
	if path == "" {
		return nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		log.Warn().Err(err).Str("path", path).Msg("font file unreadable, using built-in font")
		return nil
	}
	f, err := opentype.Parse(data)
	if err != nil {
		log.Warn().Err(err).Str("path", path).Msg("font file not usable, using built-in font")
		return nil
	}
	log.Debug().Str("path", path).Msg("loaded label font")
	return f
}

// Render draws view onto a width x height frame. A rectangle with area takes
// precedence; otherwise the snap target (animated first) is previewed.
func (r *Renderer) Render(view *selection.Selection, width, height int) (*image.RGBA, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("invalid frame size %dx%d", width, height)
	}
	img := r.frame(width, height)
	draw.Draw(img, img.Bounds(), image.NewUniform(r.dim), image.Point{}, draw.Src)

	target, ok := view.Selection()
	source := "selection"
	if !ok {
		target, ok = view.CurrentSnapTarget()
		source = "snap"
	}
	if !ok || !target.IsValid() {
		return img, nil
	}
	r.log.Debug().Str("source", source).Stringer("rect", target).
		Int("width", width).Int("height", height).Msg("render")

	radius := r.radius(target)
	r.punch(img, target, radius)
	r.stroke(img, target, radius)
	if target.Width > minLabelWidth && target.Height > minLabelHeight {
		r.label(img, target)
	}
	return img, nil
}

func (r *Renderer) frame(width, height int) *image.RGBA {
	key := image.Pt(width, height)
	if img, ok := r.frames[key]; ok {
		return img
	}
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	r.frames[key] = img
	return img
}

func (r *Renderer) radius(rect geom.Rect) float64 {
	radius := float64(r.opts.BorderRounding)
	return math.Max(0, math.Min(radius, math.Min(float64(rect.Width), float64(rect.Height))/2))
}

// punch clears the dim layer inside rect, restoring it outside the rounded
// corners.
func (r *Renderer) punch(img *image.RGBA, rect geom.Rect, radius float64) {
	hole := rect.Image().Intersect(img.Bounds())
	if hole.Empty() {
		return
	}
	draw.Draw(img, hole, image.Transparent, image.Point{}, draw.Src)
	if radius <= 0 {
		return
	}

	rad := int(math.Ceil(radius))
	corners := []image.Rectangle{
		image.Rect(rect.X, rect.Y, rect.X+rad, rect.Y+rad),
		image.Rect(rect.Right()-rad, rect.Y, rect.Right(), rect.Y+rad),
		image.Rect(rect.X, rect.Bottom()-rad, rect.X+rad, rect.Bottom()),
		image.Rect(rect.Right()-rad, rect.Bottom()-rad, rect.Right(), rect.Bottom()),
	}
	for _, c := range corners {
		c = c.Intersect(hole)
		for y := c.Min.Y; y < c.Max.Y; y++ {
			for x := c.Min.X; x < c.Max.X; x++ {
				d := roundRectDistance(float64(x)+0.5, float64(y)+0.5, rect, radius)
				cov := clamp01(0.5 + d)
				if cov > 0 {
					img.SetRGBA(x, y, scale(r.dim, cov))
				}
			}
		}
	}
}

// stroke draws the border centred on the rectangle outline, like a vector
// stroke of the given thickness.
func (r *Renderer) stroke(img *image.RGBA, rect geom.Rect, radius float64) {
	half := float64(r.opts.BorderThickness) / 2
	if half <= 0 {
		return
	}
	pad := int(math.Ceil(half)) + 1
	outer := image.Rect(rect.X-pad, rect.Y-pad, rect.Right()+pad, rect.Bottom()+pad).Intersect(img.Bounds())
	// Pixels deeper than this inside the rectangle are never touched.
	skip := pad + int(math.Ceil(radius))

	for y := outer.Min.Y; y < outer.Max.Y; y++ {
		innerRow := y >= rect.Y+skip && y < rect.Bottom()-skip
		for x := outer.Min.X; x < outer.Max.X; x++ {
			if innerRow && x >= rect.X+skip && x < rect.Right()-skip {
				x = rect.Right() - skip - 1
				continue
			}
			d := roundRectDistance(float64(x)+0.5, float64(y)+0.5, rect, radius)
			cov := clamp01(half + 0.5 - math.Abs(d))
			if cov <= 0 {
				continue
			}
			img.SetRGBA(x, y, over(r.border, img.RGBAAt(x, y), cov))
		}
	}
}

func (r *Renderer) label(img *image.RGBA, rect geom.Rect) {
	text := fmt.Sprintf("%d×%d", rect.Width, rect.Height)
	d := &font.Drawer{
		Dst:  img,
		Src:  image.White,
		Face: r.face,
	}
	advance := d.MeasureString(text).Ceil()
	m := r.face.Metrics()
	textHeight := m.CapHeight.Ceil()
	if textHeight <= 0 {
		textHeight = m.Ascent.Ceil()
	}
	x := rect.X + (rect.Width-advance)/2
	y := rect.Y + (rect.Height+textHeight)/2
	d.Dot = fixed.P(x, y)
	d.DrawString(text)
}

// roundRectDistance is the signed distance from (px, py) to the outline of
// rect with corners of the given radius. Negative values are inside.
func roundRectDistance(px, py float64, rect geom.Rect, radius float64) float64 {
	hw, hh := float64(rect.Width)/2, float64(rect.Height)/2
	cx, cy := float64(rect.X)+hw, float64(rect.Y)+hh
	qx := math.Abs(px-cx) - (hw - radius)
	qy := math.Abs(py-cy) - (hh - radius)
	outside := math.Hypot(math.Max(qx, 0), math.Max(qy, 0))
	inside := math.Min(math.Max(qx, qy), 0)
	return outside + inside - radius
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}

// scale multiplies a premultiplied colour by cov.
func scale(c color.RGBA, cov float64) color.RGBA {
	return color.RGBA{
		R: uint8(math.Round(float64(c.R) * cov)),
		G: uint8(math.Round(float64(c.G) * cov)),
		B: uint8(math.Round(float64(c.B) * cov)),
		A: uint8(math.Round(float64(c.A) * cov)),
	}
}

// over composites premultiplied src with coverage cov onto dst.
func over(src, dst color.RGBA, cov float64) color.RGBA {
	k := 1 - float64(src.A)/255*cov
	mix := func(s, d uint8) uint8 {
		return uint8(math.Round(float64(s)*cov + float64(d)*k))
	}
	return color.RGBA{R: mix(src.R, dst.R), G: mix(src.G, dst.G), B: mix(src.B, dst.B), A: mix(src.A, dst.A)}
}
