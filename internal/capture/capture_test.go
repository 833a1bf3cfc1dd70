package capture

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"golang.org/x/image/bmp"

	"github.com/1broseidon/gulp/internal/geom"
)

func TestFormatCoordinates(t *testing.T) {
	r := geom.Rect{X: 10, Y: 20, Width: 300, Height: 200}
	tests := []struct {
		format string
		want   string
	}{
		{"", "10,20 300x200"},
		{DefaultFormat, "10,20 300x200"},
		{"%x %y %X %Y", "10 20 310 220"},
		{"%wx%h+%x+%y", "300x200+10+20"},
		{"literal", "literal"},
	}
	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			if got := FormatCoordinates(tt.format, r); got != tt.want {
				t.Fatalf("FormatCoordinates(%q) = %q, want %q", tt.format, got, tt.want)
			}
		})
	}
}

var dualHead = []geom.Rect{
	{X: 0, Y: 0, Width: 1920, Height: 1080},
	{X: 1920, Y: 0, Width: 2560, Height: 1440},
}

func TestLocate(t *testing.T) {
	tests := []struct {
		name    string
		rect    geom.Rect
		wantIdx int
		want    geom.Rect
	}{
		{"first output", geom.Rect{X: 100, Y: 100, Width: 50, Height: 40}, 0, geom.Rect{X: 100, Y: 100, Width: 50, Height: 40}},
		{"second output translated", geom.Rect{X: 2000, Y: 10, Width: 100, Height: 100}, 1, geom.Rect{X: 80, Y: 10, Width: 100, Height: 100}},
		{"spanning cut at first", geom.Rect{X: 1900, Y: 0, Width: 100, Height: 10}, 0, geom.Rect{X: 1900, Y: 0, Width: 20, Height: 10}},
		{"clamped below", geom.Rect{X: 0, Y: 1070, Width: 10, Height: 50}, 0, geom.Rect{X: 0, Y: 1070, Width: 10, Height: 10}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			idx, got, err := Locate(tt.rect, dualHead)
			if err != nil {
				t.Fatalf("Locate error: %v", err)
			}
			if idx != tt.wantIdx || got != tt.want {
				t.Fatalf("Locate = %d %+v, want %d %+v", idx, got, tt.wantIdx, tt.want)
			}
		})
	}
}

func TestLocateNotOnOutput(t *testing.T) {
	_, _, err := Locate(geom.Rect{X: 0, Y: 2000, Width: 10, Height: 10}, dualHead)
	if !errors.Is(err, ErrNotOnOutput) {
		t.Fatalf("error = %v, want ErrNotOnOutput", err)
	}
	if _, _, err := Locate(geom.Rect{Width: 10, Height: 10}, nil); !errors.Is(err, ErrNotOnOutput) {
		t.Fatalf("no outputs: error = %v", err)
	}
}

type fakeGrabber struct {
	requested []image.Rectangle
	err       error
}

func (g *fakeGrabber) Grab(r image.Rectangle) (*image.RGBA, error) {
	g.requested = append(g.requested, r)
	if g.err != nil {
		return nil, g.err
	}
	img := image.NewRGBA(image.Rect(0, 0, r.Dx(), r.Dy()))
	for i := range img.Pix {
		img.Pix[i] = 0xff
	}
	return img, nil
}

func TestRegionGrabsGlobalCrop(t *testing.T) {
	g := &fakeGrabber{}
	img, err := Region(g, geom.Rect{X: 1900, Y: 1000, Width: 100, Height: 200}, dualHead)
	if err != nil {
		t.Fatal(err)
	}
	want := image.Rect(1900, 1000, 1920, 1080)
	if len(g.requested) != 1 || g.requested[0] != want {
		t.Fatalf("requested %v, want %v", g.requested, want)
	}
	if img.Bounds().Dx() != 20 || img.Bounds().Dy() != 80 {
		t.Fatalf("image size = %v", img.Bounds())
	}
}

func TestFormatForPath(t *testing.T) {
	tests := map[string]Format{
		"shot.png":  FormatPNG,
		"shot.JPG":  FormatJPEG,
		"shot.jpeg": FormatJPEG,
		"shot.bmp":  FormatBMP,
		"shot":      FormatPNG,
		"-":         FormatPNG,
	}
	for path, want := range tests {
		if got := FormatForPath(path); got != want {
			t.Fatalf("FormatForPath(%q) = %q, want %q", path, got, want)
		}
	}
}

func testImage() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, 4, 3))
	img.SetRGBA(1, 1, color.RGBA{R: 0xff, A: 0xff})
	return img
}

func TestSaveStdoutWritesPNG(t *testing.T) {
	var buf bytes.Buffer
	if err := Save(StdoutPath, testImage(), &buf); err != nil {
		t.Fatal(err)
	}
	img, err := png.Decode(&buf)
	if err != nil {
		t.Fatalf("stdout is not PNG: %v", err)
	}
	if img.Bounds().Dx() != 4 {
		t.Fatalf("decoded width = %d", img.Bounds().Dx())
	}
}

func TestSaveFileByExtension(t *testing.T) {
	dir := t.TempDir()

	bmpPath := filepath.Join(dir, "shot.bmp")
	if err := Save(bmpPath, testImage(), nil); err != nil {
		t.Fatal(err)
	}
	f, err := os.Open(bmpPath)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	img, err := bmp.Decode(f)
	if err != nil {
		t.Fatalf("decode bmp: %v", err)
	}
	if r, _, _, _ := img.At(1, 1).RGBA(); r>>8 != 0xff {
		t.Fatalf("pixel lost in bmp round trip: %v", img.At(1, 1))
	}

	jpgPath := filepath.Join(dir, "shot.jpg")
	if err := Save(jpgPath, testImage(), nil); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(jpgPath)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.HasPrefix(data, []byte{0xff, 0xd8}) {
		t.Fatal("jpg file does not start with a JPEG SOI marker")
	}
}

func TestSaveBadPath(t *testing.T) {
	err := Save(filepath.Join(t.TempDir(), "missing", "x.png"), testImage(), nil)
	if err == nil {
		t.Fatal("expected error for missing directory")
	}
}

type fakeRecognizer struct {
	text string
	err  error
	seen image.Rectangle
}

func (f *fakeRecognizer) Text(img image.Image) (string, error) {
	f.seen = img.Bounds()
	return f.text, f.err
}

func newTestCompleter(opts Options, g Grabber, rec Recognizer, out *bytes.Buffer, copied *[]string, copyErr error) *Completer {
	return &Completer{
		opts:       opts,
		grabber:    g,
		recognizer: rec,
		copyText: func(s string) error {
			*copied = append(*copied, s)
			return copyErr
		},
		stdout: out,
		log:    zerolog.Nop(),
	}
}

func TestCompleterPrintsCoordinates(t *testing.T) {
	var out bytes.Buffer
	var copied []string
	g := &fakeGrabber{}
	c := newTestCompleter(Options{Format: "%x %y %w %h"}, g, &fakeRecognizer{}, &out, &copied, nil)

	if err := c.Complete(geom.Rect{X: 1, Y: 2, Width: 3, Height: 4}, dualHead); err != nil {
		t.Fatal(err)
	}
	if out.String() != "1 2 3 4\n" {
		t.Fatalf("stdout = %q", out.String())
	}
	if len(g.requested) != 0 {
		t.Fatal("coordinate mode must not capture the screen")
	}
}

func TestCompleterSavesScreenshot(t *testing.T) {
	var out bytes.Buffer
	var copied []string
	path := filepath.Join(t.TempDir(), "region.png")
	c := newTestCompleter(Options{OutputPath: path}, &fakeGrabber{}, &fakeRecognizer{}, &out, &copied, nil)

	if err := c.Complete(geom.Rect{X: 2000, Y: 0, Width: 30, Height: 20}, dualHead); err != nil {
		t.Fatal(err)
	}
	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	cfg, err := png.DecodeConfig(f)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Width != 30 || cfg.Height != 20 {
		t.Fatalf("saved %dx%d, want 30x20", cfg.Width, cfg.Height)
	}
	if out.Len() != 0 {
		t.Fatalf("file mode wrote to stdout: %q", out.String())
	}
}

func TestCompleterScreenshotOffOutput(t *testing.T) {
	var out bytes.Buffer
	var copied []string
	c := newTestCompleter(Options{OutputPath: "-"}, &fakeGrabber{}, &fakeRecognizer{}, &out, &copied, nil)

	err := c.Complete(geom.Rect{X: -500, Y: -500, Width: 10, Height: 10}, dualHead)
	if !errors.Is(err, ErrNotOnOutput) {
		t.Fatalf("error = %v, want ErrNotOnOutput", err)
	}
}

func TestCompleterOCR(t *testing.T) {
	var out bytes.Buffer
	var copied []string
	rec := &fakeRecognizer{text: "hello world"}
	c := newTestCompleter(Options{OCR: true, OutputPath: "ignored.png"}, &fakeGrabber{}, rec, &out, &copied, nil)

	if err := c.Complete(geom.Rect{X: 10, Y: 10, Width: 40, Height: 20}, dualHead); err != nil {
		t.Fatal(err)
	}
	if out.String() != "hello world\n" {
		t.Fatalf("stdout = %q", out.String())
	}
	if len(copied) != 1 || copied[0] != "hello world" {
		t.Fatalf("clipboard = %v", copied)
	}
	if rec.seen.Dx() != 40 || rec.seen.Dy() != 20 {
		t.Fatalf("ocr saw %v", rec.seen)
	}
}

func TestCompleterOCRClipboardFailureIsNotFatal(t *testing.T) {
	var out bytes.Buffer
	var copied []string
	c := newTestCompleter(Options{OCR: true}, &fakeGrabber{}, &fakeRecognizer{text: "x"}, &out, &copied, errors.New("no xclip"))

	if err := c.Complete(geom.Rect{Width: 5, Height: 5}, dualHead); err != nil {
		t.Fatalf("clipboard failure should only warn: %v", err)
	}
}

func TestCompleterOCRError(t *testing.T) {
	var out bytes.Buffer
	var copied []string
	c := newTestCompleter(Options{OCR: true}, &fakeGrabber{}, &fakeRecognizer{err: errors.New("tesseract missing")}, &out, &copied, nil)

	err := c.Complete(geom.Rect{Width: 5, Height: 5}, dualHead)
	if err == nil || !strings.Contains(err.Error(), "tesseract missing") {
		t.Fatalf("error = %v", err)
	}
	if len(copied) != 0 {
		t.Fatal("nothing should be copied after an OCR failure")
	}
}
