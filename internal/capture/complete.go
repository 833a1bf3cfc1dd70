package capture

import (
	"fmt"
	"io"

	"github.com/rs/zerolog"

	"github.com/1broseidon/gulp/internal/geom"
)

// Options choose what happens with a finished selection. OCR wins over
// OutputPath; with neither set the coordinates are printed.
type Options struct {
	Format     string
	OutputPath string
	OCR        bool
}

// Completer produces the final output for a selection.
type Completer struct {
	opts       Options
	grabber    Grabber
	recognizer Recognizer
	copyText   func(string) error
	stdout     io.Writer
	log        zerolog.Logger
}

// NewCompleter wires a completer to the real screen, tesseract and clipboard.
func NewCompleter(opts Options, stdout io.Writer, log zerolog.Logger) *Completer {
	return &Completer{
		opts:       opts,
		grabber:    ScreenGrabber{},
		recognizer: Tesseract{},
		copyText:   CopyToClipboard,
		stdout:     stdout,
		log:        log,
	}
}

// Complete writes the result for r. outputs are the global bounds of every
// monitor.
func (c *Completer) Complete(r geom.Rect, outputs []geom.Rect) error {
	switch {
	case c.opts.OCR:
		return c.ocr(r, outputs)
	case c.opts.OutputPath != "":
		return c.screenshot(r, outputs)
	default:
		_, err := fmt.Fprintln(c.stdout, FormatCoordinates(c.opts.Format, r))
		return err
	}
}

func (c *Completer) screenshot(r geom.Rect, outputs []geom.Rect) error {
	img, err := Region(c.grabber, r, outputs)
	if err != nil {
		return fmt.Errorf("screenshot capture failed: %w", err)
	}
	if err := Save(c.opts.OutputPath, img, c.stdout); err != nil {
		return fmt.Errorf("screenshot capture failed: %w", err)
	}
	c.log.Info().Str("path", c.opts.OutputPath).Stringer("rect", r).Msg("screenshot saved")
	return nil
}

func (c *Completer) ocr(r geom.Rect, outputs []geom.Rect) error {
	img, err := Region(c.grabber, r, outputs)
	if err != nil {
		return fmt.Errorf("ocr failed: %w", err)
	}
	b := img.Bounds()
	c.log.Info().Int("width", b.Dx()).Int("height", b.Dy()).Msg("running ocr")

	text, err := c.recognizer.Text(img)
	if err != nil {
		return fmt.Errorf("ocr failed: %w", err)
	}
	c.log.Info().Int("chars", len(text)).Msg("ocr completed")

	if _, err := fmt.Fprintln(c.stdout, text); err != nil {
		return err
	}
	if err := c.copyText(text); err != nil {
		c.log.Warn().Err(err).Msg("failed to copy to clipboard")
	} else {
		c.log.Info().Int("bytes", len(text)).Msg("text copied to clipboard")
	}
	return nil
}
