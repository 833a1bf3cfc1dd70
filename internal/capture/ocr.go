package capture

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/otiai10/gosseract"
)

// Recognizer extracts text from an image.
type Recognizer interface {
	Text(img image.Image) (string, error)
}

// Tesseract runs OCR through libtesseract.
type Tesseract struct {
	Languages []string
}

// Text returns the recognised text with surrounding whitespace trimmed.
func (t Tesseract) Text(img image.Image) (string, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return "", fmt.Errorf("encode ocr input: %w", err)
	}

	client := gosseract.NewClient()
	defer client.Close()

	langs := t.Languages
	if len(langs) == 0 {
		langs = []string{"eng"}
	}
	if err := client.SetLanguage(langs...); err != nil {
		return "", fmt.Errorf("set ocr language: %w", err)
	}
	if err := client.SetImageFromBytes(buf.Bytes()); err != nil {
		return "", fmt.Errorf("load ocr image: %w", err)
	}
	text, err := client.Text()
	if err != nil {
		return "", fmt.Errorf("ocr: %w", err)
	}
	return strings.TrimSpace(text), nil
}

// CopyToClipboard places text on the system clipboard.
func CopyToClipboard(text string) error {
	if clipboard.Unsupported {
		return fmt.Errorf("no clipboard utility found")
	}
	return clipboard.WriteAll(text)
}
