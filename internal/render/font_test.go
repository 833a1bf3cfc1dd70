package render

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
)

func withFindFont(t *testing.T, fn func(family, weight string) (string, error)) {
	t.Helper()
	prev := findFont
	findFont = fn
	t.Cleanup(func() { findFont = prev })
}

func referenceFace(t *testing.T, ttf []byte) font.Face {
	t.Helper()
	f, err := opentype.Parse(ttf)
	if err != nil {
		t.Fatal(err)
	}
	face, err := opentype.NewFace(f, &opentype.FaceOptions{Size: 16, DPI: 72, Hinting: font.HintingFull})
	if err != nil {
		t.Fatal(err)
	}
	return face
}

func sameWidth(t *testing.T, got, want font.Face) {
	t.Helper()
	const sample = "1920 x 1080 Wide"
	if g, w := font.MeasureString(got, sample), font.MeasureString(want, sample); g != w {
		t.Fatalf("label width = %v, want %v", g, w)
	}
}

func TestLoadFaceResolvesFamilyByName(t *testing.T) {
	path := filepath.Join(t.TempDir(), "Regular.ttf")
	if err := os.WriteFile(path, goregular.TTF, 0644); err != nil {
		t.Fatal(err)
	}
	var gotFamily, gotWeight string
	withFindFont(t, func(family, weight string) (string, error) {
		gotFamily, gotWeight = family, weight
		return path, nil
	})

	face, err := loadFace("Inter Nerd Font", 16, "Bold", zerolog.Nop())
	if err != nil {
		t.Fatal(err)
	}
	if gotFamily != "Inter Nerd Font" || gotWeight != "Bold" {
		t.Fatalf("lookup(%q, %q)", gotFamily, gotWeight)
	}
	sameWidth(t, face, referenceFace(t, goregular.TTF))
}

func TestLoadFaceFontFileSkipsLookup(t *testing.T) {
	path := filepath.Join(t.TempDir(), "Label.TTF")
	if err := os.WriteFile(path, goregular.TTF, 0644); err != nil {
		t.Fatal(err)
	}
	withFindFont(t, func(string, string) (string, error) {
		t.Fatal("font file path went through fontconfig")
		return "", nil
	})

	face, err := loadFace(path, 16, "Bold", zerolog.Nop())
	if err != nil {
		t.Fatal(err)
	}
	sameWidth(t, face, referenceFace(t, goregular.TTF))
}

func TestLoadFaceFallsBackToBuiltin(t *testing.T) {
	garbage := filepath.Join(t.TempDir(), "broken.ttf")
	if err := os.WriteFile(garbage, []byte("not a font"), 0644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name   string
		lookup func(string, string) (string, error)
		weight string
		want   []byte
	}{
		{"lookup fails", func(string, string) (string, error) { return "", errors.New("no fc-match") }, "Bold", gobold.TTF},
		{"missing file", func(string, string) (string, error) { return "/nonexistent/font.ttf", nil }, "Bold", gobold.TTF},
		{"unparsable file", func(string, string) (string, error) { return garbage, nil }, "Normal", goregular.TTF},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			withFindFont(t, tt.lookup)
			face, err := loadFace("Some Family", 16, tt.weight, zerolog.Nop())
			if err != nil {
				t.Fatalf("loadFace: %v", err)
			}
			sameWidth(t, face, referenceFace(t, tt.want))
		})
	}
}
