package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/1broseidon/gulp/internal/config"
)

// applyFlags overrides cfg with every config-backed flag the user set.
func applyFlags(cmd *cobra.Command, f *flags, cfg *config.Config) {
	changed := cmd.Flags().Changed

	if changed("font-family") {
		cfg.Font.Family = f.fontFamily
	}
	if changed("font-size") {
		cfg.Font.Size = f.fontSize
	}
	if changed("font-weight") {
		cfg.Font.Weight = f.fontWeight
	}
	if changed("border-color") {
		cfg.Border.Color = f.borderColor
	}
	if changed("border-thickness") {
		cfg.Border.Thickness = f.borderThickness
	}
	if changed("border-rounding") {
		cfg.Border.Rounding = f.borderRounding
	}
	if changed("dim-opacity") {
		cfg.Display.DimOpacity = f.dimOpacity
	}
	if changed("log") {
		cfg.Display.Log = f.logLevel
	}
	if changed("fps") {
		cfg.Display.FPS = f.fps
	}
	if changed("format") {
		cfg.Output.Format = f.format
	}
	// Boolean switches can only turn a feature off.
	if f.noSnap {
		cfg.Features.NoSnap = true
	}
	if f.noAnimation {
		cfg.Features.NoAnimation = true
	}
}

// parseAspectRatio parses "W:H". An empty string means unconstrained.
func parseAspectRatio(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	w, h, ok := strings.Cut(s, ":")
	if !ok {
		return 0, fmt.Errorf("invalid aspect ratio %q: expected W:H", s)
	}
	width, err := strconv.ParseFloat(strings.TrimSpace(w), 64)
	if err != nil {
		return 0, fmt.Errorf("invalid aspect ratio width %q: %w", w, err)
	}
	height, err := strconv.ParseFloat(strings.TrimSpace(h), 64)
	if err != nil {
		return 0, fmt.Errorf("invalid aspect ratio height %q: %w", h, err)
	}
	if width <= 0 || height <= 0 {
		return 0, fmt.Errorf("invalid aspect ratio %q: both sides must be positive", s)
	}
	return width / height, nil
}
