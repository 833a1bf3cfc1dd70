package config

import (
	"fmt"
)

type ValidationError struct {
	Path   string
	Source Source
	Err    error
}

func (e *ValidationError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Source.Kind == SourceFile && e.Source.File != "" && e.Source.Line > 0 {
		return fmt.Sprintf("%s:%d:%d: %s: %v", e.Source.File, e.Source.Line, e.Source.Column, e.Path, e.Err)
	}
	if e.Path != "" {
		return fmt.Sprintf("%s: %v", e.Path, e.Err)
	}
	return e.Err.Error()
}

func (e *ValidationError) Unwrap() error { return e.Err }

// BuildEffectiveConfig applies raw on top of the defaults.
func BuildEffectiveConfig(raw RawConfig) *Config {
	cfg := DefaultConfig()

	if f := raw.Font; f != nil {
		set(&cfg.Font.Family, f.Family)
		set(&cfg.Font.Size, f.Size)
		set(&cfg.Font.Weight, f.Weight)
	}
	if b := raw.Border; b != nil {
		set(&cfg.Border.Color, b.Color)
		set(&cfg.Border.Thickness, b.Thickness)
		set(&cfg.Border.Rounding, b.Rounding)
	}
	if d := raw.Display; d != nil {
		set(&cfg.Display.DimOpacity, d.DimOpacity)
		set(&cfg.Display.FPS, d.FPS)
		set(&cfg.Display.Log, d.Log)
	}
	if f := raw.Features; f != nil {
		set(&cfg.Features.NoSnap, f.NoSnap)
		set(&cfg.Features.NoAnimation, f.NoAnimation)
	}
	if s := raw.Snap; s != nil {
		set(&cfg.Snap.RefreshInterval, s.RefreshInterval)
		set(&cfg.Snap.IPCTimeout, s.IPCTimeout)
	}
	if o := raw.Output; o != nil {
		set(&cfg.Output.Format, o.Format)
	}
	return cfg
}

func set[T any](dst *T, v *T) {
	if v != nil {
		*dst = *v
	}
}
