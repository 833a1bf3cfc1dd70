package config

import (
	"fmt"
)

// Explain returns the effective value at a dotted path such as
// "border.color" or "snap.ipc_timeout", and where it came from.
func Explain(res *LoadResult, path string) (any, Source, error) {
	if res == nil || res.Config == nil {
		return nil, Source{}, fmt.Errorf("no config loaded")
	}
	if path == "" {
		return nil, Source{}, fmt.Errorf("path is empty")
	}

	value, err := lookupValue(res.Config, path)
	if err != nil {
		return nil, Source{}, err
	}
	if src, ok := res.Sources[path]; ok {
		return value, src, nil
	}
	return value, Source{Kind: SourceDefault}, nil
}

// Paths lists every key Explain accepts.
func Paths() []string {
	return []string{
		"font.family", "font.size", "font.weight",
		"border.color", "border.thickness", "border.rounding",
		"display.dim_opacity", "display.fps", "display.log",
		"features.no_snap", "features.no_animation",
		"snap.refresh_interval", "snap.ipc_timeout",
		"output.format",
	}
}

func lookupValue(cfg *Config, path string) (any, error) {
	switch path {
	case "font.family":
		return cfg.Font.Family, nil
	case "font.size":
		return cfg.Font.Size, nil
	case "font.weight":
		return cfg.Font.Weight, nil
	case "border.color":
		return cfg.Border.Color, nil
	case "border.thickness":
		return cfg.Border.Thickness, nil
	case "border.rounding":
		return cfg.Border.Rounding, nil
	case "display.dim_opacity":
		return cfg.Display.DimOpacity, nil
	case "display.fps":
		return cfg.Display.FPS, nil
	case "display.log":
		return cfg.Display.Log, nil
	case "features.no_snap":
		return cfg.Features.NoSnap, nil
	case "features.no_animation":
		return cfg.Features.NoAnimation, nil
	case "snap.refresh_interval":
		return cfg.Snap.RefreshInterval, nil
	case "snap.ipc_timeout":
		return cfg.Snap.IPCTimeout, nil
	case "output.format":
		return cfg.Output.Format, nil
	default:
		return nil, fmt.Errorf("unknown path: %s", path)
	}
}
