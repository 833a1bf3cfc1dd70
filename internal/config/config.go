// Package config loads gulp's YAML configuration. Values come from, in
// increasing priority: built-in defaults, the config file, command-line flags.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"gopkg.in/yaml.v3"

	"github.com/1broseidon/gulp/internal/render"
)

const (
	DefaultFontFamily      = "Inter Nerd Font"
	DefaultFontSize        = 16
	DefaultFontWeight      = "Bold"
	DefaultBorderColor     = "#FFFFFF"
	DefaultBorderThickness = 2
	DefaultDimOpacity      = 0.5
	DefaultLogLevel        = "off"
	DefaultRefreshInterval = time.Second
	DefaultIPCTimeout      = 500 * time.Millisecond
	DefaultOutputFormat    = "%x,%y %wx%h"
)

type FontConfig struct {
	// Family is a fontconfig family name or a .ttf/.otf path.
	Family string `yaml:"family"`
	Size   int    `yaml:"size"`
	Weight string `yaml:"weight"`
}

type BorderConfig struct {
	Color     string `yaml:"color"`
	Thickness int    `yaml:"thickness"`
	Rounding  int    `yaml:"rounding"`
}

type DisplayConfig struct {
	DimOpacity float64 `yaml:"dim_opacity"`
	// FPS caps redraws on every output; 0 follows each monitor's refresh rate.
	FPS int    `yaml:"fps"`
	Log string `yaml:"log"`
}

type FeaturesConfig struct {
	NoSnap      bool `yaml:"no_snap"`
	NoAnimation bool `yaml:"no_animation"`
}

type SnapConfig struct {
	// RefreshInterval is how stale the window list may get while hovering.
	RefreshInterval time.Duration `yaml:"refresh_interval"`
	// IPCTimeout bounds each compositor query.
	IPCTimeout time.Duration `yaml:"ipc_timeout"`
}

type OutputConfig struct {
	Format string `yaml:"format"`
}

// Config is the effective configuration.
type Config struct {
	Font     FontConfig     `yaml:"font"`
	Border   BorderConfig   `yaml:"border"`
	Display  DisplayConfig  `yaml:"display"`
	Features FeaturesConfig `yaml:"features"`
	Snap     SnapConfig     `yaml:"snap"`
	Output   OutputConfig   `yaml:"output"`
}

func DefaultConfig() *Config {
	return &Config{
		Font: FontConfig{
			Family: DefaultFontFamily,
			Size:   DefaultFontSize,
			Weight: DefaultFontWeight,
		},
		Border: BorderConfig{
			Color:     DefaultBorderColor,
			Thickness: DefaultBorderThickness,
			Rounding:  0,
		},
		Display: DisplayConfig{
			DimOpacity: DefaultDimOpacity,
			FPS:        0,
			Log:        DefaultLogLevel,
		},
		Snap: SnapConfig{
			RefreshInterval: DefaultRefreshInterval,
			IPCTimeout:      DefaultIPCTimeout,
		},
		Output: OutputConfig{
			Format: DefaultOutputFormat,
		},
	}
}

// DefaultConfigPath returns $XDG_CONFIG_HOME/gulp/config.yaml.
func DefaultConfigPath() string {
	return filepath.Join(xdg.ConfigHome, "gulp", "config.yaml")
}

// Validate performs strict validation of the effective configuration.
func (c *Config) Validate() error {
	if c.Font.Size <= 0 {
		return &ValidationError{Path: "font.size", Err: fmt.Errorf("size must be > 0")}
	}
	switch c.Font.Weight {
	case "Normal", "Bold":
	default:
		return &ValidationError{Path: "font.weight", Err: fmt.Errorf("weight must be one of: Normal, Bold")}
	}
	if _, err := render.ParseHex(c.Border.Color); err != nil {
		return &ValidationError{Path: "border.color", Err: err}
	}
	if c.Border.Thickness < 0 {
		return &ValidationError{Path: "border.thickness", Err: fmt.Errorf("thickness must be >= 0")}
	}
	if c.Border.Rounding < 0 {
		return &ValidationError{Path: "border.rounding", Err: fmt.Errorf("rounding must be >= 0")}
	}
	if c.Display.DimOpacity < 0 || c.Display.DimOpacity > 1 {
		return &ValidationError{Path: "display.dim_opacity", Err: fmt.Errorf("dim_opacity must be between 0.0 and 1.0")}
	}
	if c.Display.FPS < 0 {
		return &ValidationError{Path: "display.fps", Err: fmt.Errorf("fps must be >= 0")}
	}
	if c.Snap.RefreshInterval < 0 {
		return &ValidationError{Path: "snap.refresh_interval", Err: fmt.Errorf("refresh_interval must be >= 0")}
	}
	if c.Snap.IPCTimeout < 0 {
		return &ValidationError{Path: "snap.ipc_timeout", Err: fmt.Errorf("ipc_timeout must be >= 0")}
	}
	if strings.TrimSpace(c.Output.Format) == "" {
		return &ValidationError{Path: "output.format", Err: fmt.Errorf("format must not be empty")}
	}
	return nil
}

const defaultsHeader = `# gulp configuration
# Command-line flags override these values.
# Format placeholders: %x %y (top-left), %w %h (size), %X %Y (bottom-right).

`

// WriteDefaults writes the default configuration to path. An existing file is
// left alone unless overwrite is set.
func WriteDefaults(path string, overwrite bool) error {
	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%s: %w", path, os.ErrExist)
		} else if !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("%s: %w", path, err)
		}
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(DefaultConfig())
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, append([]byte(defaultsHeader), data...), 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}
