package config

import "time"

// Raw* mirror the config file. Pointer fields distinguish "absent" from the
// zero value so a partial file only overrides what it names.

type RawFontConfig struct {
	Family *string `yaml:"family"`
	Size   *int    `yaml:"size"`
	Weight *string `yaml:"weight"`
}

type RawBorderConfig struct {
	Color     *string `yaml:"color"`
	Thickness *int    `yaml:"thickness"`
	Rounding  *int    `yaml:"rounding"`
}

type RawDisplayConfig struct {
	DimOpacity *float64 `yaml:"dim_opacity"`
	FPS        *int     `yaml:"fps"`
	Log        *string  `yaml:"log"`
}

type RawFeaturesConfig struct {
	NoSnap      *bool `yaml:"no_snap"`
	NoAnimation *bool `yaml:"no_animation"`
}

type RawSnapConfig struct {
	RefreshInterval *time.Duration `yaml:"refresh_interval"`
	IPCTimeout      *time.Duration `yaml:"ipc_timeout"`
}

type RawOutputConfig struct {
	Format *string `yaml:"format"`
}

type RawConfig struct {
	Font     *RawFontConfig     `yaml:"font"`
	Border   *RawBorderConfig   `yaml:"border"`
	Display  *RawDisplayConfig  `yaml:"display"`
	Features *RawFeaturesConfig `yaml:"features"`
	Snap     *RawSnapConfig     `yaml:"snap"`
	Output   *RawOutputConfig   `yaml:"output"`
}
