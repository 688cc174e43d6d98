// Package config loads YAML encoder presets, applying file defaults to
// flags the caller's CLI did not explicitly pass — the same
// override-only-if-unset pattern the pack uses for its own config files.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"fftvis/internal/spectro"
)

// Preset is the on-disk shape of an encoder preset file. Pointer fields
// distinguish "not set in the file" from an explicit zero value, so a CLI
// flag can still override a present-but-zero field.
type Preset struct {
	BarCount      *int     `yaml:"bar_count"`
	DBFloor       *float64 `yaml:"db_floor"`
	DBRange       *float64 `yaml:"db_range"`
	FrequencyMin  *float64 `yaml:"frequency_min"`
	FrequencyMax  *float64 `yaml:"frequency_max"`
	Smoothness    *int     `yaml:"smoothness"`
	BinMapping    *string  `yaml:"bin_mapping"`
	FFTResolution *int     `yaml:"fft_resolution"`
	FPS           *int     `yaml:"fps"`
	Zstd          *bool    `yaml:"zstd"`
	Quantize      *int     `yaml:"quantize"`
	Delta         *bool    `yaml:"delta"`
}

// Load reads and parses a preset file at path.
func Load(path string) (Preset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Preset{}, fmt.Errorf("config: reading preset %s: %w", path, err)
	}
	var p Preset
	if err := yaml.Unmarshal(data, &p); err != nil {
		return Preset{}, fmt.Errorf("config: parsing preset %s: %w", path, err)
	}
	return p, nil
}

func parseBinMapping(name string) (spectro.BinMapping, error) {
	switch name {
	case "normalized", "":
		return spectro.Normalized, nil
	case "log10":
		return spectro.Log10, nil
	case "mel":
		return spectro.Mel, nil
	default:
		return 0, fmt.Errorf("config: unknown bin_mapping %q", name)
	}
}

// ApplyDefaults fills fields of cfg from the preset, skipping any flag name
// for which isSet reports true. isSet is normally a *cli.Command's IsSet
// method, passed through so callers never need a zero-value heuristic —
// every CLI flag here carries a non-zero default, so "cfg field == 0" can
// never distinguish "not passed" from "passed as zero".
func (p Preset) ApplyDefaults(cfg *spectro.Config, isSet func(name string) bool) error {
	if p.BarCount != nil && !isSet("bands") {
		cfg.BarCount = *p.BarCount
	}
	if p.DBFloor != nil && !isSet("db-floor") {
		cfg.DBFloor = *p.DBFloor
	}
	if p.DBRange != nil && !isSet("db-range") {
		cfg.DBRange = *p.DBRange
	}
	if p.FrequencyMin != nil && !isSet("freq-min") {
		cfg.FrequencyMin = *p.FrequencyMin
	}
	if p.FrequencyMax != nil && !isSet("freq-max") {
		cfg.FrequencyMax = *p.FrequencyMax
	}
	if p.Smoothness != nil && !isSet("smoothness") {
		cfg.Smoothness = *p.Smoothness
	}
	if p.FFTResolution != nil && !isSet("fft") {
		cfg.FFTResolution = *p.FFTResolution
	}
	if p.BinMapping != nil && !isSet("bin-mapping") {
		bm, err := parseBinMapping(*p.BinMapping)
		if err != nil {
			return err
		}
		cfg.BinMapping = bm
	}
	return nil
}
