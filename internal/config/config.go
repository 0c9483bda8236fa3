// Package config defines the extraction configuration record, its documented
// defaults, file loaders and validation.
//
// The pipeline consumes a Config by value and never re-validates it; callers
// that accept configuration from outside the process (the CLI and the MCP
// server) run Validate once at the boundary and surface a
// *ConfigurationError when an option is malformed.
//
// # File Formats
//
// Load detects the format from the file extension:
//   - ".toml" -> TOML (github.com/BurntSushi/toml)
//   - ".yaml", ".yml" -> YAML (gopkg.in/yaml.v3)
//   - ".json" -> JSON
//
// Keys use the snake_case option names (blur, canny_low, ...). Options absent
// from a file keep their default value.
package config

import (
	"math"
)

// Config is the complete set of recognized extraction options.
type Config struct {
	// Blur is the Gaussian kernel size in pixels. Must be odd and >= 1;
	// 1 disables smoothing.
	Blur int `json:"blur" toml:"blur" yaml:"blur"`

	// CannyLow and CannyHigh are the hysteresis thresholds of the edge
	// detector, in gradient units of an 8-bit image. CannyLow <= CannyHigh.
	CannyLow  float64 `json:"canny_low" toml:"canny_low" yaml:"canny_low"`
	CannyHigh float64 `json:"canny_high" toml:"canny_high" yaml:"canny_high"`

	// MorphKernel is the edge length of the rectangular structuring element
	// used for morphological closing.
	MorphKernel int `json:"morph_kernel" toml:"morph_kernel" yaml:"morph_kernel"`

	// MinContourArea discards traced contours whose enclosed area is not
	// strictly greater than this value (square pixels).
	MinContourArea float64 `json:"min_contour_area" toml:"min_contour_area" yaml:"min_contour_area"`

	// Epsilon is the maximum perpendicular deviation, in pixels, allowed by
	// polyline simplification.
	Epsilon float64 `json:"epsilon" toml:"epsilon" yaml:"epsilon"`

	// MinSublotArea is the smallest enclosed area accepted for a sublot.
	MinSublotArea float64 `json:"min_sublot_area" toml:"min_sublot_area" yaml:"min_sublot_area"`

	// MinAngle is the smallest internal angle, in degrees, accepted for a
	// sublot.
	MinAngle float64 `json:"min_angle" toml:"min_angle" yaml:"min_angle"`

	// MergeDistancePercent is the point-unification radius as a fraction of
	// the image diagonal. Sublots use 0.8 times this value.
	MergeDistancePercent float64 `json:"merge_distance_percent" toml:"merge_distance_percent" yaml:"merge_distance_percent"`

	// BorderMergePercent is the endpoint-stitching radius for external
	// boundaries as a fraction of the image diagonal.
	BorderMergePercent float64 `json:"border_merge_percent" toml:"border_merge_percent" yaml:"border_merge_percent"`

	// CLAHEClipLimit is the contrast limit of the local histogram
	// equalization, relative to a uniform histogram.
	CLAHEClipLimit float64 `json:"clahe_clip_limit" toml:"clahe_clip_limit" yaml:"clahe_clip_limit"`

	// CLAHETileGrid is the number of tiles per axis for local equalization.
	CLAHETileGrid int `json:"clahe_tile_grid" toml:"clahe_tile_grid" yaml:"clahe_tile_grid"`

	// DPI is the rasterization resolution used for document (PDF) input.
	DPI int `json:"dpi" toml:"dpi" yaml:"dpi"`

	// MaxInputBytes rejects payloads larger than this before decoding.
	// Zero disables the limit.
	MaxInputBytes int64 `json:"max_input_bytes" toml:"max_input_bytes" yaml:"max_input_bytes"`
}

// Default option values. These match the values the extraction service has
// always shipped with.
const (
	DefaultBlur                 = 3
	DefaultCannyLow             = 50.0
	DefaultCannyHigh            = 150.0
	DefaultMorphKernel          = 2
	DefaultMinContourArea       = 1000.0
	DefaultEpsilon              = 2.0
	DefaultMinSublotArea        = 500.0
	DefaultMinAngle             = 40.0
	DefaultMergeDistancePercent = 0.005
	DefaultBorderMergePercent   = 0.005
	DefaultCLAHEClipLimit       = 2.0
	DefaultCLAHETileGrid        = 8
	DefaultDPI                  = 600
	DefaultMaxInputBytes        = 256 << 20
)

// SublotMergeFactor scales MergeDistancePercent for sublots, which are
// typically smaller features than external boundaries.
const SublotMergeFactor = 0.8

// Default returns a Config populated with the documented defaults.
func Default() Config {
	return Config{
		Blur:                 DefaultBlur,
		CannyLow:             DefaultCannyLow,
		CannyHigh:            DefaultCannyHigh,
		MorphKernel:          DefaultMorphKernel,
		MinContourArea:       DefaultMinContourArea,
		Epsilon:              DefaultEpsilon,
		MinSublotArea:        DefaultMinSublotArea,
		MinAngle:             DefaultMinAngle,
		MergeDistancePercent: DefaultMergeDistancePercent,
		BorderMergePercent:   DefaultBorderMergePercent,
		CLAHEClipLimit:       DefaultCLAHEClipLimit,
		CLAHETileGrid:        DefaultCLAHETileGrid,
		DPI:                  DefaultDPI,
		MaxInputBytes:        DefaultMaxInputBytes,
	}
}

// Validate checks every option and returns a *ConfigurationError for the
// first malformed one, or nil.
func (c Config) Validate() error {
	if c.Blur < 1 || c.Blur%2 == 0 {
		return newError("blur", c.Blur, "must be an odd integer >= 1")
	}
	if err := checkNonNegative("canny_low", c.CannyLow); err != nil {
		return err
	}
	if err := checkNonNegative("canny_high", c.CannyHigh); err != nil {
		return err
	}
	if c.CannyLow > c.CannyHigh {
		return newError("canny_low", c.CannyLow, "must not exceed canny_high")
	}
	if c.MorphKernel < 1 {
		return newError("morph_kernel", c.MorphKernel, "must be >= 1")
	}
	for _, opt := range []struct {
		name  string
		value float64
	}{
		{"min_contour_area", c.MinContourArea},
		{"epsilon", c.Epsilon},
		{"min_sublot_area", c.MinSublotArea},
	} {
		if err := checkNonNegative(opt.name, opt.value); err != nil {
			return err
		}
	}
	if math.IsNaN(c.MinAngle) || c.MinAngle < 0 || c.MinAngle > 180 {
		return newError("min_angle", c.MinAngle, "must be within [0, 180] degrees")
	}
	if err := checkFraction("merge_distance_percent", c.MergeDistancePercent); err != nil {
		return err
	}
	if err := checkFraction("border_merge_percent", c.BorderMergePercent); err != nil {
		return err
	}
	if math.IsNaN(c.CLAHEClipLimit) || c.CLAHEClipLimit <= 0 {
		return newError("clahe_clip_limit", c.CLAHEClipLimit, "must be > 0")
	}
	if c.CLAHETileGrid < 1 {
		return newError("clahe_tile_grid", c.CLAHETileGrid, "must be >= 1")
	}
	if c.DPI < 1 {
		return newError("dpi", c.DPI, "must be >= 1")
	}
	if c.MaxInputBytes < 0 {
		return newError("max_input_bytes", c.MaxInputBytes, "must be >= 0")
	}
	return nil
}

func checkNonNegative(name string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return newError(name, v, "must be a finite number >= 0")
	}
	return nil
}

func checkFraction(name string, v float64) error {
	if math.IsNaN(v) || v < 0 || v >= 1 {
		return newError(name, v, "must be a fraction of the image diagonal in [0, 1)")
	}
	return nil
}
