// Package config loads scan parameters from JSON files. The schema matches
// the flag surface of the volume-report binary so the same document can seed
// a scan from disk or be round-tripped through the report metadata.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Default scan parameter values. These mirror the reference bucket used
// throughout the test suite: a 0.1 m radius, 0.2 m tall vessel half full.
const (
	DefaultBucketRadius         = 0.1
	DefaultBucketHeight         = 0.2
	DefaultFillRatio            = 0.5
	DefaultNumPointsWall        = 8000
	DefaultNumPointsBottom      = 16000
	DefaultNumPointsFillSurface = 8000
	DefaultAlphaValue           = 2.0
	DefaultSeed                 = 0
)

// ScanConfig holds the configurable parameters for one scan. Fields are
// pointers so that a partial JSON document only overrides what it names;
// the Get* accessors fall back to defaults for nil fields.
type ScanConfig struct {
	BucketRadius         *float64 `json:"bucket_radius,omitempty"`
	BucketHeight         *float64 `json:"bucket_height,omitempty"`
	FillRatio            *float64 `json:"fill_ratio,omitempty"`
	NumPointsWall        *int     `json:"num_points_wall,omitempty"`
	NumPointsBottom      *int     `json:"num_points_bottom,omitempty"`
	NumPointsFillSurface *int     `json:"num_points_fill_surface,omitempty"`
	AlphaValue           *float64 `json:"alpha_value,omitempty"`
	Seed                 *int64   `json:"seed,omitempty"`
}

// EmptyScanConfig returns a ScanConfig with all fields unset.
func EmptyScanConfig() *ScanConfig {
	return &ScanConfig{}
}

// LoadScanConfig loads a ScanConfig from a JSON file. The file must have a
// .json extension and stay under the max file size. Omitted fields keep
// their defaults, so partial configs are safe.
func LoadScanConfig(path string) (*ScanConfig, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	const maxFileSize = 1 * 1024 * 1024 // 1MB
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := EmptyScanConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Validate rejects values the pipeline would refuse. Validation here keeps
// config errors close to the file that caused them; the pipeline re-checks
// its own invariants regardless of where parameters came from.
func (c *ScanConfig) Validate() error {
	if c.BucketRadius != nil && *c.BucketRadius <= 0 {
		return fmt.Errorf("bucket_radius must be positive, got %v", *c.BucketRadius)
	}
	if c.BucketHeight != nil && *c.BucketHeight <= 0 {
		return fmt.Errorf("bucket_height must be positive, got %v", *c.BucketHeight)
	}
	if c.FillRatio != nil && (*c.FillRatio < 0 || *c.FillRatio > 1) {
		return fmt.Errorf("fill_ratio must be in [0, 1], got %v", *c.FillRatio)
	}
	for name, v := range map[string]*int{
		"num_points_wall":         c.NumPointsWall,
		"num_points_bottom":       c.NumPointsBottom,
		"num_points_fill_surface": c.NumPointsFillSurface,
	} {
		if v != nil && *v < 1 {
			return fmt.Errorf("%s must be at least 1, got %d", name, *v)
		}
	}
	if c.AlphaValue != nil && *c.AlphaValue <= 0 {
		return fmt.Errorf("alpha_value must be positive, got %v", *c.AlphaValue)
	}
	return nil
}

// Accessors with defaults.

func (c *ScanConfig) GetBucketRadius() float64 {
	if c.BucketRadius != nil {
		return *c.BucketRadius
	}
	return DefaultBucketRadius
}

func (c *ScanConfig) GetBucketHeight() float64 {
	if c.BucketHeight != nil {
		return *c.BucketHeight
	}
	return DefaultBucketHeight
}

func (c *ScanConfig) GetFillRatio() float64 {
	if c.FillRatio != nil {
		return *c.FillRatio
	}
	return DefaultFillRatio
}

func (c *ScanConfig) GetNumPointsWall() int {
	if c.NumPointsWall != nil {
		return *c.NumPointsWall
	}
	return DefaultNumPointsWall
}

func (c *ScanConfig) GetNumPointsBottom() int {
	if c.NumPointsBottom != nil {
		return *c.NumPointsBottom
	}
	return DefaultNumPointsBottom
}

func (c *ScanConfig) GetNumPointsFillSurface() int {
	if c.NumPointsFillSurface != nil {
		return *c.NumPointsFillSurface
	}
	return DefaultNumPointsFillSurface
}

func (c *ScanConfig) GetAlphaValue() float64 {
	if c.AlphaValue != nil {
		return *c.AlphaValue
	}
	return DefaultAlphaValue
}

func (c *ScanConfig) GetSeed() int64 {
	if c.Seed != nil {
		return *c.Seed
	}
	return DefaultSeed
}
