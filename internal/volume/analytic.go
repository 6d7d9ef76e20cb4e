// Package volume composes the samplers and geometry estimators into the scan
// pipeline: synthetic vessel point clouds in, a volume report out.
package volume

import (
	"fmt"
	"math"
)

// Geometry describes the scanned cylindrical vessel. Both dimensions must be
// strictly positive; zero is a configuration error, never silently clamped.
type Geometry struct {
	Radius float64 `json:"bucket_radius"`
	Height float64 `json:"bucket_height"`
}

// Validate rejects non-physical vessel dimensions.
func (g Geometry) Validate() error {
	if g.Radius <= 0 {
		return fmt.Errorf("vessel radius must be positive, got %v", g.Radius)
	}
	if g.Height <= 0 {
		return fmt.Errorf("vessel height must be positive, got %v", g.Height)
	}
	return nil
}

// FillState is the fraction of vessel height occupied by contents.
type FillState struct {
	Ratio float64 `json:"fill_ratio"`
}

// Validate enforces ratio ∈ [0, 1] at construction time so nothing
// downstream needs to re-check it.
func (f FillState) Validate() error {
	if math.IsNaN(f.Ratio) || f.Ratio < 0 || f.Ratio > 1 {
		return fmt.Errorf("fill ratio must be in [0, 1], got %v", f.Ratio)
	}
	return nil
}

// SamplingSpec sets the per-group sample counts and the top-level seed. The
// same seed and spec always reproduce bit-identical point sets.
type SamplingSpec struct {
	WallPoints        int   `json:"num_points_wall"`
	BottomPoints      int   `json:"num_points_bottom"`
	FillSurfacePoints int   `json:"num_points_fill_surface"`
	Seed              int64 `json:"seed"`
}

// Validate requires at least one point per sampling group.
func (s SamplingSpec) Validate() error {
	if s.WallPoints < 1 {
		return fmt.Errorf("wall point count must be at least 1, got %d", s.WallPoints)
	}
	if s.BottomPoints < 1 {
		return fmt.Errorf("bottom point count must be at least 1, got %d", s.BottomPoints)
	}
	if s.FillSurfacePoints < 1 {
		return fmt.Errorf("fill surface point count must be at least 1, got %d", s.FillSurfacePoints)
	}
	return nil
}

// Capacity returns the analytic vessel volume π·r²·h in cubic meters. Used
// as the validation oracle; it never feeds the estimators.
func Capacity(g Geometry) float64 {
	return math.Pi * g.Radius * g.Radius * g.Height
}

// FillVolume returns the analytic contents volume for a capacity and fill
// state.
func FillVolume(capacity float64, f FillState) float64 {
	return capacity * f.Ratio
}
