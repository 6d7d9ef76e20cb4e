package volume

import (
	"github.com/banshee-data/volume.report/internal/units"
)

// Estimator slot names used to attribute failures in the report.
const (
	SlotConvexHullFull = "convex_hull_full"
	SlotConvexHullFill = "convex_hull_fill"
	SlotAlphaShapeFill = "alpha_shape_fill"
)

// Metadata is the flat numeric record of one scan, rounded to display
// precision (6 decimals for m³, 3 for liters). Liter values are derived from
// the cubic-meter values at assembly time and never stored independently.
// Estimator slots that failed are omitted, never zero-filled.
type Metadata struct {
	BucketRadius         float64  `json:"bucket_radius"`
	BucketHeight         float64  `json:"bucket_height"`
	FillRatio            float64  `json:"fill_ratio"`
	NumPointsWall        int      `json:"num_points_wall"`
	NumPointsBottom      int      `json:"num_points_bottom"`
	NumPointsFillSurface int      `json:"num_points_fill_surface"`
	AlphaValue           *float64 `json:"alpha_value,omitempty"`

	AnalyticCapacityM3     float64 `json:"analytic_capacity_m3"`
	AnalyticCapacityLiters float64 `json:"analytic_capacity_liters"`
	AnalyticFillM3         float64 `json:"analytic_fill_m3"`
	AnalyticFillLiters     float64 `json:"analytic_fill_liters"`

	ConvexHullFullM3     *float64 `json:"convex_hull_full_m3,omitempty"`
	ConvexHullFullLiters *float64 `json:"convex_hull_full_liters,omitempty"`
	ConvexHullFillM3     *float64 `json:"convex_hull_fill_m3,omitempty"`
	ConvexHullFillLiters *float64 `json:"convex_hull_fill_liters,omitempty"`
	AlphaShapeFillM3     *float64 `json:"alpha_shape_fill_m3,omitempty"`
	AlphaShapeFillLiters *float64 `json:"alpha_shape_fill_liters,omitempty"`

	// AlphaFallback records that the alpha_shape_fill value is actually a
	// convex-hull volume of the subsample, computed after alpha-complex
	// construction failed.
	AlphaFallback bool `json:"alpha_fallback,omitempty"`
}

// Report is the single result contract handed to external collaborators:
// the metadata record plus the three point arrays the viewer renders. Any of
// the point arrays may be empty; consumers must not assume a fixed count.
type Report struct {
	Metadata    Metadata     `json:"metadata"`
	EmptyBucket [][3]float64 `json:"empty_bucket"`
	FillSurface [][3]float64 `json:"fill_surface"`
	FullBucket  [][3]float64 `json:"full_bucket"`

	// EstimatorErrors names the estimator slots that could not produce a
	// value and why. Present alongside whatever estimates succeeded.
	EstimatorErrors map[string]string `json:"estimator_errors,omitempty"`

	// Estimates holds the unrounded estimator outputs for in-process
	// consumers; the JSON document carries only the rounded metadata.
	Estimates []Estimate `json:"-"`
}

// setSlot writes one estimator result into its metadata slot pair.
func setSlot(m3 **float64, liters **float64, value float64) {
	rounded := units.RoundCubicMeters(value)
	l := units.RoundLiters(units.ToLiters(value))
	*m3 = &rounded
	*liters = &l
}
