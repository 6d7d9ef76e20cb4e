package volume

import (
	"fmt"

	"github.com/banshee-data/volume.report/internal/geom"
	"github.com/banshee-data/volume.report/internal/monitoring"
	"github.com/banshee-data/volume.report/internal/pointcloud"
)

// Method tags identifying which estimator produced a value.
const (
	MethodConvexHull = "convex_hull"
	MethodAlphaShape = "alpha_shape"
)

// DefaultMaxAlphaPoints is the subsample cap applied before alpha-shape
// construction. Larger inputs are deterministically subsampled to exactly
// this many points.
const DefaultMaxAlphaPoints = 5000

// Estimate is one estimator's output for one point set.
type Estimate struct {
	Method   string  `json:"method"`
	VolumeM3 float64 `json:"volume_m3"`
	// Degraded marks an alpha-shape slot that fell back to the convex hull
	// after a construction failure or a non-volumetric result.
	Degraded bool `json:"degraded,omitempty"`
}

// Estimator computes an enclosed volume from an unordered point set.
// Implementations are pure: no cross-call state, safe to run concurrently
// over immutable point sets.
type Estimator interface {
	Method() string
	Estimate(set pointcloud.PointSet) (Estimate, error)
}

// HullEstimator measures the volume of the convex hull of a point set, the
// "tent" stretched over the samples.
type HullEstimator struct{}

// Method returns the convex hull method tag.
func (HullEstimator) Method() string { return MethodConvexHull }

// Estimate computes the hull volume. Degenerate point sets (fewer than four
// points, coplanar or collinear) return geom.ErrDegenerateHull.
func (HullEstimator) Estimate(set pointcloud.PointSet) (Estimate, error) {
	v, err := geom.ConvexHullVolume(set.Points)
	if err != nil {
		return Estimate{}, err
	}
	return Estimate{Method: MethodConvexHull, VolumeM3: v}, nil
}

// AlphaShapeEstimator measures the volume of a concave alpha-shape
// reconstruction, a tighter fit than the convex tent. Inputs above MaxPoints
// are subsampled deterministically from Seed, so repeated runs with the same
// seed and input reproduce the same estimate.
type AlphaShapeEstimator struct {
	Alpha     float64
	MaxPoints int   // subsample cap; DefaultMaxAlphaPoints when 0
	Seed      int64 // seed for the subsampling source
}

// Method returns the alpha shape method tag.
func (AlphaShapeEstimator) Method() string { return MethodAlphaShape }

// Estimate computes the alpha-shape volume of the (possibly subsampled) set.
// If alpha-complex construction fails or yields no measurable volume, the
// estimator falls back to the convex hull of the same subsample and tags the
// estimate as degraded. A subsample with fewer than four points propagates
// geom.ErrDegenerateHull unchanged.
func (e AlphaShapeEstimator) Estimate(set pointcloud.PointSet) (Estimate, error) {
	limit := e.MaxPoints
	if limit == 0 {
		limit = DefaultMaxAlphaPoints
	}
	sub := set
	if set.Len() > limit {
		sub = pointcloud.Subsample(set, limit, pointcloud.NewSource(e.Seed))
		monitoring.Logf("alpha-shape: subsampled %d points to %d (seed %d)", set.Len(), sub.Len(), e.Seed)
	}
	if sub.Len() < 4 {
		return Estimate{}, geom.ErrDegenerateHull
	}

	if e.Alpha <= 0 {
		return Estimate{}, fmt.Errorf("alpha must be positive, got %v", e.Alpha)
	}

	v, err := geom.AlphaShapeVolume(sub.Points, e.Alpha)
	if err == nil {
		return Estimate{Method: MethodAlphaShape, VolumeM3: v}, nil
	}

	monitoring.Logf("alpha-shape construction failed (%v); falling back to convex hull", err)
	hull, hullErr := geom.ConvexHullVolume(sub.Points)
	if hullErr != nil {
		return Estimate{}, hullErr
	}
	return Estimate{Method: MethodAlphaShape, VolumeM3: hull, Degraded: true}, nil
}

// Compile-time interface checks.
var (
	_ Estimator = HullEstimator{}
	_ Estimator = AlphaShapeEstimator{}
)
