package geom

import (
	"fmt"

	"github.com/banshee-data/volume.report/internal/pointcloud"
)

// AlphaShapeVolume computes the enclosed volume of the alpha shape of the
// point set: the union of Delaunay tetrahedra whose circumradius is at most
// 1/alpha. Growing alpha tightens the reconstruction; as the circumradius
// bound 1/alpha exceeds every cell's radius the result converges to the
// convex hull volume.
//
// Returns ErrDegenerateHull for inputs with no triangulable volume,
// ErrNonVolumetric when filtering prunes all volume, and a construction
// error when the triangulation itself fails. Callers are expected to treat
// the latter two as a signal to fall back to a convex-hull estimate.
func AlphaShapeVolume(pts []pointcloud.Point, alpha float64) (float64, error) {
	if alpha <= 0 {
		return 0, fmt.Errorf("alpha must be positive, got %v", alpha)
	}
	if len(pts) < 4 {
		return 0, ErrDegenerateHull
	}

	vs := make([]vec3, len(pts))
	for i, p := range pts {
		vs[i] = fromPoint(p)
	}

	tets, err := delaunay(vs)
	if err != nil {
		return 0, fmt.Errorf("alpha complex: %w", err)
	}

	maxR2 := (1 / alpha) * (1 / alpha)
	volume := 0.0
	for _, t := range tets {
		if t.r2 <= maxR2 {
			volume += tetraVolume(vs[t.v[0]], vs[t.v[1]], vs[t.v[2]], vs[t.v[3]])
		}
	}
	if volume <= 0 {
		return 0, ErrNonVolumetric
	}
	return volume, nil
}
