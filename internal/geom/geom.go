// Package geom implements the 3D geometry used by the volume estimators:
// incremental convex hulls, Bowyer-Watson Delaunay triangulation and
// alpha-complex filtering over unordered point sets.
package geom

import (
	"errors"
	"math"

	"github.com/banshee-data/volume.report/internal/pointcloud"
)

// ErrDegenerateHull reports a point set for which no 3D enclosed volume can
// be constructed: fewer than four points, or all points coplanar/collinear.
// Estimators surface this explicitly rather than fabricating a zero volume.
var ErrDegenerateHull = errors.New("degenerate hull: fewer than 4 non-coplanar points")

// ErrNonVolumetric reports an alpha complex whose retained simplices enclose
// no measurable volume (every tetrahedron pruned, or only slivers kept).
var ErrNonVolumetric = errors.New("alpha complex has no measurable volume")

// hullEpsilon scales the numerical tolerance used for plane-side tests
// during hull construction. Distances are compared against
// hullEpsilon * (largest absolute coordinate).
const hullEpsilon = 1e-10

type vec3 struct{ x, y, z float64 }

func fromPoint(p pointcloud.Point) vec3 { return vec3{p.X, p.Y, p.Z} }

func sub(a, b vec3) vec3 { return vec3{a.x - b.x, a.y - b.y, a.z - b.z} }

func cross(a, b vec3) vec3 {
	return vec3{
		a.y*b.z - a.z*b.y,
		a.z*b.x - a.x*b.z,
		a.x*b.y - a.y*b.x,
	}
}

func dot(a, b vec3) float64 { return a.x*b.x + a.y*b.y + a.z*b.z }

func norm(a vec3) float64 { return math.Sqrt(dot(a, a)) }

func dist2(a, b vec3) float64 {
	d := sub(a, b)
	return dot(d, d)
}

// coordScale returns the largest absolute coordinate, used to make the
// degeneracy tolerances scale-relative.
func coordScale(pts []vec3) float64 {
	s := 1.0
	for _, p := range pts {
		for _, c := range []float64{p.x, p.y, p.z} {
			if a := math.Abs(c); a > s {
				s = a
			}
		}
	}
	return s
}

// tetraVolume returns the unsigned volume of the tetrahedron (a, b, c, d).
func tetraVolume(a, b, c, d vec3) float64 {
	v := dot(sub(b, a), cross(sub(c, a), sub(d, a))) / 6
	return math.Abs(v)
}
