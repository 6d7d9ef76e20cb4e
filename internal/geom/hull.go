package geom

import (
	"math"

	"github.com/banshee-data/volume.report/internal/pointcloud"
)

// hullFace is one triangular facet of a hull, vertices ordered so the face
// normal cross(b-a, c-a) points out of the hull.
type hullFace struct {
	a, b, c int
}

// ConvexHullVolume computes the enclosed volume of the 3D convex hull of the
// point set, in the cube of the input unit (m³ for meter inputs). The result
// is order-independent and deterministic for a fixed point set.
//
// Returns ErrDegenerateHull when no hull with volume exists: fewer than four
// points, or all points collinear/coplanar within tolerance.
func ConvexHullVolume(pts []pointcloud.Point) (float64, error) {
	faces, vs, err := convexHull(pts)
	if err != nil {
		return 0, err
	}

	// Divergence theorem over the closed, outward-oriented surface:
	// V = Σ dot(a, cross(b, c)) / 6.
	volume := 0.0
	for _, f := range faces {
		volume += dot(vs[f.a], cross(vs[f.b], vs[f.c]))
	}
	return volume / 6, nil
}

// convexHull builds the hull facets with an incremental insertion algorithm:
// seed a non-degenerate tetrahedron, then for each remaining point remove the
// facets it can see and re-triangulate the horizon against the point.
func convexHull(pts []pointcloud.Point) ([]hullFace, []vec3, error) {
	if len(pts) < 4 {
		return nil, nil, ErrDegenerateHull
	}

	vs := make([]vec3, len(pts))
	for i, p := range pts {
		vs[i] = fromPoint(p)
	}
	eps := hullEpsilon * coordScale(vs)

	i0, i1, i2, i3, err := initialSimplex(vs, eps)
	if err != nil {
		return nil, nil, err
	}

	faces := tetraFaces(vs, i0, i1, i2, i3)

	used := map[int]bool{i0: true, i1: true, i2: true, i3: true}
	for i := range vs {
		if used[i] {
			continue
		}
		faces = addPoint(faces, vs, i, eps)
	}
	return faces, vs, nil
}

// initialSimplex picks four points spanning a tetrahedron with volume:
// an extreme point, the farthest point from it, the farthest point from
// that line, and the farthest point from that plane.
func initialSimplex(vs []vec3, eps float64) (int, int, int, int, error) {
	i0 := 0
	for i, v := range vs {
		w := vs[i0]
		if v.x < w.x || (v.x == w.x && (v.y < w.y || (v.y == w.y && v.z < w.z))) {
			i0 = i
		}
	}

	i1, best := -1, eps
	for i, v := range vs {
		if d := norm(sub(v, vs[i0])); d > best {
			i1, best = i, d
		}
	}
	if i1 < 0 {
		return 0, 0, 0, 0, ErrDegenerateHull
	}

	// Farthest from the line i0-i1.
	dir := sub(vs[i1], vs[i0])
	dirLen := norm(dir)
	i2, best := -1, eps
	for i, v := range vs {
		d := norm(cross(dir, sub(v, vs[i0]))) / dirLen
		if d > best {
			i2, best = i, d
		}
	}
	if i2 < 0 {
		return 0, 0, 0, 0, ErrDegenerateHull
	}

	// Farthest from the plane i0-i1-i2.
	n := cross(sub(vs[i1], vs[i0]), sub(vs[i2], vs[i0]))
	nLen := norm(n)
	i3, best := -1, eps
	for i, v := range vs {
		d := math.Abs(dot(n, sub(v, vs[i0]))) / nLen
		if d > best {
			i3, best = i, d
		}
	}
	if i3 < 0 {
		return 0, 0, 0, 0, ErrDegenerateHull
	}
	return i0, i1, i2, i3, nil
}

// tetraFaces returns the four outward-oriented faces of the seed tetrahedron.
func tetraFaces(vs []vec3, i0, i1, i2, i3 int) []hullFace {
	faces := []hullFace{
		{i0, i1, i2},
		{i0, i1, i3},
		{i0, i2, i3},
		{i1, i2, i3},
	}
	opposite := []int{i3, i2, i1, i0}
	for f := range faces {
		fa := &faces[f]
		n := cross(sub(vs[fa.b], vs[fa.a]), sub(vs[fa.c], vs[fa.a]))
		if dot(n, sub(vs[opposite[f]], vs[fa.a])) > 0 {
			fa.b, fa.c = fa.c, fa.b
		}
	}
	return faces
}

// addPoint grows the hull with one point. Points inside (or on) the current
// hull leave it unchanged.
func addPoint(faces []hullFace, vs []vec3, p int, eps float64) []hullFace {
	visible := make([]bool, len(faces))
	any := false
	for f, face := range faces {
		n := cross(sub(vs[face.b], vs[face.a]), sub(vs[face.c], vs[face.a]))
		nLen := norm(n)
		if nLen == 0 {
			continue
		}
		if dot(n, sub(vs[p], vs[face.a]))/nLen > eps {
			visible[f] = true
			any = true
		}
	}
	if !any {
		return faces
	}

	// Horizon edges: directed edges of visible faces whose reverse does not
	// belong to another visible face. Keeping the visible-face direction
	// keeps the replacement faces outward-oriented.
	type edge struct{ u, v int }
	directed := make(map[edge]bool)
	for f, face := range faces {
		if !visible[f] {
			continue
		}
		directed[edge{face.a, face.b}] = true
		directed[edge{face.b, face.c}] = true
		directed[edge{face.c, face.a}] = true
	}

	next := faces[:0:0]
	for f, face := range faces {
		if !visible[f] {
			next = append(next, face)
		}
	}
	// Walk visible faces in slice order (not map order) so the facet list,
	// and therefore the volume summation order, is deterministic.
	for f, face := range faces {
		if !visible[f] {
			continue
		}
		for _, e := range [3]edge{{face.a, face.b}, {face.b, face.c}, {face.c, face.a}} {
			if !directed[edge{e.v, e.u}] {
				next = append(next, hullFace{e.u, e.v, p})
			}
		}
	}
	return next
}
