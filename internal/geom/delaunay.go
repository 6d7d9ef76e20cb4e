package geom

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// tetrahedron is one cell of a Delaunay triangulation, with its circumsphere
// cached for in-sphere tests and alpha filtering.
type tetrahedron struct {
	v      [4]int
	center vec3
	r2     float64 // squared circumradius
}

// circumsphere computes the center and squared radius of the sphere through
// the four vertices. Solving 2(pi-p0)·c = |pi|²-|p0|² for i = 1..3 gives the
// center; a singular system means the vertices are coplanar.
func circumsphere(vs []vec3, a, b, c, d int) (vec3, float64, error) {
	p0 := vs[a]
	rows := [3]vec3{sub(vs[b], p0), sub(vs[c], p0), sub(vs[d], p0)}

	m := mat.NewDense(3, 3, []float64{
		2 * rows[0].x, 2 * rows[0].y, 2 * rows[0].z,
		2 * rows[1].x, 2 * rows[1].y, 2 * rows[1].z,
		2 * rows[2].x, 2 * rows[2].y, 2 * rows[2].z,
	})
	rhs := mat.NewVecDense(3, []float64{
		dot(vs[b], vs[b]) - dot(p0, p0),
		dot(vs[c], vs[c]) - dot(p0, p0),
		dot(vs[d], vs[d]) - dot(p0, p0),
	})

	var sol mat.VecDense
	if err := sol.SolveVec(m, rhs); err != nil {
		// Ill-conditioned slivers still produce a usable (huge) circumsphere;
		// only an exactly singular system is a construction failure.
		if _, ok := err.(mat.Condition); !ok {
			return vec3{}, 0, fmt.Errorf("circumsphere: %w", err)
		}
	}
	center := vec3{sol.AtVec(0), sol.AtVec(1), sol.AtVec(2)}
	for _, c := range []float64{center.x, center.y, center.z} {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return vec3{}, 0, fmt.Errorf("circumsphere: coplanar vertices")
		}
	}
	return center, dist2(center, p0), nil
}

// triKey is an undirected triangular face, used to find the boundary of the
// cavity carved out during point insertion.
type triKey struct{ a, b, c int }

func newTriKey(a, b, c int) triKey {
	if a > b {
		a, b = b, a
	}
	if b > c {
		b, c = c, b
	}
	if a > b {
		a, b = b, a
	}
	return triKey{a, b, c}
}

// delaunay triangulates the points with Bowyer-Watson insertion: each point
// removes the tetrahedra whose circumsphere contains it and re-fills the
// cavity with tetrahedra joining the point to the cavity's boundary faces.
// Returns the tetrahedra that use only input points (super-tetrahedron cells
// are discarded).
func delaunay(vs []vec3) ([]tetrahedron, error) {
	n := len(vs)
	if n < 4 {
		return nil, ErrDegenerateHull
	}

	work := make([]vec3, n, n+4)
	copy(work, vs)
	work = appendSuperTetra(work)

	first, err := makeTetra(work, n, n+1, n+2, n+3)
	if err != nil {
		return nil, err
	}
	tets := []tetrahedron{first}

	for p := 0; p < n; p++ {
		tets, err = insertPoint(work, tets, p)
		if err != nil {
			return nil, fmt.Errorf("insert point %d: %w", p, err)
		}
	}

	// Drop every cell touching the super-tetrahedron.
	kept := tets[:0:0]
	for _, t := range tets {
		if t.v[0] < n && t.v[1] < n && t.v[2] < n && t.v[3] < n {
			kept = append(kept, t)
		}
	}
	if len(kept) == 0 {
		return nil, ErrDegenerateHull
	}
	return kept, nil
}

// appendSuperTetra appends four vertices forming a tetrahedron that strictly
// contains every input point, with generous margin.
func appendSuperTetra(vs []vec3) []vec3 {
	lo := vs[0]
	hi := vs[0]
	for _, v := range vs {
		lo = vec3{math.Min(lo.x, v.x), math.Min(lo.y, v.y), math.Min(lo.z, v.z)}
		hi = vec3{math.Max(hi.x, v.x), math.Max(hi.y, v.y), math.Max(hi.z, v.z)}
	}
	center := vec3{(lo.x + hi.x) / 2, (lo.y + hi.y) / 2, (lo.z + hi.z) / 2}
	span := norm(sub(hi, lo))
	if span == 0 {
		span = 1
	}
	k := 20 * span
	return append(vs,
		vec3{center.x + k, center.y + k, center.z + k},
		vec3{center.x + k, center.y - k, center.z - k},
		vec3{center.x - k, center.y + k, center.z - k},
		vec3{center.x - k, center.y - k, center.z + k},
	)
}

func makeTetra(vs []vec3, a, b, c, d int) (tetrahedron, error) {
	center, r2, err := circumsphere(vs, a, b, c, d)
	if err != nil {
		return tetrahedron{}, err
	}
	return tetrahedron{v: [4]int{a, b, c, d}, center: center, r2: r2}, nil
}

func insertPoint(vs []vec3, tets []tetrahedron, p int) ([]tetrahedron, error) {
	point := vs[p]

	// Cavity: every tetrahedron whose circumsphere strictly contains the
	// point. Boundary faces are those shared by exactly one cavity cell.
	faceCount := make(map[triKey]int)
	kept := tets[:0:0]
	carved := false
	for _, t := range tets {
		if dist2(point, t.center) < t.r2 {
			carved = true
			faceCount[newTriKey(t.v[0], t.v[1], t.v[2])]++
			faceCount[newTriKey(t.v[0], t.v[1], t.v[3])]++
			faceCount[newTriKey(t.v[0], t.v[2], t.v[3])]++
			faceCount[newTriKey(t.v[1], t.v[2], t.v[3])]++
		} else {
			kept = append(kept, t)
		}
	}
	if !carved {
		return nil, fmt.Errorf("point lies outside all circumspheres")
	}

	// Deterministic fill: faces of the removed cells are revisited in cell
	// order; map access is membership-only.
	for _, t := range tets {
		if dist2(point, t.center) >= t.r2 {
			continue
		}
		for _, f := range [4]triKey{
			newTriKey(t.v[0], t.v[1], t.v[2]),
			newTriKey(t.v[0], t.v[1], t.v[3]),
			newTriKey(t.v[0], t.v[2], t.v[3]),
			newTriKey(t.v[1], t.v[2], t.v[3]),
		} {
			if faceCount[f] != 1 {
				continue
			}
			faceCount[f] = -1 // fill each boundary face once
			nt, err := makeTetra(vs, f.a, f.b, f.c, p)
			if err != nil {
				return nil, err
			}
			kept = append(kept, nt)
		}
	}
	return kept, nil
}
