// Package pointcloud provides 3D point types and the synthetic samplers used
// to build LiDAR-style scans of a cylindrical vessel. All sampling takes an
// explicit seeded random source so point sets are reproducible and groups can
// be drawn independently (and in parallel) from derived sources.
package pointcloud

// Role identifies which logical surface of the vessel a point set samples.
type Role string

const (
	// RoleWall marks points on the cylinder's lateral surface.
	RoleWall Role = "wall"
	// RoleBottom marks points on the vessel floor disk (z = 0).
	RoleBottom Role = "bottom"
	// RoleFillSurface marks points on the contents' top surface disk.
	RoleFillSurface Role = "fill_surface"
	// RoleComposed marks point sets built by merging sampled groups.
	RoleComposed Role = "composed"
)

// Point is a single sample in Cartesian coordinates (meters). Points have no
// identity beyond their value.
type Point struct {
	X, Y, Z float64
}

// PointSet is an ordered sequence of points tagged with the surface role it
// was sampled from. Estimators are order-independent; the ordering exists
// only so repeated runs with the same seed emit byte-identical output.
type PointSet struct {
	Role   Role
	Points []Point
}

// Len returns the number of points in the set.
func (s PointSet) Len() int { return len(s.Points) }

// Merge concatenates sets into a new composed set. Inputs are not modified;
// point order follows the argument order so composition is deterministic.
func Merge(sets ...PointSet) PointSet {
	total := 0
	for _, s := range sets {
		total += len(s.Points)
	}
	merged := PointSet{Role: RoleComposed, Points: make([]Point, 0, total)}
	for _, s := range sets {
		merged.Points = append(merged.Points, s.Points...)
	}
	return merged
}

// Triples converts the set to [x, y, z] rows for the report payload.
func (s PointSet) Triples() [][3]float64 {
	rows := make([][3]float64, len(s.Points))
	for i, p := range s.Points {
		rows[i] = [3]float64{p.X, p.Y, p.Z}
	}
	return rows
}
