package pointcloud

import (
	"fmt"
	"hash/fnv"
	"math"
	"math/rand"
)

// NewSource creates a seeded random source for sampling. Each sampling call
// receives its own source; nothing in this package touches the global
// math/rand state.
func NewSource(seed int64) *rand.Rand {
	return rand.New(rand.NewSource(seed))
}

// GroupSource derives an independent source for one sampling group from the
// top-level scan seed. The derivation is a pure function of (seed, role), so
// groups may be sampled concurrently without sharing a generator and still
// reproduce bit-identically.
func GroupSource(seed int64, role Role) *rand.Rand {
	h := fnv.New64a()
	h.Write([]byte(role))
	return NewSource(seed ^ int64(h.Sum64()))
}

// SampleLateralSurface draws count points uniformly over the lateral surface
// of a cylinder with the given radius and height. Angle and height are each
// uniform in the surface's flat parameterization, which is uniform-area
// sampling for a cylinder wall.
func SampleLateralSurface(radius, height float64, count int, rng *rand.Rand) (PointSet, error) {
	if radius < 0 {
		return PointSet{}, fmt.Errorf("sample lateral surface: negative radius %v", radius)
	}
	if height < 0 {
		return PointSet{}, fmt.Errorf("sample lateral surface: negative height %v", height)
	}
	if count < 0 {
		return PointSet{}, fmt.Errorf("sample lateral surface: negative count %d", count)
	}

	set := PointSet{Role: RoleWall, Points: make([]Point, count)}
	for i := 0; i < count; i++ {
		theta := rng.Float64() * 2 * math.Pi
		z := rng.Float64() * height
		set.Points[i] = Point{
			X: radius * math.Cos(theta),
			Y: radius * math.Sin(theta),
			Z: z,
		}
	}
	return set, nil
}

// SampleDisk draws count points uniformly by area over a horizontal disk of
// the given radius at height z. Radius is drawn as radius·sqrt(u) so the
// center is not over-sampled. The same law serves the vessel bottom (z = 0)
// and the fill surface (z = fillRatio·height); callers pass the role.
func SampleDisk(radius, z float64, count int, role Role, rng *rand.Rand) (PointSet, error) {
	if radius < 0 {
		return PointSet{}, fmt.Errorf("sample disk: negative radius %v", radius)
	}
	if count < 0 {
		return PointSet{}, fmt.Errorf("sample disk: negative count %d", count)
	}

	set := PointSet{Role: role, Points: make([]Point, count)}
	for i := 0; i < count; i++ {
		r := radius * math.Sqrt(rng.Float64())
		theta := rng.Float64() * 2 * math.Pi
		set.Points[i] = Point{
			X: r * math.Cos(theta),
			Y: r * math.Sin(theta),
			Z: z,
		}
	}
	return set, nil
}
