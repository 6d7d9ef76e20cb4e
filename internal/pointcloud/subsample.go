package pointcloud

import "math/rand"

// Subsample returns a uniform subsample of exactly max points drawn without
// replacement from set, using the supplied source. If the set already fits
// within max the original set is returned unchanged.
//
// Selection uses a partial Fisher-Yates shuffle over an index slice, so for
// a fixed input and seed the subsample is identical across runs. The
// estimators rely on this to keep capped alpha-shape volumes reproducible.
func Subsample(set PointSet, max int, rng *rand.Rand) PointSet {
	n := len(set.Points)
	if max <= 0 || n <= max {
		return set
	}

	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	for i := 0; i < max; i++ {
		j := i + rng.Intn(n-i)
		idx[i], idx[j] = idx[j], idx[i]
	}

	out := PointSet{Role: set.Role, Points: make([]Point, max)}
	for i := 0; i < max; i++ {
		out.Points[i] = set.Points[idx[i]]
	}
	return out
}
