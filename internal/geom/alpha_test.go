package geom

import (
	"errors"
	"fmt"
	"testing"

	"github.com/banshee-data/volume.report/internal/testutil"
)

func TestAlphaShapeMatchesHullWhenPermissive(t *testing.T) {
	// With a circumradius bound far beyond the cloud's extent the alpha
	// complex keeps every Delaunay cell, so its volume is the hull volume.
	pts := randomCloud(150, 41)

	hull, err := ConvexHullVolume(pts)
	if err != nil {
		t.Fatalf("hull error: %v", err)
	}
	alpha, err := AlphaShapeVolume(pts, 0.01) // radius bound 100
	if err != nil {
		t.Fatalf("alpha error: %v", err)
	}
	testutil.AssertInTolerance(t, alpha, hull, 1e-6*hull)
}

func TestAlphaShapeNeverExceedsHull(t *testing.T) {
	for _, alpha := range []float64{0.5, 2, 5, 10} {
		pts := randomCloud(200, 57)
		hull, err := ConvexHullVolume(pts)
		if err != nil {
			t.Fatalf("hull error: %v", err)
		}
		vol, err := AlphaShapeVolume(pts, alpha)
		if errors.Is(err, ErrNonVolumetric) {
			continue // fully pruned is a valid outcome at tight alphas
		}
		if err != nil {
			t.Fatalf("alpha %v error: %v", alpha, err)
		}
		if vol > hull+1e-9 {
			t.Errorf("alpha %v volume %v exceeds hull %v", alpha, vol, hull)
		}
	}
}

func TestAlphaShapeFullyPruned(t *testing.T) {
	// A radius bound far smaller than any cell prunes every tetrahedron.
	_, err := AlphaShapeVolume(randomCloud(80, 3), 1e6)
	if !errors.Is(err, ErrNonVolumetric) {
		t.Errorf("err = %v, want ErrNonVolumetric", err)
	}
}

func TestAlphaShapeDegenerateInput(t *testing.T) {
	pts := randomCloud(3, 1)
	_, err := AlphaShapeVolume(pts, 2)
	if !errors.Is(err, ErrDegenerateHull) {
		t.Errorf("err = %v, want ErrDegenerateHull", err)
	}
}

func TestAlphaShapeRejectsNonPositiveAlpha(t *testing.T) {
	for _, alpha := range []float64{0, -1} {
		t.Run(fmt.Sprintf("alpha=%v", alpha), func(t *testing.T) {
			_, err := AlphaShapeVolume(randomCloud(10, 1), alpha)
			testutil.AssertError(t, err)
		})
	}
}

func TestAlphaShapeReproducible(t *testing.T) {
	pts := randomCloud(120, 77)
	a, err := AlphaShapeVolume(pts, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b, err := AlphaShapeVolume(pts, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if a != b {
		t.Errorf("same input produced %v then %v", a, b)
	}
}
