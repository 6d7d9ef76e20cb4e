package volume

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testParams() Params {
	alpha := 2.0
	return Params{
		Geometry: Geometry{Radius: 0.1, Height: 0.2},
		Fill:     FillState{Ratio: 0.5},
		Sampling: SamplingSpec{WallPoints: 400, BottomPoints: 300, FillSurfacePoints: 300, Seed: 0},
		Alpha:    &alpha,
	}
}

func TestRunSmallBucketScenario(t *testing.T) {
	report, err := Run(testParams())
	require.NoError(t, err)

	// Analytic values for radius 0.1 m, height 0.2 m, half full.
	m := report.Metadata
	assert.Equal(t, 0.006283, m.AnalyticCapacityM3)
	assert.Equal(t, 6.283, m.AnalyticCapacityLiters)
	assert.Equal(t, 0.003142, m.AnalyticFillM3)
	assert.Equal(t, 3.142, m.AnalyticFillLiters)

	require.NotNil(t, m.ConvexHullFullM3)
	require.NotNil(t, m.ConvexHullFillM3)
	require.NotNil(t, m.AlphaShapeFillM3)
	assert.False(t, m.AlphaFallback)
	assert.Empty(t, report.EstimatorErrors)

	// Hulls of sampled points stay inside the analytic solids.
	assert.LessOrEqual(t, *m.ConvexHullFullM3, m.AnalyticCapacityM3)
	assert.LessOrEqual(t, *m.ConvexHullFillM3, m.AnalyticFillM3)
	assert.LessOrEqual(t, *m.AlphaShapeFillM3, *m.ConvexHullFillM3)

	// Derived liter values are the m³ values × 1000 within rounding.
	assert.InDelta(t, *m.ConvexHullFullM3*1000, *m.ConvexHullFullLiters, 0.001)

	// Payload composition: empty = wall ∪ bottom, full = empty ∪ fill.
	assert.Len(t, report.EmptyBucket, 700)
	assert.Len(t, report.FillSurface, 300)
	assert.Len(t, report.FullBucket, 1000)
	assert.Equal(t, report.EmptyBucket[0], report.FullBucket[0])
	assert.Equal(t, report.FillSurface[0], report.FullBucket[700])
}

func TestRunFullVesselScenario(t *testing.T) {
	p := testParams()
	p.Geometry = Geometry{Radius: 1, Height: 1}
	p.Fill = FillState{Ratio: 1}
	p.Alpha = nil

	report, err := Run(p)
	require.NoError(t, err)

	m := report.Metadata
	assert.Equal(t, 3.141593, m.AnalyticCapacityM3)
	assert.Equal(t, m.AnalyticCapacityM3, m.AnalyticFillM3, "full vessel fill equals capacity")
	assert.Nil(t, m.AlphaShapeFillM3, "alpha estimator disabled")
	assert.Nil(t, m.AlphaValue)
}

func TestRunReproducible(t *testing.T) {
	a, err := Run(testParams())
	require.NoError(t, err)
	b, err := Run(testParams())
	require.NoError(t, err)

	if diff := cmp.Diff(a, b); diff != "" {
		t.Errorf("same params produced different reports (-first +second):\n%s", diff)
	}
}

func TestRunSeedChangesPoints(t *testing.T) {
	p := testParams()
	a, err := Run(p)
	require.NoError(t, err)

	p.Sampling.Seed = 1
	b, err := Run(p)
	require.NoError(t, err)

	assert.NotEqual(t, a.EmptyBucket[0], b.EmptyBucket[0])
}

func TestRunConfigurationErrorsAreFatal(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Params)
	}{
		{"zero radius", func(p *Params) { p.Geometry.Radius = 0 }},
		{"negative height", func(p *Params) { p.Geometry.Height = -1 }},
		{"fill ratio above one", func(p *Params) { p.Fill.Ratio = 1.5 }},
		{"zero wall points", func(p *Params) { p.Sampling.WallPoints = 0 }},
		{"negative bottom points", func(p *Params) { p.Sampling.BottomPoints = -1 }},
		{"non-positive alpha", func(p *Params) { a := -2.0; p.Alpha = &a }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := testParams()
			tt.mutate(&p)
			report, err := Run(p)
			require.Error(t, err)
			assert.Nil(t, report, "configuration errors must not produce partial reports")
		})
	}
}

func TestRunIsolatesEstimatorFailures(t *testing.T) {
	// An empty vessel puts bottom and fill-surface points on the same
	// plane: the fill-region estimators degenerate while the full-vessel
	// hull and the analytic values survive.
	p := testParams()
	p.Fill = FillState{Ratio: 0}

	report, err := Run(p)
	require.NoError(t, err)

	m := report.Metadata
	assert.Equal(t, 0.0, m.AnalyticFillM3)
	require.NotNil(t, m.ConvexHullFullM3)
	assert.Nil(t, m.ConvexHullFillM3, "failed slot must stay empty, not zero-filled")
	assert.Nil(t, m.AlphaShapeFillM3)

	assert.Contains(t, report.EstimatorErrors, SlotConvexHullFill)
	assert.Contains(t, report.EstimatorErrors, SlotAlphaShapeFill)
	assert.NotContains(t, report.EstimatorErrors, SlotConvexHullFull)
}

func TestRunTagsAlphaFallback(t *testing.T) {
	p := testParams()
	tight := 1e6
	p.Alpha = &tight

	report, err := Run(p)
	require.NoError(t, err)

	m := report.Metadata
	require.NotNil(t, m.AlphaShapeFillM3)
	assert.True(t, m.AlphaFallback, "degraded estimate must be distinguishable")
	assert.Equal(t, *m.ConvexHullFillM3, *m.AlphaShapeFillM3,
		"fallback reuses the hull volume of the same point set")
}

func TestReportJSONContract(t *testing.T) {
	report, err := Run(testParams())
	require.NoError(t, err)

	raw, err := json.Marshal(report)
	require.NoError(t, err)

	var doc map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(raw, &doc))
	for _, key := range []string{"metadata", "empty_bucket", "fill_surface", "full_bucket"} {
		assert.Contains(t, doc, key)
	}

	var meta map[string]any
	require.NoError(t, json.Unmarshal(doc["metadata"], &meta))
	for _, key := range []string{
		"bucket_radius", "bucket_height", "fill_ratio",
		"num_points_wall", "num_points_bottom", "num_points_fill_surface",
		"alpha_value", "analytic_capacity_m3", "analytic_capacity_liters",
		"analytic_fill_m3", "analytic_fill_liters",
		"convex_hull_full_m3", "convex_hull_full_liters",
		"convex_hull_fill_m3", "alpha_shape_fill_m3",
	} {
		assert.Contains(t, meta, key)
	}
	assert.NotContains(t, meta, "alpha_fallback", "omitted unless a fallback happened")
}
