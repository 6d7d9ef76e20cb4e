package volume

import (
	"fmt"

	"github.com/banshee-data/volume.report/internal/pointcloud"
	"github.com/banshee-data/volume.report/internal/units"
)

// Params carries everything one scan invocation needs. Alpha enables the
// alpha-shape fill estimator when non-nil.
type Params struct {
	Geometry Geometry
	Fill     FillState
	Sampling SamplingSpec
	Alpha    *float64

	// MaxAlphaPoints overrides the alpha subsample cap when non-zero.
	// Used by tests; production scans keep the default.
	MaxAlphaPoints int
}

// Validate checks all configuration up front. A failure here is fatal to the
// invocation; nothing is sampled.
func (p Params) Validate() error {
	if err := p.Geometry.Validate(); err != nil {
		return err
	}
	if err := p.Fill.Validate(); err != nil {
		return err
	}
	if err := p.Sampling.Validate(); err != nil {
		return err
	}
	if p.Alpha != nil && *p.Alpha <= 0 {
		return fmt.Errorf("alpha must be positive, got %v", *p.Alpha)
	}
	return nil
}

// Run executes one scan: sample the three surface groups, compose the
// reportable point sets, compute the analytic reference, run the estimators
// and assemble the report.
//
// Estimator failures are isolated: a degenerate hull or failed alpha shape
// leaves its slot empty and records the reason under EstimatorErrors while
// the rest of the report is still produced. Only configuration errors fail
// the whole run.
func Run(p Params) (*Report, error) {
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("scan configuration: %w", err)
	}

	geo := p.Geometry
	fillHeight := p.Fill.Ratio * geo.Height
	seed := p.Sampling.Seed

	// Each group samples from its own derived source, so the groups are
	// independent and could run concurrently without changing the output.
	wall, err := pointcloud.SampleLateralSurface(geo.Radius, geo.Height,
		p.Sampling.WallPoints, pointcloud.GroupSource(seed, pointcloud.RoleWall))
	if err != nil {
		return nil, err
	}
	bottom, err := pointcloud.SampleDisk(geo.Radius, 0,
		p.Sampling.BottomPoints, pointcloud.RoleBottom, pointcloud.GroupSource(seed, pointcloud.RoleBottom))
	if err != nil {
		return nil, err
	}
	fillSurface, err := pointcloud.SampleDisk(geo.Radius, fillHeight,
		p.Sampling.FillSurfacePoints, pointcloud.RoleFillSurface, pointcloud.GroupSource(seed, pointcloud.RoleFillSurface))
	if err != nil {
		return nil, err
	}

	emptyBucket := pointcloud.Merge(wall, bottom)
	fullBucket := pointcloud.Merge(emptyBucket, fillSurface)
	fillRegion := pointcloud.Merge(bottom, fillSurface)

	capacity := Capacity(geo)
	fill := FillVolume(capacity, p.Fill)

	report := &Report{
		Metadata: Metadata{
			BucketRadius:           geo.Radius,
			BucketHeight:           geo.Height,
			FillRatio:              p.Fill.Ratio,
			NumPointsWall:          p.Sampling.WallPoints,
			NumPointsBottom:        p.Sampling.BottomPoints,
			NumPointsFillSurface:   p.Sampling.FillSurfacePoints,
			AlphaValue:             p.Alpha,
			AnalyticCapacityM3:     units.RoundCubicMeters(capacity),
			AnalyticCapacityLiters: units.RoundLiters(units.ToLiters(capacity)),
			AnalyticFillM3:         units.RoundCubicMeters(fill),
			AnalyticFillLiters:     units.RoundLiters(units.ToLiters(fill)),
		},
		EmptyBucket: emptyBucket.Triples(),
		FillSurface: fillSurface.Triples(),
		FullBucket:  fullBucket.Triples(),
	}

	recordFailure := func(slot string, err error) {
		if report.EstimatorErrors == nil {
			report.EstimatorErrors = make(map[string]string)
		}
		report.EstimatorErrors[slot] = err.Error()
	}

	hull := HullEstimator{}
	if est, err := hull.Estimate(fullBucket); err != nil {
		recordFailure(SlotConvexHullFull, err)
	} else {
		report.Estimates = append(report.Estimates, est)
		setSlot(&report.Metadata.ConvexHullFullM3, &report.Metadata.ConvexHullFullLiters, est.VolumeM3)
	}
	if est, err := hull.Estimate(fillRegion); err != nil {
		recordFailure(SlotConvexHullFill, err)
	} else {
		report.Estimates = append(report.Estimates, est)
		setSlot(&report.Metadata.ConvexHullFillM3, &report.Metadata.ConvexHullFillLiters, est.VolumeM3)
	}

	if p.Alpha != nil {
		alphaEst := AlphaShapeEstimator{
			Alpha:     *p.Alpha,
			MaxPoints: p.MaxAlphaPoints,
			Seed:      seed,
		}
		if est, err := alphaEst.Estimate(fillRegion); err != nil {
			recordFailure(SlotAlphaShapeFill, err)
		} else {
			report.Estimates = append(report.Estimates, est)
			setSlot(&report.Metadata.AlphaShapeFillM3, &report.Metadata.AlphaShapeFillLiters, est.VolumeM3)
			report.Metadata.AlphaFallback = est.Degraded
		}
	}

	return report, nil
}
