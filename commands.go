package main

import (
	"encoding/json"
	"fmt"
	"log"
	"os"

	"github.com/banshee-data/volume.report/internal/config"
	"github.com/banshee-data/volume.report/internal/pointcloud"
	"github.com/banshee-data/volume.report/internal/units"
	"github.com/banshee-data/volume.report/internal/volume"
)

// runScan executes one pipeline invocation from a resolved config.
// withAlpha toggles the alpha-shape fill estimator; plotDir, when set, also
// writes sampling-diagnostic histograms for the three groups.
func runScan(cfg *config.ScanConfig, withAlpha bool, plotDir string) (*volume.Report, error) {
	params := volume.Params{
		Geometry: volume.Geometry{
			Radius: cfg.GetBucketRadius(),
			Height: cfg.GetBucketHeight(),
		},
		Fill: volume.FillState{Ratio: cfg.GetFillRatio()},
		Sampling: volume.SamplingSpec{
			WallPoints:        cfg.GetNumPointsWall(),
			BottomPoints:      cfg.GetNumPointsBottom(),
			FillSurfacePoints: cfg.GetNumPointsFillSurface(),
			Seed:              cfg.GetSeed(),
		},
	}
	if withAlpha {
		alpha := cfg.GetAlphaValue()
		params.Alpha = &alpha
	}

	report, err := volume.Run(params)
	if err != nil {
		return nil, err
	}

	if plotDir != "" {
		if err := writeDiagnostics(params, plotDir); err != nil {
			// Diagnostics are best-effort; the scan itself succeeded.
			log.Printf("Failed to write sampling diagnostics: %v", err)
		}
	}
	return report, nil
}

// writeDiagnostics re-samples the three groups from their derived sources
// (identical to the pipeline's draw) and plots their distributions.
func writeDiagnostics(p volume.Params, dir string) error {
	seed := p.Sampling.Seed
	wall, err := pointcloud.SampleLateralSurface(p.Geometry.Radius, p.Geometry.Height,
		p.Sampling.WallPoints, pointcloud.GroupSource(seed, pointcloud.RoleWall))
	if err != nil {
		return err
	}
	bottom, err := pointcloud.SampleDisk(p.Geometry.Radius, 0,
		p.Sampling.BottomPoints, pointcloud.RoleBottom, pointcloud.GroupSource(seed, pointcloud.RoleBottom))
	if err != nil {
		return err
	}
	surface, err := pointcloud.SampleDisk(p.Geometry.Radius, p.Fill.Ratio*p.Geometry.Height,
		p.Sampling.FillSurfacePoints, pointcloud.RoleFillSurface, pointcloud.GroupSource(seed, pointcloud.RoleFillSurface))
	if err != nil {
		return err
	}
	return volume.WriteSamplingDiagnostics(dir, wall, bottom, surface)
}

// writeDocument writes the report JSON document consumed by the viewer.
func writeDocument(report *volume.Report, path string) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// printSummary prints the headline volumes in the requested unit: capacity
// and fill, per estimator.
func printSummary(report *volume.Report, path, unit string) {
	m := report.Metadata
	fmt.Printf("Saved %s\n", path)
	fmt.Printf("Bucket capacity: %s\n", formatVolume(m.AnalyticCapacityM3, m.AnalyticCapacityLiters, unit))
	fmt.Printf("Analytic fill: %s\n", formatVolume(m.AnalyticFillM3, m.AnalyticFillLiters, unit))
	if m.ConvexHullFillM3 != nil {
		fmt.Printf("Convex-hull fill volume: %s\n", formatVolume(*m.ConvexHullFillM3, *m.ConvexHullFillLiters, unit))
	}
	if m.AlphaShapeFillM3 != nil {
		note := ""
		if m.AlphaFallback {
			note = " (convex-hull fallback)"
		}
		fmt.Printf("Alpha-shape fill volume: %s%s\n", formatVolume(*m.AlphaShapeFillM3, *m.AlphaShapeFillLiters, unit), note)
	}
	for slot, reason := range report.EstimatorErrors {
		fmt.Printf("Estimator %s failed: %s\n", slot, reason)
	}
}

// formatVolume renders one rounded volume pair in the requested unit at that
// unit's display precision.
func formatVolume(m3, liters float64, unit string) string {
	if unit == units.CubicMeters {
		return fmt.Sprintf("%.*f m3", units.CubicMeterPrecision, m3)
	}
	return fmt.Sprintf("%.*f L", units.LiterPrecision, liters)
}
