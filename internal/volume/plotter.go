package volume

import (
	"fmt"
	"os"
	"path/filepath"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/banshee-data/volume.report/internal/pointcloud"
)

// samplingHistogramBins is the bin count for diagnostic histograms. Coarse
// on purpose: the plots are a visual sanity check of the sampling laws, not
// the statistical test (that lives in the sampler tests).
const samplingHistogramBins = 20

// WriteSamplingDiagnostics renders histograms of the sampled distributions
// to PNG files under dir: squared radius per disk group (uniform on [0, R²]
// for uniform-area sampling) and z per wall group (uniform on [0, height]).
// The directory is created if needed.
func WriteSamplingDiagnostics(dir string, sets ...pointcloud.PointSet) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create plot dir: %w", err)
	}

	for _, set := range sets {
		if set.Len() == 0 {
			continue
		}
		var vals plotter.Values
		var title, stem string
		switch set.Role {
		case pointcloud.RoleWall:
			for _, p := range set.Points {
				vals = append(vals, p.Z)
			}
			title = "wall sample height distribution"
			stem = "wall_z_hist"
		case pointcloud.RoleBottom, pointcloud.RoleFillSurface:
			for _, p := range set.Points {
				vals = append(vals, p.X*p.X+p.Y*p.Y)
			}
			title = fmt.Sprintf("%s squared-radius distribution", set.Role)
			stem = fmt.Sprintf("%s_r2_hist", set.Role)
		default:
			continue
		}

		pl := plot.New()
		pl.Title.Text = title
		pl.Y.Label.Text = "count"
		h, err := plotter.NewHist(vals, samplingHistogramBins)
		if err != nil {
			return fmt.Errorf("histogram for %s: %w", set.Role, err)
		}
		pl.Add(h)

		out := filepath.Join(dir, stem+".png")
		if err := pl.Save(6*vg.Inch, 4*vg.Inch, out); err != nil {
			return fmt.Errorf("save %s: %w", out, err)
		}
	}
	return nil
}
