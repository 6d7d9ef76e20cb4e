package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
)

// viewerMaxPoints caps the number of rendered points per group so viewer
// pages stay responsive; the stored payload is untouched.
const viewerMaxPoints = 8000

// reportPayload is the viewer's read-side of the report document. It
// tolerates any group being absent or empty and accepts the fill_points
// alias for the fill surface.
type reportPayload struct {
	EmptyBucket [][3]float64 `json:"empty_bucket"`
	FillSurface [][3]float64 `json:"fill_surface"`
	FillPoints  [][3]float64 `json:"fill_points"`
	FullBucket  [][3]float64 `json:"full_bucket"`
}

func (p *reportPayload) fillGroup() [][3]float64 {
	if len(p.FillSurface) > 0 {
		return p.FillSurface
	}
	return p.FillPoints
}

// handleViewer renders a 3D scatter page for a stored scan
// (GET /view/{id}?max_points=N). Each point group is its own toggleable
// series in the chart legend.
func (s *Server) handleViewer(w http.ResponseWriter, r *http.Request) {
	scanID := strings.TrimPrefix(r.URL.Path, "/view/")
	if scanID == "" {
		s.writeJSONError(w, http.StatusBadRequest, "missing scan id")
		return
	}
	scan, err := s.store.GetScan(scanID)
	if err != nil {
		s.writeJSONError(w, http.StatusNotFound, err.Error())
		return
	}

	maxPoints := viewerMaxPoints
	if mp := r.URL.Query().Get("max_points"); mp != "" {
		if v, err := strconv.Atoi(mp); err == nil && v > 100 && v <= 50000 {
			maxPoints = v
		}
	}

	var payload reportPayload
	if err := json.Unmarshal(scan.PayloadJSON, &payload); err != nil {
		s.writeJSONError(w, http.StatusInternalServerError, fmt.Sprintf("decode payload: %v", err))
		return
	}

	scatter := charts.NewScatter3D()
	scatter.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			PageTitle: "Point Cloud Viewer",
			Width:     "1000px",
			Height:    "800px",
		}),
		charts.WithTitleOpts(opts.Title{
			Title: "Point Cloud Viewer",
			Subtitle: fmt.Sprintf("scan=%s radius=%.3gm height=%.3gm fill=%.0f%%",
				scan.ScanID, scan.Metadata.BucketRadius, scan.Metadata.BucketHeight,
				scan.Metadata.FillRatio*100),
		}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
	)

	groups := []struct {
		name   string
		points [][3]float64
	}{
		{"empty_bucket", payload.EmptyBucket},
		{"fill_surface", payload.fillGroup()},
		{"full_bucket", payload.FullBucket},
	}
	for _, g := range groups {
		if len(g.points) == 0 {
			continue
		}
		scatter.AddSeries(g.name, chart3DData(g.points, maxPoints))
	}

	var buf bytes.Buffer
	if err := scatter.Render(&buf); err != nil {
		s.writeJSONError(w, http.StatusInternalServerError, fmt.Sprintf("render chart: %v", err))
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(buf.Bytes())
}

// chart3DData converts point rows to chart data, downsampling by stride to
// stay within maxPoints.
func chart3DData(points [][3]float64, maxPoints int) []opts.Chart3DData {
	stride := 1
	if len(points) > maxPoints {
		stride = int(math.Ceil(float64(len(points)) / float64(maxPoints)))
	}
	data := make([]opts.Chart3DData, 0, len(points)/stride+1)
	for i := 0; i < len(points); i += stride {
		p := points[i]
		data = append(data, opts.Chart3DData{Value: []interface{}{p[0], p[1], p[2]}})
	}
	return data
}
