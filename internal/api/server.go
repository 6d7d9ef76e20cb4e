// Package api serves scan reports to external collaborators: JSON endpoints
// for the report contract and an HTML point-cloud viewer.
package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/banshee-data/volume.report/internal/db"
	"github.com/banshee-data/volume.report/internal/monitoring"
	"github.com/banshee-data/volume.report/internal/volume"
)

// Server exposes stored scans and runs ad-hoc ones.
type Server struct {
	store *db.ScanStore
}

// NewServer creates a Server over the given scan store.
func NewServer(store *db.ScanStore) *Server {
	return &Server{store: store}
}

// Routes registers all handlers on a new mux.
func (s *Server) Routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/scans", s.handleScans)
	mux.HandleFunc("/api/scans/", s.handleScanByID)
	mux.HandleFunc("/api/scan", s.handleRunScan)
	mux.HandleFunc("/view/", s.handleViewer)
	return mux
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		monitoring.Logf("write response: %v", err)
	}
}

func (s *Server) writeJSONError(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, map[string]string{"error": msg})
}

// handleScans lists stored scan summaries (GET /api/scans?limit=N).
func (s *Server) handleScans(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeJSONError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	limit := 50
	if q := r.URL.Query().Get("limit"); q != "" {
		v, err := strconv.Atoi(q)
		if err != nil || v < 1 {
			s.writeJSONError(w, http.StatusBadRequest, fmt.Sprintf("invalid limit %q", q))
			return
		}
		limit = v
	}

	scans, err := s.store.ListScans(limit)
	if err != nil {
		s.writeJSONError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if scans == nil {
		scans = []*db.Scan{}
	}
	s.writeJSON(w, http.StatusOK, scans)
}

// handleScanByID serves one stored scan's full report document
// (GET /api/scans/{id}) or deletes it (DELETE /api/scans/{id}).
func (s *Server) handleScanByID(w http.ResponseWriter, r *http.Request) {
	scanID := strings.TrimPrefix(r.URL.Path, "/api/scans/")
	if scanID == "" {
		s.writeJSONError(w, http.StatusBadRequest, "missing scan id")
		return
	}

	switch r.Method {
	case http.MethodGet:
		scan, err := s.store.GetScan(scanID)
		if err != nil {
			s.writeJSONError(w, http.StatusNotFound, err.Error())
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(scan.PayloadJSON)
	case http.MethodDelete:
		if err := s.store.DeleteScan(scanID); err != nil {
			s.writeJSONError(w, http.StatusNotFound, err.Error())
			return
		}
		s.writeJSON(w, http.StatusOK, map[string]string{"deleted": scanID})
	default:
		s.writeJSONError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

// scanRequest is the body of POST /api/scan. Zero values fall back to the
// pipeline defaults used by the CLI.
type scanRequest struct {
	BucketRadius         float64  `json:"bucket_radius"`
	BucketHeight         float64  `json:"bucket_height"`
	FillRatio            float64  `json:"fill_ratio"`
	NumPointsWall        int      `json:"num_points_wall"`
	NumPointsBottom      int      `json:"num_points_bottom"`
	NumPointsFillSurface int      `json:"num_points_fill_surface"`
	AlphaValue           *float64 `json:"alpha_value,omitempty"`
	Seed                 int64    `json:"seed"`
	Persist              bool     `json:"persist"`
}

// handleRunScan runs the pipeline with the posted parameters and returns the
// report, optionally persisting it first.
func (s *Server) handleRunScan(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.writeJSONError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req scanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeJSONError(w, http.StatusBadRequest, fmt.Sprintf("invalid request body: %v", err))
		return
	}

	report, err := volume.Run(volume.Params{
		Geometry: volume.Geometry{Radius: req.BucketRadius, Height: req.BucketHeight},
		Fill:     volume.FillState{Ratio: req.FillRatio},
		Sampling: volume.SamplingSpec{
			WallPoints:        req.NumPointsWall,
			BottomPoints:      req.NumPointsBottom,
			FillSurfacePoints: req.NumPointsFillSurface,
			Seed:              req.Seed,
		},
		Alpha: req.AlphaValue,
	})
	if err != nil {
		s.writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	if req.Persist && s.store != nil {
		scan, err := s.store.InsertReport(report)
		if err != nil {
			s.writeJSONError(w, http.StatusInternalServerError, err.Error())
			return
		}
		monitoring.Logf("persisted scan %s", scan.ScanID)
		w.Header().Set("X-Scan-ID", scan.ScanID)
	}

	s.writeJSON(w, http.StatusOK, report)
}
