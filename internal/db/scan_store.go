package db

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/banshee-data/volume.report/internal/units"
	"github.com/banshee-data/volume.report/internal/volume"
)

// Scan is one persisted scan: the rounded summary columns for listing and
// comparison, plus the full report document for the viewer.
type Scan struct {
	ScanID      string          `json:"scan_id"`
	CreatedAtNs int64           `json:"created_at_ns"`
	Metadata    volume.Metadata `json:"metadata"`
	PayloadJSON json.RawMessage `json:"payload_json,omitempty"`
}

// ScanStore provides persistence for completed scan reports.
type ScanStore struct {
	db *DB
}

// NewScanStore creates a new ScanStore.
func NewScanStore(db *DB) *ScanStore {
	return &ScanStore{db: db}
}

// InsertReport stores a finished report and returns the persisted scan.
// A fresh UUID is assigned as the scan ID.
func (s *ScanStore) InsertReport(report *volume.Report) (*Scan, error) {
	payload, err := json.Marshal(report)
	if err != nil {
		return nil, fmt.Errorf("marshal report: %w", err)
	}

	scan := &Scan{
		ScanID:      uuid.New().String(),
		CreatedAtNs: time.Now().UnixNano(),
		Metadata:    report.Metadata,
		PayloadJSON: payload,
	}

	m := report.Metadata
	_, err = s.db.Exec(`
		INSERT INTO scans (
			scan_id, created_at_ns,
			bucket_radius, bucket_height, fill_ratio,
			num_points_wall, num_points_bottom, num_points_fill_surface,
			alpha_value, analytic_capacity_m3, analytic_fill_m3,
			convex_hull_full_m3, convex_hull_fill_m3, alpha_shape_fill_m3,
			alpha_fallback, payload_json
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		scan.ScanID,
		scan.CreatedAtNs,
		m.BucketRadius,
		m.BucketHeight,
		m.FillRatio,
		m.NumPointsWall,
		m.NumPointsBottom,
		m.NumPointsFillSurface,
		nullFloat64(m.AlphaValue),
		m.AnalyticCapacityM3,
		m.AnalyticFillM3,
		nullFloat64(m.ConvexHullFullM3),
		nullFloat64(m.ConvexHullFillM3),
		nullFloat64(m.AlphaShapeFillM3),
		boolToInt(m.AlphaFallback),
		string(payload),
	)
	if err != nil {
		return nil, fmt.Errorf("insert scan: %w", err)
	}
	return scan, nil
}

// GetScan retrieves one scan with its full report payload.
func (s *ScanStore) GetScan(scanID string) (*Scan, error) {
	row := s.db.QueryRow(`
		SELECT scan_id, created_at_ns,
		       bucket_radius, bucket_height, fill_ratio,
		       num_points_wall, num_points_bottom, num_points_fill_surface,
		       alpha_value, analytic_capacity_m3, analytic_fill_m3,
		       convex_hull_full_m3, convex_hull_fill_m3, alpha_shape_fill_m3,
		       alpha_fallback, payload_json
		FROM scans
		WHERE scan_id = ?
	`, scanID)

	scan, err := scanRow(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("scan not found: %s", scanID)
	}
	if err != nil {
		return nil, fmt.Errorf("get scan: %w", err)
	}
	return scan, nil
}

// ListScans returns scan summaries newest first, without payloads.
func (s *ScanStore) ListScans(limit int) ([]*Scan, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.Query(`
		SELECT scan_id, created_at_ns,
		       bucket_radius, bucket_height, fill_ratio,
		       num_points_wall, num_points_bottom, num_points_fill_surface,
		       alpha_value, analytic_capacity_m3, analytic_fill_m3,
		       convex_hull_full_m3, convex_hull_fill_m3, alpha_shape_fill_m3,
		       alpha_fallback, NULL
		FROM scans
		ORDER BY created_at_ns DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("list scans: %w", err)
	}
	defer rows.Close()

	var scans []*Scan
	for rows.Next() {
		scan, err := scanRow(rows)
		if err != nil {
			return nil, fmt.Errorf("list scans: %w", err)
		}
		scans = append(scans, scan)
	}
	return scans, rows.Err()
}

// DeleteScan removes a scan by ID.
func (s *ScanStore) DeleteScan(scanID string) error {
	res, err := s.db.Exec(`DELETE FROM scans WHERE scan_id = ?`, scanID)
	if err != nil {
		return fmt.Errorf("delete scan: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete scan: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("scan not found: %s", scanID)
	}
	return nil
}

// rowScanner covers both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanRow(r rowScanner) (*Scan, error) {
	var scan Scan
	var alphaValue, hullFull, hullFill, alphaFill sql.NullFloat64
	var alphaFallback int
	var payload sql.NullString

	err := r.Scan(
		&scan.ScanID,
		&scan.CreatedAtNs,
		&scan.Metadata.BucketRadius,
		&scan.Metadata.BucketHeight,
		&scan.Metadata.FillRatio,
		&scan.Metadata.NumPointsWall,
		&scan.Metadata.NumPointsBottom,
		&scan.Metadata.NumPointsFillSurface,
		&alphaValue,
		&scan.Metadata.AnalyticCapacityM3,
		&scan.Metadata.AnalyticFillM3,
		&hullFull,
		&hullFill,
		&alphaFill,
		&alphaFallback,
		&payload,
	)
	if err != nil {
		return nil, err
	}

	scan.Metadata.AlphaValue = floatPtr(alphaValue)
	scan.Metadata.ConvexHullFullM3 = floatPtr(hullFull)
	scan.Metadata.ConvexHullFillM3 = floatPtr(hullFill)
	scan.Metadata.AlphaShapeFillM3 = floatPtr(alphaFill)
	scan.Metadata.AlphaFallback = alphaFallback != 0

	// Liter values are never stored; re-derive them for display.
	scan.Metadata.AnalyticCapacityLiters = units.RoundLiters(units.ToLiters(scan.Metadata.AnalyticCapacityM3))
	scan.Metadata.AnalyticFillLiters = units.RoundLiters(units.ToLiters(scan.Metadata.AnalyticFillM3))
	scan.Metadata.ConvexHullFullLiters = litersPtr(scan.Metadata.ConvexHullFullM3)
	scan.Metadata.ConvexHullFillLiters = litersPtr(scan.Metadata.ConvexHullFillM3)
	scan.Metadata.AlphaShapeFillLiters = litersPtr(scan.Metadata.AlphaShapeFillM3)
	if payload.Valid && payload.String != "" {
		scan.PayloadJSON = json.RawMessage(payload.String)
	}
	return &scan, nil
}

func nullFloat64(v *float64) interface{} {
	if v == nil {
		return nil
	}
	return *v
}

func litersPtr(m3 *float64) *float64 {
	if m3 == nil {
		return nil
	}
	l := units.RoundLiters(units.ToLiters(*m3))
	return &l
}

func floatPtr(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
