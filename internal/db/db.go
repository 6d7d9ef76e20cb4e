// Package db persists completed scan reports to SQLite. This is the on-disk
// collaborator: the pipeline itself never touches storage, callers hand it a
// finished report.
package db

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// DB wraps the sql handle so stores can hang off one open database.
type DB struct {
	*sql.DB
}

// NewDB opens (creating if necessary) the scan database at path and ensures
// the schema exists.
func NewDB(path string) (*DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS scans (
			scan_id                  TEXT PRIMARY KEY,
			created_at_ns            BIGINT,
			bucket_radius            DOUBLE,
			bucket_height            DOUBLE,
			fill_ratio               DOUBLE,
			num_points_wall          BIGINT,
			num_points_bottom        BIGINT,
			num_points_fill_surface  BIGINT,
			alpha_value              DOUBLE,
			analytic_capacity_m3     DOUBLE,
			analytic_fill_m3         DOUBLE,
			convex_hull_full_m3      DOUBLE,
			convex_hull_fill_m3      DOUBLE,
			alpha_shape_fill_m3      DOUBLE,
			alpha_fallback           INTEGER DEFAULT 0,
			payload_json             TEXT
		);
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	return &DB{db}, nil
}
