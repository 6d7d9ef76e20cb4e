// Command volume-report generates a synthetic LiDAR-style point cloud of a
// partially filled cylindrical bucket, estimates its volumes with convex-hull
// and alpha-shape geometry, and writes the report document consumed by the
// point-cloud viewer.
//
// Usage:
//
//	go run . [flags]
//
// A bare invocation scans the default bucket (0.1 m radius, 0.2 m height,
// half full) and writes volume_report.json. With -db the report is also
// persisted; with -listen the report/viewer HTTP server is started after the
// scan.
package main

import (
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/banshee-data/volume.report/internal/api"
	"github.com/banshee-data/volume.report/internal/config"
	"github.com/banshee-data/volume.report/internal/db"
	"github.com/banshee-data/volume.report/internal/units"
)

var (
	configPath  = flag.String("config", "", "Path to a scan config JSON file")
	radius      = flag.Float64("radius", 0, "Bucket radius in meters (overrides config)")
	height      = flag.Float64("height", 0, "Bucket height in meters (overrides config)")
	fillRatio   = flag.Float64("fill", -1, "Fill ratio in [0,1] (overrides config)")
	wallN       = flag.Int("wall", 0, "Wall point count (overrides config)")
	bottomN     = flag.Int("bottom", 0, "Bottom point count (overrides config)")
	surfaceN    = flag.Int("surface", 0, "Fill-surface point count (overrides config)")
	alphaValue  = flag.Float64("alpha", 0, "Alpha parameter (overrides config)")
	noAlpha     = flag.Bool("no-alpha", false, "Skip the alpha-shape estimator (convex hull only)")
	seed        = flag.Int64("seed", 0, "Sampling seed (overrides config)")
	outputPath  = flag.String("out", "volume_report.json", "Report output file")
	summaryUnit = flag.String("units", units.Liters, "Summary output units (m3 or liters)")
	dbPath      = flag.String("db", "", "Optional SQLite database to persist the scan")
	listenAddr  = flag.String("listen", "", "Optional address to serve the report API and viewer")
	plotDir     = flag.String("plot-dir", "", "Optional directory for sampling-diagnostic plots")
	quietOutput = flag.Bool("quiet", false, "Suppress summary output")
)

func main() {
	flag.Parse()

	if !units.IsValid(*summaryUnit) {
		log.Fatalf("Invalid -units %q (valid: %s)", *summaryUnit, strings.Join(units.ValidUnits, ", "))
	}

	cfg := config.EmptyScanConfig()
	if *configPath != "" {
		loaded, err := config.LoadScanConfig(*configPath)
		if err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}
		cfg = loaded
	}
	applyFlagOverrides(cfg)

	report, err := runScan(cfg, !*noAlpha, *plotDir)
	if err != nil {
		log.Fatalf("Scan failed: %v", err)
	}

	if err := writeDocument(report, *outputPath); err != nil {
		log.Fatalf("Failed to write report: %v", err)
	}
	if !*quietOutput {
		printSummary(report, *outputPath, *summaryUnit)
	}

	var store *db.ScanStore
	if *dbPath != "" {
		database, err := db.NewDB(*dbPath)
		if err != nil {
			log.Fatalf("Failed to open database: %v", err)
		}
		defer database.Close()

		store = db.NewScanStore(database)
		scan, err := store.InsertReport(report)
		if err != nil {
			log.Fatalf("Failed to persist scan: %v", err)
		}
		log.Printf("Persisted scan %s", scan.ScanID)
	}

	if *listenAddr == "" {
		return
	}
	if store == nil {
		log.Fatalf("-listen requires -db; the server reads scans from the database")
	}

	server := api.NewServer(store)
	log.Printf("Serving scan API and viewer on %s", *listenAddr)
	go func() {
		if err := http.ListenAndServe(*listenAddr, server.Routes()); err != nil {
			log.Fatalf("Server error: %v", err)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh
	log.Printf("Shutting down...")
}

// applyFlagOverrides copies any explicitly set scan flags over the loaded
// config. Flag zero values mean "not set" here; every real parameter is
// positive (fill uses -1 as its sentinel since 0 is a valid ratio).
func applyFlagOverrides(cfg *config.ScanConfig) {
	if *radius > 0 {
		cfg.BucketRadius = radius
	}
	if *height > 0 {
		cfg.BucketHeight = height
	}
	if *fillRatio >= 0 {
		cfg.FillRatio = fillRatio
	}
	if *wallN > 0 {
		cfg.NumPointsWall = wallN
	}
	if *bottomN > 0 {
		cfg.NumPointsBottom = bottomN
	}
	if *surfaceN > 0 {
		cfg.NumPointsFillSurface = surfaceN
	}
	if *alphaValue > 0 {
		cfg.AlphaValue = alphaValue
	}
	if *seed != 0 {
		cfg.Seed = seed
	}
}
