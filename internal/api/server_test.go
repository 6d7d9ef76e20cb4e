package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/volume.report/internal/db"
	"github.com/banshee-data/volume.report/internal/testutil"
	"github.com/banshee-data/volume.report/internal/volume"
)

func testServer(t *testing.T) (*Server, *db.ScanStore) {
	t.Helper()
	database, err := db.NewDB(filepath.Join(t.TempDir(), "scans.db"))
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })
	store := db.NewScanStore(database)
	return NewServer(store), store
}

func storedScan(t *testing.T, store *db.ScanStore) *db.Scan {
	t.Helper()
	alpha := 2.0
	report, err := volume.Run(volume.Params{
		Geometry: volume.Geometry{Radius: 0.1, Height: 0.2},
		Fill:     volume.FillState{Ratio: 0.5},
		Sampling: volume.SamplingSpec{WallPoints: 50, BottomPoints: 50, FillSurfacePoints: 50, Seed: 0},
		Alpha:    &alpha,
	})
	require.NoError(t, err)
	scan, err := store.InsertReport(report)
	require.NoError(t, err)
	return scan
}

func TestListScansEmpty(t *testing.T) {
	server, _ := testServer(t)
	rec := testutil.NewTestRecorder()
	server.Routes().ServeHTTP(rec, testutil.NewTestRequest(http.MethodGet, "/api/scans"))

	testutil.AssertStatusCode(t, rec.Code, http.StatusOK)
	assert.Equal(t, "[]\n", rec.Body.String())
}

func TestListScansInvalidLimit(t *testing.T) {
	server, _ := testServer(t)
	rec := testutil.NewTestRecorder()
	server.Routes().ServeHTTP(rec, testutil.NewTestRequest(http.MethodGet, "/api/scans?limit=zero"))
	testutil.AssertStatusCode(t, rec.Code, http.StatusBadRequest)
}

func TestRunScanEndpoint(t *testing.T) {
	server, _ := testServer(t)

	body := `{
		"bucket_radius": 0.1, "bucket_height": 0.2, "fill_ratio": 0.5,
		"num_points_wall": 50, "num_points_bottom": 50, "num_points_fill_surface": 50
	}`
	req := httptest.NewRequest(http.MethodPost, "/api/scan", strings.NewReader(body))
	rec := testutil.NewTestRecorder()
	server.Routes().ServeHTTP(rec, req)

	testutil.AssertStatusCode(t, rec.Code, http.StatusOK)

	var report volume.Report
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))
	assert.Equal(t, 0.006283, report.Metadata.AnalyticCapacityM3)
	assert.Len(t, report.FullBucket, 150)
	assert.Nil(t, report.Metadata.AlphaShapeFillM3, "alpha disabled when alpha_value omitted")
}

func TestRunScanRejectsBadConfig(t *testing.T) {
	server, _ := testServer(t)

	body := `{"bucket_radius": 0, "bucket_height": 0.2, "fill_ratio": 0.5,
		"num_points_wall": 10, "num_points_bottom": 10, "num_points_fill_surface": 10}`
	req := httptest.NewRequest(http.MethodPost, "/api/scan", strings.NewReader(body))
	rec := testutil.NewTestRecorder()
	server.Routes().ServeHTTP(rec, req)

	testutil.AssertStatusCode(t, rec.Code, http.StatusBadRequest)
}

func TestRunScanPersist(t *testing.T) {
	server, store := testServer(t)

	body := `{
		"bucket_radius": 0.1, "bucket_height": 0.2, "fill_ratio": 0.5,
		"num_points_wall": 40, "num_points_bottom": 40, "num_points_fill_surface": 40,
		"persist": true
	}`
	req := httptest.NewRequest(http.MethodPost, "/api/scan", strings.NewReader(body))
	rec := testutil.NewTestRecorder()
	server.Routes().ServeHTTP(rec, req)

	testutil.AssertStatusCode(t, rec.Code, http.StatusOK)
	scanID := rec.Header().Get("X-Scan-ID")
	require.NotEmpty(t, scanID)

	stored, err := store.GetScan(scanID)
	testutil.AssertNoError(t, err)
	assert.Equal(t, 0.1, stored.Metadata.BucketRadius)
}

func TestGetScanDocument(t *testing.T) {
	server, store := testServer(t)
	scan := storedScan(t, store)

	rec := testutil.NewTestRecorder()
	server.Routes().ServeHTTP(rec, testutil.NewTestRequest(http.MethodGet, "/api/scans/"+scan.ScanID))

	testutil.AssertStatusCode(t, rec.Code, http.StatusOK)
	var doc map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &doc))
	for _, key := range []string{"metadata", "empty_bucket", "fill_surface", "full_bucket"} {
		assert.Contains(t, doc, key)
	}
}

func TestGetScanNotFound(t *testing.T) {
	server, _ := testServer(t)
	rec := testutil.NewTestRecorder()
	server.Routes().ServeHTTP(rec, testutil.NewTestRequest(http.MethodGet, "/api/scans/nope"))
	testutil.AssertStatusCode(t, rec.Code, http.StatusNotFound)
}

func TestDeleteScanEndpoint(t *testing.T) {
	server, store := testServer(t)
	scan := storedScan(t, store)

	req := httptest.NewRequest(http.MethodDelete, "/api/scans/"+scan.ScanID, nil)
	rec := testutil.NewTestRecorder()
	server.Routes().ServeHTTP(rec, req)
	testutil.AssertStatusCode(t, rec.Code, http.StatusOK)

	rec = testutil.NewTestRecorder()
	server.Routes().ServeHTTP(rec, testutil.NewTestRequest(http.MethodGet, "/api/scans/"+scan.ScanID))
	testutil.AssertStatusCode(t, rec.Code, http.StatusNotFound)
}

func TestViewerRendersChart(t *testing.T) {
	server, store := testServer(t)
	scan := storedScan(t, store)

	rec := testutil.NewTestRecorder()
	server.Routes().ServeHTTP(rec, testutil.NewTestRequest(http.MethodGet, "/view/"+scan.ScanID))

	testutil.AssertStatusCode(t, rec.Code, http.StatusOK)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
	body := rec.Body.String()
	assert.Contains(t, body, "echarts")
	for _, series := range []string{"empty_bucket", "fill_surface", "full_bucket"} {
		assert.Contains(t, body, series)
	}
}

func TestViewerMissingScan(t *testing.T) {
	server, _ := testServer(t)
	rec := testutil.NewTestRecorder()
	server.Routes().ServeHTTP(rec, testutil.NewTestRequest(http.MethodGet, "/view/nope"))
	testutil.AssertStatusCode(t, rec.Code, http.StatusNotFound)
}

func TestViewerToleratesMissingGroups(t *testing.T) {
	// The viewer contract: any point array may be absent; render whatever
	// exists. Simulated with a fill_points-only legacy document.
	var payload reportPayload
	require.NoError(t, json.Unmarshal([]byte(`{"fill_points": [[0,0,0],[1,1,1]]}`), &payload))

	assert.Empty(t, payload.EmptyBucket)
	assert.Len(t, payload.fillGroup(), 2)

	data := chart3DData(payload.fillGroup(), 100)
	assert.Len(t, data, 2)
}

func TestChart3DDataDownsamples(t *testing.T) {
	points := make([][3]float64, 1000)
	data := chart3DData(points, 100)
	assert.LessOrEqual(t, len(data), 101)
}
