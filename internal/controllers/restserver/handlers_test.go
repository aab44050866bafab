package restserver

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/chrissnell/trackreconcile/internal/constants"
	"github.com/chrissnell/trackreconcile/internal/metrics"
	"github.com/chrissnell/trackreconcile/internal/route"
	"github.com/chrissnell/trackreconcile/internal/store"
	"github.com/chrissnell/trackreconcile/internal/types"
	"github.com/chrissnell/trackreconcile/pkg/config"
	"github.com/chrissnell/trackreconcile/pkg/responseformat"
	"github.com/paulmach/orb/geojson"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tkrajina/gpxgo/gpx"
	"github.com/vmihailenco/msgpack/v5"
	"go.uber.org/zap"
)

const metersPerDegreeLat = 6371000.0 * 3.141592653589793 / 180.0

func walk(n int, stepM, stepS float64) []types.LocationSample {
	start := time.Date(2024, 9, 14, 6, 0, 0, 0, time.UTC)
	samples := make([]types.LocationSample, n)
	for i := range samples {
		samples[i] = types.LocationSample{
			Latitude:  45.5 + float64(i)*stepM/metersPerDegreeLat,
			Longitude: -122.6,
			Altitude:  types.Float64(60),
			Timestamp: types.FormatTimestamp(start.Add(time.Duration(float64(i)*stepS) * time.Second)),
		}
	}
	return samples
}

type testServer struct {
	handler http.Handler
	store   *store.SQLiteStore
}

func newTestServer(t *testing.T, withStore bool) *testServer {
	t.Helper()
	logger := zap.NewNop().Sugar()

	ts := &testServer{}
	deps := Dependencies{
		Reconciler: metrics.NewReconciler(metrics.DefaultParams(), logger),
		Builder:    route.NewBuilder(route.DefaultParams(), logger),
		Audit:      true,
	}

	if withStore {
		s, err := store.NewSQLiteStore(":memory:", logger)
		require.NoError(t, err)
		t.Cleanup(func() { s.Close() })
		require.NoError(t, s.AppendSamples(context.Background(), "ruck-1", walk(200, 11, 4)))
		ts.store = s
		deps.Store = s
	}

	ctrl, err := NewController(context.Background(), &sync.WaitGroup{}, config.ServerData{}, deps, logger)
	require.NoError(t, err)
	ts.handler = ctrl.Handler()
	return ts
}

func (ts *testServer) do(t *testing.T, method, target string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if raw, ok := body.(string); ok {
			buf.WriteString(raw)
		} else {
			require.NoError(t, json.NewEncoder(&buf).Encode(body))
		}
	}
	req := httptest.NewRequest(method, target, &buf)
	rec := httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t, true)

	rec := ts.do(t, http.MethodGet, "/health", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	var body HealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, HealthResponse{Status: "ok", Storage: "sqlite", Version: constants.Version}, body)
	assert.Len(t, rec.Header().Get(requestIDHeader), 36)
}

func TestRequestIDIsEchoed(t *testing.T) {
	ts := newTestServer(t, false)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(requestIDHeader, "abc-123")
	rec := httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, req)

	assert.Equal(t, "abc-123", rec.Header().Get(requestIDHeader))
}

func TestReconcileSession(t *testing.T) {
	ts := newTestServer(t, true)

	rec := ts.do(t, http.MethodPost, "/sessions/ruck-1/reconcile", ReconcileRequest{
		ClientMetrics:   types.ClientReportedMetrics{DistanceKm: 1.9},
		DurationSeconds: 796,
		WeightKg:        80,
		RuckWeightKg:    15,
	})

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var body ReconcileResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))

	assert.Equal(t, "ruck-1", body.SessionID)
	assert.Equal(t, types.SourceReconciled, body.Metrics.Source)
	assert.InDelta(t, 2.189, body.Metrics.DistanceKm, 0.005)
	require.NotNil(t, body.Metrics.AveragePaceSecPerKm)
	require.NotNil(t, body.Metrics.Calories)
	assert.NotEmpty(t, body.Decisions)
	assert.Equal(t, 199, body.Segments.Accepted)

	n, err := ts.store.AuditCount(context.Background(), "ruck-1")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestReconcile_Errors(t *testing.T) {
	ts := newTestServer(t, true)

	tests := []struct {
		name   string
		target string
		body   any
		status int
	}{
		{"negative duration", "/sessions/ruck-1/reconcile", ReconcileRequest{DurationSeconds: -5}, http.StatusBadRequest},
		{"malformed body", "/sessions/ruck-1/reconcile", "{not json", http.StatusBadRequest},
		{"negative weight inline", "/reconcile", map[string]any{"weight_kg": -70}, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := ts.do(t, http.MethodPost, tt.target, tt.body)

			assert.Equal(t, tt.status, rec.Code)
			var body responseformat.ErrorBody
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.NotEmpty(t, body.Error)
		})
	}
}

func TestReconcileInline_TooFewSamples(t *testing.T) {
	ts := newTestServer(t, false)

	rec := ts.do(t, http.MethodPost, "/reconcile", InlineReconcileRequest{
		ReconcileRequest: ReconcileRequest{
			ClientMetrics:   types.ClientReportedMetrics{DistanceKm: 3.2, ElevationGainM: types.Float64(41)},
			DurationSeconds: 1800,
		},
		Samples: walk(1, 10, 5),
	})

	require.Equal(t, http.StatusOK, rec.Code)
	var body ReconcileResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, types.SourceClient, body.Metrics.Source)
	assert.Equal(t, 3.2, body.Metrics.DistanceKm)
	assert.Equal(t, 41.0, body.Metrics.ElevationGainM)
}

func TestReconcileSession_NoSamples(t *testing.T) {
	ts := newTestServer(t, true)

	rec := ts.do(t, http.MethodPost, "/sessions/ruck-no-gps/reconcile", ReconcileRequest{
		ClientMetrics:   types.ClientReportedMetrics{DistanceKm: 3.2, Calories: types.Float64(410)},
		DurationSeconds: 2400,
	})

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var body ReconcileResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ruck-no-gps", body.SessionID)
	assert.Equal(t, types.SourceClient, body.Metrics.Source)
	assert.Equal(t, 3.2, body.Metrics.DistanceKm)
	require.NotNil(t, body.Metrics.Calories)
	assert.Equal(t, 410.0, *body.Metrics.Calories)

	// the route of the same session is still unknown
	rec = ts.do(t, http.MethodGet, "/sessions/ruck-no-gps/route", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetRoute(t *testing.T) {
	ts := newTestServer(t, true)

	rec := ts.do(t, http.MethodGet, "/sessions/ruck-1/route", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	var body RouteResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.NotEmpty(t, body.Points)
	assert.LessOrEqual(t, len(body.Points), 500)
	assert.Equal(t, strconv.Itoa(len(body.Points)), rec.Header().Get("X-Route-Points"))
	assert.Equal(t, 200, body.Stats.RawPoints)
}

func TestGetRoute_MsgPack(t *testing.T) {
	ts := newTestServer(t, true)

	rec := ts.do(t, http.MethodGet, "/sessions/ruck-1/route?format=msgpack", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, responseformat.ContentTypeMsgPack, rec.Header().Get("Content-Type"))
	var body map[string]any
	require.NoError(t, msgpack.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ruck-1", body["session_id"])
}

func TestGetRoute_Exports(t *testing.T) {
	ts := newTestServer(t, true)

	rec := ts.do(t, http.MethodGet, "/sessions/ruck-1/route.geojson", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/geo+json", rec.Header().Get("Content-Type"))
	fc, err := geojson.UnmarshalFeatureCollection(rec.Body.Bytes())
	require.NoError(t, err)
	require.Len(t, fc.Features, 1)

	rec = ts.do(t, http.MethodGet, "/sessions/ruck-1/route.gpx", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "ruck-1.gpx")
	doc, err := gpx.ParseBytes(rec.Body.Bytes())
	require.NoError(t, err)
	require.Len(t, doc.Tracks, 1)
	assert.Equal(t, rec.Header().Get("X-Route-Points"), strconv.Itoa(len(doc.Tracks[0].Segments[0].Points)))
}

func TestRouteInline_PrivacyFloor(t *testing.T) {
	ts := newTestServer(t, false)

	rec := ts.do(t, http.MethodPost, "/route", InlineRouteRequest{Samples: walk(4, 300, 60)})

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"points":[]`)
	assert.Equal(t, "0", rec.Header().Get("X-Route-Points"))
}

func TestSessionRoutesWithoutStore(t *testing.T) {
	ts := newTestServer(t, false)

	rec := ts.do(t, http.MethodGet, "/sessions/ruck-1/route", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	rec = ts.do(t, http.MethodGet, "/health", nil)
	assert.Contains(t, rec.Body.String(), `"storage":"none"`)
}
