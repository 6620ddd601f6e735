package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/annel0/sky-quest/internal/game"
	"github.com/annel0/sky-quest/internal/hud"
	"github.com/annel0/sky-quest/internal/logging"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticSource struct {
	snap *game.Snapshot
}

func (s staticSource) Snapshot() *game.Snapshot { return s.snap }

type fixedSampler struct{}

func (fixedSampler) CPUPercent() (float64, error) { return 12.4, nil }
func (fixedSampler) MemPercent() (float64, error) { return 40.6, nil }

func newTestServer(t *testing.T, src SnapshotSource) *DebugServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	diag := hud.NewDiagnostics(fixedSampler{}, time.Second)
	diag.RecordFrame(1.0/60, time.Now())

	ds, err := NewDebugServer(Config{
		Addr:        "127.0.0.1:0",
		Source:      src,
		Diagnostics: diag,
		Registerer:  prometheus.NewRegistry(),
		Logger:      logging.NewWriterLogger("api", &bytes.Buffer{}, nil),
	})
	require.NoError(t, err)
	return ds
}

func get(t *testing.T, ds *DebugServer, path string) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	ds.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

func sampleSnapshot() *game.Snapshot {
	return &game.Snapshot{
		Frame:   42,
		State:   game.StateInGame.String(),
		Session: game.SessionState{Wins: 2, Collected: 3},
		Elapsed: 12.5,
		World: game.WorldInfo{
			Seed:    7,
			Quality: "medium",
			Columns: 16,
			Pickups: 2,
			Hazards: 11,
		},
	}
}

func TestHealth(t *testing.T) {
	ds := newTestServer(t, staticSource{})

	w := get(t, ds, "/health")
	require.Equal(t, http.StatusOK, w.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
	assert.Contains(t, body, "runtime")
	assert.Contains(t, body, "uptime")
}

func TestSession_NotStarted(t *testing.T) {
	ds := newTestServer(t, staticSource{})

	assert.Equal(t, http.StatusServiceUnavailable, get(t, ds, "/api/session").Code)
	assert.Equal(t, http.StatusServiceUnavailable, get(t, ds, "/api/world").Code)
}

func TestSession_ReturnsSnapshotAndHUD(t *testing.T) {
	ds := newTestServer(t, staticSource{snap: sampleSnapshot()})

	w := get(t, ds, "/api/session")
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Success bool            `json:"success"`
		Data    SessionResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	require.NotNil(t, resp.Data.Game)
	assert.Equal(t, uint64(42), resp.Data.Game.Frame)
	assert.Equal(t, "in_game", resp.Data.Game.State)
	assert.Equal(t, 2, resp.Data.HUD.Wins)
	assert.Equal(t, 3, resp.Data.HUD.Collected)
	assert.InDelta(t, 60.0, resp.Data.HUD.FPS, 0.01)
	assert.Contains(t, resp.Data.HUDText, "2 Wins")
	assert.Contains(t, resp.Data.HUDText, "Collected 3/5")
	assert.Contains(t, resp.Data.HUDText, "cpu_usage 12%")
	assert.Contains(t, resp.Data.HUDText, "mem_usage 41%")
}

func TestWorld_ReturnsWorldInfo(t *testing.T) {
	ds := newTestServer(t, staticSource{snap: sampleSnapshot()})

	w := get(t, ds, "/api/world")
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data game.WorldInfo `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, int64(7), resp.Data.Seed)
	assert.Equal(t, 16, resp.Data.Columns)
	assert.Equal(t, 11, resp.Data.Hazards)
}

func TestMetrics_ExposesHTTPMetrics(t *testing.T) {
	ds := newTestServer(t, staticSource{snap: sampleSnapshot()})
	get(t, ds, "/api/world")

	w := get(t, ds, "/metrics")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "skyquest_api_http_request_duration_seconds")
}

func TestReadRuntimeStats(t *testing.T) {
	stats := ReadRuntimeStats()
	assert.Positive(t, stats.Goroutines)
	assert.Positive(t, stats.SysMB)
}
