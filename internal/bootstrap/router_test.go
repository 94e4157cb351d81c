package bootstrap

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GoSim-25-26J-441/symptom-finder/config"
	"github.com/GoSim-25-26J-441/symptom-finder/internal/metrics"
	"github.com/GoSim-25-26J-441/symptom-finder/internal/symptom_lookup/domain"
)

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := &config.Config{
		Store: config.StoreConfig{Backend: config.BackendMemory},
	}
	store, err := OpenStore(context.Background(), cfg.Store)
	require.NoError(t, err)

	m := metrics.NewCollector("router_test")
	svc, err := NewLookupService(cfg, store, m)
	require.NoError(t, err)

	n, err := SeedStore(context.Background(), svc, "")
	require.NoError(t, err)
	require.Equal(t, 20, n)

	return BuildRouter(RouterDeps{
		ServiceName: "symptom-finder",
		Version:     "test",
		Lookup:      svc,
		Metrics:     m,
	})
}

func TestBuildRouter_Lookup(t *testing.T) {
	r := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/symptoms/diseases?symptom=fever,%20cough,%20fatigue", nil)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	assert.NotEmpty(t, rr.Header().Get("X-Request-Id"))

	var got domain.LookupResult
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
	assert.Equal(t, domain.SourceStore, got.Source)

	var names []string
	for _, d := range got.Results {
		names = append(names, d.Disease)
	}
	assert.Contains(t, names, "Influenza")
}

func TestBuildRouter_HealthAndMetrics(t *testing.T) {
	r := newTestRouter(t)

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"store":"up"`)

	rr = httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/v1/symptoms/diseases?symptom=headache", nil))
	require.Equal(t, http.StatusOK, rr.Code)

	rr = httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.True(t, strings.Contains(rr.Body.String(), "router_test_seed_rows_loaded"))
	assert.True(t, strings.Contains(rr.Body.String(), "router_test_lookups_total"))
}

func TestBuildRouter_CORSPreflight(t *testing.T) {
	r := newTestRouter(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/symptoms/diseases", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", "GET")
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusNoContent, rr.Code)
	assert.Equal(t, "*", rr.Header().Get("Access-Control-Allow-Origin"))
}

func TestOpenStore_UnknownBackend(t *testing.T) {
	_, err := OpenStore(context.Background(), config.StoreConfig{Backend: "sqlite"})
	require.Error(t, err)
}

func TestNewLookupService_InvalidFallback(t *testing.T) {
	cfg := &config.Config{
		Fallback: config.FallbackConfig{URL: "://bad"},
	}
	_, err := NewLookupService(cfg, nil, nil)
	require.Error(t, err)
}
