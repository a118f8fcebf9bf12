package http

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zealotai/statistics-api/internal/api/middleware"
	"github.com/zealotai/statistics-api/internal/engines/descriptive"
	"github.com/zealotai/statistics-api/internal/engines/hypothesis"
	"github.com/zealotai/statistics-api/internal/engines/intervals"
	"github.com/zealotai/statistics-api/internal/engines/normal"
	"github.com/zealotai/statistics-api/internal/infrastructure/logging"
	"github.com/zealotai/statistics-api/internal/infrastructure/monitoring"
	"github.com/zealotai/statistics-api/internal/service"
)

// Metrics register against the global Prometheus registry, so the collector
// is created once for the whole test binary.
var testMetrics = monitoring.NewMetrics()

func newTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)

	registry := service.NewRegistry()
	registry.Register(descriptive.New(1000))
	registry.Register(normal.New())
	registry.Register(intervals.New())
	registry.Register(hypothesis.New())

	handlers := NewHandlers(registry, testMetrics, logging.NewDefault())

	router := gin.New()
	router.Use(middleware.RequestID())
	router.GET("/", handlers.Root)
	router.GET("/api/health", handlers.Health)
	router.GET("/api/statistics/help", handlers.Help)
	router.POST("/api/statistics/descriptive", handlers.Descriptive)
	router.POST("/api/statistics/normal-distribution", handlers.NormalDistribution)
	router.POST("/api/statistics/confidence-intervals", handlers.ConfidenceIntervals)
	router.POST("/api/statistics/hypothesis-testing", handlers.HypothesisTesting)
	return router
}

func doJSON(t *testing.T, router *gin.Engine, method, path string, body interface{}) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &decoded))
	return w, decoded
}

func TestRoot(t *testing.T) {
	router := newTestRouter()
	w, body := doJSON(t, router, http.MethodGet, "/", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "online", body["status"])
	assert.Equal(t, ServiceVersion, body["version"])
}

func TestHealth(t *testing.T) {
	router := newTestRouter()
	w, body := doJSON(t, router, http.MethodGet, "/api/health", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "healthy", body["status"])

	engines := body["engines"].(map[string]interface{})
	assert.Equal(t, 4.0, engines["total_engines"])
}

func TestHelp(t *testing.T) {
	router := newTestRouter()
	w, body := doJSON(t, router, http.MethodGet, "/api/statistics/help", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, body["success"])

	engines := body["engines"].([]interface{})
	require.Len(t, engines, 4)

	// Catalog is sorted by engine ID
	first := engines[0].(map[string]interface{})
	assert.Equal(t, "descriptive", first["id"])
	assert.NotEmpty(t, first["calculations"])
}

func TestDescriptiveEndpoint(t *testing.T) {
	router := newTestRouter()

	t.Run("Defaults to summary", func(t *testing.T) {
		w, body := doJSON(t, router, http.MethodPost, "/api/statistics/descriptive", map[string]interface{}{
			"data": []float64{12, 15, 18, 21, 24, 27, 30},
		})

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, true, body["success"])

		results := body["results"].(map[string]interface{})
		central := results["measures_of_central_tendency"].(map[string]interface{})
		mean := central["mean"].(map[string]interface{})
		assert.Equal(t, 21.0, mean["value"])

		// Request echoed back
		input := body["input_parameters"].(map[string]interface{})
		assert.Contains(t, input, "data")
	})

	t.Run("Insufficient data is a 400", func(t *testing.T) {
		w, body := doJSON(t, router, http.MethodPost, "/api/statistics/descriptive", map[string]interface{}{
			"data": []float64{1},
		})

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, false, body["success"])
		assert.NotEmpty(t, body["error"])
	})

	t.Run("Malformed JSON is a 400", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/statistics/descriptive", bytes.NewBufferString("{not json"))
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestNormalEndpoint(t *testing.T) {
	router := newTestRouter()

	t.Run("Z-score", func(t *testing.T) {
		w, body := doJSON(t, router, http.MethodPost, "/api/statistics/normal-distribution", map[string]interface{}{
			"calculation_type": "z_score",
			"mean":             100,
			"std_dev":          15,
			"x_value":          115,
		})

		assert.Equal(t, http.StatusOK, w.Code)
		results := body["results"].(map[string]interface{})
		z := results["z_score"].(map[string]interface{})
		assert.Equal(t, 1.0, z["value"])
	})

	t.Run("Missing calculation type", func(t *testing.T) {
		w, body := doJSON(t, router, http.MethodPost, "/api/statistics/normal-distribution", map[string]interface{}{
			"mean": 100, "std_dev": 15,
		})

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, body["error"], "calculation_type")
	})
}

func TestIntervalsEndpoint(t *testing.T) {
	router := newTestRouter()

	w, body := doJSON(t, router, http.MethodPost, "/api/statistics/confidence-intervals", map[string]interface{}{
		"interval_type":    "mean",
		"sample_mean":      50,
		"sample_size":      25,
		"population_std":   10,
		"confidence_level": 0.95,
	})

	assert.Equal(t, http.StatusOK, w.Code)
	results := body["results"].(map[string]interface{})
	assert.Equal(t, "z", results["distribution_type"])
	ci := results["confidence_interval"].([]interface{})
	require.Len(t, ci, 2)
	assert.InDelta(t, 46.0801, ci[0].(float64), 1e-3)
}

func TestHypothesisEndpoint(t *testing.T) {
	router := newTestRouter()

	w, body := doJSON(t, router, http.MethodPost, "/api/statistics/hypothesis-testing", map[string]interface{}{
		"test_type":      "one_sample_mean",
		"sample_mean":    52,
		"sample_size":    100,
		"null_mean":      50,
		"population_std": 10,
		"alpha":          0.05,
		"tail_type":      "two-tailed",
	})

	assert.Equal(t, http.StatusOK, w.Code)
	results := body["results"].(map[string]interface{})
	assert.Equal(t, 2.0, results["test_statistic"])
	assert.Equal(t, true, results["reject_null"])
}

func TestRequestIDPropagation(t *testing.T) {
	router := newTestRouter()

	t.Run("Generated when absent", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		assert.NotEmpty(t, w.Header().Get(middleware.RequestIDHeader))
	})

	t.Run("Preserved when supplied", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(middleware.RequestIDHeader, "trace-123")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		assert.Equal(t, "trace-123", w.Header().Get(middleware.RequestIDHeader))
	})
}
