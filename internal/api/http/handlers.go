package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/zealotai/statistics-api/internal/api/middleware"
	"github.com/zealotai/statistics-api/internal/infrastructure/logging"
	"github.com/zealotai/statistics-api/internal/infrastructure/monitoring"
	"github.com/zealotai/statistics-api/internal/service"
	"github.com/zealotai/statistics-api/internal/shared/staterr"
	"github.com/zealotai/statistics-api/internal/shared/types"
)

// ServiceVersion is reported by the root and health endpoints.
const ServiceVersion = "1.0.0"

// Handlers contains all HTTP handlers
type Handlers struct {
	registry *service.Registry
	metrics  *monitoring.Metrics
	logger   *logging.Logger
}

// NewHandlers creates a new handler set
func NewHandlers(registry *service.Registry, metrics *monitoring.Metrics, logger *logging.Logger) *Handlers {
	return &Handlers{
		registry: registry,
		metrics:  metrics,
		logger:   logger,
	}
}

// Root handles the landing endpoint
func (h *Handlers) Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "online",
		"service": "Statistics API",
		"version": ServiceVersion,
	})
}

// Health handles detailed health check
func (h *Handlers) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":         "healthy",
		"version":        ServiceVersion,
		"uptime_seconds": h.metrics.UptimeSeconds(),
		"engines":        h.registry.Stats(),
		"requests":       h.metrics.GetSnapshot(),
	})
}

// Help returns the catalog of engines and their calculations
func (h *Handlers) Help(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"engines": h.registry.Catalog(),
	})
}

// Descriptive handles descriptive statistics requests. The calculation type
// defaults to the full summary.
func (h *Handlers) Descriptive(c *gin.Context) {
	h.dispatch(c, "descriptive", "calculation_type", "summary")
}

// NormalDistribution handles normal distribution requests
func (h *Handlers) NormalDistribution(c *gin.Context) {
	h.dispatch(c, "normal", "calculation_type", "")
}

// ConfidenceIntervals handles confidence interval requests
func (h *Handlers) ConfidenceIntervals(c *gin.Context) {
	h.dispatch(c, "intervals", "interval_type", "")
}

// HypothesisTesting handles hypothesis test requests
func (h *Handlers) HypothesisTesting(c *gin.Context) {
	h.dispatch(c, "hypothesis", "test_type", "")
}

// dispatch binds the request body, extracts the calculation kind from
// kindField, and routes to the named engine. Engine errors carry a taxonomy
// kind that determines the HTTP status.
func (h *Handlers) dispatch(c *gin.Context, engineID, kindField, defaultKind string) {
	var params map[string]interface{}
	if err := c.ShouldBindJSON(&params); err != nil {
		h.fail(c, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return
	}
	if params == nil {
		params = map[string]interface{}{}
	}

	kind, _ := params[kindField].(string)
	if kind == "" {
		kind = defaultKind
	}
	if kind == "" {
		h.fail(c, http.StatusBadRequest, kindField+" is required")
		return
	}

	if data, ok := params["data"].([]interface{}); ok {
		h.metrics.ObserveDatasetSize(len(data))
	}

	timer := monitoring.NewTimer(h.metrics, engineID, kind)

	results, err := h.registry.Compute(c.Request.Context(), engineID, kind, params)
	if err != nil {
		timer.Stop("error")

		status := http.StatusInternalServerError
		errKind, classified := staterr.KindOf(err)
		if classified {
			status = http.StatusBadRequest
			h.metrics.RecordComputeError(engineID, kind, string(errKind))
		} else {
			h.metrics.RecordComputeError(engineID, kind, "internal")
		}

		h.logger.WithRequest(c.GetString(middleware.RequestIDKey)).Warn("computation failed",
			zap.String("engine", engineID),
			zap.String("calc", kind),
			zap.Error(err),
		)

		h.fail(c, status, err.Error())
		return
	}

	timer.Stop("success")

	c.JSON(http.StatusOK, types.Result{
		Success:         true,
		Results:         results,
		InputParameters: params,
	})
}

func (h *Handlers) fail(c *gin.Context, status int, msg string) {
	c.JSON(status, types.Result{
		Success: false,
		Error:   &msg,
	})
}
