package monitoring

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
)

// Middleware creates a Gin middleware for metrics collection
func Middleware(metrics *Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		method := c.Request.Method

		// Get request size
		reqSize := c.Request.ContentLength
		if reqSize < 0 {
			reqSize = 0
		}

		// Process request
		c.Next()

		duration := time.Since(start)
		status := strconv.Itoa(c.Writer.Status())
		respSize := int64(c.Writer.Size())

		metrics.RecordHTTPRequest(method, path, status, duration, reqSize, respSize)
	}
}

// Timer measures calculation duration
type Timer struct {
	start   time.Time
	metrics *Metrics
	engine  string
	calc    string
}

// NewTimer creates a new timer for one calculation
func NewTimer(metrics *Metrics, engine, calc string) *Timer {
	return &Timer{
		start:   time.Now(),
		metrics: metrics,
		engine:  engine,
		calc:    calc,
	}
}

// Stop stops the timer and records the duration
func (t *Timer) Stop(status string) {
	duration := time.Since(t.start)
	t.metrics.RecordCompute(t.engine, t.calc, status, duration)
}
