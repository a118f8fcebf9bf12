/*
Package monitoring provides Prometheus-based metrics collection.

It tracks HTTP traffic, per-calculation durations and error kinds, submitted
dataset sizes, and service uptime.

# Usage

	// Create metrics collector
	metrics := monitoring.NewMetrics()

	// Add middleware to Gin router
	router.Use(monitoring.Middleware(metrics))

	// Time calculations
	timer := monitoring.NewTimer(metrics, "descriptive", "summary")
	// ... perform calculation ...
	timer.Stop("success")

# Metrics Endpoint

Expose metrics via the standard Prometheus endpoint:

	import "github.com/prometheus/client_golang/prometheus/promhttp"
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
*/
package monitoring
