// Package main is the entry point for the statistics API server.
//
// The server exposes step-by-step statistical calculators over a REST API:
// descriptive statistics, normal distribution, confidence intervals, and
// hypothesis testing.
//
// Configuration:
//   - Environment variables (12-factor)
//   - Optional YAML config file (-config)
//   - CLI flags (override env vars)
//
// Usage:
//
//	# Production mode
//	./server -port 8080
//
//	# With a config file
//	./server -config config.yaml
//
//	# Development mode (colored logs, debug level)
//	./server -dev
//
// Signals:
//   - SIGINT, SIGTERM: Graceful shutdown
package main
