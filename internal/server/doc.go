// Package server provides HTTP server setup for the statistics API.
//
// It wires the middleware stack (request IDs, metrics, CORS, rate limiting),
// registers the four computation engines with the service registry, and
// mounts the calculation routes alongside health and Prometheus endpoints.
//
// Server Lifecycle:
//  1. Load configuration from environment/flags
//  2. Initialize logger (production or development)
//  3. Register computation engines
//  4. Setup HTTP routes and middleware
//  5. Start HTTP server
//  6. Graceful shutdown on signal
//
// Example Usage:
//
//	cfg := config.LoadOrDefault()
//	srv, err := server.NewServer(cfg)
//	if err := srv.Run(); err != nil {
//	    log.Fatal(err)
//	}
package server
