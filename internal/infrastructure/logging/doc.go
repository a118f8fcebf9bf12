// Package logging provides structured logging using uber/zap.
//
// Production mode emits JSON for machine parsing; development mode emits
// colored console output. Request handlers attach a request ID to every
// line via WithRequest.
//
// Example Usage:
//
//	logger := logging.NewDefault()
//	logger.Info("Server starting", zap.String("port", "8080"))
//	logger.Error("Computation failed", zap.Error(err))
package logging
