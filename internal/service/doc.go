// Package service provides the registry for statistics calculation engines.
//
// The registry maintains a catalog of available engines and routes
// calculation requests to them by engine ID.
//
// Components:
//   - Registry: Central engine catalog
//   - Engine: Interface engine implementations satisfy
//
// Features:
//   - Thread-safe engine registration
//   - Catalog listing sorted by engine ID
//   - Calculation dispatch with context passing
//   - Registry statistics for health reporting
//
// Example Usage:
//
//	registry := service.NewRegistry()
//	registry.Register(descriptive.New(100000))
//	result, err := registry.Compute(ctx, "descriptive", "summary", params)
package service
