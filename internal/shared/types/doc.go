// Package types provides shared data structures for the statistics API.
//
// This package defines the types exchanged between engines, the service
// registry, and the HTTP layer, keeping result shapes consistent across
// every calculation.
//
// Core Types:
//   - Record: Single calculation result with formula, steps, and interpretation
//   - Result: Standard response envelope for engine output
//   - Engine: Engine metadata for the catalog
//   - Calc: Individual calculation specification
//   - Parameter: Calculation parameter specification
//
// Results carry both the numeric value and a human-readable breakdown so
// frontends can render worked solutions, not just answers.
//
// Example Usage:
//
//	rec := types.Record{
//	    Value:       types.Float(21.0),
//	    Formula:     "x̄ = Σx / n",
//	    Description: "Arithmetic mean of the dataset",
//	}
package types
