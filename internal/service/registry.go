package service

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/zealotai/statistics-api/internal/shared/types"
)

// Engine is the interface every computation engine implements.
type Engine interface {
	Definition() types.Engine
	Compute(ctx context.Context, calc string, params map[string]interface{}) (interface{}, error)
}

// Registry manages engine registration and dispatch.
type Registry struct {
	engines sync.Map
}

// NewRegistry creates an empty engine registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Register adds an engine under the ID from its definition.
func (r *Registry) Register(engine Engine) error {
	def := engine.Definition()
	if def.ID == "" {
		return fmt.Errorf("engine ID cannot be empty")
	}

	r.engines.Store(def.ID, engine)
	return nil
}

// Unregister removes an engine.
func (r *Registry) Unregister(engineID string) {
	r.engines.Delete(engineID)
}

// Get retrieves an engine by ID.
func (r *Registry) Get(engineID string) (Engine, bool) {
	val, ok := r.engines.Load(engineID)
	if !ok {
		return nil, false
	}
	return val.(Engine), true
}

// Catalog returns every registered engine definition, sorted by ID so the
// help endpoint is stable across restarts.
func (r *Registry) Catalog() []types.Engine {
	var engines []types.Engine
	r.engines.Range(func(_, value interface{}) bool {
		engines = append(engines, value.(Engine).Definition())
		return true
	})
	sort.Slice(engines, func(i, j int) bool {
		return engines[i].ID < engines[j].ID
	})
	return engines
}

// Compute runs a calculation on the named engine.
func (r *Registry) Compute(ctx context.Context, engineID, calc string, params map[string]interface{}) (interface{}, error) {
	engine, ok := r.Get(engineID)
	if !ok {
		return nil, fmt.Errorf("engine not found: %s", engineID)
	}
	return engine.Compute(ctx, calc, params)
}

// Stats returns registry statistics.
func (r *Registry) Stats() map[string]interface{} {
	var total, totalCalcs int

	r.engines.Range(func(_, value interface{}) bool {
		def := value.(Engine).Definition()
		total++
		totalCalcs += len(def.Calculations)
		return true
	})

	return map[string]interface{}{
		"total_engines":      total,
		"total_calculations": totalCalcs,
	}
}
