// Package recipe provides the immutable production recipe registry.
package recipe

import "fmt"

// Recipe converts input resources into output resources over a duration.
// Quantities are per production cycle; duration is in sim-seconds.
type Recipe struct {
	ID       string             `json:"id"`
	Inputs   map[string]float64 `json:"inputs"`
	Outputs  map[string]float64 `json:"outputs"`
	Duration float64            `json:"duration"`
}

// Registry holds recipes by identifier. Recipes are immutable once
// registered: lookups hand out defensive copies.
type Registry struct {
	recipes map[string]Recipe
}

// NewRegistry creates an empty recipe registry.
func NewRegistry() *Registry {
	return &Registry{recipes: make(map[string]Recipe)}
}

// Register adds a recipe. Duplicate identifiers and non-positive
// durations are rejected.
func (r *Registry) Register(rec Recipe) error {
	if rec.ID == "" {
		return fmt.Errorf("recipe id must not be empty")
	}
	if rec.Duration <= 0 {
		return fmt.Errorf("recipe %s: duration must be positive", rec.ID)
	}
	if _, dup := r.recipes[rec.ID]; dup {
		return fmt.Errorf("recipe %s already registered", rec.ID)
	}
	r.recipes[rec.ID] = Recipe{
		ID:       rec.ID,
		Inputs:   copyQuantities(rec.Inputs),
		Outputs:  copyQuantities(rec.Outputs),
		Duration: rec.Duration,
	}
	return nil
}

// Get resolves a recipe by identifier. The returned recipe is a copy;
// mutating it does not affect the registry.
func (r *Registry) Get(id string) (Recipe, bool) {
	rec, ok := r.recipes[id]
	if !ok {
		return Recipe{}, false
	}
	return Recipe{
		ID:       rec.ID,
		Inputs:   copyQuantities(rec.Inputs),
		Outputs:  copyQuantities(rec.Outputs),
		Duration: rec.Duration,
	}, true
}

// Len returns the number of registered recipes.
func (r *Registry) Len() int {
	return len(r.recipes)
}

func copyQuantities(src map[string]float64) map[string]float64 {
	dst := make(map[string]float64, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}
