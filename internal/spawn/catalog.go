package spawn

import (
	"fmt"
	"log/slog"
	"math/rand"
	"slices"

	"github.com/ReisCook/100zombies/internal/model"
)

// PopulationCatalog holds the set of agent archetypes and draws a
// weighted-random archetype. The active set is either a caller-supplied
// list or the single built-in `standard` default.
type PopulationCatalog struct {
	archetypes  []model.Archetype
	byID        map[string]model.Archetype
	totalWeight float64
}

// NewPopulationCatalog creates a catalog holding the built-in default.
func NewPopulationCatalog() *PopulationCatalog {
	c := &PopulationCatalog{}
	c.set([]model.Archetype{model.StandardArchetype()})
	return c
}

// Register replaces the active archetype set entirely. The built-in default
// is cleared, never merged. Zero-weight archetypes are rejected at
// registration so they can never be drawn.
func (c *PopulationCatalog) Register(archetypes []model.Archetype) error {
	if len(archetypes) == 0 {
		return fmt.Errorf("registering archetypes: empty set")
	}
	for _, a := range archetypes {
		if err := a.Validate(); err != nil {
			return fmt.Errorf("registering archetypes: %w", err)
		}
	}

	c.set(archetypes)

	slog.Info("archetypes registered", "count", len(archetypes), "totalWeight", c.totalWeight)
	return nil
}

func (c *PopulationCatalog) set(archetypes []model.Archetype) {
	c.archetypes = slices.Clone(archetypes)
	c.byID = make(map[string]model.Archetype, len(archetypes))
	c.totalWeight = 0
	for _, a := range archetypes {
		c.byID[a.ID] = a
		c.totalWeight += a.Weight
	}
}

// DrawRandom draws a weighted-random archetype: cumulative weight walk in
// registration order, with the first-registered archetype as the fallback
// for floating-point drift.
func (c *PopulationCatalog) DrawRandom() model.Archetype {
	r := rand.Float64() * c.totalWeight

	acc := 0.0
	for _, a := range c.archetypes {
		acc += a.Weight
		if acc >= r {
			return a
		}
	}
	return c.archetypes[0]
}

// Get returns the archetype with the given id.
func (c *PopulationCatalog) Get(id string) (model.Archetype, bool) {
	a, ok := c.byID[id]
	return a, ok
}

// Default returns the fallback archetype for one-off spawns: `standard` if
// present in the active set, else the first-registered archetype.
func (c *PopulationCatalog) Default() model.Archetype {
	if a, ok := c.byID[model.DefaultArchetypeID]; ok {
		return a
	}
	return c.archetypes[0]
}

// Count returns the number of registered archetypes.
func (c *PopulationCatalog) Count() int {
	return len(c.archetypes)
}
