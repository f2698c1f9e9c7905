package model

import "fmt"

// DefaultArchetypeID is the built-in archetype used when no set is registered
// and as the fallback for unknown archetype ids on one-off spawns.
const DefaultArchetypeID = "standard"

// Archetype is a named bundle of combat and movement stats agents are
// instantiated from. Immutable after registration.
type Archetype struct {
	ID             string
	Weight         float64
	Health         float64
	Speed          float64
	Damage         float64
	DetectionRange float64
}

// Validate checks archetype fields against registration constraints.
// Weight must be strictly positive: a zero-weight archetype would be
// unselectable and is rejected up front rather than silently ignored.
func (a Archetype) Validate() error {
	if a.ID == "" {
		return fmt.Errorf("archetype: empty id")
	}
	if a.Weight <= 0 {
		return fmt.Errorf("archetype %q: weight must be positive, got %v", a.ID, a.Weight)
	}
	if a.Health <= 0 {
		return fmt.Errorf("archetype %q: health must be positive, got %v", a.ID, a.Health)
	}
	if a.Speed <= 0 {
		return fmt.Errorf("archetype %q: speed must be positive, got %v", a.ID, a.Speed)
	}
	if a.Damage < 0 {
		return fmt.Errorf("archetype %q: damage must be non-negative, got %v", a.ID, a.Damage)
	}
	if a.DetectionRange < 0 {
		return fmt.Errorf("archetype %q: detection range must be non-negative, got %v", a.ID, a.DetectionRange)
	}
	return nil
}

// StandardArchetype returns the built-in default archetype.
func StandardArchetype() Archetype {
	return Archetype{
		ID:             DefaultArchetypeID,
		Weight:         1,
		Health:         100,
		Speed:          3.5,
		Damage:         10,
		DetectionRange: 30,
	}
}
