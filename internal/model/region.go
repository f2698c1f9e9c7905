package model

import "fmt"

// RegionKind discriminates spawn region shapes.
type RegionKind int32

const (
	// RegionCircle - points drawn by uniform angle and uniform radius
	RegionCircle RegionKind = iota
	// RegionRectangle - points drawn uniformly within half extents on X/Z
	RegionRectangle
)

// String returns human-readable region kind name
func (k RegionKind) String() string {
	switch k {
	case RegionCircle:
		return "CIRCLE"
	case RegionRectangle:
		return "RECTANGLE"
	default:
		return "UNKNOWN"
	}
}

// ParseRegionKind parses a config string into a RegionKind.
func ParseRegionKind(s string) (RegionKind, error) {
	switch s {
	case "circle":
		return RegionCircle, nil
	case "rectangle":
		return RegionRectangle, nil
	default:
		return 0, fmt.Errorf("unknown region kind %q", s)
	}
}

// SpawnRegion is a weighted named area spawn positions are sampled from.
// Immutable after configuration.
//
// MinDistance/MaxDistance are carried from configuration but are NOT
// enforced by circle/rectangle sampling; only the no-region fallback
// sampler applies a distance band. Enforcing them here would change the
// spawn density observed in practice, so they stay metadata.
type SpawnRegion struct {
	ID          string
	Kind        RegionKind
	Weight      float64
	MinDistance float64
	MaxDistance float64
	Center      Vec3

	// Radius is used by circle regions only.
	Radius float64
	// HalfExtents is used by rectangle regions only (X/Z; Y is ignored).
	HalfExtents Vec3
}

// Validate checks region fields against configuration constraints.
func (r SpawnRegion) Validate() error {
	if r.ID == "" {
		return fmt.Errorf("spawn region: empty id")
	}
	if r.Weight <= 0 {
		return fmt.Errorf("spawn region %q: weight must be positive, got %v", r.ID, r.Weight)
	}
	switch r.Kind {
	case RegionCircle:
		if r.Radius <= 0 {
			return fmt.Errorf("spawn region %q: circle radius must be positive, got %v", r.ID, r.Radius)
		}
	case RegionRectangle:
		if r.HalfExtents.X <= 0 || r.HalfExtents.Z <= 0 {
			return fmt.Errorf("spawn region %q: rectangle half extents must be positive, got %v/%v",
				r.ID, r.HalfExtents.X, r.HalfExtents.Z)
		}
	default:
		return fmt.Errorf("spawn region %q: unknown kind %d", r.ID, r.Kind)
	}
	return nil
}
