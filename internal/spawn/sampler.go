package spawn

import (
	"fmt"
	"log/slog"
	"math"
	"math/rand"
	"slices"

	"github.com/ReisCook/100zombies/internal/model"
)

// Fallback sampling band used when no regions are configured: a point at a
// uniformly-random angle and distance from the player, at the player's
// elevation.
const (
	fallbackMinDistance = 30.0
	fallbackMaxDistance = 80.0
)

// SpatialSampler draws uniformly-random points inside a weighted set of
// named regions, with region choice weighted by configured weight.
type SpatialSampler struct {
	regions     []model.SpawnRegion
	totalWeight float64
}

// NewSpatialSampler creates a sampler with no regions configured.
func NewSpatialSampler() *SpatialSampler {
	return &SpatialSampler{}
}

// Configure replaces the region set and recomputes the cached total weight.
// Every region must validate (positive weight, shape params by kind).
func (s *SpatialSampler) Configure(regions []model.SpawnRegion) error {
	total := 0.0
	for _, r := range regions {
		if err := r.Validate(); err != nil {
			return fmt.Errorf("configuring spawn regions: %w", err)
		}
		total += r.Weight
	}

	s.regions = slices.Clone(regions)
	s.totalWeight = total

	slog.Info("spawn regions configured", "count", len(regions), "totalWeight", total)
	return nil
}

// RegionCount returns the number of configured regions.
func (s *SpatialSampler) RegionCount() int {
	return len(s.regions)
}

// Sample draws a spawn position. With no regions configured it falls back
// to the distance band around the player.
func (s *SpatialSampler) Sample(playerPos model.Vec3) model.Vec3 {
	if len(s.regions) == 0 {
		return s.sampleFallback(playerPos)
	}

	region := s.pickRegion()

	switch region.Kind {
	case model.RegionRectangle:
		return model.Vec3{
			X: region.Center.X + (rand.Float64()*2-1)*region.HalfExtents.X,
			Y: region.Center.Y,
			Z: region.Center.Z + (rand.Float64()*2-1)*region.HalfExtents.Z,
		}
	default:
		// Uniform angle × uniform radius in [0, R]. Radius-uniform, NOT
		// area-uniform: points cluster near the center. This exact sampling
		// law is a compatibility contract; do not "fix" it.
		angle := rand.Float64() * 2 * math.Pi
		radius := rand.Float64() * region.Radius
		return model.Vec3{
			X: region.Center.X + math.Sin(angle)*radius,
			Y: region.Center.Y,
			Z: region.Center.Z + math.Cos(angle)*radius,
		}
	}
}

// pickRegion selects a region by cumulative weight walk. The last region is
// the guaranteed fallback if floating-point drift leaves r unmatched.
func (s *SpatialSampler) pickRegion() model.SpawnRegion {
	r := rand.Float64() * s.totalWeight

	acc := 0.0
	for _, region := range s.regions {
		acc += region.Weight
		if acc >= r {
			return region
		}
	}
	return s.regions[len(s.regions)-1]
}

func (s *SpatialSampler) sampleFallback(playerPos model.Vec3) model.Vec3 {
	angle := rand.Float64() * 2 * math.Pi
	dist := fallbackMinDistance + rand.Float64()*(fallbackMaxDistance-fallbackMinDistance)

	return model.Vec3{
		X: playerPos.X + math.Sin(angle)*dist,
		Y: playerPos.Y,
		Z: playerPos.Z + math.Cos(angle)*dist,
	}
}
