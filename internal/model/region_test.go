package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSpawnRegion_Validate(t *testing.T) {
	circle := SpawnRegion{
		ID:     "graveyard",
		Kind:   RegionCircle,
		Weight: 2,
		Center: NewVec3(-40, 0, 60),
		Radius: 35,
	}
	require.NoError(t, circle.Validate())

	rect := SpawnRegion{
		ID:          "mall_lot",
		Kind:        RegionRectangle,
		Weight:      1,
		Center:      NewVec3(80, 0, -30),
		HalfExtents: NewVec3(25, 0, 40),
	}
	require.NoError(t, rect.Validate())

	t.Run("empty id", func(t *testing.T) {
		r := circle
		r.ID = ""
		assert.Error(t, r.Validate())
	})

	t.Run("zero weight", func(t *testing.T) {
		r := circle
		r.Weight = 0
		assert.Error(t, r.Validate())
	})

	t.Run("circle without radius", func(t *testing.T) {
		r := circle
		r.Radius = 0
		assert.Error(t, r.Validate())
	})

	t.Run("rectangle without extents", func(t *testing.T) {
		r := rect
		r.HalfExtents = Vec3{}
		assert.Error(t, r.Validate())
	})

	t.Run("unknown kind", func(t *testing.T) {
		r := circle
		r.Kind = RegionKind(42)
		assert.Error(t, r.Validate())
	})
}

func TestParseRegionKind(t *testing.T) {
	kind, err := ParseRegionKind("circle")
	require.NoError(t, err)
	assert.Equal(t, RegionCircle, kind)

	kind, err = ParseRegionKind("rectangle")
	require.NoError(t, err)
	assert.Equal(t, RegionRectangle, kind)

	_, err = ParseRegionKind("triangle")
	assert.Error(t, err)
}

func TestVec3_Distances(t *testing.T) {
	a := NewVec3(0, 0, 0)
	b := NewVec3(3, 4, 0)

	assert.InDelta(t, 5.0, a.DistanceTo(b), 1e-9)
	assert.InDelta(t, 25.0, a.DistanceSquared(b), 1e-9)

	c := NewVec3(3, 100, 4)
	assert.InDelta(t, 5.0, a.HorizontalDistanceTo(c), 1e-9)
}
