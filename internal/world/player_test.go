package world

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ReisCook/100zombies/internal/model"
)

type stubAttacker struct{}

func (stubAttacker) Handle() uint32      { return 100001 }
func (stubAttacker) ArchetypeID() string { return "standard" }

func TestPlayer_TakeDamage(t *testing.T) {
	p := NewPlayer(model.Vec3{}, 100)

	p.TakeDamage(30, stubAttacker{})
	assert.Equal(t, 70.0, p.Health())

	// Health never goes negative.
	p.TakeDamage(1000, stubAttacker{})
	assert.Equal(t, 0.0, p.Health())
}

func TestPlayer_Position(t *testing.T) {
	p := NewPlayer(model.NewVec3(1, 2, 3), 100)
	assert.Equal(t, model.NewVec3(1, 2, 3), p.Position())

	p.SetPosition(model.NewVec3(-4, 0, 9))
	assert.Equal(t, model.NewVec3(-4, 0, 9), p.Position())
}
