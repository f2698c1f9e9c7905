package world

import (
	"log/slog"
	"sync"

	"github.com/ReisCook/100zombies/internal/model"
)

// DamageSource identifies the agent applying damage to the player.
type DamageSource interface {
	Handle() uint32
	ArchetypeID() string
}

// Player is the read-only external signal every agent consumes. Position
// reads return a snapshot copy, so a multi-threaded host never observes
// torn reads during concurrent agent updates.
type Player struct {
	mu     sync.RWMutex
	pos    model.Vec3
	health float64
}

// NewPlayer creates a player at the given position.
func NewPlayer(pos model.Vec3, health float64) *Player {
	return &Player{pos: pos, health: health}
}

// Position returns a snapshot of the player position.
func (p *Player) Position() model.Vec3 {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.pos
}

// SetPosition moves the player.
func (p *Player) SetPosition(pos model.Vec3) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.pos = pos
}

// Health returns current player health.
func (p *Player) Health() float64 {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.health
}

// TakeDamage applies damage from an attacking agent.
func (p *Player) TakeDamage(amount float64, source DamageSource) {
	p.mu.Lock()
	p.health -= amount
	if p.health < 0 {
		p.health = 0
	}
	health := p.health
	p.mu.Unlock()

	slog.Debug("player damaged",
		"amount", amount,
		"health", health,
		"attacker", source.Handle(),
		"archetype", source.ArchetypeID())
}
