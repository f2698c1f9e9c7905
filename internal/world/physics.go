package world

import (
	"fmt"

	"github.com/jakecoffman/cp"

	"github.com/ReisCook/100zombies/internal/model"
)

const (
	bodyMass   = 1.0
	bodyRadius = 0.4
)

// Body is a rigid body handle exposing the position and velocity an agent
// reads and writes each tick. Simulation is single-threaded; accessors are
// plain reads/writes.
type Body struct {
	pos model.Vec3
	vel model.Vec3
}

// NewBody creates a body at the given position with zero velocity.
func NewBody(pos model.Vec3) *Body {
	return &Body{pos: pos}
}

// Position returns the current body position.
func (b *Body) Position() model.Vec3 { return b.pos }

// SetPosition sets the body position.
func (b *Body) SetPosition(pos model.Vec3) { b.pos = pos }

// Velocity returns the current body velocity.
func (b *Body) Velocity() model.Vec3 { return b.vel }

// SetVelocity sets the body velocity.
func (b *Body) SetVelocity(vel model.Vec3) { b.vel = vel }

// PhysicsService is the rigid-body service boundary agents are attached to.
type PhysicsService interface {
	AddBody(b *Body) error
	RemoveBody(b *Body)
}

type spaceEntry struct {
	body  *cp.Body
	shape *cp.Shape
}

// Space is the chipmunk-backed PhysicsService. Agent bodies live on the
// X/Z plane; elevation is integrated outside the solver and carried
// through unchanged.
type Space struct {
	space  *cp.Space
	bodies map[*Body]*spaceEntry
}

// NewSpace creates a physics space with no gravity (top-down plane).
func NewSpace() *Space {
	space := cp.NewSpace()
	space.Iterations = 10

	return &Space{
		space:  space,
		bodies: make(map[*Body]*spaceEntry),
	}
}

// AddBody attaches a body to the solver as a circle on the X/Z plane.
func (s *Space) AddBody(b *Body) error {
	if _, ok := s.bodies[b]; ok {
		return fmt.Errorf("body already attached")
	}

	cpBody := cp.NewBody(bodyMass, cp.MomentForCircle(bodyMass, 0, bodyRadius, cp.Vector{}))
	cpBody.SetPosition(cp.Vector{X: b.pos.X, Y: b.pos.Z})

	shape := cp.NewCircle(cpBody, bodyRadius, cp.Vector{})
	shape.SetElasticity(0)
	shape.SetFriction(0.7)

	s.space.AddBody(cpBody)
	s.space.AddShape(shape)

	s.bodies[b] = &spaceEntry{body: cpBody, shape: shape}
	return nil
}

// RemoveBody detaches a body from the solver. No-op if not attached.
func (s *Space) RemoveBody(b *Body) {
	entry, ok := s.bodies[b]
	if !ok {
		return
	}

	s.space.RemoveShape(entry.shape)
	s.space.RemoveBody(entry.body)
	delete(s.bodies, b)
}

// BodyCount returns the number of attached bodies.
func (s *Space) BodyCount() int {
	return len(s.bodies)
}

// Step advances the solver by dt seconds: pushes body velocities in,
// steps the space, and pulls resolved positions back out. Elevation is
// integrated directly from the vertical velocity component.
func (s *Space) Step(dt float64) {
	if dt <= 0 {
		return
	}

	for b, entry := range s.bodies {
		entry.body.SetVelocity(b.vel.X, b.vel.Z)
	}

	s.space.Step(dt)

	for b, entry := range s.bodies {
		p := entry.body.Position()
		b.pos = model.Vec3{X: p.X, Y: b.pos.Y + b.vel.Y*dt, Z: p.Y}
	}
}
