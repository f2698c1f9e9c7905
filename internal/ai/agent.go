package ai

import (
	"log/slog"
	"math"
	"math/rand"

	"github.com/ReisCook/100zombies/internal/model"
	"github.com/ReisCook/100zombies/internal/world"
)

// Behavior constants. Durations are simulated seconds.
const (
	perceptionInterval = 0.2  // visibility re-evaluation cadence
	chaseGracePeriod   = 8.0  // unseen time in CHASE before giving up
	attackRange        = 2.5  // enter ATTACK at this distance
	attackRangeSlack   = 1.2  // leave ATTACK beyond slack × attackRange
	attackCooldown     = 1.8  // minimum time between attack triggers
	damageDelay        = 0.5  // trigger → damage application (animation-synced)
	recoverDelay       = 1.2  // trigger → return to CHASE
	idleDriftChance    = 0.01 // per-tick probability of random yaw drift
	turnRate           = 6.0  // yaw damping response rate
	maxTurnSpeed       = 2 * math.Pi // rad/s angular rate bound

	farDistance     = 50.0
	veryFarDistance = 80.0
	farTickInterval = 3.0 // coarse think cadence beyond farDistance
)

// DeferFunc schedules fn to run after delay simulated seconds and returns a
// cancel function. Injected by the population manager to avoid an import
// cycle with the spawn package; callbacks must re-validate agent state when
// they fire.
type DeferFunc func(delay float64, fn func()) (cancel func())

// Deps are the external collaborators an agent is constructed with.
// Explicit constructor injection — agents never reach into shared engine
// context.
type Deps struct {
	Player  *world.Player
	Physics world.PhysicsService
	Assets  world.AssetProvider
	Defer   DeferFunc
}

// Transform is the world-space placement handed to the visual layer,
// refreshed every tick regardless of distance tier.
type Transform struct {
	Position model.Vec3
	Yaw      float64
}

// Agent is one simulated hostile: position, health, and a finite-state
// behavior machine (IDLE → CHASE → ATTACK → DEATH) driven by perception
// and combat timers, with distance-based update-cost throttling.
type Agent struct {
	handle    uint32
	archetype model.Archetype

	pos model.Vec3
	yaw float64
	vel model.Vec3

	body      *world.Body // nil when physics attach failed (degraded mode)
	mdl       *world.Model
	transform Transform

	health    float64
	maxHealth float64

	state       model.AgentState
	timeInState float64
	timeAlive   float64

	canSeePlayer       bool
	lastKnownPlayerPos *model.Vec3
	timeUnseen         float64

	perceptionTimer float64
	attackTimer     float64
	coarseAccum     float64
	tier            DistanceTier

	enabled bool
	alive   bool

	player  *world.Player
	physics world.PhysicsService
	deferFn DeferFunc
}

// NewAgent constructs a fully-initialized, disabled agent.
//
// Asset load failure must not abort creation: the agent falls back to a
// placeholder visual and runs full behavioral simulation. Physics attach
// failure is reported but the agent still runs state logic on its own
// stored position.
func NewAgent(archetype model.Archetype, pos model.Vec3, deps Deps) *Agent {
	a := &Agent{
		archetype: archetype,
		pos:       pos,
		health:    archetype.Health,
		maxHealth: archetype.Health,
		state:     model.StateIdle,
		alive:     true,
		player:    deps.Player,
		physics:   deps.Physics,
		deferFn:   deps.Defer,
	}
	a.transform = Transform{Position: pos, Yaw: 0}

	mdl, err := deps.Assets.Model(archetype.ID)
	if err != nil {
		slog.Warn("agent model load failed, using placeholder",
			"archetype", archetype.ID,
			"error", err)
		mdl = world.PlaceholderModel(archetype.ID)
	}
	a.mdl = mdl

	body := world.NewBody(pos)
	if err := deps.Physics.AddBody(body); err != nil {
		slog.Warn("agent physics attach failed, degraded position-only simulation",
			"archetype", archetype.ID,
			"error", err)
	} else {
		a.body = body
	}

	return a
}

// Handle returns the registry-assigned identity handle.
func (a *Agent) Handle() uint32 { return a.handle }

// SetHandle assigns the identity handle (called by the entity registry).
func (a *Agent) SetHandle(handle uint32) { a.handle = handle }

// ArchetypeID returns the id of the archetype this agent was built from.
func (a *Agent) ArchetypeID() string { return a.archetype.ID }

// State returns the current behavior state.
func (a *Agent) State() model.AgentState { return a.state }

// IsAlive reports whether the agent is still alive. Becomes false the
// instant DEATH is entered; pruning does not wait for an animation.
func (a *Agent) IsAlive() bool { return a.alive }

// Enabled reports whether the agent participates in simulation.
func (a *Agent) Enabled() bool { return a.enabled }

// Position returns the agent's current position.
func (a *Agent) Position() model.Vec3 { return a.pos }

// Yaw returns the agent's current yaw rotation in radians.
func (a *Agent) Yaw() float64 { return a.yaw }

// Health returns current health. Not clamped; may be negative after death.
func (a *Agent) Health() float64 { return a.health }

// MaxHealth returns the archetype health this agent started with.
func (a *Agent) MaxHealth() float64 { return a.maxHealth }

// TimeAlive returns accumulated simulated seconds since enable.
func (a *Agent) TimeAlive() float64 { return a.timeAlive }

// CanSeePlayer returns the most recent perception result.
func (a *Agent) CanSeePlayer() bool { return a.canSeePlayer }

// Model returns the visual representation (may be a placeholder).
func (a *Agent) Model() *world.Model { return a.mdl }

// Body returns the physics body, or nil in degraded mode.
func (a *Agent) Body() *world.Body { return a.body }

// Tier returns the distance tier computed on the last update.
func (a *Agent) Tier() DistanceTier { return a.tier }

// Transform returns the world-space placement for the visual layer.
func (a *Agent) Transform() Transform { return a.transform }

// CurrentAnimation returns the clip selected for the current state and tier.
func (a *Agent) CurrentAnimation() string {
	return AnimationFor(a.state, a.tier)
}

// Start enables the agent. One-way: a live agent is never disabled back
// into the preloaded roster.
func (a *Agent) Start() {
	a.enabled = true

	if IsDebugEnabled() {
		slog.Debug("agent enabled",
			"handle", a.handle,
			"archetype", a.archetype.ID,
			"state", a.state)
	}
}

// Stop disables the agent and zeroes its velocity. Used only when the
// whole population is being torn down.
func (a *Agent) Stop() {
	a.enabled = false
	a.setVelocity(model.Vec3{})

	if IsDebugEnabled() {
		slog.Debug("agent disabled", "handle", a.handle)
	}
}

// Release detaches the agent's physics body. Called when the agent is
// pruned; the agent object is discarded afterwards, never reused.
func (a *Agent) Release() {
	if a.body != nil {
		a.physics.RemoveBody(a.body)
		a.body = nil
	}
}

// TakeDamage subtracts health and forces the DEATH transition when health
// crosses zero while the agent is alive. Health is not clamped. Repeated
// calls after death have no further state effect.
func (a *Agent) TakeDamage(amount float64) {
	a.health -= amount

	if a.alive && a.health <= 0 {
		a.die()
	}
}

func (a *Agent) die() {
	a.setState(model.StateDeath)
	a.alive = false
	a.setVelocity(model.Vec3{})

	slog.Debug("agent died",
		"handle", a.handle,
		"archetype", a.archetype.ID,
		"timeAlive", a.timeAlive)
}

func (a *Agent) setState(state model.AgentState) {
	if a.state == state {
		return
	}
	old := a.state
	a.state = state
	a.timeInState = 0

	if IsDebugEnabled() {
		slog.Debug("agent state changed",
			"handle", a.handle,
			"archetype", a.archetype.ID,
			"from", old,
			"to", state)
	}
}

func (a *Agent) setVelocity(vel model.Vec3) {
	a.vel = vel
	if a.body != nil {
		a.body.SetVelocity(vel)
	}
}

// Update advances the agent by dt simulated seconds. Invoked by the entity
// registry each tick; the player position is the only external signal and
// is snapshot-read once per update.
func (a *Agent) Update(dt float64) {
	if !a.enabled {
		return
	}
	a.timeAlive += dt

	if a.state == model.StateDeath {
		a.refreshTransform()
		return
	}

	playerPos := a.player.Position()

	dist := a.pos.DistanceTo(playerPos)
	a.tier = TierFor(dist)

	// Beyond veryFarDistance the position stops tracking the physics body:
	// the agent pauses spatially until it re-enters range.
	if a.tier != TierVeryFar && a.body != nil {
		a.pos = a.body.Position()
		dist = a.pos.DistanceTo(playerPos)
		a.tier = TierFor(dist)
	}

	// Beyond farDistance the state machine and perception still advance,
	// but at a coarse cadence so distant agents are not frozen forever.
	thinkDt := dt
	if a.tier != TierNear {
		a.coarseAccum += dt
		if a.coarseAccum < farTickInterval {
			a.refreshTransform()
			return
		}
		thinkDt = a.coarseAccum
		a.coarseAccum = 0
	} else {
		a.coarseAccum = 0
	}

	a.timeInState += thinkDt
	a.updatePerception(thinkDt, playerPos, dist)

	switch a.state {
	case model.StateIdle:
		a.thinkIdle()
	case model.StateChase:
		a.thinkChase(thinkDt, dist)
	case model.StateAttack:
		a.thinkAttack(thinkDt, playerPos, dist)
	}

	if a.body == nil {
		// Degraded mode: position is never corrected by physics, so
		// integrate the stored position directly.
		a.pos = a.pos.Add(a.vel.Scale(thinkDt))
	}

	a.refreshTransform()
}

// refreshTransform publishes the world-space placement every tick, from
// whatever position value is currently held.
func (a *Agent) refreshTransform() {
	a.transform = Transform{Position: a.pos, Yaw: a.yaw}
}

// updatePerception re-evaluates visibility on a fixed countdown cadence,
// independent of tick rate. Visibility is purely distance-based.
func (a *Agent) updatePerception(dt float64, playerPos model.Vec3, dist float64) {
	if a.canSeePlayer {
		a.timeUnseen = 0
	} else {
		a.timeUnseen += dt
	}

	a.perceptionTimer -= dt
	if a.perceptionTimer > 0 {
		return
	}
	a.perceptionTimer = perceptionInterval

	visible := dist <= a.archetype.DetectionRange
	wasVisible := a.canSeePlayer
	a.canSeePlayer = visible

	if visible {
		p := playerPos
		a.lastKnownPlayerPos = &p
		a.timeUnseen = 0
	}

	// Rising edge while idle triggers the chase immediately.
	if visible && !wasVisible && a.state == model.StateIdle {
		a.setState(model.StateChase)
	}
}

// thinkIdle holds position with occasional small random yaw drift.
func (a *Agent) thinkIdle() {
	a.setVelocity(model.Vec3{})

	if rand.Float64() < idleDriftChance {
		a.yaw = wrapAngle(a.yaw + (rand.Float64()-0.5)*math.Pi/2)
	}
}

// thinkChase pursues the last known player position in a straight line.
func (a *Agent) thinkChase(dt float64, dist float64) {
	if dist <= attackRange {
		a.setVelocity(model.Vec3{})
		a.setState(model.StateAttack)
		return
	}

	// Give up after the grace period without perceiving the player.
	if a.timeUnseen > chaseGracePeriod {
		a.setVelocity(model.Vec3{})
		a.setState(model.StateIdle)
		return
	}

	if a.lastKnownPlayerPos == nil {
		return
	}

	dir := a.lastKnownPlayerPos.Sub(a.pos)
	a.turnToward(math.Atan2(dir.X, dir.Z), dt)

	// Horizontal velocity along the facing direction at chase speed.
	a.setVelocity(model.Vec3{
		X: math.Sin(a.yaw) * a.archetype.Speed,
		Z: math.Cos(a.yaw) * a.archetype.Speed,
	})
}

// thinkAttack faces the player and triggers cooldown-gated attacks whose
// damage lands on a delay, re-validated at apply time.
func (a *Agent) thinkAttack(dt float64, playerPos model.Vec3, dist float64) {
	a.setVelocity(model.Vec3{})

	dir := playerPos.Sub(a.pos)
	a.turnToward(math.Atan2(dir.X, dir.Z), dt)

	if dist > attackRange*attackRangeSlack {
		a.setState(model.StateChase)
		return
	}

	a.attackTimer -= dt
	if a.attackTimer > 0 {
		return
	}
	a.attackTimer = attackCooldown
	a.triggerAttack()
}

// triggerAttack plays the attack cue and schedules the animation-synced
// damage application plus the recovery back to CHASE. Both callbacks
// re-check current state when they fire: the agent may have died or the
// player may have left range during the deferral.
func (a *Agent) triggerAttack() {
	if IsDebugEnabled() {
		slog.Debug("agent attack triggered",
			"handle", a.handle,
			"archetype", a.archetype.ID)
	}

	a.deferFn(damageDelay, func() {
		if a.state != model.StateAttack {
			return
		}
		if a.pos.DistanceTo(a.player.Position()) > attackRange*attackRangeSlack {
			return
		}
		a.player.TakeDamage(a.archetype.Damage, a)
	})

	a.deferFn(recoverDelay, func() {
		// Guard against re-triggering a return if the state already
		// changed (e.g. to DEATH).
		if a.state == model.StateAttack {
			a.setState(model.StateChase)
		}
	})
}

// turnToward rotates yaw toward the desired angle with a critically damped
// response, bounded by maxTurnSpeed. Never an instantaneous snap.
func (a *Agent) turnToward(desired float64, dt float64) {
	diff := wrapAngle(desired - a.yaw)

	step := diff * (1 - math.Exp(-turnRate*dt))
	limit := maxTurnSpeed * dt
	if step > limit {
		step = limit
	} else if step < -limit {
		step = -limit
	}

	a.yaw = wrapAngle(a.yaw + step)
}

// wrapAngle normalizes an angle to (-π, π].
func wrapAngle(angle float64) float64 {
	for angle > math.Pi {
		angle -= 2 * math.Pi
	}
	for angle <= -math.Pi {
		angle += 2 * math.Pi
	}
	return angle
}
