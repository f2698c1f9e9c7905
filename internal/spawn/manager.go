package spawn

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"sync/atomic"

	"github.com/ReisCook/100zombies/internal/ai"
	"github.com/ReisCook/100zombies/internal/model"
	"github.com/ReisCook/100zombies/internal/world"
)

// ErrNoPlayer is returned when preload is requested without a player
// reference to sample spawn positions around.
var ErrNoPlayer = errors.New("no player reference")

// preloadYieldEvery is the cooperative-yield sub-interval during preload:
// control returns to the host scheduler every this many constructed agents
// so a rendering loop can still paint progress feedback.
const preloadYieldEvery = 10

// Config holds population lifecycle settings.
type Config struct {
	MaxPopulation      int
	Preload            bool
	InitialActiveCount int
	ActivationRate     int
	ActivationInterval float64 // seconds between activation batches
}

// DefaultConfig returns the population defaults.
func DefaultConfig() Config {
	return Config{
		MaxPopulation:      100,
		Preload:            true,
		InitialActiveCount: 10,
		ActivationRate:     5,
		ActivationInterval: 2.0,
	}
}

// ConfigPatch is a partial Config: nil fields keep their prior values.
type ConfigPatch struct {
	MaxPopulation      *int
	Preload            *bool
	InitialActiveCount *int
	ActivationRate     *int
	ActivationInterval *float64
}

// Manager orchestrates the population lifecycle: staged preload of the full
// roster, staged activation, ongoing cleanup of dead agents, and on-demand
// single spawns.
type Manager struct {
	cfg     Config
	sampler *SpatialSampler
	catalog *PopulationCatalog
	tasks   *TaskQueue

	registry world.EntityRegistry
	physics  world.PhysicsService
	assets   world.AssetProvider
	player   *world.Player

	// preloaded and active are disjoint: activation is a one-way, one-time
	// move (enable + register). active only ever shrinks by pruning dead
	// agents, never by disabling a live one.
	preloaded []*ai.Agent
	active    []*ai.Agent

	preloadDone    bool
	enabled        bool
	activationTask int64 // 0 = no recurring activation scheduled

	activeCount    atomic.Int32
	preloadedCount atomic.Int32

	yield      func()              // cooperative-yield point during preload
	onProgress func(done, total int)
}

// NewManager creates a population manager. The player reference may be nil;
// preload fails until one is set.
func NewManager(
	registry world.EntityRegistry,
	physics world.PhysicsService,
	assets world.AssetProvider,
	player *world.Player,
) *Manager {
	return &Manager{
		cfg:      DefaultConfig(),
		sampler:  NewSpatialSampler(),
		catalog:  NewPopulationCatalog(),
		tasks:    NewTaskQueue(),
		registry: registry,
		physics:  physics,
		assets:   assets,
		player:   player,
		enabled:  true,
		yield:    runtime.Gosched,
	}
}

// SetPlayer sets the player reference spawn positions are sampled around.
func (m *Manager) SetPlayer(player *world.Player) {
	m.player = player
}

// SetEnabled toggles whether Tick advances the population.
func (m *Manager) SetEnabled(enabled bool) {
	m.enabled = enabled
}

// SetPreloadProgress installs a progress callback invoked at every
// cooperative-yield point during preload.
func (m *Manager) SetPreloadProgress(fn func(done, total int)) {
	m.onProgress = fn
}

// Configure merges a patch onto the current settings; omitted fields keep
// their prior values.
func (m *Manager) Configure(patch ConfigPatch) {
	if patch.MaxPopulation != nil {
		m.cfg.MaxPopulation = *patch.MaxPopulation
	}
	if patch.Preload != nil {
		m.cfg.Preload = *patch.Preload
	}
	if patch.InitialActiveCount != nil {
		m.cfg.InitialActiveCount = *patch.InitialActiveCount
	}
	if patch.ActivationRate != nil {
		m.cfg.ActivationRate = *patch.ActivationRate
	}
	if patch.ActivationInterval != nil && *patch.ActivationInterval > 0 {
		m.cfg.ActivationInterval = *patch.ActivationInterval
	}

	slog.Info("population configured",
		"maxPopulation", m.cfg.MaxPopulation,
		"preload", m.cfg.Preload,
		"initialActive", m.cfg.InitialActiveCount,
		"activationRate", m.cfg.ActivationRate,
		"activationInterval", m.cfg.ActivationInterval)
}

// Config returns the current population settings.
func (m *Manager) Config() Config {
	return m.cfg
}

// ConfigureSpawnAreas delegates to the spatial sampler.
func (m *Manager) ConfigureSpawnAreas(regions []model.SpawnRegion) error {
	return m.sampler.Configure(regions)
}

// RegisterArchetypes delegates to the population catalog.
func (m *Manager) RegisterArchetypes(archetypes []model.Archetype) error {
	return m.catalog.Register(archetypes)
}

// Tasks exposes the sim-clock deferred task queue (agents schedule their
// delayed combat effects on it).
func (m *Manager) Tasks() *TaskQueue {
	return m.tasks
}

// ActiveCount returns the active roster size (O(1) cached count).
func (m *Manager) ActiveCount() int {
	return int(m.activeCount.Load())
}

// PreloadedCount returns the preloaded roster size (O(1) cached count).
func (m *Manager) PreloadedCount() int {
	return int(m.preloadedCount.Load())
}

// PreloadDone reports whether PreloadAll has completed.
func (m *Manager) PreloadDone() bool {
	return m.preloadDone
}

func (m *Manager) agentDeps() ai.Deps {
	return ai.Deps{
		Player:  m.player,
		Physics: m.physics,
		Assets:  m.assets,
		Defer: func(delay float64, fn func()) func() {
			id := m.tasks.Schedule(delay, fn)
			return func() { m.tasks.Cancel(id) }
		},
	}
}

// PreloadAll constructs MaxPopulation agents disabled, spread across
// cooperative yields so the host is not blocked for the whole roster.
// Aborts with ErrNoPlayer if no player reference is available.
func (m *Manager) PreloadAll(ctx context.Context) error {
	if m.player == nil {
		return fmt.Errorf("preloading population: %w", ErrNoPlayer)
	}

	total := m.cfg.MaxPopulation
	for i := 0; i < total; i++ {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("preloading population: %w", err)
		}

		archetype := m.catalog.DrawRandom()
		pos := m.sampler.Sample(m.player.Position())

		agent := ai.NewAgent(archetype, pos, m.agentDeps())
		m.preloaded = append(m.preloaded, agent)
		m.preloadedCount.Add(1)

		if (i+1)%preloadYieldEvery == 0 {
			if m.onProgress != nil {
				m.onProgress(i+1, total)
			}
			m.yield()
		}
	}

	m.preloadDone = true
	slog.Info("population preloaded", "count", len(m.preloaded))
	return nil
}

// ActivateInitialBatch enables the initial batch immediately and schedules
// the recurring staged activation for the remainder. Staged activation is
// what prevents enabling hundreds of agents in a single frame.
func (m *Manager) ActivateInitialBatch() {
	n := min(m.cfg.InitialActiveCount, len(m.preloaded))
	for i := 0; i < n; i++ {
		m.activateNext()
	}

	slog.Info("initial batch activated",
		"active", len(m.active),
		"remaining", len(m.preloaded))

	if len(m.preloaded) > 0 && m.activationTask == 0 {
		m.activationTask = m.tasks.ScheduleRecurring(m.cfg.ActivationInterval, m.activateBatch)
	}
}

// activateBatch enables up to ActivationRate preloaded agents; once the
// preloaded roster is exhausted the recurring task cancels itself.
func (m *Manager) activateBatch() {
	n := min(m.cfg.ActivationRate, len(m.preloaded))
	for i := 0; i < n; i++ {
		m.activateNext()
	}

	if ai.IsDebugEnabled() {
		slog.Debug("activation batch",
			"activated", n,
			"active", len(m.active),
			"remaining", len(m.preloaded))
	}

	if len(m.preloaded) == 0 && m.activationTask != 0 {
		m.tasks.Cancel(m.activationTask)
		m.activationTask = 0
		slog.Info("staged activation complete", "active", len(m.active))
	}
}

// activateNext moves one agent from preloaded to active: enable + register.
func (m *Manager) activateNext() {
	agent := m.preloaded[0]
	m.preloaded = m.preloaded[1:]
	m.preloadedCount.Add(-1)

	if err := m.registry.Add(agent); err != nil {
		slog.Error("registering agent failed", "error", err)
		agent.Release()
		return
	}
	agent.Start()

	m.active = append(m.active, agent)
	m.activeCount.Add(1)
}

// Tick advances the deferred task queue and prunes dead agents from the
// active roster and the entity registry. No-op while disabled. The task
// queue advances regardless of preload state: one-off spawns schedule
// their delayed combat effects on it too, and those must fire even when
// the staged pipeline was never run. Agent-internal advancement happens
// via each agent's own Update, driven by the entity registry, not here.
func (m *Manager) Tick(dt float64) {
	if !m.enabled {
		return
	}

	m.tasks.Advance(dt)
	m.prune()
}

func (m *Manager) prune() {
	kept := m.active[:0]
	for _, agent := range m.active {
		if agent.IsAlive() {
			kept = append(kept, agent)
			continue
		}

		m.registry.Remove(agent)
		agent.Release()
		m.activeCount.Add(-1)

		if ai.IsDebugEnabled() {
			slog.Debug("dead agent pruned",
				"handle", agent.Handle(),
				"archetype", agent.ArchetypeID())
		}
	}
	// Drop trailing references so pruned agents can be collected.
	for i := len(kept); i < len(m.active); i++ {
		m.active[i] = nil
	}
	m.active = kept
}

// SpawnOne immediately creates and activates a single agent outside the
// staged pipeline. Falls back to the default archetype when the id is
// unspecified or unknown.
func (m *Manager) SpawnOne(pos model.Vec3, archetypeID string) (*ai.Agent, error) {
	archetype, ok := m.catalog.Get(archetypeID)
	if !ok {
		if archetypeID != "" {
			slog.Debug("unknown archetype for spawn, using default", "archetype", archetypeID)
		}
		archetype = m.catalog.Default()
	}

	agent := ai.NewAgent(archetype, pos, m.agentDeps())

	if err := m.registry.Add(agent); err != nil {
		agent.Release()
		return nil, fmt.Errorf("spawning agent: %w", err)
	}
	agent.Start()

	m.active = append(m.active, agent)
	m.activeCount.Add(1)

	slog.Info("agent spawned",
		"handle", agent.Handle(),
		"archetype", archetype.ID,
		"position", pos)

	return agent, nil
}

// Clear deregisters every active agent, empties both rosters, resets the
// preload flag, and cancels all outstanding deferred tasks so nothing
// races against a fresh population.
func (m *Manager) Clear() {
	for _, agent := range m.active {
		agent.Stop()
		m.registry.Remove(agent)
		agent.Release()
	}
	for _, agent := range m.preloaded {
		agent.Release()
	}

	m.active = nil
	m.preloaded = nil
	m.activeCount.Store(0)
	m.preloadedCount.Store(0)
	m.preloadDone = false
	m.activationTask = 0
	m.tasks.Clear()

	slog.Info("population cleared")
}
