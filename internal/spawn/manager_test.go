package spawn

import (
	"context"
	"errors"
	"testing"

	"github.com/ReisCook/100zombies/internal/model"
	"github.com/ReisCook/100zombies/internal/world"
)

func intPtr(v int) *int           { return &v }
func floatPtr(v float64) *float64 { return &v }

func newTestManager(t *testing.T) *Manager {
	t.Helper()

	registry := world.NewRegistry()
	space := world.NewSpace()
	player := world.NewPlayer(model.NewVec3(0, 0, 0), 100)

	assets := world.NewLibrary()
	assets.AddModel(model.DefaultArchetypeID)

	return NewManager(registry, space, assets, player)
}

func TestManager_PreloadRequiresPlayer(t *testing.T) {
	registry := world.NewRegistry()
	space := world.NewSpace()
	assets := world.NewLibrary()

	m := NewManager(registry, space, assets, nil)

	err := m.PreloadAll(context.Background())
	if !errors.Is(err, ErrNoPlayer) {
		t.Fatalf("PreloadAll without player = %v, want ErrNoPlayer", err)
	}
	if m.PreloadDone() {
		t.Error("preload must not be marked done after abort")
	}
}

func TestManager_PreloadBuildsDisabledRoster(t *testing.T) {
	m := newTestManager(t)
	m.Configure(ConfigPatch{MaxPopulation: intPtr(25)})

	yields := 0
	m.yield = func() { yields++ }

	if err := m.PreloadAll(context.Background()); err != nil {
		t.Fatalf("PreloadAll: %v", err)
	}

	if m.PreloadedCount() != 25 {
		t.Errorf("PreloadedCount = %d, want 25", m.PreloadedCount())
	}
	if m.ActiveCount() != 0 {
		t.Errorf("ActiveCount = %d before activation, want 0", m.ActiveCount())
	}
	if !m.PreloadDone() {
		t.Error("PreloadDone should be true")
	}
	// Cooperative yield every 10 agents.
	if yields != 2 {
		t.Errorf("yield count = %d, want 2", yields)
	}

	for _, agent := range m.preloaded {
		if agent.Enabled() {
			t.Fatal("preloaded agent must be disabled")
		}
		if agent.Handle() != 0 {
			t.Fatal("preloaded agent must not be registered")
		}
	}
}

func TestManager_StagedActivation(t *testing.T) {
	m := newTestManager(t)
	m.Configure(ConfigPatch{
		MaxPopulation:      intPtr(10),
		InitialActiveCount: intPtr(3),
		ActivationRate:     intPtr(2),
		ActivationInterval: floatPtr(2.0),
	})

	if err := m.PreloadAll(context.Background()); err != nil {
		t.Fatalf("PreloadAll: %v", err)
	}

	m.ActivateInitialBatch()

	if m.ActiveCount() != 3 {
		t.Fatalf("ActiveCount after initial batch = %d, want exactly 3", m.ActiveCount())
	}
	if m.PreloadedCount() != 7 {
		t.Fatalf("PreloadedCount = %d, want 7", m.PreloadedCount())
	}

	// 7 remaining at rate 2 → ceil(7/2) = 4 timer firings.
	expected := []int{5, 7, 9, 10}
	for i, want := range expected {
		m.Tick(2.0)
		if m.ActiveCount() != want {
			t.Fatalf("after firing %d: ActiveCount = %d, want %d", i+1, m.ActiveCount(), want)
		}
	}

	if m.ActiveCount() > m.Config().MaxPopulation {
		t.Error("active roster exceeded max population")
	}

	// Timer must self-cancel once the preloaded roster is exhausted.
	if m.activationTask != 0 {
		t.Error("activation task should be cancelled after exhaustion")
	}
	m.Tick(10.0)
	if m.ActiveCount() != 10 {
		t.Errorf("ActiveCount after extra ticks = %d, want 10", m.ActiveCount())
	}
}

func TestManager_ActivationRegistersAgents(t *testing.T) {
	registry := world.NewRegistry()
	space := world.NewSpace()
	player := world.NewPlayer(model.Vec3{}, 100)
	assets := world.NewLibrary()
	assets.AddModel(model.DefaultArchetypeID)

	m := NewManager(registry, space, assets, player)
	m.Configure(ConfigPatch{
		MaxPopulation:      intPtr(4),
		InitialActiveCount: intPtr(4),
	})

	if err := m.PreloadAll(context.Background()); err != nil {
		t.Fatalf("PreloadAll: %v", err)
	}
	m.ActivateInitialBatch()

	if registry.Count() != 4 {
		t.Errorf("registry count = %d, want 4", registry.Count())
	}
	for _, agent := range m.active {
		if !agent.Enabled() {
			t.Error("active agent must be enabled")
		}
		if agent.Handle() == 0 {
			t.Error("active agent must have a registry handle")
		}
	}
}

func TestManager_TickPrunesDeadAgents(t *testing.T) {
	registry := world.NewRegistry()
	space := world.NewSpace()
	player := world.NewPlayer(model.Vec3{}, 100)
	assets := world.NewLibrary()
	assets.AddModel(model.DefaultArchetypeID)

	m := NewManager(registry, space, assets, player)
	m.Configure(ConfigPatch{MaxPopulation: intPtr(3), InitialActiveCount: intPtr(3)})

	if err := m.PreloadAll(context.Background()); err != nil {
		t.Fatalf("PreloadAll: %v", err)
	}
	m.ActivateInitialBatch()

	victim := m.active[1]
	victim.TakeDamage(victim.Health() + 1)

	m.Tick(0.05)

	if m.ActiveCount() != 2 {
		t.Errorf("ActiveCount after prune = %d, want 2", m.ActiveCount())
	}
	if registry.Count() != 2 {
		t.Errorf("registry count after prune = %d, want 2", registry.Count())
	}
	if _, ok := registry.Get(victim.Handle()); ok {
		t.Error("pruned agent still in registry")
	}
	for _, agent := range m.active {
		if agent == victim {
			t.Error("pruned agent still on active roster")
		}
	}
}

func TestManager_TickNoopWhileDisabled(t *testing.T) {
	m := newTestManager(t)
	m.SetEnabled(false)

	fired := false
	m.tasks.Schedule(0.1, func() { fired = true })

	m.Tick(1.0)
	if fired {
		t.Error("Tick must be a no-op while disabled")
	}
}

// One-off spawns bypass the staged pipeline entirely, so their deferred
// combat effects and cleanup must run even when preload was never invoked.
func TestManager_SpawnOneCombatWithoutPreload(t *testing.T) {
	registry := world.NewRegistry()
	space := world.NewSpace()
	player := world.NewPlayer(model.Vec3{}, 100)
	assets := world.NewLibrary()
	assets.AddModel(model.DefaultArchetypeID)

	m := NewManager(registry, space, assets, player)

	agent, err := m.SpawnOne(model.NewVec3(2, 0, 0), "")
	if err != nil {
		t.Fatalf("SpawnOne: %v", err)
	}

	// One second of simulation: the agent enters ATTACK, triggers once,
	// and the delayed damage fires off the task queue.
	for i := 0; i < 20; i++ {
		registry.UpdateAll(0.05)
		m.Tick(0.05)
	}

	if agent.State() != model.StateAttack {
		t.Fatalf("state = %v, want ATTACK", agent.State())
	}
	if player.Health() != 90 {
		t.Errorf("player health = %v after one attack windup, want 90", player.Health())
	}

	// Death without preload still prunes from roster and registry.
	agent.TakeDamage(agent.Health() + 1)
	m.Tick(0.05)

	if m.ActiveCount() != 0 {
		t.Errorf("ActiveCount = %d after death, want 0", m.ActiveCount())
	}
	if registry.Count() != 0 {
		t.Errorf("registry count = %d after death, want 0", registry.Count())
	}
}

func TestManager_SpawnOne(t *testing.T) {
	registry := world.NewRegistry()
	space := world.NewSpace()
	player := world.NewPlayer(model.Vec3{}, 100)
	assets := world.NewLibrary()
	assets.AddModel(model.DefaultArchetypeID)

	m := NewManager(registry, space, assets, player)

	pos := model.NewVec3(12, 0, -7)
	agent, err := m.SpawnOne(pos, "no-such-archetype")
	if err != nil {
		t.Fatalf("SpawnOne: %v", err)
	}

	// Unknown archetype falls back to the default.
	if agent.ArchetypeID() != model.DefaultArchetypeID {
		t.Errorf("archetype = %q, want default %q", agent.ArchetypeID(), model.DefaultArchetypeID)
	}
	if !agent.Enabled() {
		t.Error("spawned agent must be enabled immediately")
	}
	if agent.Position() != pos {
		t.Errorf("position = %v, want %v", agent.Position(), pos)
	}
	if m.ActiveCount() != 1 {
		t.Errorf("ActiveCount = %d, want 1", m.ActiveCount())
	}
	if registry.Count() != 1 {
		t.Errorf("registry count = %d, want 1", registry.Count())
	}
}

func TestManager_Clear(t *testing.T) {
	registry := world.NewRegistry()
	space := world.NewSpace()
	player := world.NewPlayer(model.Vec3{}, 100)
	assets := world.NewLibrary()
	assets.AddModel(model.DefaultArchetypeID)

	m := NewManager(registry, space, assets, player)
	m.Configure(ConfigPatch{
		MaxPopulation:      intPtr(10),
		InitialActiveCount: intPtr(2),
		ActivationRate:     intPtr(1),
		ActivationInterval: floatPtr(1.0),
	})

	if err := m.PreloadAll(context.Background()); err != nil {
		t.Fatalf("PreloadAll: %v", err)
	}
	m.ActivateInitialBatch()

	m.Clear()

	if m.ActiveCount() != 0 || m.PreloadedCount() != 0 {
		t.Errorf("rosters after Clear = %d active / %d preloaded, want 0/0",
			m.ActiveCount(), m.PreloadedCount())
	}
	if registry.Count() != 0 {
		t.Errorf("registry count after Clear = %d, want 0", registry.Count())
	}
	if m.PreloadDone() {
		t.Error("preload flag must reset on Clear")
	}
	// Outstanding deferred tasks (including the recurring activation
	// timer) must not leak into a fresh population.
	if m.tasks.Pending() != 0 {
		t.Errorf("pending tasks after Clear = %d, want 0", m.tasks.Pending())
	}
	if space.BodyCount() != 0 {
		t.Errorf("physics bodies after Clear = %d, want 0", space.BodyCount())
	}
}

type rejectingRegistry struct{}

func (rejectingRegistry) Add(e world.Entity) error { return errors.New("registry full") }
func (rejectingRegistry) Remove(e world.Entity)    {}

func TestManager_ActivationFailureReleasesBody(t *testing.T) {
	space := world.NewSpace()
	player := world.NewPlayer(model.Vec3{}, 100)
	assets := world.NewLibrary()
	assets.AddModel(model.DefaultArchetypeID)

	m := NewManager(rejectingRegistry{}, space, assets, player)
	m.Configure(ConfigPatch{MaxPopulation: intPtr(2), InitialActiveCount: intPtr(2)})

	if err := m.PreloadAll(context.Background()); err != nil {
		t.Fatalf("PreloadAll: %v", err)
	}
	if space.BodyCount() != 2 {
		t.Fatalf("bodies after preload = %d, want 2", space.BodyCount())
	}

	m.ActivateInitialBatch()

	if m.ActiveCount() != 0 {
		t.Errorf("ActiveCount = %d after failed registrations, want 0", m.ActiveCount())
	}
	if space.BodyCount() != 0 {
		t.Errorf("bodies after failed registrations = %d, want 0 (leaked)", space.BodyCount())
	}
}

func TestManager_ConfigureMergesOntoDefaults(t *testing.T) {
	m := newTestManager(t)

	def := DefaultConfig()
	m.Configure(ConfigPatch{MaxPopulation: intPtr(42)})

	got := m.Config()
	if got.MaxPopulation != 42 {
		t.Errorf("MaxPopulation = %d, want 42", got.MaxPopulation)
	}
	if got.ActivationRate != def.ActivationRate {
		t.Errorf("ActivationRate = %d, want unchanged default %d", got.ActivationRate, def.ActivationRate)
	}
	if got.Preload != def.Preload {
		t.Errorf("Preload = %v, want unchanged default %v", got.Preload, def.Preload)
	}
}
