package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/ReisCook/100zombies/internal/model"
	"github.com/ReisCook/100zombies/internal/spawn"
)

// WorldServer holds all configuration for the world server.
type WorldServer struct {
	LogLevel   string `yaml:"log_level"`
	TickMillis int    `yaml:"tick_millis"`

	// Database
	UseDatabase bool           `yaml:"use_database"`
	Database    DatabaseConfig `yaml:"database"`

	// Population lifecycle
	Population PopulationConfig `yaml:"population"`

	// Population data (used directly, or as fallback when the database
	// is unavailable)
	Archetypes   []ArchetypeEntry   `yaml:"archetypes"`
	SpawnRegions []SpawnRegionEntry `yaml:"spawn_regions"`
}

// DatabaseConfig holds PostgreSQL connection parameters.
type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	DBName   string `yaml:"dbname"`
	SSLMode  string `yaml:"sslmode"`
}

// DSN returns the PostgreSQL connection string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode,
	)
}

// PopulationConfig is the population lifecycle section. Pointer fields so
// omitted keys keep prior values when merged onto the manager.
type PopulationConfig struct {
	MaxPopulation        *int  `yaml:"max_population"`
	Preload              *bool `yaml:"preload"`
	InitialActiveCount   *int  `yaml:"initial_active_count"`
	ActivationRate       *int  `yaml:"activation_rate"`
	ActivationIntervalMs *int  `yaml:"activation_interval_ms"`
}

// Patch converts the YAML section to a manager config patch
// (interval milliseconds → seconds).
func (p PopulationConfig) Patch() spawn.ConfigPatch {
	patch := spawn.ConfigPatch{
		MaxPopulation:      p.MaxPopulation,
		Preload:            p.Preload,
		InitialActiveCount: p.InitialActiveCount,
		ActivationRate:     p.ActivationRate,
	}
	if p.ActivationIntervalMs != nil {
		interval := float64(*p.ActivationIntervalMs) / 1000.0
		patch.ActivationInterval = &interval
	}
	return patch
}

// Vec3Entry is a point in config files.
type Vec3Entry struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
	Z float64 `yaml:"z"`
}

// Vec3 converts to the model value type.
func (v Vec3Entry) Vec3() model.Vec3 {
	return model.NewVec3(v.X, v.Y, v.Z)
}

// ArchetypeEntry is one archetype row in config files.
type ArchetypeEntry struct {
	ID             string  `yaml:"id"`
	Weight         float64 `yaml:"weight"`
	Health         float64 `yaml:"health"`
	Speed          float64 `yaml:"speed"`
	Damage         float64 `yaml:"damage"`
	DetectionRange float64 `yaml:"detection_range"`
}

// Archetype converts to the model value type.
func (e ArchetypeEntry) Archetype() model.Archetype {
	return model.Archetype{
		ID:             e.ID,
		Weight:         e.Weight,
		Health:         e.Health,
		Speed:          e.Speed,
		Damage:         e.Damage,
		DetectionRange: e.DetectionRange,
	}
}

// SpawnRegionEntry is one spawn region row in config files.
type SpawnRegionEntry struct {
	ID          string    `yaml:"id"`
	Kind        string    `yaml:"kind"` // circle | rectangle
	Weight      float64   `yaml:"weight"`
	MinDistance float64   `yaml:"min_distance"`
	MaxDistance float64   `yaml:"max_distance"`
	Center      Vec3Entry `yaml:"center"`
	Radius      float64   `yaml:"radius"`
	Size        Vec3Entry `yaml:"size"` // half extents, rectangle only
}

// Region converts to the model value type.
func (e SpawnRegionEntry) Region() (model.SpawnRegion, error) {
	kind, err := model.ParseRegionKind(e.Kind)
	if err != nil {
		return model.SpawnRegion{}, fmt.Errorf("spawn region %q: %w", e.ID, err)
	}

	return model.SpawnRegion{
		ID:          e.ID,
		Kind:        kind,
		Weight:      e.Weight,
		MinDistance: e.MinDistance,
		MaxDistance: e.MaxDistance,
		Center:      e.Center.Vec3(),
		Radius:      e.Radius,
		HalfExtents: e.Size.Vec3(),
	}, nil
}

// ArchetypeList converts all archetype entries.
func (c WorldServer) ArchetypeList() []model.Archetype {
	out := make([]model.Archetype, 0, len(c.Archetypes))
	for _, e := range c.Archetypes {
		out = append(out, e.Archetype())
	}
	return out
}

// RegionList converts all spawn region entries.
func (c WorldServer) RegionList() ([]model.SpawnRegion, error) {
	out := make([]model.SpawnRegion, 0, len(c.SpawnRegions))
	for _, e := range c.SpawnRegions {
		r, err := e.Region()
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, nil
}

// DefaultWorldServer returns WorldServer config with sensible defaults.
func DefaultWorldServer() WorldServer {
	return WorldServer{
		LogLevel:   "info",
		TickMillis: 50,
		Database: DatabaseConfig{
			Host:     "127.0.0.1",
			Port:     5432,
			User:     "zombies",
			Password: "zombies",
			DBName:   "zombies",
			SSLMode:  "disable",
		},
	}
}

// LoadWorldServer loads world server config from a YAML file.
// If the file doesn't exist, returns defaults.
func LoadWorldServer(path string) (WorldServer, error) {
	cfg := DefaultWorldServer()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config %s: %w", path, err)
	}

	return cfg, nil
}
