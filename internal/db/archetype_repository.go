package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ReisCook/100zombies/internal/model"
)

// ArchetypeRepository handles archetype CRUD operations
type ArchetypeRepository struct {
	pool *pgxpool.Pool
}

// NewArchetypeRepository creates a new archetype repository
func NewArchetypeRepository(pool *pgxpool.Pool) *ArchetypeRepository {
	return &ArchetypeRepository{pool: pool}
}

// LoadAll loads all archetypes from database
func (r *ArchetypeRepository) LoadAll(ctx context.Context) ([]model.Archetype, error) {
	query := `
		SELECT id, weight, health, speed, damage, detection_range
		FROM archetypes
		ORDER BY id
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("loading all archetypes: %w", err)
	}
	defer rows.Close()

	archetypes := make([]model.Archetype, 0, 8)

	for rows.Next() {
		var a model.Archetype
		if err := rows.Scan(&a.ID, &a.Weight, &a.Health, &a.Speed, &a.Damage, &a.DetectionRange); err != nil {
			return nil, fmt.Errorf("scanning archetype row: %w", err)
		}
		archetypes = append(archetypes, a)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating archetype rows: %w", err)
	}

	return archetypes, nil
}

// Create inserts a new archetype
func (r *ArchetypeRepository) Create(ctx context.Context, a model.Archetype) error {
	query := `
		INSERT INTO archetypes (id, weight, health, speed, damage, detection_range)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.pool.Exec(ctx, query,
		a.ID, a.Weight, a.Health, a.Speed, a.Damage, a.DetectionRange,
	)
	if err != nil {
		return fmt.Errorf("creating archetype %q: %w", a.ID, err)
	}

	return nil
}
