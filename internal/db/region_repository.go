package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ReisCook/100zombies/internal/model"
)

// RegionRepository handles spawn region CRUD operations
type RegionRepository struct {
	pool *pgxpool.Pool
}

// NewRegionRepository creates a new spawn region repository
func NewRegionRepository(pool *pgxpool.Pool) *RegionRepository {
	return &RegionRepository{pool: pool}
}

// LoadAll loads all spawn regions from database
func (r *RegionRepository) LoadAll(ctx context.Context) ([]model.SpawnRegion, error) {
	query := `
		SELECT id, kind, weight, min_distance, max_distance,
		       center_x, center_y, center_z, radius,
		       half_extent_x, half_extent_z
		FROM spawn_regions
		ORDER BY id
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("loading all spawn regions: %w", err)
	}
	defer rows.Close()

	regions := make([]model.SpawnRegion, 0, 8)

	for rows.Next() {
		var (
			region model.SpawnRegion
			kind   string
		)
		if err := rows.Scan(
			&region.ID, &kind, &region.Weight,
			&region.MinDistance, &region.MaxDistance,
			&region.Center.X, &region.Center.Y, &region.Center.Z,
			&region.Radius,
			&region.HalfExtents.X, &region.HalfExtents.Z,
		); err != nil {
			return nil, fmt.Errorf("scanning spawn region row: %w", err)
		}

		parsed, err := model.ParseRegionKind(kind)
		if err != nil {
			return nil, fmt.Errorf("spawn region %q: %w", region.ID, err)
		}
		region.Kind = parsed

		regions = append(regions, region)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating spawn region rows: %w", err)
	}

	return regions, nil
}

// Create inserts a new spawn region
func (r *RegionRepository) Create(ctx context.Context, region model.SpawnRegion) error {
	query := `
		INSERT INTO spawn_regions (id, kind, weight, min_distance, max_distance,
		                           center_x, center_y, center_z, radius,
		                           half_extent_x, half_extent_z)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	kind := "circle"
	if region.Kind == model.RegionRectangle {
		kind = "rectangle"
	}

	_, err := r.pool.Exec(ctx, query,
		region.ID, kind, region.Weight,
		region.MinDistance, region.MaxDistance,
		region.Center.X, region.Center.Y, region.Center.Z,
		region.Radius,
		region.HalfExtents.X, region.HalfExtents.Z,
	)
	if err != nil {
		return fmt.Errorf("creating spawn region %q: %w", region.ID, err)
	}

	return nil
}
