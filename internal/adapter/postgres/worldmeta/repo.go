// Package worldmeta implements the cached world metadata store.
// One row per world id, shared across workspaces; overwritten on refetch.
package worldmeta

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vrcshowcase/showcase-backend/internal/adapter/postgres"
	"github.com/vrcshowcase/showcase-backend/internal/domain"
)

// Repo provides world metadata persistence backed by PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new world metadata repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

const upsertSQL = `
INSERT INTO worlds (world_id, name, author_name, description, image_url, capacity, platform, fetched_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
ON CONFLICT (world_id)
DO UPDATE SET name = EXCLUDED.name, author_name = EXCLUDED.author_name,
              description = EXCLUDED.description, image_url = EXCLUDED.image_url,
              capacity = EXCLUDED.capacity, platform = EXCLUDED.platform,
              fetched_at = EXCLUDED.fetched_at`

const getSQL = `
SELECT world_id, name, author_name, description, image_url, capacity, platform, fetched_at
FROM worlds
WHERE world_id = $1`

const getByIDsSQL = `
SELECT world_id, name, author_name, description, image_url, capacity, platform, fetched_at
FROM worlds
WHERE world_id = ANY($1)`

// Upsert stores or overwrites a metadata snapshot.
func (r *Repo) Upsert(ctx context.Context, m *domain.WorldMetadata) error {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	fetchedAt := m.FetchedAt
	if fetchedAt.IsZero() {
		fetchedAt = time.Now().UTC()
	}

	_, err := q.Exec(ctx, upsertSQL,
		m.WorldID, m.Name, m.AuthorName, m.Description, m.ImageURL, m.Capacity, m.Platform, fetchedAt,
	)
	if err != nil {
		return postgres.MapError(err, "world metadata", m.WorldID)
	}
	return nil
}

// Get returns the stored snapshot for a world.
// Returns domain.ErrNotFound if none is stored.
func (r *Repo) Get(ctx context.Context, worldID string) (*domain.WorldMetadata, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	var m domain.WorldMetadata
	err := q.QueryRow(ctx, getSQL, worldID).
		Scan(&m.WorldID, &m.Name, &m.AuthorName, &m.Description, &m.ImageURL, &m.Capacity, &m.Platform, &m.FetchedAt)
	if err != nil {
		return nil, postgres.MapError(err, "world metadata", worldID)
	}
	return &m, nil
}

// GetByIDs returns stored snapshots keyed by world id (batch for the
// drift scanner). Absent worlds are simply missing from the map.
func (r *Repo) GetByIDs(ctx context.Context, worldIDs []string) (map[string]*domain.WorldMetadata, error) {
	result := make(map[string]*domain.WorldMetadata, len(worldIDs))
	if len(worldIDs) == 0 {
		return result, nil
	}

	q := postgres.QuerierFromCtx(ctx, r.pool)

	rows, err := q.Query(ctx, getByIDsSQL, worldIDs)
	if err != nil {
		return nil, fmt.Errorf("get world metadata by ids: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var m domain.WorldMetadata
		if err := rows.Scan(&m.WorldID, &m.Name, &m.AuthorName, &m.Description, &m.ImageURL, &m.Capacity, &m.Platform, &m.FetchedAt); err != nil {
			return nil, fmt.Errorf("scan world metadata: %w", err)
		}
		result[m.WorldID] = &m
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate world metadata: %w", err)
	}
	return result, nil
}
