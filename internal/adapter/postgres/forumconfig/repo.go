// Package forumconfig implements the forum configuration store.
// One row per workspace; clearing a configuration never cascades to posts.
package forumconfig

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vrcshowcase/showcase-backend/internal/adapter/postgres"
	"github.com/vrcshowcase/showcase-backend/internal/domain"
)

// Repo provides forum configuration persistence backed by PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new forum configuration repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

const getSQL = `
SELECT workspace_id, forum_channel_id, control_thread_id, created_at
FROM forum_configs
WHERE workspace_id = $1`

const setSQL = `
INSERT INTO forum_configs (workspace_id, forum_channel_id, control_thread_id, created_at)
VALUES ($1, $2, $3, $4)
ON CONFLICT (workspace_id)
DO UPDATE SET forum_channel_id = EXCLUDED.forum_channel_id, control_thread_id = EXCLUDED.control_thread_id`

const clearSQL = `
DELETE FROM forum_configs WHERE workspace_id = $1`

const listSQL = `
SELECT workspace_id, forum_channel_id, control_thread_id, created_at
FROM forum_configs
ORDER BY workspace_id`

// Get returns the workspace's forum configuration.
// Returns domain.ErrNotFound if the workspace is not configured.
func (r *Repo) Get(ctx context.Context, workspaceID string) (*domain.ForumConfig, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	var fc domain.ForumConfig
	err := q.QueryRow(ctx, getSQL, workspaceID).
		Scan(&fc.WorkspaceID, &fc.ForumChannelID, &fc.ControlThreadID, &fc.CreatedAt)
	if err != nil {
		return nil, postgres.MapError(err, "forum config", workspaceID)
	}
	return &fc, nil
}

// Set creates or replaces the workspace's forum configuration.
func (r *Repo) Set(ctx context.Context, fc *domain.ForumConfig) error {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	createdAt := fc.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	_, err := q.Exec(ctx, setSQL, fc.WorkspaceID, fc.ForumChannelID, fc.ControlThreadID, createdAt)
	if err != nil {
		return postgres.MapError(err, "forum config", fc.WorkspaceID)
	}
	return nil
}

// Clear removes the workspace's forum configuration. World posts are left
// untouched; a future scan classifies them. Clearing an absent configuration
// reports false.
func (r *Repo) Clear(ctx context.Context, workspaceID string) (bool, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	tag, err := q.Exec(ctx, clearSQL, workspaceID)
	if err != nil {
		return false, postgres.MapError(err, "forum config", workspaceID)
	}
	return tag.RowsAffected() > 0, nil
}

// List returns every configured workspace, for the periodic scan loop.
func (r *Repo) List(ctx context.Context) ([]*domain.ForumConfig, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	rows, err := q.Query(ctx, listSQL)
	if err != nil {
		return nil, fmt.Errorf("list forum configs: %w", err)
	}
	defer rows.Close()

	configs := []*domain.ForumConfig{}
	for rows.Next() {
		var fc domain.ForumConfig
		if err := rows.Scan(&fc.WorkspaceID, &fc.ForumChannelID, &fc.ControlThreadID, &fc.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan forum config: %w", err)
		}
		configs = append(configs, &fc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate forum configs: %w", err)
	}
	return configs, nil
}
