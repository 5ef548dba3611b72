// Package tag implements the workspace tag store using PostgreSQL.
// Tags are keyed by the external (workspace_id, tag_id); renames overwrite.
package tag

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vrcshowcase/showcase-backend/internal/adapter/postgres"
	"github.com/vrcshowcase/showcase-backend/internal/domain"
)

// Repo provides tag persistence backed by PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new tag repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

const upsertSQL = `
INSERT INTO tags (workspace_id, tag_id, tag_name, emoji, updated_at)
VALUES ($1, $2, $3, $4, $5)
ON CONFLICT (workspace_id, tag_id)
DO UPDATE SET tag_name = EXCLUDED.tag_name, emoji = EXCLUDED.emoji, updated_at = EXCLUDED.updated_at
RETURNING (xmax = 0)`

const listSQL = `
SELECT workspace_id, tag_id, tag_name, emoji, updated_at
FROM tags
WHERE workspace_id = $1
ORDER BY tag_name, tag_id`

const getByIDsSQL = `
SELECT workspace_id, tag_id, tag_name, emoji, updated_at
FROM tags
WHERE workspace_id = $1 AND tag_id = ANY($2)
ORDER BY tag_id`

const deleteSQL = `
DELETE FROM tags WHERE workspace_id = $1 AND tag_id = $2`

// Upsert inserts or overwrites a tag definition.
// Returns true when the tag was newly inserted, false on overwrite.
func (r *Repo) Upsert(ctx context.Context, t *domain.Tag) (bool, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	updatedAt := t.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = time.Now().UTC()
	}

	var inserted bool
	err := q.QueryRow(ctx, upsertSQL, t.WorkspaceID, t.TagID, t.Name, t.Emoji, updatedAt).Scan(&inserted)
	if err != nil {
		return false, postgres.MapError(err, "tag", t.WorkspaceID+"/"+t.TagID)
	}
	return inserted, nil
}

// List returns all workspace tags ordered by name.
// Returns an empty slice (not nil) when the workspace has no tags.
func (r *Repo) List(ctx context.Context, workspaceID string) ([]*domain.Tag, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	rows, err := q.Query(ctx, listSQL, workspaceID)
	if err != nil {
		return nil, fmt.Errorf("list tags: %w", err)
	}
	defer rows.Close()

	return scanTags(rows)
}

// GetByIDs returns the workspace tags matching the given external ids.
// Missing ids are simply absent from the result; the caller computes the
// difference when it needs to reject unknown ids.
func (r *Repo) GetByIDs(ctx context.Context, workspaceID string, tagIDs []string) ([]*domain.Tag, error) {
	if len(tagIDs) == 0 {
		return []*domain.Tag{}, nil
	}

	q := postgres.QuerierFromCtx(ctx, r.pool)

	rows, err := q.Query(ctx, getByIDsSQL, workspaceID, tagIDs)
	if err != nil {
		return nil, fmt.Errorf("get tags by ids: %w", err)
	}
	defer rows.Close()

	return scanTags(rows)
}

// Delete removes a tag definition. Deleting an absent tag is not an error;
// it reports false.
func (r *Repo) Delete(ctx context.Context, workspaceID, tagID string) (bool, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	tag, err := q.Exec(ctx, deleteSQL, workspaceID, tagID)
	if err != nil {
		return false, postgres.MapError(err, "tag", workspaceID+"/"+tagID)
	}
	return tag.RowsAffected() > 0, nil
}

func scanTags(rows pgx.Rows) ([]*domain.Tag, error) {
	tags := []*domain.Tag{}
	for rows.Next() {
		var t domain.Tag
		if err := rows.Scan(&t.WorkspaceID, &t.TagID, &t.Name, &t.Emoji, &t.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan tag: %w", err)
		}
		tags = append(tags, &t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate tags: %w", err)
	}
	return tags, nil
}
