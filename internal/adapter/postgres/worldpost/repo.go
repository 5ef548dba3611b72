// Package worldpost implements the World Post registry store using PostgreSQL.
// The (workspace_id, world_id) and (workspace_id, thread_id) unique
// constraints are the engine's correctness backstop for concurrent admission.
package worldpost

import (
	"context"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vrcshowcase/showcase-backend/internal/adapter/postgres"
	"github.com/vrcshowcase/showcase-backend/internal/domain"
)

// Repo provides world post persistence backed by PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new world post repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

const insertSQL = `
INSERT INTO world_posts (id, workspace_id, world_id, world_link, thread_id, submitter_id, tag_ids, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

const getByWorldSQL = `
SELECT id, workspace_id, world_id, world_link, thread_id, submitter_id, tag_ids, created_at
FROM world_posts
WHERE workspace_id = $1 AND world_id = $2`

const getByThreadSQL = `
SELECT id, workspace_id, world_id, world_link, thread_id, submitter_id, tag_ids, created_at
FROM world_posts
WHERE workspace_id = $1 AND thread_id = $2`

const deleteByThreadSQL = `
DELETE FROM world_posts WHERE workspace_id = $1 AND thread_id = $2 RETURNING world_id`

const deleteByWorldSQL = `
DELETE FROM world_posts WHERE workspace_id = $1 AND world_id = $2 RETURNING thread_id`

const updateThreadSQL = `
UPDATE world_posts SET thread_id = $3 WHERE workspace_id = $1 AND world_id = $2`

// Create inserts a new world post. The insert is the CAS point: a concurrent
// insert for the same (workspace_id, world_id) or thread_id fails with
// domain.ErrAlreadyExists via the unique constraints.
func (r *Repo) Create(ctx context.Context, post *domain.WorldPost) (*domain.WorldPost, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	p := *post
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}
	if p.TagIDs == nil {
		p.TagIDs = []string{}
	}

	_, err := q.Exec(ctx, insertSQL,
		p.ID, p.WorkspaceID, p.WorldID, p.WorldLink, p.ThreadID, p.SubmitterID, p.TagIDs, p.CreatedAt,
	)
	if err != nil {
		return nil, postgres.MapError(err, "world post", p.WorkspaceID+"/"+p.WorldID)
	}

	return &p, nil
}

// GetByWorld returns the post for a world within a workspace.
// Returns domain.ErrNotFound if the world is not tracked.
func (r *Repo) GetByWorld(ctx context.Context, workspaceID, worldID string) (*domain.WorldPost, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	row := q.QueryRow(ctx, getByWorldSQL, workspaceID, worldID)
	post, err := scanPost(row)
	if err != nil {
		return nil, postgres.MapError(err, "world post", workspaceID+"/"+worldID)
	}
	return post, nil
}

// GetByThread returns the post mirrored to a thread within a workspace.
// Returns domain.ErrNotFound if no post references the thread.
func (r *Repo) GetByThread(ctx context.Context, workspaceID, threadID string) (*domain.WorldPost, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	row := q.QueryRow(ctx, getByThreadSQL, workspaceID, threadID)
	post, err := scanPost(row)
	if err != nil {
		return nil, postgres.MapError(err, "world post", workspaceID+"/thread/"+threadID)
	}
	return post, nil
}

// List returns workspace posts newest-first, narrowed by the filter.
// Returns an empty slice (not nil) when nothing matches.
func (r *Repo) List(ctx context.Context, workspaceID string, filter domain.PostFilter) ([]*domain.WorldPost, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	builder := sq.Select("id", "workspace_id", "world_id", "world_link", "thread_id", "submitter_id", "tag_ids", "created_at").
		From("world_posts").
		Where(sq.Eq{"workspace_id": workspaceID}).
		OrderBy("created_at DESC", "id").
		PlaceholderFormat(sq.Dollar)

	if filter.SubmitterID != nil {
		builder = builder.Where(sq.Eq{"submitter_id": *filter.SubmitterID})
	}
	if filter.TagID != nil {
		builder = builder.Where("tag_ids @> ARRAY[?]::text[]", *filter.TagID)
	}
	if filter.Limit > 0 {
		builder = builder.Limit(uint64(filter.Limit))
	}
	if filter.Offset > 0 {
		builder = builder.Offset(uint64(filter.Offset))
	}

	sql, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list query: %w", err)
	}

	rows, err := q.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("list world posts: %w", err)
	}
	defer rows.Close()

	posts := []*domain.WorldPost{}
	for rows.Next() {
		post, err := scanPost(rows)
		if err != nil {
			return nil, fmt.Errorf("list world posts: %w", err)
		}
		posts = append(posts, post)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list world posts: %w", err)
	}

	return posts, nil
}

// DeleteByThread removes the post for a thread and returns its world id.
// Returns domain.ErrNotFound if no post references the thread.
func (r *Repo) DeleteByThread(ctx context.Context, workspaceID, threadID string) (string, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	var worldID string
	err := q.QueryRow(ctx, deleteByThreadSQL, workspaceID, threadID).Scan(&worldID)
	if err != nil {
		return "", postgres.MapError(err, "world post", workspaceID+"/thread/"+threadID)
	}
	return worldID, nil
}

// DeleteByWorld removes the post for a world and returns its thread id.
// Returns domain.ErrNotFound if the world is not tracked.
func (r *Repo) DeleteByWorld(ctx context.Context, workspaceID, worldID string) (string, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	var threadID string
	err := q.QueryRow(ctx, deleteByWorldSQL, workspaceID, worldID).Scan(&threadID)
	if err != nil {
		return "", postgres.MapError(err, "world post", workspaceID+"/"+worldID)
	}
	return threadID, nil
}

// UpdateThreadID repoints a post at a different thread (repair relink).
// Returns domain.ErrNotFound if the world is not tracked, or
// domain.ErrAlreadyExists if the thread already mirrors another post.
func (r *Repo) UpdateThreadID(ctx context.Context, workspaceID, worldID, threadID string) error {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	tag, err := q.Exec(ctx, updateThreadSQL, workspaceID, worldID, threadID)
	if err != nil {
		return postgres.MapError(err, "world post", workspaceID+"/"+worldID)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("world post %s/%s: %w", workspaceID, worldID, domain.ErrNotFound)
	}
	return nil
}

// scanPost reads one world post row.
func scanPost(row pgx.Row) (*domain.WorldPost, error) {
	var p domain.WorldPost
	err := row.Scan(&p.ID, &p.WorkspaceID, &p.WorldID, &p.WorldLink, &p.ThreadID, &p.SubmitterID, &p.TagIDs, &p.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}
