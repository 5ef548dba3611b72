package testhelper

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vrcshowcase/showcase-backend/internal/domain"
)

// uniqueSuffix returns a short unique string for generating non-conflicting test data.
func uniqueSuffix() string {
	return uuid.New().String()[:8]
}

// NewWorkspaceID returns a unique workspace id so parallel tests never collide.
func NewWorkspaceID() string {
	return "ws-" + uniqueSuffix()
}

// NewWorldID returns a unique, well-formed world id.
func NewWorldID() string {
	return "wrld_" + uuid.New().String()
}

// SeedForumConfig creates a forum configuration for the workspace.
func SeedForumConfig(t *testing.T, pool *pgxpool.Pool, workspaceID string) domain.ForumConfig {
	t.Helper()
	ctx := context.Background()

	fc := domain.ForumConfig{
		WorkspaceID:     workspaceID,
		ForumChannelID:  "chan-" + uniqueSuffix(),
		ControlThreadID: "ctl-" + uniqueSuffix(),
		CreatedAt:       time.Now().UTC().Truncate(time.Microsecond),
	}

	_, err := pool.Exec(ctx,
		`INSERT INTO forum_configs (workspace_id, forum_channel_id, control_thread_id, created_at)
		 VALUES ($1, $2, $3, $4)`,
		fc.WorkspaceID, fc.ForumChannelID, fc.ControlThreadID, fc.CreatedAt,
	)
	if err != nil {
		t.Fatalf("testhelper: SeedForumConfig: %v", err)
	}

	return fc
}

// SeedTag creates a tag definition in the workspace.
func SeedTag(t *testing.T, pool *pgxpool.Pool, workspaceID, tagID, name string) domain.Tag {
	t.Helper()
	ctx := context.Background()

	tag := domain.Tag{
		WorkspaceID: workspaceID,
		TagID:       tagID,
		Name:        name,
		UpdatedAt:   time.Now().UTC().Truncate(time.Microsecond),
	}

	_, err := pool.Exec(ctx,
		`INSERT INTO tags (workspace_id, tag_id, tag_name, emoji, updated_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		tag.WorkspaceID, tag.TagID, tag.Name, tag.Emoji, tag.UpdatedAt,
	)
	if err != nil {
		t.Fatalf("testhelper: SeedTag: %v", err)
	}

	return tag
}

// SeedWorldPost creates a world post row with a fresh world and thread id.
func SeedWorldPost(t *testing.T, pool *pgxpool.Pool, workspaceID string, tagIDs []string) domain.WorldPost {
	t.Helper()
	ctx := context.Background()

	if tagIDs == nil {
		tagIDs = []string{}
	}
	worldID := NewWorldID()
	post := domain.WorldPost{
		ID:          uuid.New(),
		WorkspaceID: workspaceID,
		WorldID:     worldID,
		WorldLink:   domain.WorldLink(worldID),
		ThreadID:    "thr-" + uniqueSuffix(),
		SubmitterID: "user-" + uniqueSuffix(),
		TagIDs:      tagIDs,
		CreatedAt:   time.Now().UTC().Truncate(time.Microsecond),
	}

	_, err := pool.Exec(ctx,
		`INSERT INTO world_posts (id, workspace_id, world_id, world_link, thread_id, submitter_id, tag_ids, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		post.ID, post.WorkspaceID, post.WorldID, post.WorldLink, post.ThreadID, post.SubmitterID, post.TagIDs, post.CreatedAt,
	)
	if err != nil {
		t.Fatalf("testhelper: SeedWorldPost: %v", err)
	}

	return post
}
