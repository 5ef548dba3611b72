package worldpost_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vrcshowcase/showcase-backend/internal/adapter/postgres/testhelper"
	"github.com/vrcshowcase/showcase-backend/internal/adapter/postgres/worldpost"
	"github.com/vrcshowcase/showcase-backend/internal/domain"
)

func TestRepo_CreateAndGet(t *testing.T) {
	t.Parallel()
	pool := testhelper.SetupTestDB(t)
	repo := worldpost.New(pool)
	ctx := context.Background()

	workspaceID := testhelper.NewWorkspaceID()
	worldID := testhelper.NewWorldID()

	created, err := repo.Create(ctx, &domain.WorldPost{
		WorkspaceID: workspaceID,
		WorldID:     worldID,
		WorldLink:   domain.WorldLink(worldID),
		ThreadID:    "thread-1",
		SubmitterID: "user-1",
		TagIDs:      []string{"tag-a", "tag-b"},
	})
	require.NoError(t, err)
	require.NotNil(t, created)
	assert.NotZero(t, created.ID)
	assert.False(t, created.CreatedAt.IsZero())

	byWorld, err := repo.GetByWorld(ctx, workspaceID, worldID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, byWorld.ID)
	assert.Equal(t, "thread-1", byWorld.ThreadID)
	assert.ElementsMatch(t, []string{"tag-a", "tag-b"}, byWorld.TagIDs)

	byThread, err := repo.GetByThread(ctx, workspaceID, "thread-1")
	require.NoError(t, err)
	assert.Equal(t, worldID, byThread.WorldID)
}

func TestRepo_Create_DuplicateWorld(t *testing.T) {
	t.Parallel()
	pool := testhelper.SetupTestDB(t)
	repo := worldpost.New(pool)
	ctx := context.Background()

	workspaceID := testhelper.NewWorkspaceID()
	seeded := testhelper.SeedWorldPost(t, pool, workspaceID, nil)

	_, err := repo.Create(ctx, &domain.WorldPost{
		WorkspaceID: workspaceID,
		WorldID:     seeded.WorldID,
		WorldLink:   seeded.WorldLink,
		ThreadID:    "other-thread",
		SubmitterID: "user-2",
	})
	require.ErrorIs(t, err, domain.ErrAlreadyExists)
}

func TestRepo_Create_DuplicateThread(t *testing.T) {
	t.Parallel()
	pool := testhelper.SetupTestDB(t)
	repo := worldpost.New(pool)
	ctx := context.Background()

	workspaceID := testhelper.NewWorkspaceID()
	seeded := testhelper.SeedWorldPost(t, pool, workspaceID, nil)

	otherWorld := testhelper.NewWorldID()
	_, err := repo.Create(ctx, &domain.WorldPost{
		WorkspaceID: workspaceID,
		WorldID:     otherWorld,
		WorldLink:   domain.WorldLink(otherWorld),
		ThreadID:    seeded.ThreadID,
		SubmitterID: "user-2",
	})
	require.ErrorIs(t, err, domain.ErrAlreadyExists)
}

func TestRepo_Create_SameWorldOtherWorkspace(t *testing.T) {
	t.Parallel()
	pool := testhelper.SetupTestDB(t)
	repo := worldpost.New(pool)
	ctx := context.Background()

	seeded := testhelper.SeedWorldPost(t, pool, testhelper.NewWorkspaceID(), nil)

	// Uniqueness is scoped per workspace.
	_, err := repo.Create(ctx, &domain.WorldPost{
		WorkspaceID: testhelper.NewWorkspaceID(),
		WorldID:     seeded.WorldID,
		WorldLink:   seeded.WorldLink,
		ThreadID:    "thread-other-ws",
		SubmitterID: "user-1",
	})
	require.NoError(t, err)
}

func TestRepo_Get_NotFound(t *testing.T) {
	t.Parallel()
	pool := testhelper.SetupTestDB(t)
	repo := worldpost.New(pool)
	ctx := context.Background()

	workspaceID := testhelper.NewWorkspaceID()

	_, err := repo.GetByWorld(ctx, workspaceID, testhelper.NewWorldID())
	require.ErrorIs(t, err, domain.ErrNotFound)

	_, err = repo.GetByThread(ctx, workspaceID, "no-such-thread")
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestRepo_List_Filters(t *testing.T) {
	t.Parallel()
	pool := testhelper.SetupTestDB(t)
	repo := worldpost.New(pool)
	ctx := context.Background()

	workspaceID := testhelper.NewWorkspaceID()
	p1 := testhelper.SeedWorldPost(t, pool, workspaceID, []string{"horror"})
	p2 := testhelper.SeedWorldPost(t, pool, workspaceID, []string{"horror", "quest"})
	p3 := testhelper.SeedWorldPost(t, pool, workspaceID, []string{"chill"})

	all, err := repo.List(ctx, workspaceID, domain.PostFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 3)

	horror, err := repo.List(ctx, workspaceID, domain.PostFilter{TagID: ptr("horror")})
	require.NoError(t, err)
	require.Len(t, horror, 2)
	gotWorlds := []string{horror[0].WorldID, horror[1].WorldID}
	assert.ElementsMatch(t, []string{p1.WorldID, p2.WorldID}, gotWorlds)

	bySubmitter, err := repo.List(ctx, workspaceID, domain.PostFilter{SubmitterID: &p3.SubmitterID})
	require.NoError(t, err)
	require.Len(t, bySubmitter, 1)
	assert.Equal(t, p3.WorldID, bySubmitter[0].WorldID)

	limited, err := repo.List(ctx, workspaceID, domain.PostFilter{Limit: 2})
	require.NoError(t, err)
	assert.Len(t, limited, 2)

	empty, err := repo.List(ctx, workspaceID, domain.PostFilter{TagID: ptr("missing")})
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)
}

func TestRepo_DeleteByThread(t *testing.T) {
	t.Parallel()
	pool := testhelper.SetupTestDB(t)
	repo := worldpost.New(pool)
	ctx := context.Background()

	workspaceID := testhelper.NewWorkspaceID()
	seeded := testhelper.SeedWorldPost(t, pool, workspaceID, nil)

	worldID, err := repo.DeleteByThread(ctx, workspaceID, seeded.ThreadID)
	require.NoError(t, err)
	assert.Equal(t, seeded.WorldID, worldID)

	_, err = repo.DeleteByThread(ctx, workspaceID, seeded.ThreadID)
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestRepo_DeleteByWorld(t *testing.T) {
	t.Parallel()
	pool := testhelper.SetupTestDB(t)
	repo := worldpost.New(pool)
	ctx := context.Background()

	workspaceID := testhelper.NewWorkspaceID()
	seeded := testhelper.SeedWorldPost(t, pool, workspaceID, nil)

	threadID, err := repo.DeleteByWorld(ctx, workspaceID, seeded.WorldID)
	require.NoError(t, err)
	assert.Equal(t, seeded.ThreadID, threadID)

	_, err = repo.GetByWorld(ctx, workspaceID, seeded.WorldID)
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestRepo_UpdateThreadID(t *testing.T) {
	t.Parallel()
	pool := testhelper.SetupTestDB(t)
	repo := worldpost.New(pool)
	ctx := context.Background()

	workspaceID := testhelper.NewWorkspaceID()
	seeded := testhelper.SeedWorldPost(t, pool, workspaceID, nil)
	other := testhelper.SeedWorldPost(t, pool, workspaceID, nil)

	err := repo.UpdateThreadID(ctx, workspaceID, seeded.WorldID, "relinked-thread")
	require.NoError(t, err)

	got, err := repo.GetByWorld(ctx, workspaceID, seeded.WorldID)
	require.NoError(t, err)
	assert.Equal(t, "relinked-thread", got.ThreadID)

	// Repointing at a thread that already mirrors another world hits the
	// unique constraint.
	err = repo.UpdateThreadID(ctx, workspaceID, seeded.WorldID, other.ThreadID)
	require.ErrorIs(t, err, domain.ErrAlreadyExists)

	err = repo.UpdateThreadID(ctx, workspaceID, testhelper.NewWorldID(), "whatever")
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func ptr(s string) *string { return &s }
