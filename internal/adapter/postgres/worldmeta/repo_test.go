package worldmeta_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vrcshowcase/showcase-backend/internal/adapter/postgres/testhelper"
	"github.com/vrcshowcase/showcase-backend/internal/adapter/postgres/worldmeta"
	"github.com/vrcshowcase/showcase-backend/internal/domain"
)

func TestRepo_UpsertAndGet(t *testing.T) {
	t.Parallel()
	pool := testhelper.SetupTestDB(t)
	repo := worldmeta.New(pool)
	ctx := context.Background()

	worldID := testhelper.NewWorldID()

	err := repo.Upsert(ctx, &domain.WorldMetadata{
		WorldID:    worldID,
		Name:       "The Black Cat",
		AuthorName: "spookyj",
		Capacity:   40,
		Platform:   domain.PlatformCross,
	})
	require.NoError(t, err)

	got, err := repo.Get(ctx, worldID)
	require.NoError(t, err)
	assert.Equal(t, "The Black Cat", got.Name)
	assert.Equal(t, domain.PlatformCross, got.Platform)
	assert.False(t, got.FetchedAt.IsZero())

	// Refetch overwrites the snapshot wholesale.
	err = repo.Upsert(ctx, &domain.WorldMetadata{
		WorldID:    worldID,
		Name:       "The Black Cat v2",
		AuthorName: "spookyj",
		Capacity:   64,
		Platform:   domain.PlatformPC,
		FetchedAt:  time.Now().UTC(),
	})
	require.NoError(t, err)

	got, err = repo.Get(ctx, worldID)
	require.NoError(t, err)
	assert.Equal(t, "The Black Cat v2", got.Name)
	assert.Equal(t, 64, got.Capacity)
	assert.Equal(t, domain.PlatformPC, got.Platform)
}

func TestRepo_Get_NotFound(t *testing.T) {
	t.Parallel()
	pool := testhelper.SetupTestDB(t)
	repo := worldmeta.New(pool)

	_, err := repo.Get(context.Background(), testhelper.NewWorldID())
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestRepo_GetByIDs(t *testing.T) {
	t.Parallel()
	pool := testhelper.SetupTestDB(t)
	repo := worldmeta.New(pool)
	ctx := context.Background()

	w1 := testhelper.NewWorldID()
	w2 := testhelper.NewWorldID()
	for _, id := range []string{w1, w2} {
		err := repo.Upsert(ctx, &domain.WorldMetadata{
			WorldID:    id,
			Name:       "World " + id,
			AuthorName: "author",
			Platform:   domain.PlatformQuest,
		})
		require.NoError(t, err)
	}

	missing := testhelper.NewWorldID()
	got, err := repo.GetByIDs(ctx, []string{w1, w2, missing})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Contains(t, got, w1)
	assert.Contains(t, got, w2)
	assert.NotContains(t, got, missing)

	empty, err := repo.GetByIDs(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, empty)
}
