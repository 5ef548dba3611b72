package resolver

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vrcshowcase/showcase-backend/internal/domain"
	"github.com/vrcshowcase/showcase-backend/internal/provider"
)

const testWorldID = "wrld_12345678-90ab-cdef-1234-567890abcdef"

type mockWorldProvider struct {
	FetchWorldFunc func(ctx context.Context, worldID string) (*provider.WorldResult, error)
}

func (m *mockWorldProvider) FetchWorld(ctx context.Context, worldID string) (*provider.WorldResult, error) {
	return m.FetchWorldFunc(ctx, worldID)
}

func newTestService(p *mockWorldProvider, ttl time.Duration) *Service {
	return NewService(slog.New(slog.DiscardHandler), p, ttl)
}

func makeResult(worldID string) *provider.WorldResult {
	return &provider.WorldResult{
		WorldID:    worldID,
		Name:       "Test World",
		AuthorName: "author",
		Capacity:   16,
		Platform:   domain.PlatformCross,
	}
}

func TestService_Resolve_FetchesAndCaches(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	p := &mockWorldProvider{
		FetchWorldFunc: func(_ context.Context, worldID string) (*provider.WorldResult, error) {
			calls.Add(1)
			return makeResult(worldID), nil
		},
	}

	svc := newTestService(p, time.Minute)

	meta, err := svc.Resolve(context.Background(), "https://vrchat.com/home/world/"+testWorldID+"/info")
	require.NoError(t, err)
	assert.Equal(t, testWorldID, meta.WorldID)
	assert.Equal(t, "Test World", meta.Name)
	assert.False(t, meta.FetchedAt.IsZero())

	// Same world via a different input form hits the cache.
	_, err = svc.Resolve(context.Background(), testWorldID)
	require.NoError(t, err)
	assert.Equal(t, int32(1), calls.Load())
}

func TestService_Resolve_ExpiredEntryRefetches(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	p := &mockWorldProvider{
		FetchWorldFunc: func(_ context.Context, worldID string) (*provider.WorldResult, error) {
			calls.Add(1)
			return makeResult(worldID), nil
		},
	}

	svc := newTestService(p, time.Millisecond)

	_, err := svc.Resolve(context.Background(), testWorldID)
	require.NoError(t, err)

	time.Sleep(5 * time.Millisecond)

	_, err = svc.Resolve(context.Background(), testWorldID)
	require.NoError(t, err)
	assert.Equal(t, int32(2), calls.Load())
}

func TestService_Resolve_InvalidInput(t *testing.T) {
	t.Parallel()

	p := &mockWorldProvider{
		FetchWorldFunc: func(_ context.Context, _ string) (*provider.WorldResult, error) {
			t.Fatal("provider must not be called for invalid input")
			return nil, nil
		},
	}

	svc := newTestService(p, time.Minute)

	_, err := svc.Resolve(context.Background(), "https://example.com/not-a-world")
	require.ErrorIs(t, err, domain.ErrInvalidIdentifier)
}

func TestService_Resolve_NotFoundNotCached(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	p := &mockWorldProvider{
		FetchWorldFunc: func(_ context.Context, _ string) (*provider.WorldResult, error) {
			calls.Add(1)
			return nil, domain.ErrNotFound
		},
	}

	svc := newTestService(p, time.Minute)

	_, err := svc.Resolve(context.Background(), testWorldID)
	require.ErrorIs(t, err, domain.ErrNotFound)

	_, err = svc.Resolve(context.Background(), testWorldID)
	require.ErrorIs(t, err, domain.ErrNotFound)
	assert.Equal(t, int32(2), calls.Load(), "failures must not be cached")
}

func TestService_Resolve_CoalescesConcurrentFetches(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	release := make(chan struct{})
	p := &mockWorldProvider{
		FetchWorldFunc: func(_ context.Context, worldID string) (*provider.WorldResult, error) {
			calls.Add(1)
			<-release
			return makeResult(worldID), nil
		},
	}

	svc := newTestService(p, time.Minute)

	const workers = 10
	var wg sync.WaitGroup
	errs := make([]error, workers)
	for i := range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, errs[i] = svc.Resolve(context.Background(), testWorldID)
		}()
	}

	// Let the goroutines pile up on the in-flight fetch.
	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()

	for _, err := range errs {
		require.NoError(t, err)
	}
	assert.Equal(t, int32(1), calls.Load(), "concurrent resolves share one fetch")
}

func TestService_Invalidate(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	p := &mockWorldProvider{
		FetchWorldFunc: func(_ context.Context, worldID string) (*provider.WorldResult, error) {
			calls.Add(1)
			return makeResult(worldID), nil
		},
	}

	svc := newTestService(p, time.Minute)

	_, err := svc.Resolve(context.Background(), testWorldID)
	require.NoError(t, err)

	svc.Invalidate(testWorldID)

	_, err = svc.Resolve(context.Background(), testWorldID)
	require.NoError(t, err)
	assert.Equal(t, int32(2), calls.Load())
}
