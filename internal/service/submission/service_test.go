package submission

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vrcshowcase/showcase-backend/internal/domain"
)

const testWorldID = "wrld_12345678-90ab-cdef-1234-567890abcdef"

// ---------------------------------------------------------------------------
// Manual mocks (moq-style with func fields)
// ---------------------------------------------------------------------------

type mockPostRepo struct {
	CreateFunc     func(ctx context.Context, post *domain.WorldPost) (*domain.WorldPost, error)
	GetByWorldFunc func(ctx context.Context, workspaceID, worldID string) (*domain.WorldPost, error)
}

func (m *mockPostRepo) Create(ctx context.Context, post *domain.WorldPost) (*domain.WorldPost, error) {
	return m.CreateFunc(ctx, post)
}

func (m *mockPostRepo) GetByWorld(ctx context.Context, workspaceID, worldID string) (*domain.WorldPost, error) {
	return m.GetByWorldFunc(ctx, workspaceID, worldID)
}

type mockTagRepo struct {
	GetByIDsFunc func(ctx context.Context, workspaceID string, tagIDs []string) ([]*domain.Tag, error)
}

func (m *mockTagRepo) GetByIDs(ctx context.Context, workspaceID string, tagIDs []string) ([]*domain.Tag, error) {
	return m.GetByIDsFunc(ctx, workspaceID, tagIDs)
}

type mockForumConfigRepo struct {
	GetFunc func(ctx context.Context, workspaceID string) (*domain.ForumConfig, error)
}

func (m *mockForumConfigRepo) Get(ctx context.Context, workspaceID string) (*domain.ForumConfig, error) {
	return m.GetFunc(ctx, workspaceID)
}

type mockMetaRepo struct {
	UpsertFunc func(ctx context.Context, meta *domain.WorldMetadata) error
}

func (m *mockMetaRepo) Upsert(ctx context.Context, meta *domain.WorldMetadata) error {
	if m.UpsertFunc != nil {
		return m.UpsertFunc(ctx, meta)
	}
	return nil
}

type mockForumClient struct {
	CreateThreadFunc func(ctx context.Context, channelID, title, content string, tagIDs []string) (string, error)
}

func (m *mockForumClient) CreateThread(ctx context.Context, channelID, title, content string, tagIDs []string) (string, error) {
	return m.CreateThreadFunc(ctx, channelID, title, content, tagIDs)
}

type mockResolver struct {
	ResolveFunc func(ctx context.Context, input string) (*domain.WorldMetadata, error)
}

func (m *mockResolver) Resolve(ctx context.Context, input string) (*domain.WorldMetadata, error) {
	return m.ResolveFunc(ctx, input)
}

type mockTxManager struct {
	RunInTxFunc func(ctx context.Context, fn func(ctx context.Context) error) error
}

func (m *mockTxManager) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if m.RunInTxFunc != nil {
		return m.RunInTxFunc(ctx, fn)
	}
	return fn(ctx)
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

type testDeps struct {
	posts    *mockPostRepo
	tags     *mockTagRepo
	configs  *mockForumConfigRepo
	meta     *mockMetaRepo
	forum    *mockForumClient
	resolver *mockResolver
	tx       *mockTxManager
}

// happyDeps returns mocks preconfigured for a successful admission.
func happyDeps() *testDeps {
	return &testDeps{
		posts: &mockPostRepo{
			CreateFunc: func(_ context.Context, post *domain.WorldPost) (*domain.WorldPost, error) {
				p := *post
				return &p, nil
			},
			GetByWorldFunc: func(_ context.Context, _, _ string) (*domain.WorldPost, error) {
				return nil, domain.ErrNotFound
			},
		},
		tags: &mockTagRepo{
			GetByIDsFunc: func(_ context.Context, workspaceID string, tagIDs []string) ([]*domain.Tag, error) {
				tags := make([]*domain.Tag, len(tagIDs))
				for i, id := range tagIDs {
					tags[i] = &domain.Tag{WorkspaceID: workspaceID, TagID: id}
				}
				return tags, nil
			},
		},
		configs: &mockForumConfigRepo{
			GetFunc: func(_ context.Context, workspaceID string) (*domain.ForumConfig, error) {
				return &domain.ForumConfig{
					WorkspaceID:    workspaceID,
					ForumChannelID: "chan-1",
				}, nil
			},
		},
		meta: &mockMetaRepo{},
		forum: &mockForumClient{
			CreateThreadFunc: func(_ context.Context, _, _, _ string, _ []string) (string, error) {
				return "thread-1", nil
			},
		},
		resolver: &mockResolver{
			ResolveFunc: func(_ context.Context, input string) (*domain.WorldMetadata, error) {
				return &domain.WorldMetadata{
					WorldID:    testWorldID,
					Name:       "Test World",
					AuthorName: "author",
					Platform:   domain.PlatformCross,
					FetchedAt:  time.Now().UTC(),
				}, nil
			},
		},
		tx: &mockTxManager{},
	}
}

func newTestService(d *testDeps) *Service {
	return NewService(slog.New(slog.DiscardHandler), d.posts, d.tags, d.configs, d.meta, d.forum, d.resolver, d.tx)
}

func validInput() SubmitInput {
	return SubmitInput{
		WorkspaceID: "ws-1",
		SubmitterID: "user-1",
		WorldInput:  "https://vrchat.com/home/world/" + testWorldID + "/info",
		TagIDs:      []string{"tag-b", "tag-a", "tag-a"},
	}
}

// ---------------------------------------------------------------------------
// Submit tests
// ---------------------------------------------------------------------------

func TestService_Submit_HappyPath(t *testing.T) {
	t.Parallel()

	d := happyDeps()
	metaUpserted := false
	d.meta.UpsertFunc = func(_ context.Context, meta *domain.WorldMetadata) error {
		metaUpserted = true
		assert.Equal(t, testWorldID, meta.WorldID)
		return nil
	}

	svc := newTestService(d)
	post, err := svc.Submit(context.Background(), validInput())

	require.NoError(t, err)
	assert.Equal(t, testWorldID, post.WorldID)
	assert.Equal(t, "thread-1", post.ThreadID)
	assert.Equal(t, domain.WorldLink(testWorldID), post.WorldLink)
	assert.Equal(t, []string{"tag-a", "tag-b"}, post.TagIDs, "tags deduplicated and sorted")
	assert.True(t, metaUpserted, "metadata snapshot committed with the post")
}

func TestService_Submit_InvalidInput(t *testing.T) {
	t.Parallel()

	svc := newTestService(happyDeps())

	_, err := svc.Submit(context.Background(), SubmitInput{WorkspaceID: "ws-1"})
	require.ErrorIs(t, err, domain.ErrValidation)
}

func TestService_Submit_InvalidWorldInput(t *testing.T) {
	t.Parallel()

	d := happyDeps()
	d.configs.GetFunc = func(_ context.Context, _ string) (*domain.ForumConfig, error) {
		t.Fatal("config must not be read for invalid world input")
		return nil, nil
	}

	svc := newTestService(d)
	in := validInput()
	in.WorldInput = "https://example.com/nothing"

	_, err := svc.Submit(context.Background(), in)
	require.ErrorIs(t, err, domain.ErrInvalidIdentifier)
}

func TestService_Submit_WorkspaceNotConfigured(t *testing.T) {
	t.Parallel()

	d := happyDeps()
	d.configs.GetFunc = func(_ context.Context, _ string) (*domain.ForumConfig, error) {
		return nil, domain.ErrNotFound
	}

	svc := newTestService(d)
	_, err := svc.Submit(context.Background(), validInput())
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestService_Submit_Duplicate_NoSideEffects(t *testing.T) {
	t.Parallel()

	d := happyDeps()
	d.posts.GetByWorldFunc = func(_ context.Context, _, _ string) (*domain.WorldPost, error) {
		return &domain.WorldPost{ThreadID: "existing-thread"}, nil
	}
	d.forum.CreateThreadFunc = func(_ context.Context, _, _, _ string, _ []string) (string, error) {
		t.Fatal("no thread may be created for a duplicate")
		return "", nil
	}
	d.posts.CreateFunc = func(_ context.Context, _ *domain.WorldPost) (*domain.WorldPost, error) {
		t.Fatal("no row may be written for a duplicate")
		return nil, nil
	}

	svc := newTestService(d)
	_, err := svc.Submit(context.Background(), validInput())

	var dup *domain.DuplicateSubmissionError
	require.ErrorAs(t, err, &dup)
	assert.Equal(t, "existing-thread", dup.ThreadID)
	assert.Equal(t, testWorldID, dup.WorldID)
	require.ErrorIs(t, err, domain.ErrAlreadyExists)
}

func TestService_Submit_UnknownTags_NoSideEffects(t *testing.T) {
	t.Parallel()

	d := happyDeps()
	d.tags.GetByIDsFunc = func(_ context.Context, _ string, _ []string) ([]*domain.Tag, error) {
		return []*domain.Tag{{TagID: "tag-a"}}, nil
	}
	d.forum.CreateThreadFunc = func(_ context.Context, _, _, _ string, _ []string) (string, error) {
		t.Fatal("no thread may be created when tags are unknown")
		return "", nil
	}

	svc := newTestService(d)
	_, err := svc.Submit(context.Background(), validInput())

	var unknown *domain.UnknownTagError
	require.ErrorAs(t, err, &unknown)
	assert.Equal(t, []string{"tag-b"}, unknown.TagIDs)
}

func TestService_Submit_ResolveFails_NoThread(t *testing.T) {
	t.Parallel()

	d := happyDeps()
	d.resolver.ResolveFunc = func(_ context.Context, _ string) (*domain.WorldMetadata, error) {
		return nil, domain.ErrNotFound
	}
	d.forum.CreateThreadFunc = func(_ context.Context, _, _, _ string, _ []string) (string, error) {
		t.Fatal("no thread may be created when the world cannot be resolved")
		return "", nil
	}

	svc := newTestService(d)
	_, err := svc.Submit(context.Background(), validInput())
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestService_Submit_ThreadCreationFails_NoRow(t *testing.T) {
	t.Parallel()

	d := happyDeps()
	d.forum.CreateThreadFunc = func(_ context.Context, _, _, _ string, _ []string) (string, error) {
		return "", errors.New("missing permissions")
	}
	d.posts.CreateFunc = func(_ context.Context, _ *domain.WorldPost) (*domain.WorldPost, error) {
		t.Fatal("no row may be written when thread creation fails")
		return nil, nil
	}

	svc := newTestService(d)
	_, err := svc.Submit(context.Background(), validInput())
	require.ErrorIs(t, err, domain.ErrThreadCreation)
}

func TestService_Submit_LostInsertRace(t *testing.T) {
	t.Parallel()

	d := happyDeps()
	first := true
	d.posts.GetByWorldFunc = func(_ context.Context, _, _ string) (*domain.WorldPost, error) {
		if first {
			first = false
			return nil, domain.ErrNotFound
		}
		return &domain.WorldPost{ThreadID: "winner-thread"}, nil
	}
	d.posts.CreateFunc = func(_ context.Context, _ *domain.WorldPost) (*domain.WorldPost, error) {
		return nil, fmt.Errorf("world post: %w", domain.ErrAlreadyExists)
	}

	svc := newTestService(d)
	_, err := svc.Submit(context.Background(), validInput())

	var dup *domain.DuplicateSubmissionError
	require.ErrorAs(t, err, &dup)
	assert.Equal(t, "winner-thread", dup.ThreadID, "duplicate carries the winner's thread")
}

func TestService_Submit_ConcurrentSameWorld(t *testing.T) {
	t.Parallel()

	var mu sync.Mutex
	var stored *domain.WorldPost
	var threadsCreated atomic.Int32

	d := happyDeps()
	d.posts.GetByWorldFunc = func(_ context.Context, _, _ string) (*domain.WorldPost, error) {
		mu.Lock()
		defer mu.Unlock()
		if stored != nil {
			p := *stored
			return &p, nil
		}
		return nil, domain.ErrNotFound
	}
	d.posts.CreateFunc = func(_ context.Context, post *domain.WorldPost) (*domain.WorldPost, error) {
		mu.Lock()
		defer mu.Unlock()
		if stored != nil {
			return nil, domain.ErrAlreadyExists
		}
		p := *post
		stored = &p
		return &p, nil
	}
	d.forum.CreateThreadFunc = func(_ context.Context, _, _, _ string, _ []string) (string, error) {
		threadsCreated.Add(1)
		time.Sleep(10 * time.Millisecond)
		return "thread-1", nil
	}

	svc := newTestService(d)

	const workers = 5
	var wg sync.WaitGroup
	results := make([]error, workers)
	for i := range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, results[i] = svc.Submit(context.Background(), validInput())
		}()
	}
	wg.Wait()

	var successes, duplicates int
	for _, err := range results {
		switch {
		case err == nil:
			successes++
		case errors.Is(err, domain.ErrAlreadyExists):
			duplicates++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}

	assert.Equal(t, 1, successes, "exactly one admission")
	assert.Equal(t, workers-1, duplicates)
	assert.Equal(t, int32(1), threadsCreated.Load(), "losers must not create threads")
}
