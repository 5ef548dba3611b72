// Package submission admits world submissions: exactly one registry row and
// one forum thread per (workspace, world). Admission serializes per world key
// in-process; the registry's unique constraints backstop races across
// processes.
package submission

import (
	"context"
	"log/slog"

	"github.com/vrcshowcase/showcase-backend/internal/domain"
	"github.com/vrcshowcase/showcase-backend/pkg/keymutex"
)

type postRepo interface {
	Create(ctx context.Context, post *domain.WorldPost) (*domain.WorldPost, error)
	GetByWorld(ctx context.Context, workspaceID, worldID string) (*domain.WorldPost, error)
}

type tagRepo interface {
	GetByIDs(ctx context.Context, workspaceID string, tagIDs []string) ([]*domain.Tag, error)
}

type forumConfigRepo interface {
	Get(ctx context.Context, workspaceID string) (*domain.ForumConfig, error)
}

type metaRepo interface {
	Upsert(ctx context.Context, m *domain.WorldMetadata) error
}

type forumClient interface {
	CreateThread(ctx context.Context, channelID, title, content string, tagIDs []string) (string, error)
}

type metadataResolver interface {
	Resolve(ctx context.Context, input string) (*domain.WorldMetadata, error)
}

type txManager interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// Service implements submission admission.
type Service struct {
	log      *slog.Logger
	posts    postRepo
	tags     tagRepo
	configs  forumConfigRepo
	meta     metaRepo
	forum    forumClient
	resolver metadataResolver
	tx       txManager
	locks    *keymutex.KeyedMutex
}

// NewService creates a new submission service.
func NewService(
	logger *slog.Logger,
	posts postRepo,
	tags tagRepo,
	configs forumConfigRepo,
	meta metaRepo,
	forum forumClient,
	resolver metadataResolver,
	tx txManager,
) *Service {
	return &Service{
		log:      logger.With("service", "submission"),
		posts:    posts,
		tags:     tags,
		configs:  configs,
		meta:     meta,
		forum:    forum,
		resolver: resolver,
		tx:       tx,
		locks:    keymutex.New(),
	}
}
