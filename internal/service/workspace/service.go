// Package workspace implements operator-facing workspace operations: forum
// configuration, catalog listings, and post removal.
package workspace

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/vrcshowcase/showcase-backend/internal/domain"
	"github.com/vrcshowcase/showcase-backend/pkg/ctxutil"
)

type postRepo interface {
	List(ctx context.Context, workspaceID string, filter domain.PostFilter) ([]*domain.WorldPost, error)
	DeleteByThread(ctx context.Context, workspaceID, threadID string) (string, error)
}

type tagRepo interface {
	List(ctx context.Context, workspaceID string) ([]*domain.Tag, error)
}

type forumConfigRepo interface {
	Get(ctx context.Context, workspaceID string) (*domain.ForumConfig, error)
	Set(ctx context.Context, fc *domain.ForumConfig) error
	Clear(ctx context.Context, workspaceID string) (bool, error)
}

type forumClient interface {
	DeleteThread(ctx context.Context, threadID string) error
}

// Service implements workspace operations.
type Service struct {
	log     *slog.Logger
	posts   postRepo
	tags    tagRepo
	configs forumConfigRepo
	forum   forumClient
}

// NewService creates a new workspace service.
func NewService(logger *slog.Logger, posts postRepo, tags tagRepo, configs forumConfigRepo, forum forumClient) *Service {
	return &Service{
		log:     logger.With("service", "workspace"),
		posts:   posts,
		tags:    tags,
		configs: configs,
		forum:   forum,
	}
}

// ListWorldPosts returns workspace posts narrowed by the filter, newest first.
func (s *Service) ListWorldPosts(ctx context.Context, workspaceID string, filter domain.PostFilter) ([]*domain.WorldPost, error) {
	if workspaceID == "" {
		return nil, domain.NewValidationError("workspace_id", "required")
	}
	return s.posts.List(ctx, workspaceID, filter)
}

// ListTags returns the workspace tag catalog.
func (s *Service) ListTags(ctx context.Context, workspaceID string) ([]*domain.Tag, error) {
	if workspaceID == "" {
		return nil, domain.NewValidationError("workspace_id", "required")
	}
	return s.tags.List(ctx, workspaceID)
}

// GetForumConfig returns the workspace's forum configuration.
func (s *Service) GetForumConfig(ctx context.Context, workspaceID string) (*domain.ForumConfig, error) {
	return s.configs.Get(ctx, workspaceID)
}

// Configure points the workspace at a forum channel and control thread.
// Reconfiguring an already configured workspace replaces the previous values.
func (s *Service) Configure(ctx context.Context, fc *domain.ForumConfig) error {
	var errs []domain.FieldError
	if fc.WorkspaceID == "" {
		errs = append(errs, domain.FieldError{Field: "workspace_id", Message: "required"})
	}
	if fc.ForumChannelID == "" {
		errs = append(errs, domain.FieldError{Field: "forum_channel_id", Message: "required"})
	}
	if len(errs) > 0 {
		return &domain.ValidationError{Errors: errs}
	}

	if err := s.configs.Set(ctx, fc); err != nil {
		return fmt.Errorf("set forum config: %w", err)
	}

	s.log.InfoContext(ctx, "workspace configured",
		slog.String("workspace_id", fc.WorkspaceID),
		slog.String("forum_channel_id", fc.ForumChannelID),
	)
	return nil
}

// ResetConfiguration removes the workspace's forum configuration. Registry
// rows and live threads are left alone; pointing the workspace at a new
// channel later lets the drift scanner classify what remains.
func (s *Service) ResetConfiguration(ctx context.Context, workspaceID string) error {
	cleared, err := s.configs.Clear(ctx, workspaceID)
	if err != nil {
		return fmt.Errorf("clear forum config: %w", err)
	}
	if !cleared {
		return fmt.Errorf("forum config for workspace %s: %w", workspaceID, domain.ErrNotFound)
	}

	s.log.InfoContext(ctx, "workspace configuration reset",
		slog.String("workspace_id", workspaceID),
	)
	return nil
}

// RemovePost deletes the post's live thread and then its registry row.
// Thread deletion tolerates an already missing thread, so removing a post
// whose thread was hand-deleted still cleans up the registry.
func (s *Service) RemovePost(ctx context.Context, workspaceID, threadID string) error {
	if workspaceID == "" {
		return domain.NewValidationError("workspace_id", "required")
	}
	if threadID == "" {
		return domain.NewValidationError("thread_id", "required")
	}

	if err := s.forum.DeleteThread(ctx, threadID); err != nil {
		return fmt.Errorf("delete thread %s: %w", threadID, err)
	}

	worldID, err := s.posts.DeleteByThread(ctx, workspaceID, threadID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("post for thread %s: %w", threadID, err)
		}
		return fmt.Errorf("delete post for thread %s: %w", threadID, err)
	}

	attrs := []any{
		slog.String("workspace_id", workspaceID),
		slog.String("thread_id", threadID),
		slog.String("world_id", worldID),
	}
	if actorID, ok := ctxutil.ActorIDFromCtx(ctx); ok {
		attrs = append(attrs, slog.String("actor_id", actorID))
	}
	s.log.InfoContext(ctx, "world post removed", attrs...)
	return nil
}
