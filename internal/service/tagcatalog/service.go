// Package tagcatalog keeps the workspace tag catalog aligned with the forum
// channel's available tags. The forum is the source of truth for definitions;
// removal is deliberately manual.
package tagcatalog

import (
	"context"
	"log/slog"

	"github.com/vrcshowcase/showcase-backend/internal/domain"
)

type tagRepo interface {
	Upsert(ctx context.Context, t *domain.Tag) (bool, error)
	List(ctx context.Context, workspaceID string) ([]*domain.Tag, error)
	Delete(ctx context.Context, workspaceID, tagID string) (bool, error)
}

// Service implements tag catalog operations: sync, list, and delete.
type Service struct {
	log  *slog.Logger
	tags tagRepo
}

// NewService creates a new tag catalog service.
func NewService(logger *slog.Logger, tags tagRepo) *Service {
	return &Service{
		log:  logger.With("service", "tagcatalog"),
		tags: tags,
	}
}

// List returns all workspace tags.
func (s *Service) List(ctx context.Context, workspaceID string) ([]*domain.Tag, error) {
	return s.tags.List(ctx, workspaceID)
}
