package resolver

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/vrcshowcase/showcase-backend/internal/domain"
	"github.com/vrcshowcase/showcase-backend/internal/provider"
)

// NormalizeID extracts the canonical world id from raw input.
// Returns domain.ErrInvalidIdentifier for anything that is not a world URL
// or a bare world id.
func (s *Service) NormalizeID(input string) (string, error) {
	return domain.ExtractWorldID(input)
}

// Resolve normalizes the input and returns a metadata snapshot, from cache
// when fresh. Concurrent resolutions of the same world are coalesced into a
// single upstream fetch. Failed fetches are never cached.
func (s *Service) Resolve(ctx context.Context, input string) (*domain.WorldMetadata, error) {
	worldID, err := domain.ExtractWorldID(input)
	if err != nil {
		return nil, err
	}

	if meta, ok := s.cache.get(worldID); ok {
		s.log.DebugContext(ctx, "metadata cache hit", slog.String("world_id", worldID))
		return &meta, nil
	}

	v, err, _ := s.group.Do(worldID, func() (any, error) {
		// A coalesced waiter may arrive just after a fill.
		if meta, ok := s.cache.get(worldID); ok {
			return &meta, nil
		}

		result, err := s.provider.FetchWorld(ctx, worldID)
		if err != nil {
			return nil, fmt.Errorf("resolve world %s: %w", worldID, err)
		}

		meta := mapResult(result)
		s.cache.set(*meta)

		s.log.InfoContext(ctx, "world metadata resolved",
			slog.String("world_id", worldID),
			slog.String("name", meta.Name),
			slog.String("platform", meta.Platform),
		)
		return meta, nil
	})
	if err != nil {
		return nil, err
	}

	meta := *v.(*domain.WorldMetadata)
	return &meta, nil
}

// Invalidate drops any cached snapshot for the world, forcing the next
// Resolve to refetch. Used by metadata repair.
func (s *Service) Invalidate(worldID string) {
	s.cache.invalidate(worldID)
}

func mapResult(r *provider.WorldResult) *domain.WorldMetadata {
	return &domain.WorldMetadata{
		WorldID:     r.WorldID,
		Name:        r.Name,
		AuthorName:  r.AuthorName,
		Description: r.Description,
		ImageURL:    r.ImageURL,
		Capacity:    r.Capacity,
		Platform:    r.Platform,
		FetchedAt:   time.Now().UTC(),
	}
}
