package tagcatalog

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/vrcshowcase/showcase-backend/internal/domain"
)

// Sync upserts the forum's tag definitions into the workspace catalog and
// reports catalog tags no longer present on the forum. Stale tags are never
// deleted here; an operator removes them explicitly via DeleteTag.
// Moderated tags are skipped: they cannot be applied by submissions, so
// carrying them in the catalog would only invite unknown-tag rejections.
func (s *Service) Sync(ctx context.Context, workspaceID string, defs []domain.ExternalTagDef) (*domain.TagSyncResult, error) {
	if workspaceID == "" {
		return nil, domain.NewValidationError("workspace_id", "required")
	}

	seen := make(map[string]bool, len(defs))
	for _, def := range defs {
		if def.ID == "" {
			return nil, domain.NewValidationError("tags", "tag id required")
		}
		if seen[def.ID] {
			return nil, domain.NewValidationError("tags", "duplicate tag id "+def.ID)
		}
		seen[def.ID] = true
	}

	result := &domain.TagSyncResult{StaleTagIDs: []string{}}
	now := time.Now().UTC()
	incoming := make(map[string]bool, len(defs))

	for _, def := range defs {
		if def.Moderated {
			result.Skipped++
			continue
		}
		incoming[def.ID] = true

		inserted, err := s.tags.Upsert(ctx, &domain.Tag{
			WorkspaceID: workspaceID,
			TagID:       def.ID,
			Name:        def.Name,
			Emoji:       def.Emoji,
			UpdatedAt:   now,
		})
		if err != nil {
			return nil, fmt.Errorf("upsert tag %s: %w", def.ID, err)
		}
		if inserted {
			result.Added++
		} else {
			result.Updated++
		}
	}

	stored, err := s.tags.List(ctx, workspaceID)
	if err != nil {
		return nil, fmt.Errorf("list tags after sync: %w", err)
	}
	for _, t := range stored {
		if !incoming[t.TagID] {
			result.StaleTagIDs = append(result.StaleTagIDs, t.TagID)
		}
	}
	sort.Strings(result.StaleTagIDs)

	s.log.InfoContext(ctx, "tag catalog synced",
		slog.String("workspace_id", workspaceID),
		slog.Int("added", result.Added),
		slog.Int("updated", result.Updated),
		slog.Int("skipped", result.Skipped),
		slog.Int("stale", len(result.StaleTagIDs)),
	)

	return result, nil
}

// DeleteTag removes a tag definition from the catalog.
// Returns domain.ErrNotFound if the tag is not in the catalog.
func (s *Service) DeleteTag(ctx context.Context, workspaceID, tagID string) error {
	if workspaceID == "" {
		return domain.NewValidationError("workspace_id", "required")
	}
	if tagID == "" {
		return domain.NewValidationError("tag_id", "required")
	}

	deleted, err := s.tags.Delete(ctx, workspaceID, tagID)
	if err != nil {
		return fmt.Errorf("delete tag %s: %w", tagID, err)
	}
	if !deleted {
		return fmt.Errorf("tag %s: %w", tagID, domain.ErrNotFound)
	}

	s.log.InfoContext(ctx, "tag deleted",
		slog.String("workspace_id", workspaceID),
		slog.String("tag_id", tagID),
	)
	return nil
}
