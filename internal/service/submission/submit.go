package submission

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/vrcshowcase/showcase-backend/internal/domain"
)

// Submit admits one world submission: validates the tags, resolves metadata,
// creates the forum thread, and only then commits the registry row. A failure
// before the commit leaves no visible side effects except, on the narrow
// crash window after thread creation, an orphan live thread that the next
// drift scan picks up.
func (s *Service) Submit(ctx context.Context, in SubmitInput) (*domain.WorldPost, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	worldID, err := domain.ExtractWorldID(in.WorldInput)
	if err != nil {
		return nil, err
	}

	// Serialize per (workspace, world) so a double-click cannot race itself.
	key := in.WorkspaceID + "/" + worldID
	s.locks.Lock(key)
	defer s.locks.Unlock(key)

	fc, err := s.configs.Get(ctx, in.WorkspaceID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("workspace %s has no forum configuration: %w", in.WorkspaceID, err)
		}
		return nil, fmt.Errorf("get forum config: %w", err)
	}

	// Duplicate check before any outward action.
	existing, err := s.posts.GetByWorld(ctx, in.WorkspaceID, worldID)
	if err == nil {
		return nil, &domain.DuplicateSubmissionError{
			WorkspaceID: in.WorkspaceID,
			WorldID:     worldID,
			ThreadID:    existing.ThreadID,
		}
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("check existing post: %w", err)
	}

	tagIDs := in.normalizedTags()
	if err := s.checkTags(ctx, in.WorkspaceID, tagIDs); err != nil {
		return nil, err
	}

	meta, err := s.resolver.Resolve(ctx, worldID)
	if err != nil {
		return nil, fmt.Errorf("resolve world metadata: %w", err)
	}

	threadID, err := s.forum.CreateThread(ctx, fc.ForumChannelID, threadTitle(meta), threadContent(meta), tagIDs)
	if err != nil {
		return nil, fmt.Errorf("create thread for world %s: %w: %w", worldID, domain.ErrThreadCreation, err)
	}

	post := &domain.WorldPost{
		WorkspaceID: in.WorkspaceID,
		WorldID:     worldID,
		WorldLink:   domain.WorldLink(worldID),
		ThreadID:    threadID,
		SubmitterID: in.SubmitterID,
		TagIDs:      tagIDs,
	}

	var created *domain.WorldPost
	txErr := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		var createErr error
		created, createErr = s.posts.Create(txCtx, post)
		if createErr != nil {
			return createErr
		}
		return s.meta.Upsert(txCtx, meta)
	})
	if txErr != nil {
		// A submission from another process won the insert between our
		// duplicate check and commit. The thread we just created is now an
		// orphan; the drift scanner reconciles it.
		if errors.Is(txErr, domain.ErrAlreadyExists) {
			s.log.WarnContext(ctx, "lost admission race, thread left for drift scan",
				slog.String("workspace_id", in.WorkspaceID),
				slog.String("world_id", worldID),
				slog.String("thread_id", threadID),
			)
			winner, err := s.posts.GetByWorld(ctx, in.WorkspaceID, worldID)
			if err != nil {
				return nil, fmt.Errorf("get post after conflict: %w", err)
			}
			return nil, &domain.DuplicateSubmissionError{
				WorkspaceID: in.WorkspaceID,
				WorldID:     worldID,
				ThreadID:    winner.ThreadID,
			}
		}
		return nil, fmt.Errorf("commit world post: %w", txErr)
	}

	s.log.InfoContext(ctx, "world submission admitted",
		slog.String("workspace_id", in.WorkspaceID),
		slog.String("world_id", worldID),
		slog.String("thread_id", threadID),
		slog.String("submitter_id", in.SubmitterID),
	)

	return created, nil
}

// checkTags rejects tag ids that are not in the workspace catalog.
func (s *Service) checkTags(ctx context.Context, workspaceID string, tagIDs []string) error {
	if len(tagIDs) == 0 {
		return nil
	}

	known, err := s.tags.GetByIDs(ctx, workspaceID, tagIDs)
	if err != nil {
		return fmt.Errorf("get tags: %w", err)
	}

	knownSet := make(map[string]bool, len(known))
	for _, t := range known {
		knownSet[t.TagID] = true
	}

	var unknown []string
	for _, id := range tagIDs {
		if !knownSet[id] {
			unknown = append(unknown, id)
		}
	}
	if len(unknown) > 0 {
		return &domain.UnknownTagError{TagIDs: unknown}
	}
	return nil
}

func threadTitle(meta *domain.WorldMetadata) string {
	if meta.Name != "" {
		return meta.Name
	}
	return meta.WorldID
}

// threadContent builds the starter message. The world link goes first so the
// drift scanner can recover the world id from the raw content if the registry
// row ever goes missing.
func threadContent(meta *domain.WorldMetadata) string {
	var b strings.Builder
	b.WriteString(domain.WorldLink(meta.WorldID))
	b.WriteString("\n")
	if meta.AuthorName != "" {
		b.WriteString("\nAuthor: " + meta.AuthorName)
	}
	if meta.Platform != "" && meta.Platform != domain.PlatformUnknown {
		b.WriteString("\nPlatform: " + meta.Platform)
	}
	if meta.Capacity > 0 {
		b.WriteString(fmt.Sprintf("\nCapacity: %d", meta.Capacity))
	}
	if meta.Description != "" {
		b.WriteString("\n\n" + meta.Description)
	}
	return b.String()
}
