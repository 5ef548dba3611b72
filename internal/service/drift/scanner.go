// Package drift detects divergence between the registry and the live forum.
// Scanning is strictly read-only; every finding is returned as a classified
// discrepancy for the repair executor or an operator to act on.
package drift

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"github.com/vrcshowcase/showcase-backend/internal/domain"
)

type postRepo interface {
	List(ctx context.Context, workspaceID string, filter domain.PostFilter) ([]*domain.WorldPost, error)
}

type forumConfigRepo interface {
	Get(ctx context.Context, workspaceID string) (*domain.ForumConfig, error)
}

type metaRepo interface {
	GetByIDs(ctx context.Context, worldIDs []string) (map[string]*domain.WorldMetadata, error)
}

type forumClient interface {
	ListThreads(ctx context.Context, guildID, channelID string) ([]*domain.LiveThreadSnapshot, error)
	GetThread(ctx context.Context, threadID string) (*domain.LiveThreadSnapshot, error)
}

// Scanner compares registry state against the live forum.
type Scanner struct {
	log   *slog.Logger
	posts postRepo
	cfgs  forumConfigRepo
	meta  metaRepo
	forum forumClient
}

// NewScanner creates a new drift scanner.
func NewScanner(logger *slog.Logger, posts postRepo, cfgs forumConfigRepo, meta metaRepo, forum forumClient) *Scanner {
	return &Scanner{
		log:   logger.With("service", "drift"),
		posts: posts,
		cfgs:  cfgs,
		meta:  meta,
		forum: forum,
	}
}

// Scan classifies every discrepancy in the workspace. The result is sorted by
// kind then subject so repeated scans over unchanged state produce identical
// output. Scan never mutates anything.
func (s *Scanner) Scan(ctx context.Context, workspaceID string) ([]domain.Discrepancy, error) {
	fc, err := s.cfgs.Get(ctx, workspaceID)
	if err != nil {
		return nil, fmt.Errorf("get forum config: %w", err)
	}

	posts, err := s.posts.List(ctx, workspaceID, domain.PostFilter{})
	if err != nil {
		return nil, fmt.Errorf("list world posts: %w", err)
	}

	threads, err := s.forum.ListThreads(ctx, workspaceID, fc.ForumChannelID)
	if err != nil {
		return nil, fmt.Errorf("list live threads: %w", err)
	}

	live := make(map[string]*domain.LiveThreadSnapshot, len(threads))
	for _, th := range threads {
		live[th.ThreadID] = th
	}

	worldIDs := make([]string, 0, len(posts))
	for _, p := range posts {
		worldIDs = append(worldIDs, p.WorldID)
	}
	metaByWorld, err := s.meta.GetByIDs(ctx, worldIDs)
	if err != nil {
		return nil, fmt.Errorf("get world metadata: %w", err)
	}

	var found []domain.Discrepancy
	tracked := make(map[string]bool, len(posts))

	for _, p := range posts {
		tracked[p.ThreadID] = true

		th, ok := live[p.ThreadID]
		if !ok {
			found = append(found, domain.Discrepancy{
				Kind:        domain.KindOrphanRegistryEntry,
				WorkspaceID: workspaceID,
				WorldID:     p.WorldID,
				ThreadID:    p.ThreadID,
			})
			// The row's other aspects are moot once its thread is gone.
			continue
		}

		if !domain.EqualTagSets(p.TagIDs, th.AppliedTagIDs) {
			found = append(found, domain.Discrepancy{
				Kind:           domain.KindTagMismatch,
				WorkspaceID:    workspaceID,
				WorldID:        p.WorldID,
				ThreadID:       p.ThreadID,
				RegistryTagIDs: p.TagIDs,
				LiveTagIDs:     th.AppliedTagIDs,
			})
		}

		if m, ok := metaByWorld[p.WorldID]; !ok || !m.Complete() {
			found = append(found, domain.Discrepancy{
				Kind:        domain.KindMissingMetadata,
				WorkspaceID: workspaceID,
				WorldID:     p.WorldID,
				ThreadID:    p.ThreadID,
			})
		}
	}

	for _, th := range threads {
		if tracked[th.ThreadID] || th.ThreadID == fc.ControlThreadID {
			continue
		}
		found = append(found, s.classifyOrphanThread(ctx, workspaceID, th))
	}

	sort.Slice(found, func(i, j int) bool {
		if found[i].Kind != found[j].Kind {
			return found[i].Kind < found[j].Kind
		}
		return found[i].SubjectKey() < found[j].SubjectKey()
	})

	s.log.InfoContext(ctx, "drift scan complete",
		slog.String("workspace_id", workspaceID),
		slog.Int("posts", len(posts)),
		slog.Int("threads", len(threads)),
		slog.Int("discrepancies", len(found)),
	)

	return found, nil
}

// classifyOrphanThread tries to recover the world id from the thread's title
// or starter message so the repair executor can relink it. Threads with no
// recoverable id are flagged for manual removal.
func (s *Scanner) classifyOrphanThread(ctx context.Context, workspaceID string, th *domain.LiveThreadSnapshot) domain.Discrepancy {
	d := domain.Discrepancy{
		Kind:        domain.KindOrphanLiveThread,
		WorkspaceID: workspaceID,
		ThreadID:    th.ThreadID,
		LiveTagIDs:  th.AppliedTagIDs,
	}

	if worldID := domain.FindWorldID(th.Title); worldID != "" {
		d.WorldID = worldID
		return d
	}

	// The list snapshot has no starter content; fetch the thread itself.
	full, err := s.forum.GetThread(ctx, th.ThreadID)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			s.log.WarnContext(ctx, "could not inspect orphan thread",
				slog.String("thread_id", th.ThreadID),
				slog.String("error", err.Error()),
			)
		}
		d.ManualOnly = true
		return d
	}

	if worldID := domain.FindWorldID(full.RawContent); worldID != "" {
		d.WorldID = worldID
		return d
	}

	d.ManualOnly = true
	return d
}
