// Package repair applies corrective actions to classified discrepancies.
// Every repair re-reads its subject under a per-subject lock before acting,
// so stale scan results degrade to no-ops instead of wrong writes.
package repair

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/vrcshowcase/showcase-backend/internal/domain"
	"github.com/vrcshowcase/showcase-backend/pkg/keymutex"
)

type postRepo interface {
	GetByWorld(ctx context.Context, workspaceID, worldID string) (*domain.WorldPost, error)
	GetByThread(ctx context.Context, workspaceID, threadID string) (*domain.WorldPost, error)
	Create(ctx context.Context, post *domain.WorldPost) (*domain.WorldPost, error)
	DeleteByThread(ctx context.Context, workspaceID, threadID string) (string, error)
}

type metaRepo interface {
	Get(ctx context.Context, worldID string) (*domain.WorldMetadata, error)
	Upsert(ctx context.Context, m *domain.WorldMetadata) error
}

type forumClient interface {
	GetThread(ctx context.Context, threadID string) (*domain.LiveThreadSnapshot, error)
	ApplyTags(ctx context.Context, threadID string, tagIDs []string) error
}

type metadataResolver interface {
	Resolve(ctx context.Context, input string) (*domain.WorldMetadata, error)
	Invalidate(worldID string)
}

// Executor repairs discrepancies one subject at a time.
type Executor struct {
	log         *slog.Logger
	posts       postRepo
	meta        metaRepo
	forum       forumClient
	resolver    metadataResolver
	locks       *keymutex.KeyedMutex
	concurrency int
}

// NewExecutor creates a new repair executor. concurrency bounds RepairAll's
// parallelism; values below 1 are treated as 1.
func NewExecutor(
	logger *slog.Logger,
	posts postRepo,
	meta metaRepo,
	forum forumClient,
	resolver metadataResolver,
	concurrency int,
) *Executor {
	if concurrency < 1 {
		concurrency = 1
	}
	return &Executor{
		log:         logger.With("service", "repair"),
		posts:       posts,
		meta:        meta,
		forum:       forum,
		resolver:    resolver,
		locks:       keymutex.New(),
		concurrency: concurrency,
	}
}

// Repair applies the discrepancy's proposed action. The outcome is always a
// value: repair failures are reported, never returned as errors.
func (e *Executor) Repair(ctx context.Context, d domain.Discrepancy) domain.RepairOutcome {
	if d.ManualOnly {
		return outcome(d, domain.RepairFailed, "world id unrecoverable, manual removal required")
	}

	key := d.SubjectKey()
	e.locks.Lock(key)
	defer e.locks.Unlock(key)

	var (
		status domain.RepairStatus
		reason string
		err    error
	)

	switch d.Action() {
	case domain.ActionDeleteRegistryEntry:
		status, reason, err = e.deleteRegistryEntry(ctx, d)
	case domain.ActionRelinkThread:
		status, reason, err = e.relinkThread(ctx, d)
	case domain.ActionResyncTags:
		status, reason, err = e.resyncTags(ctx, d)
	case domain.ActionRefetchMetadata:
		status, reason, err = e.refetchMetadata(ctx, d)
	default:
		return outcome(d, domain.RepairFailed, fmt.Sprintf("no executor for action %q", d.Action()))
	}

	if err != nil {
		e.log.WarnContext(ctx, "repair failed",
			slog.String("kind", string(d.Kind)),
			slog.String("subject", key),
			slog.String("error", err.Error()),
		)
		return outcome(d, domain.RepairFailed, err.Error())
	}

	e.log.InfoContext(ctx, "repair applied",
		slog.String("kind", string(d.Kind)),
		slog.String("subject", key),
		slog.String("status", string(status)),
	)
	return outcome(d, status, reason)
}

// deleteRegistryEntry removes a row whose thread no longer exists. The thread
// is re-checked first: a thread restored since the scan means the drift
// healed itself.
func (e *Executor) deleteRegistryEntry(ctx context.Context, d domain.Discrepancy) (domain.RepairStatus, string, error) {
	_, err := e.forum.GetThread(ctx, d.ThreadID)
	if err == nil {
		return domain.RepairNoOp, "thread exists again", nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return "", "", fmt.Errorf("recheck thread: %w", err)
	}

	_, err = e.posts.DeleteByThread(ctx, d.WorkspaceID, d.ThreadID)
	if errors.Is(err, domain.ErrNotFound) {
		return domain.RepairNoOp, "registry entry already removed", nil
	}
	if err != nil {
		return "", "", fmt.Errorf("delete registry entry: %w", err)
	}
	return domain.RepairSucceeded, "", nil
}

// relinkThread registers an orphan live thread under its recovered world id.
// A world already tracked by a different thread is a conflict an operator
// must untangle; overwriting either side would lose information.
func (e *Executor) relinkThread(ctx context.Context, d domain.Discrepancy) (domain.RepairStatus, string, error) {
	existing, err := e.posts.GetByWorld(ctx, d.WorkspaceID, d.WorldID)
	switch {
	case err == nil && existing.ThreadID == d.ThreadID:
		return domain.RepairNoOp, "thread already registered", nil
	case err == nil:
		return "", "", fmt.Errorf("world %s already tracked by thread %s: %w",
			d.WorldID, existing.ThreadID, domain.ErrConflict)
	case !errors.Is(err, domain.ErrNotFound):
		return "", "", fmt.Errorf("get post by world: %w", err)
	}

	tagIDs := d.LiveTagIDs
	if tagIDs == nil {
		tagIDs = []string{}
	}
	_, err = e.posts.Create(ctx, &domain.WorldPost{
		WorkspaceID: d.WorkspaceID,
		WorldID:     d.WorldID,
		WorldLink:   domain.WorldLink(d.WorldID),
		ThreadID:    d.ThreadID,
		SubmitterID: recoveredSubmitter,
		TagIDs:      tagIDs,
	})
	if errors.Is(err, domain.ErrAlreadyExists) {
		// Another repairer or submission won; the re-read above was stale.
		return domain.RepairNoOp, "registered concurrently", nil
	}
	if err != nil {
		return "", "", fmt.Errorf("create registry entry: %w", err)
	}
	return domain.RepairSucceeded, "", nil
}

// recoveredSubmitter marks registry rows rebuilt from orphan live threads,
// where the original submitter is unknown.
const recoveredSubmitter = "recovered"

// resyncTags pushes the registry's tag set onto the live thread.
func (e *Executor) resyncTags(ctx context.Context, d domain.Discrepancy) (domain.RepairStatus, string, error) {
	post, err := e.posts.GetByThread(ctx, d.WorkspaceID, d.ThreadID)
	if errors.Is(err, domain.ErrNotFound) {
		return domain.RepairNoOp, "registry entry gone", nil
	}
	if err != nil {
		return "", "", fmt.Errorf("get post by thread: %w", err)
	}

	th, err := e.forum.GetThread(ctx, d.ThreadID)
	if errors.Is(err, domain.ErrNotFound) {
		return domain.RepairNoOp, "thread gone, rescan will reclassify", nil
	}
	if err != nil {
		return "", "", fmt.Errorf("get thread: %w", err)
	}

	if domain.EqualTagSets(post.TagIDs, th.AppliedTagIDs) {
		return domain.RepairNoOp, "tags already in sync", nil
	}

	if err := e.forum.ApplyTags(ctx, d.ThreadID, post.TagIDs); err != nil {
		return "", "", fmt.Errorf("apply tags: %w", err)
	}
	return domain.RepairSucceeded, "", nil
}

// refetchMetadata fills a missing or incomplete metadata snapshot.
func (e *Executor) refetchMetadata(ctx context.Context, d domain.Discrepancy) (domain.RepairStatus, string, error) {
	if m, err := e.meta.Get(ctx, d.WorldID); err == nil && m.Complete() {
		return domain.RepairNoOp, "metadata already complete", nil
	} else if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return "", "", fmt.Errorf("get metadata: %w", err)
	}

	// Bypass any cached incomplete snapshot.
	e.resolver.Invalidate(d.WorldID)

	meta, err := e.resolver.Resolve(ctx, d.WorldID)
	if errors.Is(err, domain.ErrNotFound) {
		return "", "", fmt.Errorf("world no longer available upstream: %w", err)
	}
	if err != nil {
		return "", "", fmt.Errorf("resolve metadata: %w", err)
	}

	if err := e.meta.Upsert(ctx, meta); err != nil {
		return "", "", fmt.Errorf("store metadata: %w", err)
	}
	return domain.RepairSucceeded, "", nil
}

func outcome(d domain.Discrepancy, status domain.RepairStatus, reason string) domain.RepairOutcome {
	return domain.RepairOutcome{Discrepancy: d, Status: status, Reason: reason}
}
