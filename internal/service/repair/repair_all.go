package repair

import (
	"context"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/vrcshowcase/showcase-backend/internal/domain"
)

// RepairAll repairs a batch with bounded parallelism. Outcomes are positional:
// outcome i belongs to discrepancy i. One failed repair never aborts the
// batch; the error return covers only context cancellation.
func (e *Executor) RepairAll(ctx context.Context, ds []domain.Discrepancy) ([]domain.RepairOutcome, error) {
	outcomes := make([]domain.RepairOutcome, len(ds))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.concurrency)

	for i, d := range ds {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				outcomes[i] = outcome(d, domain.RepairFailed, "cancelled: "+err.Error())
				return err
			}
			outcomes[i] = e.Repair(gctx, d)
			return nil
		})
	}

	err := g.Wait()

	var succeeded, failed, noop int
	for _, o := range outcomes {
		switch o.Status {
		case domain.RepairSucceeded:
			succeeded++
		case domain.RepairFailed:
			failed++
		case domain.RepairNoOp:
			noop++
		}
	}
	e.log.InfoContext(ctx, "repair batch finished",
		slog.Int("total", len(ds)),
		slog.Int("succeeded", succeeded),
		slog.Int("failed", failed),
		slog.Int("no_op", noop),
	)

	return outcomes, err
}
