package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vrcshowcase/showcase-backend/internal/adapter/forum/discord"
	"github.com/vrcshowcase/showcase-backend/internal/adapter/postgres"
	forumconfigrepo "github.com/vrcshowcase/showcase-backend/internal/adapter/postgres/forumconfig"
	tagrepo "github.com/vrcshowcase/showcase-backend/internal/adapter/postgres/tag"
	worldmetarepo "github.com/vrcshowcase/showcase-backend/internal/adapter/postgres/worldmeta"
	worldpostrepo "github.com/vrcshowcase/showcase-backend/internal/adapter/postgres/worldpost"
	"github.com/vrcshowcase/showcase-backend/internal/adapter/provider/vrchat"
	"github.com/vrcshowcase/showcase-backend/internal/config"
	"github.com/vrcshowcase/showcase-backend/internal/domain"
	"github.com/vrcshowcase/showcase-backend/internal/service/drift"
	"github.com/vrcshowcase/showcase-backend/internal/service/repair"
	"github.com/vrcshowcase/showcase-backend/internal/service/resolver"
	"github.com/vrcshowcase/showcase-backend/internal/service/submission"
	"github.com/vrcshowcase/showcase-backend/internal/service/tagcatalog"
	"github.com/vrcshowcase/showcase-backend/internal/service/workspace"
	"github.com/vrcshowcase/showcase-backend/pkg/ctxutil"
)

// App wires the engine together: repositories, adapters, services, and the
// periodic reconciliation loop.
type App struct {
	cfg  config.Config
	log  *slog.Logger
	pool *pgxpool.Pool

	Forum       *discord.Client
	ForumConfig *forumconfigrepo.Repo

	TagCatalog *tagcatalog.Service
	Resolver   *resolver.Service
	Submission *submission.Service
	Workspace  *workspace.Service
	Scanner    *drift.Scanner
	Repairer   *repair.Executor
}

// New builds the application from configuration. The caller owns the returned
// App and must call Close.
func New(ctx context.Context, cfg config.Config, logger *slog.Logger) (*App, error) {
	if cfg.Database.MigrateOnStart {
		if err := postgres.Migrate(ctx, cfg.Database.DSN, cfg.Database.MigrationsDir); err != nil {
			return nil, fmt.Errorf("run migrations: %w", err)
		}
		logger.Info("migrations applied", slog.String("dir", cfg.Database.MigrationsDir))
	}

	pool, err := postgres.NewPool(ctx, cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	posts := worldpostrepo.New(pool)
	tags := tagrepo.New(pool)
	configs := forumconfigrepo.New(pool)
	meta := worldmetarepo.New(pool)
	tx := postgres.NewTxManager(pool)

	forum := discord.NewClient(cfg.Forum.BotToken, logger,
		discord.WithBaseURL(cfg.Forum.BaseURL),
		discord.WithTimeout(cfg.Forum.RequestTimeout),
	)

	catalog := vrchat.NewProvider(logger,
		vrchat.WithBaseURL(cfg.Catalog.BaseURL),
		vrchat.WithUserAgent(cfg.Catalog.UserAgent),
		vrchat.WithTimeout(cfg.Catalog.RequestTimeout),
		vrchat.WithRetry(cfg.Catalog.RetryAttempts, cfg.Catalog.RetryBaseDelay),
	)

	resolverSvc := resolver.NewService(logger, catalog, cfg.Catalog.CacheTTL)

	return &App{
		cfg:         cfg,
		log:         logger,
		pool:        pool,
		Forum:       forum,
		ForumConfig: configs,
		TagCatalog:  tagcatalog.NewService(logger, tags),
		Resolver:    resolverSvc,
		Submission:  submission.NewService(logger, posts, tags, configs, meta, forum, resolverSvc, tx),
		Workspace:   workspace.NewService(logger, posts, tags, configs, forum),
		Scanner:     drift.NewScanner(logger, posts, configs, meta, forum),
		Repairer:    repair.NewExecutor(logger, posts, meta, forum, resolverSvc, cfg.Engine.RepairConcurrency),
	}, nil
}

// RunScanLoop reconciles every configured workspace on the engine's interval
// until the context is cancelled. One cycle runs immediately on start.
func (a *App) RunScanLoop(ctx context.Context) {
	a.log.Info("scan loop started",
		slog.Duration("interval", a.cfg.Engine.ScanInterval),
		slog.Bool("auto_repair", a.cfg.Engine.AutoRepair),
	)

	ticker := time.NewTicker(a.cfg.Engine.ScanInterval)
	defer ticker.Stop()

	a.runScanCycle(ctx)
	for {
		select {
		case <-ctx.Done():
			a.log.Info("scan loop stopped")
			return
		case <-ticker.C:
			a.runScanCycle(ctx)
		}
	}
}

// runScanCycle reconciles all workspaces once. Per-workspace failures are
// logged and skipped so one broken workspace cannot starve the rest.
func (a *App) runScanCycle(ctx context.Context) {
	cycleCtx, cancel := context.WithTimeout(ctx, a.cfg.Engine.ScanTimeout)
	defer cancel()
	cycleCtx = ctxutil.WithRequestID(cycleCtx, uuid.NewString())

	log := a.log.With(slog.String("cycle_id", ctxutil.RequestIDFromCtx(cycleCtx)))

	configs, err := a.ForumConfig.List(cycleCtx)
	if err != nil {
		log.Error("list workspaces for scan", slog.String("error", err.Error()))
		return
	}

	for _, fc := range configs {
		if cycleCtx.Err() != nil {
			return
		}
		if err := a.reconcileWorkspace(cycleCtx, fc); err != nil {
			log.Error("workspace reconciliation failed",
				slog.String("workspace_id", fc.WorkspaceID),
				slog.String("error", err.Error()),
			)
		}
	}
}

// reconcileWorkspace syncs the tag catalog from the forum, scans for drift,
// and repairs automatically when enabled.
func (a *App) reconcileWorkspace(ctx context.Context, fc *domain.ForumConfig) error {
	defs, err := a.Forum.ListTagDefinitions(ctx, fc.ForumChannelID)
	if err != nil {
		return fmt.Errorf("list tag definitions: %w", err)
	}

	syncResult, err := a.TagCatalog.Sync(ctx, fc.WorkspaceID, defs)
	if err != nil {
		return fmt.Errorf("sync tag catalog: %w", err)
	}
	if len(syncResult.StaleTagIDs) > 0 {
		a.log.Warn("stale tags in catalog",
			slog.String("workspace_id", fc.WorkspaceID),
			slog.Any("tag_ids", syncResult.StaleTagIDs),
		)
	}

	found, err := a.Scanner.Scan(ctx, fc.WorkspaceID)
	if err != nil {
		return fmt.Errorf("scan: %w", err)
	}
	if len(found) == 0 {
		return nil
	}

	if !a.cfg.Engine.AutoRepair {
		for _, d := range found {
			a.log.Warn("drift detected",
				slog.String("workspace_id", d.WorkspaceID),
				slog.String("kind", string(d.Kind)),
				slog.String("subject", d.SubjectKey()),
				slog.String("proposed_action", string(d.Action())),
				slog.Bool("manual_only", d.ManualOnly),
			)
		}
		return nil
	}

	if _, err := a.Repairer.RepairAll(ctx, found); err != nil {
		return fmt.Errorf("repair batch: %w", err)
	}
	return nil
}

// Close releases the database pool.
func (a *App) Close() {
	a.pool.Close()
}
