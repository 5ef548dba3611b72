// Package resolver turns raw world input (URLs or bare ids) into metadata
// snapshots, shielding the catalog API behind a TTL cache and request
// coalescing.
package resolver

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/vrcshowcase/showcase-backend/internal/provider"
)

type worldProvider interface {
	FetchWorld(ctx context.Context, worldID string) (*provider.WorldResult, error)
}

// Service resolves world identifiers to metadata snapshots.
type Service struct {
	log      *slog.Logger
	provider worldProvider
	cache    *metadataCache
	group    singleflight.Group
}

// NewService creates a new resolver service. Snapshots younger than ttl are
// served from memory without touching the catalog API.
func NewService(logger *slog.Logger, p worldProvider, ttl time.Duration) *Service {
	return &Service{
		log:      logger.With("service", "resolver"),
		provider: p,
		cache:    newMetadataCache(ttl),
	}
}
