package library

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"shelfapi/internal/platform/openlibrary"
)

const lookupKeyPrefix = "lookup:isbn:"

type cachedLookup struct {
	NotFound bool                  `json:"notFound,omitempty"`
	Metadata *openlibrary.Metadata `json:"metadata,omitempty"`
}

// CachedCatalog memoizes catalog lookups. Misses are cached for negativeTTL;
// upstream failures are never cached. Cache errors fall through to the catalog.
type CachedCatalog struct {
	next        Catalog
	cache       Cache
	ttl         time.Duration
	negativeTTL time.Duration
	logger      *slog.Logger
}

func NewCachedCatalog(next Catalog, cache Cache, ttl, negativeTTL time.Duration, logger *slog.Logger) *CachedCatalog {
	if logger == nil {
		logger = slog.Default()
	}
	return &CachedCatalog{
		next:        next,
		cache:       cache,
		ttl:         ttl,
		negativeTTL: negativeTTL,
		logger:      logger.With("component", "lookup_cache"),
	}
}

func (c *CachedCatalog) Lookup(ctx context.Context, isbn string) (*openlibrary.Metadata, error) {
	key := lookupKeyPrefix + isbn

	var entry cachedLookup
	hit, err := c.cache.Get(ctx, key, &entry)
	if err != nil {
		c.logger.Warn("lookup cache read failed", "isbn", isbn, "error", err)
	}
	if hit {
		if entry.NotFound {
			return nil, fmt.Errorf("%w: isbn %s (cached)", openlibrary.ErrNotFound, isbn)
		}
		if entry.Metadata != nil {
			return entry.Metadata, nil
		}
	}

	meta, err := c.next.Lookup(ctx, isbn)
	switch {
	case err == nil:
		c.store(ctx, key, cachedLookup{Metadata: meta}, c.ttl)
	case errors.Is(err, openlibrary.ErrNotFound):
		if c.negativeTTL > 0 {
			c.store(ctx, key, cachedLookup{NotFound: true}, c.negativeTTL)
		}
	}
	return meta, err
}

func (c *CachedCatalog) store(ctx context.Context, key string, entry cachedLookup, ttl time.Duration) {
	if err := c.cache.Set(ctx, key, entry, ttl); err != nil {
		c.logger.Warn("lookup cache write failed", "key", key, "error", err)
	}
}
