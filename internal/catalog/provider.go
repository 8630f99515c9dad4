package catalog

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/noah-isme/vetpos/internal/obs"
)

// Provider supplies catalog items. Implementations live in internal/repo.
type Provider interface {
	ListItems(ctx context.Context) ([]Item, error)
	GetItem(ctx context.Context, id string) (Item, error)
}

// CachedProvider serves list reads from a Redis snapshot and falls through to
// the underlying provider on a miss. Single-item reads always hit the source
// so stock checks see the freshest quantity.
type CachedProvider struct {
	Source Provider
	Cache  *Cache
	Logger zerolog.Logger
}

// ListItems implements Provider.
func (p CachedProvider) ListItems(ctx context.Context) ([]Item, error) {
	items, ok, err := p.Cache.Load(ctx)
	if err != nil {
		p.Logger.Warn().Err(err).Msg("catalog cache read")
	} else if ok {
		cacheResult("hit")
		return items, nil
	}
	cacheResult("miss")
	items, err = p.Source.ListItems(ctx)
	if err != nil {
		return nil, err
	}
	if err := p.Cache.Store(ctx, items); err != nil {
		p.Logger.Warn().Err(err).Msg("catalog cache write")
	}
	return items, nil
}

// GetItem implements Provider.
func (p CachedProvider) GetItem(ctx context.Context, id string) (Item, error) {
	return p.Source.GetItem(ctx, id)
}

// Invalidate drops the cached snapshot.
func (p CachedProvider) Invalidate(ctx context.Context) error {
	return p.Cache.Invalidate(ctx)
}

func cacheResult(result string) {
	if obs.CatalogCacheTotal != nil {
		obs.CatalogCacheTotal.WithLabelValues(result).Inc()
	}
}
