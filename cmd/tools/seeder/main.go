// Command seeder loads the demo clinic catalog, promotions and suppliers into
// Postgres and drops the cached catalog listing so the API sees the new rows.
package main

import (
	"context"
	"os"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	redis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/noah-isme/vetpos/internal/catalog"
	"github.com/noah-isme/vetpos/internal/config"
	"github.com/noah-isme/vetpos/internal/obs"
	"github.com/noah-isme/vetpos/internal/repo"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}
	logger := obs.NewLogger("console", cfg.LogLevel).With().Str("component", "seeder").Logger()
	if cfg.DatabaseURL == "" {
		logger.Error().Msg("DATABASE_URL is not set")
		os.Exit(1)
	}

	if err := repo.Migrate(cfg.DatabaseURL); err != nil {
		logger.Fatal().Err(err).Msg("run migrations")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("connect database")
	}
	defer pool.Close()

	store := repo.Postgres{DB: pool}
	now := time.Now()
	for _, sup := range repo.SeedSuppliers() {
		if _, err := store.UpsertSupplier(ctx, sup); err != nil {
			logger.Fatal().Err(err).Str("supplier_id", sup.ID).Msg("seed supplier")
		}
	}
	for _, it := range repo.SeedItems(now) {
		if err := store.UpsertItem(ctx, it); err != nil {
			logger.Fatal().Err(err).Str("item_id", it.ID).Msg("seed item")
		}
	}
	for _, d := range repo.SeedDiscounts(now) {
		if _, err := store.CreateDiscount(ctx, d); err != nil {
			logger.Fatal().Err(err).Str("discount_id", d.ID).Msg("seed discount")
		}
	}

	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			logger.Fatal().Err(err).Msg("parse redis url")
		}
		client := redis.NewClient(opts)
		defer func() { _ = client.Close() }()
		invalidateCatalog(ctx, catalog.CachedProvider{Source: store, Cache: catalog.NewCache(client, cfg.CatalogCacheTTL)}, logger)
	}
	logger.Info().
		Int("items", len(repo.SeedItems(now))).
		Int("discounts", len(repo.SeedDiscounts(now))).
		Int("suppliers", len(repo.SeedSuppliers())).
		Msg("seeding complete")
}

type invalidator interface {
	Invalidate(ctx context.Context) error
}

// invalidateCatalog drops the cached listing. A failure only delays freshness
// until the snapshot expires.
func invalidateCatalog(ctx context.Context, cache invalidator, logger zerolog.Logger) bool {
	if err := cache.Invalidate(ctx); err != nil {
		logger.Warn().Err(err).Msg("catalog cache invalidate")
		return false
	}
	return true
}
