package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/extra/redisotel/v9"
	redis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/noah-isme/vetpos/internal/cart"
	"github.com/noah-isme/vetpos/internal/catalog"
	"github.com/noah-isme/vetpos/internal/checkout"
	"github.com/noah-isme/vetpos/internal/config"
	"github.com/noah-isme/vetpos/internal/discount"
	"github.com/noah-isme/vetpos/internal/health"
	"github.com/noah-isme/vetpos/internal/lock"
	"github.com/noah-isme/vetpos/internal/notify"
	"github.com/noah-isme/vetpos/internal/obs"
	"github.com/noah-isme/vetpos/internal/ratelimit"
	"github.com/noah-isme/vetpos/internal/repo"
	"github.com/noah-isme/vetpos/internal/report"
	"github.com/noah-isme/vetpos/internal/supplier"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger := obs.NewLogger(cfg.LogFormat, cfg.LogLevel).With().Str("env", cfg.AppEnv).Logger()
	obs.MustRegisterDomainMetrics(cfg.MetricsNamespace, nil)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracer, err := obs.InitTracer(ctx, obs.TracingConfig{
		ServiceName:   "vetpos-api",
		Endpoint:      cfg.OTelEndpoint,
		Exporter:      cfg.OTelExporter,
		SamplingRatio: cfg.OTelSampleRatio,
		Environment:   cfg.AppEnv,
	})
	if err != nil {
		logger.Error().Err(err).Msg("initialise tracing")
		shutdownTracer = func(context.Context) error { return nil }
	}
	defer func() {
		if err := shutdownTracer(context.Background()); err != nil {
			logger.Error().Err(err).Msg("shutdown tracer")
		}
	}()

	deps := dependencies{Config: cfg, Logger: logger}

	var pool *pgxpool.Pool
	if cfg.DatabaseURL != "" {
		if cfg.MigrateOnStart {
			if err := repo.Migrate(cfg.DatabaseURL); err != nil {
				logger.Fatal().Err(err).Msg("run migrations")
			}
		}
		pool = mustInitDatabase(ctx, cfg, logger)
		defer pool.Close()
		store := repo.Postgres{DB: pool}
		deps.Items, deps.Discounts, deps.Sales = store, store, store
		deps.Suppliers, deps.Stock = store, store
	} else {
		logger.Warn().Msg("DATABASE_URL not set, using seeded in-memory catalog")
		now := time.Now()
		mem := repo.NewMemory(repo.SeedItems(now)...)
		deps.Items, deps.Sales, deps.Stock = mem, mem, mem
		deps.Discounts = discount.NewMemoryStore(repo.SeedDiscounts(now)...)
		deps.Suppliers = supplier.NewMemoryStore(repo.SeedSuppliers()...)
	}

	var redisClient *redis.Client
	mailer := notify.ReceiptMailer{
		Mail:   notify.LogSender{From: cfg.ReceiptEmailFrom, Logger: logger},
		Logger: logger,
	}
	if cfg.RedisURL != "" {
		redisClient = mustInitRedis(ctx, cfg, logger)
		defer func() {
			if err := redisClient.Close(); err != nil {
				logger.Error().Err(err).Msg("close redis")
			}
		}()
		deps.Redis = redisClient
		deps.Sessions = cart.RedisSessions{R: redisClient, TTL: cfg.CartTTL}
		deps.Locker = lock.Redis{R: redisClient}

		redisOpt, err := asynq.ParseRedisURI(cfg.RedisURL)
		if err != nil {
			logger.Fatal().Err(err).Msg("parse asynq redis uri")
		}
		taskClient := asynq.NewClient(redisOpt)
		defer func() {
			if err := taskClient.Close(); err != nil {
				logger.Error().Err(err).Msg("close task client")
			}
		}()
		deps.Receipts = notify.AsynqReceipts{Client: taskClient, Queue: cfg.ReceiptQueue, MaxRetry: 5}
	} else {
		logger.Warn().Msg("REDIS_URL not set, carts live in process memory and receipts are sent inline")
		deps.Sessions = cart.NewMemorySessions()
		deps.Locker = lock.NewLocal()
		mailer.Guard = &notify.MemoryGuard{}
		deps.Receipts = notify.DirectReceipts{Mailer: mailer}
	}
	cachedCatalog := catalog.CachedProvider{
		Source: deps.Items,
		Cache:  catalog.NewCache(redisClient, cfg.CatalogCacheTTL),
		Logger: logger,
	}
	deps.Catalog, deps.CatalogCache = cachedCatalog, cachedCatalog

	limitStore, err := ratelimit.NewStore(redisClient, "vetpos:ratelimit")
	if err != nil {
		logger.Fatal().Err(err).Msg("initialise rate limit store")
	}
	deps.LimitStore = limitStore
	deps.Checker = health.Probes{DB: pool, Redis: redisClient}

	router, err := newRouter(deps)
	if err != nil {
		logger.Fatal().Err(err).Msg("build router")
	}

	srv := &http.Server{
		Addr:              cfg.HTTPAddr(),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		health.SetReady(false)
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("server shutdown")
		}
	}()

	logger.Info().Str("addr", srv.Addr).Msg("server starting")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal().Err(err).Msg("server exited unexpectedly")
	}
	logger.Info().Msg("server stopped")
}

// salesStore is satisfied by both repositories.
type salesStore interface {
	checkout.SaleSink
	report.SaleLister
}

func mustInitDatabase(ctx context.Context, cfg *config.Config, logger zerolog.Logger) *pgxpool.Pool {
	poolConfig, err := pgxpool.ParseConfig(cfg.DatabaseURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("parse database config")
	}
	poolConfig.ConnConfig.Tracer = obs.PGXTracer{}
	if poolConfig.ConnConfig.RuntimeParams == nil {
		poolConfig.ConnConfig.RuntimeParams = map[string]string{}
	}
	poolConfig.ConnConfig.RuntimeParams["application_name"] = "vetpos-api"

	connectCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	pool, err := pgxpool.NewWithConfig(connectCtx, poolConfig)
	if err != nil {
		logger.Fatal().Err(err).Msg("connect database")
	}
	if err := pool.Ping(connectCtx); err != nil {
		logger.Fatal().Err(err).Msg("ping database")
	}
	return pool
}

func mustInitRedis(ctx context.Context, cfg *config.Config, logger zerolog.Logger) *redis.Client {
	redisOpts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("parse redis url")
	}
	redisClient := redis.NewClient(redisOpts)
	if err := redisotel.InstrumentTracing(redisClient); err != nil {
		logger.Error().Err(err).Msg("instrument redis tracing")
	}
	if err := redisotel.InstrumentMetrics(redisClient); err != nil {
		logger.Error().Err(err).Msg("instrument redis metrics")
	}
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := redisClient.Ping(pingCtx).Err(); err != nil {
		logger.Fatal().Err(err).Msg("ping redis")
	}
	return redisClient
}
