package main

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	redis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	limiter "github.com/ulule/limiter/v3"

	"github.com/noah-isme/vetpos/internal/cart"
	"github.com/noah-isme/vetpos/internal/catalog"
	"github.com/noah-isme/vetpos/internal/checkout"
	"github.com/noah-isme/vetpos/internal/common"
	"github.com/noah-isme/vetpos/internal/config"
	"github.com/noah-isme/vetpos/internal/discount"
	"github.com/noah-isme/vetpos/internal/health"
	httpmw "github.com/noah-isme/vetpos/internal/http/middleware"
	"github.com/noah-isme/vetpos/internal/inventory"
	"github.com/noah-isme/vetpos/internal/obs"
	"github.com/noah-isme/vetpos/internal/ratelimit"
	"github.com/noah-isme/vetpos/internal/report"
	"github.com/noah-isme/vetpos/internal/security"
	"github.com/noah-isme/vetpos/internal/stock"
	"github.com/noah-isme/vetpos/internal/supplier"
)

// dependencies is everything the router needs. Nil Redis means idempotency
// keys are not enforced.
type dependencies struct {
	Config       *config.Config
	Logger       zerolog.Logger
	Now          func() time.Time
	Items        catalog.Provider
	Catalog      catalog.Provider
	CatalogCache supplier.Invalidator
	Discounts    discount.Store
	Sales        salesStore
	Suppliers    supplier.Store
	Stock        supplier.StockReceiver
	Sessions     cart.Sessions
	Locker       cart.Locker
	Receipts     checkout.ReceiptQueue
	Redis        *redis.Client
	LimitStore   limiter.Store
	Checker      health.Checker
}

func newRouter(deps dependencies) (http.Handler, error) {
	cfg := deps.Config
	now := deps.Now
	if now == nil {
		now = time.Now
	}

	checkoutRate, err := ratelimit.ParseRate(cfg.CheckoutRate)
	if err != nil {
		return nil, err
	}

	cartSvc := &cart.Service{
		Sessions:  deps.Sessions,
		Catalog:   deps.Catalog,
		Discounts: deps.Discounts,
		Locker:    deps.Locker,
		TaxRate:   cfg.TaxRate,
		Now:       now,
		Logger:    deps.Logger.With().Str("component", "cart").Logger(),
	}
	checkoutSvc := &checkout.Service{
		Carts:     cartSvc,
		Sales:     deps.Sales,
		Receipts:  deps.Receipts,
		StoreName: cfg.StoreName,
		Currency:  cfg.CurrencyCode,
		Now:       now,
		Logger:    deps.Logger.With().Str("component", "checkout").Logger(),
	}

	cartHandler := &cart.Handler{Svc: cartSvc}
	checkoutHandler := &checkout.Handler{Svc: checkoutSvc}
	discountHandler := &discount.Handler{Store: deps.Discounts, Now: now}
	inventoryHandler := &inventory.Handler{
		Catalog:    deps.Catalog,
		Classifier: stock.Classifier{WindowDays: cfg.ExpiryWindowDays},
		Now:        now,
	}
	reportHandler := &report.Handler{Sales: deps.Sales, Now: now}
	supplierHandler := &supplier.Handler{Svc: &supplier.Service{
		Store:   deps.Suppliers,
		Catalog: deps.Catalog,
		Stock:   deps.Stock,
		Cache:   deps.CatalogCache,
		Locker:  deps.Locker,
		Now:     now,
		Logger:  deps.Logger.With().Str("component", "purchasing").Logger(),
	}}
	healthHandler := health.Handler{Checker: deps.Checker}

	idem := common.Idem{R: deps.Redis, TTL: cfg.IdempotencyTTL, Prefix: "vetpos:idem:"}
	checkoutLimit := ratelimit.Handler{
		Store:  deps.LimitStore,
		Config: ratelimit.Config{Key: common.TillKey, Rate: checkoutRate},
		OnError: func(err error) {
			deps.Logger.Warn().Err(err).Msg("rate limit store unavailable")
		},
	}
	httpMetrics := obs.NewHTTPMetrics(cfg.MetricsNamespace, nil, nil)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(obs.RoutePatternMiddleware)
	r.Use(obs.HTTPTracing)
	r.Use(obs.HTTPObs{Metrics: httpMetrics}.Middleware)
	r.Use(common.CashierMiddleware)
	r.Use(obs.RequestLogger{Logger: deps.Logger}.Middleware)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: allowedOrigins(cfg),
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", "Idempotency-Key", common.CashierHeader},
		ExposedHeaders: []string{"X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Reset", "Retry-After"},
		MaxAge:         300,
	}))
	r.Use(security.Headers{Enable: true, EnableHSTS: cfg.IsProduction()}.Middleware)

	r.Handle("/metrics", promhttp.Handler())
	r.Get("/health/live", healthHandler.Live)
	r.Get("/health/ready", healthHandler.Ready)

	r.Route("/api/v1", func(v chi.Router) {
		v.Use(security.BodyLimit{}.Middleware)

		v.Route("/catalog", func(c chi.Router) {
			c.Get("/", inventoryHandler.List)
			c.Get("/alerts", inventoryHandler.Alerts)
			c.Get("/restock", inventoryHandler.Restock)
		})

		v.Route("/discounts", func(d chi.Router) {
			d.Get("/", discountHandler.List)
			d.With(idem.Middleware).Post("/", discountHandler.Create)
			d.Delete("/{id}", discountHandler.Delete)
		})

		v.Route("/carts", func(c chi.Router) {
			c.With(idem.Middleware).Post("/", cartHandler.Create)
			c.Route("/{id}", func(one chi.Router) {
				one.Get("/", cartHandler.Get)
				one.Delete("/", cartHandler.Discard)
				one.With(idem.Middleware).Post("/items", cartHandler.AddItem)
				one.Patch("/items/{itemId}", cartHandler.UpdateItem)
				one.Delete("/items/{itemId}", cartHandler.RemoveItem)
				one.Put("/discount", cartHandler.ApplyDiscount)
				one.Delete("/discount", cartHandler.RemoveDiscount)
				one.With(httpmw.RequireCashier, checkoutLimit.Middleware, idem.Middleware).
					Post("/checkout", checkoutHandler.Checkout)
			})
		})

		v.Route("/suppliers", func(sp chi.Router) {
			sp.Get("/", supplierHandler.ListSuppliers)
			sp.With(idem.Middleware).Post("/", supplierHandler.CreateSupplier)
			sp.Get("/{id}", supplierHandler.GetSupplier)
		})

		v.Route("/purchase-orders", func(po chi.Router) {
			po.Get("/", supplierHandler.ListOrders)
			po.With(idem.Middleware).Post("/", supplierHandler.Draft)
			po.Get("/{id}", supplierHandler.GetOrder)
			po.Patch("/{id}", supplierHandler.UpdateStatus)
			po.With(idem.Middleware).Post("/{id}/deliveries", supplierHandler.Receive)
		})

		v.Get("/reports/sales", reportHandler.SalesSummary)
	})

	return r, nil
}

func allowedOrigins(cfg *config.Config) []string {
	if len(cfg.CORSAllowedOrigins) == 0 {
		return []string{"*"}
	}
	return cfg.CORSAllowedOrigins
}
