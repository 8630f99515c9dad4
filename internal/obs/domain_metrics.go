package obs

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	domainOnce sync.Once

	// CartMutationsTotal counts cart ledger operations by outcome.
	CartMutationsTotal *prometheus.CounterVec
	// CheckoutTotal counts checkout attempts by payment method and outcome.
	CheckoutTotal *prometheus.CounterVec
	// SaleAmount records completed sale totals.
	SaleAmount *prometheus.HistogramVec
	// ReceiptEmailsTotal counts receipt email deliveries.
	ReceiptEmailsTotal *prometheus.CounterVec
	// CatalogCacheTotal counts catalog snapshot lookups by hit or miss.
	CatalogCacheTotal *prometheus.CounterVec
)

// MustRegisterDomainMetrics initialises and registers domain-specific Prometheus collectors.
func MustRegisterDomainMetrics(namespace string, reg prometheus.Registerer) {
	domainOnce.Do(func() {
		if reg == nil {
			reg = prometheus.DefaultRegisterer
		}
		CartMutationsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cart_mutations_total",
			Help:      "Count of cart mutations by operation and result.",
		}, []string{"op", "result"})
		CheckoutTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "checkout_total",
			Help:      "Count of checkout attempts by payment method and result.",
		}, []string{"method", "result"})
		SaleAmount = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "sale_amount",
			Help:      "Completed sale totals in store currency.",
			Buckets:   []float64{5, 10, 25, 50, 100, 250, 500, 1000, 2500},
		}, []string{"method"})
		ReceiptEmailsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "receipt_emails_total",
			Help:      "Count of receipt email deliveries by result.",
		}, []string{"result"})
		CatalogCacheTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "catalog_cache_total",
			Help:      "Catalog snapshot cache lookups by result.",
		}, []string{"result"})

		CartMutationsTotal = register(reg, CartMutationsTotal)
		CheckoutTotal = register(reg, CheckoutTotal)
		SaleAmount = register(reg, SaleAmount)
		ReceiptEmailsTotal = register(reg, ReceiptEmailsTotal)
		CatalogCacheTotal = register(reg, CatalogCacheTotal)
	})
}
