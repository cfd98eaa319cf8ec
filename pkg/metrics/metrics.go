// Package metrics holds the Prometheus collectors for the pricing service.
// A nil *Metrics is valid and records nothing.
package metrics

import (
	"context"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/wyfcoding/pkg/logging"
)

const namespace = "storefront"

// Cache tier outcomes recorded by the snapshot cache.
const (
	OutcomePrimaryHit   = "primary_hit"
	OutcomeSecondaryHit = "secondary_hit"
	OutcomeRefreshed    = "refreshed"
	OutcomeMiss         = "miss"
)

// Metrics collector set
type Metrics struct {
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	// remote catalog
	CatalogFetchTotal    *prometheus.CounterVec
	CatalogFetchDuration prometheus.Histogram

	// snapshot cache
	CacheLookupsTotal *prometheus.CounterVec
	GuardDeniedTotal  *prometheus.CounterVec
	CacheKeysCleared  prometheus.Counter

	// reindex
	ReindexRunsTotal       *prometheus.CounterVec
	ReindexProductsUpdated prometheus.Counter
}

// New builds the collectors; call Register to expose them.
func New(serviceName string) *Metrics {
	subsystem := strings.ReplaceAll(serviceName, "-", "_")
	return &Metrics{
		HTTPRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "http_requests_total",
			Help:      "Total HTTP requests",
		}, []string{"method", "route", "status"}),
		HTTPRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),

		CatalogFetchTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "catalog_fetch_total",
			Help:      "Remote catalog fetches by result",
		}, []string{"currency", "result"}),
		CatalogFetchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "catalog_fetch_duration_seconds",
			Help:      "Remote catalog fetch duration in seconds",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5},
		}),

		CacheLookupsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "snapshot_lookups_total",
			Help:      "Snapshot cache lookups by outcome",
		}, []string{"currency", "outcome"}),
		GuardDeniedTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "refresh_guard_denied_total",
			Help:      "Refreshes skipped because another worker held the guard",
		}, []string{"currency"}),
		CacheKeysCleared: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "cache_keys_cleared_total",
			Help:      "Cache keys removed through the admin endpoint",
		}),

		ReindexRunsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "reindex_runs_total",
			Help:      "Reindex passes by result",
		}, []string{"result"}),
		ReindexProductsUpdated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "reindex_products_updated_total",
			Help:      "Products whose stored price was rewritten by reindex",
		}),
	}
}

// Register adds every collector to reg (prometheus.DefaultRegisterer when nil).
func (m *Metrics) Register(reg prometheus.Registerer) error {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	collectors := []prometheus.Collector{
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.CatalogFetchTotal,
		m.CatalogFetchDuration,
		m.CacheLookupsTotal,
		m.GuardDeniedTotal,
		m.CacheKeysCleared,
		m.ReindexRunsTotal,
		m.ReindexProductsUpdated,
	}
	for _, c := range collectors {
		if err := reg.Register(c); err != nil {
			logging.Error(context.Background(), "Failed to register metric", "error", err)
			return err
		}
	}

	logging.Info(context.Background(), "Metrics registered successfully")
	return nil
}

func (m *Metrics) RecordHTTPRequest(method, route string, status int, d time.Duration) {
	if m == nil {
		return
	}
	m.HTTPRequestsTotal.WithLabelValues(method, route, statusClass(status)).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

func (m *Metrics) RecordCatalogFetch(currency string, err error, d time.Duration) {
	if m == nil {
		return
	}
	result := "success"
	if err != nil {
		result = "failure"
	}
	m.CatalogFetchTotal.WithLabelValues(currency, result).Inc()
	m.CatalogFetchDuration.Observe(d.Seconds())
}

func (m *Metrics) RecordCacheLookup(currency, outcome string) {
	if m == nil {
		return
	}
	m.CacheLookupsTotal.WithLabelValues(currency, outcome).Inc()
}

func (m *Metrics) RecordGuardDenied(currency string) {
	if m == nil {
		return
	}
	m.GuardDeniedTotal.WithLabelValues(currency).Inc()
}

func (m *Metrics) RecordKeysCleared(n int64) {
	if m == nil || n <= 0 {
		return
	}
	m.CacheKeysCleared.Add(float64(n))
}

func (m *Metrics) RecordReindex(updated int, err error) {
	if m == nil {
		return
	}
	result := "success"
	if err != nil {
		result = "failure"
	}
	m.ReindexRunsTotal.WithLabelValues(result).Inc()
	m.ReindexProductsUpdated.Add(float64(updated))
}

func statusClass(status int) string {
	switch {
	case status >= 500:
		return "5xx"
	case status >= 400:
		return "4xx"
	case status >= 300:
		return "3xx"
	default:
		return "2xx"
	}
}
