package metrics

import (
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// RegisterPoolStats exposes the catalog connection pool as gauges,
// sampled on every scrape.
//
// Does nothing if metrics are not enabled (InitRegistry not called).
func RegisterPoolStats(pool *pgxpool.Pool) {
	if !IsEnabled() {
		return
	}

	reg := GetRegistry()

	promauto.With(reg).NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: "juststorage_catalog_pool_total_conns",
			Help: "Total connections currently held by the catalog pool",
		},
		func() float64 { return float64(pool.Stat().TotalConns()) },
	)
	promauto.With(reg).NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: "juststorage_catalog_pool_idle_conns",
			Help: "Idle connections in the catalog pool",
		},
		func() float64 { return float64(pool.Stat().IdleConns()) },
	)
	promauto.With(reg).NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: "juststorage_catalog_pool_acquired_conns",
			Help: "Connections currently checked out of the catalog pool",
		},
		func() float64 { return float64(pool.Stat().AcquiredConns()) },
	)
	promauto.With(reg).NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: "juststorage_catalog_pool_empty_acquire_total",
			Help: "Cumulative acquires that had to wait for a free connection",
		},
		func() float64 { return float64(pool.Stat().EmptyAcquireCount()) },
	)
}
