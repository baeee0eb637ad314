package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Romanization metrics.
var (
	RomanizationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "kyrlat_romanizations_total",
		Help: "Romanized texts by language and source (cli, web, bot)",
	}, []string{"language", "source"})

	RomanizedRunes = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "kyrlat_romanized_runes",
		Help:    "Input length in runes per romanization",
		Buckets: []float64{8, 32, 128, 512, 2048, 8192, 32768},
	}, []string{"language"})

	RomanizationDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "kyrlat_romanization_duration_seconds",
		Help:    "Engine time per romanization in seconds",
		Buckets: []float64{0.00001, 0.0001, 0.001, 0.01, 0.1},
	})

	HistoryWrites = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "kyrlat_history_writes_total",
		Help: "History store writes by result (new, repeat, error)",
	}, []string{"result"})

	HistoryPruned = promauto.NewCounter(prometheus.CounterOpts{
		Name: "kyrlat_history_pruned_total",
		Help: "History rows deleted by retention pruning",
	})
)

// Web server metrics.
var (
	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "kyrlat_http_requests_total",
		Help: "Total HTTP requests by route, method, and status code",
	}, []string{"route", "method", "status"})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "kyrlat_http_request_duration_seconds",
		Help:    "HTTP request duration in seconds",
		Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
	}, []string{"route", "method"})

	RateLimitHits = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "kyrlat_rate_limit_hits_total",
		Help: "Total rate limit rejections by surface",
	}, []string{"surface"})
)

// Bot metrics.
var (
	BotCommandsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "kyrlat_bot_commands_total",
		Help: "Discord commands handled by result",
	}, []string{"command", "result"})
)

// Database pool metrics (gauges updated periodically).
var (
	DBPoolTotalConns = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "kyrlat_db_pool_total_conns",
		Help: "Total number of connections in the pool",
	})

	DBPoolIdleConns = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "kyrlat_db_pool_idle_conns",
		Help: "Number of idle connections in the pool",
	})

	DBPoolAcquiredConns = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "kyrlat_db_pool_acquired_conns",
		Help: "Number of acquired connections in the pool",
	})

	DBPoolMaxConns = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "kyrlat_db_pool_max_conns",
		Help: "Max connections configured for the pool",
	})
)
