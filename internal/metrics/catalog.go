package metrics

import "github.com/prometheus/client_golang/prometheus"

// Catalog Prometheus metrics.
var (
	IndexBuildsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "catalogd",
			Name:      "search_index_builds_total",
			Help:      "Total number of search index builds",
		},
		[]string{"status"},
	)

	IndexBuildDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "catalogd",
			Name:      "search_index_build_duration_seconds",
			Help:      "Search index build duration in seconds",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
	)

	IndexEntries = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "catalogd",
			Name:      "search_index_entries",
			Help:      "Entities in the current search index",
		},
		[]string{"type"},
	)

	SearchDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "catalogd",
			Name:      "search_duration_seconds",
			Help:      "Search and suggestion duration in seconds",
			Buckets:   []float64{0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		},
		[]string{"operation", "status"},
	)

	SearchResults = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "catalogd",
			Name:      "search_results",
			Help:      "Number of results returned per search",
			Buckets:   []float64{0, 1, 5, 10, 25, 50, 100, 200},
		},
	)

	ValidationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "catalogd",
			Name:      "validations_total",
			Help:      "Contract validations by outcome",
		},
		[]string{"outcome"}, // "valid" / "invalid"
	)

	ExpanderRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "catalogd",
			Name:      "expander_requests_total",
			Help:      "Semantic expander provider requests",
		},
		[]string{"provider", "model", "status"},
	)

	ExpanderRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "catalogd",
			Name:      "expander_request_duration_seconds",
			Help:      "Semantic expander provider latency in seconds",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"provider", "model"},
	)

	ExpanderTokensTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "catalogd",
			Name:      "expander_tokens_total",
			Help:      "Tokens billed by the semantic expander provider",
		},
		[]string{"provider", "model"},
	)

	ExpanderBudgetTokensRemaining = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "catalogd",
			Name:      "expander_budget_tokens_remaining",
			Help:      "Expander tokens left in the current budget window (-1 = unlimited)",
		},
		[]string{"provider", "window"}, // "daily" / "monthly"
	)

	ExpanderCacheTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "catalogd",
			Name:      "expander_cache_total",
			Help:      "Semantic expander cache hits and misses",
		},
		[]string{"result"}, // "hit" / "miss"
	)
)

var catalogMetricsRegistered bool

// RegisterCatalogMetrics registers the catalog metrics. Must be called once from main.
func RegisterCatalogMetrics() {
	if catalogMetricsRegistered {
		return
	}
	prometheus.MustRegister(IndexBuildsTotal)
	prometheus.MustRegister(IndexBuildDuration)
	prometheus.MustRegister(IndexEntries)
	prometheus.MustRegister(SearchDuration)
	prometheus.MustRegister(SearchResults)
	prometheus.MustRegister(ValidationsTotal)
	prometheus.MustRegister(ExpanderRequestsTotal)
	prometheus.MustRegister(ExpanderRequestDuration)
	prometheus.MustRegister(ExpanderTokensTotal)
	prometheus.MustRegister(ExpanderBudgetTokensRemaining)
	prometheus.MustRegister(ExpanderCacheTotal)
	catalogMetricsRegistered = true
}
