package metrics

import "github.com/prometheus/client_golang/prometheus"

// Search Prometheus metrics.
var (
	FeaturedSearchesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "featuredsearch",
			Name:      "featured_searches_total",
			Help:      "Total featured-result searches",
		},
		[]string{"outcome", "asyoutype"}, // outcome "hit" / "miss"
	)

	FeaturedCandidatesRetrieved = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "featuredsearch",
			Name:      "featured_candidates_retrieved",
			Help:      "Candidate set size handed to the matcher per search",
			Buckets:   []float64{0, 1, 2, 5, 10, 25, 50, 100, 250},
		},
		[]string{"asyoutype"},
	)

	AdvancedSearchesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "featuredsearch",
			Name:      "advanced_searches_total",
			Help:      "Total advanced (fielded) searches",
		},
		[]string{"backend", "status"}, // backend "results" / "directory"
	)
)

var searchMetricsRegistered bool

// RegisterSearchMetrics registers Prometheus search metrics. Must be called once from main.
func RegisterSearchMetrics() {
	if searchMetricsRegistered {
		return
	}
	prometheus.MustRegister(FeaturedSearchesTotal)
	prometheus.MustRegister(FeaturedCandidatesRetrieved)
	prometheus.MustRegister(AdvancedSearchesTotal)
	searchMetricsRegistered = true
}
