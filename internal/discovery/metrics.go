package discovery

import "github.com/prometheus/client_golang/prometheus"

// Metrics holds the pipeline's Prometheus collectors. They work without
// registration, so the one-shot CLI increments them freely; the server
// calls RegisterMetrics to expose them on /metrics.
var Metrics = struct {
	QuotaUnits       *prometheus.CounterVec
	CandidatesTotal  prometheus.Counter
	RejectionsTotal  *prometheus.CounterVec
	IncompleteItems  *prometheus.CounterVec
	ProfilesUpserted prometheus.Counter
	UpsertFailures   prometheus.Counter
	SessionDuration  prometheus.Histogram
}{
	QuotaUnits: prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "inviteai_discovery_quota_units_total",
		Help: "Directory API quota units consumed, by call type.",
	}, []string{"call"}),
	CandidatesTotal: prometheus.NewCounter(prometheus.CounterOpts{
		Name: "inviteai_discovery_candidates_total",
		Help: "Channel candidates evaluated by the filter chain.",
	}),
	RejectionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "inviteai_discovery_rejections_total",
		Help: "Candidates rejected, by reason.",
	}, []string{"reason"}),
	IncompleteItems: prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "inviteai_discovery_incomplete_items_total",
		Help: "API response items skipped for missing or malformed fields.",
	}, []string{"kind"}),
	ProfilesUpserted: prometheus.NewCounter(prometheus.CounterOpts{
		Name: "inviteai_discovery_profiles_upserted_total",
		Help: "Qualified profiles written to storage.",
	}),
	UpsertFailures: prometheus.NewCounter(prometheus.CounterOpts{
		Name: "inviteai_discovery_upsert_failures_total",
		Help: "Qualified profiles that failed to persist.",
	}),
	SessionDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "inviteai_discovery_session_duration_seconds",
		Help:    "Wall time of one keyword session.",
		Buckets: []float64{1, 5, 15, 30, 60, 120, 300, 600},
	}),
}

// RegisterMetrics adds the pipeline collectors to the default registry.
// Call once, from the process that serves /metrics.
func RegisterMetrics() {
	prometheus.MustRegister(
		Metrics.QuotaUnits,
		Metrics.CandidatesTotal,
		Metrics.RejectionsTotal,
		Metrics.IncompleteItems,
		Metrics.ProfilesUpserted,
		Metrics.UpsertFailures,
		Metrics.SessionDuration,
	)
}
