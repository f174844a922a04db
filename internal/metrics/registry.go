package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Registry holds the governance-domain Prometheus collectors.
type Registry struct {
	AssessmentsTotal *prometheus.CounterVec
	FrameworkScore   *prometheus.GaugeVec
	AlertsTotal      *prometheus.CounterVec
	AuditsCompleted  prometheus.Counter
	ReportsGenerated *prometheus.CounterVec
	HTTPRequests     *prometheus.CounterVec
	HTTPDuration     *prometheus.HistogramVec
}

// NewRegistry registers all governance collectors with reg.
func NewRegistry(reg prometheus.Registerer) *Registry {
	r := &Registry{
		AssessmentsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "governance_assessments_total",
			Help: "Compliance assessment runs by framework and resulting status.",
		}, []string{"framework", "status"}),
		FrameworkScore: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "governance_framework_score",
			Help: "Latest overall compliance score per framework.",
		}, []string{"framework"}),
		AlertsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "governance_alerts_total",
			Help: "Governance alerts raised by level.",
		}, []string{"level"}),
		AuditsCompleted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "governance_audits_completed_total",
			Help: "Audits that reached completed status.",
		}),
		ReportsGenerated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "governance_reports_generated_total",
			Help: "Reports generated by type.",
		}, []string{"type"}),
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "governance_http_requests_total",
			Help: "HTTP requests by route and status code.",
		}, []string{"route", "code"}),
		HTTPDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "governance_http_request_duration_seconds",
			Help:    "HTTP request latency by route.",
			Buckets: prometheus.DefBuckets,
		}, []string{"route"}),
	}

	reg.MustRegister(
		r.AssessmentsTotal,
		r.FrameworkScore,
		r.AlertsTotal,
		r.AuditsCompleted,
		r.ReportsGenerated,
		r.HTTPRequests,
		r.HTTPDuration,
	)
	return r
}
