package rest

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()

	limit := s.app.Config.Server.RateLimit
	limiter := rate.NewLimiter(rate.Limit(limit.RequestsPerSecond), limit.BurstSize)

	r.Use(s.requestLogger)
	r.Use(s.rateLimit(limiter))

	r.Get("/healthz", s.handleHealth)
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(s.app.Prometheus, promhttp.HandlerOpts{}))

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/compliance", func(r chi.Router) {
			r.Get("/frameworks", s.handleListFrameworks)
			r.Get("/summary", s.handleComplianceSummary)
			r.Post("/{framework}/assess", s.handleAssessFramework)
			r.Post("/{framework}/evidence", s.handleSubmitEvidence)
			r.Post("/check", s.handleComprehensiveCheck)
		})

		r.Route("/audits", func(r chi.Router) {
			r.Get("/", s.handleListAudits)
			r.Post("/", s.handleCreateAudit)
			r.Get("/{id}/progress", s.handleAuditProgress)
			r.Post("/{id}/start", s.handleStartAudit)
			r.Post("/{id}/complete", s.handleCompleteAudit)
			r.Post("/{id}/checklist/{item}/complete", s.handleCompleteChecklistItem)
		})

		r.Route("/policies", func(r chi.Router) {
			r.Get("/", s.handleListPolicies)
			r.Post("/", s.handleCreatePolicy)
			r.Get("/review-due", s.handlePoliciesForReview)
			r.Post("/{id}/submit", s.handleSubmitPolicy)
			r.Post("/{id}/approve", s.handleApprovePolicy)
			r.Post("/{id}/activate", s.handleActivatePolicy)
			r.Post("/{id}/versions", s.handleNewPolicyVersion)
		})

		r.Route("/reports", func(r chi.Router) {
			r.Get("/", s.handleListReports)
			r.Post("/", s.handleGenerateReport)
		})

		r.Get("/dashboards/{id}", s.handleDashboard)
		r.Get("/alerts", s.handleListAlerts)
	})

	return r
}

// requestLogger logs each request and records the HTTP metrics.
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		route := chi.RouteContext(r.Context()).RoutePattern()
		if route == "" {
			route = r.URL.Path
		}
		elapsed := time.Since(start)

		s.app.Metrics.HTTPRequests.WithLabelValues(route, strconv.Itoa(rec.status)).Inc()
		s.app.Metrics.HTTPDuration.WithLabelValues(route).Observe(elapsed.Seconds())

		s.logger.Debug("request handled",
			zap.String("method", r.Method),
			zap.String("route", route),
			zap.Int("status", rec.status),
			zap.Duration("elapsed", elapsed),
		)
	})
}

func (s *Server) rateLimit(limiter *rate.Limiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !limiter.Allow() {
				w.Header().Set("Retry-After", "1")
				http.Error(w, "rate limit exceeded", http.StatusTooManyRequests)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}
