package governance

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	auditdomain "github.com/collegiumai/governance-backend/internal/domain/audit"
	"github.com/collegiumai/governance-backend/internal/domain/compliance"
	"github.com/collegiumai/governance-backend/internal/domain/governance"
	policydomain "github.com/collegiumai/governance-backend/internal/domain/policy"
	"github.com/collegiumai/governance-backend/internal/infrastructure/storage"
	"github.com/collegiumai/governance-backend/internal/metrics"
	auditsvc "github.com/collegiumai/governance-backend/internal/service/audit"
	compliancesvc "github.com/collegiumai/governance-backend/internal/service/compliance"
	policysvc "github.com/collegiumai/governance-backend/internal/service/policy"
)

// CheckResult summarizes one comprehensive compliance check run.
type CheckResult struct {
	RunAt         time.Time                             `json:"run_at"`
	Assessments   map[string]*compliance.Assessment     `json:"assessments"`
	AlertsRaised  []*governance.Alert                   `json:"alerts_raised"`
	OverallHealth float64                               `json:"overall_health"`
}

// Integration is the top-level governance facade. It coordinates the
// compliance, audit, and policy engines, converts threshold breaches
// into alerts, and maintains process-wide governance metrics. One
// Integration is constructed at process start and passed by reference;
// there is no module-level state.
type Integration struct {
	mu      sync.RWMutex
	logger  *zap.Logger
	metrics *metrics.Registry

	compliance *compliancesvc.Engine
	audits     *auditsvc.Manager
	policies   *policysvc.Engine

	alerts     map[uuid.UUID]*governance.Alert
	gauges     map[string]*governance.Metric
	alertStore *storage.Collection[*governance.Alert]
	gaugeStore *storage.Collection[*governance.Metric]

	alertScoreThreshold float64
}

func NewIntegration(
	complianceEngine *compliancesvc.Engine,
	auditManager *auditsvc.Manager,
	policyEngine *policysvc.Engine,
	alertStore *storage.Collection[*governance.Alert],
	gaugeStore *storage.Collection[*governance.Metric],
	registry *metrics.Registry,
	alertScoreThreshold float64,
	logger *zap.Logger,
) *Integration {
	i := &Integration{
		logger:              logger.Named("governance"),
		metrics:             registry,
		compliance:          complianceEngine,
		audits:              auditManager,
		policies:            policyEngine,
		alerts:              make(map[uuid.UUID]*governance.Alert),
		gauges:              make(map[string]*governance.Metric),
		alertStore:          alertStore,
		gaugeStore:          gaugeStore,
		alertScoreThreshold: alertScoreThreshold,
	}
	for _, a := range alertStore.Load() {
		i.alerts[a.ID] = a
	}
	for _, m := range gaugeStore.Load() {
		i.gauges[m.Name] = m
	}
	return i
}

// CreateAlert raises a governance alert.
func (i *Integration) CreateAlert(level governance.AlertLevel, title, description, source string) *governance.Alert {
	alert := governance.NewAlert(level, title, description, source)

	i.mu.Lock()
	i.alerts[alert.ID] = alert
	i.persistAlertsLocked()
	i.mu.Unlock()

	if i.metrics != nil {
		i.metrics.AlertsTotal.WithLabelValues(level.String()).Inc()
	}
	i.logger.Warn("governance alert raised",
		zap.String("alert_id", alert.ID.String()),
		zap.String("level", level.String()),
		zap.String("title", title),
		zap.String("source", source),
	)
	return alert
}

// ResolveAlert closes an open alert. False when the id is unknown or
// the alert is already resolved.
func (i *Integration) ResolveAlert(id uuid.UUID) bool {
	i.mu.Lock()
	defer i.mu.Unlock()

	alert, ok := i.alerts[id]
	if !ok {
		return false
	}
	if err := alert.Resolve(); err != nil {
		i.logger.Warn("alert resolution rejected", zap.Error(err))
		return false
	}
	i.persistAlertsLocked()
	return true
}

// ListAlerts returns copies of all alerts, newest first. Open-only
// when openOnly is set.
func (i *Integration) ListAlerts(openOnly bool) []*governance.Alert {
	i.mu.RLock()
	defer i.mu.RUnlock()

	out := make([]*governance.Alert, 0, len(i.alerts))
	for _, a := range i.alerts {
		if openOnly && a.Resolved {
			continue
		}
		c := *a
		out = append(out, &c)
	}
	sort.Slice(out, func(a, b int) bool {
		return out[a].CreatedAt.After(out[b].CreatedAt)
	})
	return out
}

// UpdateMetric upserts a named metric, computing its trend against the
// previous stored value.
func (i *Integration) UpdateMetric(name string, value float64, unit string) *governance.Metric {
	i.mu.Lock()
	defer i.mu.Unlock()

	m, ok := i.gauges[name]
	if !ok {
		m = &governance.Metric{Name: name, Unit: unit, UpdatedAt: time.Now()}
		m.Value = value
		i.gauges[name] = m
	} else {
		m.Update(value)
		m.Unit = unit
	}
	i.persistMetricsLocked()
	return m
}

// GetMetric returns a stored metric or nil.
func (i *Integration) GetMetric(name string) *governance.Metric {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return i.gauges[name]
}

// ListMetrics returns all metrics sorted by name.
func (i *Integration) ListMetrics() []*governance.Metric {
	i.mu.RLock()
	defer i.mu.RUnlock()
	out := make([]*governance.Metric, 0, len(i.gauges))
	for _, m := range i.gauges {
		out = append(out, m)
	}
	sort.Slice(out, func(a, b int) bool { return out[a].Name < out[b].Name })
	return out
}

// RunComprehensiveComplianceCheck assesses every registered framework,
// converts threshold breaches into alerts, and refreshes the
// per-framework score metrics.
func (i *Integration) RunComprehensiveComplianceCheck(ctx context.Context) (*CheckResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	assessments := i.compliance.AssessAllFrameworks(ctx, compliancesvc.AssessmentInput{Assessor: "governance-integration"})

	result := &CheckResult{
		RunAt:       time.Now(),
		Assessments: assessments,
	}

	var total float64
	for framework, assessment := range assessments {
		total += assessment.OverallScore

		if i.metrics != nil {
			i.metrics.AssessmentsTotal.WithLabelValues(framework, assessment.Status.String()).Inc()
			i.metrics.FrameworkScore.WithLabelValues(framework).Set(assessment.OverallScore)
		}
		i.UpdateMetric("compliance_score_"+framework, assessment.OverallScore, "percent")

		if assessment.OverallScore < i.alertScoreThreshold {
			level := governance.AlertWarning
			if assessment.Status == compliance.StatusNonCompliant {
				level = governance.AlertCritical
			}
			alert := i.CreateAlert(level,
				fmt.Sprintf("%s compliance below threshold", framework),
				fmt.Sprintf("Overall score %.1f is below the %.0f alert threshold.", assessment.OverallScore, i.alertScoreThreshold),
				"compliance_check",
			)
			result.AlertsRaised = append(result.AlertsRaised, alert)
		}
	}
	if len(assessments) > 0 {
		result.OverallHealth = total / float64(len(assessments))
		i.UpdateMetric("governance_health", result.OverallHealth, "percent")
	}

	i.logger.Info("comprehensive compliance check completed",
		zap.Int("frameworks", len(assessments)),
		zap.Int("alerts_raised", len(result.AlertsRaised)),
		zap.Float64("overall_health", result.OverallHealth),
	)
	return result, nil
}

// ScheduleAutomatedAudits derives per-framework risk ratings from the
// latest assessments and generates the year's audit plan from them.
func (i *Integration) ScheduleAutomatedAudits(ctx context.Context, year int) (*auditdomain.AnnualPlan, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	summary := i.compliance.Summary()
	ratings := make(map[string]auditdomain.RiskLevel, len(summary))
	for framework, assessment := range summary {
		switch assessment.Status {
		case compliance.StatusNonCompliant:
			ratings[framework] = auditdomain.RiskHigh
		case compliance.StatusWarning:
			ratings[framework] = auditdomain.RiskMedium
		default:
			ratings[framework] = auditdomain.RiskLow
		}
	}
	// Frameworks never assessed default to medium risk.
	for _, framework := range i.compliance.Frameworks() {
		if _, ok := ratings[framework]; !ok {
			ratings[framework] = auditdomain.RiskMedium
		}
	}

	plan := i.audits.CreateAnnualPlan(year, ratings)
	i.logger.Info("automated audit schedule created",
		zap.Int("year", year),
		zap.Int("audits", len(plan.Audits)),
	)
	return plan, nil
}

// PerformPolicyLifecycleManagement raises a review alert for every
// active policy whose review date has arrived and returns the due
// list.
func (i *Integration) PerformPolicyLifecycleManagement(ctx context.Context) ([]*policydomain.Policy, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	due := i.policies.GetPoliciesForReview()
	for _, p := range due {
		i.CreateAlert(governance.AlertWarning,
			fmt.Sprintf("Policy review due: %s", p.Title),
			fmt.Sprintf("Policy %s (v%s) reached its scheduled review date.", p.Title, p.CurrentVersion),
			"policy_lifecycle",
		)
	}
	i.logger.Info("policy lifecycle management completed", zap.Int("due_for_review", len(due)))
	return due, nil
}

func (i *Integration) persistAlertsLocked() {
	items := make([]*governance.Alert, 0, len(i.alerts))
	for _, a := range i.alerts {
		items = append(items, a)
	}
	sort.Slice(items, func(a, b int) bool {
		return items[a].CreatedAt.Before(items[b].CreatedAt)
	})
	i.alertStore.Save(items)
}

func (i *Integration) persistMetricsLocked() {
	items := make([]*governance.Metric, 0, len(i.gauges))
	for _, m := range i.gauges {
		items = append(items, m)
	}
	sort.Slice(items, func(a, b int) bool { return items[a].Name < items[b].Name })
	i.gaugeStore.Save(items)
}
