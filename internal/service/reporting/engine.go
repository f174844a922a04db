package reporting

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	auditdomain "github.com/collegiumai/governance-backend/internal/domain/audit"
	"github.com/collegiumai/governance-backend/internal/domain/compliance"
	policydomain "github.com/collegiumai/governance-backend/internal/domain/policy"
	"github.com/collegiumai/governance-backend/internal/domain/reporting"
	apperrors "github.com/collegiumai/governance-backend/internal/errors"
	"github.com/collegiumai/governance-backend/internal/infrastructure/storage"
	"github.com/collegiumai/governance-backend/internal/metrics"
)

// ComplianceSource is the read surface the reporting engine pulls from
// the compliance engine.
type ComplianceSource interface {
	Frameworks() []string
	Summary() map[string]*compliance.Assessment
}

// AuditSource is the read surface pulled from the audit manager.
type AuditSource interface {
	ListAudits() []*auditdomain.Audit
}

// PolicySource is the read surface pulled from the policy engine.
type PolicySource interface {
	ListPolicies() []*policydomain.Policy
	GetPoliciesForReview() []*policydomain.Policy
}

// Engine assembles reports and dashboard payloads from live reads of
// the other engines. Nothing is cached: every generation and every
// dashboard read pulls fresh data.
type Engine struct {
	mu         sync.RWMutex
	logger     *zap.Logger
	metrics    *metrics.Registry
	compliance ComplianceSource
	audits     AuditSource
	policies   PolicySource

	reports    []*reporting.Report
	dashboards map[string]*reporting.Dashboard
	store      *storage.Collection[*reporting.Report]
}

func NewEngine(complianceSrc ComplianceSource, auditSrc AuditSource, policySrc PolicySource, store *storage.Collection[*reporting.Report], registry *metrics.Registry, logger *zap.Logger) *Engine {
	e := &Engine{
		logger:     logger.Named("reporting"),
		metrics:    registry,
		compliance: complianceSrc,
		audits:     auditSrc,
		policies:   policySrc,
		dashboards: make(map[string]*reporting.Dashboard),
		store:      store,
	}
	e.reports = store.Load()
	e.registerDefaultDashboard()
	return e
}

// GenerateReport builds a report of the given type. Unknown report
// types and formats are fatal to the call; nothing is persisted on
// failure.
func (e *Engine) GenerateReport(ctx context.Context, reportType reporting.ReportType, format reporting.ReportFormat, requestedBy string) (*reporting.Report, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if format.String() == "unknown" {
		return nil, apperrors.NewUnsupportedError("report format", format.String())
	}

	var (
		title   string
		content map[string]any
	)
	switch reportType {
	case reporting.ReportComplianceSummary:
		title = "Compliance Summary Report"
		content = e.complianceContent()
	case reporting.ReportAuditSummary:
		title = "Audit Summary Report"
		content = e.auditContent()
	case reporting.ReportPolicyStatus:
		title = "Policy Status Report"
		content = e.policyContent()
	case reporting.ReportGovernanceOverview:
		title = "Governance Overview Report"
		content = map[string]any{
			"compliance": e.complianceContent(),
			"audits":     e.auditContent(),
			"policies":   e.policyContent(),
		}
	default:
		return nil, apperrors.NewUnsupportedError("report type", reportType.String())
	}

	report := reporting.NewReport(reportType, title, requestedBy, format)
	report.Content = content
	report.Metadata["frameworks"] = e.compliance.Frameworks()
	report.Metadata["generator"] = "governance-reporting"

	e.mu.Lock()
	e.reports = append(e.reports, report)
	e.store.Save(e.reports)
	e.mu.Unlock()

	if e.metrics != nil {
		e.metrics.ReportsGenerated.WithLabelValues(reportType.String()).Inc()
	}
	e.logger.Info("report generated",
		zap.String("report_id", report.ID.String()),
		zap.String("type", reportType.String()),
		zap.String("format", format.String()),
	)
	return report, nil
}

// GetReport returns a persisted report, or nil when unknown.
func (e *Engine) GetReport(id uuid.UUID) *reporting.Report {
	e.mu.RLock()
	defer e.mu.RUnlock()
	for _, r := range e.reports {
		if r.ID == id {
			return r
		}
	}
	return nil
}

// ListReports returns every generated report, oldest first.
func (e *Engine) ListReports() []*reporting.Report {
	e.mu.RLock()
	defer e.mu.RUnlock()
	out := make([]*reporting.Report, len(e.reports))
	copy(out, e.reports)
	return out
}

func (e *Engine) complianceContent() map[string]any {
	summary := e.compliance.Summary()
	frameworks := make(map[string]any, len(summary))
	for name, assessment := range summary {
		frameworks[name] = map[string]any{
			"overall_score":       assessment.OverallScore,
			"status":              assessment.Status.String(),
			"standards_assessed":  assessment.StandardsAssessed,
			"standards_compliant": assessment.StandardsCompliant,
			"findings":            len(assessment.Findings),
			"assessed_at":         assessment.AssessedAt,
			"next_assessment":     assessment.NextAssessment,
		}
	}
	return map[string]any{
		"frameworks": frameworks,
		"registered": e.compliance.Frameworks(),
	}
}

func (e *Engine) auditContent() map[string]any {
	audits := e.audits.ListAudits()
	now := time.Now()

	byStatus := make(map[string]int)
	var overdue, followUps []string
	for _, a := range audits {
		byStatus[a.Status.String()]++
		if a.IsOverdue(now) {
			overdue = append(overdue, a.Title)
		}
		if a.FollowUpRequired {
			followUps = append(followUps, a.Title)
		}
	}
	return map[string]any{
		"total":              len(audits),
		"by_status":          byStatus,
		"overdue":            overdue,
		"follow_up_required": followUps,
	}
}

func (e *Engine) policyContent() map[string]any {
	policies := e.policies.ListPolicies()
	byStatus := make(map[string]int)
	for _, p := range policies {
		byStatus[p.Status.String()]++
	}
	var due []string
	for _, p := range e.policies.GetPoliciesForReview() {
		due = append(due, p.Title)
	}
	return map[string]any{
		"total":          len(policies),
		"by_status":      byStatus,
		"due_for_review": due,
	}
}

// CreateDashboard registers a dashboard layout. Widget placeholder
// data captured here is what unknown widget ids fall back to on read.
func (e *Engine) CreateDashboard(d *reporting.Dashboard) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.dashboards[d.ID] = d
}

// GetDashboard returns the stored layout, or nil when unknown.
func (e *Engine) GetDashboard(id string) *reporting.Dashboard {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.dashboards[id]
}

// ListDashboards returns all dashboard layouts, sorted by id.
func (e *Engine) ListDashboards() []*reporting.Dashboard {
	e.mu.RLock()
	defer e.mu.RUnlock()
	out := make([]*reporting.Dashboard, 0, len(e.dashboards))
	for _, d := range e.dashboards {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// GetDashboardData resolves every widget of a dashboard against live
// engine reads. Widget ids the engine does not recognize resolve to
// the placeholder data stored at definition time; that is never an
// error. Nil for an unknown dashboard.
func (e *Engine) GetDashboardData(id string) map[string]any {
	dashboard := e.GetDashboard(id)
	if dashboard == nil {
		return nil
	}

	data := make(map[string]any, len(dashboard.Widgets))
	for _, w := range dashboard.Widgets {
		if payload, ok := e.widgetData(w.ID); ok {
			data[w.ID] = payload
		} else {
			data[w.ID] = w.Placeholder
		}
	}
	return data
}

func (e *Engine) widgetData(widgetID string) (any, bool) {
	switch widgetID {
	case "compliance_scores":
		summary := e.compliance.Summary()
		chart := reporting.ChartData{Kind: "bar"}
		names := make([]string, 0, len(summary))
		for name := range summary {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			chart.Labels = append(chart.Labels, name)
			chart.Values = append(chart.Values, summary[name].OverallScore)
		}
		return chart, true
	case "open_audits":
		open := 0
		for _, a := range e.audits.ListAudits() {
			if a.Status == auditdomain.StatusPlanned || a.Status == auditdomain.StatusInProgress {
				open++
			}
		}
		return open, true
	case "overdue_audits":
		now := time.Now()
		overdue := 0
		for _, a := range e.audits.ListAudits() {
			if a.IsOverdue(now) {
				overdue++
			}
		}
		return overdue, true
	case "active_policies":
		active := 0
		for _, p := range e.policies.ListPolicies() {
			if p.Status == policydomain.StatusActive {
				active++
			}
		}
		return active, true
	case "policies_due_for_review":
		return len(e.policies.GetPoliciesForReview()), true
	default:
		return nil, false
	}
}

func (e *Engine) registerDefaultDashboard() {
	e.dashboards["governance"] = &reporting.Dashboard{
		ID:   "governance",
		Name: "Governance Overview",
		Widgets: []reporting.Widget{
			{
				ID:       "compliance_scores",
				Type:     reporting.WidgetChart,
				Title:    "Compliance Scores by Framework",
				Position: reporting.Position{Row: 0, Col: 0},
				Size:     reporting.Size{Width: 2, Height: 1},
			},
			{
				ID:       "open_audits",
				Type:     reporting.WidgetMetric,
				Title:    "Open Audits",
				Position: reporting.Position{Row: 0, Col: 2},
				Size:     reporting.Size{Width: 1, Height: 1},
			},
			{
				ID:       "overdue_audits",
				Type:     reporting.WidgetMetric,
				Title:    "Overdue Audits",
				Position: reporting.Position{Row: 1, Col: 2},
				Size:     reporting.Size{Width: 1, Height: 1},
			},
			{
				ID:       "active_policies",
				Type:     reporting.WidgetMetric,
				Title:    "Active Policies",
				Position: reporting.Position{Row: 1, Col: 0},
				Size:     reporting.Size{Width: 1, Height: 1},
			},
			{
				ID:       "policies_due_for_review",
				Type:     reporting.WidgetMetric,
				Title:    "Policies Due for Review",
				Position: reporting.Position{Row: 1, Col: 1},
				Size:     reporting.Size{Width: 1, Height: 1},
			},
		},
	}
}
