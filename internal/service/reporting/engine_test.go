package reporting_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	auditdomain "github.com/collegiumai/governance-backend/internal/domain/audit"
	policydomain "github.com/collegiumai/governance-backend/internal/domain/policy"
	reportingdomain "github.com/collegiumai/governance-backend/internal/domain/reporting"
	apperrors "github.com/collegiumai/governance-backend/internal/errors"
	"github.com/collegiumai/governance-backend/internal/infrastructure/config"
	"github.com/collegiumai/governance-backend/internal/infrastructure/storage"
	"github.com/collegiumai/governance-backend/internal/metrics"
	auditsvc "github.com/collegiumai/governance-backend/internal/service/audit"
	compliancesvc "github.com/collegiumai/governance-backend/internal/service/compliance"
	policysvc "github.com/collegiumai/governance-backend/internal/service/policy"
	"github.com/collegiumai/governance-backend/internal/service/reporting"
)

type fixture struct {
	compliance *compliancesvc.Engine
	audits     *auditsvc.Manager
	policies   *policysvc.Engine
	reports    *reporting.Engine
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	logger := zap.NewNop()
	dir := t.TempDir()

	scoring := config.ScoringConfig{
		BaseScore:                   75,
		EvidenceIncrement:           25,
		InsufficientEvidencePenalty: 15,
		UnusableEvidencePenalty:     20,
		ReassessIntervalDays:        180,
	}
	compliance := compliancesvc.NewEngine(logger)
	compliance.Register(compliancesvc.NewAACSBAssessor(scoring, logger))
	compliance.Register(compliancesvc.NewWASCAssessor(scoring, logger))

	audits := auditsvc.NewManager(
		storage.NewCollection[*auditdomain.Audit](dir, "audits.json", logger), nil, 30, logger)
	policies := policysvc.NewEngine(
		storage.NewCollection[*policydomain.Policy](dir, "policies.json", logger), 365, logger)
	reports := reporting.NewEngine(compliance, audits, policies,
		storage.NewCollection[*reportingdomain.Report](dir, "reports.json", logger), nil, logger)

	return &fixture{compliance: compliance, audits: audits, policies: policies, reports: reports}
}

func TestEngine_GenerateComplianceSummary(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.compliance.AssessFramework(ctx, "AACSB", compliancesvc.AssessmentInput{})
	require.NoError(t, err)

	report, err := f.reports.GenerateReport(ctx, reportingdomain.ReportComplianceSummary, reportingdomain.FormatJSON, "registrar")
	require.NoError(t, err)

	assert.Equal(t, "Compliance Summary Report", report.Title)
	assert.Equal(t, "registrar", report.GeneratedBy)
	frameworks, ok := report.Content["frameworks"].(map[string]any)
	require.True(t, ok)
	assert.Contains(t, frameworks, "AACSB")
	assert.Equal(t, []string{"AACSB", "WASC"}, report.Metadata["frameworks"])

	assert.Same(t, report, f.reports.GetReport(report.ID))
	assert.Nil(t, f.reports.GetReport(uuid.New()))
}

func TestEngine_GenerateAuditSummary(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	a, err := f.audits.CreateAudit(auditsvc.CreateAuditRequest{
		Title:        "Overdue library audit",
		LeadAuditor:  "lead.auditor",
		PlannedStart: time.Now().Add(-30 * 24 * time.Hour),
		PlannedEnd:   time.Now().Add(-16 * 24 * time.Hour),
	})
	require.NoError(t, err)
	require.True(t, f.audits.StartAudit(a.ID))

	report, err := f.reports.GenerateReport(ctx, reportingdomain.ReportAuditSummary, reportingdomain.FormatMarkdown, "")
	require.NoError(t, err)

	assert.Equal(t, 1, report.Content["total"])
	overdue, ok := report.Content["overdue"].([]string)
	require.True(t, ok)
	assert.Equal(t, []string{"Overdue library audit"}, overdue)
}

func TestEngine_GenerateGovernanceOverview(t *testing.T) {
	f := newFixture(t)

	report, err := f.reports.GenerateReport(context.Background(), reportingdomain.ReportGovernanceOverview, reportingdomain.FormatHTML, "provost")
	require.NoError(t, err)

	assert.Contains(t, report.Content, "compliance")
	assert.Contains(t, report.Content, "audits")
	assert.Contains(t, report.Content, "policies")
}

func TestEngine_GenerateReportIncrementsCounter(t *testing.T) {
	f := newFixture(t)
	logger := zap.NewNop()
	registry := metrics.NewRegistry(prometheus.NewRegistry())
	e := reporting.NewEngine(f.compliance, f.audits, f.policies,
		storage.NewCollection[*reportingdomain.Report](t.TempDir(), "reports.json", logger), registry, logger)
	ctx := context.Background()

	_, err := e.GenerateReport(ctx, reportingdomain.ReportComplianceSummary, reportingdomain.FormatJSON, "registrar")
	require.NoError(t, err)
	_, err = e.GenerateReport(ctx, reportingdomain.ReportComplianceSummary, reportingdomain.FormatJSON, "registrar")
	require.NoError(t, err)
	_, err = e.GenerateReport(ctx, reportingdomain.ReportAuditSummary, reportingdomain.FormatJSON, "registrar")
	require.NoError(t, err)

	assert.Equal(t, 2.0,
		testutil.ToFloat64(registry.ReportsGenerated.WithLabelValues(reportingdomain.ReportComplianceSummary.String())))
	assert.Equal(t, 1.0,
		testutil.ToFloat64(registry.ReportsGenerated.WithLabelValues(reportingdomain.ReportAuditSummary.String())))

	_, err = e.GenerateReport(ctx, reportingdomain.ReportType(99), reportingdomain.FormatJSON, "")
	require.Error(t, err)
	assert.Equal(t, 2.0,
		testutil.ToFloat64(registry.ReportsGenerated.WithLabelValues(reportingdomain.ReportComplianceSummary.String())),
		"failed generations are not counted")
}

func TestEngine_GenerateReportUnsupported(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	before := len(f.reports.ListReports())

	_, err := f.reports.GenerateReport(ctx, reportingdomain.ReportType(99), reportingdomain.FormatJSON, "")
	require.Error(t, err)
	var appErr *apperrors.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, "UNSUPPORTED", appErr.Code)

	_, err = f.reports.GenerateReport(ctx, reportingdomain.ReportComplianceSummary, reportingdomain.ReportFormat(99), "")
	require.Error(t, err)

	assert.Len(t, f.reports.ListReports(), before, "nothing is persisted on failure")
}

func TestEngine_DefaultDashboard(t *testing.T) {
	f := newFixture(t)

	d := f.reports.GetDashboard("governance")
	require.NotNil(t, d)
	assert.Len(t, d.Widgets, 5)

	assert.Nil(t, f.reports.GetDashboard("missing"))
	assert.Nil(t, f.reports.GetDashboardData("missing"))
}

func TestEngine_GetDashboardData(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.compliance.AssessFramework(ctx, "AACSB", compliancesvc.AssessmentInput{})
	require.NoError(t, err)

	_, err = f.audits.CreateAudit(auditsvc.CreateAuditRequest{
		Title:        "Curriculum audit",
		LeadAuditor:  "lead.auditor",
		PlannedStart: time.Now(),
		PlannedEnd:   time.Now().Add(14 * 24 * time.Hour),
	})
	require.NoError(t, err)

	data := f.reports.GetDashboardData("governance")
	require.NotNil(t, data)

	chart, ok := data["compliance_scores"].(reportingdomain.ChartData)
	require.True(t, ok)
	assert.Equal(t, []string{"AACSB"}, chart.Labels)
	assert.Equal(t, []float64{60}, chart.Values)

	assert.Equal(t, 1, data["open_audits"])
	assert.Equal(t, 0, data["overdue_audits"])
	assert.Equal(t, 0, data["active_policies"])
	assert.Equal(t, 0, data["policies_due_for_review"])
}

func TestEngine_UnknownWidgetFallsBackToPlaceholder(t *testing.T) {
	f := newFixture(t)

	f.reports.CreateDashboard(&reportingdomain.Dashboard{
		ID:   "custom",
		Name: "Custom",
		Widgets: []reportingdomain.Widget{
			{
				ID:          "enrollment_projection",
				Type:        reportingdomain.WidgetMetric,
				Title:       "Enrollment Projection",
				Placeholder: map[string]any{"value": "n/a"},
			},
			{ID: "open_audits", Type: reportingdomain.WidgetMetric, Title: "Open Audits"},
		},
	})

	data := f.reports.GetDashboardData("custom")
	require.NotNil(t, data)
	assert.Equal(t, map[string]any{"value": "n/a"}, data["enrollment_projection"])
	assert.Equal(t, 0, data["open_audits"], "known ids still resolve live")
}

func TestEngine_ReportsPersistAcrossRestart(t *testing.T) {
	logger := zap.NewNop()
	dir := t.TempDir()
	store := storage.NewCollection[*reportingdomain.Report](dir, "reports.json", logger)

	f := newFixture(t)
	e := reporting.NewEngine(f.compliance, f.audits, f.policies, store, nil, logger)

	report, err := e.GenerateReport(context.Background(), reportingdomain.ReportPolicyStatus, reportingdomain.FormatJSON, "cio")
	require.NoError(t, err)

	reloaded := reporting.NewEngine(f.compliance, f.audits, f.policies,
		storage.NewCollection[*reportingdomain.Report](dir, "reports.json", logger), nil, logger)
	got := reloaded.GetReport(report.ID)
	require.NotNil(t, got)
	assert.Equal(t, report.ID, got.ID)
	assert.Equal(t, report.Type, got.Type)
	assert.Equal(t, "Policy Status Report", got.Title)
	assert.JSONEq(t, mustJSON(t, report.Content), mustJSON(t, got.Content))
	assert.JSONEq(t, mustJSON(t, report.Metadata), mustJSON(t, got.Metadata))
}

func mustJSON(t *testing.T, v any) string {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	return string(data)
}
