package governance_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	auditdomain "github.com/collegiumai/governance-backend/internal/domain/audit"
	govdomain "github.com/collegiumai/governance-backend/internal/domain/governance"
	policydomain "github.com/collegiumai/governance-backend/internal/domain/policy"
	"github.com/collegiumai/governance-backend/internal/infrastructure/config"
	"github.com/collegiumai/governance-backend/internal/infrastructure/storage"
	"github.com/collegiumai/governance-backend/internal/metrics"
	auditsvc "github.com/collegiumai/governance-backend/internal/service/audit"
	compliancesvc "github.com/collegiumai/governance-backend/internal/service/compliance"
	"github.com/collegiumai/governance-backend/internal/service/governance"
	policysvc "github.com/collegiumai/governance-backend/internal/service/policy"
)

type fixture struct {
	compliance  *compliancesvc.Engine
	audits      *auditsvc.Manager
	policies    *policysvc.Engine
	integration *governance.Integration
	registry    *metrics.Registry
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
	complianceEngine := compliancesvc.NewEngine(logger)
	complianceEngine.Register(compliancesvc.NewAACSBAssessor(scoring, logger))
	complianceEngine.Register(compliancesvc.NewWASCAssessor(scoring, logger))

	registry := metrics.NewRegistry(prometheus.NewRegistry())

	audits := auditsvc.NewManager(
		storage.NewCollection[*auditdomain.Audit](dir, "audits.json", logger), registry, 30, logger)
	policies := policysvc.NewEngine(
		storage.NewCollection[*policydomain.Policy](dir, "policies.json", logger), 365, logger)

	integration := governance.NewIntegration(
		complianceEngine, audits, policies,
		storage.NewCollection[*govdomain.Alert](dir, "alerts.json", logger),
		storage.NewCollection[*govdomain.Metric](dir, "metrics.json", logger),
		registry,
		80,
		logger,
	)
	return &fixture{
		compliance:  complianceEngine,
		audits:      audits,
		policies:    policies,
		integration: integration,
		registry:    registry,
	}
}

func TestIntegration_Alerts(t *testing.T) {
	f := newFixture(t)

	alert := f.integration.CreateAlert(govdomain.AlertWarning, "Score dip", "", "compliance_check")
	require.NotNil(t, alert)
	assert.Equal(t, float64(1), testutil.ToFloat64(f.registry.AlertsTotal.WithLabelValues("warning")))

	assert.Len(t, f.integration.ListAlerts(true), 1)
	assert.True(t, f.integration.ResolveAlert(alert.ID))
	assert.False(t, f.integration.ResolveAlert(alert.ID), "already resolved")
	assert.False(t, f.integration.ResolveAlert(uuid.New()), "unknown alert")

	assert.Empty(t, f.integration.ListAlerts(true))
	assert.Len(t, f.integration.ListAlerts(false), 1)
}

func TestIntegration_UpdateMetric(t *testing.T) {
	f := newFixture(t)

	m := f.integration.UpdateMetric("governance_health", 70, "percent")
	assert.Equal(t, govdomain.TrendStable, m.Trend, "first observation")

	m = f.integration.UpdateMetric("governance_health", 80, "percent")
	assert.Equal(t, govdomain.TrendIncreasing, m.Trend)

	m = f.integration.UpdateMetric("governance_health", 81, "percent")
	assert.Equal(t, govdomain.TrendStable, m.Trend, "within the 5% band")

	m = f.integration.UpdateMetric("governance_health", 60, "percent")
	assert.Equal(t, govdomain.TrendDecreasing, m.Trend)

	assert.NotNil(t, f.integration.GetMetric("governance_health"))
	assert.Nil(t, f.integration.GetMetric("missing"))
	assert.Len(t, f.integration.ListMetrics(), 1)
}

func TestIntegration_RunComprehensiveComplianceCheck(t *testing.T) {
	f := newFixture(t)

	// With no evidence both frameworks land below the alert threshold
	// as non-compliant, so every framework raises a critical alert.
	result, err := f.integration.RunComprehensiveComplianceCheck(context.Background())
	require.NoError(t, err)

	require.Len(t, result.Assessments, 2)
	assert.Equal(t, 60.0, result.OverallHealth)
	require.Len(t, result.AlertsRaised, 2)
	for _, alert := range result.AlertsRaised {
		assert.Equal(t, govdomain.AlertCritical, alert.Level)
		assert.Equal(t, "compliance_check", alert.Source)
	}

	require.NotNil(t, f.integration.GetMetric("compliance_score_AACSB"))
	assert.Equal(t, 60.0, f.integration.GetMetric("compliance_score_AACSB").Value)
	require.NotNil(t, f.integration.GetMetric("governance_health"))
	assert.Equal(t, 60.0, f.integration.GetMetric("governance_health").Value)

	assert.Equal(t, float64(60),
		testutil.ToFloat64(f.registry.FrameworkScore.WithLabelValues("AACSB")))
	assert.Equal(t, float64(1),
		testutil.ToFloat64(f.registry.AssessmentsTotal.WithLabelValues("WASC", "non_compliant")))
}

func TestIntegration_ScheduleAutomatedAudits(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	// Unassessed frameworks default to medium risk: two semiannual
	// audits each.
	plan, err := f.integration.ScheduleAutomatedAudits(ctx, 2027)
	require.NoError(t, err)
	assert.Len(t, plan.Audits, 4)

	// A failed check flips both frameworks to high risk and quarterly
	// coverage.
	_, err = f.integration.RunComprehensiveComplianceCheck(ctx)
	require.NoError(t, err)

	plan, err = f.integration.ScheduleAutomatedAudits(ctx, 2028)
	require.NoError(t, err)
	assert.Len(t, plan.Audits, 8)
	for _, slot := range plan.Audits {
		assert.Equal(t, auditdomain.RiskHigh, slot.Risk)
	}
}

func TestIntegration_PerformPolicyLifecycleManagement(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	due, err := f.integration.PerformPolicyLifecycleManagement(ctx)
	require.NoError(t, err)
	assert.Empty(t, due)

	p := f.policies.CreatePolicyFromTemplate("data_governance", "Data stewardship policy", "cio", "j.smith")
	require.NotNil(t, p)
	require.True(t, f.policies.SubmitForReview(p.ID))
	require.True(t, f.policies.ApprovePolicy(p.ID, "provost", policydomain.LevelAdministration, ""))
	require.True(t, f.policies.ActivatePolicy(p.ID))
	past := time.Now().Add(-24 * time.Hour)
	p.NextReviewDate = &past

	due, err = f.integration.PerformPolicyLifecycleManagement(ctx)
	require.NoError(t, err)
	require.Len(t, due, 1)
	assert.Equal(t, p.ID, due[0].ID)

	alerts := f.integration.ListAlerts(true)
	require.Len(t, alerts, 1)
	assert.Equal(t, "policy_lifecycle", alerts[0].Source)
}

func TestIntegration_StatePersistsAcrossRestart(t *testing.T) {
	logger := zap.NewNop()
	dir := t.TempDir()

	f := newFixture(t)
	alertStore := storage.NewCollection[*govdomain.Alert](dir, "alerts.json", logger)
	gaugeStore := storage.NewCollection[*govdomain.Metric](dir, "metrics.json", logger)

	integration := governance.NewIntegration(
		f.compliance, f.audits, f.policies,
		alertStore, gaugeStore,
		nil, 80, logger,
	)
	alert := integration.CreateAlert(govdomain.AlertInfo, "Note", "", "manual")
	integration.UpdateMetric("governance_health", 72, "percent")

	reloaded := governance.NewIntegration(
		f.compliance, f.audits, f.policies,
		storage.NewCollection[*govdomain.Alert](dir, "alerts.json", logger),
		storage.NewCollection[*govdomain.Metric](dir, "metrics.json", logger),
		nil, 80, logger,
	)
	require.Len(t, reloaded.ListAlerts(false), 1)
	assert.Equal(t, alert.ID, reloaded.ListAlerts(false)[0].ID)
	require.NotNil(t, reloaded.GetMetric("governance_health"))
	assert.Equal(t, 72.0, reloaded.GetMetric("governance_health").Value)
}

func TestIntegration_ContextCancellation(t *testing.T) {
	f := newFixture(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := f.integration.RunComprehensiveComplianceCheck(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	_, err = f.integration.ScheduleAutomatedAudits(ctx, 2027)
	assert.ErrorIs(t, err, context.Canceled)
	_, err = f.integration.PerformPolicyLifecycleManagement(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
