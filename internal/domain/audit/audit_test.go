package audit_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/collegiumai/governance-backend/internal/domain/audit"
	"github.com/collegiumai/governance-backend/internal/domain/compliance"
)

func newTestAudit() *audit.Audit {
	return audit.New(
		"Annual accreditation readiness review",
		audit.TypeInternal,
		audit.Scope{Frameworks: []string{"AACSB"}},
		"lead.auditor",
		time.Now(),
		time.Now().Add(14*24*time.Hour),
	)
}

func TestAudit_Lifecycle(t *testing.T) {
	a := newTestAudit()
	require.Equal(t, audit.StatusPlanned, a.Status)

	// Completing before starting is rejected.
	require.Error(t, a.Complete(30*24*time.Hour))

	require.NoError(t, a.Start())
	assert.Equal(t, audit.StatusInProgress, a.Status)
	assert.NotNil(t, a.ActualStart)

	// Starting twice is rejected.
	require.Error(t, a.Start())

	require.NoError(t, a.Complete(30*24*time.Hour))
	assert.Equal(t, audit.StatusCompleted, a.Status)
	assert.NotNil(t, a.ActualEnd)

	// Completed audits cannot be cancelled.
	assert.Error(t, a.Cancel())
}

func TestAudit_Cancel(t *testing.T) {
	planned := newTestAudit()
	require.NoError(t, planned.Cancel())
	assert.Equal(t, audit.StatusCancelled, planned.Status)

	inProgress := newTestAudit()
	require.NoError(t, inProgress.Start())
	require.NoError(t, inProgress.Cancel())
	assert.Equal(t, audit.StatusCancelled, inProgress.Status)
}

func TestAudit_NeedsFollowUp(t *testing.T) {
	finding := func(sev compliance.Severity) *compliance.Finding {
		return compliance.NewFinding("AACSB-STD-1", sev, "finding", "", "")
	}

	tests := []struct {
		name       string
		severities []compliance.Severity
		expected   bool
	}{
		{
			name:       "no findings",
			severities: nil,
			expected:   false,
		},
		{
			name:       "single critical finding",
			severities: []compliance.Severity{compliance.SeverityCritical},
			expected:   true,
		},
		{
			name:       "two high findings is not enough",
			severities: []compliance.Severity{compliance.SeverityHigh, compliance.SeverityHigh},
			expected:   false,
		},
		{
			name: "three high findings",
			severities: []compliance.Severity{
				compliance.SeverityHigh, compliance.SeverityHigh, compliance.SeverityHigh,
			},
			expected: true,
		},
		{
			name: "medium and low findings never trigger",
			severities: []compliance.Severity{
				compliance.SeverityMedium, compliance.SeverityMedium,
				compliance.SeverityLow, compliance.SeverityLow,
			},
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := newTestAudit()
			for _, sev := range tt.severities {
				a.Findings = append(a.Findings, finding(sev))
			}
			assert.Equal(t, tt.expected, a.NeedsFollowUp())
		})
	}
}

func TestAudit_CompleteSchedulesFollowUp(t *testing.T) {
	a := newTestAudit()
	require.NoError(t, a.Start())
	a.Findings = append(a.Findings,
		compliance.NewFinding("AACSB-STD-1", compliance.SeverityCritical, "critical gap", "", ""))

	require.NoError(t, a.Complete(30*24*time.Hour))
	assert.True(t, a.FollowUpRequired)
	require.NotNil(t, a.FollowUpDate)
	assert.WithinDuration(t, time.Now().Add(30*24*time.Hour), *a.FollowUpDate, time.Minute)
}

func TestAudit_CompleteUsesConfiguredFollowUpWindow(t *testing.T) {
	a := newTestAudit()
	require.NoError(t, a.Start())
	a.Findings = append(a.Findings,
		compliance.NewFinding("AACSB-STD-1", compliance.SeverityCritical, "critical gap", "", ""))

	require.NoError(t, a.Complete(60*24*time.Hour))
	require.NotNil(t, a.FollowUpDate)
	assert.WithinDuration(t, time.Now().Add(60*24*time.Hour), *a.FollowUpDate, time.Minute)
}

func TestAudit_CloneIsIndependent(t *testing.T) {
	a := newTestAudit()
	require.NoError(t, a.Start())
	a.Checklist = []audit.ChecklistItem{{ID: "item-1", Description: "check faculty files"}}
	a.Findings = append(a.Findings,
		compliance.NewFinding("AACSB-STD-1", compliance.SeverityHigh, "gap", "", ""))

	c := a.Clone()
	c.Team = append(c.Team, "extra.member")
	c.Checklist[0].Completed = true
	c.Findings[0].Severity = compliance.SeverityLow
	*c.ActualStart = c.ActualStart.Add(-time.Hour)

	assert.NotContains(t, a.Team, "extra.member")
	assert.False(t, a.Checklist[0].Completed)
	assert.Equal(t, compliance.SeverityHigh, a.Findings[0].Severity)
	assert.WithinDuration(t, time.Now(), *a.ActualStart, time.Minute)
}

func TestAudit_IsOverdue(t *testing.T) {
	now := time.Now()

	a := newTestAudit()
	a.PlannedEnd = now.Add(-time.Hour)
	assert.True(t, a.IsOverdue(now), "planned audit past its end date is overdue")

	require.NoError(t, a.Start())
	assert.True(t, a.IsOverdue(now), "in-progress audit past its end date is overdue")

	require.NoError(t, a.Complete(30*24*time.Hour))
	assert.False(t, a.IsOverdue(now), "completed audit is never overdue")

	future := newTestAudit()
	assert.False(t, future.IsOverdue(now))
}

func TestBuildAnnualPlan(t *testing.T) {
	ratings := map[string]audit.RiskLevel{
		"admissions": audit.RiskHigh,
		"curriculum": audit.RiskMedium,
		"library":    audit.RiskLow,
	}
	plan := audit.BuildAnnualPlan(2027, ratings, []string{"admissions", "curriculum", "library"})

	require.Equal(t, 2027, plan.Year)
	require.Len(t, plan.Audits, 7, "4 quarterly + 2 semiannual + 1 annual")

	counts := map[string]int{}
	for _, slot := range plan.Audits {
		counts[slot.Area]++
		assert.Equal(t, 2027, slot.PlannedStart.Year())
		assert.True(t, slot.PlannedEnd.After(slot.PlannedStart))
	}
	assert.Equal(t, 4, counts["admissions"])
	assert.Equal(t, 2, counts["curriculum"])
	assert.Equal(t, 1, counts["library"])
}

func TestAudit_ChecklistProgress(t *testing.T) {
	a := newTestAudit()
	a.Checklist = []audit.ChecklistItem{
		{ID: "item-1", Description: "Review evidence inventory", Completed: true},
		{ID: "item-2", Description: "Interview department chairs"},
		{ID: "item-3", Description: "Draft findings"},
	}
	completed, total := a.ChecklistProgress()
	assert.Equal(t, 1, completed)
	assert.Equal(t, 3, total)
}
