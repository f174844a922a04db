package policy_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/collegiumai/governance-backend/internal/domain/policy"
)

func newGovernancePolicy() *policy.Policy {
	return policy.New(
		"Faculty qualifications policy",
		policy.TypeGovernance,
		"dean.office",
		"j.smith",
		"All faculty teaching in accredited programs must hold terminal degrees.",
		map[string]string{"purpose": "Ensure faculty qualifications."},
	)
}

func TestPolicy_New(t *testing.T) {
	p := newGovernancePolicy()

	assert.Equal(t, policy.StatusDraft, p.Status)
	assert.Equal(t, "1.0", p.CurrentVersion)
	require.NotNil(t, p.Current())
	assert.Equal(t, "j.smith", p.Current().CreatedBy)
	assert.Equal(t,
		[]policy.ApprovalLevel{policy.LevelAdministration, policy.LevelBoard},
		p.RequiredApprovals)
}

func TestPolicy_ApprovalPromotion(t *testing.T) {
	p := newGovernancePolicy()

	// Approving a draft is rejected.
	require.Error(t, p.Approve("provost", policy.LevelAdministration, ""))

	require.NoError(t, p.SubmitForReview())

	// A strict subset of the required levels never promotes.
	require.NoError(t, p.Approve("provost", policy.LevelAdministration, "looks good"))
	assert.Equal(t, policy.StatusReview, p.Status)
	assert.Nil(t, p.EffectiveDate)

	// An approval at a non-required level does not promote either.
	require.NoError(t, p.Approve("chair", policy.LevelDepartment, ""))
	assert.Equal(t, policy.StatusReview, p.Status)

	// The last required level completes the set.
	require.NoError(t, p.Approve("trustees", policy.LevelBoard, "approved at board meeting"))
	assert.Equal(t, policy.StatusApproved, p.Status)
	require.NotNil(t, p.EffectiveDate)

	assert.Len(t, p.Current().Approvals, 3, "all approvals are recorded, including non-required ones")
}

func TestPolicy_Lifecycle(t *testing.T) {
	p := newGovernancePolicy()

	require.Error(t, p.Activate(), "cannot activate a draft")

	require.NoError(t, p.SubmitForReview())
	require.NoError(t, p.Approve("provost", policy.LevelAdministration, ""))
	require.NoError(t, p.Approve("trustees", policy.LevelBoard, ""))

	require.NoError(t, p.Activate())
	assert.Equal(t, policy.StatusActive, p.Status)
	require.NotNil(t, p.NextReviewDate)
	assert.WithinDuration(t, time.Now().Add(365*24*time.Hour), *p.NextReviewDate, time.Minute)

	require.NoError(t, p.Deprecate())
	assert.Equal(t, policy.StatusDeprecated, p.Status)

	require.NoError(t, p.Archive())
	assert.Equal(t, policy.StatusArchived, p.Status)

	assert.Error(t, p.SubmitForReview(), "archived policies are immutable")
}

func TestPolicy_NewVersion(t *testing.T) {
	p := newGovernancePolicy()

	next, err := p.NewVersion("k.jones")
	require.NoError(t, err)
	assert.Equal(t, "1.1", next)
	assert.Equal(t, "1.1", p.CurrentVersion)
	assert.Equal(t, policy.StatusDraft, p.Status)

	// The prior version stays addressable with its content intact.
	require.Contains(t, p.Versions, "1.0")
	assert.Equal(t, p.Versions["1.0"].Content, p.Versions["1.1"].Content)
	assert.Equal(t, "k.jones", p.Versions["1.1"].CreatedBy)

	// Section maps are copied, not shared.
	p.Versions["1.1"].Sections["purpose"] = "revised"
	assert.Equal(t, "Ensure faculty qualifications.", p.Versions["1.0"].Sections["purpose"])

	next, err = p.NewVersion("k.jones")
	require.NoError(t, err)
	assert.Equal(t, "1.2", next)
}

func TestPolicy_IsDueForReview(t *testing.T) {
	now := time.Now()
	past := now.Add(-24 * time.Hour)
	future := now.Add(24 * time.Hour)

	tests := []struct {
		name     string
		status   policy.PolicyStatus
		next     *time.Time
		expected bool
	}{
		{"active past review date", policy.StatusActive, &past, true},
		{"active before review date", policy.StatusActive, &future, false},
		{"active without review date", policy.StatusActive, nil, false},
		{"draft past review date", policy.StatusDraft, &past, false},
		{"archived past review date", policy.StatusArchived, &past, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newGovernancePolicy()
			p.Status = tt.status
			p.NextReviewDate = tt.next
			assert.Equal(t, tt.expected, p.IsDueForReview(now))
		})
	}
}

func TestPolicy_AddReview(t *testing.T) {
	p := newGovernancePolicy()
	require.NoError(t, p.AddReview("m.lee", "section 2 needs citations"))
	require.Len(t, p.Current().Reviews, 1)
	assert.Equal(t, "m.lee", p.Current().Reviews[0].Reviewer)
}

func TestBuiltinTemplates(t *testing.T) {
	templates := policy.BuiltinTemplates()
	require.Contains(t, templates, "aacsb_governance")
	require.Contains(t, templates, "wasc_assessment")
	require.Contains(t, templates, "data_governance")

	aacsb := templates["aacsb_governance"]
	assert.Equal(t, policy.TypeGovernance, aacsb.Type)
	assert.Equal(t,
		[]policy.ApprovalLevel{policy.LevelAdministration, policy.LevelBoard},
		aacsb.RequiredLevels)
	assert.NotEmpty(t, aacsb.Sections)
}
