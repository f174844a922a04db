package compliance_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/collegiumai/governance-backend/internal/domain/compliance"
)

func TestEvidence_IsUsable(t *testing.T) {
	now := time.Now()
	past := now.Add(-24 * time.Hour)
	future := now.Add(24 * time.Hour)

	tests := []struct {
		name     string
		setup    func(e *compliance.Evidence)
		expected bool
	}{
		{
			name: "verified without expiry is usable",
			setup: func(e *compliance.Evidence) {
				e.Verified = true
			},
			expected: true,
		},
		{
			name:     "unverified is not usable",
			setup:    func(e *compliance.Evidence) {},
			expected: false,
		},
		{
			name: "verified but expired is not usable",
			setup: func(e *compliance.Evidence) {
				e.Verified = true
				e.ExpiresAt = &past
			},
			expected: false,
		},
		{
			name: "verified with future expiry is usable",
			setup: func(e *compliance.Evidence) {
				e.Verified = true
				e.ExpiresAt = &future
			},
			expected: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := compliance.NewEvidence("AACSB-STD-1", compliance.EvidenceDocument, "Strategic plan", "Current plan")
			tt.setup(e)
			assert.Equal(t, tt.expected, e.IsUsable(now))
		})
	}
}

func TestEvidence_Verify(t *testing.T) {
	e := compliance.NewEvidence("AACSB-STD-1", compliance.EvidenceReport, "AoL report", "")
	require.False(t, e.Verified)

	require.Error(t, e.Verify(""))
	require.False(t, e.Verified)

	require.NoError(t, e.Verify("dean.office"))
	assert.True(t, e.Verified)
	assert.Equal(t, "dean.office", e.VerifiedBy)
}

func TestFinding_Resolve(t *testing.T) {
	f := compliance.NewFinding("WASC-STD-2", compliance.SeverityHigh, "Missing assessment data", "", "Collect program data")
	require.True(t, f.IsOpen())
	require.Nil(t, f.ResolvedAt)

	require.NoError(t, f.Resolve())
	assert.Equal(t, compliance.FindingResolved, f.Status)
	assert.NotNil(t, f.ResolvedAt)

	// Findings resolve exactly once.
	assert.Error(t, f.Resolve())
}

func TestClampScore(t *testing.T) {
	assert.Equal(t, 0.0, compliance.ClampScore(-5))
	assert.Equal(t, 100.0, compliance.ClampScore(140))
	assert.Equal(t, 62.5, compliance.ClampScore(62.5))
}

func TestWeightedOverallScore(t *testing.T) {
	standards := []*compliance.Standard{
		{ID: "S1", Weight: 1.0},
		{ID: "S2", Weight: 2.0},
		{ID: "S3", Weight: 1.0},
	}

	tests := []struct {
		name     string
		scores   map[string]float64
		expected float64
	}{
		{
			name:     "uniform scores",
			scores:   map[string]float64{"S1": 80, "S2": 80, "S3": 80},
			expected: 80,
		},
		{
			name:     "weight pulls toward heavier standard",
			scores:   map[string]float64{"S1": 60, "S2": 90, "S3": 60},
			expected: 75,
		},
		{
			name:     "missing score is skipped",
			scores:   map[string]float64{"S1": 70, "S3": 90},
			expected: 80,
		},
		{
			name:     "no scores at all",
			scores:   map[string]float64{},
			expected: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, compliance.WeightedOverallScore(standards, tt.scores), 0.0001)
		})
	}
}

func TestStandard_AcceptsEvidence(t *testing.T) {
	std := &compliance.Standard{
		ID:               "AACSB-STD-1",
		AcceptedEvidence: []compliance.EvidenceType{compliance.EvidenceDocument, compliance.EvidenceReport},
	}
	assert.True(t, std.AcceptsEvidence(compliance.EvidenceDocument))
	assert.False(t, std.AcceptsEvidence(compliance.EvidenceCertification))
}
