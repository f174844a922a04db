package compliance

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/collegiumai/governance-backend/internal/domain/compliance"
	"github.com/collegiumai/governance-backend/internal/infrastructure/config"
)

// EvidenceIndex groups submitted evidence by standard id.
type EvidenceIndex map[string][]*compliance.Evidence

// AssessmentInput carries the run-specific inputs of one assessment.
type AssessmentInput struct {
	Assessor string
}

// FrameworkAssessor scores an accreditation framework's standards
// against submitted evidence. Implementations are selected through the
// engine's registry, keyed by framework name.
type FrameworkAssessor interface {
	Name() string
	Standards() []*compliance.Standard
	Assess(ctx context.Context, evidence EvidenceIndex, input AssessmentInput) (*compliance.Assessment, error)
}

// Thresholds bucket an overall score into a compliance status.
type Thresholds struct {
	Compliant float64
	Warning   float64
}

// StandardsAssessor is the shared assessor implementation. Frameworks
// differ only in their standard set, thresholds, and scoring knobs, so
// each concrete framework is a configured instance rather than a
// subtype.
type StandardsAssessor struct {
	name       string
	standards  []*compliance.Standard
	scoring    config.ScoringConfig
	thresholds Thresholds
	logger     *zap.Logger
}

func NewStandardsAssessor(name string, standards []*compliance.Standard, scoring config.ScoringConfig, thresholds Thresholds, logger *zap.Logger) *StandardsAssessor {
	return &StandardsAssessor{
		name:       name,
		standards:  standards,
		scoring:    scoring,
		thresholds: thresholds,
		logger:     logger.Named(name),
	}
}

func (a *StandardsAssessor) Name() string {
	return a.name
}

func (a *StandardsAssessor) Standards() []*compliance.Standard {
	return a.standards
}

// Assess scores every standard, emits findings for each deduction, and
// rolls the per-standard scores up into a weight-normalized overall
// score bucketed by the framework's thresholds.
func (a *StandardsAssessor) Assess(ctx context.Context, evidence EvidenceIndex, input AssessmentInput) (*compliance.Assessment, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	now := time.Now()
	scores := make(map[string]float64, len(a.standards))
	var findings []*compliance.Finding
	compliant := 0

	for _, std := range a.standards {
		score, stdFindings := a.assessStandard(std, evidence[std.ID], now)
		scores[std.ID] = score
		findings = append(findings, stdFindings...)
		if score >= a.thresholds.Compliant {
			compliant++
		}
	}

	overall := compliance.WeightedOverallScore(a.standards, scores)
	assessment := &compliance.Assessment{
		ID:                 uuid.New(),
		Framework:          a.name,
		AssessedAt:         now,
		Assessor:           input.Assessor,
		Status:             a.statusFor(overall),
		OverallScore:       overall,
		StandardScores:     scores,
		StandardsAssessed:  len(a.standards),
		StandardsCompliant: compliant,
		Findings:           findings,
		NextAssessment:     now.Add(time.Duration(a.scoring.ReassessIntervalDays) * 24 * time.Hour),
	}

	a.logger.Info("assessment completed",
		zap.String("framework", a.name),
		zap.Float64("overall_score", overall),
		zap.String("status", assessment.Status.String()),
		zap.Int("findings", len(findings)),
	)

	return assessment, nil
}

// assessStandard computes one standard's score: the framework base
// score, plus the evidence bonus capped at 100, minus deductions for
// missing or unusable evidence. Every deduction produces a finding.
func (a *StandardsAssessor) assessStandard(std *compliance.Standard, items []*compliance.Evidence, now time.Time) (float64, []*compliance.Finding) {
	cfg := a.scoring
	var findings []*compliance.Finding

	if len(items) == 0 {
		score := compliance.ClampScore(cfg.BaseScore - cfg.InsufficientEvidencePenalty)
		findings = append(findings, compliance.NewFinding(
			std.ID,
			compliance.SeverityMedium,
			fmt.Sprintf("Insufficient evidence for %s", std.Name),
			fmt.Sprintf("No evidence has been submitted against standard %s.", std.ID),
			"Collect and submit at least one accepted evidence item for this standard.",
		))
		return score, findings
	}

	usable := 0
	unusable := 0
	for _, ev := range items {
		if ev.IsUsable(now) {
			usable++
		} else {
			unusable++
		}
	}

	score := cfg.BaseScore + cfg.EvidenceIncrement*float64(usable)
	if score > 100 {
		score = 100
	}

	if unusable > 0 {
		score -= cfg.UnusableEvidencePenalty
		findings = append(findings, compliance.NewFinding(
			std.ID,
			compliance.SeverityHigh,
			fmt.Sprintf("Expired or unverified evidence for %s", std.Name),
			fmt.Sprintf("%d of %d evidence items for standard %s are expired or unverified.", unusable, len(items), std.ID),
			"Re-verify or replace the stale evidence before the next assessment cycle.",
		))
	}

	return compliance.ClampScore(score), findings
}

func (a *StandardsAssessor) statusFor(score float64) compliance.ComplianceStatus {
	switch {
	case score >= a.thresholds.Compliant:
		return compliance.StatusCompliant
	case score >= a.thresholds.Warning:
		return compliance.StatusWarning
	default:
		return compliance.StatusNonCompliant
	}
}
