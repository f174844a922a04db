package compliance

import (
	"time"

	"github.com/google/uuid"
)

// Assessment is the immutable result of one assessment run over a
// framework's standards. Once created it is appended to history and
// never mutated.
type Assessment struct {
	ID        uuid.UUID `json:"id"`
	Framework string    `json:"framework"`

	AssessedAt time.Time        `json:"assessed_at"`
	Assessor   string           `json:"assessor"`
	Status     ComplianceStatus `json:"status"`

	OverallScore       float64            `json:"overall_score"`
	StandardScores     map[string]float64 `json:"standard_scores"`
	StandardsAssessed  int                `json:"standards_assessed"`
	StandardsCompliant int                `json:"standards_compliant"`

	Findings       []*Finding `json:"findings"`
	NextAssessment time.Time  `json:"next_assessment"`
}

// ClampScore bounds a computed score to the [0,100] scale.
func ClampScore(score float64) float64 {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

// WeightedOverallScore computes the requirement-weight-normalized
// average of per-standard scores: sum(score*weight)/sum(weight),
// clamped to [0,100]. Standards with no recorded score are skipped.
func WeightedOverallScore(standards []*Standard, scores map[string]float64) float64 {
	var weighted, totalWeight float64
	for _, std := range standards {
		score, ok := scores[std.ID]
		if !ok {
			continue
		}
		weighted += score * std.Weight
		totalWeight += std.Weight
	}
	if totalWeight == 0 {
		return 0
	}
	return ClampScore(weighted / totalWeight)
}
