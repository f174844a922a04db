package audit

import (
	"time"

	"github.com/google/uuid"
)

type RiskLevel int

const (
	RiskLow RiskLevel = iota
	RiskMedium
	RiskHigh
)

func (r RiskLevel) String() string {
	switch r {
	case RiskLow:
		return "low"
	case RiskMedium:
		return "medium"
	case RiskHigh:
		return "high"
	default:
		return "unknown"
	}
}

// PlannedAudit is one scheduled slot in an annual plan.
type PlannedAudit struct {
	Area         string    `json:"area"`
	Risk         RiskLevel `json:"risk"`
	Quarter      int       `json:"quarter"`
	PlannedStart time.Time `json:"planned_start"`
	PlannedEnd   time.Time `json:"planned_end"`
}

// AnnualPlan is a deterministic, single-shot schedule of audits for a
// calendar year derived from per-area risk ratings.
type AnnualPlan struct {
	ID        uuid.UUID      `json:"id"`
	Year      int            `json:"year"`
	Audits    []PlannedAudit `json:"audits"`
	CreatedAt time.Time      `json:"created_at"`
}

// quartersFor maps a risk rating to the quarters an area is audited in.
// High risk areas get quarterly audits, medium risk semiannual, low
// risk one annual audit.
func quartersFor(risk RiskLevel) []int {
	switch risk {
	case RiskHigh:
		return []int{1, 2, 3, 4}
	case RiskMedium:
		return []int{1, 3}
	default:
		return []int{2}
	}
}

// BuildAnnualPlan creates the year's schedule. Each scheduled audit
// spans the first two weeks of its quarter.
func BuildAnnualPlan(year int, riskRatings map[string]RiskLevel, areas []string) *AnnualPlan {
	plan := &AnnualPlan{
		ID:        uuid.New(),
		Year:      year,
		CreatedAt: time.Now(),
	}
	for _, area := range areas {
		risk := riskRatings[area]
		for _, q := range quartersFor(risk) {
			start := time.Date(year, time.Month((q-1)*3+1), 1, 0, 0, 0, 0, time.UTC)
			plan.Audits = append(plan.Audits, PlannedAudit{
				Area:         area,
				Risk:         risk,
				Quarter:      q,
				PlannedStart: start,
				PlannedEnd:   start.Add(14 * 24 * time.Hour),
			})
		}
	}
	return plan
}
