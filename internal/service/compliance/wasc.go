package compliance

import (
	"time"

	"go.uber.org/zap"

	"github.com/collegiumai/governance-backend/internal/domain/compliance"
	"github.com/collegiumai/governance-backend/internal/infrastructure/config"
)

const FrameworkWASC = "WASC"

// NewWASCAssessor builds the assessor for the WASC Senior College and
// University Commission framework.
func NewWASCAssessor(scoring config.ScoringConfig, logger *zap.Logger) *StandardsAssessor {
	return NewStandardsAssessor(
		FrameworkWASC,
		wascStandards(),
		scoring,
		Thresholds{Compliant: 80, Warning: 65},
		logger,
	)
}

func wascStandards() []*compliance.Standard {
	lastReview := time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC)
	nextReview := lastReview.AddDate(1, 0, 0)

	std := func(id, name string, weight float64, mandatory bool, requirements []string, evidence []compliance.EvidenceType) *compliance.Standard {
		return &compliance.Standard{
			ID:               id,
			Framework:        FrameworkWASC,
			Name:             name,
			Weight:           weight,
			Requirements:     requirements,
			AcceptedEvidence: evidence,
			Mandatory:        mandatory,
			LastReview:       lastReview,
			NextReview:       nextReview,
		}
	}

	return []*compliance.Standard{
		std("WASC-STD-1", "Defining Institutional Purposes", 1.0, true,
			[]string{
				"Institutional purposes are appropriate for higher education",
				"Educational objectives are widely published and understood",
			},
			[]compliance.EvidenceType{compliance.EvidenceDocument},
		),
		std("WASC-STD-2", "Achieving Educational Objectives", 1.2, true,
			[]string{
				"Programs demonstrate student learning aligned to degree level",
				"Scholarship and creative activity support the teaching mission",
			},
			[]compliance.EvidenceType{compliance.EvidenceReport, compliance.EvidenceMetric},
		),
		std("WASC-STD-3", "Developing and Applying Resources", 0.9, true,
			[]string{
				"Fiscal and physical resources are aligned with priorities",
				"Faculty and staff are sufficient in number and qualification",
			},
			[]compliance.EvidenceType{compliance.EvidenceDocument, compliance.EvidenceMetric},
		),
		std("WASC-STD-4", "Quality Assurance and Improvement", 1.1, true,
			[]string{
				"Quality assurance processes are embedded in planning cycles",
				"Evidence of institutional learning and improvement is maintained",
			},
			[]compliance.EvidenceType{compliance.EvidenceReport, compliance.EvidenceAttestation},
		),
	}
}
