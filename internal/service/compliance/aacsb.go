package compliance

import (
	"time"

	"go.uber.org/zap"

	"github.com/collegiumai/governance-backend/internal/domain/compliance"
	"github.com/collegiumai/governance-backend/internal/infrastructure/config"
)

const FrameworkAACSB = "AACSB"

// NewAACSBAssessor builds the assessor for the AACSB business
// accreditation framework with its fixed 2020 standard set.
func NewAACSBAssessor(scoring config.ScoringConfig, logger *zap.Logger) *StandardsAssessor {
	return NewStandardsAssessor(
		FrameworkAACSB,
		aacsbStandards(),
		scoring,
		Thresholds{Compliant: 85, Warning: 70},
		logger,
	)
}

func aacsbStandards() []*compliance.Standard {
	lastReview := time.Date(2025, time.July, 1, 0, 0, 0, 0, time.UTC)
	nextReview := lastReview.AddDate(1, 0, 0)

	std := func(id, name string, weight float64, mandatory bool, requirements []string, evidence []compliance.EvidenceType) *compliance.Standard {
		return &compliance.Standard{
			ID:               id,
			Framework:        FrameworkAACSB,
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
		std("AACSB-STD-1", "Strategic Planning", 1.0, true,
			[]string{
				"A documented mission statement guides the school's activities",
				"Strategic plan is reviewed and updated on a defined cycle",
				"Resource allocation aligns with strategic priorities",
			},
			[]compliance.EvidenceType{compliance.EvidenceDocument, compliance.EvidenceReport},
		),
		std("AACSB-STD-2", "Physical, Virtual, and Financial Resources", 0.8, true,
			[]string{
				"Financial resources are sufficient to sustain quality programs",
				"Learning facilities and technology support the delivery model",
			},
			[]compliance.EvidenceType{compliance.EvidenceDocument, compliance.EvidenceMetric},
		),
		std("AACSB-STD-3", "Faculty and Professional Staff Resources", 1.2, true,
			[]string{
				"Faculty sufficiency and qualification ratios meet published thresholds",
				"Deployment of participating and supporting faculty is documented",
			},
			[]compliance.EvidenceType{compliance.EvidenceReport, compliance.EvidenceMetric, compliance.EvidenceAttestation},
		),
		std("AACSB-STD-4", "Curriculum and Learner Progression", 1.2, true,
			[]string{
				"Curricula content is current and competency-based",
				"Assurance of learning results feed curriculum revision",
			},
			[]compliance.EvidenceType{compliance.EvidenceDocument, compliance.EvidenceReport},
		),
		std("AACSB-STD-5", "Assurance of Learning", 1.0, true,
			[]string{
				"Program learning goals are measured on a systematic cycle",
				"Closing-the-loop actions are documented per program",
			},
			[]compliance.EvidenceType{compliance.EvidenceReport, compliance.EvidenceMetric},
		),
		std("AACSB-STD-6", "Thought Leadership and Societal Impact", 0.6, false,
			[]string{
				"Intellectual contributions portfolio is maintained",
				"Societal impact themes are identified and tracked",
			},
			[]compliance.EvidenceType{compliance.EvidenceReport, compliance.EvidenceAttestation},
		),
	}
}
