package compliance

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Standard is a single accreditation standard defined by a framework.
// Standard sets are design-time constants per framework version and are
// never edited after load.
type Standard struct {
	ID        string  `json:"id"`
	Framework string  `json:"framework"`
	Name      string  `json:"name"`
	Weight    float64 `json:"weight"`

	Requirements     []string       `json:"requirements"`
	AcceptedEvidence []EvidenceType `json:"accepted_evidence"`
	Mandatory        bool           `json:"mandatory"`

	LastReview time.Time `json:"last_review"`
	NextReview time.Time `json:"next_review"`
}

// AcceptsEvidence reports whether the standard admits evidence of the
// given kind.
func (s *Standard) AcceptsEvidence(kind EvidenceType) bool {
	for _, accepted := range s.AcceptedEvidence {
		if accepted == kind {
			return true
		}
	}
	return false
}

type EvidenceType int

const (
	EvidenceDocument EvidenceType = iota
	EvidenceReport
	EvidenceMetric
	EvidenceAttestation
	EvidenceCertification
)

func (t EvidenceType) String() string {
	switch t {
	case EvidenceDocument:
		return "document"
	case EvidenceReport:
		return "report"
	case EvidenceMetric:
		return "metric"
	case EvidenceAttestation:
		return "attestation"
	case EvidenceCertification:
		return "certification"
	default:
		return "unknown"
	}
}

// ParseEvidenceType resolves the wire name of an evidence kind.
func ParseEvidenceType(name string) (EvidenceType, bool) {
	switch name {
	case "document":
		return EvidenceDocument, true
	case "report":
		return EvidenceReport, true
	case "metric":
		return EvidenceMetric, true
	case "attestation":
		return EvidenceAttestation, true
	case "certification":
		return EvidenceCertification, true
	default:
		return 0, false
	}
}

// Evidence is a record submitted against a standard. Expired or
// unverified evidence lowers computed compliance scores.
type Evidence struct {
	ID          uuid.UUID    `json:"id"`
	StandardID  string       `json:"standard_id"`
	Type        EvidenceType `json:"type"`
	Title       string       `json:"title"`
	Description string       `json:"description"`
	Location    string       `json:"location,omitempty"`

	CollectedAt time.Time  `json:"collected_at"`
	ExpiresAt   *time.Time `json:"expires_at,omitempty"`

	Verified   bool   `json:"verified"`
	VerifiedBy string `json:"verified_by,omitempty"`
}

func NewEvidence(standardID string, kind EvidenceType, title, description string) *Evidence {
	return &Evidence{
		ID:          uuid.New(),
		StandardID:  standardID,
		Type:        kind,
		Title:       title,
		Description: description,
		CollectedAt: time.Now(),
	}
}

// IsExpired reports whether the evidence has passed its expiry date.
// Evidence with no expiry never expires.
func (e *Evidence) IsExpired(now time.Time) bool {
	if e.ExpiresAt == nil {
		return false
	}
	return now.After(*e.ExpiresAt)
}

// IsUsable reports whether the evidence counts toward a compliance
// score: it must be verified and not expired.
func (e *Evidence) IsUsable(now time.Time) bool {
	return e.Verified && !e.IsExpired(now)
}

// Verify marks the evidence as verified by the given reviewer.
func (e *Evidence) Verify(verifier string) error {
	if verifier == "" {
		return fmt.Errorf("verifier cannot be empty")
	}
	e.Verified = true
	e.VerifiedBy = verifier
	return nil
}

type ComplianceStatus int

const (
	StatusUnknown ComplianceStatus = iota
	StatusCompliant
	StatusWarning
	StatusNonCompliant
)

func (s ComplianceStatus) String() string {
	switch s {
	case StatusCompliant:
		return "compliant"
	case StatusWarning:
		return "warning"
	case StatusNonCompliant:
		return "non_compliant"
	default:
		return "unknown"
	}
}
