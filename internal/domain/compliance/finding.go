package compliance

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

type Severity int

const (
	SeverityInfo Severity = iota
	SeverityLow
	SeverityMedium
	SeverityHigh
	SeverityCritical
)

func (s Severity) String() string {
	switch s {
	case SeverityInfo:
		return "info"
	case SeverityLow:
		return "low"
	case SeverityMedium:
		return "medium"
	case SeverityHigh:
		return "high"
	case SeverityCritical:
		return "critical"
	default:
		return "unknown"
	}
}

type FindingStatus int

const (
	FindingOpen FindingStatus = iota
	FindingResolved
)

func (s FindingStatus) String() string {
	switch s {
	case FindingOpen:
		return "open"
	case FindingResolved:
		return "resolved"
	default:
		return "unknown"
	}
}

// Finding records a deficiency discovered by an assessment or an audit.
// Findings are never deleted, only transitioned to resolved.
type Finding struct {
	ID         uuid.UUID  `json:"id"`
	AuditID    *uuid.UUID `json:"audit_id,omitempty"`
	StandardID string     `json:"standard_id"`

	Severity       Severity      `json:"severity"`
	Title          string        `json:"title"`
	Description    string        `json:"description"`
	Recommendation string        `json:"recommendation"`
	Status         FindingStatus `json:"status"`

	DueDate    *time.Time `json:"due_date,omitempty"`
	ResolvedAt *time.Time `json:"resolved_at,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
}

func NewFinding(standardID string, severity Severity, title, description, recommendation string) *Finding {
	return &Finding{
		ID:             uuid.New(),
		StandardID:     standardID,
		Severity:       severity,
		Title:          title,
		Description:    description,
		Recommendation: recommendation,
		Status:         FindingOpen,
		CreatedAt:      time.Now(),
	}
}

// Resolve transitions the finding to resolved. Resolving an already
// resolved finding is an error.
func (f *Finding) Resolve() error {
	if f.Status == FindingResolved {
		return fmt.Errorf("finding %s is already resolved", f.ID)
	}
	now := time.Now()
	f.Status = FindingResolved
	f.ResolvedAt = &now
	return nil
}

func (f *Finding) IsOpen() bool {
	return f.Status == FindingOpen
}
