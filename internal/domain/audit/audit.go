package audit

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/collegiumai/governance-backend/internal/domain/compliance"
)

type AuditType int

const (
	TypeInternal AuditType = iota
	TypeExternal
	TypeAccreditation
	TypeFollowUp
)

func (t AuditType) String() string {
	switch t {
	case TypeInternal:
		return "internal"
	case TypeExternal:
		return "external"
	case TypeAccreditation:
		return "accreditation"
	case TypeFollowUp:
		return "follow_up"
	default:
		return "unknown"
	}
}

// ParseAuditType resolves the wire name of an audit type.
func ParseAuditType(name string) (AuditType, bool) {
	switch name {
	case "internal":
		return TypeInternal, true
	case "external":
		return TypeExternal, true
	case "accreditation":
		return TypeAccreditation, true
	case "follow_up":
		return TypeFollowUp, true
	default:
		return 0, false
	}
}

type AuditStatus int

const (
	StatusPlanned AuditStatus = iota
	StatusInProgress
	StatusCompleted
	StatusCancelled
)

func (s AuditStatus) String() string {
	switch s {
	case StatusPlanned:
		return "planned"
	case StatusInProgress:
		return "in_progress"
	case StatusCompleted:
		return "completed"
	case StatusCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// Scope bounds what an audit covers.
type Scope struct {
	Frameworks  []string `json:"frameworks"`
	Standards   []string `json:"standards"`
	Departments []string `json:"departments"`
	Processes   []string `json:"processes"`
}

// ChecklistItem is one independently completable step of an audit.
type ChecklistItem struct {
	ID          string     `json:"id"`
	Description string     `json:"description"`
	Completed   bool       `json:"completed"`
	CompletedBy string     `json:"completed_by,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	Notes       string     `json:"notes,omitempty"`
}

// Audit is one planned or executed audit engagement. Lifecycle is
// strictly forward: planned -> in_progress -> completed, with cancelled
// reachable from either non-terminal state. Overdue is derived, never
// stored.
type Audit struct {
	ID     uuid.UUID   `json:"id"`
	Title  string      `json:"title"`
	Type   AuditType   `json:"type"`
	Status AuditStatus `json:"status"`

	Scope       Scope    `json:"scope"`
	LeadAuditor string   `json:"lead_auditor"`
	Team        []string `json:"team"`

	PlannedStart time.Time  `json:"planned_start"`
	PlannedEnd   time.Time  `json:"planned_end"`
	ActualStart  *time.Time `json:"actual_start,omitempty"`
	ActualEnd    *time.Time `json:"actual_end,omitempty"`

	Checklist []ChecklistItem       `json:"checklist"`
	Findings  []*compliance.Finding `json:"findings"`

	FollowUpRequired bool       `json:"follow_up_required"`
	FollowUpDate     *time.Time `json:"follow_up_date,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

func New(title string, auditType AuditType, scope Scope, leadAuditor string, plannedStart, plannedEnd time.Time) *Audit {
	return &Audit{
		ID:           uuid.New(),
		Title:        title,
		Type:         auditType,
		Status:       StatusPlanned,
		Scope:        scope,
		LeadAuditor:  leadAuditor,
		PlannedStart: plannedStart,
		PlannedEnd:   plannedEnd,
		CreatedAt:    time.Now(),
	}
}

// Start moves the audit from planned to in progress.
func (a *Audit) Start() error {
	if a.Status != StatusPlanned {
		return fmt.Errorf("cannot start audit in status %s", a.Status)
	}
	now := time.Now()
	a.Status = StatusInProgress
	a.ActualStart = &now
	return nil
}

// Complete moves the audit from in progress to completed, stamps the
// actual end time, and schedules a follow-up after followUpIn when the
// findings warrant one.
func (a *Audit) Complete(followUpIn time.Duration) error {
	if a.Status != StatusInProgress {
		return fmt.Errorf("cannot complete audit in status %s", a.Status)
	}
	now := time.Now()
	a.Status = StatusCompleted
	a.ActualEnd = &now

	if a.NeedsFollowUp() {
		followUp := now.Add(followUpIn)
		a.FollowUpRequired = true
		a.FollowUpDate = &followUp
	}
	return nil
}

// Cancel aborts a planned or in-progress audit.
func (a *Audit) Cancel() error {
	if a.Status != StatusPlanned && a.Status != StatusInProgress {
		return fmt.Errorf("cannot cancel audit in status %s", a.Status)
	}
	a.Status = StatusCancelled
	return nil
}

// Clone returns a deep copy. Accessors hand clones to callers so that
// encoding a result never races with a concurrent mutation of the
// stored audit.
func (a *Audit) Clone() *Audit {
	c := *a
	c.Team = append([]string(nil), a.Team...)
	c.Checklist = append([]ChecklistItem(nil), a.Checklist...)
	c.ActualStart = copyTime(a.ActualStart)
	c.ActualEnd = copyTime(a.ActualEnd)
	c.FollowUpDate = copyTime(a.FollowUpDate)
	for i, item := range a.Checklist {
		c.Checklist[i].CompletedAt = copyTime(item.CompletedAt)
	}
	c.Findings = make([]*compliance.Finding, len(a.Findings))
	for i, f := range a.Findings {
		fc := *f
		c.Findings[i] = &fc
	}
	return &c
}

func copyTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	c := *t
	return &c
}

// NeedsFollowUp reports whether the findings require a follow-up audit:
// at least one critical finding, or more than two high-severity ones.
func (a *Audit) NeedsFollowUp() bool {
	var high int
	for _, f := range a.Findings {
		switch f.Severity {
		case compliance.SeverityCritical:
			return true
		case compliance.SeverityHigh:
			high++
		}
	}
	return high > 2
}

// IsOverdue reports whether the planned end has passed without the
// audit reaching completion.
func (a *Audit) IsOverdue(now time.Time) bool {
	return a.PlannedEnd.Before(now) && a.Status != StatusCompleted
}

// ChecklistProgress returns completed and total checklist counts.
func (a *Audit) ChecklistProgress() (completed, total int) {
	for _, item := range a.Checklist {
		if item.Completed {
			completed++
		}
	}
	return completed, len(a.Checklist)
}
