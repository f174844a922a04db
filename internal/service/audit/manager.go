package audit

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/collegiumai/governance-backend/internal/domain/audit"
	"github.com/collegiumai/governance-backend/internal/domain/compliance"
	"github.com/collegiumai/governance-backend/internal/infrastructure/storage"
	"github.com/collegiumai/governance-backend/internal/metrics"
)

// CreateAuditRequest carries the inputs for planning a new audit.
type CreateAuditRequest struct {
	Title        string      `validate:"required"`
	Type         audit.AuditType
	Scope        audit.Scope
	LeadAuditor  string      `validate:"required"`
	Team         []string
	PlannedStart time.Time   `validate:"required"`
	PlannedEnd   time.Time   `validate:"required,gtfield=PlannedStart"`
	Checklist    []string
}

// Progress is the derived view of one audit's execution state.
type Progress struct {
	AuditID            uuid.UUID `json:"audit_id"`
	Status             string    `json:"status"`
	ChecklistTotal     int       `json:"checklist_total"`
	ChecklistCompleted int       `json:"checklist_completed"`
	PercentComplete    float64   `json:"percent_complete"`
	OpenFindings       int       `json:"open_findings"`
	Overdue            bool      `json:"overdue"`
}

// Manager owns the audit lifecycle: plan, execute, complete, plus
// checklist tracking and annual plan generation. State transitions
// that cannot apply report false rather than failing.
type Manager struct {
	mu       sync.RWMutex
	logger   *zap.Logger
	validate *validator.Validate
	metrics  *metrics.Registry
	audits   map[uuid.UUID]*audit.Audit
	plans    []*audit.AnnualPlan
	store    *storage.Collection[*audit.Audit]

	followUpDays int
}

func NewManager(store *storage.Collection[*audit.Audit], registry *metrics.Registry, followUpDays int, logger *zap.Logger) *Manager {
	m := &Manager{
		logger:       logger.Named("audit"),
		validate:     validator.New(),
		metrics:      registry,
		audits:       make(map[uuid.UUID]*audit.Audit),
		store:        store,
		followUpDays: followUpDays,
	}
	for _, a := range store.Load() {
		m.audits[a.ID] = a
	}
	return m
}

// CreateAudit plans a new audit with a numbered checklist.
func (m *Manager) CreateAudit(req CreateAuditRequest) (*audit.Audit, error) {
	if err := m.validate.Struct(req); err != nil {
		return nil, fmt.Errorf("invalid audit request: %w", err)
	}

	a := audit.New(req.Title, req.Type, req.Scope, req.LeadAuditor, req.PlannedStart, req.PlannedEnd)
	a.Team = req.Team
	for i, desc := range req.Checklist {
		a.Checklist = append(a.Checklist, audit.ChecklistItem{
			ID:          fmt.Sprintf("item-%d", i+1),
			Description: desc,
		})
	}

	m.mu.Lock()
	m.audits[a.ID] = a
	m.persistLocked()
	m.mu.Unlock()

	m.logger.Info("audit created",
		zap.String("audit_id", a.ID.String()),
		zap.String("title", a.Title),
		zap.String("type", a.Type.String()),
	)
	return a, nil
}

// GetAudit returns a copy of the audit, or nil when unknown.
func (m *Manager) GetAudit(id uuid.UUID) *audit.Audit {
	m.mu.RLock()
	defer m.mu.RUnlock()
	a, ok := m.audits[id]
	if !ok {
		return nil
	}
	return a.Clone()
}

// ListAudits returns copies of all audits ordered by planned start.
func (m *Manager) ListAudits() []*audit.Audit {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*audit.Audit, 0, len(m.audits))
	for _, a := range m.audits {
		out = append(out, a.Clone())
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].PlannedStart.Before(out[j].PlannedStart)
	})
	return out
}

// StartAudit moves a planned audit into execution. False when the
// audit is unknown or not in planned status.
func (m *Manager) StartAudit(id uuid.UUID) bool {
	return m.transition(id, "start", func(a *audit.Audit) error { return a.Start() })
}

// CompleteAudit closes an in-progress audit, stamping the actual end
// and scheduling a follow-up after the configured interval when the
// findings warrant one.
func (m *Manager) CompleteAudit(id uuid.UUID) bool {
	followUpIn := time.Duration(m.followUpDays) * 24 * time.Hour
	ok := m.transition(id, "complete", func(a *audit.Audit) error { return a.Complete(followUpIn) })
	if ok && m.metrics != nil {
		m.metrics.AuditsCompleted.Inc()
	}
	return ok
}

// CancelAudit aborts a planned or in-progress audit.
func (m *Manager) CancelAudit(id uuid.UUID) bool {
	return m.transition(id, "cancel", func(a *audit.Audit) error { return a.Cancel() })
}

func (m *Manager) transition(id uuid.UUID, op string, apply func(*audit.Audit) error) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	a, ok := m.audits[id]
	if !ok {
		m.logger.Warn("audit not found", zap.String("op", op), zap.String("audit_id", id.String()))
		return false
	}
	if err := apply(a); err != nil {
		m.logger.Warn("audit transition rejected",
			zap.String("op", op),
			zap.String("audit_id", id.String()),
			zap.Error(err),
		)
		return false
	}
	m.persistLocked()
	return true
}

// AddFinding attaches a finding to an audit. False when the audit is
// unknown.
func (m *Manager) AddFinding(auditID uuid.UUID, finding *compliance.Finding) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	a, ok := m.audits[auditID]
	if !ok {
		return false
	}
	finding.AuditID = &auditID
	a.Findings = append(a.Findings, finding)
	m.persistLocked()
	return true
}

// ResolveFinding resolves one finding on one audit. False when either
// id is unknown or the finding was already resolved.
func (m *Manager) ResolveFinding(auditID, findingID uuid.UUID) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	a, ok := m.audits[auditID]
	if !ok {
		return false
	}
	for _, f := range a.Findings {
		if f.ID == findingID {
			if err := f.Resolve(); err != nil {
				m.logger.Warn("finding resolution rejected", zap.Error(err))
				return false
			}
			m.persistLocked()
			return true
		}
	}
	return false
}

// CompleteChecklistItem marks one checklist item done, recording who
// completed it and any notes. Safe to call repeatedly for the same
// item. False when the audit or item id is unknown; this is a reported
// condition, never fatal.
func (m *Manager) CompleteChecklistItem(auditID uuid.UUID, itemID, completedBy, notes string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	a, ok := m.audits[auditID]
	if !ok {
		return false
	}
	for i := range a.Checklist {
		if a.Checklist[i].ID != itemID {
			continue
		}
		now := time.Now()
		a.Checklist[i].Completed = true
		a.Checklist[i].CompletedBy = completedBy
		a.Checklist[i].CompletedAt = &now
		a.Checklist[i].Notes = notes
		m.persistLocked()
		return true
	}
	return false
}

// GetAuditProgress reports checklist completion and the derived
// overdue flag. Nil for an unknown audit.
func (m *Manager) GetAuditProgress(id uuid.UUID) *Progress {
	m.mu.RLock()
	defer m.mu.RUnlock()

	a, ok := m.audits[id]
	if !ok {
		return nil
	}
	completed, total := a.ChecklistProgress()
	percent := 0.0
	if total > 0 {
		percent = float64(completed) / float64(total) * 100
	}
	open := 0
	for _, f := range a.Findings {
		if f.IsOpen() {
			open++
		}
	}
	return &Progress{
		AuditID:            a.ID,
		Status:             a.Status.String(),
		ChecklistTotal:     total,
		ChecklistCompleted: completed,
		PercentComplete:    percent,
		OpenFindings:       open,
		Overdue:            a.IsOverdue(time.Now()),
	}
}

// CreateAnnualPlan derives a full-year audit schedule from risk
// ratings and materializes each slot as a planned audit. Single-shot:
// the schedule is generated once per call with no retry semantics.
func (m *Manager) CreateAnnualPlan(year int, riskRatings map[string]audit.RiskLevel) *audit.AnnualPlan {
	areas := make([]string, 0, len(riskRatings))
	for area := range riskRatings {
		areas = append(areas, area)
	}
	sort.Strings(areas)

	plan := audit.BuildAnnualPlan(year, riskRatings, areas)

	m.mu.Lock()
	for _, slot := range plan.Audits {
		a := audit.New(
			fmt.Sprintf("%s audit Q%d %d", slot.Area, slot.Quarter, year),
			audit.TypeInternal,
			audit.Scope{Departments: []string{slot.Area}},
			"",
			slot.PlannedStart,
			slot.PlannedEnd,
		)
		m.audits[a.ID] = a
	}
	m.plans = append(m.plans, plan)
	m.persistLocked()
	m.mu.Unlock()

	m.logger.Info("annual audit plan created",
		zap.Int("year", year),
		zap.Int("audits", len(plan.Audits)),
	)
	return plan
}

// Plans returns every generated annual plan.
func (m *Manager) Plans() []*audit.AnnualPlan {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*audit.AnnualPlan, len(m.plans))
	copy(out, m.plans)
	return out
}

// persistLocked rewrites the audit collection. Callers hold the lock.
func (m *Manager) persistLocked() {
	items := make([]*audit.Audit, 0, len(m.audits))
	for _, a := range m.audits {
		items = append(items, a)
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].CreatedAt.Before(items[j].CreatedAt)
	})
	m.store.Save(items)
}
