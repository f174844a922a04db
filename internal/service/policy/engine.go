package policy

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/collegiumai/governance-backend/internal/domain/policy"
	"github.com/collegiumai/governance-backend/internal/infrastructure/storage"
)

// CreatePolicyRequest carries the inputs for drafting a policy from
// scratch.
type CreatePolicyRequest struct {
	Title    string `validate:"required"`
	Type     policy.PolicyType
	Owner    string `validate:"required"`
	Author   string `validate:"required"`
	Content  string
	Sections map[string]string
}

// Engine owns the policy lifecycle: drafting, review, the approval
// workflow gated by required approval levels, activation, versioning,
// and review scheduling.
type Engine struct {
	mu        sync.RWMutex
	logger    *zap.Logger
	validate  *validator.Validate
	policies  map[uuid.UUID]*policy.Policy
	templates map[string]*policy.Template
	store     *storage.Collection[*policy.Policy]

	defaultReviewFrequencyDays int
}

func NewEngine(store *storage.Collection[*policy.Policy], defaultReviewFrequencyDays int, logger *zap.Logger) *Engine {
	e := &Engine{
		logger:                     logger.Named("policy"),
		validate:                   validator.New(),
		policies:                   make(map[uuid.UUID]*policy.Policy),
		templates:                  policy.BuiltinTemplates(),
		store:                      store,
		defaultReviewFrequencyDays: defaultReviewFrequencyDays,
	}
	for _, p := range store.Load() {
		e.policies[p.ID] = p
	}
	return e
}

// CreatePolicy drafts a new policy as version "1.0".
func (e *Engine) CreatePolicy(req CreatePolicyRequest) (*policy.Policy, error) {
	if err := e.validate.Struct(req); err != nil {
		return nil, fmt.Errorf("invalid policy request: %w", err)
	}

	p := policy.New(req.Title, req.Type, req.Owner, req.Author, req.Content, req.Sections)
	p.ReviewFrequencyDays = e.defaultReviewFrequencyDays

	e.mu.Lock()
	e.policies[p.ID] = p
	e.persistLocked()
	e.mu.Unlock()

	e.logger.Info("policy created",
		zap.String("policy_id", p.ID.String()),
		zap.String("title", p.Title),
	)
	return p, nil
}

// CreatePolicyFromTemplate drafts a policy by snapshotting a
// template's sections as version "1.0". Nil when the template id is
// unknown.
func (e *Engine) CreatePolicyFromTemplate(templateID, title, owner, author string) *policy.Policy {
	tmpl, ok := e.templates[templateID]
	if !ok {
		e.logger.Warn("unknown policy template", zap.String("template_id", templateID))
		return nil
	}

	sections := make(map[string]string, len(tmpl.Sections))
	for k, v := range tmpl.Sections {
		sections[k] = v
	}
	p := policy.New(title, tmpl.Type, owner, author, "", sections)
	p.ReviewFrequencyDays = e.defaultReviewFrequencyDays
	p.Frameworks = append([]string(nil), tmpl.Frameworks...)
	if len(tmpl.RequiredLevels) > 0 {
		p.RequiredApprovals = append([]policy.ApprovalLevel(nil), tmpl.RequiredLevels...)
	}

	e.mu.Lock()
	e.policies[p.ID] = p
	e.persistLocked()
	e.mu.Unlock()

	e.logger.Info("policy created from template",
		zap.String("policy_id", p.ID.String()),
		zap.String("template_id", templateID),
	)
	return p
}

// GetPolicy returns a copy of the policy, or nil when unknown.
func (e *Engine) GetPolicy(id uuid.UUID) *policy.Policy {
	e.mu.RLock()
	defer e.mu.RUnlock()
	p, ok := e.policies[id]
	if !ok {
		return nil
	}
	return p.Clone()
}

// ListPolicies returns copies of all policies ordered by creation time.
func (e *Engine) ListPolicies() []*policy.Policy {
	e.mu.RLock()
	defer e.mu.RUnlock()
	out := make([]*policy.Policy, 0, len(e.policies))
	for _, p := range e.policies {
		out = append(out, p.Clone())
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}

// Templates returns the template catalog.
func (e *Engine) Templates() map[string]*policy.Template {
	return e.templates
}

// SubmitForReview moves a draft into review. False when the policy is
// unknown or not in draft.
func (e *Engine) SubmitForReview(id uuid.UUID) bool {
	return e.transition(id, "submit_for_review", func(p *policy.Policy) error { return p.SubmitForReview() })
}

// ApprovePolicy records one approval against the current version. The
// policy is promoted to approved, and its effective date stamped, only
// once the recorded approval levels cover every required level. False
// when the policy is unknown or not in review.
func (e *Engine) ApprovePolicy(id uuid.UUID, approver string, level policy.ApprovalLevel, comment string) bool {
	return e.transition(id, "approve", func(p *policy.Policy) error {
		return p.Approve(approver, level, comment)
	})
}

// ActivatePolicy puts an approved policy into force. False otherwise.
func (e *Engine) ActivatePolicy(id uuid.UUID) bool {
	return e.transition(id, "activate", func(p *policy.Policy) error { return p.Activate() })
}

// DeprecatePolicy retires an active policy.
func (e *Engine) DeprecatePolicy(id uuid.UUID) bool {
	return e.transition(id, "deprecate", func(p *policy.Policy) error { return p.Deprecate() })
}

// ArchivePolicy archives an active or deprecated policy.
func (e *Engine) ArchivePolicy(id uuid.UUID) bool {
	return e.transition(id, "archive", func(p *policy.Policy) error { return p.Archive() })
}

// AddReview appends a review record to the current version.
func (e *Engine) AddReview(id uuid.UUID, reviewer, comment string) bool {
	return e.transition(id, "add_review", func(p *policy.Policy) error {
		return p.AddReview(reviewer, comment)
	})
}

// CreateNewVersion bumps the version by 0.1, copying the prior content
// and sections as the new draft baseline. Returns the new version
// string, or "" when the policy is unknown or its version is
// unparsable.
func (e *Engine) CreateNewVersion(id uuid.UUID, author string) string {
	e.mu.Lock()
	defer e.mu.Unlock()

	p, ok := e.policies[id]
	if !ok {
		return ""
	}
	next, err := p.NewVersion(author)
	if err != nil {
		e.logger.Warn("version bump rejected",
			zap.String("policy_id", id.String()),
			zap.Error(err),
		)
		return ""
	}
	e.persistLocked()
	return next
}

// GetPoliciesForReview filters to active policies whose next review
// date has arrived.
func (e *Engine) GetPoliciesForReview() []*policy.Policy {
	now := time.Now()
	var due []*policy.Policy
	for _, p := range e.ListPolicies() {
		if p.IsDueForReview(now) {
			due = append(due, p)
		}
	}
	return due
}

func (e *Engine) transition(id uuid.UUID, op string, apply func(*policy.Policy) error) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	p, ok := e.policies[id]
	if !ok {
		e.logger.Warn("policy not found", zap.String("op", op), zap.String("policy_id", id.String()))
		return false
	}
	if err := apply(p); err != nil {
		e.logger.Warn("policy transition rejected",
			zap.String("op", op),
			zap.String("policy_id", id.String()),
			zap.Error(err),
		)
		return false
	}
	e.persistLocked()
	return true
}

func (e *Engine) persistLocked() {
	items := make([]*policy.Policy, 0, len(e.policies))
	for _, p := range e.policies {
		items = append(items, p)
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].CreatedAt.Before(items[j].CreatedAt)
	})
	e.store.Save(items)
}
