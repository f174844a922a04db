package policy

import (
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
)

type PolicyType int

const (
	TypeGovernance PolicyType = iota
	TypeAcademic
	TypeAdministrative
	TypeCompliance
)

func (t PolicyType) String() string {
	switch t {
	case TypeGovernance:
		return "governance"
	case TypeAcademic:
		return "academic"
	case TypeAdministrative:
		return "administrative"
	case TypeCompliance:
		return "compliance"
	default:
		return "unknown"
	}
}

type PolicyStatus int

const (
	StatusDraft PolicyStatus = iota
	StatusReview
	StatusApproved
	StatusActive
	StatusDeprecated
	StatusArchived
)

func (s PolicyStatus) String() string {
	switch s {
	case StatusDraft:
		return "draft"
	case StatusReview:
		return "review"
	case StatusApproved:
		return "approved"
	case StatusActive:
		return "active"
	case StatusDeprecated:
		return "deprecated"
	case StatusArchived:
		return "archived"
	default:
		return "unknown"
	}
}

type ApprovalLevel int

const (
	LevelDepartment ApprovalLevel = iota
	LevelAdministration
	LevelFacultySenate
	LevelBoard
)

func (l ApprovalLevel) String() string {
	switch l {
	case LevelDepartment:
		return "department"
	case LevelAdministration:
		return "administration"
	case LevelFacultySenate:
		return "faculty_senate"
	case LevelBoard:
		return "board"
	default:
		return "unknown"
	}
}

// ParseApprovalLevel resolves the wire name of an approval level.
func ParseApprovalLevel(name string) (ApprovalLevel, bool) {
	switch name {
	case "department":
		return LevelDepartment, true
	case "administration":
		return LevelAdministration, true
	case "faculty_senate":
		return LevelFacultySenate, true
	case "board":
		return LevelBoard, true
	default:
		return 0, false
	}
}

// ParsePolicyType resolves the wire name of a policy type.
func ParsePolicyType(name string) (PolicyType, bool) {
	switch name {
	case "governance":
		return TypeGovernance, true
	case "academic":
		return TypeAcademic, true
	case "administrative":
		return TypeAdministrative, true
	case "compliance":
		return TypeCompliance, true
	default:
		return 0, false
	}
}

// Approval is an append-only record of one approval of one version.
type Approval struct {
	Approver   string        `json:"approver"`
	Level      ApprovalLevel `json:"level"`
	Comment    string        `json:"comment,omitempty"`
	ApprovedAt time.Time     `json:"approved_at"`
}

// Review is an append-only review record attached to a version.
type Review struct {
	Reviewer   string    `json:"reviewer"`
	Comment    string    `json:"comment"`
	ReviewedAt time.Time `json:"reviewed_at"`
}

// Version is one addressable revision of a policy's content. Old
// versions are never retired; they stay in the policy's version map.
type Version struct {
	Version   string            `json:"version"`
	Content   string            `json:"content"`
	Sections  map[string]string `json:"sections"`
	CreatedAt time.Time         `json:"created_at"`
	CreatedBy string            `json:"created_by"`
	Approvals []Approval        `json:"approvals"`
	Reviews   []Review          `json:"reviews"`
}

// ApprovedLevels returns the set of approval levels recorded so far.
func (v *Version) ApprovedLevels() map[ApprovalLevel]bool {
	levels := make(map[ApprovalLevel]bool, len(v.Approvals))
	for _, a := range v.Approvals {
		levels[a.Level] = true
	}
	return levels
}

// Policy is a versioned governance document. Invariant: CurrentVersion
// always keys into Versions.
type Policy struct {
	ID     uuid.UUID    `json:"id"`
	Title  string       `json:"title"`
	Type   PolicyType   `json:"type"`
	Status PolicyStatus `json:"status"`
	Owner  string       `json:"owner"`

	Versions       map[string]*Version `json:"versions"`
	CurrentVersion string              `json:"current_version"`

	EffectiveDate  *time.Time `json:"effective_date,omitempty"`
	ExpiryDate     *time.Time `json:"expiry_date,omitempty"`
	NextReviewDate *time.Time `json:"next_review_date,omitempty"`

	ReviewFrequencyDays int             `json:"review_frequency_days"`
	Frameworks          []string        `json:"frameworks"`
	RequiredApprovals   []ApprovalLevel `json:"required_approvals"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func New(title string, policyType PolicyType, owner, author, content string, sections map[string]string) *Policy {
	now := time.Now()
	initial := &Version{
		Version:   "1.0",
		Content:   content,
		Sections:  sections,
		CreatedAt: now,
		CreatedBy: author,
	}
	return &Policy{
		ID:                  uuid.New(),
		Title:               title,
		Type:                policyType,
		Status:              StatusDraft,
		Owner:               owner,
		Versions:            map[string]*Version{"1.0": initial},
		CurrentVersion:      "1.0",
		ReviewFrequencyDays: 365,
		RequiredApprovals:   RequiredLevelsForType(policyType),
		CreatedAt:           now,
		UpdatedAt:           now,
	}
}

// Clone returns a deep copy. Accessors hand clones to callers so that
// encoding a result never races with a concurrent mutation of the
// stored policy.
func (p *Policy) Clone() *Policy {
	c := *p
	c.Frameworks = append([]string(nil), p.Frameworks...)
	c.RequiredApprovals = append([]ApprovalLevel(nil), p.RequiredApprovals...)
	c.EffectiveDate = copyTime(p.EffectiveDate)
	c.ExpiryDate = copyTime(p.ExpiryDate)
	c.NextReviewDate = copyTime(p.NextReviewDate)
	c.Versions = make(map[string]*Version, len(p.Versions))
	for key, v := range p.Versions {
		vc := *v
		vc.Sections = make(map[string]string, len(v.Sections))
		for k, s := range v.Sections {
			vc.Sections[k] = s
		}
		vc.Approvals = append([]Approval(nil), v.Approvals...)
		vc.Reviews = append([]Review(nil), v.Reviews...)
		c.Versions[key] = &vc
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

// Current returns the version CurrentVersion points at.
func (p *Policy) Current() *Version {
	return p.Versions[p.CurrentVersion]
}

// SubmitForReview moves a draft into review.
func (p *Policy) SubmitForReview() error {
	if p.Status != StatusDraft {
		return fmt.Errorf("cannot submit policy in status %s for review", p.Status)
	}
	p.Status = StatusReview
	p.UpdatedAt = time.Now()
	return nil
}

// Approve appends an approval to the current version and promotes the
// policy to approved once every required level has signed off. A strict
// subset of the required levels never promotes.
func (p *Policy) Approve(approver string, level ApprovalLevel, comment string) error {
	if p.Status != StatusReview {
		return fmt.Errorf("cannot approve policy in status %s", p.Status)
	}
	current := p.Current()
	if current == nil {
		return fmt.Errorf("policy %s has no current version", p.ID)
	}
	now := time.Now()
	current.Approvals = append(current.Approvals, Approval{
		Approver:   approver,
		Level:      level,
		Comment:    comment,
		ApprovedAt: now,
	})
	p.UpdatedAt = now

	recorded := current.ApprovedLevels()
	for _, req := range p.RequiredApprovals {
		if !recorded[req] {
			return nil
		}
	}
	p.Status = StatusApproved
	p.EffectiveDate = &now
	return nil
}

// Activate puts an approved policy into force and schedules its next
// review.
func (p *Policy) Activate() error {
	if p.Status != StatusApproved {
		return fmt.Errorf("cannot activate policy in status %s", p.Status)
	}
	now := time.Now()
	next := now.Add(time.Duration(p.ReviewFrequencyDays) * 24 * time.Hour)
	p.Status = StatusActive
	p.NextReviewDate = &next
	p.UpdatedAt = now
	return nil
}

// Deprecate retires an active policy.
func (p *Policy) Deprecate() error {
	if p.Status != StatusActive {
		return fmt.Errorf("cannot deprecate policy in status %s", p.Status)
	}
	p.Status = StatusDeprecated
	p.UpdatedAt = time.Now()
	return nil
}

// Archive archives a deprecated or active policy.
func (p *Policy) Archive() error {
	if p.Status != StatusActive && p.Status != StatusDeprecated {
		return fmt.Errorf("cannot archive policy in status %s", p.Status)
	}
	p.Status = StatusArchived
	p.UpdatedAt = time.Now()
	return nil
}

// NewVersion increments the version number by 0.1, copies the prior
// content and sections as the draft baseline, and resets the policy to
// draft. The previous version remains addressable.
func (p *Policy) NewVersion(author string) (string, error) {
	current := p.Current()
	if current == nil {
		return "", fmt.Errorf("policy %s has no current version", p.ID)
	}
	prev, err := strconv.ParseFloat(current.Version, 64)
	if err != nil {
		return "", fmt.Errorf("current version %q is not numeric: %w", current.Version, err)
	}
	next := fmt.Sprintf("%.1f", prev+0.1)

	now := time.Now()
	sections := make(map[string]string, len(current.Sections))
	for k, v := range current.Sections {
		sections[k] = v
	}
	p.Versions[next] = &Version{
		Version:   next,
		Content:   current.Content,
		Sections:  sections,
		CreatedAt: now,
		CreatedBy: author,
	}
	p.CurrentVersion = next
	p.Status = StatusDraft
	p.UpdatedAt = now
	return next, nil
}

// AddReview appends a review record to the current version.
func (p *Policy) AddReview(reviewer, comment string) error {
	current := p.Current()
	if current == nil {
		return fmt.Errorf("policy %s has no current version", p.ID)
	}
	current.Reviews = append(current.Reviews, Review{
		Reviewer:   reviewer,
		Comment:    comment,
		ReviewedAt: time.Now(),
	})
	p.UpdatedAt = time.Now()
	return nil
}

// IsDueForReview reports whether an active policy has reached its next
// review date.
func (p *Policy) IsDueForReview(now time.Time) bool {
	if p.Status != StatusActive || p.NextReviewDate == nil {
		return false
	}
	return !p.NextReviewDate.After(now)
}
