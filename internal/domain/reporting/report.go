package reporting

import (
	"time"

	"github.com/google/uuid"
)

type ReportType int

const (
	ReportComplianceSummary ReportType = iota
	ReportAuditSummary
	ReportPolicyStatus
	ReportGovernanceOverview
)

func (t ReportType) String() string {
	switch t {
	case ReportComplianceSummary:
		return "compliance_summary"
	case ReportAuditSummary:
		return "audit_summary"
	case ReportPolicyStatus:
		return "policy_status"
	case ReportGovernanceOverview:
		return "governance_overview"
	default:
		return "unknown"
	}
}

// ParseReportType resolves the wire name of a report type.
func ParseReportType(name string) (ReportType, bool) {
	switch name {
	case "compliance_summary":
		return ReportComplianceSummary, true
	case "audit_summary":
		return ReportAuditSummary, true
	case "policy_status":
		return ReportPolicyStatus, true
	case "governance_overview":
		return ReportGovernanceOverview, true
	default:
		return 0, false
	}
}

type ReportFormat int

const (
	FormatJSON ReportFormat = iota
	FormatHTML
	FormatMarkdown
)

func (f ReportFormat) String() string {
	switch f {
	case FormatJSON:
		return "json"
	case FormatHTML:
		return "html"
	case FormatMarkdown:
		return "markdown"
	default:
		return "unknown"
	}
}

func ParseReportFormat(name string) (ReportFormat, bool) {
	switch name {
	case "json":
		return FormatJSON, true
	case "html":
		return FormatHTML, true
	case "markdown":
		return FormatMarkdown, true
	default:
		return 0, false
	}
}

// Report is a generated, timestamped content bundle. Immutable once
// created.
type Report struct {
	ID          uuid.UUID      `json:"id"`
	Type        ReportType     `json:"type"`
	Title       string         `json:"title"`
	GeneratedAt time.Time      `json:"generated_at"`
	GeneratedBy string         `json:"generated_by"`
	Format      ReportFormat   `json:"format"`
	Content     map[string]any `json:"content"`
	Metadata    map[string]any `json:"metadata"`
}

func NewReport(reportType ReportType, title, generatedBy string, format ReportFormat) *Report {
	return &Report{
		ID:          uuid.New(),
		Type:        reportType,
		Title:       title,
		GeneratedAt: time.Now(),
		GeneratedBy: generatedBy,
		Format:      format,
		Content:     make(map[string]any),
		Metadata:    make(map[string]any),
	}
}
