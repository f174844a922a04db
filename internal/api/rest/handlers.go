package rest

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	auditdomain "github.com/collegiumai/governance-backend/internal/domain/audit"
	compliancedomain "github.com/collegiumai/governance-backend/internal/domain/compliance"
	policydomain "github.com/collegiumai/governance-backend/internal/domain/policy"
	reportingdomain "github.com/collegiumai/governance-backend/internal/domain/reporting"
	auditsvc "github.com/collegiumai/governance-backend/internal/service/audit"
	compliancesvc "github.com/collegiumai/governance-backend/internal/service/compliance"
	policysvc "github.com/collegiumai/governance-backend/internal/service/policy"
)

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload != nil {
		_ = json.NewEncoder(w).Encode(payload)
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]string{"error": message})
}

func (s *Server) pathID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid id")
		return uuid.Nil, false
	}
	return id, true
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"version": s.app.Config.Version,
	})
}

// --- compliance ---

func (s *Server) handleListFrameworks(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.app.Compliance.Frameworks())
}

func (s *Server) handleComplianceSummary(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.app.Compliance.Summary())
}

func (s *Server) handleAssessFramework(w http.ResponseWriter, r *http.Request) {
	framework := chi.URLParam(r, "framework")
	var body struct {
		Assessor string `json:"assessor"`
	}
	_ = json.NewDecoder(r.Body).Decode(&body)

	assessment, err := s.app.Compliance.AssessFramework(r.Context(), framework, compliancesvc.AssessmentInput{Assessor: body.Assessor})
	if err != nil {
		s.writeError(w, http.StatusNotFound, err.Error())
		return
	}
	s.writeJSON(w, http.StatusCreated, assessment)
}

func (s *Server) handleSubmitEvidence(w http.ResponseWriter, r *http.Request) {
	framework := chi.URLParam(r, "framework")
	var body struct {
		StandardID  string     `json:"standard_id"`
		Type        string     `json:"type"`
		Title       string     `json:"title"`
		Description string     `json:"description"`
		Location    string     `json:"location"`
		ExpiresAt   *time.Time `json:"expires_at"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	kind, ok := compliancedomain.ParseEvidenceType(body.Type)
	if !ok {
		s.writeError(w, http.StatusBadRequest, "unknown evidence type")
		return
	}

	ev := compliancedomain.NewEvidence(body.StandardID, kind, body.Title, body.Description)
	ev.Location = body.Location
	ev.ExpiresAt = body.ExpiresAt

	if !s.app.Compliance.SubmitEvidence(framework, ev) {
		s.writeError(w, http.StatusNotFound, "unknown framework or standard")
		return
	}
	s.writeJSON(w, http.StatusCreated, ev)
}

func (s *Server) handleComprehensiveCheck(w http.ResponseWriter, r *http.Request) {
	result, err := s.app.Integration.RunComprehensiveComplianceCheck(r.Context())
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, result)
}

// --- audits ---

func (s *Server) handleListAudits(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.app.Audits.ListAudits())
}

func (s *Server) handleCreateAudit(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Title        string            `json:"title"`
		Type         string            `json:"type"`
		Scope        auditdomain.Scope `json:"scope"`
		LeadAuditor  string            `json:"lead_auditor"`
		Team         []string          `json:"team"`
		PlannedStart time.Time         `json:"planned_start"`
		PlannedEnd   time.Time         `json:"planned_end"`
		Checklist    []string          `json:"checklist"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	auditType, ok := auditdomain.ParseAuditType(body.Type)
	if !ok {
		auditType = auditdomain.TypeInternal
	}

	created, err := s.app.Audits.CreateAudit(auditsvc.CreateAuditRequest{
		Title:        body.Title,
		Type:         auditType,
		Scope:        body.Scope,
		LeadAuditor:  body.LeadAuditor,
		Team:         body.Team,
		PlannedStart: body.PlannedStart,
		PlannedEnd:   body.PlannedEnd,
		Checklist:    body.Checklist,
	})
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleAuditProgress(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r)
	if !ok {
		return
	}
	progress := s.app.Audits.GetAuditProgress(id)
	if progress == nil {
		s.writeError(w, http.StatusNotFound, "audit not found")
		return
	}
	s.writeJSON(w, http.StatusOK, progress)
}

func (s *Server) handleStartAudit(w http.ResponseWriter, r *http.Request) {
	s.handleAuditTransition(w, r, s.app.Audits.StartAudit)
}

func (s *Server) handleCompleteAudit(w http.ResponseWriter, r *http.Request) {
	s.handleAuditTransition(w, r, s.app.Audits.CompleteAudit)
}

func (s *Server) handleAuditTransition(w http.ResponseWriter, r *http.Request, apply func(uuid.UUID) bool) {
	id, ok := s.pathID(w, r)
	if !ok {
		return
	}
	if !apply(id) {
		s.writeError(w, http.StatusConflict, "transition not applicable")
		return
	}
	s.writeJSON(w, http.StatusOK, s.app.Audits.GetAudit(id))
}

func (s *Server) handleCompleteChecklistItem(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r)
	if !ok {
		return
	}
	item := chi.URLParam(r, "item")
	var body struct {
		CompletedBy string `json:"completed_by"`
		Notes       string `json:"notes"`
	}
	_ = json.NewDecoder(r.Body).Decode(&body)

	if !s.app.Audits.CompleteChecklistItem(id, item, body.CompletedBy, body.Notes) {
		s.writeError(w, http.StatusNotFound, "unknown audit or checklist item")
		return
	}
	s.writeJSON(w, http.StatusOK, s.app.Audits.GetAuditProgress(id))
}

// --- policies ---

func (s *Server) handleListPolicies(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.app.Policies.ListPolicies())
}

func (s *Server) handleCreatePolicy(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Title    string            `json:"title"`
		Type     string            `json:"type"`
		Owner    string            `json:"owner"`
		Author   string            `json:"author"`
		Content  string            `json:"content"`
		Sections map[string]string `json:"sections"`
		Template string            `json:"template"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if body.Template != "" {
		created := s.app.Policies.CreatePolicyFromTemplate(body.Template, body.Title, body.Owner, body.Author)
		if created == nil {
			s.writeError(w, http.StatusNotFound, "unknown template")
			return
		}
		s.writeJSON(w, http.StatusCreated, created)
		return
	}

	policyType, ok := policydomain.ParsePolicyType(body.Type)
	if !ok {
		policyType = policydomain.TypeGovernance
	}
	created, err := s.app.Policies.CreatePolicy(policysvc.CreatePolicyRequest{
		Title:    body.Title,
		Type:     policyType,
		Owner:    body.Owner,
		Author:   body.Author,
		Content:  body.Content,
		Sections: body.Sections,
	})
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handlePoliciesForReview(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.app.Policies.GetPoliciesForReview())
}

func (s *Server) handleSubmitPolicy(w http.ResponseWriter, r *http.Request) {
	s.handlePolicyTransition(w, r, s.app.Policies.SubmitForReview)
}

func (s *Server) handleActivatePolicy(w http.ResponseWriter, r *http.Request) {
	s.handlePolicyTransition(w, r, s.app.Policies.ActivatePolicy)
}

func (s *Server) handlePolicyTransition(w http.ResponseWriter, r *http.Request, apply func(uuid.UUID) bool) {
	id, ok := s.pathID(w, r)
	if !ok {
		return
	}
	if !apply(id) {
		s.writeError(w, http.StatusConflict, "transition not applicable")
		return
	}
	s.writeJSON(w, http.StatusOK, s.app.Policies.GetPolicy(id))
}

func (s *Server) handleApprovePolicy(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r)
	if !ok {
		return
	}
	var body struct {
		Approver string `json:"approver"`
		Level    string `json:"level"`
		Comment  string `json:"comment"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	level, ok := policydomain.ParseApprovalLevel(body.Level)
	if !ok {
		s.writeError(w, http.StatusBadRequest, "unknown approval level")
		return
	}

	if !s.app.Policies.ApprovePolicy(id, body.Approver, level, body.Comment) {
		s.writeError(w, http.StatusConflict, "approval not applicable")
		return
	}
	s.writeJSON(w, http.StatusOK, s.app.Policies.GetPolicy(id))
}

func (s *Server) handleNewPolicyVersion(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r)
	if !ok {
		return
	}
	var body struct {
		Author string `json:"author"`
	}
	_ = json.NewDecoder(r.Body).Decode(&body)

	version := s.app.Policies.CreateNewVersion(id, body.Author)
	if version == "" {
		s.writeError(w, http.StatusNotFound, "policy not found")
		return
	}
	s.writeJSON(w, http.StatusCreated, map[string]string{"version": version})
}

// --- reports & dashboards ---

func (s *Server) handleListReports(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.app.Reporting.ListReports())
}

func (s *Server) handleGenerateReport(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Type        string `json:"type"`
		Format      string `json:"format"`
		RequestedBy string `json:"requested_by"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	reportType, ok := reportingdomain.ParseReportType(body.Type)
	if !ok {
		s.writeError(w, http.StatusBadRequest, "unsupported report type")
		return
	}
	format, ok := reportingdomain.ParseReportFormat(body.Format)
	if !ok {
		format = reportingdomain.FormatJSON
	}

	report, err := s.app.Reporting.GenerateReport(r.Context(), reportType, format, body.RequestedBy)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.writeJSON(w, http.StatusCreated, report)
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	dashboard := s.app.Reporting.GetDashboard(id)
	if dashboard == nil {
		s.writeError(w, http.StatusNotFound, "dashboard not found")
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{
		"dashboard": dashboard,
		"data":      s.app.Reporting.GetDashboardData(id),
	})
}

// --- alerts ---

func (s *Server) handleListAlerts(w http.ResponseWriter, r *http.Request) {
	openOnly := r.URL.Query().Get("open") == "true"
	s.writeJSON(w, http.StatusOK, s.app.Integration.ListAlerts(openOnly))
}
