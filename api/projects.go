package api

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/skillfolio/backend/internal/rules"
	"github.com/skillfolio/backend/pkg/models"
	"github.com/skillfolio/backend/pkg/repository"
)

type ProjectsHandler struct {
	projectRepo repository.ProjectRepo
	certRepo    repository.CertificateRepo
}

func NewProjectsHandler(pr repository.ProjectRepo, cr repository.CertificateRepo) *ProjectsHandler {
	return &ProjectsHandler{projectRepo: pr, certRepo: cr}
}

// projectRequest uses pointers so PATCH can distinguish "absent" from
// "set". A JSON null on a date behaves like an absent field; end dates
// are normalized by the rule engine anyway.
type projectRequest struct {
	CertificateID   *int64       `json:"certificate"`
	Title           *string      `json:"title"`
	Status          *string      `json:"status"`
	WorkType        *string      `json:"work_type"`
	StartDate       *models.Date `json:"start_date"`
	EndDate         *models.Date `json:"end_date"`
	PrimaryGoal     *string      `json:"primary_goal"`
	ProblemSolved   *string      `json:"problem_solved"`
	ToolsUsed       *string      `json:"tools_used"`
	SkillsUsed      *string      `json:"skills_used"`
	ChallengesShort *string      `json:"challenges_short"`
	SkillsToImprove *string      `json:"skills_to_improve"`
	Description     *string      `json:"description"`
}

// driverProvided reports whether the request touches any field that
// drives the generated description.
func (req *projectRequest) driverProvided() bool {
	return req.Title != nil || req.Status != nil || req.WorkType != nil ||
		req.StartDate != nil || req.EndDate != nil || req.PrimaryGoal != nil ||
		req.ProblemSolved != nil || req.ToolsUsed != nil || req.SkillsUsed != nil ||
		req.ChallengesShort != nil || req.SkillsToImprove != nil
}

func (h *ProjectsHandler) List(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerID(r)
	if !ok {
		errorDetail(w, http.StatusUnauthorized, "Authentication credentials were not provided.")
		return
	}

	q := r.URL.Query()
	f := repository.ProjectFilter{
		Status:   q.Get("status"),
		WorkType: q.Get("work_type"),
		Search:   q.Get("search"),
		Ordering: q.Get("ordering"),
	}
	// certificateId is a frontend-compatibility alias for certificate
	raw := q.Get("certificate")
	if raw == "" {
		raw = q.Get("certificateId")
	}
	if raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			fieldError(w, "certificate", "Enter a number.")
			return
		}
		f.CertificateID = &id
	}

	projects, err := h.projectRepo.ListProjects(r.Context(), caller, f)
	if err != nil {
		errorDetail(w, http.StatusInternalServerError, "Error listing projects.")
		return
	}

	writeJSON(w, projects, http.StatusOK)
}

func (h *ProjectsHandler) Retrieve(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerID(r)
	if !ok {
		errorDetail(w, http.StatusUnauthorized, "Authentication credentials were not provided.")
		return
	}
	id, ok := pathID(r)
	if !ok {
		errorDetail(w, http.StatusNotFound, "Not found.")
		return
	}

	p, err := h.projectRepo.GetProject(r.Context(), caller, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			errorDetail(w, http.StatusNotFound, "Not found.")
			return
		}
		errorDetail(w, http.StatusInternalServerError, "Error loading project.")
		return
	}

	writeJSON(w, p, http.StatusOK)
}

func (h *ProjectsHandler) Create(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerID(r)
	if !ok {
		errorDetail(w, http.StatusUnauthorized, "Authentication credentials were not provided.")
		return
	}

	var req projectRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Title == nil || strings.TrimSpace(*req.Title) == "" {
		fieldError(w, "title", "This field is required.")
		return
	}

	p := &models.Project{UserID: caller}
	applyProjectRequest(p, &req)

	if !h.checkCertificate(w, r, caller, p.CertificateID) {
		return
	}

	fields := projectFieldsOf(p)
	if ferr := rules.ValidateProject(&fields, models.Today()); ferr != nil {
		fieldError(w, ferr.Field, ferr.Message)
		return
	}
	writeRuleResults(p, fields)

	// generate only when the client left the description blank
	explicit := req.Description != nil && strings.TrimSpace(*req.Description) != ""
	if explicit {
		p.Description = strings.TrimSpace(*req.Description)
	} else {
		p.Description = rules.BuildDescription(fields)
	}

	id, err := h.projectRepo.CreateProject(r.Context(), p)
	if err != nil {
		errorDetail(w, http.StatusInternalServerError, "Error creating project.")
		return
	}

	created, err := h.projectRepo.GetProject(r.Context(), caller, id)
	if err != nil {
		errorDetail(w, http.StatusInternalServerError, "Error loading project.")
		return
	}

	writeJSON(w, created, http.StatusCreated)
}

func (h *ProjectsHandler) Update(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerID(r)
	if !ok {
		errorDetail(w, http.StatusUnauthorized, "Authentication credentials were not provided.")
		return
	}
	id, ok := pathID(r)
	if !ok {
		errorDetail(w, http.StatusNotFound, "Not found.")
		return
	}

	p, err := h.projectRepo.GetProject(r.Context(), caller, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			errorDetail(w, http.StatusNotFound, "Not found.")
			return
		}
		errorDetail(w, http.StatusInternalServerError, "Error loading project.")
		return
	}

	var req projectRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Title != nil && strings.TrimSpace(*req.Title) == "" {
		fieldError(w, "title", "This field may not be blank.")
		return
	}

	applyProjectRequest(p, &req)

	if req.CertificateID != nil && !h.checkCertificate(w, r, caller, p.CertificateID) {
		return
	}

	fields := projectFieldsOf(p)
	if ferr := rules.ValidateProject(&fields, models.Today()); ferr != nil {
		fieldError(w, ferr.Field, ferr.Message)
		return
	}
	writeRuleResults(p, fields)

	// An explicit non-blank description always wins. A blank one is
	// treated as absent. Otherwise the description is rebuilt whenever a
	// driver field was touched.
	explicit := req.Description != nil && strings.TrimSpace(*req.Description) != ""
	switch {
	case explicit:
		p.Description = strings.TrimSpace(*req.Description)
	case req.driverProvided():
		p.Description = rules.BuildDescription(fields)
	}

	if err := h.projectRepo.UpdateProject(r.Context(), caller, p); err != nil {
		errorDetail(w, http.StatusInternalServerError, "Error updating project.")
		return
	}

	updated, err := h.projectRepo.GetProject(r.Context(), caller, id)
	if err != nil {
		errorDetail(w, http.StatusInternalServerError, "Error loading project.")
		return
	}

	writeJSON(w, updated, http.StatusOK)
}

func (h *ProjectsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerID(r)
	if !ok {
		errorDetail(w, http.StatusUnauthorized, "Authentication credentials were not provided.")
		return
	}
	id, ok := pathID(r)
	if !ok {
		errorDetail(w, http.StatusNotFound, "Not found.")
		return
	}

	if err := h.projectRepo.DeleteProject(r.Context(), caller, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			errorDetail(w, http.StatusNotFound, "Not found.")
			return
		}
		errorDetail(w, http.StatusInternalServerError, "Error deleting project.")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// checkCertificate verifies the linked certificate exists and belongs
// to the caller.
func (h *ProjectsHandler) checkCertificate(w http.ResponseWriter, r *http.Request, caller int64, certID *int64) bool {
	if certID == nil {
		return true
	}
	if _, err := h.certRepo.GetCertificate(r.Context(), caller, *certID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			fieldError(w, "certificate", "Invalid certificate.")
			return false
		}
		errorDetail(w, http.StatusInternalServerError, "Error loading certificate.")
		return false
	}
	return true
}

func applyProjectRequest(p *models.Project, req *projectRequest) {
	if req.CertificateID != nil {
		if *req.CertificateID == 0 {
			p.CertificateID = nil
		} else {
			p.CertificateID = req.CertificateID
		}
	}
	if req.Title != nil {
		p.Title = strings.TrimSpace(*req.Title)
	}
	if req.Status != nil {
		p.Status = *req.Status
	}
	if req.WorkType != nil {
		p.WorkType = *req.WorkType
	}
	if req.StartDate != nil {
		p.StartDate = req.StartDate
	}
	if req.EndDate != nil {
		p.EndDate = req.EndDate
	}
	if req.PrimaryGoal != nil {
		p.PrimaryGoal = *req.PrimaryGoal
	}
	if req.ProblemSolved != nil {
		p.ProblemSolved = *req.ProblemSolved
	}
	if req.ToolsUsed != nil {
		p.ToolsUsed = *req.ToolsUsed
	}
	if req.SkillsUsed != nil {
		p.SkillsUsed = *req.SkillsUsed
	}
	if req.ChallengesShort != nil {
		p.ChallengesShort = *req.ChallengesShort
	}
	if req.SkillsToImprove != nil {
		p.SkillsToImprove = *req.SkillsToImprove
	}
}

func projectFieldsOf(p *models.Project) rules.ProjectFields {
	return rules.ProjectFields{
		Title:           p.Title,
		Status:          p.Status,
		WorkType:        p.WorkType,
		StartDate:       p.StartDate,
		EndDate:         p.EndDate,
		PrimaryGoal:     p.PrimaryGoal,
		ProblemSolved:   p.ProblemSolved,
		ToolsUsed:       p.ToolsUsed,
		SkillsUsed:      p.SkillsUsed,
		ChallengesShort: p.ChallengesShort,
		SkillsToImprove: p.SkillsToImprove,
	}
}

// writeRuleResults copies back the normalized status/end date and syncs
// duration_text, which only completed projects carry.
func writeRuleResults(p *models.Project, fields rules.ProjectFields) {
	p.Status = fields.Status
	p.EndDate = fields.EndDate

	if fields.Status == models.StatusCompleted {
		if dur := rules.DurationText(fields.StartDate, fields.EndDate); dur != "" {
			p.DurationText = &dur
			return
		}
	}
	p.DurationText = nil
}
