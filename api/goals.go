package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/skillfolio/backend/internal/rules"
	"github.com/skillfolio/backend/pkg/models"
	"github.com/skillfolio/backend/pkg/repository"
)

type GoalsHandler struct {
	goalRepo    repository.GoalRepo
	stepRepo    repository.GoalStepRepo
	projectRepo repository.ProjectRepo
}

func NewGoalsHandler(gr repository.GoalRepo, sr repository.GoalStepRepo, pr repository.ProjectRepo) *GoalsHandler {
	return &GoalsHandler{goalRepo: gr, stepRepo: sr, projectRepo: pr}
}

// goalResponse decorates a stored goal with its derived progress
// metrics and nested read-only steps.
type goalResponse struct {
	models.Goal
	ProgressPercent      float64           `json:"progress_percent"`
	StepsProgressPercent int               `json:"steps_progress_percent"`
	StepsTotal           int               `json:"steps_total"`
	StepsCompleted       int               `json:"steps_completed"`
	Steps                []models.GoalStep `json:"steps"`
}

type goalRequest struct {
	Title          *string      `json:"title"`
	TargetProjects *int         `json:"target_projects"`
	Deadline       *models.Date `json:"deadline"`
	TotalSteps     *int         `json:"total_steps"`
	CompletedSteps *int         `json:"completed_steps"`
}

// buildGoalResponse derives the progress numbers for one goal. Named
// steps win over the bare integer counters; the project percentage
// counts every completed project the user has.
func (h *GoalsHandler) buildGoalResponse(r *http.Request, caller int64, g *models.Goal) (*goalResponse, error) {
	steps, err := h.stepRepo.ListGoalSteps(r.Context(), caller, repository.StepFilter{GoalID: &g.ID})
	if err != nil {
		return nil, err
	}

	namedDone := 0
	for _, s := range steps {
		if s.IsDone {
			namedDone++
		}
	}

	completedProjects, err := h.projectRepo.CountCompletedProjects(r.Context(), caller)
	if err != nil {
		return nil, err
	}

	return &goalResponse{
		Goal:                 *g,
		ProgressPercent:      rules.ProjectProgressPercent(completedProjects, g.TargetProjects),
		StepsProgressPercent: rules.StepProgressPercent(len(steps), namedDone, g.TotalSteps, g.CompletedSteps),
		StepsTotal:           len(steps),
		StepsCompleted:       namedDone,
		Steps:                steps,
	}, nil
}

func (h *GoalsHandler) List(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerID(r)
	if !ok {
		errorDetail(w, http.StatusUnauthorized, "Authentication credentials were not provided.")
		return
	}

	q := r.URL.Query()
	f := repository.GoalFilter{
		Search:   q.Get("search"),
		Ordering: q.Get("ordering"),
	}
	if raw := q.Get("deadline"); raw != "" {
		d, err := models.ParseDate(raw)
		if err != nil {
			fieldError(w, "deadline", "Enter a valid date.")
			return
		}
		f.Deadline = &d
	}

	goals, err := h.goalRepo.ListGoals(r.Context(), caller, f)
	if err != nil {
		errorDetail(w, http.StatusInternalServerError, "Error listing goals.")
		return
	}

	out := make([]goalResponse, 0, len(goals))
	for i := range goals {
		resp, err := h.buildGoalResponse(r, caller, &goals[i])
		if err != nil {
			errorDetail(w, http.StatusInternalServerError, "Error listing goals.")
			return
		}
		out = append(out, *resp)
	}

	writeJSON(w, out, http.StatusOK)
}

func (h *GoalsHandler) Retrieve(w http.ResponseWriter, r *http.Request) {
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

	g, err := h.goalRepo.GetGoal(r.Context(), caller, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			errorDetail(w, http.StatusNotFound, "Not found.")
			return
		}
		errorDetail(w, http.StatusInternalServerError, "Error loading goal.")
		return
	}

	resp, err := h.buildGoalResponse(r, caller, g)
	if err != nil {
		errorDetail(w, http.StatusInternalServerError, "Error loading goal.")
		return
	}

	writeJSON(w, resp, http.StatusOK)
}

func (h *GoalsHandler) Create(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerID(r)
	if !ok {
		errorDetail(w, http.StatusUnauthorized, "Authentication credentials were not provided.")
		return
	}

	var req goalRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Title == nil || strings.TrimSpace(*req.Title) == "" {
		fieldError(w, "title", "This field is required.")
		return
	}
	if req.TargetProjects == nil {
		fieldError(w, "target_projects", "This field is required.")
		return
	}
	if req.Deadline == nil || req.Deadline.IsZero() {
		fieldError(w, "deadline", "This field is required.")
		return
	}

	g := &models.Goal{UserID: caller}
	if !applyGoalRequest(w, g, &req) {
		return
	}

	id, err := h.goalRepo.CreateGoal(r.Context(), g)
	if err != nil {
		errorDetail(w, http.StatusInternalServerError, "Error creating goal.")
		return
	}

	created, err := h.goalRepo.GetGoal(r.Context(), caller, id)
	if err != nil {
		errorDetail(w, http.StatusInternalServerError, "Error loading goal.")
		return
	}
	resp, err := h.buildGoalResponse(r, caller, created)
	if err != nil {
		errorDetail(w, http.StatusInternalServerError, "Error loading goal.")
		return
	}

	writeJSON(w, resp, http.StatusCreated)
}

func (h *GoalsHandler) Update(w http.ResponseWriter, r *http.Request) {
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

	g, err := h.goalRepo.GetGoal(r.Context(), caller, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			errorDetail(w, http.StatusNotFound, "Not found.")
			return
		}
		errorDetail(w, http.StatusInternalServerError, "Error loading goal.")
		return
	}

	var req goalRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Title != nil && strings.TrimSpace(*req.Title) == "" {
		fieldError(w, "title", "This field may not be blank.")
		return
	}

	if !applyGoalRequest(w, g, &req) {
		return
	}

	if err := h.goalRepo.UpdateGoal(r.Context(), caller, g); err != nil {
		errorDetail(w, http.StatusInternalServerError, "Error updating goal.")
		return
	}

	updated, err := h.goalRepo.GetGoal(r.Context(), caller, id)
	if err != nil {
		errorDetail(w, http.StatusInternalServerError, "Error loading goal.")
		return
	}
	resp, err := h.buildGoalResponse(r, caller, updated)
	if err != nil {
		errorDetail(w, http.StatusInternalServerError, "Error loading goal.")
		return
	}

	writeJSON(w, resp, http.StatusOK)
}

func (h *GoalsHandler) Delete(w http.ResponseWriter, r *http.Request) {
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

	if err := h.goalRepo.DeleteGoal(r.Context(), caller, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			errorDetail(w, http.StatusNotFound, "Not found.")
			return
		}
		errorDetail(w, http.StatusInternalServerError, "Error deleting goal.")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// applyGoalRequest merges the request into g and validates it. Returns
// false after writing a field error.
func applyGoalRequest(w http.ResponseWriter, g *models.Goal, req *goalRequest) bool {
	if req.Title != nil {
		g.Title = strings.TrimSpace(*req.Title)
	}
	if req.TargetProjects != nil {
		g.TargetProjects = *req.TargetProjects
	}
	if req.Deadline != nil {
		g.Deadline = *req.Deadline
	}
	if req.TotalSteps != nil {
		g.TotalSteps = *req.TotalSteps
	}
	if req.CompletedSteps != nil {
		g.CompletedSteps = *req.CompletedSteps
	}

	if g.TargetProjects < 1 {
		fieldError(w, "target_projects", "Ensure this value is greater than or equal to 1.")
		return false
	}
	if req.Deadline != nil && g.Deadline.Before(models.Today().Time) {
		fieldError(w, "deadline", "deadline cannot be in the past.")
		return false
	}
	if g.TotalSteps < 0 {
		fieldError(w, "total_steps", "Ensure this value is greater than or equal to 0.")
		return false
	}
	if g.CompletedSteps < 0 {
		fieldError(w, "completed_steps", "Ensure this value is greater than or equal to 0.")
		return false
	}
	// completed can never exceed total; clamped, not rejected
	g.CompletedSteps = rules.ClampCompletedSteps(g.CompletedSteps, g.TotalSteps)

	return true
}
