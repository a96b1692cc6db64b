package api

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/skillfolio/backend/pkg/models"
	"github.com/skillfolio/backend/pkg/repository"
)

type GoalStepsHandler struct {
	stepRepo repository.GoalStepRepo
	goalRepo repository.GoalRepo
}

func NewGoalStepsHandler(sr repository.GoalStepRepo, gr repository.GoalRepo) *GoalStepsHandler {
	return &GoalStepsHandler{stepRepo: sr, goalRepo: gr}
}

type goalStepRequest struct {
	GoalID *int64  `json:"goal"`
	Title  *string `json:"title"`
	IsDone *bool   `json:"is_done"`
	Order  *int    `json:"order"`
}

func (h *GoalStepsHandler) List(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerID(r)
	if !ok {
		errorDetail(w, http.StatusUnauthorized, "Authentication credentials were not provided.")
		return
	}

	q := r.URL.Query()
	f := repository.StepFilter{Ordering: q.Get("ordering")}
	if raw := q.Get("goal"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			fieldError(w, "goal", "Enter a number.")
			return
		}
		f.GoalID = &id
	}

	steps, err := h.stepRepo.ListGoalSteps(r.Context(), caller, f)
	if err != nil {
		errorDetail(w, http.StatusInternalServerError, "Error listing goal steps.")
		return
	}

	// is_done filtering happens here; the repo keeps only structural filters
	if raw := q.Get("is_done"); raw != "" {
		want := raw == "true" || raw == "1"
		filtered := steps[:0]
		for _, s := range steps {
			if s.IsDone == want {
				filtered = append(filtered, s)
			}
		}
		steps = filtered
	}

	writeJSON(w, steps, http.StatusOK)
}

func (h *GoalStepsHandler) Retrieve(w http.ResponseWriter, r *http.Request) {
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

	s, err := h.stepRepo.GetGoalStep(r.Context(), caller, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			errorDetail(w, http.StatusNotFound, "Not found.")
			return
		}
		errorDetail(w, http.StatusInternalServerError, "Error loading goal step.")
		return
	}

	writeJSON(w, s, http.StatusOK)
}

func (h *GoalStepsHandler) Create(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerID(r)
	if !ok {
		errorDetail(w, http.StatusUnauthorized, "Authentication credentials were not provided.")
		return
	}

	var req goalStepRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.GoalID == nil || *req.GoalID <= 0 {
		fieldError(w, "goal", "This field is required.")
		return
	}
	if req.Title == nil || strings.TrimSpace(*req.Title) == "" {
		fieldError(w, "title", "This field is required.")
		return
	}

	// the parent goal must be the caller's; a foreign goal id reads as
	// nonexistent
	owned, err := h.stepRepo.GoalOwned(r.Context(), caller, *req.GoalID)
	if err != nil {
		errorDetail(w, http.StatusInternalServerError, "Error creating goal step.")
		return
	}
	if !owned {
		errorDetail(w, http.StatusNotFound, "Not found.")
		return
	}

	s := &models.GoalStep{
		GoalID: *req.GoalID,
		Title:  strings.TrimSpace(*req.Title),
	}
	if req.IsDone != nil {
		s.IsDone = *req.IsDone
	}
	if req.Order != nil {
		s.Order = *req.Order
	}

	id, err := h.stepRepo.CreateGoalStep(r.Context(), s)
	if err != nil {
		errorDetail(w, http.StatusInternalServerError, "Error creating goal step.")
		return
	}
	if err := h.goalRepo.RecountGoalSteps(r.Context(), s.GoalID); err != nil {
		errorDetail(w, http.StatusInternalServerError, "Error updating goal counters.")
		return
	}

	created, err := h.stepRepo.GetGoalStep(r.Context(), caller, id)
	if err != nil {
		errorDetail(w, http.StatusInternalServerError, "Error loading goal step.")
		return
	}

	writeJSON(w, created, http.StatusCreated)
}

func (h *GoalStepsHandler) Update(w http.ResponseWriter, r *http.Request) {
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

	s, err := h.stepRepo.GetGoalStep(r.Context(), caller, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			errorDetail(w, http.StatusNotFound, "Not found.")
			return
		}
		errorDetail(w, http.StatusInternalServerError, "Error loading goal step.")
		return
	}

	var req goalStepRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		if title == "" {
			fieldError(w, "title", "This field may not be blank.")
			return
		}
		s.Title = title
	}
	if req.IsDone != nil {
		s.IsDone = *req.IsDone
	}
	if req.Order != nil {
		s.Order = *req.Order
	}
	// a step cannot be moved to another goal
	if req.GoalID != nil && *req.GoalID != s.GoalID {
		fieldError(w, "goal", "Goal cannot be changed.")
		return
	}

	if err := h.stepRepo.UpdateGoalStep(r.Context(), caller, s); err != nil {
		errorDetail(w, http.StatusInternalServerError, "Error updating goal step.")
		return
	}
	if err := h.goalRepo.RecountGoalSteps(r.Context(), s.GoalID); err != nil {
		errorDetail(w, http.StatusInternalServerError, "Error updating goal counters.")
		return
	}

	writeJSON(w, s, http.StatusOK)
}

func (h *GoalStepsHandler) Delete(w http.ResponseWriter, r *http.Request) {
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

	s, err := h.stepRepo.GetGoalStep(r.Context(), caller, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			errorDetail(w, http.StatusNotFound, "Not found.")
			return
		}
		errorDetail(w, http.StatusInternalServerError, "Error loading goal step.")
		return
	}

	if err := h.stepRepo.DeleteGoalStep(r.Context(), caller, id); err != nil {
		errorDetail(w, http.StatusInternalServerError, "Error deleting goal step.")
		return
	}
	if err := h.goalRepo.RecountGoalSteps(r.Context(), s.GoalID); err != nil {
		errorDetail(w, http.StatusInternalServerError, "Error updating goal counters.")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
