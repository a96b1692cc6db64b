package api

import (
	"math"
	"net/http"

	"github.com/skillfolio/backend/internal/rules"
	"github.com/skillfolio/backend/pkg/repository"
)

type AnalyticsHandler struct {
	certRepo    repository.CertificateRepo
	projectRepo repository.ProjectRepo
	goalRepo    repository.GoalRepo
	stepRepo    repository.GoalStepRepo
}

func NewAnalyticsHandler(cr repository.CertificateRepo, pr repository.ProjectRepo, gr repository.GoalRepo, sr repository.GoalStepRepo) *AnalyticsHandler {
	return &AnalyticsHandler{certRepo: cr, projectRepo: pr, goalRepo: gr, stepRepo: sr}
}

type summaryResponse struct {
	CertificatesCount          int64   `json:"certificates_count"`
	ProjectsCount              int64   `json:"projects_count"`
	GoalsCount                 int64   `json:"goals_count"`
	GoalsCompletedCount        int64   `json:"goals_completed_count"`
	GoalsInProgressCount       int64   `json:"goals_in_progress_count"`
	GoalsCompletionRatePercent float64 `json:"goals_completion_rate_percent"`
}

// Summary returns the dashboard counters. A goal counts as completed
// when the user's completed projects reach its target and either no
// steps are required or all of them are done.
func (h *AnalyticsHandler) Summary(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerID(r)
	if !ok {
		errorDetail(w, http.StatusUnauthorized, "Authentication credentials were not provided.")
		return
	}
	ctx := r.Context()

	certs, err := h.certRepo.CountCertificates(ctx, caller)
	if err != nil {
		errorDetail(w, http.StatusInternalServerError, "Error computing summary.")
		return
	}
	projects, err := h.projectRepo.CountProjects(ctx, caller)
	if err != nil {
		errorDetail(w, http.StatusInternalServerError, "Error computing summary.")
		return
	}
	completedProjects, err := h.projectRepo.CountCompletedProjects(ctx, caller)
	if err != nil {
		errorDetail(w, http.StatusInternalServerError, "Error computing summary.")
		return
	}
	goals, err := h.goalRepo.ListGoals(ctx, caller, repository.GoalFilter{})
	if err != nil {
		errorDetail(w, http.StatusInternalServerError, "Error computing summary.")
		return
	}

	var completedGoals int64
	for _, g := range goals {
		if completedProjects < int64(g.TargetProjects) {
			continue
		}
		if g.TotalSteps == 0 || g.CompletedSteps >= g.TotalSteps {
			completedGoals++
		}
	}

	totalGoals := int64(len(goals))
	rate := 0.0
	if totalGoals > 0 {
		rate = math.Round(1000*float64(completedGoals)/float64(totalGoals)) / 10
	}

	writeJSON(w, summaryResponse{
		CertificatesCount:          certs,
		ProjectsCount:              projects,
		GoalsCount:                 totalGoals,
		GoalsCompletedCount:        completedGoals,
		GoalsInProgressCount:       totalGoals - completedGoals,
		GoalsCompletionRatePercent: rate,
	}, http.StatusOK)
}

type goalProgressResponse struct {
	goalResponse
	OverallProgressPercent float64 `json:"overall_progress_percent"`
}

// GoalsProgress lists the caller's goals newest-first, each with the
// project, step and overall progress percentages.
func (h *AnalyticsHandler) GoalsProgress(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerID(r)
	if !ok {
		errorDetail(w, http.StatusUnauthorized, "Authentication credentials were not provided.")
		return
	}
	ctx := r.Context()

	goals, err := h.goalRepo.ListGoals(ctx, caller, repository.GoalFilter{Ordering: "-created_at"})
	if err != nil {
		errorDetail(w, http.StatusInternalServerError, "Error listing goals.")
		return
	}
	completedProjects, err := h.projectRepo.CountCompletedProjects(ctx, caller)
	if err != nil {
		errorDetail(w, http.StatusInternalServerError, "Error listing goals.")
		return
	}

	out := make([]goalProgressResponse, 0, len(goals))
	for i := range goals {
		g := &goals[i]
		steps, err := h.stepRepo.ListGoalSteps(ctx, caller, repository.StepFilter{GoalID: &g.ID})
		if err != nil {
			errorDetail(w, http.StatusInternalServerError, "Error listing goals.")
			return
		}
		namedDone := 0
		for _, s := range steps {
			if s.IsDone {
				namedDone++
			}
		}

		projectPct := rules.ProjectProgressPercent(completedProjects, g.TargetProjects)
		stepPct := rules.StepProgressPercent(len(steps), namedDone, g.TotalSteps, g.CompletedSteps)

		out = append(out, goalProgressResponse{
			goalResponse: goalResponse{
				Goal:                 *g,
				ProgressPercent:      projectPct,
				StepsProgressPercent: stepPct,
				StepsTotal:           len(steps),
				StepsCompleted:       namedDone,
				Steps:                steps,
			},
			OverallProgressPercent: rules.OverallProgressPercent(projectPct, stepPct),
		})
	}

	writeJSON(w, out, http.StatusOK)
}
