package rules

import "math"

// StepProgressPercent computes the checklist completion percentage of a
// goal. Named steps win whenever at least one exists; otherwise the integer
// counters on the goal are used. Without a denominator the result is 0.
func StepProgressPercent(namedTotal, namedDone, totalSteps, completedSteps int) int {
	if namedTotal > 0 {
		return int(math.Round(100 * float64(namedDone) / float64(namedTotal)))
	}
	if totalSteps > 0 {
		return int(math.Round(100 * float64(completedSteps) / float64(totalSteps)))
	}
	return 0
}

// ProjectProgressPercent computes the project-target completion percentage
// of a goal, clamped to [0, 100] and rounded to two decimals. Note that
// completedProjects counts ALL of the owner's completed projects, not just
// ones tied to this goal; goals and projects are not linked.
func ProjectProgressPercent(completedProjects int64, targetProjects int) float64 {
	if targetProjects <= 0 {
		return 0
	}
	pct := 100 * float64(completedProjects) / float64(targetProjects)
	if pct < 0 {
		pct = 0
	}
	if pct > 100 {
		pct = 100
	}
	return math.Round(pct*100) / 100
}

// OverallProgressPercent is the mean of the project and step percentages,
// rounded to two decimals.
func OverallProgressPercent(projectPct float64, stepPct int) float64 {
	return math.Round((projectPct+float64(stepPct))/2*100) / 100
}

// ClampCompletedSteps keeps completed within [0, total]; out-of-range
// values are clamped, never rejected.
func ClampCompletedSteps(completed, total int) int {
	if completed < 0 {
		return 0
	}
	if completed > total {
		return total
	}
	return completed
}
