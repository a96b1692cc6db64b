// Package rules holds the status-aware project validation, the duration
// bucketing and the description generator, plus the goal progress math.
// Everything here is a pure function over plain values so the behavior is
// testable without a database or an HTTP stack.
package rules

import (
	"fmt"
	"math"
	"strings"

	"github.com/skillfolio/backend/pkg/models"
)

// FieldError is a validation failure attached to a single input field.
type FieldError struct {
	Field   string
	Message string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ProjectFields carries the effective field values of a project: for a
// create these are the incoming values, for an update the incoming values
// merged over the stored row.
type ProjectFields struct {
	Title           string
	Status          string
	WorkType        string
	StartDate       *models.Date
	EndDate         *models.Date
	PrimaryGoal     string
	ProblemSolved   string
	ToolsUsed       string
	SkillsUsed      string
	ChallengesShort string
	SkillsToImprove string
}

// ValidateProject enforces the status/date invariants:
//
//	planned:     start_date >= today
//	in_progress: start_date <= today
//	completed:   start_date < today, end_date required,
//	             end_date > start_date, end_date <= today
//
// When the status is not completed, a supplied end date is cleared rather
// than rejected, mirroring the admin-side normalization.
func ValidateProject(f *ProjectFields, today models.Date) *FieldError {
	if f.Status == "" {
		f.Status = models.StatusPlanned
	}
	switch f.Status {
	case models.StatusPlanned, models.StatusInProgress, models.StatusCompleted:
	default:
		return &FieldError{"status", fmt.Sprintf("%q is not a valid choice.", f.Status)}
	}
	if f.WorkType != "" && f.WorkType != models.WorkIndividual && f.WorkType != models.WorkTeam {
		return &FieldError{"work_type", fmt.Sprintf("%q is not a valid choice.", f.WorkType)}
	}
	switch f.PrimaryGoal {
	case "", models.GoalPracticeSkill, models.GoalDeliverFeature, models.GoalBuildDemo, models.GoalSolveProblem:
	default:
		return &FieldError{"primary_goal", fmt.Sprintf("%q is not a valid choice.", f.PrimaryGoal)}
	}

	sd := f.StartDate
	if sd == nil || sd.IsZero() {
		return &FieldError{"start_date", "The project must have a start date"}
	}

	switch f.Status {
	case models.StatusPlanned:
		if sd.Before(today.Time) {
			return &FieldError{"start_date", "For planned projects, Start date must be today or in the future."}
		}
	case models.StatusInProgress:
		if sd.After(today.Time) {
			return &FieldError{"start_date", "Start date cannot be in the future for in-progress projects."}
		}
	case models.StatusCompleted:
		if !sd.Before(today.Time) {
			return &FieldError{"start_date", "For completed projects, Start date must be before today."}
		}
		ed := f.EndDate
		if ed == nil || ed.IsZero() {
			return &FieldError{"end_date", "Completed projects must have an end date."}
		}
		if !ed.After(sd.Time) {
			return &FieldError{"end_date", "End date must be after Start date (at least one day)."}
		}
		if ed.After(today.Time) {
			return &FieldError{"end_date", "End date cannot be in the future for a completed project."}
		}
	}

	if f.Status != models.StatusCompleted {
		f.EndDate = nil
	}
	return nil
}

// DurationText buckets the span between two dates into the coarsest unit
// that still reads naturally. Empty when the span is missing or not
// positive; the displayed number never drops below 1.
func DurationText(start, end *models.Date) string {
	if start == nil || end == nil || start.IsZero() || end.IsZero() {
		return ""
	}
	days := start.DaysUntil(*end)
	if days <= 0 {
		return ""
	}
	switch {
	case days < 14:
		return plural(days, "day")
	case days < 60:
		return plural(atLeastOne(days, 7), "week")
	case days < 365:
		return plural(atLeastOne(days, 30), "month")
	default:
		return plural(atLeastOne(days, 365), "year")
	}
}

func atLeastOne(days, unit int) int {
	n := int(math.Round(float64(days) / float64(unit)))
	if n < 1 {
		n = 1
	}
	return n
}

func plural(n int, word string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, word)
	}
	return fmt.Sprintf("%d %ss", n, word)
}

var goalPhrases = map[string]string{
	models.GoalDeliverFeature: "deliver a functional feature",
	models.GoalBuildDemo:      "build a demonstrable prototype",
	models.GoalPracticeSkill:  "practice and strengthen key skills",
	models.GoalSolveProblem:   "solve a specific problem",
}

// BuildDescription composes the auto-generated project description. The
// tense follows the status: past for completed (with a duration clause when
// the dates allow one), "so far" framing for in-progress, and a
// "starting on <date>" framing for planned work.
func BuildDescription(f ProjectFields) string {
	title := strings.TrimSpace(f.Title)
	if title == "" {
		title = "This project"
	}
	status := f.Status
	if status == "" {
		status = models.StatusPlanned
	}

	var role string
	switch f.WorkType {
	case models.WorkIndividual:
		role = "individual"
	case models.WorkTeam:
		role = "team"
	}
	dur := DurationText(f.StartDate, f.EndDate)
	goalPhrase := goalPhrases[strings.TrimSpace(f.PrimaryGoal)]

	var bits []string
	switch status {
	case models.StatusCompleted:
		switch {
		case role != "" && dur != "":
			bits = append(bits, fmt.Sprintf("%s was a %s project completed in %s.", title, role, dur))
		case role != "":
			bits = append(bits, fmt.Sprintf("%s was a %s project.", title, role))
		case dur != "":
			bits = append(bits, fmt.Sprintf("%s was completed in %s.", title, dur))
		default:
			bits = append(bits, fmt.Sprintf("%s was completed.", title))
		}
		if goalPhrase != "" {
			bits = append(bits, fmt.Sprintf("The main goal was to %s.", goalPhrase))
		}
	case models.StatusInProgress:
		var since string
		if f.StartDate != nil && !f.StartDate.IsZero() {
			since = fmt.Sprintf(" started since %s", f.StartDate)
		}
		if role != "" {
			bits = append(bits, fmt.Sprintf("%s is a %s project%s.", title, role, since))
		} else {
			bits = append(bits, fmt.Sprintf("%s is a project%s.", title, since))
		}
		if goalPhrase != "" {
			bits = append(bits, fmt.Sprintf("The main goal is to %s.", goalPhrase))
		}
	default: // planned
		sd := f.StartDate
		switch {
		case role != "" && sd != nil && !sd.IsZero():
			bits = append(bits, fmt.Sprintf("%s is a planned %s project starting on %s.", title, role, sd))
		case role != "":
			bits = append(bits, fmt.Sprintf("%s is a planned %s project.", title, role))
		case sd != nil && !sd.IsZero():
			bits = append(bits, fmt.Sprintf("%s is planned to start on %s.", title, sd))
		default:
			bits = append(bits, fmt.Sprintf("%s is a planned project.", title))
		}
		if goalPhrase != "" {
			bits = append(bits, fmt.Sprintf("The main goal is to %s.", goalPhrase))
		}
	}

	inProgress := status == models.StatusInProgress
	problem := strings.TrimSpace(f.ProblemSolved)
	if problem != "" {
		if inProgress {
			bits = append(bits, fmt.Sprintf("So far it addresses: %s.", problem))
		} else {
			bits = append(bits, fmt.Sprintf("It addressed: %s.", problem))
		}
	}

	challenges := strings.TrimSpace(f.ChallengesShort)
	if challenges != "" {
		if inProgress {
			bits = append(bits, fmt.Sprintf("Challenges encountered so far are: %s.", challenges))
		} else {
			bits = append(bits, fmt.Sprintf("Challenges encountered: %s.", challenges))
		}
	}

	tools := strings.TrimSpace(f.ToolsUsed)
	skills := strings.TrimSpace(f.SkillsUsed)
	var used []string
	if tools != "" {
		used = append(used, tools)
	}
	if skills != "" && skills != tools {
		used = append(used, skills)
	}
	if len(used) > 0 {
		if inProgress {
			bits = append(bits, fmt.Sprintf("Key skills/tools practiced so far: %s.", strings.Join(used, ", ")))
		} else {
			bits = append(bits, fmt.Sprintf("Key tools/skills: %s.", strings.Join(used, ", ")))
		}
	}

	improve := strings.TrimSpace(f.SkillsToImprove)
	if improve != "" {
		if inProgress {
			bits = append(bits, fmt.Sprintf("Next I'll improve: %s.", improve))
		} else {
			bits = append(bits, fmt.Sprintf("Next, I plan to improve: %s.", improve))
		}
	}

	return strings.TrimSpace(strings.Join(bits, " "))
}

// DriverFields lists the project fields whose change triggers a description
// rebuild when the client did not also edit the description itself.
var DriverFields = []string{
	"title", "status", "work_type",
	"start_date", "end_date",
	"primary_goal",
	"problem_solved", "tools_used", "skills_used",
	"challenges_short", "skills_to_improve",
}
