package rules

import (
	"strings"
	"testing"
	"time"

	"github.com/skillfolio/backend/pkg/models"
)

var today = models.NewDate(2025, time.March, 15)

func datePtr(d models.Date) *models.Date { return &d }

func daysFromToday(n int) *models.Date {
	return datePtr(models.DateOf(today.AddDate(0, 0, n)))
}

func TestValidateProject(t *testing.T) {
	tests := []struct {
		name      string
		fields    ProjectFields
		wantField string
	}{
		{
			name:      "missing start date",
			fields:    ProjectFields{Status: models.StatusPlanned},
			wantField: "start_date",
		},
		{
			name:      "planned with past start",
			fields:    ProjectFields{Status: models.StatusPlanned, StartDate: daysFromToday(-1)},
			wantField: "start_date",
		},
		{
			name:   "planned today ok",
			fields: ProjectFields{Status: models.StatusPlanned, StartDate: daysFromToday(0)},
		},
		{
			name:   "planned future ok",
			fields: ProjectFields{Status: models.StatusPlanned, StartDate: daysFromToday(10)},
		},
		{
			name:      "in progress with future start",
			fields:    ProjectFields{Status: models.StatusInProgress, StartDate: daysFromToday(1)},
			wantField: "start_date",
		},
		{
			name:   "in progress today ok",
			fields: ProjectFields{Status: models.StatusInProgress, StartDate: daysFromToday(0)},
		},
		{
			name:      "completed starting today",
			fields:    ProjectFields{Status: models.StatusCompleted, StartDate: daysFromToday(0), EndDate: daysFromToday(0)},
			wantField: "start_date",
		},
		{
			name:      "completed without end date",
			fields:    ProjectFields{Status: models.StatusCompleted, StartDate: daysFromToday(-5)},
			wantField: "end_date",
		},
		{
			name:      "completed end before start",
			fields:    ProjectFields{Status: models.StatusCompleted, StartDate: daysFromToday(-5), EndDate: daysFromToday(-6)},
			wantField: "end_date",
		},
		{
			name:      "completed end equals start",
			fields:    ProjectFields{Status: models.StatusCompleted, StartDate: daysFromToday(-5), EndDate: daysFromToday(-5)},
			wantField: "end_date",
		},
		{
			name:      "completed end in future",
			fields:    ProjectFields{Status: models.StatusCompleted, StartDate: daysFromToday(-5), EndDate: daysFromToday(1)},
			wantField: "end_date",
		},
		{
			name:   "completed valid range",
			fields: ProjectFields{Status: models.StatusCompleted, StartDate: daysFromToday(-5), EndDate: daysFromToday(-1)},
		},
		{
			name:      "unknown status",
			fields:    ProjectFields{Status: "paused", StartDate: daysFromToday(0)},
			wantField: "status",
		},
		{
			name:      "unknown work type",
			fields:    ProjectFields{Status: models.StatusPlanned, WorkType: "solo", StartDate: daysFromToday(0)},
			wantField: "work_type",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateProject(&tt.fields, today)
			if tt.wantField == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("expected error on field %s, got none", tt.wantField)
			}
			if err.Field != tt.wantField {
				t.Fatalf("expected error on field %s, got %s (%s)", tt.wantField, err.Field, err.Message)
			}
		})
	}
}

func TestValidateProjectClearsEndDate(t *testing.T) {
	for _, status := range []string{models.StatusPlanned, models.StatusInProgress} {
		sd := daysFromToday(0)
		f := ProjectFields{Status: status, StartDate: sd, EndDate: daysFromToday(3)}
		if err := ValidateProject(&f, today); err != nil {
			t.Fatalf("%s: unexpected error: %v", status, err)
		}
		if f.EndDate != nil {
			t.Fatalf("%s: end date should have been cleared, got %v", status, f.EndDate)
		}
	}
}

func TestValidateProjectDefaultsStatusToPlanned(t *testing.T) {
	f := ProjectFields{StartDate: daysFromToday(1)}
	if err := ValidateProject(&f, today); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if f.Status != models.StatusPlanned {
		t.Fatalf("expected status planned, got %q", f.Status)
	}
}

func TestDurationText(t *testing.T) {
	tests := []struct {
		days int
		want string
	}{
		{1, "1 day"},
		{10, "10 days"},
		{13, "13 days"},
		{14, "2 weeks"},
		{20, "3 weeks"},
		{59, "8 weeks"},
		{60, "2 months"},
		{200, "7 months"},
		{364, "12 months"},
		{365, "1 year"},
		{400, "1 year"},
		{800, "2 years"},
	}
	start := models.NewDate(2024, time.January, 1)
	for _, tt := range tests {
		end := models.DateOf(start.AddDate(0, 0, tt.days))
		got := DurationText(&start, &end)
		if got != tt.want {
			t.Errorf("DurationText(%d days) = %q, want %q", tt.days, got, tt.want)
		}
	}
}

func TestDurationTextEmptyCases(t *testing.T) {
	start := models.NewDate(2024, time.January, 10)
	same := start
	earlier := models.NewDate(2024, time.January, 5)
	if got := DurationText(nil, &start); got != "" {
		t.Errorf("nil start: got %q", got)
	}
	if got := DurationText(&start, nil); got != "" {
		t.Errorf("nil end: got %q", got)
	}
	if got := DurationText(&start, &same); got != "" {
		t.Errorf("zero span: got %q", got)
	}
	if got := DurationText(&start, &earlier); got != "" {
		t.Errorf("negative span: got %q", got)
	}
}

func TestBuildDescriptionCompleted(t *testing.T) {
	start := models.NewDate(2025, time.February, 1)
	end := models.NewDate(2025, time.February, 21)
	got := BuildDescription(ProjectFields{
		Title:           "Portfolio Website",
		Status:          models.StatusCompleted,
		WorkType:        models.WorkIndividual,
		StartDate:       &start,
		EndDate:         &end,
		PrimaryGoal:     models.GoalBuildDemo,
		ProblemSolved:   "Showcase personal projects",
		ToolsUsed:       "Go, SQLite",
		SkillsUsed:      "APIs, SQL",
		ChallengesShort: "SEO",
		SkillsToImprove: "Accessibility",
	})
	want := "Portfolio Website was a individual project completed in 3 weeks. " +
		"The main goal was to build a demonstrable prototype. " +
		"It addressed: Showcase personal projects. " +
		"Challenges encountered: SEO. " +
		"Key tools/skills: Go, SQLite, APIs, SQL. " +
		"Next, I plan to improve: Accessibility."
	if got != want {
		t.Fatalf("description mismatch:\n got: %s\nwant: %s", got, want)
	}
}

func TestBuildDescriptionInProgress(t *testing.T) {
	start := models.NewDate(2025, time.March, 1)
	got := BuildDescription(ProjectFields{
		Title:       "CLI Tracker",
		Status:      models.StatusInProgress,
		StartDate:   &start,
		PrimaryGoal: models.GoalPracticeSkill,
	})
	if !strings.HasPrefix(got, "CLI Tracker is a project started since 2025-03-01.") {
		t.Fatalf("unexpected opening: %s", got)
	}
	if !strings.Contains(got, "The main goal is to practice and strengthen key skills.") {
		t.Fatalf("missing goal clause: %s", got)
	}
}

func TestBuildDescriptionInProgressSoFarFraming(t *testing.T) {
	got := BuildDescription(ProjectFields{
		Title:           "Parser",
		Status:          models.StatusInProgress,
		ProblemSolved:   "log triage",
		ChallengesShort: "grammar edge cases",
		ToolsUsed:       "Go",
		SkillsToImprove: "benchmarks",
	})
	for _, clause := range []string{
		"So far it addresses: log triage.",
		"Challenges encountered so far are: grammar edge cases.",
		"Key skills/tools practiced so far: Go.",
		"Next I'll improve: benchmarks.",
	} {
		if !strings.Contains(got, clause) {
			t.Errorf("missing clause %q in: %s", clause, got)
		}
	}
}

func TestBuildDescriptionPlanned(t *testing.T) {
	start := models.NewDate(2025, time.June, 1)
	got := BuildDescription(ProjectFields{
		Title:     "Chat Bot",
		Status:    models.StatusPlanned,
		WorkType:  models.WorkTeam,
		StartDate: &start,
	})
	want := "Chat Bot is a planned team project starting on 2025-06-01."
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestBuildDescriptionSkipsDuplicateSkills(t *testing.T) {
	got := BuildDescription(ProjectFields{
		Title:      "Dup",
		Status:     models.StatusPlanned,
		ToolsUsed:  "Go",
		SkillsUsed: "Go",
	})
	if strings.Count(got, "Go") != 1 {
		t.Fatalf("duplicate tools/skills not collapsed: %s", got)
	}
}

func TestBuildDescriptionFallbackTitle(t *testing.T) {
	got := BuildDescription(ProjectFields{})
	if got != "This project is a planned project." {
		t.Fatalf("got %q", got)
	}
}
