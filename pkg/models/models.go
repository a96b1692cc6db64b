package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
)

// Project statuses.
const (
	StatusPlanned    = "planned"
	StatusInProgress = "in_progress"
	StatusCompleted  = "completed"
)

// Project work types.
const (
	WorkIndividual = "individual"
	WorkTeam       = "team"
)

// Project primary goals.
const (
	GoalPracticeSkill  = "practice_skill"
	GoalDeliverFeature = "deliver_feature"
	GoalBuildDemo      = "build_demo"
	GoalSolveProblem   = "solve_problem"
)

// Announcement types.
const (
	AnnouncementEnrollment = "enrollment"
	AnnouncementDiscount   = "discount"
)

type User struct {
	ID           int64  `json:"id" db:"id"`
	Username     string `json:"username" db:"username"`
	Email        string `json:"email" db:"email"`
	PasswordHash string `json:"-" db:"password_hash"`
	Created      int64  `json:"created_at" db:"created_at"`
}

type Certificate struct {
	ID         int64   `json:"id" db:"id"`
	UserID     int64   `json:"user" db:"user_id"`
	Title      string  `json:"title" db:"title"`
	Issuer     string  `json:"issuer" db:"issuer"`
	DateEarned Date    `json:"date_earned" db:"date_earned"`
	FileUpload *string `json:"file_upload" db:"file_upload"`
	// ProjectCount is derived per row from the projects table.
	ProjectCount int64 `json:"project_count" db:"project_count"`
	Created      int64 `json:"created_at" db:"created_at"`
}

type Project struct {
	ID              int64   `json:"id" db:"id"`
	UserID          int64   `json:"user" db:"user_id"`
	CertificateID   *int64  `json:"certificate" db:"certificate_id"`
	Title           string  `json:"title" db:"title"`
	Status          string  `json:"status" db:"status"`
	WorkType        string  `json:"work_type" db:"work_type"`
	StartDate       *Date   `json:"start_date" db:"start_date"`
	EndDate         *Date   `json:"end_date" db:"end_date"`
	DurationText    *string `json:"duration_text" db:"duration_text"`
	PrimaryGoal     string  `json:"primary_goal" db:"primary_goal"`
	ProblemSolved   string  `json:"problem_solved" db:"problem_solved"`
	ToolsUsed       string  `json:"tools_used" db:"tools_used"`
	SkillsUsed      string  `json:"skills_used" db:"skills_used"`
	ChallengesShort string  `json:"challenges_short" db:"challenges_short"`
	SkillsToImprove string  `json:"skills_to_improve" db:"skills_to_improve"`
	Description     string  `json:"description" db:"description"`
	Created         int64   `json:"date_created" db:"created_at"`
}

type Goal struct {
	ID             int64  `json:"id" db:"id"`
	UserID         int64  `json:"user" db:"user_id"`
	Title          string `json:"title" db:"title"`
	TargetProjects int    `json:"target_projects" db:"target_projects"`
	Deadline       Date   `json:"deadline" db:"deadline"`
	TotalSteps     int    `json:"total_steps" db:"total_steps"`
	CompletedSteps int    `json:"completed_steps" db:"completed_steps"`
	Created        int64  `json:"created_at" db:"created_at"`
}

type GoalStep struct {
	ID      int64  `json:"id" db:"id"`
	GoalID  int64  `json:"goal" db:"goal_id"`
	Title   string `json:"title" db:"title"`
	IsDone  bool   `json:"is_done" db:"is_done"`
	Order   int    `json:"order" db:"step_order"`
	Created int64  `json:"created_at" db:"created_at"`
}

type Announcement struct {
	ID            int64            `json:"id" db:"id"`
	Title         string           `json:"title" db:"title"`
	Platform      string           `json:"platform" db:"platform"`
	Type          string           `json:"type" db:"type"`
	URL           string           `json:"url" db:"url"`
	StartsAt      *Date            `json:"starts_at" db:"starts_at"`
	EndsAt        *Date            `json:"ends_at" db:"ends_at"`
	DiscountPct   *int             `json:"discount_pct" db:"discount_pct"`
	PriceOriginal *decimal.Decimal `json:"price_original" db:"price_original"`
	PriceCurrent  *decimal.Decimal `json:"price_current" db:"price_current"`
	Tags          StringList       `json:"tags" db:"tags"`
	Created       int64            `json:"created_at" db:"created_at"`
}

type Fact struct {
	ID        int64  `json:"id" db:"id"`
	Text      string `json:"text" db:"text"`
	Source    string `json:"source" db:"source"`
	SourceURL string `json:"source_url" db:"source_url"`
	Active    bool   `json:"-" db:"active"`
	Created   int64  `json:"created_at" db:"created_at"`
}

// StringList is a JSON-encoded list of strings stored in a TEXT column.
type StringList []string

func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	b, err := json.Marshal(l)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (l *StringList) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*l = StringList{}
		return nil
	case string:
		return l.Scan([]byte(v))
	case []byte:
		if len(v) == 0 {
			*l = StringList{}
			return nil
		}
		return json.Unmarshal(v, (*[]string)(l))
	default:
		return fmt.Errorf("cannot scan %T into StringList", src)
	}
}

func (l StringList) MarshalJSON() ([]byte, error) {
	if l == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]string(l))
}
