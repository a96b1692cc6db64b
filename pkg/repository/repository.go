package repository

import (
	"context"
	"errors"

	"github.com/skillfolio/backend/pkg/models"
)

// ErrNotFound is returned when a row does not exist or is owned by a
// different user. Handlers map it to a 404 so ownership is never leaked.
var ErrNotFound = errors.New("not found")

// Repository interfaces for domain entities. These are the public contracts
// consumers should depend on; concrete implementations live under internal/.

type UserRepo interface {
	CreateUser(ctx context.Context, u *models.User) (int64, error)
	GetUserByID(ctx context.Context, id int64) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	UsernameExists(ctx context.Context, username string) (bool, error)
	UpdateUser(ctx context.Context, u *models.User) error
	UpdatePassword(ctx context.Context, id int64, passwordHash string) error
	DeleteUser(ctx context.Context, id int64) error
}

// CertificateFilter narrows ListCertificates. Zero values mean "no filter".
type CertificateFilter struct {
	ID         *int64
	Issuer     string
	DateEarned *models.Date
	Search     string
	// Ordering is a client-supplied field name, optionally prefixed
	// with "-" for descending. Unknown fields are ignored.
	Ordering string
}

type CertificateRepo interface {
	CreateCertificate(ctx context.Context, c *models.Certificate) (int64, error)
	GetCertificate(ctx context.Context, ownerID, id int64) (*models.Certificate, error)
	ListCertificates(ctx context.Context, ownerID int64, f CertificateFilter) ([]models.Certificate, error)
	UpdateCertificate(ctx context.Context, ownerID int64, c *models.Certificate) error
	DeleteCertificate(ctx context.Context, ownerID, id int64) error
	CountCertificates(ctx context.Context, ownerID int64) (int64, error)
}

type ProjectFilter struct {
	Status        string
	WorkType      string
	CertificateID *int64
	Search        string
	Ordering      string
}

type ProjectRepo interface {
	CreateProject(ctx context.Context, p *models.Project) (int64, error)
	GetProject(ctx context.Context, ownerID, id int64) (*models.Project, error)
	ListProjects(ctx context.Context, ownerID int64, f ProjectFilter) ([]models.Project, error)
	UpdateProject(ctx context.Context, ownerID int64, p *models.Project) error
	DeleteProject(ctx context.Context, ownerID, id int64) error
	CountProjects(ctx context.Context, ownerID int64) (int64, error)
	CountCompletedProjects(ctx context.Context, ownerID int64) (int64, error)
}

type GoalFilter struct {
	Deadline *models.Date
	Search   string
	Ordering string
}

type GoalRepo interface {
	CreateGoal(ctx context.Context, g *models.Goal) (int64, error)
	GetGoal(ctx context.Context, ownerID, id int64) (*models.Goal, error)
	ListGoals(ctx context.Context, ownerID int64, f GoalFilter) ([]models.Goal, error)
	UpdateGoal(ctx context.Context, ownerID int64, g *models.Goal) error
	DeleteGoal(ctx context.Context, ownerID, id int64) error
	CountGoals(ctx context.Context, ownerID int64) (int64, error)
	// RecountGoalSteps refreshes total_steps and completed_steps from
	// the goal_steps table after any step mutation.
	RecountGoalSteps(ctx context.Context, goalID int64) error
}

type StepFilter struct {
	GoalID   *int64
	Ordering string
}

type GoalStepRepo interface {
	CreateGoalStep(ctx context.Context, s *models.GoalStep) (int64, error)
	GetGoalStep(ctx context.Context, ownerID, id int64) (*models.GoalStep, error)
	ListGoalSteps(ctx context.Context, ownerID int64, f StepFilter) ([]models.GoalStep, error)
	UpdateGoalStep(ctx context.Context, ownerID int64, s *models.GoalStep) error
	DeleteGoalStep(ctx context.Context, ownerID, id int64) error
	// GoalOwned reports whether the goal exists and belongs to ownerID.
	GoalOwned(ctx context.Context, ownerID, goalID int64) (bool, error)
}

type AnnouncementFilter struct {
	Platform    string
	Type        string
	StartsAfter *models.Date
	EndsBefore  *models.Date
	Search      string
	Ordering    string
}

type AnnouncementRepo interface {
	ListAnnouncements(ctx context.Context, f AnnouncementFilter) ([]models.Announcement, error)
	GetAnnouncement(ctx context.Context, id int64) (*models.Announcement, error)
	RandomFact(ctx context.Context) (*models.Fact, error)
}

type TokenRepo interface {
	BlacklistToken(ctx context.Context, jti string, userID int64, expiresAt int64) error
	IsTokenBlacklisted(ctx context.Context, jti string) (bool, error)
	// PurgeExpiredTokens removes blacklist rows whose expiry has passed.
	PurgeExpiredTokens(ctx context.Context, now int64) (int64, error)
}
