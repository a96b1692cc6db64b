package mock

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/skillfolio/backend/pkg/models"
	"github.com/skillfolio/backend/pkg/repository"
)

// Store is an in-memory implementation of every repository interface,
// used by handler tests. Owner scoping matches the sqlite behavior:
// rows belonging to another user behave as if they do not exist.
type Store struct {
	mu     sync.Mutex
	nextID int64

	Users         map[int64]*models.User
	Certificates  map[int64]*models.Certificate
	Projects      map[int64]*models.Project
	Goals         map[int64]*models.Goal
	Steps         map[int64]*models.GoalStep
	Announcements map[int64]*models.Announcement
	Facts         []*models.Fact
	Blacklist     map[string]int64

	// Err, when set, makes every call fail with it.
	Err error
}

var _ repository.UserRepo = (*Store)(nil)
var _ repository.CertificateRepo = (*Store)(nil)
var _ repository.ProjectRepo = (*Store)(nil)
var _ repository.GoalRepo = (*Store)(nil)
var _ repository.GoalStepRepo = (*Store)(nil)
var _ repository.AnnouncementRepo = (*Store)(nil)
var _ repository.TokenRepo = (*Store)(nil)

func NewStore() *Store {
	return &Store{
		Users:         map[int64]*models.User{},
		Certificates:  map[int64]*models.Certificate{},
		Projects:      map[int64]*models.Project{},
		Goals:         map[int64]*models.Goal{},
		Steps:         map[int64]*models.GoalStep{},
		Announcements: map[int64]*models.Announcement{},
		Blacklist:     map[string]int64{},
	}
}

func (s *Store) id() int64 {
	s.nextID++
	return s.nextID
}

// Users

func (s *Store) CreateUser(ctx context.Context, u *models.User) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return 0, s.Err
	}
	cp := *u
	cp.ID = s.id()
	s.Users[cp.ID] = &cp
	return cp.ID, nil
}

func (s *Store) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	u, ok := s.Users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	for _, u := range s.Users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (s *Store) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	for _, u := range s.Users {
		if strings.EqualFold(u.Username, username) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (s *Store) UsernameExists(ctx context.Context, username string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return false, s.Err
	}
	for _, u := range s.Users {
		if strings.EqualFold(u.Username, username) {
			return true, nil
		}
	}
	return false, nil
}

func (s *Store) UpdateUser(ctx context.Context, u *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	stored, ok := s.Users[u.ID]
	if !ok {
		return repository.ErrNotFound
	}
	stored.Username = u.Username
	stored.Email = u.Email
	return nil
}

func (s *Store) UpdatePassword(ctx context.Context, id int64, passwordHash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	u, ok := s.Users[id]
	if !ok {
		return repository.ErrNotFound
	}
	u.PasswordHash = passwordHash
	return nil
}

func (s *Store) DeleteUser(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	if _, ok := s.Users[id]; !ok {
		return repository.ErrNotFound
	}
	delete(s.Users, id)
	return nil
}

// Certificates

func (s *Store) CreateCertificate(ctx context.Context, c *models.Certificate) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return 0, s.Err
	}
	cp := *c
	cp.ID = s.id()
	s.Certificates[cp.ID] = &cp
	return cp.ID, nil
}

func (s *Store) GetCertificate(ctx context.Context, ownerID, id int64) (*models.Certificate, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	c, ok := s.Certificates[id]
	if !ok || c.UserID != ownerID {
		return nil, repository.ErrNotFound
	}
	cp := *c
	cp.ProjectCount = s.projectCountLocked(id)
	return &cp, nil
}

func (s *Store) projectCountLocked(certID int64) int64 {
	var n int64
	for _, p := range s.Projects {
		if p.CertificateID != nil && *p.CertificateID == certID {
			n++
		}
	}
	return n
}

func (s *Store) ListCertificates(ctx context.Context, ownerID int64, f repository.CertificateFilter) ([]models.Certificate, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	out := []models.Certificate{}
	for _, c := range s.Certificates {
		if c.UserID != ownerID {
			continue
		}
		if f.ID != nil && c.ID != *f.ID {
			continue
		}
		if f.Issuer != "" && !strings.EqualFold(c.Issuer, f.Issuer) {
			continue
		}
		if f.DateEarned != nil && !c.DateEarned.Equal(f.DateEarned.Time) {
			continue
		}
		if f.Search != "" && !strings.Contains(strings.ToLower(c.Title+" "+c.Issuer), strings.ToLower(f.Search)) {
			continue
		}
		cp := *c
		cp.ProjectCount = s.projectCountLocked(c.ID)
		out = append(out, cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *Store) UpdateCertificate(ctx context.Context, ownerID int64, c *models.Certificate) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	stored, ok := s.Certificates[c.ID]
	if !ok || stored.UserID != ownerID {
		return repository.ErrNotFound
	}
	cp := *c
	cp.UserID = stored.UserID
	s.Certificates[c.ID] = &cp
	return nil
}

func (s *Store) DeleteCertificate(ctx context.Context, ownerID, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	c, ok := s.Certificates[id]
	if !ok || c.UserID != ownerID {
		return repository.ErrNotFound
	}
	delete(s.Certificates, id)
	for _, p := range s.Projects {
		if p.CertificateID != nil && *p.CertificateID == id {
			p.CertificateID = nil
		}
	}
	return nil
}

func (s *Store) CountCertificates(ctx context.Context, ownerID int64) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return 0, s.Err
	}
	var n int64
	for _, c := range s.Certificates {
		if c.UserID == ownerID {
			n++
		}
	}
	return n, nil
}

// Projects

func (s *Store) CreateProject(ctx context.Context, p *models.Project) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return 0, s.Err
	}
	cp := *p
	cp.ID = s.id()
	s.Projects[cp.ID] = &cp
	return cp.ID, nil
}

func (s *Store) GetProject(ctx context.Context, ownerID, id int64) (*models.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	p, ok := s.Projects[id]
	if !ok || p.UserID != ownerID {
		return nil, repository.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (s *Store) ListProjects(ctx context.Context, ownerID int64, f repository.ProjectFilter) ([]models.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	out := []models.Project{}
	for _, p := range s.Projects {
		if p.UserID != ownerID {
			continue
		}
		if f.Status != "" && p.Status != f.Status {
			continue
		}
		if f.WorkType != "" && p.WorkType != f.WorkType {
			continue
		}
		if f.CertificateID != nil && (p.CertificateID == nil || *p.CertificateID != *f.CertificateID) {
			continue
		}
		if f.Search != "" && !strings.Contains(strings.ToLower(p.Title+" "+p.Description+" "+p.ProblemSolved+" "+p.ToolsUsed), strings.ToLower(f.Search)) {
			continue
		}
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *Store) UpdateProject(ctx context.Context, ownerID int64, p *models.Project) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	stored, ok := s.Projects[p.ID]
	if !ok || stored.UserID != ownerID {
		return repository.ErrNotFound
	}
	cp := *p
	cp.UserID = stored.UserID
	s.Projects[p.ID] = &cp
	return nil
}

func (s *Store) DeleteProject(ctx context.Context, ownerID, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	p, ok := s.Projects[id]
	if !ok || p.UserID != ownerID {
		return repository.ErrNotFound
	}
	delete(s.Projects, id)
	return nil
}

func (s *Store) CountProjects(ctx context.Context, ownerID int64) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return 0, s.Err
	}
	var n int64
	for _, p := range s.Projects {
		if p.UserID == ownerID {
			n++
		}
	}
	return n, nil
}

func (s *Store) CountCompletedProjects(ctx context.Context, ownerID int64) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return 0, s.Err
	}
	var n int64
	for _, p := range s.Projects {
		if p.UserID == ownerID && p.Status == models.StatusCompleted {
			n++
		}
	}
	return n, nil
}

// Goals

func (s *Store) CreateGoal(ctx context.Context, g *models.Goal) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return 0, s.Err
	}
	cp := *g
	cp.ID = s.id()
	s.Goals[cp.ID] = &cp
	return cp.ID, nil
}

func (s *Store) GetGoal(ctx context.Context, ownerID, id int64) (*models.Goal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	g, ok := s.Goals[id]
	if !ok || g.UserID != ownerID {
		return nil, repository.ErrNotFound
	}
	cp := *g
	return &cp, nil
}

func (s *Store) ListGoals(ctx context.Context, ownerID int64, f repository.GoalFilter) ([]models.Goal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	out := []models.Goal{}
	for _, g := range s.Goals {
		if g.UserID != ownerID {
			continue
		}
		if f.Deadline != nil && !g.Deadline.Equal(f.Deadline.Time) {
			continue
		}
		if f.Search != "" && !strings.Contains(strings.ToLower(g.Title), strings.ToLower(f.Search)) {
			continue
		}
		out = append(out, *g)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *Store) UpdateGoal(ctx context.Context, ownerID int64, g *models.Goal) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	stored, ok := s.Goals[g.ID]
	if !ok || stored.UserID != ownerID {
		return repository.ErrNotFound
	}
	stored.Title = g.Title
	stored.TargetProjects = g.TargetProjects
	stored.Deadline = g.Deadline
	stored.TotalSteps = g.TotalSteps
	stored.CompletedSteps = g.CompletedSteps
	return nil
}

func (s *Store) DeleteGoal(ctx context.Context, ownerID, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	g, ok := s.Goals[id]
	if !ok || g.UserID != ownerID {
		return repository.ErrNotFound
	}
	delete(s.Goals, id)
	for sid, st := range s.Steps {
		if st.GoalID == id {
			delete(s.Steps, sid)
		}
	}
	return nil
}

func (s *Store) CountGoals(ctx context.Context, ownerID int64) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return 0, s.Err
	}
	var n int64
	for _, g := range s.Goals {
		if g.UserID == ownerID {
			n++
		}
	}
	return n, nil
}

func (s *Store) RecountGoalSteps(ctx context.Context, goalID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	g, ok := s.Goals[goalID]
	if !ok {
		return nil
	}
	total, done := 0, 0
	for _, st := range s.Steps {
		if st.GoalID != goalID {
			continue
		}
		total++
		if st.IsDone {
			done++
		}
	}
	g.TotalSteps = total
	g.CompletedSteps = done
	return nil
}

// Goal steps

func (s *Store) CreateGoalStep(ctx context.Context, st *models.GoalStep) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return 0, s.Err
	}
	cp := *st
	cp.ID = s.id()
	s.Steps[cp.ID] = &cp
	return cp.ID, nil
}

func (s *Store) stepOwnedLocked(ownerID int64, st *models.GoalStep) bool {
	g, ok := s.Goals[st.GoalID]
	return ok && g.UserID == ownerID
}

func (s *Store) GetGoalStep(ctx context.Context, ownerID, id int64) (*models.GoalStep, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	st, ok := s.Steps[id]
	if !ok || !s.stepOwnedLocked(ownerID, st) {
		return nil, repository.ErrNotFound
	}
	cp := *st
	return &cp, nil
}

func (s *Store) ListGoalSteps(ctx context.Context, ownerID int64, f repository.StepFilter) ([]models.GoalStep, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	out := []models.GoalStep{}
	for _, st := range s.Steps {
		if !s.stepOwnedLocked(ownerID, st) {
			continue
		}
		if f.GoalID != nil && st.GoalID != *f.GoalID {
			continue
		}
		out = append(out, *st)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Order != out[j].Order {
			return out[i].Order < out[j].Order
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (s *Store) UpdateGoalStep(ctx context.Context, ownerID int64, st *models.GoalStep) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	stored, ok := s.Steps[st.ID]
	if !ok || !s.stepOwnedLocked(ownerID, stored) {
		return repository.ErrNotFound
	}
	stored.Title = st.Title
	stored.IsDone = st.IsDone
	stored.Order = st.Order
	return nil
}

func (s *Store) DeleteGoalStep(ctx context.Context, ownerID, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	st, ok := s.Steps[id]
	if !ok || !s.stepOwnedLocked(ownerID, st) {
		return repository.ErrNotFound
	}
	delete(s.Steps, id)
	return nil
}

func (s *Store) GoalOwned(ctx context.Context, ownerID, goalID int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return false, s.Err
	}
	g, ok := s.Goals[goalID]
	return ok && g.UserID == ownerID, nil
}

// Announcements

func (s *Store) ListAnnouncements(ctx context.Context, f repository.AnnouncementFilter) ([]models.Announcement, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	out := []models.Announcement{}
	for _, a := range s.Announcements {
		if f.Platform != "" && !strings.EqualFold(a.Platform, f.Platform) {
			continue
		}
		if f.Type != "" && !strings.EqualFold(a.Type, f.Type) {
			continue
		}
		if f.Search != "" && !strings.Contains(strings.ToLower(a.Title+" "+a.Platform+" "+strings.Join(a.Tags, " ")), strings.ToLower(f.Search)) {
			continue
		}
		if f.StartsAfter != nil && (a.StartsAt == nil || a.StartsAt.Before(f.StartsAfter.Time)) {
			continue
		}
		if f.EndsBefore != nil && (a.EndsAt == nil || a.EndsAt.After(f.EndsBefore.Time)) {
			continue
		}
		out = append(out, *a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *Store) GetAnnouncement(ctx context.Context, id int64) (*models.Announcement, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	a, ok := s.Announcements[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *a
	return &cp, nil
}

func (s *Store) RandomFact(ctx context.Context) (*models.Fact, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	for _, f := range s.Facts {
		if f.Active {
			cp := *f
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

// Tokens

func (s *Store) BlacklistToken(ctx context.Context, jti string, userID int64, expiresAt int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	if _, ok := s.Blacklist[jti]; !ok {
		s.Blacklist[jti] = expiresAt
	}
	return nil
}

func (s *Store) IsTokenBlacklisted(ctx context.Context, jti string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return false, s.Err
	}
	_, ok := s.Blacklist[jti]
	return ok, nil
}

func (s *Store) PurgeExpiredTokens(ctx context.Context, now int64) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return 0, s.Err
	}
	var n int64
	for jti, exp := range s.Blacklist {
		if exp < now {
			delete(s.Blacklist, jti)
			n++
		}
	}
	return n, nil
}
