package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/skillfolio/backend/pkg/models"
	"github.com/skillfolio/backend/pkg/repository"
)

const projectColumns = `id, user_id, certificate_id, title, status, work_type, start_date, end_date,
	duration_text, primary_goal, problem_solved, tools_used, skills_used, challenges_short,
	skills_to_improve, description, created_at`

var projectOrdering = map[string]string{
	"start_date":   "start_date",
	"end_date":     "end_date",
	"date_created": "created_at",
	"title":        "title",
	"status":       "status",
}

func (r *SQLiteRepo) CreateProject(ctx context.Context, p *models.Project) (int64, error) {
	if p == nil {
		return 0, fmt.Errorf("project is nil")
	}

	res, err := r.conn.Exec(ctx,
		`INSERT INTO projects (user_id, certificate_id, title, status, work_type, start_date, end_date,
			duration_text, primary_goal, problem_solved, tools_used, skills_used, challenges_short,
			skills_to_improve, description, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.UserID, p.CertificateID, p.Title, p.Status, p.WorkType, p.StartDate, p.EndDate,
		p.DurationText, p.PrimaryGoal, p.ProblemSolved, p.ToolsUsed, p.SkillsUsed, p.ChallengesShort,
		p.SkillsToImprove, p.Description, now())
	if err != nil {
		return 0, err
	}

	return res.LastInsertId()
}

func scanProject(scan func(...any) error) (*models.Project, error) {
	var p models.Project
	var certID sql.NullInt64
	var start, end sql.NullString
	var duration sql.NullString
	err := scan(&p.ID, &p.UserID, &certID, &p.Title, &p.Status, &p.WorkType, &start, &end,
		&duration, &p.PrimaryGoal, &p.ProblemSolved, &p.ToolsUsed, &p.SkillsUsed,
		&p.ChallengesShort, &p.SkillsToImprove, &p.Description, &p.Created)
	if err != nil {
		return nil, err
	}

	if certID.Valid {
		p.CertificateID = &certID.Int64
	}
	if start.Valid && start.String != "" {
		d, err := models.ParseDate(start.String)
		if err != nil {
			return nil, fmt.Errorf("parse start_date: %w", err)
		}
		p.StartDate = &d
	}
	if end.Valid && end.String != "" {
		d, err := models.ParseDate(end.String)
		if err != nil {
			return nil, fmt.Errorf("parse end_date: %w", err)
		}
		p.EndDate = &d
	}
	if duration.Valid {
		p.DurationText = &duration.String
	}

	return &p, nil
}

func (r *SQLiteRepo) GetProject(ctx context.Context, ownerID, id int64) (*models.Project, error) {
	row := r.conn.QueryRow(ctx,
		`SELECT `+projectColumns+` FROM projects WHERE id = ? AND user_id = ?`, id, ownerID)
	p, err := scanProject(row.Scan)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, repository.ErrNotFound
		}

		return nil, err
	}

	return p, nil
}

func (r *SQLiteRepo) ListProjects(ctx context.Context, ownerID int64, f repository.ProjectFilter) ([]models.Project, error) {
	query := `SELECT ` + projectColumns + ` FROM projects WHERE user_id = ?`
	args := []any{ownerID}

	if f.Status != "" {
		query += ` AND status = ?`
		args = append(args, f.Status)
	}
	if f.WorkType != "" {
		query += ` AND work_type = ?`
		args = append(args, f.WorkType)
	}
	if f.CertificateID != nil {
		query += ` AND certificate_id = ?`
		args = append(args, *f.CertificateID)
	}
	if f.Search != "" {
		query += ` AND (title LIKE ? OR description LIKE ? OR problem_solved LIKE ? OR tools_used LIKE ?)`
		like := "%" + f.Search + "%"
		args = append(args, like, like, like, like)
	}
	query += orderBy(f.Ordering, projectOrdering, "created_at DESC")

	rows, err := r.conn.QueryRows(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.Project{}
	for rows.Next() {
		p, err := scanProject(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}

	return out, rows.Err()
}

func (r *SQLiteRepo) UpdateProject(ctx context.Context, ownerID int64, p *models.Project) error {
	if p == nil {
		return fmt.Errorf("project is nil")
	}

	res, err := r.conn.Exec(ctx,
		`UPDATE projects SET certificate_id = ?, title = ?, status = ?, work_type = ?, start_date = ?,
			end_date = ?, duration_text = ?, primary_goal = ?, problem_solved = ?, tools_used = ?,
			skills_used = ?, challenges_short = ?, skills_to_improve = ?, description = ?
		 WHERE id = ? AND user_id = ?`,
		p.CertificateID, p.Title, p.Status, p.WorkType, p.StartDate,
		p.EndDate, p.DurationText, p.PrimaryGoal, p.ProblemSolved, p.ToolsUsed,
		p.SkillsUsed, p.ChallengesShort, p.SkillsToImprove, p.Description,
		p.ID, ownerID)
	if err != nil {
		return err
	}

	return requireRow(res)
}

func (r *SQLiteRepo) DeleteProject(ctx context.Context, ownerID, id int64) error {
	res, err := r.conn.Exec(ctx, `DELETE FROM projects WHERE id = ? AND user_id = ?`, id, ownerID)
	if err != nil {
		return err
	}

	return requireRow(res)
}

func (r *SQLiteRepo) CountProjects(ctx context.Context, ownerID int64) (int64, error) {
	var count int64
	err := r.conn.QueryRow(ctx, `SELECT COUNT(1) FROM projects WHERE user_id = ?`, ownerID).Scan(&count)
	return count, err
}

func (r *SQLiteRepo) CountCompletedProjects(ctx context.Context, ownerID int64) (int64, error) {
	var count int64
	err := r.conn.QueryRow(ctx,
		`SELECT COUNT(1) FROM projects WHERE user_id = ? AND status = ?`,
		ownerID, models.StatusCompleted).Scan(&count)
	return count, err
}
