package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/skillfolio/backend/pkg/models"
	"github.com/skillfolio/backend/pkg/repository"
)

const goalColumns = `id, user_id, title, target_projects, deadline, total_steps, completed_steps, created_at`

var goalOrdering = map[string]string{
	"deadline":        "deadline",
	"created_at":      "created_at",
	"title":           "title",
	"total_steps":     "total_steps",
	"completed_steps": "completed_steps",
}

func (r *SQLiteRepo) CreateGoal(ctx context.Context, g *models.Goal) (int64, error) {
	if g == nil {
		return 0, fmt.Errorf("goal is nil")
	}

	res, err := r.conn.Exec(ctx,
		`INSERT INTO goals (user_id, title, target_projects, deadline, total_steps, completed_steps, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		g.UserID, g.Title, g.TargetProjects, g.Deadline, g.TotalSteps, g.CompletedSteps, now())
	if err != nil {
		return 0, err
	}

	return res.LastInsertId()
}

func scanGoal(scan func(...any) error) (*models.Goal, error) {
	var g models.Goal
	err := scan(&g.ID, &g.UserID, &g.Title, &g.TargetProjects, &g.Deadline,
		&g.TotalSteps, &g.CompletedSteps, &g.Created)
	if err != nil {
		return nil, err
	}

	return &g, nil
}

func (r *SQLiteRepo) GetGoal(ctx context.Context, ownerID, id int64) (*models.Goal, error) {
	row := r.conn.QueryRow(ctx,
		`SELECT `+goalColumns+` FROM goals WHERE id = ? AND user_id = ?`, id, ownerID)
	g, err := scanGoal(row.Scan)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, repository.ErrNotFound
		}

		return nil, err
	}

	return g, nil
}

func (r *SQLiteRepo) ListGoals(ctx context.Context, ownerID int64, f repository.GoalFilter) ([]models.Goal, error) {
	query := `SELECT ` + goalColumns + ` FROM goals WHERE user_id = ?`
	args := []any{ownerID}

	if f.Deadline != nil {
		query += ` AND deadline = ?`
		args = append(args, f.Deadline.String())
	}
	if f.Search != "" {
		query += ` AND title LIKE ?`
		args = append(args, "%"+f.Search+"%")
	}
	query += orderBy(f.Ordering, goalOrdering, "created_at DESC, id DESC")

	rows, err := r.conn.QueryRows(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.Goal{}
	for rows.Next() {
		g, err := scanGoal(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, *g)
	}

	return out, rows.Err()
}

func (r *SQLiteRepo) UpdateGoal(ctx context.Context, ownerID int64, g *models.Goal) error {
	if g == nil {
		return fmt.Errorf("goal is nil")
	}

	res, err := r.conn.Exec(ctx,
		`UPDATE goals SET title = ?, target_projects = ?, deadline = ?, total_steps = ?, completed_steps = ?
		 WHERE id = ? AND user_id = ?`,
		g.Title, g.TargetProjects, g.Deadline, g.TotalSteps, g.CompletedSteps, g.ID, ownerID)
	if err != nil {
		return err
	}

	return requireRow(res)
}

func (r *SQLiteRepo) DeleteGoal(ctx context.Context, ownerID, id int64) error {
	res, err := r.conn.Exec(ctx, `DELETE FROM goals WHERE id = ? AND user_id = ?`, id, ownerID)
	if err != nil {
		return err
	}

	return requireRow(res)
}

func (r *SQLiteRepo) CountGoals(ctx context.Context, ownerID int64) (int64, error) {
	var count int64
	err := r.conn.QueryRow(ctx, `SELECT COUNT(1) FROM goals WHERE user_id = ?`, ownerID).Scan(&count)
	return count, err
}

// RecountGoalSteps overwrites the goal counters with a full recount.
// A single statement keeps the counters consistent without a
// transaction even when steps change concurrently.
func (r *SQLiteRepo) RecountGoalSteps(ctx context.Context, goalID int64) error {
	_, err := r.conn.Exec(ctx,
		`UPDATE goals SET
			total_steps = (SELECT COUNT(1) FROM goal_steps WHERE goal_id = goals.id),
			completed_steps = (SELECT COUNT(1) FROM goal_steps WHERE goal_id = goals.id AND is_done = 1)
		 WHERE id = ?`, goalID)
	return err
}
