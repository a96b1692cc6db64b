package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/skillfolio/backend/pkg/models"
	"github.com/skillfolio/backend/pkg/repository"
)

// Step ownership is inherited from the parent goal, so every query
// joins through goals and filters on its user_id.
const stepColumns = `s.id, s.goal_id, s.title, s.is_done, s.step_order, s.created_at`

var stepOrdering = map[string]string{
	"order":      "s.step_order",
	"created_at": "s.created_at",
}

func (r *SQLiteRepo) CreateGoalStep(ctx context.Context, s *models.GoalStep) (int64, error) {
	if s == nil {
		return 0, fmt.Errorf("goal step is nil")
	}

	res, err := r.conn.Exec(ctx,
		`INSERT INTO goal_steps (goal_id, title, is_done, step_order, created_at) VALUES (?, ?, ?, ?, ?)`,
		s.GoalID, s.Title, s.IsDone, s.Order, now())
	if err != nil {
		return 0, err
	}

	return res.LastInsertId()
}

func scanStep(scan func(...any) error) (*models.GoalStep, error) {
	var s models.GoalStep
	if err := scan(&s.ID, &s.GoalID, &s.Title, &s.IsDone, &s.Order, &s.Created); err != nil {
		return nil, err
	}

	return &s, nil
}

func (r *SQLiteRepo) GetGoalStep(ctx context.Context, ownerID, id int64) (*models.GoalStep, error) {
	row := r.conn.QueryRow(ctx,
		`SELECT `+stepColumns+` FROM goal_steps s JOIN goals g ON g.id = s.goal_id
		 WHERE s.id = ? AND g.user_id = ?`, id, ownerID)
	s, err := scanStep(row.Scan)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, repository.ErrNotFound
		}

		return nil, err
	}

	return s, nil
}

func (r *SQLiteRepo) ListGoalSteps(ctx context.Context, ownerID int64, f repository.StepFilter) ([]models.GoalStep, error) {
	query := `SELECT ` + stepColumns + ` FROM goal_steps s JOIN goals g ON g.id = s.goal_id WHERE g.user_id = ?`
	args := []any{ownerID}

	if f.GoalID != nil {
		query += ` AND s.goal_id = ?`
		args = append(args, *f.GoalID)
	}
	query += orderBy(f.Ordering, stepOrdering, "s.step_order ASC, s.id ASC")

	rows, err := r.conn.QueryRows(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.GoalStep{}
	for rows.Next() {
		s, err := scanStep(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, *s)
	}

	return out, rows.Err()
}

func (r *SQLiteRepo) UpdateGoalStep(ctx context.Context, ownerID int64, s *models.GoalStep) error {
	if s == nil {
		return fmt.Errorf("goal step is nil")
	}

	res, err := r.conn.Exec(ctx,
		`UPDATE goal_steps SET title = ?, is_done = ?, step_order = ?
		 WHERE id = ? AND goal_id IN (SELECT id FROM goals WHERE user_id = ?)`,
		s.Title, s.IsDone, s.Order, s.ID, ownerID)
	if err != nil {
		return err
	}

	return requireRow(res)
}

func (r *SQLiteRepo) DeleteGoalStep(ctx context.Context, ownerID, id int64) error {
	res, err := r.conn.Exec(ctx,
		`DELETE FROM goal_steps WHERE id = ? AND goal_id IN (SELECT id FROM goals WHERE user_id = ?)`,
		id, ownerID)
	if err != nil {
		return err
	}

	return requireRow(res)
}

func (r *SQLiteRepo) GoalOwned(ctx context.Context, ownerID, goalID int64) (bool, error) {
	var count int
	err := r.conn.QueryRow(ctx, `SELECT COUNT(1) FROM goals WHERE id = ? AND user_id = ?`, goalID, ownerID).Scan(&count)
	if err != nil {
		return false, err
	}

	return count > 0, nil
}
