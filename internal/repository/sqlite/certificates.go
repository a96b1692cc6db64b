package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/skillfolio/backend/pkg/models"
	"github.com/skillfolio/backend/pkg/repository"
)

// certificateColumns includes a correlated project count so list and
// detail responses carry it without a second query.
const certificateColumns = `c.id, c.user_id, c.title, c.issuer, c.date_earned, c.file_upload,
	(SELECT COUNT(1) FROM projects p WHERE p.certificate_id = c.id) AS project_count,
	c.created_at`

var certificateOrdering = map[string]string{
	"date_earned": "c.date_earned",
	"created_at":  "c.created_at",
	"title":       "c.title",
}

func (r *SQLiteRepo) CreateCertificate(ctx context.Context, c *models.Certificate) (int64, error) {
	if c == nil {
		return 0, fmt.Errorf("certificate is nil")
	}

	res, err := r.conn.Exec(ctx,
		`INSERT INTO certificates (user_id, title, issuer, date_earned, file_upload, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		c.UserID, c.Title, c.Issuer, c.DateEarned, c.FileUpload, now())
	if err != nil {
		return 0, err
	}

	return res.LastInsertId()
}

func scanCertificate(scan func(...any) error) (*models.Certificate, error) {
	var c models.Certificate
	var file sql.NullString
	err := scan(&c.ID, &c.UserID, &c.Title, &c.Issuer, &c.DateEarned, &file, &c.ProjectCount, &c.Created)
	if err != nil {
		return nil, err
	}
	if file.Valid {
		c.FileUpload = &file.String
	}

	return &c, nil
}

func (r *SQLiteRepo) GetCertificate(ctx context.Context, ownerID, id int64) (*models.Certificate, error) {
	row := r.conn.QueryRow(ctx,
		`SELECT `+certificateColumns+` FROM certificates c WHERE c.id = ? AND c.user_id = ?`, id, ownerID)
	c, err := scanCertificate(row.Scan)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, repository.ErrNotFound
		}

		return nil, err
	}

	return c, nil
}

func (r *SQLiteRepo) ListCertificates(ctx context.Context, ownerID int64, f repository.CertificateFilter) ([]models.Certificate, error) {
	query := `SELECT ` + certificateColumns + ` FROM certificates c WHERE c.user_id = ?`
	args := []any{ownerID}

	if f.ID != nil {
		query += ` AND c.id = ?`
		args = append(args, *f.ID)
	}
	if f.Issuer != "" {
		query += ` AND c.issuer = ? COLLATE NOCASE`
		args = append(args, f.Issuer)
	}
	if f.DateEarned != nil {
		query += ` AND c.date_earned = ?`
		args = append(args, f.DateEarned.String())
	}
	if f.Search != "" {
		query += ` AND (c.title LIKE ? OR c.issuer LIKE ?)`
		like := "%" + f.Search + "%"
		args = append(args, like, like)
	}
	query += orderBy(f.Ordering, certificateOrdering, "c.date_earned DESC, c.created_at DESC")

	rows, err := r.conn.QueryRows(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.Certificate{}
	for rows.Next() {
		c, err := scanCertificate(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, *c)
	}

	return out, rows.Err()
}

func (r *SQLiteRepo) UpdateCertificate(ctx context.Context, ownerID int64, c *models.Certificate) error {
	if c == nil {
		return fmt.Errorf("certificate is nil")
	}

	res, err := r.conn.Exec(ctx,
		`UPDATE certificates SET title = ?, issuer = ?, date_earned = ?, file_upload = ? WHERE id = ? AND user_id = ?`,
		c.Title, c.Issuer, c.DateEarned, c.FileUpload, c.ID, ownerID)
	if err != nil {
		return err
	}

	return requireRow(res)
}

func (r *SQLiteRepo) DeleteCertificate(ctx context.Context, ownerID, id int64) error {
	res, err := r.conn.Exec(ctx, `DELETE FROM certificates WHERE id = ? AND user_id = ?`, id, ownerID)
	if err != nil {
		return err
	}

	return requireRow(res)
}

func (r *SQLiteRepo) CountCertificates(ctx context.Context, ownerID int64) (int64, error) {
	var count int64
	err := r.conn.QueryRow(ctx, `SELECT COUNT(1) FROM certificates WHERE user_id = ?`, ownerID).Scan(&count)
	return count, err
}
