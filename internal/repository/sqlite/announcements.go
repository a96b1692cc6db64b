package sqlite

import (
	"context"
	"database/sql"

	"github.com/shopspring/decimal"
	"github.com/skillfolio/backend/pkg/models"
	"github.com/skillfolio/backend/pkg/repository"
)

const announcementColumns = `id, title, platform, type, url, starts_at, ends_at,
	discount_pct, price_original, price_current, tags, created_at`

var announcementOrdering = map[string]string{
	"starts_at":     "starts_at",
	"created_at":    "created_at",
	"discount_pct":  "discount_pct",
	"price_current": "price_current",
}

func scanAnnouncement(scan func(...any) error) (*models.Announcement, error) {
	var a models.Announcement
	var starts, ends sql.NullString
	var pct sql.NullInt64
	var orig, curr sql.NullString
	err := scan(&a.ID, &a.Title, &a.Platform, &a.Type, &a.URL, &starts, &ends,
		&pct, &orig, &curr, &a.Tags, &a.Created)
	if err != nil {
		return nil, err
	}

	if starts.Valid && starts.String != "" {
		d, err := models.ParseDate(starts.String)
		if err != nil {
			return nil, err
		}
		a.StartsAt = &d
	}
	if ends.Valid && ends.String != "" {
		d, err := models.ParseDate(ends.String)
		if err != nil {
			return nil, err
		}
		a.EndsAt = &d
	}
	if pct.Valid {
		v := int(pct.Int64)
		a.DiscountPct = &v
	}
	if orig.Valid {
		d, err := decimal.NewFromString(orig.String)
		if err != nil {
			return nil, err
		}
		a.PriceOriginal = &d
	}
	if curr.Valid {
		d, err := decimal.NewFromString(curr.String)
		if err != nil {
			return nil, err
		}
		a.PriceCurrent = &d
	}

	return &a, nil
}

func (r *SQLiteRepo) ListAnnouncements(ctx context.Context, f repository.AnnouncementFilter) ([]models.Announcement, error) {
	query := `SELECT ` + announcementColumns + ` FROM announcements WHERE 1=1`
	args := []any{}

	if f.Platform != "" {
		query += ` AND platform = ? COLLATE NOCASE`
		args = append(args, f.Platform)
	}
	if f.Type != "" {
		query += ` AND type = ? COLLATE NOCASE`
		args = append(args, f.Type)
	}
	if f.StartsAfter != nil {
		query += ` AND starts_at >= ?`
		args = append(args, f.StartsAfter.String())
	}
	if f.EndsBefore != nil {
		query += ` AND ends_at <= ?`
		args = append(args, f.EndsBefore.String())
	}
	if f.Search != "" {
		query += ` AND (title LIKE ? OR platform LIKE ? OR tags LIKE ?)`
		like := "%" + f.Search + "%"
		args = append(args, like, like, like)
	}
	query += orderBy(f.Ordering, announcementOrdering, "starts_at DESC, created_at DESC")

	rows, err := r.conn.QueryRows(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.Announcement{}
	for rows.Next() {
		a, err := scanAnnouncement(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, *a)
	}

	return out, rows.Err()
}

func (r *SQLiteRepo) GetAnnouncement(ctx context.Context, id int64) (*models.Announcement, error) {
	row := r.conn.QueryRow(ctx, `SELECT `+announcementColumns+` FROM announcements WHERE id = ?`, id)
	a, err := scanAnnouncement(row.Scan)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, repository.ErrNotFound
		}

		return nil, err
	}

	return a, nil
}

func (r *SQLiteRepo) RandomFact(ctx context.Context) (*models.Fact, error) {
	row := r.conn.QueryRow(ctx,
		`SELECT id, text, source, source_url, active, created_at FROM facts
		 WHERE active = 1 ORDER BY RANDOM() LIMIT 1`)
	var f models.Fact
	if err := row.Scan(&f.ID, &f.Text, &f.Source, &f.SourceURL, &f.Active, &f.Created); err != nil {
		if err == sql.ErrNoRows {
			return nil, repository.ErrNotFound
		}

		return nil, err
	}

	return &f, nil
}
