package sqlite

import (
	"time"

	"github.com/skillfolio/backend/internal/db"
	"github.com/skillfolio/backend/pkg/repository"
)

// SQLiteRepo implements repository interfaces using the internal DB wrapper.
type SQLiteRepo struct {
	conn *db.DB
}

// Ensure SQLiteRepo implements the public interfaces.
var _ repository.UserRepo = (*SQLiteRepo)(nil)
var _ repository.CertificateRepo = (*SQLiteRepo)(nil)
var _ repository.ProjectRepo = (*SQLiteRepo)(nil)
var _ repository.GoalRepo = (*SQLiteRepo)(nil)
var _ repository.GoalStepRepo = (*SQLiteRepo)(nil)
var _ repository.AnnouncementRepo = (*SQLiteRepo)(nil)
var _ repository.TokenRepo = (*SQLiteRepo)(nil)

func New(conn *db.DB) *SQLiteRepo {
	return &SQLiteRepo{conn: conn}
}

func now() int64 {
	return time.Now().UTC().UnixMilli()
}

// orderBy translates a client ordering value ("field" or "-field") into
// an ORDER BY clause using only whitelisted columns. The fallback is
// used when the value is empty or not in the whitelist.
func orderBy(ordering string, allowed map[string]string, fallback string) string {
	desc := false
	if len(ordering) > 0 && ordering[0] == '-' {
		desc = true
		ordering = ordering[1:]
	}
	col, ok := allowed[ordering]
	if !ok {
		return " ORDER BY " + fallback
	}
	if desc {
		return " ORDER BY " + col + " DESC"
	}
	return " ORDER BY " + col + " ASC"
}
