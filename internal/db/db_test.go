package db_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	dbpkg "github.com/skillfolio/backend/internal/db"
)

func newTestDB(t *testing.T) *dbpkg.DB {
	t.Helper()
	ctx := context.Background()
	d, err := dbpkg.New(ctx, filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	t.Cleanup(func() { d.Close() })
	return d
}

func TestNew_Close_GetConn(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	d, err := dbpkg.New(ctx, filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	if d.GetConn() == nil {
		t.Fatalf("expected non-nil sql.DB from GetConn")
	}

	if err := d.Close(); err != nil {
		t.Fatalf("Close returned error: %v", err)
	}
}

func TestExec_QueryRow(t *testing.T) {
	ctx := context.Background()
	d := newTestDB(t)

	_, err := d.Exec(ctx, `CREATE TABLE items (id INTEGER PRIMARY KEY AUTOINCREMENT, name TEXT);`)
	if err != nil {
		t.Fatalf("Exec create table returned error: %v", err)
	}

	res, err := d.Exec(ctx, `INSERT INTO items (name) VALUES (?)`, "foo")
	if err != nil {
		t.Fatalf("Exec insert returned error: %v", err)
	}
	lastID, err := res.LastInsertId()
	if err != nil {
		t.Fatalf("LastInsertId returned error: %v", err)
	}
	if lastID == 0 {
		t.Fatalf("expected last insert id > 0")
	}

	row := d.QueryRow(ctx, `SELECT name FROM items WHERE id = ?`, lastID)
	var name string
	if err := row.Scan(&name); err != nil {
		t.Fatalf("QueryRow scan returned error: %v", err)
	}
	if name != "foo" {
		t.Fatalf("expected name 'foo' got %q", name)
	}
}

func TestForeignKeysEnforced(t *testing.T) {
	ctx := context.Background()
	d := newTestDB(t)
	if err := d.RunMigrations(); err != nil {
		t.Fatalf("RunMigrations returned error: %v", err)
	}

	// goal_steps references goals; inserting against a missing goal must fail
	_, err := d.Exec(ctx,
		`INSERT INTO goal_steps (goal_id, title, is_done, step_order, created_at) VALUES (999, 'x', 0, 0, 0)`)
	if err == nil {
		t.Fatalf("expected foreign key violation, got nil")
	}
}

func TestMigrateAndSeedIdempotent(t *testing.T) {
	ctx := context.Background()
	d := newTestDB(t)

	if err := d.RunMigrations(); err != nil {
		t.Fatalf("RunMigrations returned error: %v", err)
	}
	// a second run must be a no-op
	if err := d.RunMigrations(); err != nil {
		t.Fatalf("second RunMigrations returned error: %v", err)
	}

	if err := d.Seed(ctx); err != nil {
		t.Fatalf("Seed returned error: %v", err)
	}

	var first int
	if err := d.QueryRow(ctx, `SELECT COUNT(1) FROM announcements`).Scan(&first); err != nil {
		t.Fatalf("count announcements: %v", err)
	}
	if first == 0 {
		t.Fatalf("expected seeded announcements")
	}

	var facts int
	if err := d.QueryRow(ctx, `SELECT COUNT(1) FROM facts`).Scan(&facts); err != nil {
		t.Fatalf("count facts: %v", err)
	}
	if facts == 0 {
		t.Fatalf("expected seeded facts")
	}

	// seeding again must not duplicate rows
	if err := d.Seed(ctx); err != nil {
		t.Fatalf("second Seed returned error: %v", err)
	}
	var second int
	if err := d.QueryRow(ctx, `SELECT COUNT(1) FROM announcements`).Scan(&second); err != nil {
		t.Fatalf("count announcements: %v", err)
	}
	if second != first {
		t.Fatalf("expected %d announcements after reseed, got %d", first, second)
	}
}
