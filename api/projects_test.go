package api_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/skillfolio/backend/api"
	"github.com/skillfolio/backend/pkg/models"
	"github.com/skillfolio/backend/pkg/repository/mock"
)

// relDate returns today+offset days as YYYY-MM-DD.
func relDate(offset int) string {
	return models.DateOf(time.Now().UTC().AddDate(0, 0, offset)).String()
}

func newProjectsHandler(t *testing.T) (*api.ProjectsHandler, *mock.Store, int64) {
	t.Helper()
	store := mock.NewStore()
	alice := seedUser(t, store, "alice", "alice@example.com", "hunter2")
	return api.NewProjectsHandler(store, store), store, alice
}

func TestProjectCreateValidation(t *testing.T) {
	tests := []struct {
		name       string
		body       map[string]any
		wantStatus int
		field      string
		message    string
	}{
		{
			name:       "MissingTitle",
			body:       map[string]any{"status": "planned"},
			wantStatus: http.StatusBadRequest,
			field:      "title",
			message:    "This field is required.",
		},
		{
			name:       "MissingStartDate",
			body:       map[string]any{"title": "CLI tool", "status": "planned"},
			wantStatus: http.StatusBadRequest,
			field:      "start_date",
			message:    "The project must have a start date",
		},
		{
			name:       "PlannedStartInPast",
			body:       map[string]any{"title": "CLI tool", "status": "planned", "start_date": relDate(-1)},
			wantStatus: http.StatusBadRequest,
			field:      "start_date",
			message:    "For planned projects, Start date must be today or in the future.",
		},
		{
			name:       "InProgressStartInFuture",
			body:       map[string]any{"title": "CLI tool", "status": "in_progress", "start_date": relDate(2)},
			wantStatus: http.StatusBadRequest,
			field:      "start_date",
			message:    "Start date cannot be in the future for in-progress projects.",
		},
		{
			name:       "CompletedWithoutEndDate",
			body:       map[string]any{"title": "CLI tool", "status": "completed", "start_date": relDate(-10)},
			wantStatus: http.StatusBadRequest,
			field:      "end_date",
			message:    "Completed projects must have an end date.",
		},
		{
			name:       "CompletedEndBeforeStart",
			body:       map[string]any{"title": "CLI tool", "status": "completed", "start_date": relDate(-5), "end_date": relDate(-8)},
			wantStatus: http.StatusBadRequest,
			field:      "end_date",
			message:    "End date must be after Start date (at least one day).",
		},
		{
			name:       "CompletedEndInFuture",
			body:       map[string]any{"title": "CLI tool", "status": "completed", "start_date": relDate(-5), "end_date": relDate(2)},
			wantStatus: http.StatusBadRequest,
			field:      "end_date",
			message:    "End date cannot be in the future for a completed project.",
		},
		{
			name:       "InvalidStatus",
			body:       map[string]any{"title": "CLI tool", "status": "done", "start_date": relDate(0)},
			wantStatus: http.StatusBadRequest,
			field:      "status",
		},
		{
			name:       "CompletedHappyPath",
			body:       map[string]any{"title": "CLI tool", "status": "completed", "start_date": relDate(-11), "end_date": relDate(-1)},
			wantStatus: http.StatusCreated,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler, _, alice := newProjectsHandler(t)

			req := newRequest(t, http.MethodPost, "/api/projects/", alice, tt.body, nil)
			w := httptest.NewRecorder()
			handler.Create(w, req)

			wantStatus(t, w, tt.wantStatus)
			if tt.field != "" && tt.message != "" {
				wantFieldError(t, w, tt.field, tt.message)
			}
		})
	}
}

func TestProjectEndDateClearedForNonCompleted(t *testing.T) {
	handler, _, alice := newProjectsHandler(t)

	body := map[string]any{
		"title":      "CLI tool",
		"status":     "in_progress",
		"start_date": relDate(-3),
		"end_date":   relDate(-1),
	}
	w := httptest.NewRecorder()
	handler.Create(w, newRequest(t, http.MethodPost, "/api/projects/", alice, body, nil))
	wantStatus(t, w, http.StatusCreated)

	var p struct {
		EndDate      *string `json:"end_date"`
		DurationText *string `json:"duration_text"`
	}
	decodeResponse(t, w, &p)
	if p.EndDate != nil {
		t.Fatalf("end_date = %v, want null", *p.EndDate)
	}
	if p.DurationText != nil {
		t.Fatalf("duration_text = %v, want null", *p.DurationText)
	}
}

func TestProjectDurationText(t *testing.T) {
	handler, _, alice := newProjectsHandler(t)

	body := map[string]any{
		"title":      "CLI tool",
		"status":     "completed",
		"start_date": relDate(-11),
		"end_date":   relDate(-1),
	}
	w := httptest.NewRecorder()
	handler.Create(w, newRequest(t, http.MethodPost, "/api/projects/", alice, body, nil))
	wantStatus(t, w, http.StatusCreated)

	var p struct {
		DurationText *string `json:"duration_text"`
	}
	decodeResponse(t, w, &p)
	if p.DurationText == nil || *p.DurationText != "10 days" {
		t.Fatalf("duration_text = %v, want 10 days", p.DurationText)
	}
}

func TestProjectDescriptionGeneration(t *testing.T) {
	handler, store, alice := newProjectsHandler(t)

	// blank description is synthesized from the structured fields
	body := map[string]any{
		"title":        "CLI tool",
		"status":       "in_progress",
		"work_type":    "individual",
		"start_date":   relDate(-3),
		"tools_used":   "Go, SQLite",
		"primary_goal": "practice_skill",
	}
	w := httptest.NewRecorder()
	handler.Create(w, newRequest(t, http.MethodPost, "/api/projects/", alice, body, nil))
	wantStatus(t, w, http.StatusCreated)

	var p struct {
		ID          int64  `json:"id"`
		Description string `json:"description"`
	}
	decodeResponse(t, w, &p)
	if p.Description == "" {
		t.Fatalf("description not generated")
	}
	if !strings.Contains(p.Description, "Go, SQLite") {
		t.Fatalf("description does not mention tools: %q", p.Description)
	}

	// an explicit description wins over generation
	w = httptest.NewRecorder()
	handler.Update(w, newRequest(t, http.MethodPatch, "/api/projects/1/", alice,
		map[string]any{"description": "My own words."}, idVars(p.ID)))
	wantStatus(t, w, http.StatusOK)
	decodeResponse(t, w, &p)
	if p.Description != "My own words." {
		t.Fatalf("description = %q, want explicit text", p.Description)
	}

	// touching a driver field without a description rebuilds it
	w = httptest.NewRecorder()
	handler.Update(w, newRequest(t, http.MethodPatch, "/api/projects/1/", alice,
		map[string]any{"tools_used": "Go, Postgres"}, idVars(p.ID)))
	wantStatus(t, w, http.StatusOK)
	decodeResponse(t, w, &p)
	if !strings.Contains(p.Description, "Go, Postgres") {
		t.Fatalf("description not regenerated: %q", p.Description)
	}

	// a non-driver update leaves the stored description alone
	stored, err := store.GetProject(context.Background(), alice, p.ID)
	if err != nil {
		t.Fatalf("load project: %v", err)
	}
	w = httptest.NewRecorder()
	handler.Update(w, newRequest(t, http.MethodPatch, "/api/projects/1/", alice,
		map[string]any{}, idVars(p.ID)))
	wantStatus(t, w, http.StatusOK)
	decodeResponse(t, w, &p)
	if p.Description != stored.Description {
		t.Fatalf("description changed on a no-op update")
	}
}

func TestProjectCertificateLink(t *testing.T) {
	handler, store, alice := newProjectsHandler(t)
	bob := seedUser(t, store, "bob", "bob@example.com", "hunter2")

	bobCert, err := store.CreateCertificate(context.Background(), &models.Certificate{
		UserID:     bob,
		Title:      "Bob's cert",
		Issuer:     "Udemy",
		DateEarned: dateOf(t, "2024-01-01"),
	})
	if err != nil {
		t.Fatalf("seed certificate: %v", err)
	}

	// linking a certificate owned by someone else is a validation error
	body := map[string]any{
		"title":       "CLI tool",
		"status":      "planned",
		"start_date":  relDate(1),
		"certificate": bobCert,
	}
	w := httptest.NewRecorder()
	handler.Create(w, newRequest(t, http.MethodPost, "/api/projects/", alice, body, nil))
	wantStatus(t, w, http.StatusBadRequest)
	wantFieldError(t, w, "certificate", "Invalid certificate.")

	aliceCert, err := store.CreateCertificate(context.Background(), &models.Certificate{
		UserID:     alice,
		Title:      "Alice's cert",
		Issuer:     "Coursera",
		DateEarned: dateOf(t, "2024-01-01"),
	})
	if err != nil {
		t.Fatalf("seed certificate: %v", err)
	}
	body["certificate"] = aliceCert
	w = httptest.NewRecorder()
	handler.Create(w, newRequest(t, http.MethodPost, "/api/projects/", alice, body, nil))
	wantStatus(t, w, http.StatusCreated)

	var p struct {
		ID            int64  `json:"id"`
		CertificateID *int64 `json:"certificate"`
	}
	decodeResponse(t, w, &p)
	if p.CertificateID == nil || *p.CertificateID != aliceCert {
		t.Fatalf("certificate = %v, want %d", p.CertificateID, aliceCert)
	}

	// certificate: 0 clears the link
	w = httptest.NewRecorder()
	handler.Update(w, newRequest(t, http.MethodPatch, "/api/projects/1/", alice,
		map[string]any{"certificate": 0}, idVars(p.ID)))
	wantStatus(t, w, http.StatusOK)
	decodeResponse(t, w, &p)
	if p.CertificateID != nil {
		t.Fatalf("certificate link not cleared: %v", *p.CertificateID)
	}
}

func TestProjectListFilters(t *testing.T) {
	handler, store, alice := newProjectsHandler(t)

	seed := []struct {
		title  string
		status string
	}{
		{"alpha", models.StatusPlanned},
		{"beta", models.StatusInProgress},
		{"gamma", models.StatusCompleted},
	}
	for _, s := range seed {
		if _, err := store.CreateProject(context.Background(), &models.Project{
			UserID: alice,
			Title:  s.title,
			Status: s.status,
		}); err != nil {
			t.Fatalf("seed project: %v", err)
		}
	}

	w := httptest.NewRecorder()
	handler.List(w, newRequest(t, http.MethodGet, "/api/projects/?status=completed", alice, nil, nil))
	wantStatus(t, w, http.StatusOK)
	var list []struct {
		Title string `json:"title"`
	}
	decodeResponse(t, w, &list)
	if len(list) != 1 || list[0].Title != "gamma" {
		t.Fatalf("status filter returned %+v", list)
	}

	// the certificateId alias behaves like certificate
	w = httptest.NewRecorder()
	handler.List(w, newRequest(t, http.MethodGet, "/api/projects/?certificateId=99", alice, nil, nil))
	wantStatus(t, w, http.StatusOK)
	decodeResponse(t, w, &list)
	if len(list) != 0 {
		t.Fatalf("expected no rows for unknown certificate, got %+v", list)
	}
}
