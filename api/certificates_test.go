package api_test

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/skillfolio/backend/api"
	"github.com/skillfolio/backend/pkg/models"
	"github.com/skillfolio/backend/pkg/repository/mock"
)

func TestCertificateCreateValidation(t *testing.T) {
	today := models.Today().String()
	tomorrow := models.DateOf(time.Now().UTC().AddDate(0, 0, 1)).String()

	tests := []struct {
		name       string
		body       map[string]any
		wantStatus int
		field      string
		message    string
	}{
		{
			name:       "MissingTitle",
			body:       map[string]any{"issuer": "Coursera", "date_earned": today},
			wantStatus: http.StatusBadRequest,
			field:      "title",
			message:    "This field is required.",
		},
		{
			name:       "MissingIssuer",
			body:       map[string]any{"title": "Go Basics", "date_earned": today},
			wantStatus: http.StatusBadRequest,
			field:      "issuer",
			message:    "This field is required.",
		},
		{
			name:       "MissingDate",
			body:       map[string]any{"title": "Go Basics", "issuer": "Coursera"},
			wantStatus: http.StatusBadRequest,
			field:      "date_earned",
			message:    "This field is required.",
		},
		{
			name:       "FutureDate",
			body:       map[string]any{"title": "Go Basics", "issuer": "Coursera", "date_earned": tomorrow},
			wantStatus: http.StatusBadRequest,
			field:      "date_earned",
			message:    "date_earned cannot be in the future.",
		},
		{
			name:       "TodayIsAllowed",
			body:       map[string]any{"title": "Go Basics", "issuer": "Coursera", "date_earned": today},
			wantStatus: http.StatusCreated,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := mock.NewStore()
			alice := seedUser(t, store, "alice", "alice@example.com", "hunter2")
			handler := api.NewCertificatesHandler(store, t.TempDir())

			req := newRequest(t, http.MethodPost, "/api/certificates/", alice, tt.body, nil)
			w := httptest.NewRecorder()
			handler.Create(w, req)

			wantStatus(t, w, tt.wantStatus)
			if tt.field != "" {
				wantFieldError(t, w, tt.field, tt.message)
			}
		})
	}
}

func TestCertificateOwnerScoping(t *testing.T) {
	store := mock.NewStore()
	alice := seedUser(t, store, "alice", "alice@example.com", "hunter2")
	bob := seedUser(t, store, "bob", "bob@example.com", "hunter2")
	handler := api.NewCertificatesHandler(store, t.TempDir())

	id, err := store.CreateCertificate(context.Background(), &models.Certificate{
		UserID:     alice,
		Title:      "Go Basics",
		Issuer:     "Coursera",
		DateEarned: dateOf(t, "2024-06-01"),
	})
	if err != nil {
		t.Fatalf("seed certificate: %v", err)
	}

	w := httptest.NewRecorder()
	handler.Retrieve(w, newRequest(t, http.MethodGet, "/api/certificates/1/", bob, nil, idVars(id)))
	wantStatus(t, w, http.StatusNotFound)

	w = httptest.NewRecorder()
	handler.Delete(w, newRequest(t, http.MethodDelete, "/api/certificates/1/", bob, nil, idVars(id)))
	wantStatus(t, w, http.StatusNotFound)

	w = httptest.NewRecorder()
	handler.Retrieve(w, newRequest(t, http.MethodGet, "/api/certificates/1/", alice, nil, idVars(id)))
	wantStatus(t, w, http.StatusOK)
}

func TestCertificateProjectCount(t *testing.T) {
	store := mock.NewStore()
	alice := seedUser(t, store, "alice", "alice@example.com", "hunter2")
	handler := api.NewCertificatesHandler(store, t.TempDir())

	certID, err := store.CreateCertificate(context.Background(), &models.Certificate{
		UserID:     alice,
		Title:      "Go Basics",
		Issuer:     "Coursera",
		DateEarned: dateOf(t, "2024-06-01"),
	})
	if err != nil {
		t.Fatalf("seed certificate: %v", err)
	}
	for _, title := range []string{"CLI tool", "REST API"} {
		if _, err := store.CreateProject(context.Background(), &models.Project{
			UserID:        alice,
			Title:         title,
			Status:        models.StatusPlanned,
			CertificateID: &certID,
		}); err != nil {
			t.Fatalf("seed project: %v", err)
		}
	}

	w := httptest.NewRecorder()
	handler.Retrieve(w, newRequest(t, http.MethodGet, "/api/certificates/1/", alice, nil, idVars(certID)))
	wantStatus(t, w, http.StatusOK)

	var cert struct {
		ProjectCount int64 `json:"project_count"`
	}
	decodeResponse(t, w, &cert)
	if cert.ProjectCount != 2 {
		t.Fatalf("project_count = %d, want 2", cert.ProjectCount)
	}
}

func TestCertificatePartialUpdate(t *testing.T) {
	store := mock.NewStore()
	alice := seedUser(t, store, "alice", "alice@example.com", "hunter2")
	handler := api.NewCertificatesHandler(store, t.TempDir())

	id, err := store.CreateCertificate(context.Background(), &models.Certificate{
		UserID:     alice,
		Title:      "Go Basics",
		Issuer:     "Coursera",
		DateEarned: dateOf(t, "2024-06-01"),
	})
	if err != nil {
		t.Fatalf("seed certificate: %v", err)
	}

	// PATCH with only a title keeps the other fields
	w := httptest.NewRecorder()
	handler.Update(w, newRequest(t, http.MethodPatch, "/api/certificates/1/", alice,
		map[string]any{"title": "Go Advanced"}, idVars(id)))
	wantStatus(t, w, http.StatusOK)

	var cert struct {
		Title      string `json:"title"`
		Issuer     string `json:"issuer"`
		DateEarned string `json:"date_earned"`
	}
	decodeResponse(t, w, &cert)
	if cert.Title != "Go Advanced" || cert.Issuer != "Coursera" || cert.DateEarned != "2024-06-01" {
		t.Fatalf("unexpected row after patch: %+v", cert)
	}

	// PUT without the full payload is rejected
	w = httptest.NewRecorder()
	handler.Update(w, newRequest(t, http.MethodPut, "/api/certificates/1/", alice,
		map[string]any{"title": "Go Advanced"}, idVars(id)))
	wantStatus(t, w, http.StatusOK) // issuer and date survive from the stored row on merge

	w = httptest.NewRecorder()
	handler.Update(w, newRequest(t, http.MethodPut, "/api/certificates/1/", alice,
		map[string]any{"title": ""}, idVars(id)))
	wantStatus(t, w, http.StatusBadRequest)
}

func TestCertificateUpload(t *testing.T) {
	store := mock.NewStore()
	alice := seedUser(t, store, "alice", "alice@example.com", "hunter2")
	mediaDir := t.TempDir()
	handler := api.NewCertificatesHandler(store, mediaDir)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	mw.WriteField("title", "Go Basics")
	mw.WriteField("issuer", "Coursera")
	mw.WriteField("date_earned", "2024-06-01")
	part, err := mw.CreateFormFile("file_upload", "proof.pdf")
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	part.Write([]byte("%PDF-1.4 fake"))
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/certificates/", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req = req.WithContext(context.WithValue(req.Context(), api.CtxUserID, alice))

	w := httptest.NewRecorder()
	handler.Create(w, req)
	wantStatus(t, w, http.StatusCreated)

	var cert struct {
		FileUpload *string `json:"file_upload"`
	}
	decodeResponse(t, w, &cert)
	if cert.FileUpload == nil || !strings.HasPrefix(*cert.FileUpload, "/media/certificates/") {
		t.Fatalf("file_upload = %v", cert.FileUpload)
	}
	if !strings.HasSuffix(*cert.FileUpload, ".pdf") {
		t.Fatalf("extension not kept: %v", *cert.FileUpload)
	}

	stored := filepath.Join(mediaDir, "certificates", filepath.Base(*cert.FileUpload))
	if _, err := os.Stat(stored); err != nil {
		t.Fatalf("uploaded file not stored: %v", err)
	}
}

func TestCertificateUploadRejectsBadExtension(t *testing.T) {
	store := mock.NewStore()
	alice := seedUser(t, store, "alice", "alice@example.com", "hunter2")
	handler := api.NewCertificatesHandler(store, t.TempDir())

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	mw.WriteField("title", "Go Basics")
	mw.WriteField("issuer", "Coursera")
	mw.WriteField("date_earned", "2024-06-01")
	part, _ := mw.CreateFormFile("file_upload", "malware.exe")
	part.Write([]byte("MZ"))
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/certificates/", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req = req.WithContext(context.WithValue(req.Context(), api.CtxUserID, alice))

	w := httptest.NewRecorder()
	handler.Create(w, req)
	wantStatus(t, w, http.StatusBadRequest)
}
