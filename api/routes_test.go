package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/skillfolio/backend/api"
	"github.com/skillfolio/backend/internal/config"
	"github.com/skillfolio/backend/internal/db"
)

// TestRoutesEndToEnd drives the full stack through the router: real
// middleware chain, sqlite repository, migrations and seed data.
func TestRoutesEndToEnd(t *testing.T) {
	dir := t.TempDir()
	database, err := db.New(context.Background(), filepath.Join(dir, "test.db"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	defer database.Close()
	if err := database.RunMigrations(); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	if err := database.Seed(context.Background()); err != nil {
		t.Fatalf("seed: %v", err)
	}

	cfg := &config.Config{
		JWTSecret:            testSecret,
		MediaDir:             filepath.Join(dir, "media"),
		AccessTokenDuration:  time.Hour,
		RefreshTokenDuration: 48 * time.Hour,
	}
	router := api.SetupRoutes(cfg, "test", "now", database)

	do := func(method, path, token string, body any) *httptest.ResponseRecorder {
		t.Helper()
		var buf bytes.Buffer
		if body != nil {
			if err := json.NewEncoder(&buf).Encode(body); err != nil {
				t.Fatalf("encode body: %v", err)
			}
		}
		req := httptest.NewRequest(method, path, &buf)
		req.Header.Set("Content-Type", "application/json")
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	// anonymous access to protected and open endpoints
	if w := do(http.MethodGet, "/api/certificates/", "", nil); w.Code != http.StatusUnauthorized {
		t.Fatalf("unauthenticated list: %d", w.Code)
	}
	if w := do(http.MethodGet, "/health", "", nil); w.Code != http.StatusOK {
		t.Fatalf("health: %d", w.Code)
	}
	if w := do(http.MethodGet, "/api/announcements/", "", nil); w.Code != http.StatusOK {
		t.Fatalf("announcements should be public: %d", w.Code)
	}
	if w := do(http.MethodGet, "/api/facts/random/", "", nil); w.Code != http.StatusOK {
		t.Fatalf("seeded facts missing: %d", w.Code)
	}
	if w := do(http.MethodGet, "/api/platforms/?q=go", "", nil); w.Code != http.StatusOK {
		t.Fatalf("platforms: %d", w.Code)
	}
	if w := do(http.MethodGet, "/api/schema/", "", nil); w.Code != http.StatusOK {
		t.Fatalf("schema: %d", w.Code)
	}

	// register, login, then exercise an owner-scoped resource
	w := do(http.MethodPost, "/api/auth/register/", "", map[string]string{
		"email": "e2e@example.com", "password": "hunter2",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("register: %d %s", w.Code, w.Body.String())
	}

	w = do(http.MethodPost, "/api/auth/login/", "", map[string]string{
		"email": "e2e@example.com", "password": "hunter2",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("login: %d %s", w.Code, w.Body.String())
	}
	var tokens struct {
		Access  string `json:"access"`
		Refresh string `json:"refresh"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &tokens); err != nil {
		t.Fatalf("decode tokens: %v", err)
	}

	w = do(http.MethodPost, "/api/certificates/", tokens.Access, map[string]string{
		"title": "Go Basics", "issuer": "Coursera", "date_earned": "2024-06-01",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("create certificate: %d %s", w.Code, w.Body.String())
	}

	w = do(http.MethodGet, "/api/certificates/", tokens.Access, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("list certificates: %d", w.Code)
	}
	var certs []struct {
		Title string `json:"title"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &certs); err != nil {
		t.Fatalf("decode certificates: %v", err)
	}
	if len(certs) != 1 || certs[0].Title != "Go Basics" {
		t.Fatalf("unexpected certificates: %+v", certs)
	}

	w = do(http.MethodGet, "/api/analytics/summary/", tokens.Access, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("summary: %d %s", w.Code, w.Body.String())
	}

	// logout blacklists the refresh token
	w = do(http.MethodPost, "/api/auth/logout/", tokens.Access, map[string]string{
		"refresh": tokens.Refresh,
	})
	if w.Code != http.StatusResetContent {
		t.Fatalf("logout: %d %s", w.Code, w.Body.String())
	}
	w = do(http.MethodPost, "/api/auth/refresh/", "", map[string]string{
		"refresh": tokens.Refresh,
	})
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("blacklisted refresh accepted: %d", w.Code)
	}
}
