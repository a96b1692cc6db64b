package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"golang.org/x/crypto/bcrypt"

	"github.com/skillfolio/backend/api"
	"github.com/skillfolio/backend/internal/token"
	"github.com/skillfolio/backend/pkg/models"
	"github.com/skillfolio/backend/pkg/repository/mock"
)

const testSecret = "testsecret"

func testTokens() *token.Manager {
	return token.NewManager(testSecret, time.Hour, 48*time.Hour)
}

// newRequest builds a JSON request authenticated as userID (0 means
// anonymous). vars are injected as mux path variables.
func newRequest(t *testing.T, method, target string, userID int64, body any, vars map[string]string) *http.Request {
	t.Helper()

	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(b)
	}

	req := httptest.NewRequest(method, target, reader)
	req.Header.Set("Content-Type", "application/json")
	if userID > 0 {
		ctx := context.WithValue(req.Context(), api.CtxUserID, userID)
		req = req.WithContext(ctx)
	}
	if vars != nil {
		req = mux.SetURLVars(req, vars)
	}
	return req
}

func idVars(id int64) map[string]string {
	return map[string]string{"id": strconv.FormatInt(id, 10)}
}

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}

func decodeResponse(t *testing.T, w *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.Unmarshal(w.Body.Bytes(), v); err != nil {
		t.Fatalf("unmarshal response %q: %v", w.Body.String(), err)
	}
}

func wantStatus(t *testing.T, w *httptest.ResponseRecorder, want int) {
	t.Helper()
	if w.Code != want {
		t.Fatalf("status = %d, want %d (body %s)", w.Code, want, w.Body.String())
	}
}

// wantFieldError asserts the {"field": ["message"]} validation shape.
func wantFieldError(t *testing.T, w *httptest.ResponseRecorder, field, message string) {
	t.Helper()
	var body map[string][]string
	decodeResponse(t, w, &body)
	msgs, ok := body[field]
	if !ok || len(msgs) == 0 {
		t.Fatalf("no error for field %q in %s", field, w.Body.String())
	}
	if msgs[0] != message {
		t.Fatalf("error for %q = %q, want %q", field, msgs[0], message)
	}
}

func wantDetail(t *testing.T, w *httptest.ResponseRecorder, message string) {
	t.Helper()
	var body map[string]string
	decodeResponse(t, w, &body)
	if body["detail"] != message {
		t.Fatalf("detail = %q, want %q", body["detail"], message)
	}
}

func seedUser(t *testing.T, store *mock.Store, username, email, password string) int64 {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	id, err := store.CreateUser(context.Background(), &models.User{
		Username:     username,
		Email:        email,
		PasswordHash: string(hash),
	})
	if err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return id
}

func datePtr(t *testing.T, s string) *models.Date {
	t.Helper()
	d, err := models.ParseDate(s)
	if err != nil {
		t.Fatalf("parse date %q: %v", s, err)
	}
	return &d
}

func dateOf(t *testing.T, s string) models.Date {
	t.Helper()
	return *datePtr(t, s)
}
