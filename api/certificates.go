package api

import (
	"errors"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/skillfolio/backend/internal/validation"
	"github.com/skillfolio/backend/pkg/models"
	"github.com/skillfolio/backend/pkg/repository"
)

type CertificatesHandler struct {
	certRepo repository.CertificateRepo
	mediaDir string
}

func NewCertificatesHandler(cr repository.CertificateRepo, mediaDir string) *CertificatesHandler {
	return &CertificatesHandler{certRepo: cr, mediaDir: mediaDir}
}

type certificateRequest struct {
	Title      *string      `json:"title"`
	Issuer     *string      `json:"issuer"`
	DateEarned *models.Date `json:"date_earned"`
}

func (h *CertificatesHandler) List(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerID(r)
	if !ok {
		errorDetail(w, http.StatusUnauthorized, "Authentication credentials were not provided.")
		return
	}

	q := r.URL.Query()
	f := repository.CertificateFilter{
		Issuer:   q.Get("issuer"),
		Search:   q.Get("search"),
		Ordering: q.Get("ordering"),
	}
	if raw := q.Get("id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			fieldError(w, "id", "Enter a number.")
			return
		}
		f.ID = &id
	}
	if raw := q.Get("date_earned"); raw != "" {
		d, err := models.ParseDate(raw)
		if err != nil {
			fieldError(w, "date_earned", "Enter a valid date.")
			return
		}
		f.DateEarned = &d
	}

	certs, err := h.certRepo.ListCertificates(r.Context(), caller, f)
	if err != nil {
		errorDetail(w, http.StatusInternalServerError, "Error listing certificates.")
		return
	}

	writeJSON(w, certs, http.StatusOK)
}

func (h *CertificatesHandler) Retrieve(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerID(r)
	if !ok {
		errorDetail(w, http.StatusUnauthorized, "Authentication credentials were not provided.")
		return
	}
	id, ok := pathID(r)
	if !ok {
		errorDetail(w, http.StatusNotFound, "Not found.")
		return
	}

	cert, err := h.certRepo.GetCertificate(r.Context(), caller, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			errorDetail(w, http.StatusNotFound, "Not found.")
			return
		}
		errorDetail(w, http.StatusInternalServerError, "Error loading certificate.")
		return
	}

	writeJSON(w, cert, http.StatusOK)
}

func (h *CertificatesHandler) Create(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerID(r)
	if !ok {
		errorDetail(w, http.StatusUnauthorized, "Authentication credentials were not provided.")
		return
	}

	cert := &models.Certificate{UserID: caller}
	if !h.applyRequest(w, r, cert, true) {
		return
	}

	id, err := h.certRepo.CreateCertificate(r.Context(), cert)
	if err != nil {
		errorDetail(w, http.StatusInternalServerError, "Error creating certificate.")
		return
	}

	created, err := h.certRepo.GetCertificate(r.Context(), caller, id)
	if err != nil {
		errorDetail(w, http.StatusInternalServerError, "Error loading certificate.")
		return
	}

	writeJSON(w, created, http.StatusCreated)
}

func (h *CertificatesHandler) Update(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerID(r)
	if !ok {
		errorDetail(w, http.StatusUnauthorized, "Authentication credentials were not provided.")
		return
	}
	id, ok := pathID(r)
	if !ok {
		errorDetail(w, http.StatusNotFound, "Not found.")
		return
	}

	cert, err := h.certRepo.GetCertificate(r.Context(), caller, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			errorDetail(w, http.StatusNotFound, "Not found.")
			return
		}
		errorDetail(w, http.StatusInternalServerError, "Error loading certificate.")
		return
	}

	// PUT requires the full payload, PATCH merges over the stored row.
	if !h.applyRequest(w, r, cert, r.Method == http.MethodPut) {
		return
	}

	if err := h.certRepo.UpdateCertificate(r.Context(), caller, cert); err != nil {
		errorDetail(w, http.StatusInternalServerError, "Error updating certificate.")
		return
	}

	updated, err := h.certRepo.GetCertificate(r.Context(), caller, id)
	if err != nil {
		errorDetail(w, http.StatusInternalServerError, "Error loading certificate.")
		return
	}

	writeJSON(w, updated, http.StatusOK)
}

func (h *CertificatesHandler) Delete(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerID(r)
	if !ok {
		errorDetail(w, http.StatusUnauthorized, "Authentication credentials were not provided.")
		return
	}
	id, ok := pathID(r)
	if !ok {
		errorDetail(w, http.StatusNotFound, "Not found.")
		return
	}

	if err := h.certRepo.DeleteCertificate(r.Context(), caller, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			errorDetail(w, http.StatusNotFound, "Not found.")
			return
		}
		errorDetail(w, http.StatusInternalServerError, "Error deleting certificate.")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// applyRequest fills cert from a JSON or multipart payload. With
// requireAll set, title, issuer and date_earned must all be present
// (create and PUT); otherwise missing fields keep their stored value.
func (h *CertificatesHandler) applyRequest(w http.ResponseWriter, r *http.Request, cert *models.Certificate, requireAll bool) bool {
	var req certificateRequest

	contentType := r.Header.Get("Content-Type")
	if strings.HasPrefix(contentType, "multipart/form-data") {
		if !h.decodeMultipart(w, r, &req, cert) {
			return false
		}
	} else {
		if !decodeBody(w, r, &req) {
			return false
		}
	}

	if req.Title != nil {
		cert.Title = strings.TrimSpace(*req.Title)
	}
	if req.Issuer != nil {
		cert.Issuer = strings.TrimSpace(*req.Issuer)
	}
	if req.DateEarned != nil {
		cert.DateEarned = *req.DateEarned
	}

	if requireAll || req.Title != nil {
		if cert.Title == "" {
			fieldError(w, "title", "This field is required.")
			return false
		}
	}
	if requireAll || req.Issuer != nil {
		if cert.Issuer == "" {
			fieldError(w, "issuer", "This field is required.")
			return false
		}
	}
	if cert.DateEarned.IsZero() {
		fieldError(w, "date_earned", "This field is required.")
		return false
	}
	if cert.DateEarned.After(models.Today().Time) {
		fieldError(w, "date_earned", "date_earned cannot be in the future.")
		return false
	}

	return true
}

// decodeMultipart reads the form fields and stores an uploaded proof
// file under <media>/certificates/.
func (h *CertificatesHandler) decodeMultipart(w http.ResponseWriter, r *http.Request, req *certificateRequest, cert *models.Certificate) bool {
	if err := r.ParseMultipartForm(validation.CertificateFileMaxSize + 1<<20); err != nil {
		errorDetail(w, http.StatusBadRequest, "Invalid multipart form.")
		return false
	}

	form := r.MultipartForm
	if vs, ok := form.Value["title"]; ok && len(vs) > 0 {
		req.Title = &vs[0]
	}
	if vs, ok := form.Value["issuer"]; ok && len(vs) > 0 {
		req.Issuer = &vs[0]
	}
	if vs, ok := form.Value["date_earned"]; ok && len(vs) > 0 {
		d, err := models.ParseDate(vs[0])
		if err != nil {
			fieldError(w, "date_earned", "Enter a valid date.")
			return false
		}
		req.DateEarned = &d
	}

	files, ok := form.File["file_upload"]
	if !ok || len(files) == 0 {
		return true
	}
	header := files[0]

	if err := validation.ValidateCertificateFile(header); err != nil {
		fieldError(w, "file_upload", err.Error())
		return false
	}

	src, err := header.Open()
	if err != nil {
		errorDetail(w, http.StatusBadRequest, "Invalid uploaded file.")
		return false
	}
	defer src.Close()

	dir := filepath.Join(h.mediaDir, "certificates")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		errorDetail(w, http.StatusInternalServerError, "Error storing file.")
		return false
	}

	name := uuid.NewString() + strings.ToLower(filepath.Ext(header.Filename))
	dst, err := os.Create(filepath.Join(dir, name))
	if err != nil {
		errorDetail(w, http.StatusInternalServerError, "Error storing file.")
		return false
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		errorDetail(w, http.StatusInternalServerError, "Error storing file.")
		return false
	}

	path := "/media/certificates/" + name
	cert.FileUpload = &path
	return true
}
