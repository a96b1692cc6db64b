package api

import (
	"errors"
	"net/http"

	"github.com/skillfolio/backend/internal/platforms"
	"github.com/skillfolio/backend/pkg/models"
	"github.com/skillfolio/backend/pkg/repository"
)

type AnnouncementsHandler struct {
	annRepo repository.AnnouncementRepo
}

func NewAnnouncementsHandler(ar repository.AnnouncementRepo) *AnnouncementsHandler {
	return &AnnouncementsHandler{annRepo: ar}
}

func (h *AnnouncementsHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := repository.AnnouncementFilter{
		Platform: q.Get("platform"),
		Type:     q.Get("type"),
		Search:   q.Get("search"),
		Ordering: q.Get("ordering"),
	}
	if raw := q.Get("starts_at_after"); raw != "" {
		d, err := models.ParseDate(raw)
		if err != nil {
			fieldError(w, "starts_at_after", "Enter a valid date.")
			return
		}
		f.StartsAfter = &d
	}
	if raw := q.Get("ends_at_before"); raw != "" {
		d, err := models.ParseDate(raw)
		if err != nil {
			fieldError(w, "ends_at_before", "Enter a valid date.")
			return
		}
		f.EndsBefore = &d
	}

	anns, err := h.annRepo.ListAnnouncements(r.Context(), f)
	if err != nil {
		errorDetail(w, http.StatusInternalServerError, "Error listing announcements.")
		return
	}

	writeJSON(w, anns, http.StatusOK)
}

func (h *AnnouncementsHandler) Retrieve(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		errorDetail(w, http.StatusNotFound, "Not found.")
		return
	}

	a, err := h.annRepo.GetAnnouncement(r.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			errorDetail(w, http.StatusNotFound, "Not found.")
			return
		}
		errorDetail(w, http.StatusInternalServerError, "Error loading announcement.")
		return
	}

	writeJSON(w, a, http.StatusOK)
}

// RandomFact serves one active fact at a time so the client can rotate a
// "did you know" box without pulling the whole table.
func (h *AnnouncementsHandler) RandomFact(w http.ResponseWriter, r *http.Request) {
	f, err := h.annRepo.RandomFact(r.Context())
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			errorDetail(w, http.StatusNotFound, "Not found.")
			return
		}
		errorDetail(w, http.StatusInternalServerError, "Error loading fact.")
		return
	}

	writeJSON(w, f, http.StatusOK)
}

func (h *AnnouncementsHandler) Platforms(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	results := platforms.Search(q.Get("q"), q.Get("cost"), q.Get("certs"))
	writeJSON(w, results, http.StatusOK)
}
