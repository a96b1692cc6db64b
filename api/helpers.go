package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"log/slog"
)

func writeJSON(w http.ResponseWriter, v any, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("encode response", slog.Any("err", err))
	}
}

// errorDetail emits {"detail": "..."}.
func errorDetail(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, map[string]string{"detail": msg}, status)
}

// fieldErrors emits {"field": ["message"]}, one message per field.
func fieldErrors(w http.ResponseWriter, status int, fields map[string]string) {
	out := make(map[string][]string, len(fields))
	for f, msg := range fields {
		out[f] = []string{msg}
	}
	writeJSON(w, out, status)
}

func fieldError(w http.ResponseWriter, field, msg string) {
	fieldErrors(w, http.StatusBadRequest, map[string]string{field: msg})
}

// pathID extracts the {id} route variable.
func pathID(r *http.Request) (int64, bool) {
	raw, ok := mux.Vars(r)["id"]
	if !ok {
		return 0, false
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		errorDetail(w, http.StatusBadRequest, "Invalid request body.")
		return false
	}
	return true
}
