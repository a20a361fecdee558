package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/quizforge/quizforge-lms/internal/quiz"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// storeError maps domain errors onto user-facing responses. Not-found also
// covers someone else's attempt, so existence is never confirmed.
func storeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, quiz.ErrMaterialNotFound), errors.Is(err, quiz.ErrAttemptNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	default:
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func parseIntDefault(s string, def int) int {
	if s == "" {
		return def
	}
	if v, err := strconv.Atoi(s); err == nil && v >= 0 {
		return v
	}
	return def
}
