package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	authmw "github.com/quizforge/quizforge-lms/internal/auth/middleware"
	"github.com/quizforge/quizforge-lms/internal/quiz"
)

// ReviewAttemptHandler returns the graded breakdown for one of the caller's
// own attempts. Anyone else's attempt id is a plain 404.
func ReviewAttemptHandler(svc *quiz.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "attemptID")
		student := authmw.SubjectFromContext(r.Context())
		rv, err := svc.Review(r.Context(), id, student)
		if err != nil {
			storeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, rv)
	}
}

// ListAttemptsHandler is the caller's quiz history, newest first.
func ListAttemptsHandler(svc *quiz.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		student := authmw.SubjectFromContext(r.Context())
		list, err := svc.History(r.Context(), student)
		if err != nil {
			storeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, list)
	}
}
