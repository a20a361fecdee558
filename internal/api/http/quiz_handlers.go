package http

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	authmw "github.com/quizforge/quizforge-lms/internal/auth/middleware"
	"github.com/quizforge/quizforge-lms/internal/quiz"
)

// GetQuizHandler serves the material's questions for taking the quiz.
// Correct flags are stripped before they leave the service.
func GetQuizHandler(svc *quiz.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "materialID")
		qs, err := svc.GetQuiz(r.Context(), id)
		if err != nil {
			storeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, qs)
	}
}

// SubmitQuizHandler accepts {"answers": {questionID: optionID}}; questions
// absent from the map are scored as unanswered.
func SubmitQuizHandler(svc *quiz.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "materialID")
		var req struct {
			Answers map[string]string `json:"answers"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		student := authmw.SubjectFromContext(r.Context())
		a, err := svc.Submit(r.Context(), id, student, req.Answers)
		if err != nil {
			storeError(w, err)
			return
		}
		w.Header().Set("Location", "/attempts/"+a.ID)
		writeJSON(w, http.StatusCreated, a)
	}
}

func FlashcardsHandler(svc *quiz.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "materialID")
		cards, err := svc.Flashcards(r.Context(), id)
		if err != nil {
			storeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, cards)
	}
}
