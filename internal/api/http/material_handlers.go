package http

import (
	"io"
	"log"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	authmw "github.com/quizforge/quizforge-lms/internal/auth/middleware"
	"github.com/quizforge/quizforge-lms/internal/quiz"
	"github.com/quizforge/quizforge-lms/internal/storage"
)

const maxUploadBytes = 32 << 20

// UploadMaterialHandler runs the whole pipeline for one multipart upload:
// title, file and an optional num_questions (default 5, clamped to [1,20]).
// Adapter failures come back as one user-facing message; nothing partial is
// left behind.
func UploadMaterialHandler(svc *quiz.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
			http.Error(w, "bad multipart form", http.StatusBadRequest)
			return
		}
		title := strings.TrimSpace(r.FormValue("title"))
		file, hdr, err := r.FormFile("file")
		if title == "" || err != nil {
			http.Error(w, "title and file are required", http.StatusBadRequest)
			return
		}
		defer file.Close()
		n := parseIntDefault(r.FormValue("num_questions"), quiz.DefaultQuestions)

		owner := authmw.SubjectFromContext(r.Context())
		m, err := svc.CreateMaterial(r.Context(), owner, title, hdr.Filename, file, n)
		if err != nil {
			log.Printf("upload: %v", err)
			http.Error(w, "could not build a quiz from this file", http.StatusUnprocessableEntity)
			return
		}
		w.Header().Set("Location", "/materials/"+m.ID+"/quiz")
		writeJSON(w, http.StatusCreated, m)
	}
}

func ListMaterialsHandler(svc *quiz.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		owner := authmw.SubjectFromContext(r.Context())
		list, err := svc.ListMaterials(r.Context(), owner)
		if err != nil {
			storeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, list)
	}
}

func DeleteMaterialHandler(svc *quiz.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "materialID")
		owner := authmw.SubjectFromContext(r.Context())
		if err := svc.DeleteMaterial(r.Context(), id, owner); err != nil {
			storeError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// MaterialFileHandler streams the stored source document.
func MaterialFileHandler(svc *quiz.Service, bs storage.BlobStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "materialID")
		m, err := svc.MaterialByID(r.Context(), id)
		if err != nil {
			storeError(w, err)
			return
		}
		rc, err := bs.Get(m.FileKey)
		if err != nil {
			http.Error(w, "file unavailable", http.StatusNotFound)
			return
		}
		defer rc.Close()
		w.Header().Set("Content-Type", "application/pdf")
		_, _ = io.Copy(w, rc)
	}
}

func MaterialSummaryHandler(svc *quiz.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "materialID")
		rows, err := svc.Summary(r.Context(), id)
		if err != nil {
			storeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, rows)
	}
}
