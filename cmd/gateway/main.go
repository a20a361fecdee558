package main

import (
	"context"
	"log"
	"net/http"
	"time"

	api "github.com/quizforge/quizforge-lms/internal/api/http"
	auth "github.com/quizforge/quizforge-lms/internal/auth/middleware"
	"github.com/quizforge/quizforge-lms/internal/config"
	"github.com/quizforge/quizforge-lms/internal/db"
	"github.com/quizforge/quizforge-lms/internal/extract"
	"github.com/quizforge/quizforge-lms/internal/quiz"
	"github.com/quizforge/quizforge-lms/internal/quizgen"
	rbac "github.com/quizforge/quizforge-lms/internal/rbac"
	storage "github.com/quizforge/quizforge-lms/internal/storage"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

func main() {
	cfg := config.FromEnv()

	// Missing credential is a startup failure, never a per-request error.
	if cfg.GeminiAPIKey == "" {
		log.Fatal("GEMINI_API_KEY is not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	dbh, err := db.Open(ctx, db.Driver(cfg.DBDriver), cfg.DBDSN)
	if err != nil {
		log.Fatalf("db open failed: %v", err)
	}

	bs, err := storage.NewFSStore(cfg.BlobBasePath)
	if err != nil {
		log.Fatalf("blob store: %v", err)
	}

	gen, err := quizgen.NewClient(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
	if err != nil {
		log.Fatalf("gemini client: %v", err)
	}
	defer gen.Close()

	store := quiz.NewSQLStore(dbh)
	svc := quiz.NewService(store, bs, extract.NewPDFExtractor(), gen)

	authSvc := auth.NewAuthService(cfg.AuthHMACSecret)

	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Logger, middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Content-Length", "Location"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Post("/auth/register", api.RegisterHandler(dbh, authSvc))
	r.Post("/auth/login", auth.LoginHandler(authSvc, dbh))

	// Protected API (JWT → subject+role in context → role refresh → RBAC)
	r.Group(func(pr chi.Router) {
		pr.Use(auth.JWTMiddleware(authSvc))
		pr.Use(auth.AttachRoleFromDB(dbh, true))

		// Instructor: upload pipeline and material management
		pr.With(rbac.Require("material:upload")).
			Post("/materials", api.UploadMaterialHandler(svc))
		pr.With(rbac.Require("material:view")).
			Get("/materials", api.ListMaterialsHandler(svc))
		pr.With(rbac.Require("material:delete-own")).
			Delete("/materials/{materialID}", api.DeleteMaterialHandler(svc))
		pr.With(rbac.Require("material:view")).
			Get("/materials/{materialID}/file", api.MaterialFileHandler(svc, bs))
		pr.With(rbac.Require("material:summary")).
			Get("/materials/{materialID}/summary", api.MaterialSummaryHandler(svc))

		// Student flow
		pr.With(rbac.Require("quiz:view")).
			Get("/materials/{materialID}/quiz", api.GetQuizHandler(svc))
		pr.With(rbac.Require("quiz:submit")).
			Post("/materials/{materialID}/submit", api.SubmitQuizHandler(svc))
		pr.With(rbac.Require("quiz:view")).
			Get("/materials/{materialID}/flashcards", api.FlashcardsHandler(svc))
		pr.With(rbac.Require("attempt:view-own")).
			Get("/attempts", api.ListAttemptsHandler(svc))
		pr.With(rbac.Require("attempt:view-own")).
			Get("/attempts/{attemptID}", api.ReviewAttemptHandler(svc))
	})

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200) })
	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200) })

	log.Printf("listening on %s (db=%s, model=%s)", cfg.HTTPAddr, cfg.DBDriver, cfg.GeminiModel)
	log.Fatal(http.ListenAndServe(cfg.HTTPAddr, r))
}
