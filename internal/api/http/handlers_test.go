package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	authmw "github.com/quizforge/quizforge-lms/internal/auth/middleware"
	"github.com/quizforge/quizforge-lms/internal/db"
	"github.com/quizforge/quizforge-lms/internal/quiz"
	"github.com/quizforge/quizforge-lms/internal/rbac"
	"github.com/quizforge/quizforge-lms/internal/storage"
)

type stubExtractor struct{ text string }

func (s stubExtractor) ExtractText(string) (string, error) { return s.text, nil }

type stubGenerator struct{ drafts []quiz.QuestionDraft }

func (s stubGenerator) Generate(context.Context, string, int) ([]quiz.QuestionDraft, error) {
	return s.drafts, nil
}

type testEnv struct {
	srv     *httptest.Server
	authSvc *authmw.AuthService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	ctx := context.Background()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_pragma=foreign_keys(1)", uuid.NewString())
	dbh, err := db.Open(ctx, db.DriverSQLite, dsn)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { dbh.Close() })

	bs, err := storage.NewFSStore(t.TempDir())
	if err != nil {
		t.Fatalf("blob store: %v", err)
	}

	gen := stubGenerator{drafts: []quiz.QuestionDraft{
		{Prompt: "Q1", Options: []string{"A", "B", "C", "D"}, Correct: "A", Justification: "ja"},
		{Prompt: "Q2", Options: []string{"A", "B", "C", "D"}, Correct: "B", Justification: "jb"},
	}}
	svc := quiz.NewService(quiz.NewSQLStore(dbh), bs, stubExtractor{text: "material text"}, gen)
	authSvc := authmw.NewAuthService("test-secret")

	r := chi.NewRouter()
	r.Post("/auth/register", RegisterHandler(dbh, authSvc))
	r.Post("/auth/login", authmw.LoginHandler(authSvc, dbh))
	r.Group(func(pr chi.Router) {
		pr.Use(authmw.JWTMiddleware(authSvc))
		pr.With(rbac.Require("material:upload")).
			Post("/materials", UploadMaterialHandler(svc))
		pr.With(rbac.Require("material:view")).
			Get("/materials", ListMaterialsHandler(svc))
		pr.With(rbac.Require("material:summary")).
			Get("/materials/{materialID}/summary", MaterialSummaryHandler(svc))
		pr.With(rbac.Require("quiz:view")).
			Get("/materials/{materialID}/quiz", GetQuizHandler(svc))
		pr.With(rbac.Require("quiz:submit")).
			Post("/materials/{materialID}/submit", SubmitQuizHandler(svc))
		pr.With(rbac.Require("quiz:view")).
			Get("/materials/{materialID}/flashcards", FlashcardsHandler(svc))
		pr.With(rbac.Require("attempt:view-own")).
			Get("/attempts", ListAttemptsHandler(svc))
		pr.With(rbac.Require("attempt:view-own")).
			Get("/attempts/{attemptID}", ReviewAttemptHandler(svc))
	})

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return &testEnv{srv: srv, authSvc: authSvc}
}

func (e *testEnv) token(t *testing.T, sub, role string) string {
	t.Helper()
	tok, err := e.authSvc.IssueJWT(sub, role)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	return tok
}

func (e *testEnv) do(t *testing.T, method, path, token string, body io.Reader, contentType string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(method, e.srv.URL+path, body)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	return resp
}

func decodeInto(t *testing.T, resp *http.Response, v any) {
	t.Helper()
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		t.Fatalf("decode response: %v", err)
	}
}

func (e *testEnv) upload(t *testing.T, token string) quiz.Material {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	_ = mw.WriteField("title", "Chapter 1")
	_ = mw.WriteField("num_questions", "2")
	fw, _ := mw.CreateFormFile("file", "ch1.pdf")
	_, _ = fw.Write([]byte("%PDF-1.4 fake"))
	mw.Close()

	resp := e.do(t, "POST", "/materials", token, &buf, mw.FormDataContentType())
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("upload status = %d", resp.StatusCode)
	}
	var m quiz.Material
	decodeInto(t, resp, &m)
	return m
}

func TestQuizFlow(t *testing.T) {
	env := newTestEnv(t)
	instructor := env.token(t, "prof-1", "instructor")
	student := env.token(t, "student-1", "student")

	m := env.upload(t, instructor)
	if m.QuestionCount != 2 {
		t.Fatalf("question count = %d, want 2", m.QuestionCount)
	}

	// students cannot upload
	resp := env.do(t, "POST", "/materials", student, strings.NewReader(""), "multipart/form-data")
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("student upload status = %d, want 403", resp.StatusCode)
	}
	resp.Body.Close()

	// quiz view never leaks correctness or justification
	resp = env.do(t, "GET", "/materials/"+m.ID+"/quiz", student, nil, "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("quiz status = %d", resp.StatusCode)
	}
	raw, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	if bytes.Contains(raw, []byte("is_correct")) || bytes.Contains(raw, []byte("justification")) {
		t.Fatalf("quiz payload leaks answer data: %s", raw)
	}
	var qs []quiz.Question
	if err := json.Unmarshal(raw, &qs); err != nil {
		t.Fatalf("decode quiz: %v", err)
	}
	if len(qs) != 2 {
		t.Fatalf("questions = %d, want 2", len(qs))
	}

	// answer Q1 correctly (option A is first), leave Q2 unanswered
	sel := map[string]any{"answers": map[string]string{qs[0].ID: qs[0].Options[0].ID}}
	body, _ := json.Marshal(sel)
	resp = env.do(t, "POST", "/materials/"+m.ID+"/submit", student, bytes.NewReader(body), "application/json")
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("submit status = %d", resp.StatusCode)
	}
	loc := resp.Header.Get("Location")
	var a quiz.Attempt
	decodeInto(t, resp, &a)
	if a.Score != 1 {
		t.Fatalf("score = %d, want 1", a.Score)
	}
	if loc != "/attempts/"+a.ID {
		t.Fatalf("location = %q", loc)
	}

	// review by another student is a plain 404
	other := env.token(t, "student-2", "student")
	resp = env.do(t, "GET", "/attempts/"+a.ID, other, nil, "")
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("foreign review status = %d, want 404", resp.StatusCode)
	}
	resp.Body.Close()

	// owner review has the graded breakdown in question order
	resp = env.do(t, "GET", "/attempts/"+a.ID, student, nil, "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("review status = %d", resp.StatusCode)
	}
	var rv quiz.Review
	decodeInto(t, resp, &rv)
	if len(rv.Answers) != 2 {
		t.Fatalf("review answers = %d, want 2", len(rv.Answers))
	}
	if !rv.Answers[0].Correct || rv.Answers[0].Selected == nil {
		t.Fatalf("answer 0 = %+v", rv.Answers[0])
	}
	if rv.Answers[1].Correct || rv.Answers[1].Selected != nil {
		t.Fatalf("answer 1 = %+v", rv.Answers[1])
	}
	if rv.Answers[0].Question.Justification == "" {
		t.Fatal("review should include justification")
	}

	// history lists the attempt with its material title
	resp = env.do(t, "GET", "/attempts", student, nil, "")
	var hist []quiz.Attempt
	decodeInto(t, resp, &hist)
	if len(hist) != 1 || hist[0].MaterialTitle != "Chapter 1" {
		t.Fatalf("history = %+v", hist)
	}

	// flashcards carry the answer key
	resp = env.do(t, "GET", "/materials/"+m.ID+"/flashcards", student, nil, "")
	var cards []quiz.Flashcard
	decodeInto(t, resp, &cards)
	if len(cards) != 2 || cards[0].CorrectLabel != "A" || cards[1].CorrectLabel != "B" {
		t.Fatalf("cards = %+v", cards)
	}

	// instructor summary resolves the answer key without anomalies
	resp = env.do(t, "GET", "/materials/"+m.ID+"/summary", instructor, nil, "")
	var rows []quiz.QuestionSummary
	decodeInto(t, resp, &rows)
	if len(rows) != 2 || rows[0].Anomaly != "" || rows[0].CorrectLabel != "A" {
		t.Fatalf("summary = %+v", rows)
	}
}

func TestUploadValidation(t *testing.T) {
	env := newTestEnv(t)
	instructor := env.token(t, "prof-1", "instructor")

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	_ = mw.WriteField("title", "No file here")
	mw.Close()

	resp := env.do(t, "POST", "/materials", instructor, &buf, mw.FormDataContentType())
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestUnauthenticatedRequestsRejected(t *testing.T) {
	env := newTestEnv(t)
	resp := env.do(t, "GET", "/attempts", "", nil, "")
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", resp.StatusCode)
	}
	resp.Body.Close()
}
