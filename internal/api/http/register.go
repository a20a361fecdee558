package http

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	authmw "github.com/quizforge/quizforge-lms/internal/auth/middleware"
)

type registerForm struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

// validate returns field-level errors; an empty map means the form is clean.
func (f *registerForm) validate(ctx context.Context, db *sql.DB) map[string]string {
	errs := map[string]string{}

	f.Username = strings.TrimSpace(f.Username)
	f.Email = strings.TrimSpace(f.Email)
	if f.Role == "" {
		f.Role = "student"
	}

	if f.Username == "" {
		errs["username"] = "username is required"
	} else if exists(ctx, db, `SELECT 1 FROM users WHERE username=$1`, f.Username) {
		errs["username"] = "this username is already taken"
	}

	if f.Email == "" {
		errs["email"] = "email is required"
	} else if _, err := mail.ParseAddress(f.Email); err != nil {
		errs["email"] = "enter a valid email address"
	} else if exists(ctx, db, `SELECT 1 FROM users WHERE email=$1`, f.Email) {
		errs["email"] = "this email address is already in use"
	}

	if len(f.Password) < 8 {
		errs["password"] = "password must be at least 8 characters"
	}

	if f.Role != "student" && f.Role != "instructor" {
		errs["role"] = "role must be student or instructor"
	}
	return errs
}

func exists(ctx context.Context, db *sql.DB, query string, args ...any) bool {
	var one int
	return db.QueryRowContext(ctx, query, args...).Scan(&one) == nil
}

// RegisterHandler creates a user and logs them straight in.
func RegisterHandler(db *sql.DB, authSvc *authmw.AuthService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var form registerForm
		if err := json.NewDecoder(r.Body).Decode(&form); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		if errs := form.validate(r.Context(), db); len(errs) > 0 {
			writeJSON(w, http.StatusBadRequest, map[string]any{"errors": errs})
			return
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(form.Password), 12)
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		id := uuid.NewString()
		_, err = db.ExecContext(r.Context(),
			`INSERT INTO users (id, username, email, password_hash, role, created_at)
			 VALUES ($1,$2,$3,$4,$5,$6)`,
			id, form.Username, form.Email, string(hash), form.Role, time.Now().Unix())
		if err != nil {
			// unique races fall through here; report the generic collision
			writeJSON(w, http.StatusBadRequest, map[string]any{
				"errors": map[string]string{"username": "this username or email is already taken"},
			})
			return
		}

		tok, err := authSvc.IssueJWT(id, form.Role)
		if err != nil {
			http.Error(w, "issue token", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusCreated, map[string]string{
			"id":           id,
			"access_token": tok,
		})
	}
}
