package quiz

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"

	syncx "github.com/quizforge/quizforge-lms/internal/sync"
)

type SQLStore struct {
	db *sql.DB
}

func NewSQLStore(db *sql.DB) *SQLStore {
	return &SQLStore{db: db}
}

func (s *SQLStore) CreateMaterial(ctx context.Context, m Material, drafts []QuestionDraft) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if m.CreatedAt == 0 {
		m.CreatedAt = time.Now().Unix()
	}
	_, err = tx.ExecContext(ctx,
		`INSERT INTO materials (id, owner_id, title, file_key, extracted_text, created_at)
		 VALUES ($1,$2,$3,$4,$5,$6)`,
		m.ID, m.OwnerID, m.Title, m.FileKey, m.ExtractedText, m.CreatedAt)
	if err != nil {
		return err
	}

	for qi, d := range drafts {
		qid := uuid.NewString()
		_, err = tx.ExecContext(ctx,
			`INSERT INTO questions (id, material_id, position, prompt, justification)
			 VALUES ($1,$2,$3,$4,$5)`,
			qid, m.ID, qi, d.Prompt, d.Justification)
		if err != nil {
			return err
		}
		for oi, label := range d.Options {
			_, err = tx.ExecContext(ctx,
				`INSERT INTO options (id, question_id, position, label, is_correct)
				 VALUES ($1,$2,$3,$4,$5)`,
				uuid.NewString(), qid, oi, label, label == d.Correct)
			if err != nil {
				return err
			}
		}
	}

	data, _ := json.Marshal(map[string]any{"title": m.Title, "questions": len(drafts)})
	if err := syncx.AppendTx(ctx, tx, syncx.Event{
		Type: syncx.EventMaterialCreated, Key: m.ID, DataJSON: string(data),
	}); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *SQLStore) GetMaterial(ctx context.Context, id string) (Material, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, owner_id, title, file_key, COALESCE(extracted_text,''), created_at
		 FROM materials WHERE id=$1`, id)
	var m Material
	if err := row.Scan(&m.ID, &m.OwnerID, &m.Title, &m.FileKey, &m.ExtractedText, &m.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Material{}, ErrMaterialNotFound
		}
		return Material{}, err
	}
	return m, nil
}

func (s *SQLStore) ListMaterials(ctx context.Context, ownerID string) ([]Material, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT m.id, m.owner_id, m.title, m.file_key, m.created_at,
		        (SELECT COUNT(*) FROM questions q WHERE q.material_id = m.id)
		 FROM materials m WHERE m.owner_id=$1 ORDER BY m.created_at DESC, m.id`, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []Material{}
	for rows.Next() {
		var m Material
		if err := rows.Scan(&m.ID, &m.OwnerID, &m.Title, &m.FileKey, &m.CreatedAt, &m.QuestionCount); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (s *SQLStore) DeleteMaterial(ctx context.Context, id, ownerID string) error {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM materials WHERE id=$1 AND owner_id=$2`, id, ownerID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrMaterialNotFound
	}
	return nil
}

func (s *SQLStore) MaterialQuestions(ctx context.Context, materialID string) ([]Question, error) {
	// existence check so an unknown material is not an empty quiz
	var one int
	if err := s.db.QueryRowContext(ctx, `SELECT 1 FROM materials WHERE id=$1`, materialID).Scan(&one); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMaterialNotFound
		}
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, material_id, position, prompt, justification
		 FROM questions WHERE material_id=$1 ORDER BY position`, materialID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var qs []Question
	byID := map[string]int{}
	for rows.Next() {
		var q Question
		if err := rows.Scan(&q.ID, &q.MaterialID, &q.Position, &q.Prompt, &q.Justification); err != nil {
			return nil, err
		}
		byID[q.ID] = len(qs)
		qs = append(qs, q)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	orows, err := s.db.QueryContext(ctx,
		`SELECT o.id, o.question_id, o.label, o.is_correct
		 FROM options o JOIN questions q ON q.id = o.question_id
		 WHERE q.material_id=$1 ORDER BY q.position, o.position`, materialID)
	if err != nil {
		return nil, err
	}
	defer orows.Close()
	for orows.Next() {
		var o Option
		var qid string
		if err := orows.Scan(&o.ID, &qid, &o.Label, &o.Correct); err != nil {
			return nil, err
		}
		if i, ok := byID[qid]; ok {
			qs[i].Options = append(qs[i].Options, o)
		}
	}
	return qs, orows.Err()
}

func (s *SQLStore) CreateAttempt(ctx context.Context, a Attempt, answers []Answer) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if a.CompletedAt == 0 {
		a.CompletedAt = time.Now().Unix()
	}
	_, err = tx.ExecContext(ctx,
		`INSERT INTO attempts (id, material_id, user_id, score, completed_at)
		 VALUES ($1,$2,$3,$4,$5)`,
		a.ID, a.MaterialID, a.UserID, a.Score, a.CompletedAt)
	if err != nil {
		return err
	}
	for _, ans := range answers {
		var opt any
		if ans.OptionID != "" {
			opt = ans.OptionID
		}
		_, err = tx.ExecContext(ctx,
			`INSERT INTO answers (id, attempt_id, question_id, option_id, correct)
			 VALUES ($1,$2,$3,$4,$5)`,
			ans.ID, a.ID, ans.QuestionID, opt, ans.Correct)
		if err != nil {
			return err
		}
	}

	data, _ := json.Marshal(map[string]any{"user_id": a.UserID, "material_id": a.MaterialID, "score": a.Score})
	if err := syncx.AppendTx(ctx, tx, syncx.Event{
		Type: syncx.EventAttemptSubmitted, Key: a.ID, DataJSON: string(data),
	}); err != nil {
		return err
	}
	return tx.Commit()
}

// GetAttempt is owner-scoped: a wrong user gets the same not-found as a
// missing id.
func (s *SQLStore) GetAttempt(ctx context.Context, attemptID, userID string) (Attempt, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT a.id, a.material_id, m.title, a.user_id, a.score, a.completed_at
		 FROM attempts a JOIN materials m ON m.id = a.material_id
		 WHERE a.id=$1 AND a.user_id=$2`, attemptID, userID)
	var a Attempt
	if err := row.Scan(&a.ID, &a.MaterialID, &a.MaterialTitle, &a.UserID, &a.Score, &a.CompletedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Attempt{}, ErrAttemptNotFound
		}
		return Attempt{}, err
	}
	return a, nil
}

func (s *SQLStore) AttemptAnswers(ctx context.Context, attemptID string) ([]Answer, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT ans.id, ans.attempt_id, ans.question_id, ans.option_id, ans.correct
		 FROM answers ans JOIN questions q ON q.id = ans.question_id
		 WHERE ans.attempt_id=$1 ORDER BY q.position`, attemptID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []Answer{}
	for rows.Next() {
		var a Answer
		var opt sql.NullString
		if err := rows.Scan(&a.ID, &a.AttemptID, &a.QuestionID, &opt, &a.Correct); err != nil {
			return nil, err
		}
		a.OptionID = opt.String
		out = append(out, a)
	}
	return out, rows.Err()
}

func (s *SQLStore) ListAttempts(ctx context.Context, userID string) ([]Attempt, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT a.id, a.material_id, m.title, a.user_id, a.score, a.completed_at
		 FROM attempts a JOIN materials m ON m.id = a.material_id
		 WHERE a.user_id=$1 ORDER BY a.completed_at DESC, a.id DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []Attempt{}
	for rows.Next() {
		var a Attempt
		if err := rows.Scan(&a.ID, &a.MaterialID, &a.MaterialTitle, &a.UserID, &a.Score, &a.CompletedAt); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}
