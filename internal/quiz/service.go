package quiz

import (
	"context"
	"fmt"
	"io"
	"log"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

const (
	MinQuestions     = 1
	MaxQuestions     = 20
	DefaultQuestions = 5
)

// TextExtractor is the text-extraction capability: one failable call, no
// retry, failure is terminal for that upload.
type TextExtractor interface {
	ExtractText(path string) (string, error)
}

// QuestionGenerator asks the external model for n question drafts built from
// the given text.
type QuestionGenerator interface {
	Generate(ctx context.Context, text string, n int) ([]QuestionDraft, error)
}

// FileStore is the slice of the blob store the upload pipeline needs.
type FileStore interface {
	Put(key string, r io.Reader) (string, error)
	Path(key string) string
	Delete(key string) error
}

type Service struct {
	store     Store
	files     FileStore
	extractor TextExtractor
	generator QuestionGenerator
}

func NewService(store Store, files FileStore, ex TextExtractor, gen QuestionGenerator) *Service {
	return &Service{store: store, files: files, extractor: ex, generator: gen}
}

// ClampQuestionCount forces n into [MinQuestions, MaxQuestions].
func ClampQuestionCount(n int) int {
	if n < MinQuestions {
		return MinQuestions
	}
	if n > MaxQuestions {
		return MaxQuestions
	}
	return n
}

// CreateMaterial runs the upload pipeline: store the file, extract its text,
// generate question drafts, then persist material + questions + options as
// one unit. An adapter failure leaves no material behind.
func (s *Service) CreateMaterial(ctx context.Context, ownerID, title, filename string, file io.Reader, numQuestions int) (Material, error) {
	numQuestions = ClampQuestionCount(numQuestions)

	ext := strings.ToLower(filepath.Ext(filename))
	if ext == "" {
		ext = ".pdf"
	}
	key, err := s.files.Put("materials/"+uuid.NewString()+ext, file)
	if err != nil {
		return Material{}, fmt.Errorf("store file: %w", err)
	}

	text, err := s.extractor.ExtractText(s.files.Path(key))
	if err != nil {
		s.discardFile(key)
		return Material{}, fmt.Errorf("extract text: %w", err)
	}

	drafts, err := s.generator.Generate(ctx, text, numQuestions)
	if err != nil {
		s.discardFile(key)
		return Material{}, fmt.Errorf("generate questions: %w", err)
	}

	m := Material{
		ID:            uuid.NewString(),
		OwnerID:       ownerID,
		Title:         title,
		FileKey:       key,
		ExtractedText: text,
		QuestionCount: len(drafts),
	}
	if err := s.store.CreateMaterial(ctx, m, drafts); err != nil {
		s.discardFile(key)
		return Material{}, fmt.Errorf("persist material: %w", err)
	}
	return m, nil
}

func (s *Service) discardFile(key string) {
	if err := s.files.Delete(key); err != nil {
		log.Printf("quiz: discard file %s: %v", key, err)
	}
}

// GetQuiz returns the material's questions in storage order with the
// correctness flags stripped.
func (s *Service) GetQuiz(ctx context.Context, materialID string) ([]Question, error) {
	qs, err := s.store.MaterialQuestions(ctx, materialID)
	if err != nil {
		return nil, err
	}
	for i := range qs {
		qs[i].Justification = ""
		for j := range qs[i].Options {
			qs[i].Options[j].Correct = false
		}
	}
	return qs, nil
}

// Submit scores one full pass over the material's questions. Every question
// gets an answer row: a selection that resolves to one of that question's own
// options is scored by its flag; anything else (absent, unknown id, another
// question's option) is recorded unanswered and incorrect, never an error.
func (s *Service) Submit(ctx context.Context, materialID, userID string, selections map[string]string) (Attempt, error) {
	qs, err := s.store.MaterialQuestions(ctx, materialID)
	if err != nil {
		return Attempt{}, err
	}

	attempt := Attempt{
		ID:         uuid.NewString(),
		MaterialID: materialID,
		UserID:     userID,
	}
	answers := make([]Answer, 0, len(qs))
	for _, q := range qs {
		ans := Answer{
			ID:         uuid.NewString(),
			AttemptID:  attempt.ID,
			QuestionID: q.ID,
		}
		if sel := selections[q.ID]; sel != "" {
			for _, o := range q.Options {
				if o.ID == sel {
					ans.OptionID = o.ID
					ans.Correct = o.Correct
					break
				}
			}
		}
		if ans.Correct {
			attempt.Score++
		}
		answers = append(answers, ans)
	}

	if err := s.store.CreateAttempt(ctx, attempt, answers); err != nil {
		return Attempt{}, fmt.Errorf("persist attempt: %w", err)
	}
	a, err := s.store.GetAttempt(ctx, attempt.ID, userID)
	if err != nil {
		return attempt, nil
	}
	return a, nil
}

// Review returns the attempt's full graded breakdown, owner-scoped.
func (s *Service) Review(ctx context.Context, attemptID, userID string) (Review, error) {
	a, err := s.store.GetAttempt(ctx, attemptID, userID)
	if err != nil {
		return Review{}, err
	}
	answers, err := s.store.AttemptAnswers(ctx, attemptID)
	if err != nil {
		return Review{}, err
	}
	qs, err := s.store.MaterialQuestions(ctx, a.MaterialID)
	if err != nil {
		return Review{}, err
	}
	byID := make(map[string]Question, len(qs))
	for _, q := range qs {
		byID[q.ID] = q
	}

	rv := Review{Attempt: a, Answers: make([]ReviewAnswer, 0, len(answers))}
	for _, ans := range answers {
		ra := ReviewAnswer{Correct: ans.Correct}
		q, ok := byID[ans.QuestionID]
		if !ok {
			continue
		}
		ra.Question = q
		if ans.OptionID != "" {
			for i := range q.Options {
				if q.Options[i].ID == ans.OptionID {
					sel := q.Options[i]
					ra.Selected = &sel
					break
				}
			}
		}
		rv.Answers = append(rv.Answers, ra)
	}
	return rv, nil
}

// History lists the student's attempts, most recent completion first.
func (s *Service) History(ctx context.Context, userID string) ([]Attempt, error) {
	return s.store.ListAttempts(ctx, userID)
}

// Flashcards is the self-study view: options, justification and the
// anomaly-aware answer key for each question.
func (s *Service) Flashcards(ctx context.Context, materialID string) ([]Flashcard, error) {
	qs, err := s.store.MaterialQuestions(ctx, materialID)
	if err != nil {
		return nil, err
	}
	cards := make([]Flashcard, 0, len(qs))
	for _, q := range qs {
		card := Flashcard{Question: q}
		if o, err := CorrectOption(q); err != nil {
			card.Anomaly = err.Error()
		} else {
			card.CorrectLabel = o.Label
		}
		cards = append(cards, card)
	}
	return cards, nil
}

// Summary is the instructor view of each question's answer key with explicit
// zero-match / multi-match anomaly markers.
func (s *Service) Summary(ctx context.Context, materialID string) ([]QuestionSummary, error) {
	qs, err := s.store.MaterialQuestions(ctx, materialID)
	if err != nil {
		return nil, err
	}
	out := make([]QuestionSummary, 0, len(qs))
	for _, q := range qs {
		row := QuestionSummary{QuestionID: q.ID, Prompt: q.Prompt}
		if o, err := CorrectOption(q); err != nil {
			row.Anomaly = err.Error()
		} else {
			row.CorrectLabel = o.Label
		}
		out = append(out, row)
	}
	return out, nil
}

func (s *Service) MaterialByID(ctx context.Context, id string) (Material, error) {
	return s.store.GetMaterial(ctx, id)
}

// ListMaterials returns the instructor's own materials, newest first.
func (s *Service) ListMaterials(ctx context.Context, ownerID string) ([]Material, error) {
	return s.store.ListMaterials(ctx, ownerID)
}

// DeleteMaterial removes an owned material; questions, options and attempts
// cascade, then the stored file goes too.
func (s *Service) DeleteMaterial(ctx context.Context, id, ownerID string) error {
	m, err := s.store.GetMaterial(ctx, id)
	if err != nil {
		return err
	}
	if m.OwnerID != ownerID {
		return ErrMaterialNotFound
	}
	if err := s.store.DeleteMaterial(ctx, id, ownerID); err != nil {
		return err
	}
	s.discardFile(m.FileKey)
	return nil
}
