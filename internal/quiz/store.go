package quiz

import (
	"context"
	"errors"
)

var (
	ErrMaterialNotFound = errors.New("material not found")
	// Also returned when the attempt exists but belongs to someone else, so
	// the response never confirms existence to non-owners.
	ErrAttemptNotFound = errors.New("attempt not found")

	ErrNoCorrectOption        = errors.New("no option marked correct")
	ErrMultipleCorrectOptions = errors.New("multiple options marked correct")
)

type Store interface {
	// CreateMaterial persists the material plus every question and its
	// options in one tx. An option is flagged correct exactly when its text
	// equals the draft's declared correct text.
	CreateMaterial(ctx context.Context, m Material, drafts []QuestionDraft) error
	GetMaterial(ctx context.Context, id string) (Material, error)
	ListMaterials(ctx context.Context, ownerID string) ([]Material, error)
	DeleteMaterial(ctx context.Context, id, ownerID string) error

	// MaterialQuestions returns the material's questions in storage order,
	// options attached with their correctness flags intact.
	MaterialQuestions(ctx context.Context, materialID string) ([]Question, error)

	// CreateAttempt writes the attempt and its full answer set in one tx;
	// a partial write is never observable.
	CreateAttempt(ctx context.Context, a Attempt, answers []Answer) error
	GetAttempt(ctx context.Context, attemptID, userID string) (Attempt, error)
	AttemptAnswers(ctx context.Context, attemptID string) ([]Answer, error)
	ListAttempts(ctx context.Context, userID string) ([]Attempt, error)
}

// CorrectOption resolves a question's answer key from its options. Zero or
// multiple flagged options are reported as data-integrity anomalies, never
// resolved by picking one arbitrarily.
func CorrectOption(q Question) (Option, error) {
	var found Option
	n := 0
	for _, o := range q.Options {
		if o.Correct {
			found = o
			n++
		}
	}
	switch {
	case n == 0:
		return Option{}, ErrNoCorrectOption
	case n > 1:
		return Option{}, ErrMultipleCorrectOptions
	}
	return found, nil
}
