package quiz

// Material is one uploaded document and the quiz generated from it.
// Write-once except for the extracted-text cache populated right after upload.
type Material struct {
	ID            string `json:"id"`
	OwnerID       string `json:"owner_id"`
	Title         string `json:"title"`
	FileKey       string `json:"file_key"`
	ExtractedText string `json:"-"`
	CreatedAt     int64  `json:"created_at"`

	QuestionCount int `json:"question_count,omitempty"`
}

type Question struct {
	ID            string   `json:"id"`
	MaterialID    string   `json:"material_id,omitempty"`
	Position      int      `json:"-"`
	Prompt        string   `json:"prompt"`
	Justification string   `json:"justification,omitempty"`
	Options       []Option `json:"options"`
}

type Option struct {
	ID    string `json:"id"`
	Label string `json:"label"`
	// Stripped on the quiz-taking path; visible on review/flashcards.
	Correct bool `json:"is_correct,omitempty"`
}

// Attempt is one student's single scored pass at a material's quiz.
// Immutable once created.
type Attempt struct {
	ID            string `json:"id"`
	MaterialID    string `json:"material_id"`
	MaterialTitle string `json:"material_title,omitempty"`
	UserID        string `json:"user_id"`
	Score         int    `json:"score"`
	CompletedAt   int64  `json:"completed_at"`
}

// Answer records one response inside an attempt. OptionID is empty when the
// student gave no answer or the submitted id did not resolve to one of the
// question's options.
type Answer struct {
	ID         string `json:"-"`
	AttemptID  string `json:"-"`
	QuestionID string `json:"question_id"`
	OptionID   string `json:"option_id,omitempty"`
	Correct    bool   `json:"correct"`
}

// QuestionDraft is what the generation adapter hands back for one question.
// Correct carries the exact text of the winning option; option counts other
// than 4 and correct texts matching no option are tolerated downstream.
type QuestionDraft struct {
	Prompt        string   `json:"question"`
	Options       []string `json:"options"`
	Correct       string   `json:"correct"`
	Justification string   `json:"justification"`
}

// Review is the full graded breakdown of one attempt, answers in the order
// the questions were stored.
type Review struct {
	Attempt Attempt        `json:"attempt"`
	Answers []ReviewAnswer `json:"answers"`
}

type ReviewAnswer struct {
	Question Question `json:"question"`
	Selected *Option  `json:"selected,omitempty"`
	Correct  bool     `json:"correct"`
}

// Flashcard is the self-study view of one question: options, justification
// and the anomaly-aware correct answer.
type Flashcard struct {
	Question     Question `json:"question"`
	CorrectLabel string   `json:"correct_label,omitempty"`
	Anomaly      string   `json:"anomaly,omitempty"`
}

// QuestionSummary is the instructor view of a question's answer key. Anomaly
// is set when zero or multiple options are flagged correct.
type QuestionSummary struct {
	QuestionID   string `json:"question_id"`
	Prompt       string `json:"prompt"`
	CorrectLabel string `json:"correct_label,omitempty"`
	Anomaly      string `json:"anomaly,omitempty"`
}
